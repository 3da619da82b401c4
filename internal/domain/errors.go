package domain

import "errors"

var (
	// ErrPermissionDenied is returned when the recording device cannot be opened.
	ErrPermissionDenied = errors.New("recording device permission denied")

	// ErrRecognitionFailed covers non-success responses and malformed payloads
	// from a speech recognizer.
	ErrRecognitionFailed = errors.New("speech recognition failed")

	ErrMissingCredential = errors.New("speech recognition api key not configured")

	ErrValidation = errors.New("validation error")
)
