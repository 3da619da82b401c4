package application

import (
	"context"

	"yatra/internal/domain"
)

// SpeechRecognizer turns recorded audio into a transcript. Implementations
// report failures as domain.ErrPermissionDenied, domain.ErrRecognitionFailed
// or domain.ErrMissingCredential.
type SpeechRecognizer interface {
	Recognize(ctx context.Context, audio []byte, lang domain.Language) (*domain.Transcript, error)
}

// CredentialStore holds the single API key used by remote recognizers.
type CredentialStore interface {
	APIKey(ctx context.Context) (string, error)
	SetAPIKey(ctx context.Context, key string) error
}
