package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"yatra/internal/application"
	"yatra/internal/domain"
	"yatra/internal/logging"
)

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorDetail `json:"error"`
}

// writeDomainError maps pipeline errors onto HTTP statuses. Unexpected
// errors are logged and reported without detail.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var maxErr *http.MaxBytesError

	switch {
	case errors.As(err, &maxErr):
		writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large")
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
	case errors.Is(err, domain.ErrMissingCredential):
		writeError(w, http.StatusPreconditionFailed, "missing_credential", application.NoticeMissingCredential)
	case errors.Is(err, domain.ErrPermissionDenied):
		writeError(w, http.StatusForbidden, "permission_denied", application.NoticePermissionDenied)
	case errors.Is(err, domain.ErrRecognitionFailed):
		logging.LogError(logging.FromContext(r.Context(), s.logger), "speech recognition failed", err)
		writeError(w, http.StatusBadGateway, "recognition_failed", application.NoticeSpeechFailed)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "cancelled", "request cancelled")
	default:
		logging.LogError(logging.FromContext(r.Context(), s.logger), "unhandled error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", application.NoticeQueryFailed)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: errorDetail{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
