package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"yatra/internal/application"
	"yatra/internal/domain"
	"yatra/internal/logging"
)

type queryRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

type queryResponse struct {
	ID string `json:"id"`
	*domain.QueryResult
}

type languageResponse struct {
	Code   domain.Language `json:"code"`
	Locale string          `json:"locale"`
	Name   string          `json:"name"`
}

type settingsResponse struct {
	APIKeyConfigured bool `json:"apiKeyConfigured"`
}

type apiKeyRequest struct {
	APIKey string `json:"apiKey"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLanguages(w http.ResponseWriter, _ *http.Request) {
	langs := domain.SupportedLanguages()
	out := make([]languageResponse, 0, len(langs))
	for _, l := range langs {
		out = append(out, languageResponse{Code: l, Locale: l.Locale(), Name: l.DisplayName()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleExamples(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.examples)
}

// handleQuery handles POST /api/query with a JSON body {"text", "language"}.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		s.writeDomainError(w, r, fmt.Errorf("%w: text is required", domain.ErrValidation))
		return
	}

	result, err := s.queries.Query(r.Context(), text, domain.ParseLanguage(req.Language))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, queryResponse{ID: uuid.NewString(), QueryResult: result})
}

// handleSpeech handles POST /api/speech. The body is the raw recording and
// the language comes from ?language= or the Content-Language header.
func (s *Server) handleSpeech(w http.ResponseWriter, r *http.Request) {
	audio, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	if len(audio) == 0 {
		s.writeDomainError(w, r, fmt.Errorf("%w: audio body is required", domain.ErrValidation))
		return
	}

	lang := r.URL.Query().Get("language")
	if lang == "" {
		lang = r.Header.Get("Content-Language")
	}

	result, err := s.queries.Listen(r.Context(), &domain.Utterance{
		Audio:    audio,
		Language: domain.ParseLanguage(lang),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, queryResponse{ID: uuid.NewString(), QueryResult: result})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	key, err := s.keys.APIKey(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse{APIKeyConfigured: key != ""})
}

func (s *Server) handlePutAPIKey(w http.ResponseWriter, r *http.Request) {
	var req apiKeyRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	if err := s.keys.SetAPIKey(r.Context(), req.APIKey); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	if err := s.notifier.Notify(r.Context(), application.NoticeSettingsSaved); err != nil {
		logging.LogError(logging.FromContext(r.Context(), s.logger), "sending notice", err)
	}

	w.WriteHeader(http.StatusNoContent)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		return fmt.Errorf("%w: malformed JSON body: %v", domain.ErrValidation, err)
	}
	return nil
}
