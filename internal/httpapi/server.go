// Package httpapi exposes the query pipeline over HTTP: text and speech
// queries, example queries, supported languages and the API key setting.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"yatra/internal/application"
	"yatra/internal/domain"
)

// QueryService is the part of the assistant the API depends on.
type QueryService interface {
	Query(ctx context.Context, text string, lang domain.Language) (*domain.QueryResult, error)
	Listen(ctx context.Context, u *domain.Utterance) (*domain.QueryResult, error)
}

type Options struct {
	AllowedOrigins []string
	MaxBodyBytes   int64
	RateLimit      int
	RateWindow     time.Duration
}

func DefaultOptions() Options {
	return Options{
		AllowedOrigins: []string{"http://localhost:5173"},
		MaxBodyBytes:   10 << 20,
		RateLimit:      30,
		RateWindow:     time.Minute,
	}
}

type Server struct {
	queries  QueryService
	keys     application.CredentialStore
	notifier application.Notifier
	examples []domain.ExampleQuery
	opts     Options
	logger   *slog.Logger
}

func NewServer(
	queries QueryService,
	keys application.CredentialStore,
	notifier application.Notifier,
	examples []domain.ExampleQuery,
	opts Options,
	logger *slog.Logger,
) *Server {
	return &Server{
		queries:  queries,
		keys:     keys,
		notifier: notifier,
		examples: append([]domain.ExampleQuery(nil), examples...),
		opts:     opts,
		logger:   logger,
	}
}

// Handler builds the router. Middleware order: RequestID, RealIP, request
// logging, panic recovery, CORS, body size cap.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(NewSlogLogger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(NewCORSHandler(s.opts.AllowedOrigins))
	r.Use(NewMaxBodySizeHandler(s.opts.MaxBodyBytes))

	r.Get("/health", s.handleHealth)

	limiter := NewRateLimiter(s.opts.RateLimit, s.opts.RateWindow)

	r.Route("/api", func(r chi.Router) {
		r.Get("/languages", s.handleLanguages)
		r.Get("/examples", s.handleExamples)

		r.Group(func(r chi.Router) {
			r.Use(limiter.Middleware)
			r.Post("/query", s.handleQuery)
			r.Post("/speech", s.handleSpeech)
		})

		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings/api-key", s.handlePutAPIKey)
	})

	return r
}
