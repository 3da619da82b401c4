package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"yatra/internal/domain"
	"yatra/internal/logging"
)

// User-visible notices.
const (
	NoticeNoRoutes          = "No routes found matching your query. Try another destination."
	NoticeQueryFailed       = "Sorry, there was an error processing your query."
	NoticeSpeechFailed      = "Failed to process your speech. Please try again."
	NoticePermissionDenied  = "Could not access microphone. Please check permissions."
	NoticeMissingCredential = "Please set your Dwani AI API key in the settings to use voice recognition features."
	NoticeSettingsSaved     = "Settings saved successfully"
)

type Assistant struct {
	audio        AudioSource
	stt          SpeechRecognizer
	intent       IntentParser
	routes       RouteFinder
	notifier     Notifier
	logger       *slog.Logger
	queryLatency time.Duration
}

func NewAssistant(
	audio AudioSource,
	stt SpeechRecognizer,
	intent IntentParser,
	routes RouteFinder,
	notifier Notifier,
	logger *slog.Logger,
) *Assistant {
	return &Assistant{
		audio:    audio,
		stt:      stt,
		intent:   intent,
		routes:   routes,
		notifier: notifier,
		logger:   logger,
	}
}

// WithQueryLatency makes every query wait d before answering, standing in
// for the round trip to a real route search backend.
func (a *Assistant) WithQueryLatency(d time.Duration) *Assistant {
	a.queryLatency = d
	return a
}

// Run drains the audio source until ctx is cancelled or the source reports
// io.EOF. Failures on single utterances are logged and do not stop the loop.
func (a *Assistant) Run(ctx context.Context) error {
	if a.audio == nil {
		return errors.New("no audio source configured")
	}

	a.logger.Info("starting audio source", "source", a.audio.Name())
	if err := a.audio.Start(ctx); err != nil {
		a.notify(ctx, noticeFor(err))
		return fmt.Errorf("starting audio: %w", err)
	}
	defer a.audio.Stop()

	a.logger.Info("assistant ready, listening for queries")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			err := a.processOneUtterance(ctx)
			if errors.Is(err, io.EOF) {
				a.logger.Info("audio source exhausted", "source", a.audio.Name())
				return nil
			}
			if err != nil && ctx.Err() == nil {
				logging.LogError(a.logger, "processing utterance", err)
			}
		}
	}
}

func (a *Assistant) processOneUtterance(ctx context.Context) error {
	u, err := a.audio.NextUtterance(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return err
		}
		return fmt.Errorf("getting utterance: %w", err)
	}

	if u == nil || (!u.IsText() && len(u.Audio) == 0) {
		return nil
	}

	result, err := a.Listen(ctx, u)
	if err != nil {
		return err
	}

	a.logger.Info("query answered",
		"query", result.Query,
		"intent", result.Intent,
		"routes", len(result.Routes),
	)
	return nil
}

// Listen answers one utterance. Audio is transcribed first; text is used as is.
func (a *Assistant) Listen(ctx context.Context, u *domain.Utterance) (*domain.QueryResult, error) {
	lang := u.Language
	if !lang.Supported() {
		lang = domain.DefaultLanguage
	}

	if u.IsText() {
		a.logger.Info("received text query", "text", u.Text, "language", lang)
		return a.Query(ctx, u.Text, lang)
	}

	if len(u.Audio) == 0 {
		return nil, fmt.Errorf("empty audio: %w", domain.ErrValidation)
	}

	a.logger.Info("received audio", "bytes", len(u.Audio), "language", lang)

	start := time.Now()
	transcript, err := a.stt.Recognize(ctx, u.Audio, lang)
	if err != nil {
		if ctx.Err() == nil {
			a.notify(ctx, noticeFor(err))
		}
		return nil, fmt.Errorf("recognizing speech: %w", err)
	}

	logging.LogOperation(a.logger, "transcribed",
		slog.String("text", transcript.Text),
		slog.Float64("confidence", transcript.Confidence),
		slog.Duration("duration", time.Since(start)),
	)

	result, err := a.Query(ctx, transcript.Text, lang)
	if err != nil {
		return nil, err
	}
	result.Transcript = transcript
	return result, nil
}

// Query interprets text and looks up matching routes.
func (a *Assistant) Query(ctx context.Context, text string, lang domain.Language) (*domain.QueryResult, error) {
	if !lang.Supported() {
		lang = domain.DefaultLanguage
	}

	if err := sleep(ctx, a.queryLatency); err != nil {
		return nil, err
	}

	interp, err := a.intent.Parse(ctx, text)
	if err != nil {
		a.notify(ctx, NoticeQueryFailed)
		return nil, fmt.Errorf("parsing intent: %w", err)
	}

	routes, err := a.routes.FindRoutes(ctx, interp.Entities)
	if err != nil {
		a.notify(ctx, NoticeQueryFailed)
		return nil, fmt.Errorf("finding routes: %w", err)
	}

	result := &domain.QueryResult{
		Query:    text,
		Language: lang,
		Intent:   interp.Intent,
		Entities: interp.Entities,
		Routes:   routes,
	}

	if interp.Intent == domain.IntentTransportSearch && len(routes) == 0 {
		result.Notice = NoticeNoRoutes
		a.notify(ctx, result.Notice)
	}

	a.logger.Debug("interpreted query",
		"text", text,
		"intent", interp.Intent,
		"entities", interp.Entities,
		"routes", len(routes),
	)

	return result, nil
}

func (a *Assistant) notify(ctx context.Context, message string) {
	if err := a.notifier.Notify(ctx, message); err != nil {
		logging.LogError(a.logger, "sending notice", err)
	}
}

func noticeFor(err error) string {
	switch {
	case errors.Is(err, domain.ErrPermissionDenied):
		return NoticePermissionDenied
	case errors.Is(err, domain.ErrMissingCredential):
		return NoticeMissingCredential
	default:
		return NoticeSpeechFailed
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
