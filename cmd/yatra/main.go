package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"yatra/config"
	"yatra/internal/application"
	"yatra/internal/catalog"
	"yatra/internal/domain"
	"yatra/internal/httpapi"
	"yatra/internal/infra/audio"
	"yatra/internal/infra/credentials"
	"yatra/internal/infra/dwani"
	"yatra/internal/infra/keyword"
	"yatra/internal/infra/openai"
	"yatra/internal/infra/pushover"
	"yatra/internal/infra/speech"
	"yatra/internal/infra/timetable"
	"yatra/internal/logging"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cat, err := loadCatalog(cfg.Catalog)
	if err != nil {
		logging.LogError(logger, "loading catalog", err)
		os.Exit(1)
	}

	keys, err := credentials.Open(cfg.Credentials.Path, cfg.Speech.APIKey)
	if err != nil {
		logging.LogError(logger, "opening credential store", err)
		os.Exit(1)
	}

	var notifier application.Notifier
	if cfg.Pushover.Enabled {
		notifier = pushover.NewClient(cfg.Pushover.Token, cfg.Pushover.UserKey)
	} else {
		notifier = &application.LogNotifier{Logger: logger}
	}

	lang := domain.ParseLanguage(cfg.Speech.Language)
	audioSource := createAudioSource(cfg.Audio, lang, logger)
	matcher := timetable.NewMatcher(cat.ServedDestination, cat.Routes)

	assistant := application.NewAssistant(
		audioSource,
		createRecognizer(cfg.Speech, cat, keys, logger),
		keyword.NewInterpreter(cat.Landmarks),
		matcher,
		notifier,
		logger,
	).WithQueryLatency(duration(logger, "query.latency", cfg.Query.Latency, 500*time.Millisecond))

	server := httpapi.NewServer(assistant, keys, notifier, cat.Examples, httpapi.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		RateLimit:      cfg.Server.RateLimit,
		RateWindow:     duration(logger, "server.rate_window", cfg.Server.RateWindow, time.Minute),
	}, logger)

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	if audioSource != nil {
		go func() {
			if err := assistant.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logging.LogError(logger, "audio listener stopped", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logging.LogError(logger, "shutting down http server", err)
		}
	}()

	logger.Info("starting yatra",
		"addr", cfg.Server.Addr,
		"speech_provider", cfg.Speech.Provider,
		"audio_source", cfg.Audio.Source,
		"served_destination", matcher.Destination(),
	)

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.LogError(logger, "http server error", err)
		os.Exit(1)
	}
}

func loadCatalog(cfg config.CatalogConfig) (*catalog.Catalog, error) {
	if cfg.Path == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(cfg.Path)
}

func createRecognizer(
	cfg config.SpeechConfig,
	cat *catalog.Catalog,
	keys application.CredentialStore,
	logger *slog.Logger,
) application.SpeechRecognizer {
	switch cfg.Provider {
	case "dwani":
		if cfg.BaseURL != "" {
			return dwani.NewClientWithURL(keys, cfg.Model, cfg.BaseURL)
		}
		return dwani.NewClient(keys, cfg.Model)
	case "whisper":
		if cfg.BaseURL != "" {
			return openai.NewWhisperClientWithURL(keys, cfg.Model, cfg.BaseURL)
		}
		return openai.NewWhisperClient(keys, cfg.Model)
	case "mock":
	default:
		logger.Warn("unknown speech provider, using mock", "provider", cfg.Provider)
	}
	return speech.NewMock(cat.Transcripts, duration(logger, "speech.mock_latency", cfg.MockLatency, 1500*time.Millisecond))
}

func createAudioSource(cfg config.AudioConfig, lang domain.Language, logger *slog.Logger) application.AudioSource {
	switch cfg.Source {
	case "none":
		return nil
	case "file":
		return audio.NewFileSource(cfg.FileDir, lang)
	case "microphone":
		maxDuration := duration(logger, "audio.max_duration", cfg.MaxDuration, 15*time.Second)
		return audio.NewMicrophoneSource(cfg.SampleRate, lang, maxDuration, logger)
	default:
		logger.Warn("unknown audio source, listener disabled", "source", cfg.Source)
		return nil
	}
}

func duration(logger *slog.Logger, name, value string, fallback time.Duration) time.Duration {
	d, err := config.Duration(value, fallback)
	if err != nil {
		logger.Warn("invalid duration, using default", "setting", name, "error", err, "default", fallback)
	}
	return d
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	level := logging.ParseLevel(cfg.Level)

	if cfg.Format == "json" {
		return logging.NewStructuredLogger(os.Stdout, level)
	}
	return logging.NewTextLogger(os.Stdout, level)
}
