//go:build !portaudio
// +build !portaudio

package audio

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"yatra/internal/domain"
)

// MicrophoneSource stub when portaudio is not available
type MicrophoneSource struct {
	logger *slog.Logger
}

func NewMicrophoneSource(_ int, _ domain.Language, _ time.Duration, logger *slog.Logger) *MicrophoneSource {
	return &MicrophoneSource{logger: logger}
}

func (m *MicrophoneSource) Name() string {
	return "microphone"
}

func (m *MicrophoneSource) Start(_ context.Context) error {
	return fmt.Errorf("%w: microphone support not compiled in, rebuild with -tags portaudio", domain.ErrPermissionDenied)
}

func (m *MicrophoneSource) Stop() error {
	return nil
}

func (m *MicrophoneSource) NextUtterance(_ context.Context) (*domain.Utterance, error) {
	return nil, fmt.Errorf("%w: microphone source not available", domain.ErrPermissionDenied)
}
