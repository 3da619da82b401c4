//go:build portaudio
// +build portaudio

package audio

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gordonklaus/portaudio"

	"yatra/internal/domain"
)

const (
	framesPerBuffer  = 1024
	silenceThreshold = int16(500)
)

// MicrophoneSource records one query per call: it waits for sound, then
// records until a second of silence or maxDuration, whichever comes first.
type MicrophoneSource struct {
	sampleRate  int
	language    domain.Language
	maxDuration time.Duration
	logger      *slog.Logger

	stream *portaudio.Stream
	frame  []int16
}

func NewMicrophoneSource(sampleRate int, lang domain.Language, maxDuration time.Duration, logger *slog.Logger) *MicrophoneSource {
	return &MicrophoneSource{
		sampleRate:  sampleRate,
		language:    lang,
		maxDuration: maxDuration,
		logger:      logger,
		frame:       make([]int16, framesPerBuffer),
	}
}

func (m *MicrophoneSource) Name() string {
	return "microphone"
}

func (m *MicrophoneSource) Start(_ context.Context) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("%w: initializing portaudio: %w", domain.ErrPermissionDenied, err)
	}

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(m.sampleRate), len(m.frame), m.frame)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("%w: opening input stream: %w", domain.ErrPermissionDenied, err)
	}
	m.stream = stream

	if err := m.stream.Start(); err != nil {
		m.stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("%w: starting input stream: %w", domain.ErrPermissionDenied, err)
	}

	m.logger.Info("microphone started", "sample_rate", m.sampleRate, "max_duration", m.maxDuration)
	return nil
}

func (m *MicrophoneSource) Stop() error {
	if m.stream != nil {
		m.stream.Stop()
		m.stream.Close()
		m.stream = nil
	}
	return portaudio.Terminate()
}

func (m *MicrophoneSource) NextUtterance(ctx context.Context) (*domain.Utterance, error) {
	maxSamples := int(m.maxDuration.Seconds() * float64(m.sampleRate))
	samples := make([]int16, 0, maxSamples)
	silentSamples := 0
	speaking := false

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if err := m.stream.Read(); err != nil {
			return nil, fmt.Errorf("reading from stream: %w", err)
		}

		silent := isSilent(m.frame, silenceThreshold)
		if !speaking {
			if silent {
				continue
			}
			speaking = true
			m.logger.Debug("speech detected, recording")
		}

		samples = append(samples, m.frame...)

		if silent {
			silentSamples += len(m.frame)
		} else {
			silentSamples = 0
		}

		if silentSamples > m.sampleRate || len(samples) >= maxSamples {
			break
		}
	}

	return &domain.Utterance{
		Audio:    EncodeWAV(samples, m.sampleRate),
		Language: m.language,
	}, nil
}
