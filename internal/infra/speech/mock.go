// Package speech provides the offline recognizer used when no remote speech
// service is configured.
package speech

import (
	"context"
	"time"

	"yatra/internal/domain"
)

// Mock ignores the audio and answers with a fixed transcript per language
// after a simulated processing delay.
type Mock struct {
	transcripts map[domain.Language]domain.Transcript
	latency     time.Duration
}

func NewMock(transcripts map[domain.Language]domain.Transcript, latency time.Duration) *Mock {
	copied := make(map[domain.Language]domain.Transcript, len(transcripts))
	for lang, t := range transcripts {
		copied[lang] = t
	}
	return &Mock{transcripts: copied, latency: latency}
}

// Capture returns the transcript text for a language code. Unknown codes
// fall back to English.
func (m *Mock) Capture(languageCode string) string {
	t := m.transcript(domain.Language(languageCode))
	return t.Text
}

func (m *Mock) Recognize(ctx context.Context, _ []byte, lang domain.Language) (*domain.Transcript, error) {
	if m.latency > 0 {
		timer := time.NewTimer(m.latency)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	t := m.transcript(lang)
	t.Entities = append([]domain.RecognizedEntity(nil), t.Entities...)
	return &t, nil
}

func (m *Mock) transcript(lang domain.Language) domain.Transcript {
	if t, ok := m.transcripts[lang]; ok {
		return t
	}
	return m.transcripts[domain.DefaultLanguage]
}
