package application_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"yatra/internal/application"
	"yatra/internal/domain"
)

type mockAudioSource struct {
	utterances []*domain.Utterance
	index      int
	startErr   error
	stopped    bool
}

func (m *mockAudioSource) Start(_ context.Context) error { return m.startErr }
func (m *mockAudioSource) Name() string                  { return "mock" }

func (m *mockAudioSource) Stop() error {
	m.stopped = true
	return nil
}

func (m *mockAudioSource) NextUtterance(_ context.Context) (*domain.Utterance, error) {
	if m.index >= len(m.utterances) {
		return nil, io.EOF
	}
	u := m.utterances[m.index]
	m.index++
	return u, nil
}

type mockSTT struct {
	transcriptions map[string]string
	err            error
	calls          int
}

func (m *mockSTT) Recognize(_ context.Context, audio []byte, lang domain.Language) (*domain.Transcript, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	text, ok := m.transcriptions[string(audio)]
	if !ok {
		text = "unknown query"
	}
	return &domain.Transcript{Text: text, Confidence: 0.9, Locale: lang.Locale()}, nil
}

type mockIntentParser struct {
	results map[string]*domain.Interpretation
	err     error
}

func (m *mockIntentParser) Parse(_ context.Context, text string) (*domain.Interpretation, error) {
	if m.err != nil {
		return nil, m.err
	}
	if r, ok := m.results[text]; ok {
		return r, nil
	}
	return &domain.Interpretation{Intent: domain.IntentUnknown, Entities: domain.Entities{}}, nil
}

type mockRouteFinder struct {
	routes []domain.TransportRoute
	seen   []domain.Entities
}

func (m *mockRouteFinder) FindRoutes(_ context.Context, entities domain.Entities) ([]domain.TransportRoute, error) {
	m.seen = append(m.seen, entities)
	if entities[domain.EntityDestination] == "Vidhana Soudha" {
		return m.routes, nil
	}
	return []domain.TransportRoute{}, nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (r *recordingNotifier) Notify(_ context.Context, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
	return nil
}

func (r *recordingNotifier) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var seededRoutes = []domain.TransportRoute{
	{ID: "1", Type: domain.TransportTypeBus, Number: "335E", To: "Vidhana Soudha"},
	{ID: "2", Type: domain.TransportTypeBus, Number: "500C", To: "Vidhana Soudha"},
	{ID: "3", Type: domain.TransportTypeMetro, Number: "Purple Line", To: "Vidhana Soudha"},
}

func busToVidhanaSoudha() *domain.Interpretation {
	return &domain.Interpretation{
		Intent: domain.IntentTransportSearch,
		Entities: domain.Entities{
			domain.EntityTransportType: "bus",
			domain.EntityDestination:   "Vidhana Soudha",
			domain.EntityTimeFrame:     "next",
		},
	}
}

func TestAssistant_Query(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantIntent domain.Intent
		wantRoutes int
		wantNotice string
	}{
		{
			name:       "served destination",
			text:       "When is the next bus to Vidhana Soudha?",
			wantIntent: domain.IntentTransportSearch,
			wantRoutes: 3,
		},
		{
			name:       "unserved destination",
			text:       "metro to whitefield",
			wantIntent: domain.IntentTransportSearch,
			wantNotice: application.NoticeNoRoutes,
		},
		{
			name:       "unrelated query",
			text:       "What's the weather today?",
			wantIntent: domain.IntentUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := &mockIntentParser{results: map[string]*domain.Interpretation{
				"When is the next bus to Vidhana Soudha?": busToVidhanaSoudha(),
				"metro to whitefield": {
					Intent: domain.IntentTransportSearch,
					Entities: domain.Entities{
						domain.EntityTransportType: "metro",
						domain.EntityDestination:   "Whitefield",
					},
				},
			}}
			notifier := &recordingNotifier{}

			assistant := application.NewAssistant(nil, &mockSTT{}, parser,
				&mockRouteFinder{routes: seededRoutes}, notifier, discardLogger())

			result, err := assistant.Query(context.Background(), tt.text, domain.LanguageEnglish)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if result.Intent != tt.wantIntent {
				t.Errorf("intent = %q, want %q", result.Intent, tt.wantIntent)
			}
			if len(result.Routes) != tt.wantRoutes {
				t.Errorf("routes = %d, want %d", len(result.Routes), tt.wantRoutes)
			}
			if result.Notice != tt.wantNotice {
				t.Errorf("notice = %q, want %q", result.Notice, tt.wantNotice)
			}
			if result.Query != tt.text {
				t.Errorf("query = %q, want %q", result.Query, tt.text)
			}

			msgs := notifier.Messages()
			if tt.wantNotice == "" && len(msgs) != 0 {
				t.Errorf("unexpected notices: %v", msgs)
			}
			if tt.wantNotice != "" && (len(msgs) != 1 || msgs[0] != tt.wantNotice) {
				t.Errorf("notices = %v, want [%q]", msgs, tt.wantNotice)
			}
		})
	}
}

func TestAssistant_QueryUnsupportedLanguageFallsBack(t *testing.T) {
	assistant := application.NewAssistant(nil, &mockSTT{}, &mockIntentParser{},
		&mockRouteFinder{}, &application.NoopNotifier{}, discardLogger())

	result, err := assistant.Query(context.Background(), "hola", domain.Language("es"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Language != domain.DefaultLanguage {
		t.Errorf("language = %q, want %q", result.Language, domain.DefaultLanguage)
	}
}

func TestAssistant_QueryParserFailure(t *testing.T) {
	notifier := &recordingNotifier{}
	assistant := application.NewAssistant(nil, &mockSTT{},
		&mockIntentParser{err: errors.New("boom")},
		&mockRouteFinder{}, notifier, discardLogger())

	_, err := assistant.Query(context.Background(), "bus", domain.LanguageEnglish)
	if err == nil {
		t.Fatal("expected error")
	}

	msgs := notifier.Messages()
	if len(msgs) != 1 || msgs[0] != application.NoticeQueryFailed {
		t.Errorf("notices = %v, want [%q]", msgs, application.NoticeQueryFailed)
	}
}

func TestAssistant_QueryLatency(t *testing.T) {
	assistant := application.NewAssistant(nil, &mockSTT{}, &mockIntentParser{},
		&mockRouteFinder{}, &application.NoopNotifier{}, discardLogger()).
		WithQueryLatency(20 * time.Millisecond)

	start := time.Now()
	if _, err := assistant.Query(context.Background(), "bus", domain.LanguageEnglish); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("query returned after %v, want at least 20ms", elapsed)
	}
}

func TestAssistant_QueryLatencyCancelled(t *testing.T) {
	routes := &mockRouteFinder{}
	assistant := application.NewAssistant(nil, &mockSTT{}, &mockIntentParser{},
		routes, &application.NoopNotifier{}, discardLogger()).
		WithQueryLatency(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := assistant.Query(ctx, "bus", domain.LanguageEnglish)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if len(routes.seen) != 0 {
		t.Error("route lookup ran after cancellation")
	}
}

func TestAssistant_ListenText(t *testing.T) {
	stt := &mockSTT{}
	parser := &mockIntentParser{results: map[string]*domain.Interpretation{
		"next bus to vidhana soudha": busToVidhanaSoudha(),
	}}

	assistant := application.NewAssistant(nil, stt, parser,
		&mockRouteFinder{routes: seededRoutes}, &application.NoopNotifier{}, discardLogger())

	result, err := assistant.Listen(context.Background(), &domain.Utterance{
		Text:     "next bus to vidhana soudha",
		Language: domain.LanguageKannada,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stt.calls != 0 {
		t.Errorf("recognizer called %d times for a text utterance", stt.calls)
	}
	if result.Transcript != nil {
		t.Error("text utterance should not carry a transcript")
	}
	if result.Language != domain.LanguageKannada {
		t.Errorf("language = %q, want kn", result.Language)
	}
	if len(result.Routes) != 3 {
		t.Errorf("routes = %d, want 3", len(result.Routes))
	}
}

func TestAssistant_ListenAudio(t *testing.T) {
	stt := &mockSTT{transcriptions: map[string]string{
		"clip-1": "When is the next bus to Vidhana Soudha?",
	}}
	parser := &mockIntentParser{results: map[string]*domain.Interpretation{
		"When is the next bus to Vidhana Soudha?": busToVidhanaSoudha(),
	}}

	assistant := application.NewAssistant(nil, stt, parser,
		&mockRouteFinder{routes: seededRoutes}, &application.NoopNotifier{}, discardLogger())

	result, err := assistant.Listen(context.Background(), &domain.Utterance{
		Audio:    []byte("clip-1"),
		Language: domain.LanguageHindi,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Transcript == nil {
		t.Fatal("expected transcript")
	}
	if result.Transcript.Locale != "hi-IN" {
		t.Errorf("locale = %q, want hi-IN", result.Transcript.Locale)
	}
	if result.Query != result.Transcript.Text {
		t.Errorf("query = %q, want transcript text", result.Query)
	}
	if len(result.Routes) != 3 {
		t.Errorf("routes = %d, want 3", len(result.Routes))
	}
}

func TestAssistant_ListenEmptyAudio(t *testing.T) {
	assistant := application.NewAssistant(nil, &mockSTT{}, &mockIntentParser{},
		&mockRouteFinder{}, &application.NoopNotifier{}, discardLogger())

	_, err := assistant.Listen(context.Background(), &domain.Utterance{})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestAssistant_ListenRecognitionErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantNotice string
	}{
		{"permission denied", fmt.Errorf("opening device: %w", domain.ErrPermissionDenied), application.NoticePermissionDenied},
		{"missing credential", domain.ErrMissingCredential, application.NoticeMissingCredential},
		{"recognition failed", fmt.Errorf("%w: status 500", domain.ErrRecognitionFailed), application.NoticeSpeechFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := &recordingNotifier{}
			routes := &mockRouteFinder{}
			assistant := application.NewAssistant(nil, &mockSTT{err: tt.err}, &mockIntentParser{},
				routes, notifier, discardLogger())

			_, err := assistant.Listen(context.Background(), &domain.Utterance{Audio: []byte("x")})
			if !errors.Is(err, tt.err) {
				t.Fatalf("err = %v, want %v", err, tt.err)
			}

			msgs := notifier.Messages()
			if len(msgs) != 1 || msgs[0] != tt.wantNotice {
				t.Errorf("notices = %v, want [%q]", msgs, tt.wantNotice)
			}
			if len(routes.seen) != 0 {
				t.Error("route lookup ran after a recognition failure")
			}
		})
	}
}

func TestAssistant_RunDrainsSource(t *testing.T) {
	audioSource := &mockAudioSource{
		utterances: []*domain.Utterance{
			{Audio: []byte("clip-1")},
			{Text: "metro to whitefield"},
			{},
		},
	}

	stt := &mockSTT{transcriptions: map[string]string{
		"clip-1": "When is the next bus to Vidhana Soudha?",
	}}

	parser := &mockIntentParser{results: map[string]*domain.Interpretation{
		"When is the next bus to Vidhana Soudha?": busToVidhanaSoudha(),
		"metro to whitefield": {
			Intent:   domain.IntentTransportSearch,
			Entities: domain.Entities{domain.EntityDestination: "Whitefield"},
		},
	}}

	routes := &mockRouteFinder{routes: seededRoutes}
	notifier := &recordingNotifier{}

	assistant := application.NewAssistant(audioSource, stt, parser, routes, notifier, discardLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := assistant.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(routes.seen) != 2 {
		t.Errorf("expected 2 route lookups, got %d", len(routes.seen))
	}
	if stt.calls != 1 {
		t.Errorf("expected 1 recognition, got %d", stt.calls)
	}
	if msgs := notifier.Messages(); len(msgs) != 1 || msgs[0] != application.NoticeNoRoutes {
		t.Errorf("notices = %v, want [%q]", msgs, application.NoticeNoRoutes)
	}
	if !audioSource.stopped {
		t.Error("audio source was not stopped")
	}
}

func TestAssistant_RunContinuesAfterFailure(t *testing.T) {
	audioSource := &mockAudioSource{
		utterances: []*domain.Utterance{
			{Audio: []byte("a")},
			{Audio: []byte("b")},
		},
	}
	stt := &mockSTT{err: domain.ErrRecognitionFailed}
	notifier := &recordingNotifier{}

	assistant := application.NewAssistant(audioSource, stt, &mockIntentParser{},
		&mockRouteFinder{}, notifier, discardLogger())

	if err := assistant.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stt.calls != 2 {
		t.Errorf("expected 2 recognition attempts, got %d", stt.calls)
	}
	if len(notifier.Messages()) != 2 {
		t.Errorf("expected 2 notices, got %v", notifier.Messages())
	}
}

func TestAssistant_RunStartFailure(t *testing.T) {
	audioSource := &mockAudioSource{startErr: fmt.Errorf("no device: %w", domain.ErrPermissionDenied)}
	notifier := &recordingNotifier{}

	assistant := application.NewAssistant(audioSource, &mockSTT{}, &mockIntentParser{},
		&mockRouteFinder{}, notifier, discardLogger())

	err := assistant.Run(context.Background())
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("err = %v, want permission denied", err)
	}
	if msgs := notifier.Messages(); len(msgs) != 1 || msgs[0] != application.NoticePermissionDenied {
		t.Errorf("notices = %v, want [%q]", msgs, application.NoticePermissionDenied)
	}
}

func TestAssistant_RunWithoutSource(t *testing.T) {
	assistant := application.NewAssistant(nil, &mockSTT{}, &mockIntentParser{},
		&mockRouteFinder{}, &application.NoopNotifier{}, discardLogger())

	if err := assistant.Run(context.Background()); err == nil {
		t.Fatal("expected error without audio source")
	}
}

func TestAssistant_RunCancelled(t *testing.T) {
	assistant := application.NewAssistant(&blockingSource{}, &mockSTT{}, &mockIntentParser{},
		&mockRouteFinder{}, &application.NoopNotifier{}, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- assistant.Run(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

type blockingSource struct{}

func (b *blockingSource) Start(_ context.Context) error { return nil }
func (b *blockingSource) Stop() error                   { return nil }
func (b *blockingSource) Name() string                  { return "blocking" }

func (b *blockingSource) NextUtterance(ctx context.Context) (*domain.Utterance, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
