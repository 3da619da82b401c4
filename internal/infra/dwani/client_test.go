package dwani_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatra/internal/domain"
	"yatra/internal/infra/dwani"
)

type staticKeys struct {
	key string
}

func (s *staticKeys) APIKey(_ context.Context) (string, error)   { return s.key, nil }
func (s *staticKeys) SetAPIKey(_ context.Context, k string) error { s.key = k; return nil }

func TestClient_Recognize(t *testing.T) {
	audio := []byte("RIFF....WAVEfmt fake")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/speech-to-text", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body struct {
			Audio struct {
				Content string `json:"content"`
			} `json:"audio"`
			Config struct {
				Language struct {
					Code string `json:"code"`
				} `json:"language"`
				Model                   string `json:"model"`
				EnableIntentRecognition bool   `json:"enable_intent_recognition"`
				EnableEntityExtraction  bool   `json:"enable_entity_extraction"`
			} `json:"config"`
		}
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}

		decoded, err := base64.StdEncoding.DecodeString(body.Audio.Content)
		assert.NoError(t, err)
		assert.Equal(t, audio, decoded)
		assert.Equal(t, "hi-IN", body.Config.Language.Code)
		assert.Equal(t, "default", body.Config.Model)
		assert.True(t, body.Config.EnableIntentRecognition)
		assert.True(t, body.Config.EnableEntityExtraction)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"transcript": "विधान सौध जाने वाली अगली बस कब है?",
			"confidence": 0.92,
			"language":   "hi-IN",
			"intent":     map[string]any{"name": "transport_schedule_query", "confidence": 0.9},
			"entities": []map[string]any{
				{"entity": "destination", "value": "विधान सौध", "start": 0, "end": 10, "confidence": 0.94},
			},
		})
	}))
	defer server.Close()

	client := dwani.NewClientWithURL(&staticKeys{key: "secret"}, "", server.URL)

	got, err := client.Recognize(context.Background(), audio, domain.LanguageHindi)
	require.NoError(t, err)

	assert.Equal(t, "विधान सौध जाने वाली अगली बस कब है?", got.Text)
	assert.Equal(t, "hi-IN", got.Locale)
	require.NotNil(t, got.Intent)
	assert.Equal(t, "transport_schedule_query", got.Intent.Name)
	require.Len(t, got.Entities, 1)
	assert.Equal(t, 10, got.Entities[0].End)
}

func TestClient_MissingKey(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	client := dwani.NewClientWithURL(&staticKeys{}, "", server.URL)

	_, err := client.Recognize(context.Background(), []byte("x"), domain.LanguageEnglish)
	require.ErrorIs(t, err, domain.ErrMissingCredential)
	assert.Zero(t, calls.Load())
}

func TestClient_ServerErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"message": "model overloaded"})
	}))
	defer server.Close()

	client := dwani.NewClientWithURL(&staticKeys{key: "k"}, "", server.URL)

	_, err := client.Recognize(context.Background(), []byte("x"), domain.LanguageEnglish)
	require.ErrorIs(t, err, domain.ErrRecognitionFailed)
	assert.Contains(t, err.Error(), "model overloaded")
	assert.EqualValues(t, 1, calls.Load())
}

func TestClient_MalformedPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "<html>oops</html>"},
		{"empty transcript", `{"transcript":"","confidence":0.1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := dwani.NewClientWithURL(&staticKeys{key: "k"}, "", server.URL)

			_, err := client.Recognize(context.Background(), []byte("x"), domain.LanguageEnglish)
			require.ErrorIs(t, err, domain.ErrRecognitionFailed)
		})
	}
}

func TestClient_Cancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := dwani.NewClientWithURL(&staticKeys{key: "k"}, "", server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Recognize(ctx, []byte("x"), domain.LanguageEnglish)
	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrRecognitionFailed)
}
