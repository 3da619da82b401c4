package dwani

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"yatra/internal/application"
	"yatra/internal/domain"
)

const DefaultBaseURL = "https://api.dwani.ai/v1"

type Client struct {
	keys       application.CredentialStore
	httpClient *http.Client
	baseURL    string
	model      string
}

func NewClient(keys application.CredentialStore, model string) *Client {
	return NewClientWithURL(keys, model, DefaultBaseURL)
}

func NewClientWithURL(keys application.CredentialStore, model, baseURL string) *Client {
	if model == "" {
		model = "default"
	}
	return &Client{
		keys:       keys,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
	}
}

type request struct {
	Audio  audioContent      `json:"audio"`
	Config recognitionConfig `json:"config"`
}

type audioContent struct {
	Content string `json:"content"`
}

type recognitionConfig struct {
	Language                languageConfig `json:"language"`
	Model                   string         `json:"model"`
	EnableIntentRecognition bool           `json:"enable_intent_recognition"`
	EnableEntityExtraction  bool           `json:"enable_entity_extraction"`
}

type languageConfig struct {
	Code string `json:"code"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// Recognize sends audio to the speech-to-text endpoint. The API key is read
// from the credential store on every call so a key saved at runtime takes
// effect immediately. Failures are not retried.
func (c *Client) Recognize(ctx context.Context, audio []byte, lang domain.Language) (*domain.Transcript, error) {
	key, err := c.keys.APIKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading api key: %w", err)
	}
	if key == "" {
		return nil, fmt.Errorf("dwani: %w", domain.ErrMissingCredential)
	}

	reqBody := request{
		Audio: audioContent{Content: base64.StdEncoding.EncodeToString(audio)},
		Config: recognitionConfig{
			Language:                languageConfig{Code: lang.Locale()},
			Model:                   c.model,
			EnableIntentRecognition: true,
			EnableEntityExtraction:  true,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/speech-to-text", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: sending request: %w", domain.ErrRecognitionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		msg := resp.Status
		var apiErr errorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
			msg = apiErr.Message
		}
		return nil, fmt.Errorf("%w: dwani API error %d: %s", domain.ErrRecognitionFailed, resp.StatusCode, msg)
	}

	var transcript domain.Transcript
	if err := json.NewDecoder(resp.Body).Decode(&transcript); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %w", domain.ErrRecognitionFailed, err)
	}

	if strings.TrimSpace(transcript.Text) == "" {
		return nil, fmt.Errorf("%w: empty transcript", domain.ErrRecognitionFailed)
	}

	return &transcript, nil
}
