package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"yatra/internal/application"
	"yatra/internal/domain"
)

type WhisperClient struct {
	keys       application.CredentialStore
	httpClient *http.Client
	baseURL    string
	model      string
}

func NewWhisperClient(keys application.CredentialStore, model string) *WhisperClient {
	return NewWhisperClientWithURL(keys, model, "https://api.openai.com/v1")
}

func NewWhisperClientWithURL(keys application.CredentialStore, model, baseURL string) *WhisperClient {
	if model == "" {
		model = "whisper-1"
	}
	return &WhisperClient{
		keys:       keys,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
	}
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

func (c *WhisperClient) Recognize(ctx context.Context, audio []byte, lang domain.Language) (*domain.Transcript, error) {
	key, err := c.keys.APIKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading api key: %w", err)
	}
	if key == "" {
		return nil, fmt.Errorf("whisper: %w", domain.ErrMissingCredential)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return nil, fmt.Errorf("creating form file: %w", err)
	}

	if _, err = part.Write(audio); err != nil {
		return nil, fmt.Errorf("writing audio: %w", err)
	}

	if err = writer.WriteField("model", c.model); err != nil {
		return nil, fmt.Errorf("writing model field: %w", err)
	}

	if err = writer.WriteField("language", string(lang)); err != nil {
		return nil, fmt.Errorf("writing language field: %w", err)
	}

	if err = writer.Close(); err != nil {
		return nil, fmt.Errorf("closing writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+key)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: sending request: %w", domain.ErrRecognitionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return nil, fmt.Errorf("%w: whisper API error %d: %s", domain.ErrRecognitionFailed, resp.StatusCode, string(respBody))
	}

	var result transcriptionResponse
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %w", domain.ErrRecognitionFailed, err)
	}

	if strings.TrimSpace(result.Text) == "" {
		return nil, fmt.Errorf("%w: empty transcript", domain.ErrRecognitionFailed)
	}

	return &domain.Transcript{
		Text:   result.Text,
		Locale: lang.Locale(),
	}, nil
}
