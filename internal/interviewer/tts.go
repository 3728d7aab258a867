package interviewer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Synthesizer turns text into WAV audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// TTSClient calls a LocalAI-style /tts endpoint.
type TTSClient struct {
	url    string
	model  string
	client *http.Client
}

// NewTTSClient creates a client whose requests give up after timeout.
func NewTTSClient(url, model string, timeout time.Duration) *TTSClient {
	return &TTSClient{
		url:    url,
		model:  model,
		client: &http.Client{Timeout: timeout},
	}
}

// Synthesize returns the WAV bytes for text.
func (c *TTSClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	jsonData, err := json.Marshal(map[string]string{
		"model": c.model,
		"input": text,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP error %d: %s", resp.StatusCode, string(body))
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("empty audio from TTS")
	}
	return body, nil
}
