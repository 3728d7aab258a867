package speech

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
)

// Whisper recognizes speech through an OpenAI-compatible
// /audio/transcriptions endpoint.
type Whisper struct {
	url      string
	model    string
	apiKey   string
	language string
	client   *http.Client
}

// NewWhisper creates a recognizer. apiKey may be empty for local servers.
func NewWhisper(url, model, apiKey, language string) *Whisper {
	return &Whisper{
		url:      url,
		model:    model,
		apiKey:   apiKey,
		language: whisperLanguage(language),
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

func (w *Whisper) Name() string { return "whisper" }

func (w *Whisper) Recognize(ctx context.Context, u Utterance) (string, error) {
	audio, err := EncodeFLAC(u.Samples, u.SampleRate)
	if err != nil {
		return "", err
	}

	var body bytes.Buffer
	contentType, err := w.writeForm(&body, audio)
	if err != nil {
		return "", fmt.Errorf("build request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, &body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if w.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+w.apiKey)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("whisper request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("whisper API error %d: %s", resp.StatusCode, string(respBody))
	}

	var wResp struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(respBody, &wResp); err != nil {
		return "", fmt.Errorf("whisper response parse error: %w", err)
	}
	return strings.TrimSpace(wResp.Text), nil
}

// writeForm writes the multipart upload to out and returns its content type.
func (w *Whisper) writeForm(out io.Writer, audio []byte) (string, error) {
	writer := multipart.NewWriter(out)
	part, err := writer.CreateFormFile("file", "answer.flac")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(audio); err != nil {
		return "", err
	}
	fields := [][2]string{{"model", w.model}, {"response_format", "json"}}
	if w.language != "" {
		fields = append(fields, [2]string{"language", w.language})
	}
	for _, f := range fields {
		if err := writer.WriteField(f[0], f[1]); err != nil {
			return "", fmt.Errorf("write field %s: %w", f[0], err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", err
	}
	return writer.FormDataContentType(), nil
}

// whisperLanguage turns a BCP-47 tag like "en-US" into the ISO-639-1
// code the transcription API expects.
func whisperLanguage(tag string) string {
	if i := strings.IndexAny(tag, "-_"); i > 0 {
		tag = tag[:i]
	}
	return strings.ToLower(tag)
}
