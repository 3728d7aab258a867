// Package client talks to the interview backend over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ai-interviewer/internal/api"
	"ai-interviewer/internal/logging"
)

// HTTPError is returned for any non-2xx response.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP error %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP error %d: %s", e.StatusCode, e.Message)
}

// Client is the backend client. One client serves one interview
// session; every request carries the same correlation id.
type Client struct {
	baseURL   string
	http      *http.Client
	reportDir string
	sessionID string
	logger    zerolog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithReportDir sets where downloaded reports are saved.
func WithReportDir(dir string) Option {
	return func(c *Client) { c.reportDir = dir }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a client for the backend at baseURL.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: timeout},
		reportDir: ".",
		sessionID: uuid.NewString(),
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.WithComponent(c.logger, "client").With().Str("sessionId", c.sessionID).Logger()
	return c
}

// SessionID is the correlation id sent as X-Session-ID.
func (c *Client) SessionID() string {
	return c.sessionID
}

// Start calls POST /api/start.
func (c *Client) Start(ctx context.Context, req api.StartRequest) (*api.Reply, error) {
	var reply api.Reply
	if err := c.postJSON(ctx, api.PathStart, req, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// Chat calls POST /api/chat.
func (c *Client) Chat(ctx context.Context, req api.ChatRequest) (*api.Reply, error) {
	var reply api.Reply
	if err := c.postJSON(ctx, api.PathChat, req, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// Synthesize calls POST /api/speak and returns the audio payload.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodPost, api.PathSpeak, api.SpeakRequest{Text: text})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, errors.New("empty audio payload")
	}
	return audio, nil
}

// ReportURL is the address of the report document for id.
func (c *Client) ReportURL(id api.InterviewID) string {
	return c.baseURL + api.ReportPath(id)
}

// OpenReport downloads the report into the report directory and returns
// the file path.
func (c *Client) OpenReport(ctx context.Context, id api.InterviewID) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, api.ReportPath(id), nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	name := api.ReportFilename(id)
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		if fn := filepath.Base(params["filename"]); fn != "" && fn != "." && fn != string(filepath.Separator) {
			name = fn
		}
	}

	if err := os.MkdirAll(c.reportDir, 0755); err != nil {
		return "", fmt.Errorf("create report directory %s: %w", c.reportDir, err)
	}
	path := filepath.Join(c.reportDir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report file %s: %w", path, err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return "", fmt.Errorf("write report file %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close report file %s: %w", path, err)
	}
	return path, nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out interface{}) error {
	resp, err := c.do(ctx, http.MethodPost, path, in)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// do sends the request and returns the response if its status is 2xx.
// Otherwise the body is consumed into an *HTTPError.
func (c *Client) do(ctx context.Context, method, path string, in interface{}) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		jsonData, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Session-ID", c.sessionID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("request done")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		httpErr := &HTTPError{StatusCode: resp.StatusCode}
		var apiErr api.ErrorResponse
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			httpErr.Message = apiErr.Error
		} else {
			httpErr.Message = strings.TrimSpace(string(data))
		}
		return nil, fmt.Errorf("%s %s: %w", method, path, httpErr)
	}
	return resp, nil
}
