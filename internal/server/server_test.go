package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"ai-interviewer/internal/api"
	"ai-interviewer/internal/interviewer"
	"ai-interviewer/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeService struct {
	startReq api.StartRequest
	chatReq  api.ChatRequest
	reply    *api.Reply
	audio    []byte
	err      error
	pingErr  error
}

func (f *fakeService) Start(_ context.Context, req api.StartRequest) (*api.Reply, error) {
	f.startReq = req
	return f.reply, f.err
}

func (f *fakeService) Chat(_ context.Context, req api.ChatRequest) (*api.Reply, error) {
	f.chatReq = req
	return f.reply, f.err
}

func (f *fakeService) Speak(context.Context, api.SpeakRequest) ([]byte, error) {
	return f.audio, f.err
}

func (f *fakeService) Report(_ context.Context, id api.InterviewID) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	return api.ReportFilename(id), "Interview Report\n", nil
}

func (f *fakeService) Ping(context.Context) error {
	return f.pingErr
}

type fakeRecorder struct {
	routes []string
}

func (f *fakeRecorder) RecordHTTP(method, route string, status int, _ float64) {
	f.routes = append(f.routes, fmt.Sprintf("%s %s %d", method, route, status))
}

func newTestServer(svc Service, limiter *RateLimiter) (*Server, *fakeRecorder) {
	rec := &fakeRecorder{}
	return New(Options{
		Service:   svc,
		Recorder:  rec,
		Gatherer:  prometheus.NewRegistry(),
		Logger:    zerolog.Nop(),
		RateLimit: limiter,
	}), rec
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestStart(t *testing.T) {
	svc := &fakeService{reply: &api.Reply{InterviewID: api.FromInt64(7), Response: "Hello Ada"}}
	s, rec := newTestServer(svc, nil)

	w := do(t, s.Handler(), http.MethodPost, api.PathStart, `{"name":"Ada","experience":"Go"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}
	if !strings.Contains(w.Body.String(), `"interview_id":7`) {
		t.Errorf("interview id is not numeric: %s", w.Body)
	}
	if svc.startReq.Name != "Ada" || svc.startReq.Experience != "Go" {
		t.Errorf("unexpected request %+v", svc.startReq)
	}
	if w.Header().Get(headerRequestID) == "" {
		t.Error("missing request id header")
	}
	if len(rec.routes) != 1 || rec.routes[0] != "POST /api/start 200" {
		t.Errorf("recorded %v", rec.routes)
	}
}

func TestChat_NumericID(t *testing.T) {
	svc := &fakeService{reply: &api.Reply{Response: "Next?"}}
	s, _ := newTestServer(svc, nil)

	w := do(t, s.Handler(), http.MethodPost, api.PathChat, `{"interview_id":12,"text":"an answer"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if svc.chatReq.InterviewID != api.FromInt64(12) || svc.chatReq.Text != "an answer" {
		t.Errorf("unexpected request %+v", svc.chatReq)
	}

	var reply api.Reply
	if err := json.Unmarshal(w.Body.Bytes(), &reply); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if reply.Response != "Next?" || reply.InterviewOver {
		t.Errorf("unexpected reply %+v", reply)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"invalid", fmt.Errorf("%w: text is required", interviewer.ErrInvalidInput), http.StatusBadRequest, "text is required"},
		{"not found", storage.ErrNotFound, http.StatusNotFound, "Interview not found"},
		{"finished", storage.ErrAlreadyFinished, http.StatusConflict, "Interview already finished"},
		{"speech", interviewer.ErrSpeech, http.StatusInternalServerError, "Could not generate speech"},
		{"other", errors.New("disk full"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(&fakeService{err: tt.err}, nil)
			w := do(t, s.Handler(), http.MethodPost, api.PathChat, `{"interview_id":1,"text":"x"}`)
			if w.Code != tt.code {
				t.Errorf("status = %d, want %d", w.Code, tt.code)
			}
			var body api.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !strings.Contains(body.Error, tt.msg) {
				t.Errorf("error = %q, want %q", body.Error, tt.msg)
			}
			if strings.Contains(body.Error, "disk full") {
				t.Error("internal error leaked to client")
			}
		})
	}
}

func TestInvalidJSON(t *testing.T) {
	s, _ := newTestServer(&fakeService{}, nil)
	for _, path := range []string{api.PathStart, api.PathChat, api.PathSpeak} {
		if w := do(t, s.Handler(), http.MethodPost, path, `{`); w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d", path, w.Code)
		}
	}
}

func TestSpeak(t *testing.T) {
	s, _ := newTestServer(&fakeService{audio: []byte("RIFF")}, nil)

	w := do(t, s.Handler(), http.MethodPost, api.PathSpeak, `{"text":"hello"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Header().Get("Content-Type") != "audio/wav" || w.Body.String() != "RIFF" {
		t.Errorf("unexpected response %q %q", w.Header().Get("Content-Type"), w.Body)
	}
}

func TestReport(t *testing.T) {
	s, _ := newTestServer(&fakeService{}, nil)

	w := do(t, s.Handler(), http.MethodGet, api.ReportPath(api.FromInt64(3)), "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Header().Get("Content-Disposition"); got != `attachment; filename="interview_report_3.txt"` {
		t.Errorf("Content-Disposition = %q", got)
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain") {
		t.Errorf("Content-Type = %q", w.Header().Get("Content-Type"))
	}

	s, _ = newTestServer(&fakeService{err: storage.ErrNotFound}, nil)
	if w := do(t, s.Handler(), http.MethodGet, api.ReportPath(api.FromInt64(9)), ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown report status = %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(&fakeService{}, nil)
	if w := do(t, s.Handler(), http.MethodGet, "/healthz", ""); w.Code != http.StatusOK {
		t.Errorf("healthy status = %d", w.Code)
	}

	s, _ = newTestServer(&fakeService{pingErr: errors.New("db down")}, nil)
	if w := do(t, s.Handler(), http.MethodGet, "/healthz", ""); w.Code != http.StatusServiceUnavailable {
		t.Errorf("unhealthy status = %d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(&fakeService{}, nil)
	if w := do(t, s.Handler(), http.MethodGet, "/metrics", ""); w.Code != http.StatusOK {
		t.Errorf("metrics status = %d", w.Code)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	svc := &fakeService{reply: &api.Reply{Response: "ok"}}
	s, _ := newTestServer(svc, NewRateLimiter(2, time.Minute))

	for i := 0; i < 2; i++ {
		if w := do(t, s.Handler(), http.MethodPost, api.PathChat, `{"interview_id":1,"text":"x"}`); w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, w.Code)
		}
	}
	if w := do(t, s.Handler(), http.MethodPost, api.PathChat, `{"interview_id":1,"text":"x"}`); w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", w.Code)
	}
	if w := do(t, s.Handler(), http.MethodGet, "/healthz", ""); w.Code != http.StatusOK {
		t.Errorf("health is rate limited: %d", w.Code)
	}
}
