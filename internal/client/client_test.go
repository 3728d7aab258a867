package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ai-interviewer/internal/api"
)

func TestClient_Start(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/start" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Session-ID") == "" {
			t.Error("expected X-Session-ID header")
		}
		var req api.StartRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.Name != "Ada" || req.Experience != "5 years" {
			t.Errorf("unexpected body %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"interview_id":42,"response":"Tell me about recursion.","interview_over":false}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	reply, err := c.Start(context.Background(), api.StartRequest{Name: "Ada", Experience: "5 years"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.InterviewID != api.FromInt64(42) || reply.Response != "Tell me about recursion." || reply.InterviewOver {
		t.Errorf("unexpected reply %+v", reply)
	}
}

func TestClient_ChatSendsNumericID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if id, ok := raw["interview_id"].(float64); !ok || id != 42 {
			t.Errorf("expected numeric interview_id 42, got %#v", raw["interview_id"])
		}
		w.Write([]byte(`{"response":"Good.","interview_over":true,"final_evaluation":"Pass"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	reply, err := c.Chat(context.Background(), api.ChatRequest{InterviewID: api.FromInt64(42), Text: "It's a function calling itself."})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reply.InterviewOver || reply.FinalEvaluation != "Pass" {
		t.Errorf("unexpected reply %+v", reply)
	}
}

func TestClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"An internal error occurred"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	_, err := c.Chat(context.Background(), api.ChatRequest{InterviewID: api.FromInt64(1), Text: "x"})

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if httpErr.StatusCode != 500 || httpErr.Message != "An internal error occurred" {
		t.Errorf("unexpected error %+v", httpErr)
	}
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := New(url, time.Second)
	if _, err := c.Start(context.Background(), api.StartRequest{Name: "a", Experience: "b"}); err == nil {
		t.Fatal("expected error from closed server")
	}
}

func TestClient_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	if _, err := c.Start(context.Background(), api.StartRequest{Name: "a", Experience: "b"}); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestClient_Synthesize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/speak" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req api.SpeakRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Text != "hello" {
			t.Errorf("unexpected text %q", req.Text)
		}
		w.Header().Set("Content-Type", "audio/wav")
		w.Write([]byte("RIFFdata"))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	audio, err := c.Synthesize(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(audio) != "RIFFdata" {
		t.Errorf("unexpected audio %q", audio)
	}
}

func TestClient_SynthesizeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Could not generate speech"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	if _, err := c.Synthesize(context.Background(), "hello"); err == nil {
		t.Fatal("expected error")
	}
}

func TestClient_OpenReport(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "text/plain")
		w.Header().Set("Content-Disposition", `attachment; filename="interview_report_42.txt"`)
		w.Write([]byte("Interview Report\n"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	c := New(srv.URL, time.Second, WithReportDir(dir))
	path, err := c.OpenReport(context.Background(), api.FromInt64(42))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/api/report/42" {
		t.Errorf("expected /api/report/42, got %s", gotPath)
	}
	if path != filepath.Join(dir, "interview_report_42.txt") {
		t.Errorf("unexpected path %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if string(data) != "Interview Report\n" {
		t.Errorf("unexpected report %q", data)
	}
	if c.ReportURL(api.FromInt64(42)) != srv.URL+"/api/report/42" {
		t.Errorf("unexpected report url %s", c.ReportURL(api.FromInt64(42)))
	}
}

func TestClient_OpenReportIgnoresPathInFilename(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="../../etc/evil.txt"`)
		w.Write([]byte("x"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	c := New(srv.URL, time.Second, WithReportDir(dir))
	path, err := c.OpenReport(context.Background(), api.FromInt64(7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("report escaped the report directory: %s", path)
	}
}

func TestClient_StringIDRoundTrip(t *testing.T) {
	var chatBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case api.PathStart:
			w.Write([]byte(`{"interview_id":"007","response":"Hello","interview_over":false}`))
		case api.PathChat:
			data, _ := io.ReadAll(r.Body)
			chatBody = string(data)
			w.Write([]byte(`{"response":"Next?","interview_over":false}`))
		}
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	reply, err := c.Start(context.Background(), api.StartRequest{Name: "Ada", Experience: "Go"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := c.Chat(context.Background(), api.ChatRequest{InterviewID: reply.InterviewID, Text: "x"}); err != nil {
		t.Fatalf("chat: %v", err)
	}
	if chatBody != `{"interview_id":"007","text":"x"}` {
		t.Errorf("unexpected chat body %s", chatBody)
	}
}

func TestClient_OpenReportEscapesID(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Write([]byte("x"))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, WithReportDir(t.TempDir()))
	path, err := c.OpenReport(context.Background(), api.FromString("a/b?c"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/api/report/a%2Fb%3Fc" {
		t.Errorf("unexpected path %s", gotPath)
	}
	if filepath.Base(path) != "interview_report_a_b?c.txt" {
		t.Errorf("unexpected file %s", path)
	}
}
