package speech

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWhisper_Recognize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", got)
		}
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.FormValue("model") != "whisper-1" || r.FormValue("language") != "en" {
			t.Errorf("unexpected fields model=%q language=%q", r.FormValue("model"), r.FormValue("language"))
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if hdr.Filename != "answer.flac" || !bytes.HasPrefix(data, []byte("fLaC")) {
			t.Errorf("expected a flac upload, got %s", hdr.Filename)
		}
		w.Write([]byte(`{"text":" A function that calls itself. "}`))
	}))
	defer srv.Close()

	wh := NewWhisper(srv.URL, "whisper-1", "sk-test", "en-US")
	text, err := wh.Recognize(context.Background(), Utterance{SampleRate: 16000, Samples: tone(1600, 3000)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "A function that calls itself." {
		t.Errorf("unexpected text %q", text)
	}
}

func TestWhisper_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"bad key"}`))
	}))
	defer srv.Close()

	wh := NewWhisper(srv.URL, "whisper-1", "bad", "en")
	if _, err := wh.Recognize(context.Background(), Utterance{SampleRate: 16000, Samples: tone(160, 3000)}); err == nil {
		t.Error("expected error")
	}
}

func TestWhisperLanguage(t *testing.T) {
	tests := map[string]string{"en-US": "en", "pt_BR": "pt", "DE": "de", "": ""}
	for in, want := range tests {
		if got := whisperLanguage(in); got != want {
			t.Errorf("whisperLanguage(%q) = %q, want %q", in, got, want)
		}
	}
}

var errFull = errors.New("disk full")

// failingWriter accepts ok writes and fails every later one.
type failingWriter struct {
	ok int
}

func (f *failingWriter) Write(p []byte) (int, error) {
	if f.ok == 0 {
		return 0, errFull
	}
	f.ok--
	return len(p), nil
}

func TestWhisper_FormFieldErrorsAreReturned(t *testing.T) {
	wh := NewWhisper("http://unused", "whisper-1", "", "en")

	// part header and audio go through, the model field does not
	_, err := wh.writeForm(&failingWriter{ok: 2}, []byte("fLaC"))
	if !errors.Is(err, errFull) {
		t.Fatalf("expected the write error, got %v", err)
	}
	if !strings.Contains(err.Error(), "model") {
		t.Errorf("expected the failing field to be named, got %v", err)
	}

	contentType, err := wh.writeForm(io.Discard, []byte("fLaC"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(contentType, "multipart/form-data; boundary=") {
		t.Errorf("unexpected content type %q", contentType)
	}
}
