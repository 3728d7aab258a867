package logging

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	logger := WithInterview(WithComponent(New(&buf, "json"), "session"), "42")

	logger.Info().Msg("started")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected json output, got %q: %v", buf.String(), err)
	}
	if entry["component"] != "session" {
		t.Errorf("expected component=session, got %v", entry["component"])
	}
	if entry["interviewId"] != "42" {
		t.Errorf("expected interviewId=42, got %v", entry["interviewId"])
	}
	if entry["message"] != "started" {
		t.Errorf("expected message=started, got %v", entry["message"])
	}
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "console")
	logger.Info().Msg("hello")

	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("expected message in console output, got %q", buf.String())
	}
	if strings.HasPrefix(buf.String(), "{") {
		t.Errorf("expected non-json console output, got %q", buf.String())
	}
}

func TestInit_FileAndLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	path := filepath.Join(t.TempDir(), "client.log")
	_, closer, err := Init(Config{Level: "warn", Format: "json", File: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer closer.Close()

	if zerolog.GlobalLevel() != zerolog.WarnLevel {
		t.Errorf("expected warn level, got %v", zerolog.GlobalLevel())
	}
}

func TestInit_UnknownLevelFallsBackToInfo(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	_, closer, err := Init(Config{Level: "loud", Format: "json"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer closer.Close()

	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Errorf("expected info level, got %v", zerolog.GlobalLevel())
	}
}
