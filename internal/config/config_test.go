package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadClientConfig_Defaults(t *testing.T) {
	clearEnv(t, "BACKEND_URL", "BACKEND_TIMEOUT", "REPORT_DIR", "LOG_FILE", "LOG_LEVEL", "LOG_FORMAT",
		"STT_PROVIDER", "STT_LANGUAGE", "WHISPER_API_KEY", "STT_SAMPLE_RATE_HZ", "SPEECH_MUTE")

	cfg, err := LoadClientConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BackendURL != "http://localhost:5000" {
		t.Errorf("expected default backend url, got %s", cfg.BackendURL)
	}
	if cfg.RequestTimeout != 120*time.Second {
		t.Errorf("expected 120s timeout, got %v", cfg.RequestTimeout)
	}
	if cfg.Speech.STTProvider != "none" {
		t.Errorf("expected STT provider 'none', got %s", cfg.Speech.STTProvider)
	}
	if cfg.Speech.EndOfSpeech != 1500*time.Millisecond {
		t.Errorf("expected 1500ms end of speech, got %v", cfg.Speech.EndOfSpeech)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected log level info, got %s", cfg.Log.Level)
	}
}

func TestLoadClientConfig_WhisperNeedsKey(t *testing.T) {
	clearEnv(t, "WHISPER_API_KEY")
	t.Setenv("STT_PROVIDER", "whisper")

	if _, err := LoadClientConfig(); err == nil {
		t.Fatal("expected error without WHISPER_API_KEY")
	}

	t.Setenv("WHISPER_API_KEY", "sk-test")
	cfg, err := LoadClientConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Speech.WhisperAPIKey != "sk-test" {
		t.Errorf("expected key to be loaded, got %q", cfg.Speech.WhisperAPIKey)
	}
}

func TestClientConfig_Validate(t *testing.T) {
	base := func() ClientConfig {
		return ClientConfig{
			BackendURL:     "http://localhost:5000",
			RequestTimeout: time.Second,
			Log:            LogConfig{Level: "info", Format: "json"},
			Speech: SpeechConfig{
				STTProvider:    "none",
				SampleRateHz:   16000,
				SilenceTimeout: time.Second,
				EndOfSpeech:    time.Second,
				MaxUtterance:   time.Second,
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *ClientConfig)
		wantErr bool
	}{
		{"valid", func(c *ClientConfig) {}, false},
		{"bad url", func(c *ClientConfig) { c.BackendURL = "localhost" }, true},
		{"bad provider", func(c *ClientConfig) { c.Speech.STTProvider = "azure" }, true},
		{"bad sample rate", func(c *ClientConfig) { c.Speech.SampleRateHz = 100 }, true},
		{"sample rate the vad cannot use", func(c *ClientConfig) { c.Speech.SampleRateHz = 44100 }, true},
		{"48 kHz", func(c *ClientConfig) { c.Speech.SampleRateHz = 48000 }, false},
		{"bad log format", func(c *ClientConfig) { c.Log.Format = "xml" }, true},
		{"google", func(c *ClientConfig) { c.Speech.STTProvider = "google" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("wantErr=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadServerConfig_Defaults(t *testing.T) {
	clearEnv(t, "APP_ENV", "PORT", "DATABASE_URL", "LOCAL_AI_URL", "LOCAL_AI_TTS_URL", "OPENAI_MODEL",
		"KAFKA_BROKERS", "RATE_LIMIT_ENABLED", "RATE_LIMIT_REQUESTS", "LOG_FORMAT")

	cfg, err := LoadServerConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GetServerAddr() != ":5000" {
		t.Errorf("expected :5000, got %s", cfg.GetServerAddr())
	}
	if cfg.UsesPostgres() {
		t.Error("expected file storage without DATABASE_URL")
	}
	if len(cfg.Kafka.Brokers) != 0 {
		t.Errorf("expected no kafka brokers, got %v", cfg.Kafka.Brokers)
	}
	if cfg.OpenAI.ChatURL() != "http://local-ai:8080/v1/chat/completions" {
		t.Errorf("unexpected chat url %s", cfg.OpenAI.ChatURL())
	}
	if cfg.OpenAI.SpeechURL() != "http://local-ai:8080/tts" {
		t.Errorf("unexpected speech url %s", cfg.OpenAI.SpeechURL())
	}
}

func TestLoadServerConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("DATABASE_URL", "postgres://u:p@db/interviews")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadServerConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != 8081 {
		t.Errorf("expected port 8081, got %d", cfg.Port)
	}
	if !cfg.UsesPostgres() {
		t.Error("expected postgres storage")
	}
	if len(cfg.Kafka.Brokers) != 2 {
		t.Errorf("expected 2 brokers, got %v", cfg.Kafka.Brokers)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected debug level, got %s", cfg.Log.Level)
	}
}

func TestLoadServerConfig_InvalidPort(t *testing.T) {
	t.Setenv("PORT", "70000")
	if _, err := LoadServerConfig(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestLoad_InterviewYAML(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config", "interview.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GetMaxQuestions() != 10 {
		t.Errorf("expected 10 questions, got %d", cfg.GetMaxQuestions())
	}
	if !strings.Contains(cfg.Prompts.FirstQuestion, "{name}") {
		t.Errorf("expected {name} placeholder in first question prompt")
	}
}

func TestParse_PartialKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("interview_config:\n  max_questions: 3\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GetMaxQuestions() != 3 {
		t.Errorf("expected 3 questions, got %d", cfg.GetMaxQuestions())
	}
	if cfg.Messages.Completed != Default().Messages.Completed {
		t.Errorf("expected default completion message, got %q", cfg.Messages.Completed)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero questions", "interview_config:\n  max_questions: 0\n"},
		{"bad temperature", "interview_config:\n  question_temperature: 3\n"},
		{"empty prompt", "prompts:\n  next_question: \"\"\n"},
		{"not yaml", "interview_config: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GetMaxQuestions() != 10 {
		t.Errorf("expected default config, got %d questions", cfg.GetMaxQuestions())
	}
}
