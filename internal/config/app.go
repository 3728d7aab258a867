package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// LogConfig is shared by both binaries.
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// ClientConfig configures the interactive interview client.
type ClientConfig struct {
	BackendURL     string        `envconfig:"BACKEND_URL" default:"http://localhost:5000"`
	RequestTimeout time.Duration `envconfig:"BACKEND_TIMEOUT" default:"120s"`
	ReportDir      string        `envconfig:"REPORT_DIR" default:"."`
	LogFile        string        `envconfig:"LOG_FILE" default:"ai-interviewer.log"`
	Log            LogConfig
	Speech         SpeechConfig
}

// SpeechConfig selects the speech input recognizer and audio output.
type SpeechConfig struct {
	// STTProvider is "whisper", "google" or "none".
	STTProvider    string        `envconfig:"STT_PROVIDER" default:"none"`
	Language       string        `envconfig:"STT_LANGUAGE" default:"en-US"`
	WhisperURL     string        `envconfig:"WHISPER_URL" default:"https://api.openai.com/v1/audio/transcriptions"`
	WhisperModel   string        `envconfig:"WHISPER_MODEL" default:"whisper-1"`
	WhisperAPIKey  string        `envconfig:"WHISPER_API_KEY"`
	SampleRateHz   int           `envconfig:"STT_SAMPLE_RATE_HZ" default:"16000"`
	SilenceTimeout time.Duration `envconfig:"STT_SILENCE_TIMEOUT" default:"8s"`
	EndOfSpeech    time.Duration `envconfig:"STT_END_OF_SPEECH" default:"1500ms"`
	MaxUtterance   time.Duration `envconfig:"STT_MAX_UTTERANCE" default:"60s"`
	Mute           bool          `envconfig:"SPEECH_MUTE" default:"false"`
}

// ServerConfig configures the interview backend.
type ServerConfig struct {
	Env             string        `envconfig:"APP_ENV" default:"development"`
	Port            int           `envconfig:"PORT" default:"5000"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"180s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
	InterviewConfig string        `envconfig:"INTERVIEW_CONFIG" default:"config/interview.yaml"`
	DatabaseURL     string        `envconfig:"DATABASE_URL"`
	ResultsDir      string        `envconfig:"RESULTS_DIR" default:"results"`
	TTSModel        string        `envconfig:"TTS_MODEL" default:"tts-1"`
	Log             LogConfig
	OpenAI          OpenAIConfig
	RateLimit       RateLimitConfig
	Kafka           KafkaConfig
}

// RateLimitConfig bounds requests per client.
type RateLimitConfig struct {
	Enabled  bool          `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	Requests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"30"`
	Window   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
}

// KafkaConfig enables the interview event stream.
type KafkaConfig struct {
	Brokers []string `envconfig:"KAFKA_BROKERS"`
	Topic   string   `envconfig:"KAFKA_TOPIC" default:"interview-events"`
}

// LoadClientConfig reads the client configuration from the environment.
func LoadClientConfig() (*ClientConfig, error) {
	var cfg ClientConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// LoadServerConfig reads the server configuration from the environment.
func LoadServerConfig() (*ServerConfig, error) {
	var cfg ServerConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *ClientConfig) Validate() error {
	u, err := url.Parse(c.BackendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid BACKEND_URL: %q", c.BackendURL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("BACKEND_TIMEOUT must be positive")
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	return c.Speech.Validate()
}

func (c *SpeechConfig) Validate() error {
	switch c.STTProvider {
	case "none", "google":
	case "whisper":
		if c.WhisperAPIKey == "" {
			return fmt.Errorf("WHISPER_API_KEY is required for the whisper provider")
		}
	default:
		return fmt.Errorf("invalid STT_PROVIDER: %s (must be one of: whisper, google, none)", c.STTProvider)
	}
	switch c.SampleRateHz {
	case 8000, 16000, 32000, 48000:
	default:
		return fmt.Errorf("invalid STT_SAMPLE_RATE_HZ: %d (must be one of: 8000, 16000, 32000, 48000)", c.SampleRateHz)
	}
	if c.SilenceTimeout <= 0 || c.EndOfSpeech <= 0 || c.MaxUtterance <= 0 {
		return fmt.Errorf("speech timeouts must be positive")
	}
	return nil
}

func (c *ServerConfig) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"production":  true,
		"test":        true,
	}
	if !validEnvs[c.Env] {
		return fmt.Errorf("invalid environment: %s (must be one of: development, production, test)", c.Env)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d (must be between 1 and 65535)", c.Port)
	}
	if c.RateLimit.Enabled && (c.RateLimit.Requests < 1 || c.RateLimit.Window <= 0) {
		return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	return c.OpenAI.ValidateConfig()
}

func (c *LogConfig) Validate() error {
	switch strings.ToLower(c.Format) {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("invalid LOG_FORMAT: %s (must be json or console)", c.Format)
	}
}

func (c *ServerConfig) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// UsesPostgres reports whether interviews go to Postgres rather than files.
func (c *ServerConfig) UsesPostgres() bool {
	return c.DatabaseURL != ""
}
