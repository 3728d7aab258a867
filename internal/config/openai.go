package config

import (
	"fmt"
	"strings"
	"time"
)

// OpenAIConfig points at an OpenAI-compatible API. LocalAI works as well,
// it just ignores the key.
type OpenAIConfig struct {
	BaseURL   string        `envconfig:"LOCAL_AI_URL" default:"http://local-ai:8080/v1"`
	TTSURL    string        `envconfig:"LOCAL_AI_TTS_URL"`
	APIKey    string        `envconfig:"OPENAI_API_KEY" default:"sk-local"`
	Model     string        `envconfig:"OPENAI_MODEL" default:"gpt-4"`
	MaxTokens int           `envconfig:"OPENAI_MAX_TOKENS" default:"1024"`
	Timeout   time.Duration `envconfig:"OPENAI_TIMEOUT" default:"120s"`
}

// ValidateConfig checks the LLM settings.
func (c *OpenAIConfig) ValidateConfig() error {
	if c.BaseURL == "" {
		return fmt.Errorf("LOCAL_AI_URL is required")
	}

	if c.MaxTokens <= 0 {
		return fmt.Errorf("OPENAI_MAX_TOKENS must be positive")
	}

	return nil
}

// ChatURL is the chat completions endpoint.
func (c *OpenAIConfig) ChatURL() string {
	return strings.TrimRight(c.BaseURL, "/") + "/chat/completions"
}

// SpeechURL is the text-to-speech endpoint. LocalAI serves it at the
// root of the API host, next to /v1.
func (c *OpenAIConfig) SpeechURL() string {
	if c.TTSURL != "" {
		return c.TTSURL
	}
	base := strings.TrimRight(c.BaseURL, "/")
	base = strings.TrimSuffix(base, "/v1")
	return base + "/tts"
}

// GetModelInfo describes the model in use, for startup logs.
func (c *OpenAIConfig) GetModelInfo() map[string]interface{} {
	return map[string]interface{}{
		"base_url":   c.BaseURL,
		"model":      c.Model,
		"max_tokens": c.MaxTokens,
	}
}
