package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default returns the built-in interview configuration.
func Default() *Config {
	return &Config{
		InterviewConfig: InterviewConfig{
			MaxQuestions:      10,
			DurationMinutes:   20,
			QuestionTemp:      0.7,
			EvaluationTemp:    0.7,
			HistoryAnswerHint: "No answer provided.",
		},
		Prompts: Prompts{
			FirstQuestion: "You are an AI interviewer. The candidate's name is {name} and their experience is: '{experience}'. " +
				"Start the interview by greeting them and asking your first technical question based on their stated experience. " +
				"Keep the question moderately difficult.",
			NextQuestion: "You are an AI interviewer. Continue the interview based on the history. " +
				"Ask the next logical question. Vary the difficulty. Do not repeat questions.",
			FinalEvaluation: "You are an expert technical interviewer. Based on the following Q&A history, " +
				"provide a concise final evaluation of the candidate's performance. Mention strengths and weaknesses.",
		},
		Messages: Messages{
			Completed: "Thank you for your time. The interview is now complete.",
			LLMError:  "Sorry, I encountered an error and cannot respond right now.",
		},
	}
}

// Load reads the interview configuration from a YAML file. Fields the
// file leaves out keep their defaults.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return Parse(data)
}

// LoadOrDefault is Load, except a missing file yields Default.
func LoadOrDefault(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(filename)
}

// Parse decodes and validates YAML configuration.
func Parse(data []byte) (*Config, error) {
	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid interview config: %w", err)
	}

	return config, nil
}

// validateConfig checks the interview configuration.
func validateConfig(config *Config) error {
	if config.InterviewConfig.MaxQuestions <= 0 {
		return fmt.Errorf("max_questions must be greater than 0")
	}

	if config.InterviewConfig.DurationMinutes < 0 {
		return fmt.Errorf("duration_minutes cannot be negative")
	}

	for name, temp := range map[string]float64{
		"question_temperature":   config.InterviewConfig.QuestionTemp,
		"evaluation_temperature": config.InterviewConfig.EvaluationTemp,
	} {
		if temp < 0 || temp > 2 {
			return fmt.Errorf("%s must be between 0 and 2", name)
		}
	}

	if config.Prompts.FirstQuestion == "" {
		return fmt.Errorf("prompts.first_question must not be empty")
	}

	if config.Prompts.NextQuestion == "" {
		return fmt.Errorf("prompts.next_question must not be empty")
	}

	if config.Prompts.FinalEvaluation == "" {
		return fmt.Errorf("prompts.final_evaluation must not be empty")
	}

	if config.Messages.Completed == "" || config.Messages.LLMError == "" {
		return fmt.Errorf("messages.completed and messages.llm_error must not be empty")
	}

	return nil
}
