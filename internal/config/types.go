package config

import "time"

// Config is the interview behaviour loaded from YAML.
type Config struct {
	InterviewConfig InterviewConfig `yaml:"interview_config"`
	Prompts         Prompts         `yaml:"prompts"`
	Messages        Messages        `yaml:"messages"`
}

// InterviewConfig holds the interview limits.
type InterviewConfig struct {
	MaxQuestions      int     `yaml:"max_questions"`
	DurationMinutes   int     `yaml:"duration_minutes"`
	QuestionTemp      float64 `yaml:"question_temperature"`
	EvaluationTemp    float64 `yaml:"evaluation_temperature"`
	HistoryAnswerHint string  `yaml:"missing_answer_text"`
}

// Prompts are the system prompts sent to the LLM. The first question
// prompt is a template with {name} and {experience} placeholders.
type Prompts struct {
	FirstQuestion   string `yaml:"first_question"`
	NextQuestion    string `yaml:"next_question"`
	FinalEvaluation string `yaml:"final_evaluation"`
}

// Messages are fixed texts the backend replies with.
type Messages struct {
	Completed string `yaml:"completed"`
	LLMError  string `yaml:"llm_error"`
}

func (c *Config) GetMaxQuestions() int {
	return c.InterviewConfig.MaxQuestions
}

// GetDuration is the time budget of one interview; zero means unlimited.
func (c *Config) GetDuration() time.Duration {
	return time.Duration(c.InterviewConfig.DurationMinutes) * time.Minute
}

func (c *Config) GetMissingAnswerText() string {
	return c.InterviewConfig.HistoryAnswerHint
}
