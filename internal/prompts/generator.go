// Package prompts builds the chat messages sent to the LLM.
package prompts

import (
	"strings"

	"ai-interviewer/internal/config"
)

const (
	RoleSystem    = "system"
	RoleAssistant = "assistant"
	RoleUser      = "user"
)

// Message is one chat completion message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Exchange is one asked question and its answer, if any.
type Exchange struct {
	Question string
	Answer   string
}

// Generator fills the configured prompt templates.
type Generator struct {
	prompts       config.Prompts
	missingAnswer string
}

func NewGenerator(cfg *config.Config) *Generator {
	return &Generator{
		prompts:       cfg.Prompts,
		missingAnswer: cfg.GetMissingAnswerText(),
	}
}

// FirstQuestion asks for a greeting and the opening question.
func (g *Generator) FirstQuestion(name, experience string) []Message {
	prompt := strings.NewReplacer("{name}", name, "{experience}", experience).Replace(g.prompts.FirstQuestion)
	return []Message{{Role: RoleSystem, Content: prompt}}
}

// NextQuestion replays the history and asks for the next question.
// Unanswered questions contribute no user message.
func (g *Generator) NextQuestion(history []Exchange) []Message {
	messages := []Message{{Role: RoleSystem, Content: g.prompts.NextQuestion}}
	for _, ex := range history {
		messages = append(messages, Message{Role: RoleAssistant, Content: ex.Question})
		if ex.Answer != "" {
			messages = append(messages, Message{Role: RoleUser, Content: ex.Answer})
		}
	}
	return messages
}

// FinalEvaluation replays the whole history, with a placeholder for
// every missing answer, and asks for the verdict.
func (g *Generator) FinalEvaluation(history []Exchange) []Message {
	messages := []Message{{Role: RoleSystem, Content: g.prompts.FinalEvaluation}}
	for _, ex := range history {
		answer := ex.Answer
		if answer == "" {
			answer = g.missingAnswer
		}
		messages = append(messages,
			Message{Role: RoleAssistant, Content: ex.Question},
			Message{Role: RoleUser, Content: answer},
		)
	}
	return messages
}
