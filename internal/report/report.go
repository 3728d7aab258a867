// Package report renders the plain-text interview report.
package report

import (
	"fmt"
	"strings"

	"ai-interviewer/internal/storage"
)

const (
	DateLayout        = "2006-01-02 15:04:05 MST"
	MissingAnswerText = "No answer provided."
	ContentType       = "text/plain; charset=utf-8"
)

// Filename is the download name of the report for an interview.
func Filename(id int64) string {
	return fmt.Sprintf("interview_report_%d.txt", id)
}

// Build renders the report. An unfinished interview gets an empty
// evaluation section.
func Build(iv *storage.Interview, questions []storage.QuestionAnswer) string {
	var b strings.Builder

	b.WriteString("Interview Report\n")
	b.WriteString(strings.Repeat("=", 20) + "\n")
	fmt.Fprintf(&b, "Candidate: %s\n", iv.UserName)
	fmt.Fprintf(&b, "Date: %s\n", iv.Date.Format(DateLayout))
	fmt.Fprintf(&b, "Stated Experience: %s\n\n", iv.Experience)
	b.WriteString("--- Transcript ---\n\n")

	for i, qa := range questions {
		answer := MissingAnswerText
		if qa.Answer != nil && *qa.Answer != "" {
			answer = *qa.Answer
		}
		fmt.Fprintf(&b, "Q%d: %s\n", i+1, qa.Question)
		fmt.Fprintf(&b, "A%d: %s\n\n", i+1, answer)
	}

	evaluation := ""
	if iv.FinalEvaluation != nil {
		evaluation = *iv.FinalEvaluation
	}
	fmt.Fprintf(&b, "--- Final Evaluation ---\n%s\n", evaluation)
	return b.String()
}
