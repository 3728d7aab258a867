package storage

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("interview not found")
	ErrAlreadyFinished = errors.New("interview already finished")
	ErrNoQuestion      = errors.New("interview has no question to answer")
)

// Interview is one candidate session.
type Interview struct {
	ID              int64     `json:"interview_id"`
	UserName        string    `json:"user_name"`
	Date            time.Time `json:"interview_date"`
	Experience      string    `json:"programming_experience"`
	FinalEvaluation *string   `json:"final_evaluation"`
}

// Finished reports whether the final evaluation has been recorded.
func (i *Interview) Finished() bool {
	return i.FinalEvaluation != nil
}

// QuestionAnswer is one asked question and the candidate's answer.
type QuestionAnswer struct {
	ID          int64     `json:"qa_id"`
	InterviewID int64     `json:"interview_id"`
	Question    string    `json:"question_text"`
	Answer      *string   `json:"answer_text"`
	Evaluation  *string   `json:"evaluation"`
	AskedAt     time.Time `json:"question_timestamp"`
}

// Store persists interviews and their questions. Questions are returned
// in the order they were asked.
type Store interface {
	// CreateInterview inserts the interview together with its first question.
	CreateInterview(ctx context.Context, userName, experience, firstQuestion string) (*Interview, error)
	GetInterview(ctx context.Context, id int64) (*Interview, error)
	ListQuestions(ctx context.Context, interviewID int64) ([]QuestionAnswer, error)
	// AnswerLatest stores the answer on the most recent question.
	AnswerLatest(ctx context.Context, interviewID int64, answer string) error
	AddQuestion(ctx context.Context, interviewID int64, question string) (*QuestionAnswer, error)
	// Finish records the final evaluation. It fails with ErrAlreadyFinished
	// if one is already set.
	Finish(ctx context.Context, interviewID int64, evaluation string) error
	Ping(ctx context.Context) error
	Close() error
}
