package storage

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

const foreignKeyViolation = "23503"

// Postgres is the Store backed by the interviews/questions_answers schema.
type Postgres struct {
	db *pgxpool.Pool
}

// Connect opens a pool for dbURL.
func Connect(ctx context.Context, dbURL string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 20
	cfg.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return &Postgres{db: pool}, nil
}

// Migrate applies the schema. It is idempotent.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// CreateInterview inserts the interview and its first question in one transaction.
func (p *Postgres) CreateInterview(ctx context.Context, userName, experience, firstQuestion string) (*Interview, error) {
	var iv Interview
	err := p.execTx(ctx, func(tx pgx.Tx) error {
		const q = `
INSERT INTO interviews (user_name, programming_experience)
VALUES ($1, $2) RETURNING interview_id, user_name, interview_date, programming_experience, final_evaluation
`
		if err := tx.QueryRow(ctx, q, userName, experience).Scan(
			&iv.ID, &iv.UserName, &iv.Date, &iv.Experience, &iv.FinalEvaluation,
		); err != nil {
			return fmt.Errorf("insert interview: %w", err)
		}

		const qa = `INSERT INTO questions_answers (interview_id, question_text) VALUES ($1, $2)`
		if _, err := tx.Exec(ctx, qa, iv.ID, firstQuestion); err != nil {
			return fmt.Errorf("insert first question: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &iv, nil
}

// GetInterview returns ErrNotFound for unknown ids.
func (p *Postgres) GetInterview(ctx context.Context, id int64) (*Interview, error) {
	const q = `
SELECT interview_id, user_name, interview_date, programming_experience, final_evaluation
FROM interviews WHERE interview_id = $1
`
	var iv Interview
	err := p.db.QueryRow(ctx, q, id).Scan(&iv.ID, &iv.UserName, &iv.Date, &iv.Experience, &iv.FinalEvaluation)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get interview: %w", err)
	}
	return &iv, nil
}

// ListQuestions returns the questions in the order they were asked.
func (p *Postgres) ListQuestions(ctx context.Context, interviewID int64) ([]QuestionAnswer, error) {
	if _, err := p.GetInterview(ctx, interviewID); err != nil {
		return nil, err
	}

	const q = `
SELECT qa_id, interview_id, question_text, answer_text, evaluation, question_timestamp
FROM questions_answers WHERE interview_id = $1 ORDER BY qa_id
`
	rows, err := p.db.Query(ctx, q, interviewID)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var out []QuestionAnswer
	for rows.Next() {
		var qa QuestionAnswer
		if err := rows.Scan(&qa.ID, &qa.InterviewID, &qa.Question, &qa.Answer, &qa.Evaluation, &qa.AskedAt); err != nil {
			return nil, fmt.Errorf("scan question row: %w", err)
		}
		out = append(out, qa)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}
	return out, nil
}

// AnswerLatest stores answer on the newest question.
func (p *Postgres) AnswerLatest(ctx context.Context, interviewID int64, answer string) error {
	const q = `
UPDATE questions_answers SET answer_text = $1
WHERE qa_id = (SELECT MAX(qa_id) FROM questions_answers WHERE interview_id = $2)
`
	tag, err := p.db.Exec(ctx, q, answer, interviewID)
	if err != nil {
		return fmt.Errorf("update answer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := p.GetInterview(ctx, interviewID); err != nil {
			return err
		}
		return ErrNoQuestion
	}
	return nil
}

func (p *Postgres) AddQuestion(ctx context.Context, interviewID int64, question string) (*QuestionAnswer, error) {
	const q = `
INSERT INTO questions_answers (interview_id, question_text) VALUES ($1, $2)
RETURNING qa_id, interview_id, question_text, answer_text, evaluation, question_timestamp
`
	var qa QuestionAnswer
	err := p.db.QueryRow(ctx, q, interviewID, question).Scan(
		&qa.ID, &qa.InterviewID, &qa.Question, &qa.Answer, &qa.Evaluation, &qa.AskedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("insert question: %w", err)
	}
	return &qa, nil
}

// Finish records the final evaluation.
func (p *Postgres) Finish(ctx context.Context, interviewID int64, evaluation string) error {
	const q = `
UPDATE interviews SET final_evaluation = $1
WHERE interview_id = $2 AND final_evaluation IS NULL
`
	tag, err := p.db.Exec(ctx, q, evaluation, interviewID)
	if err != nil {
		return fmt.Errorf("finish interview: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := p.GetInterview(ctx, interviewID); err != nil {
			return err
		}
		return ErrAlreadyFinished
	}
	return nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.Ping(ctx)
}

// Close releases the pool.
func (p *Postgres) Close() error {
	p.db.Close()
	return nil
}

func (p *Postgres) execTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
