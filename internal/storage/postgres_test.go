package storage

import (
	"context"
	"errors"
	"os"
	"testing"
)

// Runs only against a real database: TEST_DATABASE_URL=postgres://...
func TestPostgres_Lifecycle(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	p, err := Connect(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer p.Close()
	if err := p.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	iv, err := p.CreateInterview(ctx, "Ada", "5 years", "First?")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	t.Cleanup(func() {
		p.db.Exec(context.Background(), `DELETE FROM interviews WHERE interview_id = $1`, iv.ID)
	})

	if err := p.AnswerLatest(ctx, iv.ID, "Answer"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if _, err := p.AddQuestion(ctx, iv.ID, "Second?"); err != nil {
		t.Fatalf("add: %v", err)
	}
	qs, err := p.ListQuestions(ctx, iv.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(qs) != 2 || qs[0].Answer == nil || qs[1].Answer != nil {
		t.Errorf("unexpected questions %+v", qs)
	}

	if err := p.Finish(ctx, iv.ID, "Pass"); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if err := p.Finish(ctx, iv.ID, "Again"); !errors.Is(err, ErrAlreadyFinished) {
		t.Errorf("expected ErrAlreadyFinished, got %v", err)
	}
	if _, err := p.AddQuestion(ctx, -1, "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := p.GetInterview(ctx, -1); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
