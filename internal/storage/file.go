package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// record is the on-disk layout of one interview.
type record struct {
	Interview Interview        `json:"interview"`
	Questions []QuestionAnswer `json:"questions"`
}

// FileStore keeps every interview in results/interview_{id}.json. It is
// meant for single-process deployments without a database.
type FileStore struct {
	dir string

	mu     sync.Mutex
	nextID int64
	nextQA int64
	now    func() time.Time
}

// NewFileStore opens (and creates) the results directory and continues
// numbering after the highest interview id found there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", dir, err)
	}
	s := &FileStore{dir: dir, nextID: 1, nextQA: 1, now: time.Now}

	ids, err := s.listIDs()
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if id >= s.nextID {
			s.nextID = id + 1
		}
		rec, err := s.load(id)
		if err != nil {
			return nil, err
		}
		for _, qa := range rec.Questions {
			if qa.ID >= s.nextQA {
				s.nextQA = qa.ID + 1
			}
		}
	}
	return s, nil
}

func (s *FileStore) path(id int64) string {
	return filepath.Join(s.dir, fmt.Sprintf("interview_%d.json", id))
}

func (s *FileStore) CreateInterview(_ context.Context, userName, experience, firstQuestion string) (*Interview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	rec := &record{
		Interview: Interview{
			ID:         s.nextID,
			UserName:   userName,
			Date:       now,
			Experience: experience,
		},
	}
	rec.Questions = append(rec.Questions, QuestionAnswer{
		ID:          s.nextQA,
		InterviewID: s.nextID,
		Question:    firstQuestion,
		AskedAt:     now,
	})

	if err := s.save(rec); err != nil {
		return nil, err
	}
	s.nextID++
	s.nextQA++
	out := rec.Interview
	return &out, nil
}

func (s *FileStore) GetInterview(_ context.Context, id int64) (*Interview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.load(id)
	if err != nil {
		return nil, err
	}
	return &rec.Interview, nil
}

func (s *FileStore) ListQuestions(_ context.Context, interviewID int64) ([]QuestionAnswer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.load(interviewID)
	if err != nil {
		return nil, err
	}
	return rec.Questions, nil
}

func (s *FileStore) AnswerLatest(_ context.Context, interviewID int64, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.load(interviewID)
	if err != nil {
		return err
	}
	if len(rec.Questions) == 0 {
		return ErrNoQuestion
	}
	rec.Questions[len(rec.Questions)-1].Answer = &answer
	return s.save(rec)
}

func (s *FileStore) AddQuestion(_ context.Context, interviewID int64, question string) (*QuestionAnswer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.load(interviewID)
	if err != nil {
		return nil, err
	}
	qa := QuestionAnswer{
		ID:          s.nextQA,
		InterviewID: interviewID,
		Question:    question,
		AskedAt:     s.now().UTC(),
	}
	rec.Questions = append(rec.Questions, qa)
	if err := s.save(rec); err != nil {
		return nil, err
	}
	s.nextQA++
	return &qa, nil
}

func (s *FileStore) Finish(_ context.Context, interviewID int64, evaluation string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.load(interviewID)
	if err != nil {
		return err
	}
	if rec.Interview.Finished() {
		return ErrAlreadyFinished
	}
	rec.Interview.FinalEvaluation = &evaluation
	return s.save(rec)
}

func (s *FileStore) Ping(context.Context) error {
	_, err := os.Stat(s.dir)
	return err
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) save(rec *record) error {
	jsonData, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal interview: %w", err)
	}

	// write then rename so a crash never leaves a truncated file
	path := s.path(rec.Interview.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, jsonData, 0644); err != nil {
		return fmt.Errorf("write file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

func (s *FileStore) load(id int64) (*record, error) {
	path := s.path(id)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", path, err)
	}
	return &rec, nil
}

// listIDs returns the ids of all stored interviews.
func (s *FileStore) listIDs() ([]int64, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", s.dir, err)
	}

	var ids []int64
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" || !strings.HasPrefix(name, "interview_") {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSuffix(strings.TrimPrefix(name, "interview_"), ".json"), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
