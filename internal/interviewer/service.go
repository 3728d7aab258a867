// Package interviewer runs interviews on the backend: it asks the LLM for
// questions and the final evaluation and keeps the store in step.
package interviewer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"ai-interviewer/internal/api"
	"ai-interviewer/internal/config"
	"ai-interviewer/internal/logging"
	"ai-interviewer/internal/prompts"
	"ai-interviewer/internal/report"
	"ai-interviewer/internal/storage"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrSpeech       = errors.New("could not generate speech")
)

const (
	purposeFirstQuestion = "first_question"
	purposeNextQuestion  = "next_question"
	purposeEvaluation    = "final_evaluation"
)

// Recorder receives service measurements.
type Recorder interface {
	RecordInterviewStarted()
	RecordQuestionAsked()
	RecordAnswer()
	RecordInterviewCompleted()
	RecordLLMCall(purpose string, err error, latencySeconds float64)
	RecordTTSCall(err error)
}

// Events receives interview lifecycle notifications.
type Events interface {
	Started(ctx context.Context, interviewID int64, candidate, firstQuestion string) error
	Answered(ctx context.Context, interviewID int64, questionNumber int, question, answer string) error
	Completed(ctx context.Context, interviewID int64, evaluation string) error
}

// Options wires a Service.
type Options struct {
	Store    storage.Store
	LLM      Completer
	TTS      Synthesizer
	Config   *config.Config
	Recorder Recorder
	Events   Events
	Logger   zerolog.Logger
}

// Service implements the interview endpoints.
type Service struct {
	store     storage.Store
	llm       Completer
	tts       Synthesizer
	generator *prompts.Generator
	cfg       *config.Config
	recorder  Recorder
	events    Events
	logger    zerolog.Logger
	now       func() time.Time

	locks sync.Map // int64 -> *sync.Mutex
}

func New(opts Options) *Service {
	s := &Service{
		store:     opts.Store,
		llm:       opts.LLM,
		tts:       opts.TTS,
		generator: prompts.NewGenerator(opts.Config),
		cfg:       opts.Config,
		recorder:  opts.Recorder,
		events:    opts.Events,
		logger:    logging.WithComponent(opts.Logger, "interviewer"),
		now:       time.Now,
	}
	if s.recorder == nil {
		s.recorder = nopRecorder{}
	}
	if s.events == nil {
		s.events = nopEvents{}
	}
	return s
}

// Start creates an interview and returns the greeting with the first question.
func (s *Service) Start(ctx context.Context, req api.StartRequest) (*api.Reply, error) {
	name := strings.TrimSpace(req.Name)
	experience := strings.TrimSpace(req.Experience)
	if name == "" || experience == "" {
		return nil, fmt.Errorf("%w: name and experience are required", ErrInvalidInput)
	}

	question := s.complete(ctx, purposeFirstQuestion,
		s.generator.FirstQuestion(name, experience), s.cfg.InterviewConfig.QuestionTemp)

	iv, err := s.store.CreateInterview(ctx, name, experience, question)
	if err != nil {
		return nil, fmt.Errorf("create interview: %w", err)
	}

	s.recorder.RecordInterviewStarted()
	s.publish("started", s.events.Started(ctx, iv.ID, name, question))
	s.logger.Info().Int64("interviewId", iv.ID).Str("candidate", name).Msg("interview started")

	return &api.Reply{
		InterviewID: api.FromInt64(iv.ID),
		Response:    question,
	}, nil
}

// Chat records the answer to the latest question and either asks the next
// one or, once the question limit or the time budget is reached, finishes
// the interview.
func (s *Service) Chat(ctx context.Context, req api.ChatRequest) (*api.Reply, error) {
	text := strings.TrimSpace(req.Text)
	if req.InterviewID.IsZero() || text == "" {
		return nil, fmt.Errorf("%w: interview_id and text are required", ErrInvalidInput)
	}
	id, err := req.InterviewID.Int64()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	unlock := s.lock(id)
	defer unlock()

	logger := logging.WithInterview(s.logger, req.InterviewID.String())

	iv, err := s.store.GetInterview(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.locks.Delete(id)
		}
		return nil, err
	}
	if iv.Finished() {
		s.locks.Delete(id)
		return nil, storage.ErrAlreadyFinished
	}

	questions, err := s.store.ListQuestions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, storage.ErrNoQuestion
	}

	if err := s.store.AnswerLatest(ctx, id, text); err != nil {
		return nil, fmt.Errorf("save answer: %w", err)
	}
	latest := &questions[len(questions)-1]
	latest.Answer = &text

	s.recorder.RecordAnswer()
	s.publish("answered", s.events.Answered(ctx, id, len(questions), latest.Question, text))

	history := exchanges(questions)

	if len(questions) >= s.cfg.GetMaxQuestions() || s.overtime(iv) {
		evaluation := s.complete(ctx, purposeEvaluation,
			s.generator.FinalEvaluation(history), s.cfg.InterviewConfig.EvaluationTemp)

		if err := s.store.Finish(ctx, id, evaluation); err != nil {
			return nil, fmt.Errorf("finish interview: %w", err)
		}
		s.locks.Delete(id)

		s.recorder.RecordInterviewCompleted()
		s.publish("completed", s.events.Completed(ctx, id, evaluation))
		logger.Info().Int("questions", len(questions)).Msg("interview completed")

		return &api.Reply{
			Response:        s.cfg.Messages.Completed,
			FinalEvaluation: evaluation,
			InterviewOver:   true,
		}, nil
	}

	question := s.complete(ctx, purposeNextQuestion,
		s.generator.NextQuestion(history), s.cfg.InterviewConfig.QuestionTemp)

	if _, err := s.store.AddQuestion(ctx, id, question); err != nil {
		return nil, fmt.Errorf("save question: %w", err)
	}
	s.recorder.RecordQuestionAsked()
	logger.Debug().Int("question", len(questions)+1).Msg("next question asked")

	return &api.Reply{Response: question}, nil
}

// Speak returns WAV audio for text.
func (s *Service) Speak(ctx context.Context, req api.SpeakRequest) ([]byte, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", ErrInvalidInput)
	}
	if s.tts == nil {
		return nil, ErrSpeech
	}

	audio, err := s.tts.Synthesize(ctx, text)
	s.recorder.RecordTTSCall(err)
	if err != nil {
		s.logger.Error().Err(err).Msg("tts request failed")
		return nil, fmt.Errorf("%w: %v", ErrSpeech, err)
	}
	return audio, nil
}

// Report renders the plain-text report and its download name.
func (s *Service) Report(ctx context.Context, id api.InterviewID) (string, string, error) {
	n, err := id.Int64()
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	iv, err := s.store.GetInterview(ctx, n)
	if err != nil {
		return "", "", err
	}
	questions, err := s.store.ListQuestions(ctx, n)
	if err != nil {
		return "", "", fmt.Errorf("list questions: %w", err)
	}
	return report.Filename(n), report.Build(iv, questions), nil
}

// Ping checks the store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// complete asks the LLM and falls back to the configured error text, so an
// LLM outage never fails the turn itself.
func (s *Service) complete(ctx context.Context, purpose string, messages []prompts.Message, temperature float64) string {
	started := time.Now()
	content, err := s.llm.Complete(ctx, messages, temperature)
	s.recorder.RecordLLMCall(purpose, err, time.Since(started).Seconds())
	if err != nil {
		s.logger.Error().Err(err).Str("purpose", purpose).Msg("llm request failed")
		return s.cfg.Messages.LLMError
	}
	return content
}

func (s *Service) publish(kind string, err error) {
	if err != nil {
		s.logger.Warn().Err(err).Str("event", kind).Msg("event publish failed")
	}
}

// overtime reports whether the interview ran past its time budget.
func (s *Service) overtime(iv *storage.Interview) bool {
	limit := s.cfg.GetDuration()
	return limit > 0 && s.now().Sub(iv.Date) >= limit
}

// lock serialises turns of one interview. Entries of finished or unknown
// interviews are dropped since their turns never write.
func (s *Service) lock(id int64) func() {
	m, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func exchanges(questions []storage.QuestionAnswer) []prompts.Exchange {
	history := make([]prompts.Exchange, 0, len(questions))
	for _, qa := range questions {
		ex := prompts.Exchange{Question: qa.Question}
		if qa.Answer != nil {
			ex.Answer = *qa.Answer
		}
		history = append(history, ex)
	}
	return history
}

type nopRecorder struct{}

func (nopRecorder) RecordInterviewStarted()              {}
func (nopRecorder) RecordQuestionAsked()                 {}
func (nopRecorder) RecordAnswer()                        {}
func (nopRecorder) RecordInterviewCompleted()            {}
func (nopRecorder) RecordLLMCall(string, error, float64) {}
func (nopRecorder) RecordTTSCall(error)                  {}

type nopEvents struct{}

func (nopEvents) Started(context.Context, int64, string, string) error       { return nil }
func (nopEvents) Answered(context.Context, int64, int, string, string) error { return nil }
func (nopEvents) Completed(context.Context, int64, string) error             { return nil }
