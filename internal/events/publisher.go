// Package events publishes interview lifecycle events.
package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"ai-interviewer/internal/logging"
)

const (
	TypeStarted   = "interview.started"
	TypeAnswered  = "interview.answered"
	TypeCompleted = "interview.completed"
)

// Event is the payload of every published message.
type Event struct {
	EventID         string `json:"eventId"`
	EventType       string `json:"eventType"`
	InterviewID     int64  `json:"interviewId"`
	Timestamp       int64  `json:"timestamp"`
	Candidate       string `json:"candidate,omitempty"`
	QuestionNumber  int    `json:"questionNumber,omitempty"`
	Question        string `json:"question,omitempty"`
	Answer          string `json:"answer,omitempty"`
	FinalEvaluation string `json:"finalEvaluation,omitempty"`
}

// Recorder receives publish outcomes, typically metrics.
type Recorder interface {
	RecordEvent(eventType string, err error)
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers []string
	Topic   string
}

// Publisher writes events to one Kafka topic keyed by interview id, so
// all events of an interview land in order on one partition. Without
// brokers it only logs.
type Publisher struct {
	writer   messageWriter
	topic    string
	enabled  bool
	recorder Recorder
	logger   zerolog.Logger
	now      func() time.Time
}

// New creates the publisher. recorder may be nil.
func New(cfg Config, recorder Recorder, logger zerolog.Logger) *Publisher {
	logger = logging.WithComponent(logger, "events")
	p := &Publisher{
		topic:    cfg.Topic,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}

	if len(cfg.Brokers) == 0 {
		logger.Info().Msg("Kafka disabled, using log-only mode")
		return p
	}

	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    &kafka.Transport{Dial: dialer.DialFunc},
	}
	p.enabled = true

	logger.Info().
		Strs("brokers", cfg.Brokers).
		Str("topic", cfg.Topic).
		Msg("Kafka publisher initialized")
	return p
}

func (p *Publisher) Enabled() bool {
	return p.enabled
}

func (p *Publisher) Started(ctx context.Context, interviewID int64, candidate, firstQuestion string) error {
	return p.publish(ctx, Event{
		EventType:      TypeStarted,
		InterviewID:    interviewID,
		Candidate:      candidate,
		QuestionNumber: 1,
		Question:       firstQuestion,
	})
}

func (p *Publisher) Answered(ctx context.Context, interviewID int64, questionNumber int, question, answer string) error {
	return p.publish(ctx, Event{
		EventType:      TypeAnswered,
		InterviewID:    interviewID,
		QuestionNumber: questionNumber,
		Question:       question,
		Answer:         answer,
	})
}

func (p *Publisher) Completed(ctx context.Context, interviewID int64, evaluation string) error {
	return p.publish(ctx, Event{
		EventType:       TypeCompleted,
		InterviewID:     interviewID,
		FinalEvaluation: evaluation,
	})
}

func (p *Publisher) publish(ctx context.Context, event Event) error {
	event.EventID = uuid.NewString()
	event.Timestamp = p.now().UnixMilli()
	key := strconv.FormatInt(event.InterviewID, 10)

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error().Err(err).Str("eventType", event.EventType).Msg("Failed to marshal event")
		return err
	}

	p.logger.Debug().
		Str("topic", p.topic).
		Str("key", key).
		RawJSON("payload", payload).
		Msg("Publishing event")

	if !p.enabled || p.writer == nil {
		p.record(event.EventType, nil)
		return nil
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(event.EventType)},
			{Key: "eventId", Value: []byte(event.EventID)},
		},
	})
	if err != nil {
		p.logger.Error().
			Err(err).
			Str("topic", p.topic).
			Str("key", key).
			Msg("Failed to write to Kafka")
	}
	p.record(event.EventType, err)
	return err
}

func (p *Publisher) record(eventType string, err error) {
	if p.recorder != nil {
		p.recorder.RecordEvent(eventType, err)
	}
}

// Close flushes and closes the writer.
func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
