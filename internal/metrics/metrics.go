// Package metrics provides Prometheus metrics for the interview backend.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ai_interviewer"

// Metrics holds all Prometheus metrics for the backend.
type Metrics struct {
	InterviewsStarted   prometheus.Counter
	InterviewsCompleted prometheus.Counter
	QuestionsAsked      prometheus.Counter
	AnswersReceived     prometheus.Counter

	LLMCalls   *prometheus.CounterVec
	LLMLatency *prometheus.HistogramVec
	TTSCalls   *prometheus.CounterVec

	EventsPublished *prometheus.CounterVec

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		InterviewsStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interviews_started_total",
			Help:      "Total number of interviews started",
		}),
		InterviewsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interviews_completed_total",
			Help:      "Total number of interviews that reached the final evaluation",
		}),
		QuestionsAsked: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "questions_asked_total",
			Help:      "Total number of questions asked",
		}),
		AnswersReceived: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_received_total",
			Help:      "Total number of candidate answers recorded",
		}),
		LLMCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_calls_total",
			Help:      "LLM calls by purpose and outcome",
		}, []string{"purpose", "outcome"}),
		LLMLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_latency_seconds",
			Help:      "LLM call latency in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80, 120},
		}, []string{"purpose"}),
		TTSCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tts_calls_total",
			Help:      "Speech synthesis calls by outcome",
		}, []string{"outcome"}),
		EventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Interview events published by type and outcome",
		}, []string{"type", "outcome"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (m *Metrics) RecordInterviewStarted() {
	m.InterviewsStarted.Inc()
	m.QuestionsAsked.Inc()
}

func (m *Metrics) RecordQuestionAsked() {
	m.QuestionsAsked.Inc()
}

func (m *Metrics) RecordAnswer() {
	m.AnswersReceived.Inc()
}

func (m *Metrics) RecordInterviewCompleted() {
	m.InterviewsCompleted.Inc()
}

func (m *Metrics) RecordLLMCall(purpose string, err error, latencySeconds float64) {
	m.LLMCalls.WithLabelValues(purpose, outcome(err)).Inc()
	m.LLMLatency.WithLabelValues(purpose).Observe(latencySeconds)
}

func (m *Metrics) RecordTTSCall(err error) {
	m.TTSCalls.WithLabelValues(outcome(err)).Inc()
}

func (m *Metrics) RecordEvent(eventType string, err error) {
	m.EventsPublished.WithLabelValues(eventType, outcome(err)).Inc()
}

func (m *Metrics) RecordHTTP(method, route string, status int, durationSeconds float64) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(durationSeconds)
}
