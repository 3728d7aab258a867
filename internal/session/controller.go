package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"ai-interviewer/internal/api"
	"ai-interviewer/internal/logging"
	"ai-interviewer/internal/transcript"
)

// Options wires a Controller to its collaborators.
type Options struct {
	Backend Backend
	Speaker Speaker
	Reports ReportOpener
	View    View
	Log     *transcript.Log
	Logger  zerolog.Logger
}

// Controller owns the interview state machine. It is safe for concurrent
// use: every state change happens under mu, so a submission racing an
// in-flight reply is dropped instead of queued.
type Controller struct {
	mu          sync.Mutex
	state       State
	interviewID api.InterviewID

	backend Backend
	speaker Speaker
	reports ReportOpener
	view    View
	log     *transcript.Log
	logger  zerolog.Logger
}

// New creates a controller in NOT_STARTED state.
func New(opts Options) *Controller {
	c := &Controller{
		state:   StateNotStarted,
		backend: opts.Backend,
		speaker: opts.Speaker,
		reports: opts.Reports,
		view:    opts.View,
		log:     opts.Log,
		logger:  logging.WithComponent(opts.Logger, "session"),
	}
	if c.speaker == nil {
		c.speaker = silentSpeaker{}
	}
	if c.view == nil {
		c.view = nopView{}
	}
	if c.log == nil {
		c.log = transcript.NewLog()
	}
	return c
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// InterviewID returns the id captured at start, or the zero id before that.
func (c *Controller) InterviewID() api.InterviewID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interviewID
}

// AcceptsInput reports whether a user turn (typed or spoken) would be taken.
func (c *Controller) AcceptsInput() bool {
	return c.State() == StateActive
}

// Log returns the message log the controller appends to.
func (c *Controller) Log() *transcript.Log {
	return c.log
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	prev := c.state
	c.state = s
	c.mu.Unlock()
	c.logger.Debug().Str("from", prev.String()).Str("to", s.String()).Msg("state transition")
}

// Start begins the interview. Invalid input alerts the user without any
// network call. A start while another start is in flight, or after the
// interview has begun, is dropped with ErrBusy.
func (c *Controller) Start(ctx context.Context, name, experience string) error {
	name = strings.TrimSpace(name)
	experience = strings.TrimSpace(experience)
	if name == "" || experience == "" {
		c.view.Alert(MissingFieldsText)
		return ErrInvalidCandidate
	}

	c.mu.Lock()
	if c.state != StateNotStarted {
		c.mu.Unlock()
		return ErrBusy
	}
	c.state = StateStarting
	c.mu.Unlock()

	c.view.SetControlsEnabled(false)

	reply, err := c.backend.Start(ctx, api.StartRequest{Name: name, Experience: experience})
	if err == nil && reply.InterviewID.IsZero() {
		err = ErrMissingID
	}
	if err != nil {
		c.setState(StateNotStarted)
		c.logger.Error().Err(err).Msg("start interview failed")
		c.view.Alert(StartFailedText)
		c.view.SetControlsEnabled(true)
		return fmt.Errorf("start interview: %w", err)
	}

	c.mu.Lock()
	c.interviewID = reply.InterviewID
	c.state = StateAwaitingResponse
	c.mu.Unlock()

	c.logger.Info().Str("interviewId", reply.InterviewID.String()).Msg("interview started")
	c.view.ShowInterview()
	c.process(ctx, reply)
	return nil
}

// Send submits one user turn. It is a no-op unless the session is ACTIVE
// and text has non-space content.
func (c *Controller) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyText
	}

	c.mu.Lock()
	switch c.state {
	case StateActive:
	case StateNotStarted:
		c.mu.Unlock()
		return ErrNotStarted
	case StateTerminated:
		c.mu.Unlock()
		return ErrTerminated
	default:
		c.mu.Unlock()
		return ErrBusy
	}
	c.state = StateAwaitingResponse
	id := c.interviewID
	c.mu.Unlock()

	c.log.Append(transcript.SenderUser, text)
	c.view.ClearInput()
	c.view.SetControlsEnabled(false)

	reply, err := c.backend.Chat(ctx, api.ChatRequest{InterviewID: id, Text: text})
	if err != nil {
		c.logger.Error().Err(err).Str("interviewId", id.String()).Msg("chat request failed")
		c.log.Append(transcript.SenderAI, ErrorTurnText)
		c.setState(StateActive)
		c.view.SetControlsEnabled(true)
		return fmt.Errorf("chat: %w", err)
	}

	c.process(ctx, reply)
	return nil
}

// process applies the same handling to every reply that carries AI text:
// the turn is logged, spoken to the end, and only then either the
// controls come back or the interview terminates.
func (c *Controller) process(ctx context.Context, reply *api.Reply) {
	c.log.Append(transcript.SenderAI, reply.Response)
	c.speaker.Speak(ctx, reply.Response)

	if reply.InterviewOver {
		c.terminate(ctx, reply.FinalEvaluation)
		return
	}

	c.setState(StateActive)
	c.view.SetControlsEnabled(true)
}

func (c *Controller) terminate(ctx context.Context, evaluation string) {
	final := FinalTurnText(evaluation)
	c.log.Append(transcript.SenderAI, final)
	c.speaker.Speak(ctx, final)

	c.setState(StateTerminated)
	c.view.SetControlsEnabled(false)
	c.view.ShowDownload()
	c.logger.Info().Str("interviewId", c.InterviewID().String()).Msg("interview terminated")
}

// Download fetches the report for the interview captured at start.
func (c *Controller) Download(ctx context.Context) (string, error) {
	id := c.InterviewID()
	if id.IsZero() {
		return "", ErrNotStarted
	}
	if c.reports == nil {
		return "", errors.New("no report opener configured")
	}

	path, err := c.reports.OpenReport(ctx, id)
	if err != nil {
		c.logger.Error().Err(err).Str("interviewId", id.String()).Msg("report download failed")
		c.view.Alert(ReportFailedText)
		return "", fmt.Errorf("download report: %w", err)
	}
	c.logger.Info().Str("interviewId", id.String()).Str("path", path).Msg("report downloaded")
	return path, nil
}
