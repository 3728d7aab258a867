package speech

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"ai-interviewer/internal/logging"
)

// ErrNotAccepting is returned when the session cannot take a turn now.
var ErrNotAccepting = errors.New("session is not accepting input")

// ListenerOptions wires a Listener.
type ListenerOptions struct {
	Input Input
	// CanListen gates every attempt and every delivered result.
	CanListen func() bool
	// OnResult receives recognized text.
	OnResult func(text string)
	// OnChange is told when listening starts and stops.
	OnChange func(listening bool)
	// OnError receives failures other than a cancelled attempt.
	OnError func(err error)
	Logger  zerolog.Logger
}

// Listener runs the Idle/Listening state machine over an Input. Only one
// attempt is live at a time; starting again abandons the previous one.
type Listener struct {
	opts ListenerOptions

	mu        sync.Mutex
	attempt   uint64
	listening bool
	cancel    context.CancelFunc
	stop      chan struct{}
	done      chan struct{}
}

// NewListener wraps opts.Input. Nothing is captured until Start.
func NewListener(opts ListenerOptions) *Listener {
	if opts.CanListen == nil {
		opts.CanListen = func() bool { return true }
	}
	if opts.OnResult == nil {
		opts.OnResult = func(string) {}
	}
	if opts.OnChange == nil {
		opts.OnChange = func(bool) {}
	}
	if opts.OnError == nil {
		opts.OnError = func(error) {}
	}
	opts.Logger = logging.WithComponent(opts.Logger, "listener")
	return &Listener{opts: opts}
}

// Available reports whether the input can recognize speech at all.
func (l *Listener) Available() bool {
	return l.opts.Input.Available()
}

// Listening is true while an attempt runs.
func (l *Listener) Listening() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.listening
}

// Start begins a listening attempt.
func (l *Listener) Start(ctx context.Context) error {
	if !l.opts.Input.Available() {
		return ErrUnavailable
	}
	if !l.opts.CanListen() {
		return ErrNotAccepting
	}

	l.mu.Lock()
	prevCancel, prevDone := l.cancel, l.done
	l.attempt++
	id := l.attempt
	attemptCtx, cancel := context.WithCancel(ctx)
	stop := make(chan struct{})
	done := make(chan struct{})
	l.cancel, l.stop, l.done = cancel, stop, done
	wasListening := l.listening
	l.listening = true
	l.mu.Unlock()

	if prevCancel != nil {
		prevCancel()
		<-prevDone
	}
	if !wasListening {
		l.opts.OnChange(true)
	}

	go l.run(attemptCtx, id, stop, done)
	return nil
}

// Stop ends the current attempt. What has been heard is still recognized.
func (l *Listener) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.listening || l.stop == nil {
		return
	}
	select {
	case <-l.stop:
	default:
		close(l.stop)
	}
}

// Close abandons any attempt, waits for it to exit and releases the input.
func (l *Listener) Close() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.mu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}
	if err := l.opts.Input.Close(); err != nil {
		l.opts.Logger.Warn().Err(err).Msg("close speech input")
	}
}

func (l *Listener) run(ctx context.Context, id uint64, stop <-chan struct{}, done chan struct{}) {
	defer close(done)

	text, err := l.opts.Input.Listen(ctx, stop)

	l.mu.Lock()
	if l.attempt != id {
		// superseded by a newer Start
		l.mu.Unlock()
		return
	}
	l.listening = false
	l.cancel, l.stop, l.done = nil, nil, nil
	l.mu.Unlock()
	l.opts.OnChange(false)

	switch {
	case errors.Is(err, context.Canceled):
		return
	case errors.Is(err, ErrNoSpeech):
		l.opts.Logger.Debug().Msg("no speech recognized")
		return
	case err != nil:
		l.opts.Logger.Warn().Err(err).Msg("speech recognition failed")
		l.opts.OnError(err)
		return
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if !l.opts.CanListen() {
		l.opts.Logger.Debug().Msg("dropping result, session busy")
		return
	}
	l.opts.OnResult(text)
}
