package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"ai-interviewer/internal/config"
	"ai-interviewer/internal/logging"
)

var (
	// ErrUnavailable is returned by every operation of the unavailable input.
	ErrUnavailable = errors.New("speech recognition unavailable")
	// ErrNoSpeech means the attempt ended without any voice.
	ErrNoSpeech = errors.New("no speech detected")
)

// Input is speech recognition as seen by the listener. The variant is
// picked once at startup by NewInput.
type Input interface {
	Available() bool
	// Status is a short human-readable line for the UI.
	Status() string
	// Listen captures one answer and returns its text. Closing stop ends
	// capture and recognizes what was heard so far; cancelling ctx
	// abandons the attempt.
	Listen(ctx context.Context, stop <-chan struct{}) (string, error)
	// Close releases the recognizer.
	Close() error
}

// NewInput detects whether speech input can work here and returns the
// matching variant. It never fails; problems yield the unavailable one.
func NewInput(ctx context.Context, cfg config.SpeechConfig, logger zerolog.Logger) Input {
	logger = logging.WithComponent(logger, "speech_input")

	var rec Recognizer
	switch cfg.STTProvider {
	case "whisper":
		rec = NewWhisper(cfg.WhisperURL, cfg.WhisperModel, cfg.WhisperAPIKey, cfg.Language)
	case "google":
		g, err := NewGoogle(ctx, cfg.Language)
		if err != nil {
			logger.Warn().Err(err).Msg("google speech unavailable")
			return Unavailable("Speech recognition unavailable: " + err.Error())
		}
		rec = g
	default:
		return Unavailable("Speech recognition is not configured.")
	}

	endpoint := EndpointConfig{
		SampleRate:     cfg.SampleRateHz,
		SilenceTimeout: cfg.SilenceTimeout,
		EndOfSpeech:    cfg.EndOfSpeech,
		MaxUtterance:   cfg.MaxUtterance,
	}
	if _, err := NewEndpointer(endpoint); err != nil {
		logger.Warn().Err(err).Msg("voice detector unavailable")
		closeRecognizer(rec)
		return Unavailable("Speech recognition unavailable: " + err.Error())
	}

	capture, err := NewCapture(cfg.SampleRateHz)
	if err != nil {
		closeRecognizer(rec)
		logger.Warn().Err(err).Msg("microphone unavailable")
		return Unavailable("Speech recognition unavailable: no microphone.")
	}

	logger.Info().Str("recognizer", rec.Name()).Int("sampleRate", cfg.SampleRateHz).Msg("speech input ready")
	return NewAvailable(capture, rec, endpoint, logger)
}

func closeRecognizer(rec Recognizer) error {
	if c, ok := rec.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

type unavailableInput struct {
	status string
}

// Unavailable returns the variant that rejects every listen attempt.
func Unavailable(status string) Input {
	return unavailableInput{status: status}
}

func (u unavailableInput) Available() bool { return false }
func (u unavailableInput) Status() string  { return u.status }

func (u unavailableInput) Listen(context.Context, <-chan struct{}) (string, error) {
	return "", ErrUnavailable
}

func (u unavailableInput) Close() error { return nil }

type availableInput struct {
	capture    Capture
	recognizer Recognizer
	endpoint   EndpointConfig
	logger     zerolog.Logger
}

func NewAvailable(capture Capture, rec Recognizer, endpoint EndpointConfig, logger zerolog.Logger) Input {
	return &availableInput{capture: capture, recognizer: rec, endpoint: endpoint, logger: logger}
}

func (a *availableInput) Available() bool { return true }

func (a *availableInput) Close() error {
	return closeRecognizer(a.recognizer)
}

func (a *availableInput) Status() string {
	return fmt.Sprintf("Speech recognition ready (%s).", a.recognizer.Name())
}

func (a *availableInput) Listen(ctx context.Context, stop <-chan struct{}) (string, error) {
	ep, err := NewEndpointer(a.endpoint)
	if err != nil {
		return "", err
	}

	chunks := make(chan []int16, 256)
	if err := a.capture.Start(func(samples []int16) {
		select {
		case chunks <- samples:
		default:
		}
	}); err != nil {
		return "", fmt.Errorf("start capture: %w", err)
	}
	captureStopped := false
	stopCapture := func() {
		if !captureStopped {
			a.capture.Stop()
			captureStopped = true
		}
	}
	defer stopCapture()

	var samples []int16
	reason := NotEnded

	started := time.Now()
loop:
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-stop:
			break loop
		case chunk := <-chunks:
			samples = append(samples, chunk...)
			if reason = ep.Feed(chunk); reason != NotEnded {
				break loop
			}
		}
	}
	stopCapture()

	a.logger.Debug().
		Str("reason", reason.String()).
		Int("samples", len(samples)).
		Dur("elapsed", time.Since(started)).
		Msg("utterance captured")

	if !ep.Heard() {
		return "", ErrNoSpeech
	}

	text, err := a.recognizer.Recognize(ctx, Utterance{SampleRate: a.endpoint.SampleRate, Samples: samples})
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", ErrNoSpeech
	}
	return text, nil
}
