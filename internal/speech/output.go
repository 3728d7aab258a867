package speech

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"ai-interviewer/internal/logging"
)

// Synthesizer turns text into an audio payload (WAV).
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Player plays decoded audio and returns when playback has ended.
type Player interface {
	Play(ctx context.Context, pcm *PCM) error
}

// Output speaks AI replies. Speak never fails from the caller's point of
// view: synthesis or playback problems are logged and Speak returns.
type Output struct {
	synth  Synthesizer
	player Player
	logger zerolog.Logger
}

// NewOutput creates the speech output. A nil player makes it mute.
func NewOutput(synth Synthesizer, player Player, logger zerolog.Logger) *Output {
	return &Output{
		synth:  synth,
		player: player,
		logger: logging.WithComponent(logger, "speech_output"),
	}
}

// Speak synthesizes text and blocks until it has been played.
func (o *Output) Speak(ctx context.Context, text string) {
	if strings.TrimSpace(text) == "" || o.player == nil || o.synth == nil {
		return
	}

	start := time.Now()
	audio, err := o.synth.Synthesize(ctx, text)
	if err != nil {
		o.logger.Warn().Err(err).Msg("speech synthesis failed")
		return
	}

	pcm, err := DecodeWAV(audio)
	if err != nil {
		o.logger.Warn().Err(err).Int("bytes", len(audio)).Msg("speech audio unreadable")
		return
	}

	if err := o.player.Play(ctx, pcm); err != nil {
		o.logger.Warn().Err(err).Msg("speech playback failed")
		return
	}

	o.logger.Debug().
		Float64("audioSeconds", pcm.Duration()).
		Dur("elapsed", time.Since(start)).
		Msg("speech played")
}
