//go:build !linux

package speech

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// oto allows one context per process and fixes its format at creation,
// so the first utterance decides the rate and channel count.
var (
	otoMu       sync.Mutex
	otoCtx      *oto.Context
	otoRate     int
	otoChannels int
)

type otoPlayer struct {
	poll time.Duration
}

// NewPlayer returns a player backed by oto. The audio context is opened
// on the first utterance because its format comes from the audio itself.
func NewPlayer() (Player, error) {
	return otoPlayer{poll: 10 * time.Millisecond}, nil
}

func (p otoPlayer) Play(ctx context.Context, pcm *PCM) error {
	if len(pcm.Samples) == 0 {
		return nil
	}
	samples, channels := pcm.Samples, pcm.Channels
	if channels > 2 {
		samples, channels = downmix(samples, channels), 2
	}

	octx, err := otoContext(pcm.SampleRate, channels)
	if err != nil {
		return err
	}

	player := octx.NewPlayer(bytes.NewReader(int16LE(samples)))
	defer player.Close()
	player.Play()

	ticker := time.NewTicker(p.poll)
	defer ticker.Stop()
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-ticker.C:
		}
	}
	if err := player.Err(); err != nil {
		return fmt.Errorf("oto playback: %w", err)
	}
	return nil
}

func otoContext(rate, channels int) (*oto.Context, error) {
	otoMu.Lock()
	defer otoMu.Unlock()

	if otoCtx != nil {
		if rate != otoRate || channels != otoChannels {
			return nil, fmt.Errorf("audio output is open at %d Hz x%d, got %d Hz x%d",
				otoRate, otoChannels, rate, channels)
		}
		return otoCtx, nil
	}

	octx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   rate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   100 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("oto: %w", err)
	}
	<-ready

	otoCtx, otoRate, otoChannels = octx, rate, channels
	return otoCtx, nil
}
