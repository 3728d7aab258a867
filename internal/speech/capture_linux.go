//go:build linux

package speech

import (
	"fmt"
	"sync"

	"github.com/jfreymuth/pulse"
)

type pulseCapture struct {
	sampleRate int

	mu     sync.Mutex
	client *pulse.Client
	stream *pulse.RecordStream
}

// NewCapture opens the default PulseAudio source.
func NewCapture(sampleRate int) (Capture, error) {
	c, err := pulse.NewClient()
	if err != nil {
		return nil, fmt.Errorf("pulse: %w", err)
	}
	if _, err := c.DefaultSource(); err != nil {
		c.Close()
		return nil, fmt.Errorf("pulse default source: %w", err)
	}
	c.Close()
	return &pulseCapture{sampleRate: sampleRate}, nil
}

func (p *pulseCapture) Start(onData func([]int16)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stream != nil {
		return fmt.Errorf("capture already running")
	}

	c, err := pulse.NewClient()
	if err != nil {
		return fmt.Errorf("pulse: %w", err)
	}

	writer := pulse.Int16Writer(func(buf []int16) (int, error) {
		if len(buf) == 0 {
			return 0, nil
		}
		chunk := make([]int16, len(buf))
		copy(chunk, buf)
		onData(chunk)
		return len(buf), nil
	})

	stream, err := c.NewRecord(writer,
		pulse.RecordMono,
		pulse.RecordSampleRate(p.sampleRate),
		pulse.RecordLatency(0.05),
	)
	if err != nil {
		c.Close()
		return fmt.Errorf("pulse record: %w", err)
	}

	p.client = c
	p.stream = stream
	stream.Start()
	return nil
}

func (p *pulseCapture) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stream == nil {
		return
	}
	p.stream.Stop()
	p.stream.Close()
	p.client.Close()
	p.stream = nil
	p.client = nil
}
