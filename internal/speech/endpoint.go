package speech

import (
	"fmt"
	"time"

	webrtcvad "github.com/maxhawkins/go-webrtcvad"
)

// EndReason tells why an utterance ended.
type EndReason int

const (
	NotEnded EndReason = iota
	EndOfSpeech
	EndNoSpeech
	EndMaxLength
)

func (r EndReason) String() string {
	switch r {
	case NotEnded:
		return "not_ended"
	case EndOfSpeech:
		return "end_of_speech"
	case EndNoSpeech:
		return "no_speech"
	case EndMaxLength:
		return "max_length"
	default:
		return "unknown"
	}
}

const (
	vadMode     = 3
	vadFrameMs  = 20
	vadDebounce = 3 // consecutive speech frames to confirm voice
)

// VoiceDetector classifies one frame of 16-bit little-endian mono audio.
// *webrtcvad.VAD satisfies it.
type VoiceDetector interface {
	Process(sampleRate int, frame []byte) (bool, error)
}

// EndpointConfig controls utterance segmentation.
type EndpointConfig struct {
	SampleRate     int
	SilenceTimeout time.Duration // no voice at all since start
	EndOfSpeech    time.Duration // trailing silence after voice
	MaxUtterance   time.Duration
	// Detector overrides the WebRTC detector.
	Detector VoiceDetector
}

// Endpointer decides when a spoken answer is complete. Audio is cut into
// 20 ms frames for the voice detector; time is measured in frames, not
// wall clock.
type Endpointer struct {
	cfg        EndpointConfig
	vad        VoiceDetector
	frameBytes int
	frameDur   time.Duration
	buf        []byte
	elapsed    time.Duration
	silence    time.Duration
	speechRun  int
	heard      bool
}

func NewEndpointer(cfg EndpointConfig) (*Endpointer, error) {
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", cfg.SampleRate)
	}
	vad := cfg.Detector
	if vad == nil {
		v, err := webrtcvad.New()
		if err != nil {
			return nil, fmt.Errorf("webrtc vad: %w", err)
		}
		if err := v.SetMode(vadMode); err != nil {
			return nil, fmt.Errorf("webrtc vad mode: %w", err)
		}
		if !v.ValidRateAndFrameLength(cfg.SampleRate, cfg.SampleRate*vadFrameMs/1000) {
			return nil, fmt.Errorf("webrtc vad does not support %d Hz", cfg.SampleRate)
		}
		vad = v
	}
	return &Endpointer{
		cfg:        cfg,
		vad:        vad,
		frameBytes: cfg.SampleRate * vadFrameMs / 1000 * 2,
		frameDur:   vadFrameMs * time.Millisecond,
	}, nil
}

// Feed consumes one chunk of mono samples. Samples that do not fill a
// whole frame wait for the next chunk.
func (e *Endpointer) Feed(chunk []int16) EndReason {
	e.buf = append(e.buf, int16LE(chunk)...)
	for len(e.buf) >= e.frameBytes {
		frame := e.buf[:e.frameBytes]
		e.buf = e.buf[e.frameBytes:]

		active, err := e.vad.Process(e.cfg.SampleRate, frame)
		if err != nil {
			active = false
		}
		if r := e.frame(active); r != NotEnded {
			return r
		}
	}
	return NotEnded
}

func (e *Endpointer) frame(active bool) EndReason {
	e.elapsed += e.frameDur

	if active {
		e.speechRun++
		if e.heard || e.speechRun >= vadDebounce {
			e.heard = true
			e.silence = 0
		}
	} else {
		e.speechRun = 0
		if e.heard {
			e.silence += e.frameDur
		}
	}

	switch {
	case e.cfg.MaxUtterance > 0 && e.elapsed >= e.cfg.MaxUtterance:
		if !e.heard {
			return EndNoSpeech
		}
		return EndMaxLength
	case !e.heard && e.cfg.SilenceTimeout > 0 && e.elapsed >= e.cfg.SilenceTimeout:
		return EndNoSpeech
	case e.heard && e.cfg.EndOfSpeech > 0 && e.silence >= e.cfg.EndOfSpeech:
		return EndOfSpeech
	}
	return NotEnded
}

// Heard reports whether voice was confirmed.
func (e *Endpointer) Heard() bool {
	return e.heard
}
