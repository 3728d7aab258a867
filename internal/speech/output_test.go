package speech

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

type fakeSynth struct {
	audio []byte
	err   error
	calls []string
}

func (f *fakeSynth) Synthesize(_ context.Context, text string) ([]byte, error) {
	f.calls = append(f.calls, text)
	return f.audio, f.err
}

type fakePlayer struct {
	played []*PCM
	err    error
}

func (f *fakePlayer) Play(_ context.Context, pcm *PCM) error {
	f.played = append(f.played, pcm)
	return f.err
}

func TestOutput_Speak(t *testing.T) {
	synth := &fakeSynth{audio: buildWAV(16000, 1, []int16{1, 2, 3, 4}, -1)}
	player := &fakePlayer{}
	out := NewOutput(synth, player, zerolog.Nop())

	out.Speak(context.Background(), "Hello Ada")

	if len(synth.calls) != 1 || synth.calls[0] != "Hello Ada" {
		t.Errorf("unexpected synth calls %v", synth.calls)
	}
	if len(player.played) != 1 || len(player.played[0].Samples) != 4 {
		t.Fatalf("expected one playback of 4 samples, got %+v", player.played)
	}
}

func TestOutput_SynthesisFailureIsLogged(t *testing.T) {
	var logs bytes.Buffer
	synth := &fakeSynth{err: errors.New("HTTP error 500")}
	player := &fakePlayer{}
	out := NewOutput(synth, player, zerolog.New(&logs))

	out.Speak(context.Background(), "Hello")

	if len(player.played) != 0 {
		t.Error("expected no playback")
	}
	if !strings.Contains(logs.String(), "speech synthesis failed") {
		t.Errorf("expected failure to be logged, got %q", logs.String())
	}
}

func TestOutput_UndecodableAudio(t *testing.T) {
	synth := &fakeSynth{audio: []byte("not audio")}
	player := &fakePlayer{}
	NewOutput(synth, player, zerolog.Nop()).Speak(context.Background(), "Hello")
	if len(player.played) != 0 {
		t.Error("expected no playback")
	}
}

func TestOutput_PlaybackFailureReturns(t *testing.T) {
	synth := &fakeSynth{audio: buildWAV(16000, 1, []int16{1}, -1)}
	player := &fakePlayer{err: errors.New("device gone")}
	NewOutput(synth, player, zerolog.Nop()).Speak(context.Background(), "Hello")
	if len(player.played) != 1 {
		t.Error("expected one playback attempt")
	}
}

func TestOutput_MuteAndBlank(t *testing.T) {
	synth := &fakeSynth{}
	NewOutput(synth, nil, zerolog.Nop()).Speak(context.Background(), "Hello")
	NewOutput(synth, &fakePlayer{}, zerolog.Nop()).Speak(context.Background(), "   ")
	if len(synth.calls) != 0 {
		t.Errorf("expected no synthesis, got %v", synth.calls)
	}
}
