package speech

import "context"

// Utterance is one captured answer, mono 16-bit.
type Utterance struct {
	SampleRate int
	Samples    []int16
}

// Recognizer converts an utterance to text.
type Recognizer interface {
	Name() string
	Recognize(ctx context.Context, u Utterance) (string, error)
}
