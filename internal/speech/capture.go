package speech

// Capture streams mono 16-bit microphone audio to a callback until
// stopped. Start may be called again after Stop.
type Capture interface {
	Start(onData func(samples []int16)) error
	Stop()
}
