package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"ai-interviewer/internal/transcript"
)

// Messages delivered to the model from outside the event loop.
type (
	showInterviewMsg struct{}
	controlsMsg      struct{ enabled bool }
	clearInputMsg    struct{}
	showDownloadMsg  struct{}
	alertMsg         struct{ text string }
	turnMsg          struct{ turn transcript.Turn }
	recognizedMsg    struct{ text string }
	listeningMsg     struct{ listening bool }
	listenErrMsg     struct{ err error }
)

// Bridge implements the controller's view and the listener callbacks by
// forwarding them to the running program. Calls before Attach are dropped.
type Bridge struct {
	mu      sync.RWMutex
	program *tea.Program
}

// NewBridge returns a bridge that drops messages until Attach.
func NewBridge() *Bridge {
	return &Bridge{}
}

// Attach routes later messages to p.
func (b *Bridge) Attach(p *tea.Program) {
	b.mu.Lock()
	b.program = p
	b.mu.Unlock()
}

func (b *Bridge) send(msg tea.Msg) {
	b.mu.RLock()
	p := b.program
	b.mu.RUnlock()
	if p != nil {
		p.Send(msg)
	}
}

func (b *Bridge) ShowInterview()                 { b.send(showInterviewMsg{}) }
func (b *Bridge) SetControlsEnabled(enabled bool) { b.send(controlsMsg{enabled: enabled}) }
func (b *Bridge) ClearInput()                    { b.send(clearInputMsg{}) }
func (b *Bridge) ShowDownload()                  { b.send(showDownloadMsg{}) }
func (b *Bridge) Alert(text string)              { b.send(alertMsg{text: text}) }

// OnTurn is a transcript subscriber.
func (b *Bridge) OnTurn(t transcript.Turn) { b.send(turnMsg{turn: t}) }

// Speech listener callbacks.
func (b *Bridge) OnRecognized(text string)   { b.send(recognizedMsg{text: text}) }
func (b *Bridge) OnListening(listening bool) { b.send(listeningMsg{listening: listening}) }
func (b *Bridge) OnListenError(err error)    { b.send(listenErrMsg{err: err}) }
