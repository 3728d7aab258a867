// Package tui is the terminal front end of the interview client.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"ai-interviewer/internal/session"
	"ai-interviewer/internal/speech"
	"ai-interviewer/internal/transcript"
)

// Session is the part of the controller the UI drives.
type Session interface {
	Start(ctx context.Context, name, experience string) error
	Send(ctx context.Context, text string) error
	Download(ctx context.Context) (string, error)
	AcceptsInput() bool
}

// Listener is the speech input control.
type Listener interface {
	Available() bool
	Start(ctx context.Context) error
	Stop()
	Listening() bool
}

// Deps are the collaborators of the model.
type Deps struct {
	Ctx      context.Context
	Session  Session
	Listener Listener
	// SpeechStatus is shown at load time, e.g. when recognition is unavailable.
	SpeechStatus string
	Copy         func(text string) error
}

// Completion messages of commands.
type (
	startDoneMsg    struct{ err error }
	sendDoneMsg     struct{ err error }
	downloadDoneMsg struct {
		path string
		err  error
	}
	copyDoneMsg struct{ err error }
	tickMsg     time.Time
)

type screen int

const (
	screenForm screen = iota
	screenInterview
)

const (
	fieldName = iota
	fieldExperience
)

// Model is the bubbletea model.
type Model struct {
	deps *Deps

	screen     screen
	name       string
	experience string
	focus      int

	input        string
	turns        []transcript.Turn
	controls     bool
	listening    bool
	downloadable bool
	alert        string
	status       string

	frame         int
	width, height int
}

func NewModel(deps Deps) Model {
	if deps.Ctx == nil {
		deps.Ctx = context.Background()
	}
	return Model{
		deps:     &deps,
		controls: true,
		status:   deps.SpeechStatus,
	}
}

func tick() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		m.frame++
		return m, tick()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case showInterviewMsg:
		m.screen = screenInterview
	case controlsMsg:
		m.controls = msg.enabled
	case clearInputMsg:
		m.input = ""
	case showDownloadMsg:
		m.downloadable = true
		m.status = "Interview complete. Press ctrl+d to download the report."
	case alertMsg:
		m.alert = msg.text
	case turnMsg:
		m.turns = append(m.turns, msg.turn)

	case recognizedMsg:
		m.input = msg.text
		return m, m.sendCmd(msg.text)
	case listeningMsg:
		m.listening = msg.listening
		if msg.listening {
			m.status = "Listening... press ctrl+l to finish."
		} else if !m.downloadable {
			m.status = ""
		}
	case listenErrMsg:
		m.status = "Speech recognition failed: " + msg.err.Error()

	case startDoneMsg:
		// failures are surfaced through alertMsg
	case sendDoneMsg:
		if msg.err != nil && !errors.Is(msg.err, session.ErrEmptyText) && !errors.Is(msg.err, session.ErrBusy) {
			m.status = "Message not delivered."
		}
	case downloadDoneMsg:
		if msg.err == nil {
			m.status = "Report saved to " + msg.path
		}
	case copyDoneMsg:
		if msg.err != nil {
			m.status = "Copy failed: " + msg.err.Error()
		} else {
			m.status = "Copied to clipboard."
		}
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.alert != "" {
		// any key dismisses the alert
		m.alert = ""
		return m, nil
	}
	if m.screen == screenForm {
		return m.handleFormKey(msg)
	}
	return m.handleInterviewKey(msg)
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		m.focus = 1 - m.focus
	case tea.KeyEnter:
		if m.focus == fieldName {
			m.focus = fieldExperience
			return m, nil
		}
		if !m.controls {
			return m, nil
		}
		return m, m.startCmd(m.name, m.experience)
	case tea.KeyBackspace:
		m.setField(dropLast(m.field()))
	case tea.KeyCtrlU:
		m.setField("")
	case tea.KeyRunes, tea.KeySpace:
		m.setField(m.field() + string(msg.Runes))
	}
	return m, nil
}

func (m Model) handleInterviewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyCtrlD:
		if m.downloadable {
			return m, m.downloadCmd()
		}
	case tea.KeyCtrlY:
		if text, ok := m.lastAITurn(); ok {
			return m, m.copyCmd(text)
		}
	case tea.KeyCtrlL:
		return m.toggleListening()
	case tea.KeyEnter:
		if !m.controls {
			return m, nil
		}
		return m, m.sendCmd(m.input)
	case tea.KeyBackspace:
		if m.controls {
			m.input = dropLast(m.input)
		}
	case tea.KeyCtrlU:
		if m.controls {
			m.input = ""
		}
	case tea.KeyRunes, tea.KeySpace:
		if m.controls {
			m.input += string(msg.Runes)
		}
	}
	return m, nil
}

func (m Model) toggleListening() (tea.Model, tea.Cmd) {
	l := m.deps.Listener
	if l == nil || !l.Available() {
		return m, nil
	}
	if m.listening {
		return m, func() tea.Msg {
			l.Stop()
			return nil
		}
	}
	ctx := m.deps.Ctx
	return m, func() tea.Msg {
		err := l.Start(ctx)
		if err == nil || errors.Is(err, speech.ErrNotAccepting) {
			return nil
		}
		return listenErrMsg{err: err}
	}
}

func (m Model) startCmd(name, experience string) tea.Cmd {
	s, ctx := m.deps.Session, m.deps.Ctx
	return func() tea.Msg {
		return startDoneMsg{err: s.Start(ctx, name, experience)}
	}
}

func (m Model) sendCmd(text string) tea.Cmd {
	s, ctx := m.deps.Session, m.deps.Ctx
	return func() tea.Msg {
		return sendDoneMsg{err: s.Send(ctx, text)}
	}
}

func (m Model) downloadCmd() tea.Cmd {
	s, ctx := m.deps.Session, m.deps.Ctx
	return func() tea.Msg {
		path, err := s.Download(ctx)
		return downloadDoneMsg{path: path, err: err}
	}
}

func (m Model) copyCmd(text string) tea.Cmd {
	copyFn := m.deps.Copy
	return func() tea.Msg {
		if copyFn == nil {
			return copyDoneMsg{err: fmt.Errorf("clipboard not configured")}
		}
		return copyDoneMsg{err: copyFn(text)}
	}
}

func (m Model) lastAITurn() (string, bool) {
	for i := len(m.turns) - 1; i >= 0; i-- {
		if m.turns[i].Sender == transcript.SenderAI {
			return m.turns[i].Text, true
		}
	}
	return "", false
}

func (m *Model) field() string {
	if m.focus == fieldName {
		return m.name
	}
	return m.experience
}

func (m *Model) setField(v string) {
	if m.focus == fieldName {
		m.name = v
	} else {
		m.experience = v
	}
}

func dropLast(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return string(r[:len(r)-1])
}

// Input is the current text of the answer box.
func (m Model) Input() string { return m.input }

// Turns is the rendered message log.
func (m Model) Turns() []transcript.Turn { return m.turns }

func (m Model) ControlsEnabled() bool { return m.controls }

func (m Model) Status() string { return strings.TrimSpace(m.status) }
