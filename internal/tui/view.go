package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"ai-interviewer/internal/transcript"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	focusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	userStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	aiStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	senderStyle  = lipgloss.NewStyle().Bold(true)
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	disabledText = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
	listenStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	alertStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("208")).
			Foreground(lipgloss.Color("208")).
			Padding(0, 1)
)

var spinner = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func (m Model) View() string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("AI Interviewer") + "\n\n")

	if m.screen == screenForm {
		b.WriteString(m.formView())
	} else {
		b.WriteString(m.interviewView(width))
	}

	if m.alert != "" {
		b.WriteString("\n" + alertStyle.Render(m.alert) + "\n")
		b.WriteString(helpStyle.Render("press any key to continue") + "\n")
	}
	return b.String()
}

func (m Model) formView() string {
	var b strings.Builder
	b.WriteString(m.fieldLine("Name", m.name, fieldName) + "\n")
	b.WriteString(m.fieldLine("Programming experience", m.experience, fieldExperience) + "\n\n")

	if !m.controls {
		b.WriteString(disabledText.Render(spinner[m.frame%len(spinner)]+" starting interview...") + "\n")
	} else {
		b.WriteString(helpStyle.Render("tab: switch field • enter: start • esc: quit") + "\n")
	}
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status) + "\n")
	}
	return b.String()
}

func (m Model) fieldLine(label, value string, field int) string {
	cursor := ""
	style := labelStyle
	if m.focus == field {
		cursor = "█"
		style = focusStyle
	}
	return style.Render(label+": ") + value + cursor
}

func (m Model) interviewView(width int) string {
	var b strings.Builder
	b.WriteString(m.logView(width))
	b.WriteString("\n")

	switch {
	case m.downloadable:
		b.WriteString(helpStyle.Render("ctrl+d: download report • ctrl+y: copy evaluation • esc: quit") + "\n")
	case !m.controls:
		b.WriteString(disabledText.Render(spinner[m.frame%len(spinner)]+" interviewer is replying...") + "\n")
	default:
		b.WriteString("> " + m.input + "█\n")
		help := "enter: send • ctrl+y: copy question • esc: quit"
		if m.deps.Listener != nil && m.deps.Listener.Available() {
			help = "enter: send • ctrl+l: speak • ctrl+y: copy question • esc: quit"
		}
		b.WriteString(helpStyle.Render(help) + "\n")
	}

	if m.listening {
		b.WriteString(listenStyle.Render("● LISTENING") + "\n")
	}
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status) + "\n")
	}
	return b.String()
}

// logView renders the newest turns that fit the window.
func (m Model) logView(width int) string {
	wrap := lipgloss.NewStyle().Width(width - 2)
	var rendered []string
	for _, t := range m.turns {
		rendered = append(rendered, wrap.Render(renderTurn(t)))
	}

	maxLines := m.height - 8
	if maxLines <= 0 {
		return strings.Join(rendered, "\n\n") + "\n"
	}

	var out []string
	lines := 0
	for i := len(rendered) - 1; i >= 0; i-- {
		n := strings.Count(rendered[i], "\n") + 2
		if lines+n > maxLines && len(out) > 0 {
			break
		}
		out = append([]string{rendered[i]}, out...)
		lines += n
	}
	return strings.Join(out, "\n\n") + "\n"
}

func renderTurn(t transcript.Turn) string {
	if t.Sender == transcript.SenderUser {
		return senderStyle.Inherit(userStyle).Render("You: ") + userStyle.Render(t.Text)
	}
	return senderStyle.Inherit(aiStyle).Render("AI: ") + aiStyle.Render(t.Text)
}
