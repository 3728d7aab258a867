package session

import (
	"context"

	"ai-interviewer/internal/api"
)

// Backend is the interview server.
type Backend interface {
	Start(ctx context.Context, req api.StartRequest) (*api.Reply, error)
	Chat(ctx context.Context, req api.ChatRequest) (*api.Reply, error)
}

// Speaker turns text into audible speech and returns once playback has
// finished. Failures are the speaker's own business and never surface here.
type Speaker interface {
	Speak(ctx context.Context, text string)
}

// ReportOpener fetches the final report for an interview and returns
// where it ended up.
type ReportOpener interface {
	OpenReport(ctx context.Context, id api.InterviewID) (string, error)
}

// View is the part of the UI the controller drives.
type View interface {
	ShowInterview()
	SetControlsEnabled(enabled bool)
	ClearInput()
	ShowDownload()
	Alert(message string)
}

type nopView struct{}

func (nopView) ShowInterview()          {}
func (nopView) SetControlsEnabled(bool) {}
func (nopView) ClearInput()             {}
func (nopView) ShowDownload()           {}
func (nopView) Alert(string)            {}

type silentSpeaker struct{}

func (silentSpeaker) Speak(context.Context, string) {}
