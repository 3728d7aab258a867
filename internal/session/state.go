// Package session drives the client side of one interview: start, turn
// taking, speech sequencing, termination and report download.
package session

import (
	"errors"
	"fmt"
)

// State is the lifecycle state of the interview session.
//
// Transitions:
//
//	NOT_STARTED → STARTING → AWAITING_RESPONSE → ACTIVE
//	                  │                             │
//	                  └── start failed ──→ NOT_STARTED
//
//	ACTIVE → AWAITING_RESPONSE → ACTIVE (loop)
//	                  │
//	                  └── interview_over ──→ TERMINATED
type State int

const (
	StateNotStarted State = iota
	// StateStarting - start request in flight; further starts are dropped.
	StateStarting
	StateActive
	// StateAwaitingResponse - chat request or AI speech in progress.
	StateAwaitingResponse
	// StateTerminated is final. Controls stay disabled.
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "NOT_STARTED"
	case StateStarting:
		return "STARTING"
	case StateActive:
		return "ACTIVE"
	case StateAwaitingResponse:
		return "AWAITING_RESPONSE"
	case StateTerminated:
		return "TERMINATED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(s))
	}
}

var (
	ErrInvalidCandidate = errors.New("name and experience are required")
	ErrEmptyText        = errors.New("text is empty")
	ErrBusy             = errors.New("a reply is already in progress")
	ErrNotStarted       = errors.New("interview has not started")
	ErrTerminated       = errors.New("interview is over")
	ErrMissingID        = errors.New("backend did not assign an interview id")
)

// User-facing texts.
const (
	MissingFieldsText = "Please enter your name and your experience."
	StartFailedText   = "Could not start the interview. Please try again."
	ErrorTurnText     = "Sorry, an error occurred. Please try again."
	ReportFailedText  = "Could not download the report."
)

// FinalTurnText is the closing turn appended when the interview ends.
func FinalTurnText(evaluation string) string {
	return "The interview is over. Final evaluation:\n" + evaluation
}
