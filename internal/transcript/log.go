// Package transcript keeps the visible, append-only record of interview turns.
package transcript

import (
	"fmt"
	"sync"
	"time"
)

// Sender identifies who produced a turn.
type Sender int

const (
	SenderUser Sender = iota
	SenderAI
)

func (s Sender) String() string {
	switch s {
	case SenderUser:
		return "user"
	case SenderAI:
		return "ai"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Turn is one rendered message. Turns are never modified after Append.
type Turn struct {
	Seq    int
	Sender Sender
	Text   string
	At     time.Time
}

// Log is an append-only list of turns with change notification.
type Log struct {
	mu        sync.RWMutex
	turns     []Turn
	listeners []func(Turn)
}

func NewLog() *Log {
	return &Log{}
}

// Subscribe registers fn to be called after every Append.
func (l *Log) Subscribe(fn func(Turn)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, fn)
}

// Append adds a turn and notifies listeners outside the lock.
func (l *Log) Append(sender Sender, text string) Turn {
	l.mu.Lock()
	turn := Turn{
		Seq:    len(l.turns) + 1,
		Sender: sender,
		Text:   text,
		At:     time.Now(),
	}
	l.turns = append(l.turns, turn)
	listeners := make([]func(Turn), len(l.listeners))
	copy(listeners, l.listeners)
	l.mu.Unlock()

	for _, fn := range listeners {
		fn(turn)
	}
	return turn
}

// Turns returns a copy of all turns in order.
func (l *Log) Turns() []Turn {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Turn, len(l.turns))
	copy(out, l.turns)
	return out
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.turns)
}

// Last returns the most recent turn from sender.
func (l *Log) Last(sender Sender) (Turn, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for i := len(l.turns) - 1; i >= 0; i-- {
		if l.turns[i].Sender == sender {
			return l.turns[i], true
		}
	}
	return Turn{}, false
}

// Count returns how many turns sender has produced.
func (l *Log) Count(sender Sender) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n := 0
	for _, t := range l.turns {
		if t.Sender == sender {
			n++
		}
	}
	return n
}
