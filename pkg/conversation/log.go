package conversation

import (
	"sync"
	"time"
)

// Log is an ordered, append-only sequence of turns. Turns are never removed
// individually; Clear drops the whole sequence.
type Log struct {
	mu    sync.RWMutex
	turns []Turn
	now   func() time.Time
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{now: time.Now}
}

// Append adds turn to the end of the log.
func (l *Log) Append(turn Turn) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = l.now()
	}
	l.turns = append(l.turns, turn)
}

// LastUserTurn returns the most recent visitor turn.
func (l *Log) LastUserTurn() (Turn, bool) {
	return l.last(RoleUser)
}

// LastAssistantTurn returns the most recent assistant turn.
func (l *Log) LastAssistantTurn() (Turn, bool) {
	return l.last(RoleAssistant)
}

func (l *Log) last(role Role) (Turn, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for i := len(l.turns) - 1; i >= 0; i-- {
		if l.turns[i].Role == role {
			return l.turns[i], true
		}
	}
	return Turn{}, false
}

// HasAnsweredAlready reports whether userText is both the latest visitor input
// and the input the latest assistant turn answers.
func (l *Log) HasAnsweredAlready(userText string) bool {
	user, ok := l.LastUserTurn()
	if !ok || user.Text != userText {
		return false
	}
	assistant, ok := l.LastAssistantTurn()
	return ok && assistant.InResponseTo == userText
}

// Clear empties the log.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.turns = nil
}

// Len returns the number of turns.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.turns)
}

// Turns returns a copy of the ordered sequence.
func (l *Log) Turns() []Turn {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Turn(nil), l.turns...)
}
