// Package conversation holds the ordered log of turns exchanged between a
// visitor and the portfolio assistant during one session.
package conversation

import "time"

// Role attributes a turn to the visitor or to the assistant.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// SpeechStatus records what happened to the speech half of an assistant turn.
type SpeechStatus string

const (
	SpeechNotRequested  SpeechStatus = "not_requested"
	SpeechOK            SpeechStatus = "ok"
	SpeechNotConfigured SpeechStatus = "not_configured"
	SpeechFailed        SpeechStatus = "failed"
)

// Turn is one message in the conversation.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text,omitempty"`

	// Audio is synthesized speech; only assistant turns carry it.
	Audio []byte `json:"audio,omitempty"`

	// InResponseTo is the exact user text an assistant turn answers.
	InResponseTo string `json:"in_response_to,omitempty"`

	Speech SpeechStatus `json:"speech,omitempty"`

	// Error marks an assistant turn whose text describes a failed service call.
	Error bool `json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// UserTurn builds a visitor turn.
func UserTurn(text string) Turn {
	return Turn{Role: RoleUser, Text: text}
}

// NoAudioGenerated reports whether speech was asked for but none was produced.
func (t Turn) NoAudioGenerated() bool {
	if t.Role != RoleAssistant || len(t.Audio) > 0 {
		return false
	}
	return t.Speech == SpeechNotConfigured || t.Speech == SpeechFailed
}
