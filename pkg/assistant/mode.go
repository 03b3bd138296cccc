package assistant

import (
	"fmt"
	"strings"
)

// Mode selects how an answer is delivered.
type Mode string

const (
	ModeText          Mode = "text"
	ModeSpeech        Mode = "speech"
	ModeTextAndSpeech Mode = "text_and_speech"
)

// ParseMode accepts the mode names used by the HTTP surface and the CLI.
// An empty string is ModeText.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "text only":
		return ModeText, nil
	case "speech", "speech only":
		return ModeSpeech, nil
	case "text_and_speech", "both", "text & speech":
		return ModeTextAndSpeech, nil
	default:
		return "", fmt.Errorf("unknown response mode %q", s)
	}
}

// WantsSpeech reports whether the mode asks for synthesized audio.
func (m Mode) WantsSpeech() bool {
	return m == ModeSpeech || m == ModeTextAndSpeech
}

// WantsText reports whether the answer text is shown.
func (m Mode) WantsText() bool {
	return m != ModeSpeech
}
