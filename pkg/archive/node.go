// Package archive keeps finished conversations as content-addressed chains of
// turns. Each turn is a node whose hash covers its entry and its parent's
// hash, so identical transcripts collapse onto the same nodes and transcripts
// that diverge branch from their shared prefix.
package archive

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/claire-namusoke/portfolio/pkg/conversation"
)

// Entry is the hashed content of one archived turn. Timestamps and session
// ids are left out so identical conversations deduplicate.
type Entry struct {
	Role         conversation.Role         `json:"role"`
	Text         string                    `json:"text,omitempty"`
	InResponseTo string                    `json:"in_response_to,omitempty"`
	Speech       conversation.SpeechStatus `json:"speech,omitempty"`
	Error        bool                      `json:"error,omitempty"`

	// AudioBytes records how much audio was delivered; the audio itself is
	// not archived.
	AudioBytes int `json:"audio_bytes,omitempty"`
}

// EntryFromTurn converts a conversation turn.
func EntryFromTurn(t conversation.Turn) Entry {
	return Entry{
		Role:         t.Role,
		Text:         t.Text,
		InResponseTo: t.InResponseTo,
		Speech:       t.Speech,
		Error:        t.Error,
		AudioBytes:   len(t.Audio),
	}
}

// Node is a single content-addressed turn.
type Node struct {
	// Hash is the content-addressed identifier (SHA-256, hex-encoded)
	Hash string `json:"hash"`

	// ParentHash links to the previous turn; nil for the first turn.
	ParentHash *string `json:"parent_hash"`

	Entry Entry `json:"entry"`
}

type hashInput struct {
	Parent string `json:"parent,omitempty"`
	Entry  Entry  `json:"entry"`
}

// NewNode creates a node for entry chained onto parent (nil for a root).
func NewNode(entry Entry, parent *Node) *Node {
	n := &Node{Entry: entry}
	if parent != nil {
		hash := parent.Hash
		n.ParentHash = &hash
	}
	n.Hash = n.computeHash()
	return n
}

func (n *Node) computeHash() string {
	in := hashInput{Entry: n.Entry}
	if n.ParentHash != nil {
		in.Parent = *n.ParentHash
	}

	// Entry has a fixed field order, so the encoding is canonical.
	data, err := json.Marshal(in)
	if err != nil {
		panic("failed to marshal hash input: " + err.Error())
	}

	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
