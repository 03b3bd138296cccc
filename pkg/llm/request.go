package llm

// CompletionRequest is one chat-completion round trip: a system instruction
// followed by the ordered conversation messages.
type CompletionRequest struct {
	Model    string    `json:"model"`
	System   string    `json:"system"`
	Messages []Message `json:"messages"`
	Options  Options   `json:"options"`
}

// WithSystem returns the full message list with the system instruction first.
func (r CompletionRequest) WithSystem() []Message {
	msgs := make([]Message, 0, len(r.Messages)+1)
	if r.System != "" {
		msgs = append(msgs, Message{Role: RoleSystem, Content: r.System})
	}
	return append(msgs, r.Messages...)
}
