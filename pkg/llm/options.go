package llm

// Options contains model inference parameters.
type Options struct {
	// Sampling temperature; the assistant runs near-deterministic (0.2).
	Temperature float32 `json:"temperature"`

	// Max tokens to generate
	MaxTokens int `json:"max_tokens"`
}
