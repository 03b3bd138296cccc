package prompt

import "fmt"

// Persona selects the assistant's register.
type Persona string

const (
	// PersonaWarm is the chat widget and voice assistant voice.
	PersonaWarm Persona = "warm"

	// PersonaConcise is the dedicated AI-assistant page voice.
	PersonaConcise Persona = "concise"
)

// SystemInstruction builds the system prompt for owner. The FAQ excerpt is
// embedded verbatim and the model is told to prefer it when the question is
// related.
func SystemInstruction(persona Persona, owner, faq string) string {
	var intro string
	switch persona {
	case PersonaConcise:
		intro = fmt.Sprintf(
			"You are %s's AI assistant. Answer questions professionally and concisely. "+
				"Match user questions to FAQ data semantically. Prioritize FAQ answers when available.",
			owner,
		)
	default:
		intro = fmt.Sprintf(
			"You are %s's AI assistant. Respond with warmth, empathy, and a positive tone. "+
				"Always consider the FAQ data provided below and use it to answer questions when relevant. "+
				"If a question matches or relates to the FAQ, use the FAQ answer, but feel free to add a personal, sentimental touch. "+
				"If the FAQ does not cover the question, answer thoughtfully and helpfully.",
			owner,
		)
	}

	return intro + "\n\nFAQ Data:\n" + faq
}

// UserMessage wraps the question with the assembled context.
func UserMessage(bundle Bundle, question string) string {
	return "Context:\n" + bundle.String() + "\n\nQuestion: " + question
}
