// Package engine routes questions to named answer engines and normalizes
// their responses into a single envelope shape. An engine pairs a text
// generator with a prompting strategy: some engines receive retrieved course
// context, others answer the bare question.
package engine

import "context"

// Answer is a normalized engine response.
type Answer struct {
	// Text is the extracted answer text, ready for display.
	Text string `json:"text"`

	// Raw is the backend's native response payload, preserved for clients
	// that need token usage or other provider-specific fields.
	Raw any `json:"raw,omitempty"`
}

// Envelope is the response shape returned to API clients for every engine,
// regardless of which backend produced the answer.
type Envelope struct {
	// Answers holds the normalized answer.
	Answers Answer `json:"answers"`

	// Question echoes the question that was asked.
	Question string `json:"question"`
}

// Generator produces an answer for a fully rendered prompt.
// Implementations must be safe to call from multiple goroutines.
type Generator interface {
	// Name returns the engine's display name.
	Name() string

	// Generate produces an answer for the given prompt.
	Generate(ctx context.Context, prompt string) (Answer, error)
}
