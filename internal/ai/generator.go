package ai

import "context"

// Generator produces a complete text response for a single prompt.
// Concrete implementations wrap a specific LLM provider.
type Generator interface {
	// GenerateContent sends the prompt and returns the full textual response.
	GenerateContent(ctx context.Context, prompt string) (string, error)
	// Model reports the configured model identifier, for logging.
	Model() string
}

// StreamCompleter produces a response incrementally, invoking onDelta for
// each generated fragment and returning the concatenated result. Only the
// summarization helper consumes streaming; scoring uses Generator.
type StreamCompleter interface {
	StreamCompletion(ctx context.Context, system, prompt string, onDelta func(string)) (string, error)
}
