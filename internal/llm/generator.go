// Package llm defines the orchestrator's view of the language-model client:
// an opaque generator the core calls but never implements, per spec.md §6.
package llm

import "context"

// Request is the generator call shape spec.md §6 names.
type Request struct {
	Prompt        string
	SystemContext string
	MaxTokens     int
	Temperature   float64
}

// Response is the generator's reply shape.
type Response struct {
	Success bool
	Content string
	Error   string
}

// Generator is the LLM client interface. The embedding process supplies an
// implementation; the core only calls Generate.
type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
}
