// Package llm provides the LLM client abstraction consumed by the
// extraction engine: a single Generate/CreateEmbedding contract, an
// optional caching decorator, and the shared retry policy for LLM
// activities (spec §5, §9 "Cache as optional side-channel").
package llm

import "context"

// Request is a single generation call.
type Request struct {
	Prompt      string
	System      string
	Model       string
	MaxTokens   int
	Temperature float64
	// DisableCache short-circuits any cache decorator for this call.
	DisableCache bool
}

// Response is the raw text returned by the model. Callers that need a
// structured result (e.g. a list of candidate entities) parse Text
// themselves — the client makes no assumption about response shape,
// mirroring the teacher's Executor.Execute returning an opaque Result.
type Response struct {
	Text  string
	Model string
}

// Client is the full surface the extraction engine depends on.
type Client interface {
	Generate(ctx context.Context, req Request) (Response, error)
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}
