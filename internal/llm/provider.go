package llm

import "context"

// Provider is the core abstraction for generative-text interaction.
// Consumers call Complete with a prompt and receive the model's text output.
// The output is untrusted free text; callers that need structure must parse
// and validate it themselves.
type Provider interface {
	// Complete sends a prompt to the model and returns the full text of the
	// response. Providers that stream concatenate all increments before
	// returning; no partial output is ever surfaced.
	Complete(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes a single completion call.
type Request struct {
	// System is the system prompt. Sets the model's role and constraints.
	// Optional.
	System string

	// Prompt is the user message.
	Prompt string

	// MaxTokens bounds the length of the response.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	// Default: 0.0 (deterministic) when not set.
	Temperature float64
}

// Response holds the model's output.
type Response struct {
	// Text is the complete response text, untrimmed.
	Text string

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason indicates why generation stopped.
	// Normalized to: "end", "max_tokens"
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
