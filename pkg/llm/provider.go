package llm

import "context"

// TokenUsage mirrors the token accounting the orchestrator attaches to
// every phase and rolls up into a session's total_tokens.
type TokenUsage struct {
	Input  int
	Output int
	Total  int
}

// ChatResult is what every Provider.Chat call returns: raw model text
// plus the usage the caller needs for billing/telemetry.
type ChatResult struct {
	Content string
	Usage   TokenUsage
}

// ChatRequest is the provider-agnostic shape of a single completion
// call. Mode selects which concrete model a provider routes to; JSONMode
// asks the provider to constrain output to a single JSON value when it
// supports doing so natively.
type ChatRequest struct {
	SystemPrompt string
	UserPrompt   string
	Mode         string
	MaxTokens    int
	Temperature  float64
	JSONMode     bool
}

// Provider is the contract every LLM backend implements. Chat must
// respect ctx cancellation: the Adapter relies on this to enforce its
// per-mode, per-attempt timeouts.
type Provider interface {
	Chat(ctx context.Context, req ChatRequest) (ChatResult, error)
}

// NonRetryableError wraps a provider error the retry adapter must not
// retry: explicit cancellation, or anything the provider classifies as
// a validation/auth failure (HTTP 400/401/403).
type NonRetryableError struct {
	Err error
}

func (e *NonRetryableError) Error() string { return e.Err.Error() }
func (e *NonRetryableError) Unwrap() error { return e.Err }

// UnavailableProvider is a Provider that always fails, non-retryably.
// It lets the container construct a working Adapter even when the real
// provider couldn't be built (e.g. a missing API key at startup): the
// server still boots and serves every non-LLM route, and only a call
// that actually reaches Chat observes the failure.
type UnavailableProvider struct {
	Reason error
}

func (p *UnavailableProvider) Chat(ctx context.Context, req ChatRequest) (ChatResult, error) {
	return ChatResult{}, &NonRetryableError{Err: p.Reason}
}
