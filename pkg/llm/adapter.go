package llm

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// fixedExponentialBackOff implements backoff.BackOff with the exact
// curve the contract specifies: min(1000*2^(attempt-1), 8000)ms.
type fixedExponentialBackOff struct {
	attempt int
	cap     time.Duration
}

func (b *fixedExponentialBackOff) NextBackOff() time.Duration {
	b.attempt++
	wait := time.Duration(1000*(1<<uint(b.attempt-1))) * time.Millisecond
	if wait > b.cap {
		wait = b.cap
	}
	return wait
}

func (b *fixedExponentialBackOff) Reset() {
	b.attempt = 0
}

// Adapter wraps a Provider with the retry/backoff and per-attempt
// timeout policy the contract requires; the orchestrator only ever
// talks to an *Adapter, never a bare Provider.
type Adapter struct {
	provider         Provider
	maxAttempts      uint
	quickTimeout     time.Duration
	standardTimeout  time.Duration
	deepTimeout      time.Duration
}

func NewAdapter(provider Provider, maxAttempts int, quickTimeout, standardTimeout, deepTimeout time.Duration) *Adapter {
	return &Adapter{
		provider:        provider,
		maxAttempts:     uint(maxAttempts),
		quickTimeout:    quickTimeout,
		standardTimeout: standardTimeout,
		deepTimeout:     deepTimeout,
	}
}

func (a *Adapter) timeoutFor(mode string) time.Duration {
	switch mode {
	case "quick":
		return a.quickTimeout
	case "deep":
		return a.deepTimeout
	default:
		return a.standardTimeout
	}
}

// Chat enforces the per-attempt timeout and retries up to maxAttempts
// times with the contract's backoff curve, short-circuiting on
// cancellation or any NonRetryableError the provider returns.
func (a *Adapter) Chat(ctx context.Context, req ChatRequest) (ChatResult, error) {
	timeout := a.timeoutFor(req.Mode)

	op := func() (ChatResult, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		result, err := a.provider.Chat(attemptCtx, req)
		if err != nil {
			var nonRetryable *NonRetryableError
			if errors.As(err, &nonRetryable) || errors.Is(ctx.Err(), context.Canceled) {
				return ChatResult{}, backoff.Permanent(err)
			}
			return ChatResult{}, err
		}
		return result, nil
	}

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(&fixedExponentialBackOff{cap: 8 * time.Second}),
		backoff.WithMaxTries(a.maxAttempts),
	)
}
