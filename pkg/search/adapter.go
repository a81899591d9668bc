package search

import (
	"context"
	"sync"
	"time"

	"deepresearch-be/internal/pkg/logger"
)

// Adapter wraps a Provider with the timeout-and-degrade policy the
// contract requires: any failure — timeout, non-2xx, network error —
// becomes an empty result list rather than an error, since the
// orchestrator treats zero sources as a valid state.
type Adapter struct {
	provider Provider
	timeout  time.Duration
	log      logger.ILogger
}

func NewAdapter(provider Provider, timeout time.Duration, log logger.ILogger) *Adapter {
	return &Adapter{provider: provider, timeout: timeout, log: log}
}

// Search runs a single query under the adapter's timeout, degrading to
// an empty list on any failure.
func (a *Adapter) Search(ctx context.Context, query string, opts Options) []Result {
	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	results, err := a.provider.Search(callCtx, query, opts)
	if err != nil {
		a.log.Warn("search", "search call failed, degrading to empty results", map[string]interface{}{
			"query": query,
			"error": err.Error(),
		})
		return []Result{}
	}
	return results
}

// SearchMany fans a batch of queries out concurrently; each query
// independently succeeds or degrades, so one bad sub-query never sinks
// the rest of the batch. The returned slice is index-aligned with qs.
func (a *Adapter) SearchMany(ctx context.Context, qs []string, opts Options) [][]Result {
	out := make([][]Result, len(qs))
	var wg sync.WaitGroup

	for i, q := range qs {
		wg.Add(1)
		go func(i int, q string) {
			defer wg.Done()
			out[i] = a.Search(ctx, q, opts)
		}(i, q)
	}
	wg.Wait()
	return out
}
