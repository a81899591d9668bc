package orchestrator

import (
	"context"
	"fmt"
	"time"

	"deepresearch-be/internal/entity"
	"deepresearch-be/internal/persistence"
	"deepresearch-be/internal/pkg/logger"
	"deepresearch-be/pkg/cache"
	"deepresearch-be/pkg/llm"
	"deepresearch-be/pkg/search"

	"github.com/google/uuid"
)

// Orchestrator is the sole owner of Session state transitions. It
// consults the cache before doing any work and is the only component
// that creates, completes, or fails a Session.
type Orchestrator struct {
	llm     *llm.Adapter
	search  *search.Adapter
	cache   *cache.ResearchCache
	persist *persistence.Adapter
	log     logger.ILogger
}

func NewOrchestrator(llmAdapter *llm.Adapter, searchAdapter *search.Adapter, researchCache *cache.ResearchCache, persist *persistence.Adapter, log logger.ILogger) *Orchestrator {
	return &Orchestrator{llm: llmAdapter, search: searchAdapter, cache: researchCache, persist: persist, log: log}
}

// StartOutcome is what Start returns: either a cache hit (FromCache
// true, SessionID the zero value — no session is ever created for a
// cache hit) or a freshly created session, completed synchronously for
// quick/standard or left running for deep (its pipeline runs when the
// stream endpoint connects).
type StartOutcome struct {
	FromCache bool
	SessionID uuid.UUID
	Status    entity.Status
	Report    string
	Citations []entity.Citation
	Tokens    llm.TokenUsage
	LatencyMs int
}

// Start implements the shared pre-run step plus quick/standard's
// synchronous completion. For deep mode it only creates the session;
// the caller must invoke RunDeepPipeline once a stream subscriber is
// attached.
func (o *Orchestrator) Start(ctx context.Context, query string, mode entity.Mode) (StartOutcome, error) {
	if entry, hit := o.cache.Get(query, string(mode)); hit {
		return StartOutcome{
			FromCache: true,
			Status:    entity.StatusCompleted,
			Report:    entry.Report,
			Citations: entry.Citations,
			Tokens:    entry.Tokens,
			LatencyMs: entry.LatencyMs,
		}, nil
	}

	sessionID, err := o.persist.CreateSession(ctx, query, mode)
	if err != nil {
		return StartOutcome{}, fmt.Errorf("orchestrator: create session: %w", err)
	}

	if mode == entity.ModeDeep {
		return StartOutcome{SessionID: sessionID, Status: entity.StatusRunning}, nil
	}

	result, latencyMs, err := o.runSync(ctx, query, mode)
	if err != nil {
		o.fail(ctx, sessionID, err)
		return StartOutcome{}, err
	}

	if err := o.finish(ctx, sessionID, query, mode, result, latencyMs); err != nil {
		return StartOutcome{}, err
	}

	return StartOutcome{
		SessionID: sessionID,
		Status:    entity.StatusCompleted,
		Report:    result.Report,
		Citations: result.Citations,
		Tokens:    llm.TokenUsage{Input: result.TokensIn, Output: result.TokensOut, Total: result.totalTokens()},
		LatencyMs: latencyMs,
	}, nil
}

func (o *Orchestrator) runSync(ctx context.Context, query string, mode entity.Mode) (*Result, int, error) {
	start := time.Now()
	var result *Result
	var err error
	switch mode {
	case entity.ModeQuick:
		result, err = o.runQuick(ctx, query)
	case entity.ModeStandard:
		result, err = o.runStandard(ctx, query)
	default:
		return nil, 0, fmt.Errorf("orchestrator: unsupported synchronous mode %q", mode)
	}
	if err != nil {
		return nil, 0, err
	}
	return result, int(time.Since(start).Milliseconds()), nil
}

// RunDeepPipeline executes the deep pipeline for a session Start
// already created. It must not run twice concurrently for the same
// session; the caller (the research service's in-flight guard) is
// responsible for that. A run that returns on cancellation persists
// nothing, so a later run for the same still-running session is safe.
func (o *Orchestrator) RunDeepPipeline(ctx context.Context, sessionID uuid.UUID, query string, progress ProgressFunc) {
	start := time.Now()
	result, err := o.runDeep(ctx, query, progress)
	if err != nil {
		if ctx.Err() != nil {
			// Client disconnected / cancelled: session stays running,
			// per the documented cancellation semantics — it is never
			// marked failed on cancellation, only on a real pipeline error.
			return
		}
		o.fail(ctx, sessionID, err)
		return
	}

	latencyMs := int(time.Since(start).Milliseconds())
	if err := o.finish(ctx, sessionID, query, entity.ModeDeep, result, latencyMs); err != nil {
		o.log.Error("orchestrator", "failed to persist completed deep session", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}
}

func (o *Orchestrator) finish(ctx context.Context, sessionID uuid.UUID, query string, mode entity.Mode, result *Result, latencyMs int) error {
	if err := o.persist.WriteReport(ctx, sessionID, result.Report, result.Citations); err != nil {
		return fmt.Errorf("orchestrator: write report: %w", err)
	}
	for _, row := range result.PhaseRows {
		if err := o.persist.AppendPhase(ctx, sessionID, row.Name, row.DurationMs, row.TokensUsed, row.Metadata); err != nil {
			o.log.Error("orchestrator", "failed to append phase", map[string]interface{}{"session_id": sessionID, "phase": row.Name, "error": err.Error()})
		}
	}
	totalTokens := result.totalTokens()
	if err := o.persist.CompleteSession(ctx, sessionID, latencyMs, totalTokens); err != nil {
		return fmt.Errorf("orchestrator: complete session: %w", err)
	}
	o.cache.Set(query, string(mode), cache.Entry{
		Report:    result.Report,
		Citations: result.Citations,
		Tokens:    llm.TokenUsage{Input: result.TokensIn, Output: result.TokensOut, Total: totalTokens},
		LatencyMs: latencyMs,
	})
	return nil
}

func (o *Orchestrator) fail(ctx context.Context, sessionID uuid.UUID, cause error) {
	if err := o.persist.FailSession(ctx, sessionID); err != nil {
		o.log.Error("orchestrator", "failed to mark session failed", map[string]interface{}{"session_id": sessionID, "error": err.Error()})
	}
	o.persist.LogError(ctx, &sessionID, cause.Error(), "")
}
