package service

import (
	"context"
	"sync"
	"time"

	"deepresearch-be/internal/dto"
	"deepresearch-be/internal/entity"
	"deepresearch-be/internal/persistence"
	"deepresearch-be/internal/pkg/logger"
	"deepresearch-be/internal/pkg/serverutils"
	"deepresearch-be/pkg/events"
	"deepresearch-be/pkg/orchestrator"

	"github.com/google/uuid"
)

// IResearchService bridges the HTTP surface to the Orchestrator,
// Persistence Adapter and event Bus. It owns exactly one thing the
// Orchestrator does not: making sure a Deep session has at most one
// pipeline run in flight at a time, however many clients are attached
// to its stream. Once the last subscriber has gone that run is
// cancelled, and an attach after it has ended starts a new run.
type IResearchService interface {
	Start(ctx context.Context, query, mode string) (*dto.StartResearchResponse, error)
	GetSession(ctx context.Context, sessionID uuid.UUID) (*dto.SessionSnapshotResponse, error)
	AttachStream(ctx context.Context, sessionID uuid.UUID) (*dto.SessionSnapshotResponse, <-chan events.Event, error)
	ListHistory(ctx context.Context, limit, offset int) (*dto.HistoryListResponse, error)
	DeleteSession(ctx context.Context, sessionID uuid.UUID) (*dto.DeleteSessionResponse, error)
}

// pipelineRun tracks a single Deep session's in-flight pipeline: the
// cancel func for the context it was started with, and how many stream
// subscribers are currently attached to it. The pipeline's context is
// cancelled the moment the last attacher goes away, which is how a
// client disconnect is threaded down into Orchestrator.RunDeepPipeline
// and from there into the LLM/Search adapters.
type pipelineRun struct {
	cancel   context.CancelFunc
	refCount int
}

type researchService struct {
	orchestrator *orchestrator.Orchestrator
	persist      *persistence.Adapter
	bus          *events.Bus
	log          logger.ILogger

	mu   sync.Mutex
	runs map[uuid.UUID]*pipelineRun
}

func NewResearchService(orch *orchestrator.Orchestrator, persist *persistence.Adapter, bus *events.Bus, log logger.ILogger) IResearchService {
	return &researchService{orchestrator: orch, persist: persist, bus: bus, log: log, runs: make(map[uuid.UUID]*pipelineRun)}
}

// Start runs the shared pre-run step plus quick/standard's synchronous
// completion, or creates a running Session for deep mode and returns
// immediately — the pipeline itself waits for AttachStream.
func (s *researchService) Start(ctx context.Context, query, mode string) (*dto.StartResearchResponse, error) {
	outcome, err := s.orchestrator.Start(ctx, query, entity.Mode(mode))
	if err != nil {
		return nil, serverutils.NewInternalError("failed to start research")
	}

	res := &dto.StartResearchResponse{
		Mode:      mode,
		FromCache: outcome.FromCache,
	}
	if !outcome.FromCache {
		res.SessionId = outcome.SessionID
	}
	res.Status = string(outcome.Status)
	if outcome.Status == entity.StatusCompleted {
		res.Report = outcome.Report
		res.Citations = citationsToDTO(outcome.Citations)
		res.Tokens = dto.TokenUsageDTO{Input: outcome.Tokens.Input, Output: outcome.Tokens.Output, Total: outcome.Tokens.Total}
	}
	return res, nil
}

// GetSession returns the session snapshot + report + phases, or a
// not_found APIError if the session does not exist.
func (s *researchService) GetSession(ctx context.Context, sessionID uuid.UUID) (*dto.SessionSnapshotResponse, error) {
	view, err := s.persist.GetSessionWithReport(ctx, sessionID)
	if err != nil {
		return nil, serverutils.NewInternalError("failed to fetch session")
	}
	if view == nil {
		return nil, serverutils.NewNotFoundError("session not found")
	}
	return sessionViewToDTO(view), nil
}

// AttachStream is called by the stream endpoint. If the session is
// already terminal it returns the snapshot and a nil channel — the
// controller responds with a single JSON payload instead of opening a
// stream. Otherwise it subscribes to the session's event topic and, on
// the first attach only, starts the Deep pipeline bound to a context
// owned by this service rather than any one caller's. That context is
// cancelled the moment the last attacher's own ctx is Done, so a client
// disconnect (and, in particular, the last client disconnecting) is
// what actually reaches Orchestrator.RunDeepPipeline as cancellation.
func (s *researchService) AttachStream(ctx context.Context, sessionID uuid.UUID) (*dto.SessionSnapshotResponse, <-chan events.Event, error) {
	view, err := s.persist.GetSessionWithReport(ctx, sessionID)
	if err != nil {
		return nil, nil, serverutils.NewInternalError("failed to fetch session")
	}
	if view == nil {
		return nil, nil, serverutils.NewNotFoundError("session not found")
	}
	if view.Session.Status == entity.StatusCompleted || view.Session.Status == entity.StatusFailed {
		return sessionViewToDTO(view), nil, nil
	}

	ch, err := s.bus.Subscribe(ctx, sessionID)
	if err != nil {
		return nil, nil, serverutils.NewInternalError("failed to attach to session stream")
	}

	s.attach(sessionID, view.Session.Query)
	go func() {
		<-ctx.Done()
		s.detach(sessionID)
	}()

	return nil, ch, nil
}

// attach increments sessionID's subscriber count, starting the Deep
// pipeline on the 0→1 transition. Safe to call repeatedly for the same
// session: a client that attaches while a run is underway joins that
// run; the entry is removed when the run ends, so a later attach
// starts a fresh one.
func (s *researchService) attach(sessionID uuid.UUID, query string) {
	s.mu.Lock()
	run, ok := s.runs[sessionID]
	if ok {
		run.refCount++
		s.mu.Unlock()
		return
	}
	runCtx, cancel := context.WithCancel(context.Background())
	s.runs[sessionID] = &pipelineRun{cancel: cancel, refCount: 1}
	s.mu.Unlock()

	go func() {
		s.runDeepWithEvents(runCtx, sessionID, query)
		s.mu.Lock()
		delete(s.runs, sessionID)
		s.mu.Unlock()
	}()
}

// detach decrements sessionID's subscriber count, cancelling the
// pipeline's context once the last attacher has gone.
func (s *researchService) detach(sessionID uuid.UUID) {
	s.mu.Lock()
	run, ok := s.runs[sessionID]
	if !ok {
		s.mu.Unlock()
		return
	}
	run.refCount--
	if run.refCount <= 0 {
		s.mu.Unlock()
		run.cancel()
		return
	}
	s.mu.Unlock()
}

// runDeepWithEvents drives the Orchestrator with a ProgressFunc that
// republishes every phase boundary onto the bus, then emits the
// terminal complete/error event once the pipeline and its persistence
// writes are done. ctx is the session's shared pipeline context (see
// attach/detach above); its cancellation is what propagates a client
// disconnect into Orchestrator.RunDeepPipeline and, from there, into
// the LLM/Search adapters.
func (s *researchService) runDeepWithEvents(ctx context.Context, sessionID uuid.UUID, query string) {
	progress := func(phase string, prog int, message string, data interface{}) {
		_ = s.bus.Publish(sessionID, events.EventPhase, events.PhasePayload{
			Phase: phase, Progress: prog, Message: message, Data: data, Timestamp: time.Now().UnixMilli(),
		})
	}

	s.orchestrator.RunDeepPipeline(ctx, sessionID, query, progress)

	// The status read below must succeed regardless of why the pipeline
	// returned, including when ctx above is already cancelled.
	readCtx := context.Background()
	view, err := s.persist.GetSessionWithReport(readCtx, sessionID)
	if err != nil || view == nil {
		_ = s.bus.Publish(sessionID, events.EventError, events.ErrorPayload{Message: "failed to load completed session"})
		return
	}
	switch view.Session.Status {
	case entity.StatusCompleted:
		tokens := events.TokenTotals{}
		if view.Session.TotalTokens != nil {
			tokens.Total = *view.Session.TotalTokens
		}
		latency := 0
		if view.Session.TotalLatencyMs != nil {
			latency = *view.Session.TotalLatencyMs
		}
		var content string
		var citations []entity.Citation
		if view.Report != nil {
			content = view.Report.Content
			citations = view.Report.Citations
		}
		_ = s.bus.Publish(sessionID, events.EventComplete, events.CompletePayload{
			SessionID: sessionID.String(),
			Report:    content,
			Citations: citationsToDTO(citations),
			Tokens:    tokens,
			LatencyMs: latency,
		})
	case entity.StatusFailed:
		_ = s.bus.Publish(sessionID, events.EventError, events.ErrorPayload{Message: "research pipeline failed"})
	default:
		// Still running: the pipeline returned because its context was
		// cancelled (client disconnect). No terminal event is emitted;
		// the session is left running, per the documented cancellation
		// semantics.
	}
}

func (s *researchService) ListHistory(ctx context.Context, limit, offset int) (*dto.HistoryListResponse, error) {
	items, err := s.persist.ListHistory(ctx, limit, offset)
	if err != nil {
		return nil, serverutils.NewInternalError("failed to list history")
	}
	total, err := s.persist.CountHistory(ctx)
	if err != nil {
		return nil, serverutils.NewInternalError("failed to count history")
	}

	out := make([]dto.HistoryItemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, dto.HistoryItemDTO{
			SessionId: item.Id,
			Query:     item.Query,
			Mode:      string(item.Mode),
			Status:    string(item.Status),
			CreatedAt: item.CreatedAt,
		})
	}
	return &dto.HistoryListResponse{Items: out, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *researchService) DeleteSession(ctx context.Context, sessionID uuid.UUID) (*dto.DeleteSessionResponse, error) {
	deleted, err := s.persist.DeleteSession(ctx, sessionID)
	if err != nil {
		return nil, serverutils.NewInternalError("failed to delete session")
	}
	if !deleted {
		return nil, serverutils.NewNotFoundError("session not found")
	}
	return &dto.DeleteSessionResponse{Deleted: true, Id: sessionID}, nil
}

func citationsToDTO(citations []entity.Citation) []dto.CitationDTO {
	out := make([]dto.CitationDTO, 0, len(citations))
	for _, c := range citations {
		out = append(out, dto.CitationDTO{Id: c.Id, Title: c.Title, Url: c.Url, Relevance: c.Relevance})
	}
	return out
}

func sessionViewToDTO(view *entity.SessionWithReport) *dto.SessionSnapshotResponse {
	res := &dto.SessionSnapshotResponse{
		SessionId:      view.Session.Id,
		Query:          view.Session.Query,
		Mode:           string(view.Session.Mode),
		Status:         string(view.Session.Status),
		TotalLatencyMs: view.Session.TotalLatencyMs,
		TotalTokens:    view.Session.TotalTokens,
		CreatedAt:      view.Session.CreatedAt,
		Phases:         make([]dto.PhaseDTO, 0, len(view.Phases)),
	}
	if view.Report != nil {
		res.Report = &dto.ReportDTO{
			Content:   view.Report.Content,
			Citations: citationsToDTO(view.Report.Citations),
		}
	}
	for _, p := range view.Phases {
		res.Phases = append(res.Phases, dto.PhaseDTO{
			Name:       p.Name,
			DurationMs: p.DurationMs,
			TokensUsed: p.TokensUsed,
			Metadata:   p.Metadata,
			CreatedAt:  p.CreatedAt,
		})
	}
	return res
}
