// Package persistence exposes the small, parameterized set of
// operations the orchestrator and HTTP surface need against sessions,
// phases, reports and error logs — never a concatenated query string.
package persistence

import (
	"context"
	"time"

	"deepresearch-be/internal/entity"
	"deepresearch-be/internal/pkg/logger"
	"deepresearch-be/internal/repository/contract"
	"deepresearch-be/internal/repository/implementation"
	"deepresearch-be/pkg/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Adapter is the Persistence Adapter of the system design: typed
// reads/writes against the relational schema, with atomic session state
// transitions and append-only phase/report/error writes.
type Adapter struct {
	sessions   contract.SessionRepository
	phases     contract.PhaseRepository
	reports    contract.ReportRepository
	errorLogs  contract.ErrorLogRepository
	log        logger.ILogger
}

func NewAdapter(
	sessions contract.SessionRepository,
	phases contract.PhaseRepository,
	reports contract.ReportRepository,
	errorLogs contract.ErrorLogRepository,
	log logger.ILogger,
) *Adapter {
	return &Adapter{
		sessions:  sessions,
		phases:    phases,
		reports:   reports,
		errorLogs: errorLogs,
		log:       log,
	}
}

// NewAdapterFromDB wires the adapter directly against a *gorm.DB using
// the standard GORM repository implementations — the shape
// internal/bootstrap.Container uses at startup.
func NewAdapterFromDB(db *gorm.DB, log logger.ILogger) *Adapter {
	return NewAdapter(
		implementation.NewSessionRepository(db),
		implementation.NewPhaseRepository(db),
		implementation.NewReportRepository(db),
		implementation.NewErrorLogRepository(db),
		log,
	)
}

func (a *Adapter) observe(op string, start time.Time) {
	if elapsed := time.Since(start); elapsed > database.SlowOperationThreshold {
		a.log.Warn("persistence", "slow operation", map[string]interface{}{
			"operation":   op,
			"duration_ms": elapsed.Milliseconds(),
		})
	}
}

// CreateSession creates a Session in status=running and returns its id.
func (a *Adapter) CreateSession(ctx context.Context, query string, mode entity.Mode) (uuid.UUID, error) {
	defer a.observe("createSession", time.Now())
	session := &entity.Session{
		Id:     uuid.New(),
		Query:  query,
		Mode:   mode,
		Status: entity.StatusRunning,
	}
	if err := a.sessions.Create(ctx, session); err != nil {
		return uuid.Nil, err
	}
	return session.Id, nil
}

// AppendPhase appends a single Phase row. Phase rows within a session
// are always appended in pipeline order; callers are responsible for not
// interleaving concurrent phase writes for the same session.
func (a *Adapter) AppendPhase(ctx context.Context, sessionId uuid.UUID, name string, durationMs, tokens int, metadata map[string]interface{}) error {
	defer a.observe("appendPhase", time.Now())
	phase := &entity.Phase{
		Id:         uuid.New(),
		SessionId:  sessionId,
		Name:       name,
		DurationMs: durationMs,
		TokensUsed: tokens,
		Metadata:   metadata,
	}
	return a.phases.Create(ctx, phase)
}

// WriteReport writes the Report for a session. Idempotent: a second call
// for the same session is a no-op (see reportRepositoryImpl.Create).
func (a *Adapter) WriteReport(ctx context.Context, sessionId uuid.UUID, content string, citations []entity.Citation) error {
	defer a.observe("writeReport", time.Now())
	report := &entity.Report{
		Id:        uuid.New(),
		SessionId: sessionId,
		Content:   content,
		Citations: citations,
	}
	return a.reports.Create(ctx, report)
}

// CompleteSession transitions a session to completed with its aggregate
// telemetry. Must be called strictly after the session's last phase write.
func (a *Adapter) CompleteSession(ctx context.Context, sessionId uuid.UUID, totalLatencyMs, totalTokens int) error {
	defer a.observe("completeSession", time.Now())
	return a.sessions.UpdateStatus(ctx, sessionId, entity.StatusCompleted, &totalLatencyMs, &totalTokens)
}

// FailSession transitions a session to failed. No report is ever written
// for a failed session.
func (a *Adapter) FailSession(ctx context.Context, sessionId uuid.UUID) error {
	defer a.observe("failSession", time.Now())
	return a.sessions.UpdateStatus(ctx, sessionId, entity.StatusFailed, nil, nil)
}

// GetSessionWithReport joins a session with its at-most-one report and
// its phases, for the GET /research/:id response and the stream
// endpoint's "already completed" shortcut.
func (a *Adapter) GetSessionWithReport(ctx context.Context, sessionId uuid.UUID) (*entity.SessionWithReport, error) {
	defer a.observe("getSessionWithReport", time.Now())

	session, err := a.sessions.FindOne(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}

	report, err := a.reports.FindBySession(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	phases, err := a.phases.ListBySession(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	return &entity.SessionWithReport{Session: session, Report: report, Phases: phases}, nil
}

// ListPhases returns a session's phases in insertion order.
func (a *Adapter) ListPhases(ctx context.Context, sessionId uuid.UUID) ([]*entity.Phase, error) {
	defer a.observe("listPhases", time.Now())
	return a.phases.ListBySession(ctx, sessionId)
}

// ListHistory returns the compact, newest-first listing used by GET /history.
func (a *Adapter) ListHistory(ctx context.Context, limit, offset int) ([]*entity.HistoryItem, error) {
	defer a.observe("listHistory", time.Now())
	return a.sessions.ListRecent(ctx, limit, offset)
}

// CountHistory returns the total number of sessions currently stored
// (deleted sessions are not counted).
func (a *Adapter) CountHistory(ctx context.Context) (int64, error) {
	defer a.observe("countHistory", time.Now())
	return a.sessions.Count(ctx)
}

// DeleteSession deletes a session, cascading to its phases and report.
// Its error logs are retained with sessionId nulled by the FK's
// ON DELETE SET NULL behavior.
func (a *Adapter) DeleteSession(ctx context.Context, sessionId uuid.UUID) (bool, error) {
	defer a.observe("deleteSession", time.Now())
	return a.sessions.Delete(ctx, sessionId)
}

// LogError writes a best-effort ErrorEntry. It never returns an error to
// its caller: a logging failure is itself logged and swallowed.
func (a *Adapter) LogError(ctx context.Context, sessionId *uuid.UUID, message, stack string) {
	defer a.observe("logError", time.Now())
	entry := &entity.ErrorEntry{
		Id:        uuid.New(),
		SessionId: sessionId,
		Message:   message,
		Stack:     stack,
	}
	if err := a.errorLogs.Create(ctx, entry); err != nil {
		a.log.Error("persistence", "failed to write error log", map[string]interface{}{
			"error":             err.Error(),
			"original_message":  message,
		})
	}
}

