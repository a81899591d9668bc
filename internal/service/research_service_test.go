package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"deepresearch-be/internal/entity"
	"deepresearch-be/internal/persistence"
	"deepresearch-be/pkg/cache"
	"deepresearch-be/pkg/events"
	"deepresearch-be/pkg/llm"
	"deepresearch-be/pkg/orchestrator"
	"deepresearch-be/pkg/search"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes, mirroring pkg/orchestrator's test harness -------------------

type noopLogger struct{}

func (noopLogger) Debug(string, string, map[string]interface{}) {}
func (noopLogger) Info(string, string, map[string]interface{})  {}
func (noopLogger) Warn(string, string, map[string]interface{})  {}
func (noopLogger) Error(string, string, map[string]interface{}) {}
func (noopLogger) Sync() error                                  { return nil }

type scriptedLLM struct {
	mu      sync.Mutex
	content string
}

func (s *scriptedLLM) Chat(ctx context.Context, req llm.ChatRequest) (llm.ChatResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if req.JSONMode {
		payload, _ := json.Marshal(map[string]interface{}{
			"coreQuestion": req.UserPrompt, "subQuestions": []string{}, "domain": "general", "outputType": "analysis",
		})
		return llm.ChatResult{Content: string(payload), Usage: llm.TokenUsage{Input: 5, Output: 5, Total: 10}}, nil
	}
	content := s.content
	if content == "" {
		content = "a generated report"
	}
	return llm.ChatResult{Content: content, Usage: llm.TokenUsage{Input: 10, Output: 20, Total: 30}}, nil
}

// blockingLLM never returns until ctx is cancelled, so a test can prove
// that cancelling a client's AttachStream context actually reaches the
// in-flight Orchestrator.RunDeepPipeline call rather than being
// discarded at the service boundary.
type blockingLLM struct {
	cancelledAt chan struct{}
}

func (b blockingLLM) Chat(ctx context.Context, req llm.ChatRequest) (llm.ChatResult, error) {
	if req.JSONMode {
		payload, _ := json.Marshal(map[string]interface{}{
			"coreQuestion": req.UserPrompt, "subQuestions": []string{}, "domain": "general", "outputType": "analysis",
		})
		return llm.ChatResult{Content: string(payload), Usage: llm.TokenUsage{Input: 5, Output: 5, Total: 10}}, nil
	}
	<-ctx.Done()
	if b.cancelledAt != nil {
		close(b.cancelledAt)
	}
	return llm.ChatResult{}, ctx.Err()
}

type emptySearch struct{}

func (emptySearch) Search(ctx context.Context, query string, opts search.Options) ([]search.Result, error) {
	return nil, nil
}

type fakeSessions struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*entity.Session
}

func newFakeSessions() *fakeSessions { return &fakeSessions{sessions: map[uuid.UUID]*entity.Session{}} }

func (f *fakeSessions) Create(ctx context.Context, s *entity.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[s.Id] = s
	return nil
}

func (f *fakeSessions) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.Status, totalLatencyMs, totalTokens *int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil
	}
	s.Status = status
	s.TotalLatencyMs = totalLatencyMs
	s.TotalTokens = totalTokens
	return nil
}

func (f *fakeSessions) FindOne(ctx context.Context, id uuid.UUID) (*entity.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[id], nil
}

func (f *fakeSessions) ListRecent(ctx context.Context, limit, offset int) ([]*entity.HistoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := make([]*entity.HistoryItem, 0, len(f.sessions))
	for _, s := range f.sessions {
		items = append(items, &entity.HistoryItem{Id: s.Id, Query: s.Query, Mode: s.Mode, Status: s.Status, CreatedAt: s.CreatedAt})
	}
	if offset >= len(items) {
		return nil, nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end], nil
}

func (f *fakeSessions) Count(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.sessions)), nil
}

func (f *fakeSessions) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[id]; !ok {
		return false, nil
	}
	delete(f.sessions, id)
	return true, nil
}

type fakePhases struct {
	mu     sync.Mutex
	phases map[uuid.UUID][]*entity.Phase
}

func newFakePhases() *fakePhases { return &fakePhases{phases: map[uuid.UUID][]*entity.Phase{}} }

func (f *fakePhases) Create(ctx context.Context, p *entity.Phase) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.phases[p.SessionId] = append(f.phases[p.SessionId], p)
	return nil
}

func (f *fakePhases) ListBySession(ctx context.Context, sessionId uuid.UUID) ([]*entity.Phase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phases[sessionId], nil
}

type fakeReports struct {
	mu      sync.Mutex
	reports map[uuid.UUID]*entity.Report
}

func newFakeReports() *fakeReports { return &fakeReports{reports: map[uuid.UUID]*entity.Report{}} }

func (f *fakeReports) Create(ctx context.Context, r *entity.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.reports[r.SessionId]; exists {
		return nil
	}
	f.reports[r.SessionId] = r
	return nil
}

func (f *fakeReports) FindBySession(ctx context.Context, sessionId uuid.UUID) (*entity.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reports[sessionId], nil
}

type fakeErrorLogs struct{ mu sync.Mutex }

func (f *fakeErrorLogs) Create(ctx context.Context, e *entity.ErrorEntry) error { return nil }

// --- harness -------------------------------------------------------------

type harness struct {
	service  IResearchService
	sessions *fakeSessions
}

func newHarness() *harness {
	return newHarnessWithProvider(&scriptedLLM{})
}

func newHarnessWithProvider(provider llm.Provider) *harness {
	sessions := newFakeSessions()
	phases := newFakePhases()
	reports := newFakeReports()
	errorLogs := &fakeErrorLogs{}

	persist := persistence.NewAdapter(sessions, phases, reports, errorLogs, noopLogger{})
	llmAdapter := llm.NewAdapter(provider, 1, 10*time.Second, 10*time.Second, 10*time.Second)
	searchAdapter := search.NewAdapter(emptySearch{}, time.Second, noopLogger{})
	researchCache := cache.NewResearchCache(15*time.Minute, 20*time.Minute, 30*time.Minute)
	orch := orchestrator.NewOrchestrator(llmAdapter, searchAdapter, researchCache, persist, noopLogger{})
	bus := events.NewBus(noopLogger{})

	return &harness{
		service:  NewResearchService(orch, persist, bus, noopLogger{}),
		sessions: sessions,
	}
}

// --- tests -----------------------------------------------------------------

func TestStart_QuickMode_CompletesSynchronouslyWithNoFromCacheFlag(t *testing.T) {
	h := newHarness()

	res, err := h.service.Start(context.Background(), "what is tcp", "quick")

	require.NoError(t, err)
	assert.False(t, res.FromCache)
	assert.Equal(t, "completed", res.Status)
	assert.NotEmpty(t, res.Report)
	assert.NotEqual(t, uuid.Nil, res.SessionId)
}

func TestStart_CacheHit_SkipsSessionCreation(t *testing.T) {
	h := newHarness()

	first, err := h.service.Start(context.Background(), "repeat question", "quick")
	require.NoError(t, err)
	require.Len(t, h.sessions.sessions, 1)

	second, err := h.service.Start(context.Background(), "repeat question", "quick")
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Report, second.Report)
	assert.Len(t, h.sessions.sessions, 1, "a cache hit must not add a second session row")
}

func TestStart_DeepMode_ReturnsRunningWithoutExecutingPipeline(t *testing.T) {
	h := newHarness()

	res, err := h.service.Start(context.Background(), "a deep query", "deep")

	require.NoError(t, err)
	assert.Equal(t, "running", res.Status)
	assert.Empty(t, res.Report, "deep mode must not run synchronously")
	assert.NotEqual(t, uuid.Nil, res.SessionId)
}

func TestGetSession_UnknownID_ReturnsNotFound(t *testing.T) {
	h := newHarness()

	_, err := h.service.GetSession(context.Background(), uuid.New())

	require.Error(t, err)
}

func TestAttachStream_CompletedSession_ReturnsSnapshotWithNilChannel(t *testing.T) {
	h := newHarness()

	started, err := h.service.Start(context.Background(), "quick fact check", "quick")
	require.NoError(t, err)

	snapshot, ch, err := h.service.AttachStream(context.Background(), started.SessionId)

	require.NoError(t, err)
	assert.Nil(t, ch, "an already-terminal session must not open a stream")
	require.NotNil(t, snapshot)
	assert.Equal(t, "completed", snapshot.Status)
}

func TestAttachStream_RunningDeepSession_OpensStreamAndDrivesPipelineOnce(t *testing.T) {
	h := newHarness()

	started, err := h.service.Start(context.Background(), "deep dive topic", "deep")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, ch1, err := h.service.AttachStream(ctx, started.SessionId)
	require.NoError(t, err)
	require.NotNil(t, ch1)

	_, ch2, err := h.service.AttachStream(ctx, started.SessionId)
	require.NoError(t, err)
	require.NotNil(t, ch2)

	var gotComplete bool
	timeout := time.After(2 * time.Second)
drain:
	for {
		select {
		case event, open := <-ch1:
			if !open {
				break drain
			}
			if event.Name == events.EventComplete {
				gotComplete = true
				break drain
			}
		case <-timeout:
			break drain
		}
	}
	assert.True(t, gotComplete, "expected a terminal complete event once the deep pipeline finishes")

	snapshot, err := h.service.GetSession(context.Background(), started.SessionId)
	require.NoError(t, err)
	assert.Len(t, snapshot.Phases, 4, "a single pipeline run appends exactly one set of deep phases")
}

func TestAttachStream_LastSubscriberDisconnect_CancelsInFlightLLMCall(t *testing.T) {
	provider := blockingLLM{cancelledAt: make(chan struct{})}
	h := newHarnessWithProvider(provider)

	started, err := h.service.Start(context.Background(), "a topic that blocks", "deep")
	require.NoError(t, err)

	clientCtx, cancelClient := context.WithCancel(context.Background())
	_, ch, err := h.service.AttachStream(clientCtx, started.SessionId)
	require.NoError(t, err)
	require.NotNil(t, ch)
	go func() {
		for range ch {
		}
	}()

	// Give the pipeline goroutine a moment to reach the blocking LLM call.
	time.Sleep(50 * time.Millisecond)

	cancelClient()

	select {
	case <-provider.cancelledAt:
	case <-time.After(time.Second):
		t.Fatal("expected client disconnect to cancel the in-flight LLM call via the pipeline's context")
	}

	snapshot, err := h.service.GetSession(context.Background(), started.SessionId)
	require.NoError(t, err)
	assert.Equal(t, "running", snapshot.Status, "a cancelled run must leave the session running, not mark it failed")
}

func TestListHistory_ClampsLimitAndOffsetPassThrough(t *testing.T) {
	h := newHarness()
	_, _ = h.service.Start(context.Background(), "q1", "quick")
	_, _ = h.service.Start(context.Background(), "q2", "quick")

	res, err := h.service.ListHistory(context.Background(), 1, 0)

	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Total)
	assert.Len(t, res.Items, 1)
	assert.Equal(t, 1, res.Limit)
}

func TestDeleteSession_UnknownID_ReturnsNotFound(t *testing.T) {
	h := newHarness()

	_, err := h.service.DeleteSession(context.Background(), uuid.New())

	require.Error(t, err)
}

func TestDeleteSession_ExistingSession_Succeeds(t *testing.T) {
	h := newHarness()
	started, err := h.service.Start(context.Background(), "deletable query", "quick")
	require.NoError(t, err)

	res, err := h.service.DeleteSession(context.Background(), started.SessionId)

	require.NoError(t, err)
	assert.True(t, res.Deleted)
	assert.Equal(t, started.SessionId, res.Id)
}
