package events

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopLogger struct{}

func (noopLogger) Debug(string, string, map[string]interface{}) {}
func (noopLogger) Info(string, string, map[string]interface{})  {}
func (noopLogger) Warn(string, string, map[string]interface{})  {}
func (noopLogger) Error(string, string, map[string]interface{}) {}
func (noopLogger) Sync() error                                  { return nil }

func TestBus_PublishThenSubscribe_DeliversEvent(t *testing.T) {
	bus := NewBus(noopLogger{})
	defer bus.Close()
	sessionID := uuid.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := bus.Subscribe(ctx, sessionID)
	require.NoError(t, err)

	require.NoError(t, bus.Publish(sessionID, EventPhase, PhasePayload{Phase: "query_analysis", Progress: 5}))

	select {
	case event := <-ch:
		assert.Equal(t, EventPhase, event.Name)
		assert.Contains(t, string(event.JSON), "query_analysis")
	case <-time.After(time.Second):
		t.Fatal("expected an event within 1s")
	}
}

func TestBus_TopicsAreIsolatedPerSession(t *testing.T) {
	bus := NewBus(noopLogger{})
	defer bus.Close()

	sessionA := uuid.New()
	sessionB := uuid.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	chA, err := bus.Subscribe(ctx, sessionA)
	require.NoError(t, err)

	require.NoError(t, bus.Publish(sessionB, EventPhase, PhasePayload{Phase: "source_discovery"}))

	select {
	case <-chA:
		t.Fatal("session A must never receive an event published under session B's topic")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBus_Publish_WithNoSubscriber_DoesNotBlockOrError(t *testing.T) {
	bus := NewBus(noopLogger{})
	defer bus.Close()

	done := make(chan struct{})
	go func() {
		err := bus.Publish(uuid.New(), EventComplete, CompletePayload{SessionID: "none-listening"})
		assert.NoError(t, err)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish with no subscriber must not block")
	}
}

func TestBus_Subscribe_ChannelClosesOnContextCancel(t *testing.T) {
	bus := NewBus(noopLogger{})
	defer bus.Close()
	sessionID := uuid.New()

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := bus.Subscribe(ctx, sessionID)
	require.NoError(t, err)

	cancel()

	select {
	case _, open := <-ch:
		assert.False(t, open, "the channel must close once its context is cancelled")
	case <-time.After(time.Second):
		t.Fatal("expected the channel to close promptly after cancellation")
	}
}
