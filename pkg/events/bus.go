package events

import (
	"context"
	"encoding/json"
	"fmt"

	"deepresearch-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// eventNameHeader carries the event's wire name (phase/complete/error)
// in the watermill message metadata, alongside its JSON-encoded payload.
const eventNameHeader = "event_name"

// Bus is the in-process progress-event bus between the orchestrator and
// the stream handler: one topic per session, gochannel-backed, no
// network hop and no persistence — progress events that nobody is
// listening for (no active stream) are simply never read and get
// garbage collected with their topic.
type Bus struct {
	pubSub *gochannel.GoChannel
	log    logger.ILogger
}

func NewBus(log logger.ILogger) *Bus {
	pubSub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
	}, watermill.NewStdLogger(false, false))
	return &Bus{pubSub: pubSub, log: log}
}

func topicFor(sessionID uuid.UUID) string {
	return "research." + sessionID.String()
}

// Publish marshals payload and publishes it under the session's topic.
// Publishing to a topic with no subscriber is a no-op, never a block —
// the orchestrator must be able to run a Deep session with nobody
// watching the stream endpoint.
func (b *Bus) Publish(sessionID uuid.UUID, eventName string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("events: marshal %s payload: %w", eventName, err)
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set(eventNameHeader, eventName)

	if err := b.pubSub.Publish(topicFor(sessionID), msg); err != nil {
		b.log.Warn("events", "publish failed, dropping event", map[string]interface{}{
			"session_id": sessionID,
			"event":      eventName,
			"error":      err.Error(),
		})
		return nil
	}
	return nil
}

// Subscribe returns a channel of decoded events for a session. The
// returned channel closes when ctx is cancelled (client disconnect) or
// after the bus delivers its own close, whichever happens first.
func (b *Bus) Subscribe(ctx context.Context, sessionID uuid.UUID) (<-chan Event, error) {
	raw, err := b.pubSub.Subscribe(ctx, topicFor(sessionID))
	if err != nil {
		return nil, fmt.Errorf("events: subscribe: %w", err)
	}

	out := make(chan Event)
	go func() {
		defer close(out)
		for msg := range raw {
			event := Event{Name: msg.Metadata.Get(eventNameHeader), JSON: msg.Payload}
			select {
			case out <- event:
				msg.Ack()
			case <-ctx.Done():
				msg.Ack()
				return
			}
		}
	}()
	return out, nil
}

// Close shuts the underlying pub/sub down, stopping every subscriber's
// channel.
func (b *Bus) Close() error {
	return b.pubSub.Close()
}
