package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	contractsv1 "govengine/contracts/gen/events/v1"
)

const (
	defaultSubscriberBuffer = 128
	defaultSendTimeout      = 5 * time.Second
)

// ErrSubscriberBacklog is returned when a subscriber's buffer stays full for
// the whole send timeout. The outbox row is left pending and retried.
var ErrSubscriberBacklog = errors.New("messaging: subscriber backlog full")

// Bus is the in-process publish/subscribe adapter used by the relays. A
// publish waits for every subscriber to accept the event.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]chan contractsv1.Envelope
	logger      *slog.Logger
	buffer      int
	sendTimeout time.Duration
}

func NewBus(logger *slog.Logger) *Bus {
	return &Bus{
		subscribers: make(map[string][]chan contractsv1.Envelope),
		logger:      logger,
		buffer:      defaultSubscriberBuffer,
		sendTimeout: defaultSendTimeout,
	}
}

func (b *Bus) Publish(ctx context.Context, topic string, event contractsv1.Envelope) error {
	b.mu.RLock()
	subs := append([]chan contractsv1.Envelope(nil), b.subscribers[topic]...)
	b.mu.RUnlock()

	for _, sub := range subs {
		if err := b.send(ctx, sub, event); err != nil {
			if b.logger != nil {
				b.logger.Warn("subscriber did not accept event",
					"event", "bus_publish_backlog",
					"module", "internal/platform/messaging",
					"layer", "platform",
					"topic", topic,
					"event_id", event.EventID,
					"error", err.Error(),
				)
			}
			if errors.Is(err, ErrSubscriberBacklog) {
				return fmt.Errorf("%w: topic %s", err, topic)
			}
			return err
		}
	}

	if b.logger != nil {
		b.logger.Debug("event published",
			"event", "bus_publish",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"topic", topic,
			"event_id", event.EventID,
			"event_type", event.EventType,
		)
	}
	return nil
}

func (b *Bus) Subscribe(
	ctx context.Context,
	topic string,
	consumerGroup string,
	handler func(context.Context, contractsv1.Envelope) error,
) error {
	ch := make(chan contractsv1.Envelope, b.buffer)

	b.mu.Lock()
	b.subscribers[topic] = append(b.subscribers[topic], ch)
	b.mu.Unlock()

	go func() {
		for {
			select {
			case <-ctx.Done():
				b.removeSubscriber(topic, ch)
				return
			case event := <-ch:
				if err := handler(ctx, event); err != nil && b.logger != nil {
					b.logger.Error("consumer handler failed",
						"event", "bus_consume_failed",
						"module", "internal/platform/messaging",
						"layer", "platform",
						"topic", topic,
						"consumer_group", consumerGroup,
						"event_id", event.EventID,
						"event_type", event.EventType,
						"error", err.Error(),
					)
				}
			}
		}
	}()
	return nil
}

func (b *Bus) send(ctx context.Context, sub chan contractsv1.Envelope, event contractsv1.Envelope) error {
	select {
	case sub <- event:
		return nil
	default:
	}
	timer := time.NewTimer(b.sendTimeout)
	defer timer.Stop()
	select {
	case sub <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrSubscriberBacklog
	}
}

func (b *Bus) removeSubscriber(topic string, target chan contractsv1.Envelope) {
	b.mu.Lock()
	defer b.mu.Unlock()

	items := b.subscribers[topic]
	if len(items) == 0 {
		return
	}
	filtered := make([]chan contractsv1.Envelope, 0, len(items))
	for _, item := range items {
		if item != target {
			filtered = append(filtered, item)
		}
	}
	b.subscribers[topic] = filtered
}
