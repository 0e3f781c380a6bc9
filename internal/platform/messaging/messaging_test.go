package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	contractsv1 "govengine/contracts/gen/events/v1"
)

func TestBusDeliversToTopicSubscribers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := NewBus(nil)
	received := make(chan contractsv1.Envelope, 1)
	if err := bus.Subscribe(ctx, "governance.proposal.executed", "test-cg", func(_ context.Context, event contractsv1.Envelope) error {
		received <- event
		return nil
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := bus.Publish(ctx, "governance.vote.cast", contractsv1.Envelope{EventID: "ignored"}); err != nil {
		t.Fatalf("publish other topic: %v", err)
	}
	if err := bus.Publish(ctx, "governance.proposal.executed", contractsv1.Envelope{EventID: "evt-1"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case event := <-received:
		if event.EventID != "evt-1" {
			t.Fatalf("unexpected event %q", event.EventID)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for event")
	}
}

func TestBusReportsBacklogInsteadOfDropping(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := NewBus(nil)
	bus.buffer = 1
	bus.sendTimeout = 100 * time.Millisecond

	started := make(chan struct{}, 1)
	release := make(chan struct{})
	if err := bus.Subscribe(ctx, "governance.proposal.executed", "slow-cg", func(context.Context, contractsv1.Envelope) error {
		started <- struct{}{}
		<-release
		return nil
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := bus.Publish(ctx, "governance.proposal.executed", contractsv1.Envelope{EventID: "evt-1"}); err != nil {
		t.Fatalf("publish first: %v", err)
	}
	<-started
	if err := bus.Publish(ctx, "governance.proposal.executed", contractsv1.Envelope{EventID: "evt-2"}); err != nil {
		t.Fatalf("publish into buffer: %v", err)
	}
	err := bus.Publish(ctx, "governance.proposal.executed", contractsv1.Envelope{EventID: "evt-3"})
	if !errors.Is(err, ErrSubscriberBacklog) {
		t.Fatalf("expected backlog error, got %v", err)
	}
	close(release)
}

type recordingPublisher struct {
	topics []string
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, _ contractsv1.Envelope) error {
	p.topics = append(p.topics, topic)
	return p.err
}

func TestFanoutStopsOnFirstError(t *testing.T) {
	first := &recordingPublisher{err: errors.New("down")}
	second := &recordingPublisher{}
	err := Fanout{first, second}.Publish(context.Background(), "t", contractsv1.Envelope{})
	if err == nil {
		t.Fatalf("expected error from first publisher")
	}
	if len(second.topics) != 0 {
		t.Fatalf("second publisher must not run after a failure")
	}
}

func TestStreamValuesLayout(t *testing.T) {
	event := contractsv1.Envelope{
		EventID:      "evt-9",
		EventType:    "governance.vote.cast",
		PartitionKey: "proposal-1",
		OccurredAt:   time.Unix(1700000000, 0).UTC(),
	}
	values := StreamValues("governance.vote.cast", event, []byte(`{"k":1}`))
	if values["event_id"] != "evt-9" || values["partition_key"] != "proposal-1" {
		t.Fatalf("unexpected values: %+v", values)
	}
	if values["occurred_at"] != int64(1700000000) {
		t.Fatalf("unexpected occurred_at: %v", values["occurred_at"])
	}
	if values["payload"] != `{"k":1}` {
		t.Fatalf("unexpected payload: %v", values["payload"])
	}
}

func TestNewRedisClientRejectsBadURL(t *testing.T) {
	if _, err := NewRedisClient("not a url"); err == nil {
		t.Fatalf("expected parse error")
	}
}
