package workers

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"govengine/contexts/governance/proposal-engine/adapters/memory"
	"govengine/contexts/governance/proposal-engine/ports"
	"govengine/internal/platform/messaging"
)

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	failAt int
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, _ ports.EventEnvelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failAt > 0 && len(p.topics)+1 == p.failAt {
		return errors.New("broker unavailable")
	}
	p.topics = append(p.topics, topic)
	return nil
}

func appendEnvelope(t *testing.T, store *memory.Store, id string, eventType string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	err = store.Atomically(context.Background(), func(ctx context.Context, tx ports.Tx) error {
		return tx.AppendOutbox(ctx, ports.EventEnvelope{
			EventID:    id,
			EventType:  eventType,
			OccurredAt: time.Now().UTC(),
			Data:       raw,
		})
	})
	if err != nil {
		t.Fatalf("append outbox: %v", err)
	}
}

func TestOutboxRelayPublishesInOrder(t *testing.T) {
	store := memory.NewStore()
	appendEnvelope(t, store, "e-1", "governance.proposal.created", map[string]any{"proposal_id": "p-1"})
	appendEnvelope(t, store, "e-2", "governance.vote.cast", map[string]any{"proposal_id": "p-1"})

	publisher := &recordingPublisher{}
	relay := OutboxRelay{Outbox: store, Publisher: publisher, Clock: store}
	published, err := relay.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("run once: %v", err)
	}
	if published != 2 {
		t.Fatalf("expected 2 published, got %d", published)
	}
	if publisher.topics[0] != "governance.proposal.created" || publisher.topics[1] != "governance.vote.cast" {
		t.Fatalf("unexpected topics %v", publisher.topics)
	}

	published, err = relay.RunOnce(context.Background())
	if err != nil || published != 0 {
		t.Fatalf("expected nothing pending, got %d %v", published, err)
	}
}

func TestOutboxRelayRetriesAfterFailure(t *testing.T) {
	store := memory.NewStore()
	appendEnvelope(t, store, "e-1", "governance.proposal.created", map[string]any{})
	appendEnvelope(t, store, "e-2", "governance.proposal.closed", map[string]any{})

	publisher := &recordingPublisher{failAt: 2}
	relay := OutboxRelay{Outbox: store, Publisher: publisher, Clock: store}
	published, err := relay.RunOnce(context.Background())
	if err == nil || published != 1 {
		t.Fatalf("expected partial publish with error, got %d %v", published, err)
	}

	pending, _ := store.ListPendingOutbox(context.Background(), 10)
	if len(pending) != 1 || pending[0].OutboxID != "e-2" {
		t.Fatalf("failed row must stay pending: %+v", pending)
	}

	publisher.failAt = 0
	published, err = relay.RunOnce(context.Background())
	if err != nil || published != 1 {
		t.Fatalf("expected retry to publish 1, got %d %v", published, err)
	}
}

type stubSubscriber struct {
	topic   string
	group   string
	handler func(context.Context, ports.EventEnvelope) error
}

func (s *stubSubscriber) Subscribe(_ context.Context, topic string, group string, handler func(context.Context, ports.EventEnvelope) error) error {
	s.topic = topic
	s.group = group
	s.handler = handler
	return nil
}

type recordingHandler struct {
	proposalID string
	context    json.RawMessage
}

func (h *recordingHandler) HandleExecution(_ context.Context, proposalID string, executionContext json.RawMessage) error {
	h.proposalID = proposalID
	h.context = executionContext
	return nil
}

func TestExecutionRelayHandsOffContext(t *testing.T) {
	subscriber := &stubSubscriber{}
	handler := &recordingHandler{}
	relay := ExecutionRelay{Subscriber: subscriber, Handler: handler}
	if err := relay.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if subscriber.topic != "governance.proposal.executed" || subscriber.group != "proposal-engine-execution-cg" {
		t.Fatalf("unexpected subscription %s/%s", subscriber.topic, subscriber.group)
	}

	data, _ := json.Marshal(map[string]any{
		"proposal_id":       "p-9",
		"execution_context": map[string]any{"transfer": 5},
	})
	if err := subscriber.handler(context.Background(), ports.EventEnvelope{EventID: "e-1", Data: data}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if handler.proposalID != "p-9" || string(handler.context) != `{"transfer":5}` {
		t.Fatalf("unexpected hand-off %s %s", handler.proposalID, handler.context)
	}

	if err := subscriber.handler(context.Background(), ports.EventEnvelope{EventID: "e-2", Data: []byte("{")}); err == nil {
		t.Fatalf("expected decode error")
	}
}

type flakyPublisher struct {
	mu    sync.Mutex
	calls int
}

func (p *flakyPublisher) Publish(context.Context, string, ports.EventEnvelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.calls == 1 {
		return errors.New("redis down")
	}
	return nil
}

type countingHandler struct {
	mu       sync.Mutex
	calls    map[string]int
	received chan string
}

func (h *countingHandler) HandleExecution(_ context.Context, proposalID string, _ json.RawMessage) error {
	h.mu.Lock()
	h.calls[proposalID]++
	h.mu.Unlock()
	h.received <- proposalID
	return nil
}

func (h *countingHandler) count(proposalID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls[proposalID]
}

func waitForHandOff(t *testing.T, h *countingHandler, proposalID string) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case got := <-h.received:
			if got == proposalID {
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for hand-off of %s", proposalID)
		}
	}
}

func TestExecutionRelayHandsOffOnceWhenOutboxRedelivers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := messaging.NewBus(nil)
	handler := &countingHandler{calls: map[string]int{}, received: make(chan string, 8)}
	relay := ExecutionRelay{Subscriber: bus, Handler: handler}
	if err := relay.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	store := memory.NewStore()
	appendEnvelope(t, store, "e-exec", "governance.proposal.executed", map[string]any{
		"proposal_id":       "p-1",
		"execution_context": map[string]any{"burn": 10},
	})

	// The bus sees the event before the failing publisher, so the row stays
	// pending and the next cycle delivers it to the bus again.
	outbox := OutboxRelay{Outbox: store, Publisher: messaging.Fanout{bus, &flakyPublisher{}}, Clock: store}
	if _, err := outbox.RunOnce(ctx); err == nil {
		t.Fatalf("expected first cycle to fail")
	}
	if published, err := outbox.RunOnce(ctx); err != nil || published != 1 {
		t.Fatalf("expected second cycle to publish, got %d %v", published, err)
	}

	// Delivery per subscriber is ordered, so once the marker arrives both
	// copies of e-exec have been consumed.
	marker, _ := json.Marshal(map[string]any{"proposal_id": "p-marker"})
	if err := bus.Publish(ctx, "governance.proposal.executed", ports.EventEnvelope{EventID: "e-marker", Data: marker}); err != nil {
		t.Fatalf("publish marker: %v", err)
	}
	waitForHandOff(t, handler, "p-marker")

	if got := handler.count("p-1"); got != 1 {
		t.Fatalf("expected one hand-off for p-1, got %d", got)
	}
}

func TestHandledEventsRetriesReleasedAndForgetsOldest(t *testing.T) {
	handled := newHandledEvents(2)
	if !handled.claim("a") || handled.claim("a") {
		t.Fatalf("expected first claim to win and second to be skipped")
	}
	handled.release("a")
	if !handled.claim("a") {
		t.Fatalf("released id must be claimable again")
	}
	handled.claim("b")
	handled.claim("c")
	if !handled.claim("a") {
		t.Fatalf("oldest id must be forgotten once the window is full")
	}
	if !handled.claim("") || !handled.claim("") {
		t.Fatalf("events without an id are never deduplicated")
	}
}
