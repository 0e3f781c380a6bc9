package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	application "govengine/contexts/governance/proposal-engine/application"
	"govengine/contexts/governance/proposal-engine/ports"
)

const (
	proposalExecutedTopic = "governance.proposal.executed"
	defaultExecutionCG    = "proposal-engine-execution-cg"
	defaultHandledWindow  = 4096
)

// ExecutionRelay hands the execution context of executed proposals to the
// ledger/staking collaborator. It runs after the executed transition has
// committed; handler failures never undo it. The outbox delivers at least
// once, so an event id already handed off is skipped.
type ExecutionRelay struct {
	Subscriber    ports.EventSubscriber
	Handler       ports.ExecutionHandler
	ConsumerGroup string
	// HandledWindow bounds how many handed-off event ids are remembered.
	HandledWindow int
	Logger        *slog.Logger
}

func (r ExecutionRelay) Start(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	group := strings.TrimSpace(r.ConsumerGroup)
	if group == "" {
		group = defaultExecutionCG
	}
	handled := newHandledEvents(r.HandledWindow)
	consume := func(ctx context.Context, event ports.EventEnvelope) error {
		return r.handleExecuted(ctx, event, handled)
	}
	if err := r.Subscriber.Subscribe(ctx, proposalExecutedTopic, group, consume); err != nil {
		logger.Error("execution relay subscribe failed",
			"event", "governance_execution_relay_subscribe_failed",
			"module", application.Module,
			"layer", "worker",
			"topic", proposalExecutedTopic,
			"consumer_group", group,
			"error", err.Error(),
		)
		return err
	}
	logger.Info("execution relay subscription active",
		"event", "governance_execution_relay_started",
		"module", application.Module,
		"layer", "worker",
		"consumer_group", group,
	)
	return nil
}

func (r ExecutionRelay) handleExecuted(ctx context.Context, event ports.EventEnvelope, handled *handledEvents) error {
	logger := application.ResolveLogger(r.Logger)
	if !handled.claim(event.EventID) {
		logger.Info("proposal execution already handed off",
			"event", "governance_execution_duplicate_skipped",
			"module", application.Module,
			"layer", "worker",
			"event_id", event.EventID,
		)
		return nil
	}
	var payload struct {
		ProposalID       string          `json:"proposal_id"`
		ExecutionContext json.RawMessage `json:"execution_context"`
	}
	if err := event.DecodeData(&payload); err != nil {
		logger.Error("proposal executed payload decode failed",
			"event", "governance_execution_decode_failed",
			"module", application.Module,
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
		handled.release(event.EventID)
		return err
	}
	if r.Handler == nil {
		return nil
	}
	if err := r.Handler.HandleExecution(ctx, payload.ProposalID, payload.ExecutionContext); err != nil {
		logger.Error("execution handler failed",
			"event", "governance_execution_handler_failed",
			"module", application.Module,
			"layer", "worker",
			"event_id", event.EventID,
			"proposal_id", payload.ProposalID,
			"error", err.Error(),
		)
		handled.release(event.EventID)
		return err
	}
	logger.Info("proposal execution handed off",
		"event", "governance_execution_handed_off",
		"module", application.Module,
		"layer", "worker",
		"event_id", event.EventID,
		"proposal_id", payload.ProposalID,
	)
	return nil
}

// LoggingExecutionHandler stands in for the ledger/staking collaborator and
// only records what it was given.
type LoggingExecutionHandler struct {
	Logger *slog.Logger
}

func (h LoggingExecutionHandler) HandleExecution(ctx context.Context, proposalID string, executionContext json.RawMessage) error {
	application.ResolveLogger(h.Logger).InfoContext(ctx, "execution context received",
		"event", "governance_execution_context_received",
		"module", application.Module,
		"layer", "worker",
		"proposal_id", proposalID,
		"context_bytes", len(executionContext),
		"execution_context", string(executionContext),
	)
	return nil
}

// handledEvents remembers the most recent event ids in arrival order and
// forgets the oldest once the window is full.
type handledEvents struct {
	mu     sync.Mutex
	window int
	ids    map[string]struct{}
	order  []string
}

func newHandledEvents(window int) *handledEvents {
	if window <= 0 {
		window = defaultHandledWindow
	}
	return &handledEvents{window: window, ids: make(map[string]struct{}, window)}
}

// claim reports whether id is new and records it. Events without an id are
// always handed off.
func (h *handledEvents) claim(id string) bool {
	if id == "" {
		return true
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, seen := h.ids[id]; seen {
		return false
	}
	h.ids[id] = struct{}{}
	h.order = append(h.order, id)
	for len(h.order) > h.window {
		delete(h.ids, h.order[0])
		h.order = h.order[1:]
	}
	return true
}

// release forgets id so a redelivery can retry a failed hand-off.
func (h *handledEvents) release(id string) {
	if id == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, seen := h.ids[id]; !seen {
		return
	}
	delete(h.ids, id)
	for i, existing := range h.order {
		if existing == id {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
}
