package ports

import (
	"context"
	"encoding/json"
	"time"

	contractsv1 "govengine/contracts/gen/events/v1"
	"govengine/contexts/governance/proposal-engine/domain/entities"
)

type MemberFilter struct {
	Role         entities.Role
	VerifiedOnly bool
}

// ProposalFilter matches on stored fields; status filtering against the
// derived status happens in the query layer.
type ProposalFilter struct {
	Category   string
	ProposerID string
}

// Tx is the view of governance state inside one critical section. Writes are
// visible to later reads of the same Tx.
type Tx interface {
	GetMember(ctx context.Context, memberID string) (entities.Member, bool, error)
	SaveMember(ctx context.Context, member entities.Member) error
	TotalVotingPower(ctx context.Context) (float64, error)

	GetProposal(ctx context.Context, proposalID string) (entities.Proposal, bool, error)
	SaveProposal(ctx context.Context, proposal entities.Proposal) error
	AppendVote(ctx context.Context, vote entities.VoteRecord) error

	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

// Repository owns members, proposals and vote records. Atomically runs fn as
// a mutually exclusive critical section: concurrent callers are serialized
// and fn observes a consistent snapshot. A non-nil error from fn discards
// fn's writes.
type Repository interface {
	Atomically(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	GetMember(ctx context.Context, memberID string) (entities.Member, error)
	ListMembers(ctx context.Context, filter MemberFilter) ([]entities.Member, error)
	GetProposal(ctx context.Context, proposalID string) (entities.Proposal, error)
	ListProposals(ctx context.Context, filter ProposalFilter) ([]entities.Proposal, error)
	ListVotes(ctx context.Context, proposalID string) ([]entities.VoteRecord, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// MetricsSink receives lifecycle notifications after commit. Implementations
// must not block.
type MetricsSink interface {
	MemberRegistered(role entities.Role)
	ProposalCreated(category string)
	VoteCast(choice entities.Choice, power float64)
	ProposalFinalized(status entities.ProposalStatus, result entities.FinalizationResult)
	ProposalExecuted(category string)
}

// ExecutionHandler is the ledger/staking collaborator that interprets an
// executed proposal's context. It runs after, and independently of, the
// executed transition.
type ExecutionHandler interface {
	HandleExecution(ctx context.Context, proposalID string, executionContext json.RawMessage) error
}

type EventEnvelope = contractsv1.Envelope

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}
