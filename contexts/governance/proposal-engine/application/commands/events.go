package commands

import (
	"context"
	"encoding/json"
	"time"

	"govengine/contexts/governance/proposal-engine/domain/entities"
	"govengine/contexts/governance/proposal-engine/ports"
)

const (
	EventMemberRegistered  = "governance.member.registered"
	EventProposalCreated   = "governance.proposal.created"
	EventProposalClosed    = "governance.proposal.closed"
	EventVoteCast          = "governance.vote.cast"
	EventProposalFinalized = "governance.proposal.finalized"
	EventProposalExecuted  = "governance.proposal.executed"
)

func newGovernanceEnvelope(
	eventID string,
	eventType string,
	partitionKeyPath string,
	partitionKey string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "proposal-engine",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: partitionKeyPath,
		PartitionKey:     partitionKey,
		Data:             payload,
	}, nil
}

// appendEvent writes through the transaction so the event exists iff the
// state change it describes commits.
func appendEvent(
	ctx context.Context,
	tx ports.Tx,
	idGen ports.IDGenerator,
	eventType string,
	partitionKeyPath string,
	partitionKey string,
	occurredAt time.Time,
	data map[string]any,
) error {
	eventID, err := idGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newGovernanceEnvelope(eventID, eventType, partitionKeyPath, partitionKey, occurredAt, data)
	if err != nil {
		return err
	}
	return tx.AppendOutbox(ctx, envelope)
}

func proposalEventData(p entities.Proposal) map[string]any {
	data := map[string]any{
		"proposal_id":        p.ProposalID,
		"proposer_id":        p.ProposerID,
		"category":           p.Category,
		"status":             string(p.Status),
		"votes_for":          p.Tallies.For,
		"votes_against":      p.Tallies.Against,
		"votes_abstain":      p.Tallies.Abstain,
		"voting_ends_at":     p.VotingEndsAt.UTC().Format(time.RFC3339),
		"quorum_threshold":   p.QuorumThreshold,
		"approval_threshold": p.ApprovalThreshold,
	}
	if p.Result != nil {
		data["quorum_met"] = p.Result.QuorumMet
		data["approval_met"] = p.Result.ApprovalMet
		data["participation_rate"] = p.Result.ParticipationRate
		data["approval_rate"] = p.Result.ApprovalRate
	}
	if p.ExecutionScheduledAt != nil {
		data["execution_scheduled_at"] = p.ExecutionScheduledAt.UTC().Format(time.RFC3339)
	}
	if p.ExecutedAt != nil {
		data["executed_at"] = p.ExecutedAt.UTC().Format(time.RFC3339)
	}
	if len(p.ExecutionContext) > 0 {
		data["execution_context"] = p.ExecutionContext
	}
	return data
}
