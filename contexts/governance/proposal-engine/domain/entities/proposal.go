package entities

import (
	"encoding/json"
	"time"
)

type ProposalStatus string

const (
	ProposalStatusActive   ProposalStatus = "active"
	ProposalStatusClosed   ProposalStatus = "closed"
	ProposalStatusApproved ProposalStatus = "approved"
	ProposalStatusRejected ProposalStatus = "rejected"
	ProposalStatusExecuted ProposalStatus = "executed"
)

func (s ProposalStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Finalized reports whether the outcome has already been decided.
func (s ProposalStatus) Finalized() bool {
	return s == ProposalStatusApproved || s == ProposalStatusRejected || s == ProposalStatusExecuted
}

func (s ProposalStatus) Terminal() bool {
	return s == ProposalStatusRejected || s == ProposalStatusExecuted
}

const DefaultCategory = "general"

type FinalizationResult struct {
	QuorumMet         bool
	ApprovalMet       bool
	ParticipationRate float64
	ApprovalRate      float64
	TotalVotingPower  float64
	EarlyFinalization bool
	FinalizedAt       time.Time
}

type Proposal struct {
	ProposalID        string
	Title             string
	Description       string
	ProposerID        string
	Category          string
	Status            ProposalStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
	VotingStartsAt    time.Time
	VotingEndsAt      time.Time
	QuorumThreshold   float64
	ApprovalThreshold float64
	ExecutionDelay    time.Duration
	Tallies           Tallies
	Voters            map[string]struct{}

	Result               *FinalizationResult
	ExecutionScheduledAt *time.Time
	ExecutedAt           *time.Time
	ExecutionContext     json.RawMessage
}

func (p Proposal) HasVoted(memberID string) bool {
	_, ok := p.Voters[memberID]
	return ok
}

// Clone returns a deep copy so store state is never aliased by callers.
func (p Proposal) Clone() Proposal {
	out := p
	out.Voters = make(map[string]struct{}, len(p.Voters))
	for id := range p.Voters {
		out.Voters[id] = struct{}{}
	}
	if p.Result != nil {
		result := *p.Result
		out.Result = &result
	}
	out.ExecutionScheduledAt = cloneTime(p.ExecutionScheduledAt)
	out.ExecutedAt = cloneTime(p.ExecutedAt)
	if p.ExecutionContext != nil {
		out.ExecutionContext = append(json.RawMessage(nil), p.ExecutionContext...)
	}
	return out
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}
