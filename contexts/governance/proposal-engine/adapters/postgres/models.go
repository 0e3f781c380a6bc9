package postgresadapter

import (
	"encoding/json"
	"strings"
	"time"

	"govengine/contexts/governance/proposal-engine/domain/entities"
)

type memberModel struct {
	MemberID         string    `gorm:"column:member_id;primaryKey"`
	DisplayName      string    `gorm:"column:display_name"`
	VotingPower      float64   `gorm:"column:voting_power"`
	Role             string    `gorm:"column:role"`
	Verified         bool      `gorm:"column:verified"`
	ProposalsCreated int       `gorm:"column:proposals_created"`
	VotesSubmitted   int       `gorm:"column:votes_submitted"`
	RegisteredAt     time.Time `gorm:"column:registered_at;index"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (memberModel) TableName() string {
	return "governance_members"
}

func memberModelFromEntity(member entities.Member) memberModel {
	return memberModel{
		MemberID:         strings.TrimSpace(member.MemberID),
		DisplayName:      member.DisplayName,
		VotingPower:      member.VotingPower,
		Role:             string(member.Role),
		Verified:         member.Verified,
		ProposalsCreated: member.ProposalsCreated,
		VotesSubmitted:   member.VotesSubmitted,
		RegisteredAt:     member.RegisteredAt.UTC(),
		UpdatedAt:        member.UpdatedAt.UTC(),
	}
}

func (m memberModel) toEntity() entities.Member {
	return entities.Member{
		MemberID:         m.MemberID,
		DisplayName:      m.DisplayName,
		VotingPower:      m.VotingPower,
		Role:             entities.Role(m.Role),
		Verified:         m.Verified,
		ProposalsCreated: m.ProposalsCreated,
		VotesSubmitted:   m.VotesSubmitted,
		RegisteredAt:     m.RegisteredAt.UTC(),
		UpdatedAt:        m.UpdatedAt.UTC(),
	}
}

type proposalModel struct {
	ProposalID           string     `gorm:"column:proposal_id;primaryKey"`
	Title                string     `gorm:"column:title"`
	Description          string     `gorm:"column:description"`
	ProposerID           string     `gorm:"column:proposer_id;index"`
	Category             string     `gorm:"column:category;index"`
	Status               string     `gorm:"column:status"`
	VotingStartsAt       time.Time  `gorm:"column:voting_starts_at"`
	VotingEndsAt         time.Time  `gorm:"column:voting_ends_at"`
	QuorumThreshold      float64    `gorm:"column:quorum_threshold"`
	ApprovalThreshold    float64    `gorm:"column:approval_threshold"`
	ExecutionDelayNanos  int64      `gorm:"column:execution_delay_ns"`
	VotesFor             float64    `gorm:"column:votes_for"`
	VotesAgainst         float64    `gorm:"column:votes_against"`
	VotesAbstain         float64    `gorm:"column:votes_abstain"`
	Result               []byte     `gorm:"column:result;type:jsonb"`
	ExecutionScheduledAt *time.Time `gorm:"column:execution_scheduled_at"`
	ExecutedAt           *time.Time `gorm:"column:executed_at"`
	ExecutionContext     []byte     `gorm:"column:execution_context;type:jsonb"`
	CreatedAt            time.Time  `gorm:"column:created_at;index"`
	UpdatedAt            time.Time  `gorm:"column:updated_at"`
}

func (proposalModel) TableName() string {
	return "governance_proposals"
}

func proposalModelFromEntity(proposal entities.Proposal) (proposalModel, error) {
	row := proposalModel{
		ProposalID:           strings.TrimSpace(proposal.ProposalID),
		Title:                proposal.Title,
		Description:          proposal.Description,
		ProposerID:           proposal.ProposerID,
		Category:             proposal.Category,
		Status:               string(proposal.Status),
		VotingStartsAt:       proposal.VotingStartsAt.UTC(),
		VotingEndsAt:         proposal.VotingEndsAt.UTC(),
		QuorumThreshold:      proposal.QuorumThreshold,
		ApprovalThreshold:    proposal.ApprovalThreshold,
		ExecutionDelayNanos:  int64(proposal.ExecutionDelay),
		VotesFor:             proposal.Tallies.For,
		VotesAgainst:         proposal.Tallies.Against,
		VotesAbstain:         proposal.Tallies.Abstain,
		ExecutionScheduledAt: normalizeOptionalTime(proposal.ExecutionScheduledAt),
		ExecutedAt:           normalizeOptionalTime(proposal.ExecutedAt),
		CreatedAt:            proposal.CreatedAt.UTC(),
		UpdatedAt:            proposal.UpdatedAt.UTC(),
	}
	if proposal.Result != nil {
		payload, err := json.Marshal(proposal.Result)
		if err != nil {
			return proposalModel{}, err
		}
		row.Result = payload
	}
	if len(proposal.ExecutionContext) > 0 {
		row.ExecutionContext = append([]byte(nil), proposal.ExecutionContext...)
	}
	return row, nil
}

// toEntity rebuilds the proposal; the voter set comes from the votes table.
func (m proposalModel) toEntity(voterIDs []string) (entities.Proposal, error) {
	proposal := entities.Proposal{
		ProposalID:        m.ProposalID,
		Title:             m.Title,
		Description:       m.Description,
		ProposerID:        m.ProposerID,
		Category:          m.Category,
		Status:            entities.ProposalStatus(m.Status),
		CreatedAt:         m.CreatedAt.UTC(),
		UpdatedAt:         m.UpdatedAt.UTC(),
		VotingStartsAt:    m.VotingStartsAt.UTC(),
		VotingEndsAt:      m.VotingEndsAt.UTC(),
		QuorumThreshold:   m.QuorumThreshold,
		ApprovalThreshold: m.ApprovalThreshold,
		ExecutionDelay:    time.Duration(m.ExecutionDelayNanos),
		Tallies: entities.Tallies{
			For:     m.VotesFor,
			Against: m.VotesAgainst,
			Abstain: m.VotesAbstain,
		},
		Voters:               make(map[string]struct{}, len(voterIDs)),
		ExecutionScheduledAt: normalizeOptionalTime(m.ExecutionScheduledAt),
		ExecutedAt:           normalizeOptionalTime(m.ExecutedAt),
	}
	for _, voterID := range voterIDs {
		proposal.Voters[voterID] = struct{}{}
	}
	if len(m.Result) > 0 {
		var result entities.FinalizationResult
		if err := json.Unmarshal(m.Result, &result); err != nil {
			return entities.Proposal{}, err
		}
		proposal.Result = &result
	}
	if len(m.ExecutionContext) > 0 {
		proposal.ExecutionContext = json.RawMessage(append([]byte(nil), m.ExecutionContext...))
	}
	return proposal, nil
}

type voteModel struct {
	VoteID     string    `gorm:"column:vote_id;primaryKey"`
	ProposalID string    `gorm:"column:proposal_id;uniqueIndex:ux_governance_votes_proposal_voter"`
	VoterID    string    `gorm:"column:voter_id;uniqueIndex:ux_governance_votes_proposal_voter"`
	Choice     string    `gorm:"column:choice"`
	Power      float64   `gorm:"column:power"`
	CastAt     time.Time `gorm:"column:cast_at"`
	Seq        int64     `gorm:"column:seq;autoIncrement"`
}

func (voteModel) TableName() string {
	return "governance_votes"
}

func (m voteModel) toEntity() entities.VoteRecord {
	return entities.VoteRecord{
		VoteID:     m.VoteID,
		ProposalID: m.ProposalID,
		VoterID:    m.VoterID,
		Choice:     entities.Choice(m.Choice),
		Power:      m.Power,
		CastAt:     m.CastAt.UTC(),
	}
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload;type:jsonb"`
	Status       string     `gorm:"column:status;index"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "governance_outbox"
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}
