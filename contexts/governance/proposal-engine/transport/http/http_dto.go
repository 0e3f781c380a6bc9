package http

import "encoding/json"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RegisterMemberRequest struct {
	MemberID    string   `json:"member_id"`
	DisplayName string   `json:"display_name"`
	VotingPower *float64 `json:"voting_power,omitempty"`
	Role        string   `json:"role,omitempty"`
	Verified    bool     `json:"verified"`
}

type MemberResponse struct {
	MemberID         string  `json:"member_id"`
	DisplayName      string  `json:"display_name"`
	VotingPower      float64 `json:"voting_power"`
	Role             string  `json:"role"`
	Verified         bool    `json:"verified"`
	ProposalsCreated int     `json:"proposals_created"`
	VotesSubmitted   int     `json:"votes_submitted"`
	RegisteredAt     string  `json:"registered_at"`
	UpdatedAt        string  `json:"updated_at"`
	Replaced         bool    `json:"replaced,omitempty"`
}

type MemberListResponse struct {
	Items []MemberResponse `json:"items"`
}

// ProposalOptionsRequest is decoded strictly: unknown keys are rejected.
// Durations use Go duration syntax ("168h", "90m").
type ProposalOptionsRequest struct {
	Category          string   `json:"category,omitempty"`
	VotingPeriod      string   `json:"voting_period,omitempty"`
	QuorumThreshold   *float64 `json:"quorum_threshold,omitempty"`
	ApprovalThreshold *float64 `json:"approval_threshold,omitempty"`
	ExecutionDelay    string   `json:"execution_delay,omitempty"`
	VotingStartsAt    string   `json:"voting_starts_at,omitempty"`
}

type CreateProposalRequest struct {
	ProposerID  string                 `json:"proposer_id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Options     ProposalOptionsRequest `json:"options"`
}

type TalliesResponse struct {
	For     float64 `json:"for"`
	Against float64 `json:"against"`
	Abstain float64 `json:"abstain"`
}

type FinalizationResultResponse struct {
	QuorumMet         bool    `json:"quorum_met"`
	ApprovalMet       bool    `json:"approval_met"`
	ParticipationRate float64 `json:"participation_rate"`
	ApprovalRate      float64 `json:"approval_rate"`
	TotalVotingPower  float64 `json:"total_voting_power"`
	EarlyFinalization bool    `json:"early_finalization"`
	FinalizedAt       string  `json:"finalized_at"`
}

type ProposalResponse struct {
	ProposalID           string                      `json:"proposal_id"`
	Title                string                      `json:"title"`
	Description          string                      `json:"description"`
	ProposerID           string                      `json:"proposer_id"`
	Category             string                      `json:"category"`
	Status               string                      `json:"status"`
	CreatedAt            string                      `json:"created_at"`
	UpdatedAt            string                      `json:"updated_at"`
	VotingStartsAt       string                      `json:"voting_starts_at"`
	VotingEndsAt         string                      `json:"voting_ends_at"`
	QuorumThreshold      float64                     `json:"quorum_threshold"`
	ApprovalThreshold    float64                     `json:"approval_threshold"`
	ExecutionDelay       string                      `json:"execution_delay"`
	Tallies              TalliesResponse             `json:"tallies"`
	VoterCount           int                         `json:"voter_count"`
	Result               *FinalizationResultResponse `json:"result,omitempty"`
	ExecutionScheduledAt string                      `json:"execution_scheduled_at,omitempty"`
	ExecutedAt           string                      `json:"executed_at,omitempty"`
	ExecutionContext     json.RawMessage             `json:"execution_context,omitempty"`
}

type ProposalListResponse struct {
	Items []ProposalResponse `json:"items"`
}

type CastVoteRequest struct {
	VoterID string `json:"voter_id,omitempty"`
	Choice  string `json:"choice"`
}

type VoteResponse struct {
	VoteID     string  `json:"vote_id"`
	ProposalID string  `json:"proposal_id"`
	VoterID    string  `json:"voter_id"`
	Choice     string  `json:"choice"`
	Power      float64 `json:"power"`
	CastAt     string  `json:"cast_at"`
}

type CastVoteResponse struct {
	Vote    VoteResponse    `json:"vote"`
	Tallies TalliesResponse `json:"tallies"`
}

type VoteListResponse struct {
	Items []VoteResponse `json:"items"`
}

type ExecuteProposalRequest struct {
	ExecutionContext json.RawMessage `json:"execution_context,omitempty"`
}

type ExecuteProposalResponse struct {
	Proposal         ProposalResponse `json:"proposal"`
	ExecutionContext json.RawMessage  `json:"execution_context,omitempty"`
}
