package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"govengine/contexts/governance/proposal-engine/application/commands"
	"govengine/contexts/governance/proposal-engine/application/queries"
	"govengine/contexts/governance/proposal-engine/domain/entities"
	domainerrors "govengine/contexts/governance/proposal-engine/domain/errors"
	"govengine/contexts/governance/proposal-engine/ports"
	httptransport "govengine/contexts/governance/proposal-engine/transport/http"
)

type Handler struct {
	Members         commands.MemberUseCase
	Proposals       commands.ProposalUseCase
	Votes           commands.VoteUseCase
	MemberQueries   queries.MemberQueryUseCase
	ProposalQueries queries.ProposalQueryUseCase
	Logger          *slog.Logger
}

// RegisterMemberHandler godoc
// @Summary Register or update a member
// @Description Registers a member. Re-registration replaces the profile and keeps counters.
// @Tags governance
// @Accept json
// @Produce json
// @Param request body httptransport.RegisterMemberRequest true "Member"
// @Success 200 {object} httptransport.MemberResponse
// @Success 201 {object} httptransport.MemberResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/governance/members [post]
func (h Handler) RegisterMemberHandler(
	ctx context.Context,
	req httptransport.RegisterMemberRequest,
) (httptransport.MemberResponse, error) {
	result, err := h.Members.RegisterMember(ctx, commands.RegisterMemberCommand{
		MemberID:    req.MemberID,
		DisplayName: req.DisplayName,
		VotingPower: req.VotingPower,
		Role:        entities.Role(req.Role),
		Verified:    req.Verified,
	})
	if err != nil {
		return httptransport.MemberResponse{}, err
	}
	resp := mapMember(result.Member)
	resp.Replaced = result.Replaced
	return resp, nil
}

// GetMemberHandler godoc
// @Summary Get a member
// @Tags governance
// @Produce json
// @Param member_id path string true "Member id"
// @Success 200 {object} httptransport.MemberResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/governance/members/{member_id} [get]
func (h Handler) GetMemberHandler(ctx context.Context, memberID string) (httptransport.MemberResponse, error) {
	member, err := h.MemberQueries.GetMember(ctx, memberID)
	if err != nil {
		return httptransport.MemberResponse{}, err
	}
	return mapMember(member), nil
}

// ListMembersHandler godoc
// @Summary List members
// @Tags governance
// @Produce json
// @Param role query string false "admin or member"
// @Param verified query bool false "Only verified members"
// @Success 200 {object} httptransport.MemberListResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Router /v1/governance/members [get]
func (h Handler) ListMembersHandler(ctx context.Context, role string, verifiedOnly bool) (httptransport.MemberListResponse, error) {
	members, err := h.MemberQueries.ListMembers(ctx, ports.MemberFilter{
		Role:         entities.Role(role),
		VerifiedOnly: verifiedOnly,
	})
	if err != nil {
		return httptransport.MemberListResponse{}, err
	}
	items := make([]httptransport.MemberResponse, 0, len(members))
	for _, member := range members {
		items = append(items, mapMember(member))
	}
	return httptransport.MemberListResponse{Items: items}, nil
}

// CreateProposalHandler godoc
// @Summary Create a proposal
// @Description Unknown option keys are rejected with unknown_proposal_option.
// @Tags governance
// @Accept json
// @Produce json
// @Param request body httptransport.CreateProposalRequest true "Proposal"
// @Success 201 {object} httptransport.ProposalResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/governance/proposals [post]
func (h Handler) CreateProposalHandler(
	ctx context.Context,
	req httptransport.CreateProposalRequest,
) (httptransport.ProposalResponse, error) {
	options, err := proposalOptionsFromRequest(req.Options)
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	proposal, err := h.Proposals.CreateProposal(ctx, commands.CreateProposalCommand{
		ProposerID:  req.ProposerID,
		Title:       req.Title,
		Description: req.Description,
		Options:     options,
	})
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	return mapProposal(proposal), nil
}

// GetProposalHandler godoc
// @Summary Get a proposal
// @Description Status is derived at read time; an expired active proposal reads as closed.
// @Tags governance
// @Produce json
// @Param proposal_id path string true "Proposal id"
// @Success 200 {object} httptransport.ProposalResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/governance/proposals/{proposal_id} [get]
func (h Handler) GetProposalHandler(ctx context.Context, proposalID string) (httptransport.ProposalResponse, error) {
	proposal, err := h.ProposalQueries.GetProposal(ctx, proposalID)
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	return mapProposal(proposal), nil
}

// ListProposalsHandler godoc
// @Summary List proposals
// @Tags governance
// @Produce json
// @Param status query string false "Derived status filter"
// @Param category query string false "Category filter"
// @Param proposer_id query string false "Proposer filter"
// @Success 200 {object} httptransport.ProposalListResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Router /v1/governance/proposals [get]
func (h Handler) ListProposalsHandler(
	ctx context.Context,
	status string,
	category string,
	proposerID string,
) (httptransport.ProposalListResponse, error) {
	proposals, err := h.ProposalQueries.ListProposals(ctx, queries.ListProposalsQuery{
		Status:     entities.ProposalStatus(status),
		Category:   category,
		ProposerID: proposerID,
	})
	if err != nil {
		return httptransport.ProposalListResponse{}, err
	}
	items := make([]httptransport.ProposalResponse, 0, len(proposals))
	for _, proposal := range proposals {
		items = append(items, mapProposal(proposal))
	}
	return httptransport.ProposalListResponse{Items: items}, nil
}

// ListVotesHandler godoc
// @Summary List votes of a proposal
// @Tags governance
// @Produce json
// @Param proposal_id path string true "Proposal id"
// @Success 200 {object} httptransport.VoteListResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/governance/proposals/{proposal_id}/votes [get]
func (h Handler) ListVotesHandler(ctx context.Context, proposalID string) (httptransport.VoteListResponse, error) {
	votes, err := h.ProposalQueries.ListVotes(ctx, proposalID)
	if err != nil {
		return httptransport.VoteListResponse{}, err
	}
	items := make([]httptransport.VoteResponse, 0, len(votes))
	for _, vote := range votes {
		items = append(items, mapVote(vote))
	}
	return httptransport.VoteListResponse{Items: items}, nil
}

// CastVoteHandler godoc
// @Summary Cast a vote
// @Description The voter comes from X-Member-Id, falling back to voter_id in the body.
// @Tags governance
// @Accept json
// @Produce json
// @Param X-Member-Id header string false "Voting member id"
// @Param proposal_id path string true "Proposal id"
// @Param request body httptransport.CastVoteRequest true "Vote"
// @Success 201 {object} httptransport.CastVoteResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /v1/governance/proposals/{proposal_id}/votes [post]
func (h Handler) CastVoteHandler(
	ctx context.Context,
	proposalID string,
	memberID string,
	req httptransport.CastVoteRequest,
) (httptransport.CastVoteResponse, error) {
	voterID := strings.TrimSpace(memberID)
	if voterID == "" {
		voterID = req.VoterID
	}
	result, err := h.Votes.CastVote(ctx, commands.CastVoteCommand{
		ProposalID: proposalID,
		VoterID:    voterID,
		Choice:     entities.Choice(req.Choice),
	})
	if err != nil {
		return httptransport.CastVoteResponse{}, err
	}
	return httptransport.CastVoteResponse{
		Vote:    mapVote(result.Vote),
		Tallies: mapTallies(result.Tallies),
	}, nil
}

// FinalizeProposalHandler godoc
// @Summary Finalize a proposal
// @Tags governance
// @Produce json
// @Param proposal_id path string true "Proposal id"
// @Success 200 {object} httptransport.ProposalResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /v1/governance/proposals/{proposal_id}/finalize [post]
func (h Handler) FinalizeProposalHandler(ctx context.Context, proposalID string) (httptransport.ProposalResponse, error) {
	proposal, err := h.Proposals.FinalizeProposal(ctx, proposalID)
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	return mapProposal(proposal), nil
}

// ExecuteProposalHandler godoc
// @Summary Execute an approved proposal
// @Description The execution context is stored verbatim and echoed back.
// @Tags governance
// @Accept json
// @Produce json
// @Param proposal_id path string true "Proposal id"
// @Param request body httptransport.ExecuteProposalRequest false "Execution context"
// @Success 200 {object} httptransport.ExecuteProposalResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /v1/governance/proposals/{proposal_id}/execute [post]
func (h Handler) ExecuteProposalHandler(
	ctx context.Context,
	proposalID string,
	req httptransport.ExecuteProposalRequest,
) (httptransport.ExecuteProposalResponse, error) {
	result, err := h.Proposals.ExecuteProposal(ctx, proposalID, req.ExecutionContext)
	if err != nil {
		return httptransport.ExecuteProposalResponse{}, err
	}
	return httptransport.ExecuteProposalResponse{
		Proposal:         mapProposal(result.Proposal),
		ExecutionContext: result.ExecutionContext,
	}, nil
}

func proposalOptionsFromRequest(req httptransport.ProposalOptionsRequest) (commands.ProposalOptions, error) {
	options := commands.ProposalOptions{
		Category:          req.Category,
		QuorumThreshold:   req.QuorumThreshold,
		ApprovalThreshold: req.ApprovalThreshold,
	}
	if value := strings.TrimSpace(req.VotingPeriod); value != "" {
		period, err := time.ParseDuration(value)
		if err != nil {
			return commands.ProposalOptions{}, domainerrors.ErrInvalidProposalInput
		}
		options.VotingPeriod = &period
	}
	if value := strings.TrimSpace(req.ExecutionDelay); value != "" {
		delay, err := time.ParseDuration(value)
		if err != nil {
			return commands.ProposalOptions{}, domainerrors.ErrInvalidProposalInput
		}
		options.ExecutionDelay = &delay
	}
	if value := strings.TrimSpace(req.VotingStartsAt); value != "" {
		startsAt, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return commands.ProposalOptions{}, domainerrors.ErrInvalidProposalInput
		}
		options.VotingStartsAt = &startsAt
	}
	return options, nil
}

func mapMember(member entities.Member) httptransport.MemberResponse {
	return httptransport.MemberResponse{
		MemberID:         member.MemberID,
		DisplayName:      member.DisplayName,
		VotingPower:      member.VotingPower,
		Role:             string(member.Role),
		Verified:         member.Verified,
		ProposalsCreated: member.ProposalsCreated,
		VotesSubmitted:   member.VotesSubmitted,
		RegisteredAt:     formatTime(member.RegisteredAt),
		UpdatedAt:        formatTime(member.UpdatedAt),
	}
}

func mapProposal(proposal entities.Proposal) httptransport.ProposalResponse {
	resp := httptransport.ProposalResponse{
		ProposalID:        proposal.ProposalID,
		Title:             proposal.Title,
		Description:       proposal.Description,
		ProposerID:        proposal.ProposerID,
		Category:          proposal.Category,
		Status:            string(proposal.Status),
		CreatedAt:         formatTime(proposal.CreatedAt),
		UpdatedAt:         formatTime(proposal.UpdatedAt),
		VotingStartsAt:    formatTime(proposal.VotingStartsAt),
		VotingEndsAt:      formatTime(proposal.VotingEndsAt),
		QuorumThreshold:   proposal.QuorumThreshold,
		ApprovalThreshold: proposal.ApprovalThreshold,
		ExecutionDelay:    proposal.ExecutionDelay.String(),
		Tallies:           mapTallies(proposal.Tallies),
		VoterCount:        len(proposal.Voters),
	}
	if proposal.Result != nil {
		resp.Result = &httptransport.FinalizationResultResponse{
			QuorumMet:         proposal.Result.QuorumMet,
			ApprovalMet:       proposal.Result.ApprovalMet,
			ParticipationRate: proposal.Result.ParticipationRate,
			ApprovalRate:      proposal.Result.ApprovalRate,
			TotalVotingPower:  proposal.Result.TotalVotingPower,
			EarlyFinalization: proposal.Result.EarlyFinalization,
			FinalizedAt:       formatTime(proposal.Result.FinalizedAt),
		}
	}
	if proposal.ExecutionScheduledAt != nil {
		resp.ExecutionScheduledAt = formatTime(*proposal.ExecutionScheduledAt)
	}
	if proposal.ExecutedAt != nil {
		resp.ExecutedAt = formatTime(*proposal.ExecutedAt)
	}
	if len(proposal.ExecutionContext) > 0 {
		resp.ExecutionContext = proposal.ExecutionContext
	}
	return resp
}

func mapVote(vote entities.VoteRecord) httptransport.VoteResponse {
	return httptransport.VoteResponse{
		VoteID:     vote.VoteID,
		ProposalID: vote.ProposalID,
		VoterID:    vote.VoterID,
		Choice:     string(vote.Choice),
		Power:      vote.Power,
		CastAt:     formatTime(vote.CastAt),
	}
}

func mapTallies(tallies entities.Tallies) httptransport.TalliesResponse {
	return httptransport.TalliesResponse{
		For:     tallies.For,
		Against: tallies.Against,
		Abstain: tallies.Abstain,
	}
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(time.RFC3339Nano)
}
