package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	application "govengine/contexts/governance/proposal-engine/application"
	"govengine/contexts/governance/proposal-engine/domain/entities"
	domainerrors "govengine/contexts/governance/proposal-engine/domain/errors"
	"govengine/contexts/governance/proposal-engine/ports"
)

type CastVoteCommand struct {
	ProposalID string
	VoterID    string
	Choice     entities.Choice
}

type CastVoteResult struct {
	Tallies entities.Tallies
	Vote    entities.VoteRecord
}

type VoteUseCase struct {
	Repo    ports.Repository
	Clock   ports.Clock
	IDGen   ports.IDGenerator
	Metrics ports.MetricsSink
	Logger  *slog.Logger
}

// CastVote records one vote per (proposal, member). Preconditions are checked
// in a fixed order and nothing is written unless all of them hold, with one
// exception: an expired proposal still stored as active is closed before
// ErrVotingClosed is returned.
func (uc VoteUseCase) CastVote(ctx context.Context, cmd CastVoteCommand) (CastVoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	proposalID := strings.TrimSpace(cmd.ProposalID)
	voterID := strings.TrimSpace(cmd.VoterID)
	choice := entities.Choice(strings.ToLower(strings.TrimSpace(string(cmd.Choice))))
	now := readClock(uc.Clock)

	var (
		result    CastVoteResult
		closedErr error
	)
	err := uc.Repo.Atomically(ctx, func(ctx context.Context, tx ports.Tx) error {
		proposal, found, err := tx.GetProposal(ctx, proposalID)
		if err != nil {
			return err
		}
		if !found {
			return domainerrors.ErrProposalNotFound
		}

		derived := entities.DeriveStatus(proposal, now)
		if derived != entities.ProposalStatusActive {
			if derived == entities.ProposalStatusClosed && proposal.Status == entities.ProposalStatusActive {
				proposal.Status = entities.ProposalStatusClosed
				proposal.UpdatedAt = now
				if err := tx.SaveProposal(ctx, proposal); err != nil {
					return err
				}
				if err := appendEvent(ctx, tx, uc.IDGen, EventProposalClosed, "proposal_id", proposal.ProposalID, now, proposalEventData(proposal)); err != nil {
					return err
				}
				// Commit the closure, then report the refusal.
				closedErr = domainerrors.ErrVotingClosed
				return nil
			}
			return domainerrors.ErrVotingClosed
		}
		if !entities.AcceptsVotes(proposal, now) {
			return domainerrors.ErrVotingClosed
		}

		voter, found, err := tx.GetMember(ctx, voterID)
		if err != nil {
			return err
		}
		if !found {
			return domainerrors.ErrVoterNotFound
		}
		if proposal.HasVoted(voter.MemberID) {
			return domainerrors.ErrDuplicateVote
		}
		if !choice.Valid() {
			return domainerrors.ErrInvalidChoice
		}

		voteID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return err
		}
		vote := entities.VoteRecord{
			VoteID:     voteID,
			ProposalID: proposal.ProposalID,
			VoterID:    voter.MemberID,
			Choice:     choice,
			Power:      voter.VotingPower,
			CastAt:     now,
		}
		if err := tx.AppendVote(ctx, vote); err != nil {
			return err
		}

		proposal.Tallies = proposal.Tallies.Add(choice, vote.Power)
		if proposal.Voters == nil {
			proposal.Voters = make(map[string]struct{})
		}
		proposal.Voters[voter.MemberID] = struct{}{}
		proposal.UpdatedAt = now
		if err := tx.SaveProposal(ctx, proposal); err != nil {
			return err
		}

		voter.VotesSubmitted++
		voter.UpdatedAt = now
		if err := tx.SaveMember(ctx, voter); err != nil {
			return err
		}

		if err := appendEvent(ctx, tx, uc.IDGen, EventVoteCast, "proposal_id", proposal.ProposalID, now, map[string]any{
			"vote_id":     vote.VoteID,
			"proposal_id": vote.ProposalID,
			"voter_id":    vote.VoterID,
			"choice":      string(vote.Choice),
			"power":       vote.Power,
		}); err != nil {
			return err
		}
		result = CastVoteResult{Tallies: proposal.Tallies, Vote: vote}
		return nil
	})
	if err == nil && closedErr != nil {
		logger.Info("proposal closed on expiry",
			"event", "governance_proposal_closed",
			"module", application.Module,
			"layer", "application",
			"proposal_id", proposalID,
		)
		err = closedErr
	}
	if err != nil {
		level := slog.LevelInfo
		if domainerrors.KindOf(err) == domainerrors.KindUnknown {
			level = slog.LevelError
		}
		logger.Log(ctx, level, "vote rejected",
			"event", "governance_vote_rejected",
			"module", application.Module,
			"layer", "application",
			"proposal_id", proposalID,
			"voter_id", voterID,
			"duplicate", errors.Is(err, domainerrors.ErrDuplicateVote),
			"error", err.Error(),
		)
		return CastVoteResult{}, err
	}

	application.ResolveMetrics(uc.Metrics).VoteCast(result.Vote.Choice, result.Vote.Power)
	logger.Info("vote cast",
		"event", "governance_vote_cast",
		"module", application.Module,
		"layer", "application",
		"proposal_id", result.Vote.ProposalID,
		"voter_id", result.Vote.VoterID,
		"choice", string(result.Vote.Choice),
		"power", result.Vote.Power,
	)
	return result, nil
}
