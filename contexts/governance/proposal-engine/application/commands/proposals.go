package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	application "govengine/contexts/governance/proposal-engine/application"
	"govengine/contexts/governance/proposal-engine/domain/entities"
	domainerrors "govengine/contexts/governance/proposal-engine/domain/errors"
	"govengine/contexts/governance/proposal-engine/ports"
)

// ProposalOptions lists every recognized creation option. Nil pointers, a zero
// VotingPeriod and an empty Category take the value from ProposalDefaults.
type ProposalOptions struct {
	Category          string
	VotingPeriod      *time.Duration
	QuorumThreshold   *float64
	ApprovalThreshold *float64
	ExecutionDelay    *time.Duration
	VotingStartsAt    *time.Time
}

type ProposalDefaults struct {
	Category          string
	VotingPeriod      time.Duration
	QuorumThreshold   float64
	ApprovalThreshold float64
	ExecutionDelay    time.Duration
}

func DefaultProposalDefaults() ProposalDefaults {
	return ProposalDefaults{
		Category:          entities.DefaultCategory,
		VotingPeriod:      7 * 24 * time.Hour,
		QuorumThreshold:   0.5,
		ApprovalThreshold: 0.6,
		ExecutionDelay:    2 * 24 * time.Hour,
	}
}

type CreateProposalCommand struct {
	ProposerID  string
	Title       string
	Description string
	Options     ProposalOptions
}

type ExecuteProposalResult struct {
	Proposal         entities.Proposal
	ExecutionContext json.RawMessage
}

type ProposalUseCase struct {
	Repo     ports.Repository
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Metrics  ports.MetricsSink
	Defaults ProposalDefaults
	Logger   *slog.Logger
}

func (uc ProposalUseCase) CreateProposal(ctx context.Context, cmd CreateProposalCommand) (entities.Proposal, error) {
	logger := application.ResolveLogger(uc.Logger)
	proposerID := strings.TrimSpace(cmd.ProposerID)
	title := strings.TrimSpace(cmd.Title)
	if proposerID == "" || title == "" {
		logger.Warn("proposal create validation failed",
			"event", "governance_proposal_create_validation_failed",
			"module", application.Module,
			"layer", "application",
			"proposer_id", proposerID,
		)
		return entities.Proposal{}, domainerrors.ErrInvalidProposalInput
	}

	now := readClock(uc.Clock)
	settings, err := uc.resolveOptions(cmd.Options, now)
	if err != nil {
		logger.Warn("proposal create options rejected",
			"event", "governance_proposal_create_options_rejected",
			"module", application.Module,
			"layer", "application",
			"proposer_id", proposerID,
			"error", err.Error(),
		)
		return entities.Proposal{}, err
	}

	var proposal entities.Proposal
	err = uc.Repo.Atomically(ctx, func(ctx context.Context, tx ports.Tx) error {
		proposer, found, err := tx.GetMember(ctx, proposerID)
		if err != nil {
			return err
		}
		if !found {
			return domainerrors.ErrProposerNotFound
		}

		proposalID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return err
		}
		proposal = entities.Proposal{
			ProposalID:        proposalID,
			Title:             title,
			Description:       strings.TrimSpace(cmd.Description),
			ProposerID:        proposer.MemberID,
			Category:          settings.Category,
			Status:            entities.ProposalStatusActive,
			CreatedAt:         now,
			UpdatedAt:         now,
			VotingStartsAt:    settings.startsAt,
			VotingEndsAt:      settings.startsAt.Add(settings.VotingPeriod),
			QuorumThreshold:   settings.QuorumThreshold,
			ApprovalThreshold: settings.ApprovalThreshold,
			ExecutionDelay:    settings.ExecutionDelay,
			Voters:            make(map[string]struct{}),
		}
		if err := tx.SaveProposal(ctx, proposal); err != nil {
			return err
		}

		proposer.ProposalsCreated++
		proposer.UpdatedAt = now
		if err := tx.SaveMember(ctx, proposer); err != nil {
			return err
		}
		data := proposalEventData(proposal)
		data["title"] = proposal.Title
		return appendEvent(ctx, tx, uc.IDGen, EventProposalCreated, "proposal_id", proposal.ProposalID, now, data)
	})
	if err != nil {
		return entities.Proposal{}, err
	}

	application.ResolveMetrics(uc.Metrics).ProposalCreated(proposal.Category)
	logger.Info("proposal created",
		"event", "governance_proposal_created",
		"module", application.Module,
		"layer", "application",
		"proposal_id", proposal.ProposalID,
		"proposer_id", proposal.ProposerID,
		"category", proposal.Category,
		"voting_ends_at", proposal.VotingEndsAt,
	)
	return proposal, nil
}

// FinalizeProposal decides the outcome of an active or closed proposal. It
// may run before the voting window ends; the result records that case.
func (uc ProposalUseCase) FinalizeProposal(ctx context.Context, proposalID string) (entities.Proposal, error) {
	logger := application.ResolveLogger(uc.Logger)
	proposalID = strings.TrimSpace(proposalID)
	now := readClock(uc.Clock)

	var proposal entities.Proposal
	err := uc.Repo.Atomically(ctx, func(ctx context.Context, tx ports.Tx) error {
		current, found, err := tx.GetProposal(ctx, proposalID)
		if err != nil {
			return err
		}
		if !found {
			return domainerrors.ErrProposalNotFound
		}
		derived := entities.DeriveStatus(current, now)
		if derived.Finalized() {
			return domainerrors.ErrAlreadyFinalized
		}

		totalPower, err := tx.TotalVotingPower(ctx)
		if err != nil {
			return err
		}
		status, result := entities.Finalize(entities.FinalizationInput{
			Tallies:           current.Tallies,
			TotalVotingPower:  totalPower,
			QuorumThreshold:   current.QuorumThreshold,
			ApprovalThreshold: current.ApprovalThreshold,
			VotingEndsAt:      current.VotingEndsAt,
			Now:               now,
		})
		if !entities.CanTransition(derived, status) {
			return domainerrors.ErrInvalidTransition
		}

		current.Status = status
		current.Result = &result
		current.UpdatedAt = now
		if status == entities.ProposalStatusApproved {
			scheduledAt := now.Add(current.ExecutionDelay)
			current.ExecutionScheduledAt = &scheduledAt
		}
		if err := tx.SaveProposal(ctx, current); err != nil {
			return err
		}
		proposal = current
		return appendEvent(ctx, tx, uc.IDGen, EventProposalFinalized, "proposal_id", current.ProposalID, now, proposalEventData(current))
	})
	if err != nil {
		logger.Info("proposal finalize refused",
			"event", "governance_proposal_finalize_refused",
			"module", application.Module,
			"layer", "application",
			"proposal_id", proposalID,
			"error", err.Error(),
		)
		return entities.Proposal{}, err
	}

	application.ResolveMetrics(uc.Metrics).ProposalFinalized(proposal.Status, *proposal.Result)
	logger.Info("proposal finalized",
		"event", "governance_proposal_finalized",
		"module", application.Module,
		"layer", "application",
		"proposal_id", proposal.ProposalID,
		"status", string(proposal.Status),
		"participation_rate", proposal.Result.ParticipationRate,
		"approval_rate", proposal.Result.ApprovalRate,
		"early", proposal.Result.EarlyFinalization,
	)
	return proposal, nil
}

// ExecuteProposal marks an approved proposal executed once its delay has
// elapsed. The execution context is stored verbatim and handed back; it is
// never interpreted here. It must be valid JSON, checked only after the
// proposal is known to be executable.
func (uc ProposalUseCase) ExecuteProposal(
	ctx context.Context,
	proposalID string,
	executionContext json.RawMessage,
) (ExecuteProposalResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	proposalID = strings.TrimSpace(proposalID)
	now := readClock(uc.Clock)

	var proposal entities.Proposal
	err := uc.Repo.Atomically(ctx, func(ctx context.Context, tx ports.Tx) error {
		current, found, err := tx.GetProposal(ctx, proposalID)
		if err != nil {
			return err
		}
		if !found {
			return domainerrors.ErrProposalNotFound
		}
		if entities.DeriveStatus(current, now) != entities.ProposalStatusApproved {
			return domainerrors.ErrNotApproved
		}
		if current.ExecutionScheduledAt == nil || now.Before(*current.ExecutionScheduledAt) {
			return domainerrors.ErrExecutionDelayNotElapsed
		}
		if len(executionContext) > 0 && !json.Valid(executionContext) {
			return domainerrors.ErrInvalidProposalInput
		}

		current.Status = entities.ProposalStatusExecuted
		executedAt := now
		current.ExecutedAt = &executedAt
		current.UpdatedAt = now
		if len(executionContext) > 0 {
			current.ExecutionContext = append(json.RawMessage(nil), executionContext...)
		}
		if err := tx.SaveProposal(ctx, current); err != nil {
			return err
		}
		proposal = current
		return appendEvent(ctx, tx, uc.IDGen, EventProposalExecuted, "proposal_id", current.ProposalID, now, proposalEventData(current))
	})
	if err != nil {
		logger.Info("proposal execute refused",
			"event", "governance_proposal_execute_refused",
			"module", application.Module,
			"layer", "application",
			"proposal_id", proposalID,
			"error", err.Error(),
		)
		return ExecuteProposalResult{}, err
	}

	application.ResolveMetrics(uc.Metrics).ProposalExecuted(proposal.Category)
	logger.Info("proposal executed",
		"event", "governance_proposal_executed",
		"module", application.Module,
		"layer", "application",
		"proposal_id", proposal.ProposalID,
		"executed_at", proposal.ExecutedAt,
	)
	return ExecuteProposalResult{
		Proposal:         proposal,
		ExecutionContext: proposal.ExecutionContext,
	}, nil
}

type resolvedOptions struct {
	ProposalDefaults
	startsAt time.Time
}

func (uc ProposalUseCase) resolveOptions(opts ProposalOptions, now time.Time) (resolvedOptions, error) {
	defaults := uc.Defaults
	if defaults == (ProposalDefaults{}) {
		defaults = DefaultProposalDefaults()
	}
	out := resolvedOptions{ProposalDefaults: defaults, startsAt: now}

	if category := strings.TrimSpace(opts.Category); category != "" {
		out.Category = category
	}
	if out.Category == "" {
		out.Category = entities.DefaultCategory
	}
	if opts.VotingPeriod != nil && *opts.VotingPeriod != 0 {
		out.VotingPeriod = *opts.VotingPeriod
	}
	if opts.ExecutionDelay != nil {
		out.ExecutionDelay = *opts.ExecutionDelay
	}
	if opts.QuorumThreshold != nil {
		out.QuorumThreshold = *opts.QuorumThreshold
	}
	if opts.ApprovalThreshold != nil {
		out.ApprovalThreshold = *opts.ApprovalThreshold
	}
	if opts.VotingStartsAt != nil && !opts.VotingStartsAt.IsZero() {
		out.startsAt = opts.VotingStartsAt.UTC()
	}

	if !entities.ValidThreshold(out.QuorumThreshold) || !entities.ValidThreshold(out.ApprovalThreshold) {
		return resolvedOptions{}, domainerrors.ErrInvalidThreshold
	}
	if out.VotingPeriod <= 0 || out.ExecutionDelay < 0 {
		return resolvedOptions{}, domainerrors.ErrInvalidProposalInput
	}
	return out, nil
}
