package queries

import (
	"context"
	"strings"
	"time"

	"govengine/contexts/governance/proposal-engine/domain/entities"
	domainerrors "govengine/contexts/governance/proposal-engine/domain/errors"
	"govengine/contexts/governance/proposal-engine/ports"

	"github.com/samber/lo"
)

type ListProposalsQuery struct {
	Status     entities.ProposalStatus
	Category   string
	ProposerID string
}

// ProposalQueryUseCase serves reads. Returned proposals carry the status
// derived at read time; nothing is persisted.
type ProposalQueryUseCase struct {
	Repo  ports.Repository
	Clock ports.Clock
}

func (uc ProposalQueryUseCase) GetProposal(ctx context.Context, proposalID string) (entities.Proposal, error) {
	proposalID = strings.TrimSpace(proposalID)
	if proposalID == "" {
		return entities.Proposal{}, domainerrors.ErrProposalNotFound
	}
	proposal, err := uc.Repo.GetProposal(ctx, proposalID)
	if err != nil {
		return entities.Proposal{}, err
	}
	proposal.Status = entities.DeriveStatus(proposal, uc.now())
	return proposal, nil
}

func (uc ProposalQueryUseCase) ListProposals(ctx context.Context, query ListProposalsQuery) ([]entities.Proposal, error) {
	status := entities.ProposalStatus(strings.ToLower(strings.TrimSpace(string(query.Status))))
	if status != "" && !status.Valid() {
		return nil, domainerrors.ErrInvalidProposalInput
	}
	proposals, err := uc.Repo.ListProposals(ctx, ports.ProposalFilter{
		Category:   strings.TrimSpace(query.Category),
		ProposerID: strings.TrimSpace(query.ProposerID),
	})
	if err != nil {
		return nil, err
	}

	now := uc.now()
	derived := lo.Map(proposals, func(item entities.Proposal, _ int) entities.Proposal {
		item.Status = entities.DeriveStatus(item, now)
		return item
	})
	if status == "" {
		return derived, nil
	}
	return lo.Filter(derived, func(item entities.Proposal, _ int) bool {
		return item.Status == status
	}), nil
}

// ListVotes returns the vote records of a proposal in cast order.
func (uc ProposalQueryUseCase) ListVotes(ctx context.Context, proposalID string) ([]entities.VoteRecord, error) {
	proposalID = strings.TrimSpace(proposalID)
	if _, err := uc.Repo.GetProposal(ctx, proposalID); err != nil {
		return nil, err
	}
	return uc.Repo.ListVotes(ctx, proposalID)
}

func (uc ProposalQueryUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
