package queries

import (
	"context"
	"strings"

	"govengine/contexts/governance/proposal-engine/domain/entities"
	domainerrors "govengine/contexts/governance/proposal-engine/domain/errors"
	"govengine/contexts/governance/proposal-engine/ports"
)

type MemberQueryUseCase struct {
	Repo ports.Repository
}

func (uc MemberQueryUseCase) GetMember(ctx context.Context, memberID string) (entities.Member, error) {
	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return entities.Member{}, domainerrors.ErrMemberNotFound
	}
	return uc.Repo.GetMember(ctx, memberID)
}

// ListMembers returns members ordered by registration time, then id.
func (uc MemberQueryUseCase) ListMembers(ctx context.Context, filter ports.MemberFilter) ([]entities.Member, error) {
	role := entities.Role(strings.ToLower(strings.TrimSpace(string(filter.Role))))
	if role != "" && !role.Valid() {
		return nil, domainerrors.ErrInvalidRole
	}
	filter.Role = role
	return uc.Repo.ListMembers(ctx, filter)
}
