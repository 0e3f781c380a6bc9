package commands

import (
	"context"
	"log/slog"
	"math"
	"strings"

	application "govengine/contexts/governance/proposal-engine/application"
	"govengine/contexts/governance/proposal-engine/domain/entities"
	domainerrors "govengine/contexts/governance/proposal-engine/domain/errors"
	"govengine/contexts/governance/proposal-engine/ports"
)

// RegisterMemberCommand carries registration input. A nil VotingPower and an
// empty Role fall back to the defaults (power 1, role member).
type RegisterMemberCommand struct {
	MemberID    string
	DisplayName string
	VotingPower *float64
	Role        entities.Role
	Verified    bool
}

type RegisterMemberResult struct {
	Member   entities.Member
	Replaced bool
}

type MemberUseCase struct {
	Repo    ports.Repository
	Clock   ports.Clock
	IDGen   ports.IDGenerator
	Metrics ports.MetricsSink
	Logger  *slog.Logger
}

// RegisterMember inserts a member or replaces the profile of an existing one.
// Replacement keeps RegisteredAt and the activity counters; votes already
// cast keep the power they were cast with.
func (uc MemberUseCase) RegisterMember(ctx context.Context, cmd RegisterMemberCommand) (RegisterMemberResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	memberID := strings.TrimSpace(cmd.MemberID)
	if memberID == "" {
		logger.Warn("member registration validation failed",
			"event", "governance_member_register_validation_failed",
			"module", application.Module,
			"layer", "application",
			"reason", "member_id_required",
		)
		return RegisterMemberResult{}, domainerrors.ErrInvalidMemberInput
	}

	power := entities.DefaultVotingPower
	if cmd.VotingPower != nil {
		power = *cmd.VotingPower
	}
	if power < 0 || math.IsNaN(power) || math.IsInf(power, 0) {
		logger.Warn("member registration validation failed",
			"event", "governance_member_register_validation_failed",
			"module", application.Module,
			"layer", "application",
			"member_id", memberID,
			"reason", "invalid_voting_power",
		)
		return RegisterMemberResult{}, domainerrors.ErrInvalidVotingPower
	}

	role := entities.Role(strings.ToLower(strings.TrimSpace(string(cmd.Role))))
	if role == "" {
		role = entities.RoleMember
	}
	if !role.Valid() {
		return RegisterMemberResult{}, domainerrors.ErrInvalidRole
	}

	now := readClock(uc.Clock)
	var result RegisterMemberResult
	err := uc.Repo.Atomically(ctx, func(ctx context.Context, tx ports.Tx) error {
		member := entities.Member{
			MemberID:     memberID,
			DisplayName:  strings.TrimSpace(cmd.DisplayName),
			VotingPower:  power,
			Role:         role,
			Verified:     cmd.Verified,
			RegisteredAt: now,
			UpdatedAt:    now,
		}
		existing, found, err := tx.GetMember(ctx, memberID)
		if err != nil {
			return err
		}
		if found {
			member.RegisteredAt = existing.RegisteredAt
			member.ProposalsCreated = existing.ProposalsCreated
			member.VotesSubmitted = existing.VotesSubmitted
		}
		if err := tx.SaveMember(ctx, member); err != nil {
			return err
		}
		if err := appendEvent(ctx, tx, uc.IDGen, EventMemberRegistered, "member_id", member.MemberID, now, map[string]any{
			"member_id":    member.MemberID,
			"display_name": member.DisplayName,
			"voting_power": member.VotingPower,
			"role":         string(member.Role),
			"verified":     member.Verified,
			"replaced":     found,
		}); err != nil {
			return err
		}
		result = RegisterMemberResult{Member: member, Replaced: found}
		return nil
	})
	if err != nil {
		return RegisterMemberResult{}, err
	}

	application.ResolveMetrics(uc.Metrics).MemberRegistered(result.Member.Role)
	event := "governance_member_registered"
	if result.Replaced {
		event = "governance_member_reregistered"
	}
	logger.Info("member registered",
		"event", event,
		"module", application.Module,
		"layer", "application",
		"member_id", result.Member.MemberID,
		"role", string(result.Member.Role),
		"voting_power", result.Member.VotingPower,
	)
	return result, nil
}
