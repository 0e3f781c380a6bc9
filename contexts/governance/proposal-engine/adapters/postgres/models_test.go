package postgresadapter

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"govengine/contexts/governance/proposal-engine/domain/entities"
)

func TestProposalModelRoundTrip(t *testing.T) {
	now := time.Date(2026, 5, 4, 10, 30, 0, 123000, time.UTC)
	scheduled := now.Add(1500 * time.Microsecond)
	proposal := entities.Proposal{
		ProposalID:        "p-1",
		Title:             "Halve emissions",
		Description:       "cut the rate",
		ProposerID:        "alice",
		Category:          "treasury",
		Status:            entities.ProposalStatusApproved,
		CreatedAt:         now.Add(-time.Hour),
		UpdatedAt:         now,
		VotingStartsAt:    now.Add(-time.Hour),
		VotingEndsAt:      now.Add(-time.Minute),
		QuorumThreshold:   0.4,
		ApprovalThreshold: 0.6,
		ExecutionDelay:    1500 * time.Microsecond,
		Tallies:           entities.Tallies{For: 7, Against: 2, Abstain: 1},
		Voters:            map[string]struct{}{"alice": {}, "bob": {}},
		Result: &entities.FinalizationResult{
			QuorumMet:         true,
			ApprovalMet:       true,
			ParticipationRate: 0.5,
			ApprovalRate:      7.0 / 9.0,
			TotalVotingPower:  20,
			EarlyFinalization: true,
			FinalizedAt:       now,
		},
		ExecutionScheduledAt: &scheduled,
		ExecutionContext:     json.RawMessage(`{"mint":{"to":"vault","amount":5}}`),
	}

	row, err := proposalModelFromEntity(proposal)
	if err != nil {
		t.Fatalf("to model: %v", err)
	}
	got, err := row.toEntity([]string{"alice", "bob"})
	if err != nil {
		t.Fatalf("to entity: %v", err)
	}

	if got.ExecutionDelay != 1500*time.Microsecond {
		t.Fatalf("expected delay 1.5ms to survive, got %s", got.ExecutionDelay)
	}
	if !reflect.DeepEqual(got, proposal) {
		t.Fatalf("round trip mismatch:\nwant %+v\ngot  %+v", proposal, got)
	}
	if !reflect.DeepEqual(*got.Result, *proposal.Result) {
		t.Fatalf("result mismatch: %+v", got.Result)
	}

	row.ExecutionContext[0] = 'x'
	if string(got.ExecutionContext) != `{"mint":{"to":"vault","amount":5}}` {
		t.Fatalf("execution context must not alias the row buffer")
	}
}

func TestProposalModelWithoutOptionalFields(t *testing.T) {
	row, err := proposalModelFromEntity(entities.Proposal{
		ProposalID: "  p-2 ",
		Status:     entities.ProposalStatusActive,
	})
	if err != nil {
		t.Fatalf("to model: %v", err)
	}
	if row.ProposalID != "p-2" || row.Result != nil || row.ExecutionContext != nil {
		t.Fatalf("unexpected row %+v", row)
	}
	got, err := row.toEntity(nil)
	if err != nil {
		t.Fatalf("to entity: %v", err)
	}
	if got.Result != nil || got.ExecutionScheduledAt != nil || got.ExecutedAt != nil || got.ExecutionContext != nil {
		t.Fatalf("optional fields must stay nil: %+v", got)
	}
	if got.Voters == nil || len(got.Voters) != 0 {
		t.Fatalf("expected empty voter set, got %v", got.Voters)
	}
}

func TestProposalModelRejectsCorruptResult(t *testing.T) {
	row := proposalModel{ProposalID: "p-3", Result: []byte("{")}
	if _, err := row.toEntity(nil); err == nil {
		t.Fatalf("expected decode error for corrupt result column")
	}
}

func TestMemberModelRoundTrip(t *testing.T) {
	member := entities.Member{
		MemberID:         "alice",
		DisplayName:      "Alice",
		VotingPower:      12.5,
		Role:             entities.RoleAdmin,
		Verified:         true,
		ProposalsCreated: 3,
		VotesSubmitted:   4,
		RegisteredAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		UpdatedAt:        time.Date(2026, 2, 2, 3, 4, 5, 0, time.UTC),
	}
	if got := memberModelFromEntity(member).toEntity(); !reflect.DeepEqual(got, member) {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}
