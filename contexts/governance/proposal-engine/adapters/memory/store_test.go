package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"govengine/contexts/governance/proposal-engine/domain/entities"
	domainerrors "govengine/contexts/governance/proposal-engine/domain/errors"
	"govengine/contexts/governance/proposal-engine/ports"
)

var t0 = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

func seed(t *testing.T, store *Store) {
	t.Helper()
	err := store.Atomically(context.Background(), func(ctx context.Context, tx ports.Tx) error {
		if err := tx.SaveMember(ctx, entities.Member{MemberID: "b", VotingPower: 2, Role: entities.RoleMember, RegisteredAt: t0}); err != nil {
			return err
		}
		if err := tx.SaveMember(ctx, entities.Member{MemberID: "a", VotingPower: 3, Role: entities.RoleAdmin, Verified: true, RegisteredAt: t0}); err != nil {
			return err
		}
		return tx.SaveProposal(ctx, entities.Proposal{
			ProposalID: "p-1",
			ProposerID: "a",
			Category:   "general",
			Status:     entities.ProposalStatusActive,
			CreatedAt:  t0,
			Voters:     map[string]struct{}{},
		})
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestAtomicallyDiscardsWritesOnError(t *testing.T) {
	store := NewStore()
	seed(t, store)

	boom := errors.New("boom")
	err := store.Atomically(context.Background(), func(ctx context.Context, tx ports.Tx) error {
		if err := tx.SaveMember(ctx, entities.Member{MemberID: "c", VotingPower: 100}); err != nil {
			return err
		}
		if err := tx.AppendVote(ctx, entities.VoteRecord{VoteID: "v-1", ProposalID: "p-1", VoterID: "a", Choice: entities.ChoiceFor, Power: 3}); err != nil {
			return err
		}
		if err := tx.AppendOutbox(ctx, ports.EventEnvelope{EventID: "e-1", EventType: "governance.vote.cast"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}

	if _, err := store.GetMember(context.Background(), "c"); !errors.Is(err, domainerrors.ErrMemberNotFound) {
		t.Fatalf("staged member leaked: %v", err)
	}
	votes, err := store.ListVotes(context.Background(), "p-1")
	if err != nil || len(votes) != 0 {
		t.Fatalf("staged vote leaked: %v %v", votes, err)
	}
	pending, _ := store.ListPendingOutbox(context.Background(), 10)
	if len(pending) != 0 {
		t.Fatalf("staged outbox leaked: %v", pending)
	}
}

func TestTxSeesItsOwnWrites(t *testing.T) {
	store := NewStore()
	seed(t, store)

	err := store.Atomically(context.Background(), func(ctx context.Context, tx ports.Tx) error {
		if err := tx.SaveMember(ctx, entities.Member{MemberID: "a", VotingPower: 10}); err != nil {
			return err
		}
		if err := tx.SaveMember(ctx, entities.Member{MemberID: "c", VotingPower: 5}); err != nil {
			return err
		}
		total, err := tx.TotalVotingPower(ctx)
		if err != nil {
			return err
		}
		if total != 17 {
			t.Fatalf("expected staged total 17, got %f", total)
		}
		if err := tx.AppendVote(ctx, entities.VoteRecord{ProposalID: "p-1", VoterID: "c"}); err != nil {
			return err
		}
		if err := tx.AppendVote(ctx, entities.VoteRecord{ProposalID: "p-1", VoterID: "c"}); !errors.Is(err, domainerrors.ErrDuplicateVote) {
			t.Fatalf("expected duplicate inside tx, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("atomically: %v", err)
	}
}

func TestReadsReturnCopies(t *testing.T) {
	store := NewStore()
	seed(t, store)

	proposal, err := store.GetProposal(context.Background(), "p-1")
	if err != nil {
		t.Fatalf("get proposal: %v", err)
	}
	proposal.Voters["intruder"] = struct{}{}
	proposal.Status = entities.ProposalStatusExecuted

	again, _ := store.GetProposal(context.Background(), "p-1")
	if again.HasVoted("intruder") || again.Status != entities.ProposalStatusActive {
		t.Fatalf("caller mutation reached the store: %+v", again)
	}

	err = store.Atomically(context.Background(), func(ctx context.Context, tx ports.Tx) error {
		p, _, err := tx.GetProposal(ctx, "p-1")
		if err != nil {
			return err
		}
		p.Voters["unsaved"] = struct{}{}
		return nil
	})
	if err != nil {
		t.Fatalf("atomically: %v", err)
	}
	again, _ = store.GetProposal(context.Background(), "p-1")
	if again.HasVoted("unsaved") {
		t.Fatalf("unsaved tx mutation reached the store")
	}
}

func TestListMembersFiltersAndOrders(t *testing.T) {
	store := NewStore()
	seed(t, store)

	all, _ := store.ListMembers(context.Background(), ports.MemberFilter{})
	if len(all) != 2 || all[0].MemberID != "a" || all[1].MemberID != "b" {
		t.Fatalf("expected a,b ordering, got %+v", all)
	}
	admins, _ := store.ListMembers(context.Background(), ports.MemberFilter{Role: entities.RoleAdmin})
	if len(admins) != 1 || admins[0].MemberID != "a" {
		t.Fatalf("role filter failed: %+v", admins)
	}
	verified, _ := store.ListMembers(context.Background(), ports.MemberFilter{VerifiedOnly: true})
	if len(verified) != 1 || verified[0].MemberID != "a" {
		t.Fatalf("verified filter failed: %+v", verified)
	}
}

func TestListVotesUnknownProposal(t *testing.T) {
	store := NewStore()
	if _, err := store.ListVotes(context.Background(), "missing"); !errors.Is(err, domainerrors.ErrProposalNotFound) {
		t.Fatalf("expected proposal not found, got %v", err)
	}
}

func TestOutboxOrderAndPublish(t *testing.T) {
	store := NewStore()
	for _, id := range []string{"e-3", "e-1", "e-2"} {
		id := id
		err := store.Atomically(context.Background(), func(ctx context.Context, tx ports.Tx) error {
			return tx.AppendOutbox(ctx, ports.EventEnvelope{EventID: id, EventType: "governance.test", OccurredAt: t0})
		})
		if err != nil {
			t.Fatalf("append %s: %v", id, err)
		}
	}

	pending, _ := store.ListPendingOutbox(context.Background(), 2)
	if len(pending) != 2 || pending[0].OutboxID != "e-3" || pending[1].OutboxID != "e-1" {
		t.Fatalf("expected commit order e-3,e-1, got %+v", pending)
	}
	if err := store.MarkOutboxPublished(context.Background(), "e-3", t0); err != nil {
		t.Fatalf("mark published: %v", err)
	}
	pending, _ = store.ListPendingOutbox(context.Background(), 10)
	if len(pending) != 2 || pending[0].OutboxID != "e-1" {
		t.Fatalf("published row still pending: %+v", pending)
	}
}

func TestAtomicallyHonorsCancelledContext(t *testing.T) {
	store := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := store.Atomically(ctx, func(context.Context, ports.Tx) error {
		called = true
		return nil
	})
	if !errors.Is(err, context.Canceled) || called {
		t.Fatalf("expected cancellation before callback, got %v called=%v", err, called)
	}
}
