package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"govengine/contexts/governance/proposal-engine/domain/entities"
	domainerrors "govengine/contexts/governance/proposal-engine/domain/errors"
	"govengine/contexts/governance/proposal-engine/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	seq       uint64
	published bool
}

// Store is the in-process reference store. All mutation happens through
// Atomically, which holds the write lock for the whole callback.
type Store struct {
	mu sync.RWMutex

	members   map[string]entities.Member
	proposals map[string]entities.Proposal
	votes     map[string][]entities.VoteRecord
	outbox    map[string]outboxRecord
	outboxSeq uint64
}

func NewStore() *Store {
	return &Store{
		members:   make(map[string]entities.Member),
		proposals: make(map[string]entities.Proposal),
		votes:     make(map[string][]entities.VoteRecord),
		outbox:    make(map[string]outboxRecord),
	}
}

func (s *Store) Atomically(ctx context.Context, fn func(ctx context.Context, tx ports.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &storeTx{
		store:     s,
		members:   make(map[string]entities.Member),
		proposals: make(map[string]entities.Proposal),
		votes:     make(map[string][]entities.VoteRecord),
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (s *Store) GetMember(_ context.Context, memberID string) (entities.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	member, ok := s.members[strings.TrimSpace(memberID)]
	if !ok {
		return entities.Member{}, domainerrors.ErrMemberNotFound
	}
	return member, nil
}

func (s *Store) ListMembers(_ context.Context, filter ports.MemberFilter) ([]entities.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Member, 0, len(s.members))
	for _, member := range s.members {
		if filter.Role != "" && member.Role != filter.Role {
			continue
		}
		if filter.VerifiedOnly && !member.Verified {
			continue
		}
		items = append(items, member)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].RegisteredAt.Equal(items[j].RegisteredAt) {
			return items[i].MemberID < items[j].MemberID
		}
		return items[i].RegisteredAt.Before(items[j].RegisteredAt)
	})
	return items, nil
}

func (s *Store) GetProposal(_ context.Context, proposalID string) (entities.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	proposal, ok := s.proposals[strings.TrimSpace(proposalID)]
	if !ok {
		return entities.Proposal{}, domainerrors.ErrProposalNotFound
	}
	return proposal.Clone(), nil
}

func (s *Store) ListProposals(_ context.Context, filter ports.ProposalFilter) ([]entities.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Proposal, 0, len(s.proposals))
	for _, proposal := range s.proposals {
		if filter.Category != "" && proposal.Category != filter.Category {
			continue
		}
		if filter.ProposerID != "" && proposal.ProposerID != filter.ProposerID {
			continue
		}
		items = append(items, proposal.Clone())
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ProposalID < items[j].ProposalID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) ListVotes(_ context.Context, proposalID string) ([]entities.VoteRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	proposalID = strings.TrimSpace(proposalID)
	if _, ok := s.proposals[proposalID]; !ok {
		return nil, domainerrors.ErrProposalNotFound
	}
	votes := s.votes[proposalID]
	items := make([]entities.VoteRecord, len(votes))
	copy(items, votes)
	return items, nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	rows := make([]outboxRecord, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.published {
			continue
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].seq < rows[j].seq
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.message)
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return nil
	}
	row.published = true
	s.outbox[strings.TrimSpace(outboxID)] = row
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

// storeTx stages writes on top of the store. Staged state becomes visible to
// other callers only when commit runs, so a failed callback leaves no trace.
type storeTx struct {
	store *Store

	members   map[string]entities.Member
	proposals map[string]entities.Proposal
	votes     map[string][]entities.VoteRecord
	outbox    []ports.OutboxMessage
}

func (tx *storeTx) GetMember(_ context.Context, memberID string) (entities.Member, bool, error) {
	memberID = strings.TrimSpace(memberID)
	if member, ok := tx.members[memberID]; ok {
		return member, true, nil
	}
	member, ok := tx.store.members[memberID]
	return member, ok, nil
}

func (tx *storeTx) SaveMember(_ context.Context, member entities.Member) error {
	tx.members[member.MemberID] = member
	return nil
}

func (tx *storeTx) TotalVotingPower(_ context.Context) (float64, error) {
	total := 0.0
	for id, member := range tx.store.members {
		if staged, ok := tx.members[id]; ok {
			member = staged
		}
		total += member.VotingPower
	}
	for id, member := range tx.members {
		if _, ok := tx.store.members[id]; !ok {
			total += member.VotingPower
		}
	}
	return total, nil
}

func (tx *storeTx) GetProposal(_ context.Context, proposalID string) (entities.Proposal, bool, error) {
	proposalID = strings.TrimSpace(proposalID)
	if proposal, ok := tx.proposals[proposalID]; ok {
		return proposal.Clone(), true, nil
	}
	proposal, ok := tx.store.proposals[proposalID]
	if !ok {
		return entities.Proposal{}, false, nil
	}
	return proposal.Clone(), true, nil
}

func (tx *storeTx) SaveProposal(_ context.Context, proposal entities.Proposal) error {
	tx.proposals[proposal.ProposalID] = proposal.Clone()
	return nil
}

func (tx *storeTx) AppendVote(_ context.Context, vote entities.VoteRecord) error {
	for _, existing := range tx.store.votes[vote.ProposalID] {
		if existing.VoterID == vote.VoterID {
			return domainerrors.ErrDuplicateVote
		}
	}
	for _, existing := range tx.votes[vote.ProposalID] {
		if existing.VoterID == vote.VoterID {
			return domainerrors.ErrDuplicateVote
		}
	}
	tx.votes[vote.ProposalID] = append(tx.votes[vote.ProposalID], vote)
	return nil
}

func (tx *storeTx) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	tx.outbox = append(tx.outbox, ports.OutboxMessage{
		OutboxID:     outboxID,
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		CreatedAt:    createdAt,
	})
	return nil
}

func (tx *storeTx) commit() {
	s := tx.store
	for id, member := range tx.members {
		s.members[id] = member
	}
	for id, proposal := range tx.proposals {
		s.proposals[id] = proposal
	}
	for proposalID, votes := range tx.votes {
		s.votes[proposalID] = append(s.votes[proposalID], votes...)
	}
	for _, message := range tx.outbox {
		s.outboxSeq++
		s.outbox[message.OutboxID] = outboxRecord{message: message, seq: s.outboxSeq}
	}
}

var _ ports.Repository = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
