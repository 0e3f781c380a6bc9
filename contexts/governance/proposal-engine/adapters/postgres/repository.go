package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "govengine/contexts/governance/proposal-engine/application"
	"govengine/contexts/governance/proposal-engine/domain/entities"
	domainerrors "govengine/contexts/governance/proposal-engine/domain/errors"
	"govengine/contexts/governance/proposal-engine/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Migrate creates or updates the governance tables.
func (r *Repository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(
		&memberModel{},
		&proposalModel{},
		&voteModel{},
		&outboxModel{},
	); err != nil {
		return r.logError("governance_repo_migrate_failed", err)
	}
	return nil
}

// Atomically runs fn inside one database transaction. Rows read through the
// Tx are locked FOR UPDATE until commit.
func (r *Repository) Atomically(ctx context.Context, fn func(ctx context.Context, tx ports.Tx) error) error {
	return r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(ctx, &repositoryTx{db: db, repo: r})
	})
}

func (r *Repository) GetMember(ctx context.Context, memberID string) (entities.Member, error) {
	var row memberModel
	err := r.db.WithContext(ctx).
		Where("member_id = ?", strings.TrimSpace(memberID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Member{}, domainerrors.ErrMemberNotFound
		}
		return entities.Member{}, r.logError("governance_repo_get_member_failed", err, "member_id", strings.TrimSpace(memberID))
	}
	return row.toEntity(), nil
}

func (r *Repository) ListMembers(ctx context.Context, filter ports.MemberFilter) ([]entities.Member, error) {
	query := r.db.WithContext(ctx).Model(&memberModel{})
	if filter.Role != "" {
		query = query.Where("role = ?", string(filter.Role))
	}
	if filter.VerifiedOnly {
		query = query.Where("verified = ?", true)
	}
	var rows []memberModel
	if err := query.Order("registered_at ASC").Order("member_id ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("governance_repo_list_members_failed", err)
	}
	items := make([]entities.Member, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) GetProposal(ctx context.Context, proposalID string) (entities.Proposal, error) {
	proposal, found, err := r.loadProposal(ctx, r.db.WithContext(ctx), strings.TrimSpace(proposalID), false)
	if err != nil {
		return entities.Proposal{}, err
	}
	if !found {
		return entities.Proposal{}, domainerrors.ErrProposalNotFound
	}
	return proposal, nil
}

func (r *Repository) ListProposals(ctx context.Context, filter ports.ProposalFilter) ([]entities.Proposal, error) {
	query := r.db.WithContext(ctx).Model(&proposalModel{})
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.ProposerID != "" {
		query = query.Where("proposer_id = ?", filter.ProposerID)
	}
	var rows []proposalModel
	if err := query.Order("created_at ASC").Order("proposal_id ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("governance_repo_list_proposals_failed", err)
	}
	if len(rows) == 0 {
		return []entities.Proposal{}, nil
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ProposalID)
	}
	var votes []voteModel
	if err := r.db.WithContext(ctx).
		Select("proposal_id", "voter_id").
		Where("proposal_id IN ?", ids).
		Find(&votes).Error; err != nil {
		return nil, r.logError("governance_repo_list_proposal_voters_failed", err)
	}
	voters := make(map[string][]string, len(rows))
	for _, vote := range votes {
		voters[vote.ProposalID] = append(voters[vote.ProposalID], vote.VoterID)
	}

	items := make([]entities.Proposal, 0, len(rows))
	for _, row := range rows {
		proposal, err := row.toEntity(voters[row.ProposalID])
		if err != nil {
			return nil, r.logError("governance_repo_decode_proposal_failed", err, "proposal_id", row.ProposalID)
		}
		items = append(items, proposal)
	}
	return items, nil
}

func (r *Repository) ListVotes(ctx context.Context, proposalID string) ([]entities.VoteRecord, error) {
	proposalID = strings.TrimSpace(proposalID)
	var count int64
	if err := r.db.WithContext(ctx).Model(&proposalModel{}).Where("proposal_id = ?", proposalID).Count(&count).Error; err != nil {
		return nil, r.logError("governance_repo_count_proposal_failed", err, "proposal_id", proposalID)
	}
	if count == 0 {
		return nil, domainerrors.ErrProposalNotFound
	}
	var rows []voteModel
	if err := r.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Order("seq ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("governance_repo_list_votes_failed", err, "proposal_id", proposalID)
	}
	items := make([]entities.VoteRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Order("outbox_id ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("governance_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("governance_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	return nil
}

func (r *Repository) loadProposal(ctx context.Context, db *gorm.DB, proposalID string, lock bool) (entities.Proposal, bool, error) {
	query := db
	if lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var row proposalModel
	if err := query.Where("proposal_id = ?", proposalID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Proposal{}, false, nil
		}
		return entities.Proposal{}, false, r.logError("governance_repo_get_proposal_failed", err, "proposal_id", proposalID)
	}
	var voterIDs []string
	if err := db.Model(&voteModel{}).
		Where("proposal_id = ?", proposalID).
		Pluck("voter_id", &voterIDs).Error; err != nil {
		return entities.Proposal{}, false, r.logError("governance_repo_get_proposal_voters_failed", err, "proposal_id", proposalID)
	}
	proposal, err := row.toEntity(voterIDs)
	if err != nil {
		return entities.Proposal{}, false, r.logError("governance_repo_decode_proposal_failed", err, "proposal_id", proposalID)
	}
	return proposal, true, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", application.Module,
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("governance repository operation failed", fields...)
	return err
}

type repositoryTx struct {
	db   *gorm.DB
	repo *Repository
}

func (tx *repositoryTx) GetMember(_ context.Context, memberID string) (entities.Member, bool, error) {
	var row memberModel
	err := tx.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("member_id = ?", strings.TrimSpace(memberID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Member{}, false, nil
		}
		return entities.Member{}, false, tx.repo.logError("governance_repo_tx_get_member_failed", err, "member_id", strings.TrimSpace(memberID))
	}
	return row.toEntity(), true, nil
}

func (tx *repositoryTx) SaveMember(_ context.Context, member entities.Member) error {
	row := memberModelFromEntity(member)
	err := tx.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "member_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"display_name":      row.DisplayName,
			"voting_power":      row.VotingPower,
			"role":              row.Role,
			"verified":          row.Verified,
			"proposals_created": row.ProposalsCreated,
			"votes_submitted":   row.VotesSubmitted,
			"updated_at":        row.UpdatedAt,
		}),
	}).Create(&row).Error
	if err != nil {
		return tx.repo.logError("governance_repo_save_member_failed", err, "member_id", row.MemberID)
	}
	return nil
}

func (tx *repositoryTx) TotalVotingPower(_ context.Context) (float64, error) {
	var total float64
	if err := tx.db.Model(&memberModel{}).
		Select("COALESCE(SUM(voting_power), 0)").
		Scan(&total).Error; err != nil {
		return 0, tx.repo.logError("governance_repo_total_voting_power_failed", err)
	}
	return total, nil
}

func (tx *repositoryTx) GetProposal(ctx context.Context, proposalID string) (entities.Proposal, bool, error) {
	return tx.repo.loadProposal(ctx, tx.db, strings.TrimSpace(proposalID), true)
}

func (tx *repositoryTx) SaveProposal(_ context.Context, proposal entities.Proposal) error {
	row, err := proposalModelFromEntity(proposal)
	if err != nil {
		return tx.repo.logError("governance_repo_encode_proposal_failed", err, "proposal_id", proposal.ProposalID)
	}
	err = tx.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "proposal_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"status":                 row.Status,
			"votes_for":              row.VotesFor,
			"votes_against":          row.VotesAgainst,
			"votes_abstain":          row.VotesAbstain,
			"result":                 row.Result,
			"execution_scheduled_at": row.ExecutionScheduledAt,
			"executed_at":            row.ExecutedAt,
			"execution_context":      row.ExecutionContext,
			"updated_at":             row.UpdatedAt,
		}),
	}).Create(&row).Error
	if err != nil {
		return tx.repo.logError("governance_repo_save_proposal_failed", err, "proposal_id", row.ProposalID)
	}
	return nil
}

func (tx *repositoryTx) AppendVote(_ context.Context, vote entities.VoteRecord) error {
	row := voteModel{
		VoteID:     strings.TrimSpace(vote.VoteID),
		ProposalID: strings.TrimSpace(vote.ProposalID),
		VoterID:    strings.TrimSpace(vote.VoterID),
		Choice:     string(vote.Choice),
		Power:      vote.Power,
		CastAt:     vote.CastAt.UTC(),
	}
	if err := tx.db.Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrDuplicateVote
		}
		return tx.repo.logError("governance_repo_append_vote_failed", err,
			"proposal_id", row.ProposalID,
			"voter_id", row.VoterID,
		)
	}
	return nil
}

func (tx *repositoryTx) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return tx.repo.logError("governance_repo_append_outbox_marshal_failed", err,
			"event_id", strings.TrimSpace(envelope.EventID),
			"event_type", strings.TrimSpace(envelope.EventType),
		)
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if err := tx.db.Create(&row).Error; err != nil {
		return tx.repo.logError("governance_repo_append_outbox_insert_failed", err, "outbox_id", row.OutboxID)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.Repository = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
var _ ports.Tx = (*repositoryTx)(nil)
