package postgresadapter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"govengine/contexts/governance/proposal-engine/domain/entities"
	domainerrors "govengine/contexts/governance/proposal-engine/domain/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// failingPool records every statement gorm sends and fails it with err.
type failingPool struct {
	mu      sync.Mutex
	queries []string
	err     error
}

func (p *failingPool) record(query string) {
	p.mu.Lock()
	p.queries = append(p.queries, query)
	p.mu.Unlock()
}

func (p *failingPool) PrepareContext(_ context.Context, query string) (*sql.Stmt, error) {
	p.record(query)
	return nil, p.err
}

func (p *failingPool) ExecContext(_ context.Context, query string, _ ...any) (sql.Result, error) {
	p.record(query)
	return nil, p.err
}

func (p *failingPool) QueryContext(_ context.Context, query string, _ ...any) (*sql.Rows, error) {
	p.record(query)
	return nil, p.err
}

func (p *failingPool) QueryRowContext(_ context.Context, query string, _ ...any) *sql.Row {
	p.record(query)
	return nil
}

func newFailingRepository(t *testing.T, err error) (*Repository, *failingPool) {
	t.Helper()
	pool := &failingPool{err: err}
	db, openErr := gorm.Open(postgres.New(postgres.Config{Conn: pool}), &gorm.Config{
		Logger:                 logger.Discard,
		SkipDefaultTransaction: true,
	})
	if openErr != nil {
		t.Fatalf("open gorm: %v", openErr)
	}
	return NewRepository(db, slog.New(slog.NewTextHandler(io.Discard, nil))), pool
}

func testVote() entities.VoteRecord {
	return entities.VoteRecord{
		VoteID:     "v-1",
		ProposalID: "p-1",
		VoterID:    "alice",
		Choice:     entities.ChoiceFor,
		Power:      3,
		CastAt:     time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC),
	}
}

func TestAppendVoteMapsUniqueViolationToDuplicateVote(t *testing.T) {
	repo, _ := newFailingRepository(t, fmt.Errorf("insert vote: %w", &pgconn.PgError{Code: "23505"}))
	tx := &repositoryTx{db: repo.db, repo: repo}

	err := tx.AppendVote(context.Background(), testVote())
	if !errors.Is(err, domainerrors.ErrDuplicateVote) {
		t.Fatalf("expected duplicate vote, got %v", err)
	}
}

func TestAppendVoteReturnsOtherDatabaseErrors(t *testing.T) {
	dbErr := &pgconn.PgError{Code: "57P01", Message: "terminating connection"}
	repo, _ := newFailingRepository(t, dbErr)
	tx := &repositoryTx{db: repo.db, repo: repo}

	err := tx.AppendVote(context.Background(), testVote())
	if errors.Is(err, domainerrors.ErrDuplicateVote) {
		t.Fatalf("only unique violations are duplicates, got %v", err)
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "57P01" {
		t.Fatalf("expected the driver error back, got %v", err)
	}
}

func TestListPendingOutboxOrdersByCreationThenID(t *testing.T) {
	repo, pool := newFailingRepository(t, errors.New("connection refused"))
	if _, err := repo.ListPendingOutbox(context.Background(), 10); err == nil {
		t.Fatalf("expected error from failing pool")
	}
	if len(pool.queries) != 1 {
		t.Fatalf("expected one query, got %v", pool.queries)
	}
	query := pool.queries[0]
	createdAt := strings.Index(query, "created_at ASC")
	outboxID := strings.Index(query, "outbox_id ASC")
	if createdAt < 0 || outboxID < createdAt {
		t.Fatalf("expected ORDER BY created_at then outbox_id, got %s", query)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !isUniqueViolation(fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "23505"})) {
		t.Fatalf("expected wrapped 23505 to match")
	}
	if isUniqueViolation(errors.New("23505")) {
		t.Fatalf("plain errors never match")
	}
}
