package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Postgres owns the gorm handle shared by the governance repository and the
// outbox relay. Both run their writes through DB.Transaction.
type Postgres struct {
	DB *gorm.DB
}

// Options tunes the pool. Zero values fall back to DefaultOptions.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
	// LogSQL routes statements through gorm's logger at Info level.
	LogSQL bool
}

func DefaultOptions() Options {
	return Options{
		MaxOpenConns:    20,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
		PingTimeout:     5 * time.Second,
	}
}

func Connect(dsn string, opts Options) (*Postgres, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}
	opts = opts.withDefaults()

	logLevel := logger.Warn
	if opts.LogSQL {
		logLevel = logger.Info
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("resolve postgres sql db handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)

	pg := &Postgres{DB: db}
	ctx, cancel := context.WithTimeout(context.Background(), opts.PingTimeout)
	defer cancel()
	if err := pg.Ping(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return pg, nil
}

// Ping backs the /readyz check.
func (p *Postgres) Ping(ctx context.Context) error {
	if p == nil || p.DB == nil {
		return errors.New("postgres is not connected")
	}
	sqlDB, err := p.DB.DB()
	if err != nil {
		return fmt.Errorf("resolve postgres sql db handle: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

func (p *Postgres) Close() error {
	if p == nil || p.DB == nil {
		return nil
	}
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (o Options) withDefaults() Options {
	defaults := DefaultOptions()
	if o.MaxOpenConns <= 0 {
		o.MaxOpenConns = defaults.MaxOpenConns
	}
	if o.MaxIdleConns <= 0 {
		o.MaxIdleConns = defaults.MaxIdleConns
	}
	if o.MaxIdleConns > o.MaxOpenConns {
		o.MaxIdleConns = o.MaxOpenConns
	}
	if o.ConnMaxLifetime <= 0 {
		o.ConnMaxLifetime = defaults.ConnMaxLifetime
	}
	if o.PingTimeout <= 0 {
		o.PingTimeout = defaults.PingTimeout
	}
	return o
}
