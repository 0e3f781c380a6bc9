package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	proposalengine "govengine/contexts/governance/proposal-engine"
	postgresadapter "govengine/contexts/governance/proposal-engine/adapters/postgres"
	prometheusadapter "govengine/contexts/governance/proposal-engine/adapters/prometheus"
	"govengine/contexts/governance/proposal-engine/application/commands"
	workerapp "govengine/contexts/governance/proposal-engine/application/workers"
	"govengine/contexts/governance/proposal-engine/ports"
	"govengine/internal/platform/config"
	"govengine/internal/platform/db"
	"govengine/internal/platform/httpserver"
	"govengine/internal/platform/logging"
	"govengine/internal/platform/messaging"
	"govengine/internal/platform/ratelimiter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server    *httpserver.Server
	postgres  *db.Postgres
	redis     *redis.Client
	relays    *relaySet
	limiter   *ratelimiter.MapLimiter
	logger    *slog.Logger
	closeWait time.Duration
}

type WorkerApp struct {
	postgres *db.Postgres
	redis    *redis.Client
	relays   *relaySet
	logger   *slog.Logger
}

// relaySet drains the outbox to the publishers and feeds executed proposals
// to the execution handler through the in-process bus.
type relaySet struct {
	outbox    workerapp.OutboxRelay
	execution workerapp.ExecutionRelay
	interval  time.Duration
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := logging.NewFromEnv(os.Stdout).With("service", cfg.ServiceName, "process", "api")
	slog.SetDefault(logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := prometheusadapter.NewMetrics(registry, append([]string{cfg.Governance.Category}, cfg.MetricCategories...)...)
	if err != nil {
		return nil, err
	}

	app := &APIApp{logger: logger, closeWait: 10 * time.Second}
	var module proposalengine.Module
	switch cfg.Store {
	case config.StorePostgres:
		pg, repo, err := connectRepository(cfg, logger)
		if err != nil {
			return nil, err
		}
		app.postgres = pg
		module = proposalengine.NewModule(proposalengine.Dependencies{
			Repository: repo,
			Outbox:     repo,
			Clock:      postgresadapter.SystemClock{},
			IDGen:      postgresadapter.UUIDGenerator{},
			Metrics:    metrics,
			Defaults:   proposalDefaults(cfg),
			Logger:     logger,
		})
	default:
		module = proposalengine.NewInMemoryModule(metrics, proposalDefaults(cfg), logger)
	}

	// The in-memory outbox is only reachable from this process, so the API
	// drains it itself. With postgres the worker process owns the relay.
	if cfg.Store == config.StoreMemory {
		client, err := optionalRedis(cfg)
		if err != nil {
			return nil, err
		}
		app.redis = client
		app.relays = newRelaySet(cfg, module.Outbox, module.Store, client, logger)
	}

	if cfg.RateLimit.Enabled {
		app.limiter = ratelimiter.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst, 10*time.Minute)
	}
	opts := httpserver.Options{
		Metrics: promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		Limiter: app.limiter,
	}
	if app.postgres != nil {
		opts.Readiness = app.postgres.Ping
	}
	app.server = httpserver.New(module, opts, logger, normalizeAddr(cfg.HTTPPort))
	return app, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := logging.NewFromEnv(os.Stdout).With("service", cfg.ServiceName, "process", "worker")
	slog.SetDefault(logger)

	if cfg.Store != config.StorePostgres {
		return nil, errors.New("worker requires GOV_STORE=postgres; the memory store is relayed by the api process")
	}
	pg, repo, err := connectRepository(cfg, logger)
	if err != nil {
		return nil, err
	}
	client, err := optionalRedis(cfg)
	if err != nil {
		_ = pg.Close()
		return nil, err
	}
	return &WorkerApp{
		postgres: pg,
		redis:    client,
		relays:   newRelaySet(cfg, repo, postgresadapter.SystemClock{}, client, logger),
		logger:   logger,
	}, nil
}

func (a *APIApp) Run(ctx context.Context) error {
	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)

	errCh := make(chan error, 2)
	go func() {
		errCh <- a.server.Start()
	}()
	if a.relays != nil {
		go func() {
			if err := a.relays.run(ctx); err != nil {
				errCh <- err
			}
		}()
	}
	if a.limiter != nil {
		go a.evictLimiter(ctx)
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.closeWait)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	}
}

func (a *APIApp) evictLimiter(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			a.limiter.Evict(now)
		}
	}
}

func (a *APIApp) Close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.postgres != nil {
		errs = append(errs, a.postgres.Close())
	}
	return errors.Join(errs...)
}

func (w *WorkerApp) Run(ctx context.Context) error {
	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.relays.interval.String(),
	)
	return w.relays.run(ctx)
}

func (w *WorkerApp) Close() error {
	var errs []error
	if w.redis != nil {
		errs = append(errs, w.redis.Close())
	}
	if w.postgres != nil {
		errs = append(errs, w.postgres.Close())
	}
	return errors.Join(errs...)
}

func (r *relaySet) run(ctx context.Context) error {
	if err := r.execution.Start(ctx); err != nil {
		return err
	}
	if err := r.outbox.Run(ctx, r.interval); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newRelaySet(
	cfg config.Config,
	outbox ports.OutboxRepository,
	clock ports.Clock,
	client *redis.Client,
	logger *slog.Logger,
) *relaySet {
	bus := messaging.NewBus(logger)
	// External publishers go first: the bus feeds the execution hand-off, so
	// it only sees an event once every other publisher has accepted it.
	var publishers messaging.Fanout
	if client != nil {
		publishers = append(publishers, messaging.NewRedisStream(client, cfg.OutboxStream, logger))
	}
	publishers = append(publishers, bus)
	return &relaySet{
		outbox: workerapp.OutboxRelay{
			Outbox:    outbox,
			Publisher: publishers,
			Clock:     clock,
			BatchSize: 100,
			Logger:    logger,
		},
		execution: workerapp.ExecutionRelay{
			Subscriber: bus,
			Handler:    workerapp.LoggingExecutionHandler{Logger: logger},
			Logger:     logger,
		},
		interval: cfg.OutboxInterval,
	}
}

func connectRepository(cfg config.Config, logger *slog.Logger) (*db.Postgres, *postgresadapter.Repository, error) {
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, nil, errors.New("POSTGRES_DSN is required")
	}
	pg, err := db.Connect(cfg.PostgresDSN, db.DefaultOptions())
	if err != nil {
		return nil, nil, err
	}
	repo := postgresadapter.NewRepository(pg.DB, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := repo.Migrate(ctx); err != nil {
		_ = pg.Close()
		return nil, nil, err
	}
	return pg, repo, nil
}

func optionalRedis(cfg config.Config) (*redis.Client, error) {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return nil, nil
	}
	return messaging.NewRedisClient(cfg.RedisURL)
}

func proposalDefaults(cfg config.Config) commands.ProposalDefaults {
	return commands.ProposalDefaults{
		Category:          cfg.Governance.Category,
		VotingPeriod:      cfg.Governance.VotingPeriod,
		QuorumThreshold:   cfg.Governance.QuorumThreshold,
		ApprovalThreshold: cfg.Governance.ApprovalThreshold,
		ExecutionDelay:    cfg.Governance.ExecutionDelay,
	}
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
