package proposalengine

import (
	"log/slog"

	httpadapter "govengine/contexts/governance/proposal-engine/adapters/http"
	"govengine/contexts/governance/proposal-engine/adapters/memory"
	"govengine/contexts/governance/proposal-engine/application/commands"
	"govengine/contexts/governance/proposal-engine/application/queries"
	"govengine/contexts/governance/proposal-engine/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Outbox  ports.OutboxRepository
	Store   *memory.Store
}

type Dependencies struct {
	Repository ports.Repository
	Outbox     ports.OutboxRepository
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Metrics    ports.MetricsSink
	Defaults   commands.ProposalDefaults
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Handler: httpadapter.Handler{
			Members: commands.MemberUseCase{
				Repo:    deps.Repository,
				Clock:   deps.Clock,
				IDGen:   deps.IDGen,
				Metrics: deps.Metrics,
				Logger:  deps.Logger,
			},
			Proposals: commands.ProposalUseCase{
				Repo:     deps.Repository,
				Clock:    deps.Clock,
				IDGen:    deps.IDGen,
				Metrics:  deps.Metrics,
				Defaults: deps.Defaults,
				Logger:   deps.Logger,
			},
			Votes: commands.VoteUseCase{
				Repo:    deps.Repository,
				Clock:   deps.Clock,
				IDGen:   deps.IDGen,
				Metrics: deps.Metrics,
				Logger:  deps.Logger,
			},
			MemberQueries: queries.MemberQueryUseCase{
				Repo: deps.Repository,
			},
			ProposalQueries: queries.ProposalQueryUseCase{
				Repo:  deps.Repository,
				Clock: deps.Clock,
			},
			Logger: deps.Logger,
		},
		Outbox: deps.Outbox,
	}
}

func NewInMemoryModule(metrics ports.MetricsSink, defaults commands.ProposalDefaults, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository: store,
		Outbox:     store,
		Clock:      store,
		IDGen:      store,
		Metrics:    metrics,
		Defaults:   defaults,
		Logger:     logger,
	})
	module.Store = store
	return module
}
