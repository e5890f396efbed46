package cli

import (
	"log/slog"

	"github.com/finwell/planmatch/internal/application/automatch"
	"github.com/finwell/planmatch/internal/application/budget"
	"github.com/finwell/planmatch/internal/application/templates"
	"github.com/finwell/planmatch/internal/application/transfers"
	"github.com/finwell/planmatch/internal/domain/matcher"
	"github.com/finwell/planmatch/internal/domain/rules"
	"github.com/finwell/planmatch/internal/domain/transfer"
	"github.com/finwell/planmatch/internal/infrastructure/config"
	"github.com/finwell/planmatch/internal/infrastructure/storage"
)

// Services bundles the application layer built over one store.
type Services struct {
	Repo         storage.Repository
	Orchestrator *automatch.Orchestrator
	Templates    *templates.Service
	Transfers    *transfers.Service
	Budget       *budget.Service
	RuleCache    *rules.Cache
}

// BuildServices wires the application services from config. The caller
// owns the returned repository and must Close it.
func BuildServices(cfg *config.Config, logger *slog.Logger) (*Services, error) {
	store, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, err
	}

	cache := rules.NewCache(store.ListRules)
	m := matcher.New(cfg.Matching.MatcherConfig())
	d := transfer.New(cfg.Transfers.TransferConfig())

	return &Services{
		Repo:         store,
		Orchestrator: automatch.New(store, m, cache, logger),
		Templates:    templates.New(store, logger),
		Transfers:    transfers.New(store, d, logger),
		Budget:       budget.New(store, cfg.Budget.StatusConfig(), logger),
		RuleCache:    cache,
	}, nil
}
