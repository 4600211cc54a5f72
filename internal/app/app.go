package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/odyssey-group/internal/accounts"
	"github.com/odyssey-erp/odyssey-group/internal/companies"
	"github.com/odyssey-erp/odyssey-group/internal/consol"
	"github.com/odyssey-erp/odyssey-group/internal/elimination"
	jobmetrics "github.com/odyssey-erp/odyssey-group/internal/jobs"
	"github.com/odyssey-erp/odyssey-group/internal/observability"
	"github.com/odyssey-erp/odyssey-group/internal/seed"
	"github.com/odyssey-erp/odyssey-group/internal/shared"
	"github.com/odyssey-erp/odyssey-group/internal/store"
	"github.com/odyssey-erp/odyssey-group/jobs"
)

// App owns the store and every service built on it. One App is one isolated
// entity store; tests create as many as they need.
type App struct {
	Config  *Config
	Logger  *slog.Logger
	Store   *store.Store
	Redis   *redis.Client
	Metrics *observability.Metrics

	Companies    *companies.Service
	Accounts     *accounts.Service
	Eliminations *elimination.Service
	Consol       *consol.Service
	Idempotency  *shared.IdempotencyStore
	Refresh      *jobs.ConsolidateRefreshJob
}

// New wires the services. redisClient may be nil, in which case reports are
// rebuilt on every request and idempotency keys live in process memory.
func New(cfg *Config, logger *slog.Logger, redisClient *redis.Client) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: config required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	metrics := observability.NewMetrics()
	if err := consol.SetupCacheMetrics(metrics.Registerer()); err != nil {
		return nil, err
	}
	jobMetrics := jobmetrics.NewMetrics(metrics.Registerer())

	st := store.New()
	if err := metrics.WatchEntities(func(ctx context.Context) (map[string]int, error) {
		stats, err := st.Stats(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]int{
			"companies":    stats.Companies,
			"accounts":     stats.Accounts,
			"eliminations": stats.Eliminations,
			"records":      stats.Records,
		}, nil
	}); err != nil {
		return nil, err
	}
	cache := consol.NewCache(redisClient, cfg.CacheTTL)

	a := &App{
		Config:      cfg,
		Logger:      logger,
		Store:       st,
		Redis:       redisClient,
		Metrics:     metrics,
		Idempotency: shared.NewIdempotencyStore(redisClient, cfg.IdempotencyTTL),
	}
	a.Companies = companies.NewService(st.Companies(), cache, logger)
	a.Accounts = accounts.NewService(st.Accounts(), st, cache, logger)
	a.Eliminations = elimination.NewService(st.Eliminations(), cache, logger)
	a.Consol = consol.NewService(st, cache, logger)
	a.Refresh = jobs.NewConsolidateRefreshJob(a.Consol, a.Consol, logger, jobMetrics)
	return a, nil
}

// Seed loads the demo group into the store.
func (a *App) Seed(ctx context.Context) (seed.Result, error) {
	res, err := seed.Demo(ctx, seed.Services{
		Companies:    a.Companies,
		Accounts:     a.Accounts,
		Eliminations: a.Eliminations,
		Records:      a.Store.MasterData(),
		Lookup:       a.Store,
	})
	if err != nil {
		return seed.Result{}, err
	}
	stats, err := a.Store.Stats(ctx)
	if err == nil {
		a.Logger.Info("demo data seeded",
			slog.Int("companies", stats.Companies),
			slog.Int("accounts", stats.Accounts),
			slog.Int("eliminations", stats.Eliminations),
			slog.Int("records", stats.Records))
	}
	return res, nil
}
