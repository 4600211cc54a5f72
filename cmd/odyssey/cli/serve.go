package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/odyssey-group/internal/app"
	"github.com/odyssey-erp/odyssey-group/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-group/jobs"
)

func newServeCommand() *cobra.Command {
	var seedDemo bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, and the job worker when JOBS_ENABLED is set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, seedDemo)
		},
	}

	cmd.Flags().BoolVar(&seedDemo, "seed-demo", false, "load the demo company group on start (same as SEED_DEMO=true)")

	return cmd
}

func runServe(ctx context.Context, seedDemo bool) error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}
	logger := app.NewLogger(cfg)

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			return err
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	application, err := app.New(cfg, logger, redisClient)
	if err != nil {
		return err
	}
	if cfg.SeedDemo || seedDemo {
		if _, err := application.Seed(ctx); err != nil {
			return err
		}
	}

	var (
		inspector jobs.QueueInspector
		worker    *jobs.Worker
	)
	if cfg.JobsEnabled {
		redisOpts, err := cache.QueueOptions(cfg.RedisAddr)
		if err != nil {
			return err
		}
		asynqInspector := asynq.NewInspector(redisOpts)
		defer func() {
			if err := asynqInspector.Close(); err != nil {
				logger.Warn("inspector close", slog.Any("error", err))
			}
		}()
		inspector = asynqInspector

		worker, err = newWorker(cfg, logger, redisOpts, application.Refresh)
		if err != nil {
			return err
		}
	}

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      application.NewRouter(inspector),
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if worker != nil {
		g.Go(func() error {
			logger.Info("starting job worker", slog.Int("concurrency", cfg.JobsConcurrency))
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newWorker(cfg *app.Config, logger *slog.Logger, redisOpts asynq.RedisClientOpt, refresh *jobs.ConsolidateRefreshJob) (*jobs.Worker, error) {
	return jobs.NewWorker(jobs.WorkerConfig{
		Redis:       redisOpts,
		Logger:      logger,
		Concurrency: cfg.JobsConcurrency,
		Refresh:     refresh,
		RefreshCron: cfg.ConsolRefreshCron,
	})
}
