package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

const (
	refreshMaxRetry = 3
	refreshTimeout  = 2 * time.Minute
)

func refreshOptions() []asynq.Option {
	return []asynq.Option{asynq.Queue(QueueDefault), asynq.MaxRetry(refreshMaxRetry), asynq.Timeout(refreshTimeout)}
}

// retryDelay backs off linearly, 30s per attempt, capped at five minutes.
func retryDelay(attempt int, _ error, _ *asynq.Task) time.Duration {
	d := time.Duration(attempt+1) * 30 * time.Second
	if d > 5*time.Minute {
		return 5 * time.Minute
	}
	return d
}

// WorkerConfig configures the background worker.
type WorkerConfig struct {
	Redis       asynq.RedisClientOpt
	Logger      *slog.Logger
	Concurrency int
	Refresh     *ConsolidateRefreshJob
	// RefreshCron schedules a refresh of every group for the active period.
	// Empty disables the schedule.
	RefreshCron string
}

// Worker processes queued refreshes and runs the refresh schedule.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
	logger    *slog.Logger
}

// NewWorker builds the worker. An invalid cron expression is an error.
func NewWorker(cfg WorkerConfig) (*Worker, error) {
	if cfg.Refresh == nil {
		return nil, errors.New("worker: refresh job not configured")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 5
	}

	w := &Worker{logger: logger}
	w.server = asynq.NewServer(cfg.Redis, asynq.Config{
		Concurrency:     concurrency,
		Queues:          map[string]int{QueueDefault: 1},
		RetryDelayFunc:  retryDelay,
		ShutdownTimeout: 10 * time.Second,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			logger.Error("task failed", slog.String("type", task.Type()), slog.Int("retried", retried), slog.Any("error", err))
		}),
	})
	w.mux = asynq.NewServeMux()
	w.mux.Use(w.logTask)
	w.mux.HandleFunc(TaskConsolidateRefresh, cfg.Refresh.Handle)

	if cfg.RefreshCron != "" {
		task, err := NewConsolidateRefreshTask(allGroups, activePeriod, false)
		if err != nil {
			return nil, err
		}
		w.scheduler = asynq.NewScheduler(cfg.Redis, &asynq.SchedulerOpts{Location: time.UTC})
		if _, err := w.scheduler.Register(cfg.RefreshCron, task, refreshOptions()...); err != nil {
			return nil, fmt.Errorf("worker: refresh schedule %q: %w", cfg.RefreshCron, err)
		}
	}
	return w, nil
}

func (w *Worker) logTask(next asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, task *asynq.Task) error {
		id, _ := asynq.GetTaskID(ctx)
		start := time.Now()
		err := next.ProcessTask(ctx, task)
		w.logger.Debug("task processed",
			slog.String("type", task.Type()),
			slog.String("task_id", id),
			slog.Duration("duration", time.Since(start)),
			slog.Bool("ok", err == nil))
		return err
	})
}

// Run processes tasks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if w.scheduler != nil {
		if err := w.scheduler.Start(); err != nil {
			return fmt.Errorf("worker: start scheduler: %w", err)
		}
		defer w.scheduler.Shutdown()
	}
	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("worker: start server: %w", err)
	}
	<-ctx.Done()
	w.server.Shutdown()
	return ctx.Err()
}

// Client enqueues refreshes from outside the worker.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an asynq client.
func NewClient(redis asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redis)}
}

// EnqueueConsolidateRefresh enqueues a refresh. An identical refresh that is
// still pending is reported as a duplicate rather than as an error.
func (c *Client) EnqueueConsolidateRefresh(ctx context.Context, groupID, period string, force bool) (info *asynq.TaskInfo, duplicate bool, err error) {
	task, err := NewConsolidateRefreshTask(groupID, period, force)
	if err != nil {
		return nil, false, err
	}
	info, err = c.client.EnqueueContext(ctx, task, refreshOptions()...)
	switch {
	case errors.Is(err, asynq.ErrTaskIDConflict):
		return nil, true, nil
	case err != nil:
		return nil, false, err
	}
	return info, false, nil
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
