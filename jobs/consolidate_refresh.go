package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-group/internal/consol"
	jobmetrics "github.com/odyssey-erp/odyssey-group/internal/jobs"
	"github.com/odyssey-erp/odyssey-group/internal/shared"
)

const (
	allGroups    = "all"
	activePeriod = "active"
)

// ReportWarmer builds, and caches, consolidated reports.
type ReportWarmer interface {
	Report(ctx context.Context, f consol.Filters) (consol.Report, error)
	Invalidate(ctx context.Context) error
}

// GroupSource discovers what a refresh should cover when the payload leaves
// it open.
type GroupSource interface {
	ListGroupIDs(ctx context.Context) ([]int64, error)
	ActiveConsolidationPeriod(ctx context.Context) (string, error)
}

// RefreshScope is a parsed refresh request. A zero GroupID means every
// holding; an empty Period means the active one.
type RefreshScope struct {
	GroupID int64
	Period  string
}

// ParseRefreshScope checks the group and period a refresh was asked for.
// group is a holding id or "all"; period is YYYY-MM or "active".
func ParseRefreshScope(group, period string) (RefreshScope, error) {
	var scope RefreshScope
	if group != "" && group != allGroups {
		id, err := strconv.ParseInt(group, 10, 64)
		if err != nil || id <= 0 {
			return scope, fmt.Errorf("consolidate refresh: invalid group %q", group)
		}
		scope.GroupID = id
	}
	if period != "" && period != activePeriod {
		normalized, err := shared.NormalizePeriod(period)
		if err != nil {
			return scope, fmt.Errorf("consolidate refresh: %w", err)
		}
		scope.Period = normalized
	}
	return scope, nil
}

// GroupRefresh is the outcome for one holding.
type GroupRefresh struct {
	GroupID  int64
	Members  int
	Warnings []string
	Err      error
}

// RefreshSummary describes one refresh run.
type RefreshSummary struct {
	Period string
	Groups []GroupRefresh
}

// Warnings counts report warnings across groups.
func (s RefreshSummary) Warnings() int {
	n := 0
	for _, g := range s.Groups {
		n += len(g.Warnings)
	}
	return n
}

// Failed lists the groups whose report could not be built.
func (s RefreshSummary) Failed() []int64 {
	var ids []int64
	for _, g := range s.Groups {
		if g.Err != nil {
			ids = append(ids, g.GroupID)
		}
	}
	return ids
}

// ConsolidateRefreshJob warms the report cache for every requested group.
type ConsolidateRefreshJob struct {
	warmer  ReportWarmer
	groups  GroupSource
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
	now     func() time.Time
}

// NewConsolidateRefreshJob constructs the job handler.
func NewConsolidateRefreshJob(warmer ReportWarmer, groups GroupSource, logger *slog.Logger, metrics *jobmetrics.Metrics) *ConsolidateRefreshJob {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = jobmetrics.NewMetrics(nil)
	}
	return &ConsolidateRefreshJob{
		warmer:  warmer,
		groups:  groups,
		logger:  logger.With(slog.String("job", TaskConsolidateRefresh)),
		metrics: metrics,
		now:     time.Now,
	}
}

// WithClock overrides the clock used for run durations.
func (j *ConsolidateRefreshJob) WithClock(clock func() time.Time) {
	if clock != nil {
		j.now = clock
	}
}

// Handle is the asynq entry point. Payloads that cannot be decoded or parsed
// are not retried.
func (j *ConsolidateRefreshJob) Handle(ctx context.Context, task *asynq.Task) error {
	var payload ConsolidateRefreshPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("consolidate refresh: decode payload: %w", asynq.SkipRetry)
	}
	if _, err := ParseRefreshScope(payload.GroupID, payload.Period); err != nil {
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	_, err := j.Run(ctx, payload)
	return err
}

// Run performs a refresh synchronously. Every group is attempted; the
// returned error joins the per-group failures.
func (j *ConsolidateRefreshJob) Run(ctx context.Context, payload ConsolidateRefreshPayload) (summary RefreshSummary, err error) {
	if j.warmer == nil || j.groups == nil {
		return summary, errors.New("consolidate refresh: dependencies not configured")
	}
	scope, err := ParseRefreshScope(payload.GroupID, payload.Period)
	if err != nil {
		return summary, err
	}

	tracker := j.metrics.Track(TaskConsolidateRefresh)
	defer func() {
		err = tracker.End(err)
	}()

	if scope.Period == "" {
		if scope.Period, err = j.groups.ActiveConsolidationPeriod(ctx); err != nil {
			j.logger.Error("resolve active period", slog.Any("error", err))
			return summary, err
		}
	}
	summary.Period = scope.Period

	groupIDs := []int64{scope.GroupID}
	if scope.GroupID == 0 {
		if groupIDs, err = j.groups.ListGroupIDs(ctx); err != nil {
			j.logger.Error("list groups", slog.Any("error", err))
			return summary, err
		}
	}
	if len(groupIDs) == 0 {
		j.logger.Info("no consolidation groups to refresh", slog.String("period", scope.Period))
		return summary, nil
	}

	if payload.Force {
		if err := j.warmer.Invalidate(ctx); err != nil {
			j.logger.Warn("invalidate report cache", slog.Any("error", err))
		}
	}

	start := j.now()
	var failures []error
	for _, groupID := range groupIDs {
		outcome := j.warm(ctx, groupID, scope.Period)
		if outcome.Err != nil {
			failures = append(failures, outcome.Err)
		}
		summary.Groups = append(summary.Groups, outcome)
	}
	j.metrics.ObserveRefresh(scope.Period, len(summary.Groups)-len(failures), len(failures), summary.Warnings())

	j.logger.Info("refreshed consolidated reports",
		slog.String("period", scope.Period),
		slog.Int("groups", len(summary.Groups)),
		slog.Int("failed", len(failures)),
		slog.Int("warnings", summary.Warnings()),
		slog.Duration("duration", j.now().Sub(start)))
	return summary, errors.Join(failures...)
}

func (j *ConsolidateRefreshJob) warm(ctx context.Context, groupID int64, period string) GroupRefresh {
	outcome := GroupRefresh{GroupID: groupID}
	report, err := j.warmer.Report(ctx, consol.Filters{Period: period, GroupID: groupID})
	if err != nil {
		j.logger.Error("warm consolidated report", slog.Int64("group_id", groupID), slog.String("period", period), slog.Any("error", err))
		outcome.Err = fmt.Errorf("group %d: %w", groupID, err)
		return outcome
	}
	outcome.Members = len(report.Members)
	outcome.Warnings = report.Warnings
	return outcome
}
