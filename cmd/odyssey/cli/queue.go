package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-group/internal/app"
	"github.com/odyssey-erp/odyssey-group/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-group/jobs"
)

// queueOps talks to the job queue the serve command's worker consumes.
type queueOps struct {
	client    *jobs.Client
	inspector *asynq.Inspector
}

// dialQueue connects to redisAddr, falling back to REDIS_ADDR.
func dialQueue(redisAddr string) (*queueOps, error) {
	if redisAddr == "" {
		cfg, err := app.LoadConfig()
		if err != nil {
			return nil, err
		}
		redisAddr = cfg.RedisAddr
	}
	if redisAddr == "" {
		return nil, errors.New("consol cli: no Redis address; set REDIS_ADDR or --redis")
	}
	opts, err := cache.QueueOptions(redisAddr)
	if err != nil {
		return nil, err
	}
	return &queueOps{client: jobs.NewClient(opts), inspector: asynq.NewInspector(opts)}, nil
}

func (q *queueOps) Close() error {
	return errors.Join(q.inspector.Close(), q.client.Close())
}

func (q *queueOps) refresh(ctx context.Context, group, period string, force bool) (*asynq.TaskInfo, bool, error) {
	return q.client.EnqueueConsolidateRefresh(ctx, group, period, force)
}

func (q *queueOps) stats() (*asynq.QueueInfo, error) {
	info, err := q.inspector.GetQueueInfo(jobs.QueueDefault)
	if err != nil {
		return nil, fmt.Errorf("consol cli: queue %s: %w", jobs.QueueDefault, err)
	}
	return info, nil
}

func (q *queueOps) scheduled(size int) ([]*asynq.TaskInfo, error) {
	return q.inspector.ListScheduledTasks(jobs.QueueDefault, asynq.PageSize(size), asynq.Page(1))
}

// describeTask renders a refresh task's scope; other task types print their
// type only.
func describeTask(t *asynq.TaskInfo) string {
	if t.Type != jobs.TaskConsolidateRefresh {
		return t.Type
	}
	var payload jobs.ConsolidateRefreshPayload
	if err := json.Unmarshal(t.Payload, &payload); err != nil {
		return t.Type + " (unreadable payload)"
	}
	desc := fmt.Sprintf("%s group=%s period=%s", t.Type, payload.GroupID, payload.Period)
	if payload.Force {
		desc += " force"
	}
	return desc
}
