package jobs

import (
	"encoding/json"
	"strconv"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskConsolidateRefresh rebuilds and caches consolidated reports.
	TaskConsolidateRefresh = "consol:refresh"
)

// taskNamespace scopes deterministic task ids to this service.
var taskNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://odyssey-group/jobs"))

// ConsolidateRefreshPayload configures the scope of the consolidation refresh job.
type ConsolidateRefreshPayload struct {
	GroupID string `json:"group_id"`
	Period  string `json:"period"`
	Force   bool   `json:"force,omitempty"`
}

// NewConsolidateRefreshTask creates a refresh task. groupID is a holding id or
// "all"; period is YYYY-MM or "active". Equal payloads share a task id, so a
// refresh that is still queued is not enqueued twice.
func NewConsolidateRefreshTask(groupID, period string, force bool) (*asynq.Task, error) {
	if groupID == "" {
		groupID = allGroups
	}
	if period == "" {
		period = activePeriod
	}
	payload := ConsolidateRefreshPayload{GroupID: groupID, Period: period, Force: force}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskConsolidateRefresh, body, asynq.Queue(QueueDefault), asynq.TaskID(taskID(groupID, period, force))), nil
}

func taskID(groupID, period string, force bool) string {
	name := TaskConsolidateRefresh + ":" + groupID + ":" + period + ":" + strconv.FormatBool(force)
	return uuid.NewSHA1(taskNamespace, []byte(name)).String()
}
