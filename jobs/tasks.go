package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"

	// TaskDashboardRefresh recomputes and caches the dashboard snapshot.
	TaskDashboardRefresh = "dashboard:refresh"
	// TaskIdempotencyCleanup purges expired idempotency keys.
	TaskIdempotencyCleanup = "idempotency:cleanup"
	// TaskHSNWarm pre-loads the HSN cache for catalogue codes.
	TaskHSNWarm = "hsn:warm"
)

// IdempotencyCleanupPayload bounds the age of keys kept.
type IdempotencyCleanupPayload struct {
	OlderThanHours int `json:"older_than_hours"`
}

// HSNWarmPayload bounds how many codes are warmed per run.
type HSNWarmPayload struct {
	Limit int `json:"limit"`
}

// Defaults applied when payload fields are zero.
const (
	DefaultIdempotencyRetention = 72 * time.Hour
	DefaultHSNWarmLimit         = 200
)

// NewDashboardRefreshTask constructs a dashboard refresh task.
func NewDashboardRefreshTask() *asynq.Task {
	return asynq.NewTask(TaskDashboardRefresh, nil)
}

// NewIdempotencyCleanupTask constructs a cleanup task.
func NewIdempotencyCleanupTask(olderThan time.Duration) (*asynq.Task, error) {
	data, err := json.Marshal(IdempotencyCleanupPayload{OlderThanHours: int(olderThan / time.Hour)})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdempotencyCleanup, data), nil
}

// NewHSNWarmTask constructs an HSN warm task.
func NewHSNWarmTask(limit int) (*asynq.Task, error) {
	data, err := json.Marshal(HSNWarmPayload{Limit: limit})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskHSNWarm, data), nil
}

// NewTask builds a task by type name using default payloads.
func NewTask(taskType string) (*asynq.Task, error) {
	switch taskType {
	case TaskDashboardRefresh:
		return NewDashboardRefreshTask(), nil
	case TaskIdempotencyCleanup:
		return NewIdempotencyCleanupTask(DefaultIdempotencyRetention)
	case TaskHSNWarm:
		return NewHSNWarmTask(DefaultHSNWarmLimit)
	}
	return nil, &UnknownTaskError{Type: taskType}
}

// UnknownTaskError reports an unsupported task type.
type UnknownTaskError struct {
	Type string
}

func (e *UnknownTaskError) Error() string {
	return "jobs: unknown task type " + e.Type
}

// TaskTypes lists the task types the worker handles.
func TaskTypes() []string {
	return []string{TaskDashboardRefresh, TaskIdempotencyCleanup, TaskHSNWarm}
}
