package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/dashboard"
	jobmetrics "github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// DashboardRefresher recomputes the dashboard snapshot.
type DashboardRefresher interface {
	Refresh(ctx context.Context) (dashboard.Snapshot, error)
}

// KeyCleaner removes stale idempotency keys.
type KeyCleaner interface {
	Cleanup(ctx context.Context, olderThan time.Duration) (int64, error)
}

// HSNWarmer pre-loads HSN lookups.
type HSNWarmer interface {
	WarmHSN(ctx context.Context, limit int) (int, error)
}

// Jobs bundles the task handlers and their collaborators.
type Jobs struct {
	Dashboard DashboardRefresher
	Keys      KeyCleaner
	HSN       HSNWarmer
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
}

// Handlers returns the asynq registrations for the configured collaborators.
func (j *Jobs) Handlers() []TaskHandler {
	var out []TaskHandler
	if j.Dashboard != nil {
		out = append(out, TaskHandler{Type: TaskDashboardRefresh, Handler: j.HandleDashboardRefresh})
	}
	if j.Keys != nil {
		out = append(out, TaskHandler{Type: TaskIdempotencyCleanup, Handler: j.HandleIdempotencyCleanup})
	}
	if j.HSN != nil {
		out = append(out, TaskHandler{Type: TaskHSNWarm, Handler: j.HandleHSNWarm})
	}
	return out
}

// HandleDashboardRefresh processes TaskDashboardRefresh tasks.
func (j *Jobs) HandleDashboardRefresh(ctx context.Context, _ *asynq.Task) (err error) {
	if j == nil || j.Dashboard == nil {
		return errors.New("dashboard refresh: handler not configured")
	}
	tracker := j.metrics().Track(TaskDashboardRefresh)
	defer func() { err = tracker.End(err) }()

	snap, err := j.Dashboard.Refresh(ctx)
	if err != nil {
		j.logger(TaskDashboardRefresh).Error("refresh dashboard", slog.Any("error", err))
		return err
	}
	j.logger(TaskDashboardRefresh).Info("dashboard refreshed",
		slog.String("net_profit", snap.NetProfit.StringFixed(2)),
		slog.Time("generated_at", snap.GeneratedAt))
	return nil
}

// HandleIdempotencyCleanup processes TaskIdempotencyCleanup tasks.
func (j *Jobs) HandleIdempotencyCleanup(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Keys == nil {
		return errors.New("idempotency cleanup: handler not configured")
	}
	var payload IdempotencyCleanupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	retention := DefaultIdempotencyRetention
	if payload.OlderThanHours > 0 {
		retention = time.Duration(payload.OlderThanHours) * time.Hour
	}

	tracker := j.metrics().Track(TaskIdempotencyCleanup)
	defer func() { err = tracker.End(err) }()

	removed, err := j.Keys.Cleanup(ctx, retention)
	if err != nil {
		j.logger(TaskIdempotencyCleanup).Error("cleanup idempotency keys", slog.Any("error", err))
		return err
	}
	j.metrics().AddProcessed(TaskIdempotencyCleanup, int(removed))
	j.logger(TaskIdempotencyCleanup).Info("idempotency keys purged", slog.Int64("removed", removed), slog.Duration("retention", retention))
	return nil
}

// HandleHSNWarm processes TaskHSNWarm tasks.
func (j *Jobs) HandleHSNWarm(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.HSN == nil {
		return errors.New("hsn warm: handler not configured")
	}
	var payload HSNWarmPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	if payload.Limit <= 0 {
		payload.Limit = DefaultHSNWarmLimit
	}

	tracker := j.metrics().Track(TaskHSNWarm)
	defer func() { err = tracker.End(err) }()

	warmed, err := j.HSN.WarmHSN(ctx, payload.Limit)
	j.metrics().AddProcessed(TaskHSNWarm, warmed)
	if err != nil {
		j.logger(TaskHSNWarm).Error("warm hsn cache", slog.Int("warmed", warmed), slog.Any("error", err))
		return err
	}
	j.logger(TaskHSNWarm).Info("hsn cache warmed", slog.Int("codes", warmed))
	return nil
}

func (j *Jobs) logger(task string) *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", task))
	}
	return slog.Default().With(slog.String("job", task))
}

func (j *Jobs) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
