package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/em-sphere/emsphere/internal/jobs"
)

// SessionPruneJob removes expired session records from the audit table. The
// Redis copies expire on their own; this keeps the Postgres registry in step.
type SessionPruneJob struct {
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewSessionPruneJob constructs the job.
func NewSessionPruneJob(pool *pgxpool.Pool, logger *slog.Logger) *SessionPruneJob {
	return &SessionPruneJob{pool: pool, logger: logger, metrics: jobmetrics.NewMetrics(nil)}
}

// Handle processes TaskTypeSessionPrune tasks.
func (j *SessionPruneJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track("session_prune")
	tag, err := j.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < NOW()`)
	if err != nil {
		return tracker.End(err)
	}
	if j.logger != nil {
		j.logger.Info("session prune", slog.Int64("removed", tag.RowsAffected()))
	}
	return tracker.End(nil)
}
