package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/white-jotter/white-jotter/internal/auth"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSessionPurge is the task type for purging expired session records.
	TaskSessionPurge = "sessions:purge"
)

// SessionPurgePayload carries the purge cutoff. A zero Before means "now".
type SessionPurgePayload struct {
	Before time.Time `json:"before"`
}

// NewSessionPurgeTask constructs an Asynq task.
func NewSessionPurgeTask(payload SessionPurgePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSessionPurge, data), nil
}

// NewSessionPurgeHandler builds the handler for TaskSessionPurge tasks.
// Expired session audit rows accumulate between logins; the worker sweeps
// them so the table tracks only live sessions.
func NewSessionPurgeHandler(repo auth.Repository, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload SessionPurgePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		before := payload.Before
		if before.IsZero() {
			before = time.Now()
		}
		purged, err := repo.DeleteExpiredSessions(ctx, before)
		if err != nil {
			return err
		}
		if logger != nil {
			logger.Info("purged expired sessions", slog.Int64("count", purged))
		}
		return nil
	}
}
