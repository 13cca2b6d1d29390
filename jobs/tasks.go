package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeWelcomeEmail is the task type for the post-signup email.
	TaskTypeWelcomeEmail = "mail:welcome"
	// TaskTypeSessionPrune is the task type for expiring session records.
	TaskTypeSessionPrune = "session:prune"
)

// WelcomeEmailPayload describes the information required to greet a new user.
type WelcomeEmailPayload struct {
	To   string `json:"to"`
	Name string `json:"name"`
}

// NewWelcomeEmailTask constructs an Asynq task.
func NewWelcomeEmailTask(payload WelcomeEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeWelcomeEmail, data), nil
}

// HandleWelcomeEmailTask processes TaskTypeWelcomeEmail tasks.
func HandleWelcomeEmailTask(ctx context.Context, t *asynq.Task) error {
	var payload WelcomeEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	// Placeholder: SMTP delivery lands with the notification service.
	fmt.Printf("[jobs] send welcome email to %s (%s)\n", payload.To, payload.Name)
	return nil
}

// NewSessionPruneTask constructs the session cleanup task.
func NewSessionPruneTask() *asynq.Task {
	return asynq.NewTask(TaskTypeSessionPrune, nil)
}
