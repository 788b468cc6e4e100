package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"backoffice/models"

	"github.com/hibiken/asynq"
)

const (
	TypeDeliverNotification = "notification:deliver"
	notificationQueue       = "notifications"
	maxDeliveryRetries      = 5
)

// NewDeliverNotificationTask builds the delivery task for draft. Drafts with a
// DeliverAt are held until then.
func NewDeliverNotificationTask(draft models.NotificationDraft) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(draft)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeDeliverNotification, b)
	opts := []asynq.Option{asynq.Queue(notificationQueue), asynq.MaxRetry(maxDeliveryRetries)}
	if !draft.DeliverAt.IsZero() {
		opts = append(opts, asynq.ProcessAt(draft.DeliverAt))
	}
	return task, opts, nil
}

// ParseDeliverNotificationTask decodes the draft carried by a delivery task.
func ParseDeliverNotificationTask(task *asynq.Task) (models.NotificationDraft, error) {
	var draft models.NotificationDraft
	if err := json.Unmarshal(task.Payload(), &draft); err != nil {
		return draft, fmt.Errorf("invalid %s payload: %w", TypeDeliverNotification, err)
	}
	return draft, nil
}

// Enqueuer schedules notification deliveries.
type Enqueuer interface {
	EnqueueNotification(ctx context.Context, draft models.NotificationDraft) (string, error)
}

type taskClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AsynqEnqueuer puts deliveries on the asynq notification queue.
type AsynqEnqueuer struct {
	client taskClient
}

func NewAsynqEnqueuer(client *asynq.Client) *AsynqEnqueuer {
	return &AsynqEnqueuer{client: client}
}

// EnqueueNotification returns the id of the queued task.
func (e *AsynqEnqueuer) EnqueueNotification(ctx context.Context, draft models.NotificationDraft) (string, error) {
	task, opts, err := NewDeliverNotificationTask(draft)
	if err != nil {
		return "", err
	}
	info, err := e.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue notification: %w", err)
	}
	return info.ID, nil
}
