package cron

import (
	"context"
	"errors"
	"testing"

	"backoffice/models"
	"backoffice/services/notification"
	"backoffice/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

type stubCreator struct {
	drafts []models.NotificationDraft
	err    error
}

func (s *stubCreator) Create(_ context.Context, draft models.NotificationDraft) (*models.Notification, error) {
	s.drafts = append(s.drafts, draft)
	if s.err != nil {
		return nil, s.err
	}
	return &models.Notification{ID: "n1", Type: draft.Type, Title: draft.Title}, nil
}

func TestHandleDeliverTask(t *testing.T) {
	svc := &stubCreator{}
	handler := handleDeliverTask(svc, zap.NewNop())

	task, _, err := tasks.NewDeliverNotificationTask(models.NotificationDraft{Type: models.NotificationInfo, Title: "hello"})
	if err != nil {
		t.Fatalf("NewDeliverNotificationTask: %v", err)
	}
	if err := handler.ProcessTask(context.Background(), task); err != nil {
		t.Fatalf("ProcessTask: %v", err)
	}
	if len(svc.drafts) != 1 || svc.drafts[0].Title != "hello" {
		t.Errorf("drafts = %+v", svc.drafts)
	}
}

func TestHandleDeliverTaskSkipsRetryForBadInput(t *testing.T) {
	handler := handleDeliverTask(&stubCreator{}, zap.NewNop())
	bad := asynq.NewTask(tasks.TypeDeliverNotification, []byte("{not json"))
	if err := handler.ProcessTask(context.Background(), bad); !errors.Is(err, asynq.SkipRetry) {
		t.Errorf("malformed payload should skip retries, got %v", err)
	}

	invalid := &stubCreator{err: notification.ErrInvalidDraft}
	task, _, _ := tasks.NewDeliverNotificationTask(models.NotificationDraft{Type: "promo"})
	if err := handleDeliverTask(invalid, zap.NewNop()).ProcessTask(context.Background(), task); !errors.Is(err, asynq.SkipRetry) {
		t.Errorf("invalid draft should skip retries, got %v", err)
	}
}

func TestHandleDeliverTaskRetriesStoreFailures(t *testing.T) {
	storeErr := errors.New("mongo unavailable")
	handler := handleDeliverTask(&stubCreator{err: storeErr}, zap.NewNop())
	task, _, _ := tasks.NewDeliverNotificationTask(models.NotificationDraft{Type: models.NotificationInfo, Title: "x"})

	err := handler.ProcessTask(context.Background(), task)
	if !errors.Is(err, storeErr) || errors.Is(err, asynq.SkipRetry) {
		t.Errorf("store failures should be retried, got %v", err)
	}
}
