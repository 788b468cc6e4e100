package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	notificationRepo "backoffice/database/repository/notification"
	"backoffice/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultListLimit bounds the notification feed returned by List.
const DefaultListLimit = 100

// NotificationService serves the console notification feed.
type NotificationService interface {
	List(ctx context.Context, limit int) ([]models.Notification, error)
	UnreadCount(ctx context.Context) (int, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	Delete(ctx context.Context, id string) error
	// Create stores a notification, publishes it to live subscribers and
	// pushes it to admin devices.
	Create(ctx context.Context, draft models.NotificationDraft) (*models.Notification, error)
	// Subscribe streams notifications created from now on. The returned
	// function ends the subscription and closes the channel.
	Subscribe(ctx context.Context) (<-chan models.Notification, func(), error)
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	repo   notificationRepo.NotificationRepository
	hub    Hub
	pusher Pusher
	now    func() time.Time
	logger *zap.Logger
}

// NewDefaultNotificationService wires the repository, the live hub and an
// optional device pusher.
func NewDefaultNotificationService(
	repo notificationRepo.NotificationRepository,
	hub Hub,
	pusher Pusher,
	logger *zap.Logger,
) (*DefaultNotificationService, error) {
	if repo == nil || hub == nil {
		return nil, fmt.Errorf("notification service initialization error: repository or hub is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultNotificationService{
		repo:   repo,
		hub:    hub,
		pusher: pusher,
		now:    time.Now,
		logger: logger,
	}, nil
}

func (s *DefaultNotificationService) List(ctx context.Context, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > DefaultListLimit {
		limit = DefaultListLimit
	}
	return s.repo.List(ctx, limit)
}

func (s *DefaultNotificationService) UnreadCount(ctx context.Context) (int, error) {
	return s.repo.UnreadCount(ctx)
}

func (s *DefaultNotificationService) MarkRead(ctx context.Context, id string) error {
	return s.repo.MarkRead(ctx, id)
}

func (s *DefaultNotificationService) MarkAllRead(ctx context.Context) error {
	n, err := s.repo.MarkAllRead(ctx)
	if err != nil {
		return err
	}
	s.logger.Debug("notifications marked read", zap.Int64("count", n))
	return nil
}

func (s *DefaultNotificationService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Create persists the draft first. Live delivery and device pushes are best
// effort: their failures are logged and do not fail the call.
func (s *DefaultNotificationService) Create(ctx context.Context, draft models.NotificationDraft) (*models.Notification, error) {
	if !validType(draft.Type) {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidDraft, draft.Type)
	}
	if strings.TrimSpace(draft.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidDraft)
	}

	n := models.Notification{
		ID:        uuid.NewString(),
		Type:      draft.Type,
		Title:     draft.Title,
		Message:   draft.Message,
		Timestamp: s.now().UTC(),
		Metadata:  draft.Metadata,
	}
	if err := s.repo.Insert(ctx, n); err != nil {
		return nil, err
	}

	if err := s.hub.Publish(ctx, n); err != nil {
		s.logger.Warn("failed to publish notification", zap.String("id", n.ID), zap.Error(err))
	}
	if s.pusher != nil {
		if err := s.pusher.Push(ctx, n); err != nil {
			s.logger.Warn("failed to push notification to devices", zap.String("id", n.ID), zap.Error(err))
		}
	}

	s.logger.Info("notification created", zap.String("id", n.ID), zap.String("type", string(n.Type)))
	return &n, nil
}

func (s *DefaultNotificationService) Subscribe(ctx context.Context) (<-chan models.Notification, func(), error) {
	return s.hub.Subscribe(ctx)
}

func validType(t models.NotificationType) bool {
	switch t {
	case models.NotificationInfo, models.NotificationSuccess, models.NotificationWarning,
		models.NotificationError, models.NotificationPayment, models.NotificationSubscription,
		models.NotificationToken, models.NotificationCustomer:
		return true
	}
	return false
}
