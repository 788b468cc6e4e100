package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backoffice/config"
	"backoffice/models"
	"backoffice/services/notification"
	"backoffice/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// notificationCreator is the part of the notification service the worker uses.
type notificationCreator interface {
	Create(ctx context.Context, draft models.NotificationDraft) (*models.Notification, error)
}

func queueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// NewQueueClient returns the producer side of the notification queue.
func NewQueueClient() *asynq.Client {
	return asynq.NewClient(queueRedisOpt())
}

// InitNotificationWorker starts the delivery worker in the background and
// returns the server so the caller can shut it down.
func InitNotificationWorker(ctx context.Context, svc notificationCreator, logger *zap.Logger) *asynq.Server {
	srv := asynq.NewServer(
		queueRedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"notifications": 6,
				"default":       1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeDeliverNotification, handleDeliverTask(svc, logger))

	go monitorRedisConnection(ctx, logger)

	go func() {
		logger.Info("starting notification worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Start(mux)
			if err == nil {
				return
			}
			logger.Error("failed to start notification worker",
				zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Error("notification worker gave up, scheduled deliveries will queue up")
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(attempts*2) * time.Second):
			}
		}
	}()
	return srv
}

func handleDeliverTask(svc notificationCreator, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		draft, err := tasks.ParseDeliverNotificationTask(task)
		if err != nil {
			logger.Error("invalid delivery payload", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}

		n, err := svc.Create(ctx, draft)
		if errors.Is(err, notification.ErrInvalidDraft) {
			logger.Warn("dropping invalid notification draft", zap.String("title", draft.Title), zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		if err != nil {
			logger.Error("failed to deliver notification", zap.String("title", draft.Title), zap.Error(err))
			return err
		}

		logger.Info("notification delivered", zap.String("id", n.ID), zap.String("type", string(n.Type)))
		return nil
	}
}

// monitorRedisConnection pings the queue database periodically to detect
// failures at runtime.
func monitorRedisConnection(ctx context.Context, logger *zap.Logger) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer client.Close()

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.Ping(ctx).Err(); err != nil {
				logger.Warn("queue redis connection lost", zap.Error(err))
			}
		}
	}
}
