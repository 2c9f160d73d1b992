package cron

import (
	"context"
	"fmt"

	"slotbook/config"
	"slotbook/services/notification"
	"slotbook/services/tasks"
	"slotbook/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// RedisOpt is the asynq connection for the notification queue.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// NewNotificationServer builds the asynq server and mux that deliver queued
// notifications through sender.
func NewNotificationServer(sender notification.Sender) (*asynq.Server, *asynq.ServeMux) {
	concurrency := config.AppConfig.WorkerConcurrency
	if concurrency <= 0 {
		concurrency = 10
	}
	srv := asynq.NewServer(
		RedisOpt(),
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				"default": 1,
			},
			Logger: utils.GetLogger().Sugar(),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSendNotification, HandleNotificationTask(sender))
	return srv, mux
}

// RunNotificationWorker serves the queue until ctx is done.
func RunNotificationWorker(ctx context.Context, sender notification.Sender) error {
	srv, mux := NewNotificationServer(sender)
	logger := utils.GetLogger()

	logger.Info("Starting notification worker", zap.String("redis", config.AppConfig.RedisAddr))
	if err := srv.Start(mux); err != nil {
		return fmt.Errorf("failed to start notification worker: %w", err)
	}
	<-ctx.Done()
	srv.Shutdown()
	logger.Info("Notification worker stopped")
	return nil
}

// HandleNotificationTask delivers one queued notification. A malformed
// payload is dropped without retry; a send error is returned so asynq
// retries it.
func HandleNotificationTask(sender notification.Sender) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		logger := utils.GetLogger()
		n, err := tasks.ParseNotification(task)
		if err != nil {
			logger.Error("Invalid notification payload", zap.Error(err))
			return fmt.Errorf("decode notification: %v: %w", err, asynq.SkipRetry)
		}

		if err := sender.Send(ctx, n); err != nil {
			logger.Warn("Notification send failed",
				zap.String("notificationID", n.ID),
				zap.String("recipient", n.Recipient),
				zap.Error(err),
			)
			return err
		}
		logger.Debug("Notification delivered", zap.String("notificationID", n.ID), zap.String("kind", string(n.Kind)))
		return nil
	}
}
