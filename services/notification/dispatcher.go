package notification

import (
	"context"
	"time"

	"slotbook/models"
	"slotbook/services/tasks"
	"slotbook/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// DirectDispatcher sends inline, bounded by Timeout. The request context
// is detached so a client hanging up does not cut the send short.
type DirectDispatcher struct {
	Sender  Sender
	Timeout time.Duration
	Logger  *zap.Logger
}

func NewDirectDispatcher(sender Sender, timeout time.Duration) *DirectDispatcher {
	return &DirectDispatcher{Sender: sender, Timeout: timeout}
}

func (d *DirectDispatcher) logger() *zap.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return utils.GetLogger()
}

func (d *DirectDispatcher) Dispatch(ctx context.Context, n models.Notification) {
	ctx = context.WithoutCancel(ctx)
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}
	if err := d.Sender.Send(ctx, n); err != nil {
		d.logger().Warn("Notification not delivered",
			zap.String("notificationID", n.ID),
			zap.String("kind", string(n.Kind)),
			zap.String("recipient", n.Recipient),
			zap.Error(err),
		)
	}
}

// Enqueuer is the part of *asynq.Client the queue dispatcher needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueDispatcher hands notifications to the asynq worker, which retries
// failed sends on its own.
type QueueDispatcher struct {
	Client Enqueuer
	Logger *zap.Logger
}

func NewQueueDispatcher(client Enqueuer) *QueueDispatcher {
	return &QueueDispatcher{Client: client}
}

func (d *QueueDispatcher) logger() *zap.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return utils.GetLogger()
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, n models.Notification) {
	task, opts, err := tasks.NewNotificationTask(n)
	if err != nil {
		d.logger().Error("Failed to build notification task", zap.String("notificationID", n.ID), zap.Error(err))
		return
	}
	info, err := d.Client.EnqueueContext(context.WithoutCancel(ctx), task, opts...)
	if err != nil {
		d.logger().Error("Failed to enqueue notification",
			zap.String("notificationID", n.ID),
			zap.String("recipient", n.Recipient),
			zap.Error(err),
		)
		return
	}
	d.logger().Debug("Notification queued", zap.String("taskID", info.ID), zap.String("queue", info.Queue))
}
