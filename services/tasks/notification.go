package tasks

import (
	"encoding/json"

	"slotbook/models"

	"github.com/hibiken/asynq"
)

const TypeSendNotification = "notification:send"

// NewNotificationTask wraps n for the worker. The notification id doubles
// as the task id so a duplicate enqueue is rejected by asynq.
func NewNotificationTask(n models.Notification) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(n)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendNotification, b)
	opts := []asynq.Option{
		asynq.TaskID(n.ID),
		asynq.MaxRetry(3),
	}

	return task, opts, nil
}

// ParseNotification decodes a task built by NewNotificationTask.
func ParseNotification(task *asynq.Task) (models.Notification, error) {
	var n models.Notification
	err := json.Unmarshal(task.Payload(), &n)
	return n, err
}
