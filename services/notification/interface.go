package notification

import (
	"context"

	"slotbook/models"
)

// Sender delivers one notification over a concrete transport.
type Sender interface {
	Send(ctx context.Context, n models.Notification) error
}

// Dispatcher hands a notification off after a state transition has
// committed. It never reports failure to the caller: delivery problems are
// logged and dropped.
type Dispatcher interface {
	Dispatch(ctx context.Context, n models.Notification)
}

// SenderFunc adapts a plain function to Sender.
type SenderFunc func(ctx context.Context, n models.Notification) error

func (f SenderFunc) Send(ctx context.Context, n models.Notification) error { return f(ctx, n) }
