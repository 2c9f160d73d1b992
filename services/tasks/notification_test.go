package tasks

import (
	"testing"
	"time"

	"slotbook/models"
)

func TestNewNotificationTask(t *testing.T) {
	n := models.Notification{
		ID:        "4f7a",
		Kind:      models.NotificationBookingCreated,
		Recipient: "42",
		Title:     "New booking",
		BookingID: 9,
		CreatedAt: time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC),
	}
	task, opts, err := NewNotificationTask(n)
	if err != nil {
		t.Fatal(err)
	}
	if task.Type() != TypeSendNotification {
		t.Fatalf("type = %s", task.Type())
	}
	if len(opts) != 2 {
		t.Fatalf("expected task id and retry options, got %d", len(opts))
	}

	got, err := ParseNotification(task)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != n.ID || got.BookingID != 9 || !got.CreatedAt.Equal(n.CreatedAt) {
		t.Fatalf("decoded %+v", got)
	}
}
