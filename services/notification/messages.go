package notification

import (
	"fmt"
	"time"

	"slotbook/models"

	"github.com/google/uuid"
)

const displayLayout = "2006-01-02 15:04"

func newNotification(kind models.NotificationKind, recipient, title, body string, bookingID int64) models.Notification {
	return models.Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Recipient: recipient,
		Title:     title,
		Body:      body,
		BookingID: bookingID,
		CreatedAt: time.Now().UTC(),
	}
}

// NewBookingNotice tells the provider a client reserved one of their slots.
func NewBookingNotice(v models.BookingView, loc *time.Location) models.Notification {
	return newNotification(
		models.NotificationBookingCreated,
		v.Provider.ExternalID,
		"New booking",
		fmt.Sprintf("New booking #%d: %s on %s (client %s).",
			v.ID, v.Service.Name, v.Slot.Start.In(loc).Format(displayLayout), v.ClientID),
		v.ID,
	)
}

// ClientCancelNotice tells the provider a client cancelled.
func ClientCancelNotice(v models.BookingView, loc *time.Location) models.Notification {
	return newNotification(
		models.NotificationCancelledByClient,
		v.Provider.ExternalID,
		"Booking cancelled",
		fmt.Sprintf("Booking #%d for %s on %s was cancelled by the client. The slot is open again.",
			v.ID, v.Service.Name, v.Slot.Start.In(loc).Format(displayLayout)),
		v.ID,
	)
}

// ProviderCancelNotice tells the client the provider cancelled.
func ProviderCancelNotice(v models.BookingView, loc *time.Location) models.Notification {
	return newNotification(
		models.NotificationCancelledByProvider,
		v.ClientID,
		"Booking cancelled",
		fmt.Sprintf("Your booking #%d for %s with %s on %s was cancelled by the provider.",
			v.ID, v.Service.Name, v.Provider.Name, v.Slot.Start.In(loc).Format(displayLayout)),
		v.ID,
	)
}
