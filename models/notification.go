package models

import "time"

type NotificationKind string

const (
	NotificationBookingCreated      NotificationKind = "booking_created"
	NotificationCancelledByClient   NotificationKind = "booking_cancelled_by_client"
	NotificationCancelledByProvider NotificationKind = "booking_cancelled_by_provider"
)

// Notification is a message for one counterparty of a booking transition.
type Notification struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"kind"`
	Recipient string           `json:"recipient"` // external identity
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	BookingID int64            `json:"bookingId"`
	CreatedAt time.Time        `json:"createdAt"`
}
