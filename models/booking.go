package models

import "time"

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
)

// Booking is a client's reservation of exactly one slot.
type Booking struct {
	ID        int64         `bson:"_id" json:"id"`
	SlotID    int64         `bson:"slotId" json:"slotId"`       // unique across bookings
	ClientID  string        `bson:"clientId" json:"clientId"`   // external identity of the client
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"` // always UTC
	Status    BookingStatus `bson:"status" json:"status"`
}

// BookingView joins a booking with everything needed to describe it.
type BookingView struct {
	Booking  `bson:",inline"`
	Slot     TimeSlot `bson:"slot" json:"slot"`
	Service  Service  `bson:"service" json:"service"`
	Provider Provider `bson:"provider" json:"provider"`
}
