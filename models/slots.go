package models

import "time"

// TimeSlot is a concrete [Start, End) interval of one service.
// End is derived from the service duration when the slot is created and is
// never recomputed afterwards.
type TimeSlot struct {
	ID        int64     `bson:"_id" json:"id"`
	ServiceID int64     `bson:"serviceId" json:"serviceId"`
	Start     time.Time `bson:"start" json:"start"`
	End       time.Time `bson:"end" json:"end"`
	Available bool      `bson:"available" json:"available"`
}

// Overlaps reports whether the slot intersects [start, end). Touching
// endpoints do not overlap.
func (t TimeSlot) Overlaps(start, end time.Time) bool {
	return t.Start.Before(end) && t.End.After(start)
}

// SlotView is a slot annotated for the provider dashboard.
type SlotView struct {
	TimeSlot    `bson:",inline"`
	ServiceName string   `bson:"serviceName" json:"serviceName"`
	Booking     *Booking `bson:"booking,omitempty" json:"booking,omitempty"`
}
