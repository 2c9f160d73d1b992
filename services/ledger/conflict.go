package ledger

import (
	"time"

	"slotbook/models"
	"slotbook/services/apperr"
)

const slotLayout = "2006-01-02 15:04"

// CheckConflict decides whether [start, end) may join existing, the slots
// already stored for the same service. An identical start wins over a
// plain overlap so the provider is told which slot is in the way.
func CheckConflict(existing []models.TimeSlot, start, end time.Time) error {
	for _, slot := range existing {
		if !slot.Start.Equal(start) {
			continue
		}
		if slot.Available {
			return apperr.With(apperr.ErrDuplicateStart,
				"a slot starting at %s already exists (slot %d)", start.Format(slotLayout), slot.ID)
		}
		return apperr.With(apperr.ErrDuplicateStart,
			"a slot starting at %s is already booked (slot %d)", start.Format(slotLayout), slot.ID)
	}
	for _, slot := range existing {
		if slot.Overlaps(start, end) {
			return apperr.With(apperr.ErrOverlap,
				"slot overlaps slot %d (%s to %s)", slot.ID, slot.Start.Format(slotLayout), slot.End.Format("15:04"))
		}
	}
	return nil
}
