package memoryRepo

import (
	"context"
	"time"

	"slotbook/database/repository"
	"slotbook/models"
)

func (s *state) InsertProvider(_ context.Context, p *models.Provider) error {
	for _, existing := range s.providers {
		if existing.ExternalID == p.ExternalID {
			return repository.ErrDuplicate
		}
	}
	p.ID = s.nextID()
	s.providers[p.ID] = *p
	return nil
}

func (s *state) SetProviderActive(_ context.Context, id int64, active bool) error {
	p, ok := s.providers[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Active = active
	s.providers[id] = p
	return nil
}

func (s *state) InsertService(_ context.Context, svc *models.Service) error {
	if _, ok := s.providers[svc.ProviderID]; !ok {
		return repository.ErrNotFound
	}
	svc.ID = s.nextID()
	s.services[svc.ID] = *svc
	return nil
}

func (s *state) UpdateService(_ context.Context, svc *models.Service) error {
	if _, ok := s.services[svc.ID]; !ok {
		return repository.ErrNotFound
	}
	s.services[svc.ID] = *svc
	return nil
}

func (s *state) DeleteService(_ context.Context, id int64) (int64, error) {
	if _, ok := s.services[id]; !ok {
		return 0, repository.ErrNotFound
	}
	var removed int64
	for slotID, slot := range s.slots {
		if slot.ServiceID != id {
			continue
		}
		for bookingID, b := range s.bookings {
			if b.SlotID == slotID {
				delete(s.bookings, bookingID)
				removed++
			}
		}
		delete(s.slots, slotID)
	}
	delete(s.services, id)
	return removed, nil
}

// LockService only checks existence; the store mutex already serializes
// transactions.
func (s *state) LockService(_ context.Context, id int64) error {
	if _, ok := s.services[id]; !ok {
		return repository.ErrNotFound
	}
	return nil
}

func (s *state) InsertSlot(_ context.Context, slot *models.TimeSlot) error {
	if _, ok := s.services[slot.ServiceID]; !ok {
		return repository.ErrNotFound
	}
	for _, existing := range s.slots {
		if existing.ServiceID == slot.ServiceID && existing.Start.Equal(slot.Start) {
			return repository.ErrDuplicate
		}
	}
	slot.ID = s.nextID()
	s.slots[slot.ID] = *slot
	return nil
}

func (s *state) ClaimSlot(_ context.Context, slotID int64, now time.Time) (bool, error) {
	slot, ok := s.slots[slotID]
	if !ok || !slot.Available || !slot.Start.After(now) {
		return false, nil
	}
	slot.Available = false
	s.slots[slotID] = slot
	return true, nil
}

func (s *state) ReleaseSlot(_ context.Context, slotID int64) error {
	slot, ok := s.slots[slotID]
	if !ok {
		return repository.ErrNotFound
	}
	slot.Available = true
	s.slots[slotID] = slot
	return nil
}

func (s *state) InsertBooking(_ context.Context, b *models.Booking) error {
	if _, ok := s.slots[b.SlotID]; !ok {
		return repository.ErrNotFound
	}
	for _, existing := range s.bookings {
		if existing.SlotID == b.SlotID {
			return repository.ErrDuplicate
		}
	}
	b.ID = s.nextID()
	s.bookings[b.ID] = *b
	return nil
}

func (s *state) DeleteBooking(_ context.Context, id int64) (bool, error) {
	if _, ok := s.bookings[id]; !ok {
		return false, nil
	}
	delete(s.bookings, id)
	return true, nil
}
