package memoryRepo

import (
	"context"
	"sort"
	"time"

	"slotbook/database/repository"
	"slotbook/models"
)

// Reads on the Store go to the latest committed state. A committed state is
// never modified again, so it can be read without holding the lock.

func (s *Store) ProviderByID(ctx context.Context, id int64) (*models.Provider, error) {
	return s.read().ProviderByID(ctx, id)
}

func (s *Store) ProviderByExternalID(ctx context.Context, externalID string) (*models.Provider, error) {
	return s.read().ProviderByExternalID(ctx, externalID)
}

func (s *Store) ServiceByID(ctx context.Context, id int64) (*models.Service, error) {
	return s.read().ServiceByID(ctx, id)
}

func (s *Store) ServicesByProvider(ctx context.Context, providerID int64) ([]models.Service, error) {
	return s.read().ServicesByProvider(ctx, providerID)
}

func (s *Store) PublicServices(ctx context.Context) ([]models.PublicService, error) {
	return s.read().PublicServices(ctx)
}

func (s *Store) SlotByID(ctx context.Context, id int64) (*models.TimeSlot, error) {
	return s.read().SlotByID(ctx, id)
}

func (s *Store) SlotsByService(ctx context.Context, serviceID int64) ([]models.TimeSlot, error) {
	return s.read().SlotsByService(ctx, serviceID)
}

func (s *Store) SlotsByProvider(ctx context.Context, providerID int64) ([]models.SlotView, error) {
	return s.read().SlotsByProvider(ctx, providerID)
}

func (s *Store) AvailableSlots(ctx context.Context, serviceID int64, after time.Time, limit int) ([]models.TimeSlot, error) {
	return s.read().AvailableSlots(ctx, serviceID, after, limit)
}

func (s *Store) BookingByID(ctx context.Context, id int64) (*models.Booking, error) {
	return s.read().BookingByID(ctx, id)
}

func (s *Store) BookingDetails(ctx context.Context, id int64) (*models.BookingView, error) {
	return s.read().BookingDetails(ctx, id)
}

func (s *Store) UpcomingBookings(ctx context.Context, clientID string, after time.Time) ([]models.BookingView, error) {
	return s.read().UpcomingBookings(ctx, clientID, after)
}

func (s *state) ProviderByID(_ context.Context, id int64) (*models.Provider, error) {
	p, ok := s.providers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (s *state) ProviderByExternalID(_ context.Context, externalID string) (*models.Provider, error) {
	for _, p := range s.providers {
		if p.ExternalID == externalID {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *state) ServiceByID(_ context.Context, id int64) (*models.Service, error) {
	svc, ok := s.services[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &svc, nil
}

func (s *state) ServicesByProvider(_ context.Context, providerID int64) ([]models.Service, error) {
	out := []models.Service{}
	for _, svc := range s.services {
		if svc.ProviderID == providerID {
			out = append(out, svc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *state) PublicServices(_ context.Context) ([]models.PublicService, error) {
	out := []models.PublicService{}
	for _, svc := range s.services {
		p, ok := s.providers[svc.ProviderID]
		if !ok || !p.Active {
			continue
		}
		out = append(out, models.PublicService{Service: svc, ProviderName: p.Name})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProviderName != out[j].ProviderName {
			return out[i].ProviderName < out[j].ProviderName
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *state) SlotByID(_ context.Context, id int64) (*models.TimeSlot, error) {
	slot, ok := s.slots[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &slot, nil
}

func (s *state) SlotsByService(_ context.Context, serviceID int64) ([]models.TimeSlot, error) {
	out := []models.TimeSlot{}
	for _, slot := range s.slots {
		if slot.ServiceID == serviceID {
			out = append(out, slot)
		}
	}
	sortSlots(out)
	return out, nil
}

func (s *state) SlotsByProvider(_ context.Context, providerID int64) ([]models.SlotView, error) {
	byService := map[int64]string{}
	for _, svc := range s.services {
		if svc.ProviderID == providerID {
			byService[svc.ID] = svc.Name
		}
	}
	bySlot := map[int64]models.Booking{}
	for _, b := range s.bookings {
		bySlot[b.SlotID] = b
	}

	out := []models.SlotView{}
	for _, slot := range s.slots {
		name, ok := byService[slot.ServiceID]
		if !ok {
			continue
		}
		view := models.SlotView{TimeSlot: slot, ServiceName: name}
		if b, ok := bySlot[slot.ID]; ok {
			view.Booking = &b
		}
		out = append(out, view)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *state) AvailableSlots(_ context.Context, serviceID int64, after time.Time, limit int) ([]models.TimeSlot, error) {
	out := []models.TimeSlot{}
	for _, slot := range s.slots {
		if slot.ServiceID == serviceID && slot.Available && slot.Start.After(after) {
			out = append(out, slot)
		}
	}
	sortSlots(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *state) BookingByID(_ context.Context, id int64) (*models.Booking, error) {
	b, ok := s.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (s *state) BookingDetails(_ context.Context, id int64) (*models.BookingView, error) {
	b, ok := s.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	view, ok := s.view(b)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &view, nil
}

func (s *state) UpcomingBookings(_ context.Context, clientID string, after time.Time) ([]models.BookingView, error) {
	out := []models.BookingView{}
	for _, b := range s.bookings {
		if b.ClientID != clientID || b.Status != models.BookingConfirmed {
			continue
		}
		view, ok := s.view(b)
		if !ok || !view.Slot.Start.After(after) {
			continue
		}
		out = append(out, view)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Slot.Start.Equal(out[j].Slot.Start) {
			return out[i].Slot.Start.Before(out[j].Slot.Start)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *state) view(b models.Booking) (models.BookingView, bool) {
	slot, ok := s.slots[b.SlotID]
	if !ok {
		return models.BookingView{}, false
	}
	svc, ok := s.services[slot.ServiceID]
	if !ok {
		return models.BookingView{}, false
	}
	p, ok := s.providers[svc.ProviderID]
	if !ok {
		return models.BookingView{}, false
	}
	return models.BookingView{Booking: b, Slot: slot, Service: svc, Provider: p}, true
}

func sortSlots(slots []models.TimeSlot) {
	sort.Slice(slots, func(i, j int) bool {
		if !slots[i].Start.Equal(slots[j].Start) {
			return slots[i].Start.Before(slots[j].Start)
		}
		return slots[i].ID < slots[j].ID
	})
}
