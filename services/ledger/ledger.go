package ledger

import (
	"context"
	"errors"
	"time"

	"slotbook/database/repository"
	"slotbook/models"
	"slotbook/services/apperr"
	"slotbook/services/catalog"
	"slotbook/services/provider"

	"go.uber.org/zap"
)

// AddSlot opens a new slot of serviceID at start. The end is fixed here
// from the service duration. Ownership, the overlap check and the insert
// all happen in one transaction holding the service lock.
func (s *DefaultLedgerService) AddSlot(ctx context.Context, externalID string, serviceID int64, start time.Time) (*models.TimeSlot, error) {
	now := s.now()
	var slot *models.TimeSlot
	err := s.Store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		_, svc, err := catalog.OwnedService(ctx, tx, externalID, serviceID)
		if err != nil {
			return err
		}
		if !start.After(now) {
			return apperr.ErrPastStartTime
		}
		if err := tx.LockService(ctx, svc.ID); err != nil {
			return err
		}
		existing, err := tx.SlotsByService(ctx, svc.ID)
		if err != nil {
			return err
		}
		end := start.Add(svc.Duration())
		if !end.After(start) {
			return apperr.Invalid("service duration does not produce a valid slot end")
		}
		if err := CheckConflict(existing, start, end); err != nil {
			return err
		}
		slot = &models.TimeSlot{ServiceID: svc.ID, Start: start, End: end, Available: true}
		return tx.InsertSlot(ctx, slot)
	})
	if errors.Is(err, repository.ErrDuplicate) {
		err = apperr.ErrDuplicateStart
	}
	if err != nil {
		return nil, provider.Translate(s.logger(), "add slot", err)
	}
	s.logger().Info("Slot added",
		zap.Int64("slotID", slot.ID),
		zap.Int64("serviceID", serviceID),
		zap.Time("start", slot.Start),
	)
	return slot, nil
}

// ListSlots returns every slot across the caller's services ordered by
// start, each with its service name and booking.
func (s *DefaultLedgerService) ListSlots(ctx context.Context, externalID string) ([]models.SlotView, error) {
	p, err := provider.RequireActive(ctx, s.Store, externalID)
	if err != nil {
		return nil, provider.Translate(s.logger(), "list slots", err)
	}
	slots, err := s.Store.SlotsByProvider(ctx, p.ID)
	if err != nil {
		return nil, provider.Translate(s.logger(), "list slots", err)
	}
	return slots, nil
}

// ListAvailableFutureSlots returns up to limit open slots of serviceID that
// start after now. Services of inactive providers do not exist for clients.
func (s *DefaultLedgerService) ListAvailableFutureSlots(ctx context.Context, serviceID int64, limit int) ([]models.TimeSlot, error) {
	if limit <= 0 {
		limit = s.DefaultLimit
	}
	if limit <= 0 {
		limit = DefaultSlotLimit
	}
	now := s.now()

	svc, err := s.Store.ServiceByID(ctx, serviceID)
	if err == nil {
		var p *models.Provider
		p, err = s.Store.ProviderByID(ctx, svc.ProviderID)
		if err == nil && !p.Active {
			err = repository.ErrNotFound
		}
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.With(apperr.ErrNotFound, "service %d not found", serviceID)
	}
	if err != nil {
		return nil, provider.Translate(s.logger(), "list available slots", err)
	}

	slots, err := s.Store.AvailableSlots(ctx, serviceID, now, limit)
	if err != nil {
		return nil, provider.Translate(s.logger(), "list available slots", err)
	}
	return slots, nil
}
