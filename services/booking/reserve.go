package booking

import (
	"context"
	"errors"

	"slotbook/database/repository"
	"slotbook/models"
	"slotbook/services/apperr"
	"slotbook/services/notification"
	"slotbook/services/provider"

	"go.uber.org/zap"
)

// Reserve books slotID for clientID. The availability flip and the booking
// insert commit together; whoever loses a race on the same slot gets
// SlotUnavailable and nothing changes. The provider is notified after
// commit.
func (s *DefaultBookingService) Reserve(ctx context.Context, slotID int64, clientID string) (*models.BookingView, error) {
	if clientID == "" {
		return nil, apperr.Invalid("an actor identity is required")
	}
	now := s.now()

	var view *models.BookingView
	err := s.Store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		slot, err := tx.SlotByID(ctx, slotID)
		if err != nil {
			return err
		}
		svc, err := tx.ServiceByID(ctx, slot.ServiceID)
		if err != nil {
			return err
		}
		owner, err := tx.ProviderByID(ctx, svc.ProviderID)
		if err != nil {
			return err
		}
		if !owner.Active {
			return repository.ErrNotFound
		}

		claimed, err := tx.ClaimSlot(ctx, slot.ID, now)
		if err != nil {
			return err
		}
		if !claimed {
			return apperr.ErrSlotUnavailable
		}

		b := &models.Booking{
			SlotID:    slot.ID,
			ClientID:  clientID,
			CreatedAt: now.UTC(),
			Status:    models.BookingConfirmed,
		}
		if err := tx.InsertBooking(ctx, b); err != nil {
			return err
		}

		claimedSlot := *slot
		claimedSlot.Available = false
		view = &models.BookingView{Booking: *b, Slot: claimedSlot, Service: *svc, Provider: *owner}
		return nil
	})
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, apperr.With(apperr.ErrNotFound, "slot %d not found", slotID)
	case errors.Is(err, repository.ErrDuplicate):
		return nil, apperr.ErrSlotUnavailable
	case err != nil:
		return nil, provider.Translate(s.logger(), "reserve", err)
	}

	s.logger().Info("Slot reserved",
		zap.Int64("bookingID", view.ID),
		zap.Int64("slotID", slotID),
		zap.String("clientID", clientID),
	)
	s.dispatch(ctx, notification.NewBookingNotice(*view, s.location()))
	return view, nil
}
