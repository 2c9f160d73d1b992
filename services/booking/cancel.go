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

// ownerCheck decides whether the caller may cancel the booking described
// by v. A false answer is reported exactly like a missing booking.
type ownerCheck func(ctx context.Context, r repository.Reader, v *models.BookingView) (bool, error)

// release deletes the booking and reopens its slot in one transaction.
func (s *DefaultBookingService) release(ctx context.Context, bookingID int64, allowed ownerCheck) (*models.BookingView, error) {
	var view *models.BookingView
	err := s.Store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		v, err := tx.BookingDetails(ctx, bookingID)
		if err != nil {
			return err
		}
		ok, err := allowed(ctx, tx, v)
		if err != nil {
			return err
		}
		if !ok {
			return repository.ErrNotFound
		}
		deleted, err := tx.DeleteBooking(ctx, v.ID)
		if err != nil {
			return err
		}
		if !deleted {
			return repository.ErrNotFound
		}
		if err := tx.ReleaseSlot(ctx, v.SlotID); err != nil {
			return err
		}
		v.Slot.Available = true
		view = v
		return nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.With(apperr.ErrNotFound, "booking %d not found", bookingID)
	}
	if err != nil {
		return nil, provider.Translate(s.logger(), "cancel booking", err)
	}
	return view, nil
}

// CancelByClient cancels one of the client's own bookings and tells the
// provider.
func (s *DefaultBookingService) CancelByClient(ctx context.Context, bookingID int64, clientID string) (*models.BookingView, error) {
	view, err := s.release(ctx, bookingID, func(_ context.Context, _ repository.Reader, v *models.BookingView) (bool, error) {
		return v.ClientID == clientID, nil
	})
	if err != nil {
		return nil, err
	}
	s.logger().Info("Booking cancelled by client", zap.Int64("bookingID", bookingID), zap.Int64("slotID", view.SlotID))
	s.dispatch(ctx, notification.ClientCancelNotice(*view, s.location()))
	return view, nil
}

// CancelByProvider cancels a booking on one of the provider's services and
// tells the client.
func (s *DefaultBookingService) CancelByProvider(ctx context.Context, bookingID int64, externalID string) (*models.BookingView, error) {
	view, err := s.release(ctx, bookingID, func(ctx context.Context, r repository.Reader, v *models.BookingView) (bool, error) {
		p, err := provider.RequireActive(ctx, r, externalID)
		if err != nil {
			return false, err
		}
		return v.Service.ProviderID == p.ID, nil
	})
	if err != nil {
		return nil, err
	}
	s.logger().Info("Booking cancelled by provider", zap.Int64("bookingID", bookingID), zap.Int64("slotID", view.SlotID))
	s.dispatch(ctx, notification.ProviderCancelNotice(*view, s.location()))
	return view, nil
}

// ListClientBookings returns the client's upcoming bookings by start.
func (s *DefaultBookingService) ListClientBookings(ctx context.Context, clientID string) ([]models.BookingView, error) {
	views, err := s.Store.UpcomingBookings(ctx, clientID, s.now())
	if err != nil {
		return nil, provider.Translate(s.logger(), "list bookings", err)
	}
	return views, nil
}
