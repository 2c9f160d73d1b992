package booking

import (
	"context"
	"time"

	"slotbook/database/repository"
	"slotbook/models"
	"slotbook/services/notification"
	"slotbook/utils"

	"go.uber.org/zap"
)

// BookingService runs the reservation protocol: at most one booking per
// slot, and cancellation hands the slot back.
type BookingService interface {
	Reserve(ctx context.Context, slotID int64, clientID string) (*models.BookingView, error)
	CancelByClient(ctx context.Context, bookingID int64, clientID string) (*models.BookingView, error)
	CancelByProvider(ctx context.Context, bookingID int64, externalID string) (*models.BookingView, error)
	ListClientBookings(ctx context.Context, clientID string) ([]models.BookingView, error)
}

// DefaultBookingService is the production implementation. Location only
// affects how times are printed in notifications.
type DefaultBookingService struct {
	Store      repository.Store
	Dispatcher notification.Dispatcher
	Logger     *zap.Logger
	Now        func() time.Time
	Location   *time.Location
}

func NewDefaultBookingService(store repository.Store, dispatcher notification.Dispatcher, loc *time.Location) *DefaultBookingService {
	return &DefaultBookingService{Store: store, Dispatcher: dispatcher, Location: loc}
}

func (s *DefaultBookingService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return utils.GetLogger()
}

func (s *DefaultBookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultBookingService) location() *time.Location {
	if s.Location != nil {
		return s.Location
	}
	return time.UTC
}

func (s *DefaultBookingService) dispatch(ctx context.Context, n models.Notification) {
	if s.Dispatcher == nil {
		return
	}
	s.Dispatcher.Dispatch(ctx, n)
}
