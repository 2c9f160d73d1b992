package ledger

import (
	"context"
	"time"

	"slotbook/database/repository"
	"slotbook/models"
	"slotbook/utils"

	"go.uber.org/zap"
)

// DefaultSlotLimit bounds ListAvailableFutureSlots when the caller passes
// no limit.
const DefaultSlotLimit = 10

// LedgerService owns the bookable time slots of every service.
type LedgerService interface {
	AddSlot(ctx context.Context, externalID string, serviceID int64, start time.Time) (*models.TimeSlot, error)
	ListSlots(ctx context.Context, externalID string) ([]models.SlotView, error)
	ListAvailableFutureSlots(ctx context.Context, serviceID int64, limit int) ([]models.TimeSlot, error)
}

// DefaultLedgerService is the production implementation.
type DefaultLedgerService struct {
	Store        repository.Store
	Logger       *zap.Logger
	Now          func() time.Time
	DefaultLimit int
}

func NewDefaultLedgerService(store repository.Store, defaultLimit int) *DefaultLedgerService {
	return &DefaultLedgerService{Store: store, DefaultLimit: defaultLimit}
}

func (s *DefaultLedgerService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return utils.GetLogger()
}

func (s *DefaultLedgerService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
