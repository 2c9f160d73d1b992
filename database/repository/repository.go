package repository

import (
	"context"
	"errors"
	"time"

	"slotbook/models"
)

var (
	// ErrNotFound is returned when a lookup matches no record.
	ErrNotFound = errors.New("repository: record not found")
	// ErrDuplicate is returned when a write violates a unique key.
	ErrDuplicate = errors.New("repository: duplicate key")
)

// Reader holds the lookups every driver serves, inside or outside a
// transaction.
type Reader interface {
	// ProviderByID retrieves a provider by its store id.
	ProviderByID(ctx context.Context, id int64) (*models.Provider, error)
	// ProviderByExternalID retrieves a provider by the front end identity.
	ProviderByExternalID(ctx context.Context, externalID string) (*models.Provider, error)
	// ServiceByID retrieves a service by id.
	ServiceByID(ctx context.Context, id int64) (*models.Service, error)
	// ServicesByProvider lists a provider's services in id order.
	ServicesByProvider(ctx context.Context, providerID int64) ([]models.Service, error)
	// PublicServices lists services of active providers ordered by provider
	// name, then service name.
	PublicServices(ctx context.Context) ([]models.PublicService, error)
	// SlotByID retrieves a slot by id.
	SlotByID(ctx context.Context, id int64) (*models.TimeSlot, error)
	// SlotsByService lists every slot of a service ordered by start.
	SlotsByService(ctx context.Context, serviceID int64) ([]models.TimeSlot, error)
	// SlotsByProvider lists every slot across a provider's services ordered
	// by start, each with its booking if one exists.
	SlotsByProvider(ctx context.Context, providerID int64) ([]models.SlotView, error)
	// AvailableSlots lists up to limit available slots of a service that
	// start after the given instant, ordered by start.
	AvailableSlots(ctx context.Context, serviceID int64, after time.Time, limit int) ([]models.TimeSlot, error)
	// BookingByID retrieves a booking by id.
	BookingByID(ctx context.Context, id int64) (*models.Booking, error)
	// BookingDetails retrieves a booking joined with its slot, service and provider.
	BookingDetails(ctx context.Context, id int64) (*models.BookingView, error)
	// UpcomingBookings lists a client's confirmed bookings whose slot starts
	// after the given instant, ordered by start.
	UpcomingBookings(ctx context.Context, clientID string, after time.Time) ([]models.BookingView, error)
}

// Tx is the write surface available inside Store.WithTx. Writes either all
// commit together or none of them do.
type Tx interface {
	Reader

	// InsertProvider assigns p.ID and stores it. ErrDuplicate when the
	// external id is taken.
	InsertProvider(ctx context.Context, p *models.Provider) error
	SetProviderActive(ctx context.Context, id int64, active bool) error

	InsertService(ctx context.Context, s *models.Service) error
	UpdateService(ctx context.Context, s *models.Service) error
	// DeleteService removes the service, its slots and their bookings and
	// reports how many bookings went with it.
	DeleteService(ctx context.Context, id int64) (int64, error)
	// LockService serializes slot writes for one service until the
	// transaction ends.
	LockService(ctx context.Context, id int64) error

	// InsertSlot assigns s.ID and stores it. ErrDuplicate on an identical
	// (service, start) pair.
	InsertSlot(ctx context.Context, s *models.TimeSlot) error
	// ClaimSlot flips available from true to false when the slot starts
	// after now. It reports false, without error, when nothing matched.
	ClaimSlot(ctx context.Context, slotID int64, now time.Time) (bool, error)
	ReleaseSlot(ctx context.Context, slotID int64) error

	// InsertBooking assigns b.ID and stores it. ErrDuplicate when the slot
	// already hosts a booking.
	InsertBooking(ctx context.Context, b *models.Booking) error
	// DeleteBooking reports whether a booking was removed.
	DeleteBooking(ctx context.Context, id int64) (bool, error)
}

// Store is the process-wide handle to persistent state.
type Store interface {
	Reader
	// WithTx runs fn inside one transaction. Any error returned by fn rolls
	// everything back and is returned unchanged.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
