// Package storetest runs the reservation scenarios every repository.Store
// driver must pass, through the real services. Driver packages call Run
// from their tests with a factory that hands out an empty store.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"slotbook/database/repository"
	"slotbook/models"
	"slotbook/services/apperr"
	"slotbook/services/booking"
	"slotbook/services/catalog"
	"slotbook/services/ledger"
	"slotbook/services/provider"

	"go.uber.org/zap"
)

// Now is the clock every scenario runs at.
var Now = time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)

// Racers is how many goroutines contend in the concurrent scenarios.
const Racers = 16

// Factory returns an empty store. It registers its own cleanup on t.
type Factory func(t *testing.T) repository.Store

type engine struct {
	store     repository.Store
	providers *provider.DefaultProviderService
	catalog   *catalog.DefaultCatalogService
	ledger    *ledger.DefaultLedgerService
	bookings  *booking.DefaultBookingService
}

func newEngine(store repository.Store) *engine {
	clock := func() time.Time { return Now }
	return &engine{
		store:     store,
		providers: &provider.DefaultProviderService{Store: store, Logger: zap.NewNop(), Now: clock},
		catalog:   &catalog.DefaultCatalogService{Store: store, Logger: zap.NewNop(), Now: clock},
		ledger:    &ledger.DefaultLedgerService{Store: store, Logger: zap.NewNop(), Now: clock},
		bookings:  &booking.DefaultBookingService{Store: store, Logger: zap.NewNop(), Now: clock},
	}
}

// seed registers provider "p1" with a 60 minute service.
func (e *engine) seed(t *testing.T) *models.Service {
	t.Helper()
	ctx := context.Background()
	if _, err := e.providers.RegisterProvider(ctx, "p1", "Salon"); err != nil {
		t.Fatalf("register: %v", err)
	}
	svc, err := e.catalog.AddService(ctx, "p1", catalog.ServiceInput{Name: "Cut", DurationMinutes: 60})
	if err != nil {
		t.Fatalf("add service: %v", err)
	}
	return svc
}

func (e *engine) slot(t *testing.T, svc *models.Service, start time.Time) *models.TimeSlot {
	t.Helper()
	slot, err := e.ledger.AddSlot(context.Background(), "p1", svc.ID, start)
	if err != nil {
		t.Fatalf("add slot at %s: %v", start.Format(time.Kitchen), err)
	}
	return slot
}

func at(h, m int) time.Time {
	return time.Date(2024, 7, 15, h, m, 0, 0, time.UTC)
}

// Run executes every scenario against stores produced by open.
func Run(t *testing.T, open Factory) {
	t.Run("ConcurrentReserveHasOneWinner", func(t *testing.T) { concurrentReserve(t, open(t)) })
	t.Run("ConcurrentAddSlotRejectsOverlap", func(t *testing.T) { concurrentAddSlot(t, open(t)) })
	t.Run("CancelReleasesSlot", func(t *testing.T) { cancelReleasesSlot(t, open(t)) })
	t.Run("DuplicateRegistration", func(t *testing.T) { duplicateRegistration(t, open(t)) })
	t.Run("DeleteServiceCascades", func(t *testing.T) { deleteServiceCascades(t, open(t)) })
}

func concurrentReserve(t *testing.T, store repository.Store) {
	e := newEngine(store)
	ctx := context.Background()
	slot := e.slot(t, e.seed(t), at(10, 0))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		winners  []string
		failures []error
	)
	for i := 0; i < Racers; i++ {
		client := fmt.Sprintf("client-%d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.bookings.Reserve(ctx, slot.ID, client)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				winners = append(winners, client)
				return
			}
			if !errors.Is(err, apperr.ErrSlotUnavailable) {
				failures = append(failures, err)
			}
		}()
	}
	wg.Wait()

	if len(failures) > 0 {
		t.Fatalf("losers must see SlotUnavailable, got %v", failures)
	}
	if len(winners) != 1 {
		t.Fatalf("winners = %v, want exactly one", winners)
	}
	stored, err := store.SlotByID(ctx, slot.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Available {
		t.Fatal("reserved slot is still available")
	}
	views, err := store.SlotsByProvider(ctx, providerID(t, store))
	if err != nil {
		t.Fatal(err)
	}
	booked := 0
	for _, v := range views {
		if v.Booking != nil {
			booked++
			if v.Booking.ClientID != winners[0] {
				t.Fatalf("booking belongs to %s, winner was %s", v.Booking.ClientID, winners[0])
			}
		}
	}
	if booked != 1 {
		t.Fatalf("bookings stored = %d, want 1", booked)
	}
}

func providerID(t *testing.T, store repository.Store) int64 {
	t.Helper()
	p, err := store.ProviderByExternalID(context.Background(), "p1")
	if err != nil {
		t.Fatal(err)
	}
	return p.ID
}

func concurrentAddSlot(t *testing.T, store repository.Store) {
	e := newEngine(store)
	ctx := context.Background()
	svc := e.seed(t)

	// Every start lies within one duration of every other, so at most one
	// of them can be stored.
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		added    int
		failures []error
	)
	for i := 0; i < Racers; i++ {
		start := at(10, 0).Add(time.Duration(i%8) * 5 * time.Minute)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.ledger.AddSlot(ctx, "p1", svc.ID, start)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				added++
			case errors.Is(err, apperr.ErrOverlap), errors.Is(err, apperr.ErrDuplicateStart):
			default:
				failures = append(failures, err)
			}
		}()
	}
	wg.Wait()

	if len(failures) > 0 {
		t.Fatalf("losers must see Overlap or DuplicateStart, got %v", failures)
	}
	if added != 1 {
		t.Fatalf("slots added = %d, want 1", added)
	}
	slots, err := store.SlotsByService(ctx, svc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(slots) != 1 {
		t.Fatalf("stored slots = %d, want 1", len(slots))
	}
	if _, err := e.ledger.AddSlot(ctx, "p1", svc.ID, slots[0].End); err != nil {
		t.Fatalf("touching slot rejected: %v", err)
	}
}

func cancelReleasesSlot(t *testing.T, store repository.Store) {
	e := newEngine(store)
	ctx := context.Background()
	slot := e.slot(t, e.seed(t), at(10, 0))

	first, err := e.bookings.Reserve(ctx, slot.ID, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.bookings.CancelByClient(ctx, first.ID, "bob"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("stranger cancel: %v", err)
	}
	if s, _ := store.SlotByID(ctx, slot.ID); s == nil || s.Available {
		t.Fatal("failed cancel released the slot")
	}

	if _, err := e.bookings.CancelByClient(ctx, first.ID, "alice"); err != nil {
		t.Fatal(err)
	}
	assertReleased(t, store, slot.ID, first.ID)

	second, err := e.bookings.Reserve(ctx, slot.ID, "bob")
	if err != nil {
		t.Fatalf("rebooking a released slot: %v", err)
	}
	if _, err := e.bookings.CancelByProvider(ctx, second.ID, "p1"); err != nil {
		t.Fatal(err)
	}
	assertReleased(t, store, slot.ID, second.ID)

	upcoming, err := e.bookings.ListClientBookings(ctx, "bob")
	if err != nil {
		t.Fatal(err)
	}
	if len(upcoming) != 0 {
		t.Fatalf("cancelled booking still listed: %+v", upcoming)
	}
}

func assertReleased(t *testing.T, store repository.Store, slotID, bookingID int64) {
	t.Helper()
	ctx := context.Background()
	s, err := store.SlotByID(ctx, slotID)
	if err != nil {
		t.Fatal(err)
	}
	if !s.Available {
		t.Fatal("cancel did not release the slot")
	}
	if _, err := store.BookingByID(ctx, bookingID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("booking %d still stored: %v", bookingID, err)
	}
}

func duplicateRegistration(t *testing.T, store repository.Store) {
	e := newEngine(store)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		other   []error
	)
	for i := 0; i < Racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.providers.RegisterProvider(ctx, "p1", "Salon")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, apperr.ErrAlreadyRegistered):
			default:
				other = append(other, err)
			}
		}()
	}
	wg.Wait()

	if len(other) > 0 || created != 1 {
		t.Fatalf("created = %d, unexpected errors = %v", created, other)
	}
}

func deleteServiceCascades(t *testing.T, store repository.Store) {
	e := newEngine(store)
	ctx := context.Background()
	svc := e.seed(t)
	booked := e.slot(t, svc, at(10, 0))
	e.slot(t, svc, at(11, 0))

	b, err := e.bookings.Reserve(ctx, booked.ID, "alice")
	if err != nil {
		t.Fatal(err)
	}
	removed, err := e.catalog.DeleteService(ctx, "p1", svc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Fatalf("bookings removed = %d, want 1", removed)
	}
	if _, err := store.BookingByID(ctx, b.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("booking survived the cascade: %v", err)
	}
	if slots, _ := store.SlotsByService(ctx, svc.ID); len(slots) != 0 {
		t.Fatalf("slots survived the cascade: %d", len(slots))
	}
}
