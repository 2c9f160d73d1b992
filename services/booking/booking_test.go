package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	memoryRepo "slotbook/database/repository/memory"
	"slotbook/models"
	"slotbook/services/apperr"
	"slotbook/services/catalog"
	"slotbook/services/ledger"
	"slotbook/services/notification"
	"slotbook/services/provider"

	"go.uber.org/zap"
)

var testNow = time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)

type recorder struct {
	mu   sync.Mutex
	sent []models.Notification
}

func (r *recorder) Dispatch(_ context.Context, n models.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
}

func (r *recorder) all() []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Notification(nil), r.sent...)
}

type fixture struct {
	store    *memoryRepo.Store
	bookings *DefaultBookingService
	notes    *recorder
	slot     *models.TimeSlot
	service  *models.Service
}

// newFixture registers provider "p1" with one 60 minute service and one
// open slot on 2024-07-15 at 10:00.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memoryRepo.New()
	clock := func() time.Time { return testNow }
	providers := &provider.DefaultProviderService{Store: store, Logger: zap.NewNop(), Now: clock}
	cat := &catalog.DefaultCatalogService{Store: store, Logger: zap.NewNop(), Now: clock}
	led := &ledger.DefaultLedgerService{Store: store, Logger: zap.NewNop(), Now: clock}

	if _, err := providers.RegisterProvider(ctx, "p1", "Salon"); err != nil {
		t.Fatal(err)
	}
	svc, err := cat.AddService(ctx, "p1", catalog.ServiceInput{Name: "Cut", DurationMinutes: 60})
	if err != nil {
		t.Fatal(err)
	}
	slot, err := led.AddSlot(ctx, "p1", svc.ID, time.Date(2024, 7, 15, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}

	notes := &recorder{}
	return &fixture{
		store:    store,
		notes:    notes,
		slot:     slot,
		service:  svc,
		bookings: &DefaultBookingService{Store: store, Dispatcher: notes, Logger: zap.NewNop(), Now: clock},
	}
}

func (f *fixture) slotAvailable(t *testing.T) bool {
	t.Helper()
	s, err := f.store.SlotByID(context.Background(), f.slot.ID)
	if err != nil {
		t.Fatal(err)
	}
	return s.Available
}

func TestReserveClaimsSlotAndNotifiesProvider(t *testing.T) {
	f := newFixture(t)
	view, err := f.bookings.Reserve(context.Background(), f.slot.ID, "client-a")
	if err != nil {
		t.Fatal(err)
	}
	if view.Status != models.BookingConfirmed || view.ClientID != "client-a" || view.SlotID != f.slot.ID {
		t.Fatalf("unexpected booking %+v", view.Booking)
	}
	if view.CreatedAt.Location() != time.UTC {
		t.Fatalf("createdAt not UTC: %v", view.CreatedAt)
	}
	if f.slotAvailable(t) {
		t.Fatal("slot still available after reserve")
	}

	sent := f.notes.all()
	if len(sent) != 1 || sent[0].Recipient != "p1" || sent[0].Kind != models.NotificationBookingCreated {
		t.Fatalf("unexpected notifications %+v", sent)
	}
}

func TestSecondReserveLoses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.bookings.Reserve(ctx, f.slot.ID, "a"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.bookings.Reserve(ctx, f.slot.ID, "b"); !errors.Is(err, apperr.ErrSlotUnavailable) {
		t.Fatalf("expected SlotUnavailable, got %v", err)
	}
	if len(f.notes.all()) != 1 {
		t.Fatal("losing reserve must not notify")
	}
}

func TestConcurrentReserveHasOneWinner(t *testing.T) {
	f := newFixture(t)
	const n = 32

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
		other     []error
	)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, err := f.bookings.Reserve(context.Background(), f.slot.ID, "client")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, apperr.ErrSlotUnavailable):
				conflicts++
			default:
				other = append(other, err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	if wins != 1 || conflicts != n-1 || len(other) != 0 {
		t.Fatalf("wins=%d conflicts=%d other=%v", wins, conflicts, other)
	}
	views, err := f.store.SlotsByProvider(context.Background(), f.service.ProviderID)
	if err != nil {
		t.Fatal(err)
	}
	if len(views) != 1 || views[0].Booking == nil || views[0].Available {
		t.Fatalf("expected exactly one booked slot, got %+v", views)
	}
}

func TestReserveRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.bookings.Reserve(ctx, 9999, "a"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("missing slot: got %v", err)
	}

	f.bookings.Now = func() time.Time { return f.slot.Start }
	if _, err := f.bookings.Reserve(ctx, f.slot.ID, "a"); !errors.Is(err, apperr.ErrSlotUnavailable) {
		t.Fatalf("started slot: got %v", err)
	}
	if !f.slotAvailable(t) {
		t.Fatal("failed reserve changed availability")
	}
}

func TestReserveOnInactiveProviderIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	providers := &provider.DefaultProviderService{Store: f.store, Logger: zap.NewNop()}
	if _, err := providers.SetProviderActive(ctx, f.service.ProviderID, false); err != nil {
		t.Fatal(err)
	}
	if _, err := f.bookings.Reserve(ctx, f.slot.ID, "a"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("got %v", err)
	}
}

func TestReserveThenCancelRestoresSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	view, err := f.bookings.Reserve(ctx, f.slot.ID, "a")
	if err != nil {
		t.Fatal(err)
	}
	cancelled, err := f.bookings.CancelByClient(ctx, view.ID, "a")
	if err != nil {
		t.Fatal(err)
	}
	if !cancelled.Slot.Available {
		t.Fatal("returned view should show the slot open")
	}
	if !f.slotAvailable(t) {
		t.Fatal("slot not released")
	}
	if _, err := f.store.BookingByID(ctx, view.ID); err == nil {
		t.Fatal("booking still stored")
	}

	sent := f.notes.all()
	if len(sent) != 2 || sent[1].Kind != models.NotificationCancelledByClient || sent[1].Recipient != "p1" {
		t.Fatalf("unexpected notifications %+v", sent)
	}

	// The slot can be booked again.
	if _, err := f.bookings.Reserve(ctx, f.slot.ID, "b"); err != nil {
		t.Fatalf("rebook: %v", err)
	}
}

func TestCancelByClientDoesNotLeakOtherBookings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	view, err := f.bookings.Reserve(ctx, f.slot.ID, "owner")
	if err != nil {
		t.Fatal(err)
	}

	_, foreign := f.bookings.CancelByClient(ctx, view.ID, "intruder")
	_, missing := f.bookings.CancelByClient(ctx, view.ID+1000, "intruder")
	if !errors.Is(foreign, apperr.ErrNotFound) || !errors.Is(missing, apperr.ErrNotFound) {
		t.Fatalf("foreign=%v missing=%v", foreign, missing)
	}
	if _, m := apperr.Public(foreign); m == "" {
		t.Fatal("expected a message")
	}
	if f.slotAvailable(t) {
		t.Fatal("foreign cancel released the slot")
	}
	if _, err := f.store.BookingByID(ctx, view.ID); err != nil {
		t.Fatalf("booking lost: %v", err)
	}
}

func TestCancelByProvider(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	view, err := f.bookings.Reserve(ctx, f.slot.ID, "client-a")
	if err != nil {
		t.Fatal(err)
	}

	providers := &provider.DefaultProviderService{Store: f.store, Logger: zap.NewNop()}
	if _, err := providers.RegisterProvider(ctx, "p2", "Rival"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.bookings.CancelByProvider(ctx, view.ID, "p2"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("rival provider: got %v", err)
	}
	if _, err := f.bookings.CancelByProvider(ctx, view.ID, "nobody"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("non provider: got %v", err)
	}

	if _, err := f.bookings.CancelByProvider(ctx, view.ID, "p1"); err != nil {
		t.Fatal(err)
	}
	if !f.slotAvailable(t) {
		t.Fatal("slot not released")
	}
	sent := f.notes.all()
	last := sent[len(sent)-1]
	if last.Kind != models.NotificationCancelledByProvider || last.Recipient != "client-a" {
		t.Fatalf("unexpected notification %+v", last)
	}
}

func TestNotificationFailureDoesNotUndoReserve(t *testing.T) {
	f := newFixture(t)
	failing := notification.SenderFunc(func(context.Context, models.Notification) error {
		return errors.New("transport down")
	})
	f.bookings.Dispatcher = &notification.DirectDispatcher{Sender: failing, Timeout: time.Second, Logger: zap.NewNop()}

	if _, err := f.bookings.Reserve(context.Background(), f.slot.ID, "a"); err != nil {
		t.Fatalf("reserve failed because of notification: %v", err)
	}
	if f.slotAvailable(t) {
		t.Fatal("reserve was rolled back")
	}
}

func TestListClientBookings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.bookings.Reserve(ctx, f.slot.ID, "a"); err != nil {
		t.Fatal(err)
	}

	mine, err := f.bookings.ListClientBookings(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 1 || mine[0].Service.Name != "Cut" || mine[0].Provider.Name != "Salon" {
		t.Fatalf("unexpected listing %+v", mine)
	}
	others, _ := f.bookings.ListClientBookings(ctx, "b")
	if len(others) != 0 {
		t.Fatalf("leaked bookings %+v", others)
	}

	f.bookings.Now = func() time.Time { return f.slot.Start.Add(time.Minute) }
	past, _ := f.bookings.ListClientBookings(ctx, "a")
	if len(past) != 0 {
		t.Fatal("past bookings should not be listed")
	}
}
