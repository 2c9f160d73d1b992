package command

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	memoryRepo "slotbook/database/repository/memory"
	"slotbook/models"
	"slotbook/services/apperr"
	"slotbook/services/booking"
	"slotbook/services/catalog"
	"slotbook/services/ledger"
	"slotbook/services/provider"

	"go.uber.org/zap"
)

func newDispatcher() *Dispatcher {
	store := memoryRepo.New()
	clock := func() time.Time { return time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC) }
	return &Dispatcher{
		Providers: &provider.DefaultProviderService{Store: store, Logger: zap.NewNop(), Now: clock},
		Catalog:   &catalog.DefaultCatalogService{Store: store, Logger: zap.NewNop(), Now: clock},
		Ledger:    &ledger.DefaultLedgerService{Store: store, Logger: zap.NewNop(), Now: clock},
		Bookings:  &booking.DefaultBookingService{Store: store, Logger: zap.NewNop(), Now: clock},
		Location:  time.UTC,
	}
}

func TestConversationFlow(t *testing.T) {
	d := newDispatcher()
	ctx := context.Background()

	steps := []struct {
		actor, name, args string
		contains          string
	}{
		{"100", "/register_provider", "Jane's Salon", "Registered as provider"},
		{"100", "add_service", "Haircut; Classic cut; 60; 25", "Service #"},
		{"100", "my_services", "", "Haircut"},
		{"100", "add_slot", "2 2024-07-15 10:00", "10:00 to 11:00"},
		{"200", "services", "", "Haircut by Jane's Salon"},
		{"200", "slots", "2", "2024-07-15 10:00"},
		{"200", "book", "3", "Booked!"},
		{"200", "my_bookings", "", "Haircut with Jane's Salon"},
		{"100", "my_slots", "", "booked (booking #4, client 200)"},
		{"200", "cancel_booking", "4", "cancelled"},
		{"100", "my_slots", "", "free"},
	}
	for _, st := range steps {
		res, err := d.Execute(ctx, st.actor, st.name, st.args)
		if err != nil {
			t.Fatalf("%s %s: %v", st.name, st.args, err)
		}
		if !strings.Contains(res.Text, st.contains) {
			t.Fatalf("%s: %q does not contain %q", st.name, res.Text, st.contains)
		}
	}
}

func TestProviderCancelCommand(t *testing.T) {
	d := newDispatcher()
	ctx := context.Background()
	mustRun := func(actor, name, args string) Result {
		t.Helper()
		res, err := d.Execute(ctx, actor, name, args)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		return res
	}
	mustRun("100", "register_provider", "Salon")
	mustRun("100", "add_service", "Cut; 30")
	slot := mustRun("100", "add_slot", "2 2024-07-15 10:00").Data.(*models.TimeSlot)
	view := mustRun("200", "book", "3").Data.(*models.BookingView)
	if view.SlotID != slot.ID {
		t.Fatalf("booked slot %d, want %d", view.SlotID, slot.ID)
	}
	res := mustRun("100", "cancel_booking_provider", "4")
	if !strings.Contains(res.Text, "client has been notified") {
		t.Fatalf("text = %q", res.Text)
	}
}

func TestExecuteErrors(t *testing.T) {
	d := newDispatcher()
	ctx := context.Background()

	if _, err := d.Execute(ctx, "1", "launch_rocket", ""); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("unknown command: %v", err)
	}
	if _, err := d.Execute(ctx, "1", "add_service", "Cut; 30"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("unregistered provider: %v", err)
	}
	if _, err := d.Execute(ctx, "1", "book", "abc"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("bad id: %v", err)
	}
	if _, err := d.Execute(ctx, "1", "register_provider", "Salon"); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Execute(ctx, "1", "register_provider", "Salon"); !errors.Is(err, apperr.ErrAlreadyRegistered) {
		t.Fatalf("second registration: %v", err)
	}
}

func TestEmptyListings(t *testing.T) {
	d := newDispatcher()
	res, err := d.Execute(context.Background(), "1", "services", "")
	if err != nil {
		t.Fatal(err)
	}
	if res.Text != "No services are available right now." || res.Command != "services" {
		t.Fatalf("unexpected %+v", res)
	}
	res, _ = d.Execute(context.Background(), "1", "my_bookings", "")
	if res.Text != "You have no upcoming bookings." {
		t.Fatalf("unexpected %q", res.Text)
	}
}

func TestHelpListsEveryCommand(t *testing.T) {
	d := newDispatcher()
	for _, name := range []string{"help", "/start"} {
		res, err := d.Execute(context.Background(), "", name, "")
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		usages, ok := res.Data.([]Usage)
		if !ok || len(usages) != len(d.Names()) {
			t.Fatalf("%s: data = %#v", name, res.Data)
		}
		for _, cmd := range d.Names() {
			if !strings.Contains(res.Text, "/"+cmd) {
				t.Errorf("%s: help text misses %s", name, cmd)
			}
		}
		if !strings.Contains(res.Text, "/add_slot service_id YYYY-MM-DD HH:MM") {
			t.Errorf("%s: help text lacks usage hints:\n%s", name, res.Text)
		}
	}
}
