package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"slotbook/database/repository"
	memoryRepo "slotbook/database/repository/memory"
	"slotbook/models"
	"slotbook/services/apperr"
	"slotbook/services/provider"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

var testNow = time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return testNow }

type fixture struct {
	store     *memoryRepo.Store
	providers *provider.DefaultProviderService
	catalog   *DefaultCatalogService
}

func newFixture(t *testing.T, cache PublicCache) *fixture {
	t.Helper()
	store := memoryRepo.New()
	return &fixture{
		store:     store,
		providers: &provider.DefaultProviderService{Store: store, Cache: cache, Logger: zap.NewNop(), Now: clock},
		catalog:   &DefaultCatalogService{Store: store, Cache: cache, Logger: zap.NewNop(), Now: clock},
	}
}

func (f *fixture) register(t *testing.T, externalID, name string) *models.Provider {
	t.Helper()
	p, err := f.providers.RegisterProvider(context.Background(), externalID, name)
	if err != nil {
		t.Fatalf("register %s: %v", externalID, err)
	}
	return p
}

func (f *fixture) add(t *testing.T, externalID string, in ServiceInput) *models.Service {
	t.Helper()
	svc, err := f.catalog.AddService(context.Background(), externalID, in)
	if err != nil {
		t.Fatalf("add service %q: %v", in.Name, err)
	}
	return svc
}

func TestAddServiceDefaultsAndValidation(t *testing.T) {
	f := newFixture(t, nil)
	p := f.register(t, "1", "Salon")

	svc := f.add(t, "1", ServiceInput{Name: " Haircut ", DurationMinutes: 30})
	if svc.ProviderID != p.ID || svc.Name != "Haircut" || svc.Description != "" || svc.Price != 0 {
		t.Fatalf("unexpected service %+v", svc)
	}

	cases := []struct {
		name string
		in   ServiceInput
	}{
		{"empty name", ServiceInput{Name: " ", DurationMinutes: 30}},
		{"zero duration", ServiceInput{Name: "Cut", DurationMinutes: 0}},
		{"duration past a week", ServiceInput{Name: "Cut", DurationMinutes: MaxDurationMinutes + 1}},
		{"overflowing duration", ServiceInput{Name: "Cut", DurationMinutes: 200_000_000}},
		{"negative price", ServiceInput{Name: "Cut", DurationMinutes: 30, Price: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.catalog.AddService(context.Background(), "1", tc.in)
			if !errors.Is(err, apperr.ErrInvalidInput) {
				t.Fatalf("expected InvalidInput, got %v", err)
			}
		})
	}

	services, _ := f.catalog.ListServices(context.Background(), "1")
	if len(services) != 1 {
		t.Fatalf("invalid input must not be stored, have %d services", len(services))
	}
}

func TestAddServiceRequiresActiveProvider(t *testing.T) {
	f := newFixture(t, nil)
	if _, err := f.catalog.AddService(context.Background(), "ghost", ServiceInput{Name: "Cut", DurationMinutes: 30}); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected Unauthorized, got %v", err)
	}
}

func TestListServicesInCreationOrder(t *testing.T) {
	f := newFixture(t, nil)
	f.register(t, "1", "Salon")
	f.register(t, "2", "Other")
	a := f.add(t, "1", ServiceInput{Name: "Zeta", DurationMinutes: 30})
	f.add(t, "2", ServiceInput{Name: "Foreign", DurationMinutes: 30})
	b := f.add(t, "1", ServiceInput{Name: "Alpha", DurationMinutes: 45})

	services, err := f.catalog.ListServices(context.Background(), "1")
	if err != nil {
		t.Fatal(err)
	}
	if len(services) != 2 || services[0].ID != a.ID || services[1].ID != b.ID {
		t.Fatalf("unexpected listing %+v", services)
	}
}

func TestListPublicServicesOrderingAndVisibility(t *testing.T) {
	f := newFixture(t, nil)
	f.register(t, "1", "Zed's Barbers")
	hidden := f.register(t, "2", "Hidden Spa")
	f.register(t, "3", "Anna's Nails")
	f.add(t, "1", ServiceInput{Name: "Shave", DurationMinutes: 15})
	f.add(t, "1", ServiceInput{Name: "Beard trim", DurationMinutes: 20})
	f.add(t, "2", ServiceInput{Name: "Massage", DurationMinutes: 60})
	f.add(t, "3", ServiceInput{Name: "Manicure", DurationMinutes: 40})

	if _, err := f.providers.SetProviderActive(context.Background(), hidden.ID, false); err != nil {
		t.Fatal(err)
	}

	services, err := f.catalog.ListPublicServices(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Anna's Nails/Manicure", "Zed's Barbers/Beard trim", "Zed's Barbers/Shave"}
	if len(services) != len(want) {
		t.Fatalf("got %d services, want %d", len(services), len(want))
	}
	for i, s := range services {
		if got := s.ProviderName + "/" + s.Name; got != want[i] {
			t.Errorf("position %d: got %s, want %s", i, got, want[i])
		}
	}
}

func TestUpdateServiceKeepsExistingSlotEnds(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.register(t, "1", "Salon")
	svc := f.add(t, "1", ServiceInput{Name: "Cut", DurationMinutes: 60})

	start := time.Date(2024, 7, 15, 10, 0, 0, 0, time.UTC)
	slot := &models.TimeSlot{ServiceID: svc.ID, Start: start, End: start.Add(time.Hour), Available: true}
	if err := f.store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		return tx.InsertSlot(ctx, slot)
	}); err != nil {
		t.Fatal(err)
	}

	duration := 90
	name := "Long cut"
	updated, err := f.catalog.UpdateService(ctx, "1", svc.ID, models.ServicePatch{DurationMinutes: &duration, Name: &name})
	if err != nil {
		t.Fatal(err)
	}
	if updated.DurationMinutes != 90 || updated.Name != "Long cut" {
		t.Fatalf("patch not applied: %+v", updated)
	}

	stored, err := f.store.SlotByID(ctx, slot.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !stored.End.Equal(start.Add(time.Hour)) {
		t.Fatalf("slot end was rewritten to %v", stored.End)
	}

	for _, bad := range []int{0, MaxDurationMinutes + 1, 200_000_000} {
		if _, err := f.catalog.UpdateService(ctx, "1", svc.ID, models.ServicePatch{DurationMinutes: &bad}); !errors.Is(err, apperr.ErrInvalidInput) {
			t.Fatalf("duration %d: expected InvalidInput, got %v", bad, err)
		}
	}
}

func TestUpdateAndDeleteRequireOwnership(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.register(t, "1", "Salon")
	f.register(t, "2", "Rival")
	svc := f.add(t, "1", ServiceInput{Name: "Cut", DurationMinutes: 30})

	name := "Stolen"
	if _, err := f.catalog.UpdateService(ctx, "2", svc.ID, models.ServicePatch{Name: &name}); !errors.Is(err, apperr.ErrNotOwned) {
		t.Fatalf("update: expected NotOwned, got %v", err)
	}
	if _, err := f.catalog.DeleteService(ctx, "2", svc.ID); !errors.Is(err, apperr.ErrNotOwned) {
		t.Fatalf("delete: expected NotOwned, got %v", err)
	}
	if _, err := f.catalog.DeleteService(ctx, "1", 9999); !errors.Is(err, apperr.ErrNotOwned) {
		t.Fatalf("delete missing: expected NotOwned, got %v", err)
	}
}

func TestDeleteServiceCascades(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.register(t, "1", "Salon")
	svc := f.add(t, "1", ServiceInput{Name: "Cut", DurationMinutes: 30})

	start := time.Date(2024, 7, 15, 10, 0, 0, 0, time.UTC)
	slot := &models.TimeSlot{ServiceID: svc.ID, Start: start, End: start.Add(30 * time.Minute)}
	booking := &models.Booking{ClientID: "c1", CreatedAt: testNow, Status: models.BookingConfirmed}
	if err := f.store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := tx.InsertSlot(ctx, slot); err != nil {
			return err
		}
		booking.SlotID = slot.ID
		return tx.InsertBooking(ctx, booking)
	}); err != nil {
		t.Fatal(err)
	}

	removed, err := f.catalog.DeleteService(ctx, "1", svc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Fatalf("removed %d bookings, want 1", removed)
	}
	if _, err := f.store.SlotByID(ctx, slot.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("slot survived delete: %v", err)
	}
	if _, err := f.store.BookingByID(ctx, booking.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("booking survived delete: %v", err)
	}
}

func TestPublicServicesServedFromRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := NewRedisCache(client, time.Minute)
	f := newFixture(t, cache)
	ctx := context.Background()
	f.register(t, "1", "Salon")
	f.add(t, "1", ServiceInput{Name: "Cut", DurationMinutes: 30})

	first, err := f.catalog.ListPublicServices(ctx)
	if err != nil || len(first) != 1 {
		t.Fatalf("first listing: %v %v", first, err)
	}
	if !mr.Exists(publicServicesKey) {
		t.Fatal("listing was not cached")
	}
	if ttl := mr.TTL(publicServicesKey); ttl != time.Minute {
		t.Fatalf("ttl = %v", ttl)
	}

	// A write that bypasses the service leaves the cached copy in place.
	if err := f.store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		p, _ := tx.ProviderByExternalID(ctx, "1")
		return tx.InsertService(ctx, &models.Service{ProviderID: p.ID, Name: "Shadow", DurationMinutes: 10})
	}); err != nil {
		t.Fatal(err)
	}
	cached, _ := f.catalog.ListPublicServices(ctx)
	if len(cached) != 1 {
		t.Fatalf("expected cached listing, got %d services", len(cached))
	}

	f.add(t, "1", ServiceInput{Name: "Dye", DurationMinutes: 90})
	if mr.Exists(publicServicesKey) {
		t.Fatal("AddService did not invalidate the cache")
	}
	fresh, _ := f.catalog.ListPublicServices(ctx)
	if len(fresh) != 3 {
		t.Fatalf("expected 3 services after invalidation, got %d", len(fresh))
	}
}

func TestRedisCacheOutageFallsThrough(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	f := newFixture(t, NewRedisCache(client, time.Minute))
	f.register(t, "1", "Salon")
	mr.Close()

	f.add(t, "1", ServiceInput{Name: "Cut", DurationMinutes: 30})
	services, err := f.catalog.ListPublicServices(context.Background())
	if err != nil || len(services) != 1 {
		t.Fatalf("expected store fallback, got %v %v", services, err)
	}
}

// racingStore runs a catalog write while a public listing is in flight.
type racingStore struct {
	*memoryRepo.Store
	during func()
}

func (s *racingStore) PublicServices(ctx context.Context) ([]models.PublicService, error) {
	services, err := s.Store.PublicServices(ctx)
	if s.during != nil {
		s.during()
		s.during = nil
	}
	return services, err
}

func TestStaleListingIsNotCachedAfterInvalidation(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := NewRedisCache(client, time.Minute)
	f := newFixture(t, cache)
	ctx := context.Background()
	p := f.register(t, "1", "Salon")
	f.add(t, "1", ServiceInput{Name: "Cut", DurationMinutes: 30})

	store := &racingStore{Store: f.store}
	store.during = func() {
		if _, err := f.providers.SetProviderActive(ctx, p.ID, false); err != nil {
			t.Errorf("deactivate: %v", err)
		}
	}
	reader := &DefaultCatalogService{Store: store, Cache: cache, Logger: zap.NewNop(), Now: clock}

	stale, err := reader.ListPublicServices(ctx)
	if err != nil || len(stale) != 1 {
		t.Fatalf("in-flight listing: %v %v", stale, err)
	}
	if mr.Exists(publicServicesKey) {
		t.Fatal("listing read before the invalidation was cached")
	}
	fresh, err := f.catalog.ListPublicServices(ctx)
	if err != nil || len(fresh) != 0 {
		t.Fatalf("expected the inactive provider to be hidden, got %v %v", fresh, err)
	}
	if !mr.Exists(publicServicesKey) {
		t.Fatal("listing taken after the invalidation should be cached")
	}
}

func TestRedisCacheSetPublicChecksGeneration(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := NewRedisCache(client, time.Minute)
	ctx := context.Background()

	gen, ok := cache.Generation(ctx)
	if !ok || gen != 0 {
		t.Fatalf("generation = %d %v", gen, ok)
	}
	cache.InvalidatePublic(ctx)
	cache.SetPublic(ctx, gen, []models.PublicService{{ProviderName: "Old"}})
	if mr.Exists(publicServicesKey) {
		t.Fatal("write with an outdated generation was stored")
	}

	gen, _ = cache.Generation(ctx)
	if gen != 1 {
		t.Fatalf("generation after invalidation = %d", gen)
	}
	cache.SetPublic(ctx, gen, []models.PublicService{{ProviderName: "New"}})
	got, ok := cache.GetPublic(ctx)
	if !ok || len(got) != 1 || got[0].ProviderName != "New" {
		t.Fatalf("cached = %+v %v", got, ok)
	}
}
