package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	memoryRepo "slotbook/database/repository/memory"
	"slotbook/services/apperr"

	"go.uber.org/zap"
)

type countingCache struct{ calls int }

func (c *countingCache) InvalidatePublic(context.Context) { c.calls++ }

func newTestService() (*DefaultProviderService, *memoryRepo.Store, *countingCache) {
	store := memoryRepo.New()
	cache := &countingCache{}
	svc := &DefaultProviderService{
		Store:  store,
		Cache:  cache,
		Logger: zap.NewNop(),
		Now:    func() time.Time { return time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC) },
	}
	return svc, store, cache
}

func TestRegisterProviderTwiceKeepsOneRecord(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	p, err := svc.RegisterProvider(ctx, "100", "Jane's Salon")
	if err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if !p.Active || p.ID == 0 {
		t.Fatalf("unexpected provider %+v", p)
	}

	for i := 0; i < 2; i++ {
		if _, err := svc.RegisterProvider(ctx, "100", "Other Name"); !errors.Is(err, apperr.ErrAlreadyRegistered) {
			t.Fatalf("attempt %d: expected AlreadyRegistered, got %v", i, err)
		}
	}

	stored, err := store.ProviderByExternalID(ctx, "100")
	if err != nil {
		t.Fatal(err)
	}
	if stored.ID != p.ID || stored.Name != "Jane's Salon" {
		t.Fatalf("stored provider changed: %+v", stored)
	}
}

func TestRegisterProviderValidation(t *testing.T) {
	svc, _, _ := newTestService()
	cases := []struct {
		name, externalID, providerName string
	}{
		{"missing identity", "", "Salon"},
		{"blank name", "1", "   "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.RegisterProvider(context.Background(), tc.externalID, tc.providerName)
			if apperr.KindOf(err) != apperr.KindValidation {
				t.Fatalf("expected validation failure, got %v", err)
			}
		})
	}
}

func TestFindActiveProvider(t *testing.T) {
	svc, _, cache := newTestService()
	ctx := context.Background()

	if _, err := svc.FindActiveProvider(ctx, "7"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected NotFound for unknown identity, got %v", err)
	}

	p, err := svc.RegisterProvider(ctx, "7", "Barber")
	if err != nil {
		t.Fatal(err)
	}
	if got, err := svc.FindActiveProvider(ctx, "7"); err != nil || got.ID != p.ID {
		t.Fatalf("FindActiveProvider = %+v, %v", got, err)
	}

	if _, err := svc.SetProviderActive(ctx, p.ID, false); err != nil {
		t.Fatal(err)
	}
	if cache.calls != 1 {
		t.Fatalf("expected one cache invalidation, got %d", cache.calls)
	}
	if _, err := svc.FindActiveProvider(ctx, "7"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected NotFound for inactive provider, got %v", err)
	}
}

func TestSetProviderActiveUnknown(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.SetProviderActive(context.Background(), 99, true); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestRequireActive(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	if _, err := RequireActive(ctx, store, "nobody"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected Unauthorized, got %v", err)
	}
	p, _ := svc.RegisterProvider(ctx, "5", "Spa")
	if _, err := RequireActive(ctx, store, "5"); err != nil {
		t.Fatalf("active provider rejected: %v", err)
	}
	_, _ = svc.SetProviderActive(ctx, p.ID, false)
	if _, err := RequireActive(ctx, store, "5"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected Unauthorized for inactive provider, got %v", err)
	}
}

func TestTranslateHidesStoreErrors(t *testing.T) {
	err := Translate(zap.NewNop(), "op", errors.New("connection reset"))
	if !errors.Is(err, apperr.ErrStoreUnavailable) {
		t.Fatalf("expected StoreUnavailable, got %v", err)
	}
	if named := Translate(zap.NewNop(), "op", apperr.ErrOverlap); named != apperr.ErrOverlap {
		t.Fatalf("named failure should pass through, got %v", named)
	}
}
