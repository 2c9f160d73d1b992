package catalog

import (
	"context"
	"errors"
	"math"
	"strings"

	"slotbook/database/repository"
	"slotbook/models"
	"slotbook/services/apperr"
	"slotbook/services/provider"

	"go.uber.org/zap"
)

// MaxDurationMinutes bounds a service to one week so slot ends stay well
// inside time.Duration range.
const MaxDurationMinutes = 7 * 24 * 60

// Validate checks the fields every service must satisfy.
func Validate(name string, durationMinutes int, price float64) error {
	if strings.TrimSpace(name) == "" {
		return apperr.Invalid("service name must not be empty")
	}
	if durationMinutes <= 0 {
		return apperr.Invalid("duration must be a positive number of minutes")
	}
	if durationMinutes > MaxDurationMinutes {
		return apperr.Invalid("duration must not exceed %d minutes", MaxDurationMinutes)
	}
	if price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return apperr.Invalid("price must be a number greater than or equal to 0")
	}
	return nil
}

func (s *DefaultCatalogService) AddService(ctx context.Context, externalID string, in ServiceInput) (*models.Service, error) {
	if err := Validate(in.Name, in.DurationMinutes, in.Price); err != nil {
		return nil, err
	}
	svc := &models.Service{
		Name:            strings.TrimSpace(in.Name),
		Description:     strings.TrimSpace(in.Description),
		DurationMinutes: in.DurationMinutes,
		Price:           in.Price,
		CreatedAt:       s.now().UTC(),
	}
	err := s.Store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		p, err := provider.RequireActive(ctx, tx, externalID)
		if err != nil {
			return err
		}
		svc.ProviderID = p.ID
		return tx.InsertService(ctx, svc)
	})
	if err != nil {
		return nil, provider.Translate(s.logger(), "add service", err)
	}
	s.invalidate(ctx)
	s.logger().Info("Service added", zap.Int64("serviceID", svc.ID), zap.Int64("providerID", svc.ProviderID))
	return svc, nil
}

// ListServices returns the caller's services in creation order.
func (s *DefaultCatalogService) ListServices(ctx context.Context, externalID string) ([]models.Service, error) {
	p, err := provider.RequireActive(ctx, s.Store, externalID)
	if err != nil {
		return nil, provider.Translate(s.logger(), "list services", err)
	}
	services, err := s.Store.ServicesByProvider(ctx, p.ID)
	if err != nil {
		return nil, provider.Translate(s.logger(), "list services", err)
	}
	return services, nil
}

// ListPublicServices returns every service of an active provider ordered
// by provider name, then service name. Served from the cache when one is
// configured.
func (s *DefaultCatalogService) ListPublicServices(ctx context.Context) ([]models.PublicService, error) {
	var (
		generation int64
		cacheable  bool
	)
	if s.Cache != nil {
		if cached, ok := s.Cache.GetPublic(ctx); ok {
			return cached, nil
		}
		generation, cacheable = s.Cache.Generation(ctx)
	}
	services, err := s.Store.PublicServices(ctx)
	if err != nil {
		return nil, provider.Translate(s.logger(), "list public services", err)
	}
	if cacheable {
		s.Cache.SetPublic(ctx, generation, services)
	}
	return services, nil
}

// ownedService loads serviceID and checks it belongs to p.
func ownedService(ctx context.Context, r repository.Reader, p *models.Provider, serviceID int64) (*models.Service, error) {
	svc, err := r.ServiceByID(ctx, serviceID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.ErrNotOwned
	}
	if err != nil {
		return nil, err
	}
	if svc.ProviderID != p.ID {
		return nil, apperr.ErrNotOwned
	}
	return svc, nil
}

// OwnedService is the ownership gate shared with the slot ledger.
func OwnedService(ctx context.Context, r repository.Reader, externalID string, serviceID int64) (*models.Provider, *models.Service, error) {
	p, err := provider.RequireActive(ctx, r, externalID)
	if err != nil {
		return nil, nil, err
	}
	svc, err := ownedService(ctx, r, p, serviceID)
	if err != nil {
		return nil, nil, err
	}
	return p, svc, nil
}

// UpdateService applies patch to an owned service. Existing slots keep the
// end they were created with even when the duration changes.
func (s *DefaultCatalogService) UpdateService(ctx context.Context, externalID string, serviceID int64, patch models.ServicePatch) (*models.Service, error) {
	var updated *models.Service
	err := s.Store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		_, svc, err := OwnedService(ctx, tx, externalID, serviceID)
		if err != nil {
			return err
		}
		next := *svc
		if patch.Name != nil {
			next.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Description != nil {
			next.Description = strings.TrimSpace(*patch.Description)
		}
		if patch.DurationMinutes != nil {
			next.DurationMinutes = *patch.DurationMinutes
		}
		if patch.Price != nil {
			next.Price = *patch.Price
		}
		if err := Validate(next.Name, next.DurationMinutes, next.Price); err != nil {
			return err
		}
		if err := tx.UpdateService(ctx, &next); err != nil {
			return err
		}
		updated = &next
		return nil
	})
	if err != nil {
		return nil, provider.Translate(s.logger(), "update service", err)
	}
	s.invalidate(ctx)
	return updated, nil
}

// DeleteService removes an owned service together with its slots and their
// bookings, and reports how many bookings were dropped.
func (s *DefaultCatalogService) DeleteService(ctx context.Context, externalID string, serviceID int64) (int64, error) {
	var removed int64
	err := s.Store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if _, _, err := OwnedService(ctx, tx, externalID, serviceID); err != nil {
			return err
		}
		var err error
		removed, err = tx.DeleteService(ctx, serviceID)
		return err
	})
	if err != nil {
		return 0, provider.Translate(s.logger(), "delete service", err)
	}
	s.invalidate(ctx)
	s.logger().Info("Service deleted",
		zap.Int64("serviceID", serviceID),
		zap.Int64("bookingsRemoved", removed),
	)
	return removed, nil
}
