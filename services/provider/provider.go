package provider

import (
	"context"
	"errors"
	"strings"

	"slotbook/database/repository"
	"slotbook/models"
	"slotbook/services/apperr"

	"go.uber.org/zap"
)

// RegisterProvider creates an active provider for externalID. A second
// registration of the same identity fails every time and stores nothing.
func (s *DefaultProviderService) RegisterProvider(ctx context.Context, externalID, name string) (*models.Provider, error) {
	externalID = strings.TrimSpace(externalID)
	name = strings.TrimSpace(name)
	if externalID == "" {
		return nil, apperr.Invalid("an actor identity is required")
	}
	if name == "" {
		return nil, apperr.Invalid("provider name is required, e.g. register_provider Jane's Salon")
	}

	p := &models.Provider{
		ExternalID: externalID,
		Name:       name,
		Active:     true,
		CreatedAt:  s.now().UTC(),
	}
	err := s.Store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if _, err := tx.ProviderByExternalID(ctx, externalID); err == nil {
			return apperr.ErrAlreadyRegistered
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		return tx.InsertProvider(ctx, p)
	})
	if errors.Is(err, repository.ErrDuplicate) {
		err = apperr.ErrAlreadyRegistered
	}
	if err != nil {
		return nil, Translate(s.logger(), "register provider", err)
	}

	s.logger().Info("Provider registered", zap.Int64("providerID", p.ID), zap.String("externalID", externalID))
	return p, nil
}

// FindActiveProvider returns the active provider behind externalID or
// apperr.ErrNotFound.
func (s *DefaultProviderService) FindActiveProvider(ctx context.Context, externalID string) (*models.Provider, error) {
	p, err := s.Store.ProviderByExternalID(ctx, externalID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && !p.Active) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, Translate(s.logger(), "find provider", err)
	}
	return p, nil
}

// SetProviderActive flips the active flag. Deactivation hides the
// provider's services and slots from clients.
func (s *DefaultProviderService) SetProviderActive(ctx context.Context, providerID int64, active bool) (*models.Provider, error) {
	var p *models.Provider
	err := s.Store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := tx.SetProviderActive(ctx, providerID, active); err != nil {
			return err
		}
		var err error
		p, err = tx.ProviderByID(ctx, providerID)
		return err
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.With(apperr.ErrNotFound, "provider %d not found", providerID)
	}
	if err != nil {
		return nil, Translate(s.logger(), "set provider active", err)
	}
	if s.Cache != nil {
		s.Cache.InvalidatePublic(ctx)
	}
	s.logger().Info("Provider active flag changed", zap.Int64("providerID", providerID), zap.Bool("active", active))
	return p, nil
}
