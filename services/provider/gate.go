package provider

import (
	"context"
	"errors"

	"slotbook/database/repository"
	"slotbook/models"
	"slotbook/services/apperr"

	"go.uber.org/zap"
)

// RequireActive is the gate every provider-side operation passes first.
// It runs against whatever reader the caller holds, usually the open
// transaction.
func RequireActive(ctx context.Context, r repository.Reader, externalID string) (*models.Provider, error) {
	p, err := r.ProviderByExternalID(ctx, externalID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, apperr.ErrUnauthorized
	}
	return p, nil
}

// Translate turns whatever came out of a store call into a named failure.
// Named failures pass through; anything else is logged and reported as
// StoreUnavailable.
func Translate(logger *zap.Logger, op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	logger.Error("Store operation failed", zap.String("op", op), zap.Error(err))
	return apperr.Transient(err)
}
