package provider

import (
	"context"
	"time"

	"slotbook/database/repository"
	"slotbook/models"
	"slotbook/utils"

	"go.uber.org/zap"
)

// CacheInvalidator is told when the set of publicly visible services may
// have changed.
type CacheInvalidator interface {
	InvalidatePublic(ctx context.Context)
}

// ProviderService maps external actor identities to provider records.
type ProviderService interface {
	RegisterProvider(ctx context.Context, externalID, name string) (*models.Provider, error)
	FindActiveProvider(ctx context.Context, externalID string) (*models.Provider, error)
	SetProviderActive(ctx context.Context, providerID int64, active bool) (*models.Provider, error)
}

// DefaultProviderService is the production implementation.
type DefaultProviderService struct {
	Store  repository.Store
	Cache  CacheInvalidator
	Logger *zap.Logger
	Now    func() time.Time
}

func NewDefaultProviderService(store repository.Store, cache CacheInvalidator) *DefaultProviderService {
	return &DefaultProviderService{Store: store, Cache: cache}
}

func (s *DefaultProviderService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return utils.GetLogger()
}

func (s *DefaultProviderService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
