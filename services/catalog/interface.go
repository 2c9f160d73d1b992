package catalog

import (
	"context"
	"time"

	"slotbook/database/repository"
	"slotbook/models"
	"slotbook/utils"

	"go.uber.org/zap"
)

// ServiceInput is what a provider submits for a new service. Description
// defaults to "" and Price to 0.
type ServiceInput struct {
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	DurationMinutes int     `json:"durationMinutes"`
	Price           float64 `json:"price"`
}

// CatalogService manages the services providers offer.
type CatalogService interface {
	AddService(ctx context.Context, externalID string, in ServiceInput) (*models.Service, error)
	ListServices(ctx context.Context, externalID string) ([]models.Service, error)
	ListPublicServices(ctx context.Context) ([]models.PublicService, error)
	UpdateService(ctx context.Context, externalID string, serviceID int64, patch models.ServicePatch) (*models.Service, error)
	DeleteService(ctx context.Context, externalID string, serviceID int64) (int64, error)
}

// DefaultCatalogService is the production implementation. Cache is
// optional.
type DefaultCatalogService struct {
	Store  repository.Store
	Cache  PublicCache
	Logger *zap.Logger
	Now    func() time.Time
}

func NewDefaultCatalogService(store repository.Store, cache PublicCache) *DefaultCatalogService {
	return &DefaultCatalogService{Store: store, Cache: cache}
}

func (s *DefaultCatalogService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return utils.GetLogger()
}

func (s *DefaultCatalogService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultCatalogService) invalidate(ctx context.Context) {
	if s.Cache != nil {
		s.Cache.InvalidatePublic(ctx)
	}
}
