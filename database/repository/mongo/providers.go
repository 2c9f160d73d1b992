package mongoRepo

import (
	"context"
	"fmt"

	"slotbook/database/repository"
	"slotbook/models"

	"go.mongodb.org/mongo-driver/bson"
)

func (s *Store) ProviderByID(ctx context.Context, id int64) (*models.Provider, error) {
	return findOne[models.Provider](ctx, s.providers, bson.M{"_id": id})
}

func (s *Store) ProviderByExternalID(ctx context.Context, externalID string) (*models.Provider, error) {
	return findOne[models.Provider](ctx, s.providers, bson.M{"externalId": externalID})
}

func (s *Store) InsertProvider(ctx context.Context, p *models.Provider) error {
	id, err := s.nextID(ctx, "providers")
	if err != nil {
		return err
	}
	p.ID = id
	return insert(ctx, s.providers, p)
}

func (s *Store) SetProviderActive(ctx context.Context, id int64, active bool) error {
	ctx, cancel := opContext(ctx)
	defer cancel()

	res, err := s.providers.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"active": active}})
	if err != nil {
		return fmt.Errorf("failed to update provider %d: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
