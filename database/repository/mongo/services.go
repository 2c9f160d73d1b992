package mongoRepo

import (
	"context"
	"fmt"

	"slotbook/database/repository"
	"slotbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *Store) ServiceByID(ctx context.Context, id int64) (*models.Service, error) {
	return findOne[models.Service](ctx, s.services, bson.M{"_id": id})
}

func (s *Store) ServicesByProvider(ctx context.Context, providerID int64) ([]models.Service, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	return findAll[models.Service](ctx, s.services, bson.M{"providerId": providerID}, opts)
}

func (s *Store) PublicServices(ctx context.Context) ([]models.PublicService, error) {
	pipeline := mongo.Pipeline{
		lookupOne("providers", "providerId", "provider"),
		unwind("provider"),
		{{Key: "$match", Value: bson.D{{Key: "provider.active", Value: true}}}},
		{{Key: "$set", Value: bson.D{{Key: "providerName", Value: "$provider.name"}}}},
		{{Key: "$unset", Value: "provider"}},
		{{Key: "$sort", Value: bson.D{
			{Key: "providerName", Value: 1},
			{Key: "name", Value: 1},
			{Key: "_id", Value: 1},
		}}},
	}
	return aggregate[models.PublicService](ctx, s.services, pipeline)
}

func (s *Store) InsertService(ctx context.Context, svc *models.Service) error {
	id, err := s.nextID(ctx, "services")
	if err != nil {
		return err
	}
	svc.ID = id
	return insert(ctx, s.services, svc)
}

func (s *Store) UpdateService(ctx context.Context, svc *models.Service) error {
	ctx, cancel := opContext(ctx)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"name":            svc.Name,
		"description":     svc.Description,
		"durationMinutes": svc.DurationMinutes,
		"price":           svc.Price,
	}}
	res, err := s.services.UpdateOne(ctx, bson.M{"_id": svc.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update service %d: %w", svc.ID, err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteService walks the ownership chain by hand: bookings of the
// service's slots, then the slots, then the service.
func (s *Store) DeleteService(ctx context.Context, id int64) (int64, error) {
	if _, err := s.ServiceByID(ctx, id); err != nil {
		return 0, err
	}
	slots, err := findAll[models.TimeSlot](ctx, s.slots, bson.M{"serviceId": id},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return 0, err
	}
	slotIDs := make([]int64, 0, len(slots))
	for _, slot := range slots {
		slotIDs = append(slotIDs, slot.ID)
	}

	ctx, cancel := opContext(ctx)
	defer cancel()

	var removed int64
	if len(slotIDs) > 0 {
		res, err := s.bookings.DeleteMany(ctx, bson.M{"slotId": bson.M{"$in": slotIDs}})
		if err != nil {
			return 0, fmt.Errorf("failed to delete bookings of service %d: %w", id, err)
		}
		removed = res.DeletedCount
	}
	if _, err := s.slots.DeleteMany(ctx, bson.M{"serviceId": id}); err != nil {
		return 0, fmt.Errorf("failed to delete slots of service %d: %w", id, err)
	}
	if _, err := s.services.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return 0, fmt.Errorf("failed to delete service %d: %w", id, err)
	}
	return removed, nil
}

// LockService bumps a counter on the service document. Two transactions
// inserting slots for the same service both write this document, so the
// server lets only one of them commit and the other is retried against the
// committed slots.
func (s *Store) LockService(ctx context.Context, id int64) error {
	ctx, cancel := opContext(ctx)
	defer cancel()

	res, err := s.services.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"slotLock": int64(1)}})
	if err != nil {
		return fmt.Errorf("failed to lock service %d: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
