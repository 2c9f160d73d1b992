package mongoRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the unique keys the engine relies on plus the
// indexes behind its listing queries. Creating them also creates the
// collections, which transactions cannot always do on their own.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	plan := map[*mongo.Collection][]mongo.IndexModel{
		s.providers: {
			{
				Keys:    bson.D{{Key: "externalId", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("unique_external_id"),
			},
			{
				Keys:    bson.D{{Key: "active", Value: 1}, {Key: "name", Value: 1}},
				Options: options.Index().SetName("active_name_idx"),
			},
		},
		s.services: {
			{
				Keys:    bson.D{{Key: "providerId", Value: 1}, {Key: "_id", Value: 1}},
				Options: options.Index().SetName("provider_idx"),
			},
		},
		s.slots: {
			// One slot per start time and service.
			{
				Keys:    bson.D{{Key: "serviceId", Value: 1}, {Key: "start", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("unique_service_start"),
			},
			{
				Keys:    bson.D{{Key: "serviceId", Value: 1}, {Key: "available", Value: 1}, {Key: "start", Value: 1}},
				Options: options.Index().SetName("service_available_start_idx"),
			},
		},
		s.bookings: {
			// A slot hosts at most one booking.
			{
				Keys:    bson.D{{Key: "slotId", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("unique_slot"),
			},
			{
				Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "status", Value: 1}},
				Options: options.Index().SetName("client_status_idx"),
			},
		},
	}

	for coll, models := range plan {
		if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", coll.Name(), err)
		}
	}
	return nil
}
