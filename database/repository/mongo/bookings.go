package mongoRepo

import (
	"context"
	"fmt"
	"time"

	"slotbook/database/repository"
	"slotbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// bookingViews joins bookings matching filter with their slot, service and
// provider. slotFilter, when set, is applied after the slot join.
func bookingViews(filter bson.D, slotFilter bson.D) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		lookupOne("slots", "slotId", "slot"),
		unwind("slot"),
	}
	if len(slotFilter) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: slotFilter}})
	}
	return append(pipeline,
		lookupOne("services", "slot.serviceId", "service"),
		unwind("service"),
		lookupOne("providers", "service.providerId", "provider"),
		unwind("provider"),
		bson.D{{Key: "$sort", Value: bson.D{{Key: "slot.start", Value: 1}, {Key: "_id", Value: 1}}}},
	)
}

func (s *Store) BookingByID(ctx context.Context, id int64) (*models.Booking, error) {
	return findOne[models.Booking](ctx, s.bookings, bson.M{"_id": id})
}

func (s *Store) BookingDetails(ctx context.Context, id int64) (*models.BookingView, error) {
	views, err := aggregate[models.BookingView](ctx, s.bookings, bookingViews(bson.D{{Key: "_id", Value: id}}, nil))
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, repository.ErrNotFound
	}
	return &views[0], nil
}

func (s *Store) UpcomingBookings(ctx context.Context, clientID string, after time.Time) ([]models.BookingView, error) {
	filter := bson.D{
		{Key: "clientId", Value: clientID},
		{Key: "status", Value: models.BookingConfirmed},
	}
	slotFilter := bson.D{{Key: "slot.start", Value: bson.D{{Key: "$gt", Value: after}}}}
	return aggregate[models.BookingView](ctx, s.bookings, bookingViews(filter, slotFilter))
}

func (s *Store) InsertBooking(ctx context.Context, b *models.Booking) error {
	id, err := s.nextID(ctx, "bookings")
	if err != nil {
		return err
	}
	b.ID = id
	return insert(ctx, s.bookings, b)
}

func (s *Store) DeleteBooking(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	res, err := s.bookings.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("failed to delete booking %d: %w", id, err)
	}
	return res.DeletedCount == 1, nil
}
