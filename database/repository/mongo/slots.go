package mongoRepo

import (
	"context"
	"fmt"
	"time"

	"slotbook/database/repository"
	"slotbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var byStart = bson.D{{Key: "start", Value: 1}, {Key: "_id", Value: 1}}

func (s *Store) SlotByID(ctx context.Context, id int64) (*models.TimeSlot, error) {
	return findOne[models.TimeSlot](ctx, s.slots, bson.M{"_id": id})
}

func (s *Store) SlotsByService(ctx context.Context, serviceID int64) ([]models.TimeSlot, error) {
	return findAll[models.TimeSlot](ctx, s.slots, bson.M{"serviceId": serviceID}, options.Find().SetSort(byStart))
}

func (s *Store) SlotsByProvider(ctx context.Context, providerID int64) ([]models.SlotView, error) {
	services, err := s.ServicesByProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if len(services) == 0 {
		return []models.SlotView{}, nil
	}
	names := make(map[int64]string, len(services))
	serviceIDs := make([]int64, 0, len(services))
	for _, svc := range services {
		names[svc.ID] = svc.Name
		serviceIDs = append(serviceIDs, svc.ID)
	}

	slots, err := findAll[models.TimeSlot](ctx, s.slots, bson.M{"serviceId": bson.M{"$in": serviceIDs}}, options.Find().SetSort(byStart))
	if err != nil {
		return nil, err
	}
	slotIDs := make([]int64, 0, len(slots))
	for _, slot := range slots {
		slotIDs = append(slotIDs, slot.ID)
	}

	bySlot := map[int64]models.Booking{}
	if len(slotIDs) > 0 {
		bookings, err := findAll[models.Booking](ctx, s.bookings, bson.M{"slotId": bson.M{"$in": slotIDs}})
		if err != nil {
			return nil, err
		}
		for _, b := range bookings {
			bySlot[b.SlotID] = b
		}
	}

	views := make([]models.SlotView, 0, len(slots))
	for _, slot := range slots {
		view := models.SlotView{TimeSlot: slot, ServiceName: names[slot.ServiceID]}
		if b, ok := bySlot[slot.ID]; ok {
			view.Booking = &b
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *Store) AvailableSlots(ctx context.Context, serviceID int64, after time.Time, limit int) ([]models.TimeSlot, error) {
	filter := bson.M{
		"serviceId": serviceID,
		"available": true,
		"start":     bson.M{"$gt": after},
	}
	opts := options.Find().SetSort(byStart)
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return findAll[models.TimeSlot](ctx, s.slots, filter, opts)
}

func (s *Store) InsertSlot(ctx context.Context, slot *models.TimeSlot) error {
	id, err := s.nextID(ctx, "slots")
	if err != nil {
		return err
	}
	slot.ID = id
	return insert(ctx, s.slots, slot)
}

// ClaimSlot is a compare-and-swap on the availability flag: the update
// only matches while the slot is still open and in the future.
func (s *Store) ClaimSlot(ctx context.Context, slotID int64, now time.Time) (bool, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	filter := bson.M{
		"_id":       slotID,
		"available": true,
		"start":     bson.M{"$gt": now},
	}
	res, err := s.slots.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"available": false}})
	if err != nil {
		return false, fmt.Errorf("failed to claim slot %d: %w", slotID, err)
	}
	return res.MatchedCount == 1, nil
}

func (s *Store) ReleaseSlot(ctx context.Context, slotID int64) error {
	ctx, cancel := opContext(ctx)
	defer cancel()

	res, err := s.slots.UpdateOne(ctx, bson.M{"_id": slotID}, bson.M{"$set": bson.M{"available": true}})
	if err != nil {
		return fmt.Errorf("failed to release slot %d: %w", slotID, err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
