// Package mongoRepo stores the reservation engine in MongoDB. Every
// mutating operation runs inside a multi-document transaction, so the
// deployment must be a replica set.
package mongoRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"slotbook/database/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

const opTimeout = 5 * time.Second

type Store struct {
	client    *mongo.Client
	providers *mongo.Collection
	services  *mongo.Collection
	slots     *mongo.Collection
	bookings  *mongo.Collection
	counters  *mongo.Collection
}

var _ repository.Store = (*Store)(nil)

// NewStore constructs a Store over the named database.
func NewStore(client *mongo.Client, dbName string) *Store {
	db := client.Database(dbName)
	return &Store{
		client:    client,
		providers: db.Collection("providers"),
		services:  db.Collection("services"),
		slots:     db.Collection("slots"),
		bookings:  db.Collection("bookings"),
		counters:  db.Collection("counters"),
	}
}

// WithTx runs fn in a transaction. The driver retries fn from the start
// when the server reports a transient transaction error such as a write
// conflict, so two racing reservations end with the loser re-reading the
// committed state.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, s)
	}, txnOpts)
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// nextID hands out sequential ids from the counters collection. It runs
// outside any caller transaction so concurrent inserts do not conflict on
// the counter document; ids burnt by an aborted transaction are not reused.
// The caller's cancellation and values still apply.
func (s *Store) nextID(ctx context.Context, name string) (int64, error) {
	ctx, cancel := opContext(withoutSession(ctx))
	defer cancel()

	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate %s id: %w", name, err)
	}
	return doc.Seq, nil
}

// withoutSession hides any session carried by ctx, so operations run on an
// implicit session instead of joining the caller's transaction.
func withoutSession(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, nil)
}

func opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, opTimeout)
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter any) (*T, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	var out T
	if err := coll.FindOne(ctx, filter).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query %s: %w", coll.Name(), err)
	}
	return &out, nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter any, opts ...*options.FindOptions) ([]T, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	cur, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", coll.Name(), err)
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", coll.Name(), err)
	}
	return out, nil
}

func aggregate[T any](ctx context.Context, coll *mongo.Collection, pipeline mongo.Pipeline) ([]T, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	cur, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate %s: %w", coll.Name(), err)
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode %s aggregate: %w", coll.Name(), err)
	}
	return out, nil
}

func insert(ctx context.Context, coll *mongo.Collection, doc any) error {
	ctx, cancel := opContext(ctx)
	defer cancel()

	if _, err := coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to insert into %s: %w", coll.Name(), err)
	}
	return nil
}

func lookupOne(from, localField, as string) bson.D {
	return bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: from},
		{Key: "localField", Value: localField},
		{Key: "foreignField", Value: "_id"},
		{Key: "as", Value: as},
	}}}
}

func unwind(field string) bson.D {
	return bson.D{{Key: "$unwind", Value: "$" + field}}
}
