package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type snapshotDocument struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type decoder interface {
	Decode(v interface{}) error
}

type collection interface {
	FindOne(ctx context.Context, filter interface{}) decoder
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type driverCollection struct {
	coll *mongo.Collection
}

func (c driverCollection) FindOne(ctx context.Context, filter interface{}) decoder {
	return c.coll.FindOne(ctx, filter)
}

func (c driverCollection) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return c.coll.UpdateOne(ctx, filter, update, opts...)
}

type snapshotStore struct {
	collection collection
	ping       func(ctx context.Context) error
	now        func() time.Time
}

// NewSnapshotStore stores one document per key, upserting on every write.
func NewSnapshotStore(client *mongo.Client, cfg config.MongoDBConfig) repository.SnapshotStore {
	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	return newSnapshotStore(driverCollection{coll: coll}, func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	})
}

func newSnapshotStore(coll collection, ping func(ctx context.Context) error) *snapshotStore {
	return &snapshotStore{
		collection: coll,
		ping:       ping,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *snapshotStore) Get(ctx context.Context, key string) (string, error) {
	var doc snapshotDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", repository.ErrNotFound
		}
		return "", fmt.Errorf("failed to get snapshot %s from mongodb: %w", key, err)
	}
	return doc.Value, nil
}

func (s *snapshotStore) Set(ctx context.Context, key string, value string) error {
	update := bson.M{"$set": bson.M{"value": value, "updated_at": s.now()}}
	_, err := s.collection.UpdateOne(ctx, bson.M{"_id": key}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save snapshot %s to mongodb: %w", key, err)
	}
	return nil
}

func (s *snapshotStore) Ping(ctx context.Context) error {
	if err := s.ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrConnectionFailed, err)
	}
	return nil
}
