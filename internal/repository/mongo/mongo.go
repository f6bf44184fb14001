// Package mongo stores carts and wishlists as one document per owner key.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/utafrali/FurnitureStore/pkg/database"
	apperrors "github.com/utafrali/FurnitureStore/pkg/errors"
)

// Collection names.
const (
	CartsCollection     = "carts"
	WishlistsCollection = "wishlists"
)

// EnsureIndexes creates the unique owner index on both collections and, when
// ttl > 0, expires documents that have not been written for ttl.
func EnsureIndexes(ctx context.Context, db *mongo.Database, ttl time.Duration) error {
	for _, name := range []string{CartsCollection, WishlistsCollection} {
		indexes := []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "owner", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		}
		if ttl > 0 {
			indexes = append(indexes, mongo.IndexModel{
				Keys:    bson.D{{Key: "updated_at", Value: 1}},
				Options: options.Index().SetExpireAfterSeconds(int32(ttl.Seconds())),
			})
		}
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("create %s indexes: %w", name, err)
		}
	}
	return nil
}

// document is the shared load/replace/delete logic for owner-keyed documents.
type document[T any] struct {
	coll     *mongo.Collection
	resource string
}

func (d document[T]) get(ctx context.Context, owner string) (_ *T, err error) {
	ctx, end := database.TraceCommand(ctx, database.SystemMongo, "findOne", d.coll.Name())
	defer func() { end(err) }()

	var out T
	if err = d.coll.FindOne(ctx, bson.M{"owner": owner}).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound(d.resource, owner)
		}
		return nil, fmt.Errorf("find %s: %w", d.resource, err)
	}
	return &out, nil
}

func (d document[T]) replace(ctx context.Context, owner string, doc *T) (err error) {
	ctx, end := database.TraceCommand(ctx, database.SystemMongo, "replaceOne", d.coll.Name())
	defer func() { end(err) }()

	_, err = d.coll.ReplaceOne(ctx, bson.M{"owner": owner}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert %s: %w", d.resource, err)
	}
	return nil
}

func (d document[T]) delete(ctx context.Context, owner string) (err error) {
	ctx, end := database.TraceCommand(ctx, database.SystemMongo, "deleteOne", d.coll.Name())
	defer func() { end(err) }()

	if _, err = d.coll.DeleteOne(ctx, bson.M{"owner": owner}); err != nil {
		return fmt.Errorf("delete %s: %w", d.resource, err)
	}
	return nil
}
