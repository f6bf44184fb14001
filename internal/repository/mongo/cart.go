package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/utafrali/FurnitureStore/internal/domain"
	"github.com/utafrali/FurnitureStore/internal/repository"
)

var errNoOwner = errors.New("owner key is required")

// CartRepository implements repository.CartRepository on MongoDB.
type CartRepository struct {
	doc document[domain.Cart]
	now func() time.Time
}

var _ repository.CartRepository = (*CartRepository)(nil)

// NewCartRepository creates a MongoDB-backed cart repository.
func NewCartRepository(db *mongo.Database) *CartRepository {
	return &CartRepository{
		doc: document[domain.Cart]{coll: db.Collection(CartsCollection), resource: "cart"},
		now: time.Now,
	}
}

// GetCart loads the cart for owner.
func (r *CartRepository) GetCart(ctx context.Context, owner string) (*domain.Cart, error) {
	cart, err := r.doc.get(ctx, owner)
	if err != nil {
		return nil, err
	}
	if cart.Entries == nil {
		cart.Entries = []domain.CartEntry{}
	}
	return cart, nil
}

// SaveCart replaces the stored cart, creating it when absent.
func (r *CartRepository) SaveCart(ctx context.Context, cart *domain.Cart) error {
	if cart.Owner == "" {
		return errNoOwner
	}
	cart.UpdatedAt = r.now().UTC().Truncate(time.Millisecond)
	return r.doc.replace(ctx, cart.Owner, cart)
}

// DeleteCart removes the cart for owner. Deleting a missing cart is not an error.
func (r *CartRepository) DeleteCart(ctx context.Context, owner string) error {
	return r.doc.delete(ctx, owner)
}
