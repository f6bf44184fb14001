package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/utafrali/FurnitureStore/internal/domain"
	"github.com/utafrali/FurnitureStore/internal/repository"
)

// WishlistRepository implements repository.WishlistRepository on MongoDB.
type WishlistRepository struct {
	doc document[domain.Wishlist]
	now func() time.Time
}

var _ repository.WishlistRepository = (*WishlistRepository)(nil)

// NewWishlistRepository creates a MongoDB-backed wishlist repository.
func NewWishlistRepository(db *mongo.Database) *WishlistRepository {
	return &WishlistRepository{
		doc: document[domain.Wishlist]{coll: db.Collection(WishlistsCollection), resource: "wishlist"},
		now: time.Now,
	}
}

func (r *WishlistRepository) GetWishlist(ctx context.Context, owner string) (*domain.Wishlist, error) {
	w, err := r.doc.get(ctx, owner)
	if err != nil {
		return nil, err
	}
	if w.Entries == nil {
		w.Entries = []domain.WishlistEntry{}
	}
	return w, nil
}

func (r *WishlistRepository) SaveWishlist(ctx context.Context, w *domain.Wishlist) error {
	if w.Owner == "" {
		return errNoOwner
	}
	w.UpdatedAt = r.now().UTC().Truncate(time.Millisecond)
	return r.doc.replace(ctx, w.Owner, w)
}

func (r *WishlistRepository) DeleteWishlist(ctx context.Context, owner string) error {
	return r.doc.delete(ctx, owner)
}
