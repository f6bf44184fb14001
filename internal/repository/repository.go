package repository

import (
	"context"

	"github.com/utafrali/FurnitureStore/internal/domain"
)

// CartRepository persists server-side carts keyed by owner key. Get returns
// an apperrors NotFound error when the owner has no cart.
type CartRepository interface {
	GetCart(ctx context.Context, owner string) (*domain.Cart, error)
	SaveCart(ctx context.Context, cart *domain.Cart) error
	DeleteCart(ctx context.Context, owner string) error
}

// WishlistRepository persists server-side wishlists keyed by owner key.
type WishlistRepository interface {
	GetWishlist(ctx context.Context, owner string) (*domain.Wishlist, error)
	SaveWishlist(ctx context.Context, wishlist *domain.Wishlist) error
	DeleteWishlist(ctx context.Context, owner string) error
}

// CatalogFilter narrows catalog listings. Nil fields do not filter. Page and
// Limit are already validated by the caller.
type CatalogFilter struct {
	Category     *string
	Style        *string
	Search       *string
	MinPrice     *int64
	MaxPrice     *int64
	IsPromo      *bool
	IsBestseller *bool
	IsForeign    *bool
	Page         int
	Limit        int
}

// CatalogRepository is the storage contract shared by products, collections
// and projects. List returns the page plus the total number of matches.
type CatalogRepository[T any] interface {
	Create(ctx context.Context, entity *T) error
	GetByID(ctx context.Context, id string) (*T, error)
	List(ctx context.Context, filter CatalogFilter) ([]T, int, error)
	Count(ctx context.Context, filter CatalogFilter) (int, error)
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id string) error
}

type (
	ProductRepository    = CatalogRepository[domain.Product]
	CollectionRepository = CatalogRepository[domain.Collection]
	ProjectRepository    = CatalogRepository[domain.Project]
)
