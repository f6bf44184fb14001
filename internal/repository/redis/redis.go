// Package redis stores carts and wishlists as JSON blobs with a sliding TTL.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/FurnitureStore/internal/domain"
	"github.com/utafrali/FurnitureStore/internal/repository"
	"github.com/utafrali/FurnitureStore/pkg/database"
	apperrors "github.com/utafrali/FurnitureStore/pkg/errors"
)

const (
	cartPrefix     = "cart:"
	wishlistPrefix = "wishlist:"
)

var errNoOwner = errors.New("owner key is required")

type blobStore[T any] struct {
	client   redis.Cmdable
	prefix   string
	resource string
	ttl      time.Duration
}

func (s blobStore[T]) get(ctx context.Context, owner string) (_ *T, err error) {
	key := s.prefix + owner
	ctx, end := database.TraceCommand(ctx, database.SystemRedis, "GET", key)
	defer func() { end(err) }()

	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound(s.resource, owner)
		}
		return nil, fmt.Errorf("redis get %s: %w", s.resource, err)
	}

	var out T
	if err = json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", s.resource, err)
	}
	return &out, nil
}

func (s blobStore[T]) set(ctx context.Context, owner string, v *T) (err error) {
	key := s.prefix + owner
	ctx, end := database.TraceCommand(ctx, database.SystemRedis, "SET", key)
	defer func() { end(err) }()

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", s.resource, err)
	}
	if err = s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.resource, err)
	}
	return nil
}

func (s blobStore[T]) del(ctx context.Context, owner string) (err error) {
	key := s.prefix + owner
	ctx, end := database.TraceCommand(ctx, database.SystemRedis, "DEL", key)
	defer func() { end(err) }()

	if err = s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", s.resource, err)
	}
	return nil
}

// CartRepository implements repository.CartRepository using Redis.
type CartRepository struct {
	store blobStore[domain.Cart]
}

var _ repository.CartRepository = (*CartRepository)(nil)

// NewCartRepository creates a Redis-backed cart repository. Every save
// refreshes the key's TTL; ttl <= 0 keeps carts forever.
func NewCartRepository(client redis.Cmdable, ttl time.Duration) *CartRepository {
	return &CartRepository{store: blobStore[domain.Cart]{client: client, prefix: cartPrefix, resource: "cart", ttl: ttl}}
}

func (r *CartRepository) GetCart(ctx context.Context, owner string) (*domain.Cart, error) {
	cart, err := r.store.get(ctx, owner)
	if err != nil {
		return nil, err
	}
	if cart.Entries == nil {
		cart.Entries = []domain.CartEntry{}
	}
	return cart, nil
}

func (r *CartRepository) SaveCart(ctx context.Context, cart *domain.Cart) error {
	if cart.Owner == "" {
		return errNoOwner
	}
	cart.UpdatedAt = time.Now().UTC()
	return r.store.set(ctx, cart.Owner, cart)
}

func (r *CartRepository) DeleteCart(ctx context.Context, owner string) error {
	return r.store.del(ctx, owner)
}

// WishlistRepository implements repository.WishlistRepository using Redis.
type WishlistRepository struct {
	store blobStore[domain.Wishlist]
}

var _ repository.WishlistRepository = (*WishlistRepository)(nil)

// NewWishlistRepository creates a Redis-backed wishlist repository.
func NewWishlistRepository(client redis.Cmdable, ttl time.Duration) *WishlistRepository {
	return &WishlistRepository{store: blobStore[domain.Wishlist]{client: client, prefix: wishlistPrefix, resource: "wishlist", ttl: ttl}}
}

func (r *WishlistRepository) GetWishlist(ctx context.Context, owner string) (*domain.Wishlist, error) {
	w, err := r.store.get(ctx, owner)
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
	w.UpdatedAt = time.Now().UTC()
	return r.store.set(ctx, w.Owner, w)
}

func (r *WishlistRepository) DeleteWishlist(ctx context.Context, owner string) error {
	return r.store.del(ctx, owner)
}
