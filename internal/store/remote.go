package store

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/utafrali/FurnitureStore/internal/domain"
	"github.com/utafrali/FurnitureStore/internal/repository"
	apperrors "github.com/utafrali/FurnitureStore/pkg/errors"
)

// RemoteBackedStore persists state in the repositories under one owner key.
// Concurrent loads of the same owner share a single repository read.
type RemoteBackedStore struct {
	owner     string
	carts     repository.CartRepository
	wishlists repository.WishlistRepository
	loads     *singleflight.Group
}

func (s *RemoteBackedStore) Kind() Kind { return KindRemote }

// Owner returns the owner key the store writes under.
func (s *RemoteBackedStore) Owner() string { return s.owner }

func (s *RemoteBackedStore) LoadCart(ctx context.Context) (*domain.Cart, error) {
	cart, err := shared(ctx, s.loads, "cart:"+s.owner, func(ctx context.Context) (*domain.Cart, error) {
		cart, err := s.carts.GetCart(ctx, s.owner)
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.NewCart(s.owner), nil
		}
		if err != nil {
			return nil, fmt.Errorf("load cart: %w", err)
		}
		return cart, nil
	})
	if err != nil {
		return nil, err
	}
	return cart.Clone(), nil
}

func (s *RemoteBackedStore) SaveCart(ctx context.Context, cart *domain.Cart) error {
	cart.Owner = s.owner
	if err := s.carts.SaveCart(ctx, cart); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (s *RemoteBackedStore) ClearCart(ctx context.Context) error {
	if err := s.carts.DeleteCart(ctx, s.owner); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (s *RemoteBackedStore) LoadWishlist(ctx context.Context) (*domain.Wishlist, error) {
	w, err := shared(ctx, s.loads, "wishlist:"+s.owner, func(ctx context.Context) (*domain.Wishlist, error) {
		w, err := s.wishlists.GetWishlist(ctx, s.owner)
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.NewWishlist(s.owner), nil
		}
		if err != nil {
			return nil, fmt.Errorf("load wishlist: %w", err)
		}
		return w, nil
	})
	if err != nil {
		return nil, err
	}
	return w.Clone(), nil
}

func (s *RemoteBackedStore) SaveWishlist(ctx context.Context, w *domain.Wishlist) error {
	w.Owner = s.owner
	if err := s.wishlists.SaveWishlist(ctx, w); err != nil {
		return fmt.Errorf("save wishlist: %w", err)
	}
	return nil
}

func (s *RemoteBackedStore) ClearWishlist(ctx context.Context) error {
	if err := s.wishlists.DeleteWishlist(ctx, s.owner); err != nil {
		return fmt.Errorf("clear wishlist: %w", err)
	}
	return nil
}

// shared runs load once for concurrent callers of the same key. The read is
// detached from the caller that started it, so one caller's cancellation
// never fails the others; each caller still returns when its own ctx ends.
func shared[T any](ctx context.Context, g *singleflight.Group, key string, load func(context.Context) (T, error)) (T, error) {
	ch := g.DoChan(key, func() (any, error) {
		return load(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			var zero T
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}
