// Package store holds the two places cart and wishlist state can live: signed
// cookies in the browser for anonymous callers, and the server-side
// repositories for guests and users.
package store

import (
	"context"
	"log/slog"
	"net/http"

	"golang.org/x/sync/singleflight"

	"github.com/utafrali/FurnitureStore/internal/domain"
	"github.com/utafrali/FurnitureStore/internal/identity"
	"github.com/utafrali/FurnitureStore/internal/repository"
)

// Kind names a backing store strategy.
type Kind string

const (
	KindLocal  Kind = "local"
	KindRemote Kind = "remote"
)

// CartStore is the strategy the cart and wishlist managers persist through.
// Load never returns nil; a missing cart or wishlist loads as empty.
type CartStore interface {
	Kind() Kind
	// Owner is the owner key state is written under, empty for local state.
	Owner() string
	LoadCart(ctx context.Context) (*domain.Cart, error)
	SaveCart(ctx context.Context, cart *domain.Cart) error
	ClearCart(ctx context.Context) error
	LoadWishlist(ctx context.Context) (*domain.Wishlist, error)
	SaveWishlist(ctx context.Context, w *domain.Wishlist) error
	ClearWishlist(ctx context.Context) error
}

// Selector builds the store for a request.
type Selector struct {
	carts     repository.CartRepository
	wishlists repository.WishlistRepository
	cookies   *CookieCodec
	loads     *singleflight.Group
	logger    *slog.Logger
}

// NewSelector creates a selector over the remote repositories and the cookie codec.
func NewSelector(carts repository.CartRepository, wishlists repository.WishlistRepository, cookies *CookieCodec, logger *slog.Logger) *Selector {
	return &Selector{
		carts:     carts,
		wishlists: wishlists,
		cookies:   cookies,
		loads:     &singleflight.Group{},
		logger:    logger,
	}
}

// ForRequest picks the strategy once for the request: cookies for an
// unidentified caller, the repositories otherwise.
func (s *Selector) ForRequest(id identity.Identity, w http.ResponseWriter, r *http.Request) CartStore {
	if owner := id.OwnerKey(); owner != "" {
		return s.Remote(owner)
	}
	return s.Local(w, r)
}

// Local returns the cookie-backed store for this request.
func (s *Selector) Local(w http.ResponseWriter, r *http.Request) *LocalBackedStore {
	return &LocalBackedStore{codec: s.cookies, w: w, r: r, logger: s.logger}
}

// Remote returns the repository-backed store for owner.
func (s *Selector) Remote(owner string) *RemoteBackedStore {
	return &RemoteBackedStore{
		owner:     owner,
		carts:     s.carts,
		wishlists: s.wishlists,
		loads:     s.loads,
	}
}
