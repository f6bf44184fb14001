package store

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/utafrali/FurnitureStore/internal/domain"
	apperrors "github.com/utafrali/FurnitureStore/pkg/errors"
	"github.com/utafrali/FurnitureStore/pkg/logger"
)

// LocalBackedStore keeps state in signed cookies on the caller's browser.
// Writes are remembered for the rest of the request so a later load sees them.
type LocalBackedStore struct {
	codec  *CookieCodec
	w      http.ResponseWriter
	r      *http.Request
	logger *slog.Logger

	cart     *domain.Cart
	wishlist *domain.Wishlist
}

func (s *LocalBackedStore) Kind() Kind { return KindLocal }

func (s *LocalBackedStore) Owner() string { return "" }

func (s *LocalBackedStore) LoadCart(ctx context.Context) (*domain.Cart, error) {
	if s.cart != nil {
		return s.cart.Clone(), nil
	}
	entries, err := decode[domain.CartEntry](s.codec, s.r, CartCookie)
	if err != nil {
		s.warnTampered(ctx, CartCookie, err)
	}
	cart := domain.NewCart("")
	for _, e := range entries {
		if key, ok := validKey(e.Item, e.ItemType); ok && e.Quantity > 0 {
			// Duplicate entries whose sum overflows keep the first quantity.
			_ = cart.Add(key, e.Quantity)
		}
	}
	return cart, nil
}

func (s *LocalBackedStore) SaveCart(ctx context.Context, cart *domain.Cart) error {
	ck, err := encode(s.codec, CartCookie, cart.Entries)
	if err != nil {
		return tooLarge(err)
	}
	http.SetCookie(s.w, ck)
	s.cart = cart.Clone()
	return nil
}

func (s *LocalBackedStore) ClearCart(ctx context.Context) error {
	http.SetCookie(s.w, s.codec.expired(CartCookie))
	s.cart = domain.NewCart("")
	return nil
}

func (s *LocalBackedStore) LoadWishlist(ctx context.Context) (*domain.Wishlist, error) {
	if s.wishlist != nil {
		return s.wishlist.Clone(), nil
	}
	entries, err := decode[domain.WishlistEntry](s.codec, s.r, WishlistCookie)
	if err != nil {
		s.warnTampered(ctx, WishlistCookie, err)
	}
	w := domain.NewWishlist("")
	for _, e := range entries {
		if key, ok := validKey(e.Item, e.ItemType); ok {
			w.Add(key)
		}
	}
	return w, nil
}

func (s *LocalBackedStore) SaveWishlist(ctx context.Context, w *domain.Wishlist) error {
	ck, err := encode(s.codec, WishlistCookie, w.Entries)
	if err != nil {
		return tooLarge(err)
	}
	http.SetCookie(s.w, ck)
	s.wishlist = w.Clone()
	return nil
}

func (s *LocalBackedStore) ClearWishlist(ctx context.Context) error {
	http.SetCookie(s.w, s.codec.expired(WishlistCookie))
	s.wishlist = domain.NewWishlist("")
	return nil
}

func (s *LocalBackedStore) warnTampered(ctx context.Context, cookie string, err error) {
	logger.WithContext(ctx, s.logger).WarnContext(ctx, "discarding unreadable local state",
		slog.String("cookie", cookie),
		slog.String("error", err.Error()),
	)
}

func validKey(item string, t domain.ItemType) (domain.ItemKey, bool) {
	parsed, err := domain.ParseItemType(string(t))
	if err != nil || item == "" {
		return domain.ItemKey{}, false
	}
	return domain.ItemKey{Item: item, ItemType: parsed}, true
}

func tooLarge(err error) error {
	if errors.Is(err, ErrStateTooLarge) {
		return apperrors.InvalidInput("too many items to keep without a guest id; request one from POST /api/v1/guest")
	}
	return err
}
