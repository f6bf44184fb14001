package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/FurnitureStore/internal/identity"
	"github.com/utafrali/FurnitureStore/internal/service"
	"github.com/utafrali/FurnitureStore/internal/store"
	"github.com/utafrali/FurnitureStore/pkg/httputil"
)

// GuestCookieConfig controls the guest_id cookie.
type GuestCookieConfig struct {
	Secure bool
	MaxAge time.Duration
}

// GuestHandler issues guest ids.
type GuestHandler struct {
	carts     *service.CartManager
	wishlists *service.WishlistManager
	stores    *store.Selector
	cookie    GuestCookieConfig
	logger    *slog.Logger
}

// NewGuestHandler creates a new guest HTTP handler.
func NewGuestHandler(carts *service.CartManager, wishlists *service.WishlistManager, stores *store.Selector, cookie GuestCookieConfig, logger *slog.Logger) *GuestHandler {
	return &GuestHandler{
		carts:     carts,
		wishlists: wishlists,
		stores:    stores,
		cookie:    cookie,
		logger:    logger,
	}
}

// GuestResponse carries the caller's guest id.
type GuestResponse struct {
	GuestID string `json:"guestId"`
}

// Issue handles POST /api/v1/guest. A caller that already has a guest id
// gets it back. Otherwise a new id is minted and, for an anonymous caller,
// the browser-held cart and wishlist move into the new guest's server-side
// store.
func (h *GuestHandler) Issue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := identity.FromContext(ctx)

	if id.GuestID != "" {
		h.setCookie(w, id.GuestID)
		httputil.WriteData(w, http.StatusOK, GuestResponse{GuestID: id.GuestID})
		return
	}

	guestID := uuid.NewString()
	if id.Kind == identity.Unidentified {
		remote := h.stores.Remote(identity.GuestOwnerKey(guestID))
		local := h.stores.Local(w, r)
		if _, err := h.carts.Merge(ctx, remote, local); err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		if _, err := h.wishlists.Merge(ctx, remote, local); err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
	}

	h.setCookie(w, guestID)
	h.logger.InfoContext(ctx, "guest id issued", slog.String("guest_id", guestID))
	httputil.WriteData(w, http.StatusCreated, GuestResponse{GuestID: guestID})
}

func (h *GuestHandler) setCookie(w http.ResponseWriter, guestID string) {
	w.Header().Set(identity.GuestHeader, guestID)
	http.SetCookie(w, &http.Cookie{
		Name:     identity.GuestCookie,
		Value:    guestID,
		Path:     "/",
		MaxAge:   int(h.cookie.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
