package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/FurnitureStore/internal/identity"
	"github.com/utafrali/FurnitureStore/internal/service"
	"github.com/utafrali/FurnitureStore/internal/store"
	"github.com/utafrali/FurnitureStore/pkg/httputil"
)

// WishlistHandler handles HTTP requests for wishlist endpoints.
type WishlistHandler struct {
	wishlists *service.WishlistManager
	stores    *store.Selector
	logger    *slog.Logger
}

// NewWishlistHandler creates a new wishlist HTTP handler.
func NewWishlistHandler(wishlists *service.WishlistManager, stores *store.Selector, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{
		wishlists: wishlists,
		stores:    stores,
		logger:    logger,
	}
}

// WishlistItemRequest is the JSON request body for adding a wishlist item.
type WishlistItemRequest struct {
	Item     string `json:"item" validate:"notblank,max=100"`
	ItemType string `json:"itemType" validate:"required"`
}

// MembershipResponse answers whether an item is on the wishlist.
type MembershipResponse struct {
	Item     string `json:"item"`
	ItemType string `json:"itemType"`
	InList   bool   `json:"inWishlist"`
}

// GetWishlist handles GET /api/v1/wishlist
func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	list, err := h.wishlists.Get(r.Context(), h.storeFor(w, r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, list)
}

// AddItem handles PUT /api/v1/wishlist/items
func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req WishlistItemRequest
	if err := decode(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	list, err := h.wishlists.Add(r.Context(), h.storeFor(w, r), req.Item, req.ItemType)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, list)
}

// Contains handles GET /api/v1/wishlist/items/{itemType}/{item}
func (h *WishlistHandler) Contains(w http.ResponseWriter, r *http.Request) {
	item, itemType := chi.URLParam(r, "item"), chi.URLParam(r, "itemType")
	ok, err := h.wishlists.Contains(r.Context(), h.storeFor(w, r), item, itemType)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, MembershipResponse{Item: item, ItemType: itemType, InList: ok})
}

// RemoveItem handles DELETE /api/v1/wishlist/items/{itemType}/{item}
func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	list, notice, err := h.wishlists.Remove(r.Context(), h.storeFor(w, r),
		chi.URLParam(r, "item"), chi.URLParam(r, "itemType"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteDataWithNotice(w, http.StatusOK, list, toNotice(notice))
}

// ClearWishlist handles DELETE /api/v1/wishlist
func (h *WishlistHandler) ClearWishlist(w http.ResponseWriter, r *http.Request) {
	list, err := h.wishlists.Clear(r.Context(), h.storeFor(w, r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, list)
}

// MergeWishlist handles POST /api/v1/wishlist/merge
func (h *WishlistHandler) MergeWishlist(w http.ResponseWriter, r *http.Request) {
	target, sources, err := mergePlan(h.stores, w, r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	list, err := h.wishlists.Merge(r.Context(), target, sources...)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, list)
}

func (h *WishlistHandler) storeFor(w http.ResponseWriter, r *http.Request) store.CartStore {
	return h.stores.ForRequest(identity.FromContext(r.Context()), w, r)
}
