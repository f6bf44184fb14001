package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/FurnitureStore/internal/identity"
	"github.com/utafrali/FurnitureStore/internal/service"
	"github.com/utafrali/FurnitureStore/internal/store"
	apperrors "github.com/utafrali/FurnitureStore/pkg/errors"
	"github.com/utafrali/FurnitureStore/pkg/httputil"
)

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	carts  *service.CartManager
	stores *store.Selector
	logger *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(carts *service.CartManager, stores *store.Selector, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		carts:  carts,
		stores: stores,
		logger: logger,
	}
}

// AddCartItemRequest is the JSON request body for adding an item to the cart.
// A missing quantity means 1.
type AddCartItemRequest struct {
	Item     string `json:"item" validate:"notblank,max=100"`
	ItemType string `json:"itemType" validate:"required"`
	Quantity *int   `json:"quantity"`
}

// UpdateQuantityRequest is the JSON request body for setting an item's quantity.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.carts.Get(r.Context(), h.storeFor(w, r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, cart)
}

// AddItem handles PUT /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddCartItemRequest
	if err := decode(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	cart, err := h.carts.Add(r.Context(), h.storeFor(w, r), service.AddItemInput{
		Item:     req.Item,
		ItemType: req.ItemType,
		Quantity: qty,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, cart)
}

// UpdateItemQuantity handles PUT /api/v1/cart/items/{itemType}/{item}
func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if err := decode(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	cart, notice, err := h.carts.UpdateQuantity(r.Context(), h.storeFor(w, r),
		chi.URLParam(r, "item"), chi.URLParam(r, "itemType"), *req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteDataWithNotice(w, http.StatusOK, cart, toNotice(notice))
}

// RemoveItem handles DELETE /api/v1/cart/items/{itemType}/{item}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cart, notice, err := h.carts.Remove(r.Context(), h.storeFor(w, r),
		chi.URLParam(r, "item"), chi.URLParam(r, "itemType"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteDataWithNotice(w, http.StatusOK, cart, toNotice(notice))
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.carts.Clear(r.Context(), h.storeFor(w, r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, cart)
}

// MergeCart handles POST /api/v1/cart/merge. The browser-held cart and, for
// a signed-in caller still carrying a guest id, the guest cart are folded
// into the caller's server-side cart.
func (h *CartHandler) MergeCart(w http.ResponseWriter, r *http.Request) {
	target, sources, err := mergePlan(h.stores, w, r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	cart, err := h.carts.Merge(r.Context(), target, sources...)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, cart)
}

func (h *CartHandler) storeFor(w http.ResponseWriter, r *http.Request) store.CartStore {
	return h.stores.ForRequest(identity.FromContext(r.Context()), w, r)
}

// mergePlan picks the merge target and sources for the caller.
func mergePlan(stores *store.Selector, w http.ResponseWriter, r *http.Request) (store.CartStore, []store.CartStore, error) {
	id := identity.FromContext(r.Context())
	if id.Kind == identity.Unidentified {
		return nil, nil, apperrors.InvalidInput("merging needs a guest id or a signed-in user")
	}

	target := stores.Remote(id.OwnerKey())
	sources := []store.CartStore{stores.Local(w, r)}
	if id.Kind == identity.Authenticated && id.GuestID != "" {
		sources = append(sources, stores.Remote(identity.GuestOwnerKey(id.GuestID)))
	}
	return target, sources, nil
}
