package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/FurnitureStore/internal/identity"
	"github.com/utafrali/FurnitureStore/internal/service"
	"github.com/utafrali/FurnitureStore/internal/store"
	"github.com/utafrali/FurnitureStore/pkg/httputil"
)

// CheckoutHandler handles the WhatsApp checkout.
type CheckoutHandler struct {
	checkout *service.CheckoutService
	stores   *store.Selector
	logger   *slog.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler.
func NewCheckoutHandler(checkout *service.CheckoutService, stores *store.Selector, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, stores: stores, logger: logger}
}

// WhatsApp handles POST /api/v1/checkout/whatsapp
func (h *CheckoutHandler) WhatsApp(w http.ResponseWriter, r *http.Request) {
	st := h.stores.ForRequest(identity.FromContext(r.Context()), w, r)
	out, err := h.checkout.WhatsApp(r.Context(), st)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, out)
}
