package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/FurnitureStore/internal/repository"
	apperrors "github.com/utafrali/FurnitureStore/pkg/errors"
	"github.com/utafrali/FurnitureStore/pkg/httputil"
	"github.com/utafrali/FurnitureStore/pkg/pagination"
)

// catalogService is what the product, collection and project services share.
type catalogService[T, C, U any] interface {
	List(ctx context.Context, filter repository.CatalogFilter) ([]T, int, error)
	Count(ctx context.Context, filter repository.CatalogFilter) (int, error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, input C) (*T, error)
	Update(ctx context.Context, id string, input U) (*T, error)
	Delete(ctx context.Context, id string) error
}

// CatalogHandler handles the CRUD family of one catalog entity. T is the
// entity, C its create input and U its partial update input.
type CatalogHandler[T, C, U any] struct {
	service catalogService[T, C, U]
	logger  *slog.Logger
}

// NewCatalogHandler creates a catalog handler over svc.
func NewCatalogHandler[T, C, U any](svc catalogService[T, C, U], logger *slog.Logger) *CatalogHandler[T, C, U] {
	return &CatalogHandler[T, C, U]{service: svc, logger: logger}
}

// CountResponse is the body of the count endpoints.
type CountResponse struct {
	Count int `json:"count"`
}

// Mount registers the read routes publicly and the write routes behind admin.
func (h *CatalogHandler[T, C, U]) Mount(r chi.Router, admin func(http.Handler) http.Handler) {
	r.Get("/", h.List)
	r.Get("/count", h.Count)
	r.Get("/get/{id}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(admin)
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// List handles GET /?page&limit&filters. The body is {data, pagination}.
func (h *CatalogHandler[T, C, U]) List(w http.ResponseWriter, r *http.Request) {
	params, err := pagination.FromRequest(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	filter.Page, filter.Limit = params.Page, params.Limit

	items, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, pagination.NewResult(items, total, params))
}

// Count handles GET /count with the same filters as List.
func (h *CatalogHandler[T, C, U]) Count(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	n, err := h.service.Count(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CountResponse{Count: n})
}

// Get handles GET /get/{id}.
func (h *CatalogHandler[T, C, U]) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	e, err := h.service.Get(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, e)
}

func (h *CatalogHandler[T, C, U]) Create(w http.ResponseWriter, r *http.Request) {
	var input C
	if err := decode(w, r, &input); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	e, err := h.service.Create(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, e)
}

// Update handles PUT /{id}. Only the fields present in the body change.
func (h *CatalogHandler[T, C, U]) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var input U
	if err := decode(w, r, &input); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	e, err := h.service.Update(r.Context(), id.String(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, e)
}

func (h *CatalogHandler[T, C, U]) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseFilter reads the optional catalog filters. Filters an entity does not
// have are ignored by its repository.
func parseFilter(q url.Values) (repository.CatalogFilter, error) {
	var (
		f   repository.CatalogFilter
		err error
	)
	f.Category = text(q, "category")
	f.Style = text(q, "style")
	f.Search = text(q, "search")
	if f.MinPrice, err = int64Param(q, "min_price"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = int64Param(q, "max_price"); err != nil {
		return f, err
	}
	if f.IsPromo, err = boolParam(q, "is_promo"); err != nil {
		return f, err
	}
	if f.IsBestseller, err = boolParam(q, "is_bestseller"); err != nil {
		return f, err
	}
	if f.IsForeign, err = boolParam(q, "is_foreign"); err != nil {
		return f, err
	}
	return f, nil
}

func text(q url.Values, key string) *string {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return nil
	}
	return &v
}

func int64Param(q url.Values, key string) (*int64, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, apperrors.InvalidInput(key + " must be an integer")
	}
	return &n, nil
}

func boolParam(q url.Values, key string) (*bool, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, apperrors.InvalidInput(key + " must be true or false")
	}
	return &b, nil
}
