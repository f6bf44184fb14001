package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/utafrali/FurnitureStore/internal/domain"
	"github.com/utafrali/FurnitureStore/internal/event"
	"github.com/utafrali/FurnitureStore/internal/identity"
	"github.com/utafrali/FurnitureStore/internal/repository"
	"github.com/utafrali/FurnitureStore/internal/service"
	"github.com/utafrali/FurnitureStore/internal/store"
	apperrors "github.com/utafrali/FurnitureStore/pkg/errors"
	"github.com/utafrali/FurnitureStore/pkg/health"
	"github.com/utafrali/FurnitureStore/pkg/httputil"
	pkgkafka "github.com/utafrali/FurnitureStore/pkg/kafka"
	"github.com/utafrali/FurnitureStore/pkg/middleware"
	"github.com/utafrali/FurnitureStore/pkg/pagination"
)

// --- In-memory repositories ---

type memoryCatalog[T any] struct {
	mu    sync.Mutex
	items []T
	idOf  func(*T) string
}

func (m *memoryCatalog[T]) index(id string) int {
	return slices.IndexFunc(m.items, func(e T) bool { return m.idOf(&e) == id })
}

func (m *memoryCatalog[T]) Create(_ context.Context, e *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, *e)
	return nil
}

func (m *memoryCatalog[T]) GetByID(_ context.Context, id string) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(id)
	if i < 0 {
		return nil, apperrors.NotFound("item", id)
	}
	cp := m.items[i]
	return &cp, nil
}

// List returns newest first and ignores filters.
func (m *memoryCatalog[T]) List(_ context.Context, f repository.CatalogFilter) ([]T, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := slices.Clone(m.items)
	slices.Reverse(all)
	start := min((f.Page-1)*f.Limit, len(all))
	end := min(start+f.Limit, len(all))
	return all[start:end], len(all), nil
}

func (m *memoryCatalog[T]) Count(context.Context, repository.CatalogFilter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items), nil
}

func (m *memoryCatalog[T]) Update(_ context.Context, e *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(m.idOf(e))
	if i < 0 {
		return apperrors.NotFound("item", m.idOf(e))
	}
	m.items[i] = *e
	return nil
}

func (m *memoryCatalog[T]) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(id)
	if i < 0 {
		return apperrors.NotFound("item", id)
	}
	m.items = slices.Delete(m.items, i, i+1)
	return nil
}

type memoryBaskets struct {
	mu        sync.Mutex
	carts     map[string]*domain.Cart
	wishlists map[string]*domain.Wishlist
}

func (m *memoryBaskets) GetCart(_ context.Context, owner string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.carts[owner]; ok {
		return c.Clone(), nil
	}
	return nil, apperrors.NotFound("cart", owner)
}

func (m *memoryBaskets) SaveCart(_ context.Context, c *domain.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[c.Owner] = c.Clone()
	return nil
}

func (m *memoryBaskets) DeleteCart(_ context.Context, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, owner)
	return nil
}

func (m *memoryBaskets) GetWishlist(_ context.Context, owner string) (*domain.Wishlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.wishlists[owner]; ok {
		return w.Clone(), nil
	}
	return nil, apperrors.NotFound("wishlist", owner)
}

func (m *memoryBaskets) SaveWishlist(_ context.Context, w *domain.Wishlist) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wishlists[w.Owner] = w.Clone()
	return nil
}

func (m *memoryBaskets) DeleteWishlist(_ context.Context, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.wishlists, owner)
	return nil
}

// --- Test environment ---

type testEnv struct {
	server   *httptest.Server
	tokens   *identity.TokenManager
	baskets  *memoryBaskets
	products *memoryCatalog[domain.Product]
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	baskets := &memoryBaskets{carts: map[string]*domain.Cart{}, wishlists: map[string]*domain.Wishlist{}}
	products := &memoryCatalog[domain.Product]{idOf: func(p *domain.Product) string { return p.ID }}
	collections := &memoryCatalog[domain.Collection]{idOf: func(c *domain.Collection) string { return c.ID }}
	projects := &memoryCatalog[domain.Project]{idOf: func(p *domain.Project) string { return p.ID }}

	tokens := identity.NewTokenManager("test-secret", "furniture-test", time.Hour)
	producer := event.NewProducer(pkgkafka.NopPublisher{}, logger)
	carts := service.NewCartManager(producer, logger)
	wishlists := service.NewWishlistManager(producer, logger)

	router := NewRouter(Deps{
		Resolver:    identity.NewResolver(tokens),
		Stores:      store.NewSelector(baskets, baskets, store.NewCookieCodec("cookie-secret", time.Hour, false), logger),
		Carts:       carts,
		Wishlists:   wishlists,
		Products:    service.NewProductService(products, producer, logger),
		Collections: service.NewCollectionService(collections, producer, logger),
		Projects:    service.NewProjectService(projects, producer, logger),
		Checkout: service.NewCheckoutService(products, collections, service.CheckoutConfig{
			Phone: "48600100200", Currency: "PLN", Greeting: "Order:",
		}, logger),
		Health:      health.NewHandler(),
		Logger:      logger,
		CORS:        middleware.DefaultCORSConfig(),
		GuestCookie: GuestCookieConfig{MaxAge: 24 * time.Hour},
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testEnv{server: srv, tokens: tokens, baskets: baskets, products: products}
}

// client returns a browser-like client that keeps cookies.
func (e *testEnv) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func (e *testEnv) token(t *testing.T, userID, role string) string {
	t.Helper()
	tok, err := e.tokens.Issue(userID, role)
	require.NoError(t, err)
	return tok
}

type envelope struct {
	Data       json.RawMessage         `json:"data"`
	Notice     *httputil.Notice        `json:"notice"`
	Error      *httputil.ErrorResponse `json:"error"`
	Pagination *pagination.Meta        `json:"pagination"`
	Count      *int                    `json:"count"`
}

type request struct {
	method  string
	path    string
	body    any
	headers map[string]string
}

func (e *testEnv) do(t *testing.T, c *http.Client, req request) (*http.Response, envelope) {
	t.Helper()
	var body io.Reader
	if req.body != nil {
		b, err := json.Marshal(req.body)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	httpReq, err := http.NewRequest(req.method, e.server.URL+req.path, body)
	require.NoError(t, err)
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.Do(httpReq)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp, env
}

func decodeCart(t *testing.T, env envelope) domain.Cart {
	t.Helper()
	var c domain.Cart
	require.NoError(t, json.Unmarshal(env.Data, &c))
	return c
}

func decodeWishlist(t *testing.T, env envelope) domain.Wishlist {
	t.Helper()
	var w domain.Wishlist
	require.NoError(t, json.Unmarshal(env.Data, &w))
	return w
}

func jsonUnmarshal(raw json.RawMessage, v any) error {
	return json.Unmarshal(raw, v)
}

func bearer(tok string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + tok}
}

func seedProduct(e *testEnv, name string, price int64, created time.Time) domain.Product {
	p := domain.Product{
		ID:        "0b7c5a4e-6a8f-4f7e-9a55-" + created.Format("150405") + "000000",
		Name:      name,
		Pricing:   domain.Pricing{Price: price},
		Images:    []domain.Image{},
		Category:  "sofas",
		CreatedAt: created,
	}
	_ = e.products.Create(context.Background(), &p)
	return p
}
