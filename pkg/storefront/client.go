// Package storefront is a typed client for the storefront API. Requests go
// through an httpclient.CircuitBreakerClient so that a struggling API is not
// hammered by batch tools such as cmd/seed.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/utafrali/FurnitureStore/internal/domain"
	"github.com/utafrali/FurnitureStore/internal/identity"
	"github.com/utafrali/FurnitureStore/internal/service"
	apperrors "github.com/utafrali/FurnitureStore/pkg/errors"
	"github.com/utafrali/FurnitureStore/pkg/httpclient"
	"github.com/utafrali/FurnitureStore/pkg/pagination"
)

const upstream = "storefront"

// HTTPDoer executes HTTP requests. Both httpclient.Client and
// httpclient.CircuitBreakerClient satisfy it.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// CircuitOpenFallback turns an open breaker into a 503 AppError.
func CircuitOpenFallback(_ context.Context, _ error) (*http.Response, error) {
	return nil, &apperrors.AppError{
		Code:    "SERVICE_UNAVAILABLE",
		Message: "storefront API is temporarily unavailable",
		Status:  http.StatusServiceUnavailable,
		Err:     apperrors.ErrServiceUnavail,
	}
}

// NewDefaultDoer builds the retrying, circuit-broken transport used by New
// callers that have no special needs.
func NewDefaultDoer(logger *slog.Logger) HTTPDoer {
	base := httpclient.New(httpclient.DefaultConfig())
	return httpclient.NewCircuitBreakerClient(base, httpclient.DefaultCircuitBreakerConfig(upstream), logger).
		WithFallback(CircuitOpenFallback)
}

// Client talks to one storefront API instance.
type Client struct {
	baseURL string
	doer    HTTPDoer
	headers http.Header
}

// New creates a client for the API rooted at baseURL, e.g.
// "http://localhost:8080".
func New(baseURL string, doer HTTPDoer) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/") + "/api/v1",
		doer:    doer,
		headers: http.Header{},
	}
}

// WithToken returns a copy that authenticates with the bearer token.
func (c *Client) WithToken(token string) *Client {
	return c.with("Authorization", "Bearer "+token)
}

// WithGuest returns a copy that identifies as the given guest.
func (c *Client) WithGuest(guestID string) *Client {
	return c.with(identity.GuestHeader, guestID)
}

func (c *Client) with(key, value string) *Client {
	cpy := *c
	cpy.headers = c.headers.Clone()
	cpy.headers.Set(key, value)
	return &cpy
}

// Products returns the product catalog endpoints.
func (c *Client) Products() *Catalog[domain.Product, service.CreateProductInput, service.UpdateProductInput] {
	return &Catalog[domain.Product, service.CreateProductInput, service.UpdateProductInput]{c: c, path: "/products"}
}

// Collections returns the collection catalog endpoints.
func (c *Client) Collections() *Catalog[domain.Collection, service.CreateCollectionInput, service.UpdateCollectionInput] {
	return &Catalog[domain.Collection, service.CreateCollectionInput, service.UpdateCollectionInput]{c: c, path: "/collections"}
}

// Projects returns the portfolio endpoints.
func (c *Client) Projects() *Catalog[domain.Project, service.CreateProjectInput, service.UpdateProjectInput] {
	return &Catalog[domain.Project, service.CreateProjectInput, service.UpdateProjectInput]{c: c, path: "/projects"}
}

type envelope[T any] struct {
	Data T `json:"data"`
}

// IssueGuest asks the API for a guest id.
func (c *Client) IssueGuest(ctx context.Context) (string, error) {
	var out envelope[struct {
		GuestID string `json:"guestId"`
	}]
	if err := c.call(ctx, http.MethodPost, "/guest", nil, &out); err != nil {
		return "", err
	}
	return out.Data.GuestID, nil
}

// Cart returns the caller's cart.
func (c *Client) Cart(ctx context.Context) (*domain.Cart, error) {
	var out envelope[domain.Cart]
	if err := c.call(ctx, http.MethodGet, "/cart", nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// AddToCart adds quantity units of an item to the caller's cart.
func (c *Client) AddToCart(ctx context.Context, item string, itemType domain.ItemType, quantity int) (*domain.Cart, error) {
	body := map[string]any{"item": item, "itemType": itemType, "quantity": quantity}
	var out envelope[domain.Cart]
	if err := c.call(ctx, http.MethodPut, "/cart/items", body, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// WhatsAppCheckout renders the caller's cart as a WhatsApp order.
func (c *Client) WhatsAppCheckout(ctx context.Context) (*service.Checkout, error) {
	var out envelope[service.Checkout]
	if err := c.call(ctx, http.MethodPost, "/checkout/whatsapp", nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// call sends a JSON request and decodes a 2xx response into out. Non-2xx
// responses become AppErrors through httpclient.ParseResponseError.
func (c *Client) call(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader = http.NoBody
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s %s request: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create %s %s request: %w", method, path, err)
	}
	for k, v := range c.headers {
		req.Header[k] = v
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.doer.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("call %s %s: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpclient.ParseResponseError(resp, upstream)
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// Catalog exposes the list/count/get and admin write endpoints of one
// catalog entity. Writes need a client carrying an admin token.
type Catalog[T, C, U any] struct {
	c    *Client
	path string
}

// ListOptions narrows a catalog listing. Zero values are omitted.
type ListOptions struct {
	Page     int
	Limit    int
	Category string
	Style    string
	Search   string
}

func (o ListOptions) query() string {
	q := url.Values{}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Category != "" {
		q.Set("category", o.Category)
	}
	if o.Style != "" {
		q.Set("style", o.Style)
	}
	if o.Search != "" {
		q.Set("search", o.Search)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// List returns one page of entities.
func (k *Catalog[T, C, U]) List(ctx context.Context, opts ListOptions) (*pagination.Result[T], error) {
	var out pagination.Result[T]
	if err := k.c.call(ctx, http.MethodGet, k.path+opts.query(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Count returns how many entities match opts. Page and Limit are ignored.
func (k *Catalog[T, C, U]) Count(ctx context.Context, opts ListOptions) (int, error) {
	opts.Page, opts.Limit = 0, 0
	var out struct {
		Count int `json:"count"`
	}
	if err := k.c.call(ctx, http.MethodGet, k.path+"/count"+opts.query(), nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// Get fetches one entity by id.
func (k *Catalog[T, C, U]) Get(ctx context.Context, id string) (*T, error) {
	var out envelope[T]
	if err := k.c.call(ctx, http.MethodGet, k.path+"/get/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// Create adds an entity.
func (k *Catalog[T, C, U]) Create(ctx context.Context, in C) (*T, error) {
	var out envelope[T]
	if err := k.c.call(ctx, http.MethodPost, k.path, in, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// Update applies a partial update.
func (k *Catalog[T, C, U]) Update(ctx context.Context, id string, in U) (*T, error) {
	var out envelope[T]
	if err := k.c.call(ctx, http.MethodPut, k.path+"/"+url.PathEscape(id), in, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// Delete removes an entity.
func (k *Catalog[T, C, U]) Delete(ctx context.Context, id string) error {
	return k.c.call(ctx, http.MethodDelete, k.path+"/"+url.PathEscape(id), nil, nil)
}
