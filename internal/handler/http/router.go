package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/FurnitureStore/internal/domain"
	"github.com/utafrali/FurnitureStore/internal/identity"
	"github.com/utafrali/FurnitureStore/internal/service"
	"github.com/utafrali/FurnitureStore/internal/store"
	"github.com/utafrali/FurnitureStore/pkg/health"
	"github.com/utafrali/FurnitureStore/pkg/middleware"
)

// ServiceName labels metrics and spans.
const ServiceName = "storefront"

// catalogCacheSeconds is how long public catalog reads may be cached.
const catalogCacheSeconds = 60

// Deps holds everything the router serves.
type Deps struct {
	Resolver    *identity.Resolver
	Stores      *store.Selector
	Carts       *service.CartManager
	Wishlists   *service.WishlistManager
	Products    *service.ProductService
	Collections *service.CollectionService
	Projects    *service.ProjectService
	Checkout    *service.CheckoutService
	Health      *health.Handler
	Logger      *slog.Logger

	CORS           middleware.CORSConfig
	RateLimiter    *middleware.RateLimiter // nil disables rate limiting
	PprofCIDRs     []string
	GuestCookie    GuestCookieConfig
	RequestTimeout time.Duration
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(d Deps) http.Handler {
	if d.RequestTimeout <= 0 {
		d.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(d.Logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(d.RequestTimeout))
	r.Use(middleware.RequestLogging(d.Logger))
	r.Use(middleware.PrometheusMetrics(ServiceName))
	r.Use(middleware.Tracing(ServiceName))
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(middleware.CORS(d.CORS))

	// Health check endpoints
	r.Get("/health/live", d.Health.LivenessHandler())
	r.Get("/health/ready", d.Health.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, d.PprofCIDRs, d.Logger)

	admin := middleware.RequireRole(identity.RoleFromContext, identity.RoleAdmin)

	products := NewCatalogHandler[domain.Product, service.CreateProductInput, service.UpdateProductInput](d.Products, d.Logger)
	collections := NewCatalogHandler[domain.Collection, service.CreateCollectionInput, service.UpdateCollectionInput](d.Collections, d.Logger)
	projects := NewCatalogHandler[domain.Project, service.CreateProjectInput, service.UpdateProjectInput](d.Projects, d.Logger)
	carts := NewCartHandler(d.Carts, d.Stores, d.Logger)
	wishlists := NewWishlistHandler(d.Wishlists, d.Stores, d.Logger)
	guests := NewGuestHandler(d.Carts, d.Wishlists, d.Stores, d.GuestCookie, d.Logger)
	checkout := NewCheckoutHandler(d.Checkout, d.Stores, d.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		if d.RateLimiter != nil {
			r.Use(d.RateLimiter.Handler)
		}
		r.Use(ContentTypeJSON)
		r.Use(Identify(d.Resolver))

		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(catalogCacheSeconds))
			r.Route("/products", func(r chi.Router) { products.Mount(r, admin) })
			r.Route("/collections", func(r chi.Router) { collections.Mount(r, admin) })
			r.Route("/projects", func(r chi.Router) { projects.Mount(r, admin) })
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.NoStore)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", carts.GetCart)
				r.Delete("/", carts.ClearCart)
				r.Post("/merge", carts.MergeCart)
				r.Put("/items", carts.AddItem)
				r.Put("/items/{itemType}/{item}", carts.UpdateItemQuantity)
				r.Delete("/items/{itemType}/{item}", carts.RemoveItem)
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", wishlists.GetWishlist)
				r.Delete("/", wishlists.ClearWishlist)
				r.Post("/merge", wishlists.MergeWishlist)
				r.Put("/items", wishlists.AddItem)
				r.Get("/items/{itemType}/{item}", wishlists.Contains)
				r.Delete("/items/{itemType}/{item}", wishlists.RemoveItem)
			})

			r.Post("/guest", guests.Issue)
			r.Post("/checkout/whatsapp", checkout.WhatsApp)
		})
	})

	return r
}
