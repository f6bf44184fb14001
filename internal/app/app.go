package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/utafrali/FurnitureStore/internal/config"
	"github.com/utafrali/FurnitureStore/internal/event"
	handler "github.com/utafrali/FurnitureStore/internal/handler/http"
	"github.com/utafrali/FurnitureStore/internal/identity"
	"github.com/utafrali/FurnitureStore/internal/repository"
	mongorepo "github.com/utafrali/FurnitureStore/internal/repository/mongo"
	"github.com/utafrali/FurnitureStore/internal/repository/postgres"
	redisrepo "github.com/utafrali/FurnitureStore/internal/repository/redis"
	"github.com/utafrali/FurnitureStore/internal/service"
	"github.com/utafrali/FurnitureStore/internal/store"
	"github.com/utafrali/FurnitureStore/pkg/database"
	"github.com/utafrali/FurnitureStore/pkg/health"
	pkgkafka "github.com/utafrali/FurnitureStore/pkg/kafka"
	"github.com/utafrali/FurnitureStore/pkg/middleware"
	"github.com/utafrali/FurnitureStore/pkg/tracing"
)

// App wires together all dependencies and runs the storefront API.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	mongoDB        *mongo.Database
	rdb            *redis.Client
	publisher      pkgkafka.Publisher
	limiter        *middleware.RateLimiter
	tracerShutdown func(context.Context) error
	httpServer     *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}
	if err := a.init(ctx); err != nil {
		a.closeStores()
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	cfg, logger := a.cfg, a.logger

	// Tracing.
	tcfg := tracing.DefaultConfig("furniture-" + handler.ServiceName)
	tcfg.Environment = cfg.Environment
	tcfg.OTLPEndpoint = cfg.OTELEndpoint
	tcfg.SampleRate = cfg.OTELSampleRate
	tcfg.Enabled = cfg.OTELEnabled
	shutdown, err := tracing.InitTracer(ctx, tcfg)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = shutdown

	// PostgreSQL catalog.
	pgCfg := cfg.Postgres()
	a.pool, err = database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.String("database", cfg.PostgresDB),
	)
	if err := database.RunMigrations(ctx, a.pool, postgres.Migrations(), logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, a.pool, handler.ServiceName); err != nil {
		logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
	}
	database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, logger)

	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return a.pool.Ping(ctx)
	})

	// Server-side carts and wishlists.
	carts, wishlists, err := a.openBasketStore(ctx, healthHandler)
	if err != nil {
		return err
	}

	// Kafka producer. Without brokers events are dropped.
	if len(cfg.KafkaBrokers) > 0 {
		a.publisher = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		healthHandler.RegisterOptional("kafka", a.publisher.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	} else {
		a.publisher = pkgkafka.NopPublisher{}
		logger.Warn("no kafka brokers configured, events disabled")
	}

	// Build the dependency graph.
	producer := event.NewProducer(a.publisher, logger)
	productRepo := postgres.NewProductRepository(a.pool)
	collectionRepo := postgres.NewCollectionRepository(a.pool)
	projectRepo := postgres.NewProjectRepository(a.pool)

	tokens := identity.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	cookies := store.NewCookieCodec(cfg.CookieSecret, cfg.CookieTTL, cfg.CookieSecure)

	if cfg.RateLimitRPS > 0 {
		a.limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins

	router := handler.NewRouter(handler.Deps{
		Resolver:    identity.NewResolver(tokens),
		Stores:      store.NewSelector(carts, wishlists, cookies, logger),
		Carts:       service.NewCartManager(producer, logger),
		Wishlists:   service.NewWishlistManager(producer, logger),
		Products:    service.NewProductService(productRepo, producer, logger),
		Collections: service.NewCollectionService(collectionRepo, producer, logger),
		Projects:    service.NewProjectService(projectRepo, producer, logger),
		Checkout: service.NewCheckoutService(productRepo, collectionRepo, service.CheckoutConfig{
			Phone:    cfg.WhatsAppPhone,
			Currency: cfg.Currency,
			Greeting: cfg.WhatsAppGreeting,
		}, logger),
		Health:         healthHandler,
		Logger:         logger,
		CORS:           cors,
		RateLimiter:    a.limiter,
		PprofCIDRs:     cfg.PprofAllowedCIDRs,
		GuestCookie:    handler.GuestCookieConfig{Secure: cfg.CookieSecure, MaxAge: cfg.GuestTTL},
		RequestTimeout: cfg.RequestTimeout,
	})

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return nil
}

// openBasketStore connects the configured cart and wishlist backend.
func (a *App) openBasketStore(ctx context.Context, h *health.Handler) (repository.CartRepository, repository.WishlistRepository, error) {
	cfg, logger := a.cfg, a.logger

	switch cfg.CartStore {
	case config.StoreRedis:
		rdb, err := database.NewRedisClient(ctx, cfg.Redis(), logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.rdb = rdb
		h.Register("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
		logger.Info("connected to Redis",
			slog.String("addr", cfg.Redis().Addr()),
			slog.Int("db", cfg.RedisDB),
		)
		return redisrepo.NewCartRepository(rdb, cfg.CartTTL), redisrepo.NewWishlistRepository(rdb, cfg.CartTTL), nil

	default:
		db, err := database.NewMongoDatabase(ctx, cfg.Mongo(), logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to mongodb: %w", err)
		}
		a.mongoDB = db
		if err := mongorepo.EnsureIndexes(ctx, db, cfg.CartTTL); err != nil {
			return nil, nil, fmt.Errorf("ensure mongo indexes: %w", err)
		}
		h.Register("mongodb", func(ctx context.Context) error {
			return db.Client().Ping(ctx, nil)
		})
		logger.Info("connected to MongoDB", slog.String("database", cfg.MongoDatabase))
		return mongorepo.NewCartRepository(db), mongorepo.NewWishlistRepository(db), nil
	}
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
			slog.String("cart_store", a.cfg.CartStore),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}
	if a.limiter != nil {
		a.limiter.Close()
	}

	if err := a.publisher.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}
	a.closeStores()

	if a.tracerShutdown != nil {
		if err := a.tracerShutdown(shutdownCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
	}

	a.logger.Info("application shutdown complete")
	return nil
}

func (a *App) closeStores() {
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}
	if a.mongoDB != nil {
		if err := a.mongoDB.Client().Disconnect(context.Background()); err != nil {
			a.logger.Error("mongodb disconnect error", slog.String("error", err.Error()))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
