package config

import (
	"fmt"
	"strings"
	"time"

	pkgconfig "github.com/utafrali/FurnitureStore/pkg/config"
	"github.com/utafrali/FurnitureStore/pkg/database"
)

// Cart and wishlist backends selectable through CART_STORE.
const (
	StoreMongo = "mongo"
	StoreRedis = "redis"
)

const devSecret = "dev-only-change-me"

// Config holds all configuration for the storefront API.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort       int           `env:"STOREFRONT_HTTP_PORT" envDefault:"8080"`
	RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"30s"`

	// Identity
	JWTSecret    string        `env:"JWT_SECRET" envDefault:"dev-only-change-me"`
	JWTIssuer    string        `env:"JWT_ISSUER" envDefault:"furniture-store"`
	JWTTTL       time.Duration `env:"JWT_TTL" envDefault:"24h"`
	GuestTTL     time.Duration `env:"GUEST_COOKIE_TTL" envDefault:"8760h"`
	CookieSecure bool          `env:"COOKIE_SECURE" envDefault:"false"`

	// Browser-held cart and wishlist
	CookieSecret string        `env:"CART_COOKIE_SECRET" envDefault:"dev-only-change-me"`
	CookieTTL    time.Duration `env:"CART_COOKIE_TTL" envDefault:"720h"`

	// Server-side cart and wishlist
	CartStore string        `env:"CART_STORE" envDefault:"mongo"`
	CartTTL   time.Duration `env:"CART_TTL" envDefault:"720h"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"furniture"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"furniture_secret"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"furniture"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Database pool
	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"20"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`

	// MongoDB
	MongoURI      string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"furniture"`
	MongoMaxPool  uint64 `env:"MONGO_MAX_POOL_SIZE" envDefault:"50"`

	// Redis
	RedisHost string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka. Empty disables event publishing.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	// WhatsApp checkout
	WhatsAppPhone    string `env:"WHATSAPP_PHONE" envDefault:"48600100200"`
	WhatsAppGreeting string `env:"WHATSAPP_GREETING" envDefault:"Hello! I would like to order:"`
	Currency         string `env:"CURRENCY" envDefault:"PLN"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`

	// Rate limiting per client IP. Zero RPS disables it.
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"40"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Pprof debug endpoints (IP allowlist in CIDR notation)
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"10.0.0.0/8,172.16.0.0/12,192.168.0.0/16,127.0.0.0/8,::1/128" envSeparator:","`

	// Slow query logging
	SlowQueryThresholdMs int `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	switch c.CartStore {
	case StoreMongo, StoreRedis:
	default:
		return fmt.Errorf("CART_STORE must be %q or %q, got %q", StoreMongo, StoreRedis, c.CartStore)
	}
	if !c.IsDevelopment() {
		if c.JWTSecret == devSecret {
			return fmt.Errorf("JWT_SECRET must be set outside development")
		}
		if c.CookieSecret == devSecret {
			return fmt.Errorf("CART_COOKIE_SECRET must be set outside development")
		}
	}
	if c.JWTSecret == "" || c.CookieSecret == "" {
		return fmt.Errorf("JWT_SECRET and CART_COOKIE_SECRET must not be empty")
	}
	if c.CookieTTL <= 0 || c.CartTTL <= 0 || c.GuestTTL <= 0 || c.JWTTTL <= 0 {
		return fmt.Errorf("cookie, cart and token TTLs must be positive")
	}
	if c.PostgresHost == "" {
		return fmt.Errorf("POSTGRES_HOST is required")
	}
	if c.PostgresUser == "" {
		return fmt.Errorf("POSTGRES_USER is required")
	}
	if c.CartStore == StoreMongo && c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required when CART_STORE=mongo")
	}
	if strings.Trim(c.WhatsAppPhone, "+ ") == "" {
		return fmt.Errorf("WHATSAPP_PHONE is required")
	}
	if len(c.Currency) != 3 {
		return fmt.Errorf("CURRENCY must be a three-letter code, got %q", c.Currency)
	}
	if c.RateLimitRPS < 0 || (c.RateLimitRPS > 0 && c.RateLimitBurst < 1) {
		return fmt.Errorf("invalid rate limit: rps=%v burst=%d", c.RateLimitRPS, c.RateLimitBurst)
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Postgres returns the catalog database settings.
func (c *Config) Postgres() database.PostgresConfig {
	return database.PostgresConfig{
		Host:            c.PostgresHost,
		Port:            c.PostgresPort,
		User:            c.PostgresUser,
		Password:        c.PostgresPass,
		DBName:          c.PostgresDB,
		SSLMode:         c.PostgresSSL,
		MaxConns:        c.DBMaxConns,
		MinConns:        c.DBMinConns,
		MaxConnLifetime: time.Duration(c.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(c.DBMaxConnIdleTimeMins) * time.Minute,
	}
}

// Mongo returns the document store settings.
func (c *Config) Mongo() database.MongoConfig {
	return database.MongoConfig{URI: c.MongoURI, Database: c.MongoDatabase, MaxPoolSize: c.MongoMaxPool}
}

// Redis returns the alternative document store settings.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{Host: c.RedisHost, Port: c.RedisPort, Password: c.RedisPass, DB: c.RedisDB}
}
