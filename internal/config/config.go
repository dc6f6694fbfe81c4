package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // STORE_TIMEZONE must resolve on hosts without a zone database

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/petfood-ae/storefront/internal/core"
	"github.com/shopspring/decimal"
)

// Order backends
const (
	OrderBackendSnapshot = "snapshot"
	OrderBackendPostgres = "postgres"
)

// placeholderJWTSecret is the JWT_SECRET default; it only signs tokens
// outside production.
const placeholderJWTSecret = "change-this-secret-in-production"

// Config holds all application configuration
type Config struct {
	AppPort  string `envconfig:"APP_PORT" default:"8080"`
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Store calendar used for period boundaries
	StoreTimezone string `envconfig:"STORE_TIMEZONE" default:"Asia/Dubai"`

	// Database
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD" default:"postgres"`
	DBName     string `envconfig:"DB_NAME" default:"petfood_store"`
	DBURL      string `envconfig:"DB_URL"`

	// Redis
	RedisURL      string `envconfig:"REDIS_URL" default:"redis://localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`

	// Dashboard
	JWTSecret     string `envconfig:"JWT_SECRET" default:"change-this-secret-in-production"`
	AdminEmail    string `envconfig:"ADMIN_EMAIL" default:"admin@petfood.ae"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`

	// Checkout
	ShippingFee           string `envconfig:"SHIPPING_FEE" default:"15"`
	FreeShippingThreshold string `envconfig:"FREE_SHIPPING_THRESHOLD" default:"200"`
	CartTTLHours          int    `envconfig:"CART_TTL_HOURS" default:"168"`

	// Orders
	OrderBackend     string `envconfig:"ORDER_BACKEND" default:"snapshot"` // snapshot | postgres
	OrderSnapshotKey string `envconfig:"ORDER_SNAPSHOT_KEY" default:"orders"`
	SeedOrders       int    `envconfig:"SEED_ORDERS" default:"0"` // Demo orders generated into an empty store on boot
}

var instance *Config

// Load initializes and returns the singleton Config instance
func Load() (*Config, error) {
	if instance != nil {
		return instance, nil
	}

	// Load .env file if it exists (for local development)
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	cfg, err := fromEnv()
	if err != nil {
		return nil, err
	}

	instance = cfg
	return instance, nil
}

// Get returns the singleton Config instance (must call Load first)
func Get() *Config {
	if instance == nil {
		panic("config not loaded: call config.Load() first")
	}
	return instance
}

func fromEnv() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("error processing environment variables: %w", err)
	}

	// Check for the platform DATABASE_URL if DB_URL is not set
	if cfg.DBURL == "" {
		if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
			cfg.DBURL = databaseURL
		}
	}

	// Build DBURL if still not provided
	if cfg.DBURL == "" {
		cfg.DBURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
	}

	cfg.OrderBackend = strings.ToLower(strings.TrimSpace(cfg.OrderBackend))
	if cfg.OrderBackend != OrderBackendSnapshot && cfg.OrderBackend != OrderBackendPostgres {
		return nil, fmt.Errorf("invalid ORDER_BACKEND %q: expected %s or %s", cfg.OrderBackend, OrderBackendSnapshot, OrderBackendPostgres)
	}

	if cfg.IsProduction() {
		secret := strings.TrimSpace(cfg.JWTSecret)
		if secret == "" || secret == placeholderJWTSecret {
			return nil, fmt.Errorf("JWT_SECRET must be set to a private value when APP_ENV is production")
		}
	}

	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	if _, err := cfg.ShippingPolicy(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Location returns the store time zone
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.StoreTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid STORE_TIMEZONE %q: %w", c.StoreTimezone, err)
	}
	return loc, nil
}

// ShippingPolicy returns the checkout shipping rule
func (c *Config) ShippingPolicy() (core.ShippingPolicy, error) {
	fee, err := decimal.NewFromString(c.ShippingFee)
	if err != nil || fee.IsNegative() {
		return core.ShippingPolicy{}, fmt.Errorf("invalid SHIPPING_FEE %q", c.ShippingFee)
	}
	threshold, err := decimal.NewFromString(c.FreeShippingThreshold)
	if err != nil || threshold.IsNegative() {
		return core.ShippingPolicy{}, fmt.Errorf("invalid FREE_SHIPPING_THRESHOLD %q", c.FreeShippingThreshold)
	}
	return core.ShippingPolicy{FlatFee: fee, FreeThreshold: threshold}, nil
}

// CartTTL returns how long an idle cart is kept
func (c *Config) CartTTL() time.Duration {
	if c.CartTTLHours <= 0 {
		return 0
	}
	return time.Duration(c.CartTTLHours) * time.Hour
}

// IsProduction reports whether the app runs in production
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}
