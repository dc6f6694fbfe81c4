package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	httpAdapter "github.com/petfood-ae/storefront/internal/adapters/http"
	"github.com/petfood-ae/storefront/internal/adapters/postgres"
	redisRepo "github.com/petfood-ae/storefront/internal/adapters/redis"
	"github.com/petfood-ae/storefront/internal/config"
	"github.com/petfood-ae/storefront/internal/core"
	"github.com/petfood-ae/storefront/internal/events"
	"github.com/petfood-ae/storefront/internal/logger"
	"github.com/petfood-ae/storefront/internal/service"
	"github.com/petfood-ae/storefront/internal/store"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load config")
	}

	if cfg.IsProduction() {
		logger.UseJSON()
	}
	logger.SetLevel(cfg.LogLevel)

	loc, err := cfg.Location()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Invalid store timezone")
	}
	shipping, err := cfg.ShippingPolicy()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Invalid shipping policy")
	}

	// Connect to Redis
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to parse Redis URL")
	}
	if cfg.RedisPassword != "" {
		redisOpts.Password = cfg.RedisPassword
	}

	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	logger.Log.Info().Msg("Redis connection established")

	// Connect to PostgreSQL
	dbpool, err := pgxpool.New(ctx, cfg.DBURL)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to create connection pool")
	}
	defer dbpool.Close()

	if err := dbpool.Ping(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	logger.Log.Info().Msg("PostgreSQL connection established")

	postgresRepo, err := postgres.NewRepository(cfg.DBURL)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize postgres repository")
	}
	defer postgresRepo.Close()

	orderRepo, err := openOrders(cfg, rdb, postgresRepo, shipping, loc)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to open order store")
	}

	eventBus := events.NewEventBus()

	storefrontService := service.NewStorefrontService(
		postgresRepo.ProductRepository(),
		orderRepo,
		redisRepo.NewRepository(rdb),
		eventBus,
		shipping,
		cfg.CartTTL(),
		loc,
	)

	dashboardService := service.NewDashboardService(
		postgresRepo.AdminUserRepository(),
		postgresRepo.ProductRepository(),
		orderRepo,
		eventBus,
		cfg.JWTSecret,
		loc,
	)

	app := httpAdapter.NewApp(
		httpAdapter.NewStorefrontHandler(storefrontService, cfg.CartTTL()),
		httpAdapter.NewDashboardHandler(dashboardService, cfg.IsProduction()),
		dashboardService,
	)

	go func() {
		addr := fmt.Sprintf(":%s", cfg.AppPort)
		logger.Log.Info().Str("addr", addr).Str("orders", cfg.OrderBackend).Str("timezone", loc.String()).Msg("Server starting")
		if err := app.Listen(addr); err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info().Msg("Shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Log.Error().Err(err).Msg("Server shutdown failed")
	}
}

// openOrders selects the order backend. The snapshot backend keeps orders in
// memory and persists them to Redis, seeding demo orders into an empty store
// when SEED_ORDERS is set.
func openOrders(cfg *config.Config, rdb *redis.Client, pg *postgres.Repository, shipping core.ShippingPolicy, loc *time.Location) (core.OrderRepository, error) {
	if cfg.OrderBackend == config.OrderBackendPostgres {
		return pg.OrderRepository(), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	orders := store.NewOrderStore(redisRepo.NewSnapshotStore(rdb), cfg.OrderSnapshotKey)
	if err := orders.Load(ctx); err != nil {
		return nil, err
	}

	if cfg.SeedOrders > 0 {
		seeded, err := orders.Seed(ctx, store.DemoOrders(time.Now().In(loc), cfg.SeedOrders, shipping))
		if err != nil {
			return nil, fmt.Errorf("failed to seed demo orders: %w", err)
		}
		if seeded {
			logger.Log.Info().Int("count", cfg.SeedOrders).Msg("Seeded demo orders")
		}
	}

	logger.Log.Info().Int("orders", orders.Len()).Str("key", cfg.OrderSnapshotKey).Msg("Order snapshot loaded")
	return orders, nil
}
