package main

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/petfood-ae/storefront/internal/adapters/postgres"
	"github.com/petfood-ae/storefront/internal/config"
	"github.com/petfood-ae/storefront/internal/core"
	"github.com/petfood-ae/storefront/internal/logger"
	"github.com/petfood-ae/storefront/internal/service"
	"github.com/petfood-ae/storefront/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load config")
	}
	logger.SetLevel(cfg.LogLevel)

	repo, err := postgres.NewRepository(cfg.DBURL)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer repo.Close()

	ctx := context.Background()

	for i := range store.SeedCatalog {
		product := store.SeedCatalog[i]
		if err := repo.UpsertProduct(ctx, &product); err != nil {
			logger.Log.Fatal().Err(err).Str("product", product.Name).Msg("Failed to upsert product")
		}
	}
	logger.Log.Info().Int("products", len(store.SeedCatalog)).Msg("Catalog seeded")

	if err := seedAdmin(ctx, cfg, repo.AdminUserRepository()); err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to seed admin user")
	}

	if cfg.OrderBackend == config.OrderBackendPostgres && cfg.SeedOrders > 0 {
		if err := seedOrders(ctx, cfg, repo.OrderRepository()); err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to seed demo orders")
		}
	}

	logger.Log.Info().Msg("Seeder completed")
}

// seedAdmin creates the default admin account unless it already exists
func seedAdmin(ctx context.Context, cfg *config.Config, admins core.AdminUserRepository) error {
	if cfg.AdminPassword == "" {
		logger.Log.Warn().Msg("ADMIN_PASSWORD not set, skipping admin user")
		return nil
	}

	_, err := admins.GetByEmail(ctx, cfg.AdminEmail)
	if err == nil {
		logger.Log.Info().Str("email", cfg.AdminEmail).Msg("Admin user already exists")
		return nil
	}
	if !errors.Is(err, core.ErrAdminUserNotFound) {
		return err
	}

	hash, err := service.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}

	user := &core.AdminUser{
		ID:           uuid.New().String(),
		Email:        cfg.AdminEmail,
		Name:         "Store Admin",
		PasswordHash: hash,
		Role:         core.AdminRoleAdmin,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	if err := admins.Create(ctx, user); err != nil {
		return err
	}

	logger.Log.Info().Str("email", user.Email).Msg("Admin user created")
	return nil
}

// seedOrders writes demo orders into an empty orders table
func seedOrders(ctx context.Context, cfg *config.Config, orders core.OrderRepository) error {
	existing, err := orders.GetAll(ctx, "")
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logger.Log.Info().Int("orders", len(existing)).Msg("Orders table not empty, skipping demo orders")
		return nil
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	shipping, err := cfg.ShippingPolicy()
	if err != nil {
		return err
	}

	demo := store.DemoOrders(time.Now().In(loc), cfg.SeedOrders, shipping)
	for _, order := range demo {
		if err := orders.CreateOrder(ctx, order); err != nil {
			return err
		}
	}

	logger.Log.Info().Int("orders", len(demo)).Msg("Demo orders seeded")
	return nil
}
