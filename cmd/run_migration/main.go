package main

import (
	"context"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/petfood-ae/storefront/internal/adapters/postgres"
	"github.com/petfood-ae/storefront/internal/config"
	"github.com/petfood-ae/storefront/internal/logger"
)

// Applies the embedded schema migrations in order. A file path argument runs
// that single SQL file instead.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load config")
	}

	dbURL := cfg.DBURL
	if publicURL := os.Getenv("DATABASE_PUBLIC_URL"); publicURL != "" {
		dbURL = publicURL
		logger.Log.Info().Msg("Using DATABASE_PUBLIC_URL for local execution")
	}

	ctx := context.Background()
	dbpool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbpool.Close()

	if err := dbpool.Ping(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to ping database")
	}
	logger.Log.Info().Msg("Database connection established")

	migrations, err := selectMigrations(os.Args[1:])
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to read migrations")
	}

	for _, m := range migrations {
		logger.Log.Info().Str("migration", m.Name).Msg("Executing migration")
		if _, err := dbpool.Exec(ctx, m.SQL); err != nil {
			logger.Log.Fatal().Err(err).Str("migration", m.Name).Msg("Failed to execute migration")
		}
	}

	logger.Log.Info().Int("count", len(migrations)).Msg("Migrations completed successfully")
}

func selectMigrations(args []string) ([]postgres.Migration, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return postgres.Migrations()
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, err
	}
	return []postgres.Migration{{Name: args[0], SQL: string(data)}}, nil
}
