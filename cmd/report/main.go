package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/petfood-ae/storefront/internal/adapters/postgres"
	redisRepo "github.com/petfood-ae/storefront/internal/adapters/redis"
	"github.com/petfood-ae/storefront/internal/config"
	"github.com/petfood-ae/storefront/internal/core"
	"github.com/petfood-ae/storefront/internal/export"
	"github.com/petfood-ae/storefront/internal/logger"
	"github.com/petfood-ae/storefront/internal/service"
	"github.com/petfood-ae/storefront/internal/store"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"
)

type closer func() error

func main() {
	app := &cli.App{
		Name:  "report",
		Usage: "Export sales reports and order lists",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "backend",
				Usage:   "Order source: snapshot or postgres",
				EnvVars: []string{"ORDER_BACKEND"},
			},
			&cli.IntFlag{
				Name:  "demo",
				Usage: "Report over N generated demo orders instead of a live store",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "csv, xlsx or pdf",
				Value: "csv",
			},
			&cli.StringFlag{
				Name:  "filename",
				Usage: "Output file name (sanitized, extension added when missing)",
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "Directory the export is written to",
				Value: ".",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "sales",
				Usage: "Export sales statistics for a period",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "period",
						Usage: "day, week, month, year or custom",
						Value: string(core.PeriodMonth),
					},
					&cli.StringFlag{
						Name:  "from",
						Usage: "Custom range start (YYYY-MM-DD)",
					},
					&cli.StringFlag{
						Name:  "to",
						Usage: "Custom range end (YYYY-MM-DD)",
					},
				},
				Action: runSales,
			},
			{
				Name:  "orders",
				Usage: "Export the order list",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "status",
						Usage: "Only orders in this status",
					},
				},
				Action: runOrders,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("Report failed")
	}
}

func runSales(c *cli.Context) error {
	format, err := export.ParseFormat(c.String("format"))
	if err != nil {
		return err
	}

	svc, done, err := newReportService(c)
	if err != nil {
		return err
	}
	defer done()

	artifact, err := svc.ExportSalesReport(
		c.Context,
		core.Period(c.String("period")),
		c.String("from"),
		c.String("to"),
		format,
		c.String("filename"),
	)
	if err != nil {
		return err
	}
	return writeArtifact(c.String("out"), artifact)
}

func runOrders(c *cli.Context) error {
	format, err := export.ParseFormat(c.String("format"))
	if err != nil {
		return err
	}

	svc, done, err := newReportService(c)
	if err != nil {
		return err
	}
	defer done()

	artifact, err := svc.ExportOrders(c.Context, c.String("status"), format, c.String("filename"))
	if err != nil {
		return err
	}
	return writeArtifact(c.String("out"), artifact)
}

// newReportService wires a dashboard service over the selected order source
func newReportService(c *cli.Context) (*service.DashboardService, closer, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger.SetLevel(cfg.LogLevel)

	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}

	orders, done, err := openOrders(c.Context, c, cfg, loc)
	if err != nil {
		return nil, nil, err
	}

	return service.NewDashboardService(nil, nil, orders, nil, cfg.JWTSecret, loc), done, nil
}

func openOrders(ctx context.Context, c *cli.Context, cfg *config.Config, loc *time.Location) (core.OrderRepository, closer, error) {
	if n := c.Int("demo"); n > 0 {
		shipping, err := cfg.ShippingPolicy()
		if err != nil {
			return nil, nil, err
		}
		orders := store.NewOrderStore(store.NewMemorySnapshots(), "")
		if _, err := orders.Seed(ctx, store.DemoOrders(time.Now().In(loc), n, shipping)); err != nil {
			return nil, nil, err
		}
		return orders, func() error { return nil }, nil
	}

	backend := cfg.OrderBackend
	if b := c.String("backend"); b != "" {
		backend = b
	}

	switch backend {
	case config.OrderBackendPostgres:
		repo, err := postgres.NewRepository(cfg.DBURL)
		if err != nil {
			return nil, nil, err
		}
		return repo.OrderRepository(), repo.Close, nil
	case config.OrderBackendSnapshot:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		if cfg.RedisPassword != "" {
			opts.Password = cfg.RedisPassword
		}
		rdb := redis.NewClient(opts)

		orders := store.NewOrderStore(redisRepo.NewSnapshotStore(rdb), cfg.OrderSnapshotKey)
		if err := orders.Load(ctx); err != nil {
			rdb.Close()
			return nil, nil, err
		}
		return orders, rdb.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown order backend %q", backend)
}

func writeArtifact(dir string, artifact *export.Artifact) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, artifact.Filename)
	if err := os.WriteFile(path, artifact.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	logger.Log.Info().Str("file", path).Int("bytes", len(artifact.Data)).Msg("Export written")
	return nil
}
