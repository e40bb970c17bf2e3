package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/goran-ethernal/RWAIndexor/internal/checkpoint"
	"github.com/goran-ethernal/RWAIndexor/internal/common"
	"github.com/goran-ethernal/RWAIndexor/internal/config"
	"github.com/goran-ethernal/RWAIndexor/internal/contracts"
	"github.com/goran-ethernal/RWAIndexor/internal/db"
	"github.com/goran-ethernal/RWAIndexor/internal/listener"
	"github.com/goran-ethernal/RWAIndexor/internal/metrics"
	"github.com/goran-ethernal/RWAIndexor/internal/migrations"
	"github.com/goran-ethernal/RWAIndexor/internal/processors"
	"github.com/goran-ethernal/RWAIndexor/internal/rpc"
	"github.com/goran-ethernal/RWAIndexor/pkg/api"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func runIndexer(cmd *cobra.Command, args []string) error {
	fmt.Printf(banner, version)

	cfg, err := config.Load(configPath, envFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := componentLogger(cfg, common.ComponentListener)

	database, err := db.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	log.Infow("running database migrations", "driver", cfg.DB.Driver)
	if err := migrations.RunMigrations(componentLogger(cfg, common.ComponentDB), database, cfg.DB.Driver); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	registry, err := processors.Build(cfg.Processors, componentLogger(cfg, common.ComponentProcessor))
	if err != nil {
		return fmt.Errorf("failed to build processors: %w", err)
	}

	maintenance := db.NewMaintenanceCoordinator(cfg.DB, database, cfg.Maintenance,
		componentLogger(cfg, common.ComponentMaintenance))

	checkpoints := checkpoint.NewStore(database, componentLogger(cfg, common.ComponentCheckpoint), maintenance)
	store := contracts.NewStore(database, componentLogger(cfg, common.ComponentContracts))

	log.Infow("connecting to node", "endpoint", cfg.Node.Endpoint)
	node, err := rpc.NewClient(ctx, cfg.Node.Endpoint, cfg.Node.RequestTimeout.Duration,
		componentLogger(cfg, common.ComponentNodeClient))
	if err != nil {
		return fmt.Errorf("failed to connect to node: %w", err)
	}
	defer node.Close()

	l, err := listener.New(cfg.Listener, node, checkpoints, store, registry, maintenance, log)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	if err := maintenance.Start(ctx); err != nil {
		return fmt.Errorf("failed to start maintenance: %w", err)
	}
	defer func() {
		if err := maintenance.Stop(); err != nil {
			log.Warnf("Failed to stop maintenance: %v", err)
		}
	}()

	// Everything else winds down once the listener returns.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		return l.Listen(gctx)
	})

	if cfg.Metrics != nil && cfg.Metrics.Enabled {
		metricsServer := metrics.NewServer(cfg.Metrics, componentLogger(cfg, common.ComponentMetrics))
		g.Go(func() error {
			return metricsServer.Run(gctx)
		})
	}

	if cfg.API != nil && cfg.API.Enabled {
		apiServer := api.NewServer(cfg.API, api.NewStatus(l, checkpoints, store, registry),
			componentLogger(cfg, common.ComponentAPI))
		g.Go(func() error {
			return apiServer.Start(gctx)
		})
	}

	log.Infow("RWA indexer started", "processors", len(registry.List()), "state", l.State().String())

	if err := g.Wait(); err != nil {
		log.Errorw("RWA indexer stopped", "state", l.State().String(), "error", err)
		return err
	}

	log.Info("RWA indexer stopped successfully")
	return nil
}
