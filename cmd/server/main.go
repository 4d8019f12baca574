// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/bookshelf/internal/api"
	"github.com/tomtom215/bookshelf/internal/auth"
	"github.com/tomtom215/bookshelf/internal/config"
	"github.com/tomtom215/bookshelf/internal/logging"
	"github.com/tomtom215/bookshelf/internal/recommend"
	"github.com/tomtom215/bookshelf/internal/source"
	"github.com/tomtom215/bookshelf/internal/supervisor"
	"github.com/tomtom215/bookshelf/internal/supervisor/services"
)

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	issueTokenFor := flag.String("issue-token", "", "print an admin token for `username` and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	if *issueTokenFor != "" {
		if err := issueToken(os.Stdout, &cfg.Security, *issueTokenFor); err != nil {
			logging.Fatal().Err(err).Msg("Failed to issue token")
		}
		return
	}

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("source_engine", cfg.Sources.Engine).
		Str("items_path", cfg.Sources.ItemsPath).
		Bool("admin_enabled", cfg.Security.AdminEnabled()).
		Bool("events_enabled", cfg.Events.Enabled).
		Msg("Starting Bookshelf with supervisor tree")

	loader, err := source.NewLoader(&cfg.Sources, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create source loader")
	}
	defer func() {
		if err := loader.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing source loader")
		}
	}()

	engine, err := recommend.NewEngine(cfg.Recommend.EngineConfig(cfg.Sources.RowCap), loader, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create recommendation engine")
	}
	runner := services.NewBuildRunner(engine, logging.Logger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	evts, err := initEvents(cfg, tree, engine, runner)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize events")
	}
	defer evts.Close()

	var jwtManager *auth.JWTManager
	if cfg.Security.AdminEnabled() {
		jwtManager, err = auth.NewJWTManager(&cfg.Security)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
		}
		logging.Info().Msg("Admin routes enabled (JWT)")
	} else {
		logging.Info().Msg("Admin routes disabled (JWT_SECRET not set)")
	}

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	handler := api.NewHandler(engine, runner, evts.RebuildPublisher(), &cfg.Recommend)
	defer handler.Close()
	engine.OnPublish(handler.OnSnapshotPublished)

	router := api.NewRouter(handler, api.NewChiMiddleware(api.NewChiMiddlewareConfig(&cfg.Security)), jwtManager)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	// === ADD SERVICES TO SUPERVISOR TREE ===

	if cfg.Recommend.Enabled {
		tree.AddBuildService(services.NewBuildService(runner, services.BuildServiceConfig{
			BuildOnStartup:  cfg.Recommend.BuildOnStartup,
			RebuildInterval: cfg.Recommend.RebuildInterval,
		}, logging.Logger()))
		logging.Info().
			Bool("build_on_startup", cfg.Recommend.BuildOnStartup).
			Dur("rebuild_interval", cfg.Recommend.RebuildInterval).
			Msg("Build service added to supervisor tree")
	} else {
		logging.Warn().Msg("Scheduled builds disabled (RECOMMEND_ENABLED=false); snapshots only via admin rebuild")
	}

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	if cfg.Recommend.CacheSize > 0 {
		tree.AddAPIService(services.NewCacheSweepService(handler, cfg.Recommend.CacheTTL, logging.Logger()))
		logging.Info().Dur("interval", cfg.Recommend.CacheTTL).Msg("Cache sweep service added")
	}

	// === START SUPERVISOR TREE ===

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
		serveErr = <-errCh
	case serveErr = <-errCh:
	}
	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		logging.Error().Err(serveErr).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Bookshelf stopped gracefully")
}
