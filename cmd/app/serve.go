package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"trip-itinerary-ai/internal/infra/api"
	pg "trip-itinerary-ai/internal/infra/db/postgres"
	httpserver "trip-itinerary-ai/internal/infra/http"
	"trip-itinerary-ai/internal/infra/metrics"
	"trip-itinerary-ai/internal/infra/tracing"
	"trip-itinerary-ai/internal/infra/worker"
)

func newServeCmd(f *rootFlags) *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the async processor and the stuck job sweeper",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, f, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply the schema before serving")
	return cmd
}

func serve(ctx context.Context, f *rootFlags, migrate bool) error {
	a, err := buildApp(ctx, f)
	if err != nil {
		return err
	}
	defer a.Close()
	cfg, log := a.cfg, a.log

	if migrate {
		if err := pg.Migrate(ctx, a.pool); err != nil {
			return err
		}
	}

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing, version, nil)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	auth := api.NewAuthManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	router := api.NewRouter(a.genUC, auth, api.RouterOptions{
		Async:          cfg.Generation.Async(),
		RequestTimeout: cfg.HTTP.RequestTimeout,
	}, log)
	srv := httpserver.NewServer(cfg.HTTP, router, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	g.Go(func() error {
		pg.ReportPoolStats(gctx, a.pool, 15*time.Second, log)
		return nil
	})

	sweeper := worker.NewStuckJobSweeper(cfg.Generation.SweepEvery, cfg.Generation.StuckAfter, a.genUC, log)
	g.Go(func() error { return sweeper.Run(gctx) })

	if cfg.Generation.Async() {
		pool := worker.NewPool(cfg.Generation.Workers, log)
		pool.Start(gctx)
		processor := worker.NewGenerationProcessor(a.genUC, cfg.Generation.PollInterval, log)
		g.Go(func() error {
			defer pool.Stop()
			return processor.Start(gctx, pool)
		})
	}

	log.Info().Str("version", version).Str("mode", cfg.Generation.Mode).Msg("service started")
	err = g.Wait()
	log.Info().Msg("service stopped")
	return err
}
