package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/citycare/storefront/api/routes"
	"github.com/citycare/storefront/api/validators"
	"github.com/citycare/storefront/internal/catalog"
	"github.com/citycare/storefront/internal/storefront"
	"github.com/citycare/storefront/pkg/citycare"
	"github.com/citycare/storefront/pkg/config"
	"github.com/citycare/storefront/pkg/env"
	"github.com/citycare/storefront/pkg/logger"
	"github.com/citycare/storefront/pkg/maps"
	"github.com/citycare/storefront/pkg/metrics"
	"github.com/citycare/storefront/pkg/payments"
	pkgredis "github.com/citycare/storefront/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "storefront stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "storefront shut down gracefully")
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	backends, err := openBackends(ctx, cfg, logg)
	if err != nil {
		return err
	}

	api, err := citycare.NewClient(
		citycare.WithBaseURL(cfg.API.BaseURL),
		citycare.WithTimeout(cfg.API.Timeout),
		citycare.WithRole(cfg.API.Role),
		citycare.WithMetrics(metrics.NewRemoteCallMetrics(reg)),
	)
	if err != nil {
		backends.close(ctx, logg)
		return err
	}
	images := citycare.NewImages(cfg.API.ImageBaseURL)

	registry, err := storefront.NewRegistry(storefront.Dependencies{
		API:         api,
		Store:       backends.store,
		Gateway:     payments.NewBuilder(cfg.Gateway),
		Geocoder:    maps.NewClient(),
		Images:      images,
		Checkout:    cfg.Checkout,
		Logger:      logg,
		CartMetrics: metrics.NewCartMetrics(reg),
		Validate:    validators.Validator(),
	})
	if err != nil {
		backends.close(ctx, logg)
		return err
	}
	for _, closer := range backends.closers {
		registry.OnClose(closer)
	}
	defer func() {
		if err := registry.Close(); err != nil {
			logg.Error(ctx, "error closing storefront backends", err)
		}
	}()

	static, err := catalog.LoadStatic()
	if err != nil {
		return err
	}
	browser, err := catalog.NewBrowser(api, images)
	if err != nil {
		return err
	}

	addr := ":" + env.Port(cfg.App.Port)
	ctx = logg.WithFields(ctx, map[string]any{
		"env":        cfg.App.Env,
		"addr":       addr,
		"localStore": cfg.LocalStore.Backend,
	})

	server := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
		Handler: routes.NewRouter(cfg, logg, routes.Deps{
			Devices:     registry,
			Static:      static,
			Browser:     browser,
			LocalStore:  backends.store,
			Idempotency: backends.idempotency,
			HTTPMetrics: metrics.NewHTTPMetrics(reg),
			Metrics:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		}),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logg.Info(gctx, "starting storefront server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		registry.RunSweeper(gctx, cfg.Devices.SweepInterval, cfg.Devices.IdleTTL)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logg.Info(ctx, "stopping storefront server")
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// idempotencyStore keeps a nil *pkgredis.Client from becoming a non-nil interface.
func idempotencyStore(client *pkgredis.Client) pkgredis.IdempotencyStore {
	if client == nil {
		return nil
	}
	return client
}
