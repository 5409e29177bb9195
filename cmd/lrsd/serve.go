package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"lrsd/internal/config"
	"lrsd/internal/dispatch"
	"lrsd/internal/httpapi"
	"lrsd/internal/providers"
	"lrsd/internal/telemetry"
)

const (
	httpShutdownTimeout     = 5 * time.Second
	dispatchShutdownTimeout = 10 * time.Second
)

func runServe(ctx context.Context, o *options) error {
	f, env, err := resolveConfig(o)
	if err != nil {
		return err
	}
	logger, err := telemetry.NewLogger(f.Log.Level, f.Log.Format, nil)
	if err != nil {
		return err
	}
	d, err := newDaemon(ctx, env.ConfigPath, f, logger, env.OTelEndpoint)
	if err != nil {
		return err
	}
	return d.run(ctx)
}

// daemon is one fully wired lrsd process.
type daemon struct {
	file    config.File
	log     zerolog.Logger
	store   *config.Store
	catalog *providers.Catalog
	svc     *dispatch.Service
	handler http.Handler
	tracing func(context.Context) error
}

func newDaemon(ctx context.Context, path string, f config.File, logger zerolog.Logger, otelEndpoint string) (*daemon, error) {
	tracing, err := telemetry.SetupTracing(ctx, otelEndpoint, "lrsd", version)
	if err != nil {
		return nil, err
	}
	catalog, err := providers.Build(f.Providers, logger)
	if err != nil {
		_ = tracing(ctx)
		return nil, err
	}
	overflow, _ := dispatch.ParseOverflowPolicy(f.Service.Overflow)
	timeout, _ := f.Service.Timeout()

	store := config.NewStore(path, f, logger)
	dispatch.RegisterMetrics()
	svc := dispatch.New(dispatch.Config{
		Settings:        store,
		Providers:       catalog,
		Logger:          logger,
		Workers:         f.Service.Workers,
		QueueDepth:      f.Service.QueueDepth,
		Overflow:        overflow,
		DeliveryTimeout: timeout,
	})
	if err := svc.Initialize(); err != nil {
		_ = catalog.Close()
		_ = tracing(ctx)
		return nil, err
	}
	store.OnReload(func(next config.File) {
		if filterDrifted(next.Service.Origins.Filter, svc.Origins()) {
			logger.Warn().Strs("configured", next.Service.Origins.Filter).Strs("active", svc.Origins()).Msg("origin filter changed on disk; it takes effect after a restart")
		}
	})

	httpapi.SetLogger(logger)
	httpapi.SetRequestLogLevel(f.Log.Level)
	httpapi.SetMaxBodyBytes(f.HTTP.MaxBodyBytes)
	httpapi.SetCORSOptions(f.HTTP.CORS.Enabled, f.HTTP.CORS.Origins, f.HTTP.CORS.Methods, f.HTTP.CORS.Headers)

	return &daemon{
		file:    f,
		log:     logger,
		store:   store,
		catalog: catalog,
		svc:     svc,
		handler: httpapi.NewMux(svc),
		tracing: tracing,
	}, nil
}

// filterDrifted reports whether the configured origin filter differs from
// the active one once both are normalized the way the dispatcher loads them.
func filterDrifted(configured, active []string) bool {
	return !slices.Equal(dispatch.NewOriginFilter(configured).Origins(), active)
}

// run serves HTTP and watches the config file until ctx is done or the
// listener fails, then shuts everything down.
func (d *daemon) run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	httpapi.SetBaseContext(gctx)
	srv := &http.Server{
		Addr:              d.file.HTTP.Addr,
		Handler:           d.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		d.log.Info().Str("addr", srv.Addr).Bool("enabled", d.svc.IsEnabled()).Strs("providers", d.svc.Providers()).Msg("lrsd listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	if d.store.Path() != "" {
		g.Go(func() error { return d.store.Watch(gctx) })
	}
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			d.log.Warn().Err(err).Msg("graceful http shutdown error")
		}
		return d.close()
	})

	return g.Wait()
}

// close drains the dispatcher and releases providers and the tracer.
func (d *daemon) close() error {
	ctx, cancel := context.WithTimeout(context.Background(), dispatchShutdownTimeout)
	defer cancel()
	var errs []error
	if err := d.svc.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := d.catalog.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close providers: %w", err))
	}
	if err := d.tracing(ctx); err != nil {
		d.log.Warn().Err(err).Msg("tracer shutdown error")
	}
	st := d.svc.Stats()
	d.log.Info().Uint64("dispatched", st.Dispatched).Uint64("delivered", st.Delivered).Uint64("failed", st.Failed).Uint64("dropped", st.Dropped).Msg("lrsd stopped")
	return errors.Join(errs...)
}
