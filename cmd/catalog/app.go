package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aluiziolira/go-catalog-browser/catalog"
	"github.com/aluiziolira/go-catalog-browser/config"
	"github.com/aluiziolira/go-catalog-browser/controller"
	"github.com/aluiziolira/go-catalog-browser/coordinator"
	"github.com/aluiziolira/go-catalog-browser/presenter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// app wires one catalog client to one controller.
type app struct {
	cfg     *config.Config
	client  *catalog.Client
	ctrl    *controller.Controller
	metrics *coordinator.Metrics
}

func newApp(cfg *config.Config) (*app, error) {
	client, err := catalog.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialise catalog client: %w", err)
	}

	metrics := coordinator.NewMetrics()
	ctrl, err := controller.New(client, controller.Options{
		Render:          logView,
		PageSizes:       cfg.PageSizes,
		DefaultPageSize: cfg.DefaultPageSize,
		CacheSize:       cfg.CacheSize,
		Metrics:         metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("initialise controller: %w", err)
	}

	return &app{
		cfg:     cfg,
		client:  client,
		ctrl:    ctrl,
		metrics: metrics,
	}, nil
}

// start runs the controller loop until the returned stop func is called or
// ctx ends.
func (a *app) start(ctx context.Context) (stop func() error) {
	ctx, cancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- a.ctrl.Run(ctx) }()

	return func() error {
		cancel()
		return <-errCh
	}
}

func (a *app) gatherer() prometheus.Gatherer {
	return prometheus.Gatherers{a.client.Metrics.Registry, a.metrics.Registry}
}

// serveMetrics exposes /metrics on addr until ctx ends.
func (a *app) serveMetrics(ctx context.Context, addr string) {
	if addr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.gatherer(), promhttp.HandlerOpts{}))
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", slog.Any("error", err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
	}()
	slog.Info("metrics server enabled", slog.String("addr", addr))
}

func logView(v presenter.View) {
	slog.Debug("view updated",
		slog.String("page", v.PageLabel),
		slog.Int("items", len(v.Items)),
		slog.Bool("loading", v.IsLoading),
		slog.Bool("failed", v.Failed),
		slog.Bool("stale", v.Stale),
	)
}
