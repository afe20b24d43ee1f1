package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sjlee-dev/ragdocs/internal/bootstrap"
	"github.com/sjlee-dev/ragdocs/internal/config"
	"github.com/sjlee-dev/ragdocs/internal/core/domain"
	"github.com/sjlee-dev/ragdocs/internal/observability/logging"
	"github.com/sjlee-dev/ragdocs/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logging.Setup("worker", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		slog.Info("worker_metrics_listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("worker_metrics_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker_subscribed", "subject", cfg.NATSProgressSubject)
	err = app.Events.SubscribeProgress(ctx, func(handlerCtx context.Context, event domain.StatusEvent) error {
		applyCtx, cancel := context.WithTimeout(handlerCtx, 30*time.Second)
		defer cancel()

		workerMetrics.ObserveEventLag(time.Since(event.OccurredAt))
		start := time.Now()
		applyErr := app.ProgressUC.Apply(applyCtx, event)
		workerMetrics.ObserveEvent("worker", time.Since(start), applyErr)
		return applyErr
	})
	if err != nil {
		slog.Error("worker_subscribe_failed", "error", err)
		os.Exit(1)
	}
}
