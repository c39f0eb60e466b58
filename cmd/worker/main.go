package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hemoboard/hemoboard/internal/bootstrap"
	"github.com/hemoboard/hemoboard/internal/config"
	"github.com/hemoboard/hemoboard/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewWorker(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		log.Printf("worker metrics on :%s", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("worker metrics server error: %v", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	log.Printf("worker subscribed to %s", cfg.NATSSubject)
	err = app.Queue.SubscribeDistrictDiscovered(ctx, func(handlerCtx context.Context, district string) error {
		resolveCtx, cancel := context.WithTimeout(handlerCtx, 2*time.Minute)
		defer cancel()

		if _, hit, err := app.Cache.Get(resolveCtx, district); err == nil {
			workerMetrics.RecordCacheLookup("worker", hit)
			if hit {
				return nil
			}
		}

		workerMetrics.StartGeocode()
		start := time.Now()
		resolveErr := app.GeocodeUC.Resolve(resolveCtx, district)
		workerMetrics.FinishGeocode("worker", resolveErr, time.Since(start))
		return resolveErr
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
