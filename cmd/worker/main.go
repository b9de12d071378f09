package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/kiriman-ayam/internal/bootstrap"
	"github.com/kirillkom/kiriman-ayam/internal/config"
	"github.com/kirillkom/kiriman-ayam/internal/observability/logging"
	"github.com/kirillkom/kiriman-ayam/internal/observability/metrics"
)

const service = "worker"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	slog.SetDefault(logging.NewJSONLogger(service, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics(service)
	archiver := app.ArchiveUC.WithLagObserver(func(lag time.Duration) {
		workerMetrics.ObserveQueueLag(service, lag)
	})

	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           workerMetrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("worker_metrics_server_failed", "error", err.Error())
		}
	}()

	slog.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeBatchSubmitted(ctx, func(handlerCtx context.Context, batchID int64) error {
		archiveCtx, cancel := context.WithTimeout(handlerCtx, time.Minute)
		defer cancel()

		start := time.Now()
		workerMetrics.StartArchive()
		err := archiver.ArchiveByID(archiveCtx, batchID)
		workerMetrics.FinishArchive(service, time.Since(start), err)
		if err == nil {
			slog.Info("batch_archived", "batch_id", batchID, "duration_ms", time.Since(start).Milliseconds())
		}
		return err
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsServer.Shutdown(shutdownCtx)
}
