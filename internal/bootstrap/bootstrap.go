package bootstrap

import (
	"context"
	"fmt"

	"github.com/kirillkom/kiriman-ayam/internal/config"
	"github.com/kirillkom/kiriman-ayam/internal/core/ports"
	"github.com/kirillkom/kiriman-ayam/internal/core/usecase"
	"github.com/kirillkom/kiriman-ayam/internal/infrastructure/export/xlsx"
	"github.com/kirillkom/kiriman-ayam/internal/infrastructure/queue/nats"
	"github.com/kirillkom/kiriman-ayam/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/kiriman-ayam/internal/infrastructure/resilience"
	"github.com/kirillkom/kiriman-ayam/internal/infrastructure/storage/localfs"
)

type App struct {
	Config config.Config

	Queue     ports.MessageQueue
	SubmitUC  *usecase.SubmitBatchUseCase
	HistoryUC *usecase.HistoryUseCase
	CatalogUC *usecase.CatalogUseCase
	ExportUC  *usecase.ExportUseCase
	ArchiveUC *usecase.ArchiveBatchUseCase

	closeFn func()
}

type Option func(*options)

type options struct {
	onBreakerChange func(operation string, open bool)
}

// WithBreakerObserver reports open/closed transitions of the outbound circuit breakers.
func WithBreakerObserver(fn func(operation string, open bool)) Option {
	return func(o *options) { o.onBreakerChange = fn }
}

func New(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}


	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	batches := postgres.NewBatchRepository(db)
	shipments := postgres.NewShipmentRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	publishPolicy := resilience.DefaultConfig()
	publishPolicy.OnStateChange = o.onBreakerChange
	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: resilience.NewExecutor(publishPolicy),
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	renderer := xlsx.New(nil)

	return &App{
		Config: cfg,
		Queue:  queue,

		SubmitUC:  usecase.NewSubmitBatchUseCase(batches, queue),
		HistoryUC: usecase.NewHistoryUseCase(batches, cfg.HistoryLimit, cfg.PageSize),
		CatalogUC: usecase.NewCatalogUseCase(shipments),
		ExportUC:  usecase.NewExportUseCase(batches, renderer),
		ArchiveUC: usecase.NewArchiveBatchUseCase(batches, renderer, storage),

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
