package ports

import (
	"context"
	"io"

	"github.com/kirillkom/kiriman-ayam/internal/core/domain"
)

// BatchRepository persists submitted batches. Batches are insert-only.
type BatchRepository interface {
	Create(ctx context.Context, batch *domain.ShipmentBatch) error
	GetByID(ctx context.Context, id int64) (*domain.ShipmentBatch, error)
	ListRecent(ctx context.Context, limit int) ([]domain.ShipmentBatch, error)
	Count(ctx context.Context, filter domain.BatchFilter) (int, error)
	Search(ctx context.Context, filter domain.BatchFilter, limit, offset int) ([]domain.ShipmentBatch, error)
}

// ShipmentCatalog lists the reference shipment names.
type ShipmentCatalog interface {
	ListShipmentNames(ctx context.Context) ([]domain.ShipmentName, error)
}

// ObjectStorage stores opaque blobs by key.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// MessageQueue publishes/consumes batch submission events.
type MessageQueue interface {
	PublishBatchSubmitted(ctx context.Context, batchID int64) error
	SubscribeBatchSubmitted(ctx context.Context, handler func(context.Context, int64) error) error
}

// WorkbookRenderer writes spreadsheet exports.
type WorkbookRenderer interface {
	RenderEntry(w io.Writer, draft domain.NewBatch) error
	RenderDetail(w io.Writer, batch domain.ShipmentBatch) error
}

// HistoryAPI is the reporting client's view of the storage service.
type HistoryAPI interface {
	ListShipmentNames(ctx context.Context) ([]domain.ShipmentName, error)
	ListRecent(ctx context.Context) ([]domain.ShipmentBatch, error)
	GetBatch(ctx context.Context, id int64) (*domain.ShipmentBatch, error)
	SubmitBatch(ctx context.Context, batch domain.NewBatch) (*domain.ShipmentBatch, error)
}
