package ports

import (
	"context"

	"github.com/kirillkom/kiriman-ayam/internal/core/domain"
)

// BatchSubmitter is the inbound contract for recording a finished batch.
type BatchSubmitter interface {
	Submit(ctx context.Context, batch domain.NewBatch) (*domain.ShipmentBatch, error)
}

// BatchHistory is the inbound read model over submitted batches.
type BatchHistory interface {
	Recent(ctx context.Context) ([]domain.ShipmentBatch, error)
	Search(ctx context.Context, filter domain.BatchFilter, page int) (domain.Page[domain.ShipmentBatch], error)
	Detail(ctx context.Context, id int64) (*domain.BatchDetail, error)
}

// CatalogReader lists shipment names for the entry screen.
type CatalogReader interface {
	ListShipmentNames(ctx context.Context) ([]domain.ShipmentName, error)
}

// DetailExporter renders the two-sheet workbook of one batch.
type DetailExporter interface {
	ExportDetail(ctx context.Context, id int64) (*domain.ExportFile, error)
}

// BatchArchiver is the inbound contract for asynchronous workbook archiving.
type BatchArchiver interface {
	ArchiveByID(ctx context.Context, batchID int64) error
}
