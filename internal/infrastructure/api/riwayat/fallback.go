package riwayat

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/kirillkom/kiriman-ayam/internal/core/domain"
	"github.com/kirillkom/kiriman-ayam/internal/core/ports"
)

// OfflineFallback keeps the operator working while the storage service is unreachable:
// the shipment list falls back to the static catalog and history reads come back empty.
// Single-batch reads and submissions pass their errors through.
type OfflineFallback struct {
	api     ports.HistoryAPI
	offline atomic.Bool
}

func NewOfflineFallback(api ports.HistoryAPI) *OfflineFallback {
	return &OfflineFallback{api: api}
}

// Offline reports whether the last read was served from fallback data.
func (f *OfflineFallback) Offline() bool {
	return f.offline.Load()
}

func (f *OfflineFallback) ListShipmentNames(ctx context.Context) ([]domain.ShipmentName, error) {
	names, err := f.api.ListShipmentNames(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		slog.Warn("shipment_names_fallback", "error", err.Error())
		f.offline.Store(true)
		return domain.FallbackShipmentNames(), nil
	}
	f.offline.Store(false)
	domain.SortShipmentNames(names)
	return names, nil
}

func (f *OfflineFallback) ListRecent(ctx context.Context) ([]domain.ShipmentBatch, error) {
	batches, err := f.api.ListRecent(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		slog.Warn("history_fallback", "error", err.Error())
		f.offline.Store(true)
		return []domain.ShipmentBatch{}, nil
	}
	f.offline.Store(false)
	if batches == nil {
		batches = []domain.ShipmentBatch{}
	}
	return batches, nil
}

func (f *OfflineFallback) GetBatch(ctx context.Context, id int64) (*domain.ShipmentBatch, error) {
	return f.api.GetBatch(ctx, id)
}

func (f *OfflineFallback) SubmitBatch(ctx context.Context, batch domain.NewBatch) (*domain.ShipmentBatch, error) {
	created, err := f.api.SubmitBatch(ctx, batch)
	if err != nil && domain.IsKind(err, domain.ErrTemporary) {
		f.offline.Store(true)
	}
	return created, err
}
