package httpadapter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/kirillkom/kiriman-ayam/internal/config"
	"github.com/kirillkom/kiriman-ayam/internal/core/domain"
	"github.com/kirillkom/kiriman-ayam/internal/core/usecase"
)

type memoryBatchRepo struct {
	mu      sync.Mutex
	batches []domain.ShipmentBatch
	err     error
}

func (r *memoryBatchRepo) Create(_ context.Context, batch *domain.ShipmentBatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	batch.ID = int64(len(r.batches) + 1)
	r.batches = append(r.batches, *batch)
	return nil
}

func (r *memoryBatchRepo) GetByID(_ context.Context, id int64) (*domain.ShipmentBatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, b := range r.batches {
		if b.ID == id {
			out := b
			return &out, nil
		}
	}
	return nil, fmt.Errorf("get batch id=%d: %w", id, domain.ErrBatchNotFound)
}

func (r *memoryBatchRepo) ListRecent(_ context.Context, limit int) ([]domain.ShipmentBatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := domain.FilterBatches(r.batches, domain.BatchFilter{})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryBatchRepo) Count(_ context.Context, filter domain.BatchFilter) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	return len(domain.FilterBatches(r.batches, filter)), nil
}

func (r *memoryBatchRepo) Search(_ context.Context, filter domain.BatchFilter, limit, offset int) ([]domain.ShipmentBatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	matches := domain.FilterBatches(r.batches, filter)
	if offset >= len(matches) {
		return []domain.ShipmentBatch{}, nil
	}
	end := min(offset+limit, len(matches))
	return matches[offset:end], nil
}

type staticCatalog struct {
	names []domain.ShipmentName
	err   error
}

func (c staticCatalog) ListShipmentNames(context.Context) ([]domain.ShipmentName, error) {
	if c.err != nil {
		return nil, c.err
	}
	return append([]domain.ShipmentName(nil), c.names...), nil
}

type workbookFake struct{}

func (workbookFake) RenderEntry(w io.Writer, draft domain.NewBatch) error {
	_, err := io.WriteString(w, "entry:"+draft.PONumber)
	return err
}

func (workbookFake) RenderDetail(w io.Writer, batch domain.ShipmentBatch) error {
	_, err := io.WriteString(w, "detail:"+batch.PONumber)
	return err
}

type testDeps struct {
	repo    *memoryBatchRepo
	catalog staticCatalog
}

func newTestDeps() *testDeps {
	return &testDeps{
		repo: &memoryBatchRepo{},
		catalog: staticCatalog{names: []domain.ShipmentName{
			{ID: 2, Name: "Bima"},
			{ID: 1, Name: "Aceh"},
		}},
	}
}

func (d *testDeps) fixedNow() time.Time {
	return time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
}

func (d *testDeps) seed(n int) {
	base := d.fixedNow()
	for i := 0; i < n; i++ {
		b := domain.NewBatch{
			ShipmentName: "Aceh",
			PONumber:     "PO-" + string(rune('A'+i%26)),
			Readings:     []float64{5.0, 5.1},
		}.Normalize().Seal(base.Add(time.Duration(i) * time.Minute))
		_ = d.repo.Create(context.Background(), &b)
	}
}

func (d *testDeps) handler(cfg config.Config) http.Handler {
	return d.router(cfg).Handler()
}

func (d *testDeps) router(cfg config.Config) *Router {
	history := usecase.NewHistoryUseCase(d.repo, cfg.HistoryLimit, cfg.PageSize)
	return NewRouter(
		cfg,
		usecase.NewSubmitBatchUseCase(d.repo, nil),
		history,
		usecase.NewCatalogUseCase(d.catalog),
		usecase.NewExportUseCase(d.repo, workbookFake{}),
	)
}
