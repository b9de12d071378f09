package usecase

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/kirillkom/kiriman-ayam/internal/core/domain"
)

type batchRepoFake struct {
	mu        sync.Mutex
	batches   []domain.ShipmentBatch
	createErr error
	searchErr error
	counts    int
	searches  []searchCall
}

type searchCall struct {
	filter domain.BatchFilter
	limit  int
	offset int
}

func (f *batchRepoFake) Create(_ context.Context, batch *domain.ShipmentBatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	batch.ID = int64(len(f.batches) + 1)
	f.batches = append(f.batches, *batch)
	return nil
}

func (f *batchRepoFake) GetByID(_ context.Context, id int64) (*domain.ShipmentBatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.batches {
		if b.ID == id {
			copyBatch := b
			return &copyBatch, nil
		}
	}
	return nil, domain.WrapError(domain.ErrBatchNotFound, "get batch", io.EOF)
}

func (f *batchRepoFake) ListRecent(_ context.Context, limit int) ([]domain.ShipmentBatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sorted := domain.FilterBatches(f.batches, domain.BatchFilter{})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted, nil
}

func (f *batchRepoFake) Count(_ context.Context, filter domain.BatchFilter) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts++
	if f.searchErr != nil {
		return 0, f.searchErr
	}
	return len(domain.FilterBatches(f.batches, filter)), nil
}

func (f *batchRepoFake) Search(_ context.Context, filter domain.BatchFilter, limit, offset int) ([]domain.ShipmentBatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, searchCall{filter: filter, limit: limit, offset: offset})
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	matches := domain.FilterBatches(f.batches, filter)
	start := min(offset, len(matches))
	end := min(start+limit, len(matches))
	return matches[start:end], nil
}

type queueFake struct {
	published []int64
	err       error
}

func (f *queueFake) PublishBatchSubmitted(_ context.Context, batchID int64) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, batchID)
	return nil
}

func (f *queueFake) SubscribeBatchSubmitted(context.Context, func(context.Context, int64) error) error {
	return nil
}

type rendererFake struct {
	detailCalls []domain.ShipmentBatch
	err         error
}

func (f *rendererFake) RenderEntry(w io.Writer, draft domain.NewBatch) error {
	_, err := io.WriteString(w, "entry:"+draft.PONumber)
	return err
}

func (f *rendererFake) RenderDetail(w io.Writer, batch domain.ShipmentBatch) error {
	if f.err != nil {
		return f.err
	}
	f.detailCalls = append(f.detailCalls, batch)
	_, err := io.WriteString(w, "detail:"+batch.PONumber)
	return err
}

type storageFake struct {
	saved map[string][]byte
	err   error
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.err != nil {
		return f.err
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	if f.saved == nil {
		f.saved = map[string][]byte{}
	}
	f.saved[key] = raw
	return nil
}

func (f *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.saved[key])), nil
}

func (f *storageFake) Delete(_ context.Context, key string) error {
	delete(f.saved, key)
	return nil
}

type catalogFake struct {
	names []domain.ShipmentName
	err   error
}

func (f *catalogFake) ListShipmentNames(context.Context) ([]domain.ShipmentName, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.ShipmentName, len(f.names))
	copy(out, f.names)
	return out, nil
}
