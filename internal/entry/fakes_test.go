package entry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sync"
	"time"

	"github.com/kirillkom/kiriman-ayam/internal/core/domain"
)

type memStorage struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	saveErr map[string]error
}

func newMemStorage() *memStorage {
	return &memStorage{blobs: map[string][]byte{}, saveErr: map[string]error{}}
}

func (m *memStorage) Save(_ context.Context, key string, data io.Reader) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.saveErr[key]; err != nil {
		return err
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	m.blobs[key] = raw
	return nil
}

func (m *memStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.blobs[key]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", key, fs.ErrNotExist)
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (m *memStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
	return nil
}

func (m *memStorage) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.blobs[key]
	return ok
}

func (m *memStorage) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.blobs))
	for k := range m.blobs {
		out = append(out, k)
	}
	return out
}

// failingStorage accepts nothing; used where the exports directory is unwritable.
type failingStorage struct{ memStorage }

func (f *failingStorage) Save(context.Context, string, io.Reader) error {
	return errors.New("disk full")
}

type historyAPIFake struct {
	mu        sync.Mutex
	names     []domain.ShipmentName
	namesErr  error
	submitErr error
	offline   bool
	submitted []domain.NewBatch
}

func (f *historyAPIFake) ListShipmentNames(context.Context) ([]domain.ShipmentName, error) {
	if f.namesErr != nil {
		return nil, f.namesErr
	}
	return f.names, nil
}

func (f *historyAPIFake) ListRecent(context.Context) ([]domain.ShipmentBatch, error) {
	return []domain.ShipmentBatch{}, nil
}

func (f *historyAPIFake) GetBatch(_ context.Context, id int64) (*domain.ShipmentBatch, error) {
	return nil, fmt.Errorf("get batch id=%d: %w", id, domain.ErrBatchNotFound)
}

func (f *historyAPIFake) SubmitBatch(_ context.Context, batch domain.NewBatch) (*domain.ShipmentBatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, batch)
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	created := batch.Normalize().Seal(fixedNow())
	created.ID = int64(len(f.submitted))
	return &created, nil
}

func (f *historyAPIFake) Offline() bool {
	return f.offline
}

func fixedNow() time.Time {
	return time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
}
