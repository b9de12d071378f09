package entry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/kirillkom/kiriman-ayam/internal/core/domain"
	"github.com/kirillkom/kiriman-ayam/internal/core/ports"
)

const (
	DataKey = "chicken_input_data"
	MetaKey = "chicken_input_meta"
)

// Shipment identifies the batch being entered.
type Shipment struct {
	Name          string               `json:"nama_kiriman"`
	PONumber      string               `json:"nomer_po"`
	PrecisionMode domain.PrecisionMode `json:"precision_mode"`
}

type recoveryMeta struct {
	Shipment
	LastUpdate  time.Time `json:"last_update"`
	TotalClicks int       `json:"total_clicks"`
}

// Snapshot is an unexported reading list left behind by an interrupted session.
type Snapshot struct {
	Shipment    Shipment
	Readings    []float64
	LastUpdate  time.Time
	TotalClicks int
}

// RecoveryStore keeps the in-progress reading list under two fixed keys.
type RecoveryStore struct {
	storage ports.ObjectStorage
}

func NewRecoveryStore(storage ports.ObjectStorage) *RecoveryStore {
	return &RecoveryStore{storage: storage}
}

func (s *RecoveryStore) Save(ctx context.Context, shipment Shipment, readings []float64, at time.Time) error {
	if readings == nil {
		readings = []float64{}
	}
	data, err := json.Marshal(readings)
	if err != nil {
		return fmt.Errorf("encode recovery data: %w", err)
	}
	meta, err := json.Marshal(recoveryMeta{
		Shipment:    shipment,
		LastUpdate:  at.UTC(),
		TotalClicks: len(readings),
	})
	if err != nil {
		return fmt.Errorf("encode recovery meta: %w", err)
	}

	if err := s.storage.Save(ctx, DataKey, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("save recovery data: %w", err)
	}
	if err := s.storage.Save(ctx, MetaKey, bytes.NewReader(meta)); err != nil {
		return fmt.Errorf("save recovery meta: %w", err)
	}
	return nil
}

// Load returns nil when either key is missing.
func (s *RecoveryStore) Load(ctx context.Context) (*Snapshot, error) {
	var readings []float64
	found, err := s.read(ctx, DataKey, &readings)
	if err != nil || !found {
		return nil, err
	}
	var meta recoveryMeta
	found, err = s.read(ctx, MetaKey, &meta)
	if err != nil || !found {
		return nil, err
	}
	return &Snapshot{
		Shipment:    meta.Shipment,
		Readings:    readings,
		LastUpdate:  meta.LastUpdate,
		TotalClicks: meta.TotalClicks,
	}, nil
}

func (s *RecoveryStore) Clear(ctx context.Context) error {
	return errors.Join(
		s.storage.Delete(ctx, DataKey),
		s.storage.Delete(ctx, MetaKey),
	)
}

func (s *RecoveryStore) read(ctx context.Context, key string, out any) (bool, error) {
	rc, err := s.storage.Open(ctx, key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("open %s: %w", key, err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}
