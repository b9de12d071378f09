package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBatch_NormalizeAndSeal(t *testing.T) {
	now := time.Date(2024, 5, 2, 10, 30, 0, 0, time.UTC)
	in := NewBatch{
		ShipmentName:  " Aceh ",
		PONumber:      "PO-001",
		PrecisionMode: PrecisionOne,
		Readings:      []float64{5.0, 5.0},
	}

	normalized := in.Normalize()
	require.NoError(t, normalized.Validate())

	batch := normalized.Seal(now)
	assert.Equal(t, "Aceh", batch.ShipmentName)
	assert.Equal(t, "PO-001", batch.PONumber)
	assert.Equal(t, 2, batch.Count)
	assert.Equal(t, 5.0, batch.Mean)
	assert.Equal(t, 5.0, batch.Max)
	assert.Equal(t, 5.0, batch.Min)
	assert.Equal(t, now, batch.CreatedAt)
}

func TestNewBatch_NormalizeCoercesPrecision(t *testing.T) {
	in := NewBatch{PrecisionMode: 5, Readings: []float64{5.06, 4.84}}

	got := in.Normalize()
	assert.Equal(t, PrecisionOne, got.PrecisionMode)
	assert.Equal(t, []float64{5.1, 4.8}, got.Readings)
}

func TestNewBatch_ValidateRejectsEmptyReadings(t *testing.T) {
	err := NewBatch{ShipmentName: "Aceh", PONumber: "PO-1"}.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestShipmentBatch_PersistedMeanMatchesRecomputed(t *testing.T) {
	batch := NewBatch{
		ShipmentName:  "Kupang",
		PONumber:      "PO-9",
		PrecisionMode: PrecisionTwo,
		Readings:      []float64{4.81, 5.33, 5.47, 4.92, 5.05},
	}.Normalize().Seal(time.Now())

	assert.Equal(t, batch.Mean, batch.Stats().Mean)
	assert.Equal(t, batch.Count, batch.Stats().Count)
}

func TestShipmentBatch_JSONUsesRawReadings(t *testing.T) {
	batch := ShipmentBatch{
		ID:           7,
		ShipmentName: "Ambon",
		PONumber:     "PO-7",
		Readings:     []float64{5, 5.1},
		Count:        2,
		Mean:         5.05,
		Max:          5.1,
		Min:          5,
		CreatedAt:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	raw, err := json.Marshal(batch)
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(raw, &wire))
	assert.Equal(t, "5,5.1", wire["readings"])
	assert.Equal(t, "Ambon", wire["shipment_name"])

	var decoded ShipmentBatch
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, batch, decoded)
}

func TestShipmentBatch_UnmarshalRejectsBadReadings(t *testing.T) {
	var decoded ShipmentBatch
	err := json.Unmarshal([]byte(`{"id":1,"readings":"5.0,x"}`), &decoded)
	require.Error(t, err)
}
