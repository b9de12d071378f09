package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExportNames(t *testing.T) {
	at := time.UnixMilli(1714646400123)

	assert.Equal(t, "Kiriman_CBN_1_1714646400123.xlsx", EntryExportName("CBN 1", at))
	assert.Equal(t, "Detail_Aceh_PO_01-7_1714646400123.xlsx", DetailExportName("Aceh", "PO/01-7", at))
	assert.Equal(t, "Kiriman_tanpa_nama_1714646400123.xlsx", EntryExportName("  ", at))
}

func TestNewBatchDetail_RejectedSubset(t *testing.T) {
	detail := NewBatchDetail(ShipmentBatch{Readings: []float64{4.80, 5.39, 5.40, 4.79}})

	assert.Equal(t, []float64{5.40, 4.79}, detail.RejectedReadings)
	assert.Equal(t, 2, detail.RejectedStats.Count)
	assert.Equal(t, 0, detail.RejectedStats.Accepted)
	assert.Equal(t, 5.10, detail.Stats.Mean)
}

func TestNewBatchDetail_NoRejected(t *testing.T) {
	detail := NewBatchDetail(ShipmentBatch{Readings: []float64{5.0}})

	assert.Empty(t, detail.RejectedReadings)
	assert.Equal(t, Stats{}, detail.RejectedStats)
}
