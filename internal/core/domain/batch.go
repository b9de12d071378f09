package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type ShipmentName struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ShipmentBatch is an immutable submitted batch. Count, Mean, Max and Min are
// persisted redundantly next to the raw readings.
type ShipmentBatch struct {
	ID           int64     `json:"id"`
	ShipmentName string    `json:"shipment_name"`
	PONumber     string    `json:"po_number"`
	Readings     []float64 `json:"-"`
	Count        int       `json:"count"`
	Mean         float64   `json:"mean"`
	Max          float64   `json:"max"`
	Min          float64   `json:"min"`
	CreatedAt    time.Time `json:"created_at"`
}

type batchJSON ShipmentBatch

type batchWire struct {
	batchJSON
	Readings string `json:"readings"`
}

func (b ShipmentBatch) MarshalJSON() ([]byte, error) {
	return json.Marshal(batchWire{batchJSON: batchJSON(b), Readings: EncodeReadings(b.Readings)})
}

func (b *ShipmentBatch) UnmarshalJSON(data []byte) error {
	var wire batchWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	readings, err := ParseReadings(wire.Readings)
	if err != nil {
		return fmt.Errorf("decode batch %d: %w", wire.ID, err)
	}
	*b = ShipmentBatch(wire.batchJSON)
	b.Readings = readings
	return nil
}

// Stats re-derives the statistics from the raw readings.
func (b ShipmentBatch) Stats() Stats {
	return ComputeStats(b.Readings)
}

// NewBatch is a submission as sent by the entry client.
type NewBatch struct {
	ShipmentName  string        `json:"shipment_name"`
	PONumber      string        `json:"po_number"`
	PrecisionMode PrecisionMode `json:"precision_mode"`
	Readings      []float64     `json:"readings"`
}

// Normalize trims identifiers, coerces the precision mode and rounds every reading to it.
func (n NewBatch) Normalize() NewBatch {
	mode := n.PrecisionMode.Normalize()
	readings := make([]float64, 0, len(n.Readings))
	for _, v := range n.Readings {
		readings = append(readings, RoundReading(v, mode))
	}
	return NewBatch{
		ShipmentName:  strings.TrimSpace(n.ShipmentName),
		PONumber:      strings.TrimSpace(n.PONumber),
		PrecisionMode: mode,
		Readings:      readings,
	}
}

// Validate only rejects an empty reading list; the mean is undefined for it.
func (n NewBatch) Validate() error {
	if len(n.Readings) == 0 {
		return fmt.Errorf("%w: readings must not be empty", ErrInvalidInput)
	}
	return nil
}

// Seal computes the persisted summary for a normalized submission.
func (n NewBatch) Seal(now time.Time) ShipmentBatch {
	stats := ComputeStats(n.Readings)
	return ShipmentBatch{
		ShipmentName: n.ShipmentName,
		PONumber:     n.PONumber,
		Readings:     n.Readings,
		Count:        stats.Count,
		Mean:         stats.Mean,
		Max:          stats.RoundedMax(),
		Min:          stats.RoundedMin(),
		CreatedAt:    now.UTC(),
	}
}
