package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

const WorkbookContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExportFile struct {
	Name    string
	Content []byte
}

// BatchDetail is a stored batch with statistics re-derived from its raw readings.
type BatchDetail struct {
	Batch            ShipmentBatch `json:"batch"`
	Stats            Stats         `json:"stats"`
	RejectedReadings []float64     `json:"rejected_readings"`
	RejectedStats    Stats         `json:"rejected_stats"`
}

func NewBatchDetail(batch ShipmentBatch) BatchDetail {
	rejected := RejectedReadings(batch.Readings)
	return BatchDetail{
		Batch:            batch,
		Stats:            ComputeStats(batch.Readings),
		RejectedReadings: rejected,
		RejectedStats:    ComputeStats(rejected),
	}
}

// EntryExportName is the file name of the flat export made from the entry screen.
func EntryExportName(shipment string, at time.Time) string {
	return fmt.Sprintf("Kiriman_%s_%d.xlsx", fileToken(shipment), at.UnixMilli())
}

func DetailExportName(shipment, po string, at time.Time) string {
	return fmt.Sprintf("Detail_%s_%s_%d.xlsx", fileToken(shipment), fileToken(po), at.UnixMilli())
}

func fileToken(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "tanpa_nama"
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '.' {
			return r
		}
		return '_'
	}, s)
}
