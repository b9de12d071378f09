package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Acceptance band for a single bird, in kilograms. The band is half-open: [AcceptMin, AcceptMax).
const (
	AcceptMin = 4.8
	AcceptMax = 5.4
)

// Range an operator may enter on the scale.
const (
	ReadingMin = 4.0
	ReadingMax = 6.0
)

const readingSeparator = ","

type PrecisionMode int

const (
	PrecisionOne PrecisionMode = 1
	PrecisionTwo PrecisionMode = 2
)

// Normalize coerces anything other than two decimals to one decimal.
func (p PrecisionMode) Normalize() PrecisionMode {
	if p == PrecisionTwo {
		return PrecisionTwo
	}
	return PrecisionOne
}

func (p PrecisionMode) Places() int32 {
	return int32(p.Normalize())
}

func (p PrecisionMode) String() string {
	if p.Normalize() == PrecisionTwo {
		return "2 desimal"
	}
	return "1 desimal"
}

func IsAccepted(v float64) bool {
	return v >= AcceptMin && v < AcceptMax
}

func InEntryRange(v float64) bool {
	return v >= ReadingMin && v <= ReadingMax
}

// RoundReading rounds half away from zero to the number of places of the precision mode.
func RoundReading(v float64, mode PrecisionMode) float64 {
	return roundTo(v, mode.Places())
}

// RejectedReadings returns the readings outside the acceptance band, in input order.
func RejectedReadings(readings []float64) []float64 {
	out := make([]float64, 0)
	for _, v := range readings {
		if !IsAccepted(v) {
			out = append(out, v)
		}
	}
	return out
}

// EncodeReadings joins readings in their shortest decimal form, e.g. "5,5.1,4.85".
func EncodeReadings(readings []float64) string {
	parts := make([]string, 0, len(readings))
	for _, v := range readings {
		parts = append(parts, strconv.FormatFloat(v, 'f', -1, 64))
	}
	return strings.Join(parts, readingSeparator)
}

func ParseReadings(raw string) ([]float64, error) {
	out := make([]float64, 0)
	if strings.TrimSpace(raw) == "" {
		return out, nil
	}
	for i, token := range strings.Split(raw, readingSeparator) {
		v, err := strconv.ParseFloat(strings.TrimSpace(token), 64)
		if err != nil {
			return nil, fmt.Errorf("parse reading #%d %q: %w", i+1, token, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// FormatFixed renders v with exactly places decimals.
func FormatFixed(v float64, places int) string {
	return strconv.FormatFloat(roundTo(v, int32(places)), 'f', places, 64)
}

func roundTo(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
