package entry

import (
	"fmt"
	"strings"

	"github.com/kirillkom/kiriman-ayam/internal/core/domain"
)

// Picker bounds for two-decimal entry.
const (
	PickerWholeMin      = 1
	PickerWholeMax      = 6
	PickerHundredthsMax = 99
)

// GridValues returns the one-decimal buttons 4.0, 4.1, ... 6.0.
func GridValues() []float64 {
	out := make([]float64, 0, 21)
	for i := 40; i <= 60; i++ {
		out = append(out, float64(i)/10)
	}
	return out
}

// PickerValue combines the two wheels into a reading inside [4.00, 6.00].
func PickerValue(whole, hundredths int) (float64, error) {
	if whole < PickerWholeMin || whole > PickerWholeMax || hundredths < 0 || hundredths > PickerHundredthsMax {
		return 0, domain.WrapError(domain.ErrInvalidInput, "picker_value",
			fmt.Errorf("wheel position %d,%02d: %w", whole, hundredths, ErrOutOfRange))
	}
	v := domain.RoundReading(float64(whole*100+hundredths)/100, domain.PrecisionTwo)
	if !domain.InEntryRange(v) {
		return 0, domain.WrapError(domain.ErrInvalidInput, "picker_value", ErrOutOfRange)
	}
	return v, nil
}

// FormatReading renders v with the mode's decimals and a comma separator, e.g. "5,25".
func FormatReading(v float64, mode domain.PrecisionMode) string {
	return strings.Replace(domain.FormatFixed(v, int(mode.Places())), ".", ",", 1)
}
