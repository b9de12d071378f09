package domain

import (
	"slices"
	"strings"
)

// fallbackShipmentNames mirrors the seeded catalog; the operator client uses it while offline.
var fallbackShipmentNames = []string{
	"Aceh", "Ambon", "Bangka", "Banjarmasin", "Batam", "Belitung", "Bengkulu", "Bima",
	"Bintan", "CGL", "CPI", "CBN 1", "Bangkit", "Ende", "Flores", "Gorontalo",
	"Jambi", "Jayapura", "Kendari", "Kupang", "Lampung", "Lombok", "Manado", "Manokwari",
	"Palembang", "Pekanbaru", "Pontianak", "Samarinda", "Sikka", "Sorong", "Sumba", "Ternate",
}

// FallbackShipmentNames returns a fresh alphabetical copy of the static catalog.
func FallbackShipmentNames() []ShipmentName {
	out := make([]ShipmentName, 0, len(fallbackShipmentNames))
	for i, name := range fallbackShipmentNames {
		out = append(out, ShipmentName{ID: int64(i + 1), Name: name})
	}
	SortShipmentNames(out)
	return out
}

func SortShipmentNames(names []ShipmentName) {
	slices.SortStableFunc(names, func(a, b ShipmentName) int {
		return strings.Compare(a.Name, b.Name)
	})
}
