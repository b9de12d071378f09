package domain

// ExportColumns is the fixed width of a reading row in every spreadsheet export.
const ExportColumns = 20

type Cell struct {
	Value    float64
	Filled   bool
	Rejected bool
}

type Row []Cell

// ChunkRows lays readings out row-major into rows of exactly width cells.
// The last row is padded with unfilled cells.
func ChunkRows(readings []float64, width int) []Row {
	if width <= 0 {
		width = ExportColumns
	}

	rows := make([]Row, 0, (len(readings)+width-1)/width)
	for start := 0; start < len(readings); start += width {
		end := min(start+width, len(readings))
		row := make(Row, width)
		for i, v := range readings[start:end] {
			row[i] = Cell{Value: v, Filled: true, Rejected: !IsAccepted(v)}
		}
		rows = append(rows, row)
	}
	return rows
}

// FlattenRows is the inverse of ChunkRows.
func FlattenRows(rows []Row) []float64 {
	out := make([]float64, 0, len(rows)*ExportColumns)
	for _, row := range rows {
		for _, cell := range row {
			if cell.Filled {
				out = append(out, cell.Value)
			}
		}
	}
	return out
}
