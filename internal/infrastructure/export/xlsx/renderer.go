package xlsx

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/kiriman-ayam/internal/core/domain"
)

const (
	EntrySheet    = "Data Ayam"
	DetailSheet   = "Data Kiriman"
	RejectedSheet = "Data Rejected"

	dataColumnWidth = 8
	firstDataRow    = 8
	dateLayout      = "02/01/2006, 15.04"
	defaultSheet    = "Sheet1"
)

type sheetTheme struct {
	name              string
	title             string
	dataTitle         string
	headerColor       string
	subHeaderColor    string
	statsColor        string
	highlightRejected bool
}

var (
	detailTheme = sheetTheme{
		name:              DetailSheet,
		title:             "DATA KIRIMAN AYAM",
		dataTitle:         "DATA INPUT (Merah = REJECT)",
		headerColor:       "4CAF50",
		subHeaderColor:    "E3F2FD",
		statsColor:        "FF9800",
		highlightRejected: true,
	}
	rejectedTheme = sheetTheme{
		name:           RejectedSheet,
		title:          "✗ DATA REJECTED (<4.8 atau ≥5.4)",
		dataTitle:      "DATA INPUT DITOLAK",
		headerColor:    "F44336",
		subHeaderColor: "FFE0E0",
		statsColor:     "FF6F00",
	}
)

type Renderer struct {
	loc *time.Location
}

// New renders dates in loc; nil means time.Local.
func New(loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.Local
	}
	return &Renderer{loc: loc}
}

// RenderEntry writes the flat single-sheet export of an in-progress batch:
// a header row, then rows of 20 readings with shipment and PO in the first row only.
func (r *Renderer) RenderEntry(w io.Writer, draft domain.NewBatch) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(defaultSheet, EntrySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	sw := &sheetWriter{f: f, sheet: EntrySheet}

	header := make([]any, 0, domain.ExportColumns+2)
	header = append(header, "Nama Kiriman", "Nomor PO")
	for i := 1; i <= domain.ExportColumns; i++ {
		header = append(header, fmt.Sprintf("Berat %d", i))
	}
	sw.row(1, header)

	for i, row := range domain.ChunkRows(draft.Readings, domain.ExportColumns) {
		values := make([]any, 0, domain.ExportColumns+2)
		if i == 0 {
			values = append(values, draft.ShipmentName, draft.PONumber)
		} else {
			values = append(values, "", "")
		}
		for _, cell := range row {
			if cell.Filled {
				values = append(values, cell.Value)
			} else {
				values = append(values, "")
			}
		}
		sw.row(i+2, values)
	}

	if sw.err != nil {
		return fmt.Errorf("write entry sheet: %w", sw.err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// RenderDetail writes the two-sheet workbook: all readings with rejected cells
// highlighted, then the rejected subset with its own statistics.
func (r *Renderer) RenderDetail(w io.Writer, batch domain.ShipmentBatch) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(defaultSheet, DetailSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(RejectedSheet); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	detail := domain.NewBatchDetail(batch)
	date := batch.CreatedAt.In(r.loc).Format(dateLayout)

	full := []statLine{
		{"Total Data", batch.Count},
		{"Jumlah (Sum)", domain.FormatFixed(detail.Stats.Sum, 2)},
		{"Rata-rata", domain.FormatFixed(batch.Mean, 2)},
		{"Nilai Tertinggi", domain.FormatFixed(batch.Max, 1)},
		{"Nilai Terendah", domain.FormatFixed(batch.Min, 1)},
	}
	if err := writeDetailSheet(f, detailTheme, batch, date, batch.Readings, full); err != nil {
		return err
	}

	rejected := []statLine{
		{"Total Data", detail.RejectedStats.Count},
		{"Jumlah (Sum)", "0.00"},
		{"Rata-rata", "0.00"},
		{"Nilai Tertinggi", "0"},
		{"Nilai Terendah", "0"},
	}
	if detail.RejectedStats.Count > 0 {
		rejected[1].value = domain.FormatFixed(detail.RejectedStats.Sum, 2)
		rejected[2].value = domain.FormatFixed(detail.RejectedStats.Mean, 2)
		rejected[3].value = domain.FormatFixed(detail.RejectedStats.Max, 1)
		rejected[4].value = domain.FormatFixed(detail.RejectedStats.Min, 1)
	}
	if err := writeDetailSheet(f, rejectedTheme, batch, date, detail.RejectedReadings, rejected); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

type statLine struct {
	label string
	value any
}

func writeDetailSheet(f *excelize.File, theme sheetTheme, batch domain.ShipmentBatch, date string, readings []float64, stats []statLine) error {
	st, err := newSheetStyles(f, theme)
	if err != nil {
		return fmt.Errorf("create styles for %s: %w", theme.name, err)
	}
	sw := &sheetWriter{f: f, sheet: theme.name}
	lastCol := cellColumn(domain.ExportColumns)

	sw.colWidth("A", lastCol, dataColumnWidth)

	sw.block("A1", lastCol+"1", theme.title, st.header)
	sw.rowHeight(1, 25)

	sw.block("A2", "J2", "Nama Kiriman", st.subHeader)
	sw.block("K2", lastCol+"2", "Nomor PO", st.subHeader)
	sw.block("A3", "J3", batch.ShipmentName, 0)
	sw.block("K3", lastCol+"3", batch.PONumber, 0)

	sw.block("A4", lastCol+"4", "Tanggal Input", st.subHeader)
	sw.block("A5", lastCol+"5", date, 0)
	sw.rowHeight(6, 5)

	sw.block("A7", lastCol+"7", theme.dataTitle, st.title)
	sw.rowHeight(7, 20)

	row := firstDataRow
	rows := domain.ChunkRows(readings, domain.ExportColumns)
	for _, cells := range rows {
		for col, cell := range cells {
			if !cell.Filled {
				continue
			}
			name := cellName(col+1, row)
			sw.set(name, cell.Value)
			if theme.highlightRejected && cell.Rejected {
				sw.style(name, name, st.rejected)
			} else {
				sw.style(name, name, st.centered)
			}
		}
		row++
	}
	if len(rows) == 0 {
		sw.block(cellName(1, row), cellName(domain.ExportColumns, row), "Tidak ada data yang ditolak", st.italic)
		row++
	}

	row++
	for _, line := range stats {
		sw.block(cellName(1, row), cellName(5, row), line.label, st.stats)
		sw.block(cellName(6, row), cellName(domain.ExportColumns, row), line.value, st.centered)
		row++
	}

	if sw.err != nil {
		return fmt.Errorf("write sheet %s: %w", theme.name, sw.err)
	}
	return nil
}

type sheetStyles struct {
	header    int
	subHeader int
	title     int
	stats     int
	rejected  int
	centered  int
	italic    int
}

type styleSpec struct {
	dst   *int
	style *excelize.Style
}

func newSheetStyles(f *excelize.File, theme sheetTheme) (sheetStyles, error) {
	var st sheetStyles
	center := &excelize.Alignment{Horizontal: "center"}
	specs := []styleSpec{
		{&st.header, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: "FFFFFF", Size: 14},
			Fill:      solidFill(theme.headerColor),
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		}},
		{&st.subHeader, &excelize.Style{Font: &excelize.Font{Bold: true}, Fill: solidFill(theme.subHeaderColor), Alignment: center}},
		{&st.title, &excelize.Style{Font: &excelize.Font{Bold: true, Color: "FFFFFF"}, Fill: solidFill("2196F3"), Alignment: center}},
		{&st.stats, &excelize.Style{Font: &excelize.Font{Bold: true, Color: "FFFFFF"}, Fill: solidFill(theme.statsColor), Alignment: center}},
		{&st.rejected, &excelize.Style{Fill: solidFill("FFCCCC"), Alignment: center}},
		{&st.centered, &excelize.Style{Alignment: center}},
		{&st.italic, &excelize.Style{Font: &excelize.Font{Italic: true}, Alignment: center}},
	}

	for _, spec := range specs {
		id, err := f.NewStyle(spec.style)
		if err != nil {
			return sheetStyles{}, err
		}
		*spec.dst = id
	}
	return st, nil
}

func solidFill(color string) excelize.Fill {
	return excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1}
}

// sheetWriter keeps the first error so layout code can stay linear.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	err   error
}

func (w *sheetWriter) set(cell string, value any) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetCellValue(w.sheet, cell, value)
}

func (w *sheetWriter) style(from, to string, id int) {
	if w.err != nil || id == 0 {
		return
	}
	w.err = w.f.SetCellStyle(w.sheet, from, to, id)
}

func (w *sheetWriter) block(from, to string, value any, styleID int) {
	if w.err == nil && from != to {
		w.err = w.f.MergeCell(w.sheet, from, to)
	}
	w.set(from, value)
	w.style(from, to, styleID)
}

func (w *sheetWriter) row(row int, values []any) {
	for i, v := range values {
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		w.set(cellName(i+1, row), v)
	}
}

func (w *sheetWriter) rowHeight(row int, height float64) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetRowHeight(w.sheet, row, height)
}

func (w *sheetWriter) colWidth(from, to string, width float64) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetColWidth(w.sheet, from, to, width)
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func cellColumn(col int) string {
	name, _ := excelize.ColumnNumberToName(col)
	return name
}
