package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kirillkom/kiriman-ayam/internal/core/domain"
	"github.com/kirillkom/kiriman-ayam/internal/entry"
)

const readingsPerLine = 10

func (m Model) View() string {
	var body string
	switch m.screen {
	case screenStart:
		body = m.viewStart()
	case screenRecovery:
		body = m.viewRecovery()
	case screenEntry:
		body = m.viewEntry()
	case screenConfirm:
		body = m.viewConfirm()
	case screenSubmitting:
		body = m.styles.muted.Render("Menyimpan dan mengirim data...")
	case screenDone:
		body = m.viewDone()
	}

	var b strings.Builder
	b.WriteString(body)
	if m.status != "" {
		b.WriteString("\n\n")
		if m.statusErr {
			b.WriteString(m.styles.errorMsg.Render(m.status))
		} else {
			b.WriteString(m.styles.okMsg.Render(m.status))
		}
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) viewStart() string {
	s := m.styles
	var b strings.Builder
	b.WriteString(s.title.Render("📦 Input Kiriman Ayam"))
	b.WriteString("\n")
	b.WriteString(s.subtitle.Render("Sistem input data berat ayam"))
	b.WriteString("\n\n")

	b.WriteString(m.fieldLabel(fieldShipment, "Nama Kiriman"))
	if m.offline {
		b.WriteString(" " + s.muted.Render("(offline: daftar bawaan)"))
	}
	b.WriteString("\n")
	b.WriteString(m.viewNameList())
	b.WriteString(s.muted.Render("atau"))
	b.WriteString("\n")
	b.WriteString(m.fieldLabel(fieldCustomName, "Nama Kiriman Baru"))
	b.WriteString("\n")
	b.WriteString(m.custom.View())
	b.WriteString("\n\n")

	b.WriteString(m.fieldLabel(fieldPO, "Nomor PO"))
	b.WriteString("\n")
	b.WriteString(m.po.View())
	b.WriteString("\n\n")

	b.WriteString(m.fieldLabel(fieldMode, "Mode Presisi Desimal"))
	b.WriteString("\n")
	for _, mode := range []domain.PrecisionMode{domain.PrecisionOne, domain.PrecisionTwo} {
		marker := "( )"
		if m.mode == mode {
			marker = "(•)"
		}
		b.WriteString(fmt.Sprintf("%s %s\n", marker, modeLabel(mode)))
	}
	b.WriteString("\n")
	b.WriteString(s.help.Render("tab: pindah kolom • ↑/↓: pilih • enter: lanjut input • esc: keluar"))
	return b.String()
}

func (m Model) fieldLabel(field startField, text string) string {
	if m.focus == field {
		return m.styles.focused.Render("› " + text)
	}
	return m.styles.label.Render("  " + text)
}

// viewNameList shows a window of the catalog around the cursor.
func (m Model) viewNameList() string {
	s := m.styles
	var b strings.Builder
	if m.nameCursor < 0 {
		b.WriteString(s.cursor.Render("-- Pilih Nama Kiriman --"))
	} else {
		b.WriteString(s.button.Render("-- Pilih Nama Kiriman --"))
	}
	b.WriteString("\n")

	start := 0
	if m.nameCursor >= listWindow {
		start = m.nameCursor - listWindow + 1
	}
	end := min(start+listWindow, len(m.names))
	for i := start; i < end; i++ {
		if i == m.nameCursor {
			b.WriteString(s.cursor.Render(m.names[i].Name))
		} else {
			b.WriteString(s.button.Render(m.names[i].Name))
		}
		b.WriteString("\n")
	}
	if end < len(m.names) {
		b.WriteString(s.muted.Render(fmt.Sprintf("  … %d lainnya", len(m.names)-end)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewRecovery() string {
	snap := m.session.Pending()
	count := 0
	if snap != nil {
		count = len(snap.Readings)
	}
	question := fmt.Sprintf("Ditemukan %d data belum di-export. Lanjutkan data ini?", count)
	return m.styles.box.Render(question + "\n\n" + m.styles.help.Render("y: lanjutkan • n: buang data lama"))
}

func (m Model) viewEntry() string {
	s := m.styles
	shipment := m.session.Shipment()
	readings := m.session.Readings()
	stats := domain.ComputeStats(readings)

	var b strings.Builder
	b.WriteString(s.title.Render(fmt.Sprintf("📦 %s", shipment.Name)))
	b.WriteString(" ")
	b.WriteString(s.label.Render("PO: " + shipment.PONumber))
	b.WriteString(" ")
	b.WriteString(s.muted.Render(shipment.PrecisionMode.String()))
	b.WriteString("\n\n")

	last := "-"
	if v, ok := m.session.LastReading(); ok {
		last = entry.FormatReading(v, shipment.PrecisionMode) + " kg"
	}
	summary := lipgloss.JoinHorizontal(lipgloss.Top,
		s.box.Render("Berat Terakhir\n"+s.big.Render(last)),
		s.box.Render(fmt.Sprintf("Total Data\n%s", s.big.Render(fmt.Sprintf("%d", stats.Count)))),
		s.box.Render(fmt.Sprintf("Diterima / Ditolak\n%s / %s",
			s.accepted.Render(fmt.Sprintf("%d", stats.Accepted)),
			s.rejected.Render(fmt.Sprintf("%d", stats.Rejected)))),
	)
	b.WriteString(summary)
	b.WriteString("\n\n")

	if shipment.PrecisionMode == domain.PrecisionTwo {
		b.WriteString(m.viewPicker())
	} else {
		b.WriteString(m.viewGrid())
	}
	b.WriteString("\n")

	b.WriteString(s.label.Render(fmt.Sprintf("Data Input (%d)", len(readings))))
	b.WriteString("\n")
	b.WriteString(m.viewReadings(readings, shipment.PrecisionMode))
	b.WriteString("\n")
	b.WriteString(s.help.Render("enter: tambah • backspace: hapus terakhir • x: hapus semua • e: export excel • esc: kembali"))
	return b.String()
}

func (m Model) viewGrid() string {
	var b strings.Builder
	for i, v := range m.grid {
		label := entry.FormatReading(v, domain.PrecisionOne)
		if i == m.gridCursor {
			b.WriteString(m.styles.cursor.Render(label))
		} else {
			b.WriteString(m.styles.button.Render(label))
		}
		if (i+1)%gridColumns == 0 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) viewPicker() string {
	wheel := func(focus bool, text string) string {
		if focus {
			return m.styles.cursor.Render(text)
		}
		return m.styles.button.Render(text)
	}
	value := fmt.Sprintf("%d,%02d", m.whole, m.hundredths)
	return fmt.Sprintf("%s , %s  =  %s kg\n%s\n",
		wheel(m.pickerFocus == 0, fmt.Sprintf("%d", m.whole)),
		wheel(m.pickerFocus == 1, fmt.Sprintf("%02d", m.hundredths)),
		m.styles.big.Render(value),
		m.styles.muted.Render("←/→: pilih roda • ↑/↓: ubah nilai"),
	)
}

func (m Model) viewReadings(readings []float64, mode domain.PrecisionMode) string {
	if len(readings) == 0 {
		return m.styles.muted.Render("Belum ada data. Mulai input sekarang!") + "\n"
	}
	var b strings.Builder
	for i, v := range readings {
		text := entry.FormatReading(v, mode)
		if domain.IsAccepted(v) {
			b.WriteString(m.styles.accepted.Render(text))
		} else {
			b.WriteString(m.styles.rejected.Render(text))
		}
		if (i+1)%readingsPerLine == 0 || i == len(readings)-1 {
			b.WriteString("\n")
		} else {
			b.WriteString("  ")
		}
	}
	return b.String()
}

func (m Model) viewConfirm() string {
	return m.styles.box.Render(m.confirmMsg + "\n\n" + m.styles.help.Render("y: ya • n: batal"))
}

func (m Model) viewDone() string {
	s := m.styles
	var b strings.Builder
	b.WriteString(s.okMsg.Render("✅ Data berhasil di-export ke Excel!"))
	b.WriteString("\n\n")
	if res := m.session.Result(); res != nil {
		b.WriteString(fmt.Sprintf("File: %s\n", res.FileName))
		b.WriteString(fmt.Sprintf("Total Data: %d\n", res.Readings))
		if res.Offline {
			b.WriteString(s.errorMsg.Render("Server tidak terjangkau, data hanya tersimpan di file Excel."))
			b.WriteString("\n")
		} else if res.Batch != nil {
			b.WriteString(s.muted.Render(fmt.Sprintf("Tersimpan di riwayat #%d", res.Batch.ID)))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(s.help.Render(fmt.Sprintf("Kembali ke beranda dalam %d detik… (enter: sekarang)", m.countdown)))
	return b.String()
}

func modeLabel(mode domain.PrecisionMode) string {
	if mode == domain.PrecisionTwo {
		return "2 Angka Dibelakang Koma (4,00 - 6,00)"
	}
	return "1 Angka Dibelakang Koma (4,0 - 6,0)"
}
