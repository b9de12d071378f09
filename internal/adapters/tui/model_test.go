package tui

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirillkom/kiriman-ayam/internal/core/domain"
	"github.com/kirillkom/kiriman-ayam/internal/entry"
	"github.com/kirillkom/kiriman-ayam/internal/infrastructure/export/xlsx"
	"github.com/kirillkom/kiriman-ayam/internal/infrastructure/storage/localfs"
)

type apiFake struct {
	names     []domain.ShipmentName
	submitErr error
	submitted []domain.NewBatch
}

func (f *apiFake) ListShipmentNames(context.Context) ([]domain.ShipmentName, error) {
	return f.names, nil
}

func (f *apiFake) ListRecent(context.Context) ([]domain.ShipmentBatch, error) {
	return []domain.ShipmentBatch{}, nil
}

func (f *apiFake) GetBatch(context.Context, int64) (*domain.ShipmentBatch, error) {
	return nil, domain.ErrBatchNotFound
}

func (f *apiFake) SubmitBatch(_ context.Context, batch domain.NewBatch) (*domain.ShipmentBatch, error) {
	f.submitted = append(f.submitted, batch)
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	created := batch.Normalize().Seal(time.Now())
	created.ID = int64(len(f.submitted))
	return &created, nil
}

type fixture struct {
	api      *apiFake
	recovery *entry.RecoveryStore
	session  *entry.Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	local, err := localfs.New(filepath.Join(dir, "client"))
	require.NoError(t, err)
	exports, err := localfs.New(filepath.Join(dir, "exports"))
	require.NoError(t, err)

	f := &fixture{
		api:      &apiFake{names: domain.FallbackShipmentNames()},
		recovery: entry.NewRecoveryStore(local),
	}
	f.session = entry.NewSession(f.api, xlsx.New(nil), exports, f.recovery)
	return f
}

// start returns a model with the shipment list loaded.
func (f *fixture) start(t *testing.T) Model {
	t.Helper()
	m, err := New(context.Background(), f.session)
	require.NoError(t, err)
	m, _ = deliver(t, m, m.Init())
	require.NotEmpty(t, m.names)
	return m
}

// enter selects the first catalog name with the given PO and mode.
func (f *fixture) enter(t *testing.T, po string, mode domain.PrecisionMode) Model {
	t.Helper()
	m := f.start(t)
	m, _ = press(m, "down", "tab", "tab")
	m, _ = press(m, po)
	if mode == domain.PrecisionTwo {
		m, _ = press(m, "tab", "2")
	}
	m, cmd := press(m, "enter")
	m, _ = deliver(t, m, cmd)
	return m
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func press(m Model, keys ...string) (Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(keyMsg(k))
		m = next.(Model)
	}
	return m, cmd
}

func deliver(t *testing.T, m Model, cmd tea.Cmd) (Model, tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	next, out := m.Update(cmd())
	return next.(Model), out
}

func TestModel_StartRequiresShipmentAndPO(t *testing.T) {
	m := newFixture(t).start(t)

	m, cmd := press(m, "enter")
	assert.Nil(t, cmd)
	assert.Equal(t, screenStart, m.screen)
	assert.Contains(t, m.View(), msgShipmentRequired)

	m, cmd = press(m, "down", "enter")
	assert.Nil(t, cmd, "PO still missing")
	assert.Contains(t, m.View(), msgShipmentRequired)
}

func TestModel_StartListsCatalog(t *testing.T) {
	m := newFixture(t).start(t)

	view := m.View()
	assert.Contains(t, view, "Input Kiriman Ayam")
	assert.Contains(t, view, "-- Pilih Nama Kiriman --")
	assert.Contains(t, view, "Aceh")
	assert.Contains(t, view, "1 Angka Dibelakang Koma (4,0 - 6,0)")
}

func TestModel_CustomNameOverridesList(t *testing.T) {
	f := newFixture(t)
	m := f.start(t)

	m, _ = press(m, "down", "tab", "Gudang Baru", "tab", "PO-9")
	assert.Equal(t, -1, m.nameCursor)

	m, cmd := press(m, "enter")
	m, _ = deliver(t, m, cmd)
	assert.Equal(t, screenEntry, m.screen)
	assert.Equal(t, "Gudang Baru", f.session.Shipment().Name)
	assert.Equal(t, "PO-9", f.session.Shipment().PONumber)
}

func TestModel_GridEntry(t *testing.T) {
	f := newFixture(t)
	m := f.enter(t, "PO-001", domain.PrecisionOne)
	require.Equal(t, screenEntry, m.screen)

	view := m.View()
	assert.Contains(t, view, "Aceh")
	assert.Contains(t, view, "PO: PO-001")
	assert.Contains(t, view, "Belum ada data. Mulai input sekarang!")

	m, _ = press(m, "enter", "right", "enter", "down", "enter")
	assert.Equal(t, []float64{5.0, 5.1, 5.8}, f.session.Readings())
	view = m.View()
	assert.Contains(t, view, "5,8 kg")
	assert.Contains(t, view, "Data Input (3)")

	m, _ = press(m, "backspace")
	assert.Equal(t, []float64{5.0, 5.1}, f.session.Readings())
	view = m.View()
	assert.Contains(t, view, "5,1 kg")
	assert.NotContains(t, view, "5,8 kg")

	m, _ = press(m, "up", "up", "up", "left", "left", "left", "enter")
	assert.Equal(t, []float64{5.0, 5.1, 4.1}, f.session.Readings())
}

func TestModel_PickerRejectsOutOfRange(t *testing.T) {
	f := newFixture(t)
	m := f.enter(t, "PO-002", domain.PrecisionTwo)
	require.Equal(t, domain.PrecisionTwo, f.session.Shipment().PrecisionMode)

	m, _ = press(m, "up", "right", "up", "enter")
	assert.Empty(t, f.session.Readings())
	assert.Contains(t, m.View(), msgPickerRange)

	m, _ = press(m, "down", "enter")
	assert.Equal(t, []float64{6.0}, f.session.Readings())
	assert.NotContains(t, m.View(), msgPickerRange)

	m, _ = press(m, "left", "down", "down", "right", "down", "down", "enter")
	assert.Equal(t, []float64{6.0, 4.98}, f.session.Readings())
	assert.Contains(t, m.View(), "4,98 kg")
}

func TestModel_ClearAllNeedsConfirmation(t *testing.T) {
	f := newFixture(t)
	m := f.enter(t, "PO-003", domain.PrecisionOne)
	m, _ = press(m, "enter", "enter")

	m, _ = press(m, "x")
	assert.Equal(t, screenConfirm, m.screen)
	assert.Contains(t, m.View(), "Yakin mau hapus semua data?")

	m, _ = press(m, "n")
	assert.Equal(t, screenEntry, m.screen)
	assert.Len(t, f.session.Readings(), 2)

	m, _ = press(m, "x", "y")
	assert.Equal(t, screenEntry, m.screen)
	assert.Empty(t, f.session.Readings())

	snap, err := f.recovery.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestModel_LeaveGuard(t *testing.T) {
	f := newFixture(t)
	m := f.enter(t, "PO-004", domain.PrecisionOne)
	m, _ = press(m, "enter")

	m, cmd := press(m, "esc")
	assert.Nil(t, cmd)
	assert.Equal(t, screenConfirm, m.screen)

	m, cmd = press(m, "y")
	assert.NotNil(t, cmd)
	assert.Equal(t, screenStart, m.screen)
	assert.Equal(t, entry.StateAwaitingShipment, f.session.State())
}

func TestModel_LeaveWithoutReadings(t *testing.T) {
	f := newFixture(t)
	m := f.enter(t, "PO-005", domain.PrecisionOne)

	m, cmd := press(m, "esc")
	assert.NotNil(t, cmd)
	assert.Equal(t, screenStart, m.screen)
}

func TestModel_RecoveryPrompt(t *testing.T) {
	f := newFixture(t)
	shipment := entry.Shipment{Name: "Aceh", PONumber: "PO-006", PrecisionMode: domain.PrecisionOne}
	require.NoError(t, f.recovery.Save(context.Background(), shipment, []float64{5.0, 5.1}, time.Now()))

	m := f.enter(t, "PO-006", domain.PrecisionOne)
	require.Equal(t, screenRecovery, m.screen)
	assert.Contains(t, m.View(), "Ditemukan 2 data belum di-export. Lanjutkan data ini?")

	m, _ = press(m, "y")
	assert.Equal(t, screenEntry, m.screen)
	assert.Equal(t, []float64{5.0, 5.1}, f.session.Readings())
}

func TestModel_RecoveryDiscard(t *testing.T) {
	f := newFixture(t)
	shipment := entry.Shipment{Name: "Aceh", PONumber: "PO-007"}
	require.NoError(t, f.recovery.Save(context.Background(), shipment, []float64{5.0}, time.Now()))

	m := f.enter(t, "PO-007", domain.PrecisionOne)
	m, _ = press(m, "n")
	assert.Equal(t, screenEntry, m.screen)
	assert.Empty(t, f.session.Readings())

	snap, err := f.recovery.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestModel_ExportCountdown(t *testing.T) {
	f := newFixture(t)
	m := f.enter(t, "PO-008", domain.PrecisionOne)
	m, _ = press(m, "enter", "right", "enter")

	m, cmd := press(m, "e")
	assert.Equal(t, screenSubmitting, m.screen)
	m, tick := deliver(t, m, cmd)

	require.Equal(t, screenDone, m.screen)
	assert.NotNil(t, tick)
	assert.Equal(t, 3, m.countdown)
	view := m.View()
	assert.Contains(t, view, "Data berhasil di-export ke Excel!")
	assert.Contains(t, view, "Kiriman_Aceh_")
	assert.Contains(t, view, "Tersimpan di riwayat #1")
	require.Len(t, f.api.submitted, 1)

	stale, _ := m.Update(countdownMsg{gen: m.countdownGen - 1})
	assert.Equal(t, 3, stale.(Model).countdown)

	for i := 0; i < 2; i++ {
		next, _ := m.Update(countdownMsg{gen: m.countdownGen})
		m = next.(Model)
	}
	assert.Equal(t, screenDone, m.screen)
	assert.Contains(t, m.View(), "dalam 1 detik")

	next, cmd := m.Update(countdownMsg{gen: m.countdownGen})
	m = next.(Model)
	assert.Equal(t, screenStart, m.screen)
	assert.Equal(t, entry.StateAwaitingShipment, f.session.State())
	m, _ = deliver(t, m, cmd)
	assert.NotEmpty(t, m.names)
}

func TestModel_ExportOffline(t *testing.T) {
	f := newFixture(t)
	f.api.submitErr = domain.WrapError(domain.ErrTemporary, "submit_batch", errors.New("connection refused"))
	m := f.enter(t, "PO-009", domain.PrecisionOne)
	m, _ = press(m, "enter")

	m, cmd := press(m, "e")
	m, _ = deliver(t, m, cmd)
	require.Equal(t, screenDone, m.screen)
	assert.Contains(t, m.View(), "Server tidak terjangkau")

	m, cmd = press(m, "enter")
	assert.Equal(t, screenStart, m.screen)
	assert.NotNil(t, cmd)
}

func TestModel_ExportWithoutReadings(t *testing.T) {
	f := newFixture(t)
	m := f.enter(t, "PO-010", domain.PrecisionOne)

	m, cmd := press(m, "e")
	assert.Nil(t, cmd)
	assert.Equal(t, screenEntry, m.screen)
	assert.Contains(t, m.View(), msgNoReadings)
}

func TestModel_CtrlCQuits(t *testing.T) {
	m := newFixture(t).start(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
