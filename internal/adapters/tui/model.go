// Package tui is the operator's terminal entry screen.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kirillkom/kiriman-ayam/internal/core/domain"
	"github.com/kirillkom/kiriman-ayam/internal/entry"
)

type screen int

const (
	screenStart screen = iota
	screenRecovery
	screenEntry
	screenConfirm
	screenSubmitting
	screenDone
)

type startField int

const (
	fieldShipment startField = iota
	fieldCustomName
	fieldPO
	fieldMode
	fieldCount
)

type confirmAction int

const (
	confirmNone confirmAction = iota
	confirmClearAll
	confirmLeave
)

const (
	gridColumns       = 7
	defaultGridCursor = 10
	defaultWhole      = 5
	listWindow        = 8

	msgShipmentRequired = "Nama kiriman dan Nomor PO harus diisi!"
	msgPickerRange      = "Nilai harus antara 4,00 - 6,00"
	msgExportFailed     = "Gagal export data!"
	msgNoReadings       = "Belum ada data untuk di-export."
)

type shipmentsLoadedMsg struct {
	names   []domain.ShipmentName
	offline bool
	err     error
}

type shipmentSelectedMsg struct {
	snapshot *entry.Snapshot
	err      error
}

type finishedMsg struct {
	err error
}

type countdownMsg struct {
	gen int
}

// Model is the bubbletea model over an entry.Session.
type Model struct {
	ctx     context.Context
	session *entry.Session
	styles  styles

	screen screen
	width  int

	names      []domain.ShipmentName
	offline    bool
	nameCursor int
	custom     textinput.Model
	po         textinput.Model
	mode       domain.PrecisionMode
	focus      startField

	grid        []float64
	gridCursor  int
	whole       int
	hundredths  int
	pickerFocus int

	confirm    confirmAction
	confirmMsg string

	status    string
	statusErr bool

	countdown    int
	countdownGen int
}

// New puts the session on the shipment selection screen.
func New(ctx context.Context, session *entry.Session) (Model, error) {
	if err := session.Start(); err != nil {
		return Model{}, err
	}

	custom := textinput.New()
	custom.Placeholder = "Ketik nama kiriman baru"
	custom.CharLimit = 100
	custom.Width = 30

	po := textinput.New()
	po.Placeholder = "Contoh: PO-001"
	po.CharLimit = 50
	po.Width = 30

	return Model{
		ctx:        ctx,
		session:    session,
		styles:     defaultStyles(),
		screen:     screenStart,
		nameCursor: -1,
		custom:     custom,
		po:         po,
		mode:       domain.PrecisionOne,
		grid:       entry.GridValues(),
		gridCursor: defaultGridCursor,
		whole:      defaultWhole,
	}, nil
}

func (m Model) Init() tea.Cmd {
	return m.loadShipments()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case shipmentsLoadedMsg:
		if msg.err != nil {
			m.setError("Gagal memuat daftar kiriman: " + msg.err.Error())
			return m, nil
		}
		m.names = msg.names
		m.offline = msg.offline
		if m.nameCursor >= len(m.names) {
			m.nameCursor = -1
		}
		return m, nil

	case shipmentSelectedMsg:
		return m.onShipmentSelected(msg)

	case finishedMsg:
		return m.onFinished(msg)

	case countdownMsg:
		if m.screen != screenDone || msg.gen != m.countdownGen {
			return m, nil
		}
		m.countdown--
		if m.countdown <= 0 {
			return m.backToStart()
		}
		return m, m.tick()

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.screen {
		case screenStart:
			return m.updateStart(msg)
		case screenRecovery:
			return m.updateRecovery(msg)
		case screenEntry:
			return m.updateEntry(msg)
		case screenConfirm:
			return m.updateConfirm(msg)
		case screenDone:
			if msg.Type == tea.KeyEnter || msg.Type == tea.KeyEsc {
				return m.backToStart()
			}
		}
	}
	return m, nil
}

func (m Model) updateStart(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyTab:
		return m.focusField((m.focus + 1) % fieldCount)
	case tea.KeyShiftTab:
		return m.focusField((m.focus + fieldCount - 1) % fieldCount)
	case tea.KeyEnter:
		return m.submitShipment()
	}

	switch m.focus {
	case fieldShipment:
		switch msg.Type {
		case tea.KeyUp:
			if m.nameCursor > -1 {
				m.nameCursor--
			}
		case tea.KeyDown:
			if m.nameCursor < len(m.names)-1 {
				m.nameCursor++
			}
		}
		return m, nil
	case fieldCustomName:
		var cmd tea.Cmd
		m.custom, cmd = m.custom.Update(msg)
		if strings.TrimSpace(m.custom.Value()) != "" {
			m.nameCursor = -1
		}
		return m, cmd
	case fieldPO:
		var cmd tea.Cmd
		m.po, cmd = m.po.Update(msg)
		return m, cmd
	case fieldMode:
		switch msg.String() {
		case "left", "right", "up", "down", " ":
			if m.mode == domain.PrecisionOne {
				m.mode = domain.PrecisionTwo
			} else {
				m.mode = domain.PrecisionOne
			}
		case "1":
			m.mode = domain.PrecisionOne
		case "2":
			m.mode = domain.PrecisionTwo
		}
	}
	return m, nil
}

func (m Model) focusField(field startField) (tea.Model, tea.Cmd) {
	m.focus = field
	m.custom.Blur()
	m.po.Blur()
	switch field {
	case fieldCustomName:
		return m, m.custom.Focus()
	case fieldPO:
		return m, m.po.Focus()
	}
	return m, nil
}

// shipmentName prefers a typed name over the list selection.
func (m Model) shipmentName() string {
	if name := strings.TrimSpace(m.custom.Value()); name != "" {
		return name
	}
	if m.nameCursor >= 0 && m.nameCursor < len(m.names) {
		return m.names[m.nameCursor].Name
	}
	return ""
}

func (m Model) submitShipment() (tea.Model, tea.Cmd) {
	name := m.shipmentName()
	po := strings.TrimSpace(m.po.Value())
	if name == "" || po == "" {
		m.setError(msgShipmentRequired)
		return m, nil
	}
	m.clearStatus()
	ctx, session, mode := m.ctx, m.session, m.mode
	return m, func() tea.Msg {
		snap, err := session.SelectShipment(ctx, name, po, mode)
		return shipmentSelectedMsg{snapshot: snap, err: err}
	}
}

func (m Model) onShipmentSelected(msg shipmentSelectedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if errors.Is(msg.err, entry.ErrShipmentRequired) {
			m.setError(msgShipmentRequired)
		} else {
			m.setError(msg.err.Error())
		}
		return m, nil
	}
	m.custom.Blur()
	m.po.Blur()
	m.gridCursor = defaultGridCursor
	m.whole, m.hundredths, m.pickerFocus = defaultWhole, 0, 0
	if msg.snapshot != nil {
		m.screen = screenRecovery
		return m, nil
	}
	m.screen = screenEntry
	return m, nil
}

func (m Model) updateRecovery(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch strings.ToLower(msg.String()) {
	case "y", "enter":
		if err := m.session.Resume(); err != nil {
			m.setError(err.Error())
		} else {
			m.setOK("Data sebelumnya dilanjutkan.")
		}
		m.screen = screenEntry
	case "n", "esc":
		if err := m.session.DiscardRecovery(m.ctx); err != nil {
			m.setError(err.Error())
		} else {
			m.clearStatus()
		}
		m.screen = screenEntry
	}
	return m, nil
}

func (m Model) updateEntry(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return m.addCurrent()
	case "backspace":
		removed, err := m.session.RemoveLast(m.ctx)
		switch {
		case err != nil:
			m.setError(err.Error())
		case removed:
			m.clearStatus()
		}
		return m, nil
	case "x":
		if len(m.session.Readings()) == 0 {
			return m, nil
		}
		m.askConfirm(confirmClearAll, "Yakin mau hapus semua data?")
		return m, nil
	case "e":
		return m.finish()
	case "esc":
		if m.session.HasUnsaved() {
			m.askConfirm(confirmLeave, "Data belum di-export. Yakin mau kembali?")
			return m, nil
		}
		return m.leave()
	}

	if m.session.Shipment().PrecisionMode == domain.PrecisionTwo {
		m.movePicker(msg.String())
	} else {
		m.moveGrid(msg.String())
	}
	return m, nil
}

func (m *Model) moveGrid(key string) {
	next := m.gridCursor
	switch key {
	case "left":
		next--
	case "right":
		next++
	case "up":
		next -= gridColumns
	case "down":
		next += gridColumns
	}
	if next >= 0 && next < len(m.grid) {
		m.gridCursor = next
	}
}

func (m *Model) movePicker(key string) {
	switch key {
	case "left", "right", "tab":
		m.pickerFocus = 1 - m.pickerFocus
	case "up":
		if m.pickerFocus == 0 {
			m.whole = min(m.whole+1, entry.PickerWholeMax)
		} else {
			m.hundredths = (m.hundredths + 1) % (entry.PickerHundredthsMax + 1)
		}
	case "down":
		if m.pickerFocus == 0 {
			m.whole = max(m.whole-1, entry.PickerWholeMin)
		} else {
			m.hundredths = (m.hundredths + entry.PickerHundredthsMax) % (entry.PickerHundredthsMax + 1)
		}
	}
}

func (m Model) addCurrent() (tea.Model, tea.Cmd) {
	var value float64
	if m.session.Shipment().PrecisionMode == domain.PrecisionTwo {
		v, err := entry.PickerValue(m.whole, m.hundredths)
		if err != nil {
			m.setError(msgPickerRange)
			return m, nil
		}
		value = v
	} else {
		value = m.grid[m.gridCursor]
	}

	if _, err := m.session.AddReading(m.ctx, value); err != nil {
		if errors.Is(err, entry.ErrOutOfRange) {
			m.setError(msgPickerRange)
		} else {
			m.setError(err.Error())
		}
		return m, nil
	}
	m.clearStatus()
	return m, nil
}

func (m *Model) askConfirm(action confirmAction, question string) {
	m.confirm = action
	m.confirmMsg = question
	m.screen = screenConfirm
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch strings.ToLower(msg.String()) {
	case "y":
		action := m.confirm
		m.confirm = confirmNone
		m.screen = screenEntry
		switch action {
		case confirmClearAll:
			if err := m.session.ClearAll(m.ctx); err != nil {
				m.setError(err.Error())
			} else {
				m.setOK("Semua data dihapus.")
			}
		case confirmLeave:
			if err := m.session.Leave(true); err != nil {
				m.setError(err.Error())
				return m, nil
			}
			return m.restart()
		}
	case "n", "esc":
		m.confirm = confirmNone
		m.screen = screenEntry
	}
	return m, nil
}

func (m Model) finish() (tea.Model, tea.Cmd) {
	if len(m.session.Readings()) == 0 {
		m.setError(msgNoReadings)
		return m, nil
	}
	m.screen = screenSubmitting
	m.clearStatus()
	ctx, session := m.ctx, m.session
	return m, func() tea.Msg {
		_, err := session.Finish(ctx)
		return finishedMsg{err: err}
	}
}

func (m Model) onFinished(msg finishedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.screen = screenEntry
		m.setError(msgExportFailed)
		return m, nil
	}
	m.screen = screenDone
	m.countdown = int(entry.DoneCountdown / time.Second)
	m.countdownGen++
	m.clearStatus()
	return m, m.tick()
}

func (m Model) tick() tea.Cmd {
	gen := m.countdownGen
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return countdownMsg{gen: gen}
	})
}

func (m Model) leave() (tea.Model, tea.Cmd) {
	if err := m.session.Leave(false); err != nil {
		m.setError(err.Error())
		return m, nil
	}
	return m.restart()
}

func (m Model) backToStart() (tea.Model, tea.Cmd) {
	m.session.Reset()
	return m.restart()
}

// restart expects the session to be idle.
func (m Model) restart() (tea.Model, tea.Cmd) {
	if err := m.session.Start(); err != nil {
		m.setError(err.Error())
		return m, nil
	}
	m.screen = screenStart
	m.nameCursor = -1
	m.custom.Reset()
	m.po.Reset()
	m.mode = domain.PrecisionOne
	m.focus = fieldShipment
	m.custom.Blur()
	m.po.Blur()
	return m, m.loadShipments()
}

func (m Model) loadShipments() tea.Cmd {
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		names, offline, err := session.LoadShipments(ctx)
		return shipmentsLoadedMsg{names: names, offline: offline, err: err}
	}
}

func (m *Model) setError(text string) {
	m.status = text
	m.statusErr = true
}

func (m *Model) setOK(text string) {
	m.status = text
	m.statusErr = false
}

func (m *Model) clearStatus() {
	m.status = ""
	m.statusErr = false
}
