package entry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/kirillkom/kiriman-ayam/internal/core/domain"
	"github.com/kirillkom/kiriman-ayam/internal/core/ports"
)

// DoneCountdown is how long the completion screen stays before returning to the start.
const DoneCountdown = 3 * time.Second

type State int

const (
	StateIdle State = iota
	StateAwaitingShipment
	StateEntering
	StateSubmitting
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingShipment:
		return "awaiting_shipment"
	case StateEntering:
		return "entering"
	case StateSubmitting:
		return "submitting"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	ErrInvalidState     = errors.New("operation not allowed in current state")
	ErrShipmentRequired = errors.New("shipment name and PO number are required")
	ErrOutOfRange       = errors.New("reading out of range")
	ErrNoReadings       = errors.New("no readings entered")
	ErrNoRecovery       = errors.New("no recovery snapshot pending")
	ErrUnsaved          = errors.New("unsaved readings")
)

// Result describes a finished batch. Batch is nil when the storage service was unreachable.
type Result struct {
	FileName string
	Readings int
	Batch    *domain.ShipmentBatch
	Offline  bool
}

type offlineReporter interface {
	Offline() bool
}

// Session drives one operator through shipment selection, reading entry and export.
// It is safe for use from multiple goroutines.
type Session struct {
	api      ports.HistoryAPI
	renderer ports.WorkbookRenderer
	exports  ports.ObjectStorage
	recovery *RecoveryStore
	now      func() time.Time

	mu       sync.Mutex
	state    State
	shipment Shipment
	readings []float64
	pending  *Snapshot
	result   *Result
}

func NewSession(
	api ports.HistoryAPI,
	renderer ports.WorkbookRenderer,
	exports ports.ObjectStorage,
	recovery *RecoveryStore,
) *Session {
	return &Session{
		api:      api,
		renderer: renderer,
		exports:  exports,
		recovery: recovery,
		now:      time.Now,
	}
}

func (s *Session) WithClock(now func() time.Time) *Session {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Shipment() Shipment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shipment
}

func (s *Session) Readings() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.readings)
}

func (s *Session) Pending() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

func (s *Session) Result() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

func (s *Session) Stats() domain.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.ComputeStats(s.readings)
}

func (s *Session) LastReading() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.readings) == 0 {
		return 0, false
	}
	return s.readings[len(s.readings)-1], true
}

// Start opens the shipment selection screen.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle && s.state != StateDone {
		return s.stateError("start")
	}
	s.resetLocked()
	s.state = StateAwaitingShipment
	return nil
}

// LoadShipments lists the shipment names and reports whether they came from the offline catalog.
func (s *Session) LoadShipments(ctx context.Context) ([]domain.ShipmentName, bool, error) {
	names, err := s.api.ListShipmentNames(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("load shipment names: %w", err)
	}
	offline := false
	if r, ok := s.api.(offlineReporter); ok {
		offline = r.Offline()
	}
	return names, offline, nil
}

// SelectShipment begins entry for a shipment. A non-nil snapshot means readings for the
// same PO were left unexported; call Resume or DiscardRecovery before adding readings.
func (s *Session) SelectShipment(ctx context.Context, name, po string, mode domain.PrecisionMode) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAwaitingShipment {
		return nil, s.stateError("select_shipment")
	}
	name = strings.TrimSpace(name)
	po = strings.TrimSpace(po)
	if name == "" || po == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "select_shipment", ErrShipmentRequired)
	}

	s.shipment = Shipment{Name: name, PONumber: po, PrecisionMode: mode.Normalize()}
	s.readings = nil
	s.pending = nil
	s.state = StateEntering

	snap, err := s.recovery.Load(ctx)
	if err != nil {
		slog.Warn("entry_recovery_load_failed", "po_number", po, "error", err.Error())
		return nil, nil
	}
	if snap == nil || snap.Shipment.PONumber != po || len(snap.Readings) == 0 {
		return nil, nil
	}
	s.pending = snap
	return snap, nil
}

// Resume continues with the pending snapshot's readings.
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateEntering {
		return s.stateError("resume")
	}
	if s.pending == nil {
		return ErrNoRecovery
	}
	s.readings = slices.Clone(s.pending.Readings)
	s.pending = nil
	return nil
}

// DiscardRecovery drops the pending snapshot and removes it from storage.
func (s *Session) DiscardRecovery(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateEntering {
		return s.stateError("discard_recovery")
	}
	if s.pending == nil {
		return ErrNoRecovery
	}
	s.pending = nil
	if err := s.recovery.Clear(ctx); err != nil {
		return fmt.Errorf("clear recovery: %w", err)
	}
	return nil
}

// AddReading rounds v to the precision mode and appends it. Values outside
// [4.0, 6.0] are rejected without changing the list.
func (s *Session) AddReading(ctx context.Context, v float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireEntryLocked("add_reading"); err != nil {
		return 0, err
	}
	rounded := domain.RoundReading(v, s.shipment.PrecisionMode)
	if !domain.InEntryRange(rounded) {
		return 0, domain.WrapError(domain.ErrInvalidInput, "add_reading", ErrOutOfRange)
	}
	s.readings = append(s.readings, rounded)
	s.persistLocked(ctx)
	return rounded, nil
}

// RemoveLast drops the most recent reading; it reports false when the list was empty.
func (s *Session) RemoveLast(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireEntryLocked("remove_last"); err != nil {
		return false, err
	}
	if len(s.readings) == 0 {
		return false, nil
	}
	s.readings = s.readings[:len(s.readings)-1]
	s.persistLocked(ctx)
	return true, nil
}

// ClearAll empties the list and the recovery snapshot.
func (s *Session) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireEntryLocked("clear_all"); err != nil {
		return err
	}
	s.readings = nil
	if err := s.recovery.Clear(ctx); err != nil {
		return fmt.Errorf("clear recovery: %w", err)
	}
	return nil
}

// HasUnsaved reports whether leaving now would abandon entered readings.
func (s *Session) HasUnsaved() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateEntering && len(s.readings) > 0
}

// Leave returns to the start. With unsaved readings it needs confirmed; the recovery
// snapshot is kept so the readings can be resumed later.
func (s *Session) Leave(confirmed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateSubmitting {
		return s.stateError("leave")
	}
	if s.state == StateEntering && len(s.readings) > 0 && !confirmed {
		return ErrUnsaved
	}
	s.resetLocked()
	return nil
}

// Finish writes the flat workbook to the exports storage, then submits the batch.
// A failed local export keeps the session in entry; a failed submit only marks the result offline.
func (s *Session) Finish(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireEntryLocked("finish"); err != nil {
		return nil, err
	}
	if len(s.readings) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "finish", ErrNoReadings)
	}
	s.state = StateSubmitting

	draft := domain.NewBatch{
		ShipmentName:  s.shipment.Name,
		PONumber:      s.shipment.PONumber,
		PrecisionMode: s.shipment.PrecisionMode,
		Readings:      slices.Clone(s.readings),
	}
	fileName := domain.EntryExportName(draft.ShipmentName, s.now())

	var buf bytes.Buffer
	if err := s.renderer.RenderEntry(&buf, draft); err != nil {
		s.state = StateEntering
		return nil, fmt.Errorf("render entry workbook: %w", err)
	}
	if err := s.exports.Save(ctx, fileName, &buf); err != nil {
		s.state = StateEntering
		return nil, fmt.Errorf("save entry workbook %s: %w", fileName, err)
	}

	result := &Result{FileName: fileName, Readings: len(draft.Readings)}
	created, err := s.api.SubmitBatch(ctx, draft)
	if err != nil {
		slog.Warn("entry_submit_failed",
			"shipment_name", draft.ShipmentName,
			"po_number", draft.PONumber,
			"readings", len(draft.Readings),
			"error", err.Error(),
		)
		result.Offline = true
	} else {
		result.Batch = created
	}

	if err := s.recovery.Clear(ctx); err != nil {
		slog.Warn("entry_recovery_clear_failed", "error", err.Error())
	}
	s.readings = nil
	s.result = result
	s.state = StateDone
	slog.Info("entry_finished",
		"file", fileName,
		"readings", result.Readings,
		"offline", result.Offline,
	)
	return result, nil
}

// Reset leaves the completion screen.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Session) resetLocked() {
	s.state = StateIdle
	s.shipment = Shipment{}
	s.readings = nil
	s.pending = nil
	s.result = nil
}

// requireEntryLocked falls back to Idle when entry has no shipment to record against.
func (s *Session) requireEntryLocked(op string) error {
	if s.state != StateEntering {
		return s.stateError(op)
	}
	if s.shipment.Name == "" || s.shipment.PONumber == "" {
		s.resetLocked()
		return domain.WrapError(domain.ErrInvalidInput, op, ErrShipmentRequired)
	}
	if s.pending != nil {
		return fmt.Errorf("%s: recovery decision pending: %w", op, ErrInvalidState)
	}
	return nil
}

func (s *Session) persistLocked(ctx context.Context) {
	var err error
	if len(s.readings) == 0 {
		err = s.recovery.Clear(ctx)
	} else {
		err = s.recovery.Save(ctx, s.shipment, s.readings, s.now())
	}
	if err != nil {
		slog.Warn("entry_recovery_save_failed",
			"po_number", s.shipment.PONumber,
			"readings", len(s.readings),
			"error", err.Error(),
		)
	}
}

func (s *Session) stateError(op string) error {
	return fmt.Errorf("%s in state %s: %w", op, s.state, ErrInvalidState)
}
