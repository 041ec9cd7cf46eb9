package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vinthewrench/offgrid-weather-station/internal/modules/weather/types"
)

// HistoryWriter receives finished days.
type HistoryWriter interface {
	CommitDay(ctx context.Context, row types.DailyRow) error
}

// CheckpointWriter persists the full engine state after every accepted reading.
type CheckpointWriter interface {
	Save(st types.EngineState) error
}

type Options struct {
	// Location drives every calendar boundary. Nil means time.Local.
	Location   *time.Location
	History    HistoryWriter
	Checkpoint CheckpointWriter
	Logger     *slog.Logger
}

// Result describes what a single Apply call did.
type Result struct {
	Accepted  bool
	Committed *types.DailyRow
	Kind      types.ErrorKind
	Err       error
}

// Engine owns the weather state. Readers take snapshots; one writer at a time
// applies readings.
type Engine struct {
	// applyMu serializes whole Apply calls including their disk writes, so an
	// older checkpoint can never land after a newer one.
	applyMu sync.Mutex

	mu    sync.RWMutex
	state types.EngineState
	poll  types.PollStatus

	loc        *time.Location
	history    HistoryWriter
	checkpoint CheckpointWriter
	logger     *slog.Logger
}

func New(initial types.EngineState, opts Options) *Engine {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		state:      initial.Clone(),
		loc:        loc,
		history:    opts.History,
		checkpoint: opts.Checkpoint,
		logger:     logger,
	}
}

// Location returns the zone used for calendar boundaries.
func (e *Engine) Location() *time.Location {
	return e.loc
}

// Apply folds one reading into the state. Storage failures are reported in
// the result and logged; the in-memory state is kept either way.
func (e *Engine) Apply(ctx context.Context, r types.RawReading, now time.Time) Result {
	e.applyMu.Lock()
	defer e.applyMu.Unlock()

	e.mu.Lock()
	accepted, committed := step(&e.state, r, now, e.loc)
	var persisted types.EngineState
	if accepted {
		persisted = e.state.Clone()
	}
	e.mu.Unlock()

	res := Result{Accepted: accepted, Committed: committed}
	if !accepted {
		res.Kind = types.KindValidation
		e.logger.Debug("reading dropped, rain_mm missing or out of range",
			"rain_mm", r.RainMM,
		)
		return res
	}

	var errs []error
	if committed != nil && e.history != nil {
		if err := e.history.CommitDay(ctx, *committed); err != nil {
			e.logger.Error("failed to commit day",
				"day_ts", committed.DayTS,
				"error", err,
			)
			errs = append(errs, fmt.Errorf("commit day %d: %w", committed.DayTS, err))
		} else {
			e.logger.Info("day committed",
				"day_ts", committed.DayTS,
				"rain_in", committed.RainIn,
			)
		}
	}

	if e.checkpoint != nil {
		if err := e.checkpoint.Save(persisted); err != nil {
			e.logger.Error("failed to save checkpoint", "error", err)
			errs = append(errs, fmt.Errorf("checkpoint save: %w", err))
		}
	}

	if len(errs) > 0 {
		res.Kind = types.KindStorage
		res.Err = errors.Join(errs...)
	}
	return res
}

// RecordPoll stores the outcome of the latest upstream poll.
func (e *Engine) RecordPoll(p types.PollStatus) {
	e.mu.Lock()
	e.poll = p
	e.mu.Unlock()
}

// Poll returns the most recently recorded poll status.
func (e *Engine) Poll() types.PollStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.poll
}

// Snapshot returns a copy of the state and poll health taken under one lock.
func (e *Engine) Snapshot() types.Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return types.Snapshot{
		State: e.state.Clone(),
		Poll:  e.poll,
	}
}

// step mutates st for one reading and reports whether the reading was
// accepted, plus the day row to commit if the day rolled over.
func step(st *types.EngineState, r types.RawReading, now time.Time, loc *time.Location) (bool, *types.DailyRow) {
	ts := now.Unix()

	st.Telemetry = types.TelemetryFrom(r)
	st.LastUpdateTS = ts

	raw, ok := validRain(r)
	if !ok {
		return false, nil
	}

	committed := rollover(st, now, loc)

	if st.DayFirstTS == 0 {
		st.DayFirstTS = ts
	}
	st.DayLastTS = ts

	if !accumulateRain(st, raw, ts) {
		return true, committed
	}
	pruneHourly(st, ts)
	updateExtrema(st, r)

	return true, committed
}
