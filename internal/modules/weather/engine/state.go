package engine

import (
	"errors"
	"io/fs"
	"log/slog"
	"time"

	"github.com/vinthewrench/offgrid-weather-station/internal/modules/weather/types"
)

// StateLoader decodes a persisted checkpoint over the state it is given.
// Keys missing from the record leave the corresponding fields untouched.
type StateLoader interface {
	Load(st *types.EngineState) error
}

// DefaultState is the state of a station that has never persisted anything:
// every calendar anchor points at now and the historical seed is applied.
func DefaultState(now time.Time, loc *time.Location, seed types.HistoricalSeed) types.EngineState {
	d := ymd(now, loc)
	return types.EngineState{
		LastUpdateTS:     now.Unix(),
		HistoricalSeed:   seed,
		HistoricalSeeded: true,
		DailyYMD:         d,
		MonthYM:          ym(now, loc),
		YearY:            year(now, loc),
		WeekStartYMD:     d,
	}
}

// Restore loads the checkpoint, falling back to DefaultState when the record
// is missing or unreadable.
func Restore(loader StateLoader, now time.Time, loc *time.Location, seed types.HistoricalSeed, logger *slog.Logger) types.EngineState {
	st := DefaultState(now, loc, seed)
	if loader == nil {
		return st
	}
	err := loader.Load(&st)
	switch {
	case err == nil:
		logger.Info("checkpoint restored",
			"daily_ymd", st.DailyYMD,
			"last_update_ts", st.LastUpdateTS,
			"rain_daily_in", st.RainDailyIn,
		)
	case errors.Is(err, fs.ErrNotExist):
		logger.Info("no checkpoint found, starting fresh")
		return DefaultState(now, loc, seed)
	default:
		logger.Warn("checkpoint unreadable, starting fresh", "error", err)
		return DefaultState(now, loc, seed)
	}

	// Checkpoints written before rain_seeded existed only know the raw value.
	if !st.RainSeeded && st.LastRainMM != 0 {
		st.RainSeeded = true
	}
	fillAnchors(&st, now, loc)
	return st
}

func fillAnchors(st *types.EngineState, now time.Time, loc *time.Location) {
	d := ymd(now, loc)
	if st.DailyYMD == 0 {
		st.DailyYMD = d
	}
	if st.MonthYM == 0 {
		st.MonthYM = ym(now, loc)
	}
	if st.YearY == 0 {
		st.YearY = year(now, loc)
	}
	if st.WeekStartYMD == 0 {
		st.WeekStartYMD = d
	}
}
