package engine

import (
	"math"

	"github.com/vinthewrench/offgrid-weather-station/internal/modules/weather/types"
)

const (
	mmPerInch = 25.4

	// Raw counter values outside [0, maxRainMM] are treated as sensor garbage.
	maxRainMM = 20000.0

	// Deltas at or below minDeltaMM are float noise; at or above maxDeltaMM
	// they are a counter reset or a corrupt sample. Neither accumulates.
	minDeltaMM = 0.0001
	maxDeltaMM = 5000.0

	hourlyWindowSec = 3600
	eventGapSec     = 30 * 60
)

// validRain returns the raw counter if the reading carries a plausible one.
func validRain(r types.RawReading) (float64, bool) {
	if r.RainMM == nil {
		return 0, false
	}
	v := *r.RainMM
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > maxRainMM {
		return 0, false
	}
	return v, true
}

// accumulateRain turns the cumulative counter into per-period totals. It
// reports false when the sample only established the baseline.
//
// A decrease is not treated as a wrap: the raw value simply becomes the new
// baseline and whatever fell between the reset and this sample is lost.
func accumulateRain(st *types.EngineState, raw float64, now int64) bool {
	if !st.RainSeeded {
		st.LastRainMM = raw
		st.RainSeeded = true
		return false
	}

	delta := raw - st.LastRainMM
	if delta > minDeltaMM && delta < maxDeltaMM {
		in := delta / mmPerInch

		st.RainDailyIn += in
		st.RainWeeklyIn += in
		st.RainMonthlyIn += in
		st.RainYearlyIn += in

		st.HourlyDeltas = append(st.HourlyDeltas, types.RainDelta{TS: now, Inches: in})

		if st.LastRainTS == 0 || now-st.LastRainTS > eventGapSec {
			st.RainEventIn = 0
		}
		st.RainEventIn += in
		st.LastRainTS = now
	}

	st.LastRainMM = raw
	return true
}

// pruneHourly drops deltas older than the trailing hour and recomputes the
// hourly total from what is left.
func pruneHourly(st *types.EngineState, now int64) {
	kept := st.HourlyDeltas[:0]
	sum := 0.0
	for _, d := range st.HourlyDeltas {
		if now-d.TS <= hourlyWindowSec {
			kept = append(kept, d)
			sum += d.Inches
		}
	}
	if len(kept) == 0 {
		kept = nil
	}
	st.HourlyDeltas = kept
	st.RainHourlyIn = sum
}
