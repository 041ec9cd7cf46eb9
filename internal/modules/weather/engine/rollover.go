package engine

import (
	"time"

	"github.com/vinthewrench/offgrid-weather-station/internal/modules/weather/types"
)

// A day is only committed to history when its samples span at least this long.
const minCoverageSec = 12 * 3600

// rollover compares now against each stored calendar anchor and resets the
// accumulators whose unit has changed. When the day changes and the outgoing
// day was covered well enough, the row to commit is built from the outgoing
// values before they are cleared.
func rollover(st *types.EngineState, now time.Time, loc *time.Location) *types.DailyRow {
	fillAnchors(st, now, loc)

	d := ymd(now, loc)
	m := ym(now, loc)
	y := year(now, loc)

	var committed *types.DailyRow
	if d != st.DailyYMD {
		committed = closeDay(st, loc)
		resetDay(st, now, d)
	}

	if m != st.MonthYM {
		st.RainMonthlyIn = 0
		st.MonthYM = m
	}

	if y != st.YearY {
		st.RainYearlyIn = 0
		st.YearY = y
	}

	// The week floats: it restarts seven calendar days after it began,
	// whatever weekday that falls on.
	if daysBetween(st.WeekStartYMD, d) >= 7 {
		st.RainWeeklyIn = 0
		st.WeekStartYMD = d
	}

	return committed
}

func closeDay(st *types.EngineState, loc *time.Location) *types.DailyRow {
	if st.DayFirstTS == 0 || st.DayLastTS == 0 {
		return nil
	}
	if st.DayLastTS-st.DayFirstTS < minCoverageSec {
		return nil
	}

	row := &types.DailyRow{
		DayTS: dayStart(time.Unix(st.DayFirstTS, 0), loc).Unix(),
	}
	if st.HaveTemp {
		row.TempHighC = float64Ptr(st.TempHighC)
		row.TempLowC = float64Ptr(st.TempLowC)
	}
	if st.HaveHum {
		row.HumidityHigh = float64Ptr(st.HumHigh)
		row.HumidityLow = float64Ptr(st.HumLow)
	}
	row.RainIn = float64Ptr(st.RainDailyIn)
	return row
}

func resetDay(st *types.EngineState, now time.Time, d int) {
	ts := now.Unix()

	st.RainDailyIn = 0
	st.DailyYMD = d
	st.DayFirstTS = ts
	st.DayLastTS = ts

	st.HaveTemp = false
	st.TempHighC = 0
	st.TempLowC = 0

	st.HaveHum = false
	st.HumHigh = 0
	st.HumLow = 0

	st.HaveWind = false
	st.WindMeanMS = 0
	st.WindMaxGustMS = 0
	st.WindSampleCount = 0
}

func float64Ptr(v float64) *float64 {
	return &v
}
