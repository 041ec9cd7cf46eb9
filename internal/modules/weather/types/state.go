package types

// RainDelta is one accepted rain increment inside the trailing-hour window.
type RainDelta struct {
	TS     int64   `json:"ts"`
	Inches float64 `json:"inches"`
}

// HistoricalSeed holds the rain totals carried over from before this engine
// started keeping its own history.
type HistoricalSeed struct {
	TotalIn   float64 `json:"historical_total_in"`
	YearlyIn  float64 `json:"historical_yearly_in"`
	MonthlyIn float64 `json:"historical_monthly_in"`
	WeeklyIn  float64 `json:"historical_weekly_in"`
}

// EngineState is the complete resumable state of the weather engine.
// Timestamps are unix seconds. Calendar keys are local-time integers:
// DailyYMD=20250131, MonthYM=202501, YearY=2025, WeekStartYMD=20250127.
type EngineState struct {
	Telemetry Telemetry `json:"telemetry"`

	LastRainMM   float64 `json:"last_rain_mm"`
	RainSeeded   bool    `json:"rain_seeded"`
	LastUpdateTS int64   `json:"last_update_ts"`

	RainHourlyIn  float64 `json:"rain_hourly_in"`
	RainDailyIn   float64 `json:"rain_daily_in"`
	RainWeeklyIn  float64 `json:"rain_weekly_in"`
	RainMonthlyIn float64 `json:"rain_monthly_in"`
	RainYearlyIn  float64 `json:"rain_yearly_in"`
	RainEventIn   float64 `json:"rain_event_in"`

	HourlyDeltas []RainDelta `json:"rain_deltas"`
	LastRainTS   int64       `json:"last_rain_ts"`

	HistoricalSeed
	HistoricalSeeded bool `json:"historical_seeded"`

	DailyYMD     int   `json:"daily_ymd"`
	MonthYM      int   `json:"month_ym"`
	YearY        int   `json:"year_y"`
	WeekStartYMD int   `json:"week_start_ymd"`
	DayFirstTS   int64 `json:"day_first_ts"`
	DayLastTS    int64 `json:"day_last_ts"`

	HaveTemp  bool    `json:"have_temp"`
	TempHighC float64 `json:"temp_high_c"`
	TempLowC  float64 `json:"temp_low_c"`

	HaveHum bool    `json:"have_hum"`
	HumHigh float64 `json:"hum_high"`
	HumLow  float64 `json:"hum_low"`

	HaveWind        bool    `json:"have_wind"`
	WindMeanMS      float64 `json:"wind_mean_m_s"`
	WindMaxGustMS   float64 `json:"wind_max_gust_m_s"`
	WindSampleCount uint64  `json:"wind_sample_count"`
}

// Clone returns a copy that shares no memory with s.
func (s EngineState) Clone() EngineState {
	out := s
	if s.HourlyDeltas != nil {
		out.HourlyDeltas = make([]RainDelta, len(s.HourlyDeltas))
		copy(out.HourlyDeltas, s.HourlyDeltas)
	}
	return out
}

// SeasonTotalIn projects the season total from the historical seed plus whatever
// this year has accumulated beyond the seed's yearly baseline.
func (s EngineState) SeasonTotalIn() float64 {
	total := s.HistoricalSeed.TotalIn
	if s.RainYearlyIn > s.HistoricalSeed.YearlyIn {
		total += s.RainYearlyIn - s.HistoricalSeed.YearlyIn
	}
	return total
}
