package types

// DailyRow is one committed day in the daily_weather table. DayTS is the
// local midnight that starts the day, in unix seconds.
type DailyRow struct {
	DayTS        int64    `json:"day"`
	TempHighC    *float64 `json:"temp_high_c"`
	TempLowC     *float64 `json:"temp_low_c"`
	HumidityHigh *float64 `json:"humidity_high"`
	HumidityLow  *float64 `json:"humidity_low"`
	RainIn       *float64 `json:"rain_in"`
}

// HistoryQuery selects committed days in ascending order. The zero value
// selects every row.
type HistoryQuery struct {
	// Since keeps days with DayTS >= Since. Zero means no lower bound.
	Since int64
	// Limit caps the number of rows. Zero means no cap.
	Limit  int
	Offset int
}
