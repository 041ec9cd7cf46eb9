// Package views shapes engine state and history rows into API payloads.
package views

import (
	"github.com/vinthewrench/offgrid-weather-station/internal/astro"
	"github.com/vinthewrench/offgrid-weather-station/internal/modules/weather/types"
)

const (
	APIVersion = "2.1.0"

	mpsToMPH = 2.2369

	// A station that has reported before but not within this window is stale.
	staleAfterSec = 60
)

type Current struct {
	APIVersion string `json:"api_version"`

	BatteryMV float64 `json:"battery_mV"`
	BatteryOK float64 `json:"battery_ok"`
	ID        int     `json:"id"`
	Model     string  `json:"model"`
	Firmware  int     `json:"firmware"`

	Humidity     float64 `json:"humidity"`
	TemperatureF float64 `json:"temperature_F"`
	WindDirDeg   float64 `json:"wind_dir_deg"`
	WindAvgMS    float64 `json:"wind_avg_m_s"`
	WindMaxMS    float64 `json:"wind_max_m_s"`
	LightLux     float64 `json:"light_lux"`
	UVI          float64 `json:"uvi"`
	SupercapV    float64 `json:"supercap_V"`
	Time         string  `json:"time"`

	Astro      astro.Report `json:"astro"`
	Rain       Rain         `json:"rain"`
	Daily      Daily        `json:"daily"`
	WS90Status Status       `json:"ws90_status"`
}

type Rain struct {
	DailyIn   float64 `json:"daily_in"`
	EventIn   float64 `json:"event_in"`
	HourlyIn  float64 `json:"hourly_in"`
	WeeklyIn  float64 `json:"weekly_in"`
	MonthlyIn float64 `json:"monthly_in"`
	YearlyIn  float64 `json:"yearly_in"`
	TotalIn   float64 `json:"total_in"`
}

// Daily is the running summary for the current local day. Fields are null
// until the day has seen a sample of that kind.
type Daily struct {
	TempHighF      *float64 `json:"temp_high_F"`
	TempLowF       *float64 `json:"temp_low_F"`
	HumidityHigh   *float64 `json:"humidity_high"`
	HumidityLow    *float64 `json:"humidity_low"`
	WindMeanMPH    *float64 `json:"wind_mean_mph"`
	WindGustMaxMPH *float64 `json:"wind_gust_max_mph"`
	Meaningful     bool     `json:"meaningful"`
}

// Status reports bridge health as seen by the poller.
type Status struct {
	HTTPOK       bool   `json:"http_ok"`
	RTLSDROK     bool   `json:"rtlsdr_ok"`
	LastPollTS   int64  `json:"last_poll_ts"`
	LastUpdateTS int64  `json:"last_update_ts"`
	AgeSec       int64  `json:"age_sec"`
	Stale        bool   `json:"stale"`
	HTTPStatus   int    `json:"http_status"`
	Error        string `json:"error,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// NewCurrent builds the current-conditions payload from a snapshot taken at
// nowUnix. Astronomy is computed by the caller so it can use its own clock.
func NewCurrent(snap types.Snapshot, report astro.Report, nowUnix int64) Current {
	st := snap.State
	tel := st.Telemetry
	return Current{
		APIVersion:   APIVersion,
		BatteryMV:    tel.BatteryMV,
		BatteryOK:    tel.BatteryOK,
		ID:           tel.ID,
		Model:        tel.Model,
		Firmware:     tel.Firmware,
		Humidity:     tel.Humidity,
		TemperatureF: CToF(tel.TemperatureC),
		WindDirDeg:   tel.WindDirDeg,
		WindAvgMS:    tel.WindAvgMS,
		WindMaxMS:    tel.WindMaxMS,
		LightLux:     tel.LightLux,
		UVI:          tel.UVI,
		SupercapV:    tel.SupercapV,
		Time:         tel.Time,
		Astro:        report,
		Rain: Rain{
			DailyIn:   st.RainDailyIn,
			EventIn:   st.RainEventIn,
			HourlyIn:  st.RainHourlyIn,
			WeeklyIn:  st.RainWeeklyIn,
			MonthlyIn: st.RainMonthlyIn,
			YearlyIn:  st.RainYearlyIn,
			TotalIn:   st.SeasonTotalIn(),
		},
		Daily:      newDaily(st),
		WS90Status: newStatus(snap.Poll, st.LastUpdateTS, nowUnix),
	}
}

func newDaily(st types.EngineState) Daily {
	var d Daily
	if st.HaveTemp {
		d.TempHighF = ptr(CToF(st.TempHighC))
		d.TempLowF = ptr(CToF(st.TempLowC))
	}
	if st.HaveHum {
		d.HumidityHigh = ptr(st.HumHigh)
		d.HumidityLow = ptr(st.HumLow)
	}
	if st.HaveWind {
		d.WindMeanMPH = ptr(st.WindMeanMS * mpsToMPH)
		d.WindGustMaxMPH = ptr(st.WindMaxGustMS * mpsToMPH)
	}
	d.Meaningful = st.HaveTemp || st.HaveHum || st.HaveWind
	return d
}

func newStatus(p types.PollStatus, lastUpdate, nowUnix int64) Status {
	age := int64(-1)
	if lastUpdate != 0 {
		age = nowUnix - lastUpdate
	}
	return Status{
		HTTPOK:       p.Reachable,
		RTLSDROK:     p.UpstreamOK,
		LastPollTS:   p.PolledTS,
		LastUpdateTS: lastUpdate,
		AgeSec:       age,
		Stale:        lastUpdate != 0 && age > staleAfterSec,
		HTTPStatus:   p.HTTPStatus,
		Error:        p.Code,
		ErrorMessage: p.Message,
	}
}

func CToF(c float64) float64 {
	return c*9/5 + 32
}

func ptr(v float64) *float64 { return &v }
