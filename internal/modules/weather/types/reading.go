package types

// RawReading is one decoded WS90 sample as served by the rtl_433 bridge.
// Numeric fields are pointers so a missing key can be told apart from zero.
type RawReading struct {
	ID           int      `json:"id"`
	Model        string   `json:"model"`
	Firmware     int      `json:"firmware"`
	BatteryMV    *float64 `json:"battery_mV,omitempty"`
	BatteryOK    *float64 `json:"battery_ok,omitempty"`
	SupercapV    *float64 `json:"supercap_V,omitempty"`
	Humidity     *float64 `json:"humidity,omitempty"`
	TemperatureC *float64 `json:"temperature_C,omitempty"`
	WindDirDeg   *float64 `json:"wind_dir_deg,omitempty"`
	WindAvgMS    *float64 `json:"wind_avg_m_s,omitempty"`
	WindMaxMS    *float64 `json:"wind_max_m_s,omitempty"`
	LightLux     *float64 `json:"light_lux,omitempty"`
	UVI          *float64 `json:"uvi,omitempty"`
	RainMM       *float64 `json:"rain_mm,omitempty"`
	Time         string   `json:"time,omitempty"`
}

// Telemetry mirrors the latest reading for display. Missing values are zero.
type Telemetry struct {
	BatteryMV    float64 `json:"battery_mV"`
	BatteryOK    float64 `json:"battery_ok"`
	ID           int     `json:"id"`
	Model        string  `json:"model"`
	Firmware     int     `json:"firmware"`
	Humidity     float64 `json:"humidity"`
	TemperatureC float64 `json:"temperature_C"`
	WindDirDeg   float64 `json:"wind_dir_deg"`
	WindAvgMS    float64 `json:"wind_avg_m_s"`
	WindMaxMS    float64 `json:"wind_max_m_s"`
	LightLux     float64 `json:"light_lux"`
	UVI          float64 `json:"uvi"`
	RainMM       float64 `json:"rain_mm"`
	SupercapV    float64 `json:"supercap_V"`
	Time         string  `json:"time"`
}

// TelemetryFrom copies r into a Telemetry, zeroing absent fields.
func TelemetryFrom(r RawReading) Telemetry {
	return Telemetry{
		BatteryMV:    valueOrZero(r.BatteryMV),
		BatteryOK:    valueOrZero(r.BatteryOK),
		ID:           r.ID,
		Model:        r.Model,
		Firmware:     r.Firmware,
		Humidity:     valueOrZero(r.Humidity),
		TemperatureC: valueOrZero(r.TemperatureC),
		WindDirDeg:   valueOrZero(r.WindDirDeg),
		WindAvgMS:    valueOrZero(r.WindAvgMS),
		WindMaxMS:    valueOrZero(r.WindMaxMS),
		LightLux:     valueOrZero(r.LightLux),
		UVI:          valueOrZero(r.UVI),
		RainMM:       valueOrZero(r.RainMM),
		SupercapV:    valueOrZero(r.SupercapV),
		Time:         r.Time,
	}
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
