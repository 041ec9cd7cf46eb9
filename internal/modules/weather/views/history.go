package views

import "github.com/vinthewrench/offgrid-weather-station/internal/modules/weather/types"

// Days is the envelope for every history endpoint.
type Days[T any] struct {
	Days []T `json:"days"`
}

type TemperatureDay struct {
	Day       int64    `json:"day"`
	TempHighF *float64 `json:"temp_high_F"`
	TempLowF  *float64 `json:"temp_low_F"`
}

type HumidityDay struct {
	Day          int64    `json:"day"`
	HumidityHigh *float64 `json:"humidity_high"`
	HumidityLow  *float64 `json:"humidity_low"`
}

type RainDay struct {
	Day    int64   `json:"day"`
	RainIn float64 `json:"rain_in"`
}

// TemperatureDays converts stored Celsius extrema to Fahrenheit. A day missing
// either bound reports both as null.
func TemperatureDays(rows []types.DailyRow) Days[TemperatureDay] {
	out := make([]TemperatureDay, 0, len(rows))
	for _, r := range rows {
		d := TemperatureDay{Day: r.DayTS}
		if r.TempHighC != nil && r.TempLowC != nil {
			d.TempHighF = ptr(CToF(*r.TempHighC))
			d.TempLowF = ptr(CToF(*r.TempLowC))
		}
		out = append(out, d)
	}
	return Days[TemperatureDay]{Days: out}
}

func HumidityDays(rows []types.DailyRow) Days[HumidityDay] {
	out := make([]HumidityDay, 0, len(rows))
	for _, r := range rows {
		out = append(out, HumidityDay{
			Day:          r.DayTS,
			HumidityHigh: r.HumidityHigh,
			HumidityLow:  r.HumidityLow,
		})
	}
	return Days[HumidityDay]{Days: out}
}

// RainDays skips days with no rain total recorded.
func RainDays(rows []types.DailyRow) Days[RainDay] {
	out := make([]RainDay, 0, len(rows))
	for _, r := range rows {
		if r.RainIn == nil {
			continue
		}
		out = append(out, RainDay{Day: r.DayTS, RainIn: *r.RainIn})
	}
	return Days[RainDay]{Days: out}
}
