package views

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/vinthewrench/offgrid-weather-station/internal/astro"
	"github.com/vinthewrench/offgrid-weather-station/internal/modules/weather/types"
)

func ptrF(v float64) *float64 { return &v }

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestNewCurrent(t *testing.T) {
	st := types.EngineState{
		Telemetry: types.Telemetry{
			ID:           7,
			Model:        "Fineoffset-WS90",
			TemperatureC: 20,
			Humidity:     55,
			Time:         "2025-03-10 12:00:00",
		},
		RainDailyIn:  0.5,
		RainYearlyIn: 12,
		HistoricalSeed: types.HistoricalSeed{
			TotalIn:  60,
			YearlyIn: 10,
		},
		LastUpdateTS:  1000,
		HaveTemp:      true,
		TempHighC:     25,
		TempLowC:      5,
		HaveWind:      true,
		WindMeanMS:    1,
		WindMaxGustMS: 10,
	}
	poll := types.PollStatus{Reachable: true, UpstreamOK: true, PolledTS: 1090, HTTPStatus: 200}

	got := NewCurrent(types.Snapshot{State: st, Poll: poll}, astro.Report{TimeZone: "UTC"}, 1090)

	if got.APIVersion != "2.1.0" {
		t.Errorf("APIVersion = %q; want 2.1.0", got.APIVersion)
	}
	if !near(got.TemperatureF, 68) {
		t.Errorf("TemperatureF = %v; want 68", got.TemperatureF)
	}
	if !near(got.Rain.TotalIn, 62) {
		t.Errorf("Rain.TotalIn = %v; want 62", got.Rain.TotalIn)
	}
	if got.Daily.TempHighF == nil || !near(*got.Daily.TempHighF, 77) {
		t.Errorf("Daily.TempHighF = %v; want 77", got.Daily.TempHighF)
	}
	if got.Daily.TempLowF == nil || !near(*got.Daily.TempLowF, 41) {
		t.Errorf("Daily.TempLowF = %v; want 41", got.Daily.TempLowF)
	}
	if got.Daily.HumidityHigh != nil || got.Daily.HumidityLow != nil {
		t.Errorf("humidity extrema should be null without samples")
	}
	if got.Daily.WindGustMaxMPH == nil || !near(*got.Daily.WindGustMaxMPH, 22.369) {
		t.Errorf("Daily.WindGustMaxMPH = %v; want 22.369", got.Daily.WindGustMaxMPH)
	}
	if !got.Daily.Meaningful {
		t.Error("Daily.Meaningful = false; want true")
	}
	if got.WS90Status.AgeSec != 90 || !got.WS90Status.Stale {
		t.Errorf("status age=%d stale=%v; want 90 true", got.WS90Status.AgeSec, got.WS90Status.Stale)
	}
}

func TestNewCurrent_totalBelowSeed(t *testing.T) {
	st := types.EngineState{
		RainYearlyIn:   3,
		HistoricalSeed: types.HistoricalSeed{TotalIn: 60, YearlyIn: 10},
	}
	got := NewCurrent(types.Snapshot{State: st}, astro.Report{}, 0)
	if !near(got.Rain.TotalIn, 60) {
		t.Errorf("Rain.TotalIn = %v; want 60", got.Rain.TotalIn)
	}
}

func TestNewStatus(t *testing.T) {
	tests := []struct {
		name       string
		lastUpdate int64
		now        int64
		wantAge    int64
		wantStale  bool
	}{
		{"never updated", 0, 5000, -1, false},
		{"fresh", 1000, 1030, 30, false},
		{"at threshold", 1000, 1060, 60, false},
		{"stale", 1000, 1061, 61, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStatus(types.PollStatus{}, tt.lastUpdate, tt.now)
			if s.AgeSec != tt.wantAge || s.Stale != tt.wantStale {
				t.Errorf("age=%d stale=%v; want %d %v", s.AgeSec, s.Stale, tt.wantAge, tt.wantStale)
			}
		})
	}
}

func TestCurrentJSON_nullsAndOptionalErrors(t *testing.T) {
	cur := NewCurrent(types.Snapshot{}, astro.Report{}, 0)
	b, err := json.Marshal(cur)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	body := string(b)
	for _, want := range []string{
		`"temp_high_F":null`,
		`"humidity_low":null`,
		`"wind_mean_mph":null`,
		`"meaningful":false`,
		`"age_sec":-1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %s: %s", want, body)
		}
	}
	if strings.Contains(body, `"error"`) || strings.Contains(body, `"error_message"`) {
		t.Errorf("error fields should be omitted when empty: %s", body)
	}

	cur = NewCurrent(types.Snapshot{Poll: types.PollStatus{
		Reachable:  true,
		HTTPStatus: 503,
		Code:       types.UpstreamStaleData,
		Message:    "no fresh packets",
	}}, astro.Report{}, 0)
	b, _ = json.Marshal(cur)
	if !strings.Contains(string(b), `"error":"stale_data"`) || !strings.Contains(string(b), `"error_message":"no fresh packets"`) {
		t.Errorf("error fields missing: %s", b)
	}
}

func TestTemperatureDays(t *testing.T) {
	rows := []types.DailyRow{
		{DayTS: 100, TempHighC: ptrF(30), TempLowC: ptrF(10)},
		{DayTS: 200, TempHighC: ptrF(30)},
	}
	got := TemperatureDays(rows).Days
	if len(got) != 2 {
		t.Fatalf("len = %d; want 2", len(got))
	}
	if got[0].TempHighF == nil || !near(*got[0].TempHighF, 86) || !near(*got[0].TempLowF, 50) {
		t.Errorf("row 0 = %+v; want 86/50", got[0])
	}
	if got[1].TempHighF != nil || got[1].TempLowF != nil {
		t.Errorf("row 1 should be null/null when a bound is missing")
	}
}

func TestRainDays_skipsNull(t *testing.T) {
	rows := []types.DailyRow{
		{DayTS: 100, RainIn: ptrF(0.2)},
		{DayTS: 200},
		{DayTS: 300, RainIn: ptrF(0)},
	}
	got := RainDays(rows).Days
	if len(got) != 2 || got[0].Day != 100 || got[1].Day != 300 {
		t.Errorf("RainDays = %+v; want days 100 and 300", got)
	}
}

func TestDays_emptyEncodesArray(t *testing.T) {
	b, err := json.Marshal(HumidityDays(nil))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(b) != `{"days":[]}` {
		t.Errorf("body = %s; want {\"days\":[]}", b)
	}
}
