package checkpoint

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/vinthewrench/offgrid-weather-station/internal/modules/weather/types"
)

func sampleState() types.EngineState {
	return types.EngineState{
		Telemetry: types.Telemetry{
			ID:           1234,
			Model:        "Fineoffset-WS90",
			Firmware:     130,
			Humidity:     55,
			TemperatureC: 12.3,
			RainMM:       987.6,
			Time:         "2025-03-10 12:00:00",
		},
		LastRainMM:    987.6,
		RainSeeded:    true,
		LastUpdateTS:  1741608000,
		RainHourlyIn:  0.02,
		RainDailyIn:   0.3,
		RainWeeklyIn:  0.9,
		RainMonthlyIn: 2.1,
		RainYearlyIn:  9.4,
		RainEventIn:   0.3,
		HourlyDeltas: []types.RainDelta{
			{TS: 1741607900, Inches: 0.01},
			{TS: 1741608000, Inches: 0.01},
		},
		LastRainTS: 1741608000,
		HistoricalSeed: types.HistoricalSeed{
			TotalIn:   62.77,
			YearlyIn:  62.77,
			MonthlyIn: 4.27,
			WeeklyIn:  1.96,
		},
		HistoricalSeeded: true,
		DailyYMD:         20250310,
		MonthYM:          202503,
		YearY:            2025,
		WeekStartYMD:     20250310,
		DayFirstTS:       1741564800,
		DayLastTS:        1741608000,
		HaveTemp:         true,
		TempHighC:        15,
		TempLowC:         2,
		HaveWind:         true,
		WindMeanMS:       3.2,
		WindMaxGustMS:    9.1,
		WindSampleCount:  42,
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "state", "rain_state_v2.json"))
	want := sampleState()

	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	var got types.EngineState
	if err := store.Load(&got); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestSaveReplacesWholeRecord(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "rain_state_v2.json"))

	first := sampleState()
	if err := store.Save(first); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	second := sampleState()
	second.HourlyDeltas = nil
	second.RainDailyIn = 0
	if err := store.Save(second); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	var got types.EngineState
	if err := store.Load(&got); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got.HourlyDeltas) != 0 || got.RainDailyIn != 0 {
		t.Errorf("stale values survived: deltas=%v daily=%v", got.HourlyDeltas, got.RainDailyIn)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want only the checkpoint", len(entries))
	}
}

func TestLoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nope.json"))

	st := types.EngineState{DailyYMD: 20250310}
	err := store.Load(&st)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("Load() error = %v, want fs.ErrNotExist", err)
	}
	if st.DailyYMD != 20250310 {
		t.Error("state modified on failed load")
	}
}

func TestLoadCorruptFileLeavesState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rain_state_v2.json")
	if err := os.WriteFile(path, []byte(`{"rain_daily_in": 1.5, "daily_ymd": `), 0o644); err != nil {
		t.Fatal(err)
	}

	st := types.EngineState{DailyYMD: 20250310}
	if err := NewStore(path).Load(&st); err == nil {
		t.Fatal("expected decode error")
	}
	if st.DailyYMD != 20250310 || st.RainDailyIn != 0 {
		t.Errorf("state modified on failed load: %+v", st)
	}
}

func TestLoadPartialRecordKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rain_state_v2.json")
	body := `{"last_rain_mm": 120.5, "rain_daily_in": 0.25, "daily_ymd": 20250309}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	st := types.EngineState{
		MonthYM:          202503,
		HistoricalSeeded: true,
		HistoricalSeed:   types.HistoricalSeed{TotalIn: 62.77},
	}
	if err := NewStore(path).Load(&st); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if st.LastRainMM != 120.5 || st.RainDailyIn != 0.25 || st.DailyYMD != 20250309 {
		t.Errorf("decoded fields wrong: %+v", st)
	}
	if st.MonthYM != 202503 || !st.HistoricalSeeded || st.HistoricalSeed.TotalIn != 62.77 {
		t.Errorf("defaults lost: %+v", st)
	}
}
