package repository

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/vinthewrench/offgrid-weather-station/internal/migrate"
	"github.com/vinthewrench/offgrid-weather-station/internal/modules/weather/types"

	_ "github.com/mattn/go-sqlite3"
)

const day = int64(86400)

// 2025-03-01 00:00:00 UTC
const baseDay = int64(1740787200)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// Every pooled connection to :memory: would be a separate database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		if closeErr := db.Close(); closeErr != nil {
			t.Errorf("close db: %v", closeErr)
		}
	})
	if err := migrate.Run(context.Background(), db, slog.New(slog.NewTextHandler(io.Discard, nil))); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func f(v float64) *float64 {
	return &v
}

func seedDays(t *testing.T, repo HistoryRepository, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		row := types.DailyRow{
			DayTS:     baseDay + int64(i)*day,
			TempHighC: f(10 + float64(i)),
			TempLowC:  f(float64(i)),
			RainIn:    f(0.1 * float64(i)),
		}
		if err := repo.CommitDay(context.Background(), row); err != nil {
			t.Fatalf("CommitDay(%d): %v", i, err)
		}
	}
}

func TestQuery_Empty(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	rows, err := repo.Query(context.Background(), types.HistoryQuery{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if rows == nil || len(rows) != 0 {
		t.Fatalf("Query: got %v, want empty non-nil slice", rows)
	}
}

func TestCommitDay_RoundTripWithNulls(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	row := types.DailyRow{
		DayTS:        baseDay,
		TempHighC:    f(21.5),
		TempLowC:     f(8.25),
		HumidityHigh: nil,
		HumidityLow:  nil,
		RainIn:       f(0.42),
	}
	if err := repo.CommitDay(context.Background(), row); err != nil {
		t.Fatalf("CommitDay: %v", err)
	}

	rows, err := repo.Query(context.Background(), types.HistoryQuery{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Query: got %d rows, want 1", len(rows))
	}
	got := rows[0]
	if got.DayTS != baseDay {
		t.Errorf("DayTS = %d, want %d", got.DayTS, baseDay)
	}
	if got.TempHighC == nil || *got.TempHighC != 21.5 || got.TempLowC == nil || *got.TempLowC != 8.25 {
		t.Errorf("temps = %v/%v, want 21.5/8.25", got.TempHighC, got.TempLowC)
	}
	if got.HumidityHigh != nil || got.HumidityLow != nil {
		t.Errorf("humidity = %v/%v, want nulls", got.HumidityHigh, got.HumidityLow)
	}
	if got.RainIn == nil || *got.RainIn != 0.42 {
		t.Errorf("rain = %v, want 0.42", got.RainIn)
	}
}

func TestCommitDay_ReplacesSameDay(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	if err := repo.CommitDay(ctx, types.DailyRow{DayTS: baseDay, RainIn: f(0.1)}); err != nil {
		t.Fatalf("CommitDay: %v", err)
	}
	if err := repo.CommitDay(ctx, types.DailyRow{DayTS: baseDay, RainIn: f(0.7), TempHighC: f(3), TempLowC: f(1)}); err != nil {
		t.Fatalf("CommitDay again: %v", err)
	}

	rows, err := repo.Query(ctx, types.HistoryQuery{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Query: got %d rows, want 1", len(rows))
	}
	if *rows[0].RainIn != 0.7 || rows[0].TempHighC == nil {
		t.Errorf("row not replaced: %+v", rows[0])
	}
}

func TestQuery_AscendingOrder(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	for _, ts := range []int64{baseDay + 2*day, baseDay, baseDay + day} {
		if err := repo.CommitDay(ctx, types.DailyRow{DayTS: ts}); err != nil {
			t.Fatalf("CommitDay: %v", err)
		}
	}

	rows, err := repo.Query(ctx, types.HistoryQuery{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	for i := 1; i < len(rows); i++ {
		if rows[i].DayTS <= rows[i-1].DayTS {
			t.Fatalf("rows not ascending: %d then %d", rows[i-1].DayTS, rows[i].DayTS)
		}
	}
}

func TestQuery_Modes(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	seedDays(t, repo, 10)

	tests := []struct {
		name      string
		q         types.HistoryQuery
		wantCount int
		wantFirst int64
	}{
		{name: "all", q: types.HistoryQuery{}, wantCount: 10, wantFirst: baseDay},
		{name: "since", q: types.HistoryQuery{Since: baseDay + 7*day}, wantCount: 3, wantFirst: baseDay + 7*day},
		{name: "limit", q: types.HistoryQuery{Limit: 4}, wantCount: 4, wantFirst: baseDay},
		{name: "limit offset", q: types.HistoryQuery{Limit: 3, Offset: 5}, wantCount: 3, wantFirst: baseDay + 5*day},
		{name: "offset past end", q: types.HistoryQuery{Limit: 3, Offset: 20}, wantCount: 0},
		{name: "since with paging", q: types.HistoryQuery{Since: baseDay + 4*day, Limit: 2, Offset: 1}, wantCount: 2, wantFirst: baseDay + 5*day},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := repo.Query(context.Background(), tt.q)
			if err != nil {
				t.Fatalf("Query: %v", err)
			}
			if len(rows) != tt.wantCount {
				t.Fatalf("Query: got %d rows, want %d", len(rows), tt.wantCount)
			}
			if tt.wantCount > 0 && rows[0].DayTS != tt.wantFirst {
				t.Errorf("first day = %d, want %d", rows[0].DayTS, tt.wantFirst)
			}
		})
	}
}

func TestCount(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	seedDays(t, repo, 5)

	n, err := repo.Count(context.Background(), 0)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 5 {
		t.Errorf("Count(all) = %d, want 5", n)
	}

	n, err = repo.Count(context.Background(), baseDay+3*day)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Errorf("Count(since) = %d, want 2", n)
	}
}
