package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"math"

	"github.com/vinthewrench/offgrid-weather-station/internal/modules/weather/types"
)

//go:embed sql/upsert-day.sql
var upsertDaySQL string

//go:embed sql/query-days.sql
var queryDaysSQL string

//go:embed sql/count-days.sql
var countDaysSQL string

type HistoryRepository interface {
	CommitDay(ctx context.Context, row types.DailyRow) error
	Query(ctx context.Context, q types.HistoryQuery) ([]types.DailyRow, error)
	Count(ctx context.Context, since int64) (int, error)
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) HistoryRepository {
	return &repositoryImpl{db: db}
}

// CommitDay writes row, replacing any row already stored for the same day.
func (r *repositoryImpl) CommitDay(ctx context.Context, row types.DailyRow) error {
	_, err := r.db.ExecContext(ctx, upsertDaySQL,
		row.DayTS,
		nullable(row.TempHighC),
		nullable(row.TempLowC),
		nullable(row.HumidityHigh),
		nullable(row.HumidityLow),
		nullable(row.RainIn),
	)
	if err != nil {
		return fmt.Errorf("upsert day %d: %w", row.DayTS, err)
	}
	return nil
}

func (r *repositoryImpl) Query(ctx context.Context, q types.HistoryQuery) ([]types.DailyRow, error) {
	since := int64(math.MinInt64)
	if q.Since != 0 {
		since = q.Since
	}
	// SQLite treats a negative LIMIT as unbounded.
	limit := -1
	if q.Limit > 0 {
		limit = q.Limit
	}
	offset := max(q.Offset, 0)

	rows, err := r.db.QueryContext(ctx, queryDaysSQL, since, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query days: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close daily rows", "error", err)
		}
	}()

	out := []types.DailyRow{}
	for rows.Next() {
		var (
			row                    types.DailyRow
			high, low, hHigh, hLow sql.NullFloat64
			rain                   sql.NullFloat64
		)
		if err := rows.Scan(&row.DayTS, &high, &low, &hHigh, &hLow, &rain); err != nil {
			return nil, fmt.Errorf("scan day: %w", err)
		}
		row.TempHighC = fromNull(high)
		row.TempLowC = fromNull(low)
		row.HumidityHigh = fromNull(hHigh)
		row.HumidityLow = fromNull(hLow)
		row.RainIn = fromNull(rain)
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) Count(ctx context.Context, since int64) (int, error) {
	if since == 0 {
		since = math.MinInt64
	}
	var n int
	if err := r.db.QueryRowContext(ctx, countDaysSQL, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("count days: %w", err)
	}
	return n, nil
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func fromNull(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
