package migrate

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})
	return db
}

func TestRunCreatesSchema(t *testing.T) {
	db := openTestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if err := Run(context.Background(), db, logger); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var name string
	err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='daily_weather'`).Scan(&name)
	if err != nil {
		t.Fatalf("daily_weather missing: %v", err)
	}

	status, err := Status(context.Background(), db)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if len(status) == 0 {
		t.Fatal("no embedded migrations")
	}
	for _, m := range status {
		if !m.Applied {
			t.Errorf("migration %s_%s not applied", m.Version, m.Name)
		}
	}
	if status[0].Version != "0001" || status[0].Name != "daily_weather" {
		t.Errorf("first migration = %s_%s, want 0001_daily_weather", status[0].Version, status[0].Name)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	for i := 0; i < 2; i++ {
		if err := Run(context.Background(), db, logger); err != nil {
			t.Fatalf("Run #%d: %v", i+1, err)
		}
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&n); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	status, _ := Status(context.Background(), db)
	if n != len(status) {
		t.Errorf("schema_migrations rows = %d, want %d", n, len(status))
	}
}

func TestMigrationFilenamePattern(t *testing.T) {
	tests := []struct {
		in   string
		ok   bool
		ver  string
		name string
	}{
		{"0001_daily_weather.sql", true, "0001", "daily_weather"},
		{"0012_add_index.sql", true, "0012", "add_index"},
		{"1_short.sql", false, "", ""},
		{"0001_daily_weather.txt", false, "", ""},
	}
	for _, tt := range tests {
		m := migrationFileRe.FindStringSubmatch(tt.in)
		if (m != nil) != tt.ok {
			t.Errorf("%q matched = %v, want %v", tt.in, m != nil, tt.ok)
			continue
		}
		if tt.ok && (m[1] != tt.ver || m[2] != tt.name) {
			t.Errorf("%q = (%q, %q), want (%q, %q)", tt.in, m[1], m[2], tt.ver, tt.name)
		}
	}
}
