// Command weathertool is the operator CLI for the station's on-disk state.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/vinthewrench/offgrid-weather-station/internal/config"
	"github.com/vinthewrench/offgrid-weather-station/internal/db"
	"github.com/vinthewrench/offgrid-weather-station/internal/logging"
	"github.com/vinthewrench/offgrid-weather-station/internal/migrate"
	"github.com/vinthewrench/offgrid-weather-station/internal/modules/weather/checkpoint"
	"github.com/vinthewrench/offgrid-weather-station/internal/modules/weather/repository"
	"github.com/vinthewrench/offgrid-weather-station/internal/modules/weather/types"
)

const usage = `usage: weathertool <command>
  migrate          apply pending schema migrations
  migrate status   list migrations and whether they are applied
  history [days]   print committed days as JSON, optionally only the last N
  checkpoint       print the decoded engine checkpoint as JSON
`

var errUsage = errors.New("usage")

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	logger := logging.NewWithWriter(os.Stderr, cfg, "dev", "weathertool")

	if err := run(context.Background(), os.Args[1:], cfg, os.Stdout, logger); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		} else {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, cfg config.Config, out io.Writer, logger *slog.Logger) error {
	if len(args) < 1 {
		return errUsage
	}

	switch args[0] {
	case "checkpoint":
		return printCheckpoint(cfg, out)
	case "migrate", "history":
	default:
		return fmt.Errorf("unknown command %q: %w", args[0], errUsage)
	}

	conn, err := db.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(conn); closeErr != nil {
			logger.Error("db close", "err", closeErr)
		}
	}()

	if args[0] == "migrate" {
		if len(args) > 1 && args[1] == "status" {
			migrations, err := migrate.Status(ctx, conn)
			if err != nil {
				return fmt.Errorf("migrate status: %w", err)
			}
			for _, m := range migrations {
				state := "pending"
				if m.Applied {
					state = "applied"
				}
				fmt.Fprintf(out, "%s_%s\t%s\n", m.Version, m.Name, state)
			}
			return nil
		}
		if err := migrate.Run(ctx, conn, logger); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		fmt.Fprintln(out, "migrations applied")
		return nil
	}

	var q types.HistoryQuery
	if len(args) > 1 {
		days, err := strconv.Atoi(args[1])
		if err != nil || days < 0 {
			return fmt.Errorf("history: days must be a non-negative integer, got %q", args[1])
		}
		if days > 0 {
			q.Since = time.Now().Unix() - int64(days)*86400
		}
	}
	rows, err := repository.NewRepository(conn).Query(ctx, q)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	return writeJSON(out, rows)
}

func printCheckpoint(cfg config.Config, out io.Writer) error {
	var st types.EngineState
	if err := checkpoint.NewStore(cfg.CheckpointPath).Load(&st); err != nil {
		return fmt.Errorf("checkpoint %s: %w", cfg.CheckpointPath, err)
	}
	return writeJSON(out, st)
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
