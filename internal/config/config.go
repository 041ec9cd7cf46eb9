package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Docker deployments mount persistent state here.
const containerStateDir = "/state"

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	LogSQL   bool

	HTTPAddr         string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration

	WS90URL      string
	PollInterval time.Duration
	PollTimeout  time.Duration
	// Consecutive unreachable polls before the bridge breaker opens; -1 disables it.
	WS90BreakAfter    int
	WS90BreakCooldown time.Duration

	StateDir       string
	CheckpointPath string

	SQLiteDriver          string
	SQLiteDSN             string
	SQLitePath            string
	SQLiteMaxOpenConns    int
	SQLiteMaxIdleConns    int
	SQLiteConnMaxLifetime time.Duration

	StationConfig string
	Station       Station

	// MQTT ingest is disabled when MQTTBroker is empty.
	MQTTBroker   string
	MQTTPort     int
	MQTTTopic    string
	MQTTClientID string
}

func (c Config) MQTTEnabled() bool {
	return c.MQTTBroker != ""
}

// LoadFromEnv reads configuration from the environment, after merging any
// .env file in the working directory. Variables already set win over .env.
func LoadFromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	appEnv := envOr("APP_ENV", "dev")
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	level, err := parseLogLevel(envOr("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}

	logSQL, err := envBool("LOG_SQL", false)
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := envDuration("HTTP_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}
	writeTimeout, err := envDuration("HTTP_WRITE_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}

	pollInterval, err := envDuration("POLL_INTERVAL", 10*time.Second)
	if err != nil {
		return Config{}, err
	}
	if pollInterval <= 0 {
		return Config{}, fmt.Errorf("invalid POLL_INTERVAL %q: must be positive", os.Getenv("POLL_INTERVAL"))
	}
	pollTimeout, err := envDuration("POLL_TIMEOUT", 5*time.Second)
	if err != nil {
		return Config{}, err
	}
	if pollTimeout <= 0 {
		return Config{}, fmt.Errorf("invalid POLL_TIMEOUT %q: must be positive", os.Getenv("POLL_TIMEOUT"))
	}

	breakAfter, err := envInt("WS90_BREAK_AFTER", 5)
	if err != nil {
		return Config{}, err
	}
	breakCooldown, err := envDuration("WS90_BREAK_COOLDOWN", 30*time.Second)
	if err != nil {
		return Config{}, err
	}

	stateDir := envOr("STATE_DIR", defaultStateDir())

	maxOpenConns, err := envInt("DB_MAX_OPEN_CONNS", 1)
	if err != nil {
		return Config{}, err
	}
	maxIdleConns, err := envInt("DB_MAX_IDLE_CONNS", 1)
	if err != nil {
		return Config{}, err
	}
	connMaxLifetime, err := envDuration("DB_CONN_MAX_LIFETIME", 0)
	if err != nil {
		return Config{}, err
	}

	mqttPort, err := envInt("MQTT_PORT", 1883)
	if err != nil {
		return Config{}, err
	}

	stationPath := envOr("STATION_CONFIG", "config.yaml")
	station, err := LoadStation(stationPath)
	if err != nil {
		return Config{}, err
	}

	return Config{
		AppEnv:   appEnv,
		LogLevel: level,
		LogSQL:   logSQL,

		HTTPAddr:         envOr("HTTP_ADDR", ":8889"),
		HTTPReadTimeout:  readTimeout,
		HTTPWriteTimeout: writeTimeout,

		WS90URL:      envOr("WS90_URL", "http://172.17.0.1:7890"),
		PollInterval: pollInterval,
		PollTimeout:  pollTimeout,

		WS90BreakAfter:    breakAfter,
		WS90BreakCooldown: breakCooldown,

		StateDir:       stateDir,
		CheckpointPath: envOr("CHECKPOINT_PATH", filepath.Join(stateDir, "rain_state_v2.json")),

		SQLiteDriver:          "sqlite3",
		SQLiteDSN:             envOr("SQLITE_DSN", ""),
		SQLitePath:            envOr("SQLITE_PATH", filepath.Join(stateDir, "weather_history_v2.sqlite3")),
		SQLiteMaxOpenConns:    maxOpenConns,
		SQLiteMaxIdleConns:    maxIdleConns,
		SQLiteConnMaxLifetime: connMaxLifetime,

		StationConfig: stationPath,
		Station:       station,

		MQTTBroker:   envOr("MQTT_BROKER", ""),
		MQTTPort:     mqttPort,
		MQTTTopic:    envOr("MQTT_TOPIC", "rtl_433/ws90"),
		MQTTClientID: envOr("MQTT_CLIENT_ID", "offgrid-weather"),
	}, nil
}

func defaultStateDir() string {
	if fi, err := os.Stat(containerStateDir); err == nil && fi.IsDir() {
		return containerStateDir
	}
	return "."
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func envBool(key string, def bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
