package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/vinthewrench/offgrid-weather-station/internal/bridge"
	"github.com/vinthewrench/offgrid-weather-station/internal/config"
	"github.com/vinthewrench/offgrid-weather-station/internal/db"
	"github.com/vinthewrench/offgrid-weather-station/internal/httpapi"
	"github.com/vinthewrench/offgrid-weather-station/internal/migrate"
	weather "github.com/vinthewrench/offgrid-weather-station/internal/modules/weather"
	"github.com/vinthewrench/offgrid-weather-station/internal/modules/weather/checkpoint"
	"github.com/vinthewrench/offgrid-weather-station/internal/modules/weather/controller"
	"github.com/vinthewrench/offgrid-weather-station/internal/modules/weather/engine"
	"github.com/vinthewrench/offgrid-weather-station/internal/modules/weather/repository"
	"github.com/vinthewrench/offgrid-weather-station/internal/modules/weather/service"
	"github.com/vinthewrench/offgrid-weather-station/internal/mqtt"
	"github.com/vinthewrench/offgrid-weather-station/internal/scheduler"
)

const (
	mqttConnectTimeout = 5 * time.Second
	shutdownTimeout    = 10 * time.Second
)

func Run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	logger.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"ws90URL", cfg.WS90URL,
		"pollInterval", cfg.PollInterval,
		"checkpointPath", cfg.CheckpointPath,
		"sqlitePath", cfg.SQLitePath,
		"stationConfig", cfg.StationConfig,
		"stationLoaded", cfg.Station.Loaded,
		"mqttBroker", cfg.MQTTBroker,
		"mqttTopic", cfg.MQTTTopic,
	)

	loc, err := cfg.Station.Location()
	if err != nil {
		return fmt.Errorf("station timezone: %w", err)
	}

	dbConn, err := db.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(dbConn); closeErr != nil {
			logger.Error("db close", "error", closeErr)
		}
	}()

	if err := migrate.Run(ctx, dbConn, logger); err != nil {
		return err
	}

	history := repository.NewRepository(dbConn)
	days, err := history.Count(ctx, 0)
	if err != nil {
		return fmt.Errorf("history count: %w", err)
	}
	logger.Info("history store ready", "days", days)

	store := checkpoint.NewStore(cfg.CheckpointPath)
	initial := engine.Restore(store, time.Now(), loc, cfg.Station.Seed(), logger)
	eng := engine.New(initial, engine.Options{
		Location:   loc,
		History:    history,
		Checkpoint: store,
		Logger:     logger,
	})

	client := bridge.NewClient(bridge.Config{
		URL:           cfg.WS90URL,
		Timeout:       cfg.PollTimeout,
		BreakAfter:    cfg.WS90BreakAfter,
		BreakCooldown: cfg.WS90BreakCooldown,
	})
	svc := service.NewService(eng, client, logger)

	poller := scheduler.New(cfg.PollInterval, func(ctx context.Context) {
		svc.PollOnce(ctx)
	}, logger)
	if err := poller.Start(ctx); err != nil {
		return err
	}
	defer poller.Stop()

	var subscriber *mqtt.Subscriber
	if cfg.MQTTEnabled() {
		subscriber = mqtt.NewSubscriber(cfg, logger)
		// The handler must be in place before Connect so the subscription made
		// on connect delivers straight into the engine.
		svc.Register(subscriber)

		connectCtx, connectCancel := context.WithTimeout(ctx, mqttConnectTimeout)
		err := subscriber.Connect(connectCtx)
		connectCancel()
		if err != nil {
			logger.Warn("mqtt connection failed (continuing without mqtt)", "error", err)
		}
	}

	mux := httpapi.NewMux(dbConn, logger)
	site := controller.Site{Latitude: cfg.Station.Latitude, Longitude: cfg.Station.Longitude}
	weather.RegisterFeature(mux, eng, history, site, logger)

	srv := httpapi.NewServer(cfg, mux, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if subscriber != nil {
		logger.Info("mqtt disconnecting")
		subscriber.Disconnect()
	}

	logger.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}
