package controller

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/vinthewrench/offgrid-weather-station/internal/modules/weather/repository"
	"github.com/vinthewrench/offgrid-weather-station/internal/modules/weather/types"
)

type WeatherController interface {
	RegisterRoutes(mux *http.ServeMux)
}

// Snapshotter is the read side of the weather engine.
type Snapshotter interface {
	Snapshot() types.Snapshot
}

// Site is where the station stands, for the astronomy block.
type Site struct {
	Latitude  float64
	Longitude float64
}

type weatherControllerImpl struct {
	state      Snapshotter
	repository repository.HistoryRepository
	site       Site
	logger     *slog.Logger
	now        func() time.Time
}

func NewWeatherController(state Snapshotter, repository repository.HistoryRepository, site Site, logger *slog.Logger) WeatherController {
	if logger == nil {
		logger = slog.Default()
	}
	return &weatherControllerImpl{
		state:      state,
		repository: repository,
		site:       site,
		logger:     logger,
		now:        time.Now,
	}
}

func (c *weatherControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v2/weather", c.handleCurrent)
	mux.HandleFunc("GET /api/v2/history/temperature", c.handleTemperatureHistory)
	mux.HandleFunc("GET /api/v2/history/humidity", c.handleHumidityHistory)
	mux.HandleFunc("GET /api/v2/history/rain", c.handleRainHistory)
}
