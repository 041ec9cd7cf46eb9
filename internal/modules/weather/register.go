package weather

import (
	"log/slog"
	"net/http"

	"github.com/vinthewrench/offgrid-weather-station/internal/modules/weather/controller"
	"github.com/vinthewrench/offgrid-weather-station/internal/modules/weather/repository"
)

// RegisterFeature mounts the weather API on mux.
func RegisterFeature(mux *http.ServeMux, state controller.Snapshotter, history repository.HistoryRepository, site controller.Site, logger *slog.Logger) {
	weatherController := controller.NewWeatherController(state, history, site, logger)
	weatherController.RegisterRoutes(mux)
}
