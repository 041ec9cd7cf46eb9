package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/vinthewrench/offgrid-weather-station/internal/config"
)

func NewServer(cfg config.Config, mux *http.ServeMux, logger *slog.Logger) *http.Server {
	return &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      requestLogger(logger, readOnlyAPI(mux)),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  2 * cfg.HTTPWriteTimeout,
	}
}
