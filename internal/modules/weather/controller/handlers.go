package controller

import (
	"net/http"

	"github.com/vinthewrench/offgrid-weather-station/internal/astro"
	"github.com/vinthewrench/offgrid-weather-station/internal/modules/weather/types"
	"github.com/vinthewrench/offgrid-weather-station/internal/modules/weather/views"
	"github.com/vinthewrench/offgrid-weather-station/internal/utils"
)

func (c *weatherControllerImpl) handleCurrent(w http.ResponseWriter, r *http.Request) {
	now := c.now()
	snap := c.state.Snapshot()
	report := astro.Compute(now, c.site.Latitude, c.site.Longitude)
	utils.WriteJSON(w, http.StatusOK, views.NewCurrent(snap, report, now.Unix()))
}

func (c *weatherControllerImpl) handleTemperatureHistory(w http.ResponseWriter, r *http.Request) {
	rows, ok := c.loadHistory(w, r, "temperature")
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, views.TemperatureDays(rows))
}

func (c *weatherControllerImpl) handleHumidityHistory(w http.ResponseWriter, r *http.Request) {
	rows, ok := c.loadHistory(w, r, "humidity")
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, views.HumidityDays(rows))
}

func (c *weatherControllerImpl) handleRainHistory(w http.ResponseWriter, r *http.Request) {
	rows, ok := c.loadHistory(w, r, "rain")
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, views.RainDays(rows))
}

// loadHistory runs the query described by the request. On failure it has
// already written the error response.
func (c *weatherControllerImpl) loadHistory(w http.ResponseWriter, r *http.Request, series string) ([]types.DailyRow, bool) {
	q := parseHistoryQuery(r, c.now())
	rows, err := c.repository.Query(r.Context(), q)
	if err != nil {
		c.logger.Error("history query failed",
			"series", series,
			"since", q.Since,
			"limit", q.Limit,
			"offset", q.Offset,
			"error", err,
		)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load history")
		return nil, false
	}
	return rows, true
}
