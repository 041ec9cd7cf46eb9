package httpapi

import (
	"database/sql"
	"log/slog"
	"net/http"
)

// NewMux returns a mux serving /healthz, with a JSON 404 for every path no
// feature registers.
func NewMux(db *sql.DB, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, db, logger)
	mux.HandleFunc("/", handleUnknown)
	return mux
}
