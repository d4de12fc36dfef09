package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// SetupRoutes configures all routes. staticDir, when non-empty, is served at
// the root for the dashboard page.
func SetupRoutes(handler *Handler, staticDir string) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", handler.Health).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/stocks/{symbol}", handler.GetStock).Methods("GET")
	api.HandleFunc("/stocks/{symbol}/history.csv", handler.GetHistoryCSV).Methods("GET")
	api.HandleFunc("/stocks/{symbol}/metrics.csv", handler.GetMetricsCSV).Methods("GET")

	if staticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(staticDir)))
	}
	return r
}
