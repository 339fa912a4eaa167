package utils

import (
	"net/http"

	"github.com/gorilla/mux"

	"reelfeed/handlers"
)

// CORS middleware to allow the browser UI to call the API from another origin
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		// Handle preflight requests
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// NewRouter constructs the mux router exposing the recommendation and
// library endpoints consumed by the UI layer.
func NewRouter(rec *handlers.RecommendationsHandler, lib *handlers.LibraryHandler) *mux.Router {
	r := mux.NewRouter()
	r.Use(corsMiddleware)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/recommendations", rec.List).Methods(http.MethodGet)
	api.HandleFunc("/recommendations/feedback", rec.Feedback).Methods(http.MethodPost)

	api.HandleFunc("/library", lib.Snapshot).Methods(http.MethodGet)
	api.HandleFunc("/library/stats", lib.Stats).Methods(http.MethodGet)
	api.HandleFunc("/library/export", lib.Export).Methods(http.MethodGet)
	api.HandleFunc("/library/import", lib.Import).Methods(http.MethodPost)
	api.HandleFunc("/library/clear", lib.Clear).Methods(http.MethodPost)
	api.HandleFunc("/library/reorder", lib.Reorder).Methods(http.MethodPost)
	api.HandleFunc("/library/block/{id}", lib.Block).Methods(http.MethodPost)
	api.HandleFunc("/library/restore/{id}", lib.Restore).Methods(http.MethodPost)
	api.HandleFunc("/library/{list}", lib.Add).Methods(http.MethodPost)
	api.HandleFunc("/library/{list}/{id}", lib.Remove).Methods(http.MethodDelete)

	return r
}
