package simulator

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ziadkadry99/gazeoverlay/internal/gaze"
)

// RegisterRoutes mounts the backend endpoint on the given router.
func RegisterRoutes(r chi.Router, src *Source) {
	r.Get(gaze.Path, handleGaze(src))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "requests": src.Requests()})
	})
}

// NewRouter returns a router serving src with permissive CORS, as a
// browser-hosted overlay would need.
func NewRouter(src *Source) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Cache-Control"},
		MaxAge:         300,
	}))
	RegisterRoutes(r, src)
	return r
}

func handleGaze(src *Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		sample, ok := src.Next()
		if !ok {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"detail": "tracker unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, sample)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
