package handler

import (
	"context"
	"net/http"

	"github.com/Rrens/floorboard/internal/api/response"
)

// Pinger is a backing service checked by the readiness probe
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck returns a simple health check response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status": "ok",
	})
}

// ReadyCheck reports ready once the catalog snapshot is loaded and every
// backing store answers
func ReadyCheck(loaded <-chan struct{}, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-loaded:
		default:
			response.Error(w, http.StatusServiceUnavailable, "catalog not loaded")
			return
		}

		for name, dep := range deps {
			if err := dep.Ping(r.Context()); err != nil {
				response.Error(w, http.StatusServiceUnavailable, name+" not ready")
				return
			}
		}

		response.OK(w, map[string]string{
			"status": "ready",
		})
	}
}
