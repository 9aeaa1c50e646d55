package api

import (
	"net/http"

	"github.com/vytor/numguess/internal/logger"
)

type healthStatus struct {
	Status string `json:"status"`
}

// handleHealth returns a liveness probe - always returns 200 OK.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, r, http.StatusOK, healthStatus{Status: "ok"})
}

// handleReady returns a readiness probe: 200 when the database answers a
// ping, 503 otherwise.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	if s.DB != nil {
		if err := s.DB.Ping(r.Context()); err != nil {
			log.Warn("readiness check failed - database: %v", err)
			writeJSON(w, r, http.StatusServiceUnavailable, envelope{Error: &errorBody{
				Code:    "NOT_READY",
				Message: "Database unavailable",
			}})
			return
		}
	}

	writeSuccess(w, r, http.StatusOK, healthStatus{Status: "ready"})
}
