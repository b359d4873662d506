package api

import (
	"net/http"
	"time"
)

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	s.writeData(w, http.StatusOK, map[string]string{"message": "pong"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"app":         s.app.Name,
		"version":     s.app.Version,
		"environment": s.app.Environment,
		"time":        time.Now().UTC().Format(time.RFC3339),
	}
	if s.health != nil {
		status["components"] = s.health(r.Context())
	}
	s.writeData(w, http.StatusOK, status)
}
