package handler

import "net/http"

// Health handles GET /api/v1/health.
// Returns 200 with a minimal body; liveness only, no dependency checks.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
