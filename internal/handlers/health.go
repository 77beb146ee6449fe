package handlers

import "net/http"

// Health handles GET /health. Liveness only; no dependencies to check.
func Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
