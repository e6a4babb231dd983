package controllers

import "net/http"

// HealthCheck reports server liveness; no auth.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
