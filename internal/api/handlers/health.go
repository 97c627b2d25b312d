// Package handlers contains HTTP request handlers
package handlers

import (
	"net/http"
	"time"

	"github.com/randytsao24/condoprice/internal/features"
)

// Version is the service version reported by /health and /api.
const Version = "1.0.0"

type HealthHandler struct {
	startTime    time.Time
	modelVersion string
}

func NewHealthHandler(modelVersion string) *HealthHandler {
	return &HealthHandler{startTime: time.Now(), modelVersion: modelVersion}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "OK",
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"version":        Version,
		"uptime":         time.Since(h.startTime).String(),
		"model_version":  h.modelVersion,
		"schema_version": features.SchemaVersion,
	})
}
