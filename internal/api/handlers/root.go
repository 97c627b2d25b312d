package handlers

import (
	"net/http"
)

type RootHandler struct{}

func NewRootHandler() *RootHandler {
	return &RootHandler{}
}

func (h *RootHandler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":        "condoprice",
		"description": "Bangkok condominium price estimator",
		"version":     Version,
		"endpoints": map[string]string{
			"GET /":                                  "Estimator form",
			"POST /estimate":                         "Submit the estimator form",
			"GET /api":                               "API information",
			"GET /health":                            "Health check",
			"GET /api/schema":                        "Feature schema and defaults",
			"GET /api/districts":                     "Known districts",
			"POST /api/estimate":                     "Estimate from a JSON override mapping",
			"POST /api/record.xlsx":                  "Download the assembled record for a form submission",
			"GET /api/stations/nearest":              "Closest rail stations to lat/lng",
			"GET /api/districts/{district}/stations": "Closest rail stations to a district centroid",
		},
	})
}

func (h *RootHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]any{
		"error":   "Route not found",
		"message": "Check /api for available routes",
	})
}
