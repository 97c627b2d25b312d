package handlers

import (
	"net/http"

	"github.com/randytsao24/condoprice/internal/features"
)

type SchemaHandler struct {
	schema *features.Schema
}

func NewSchemaHandler(schema *features.Schema) *SchemaHandler {
	return &SchemaHandler{schema: schema}
}

// Schema describes the ordered feature columns and their defaults.
func (h *SchemaHandler) Schema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"version":     h.schema.Version(),
		"columns":     h.schema.Columns(),
		"defaults":    h.schema.Defaults(),
		"amenities":   features.AmenityColumns(),
		"json_schema": h.schema.JSONSchema(),
	})
}

// Districts lists the districts the model knows, sorted.
func (h *SchemaHandler) Districts(w http.ResponseWriter, r *http.Request) {
	districts := features.KnownDistricts()
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"count":     len(districts),
		"districts": districts,
	})
}
