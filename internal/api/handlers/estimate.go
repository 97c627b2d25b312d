package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/randytsao24/condoprice/internal/features"
)

const maxBodyBytes = 64 << 10

type EstimateHandler struct {
	estimator Estimator
	logger    *slog.Logger
}

func NewEstimateHandler(est Estimator, logger *slog.Logger) *EstimateHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EstimateHandler{estimator: est, logger: logger}
}

// Estimate prices a JSON override mapping. Columns left out take their
// defaults; keys outside the schema are ignored and listed in the response.
func (h *EstimateHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	overrides, err := features.OverridesFromMap(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid override value", err)
		return
	}

	est, err := h.estimator.EstimateOverrides(overrides)
	if err != nil {
		var fe features.FieldErrors
		if errors.As(err, &fe) {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "Invalid feature values",
				"fields": fe,
			})
			return
		}
		if isInputError(err) {
			writeError(w, http.StatusBadRequest, "Invalid feature values", err)
			return
		}
		h.logger.Error("estimate failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to estimate price", err)
		return
	}

	ignored := features.UnknownKeys(overrides)
	if ignored == nil {
		ignored = []string{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"estimate": est,
		"record":   est.Record,
		"ignored":  ignored,
	})
}

func isInputError(err error) bool {
	var fe features.FieldErrors
	return errors.As(err, &fe) ||
		errors.Is(err, features.ErrKindMismatch) ||
		errors.Is(err, features.ErrUnknownCategory) ||
		errors.Is(err, features.ErrInvalidRecord)
}
