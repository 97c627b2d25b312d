package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/randytsao24/condoprice/internal/export"
	"github.com/randytsao24/condoprice/internal/features"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExportHandler struct {
	estimator Estimator
	logger    *slog.Logger
}

func NewExportHandler(est Estimator, logger *slog.Logger) *ExportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportHandler{estimator: est, logger: logger}
}

// RecordXLSX estimates a form submission and returns the assembled record
// with its price as a workbook.
func (h *ExportHandler) RecordXLSX(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form body", err)
		return
	}

	in, err := features.ParseForm(r.PostForm)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "Invalid form input",
			"fields": fieldErrors(err),
		})
		return
	}

	est, err := h.estimator.Estimate(in)
	if err != nil {
		if isInputError(err) {
			writeError(w, http.StatusBadRequest, "Invalid feature values", err)
			return
		}
		h.logger.Error("estimate failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to estimate price", err)
		return
	}

	data, err := export.RecordsXLSX([]features.Record{est.Record}, []float64{est.Price})
	if err != nil {
		h.logger.Error("record export failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to build workbook", err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "condo-record-"+est.ID+".xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
