package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/randytsao24/condoprice/internal/estimate"
	"github.com/randytsao24/condoprice/internal/features"
	"github.com/randytsao24/condoprice/web"
)

const estimateFailedMessage = "The price model could not produce an estimate. Please try again."

// FormHandler serves the estimator page.
type FormHandler struct {
	estimator Estimator
	tmpl      *template.Template
	logger    *slog.Logger
}

func NewFormHandler(est Estimator, logger *slog.Logger) (*FormHandler, error) {
	tmpl, err := web.Templates(templateFuncs())
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FormHandler{estimator: est, tmpl: tmpl, logger: logger}, nil
}

type formBounds struct {
	Floors, YearBuilt, Distance, Units, PolicyRate, Unemployment features.Bounds
}

type recordCell struct {
	Name  string
	Value string
}

type formView struct {
	Input        features.FormInput
	Districts    []string
	Amenities    []features.AmenityFlag
	Bounds       formBounds
	Errors       features.FieldErrors
	Failure      string
	Estimate     *estimate.Estimate
	Record       []recordCell
	ModelVersion string
}

type numberField struct {
	Name   string
	Label  string
	Value  any
	Bounds features.Bounds
	Step   string
	Error  string
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"num": func(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) },
		"field": func(name, label string, value any, b features.Bounds, step string, errs features.FieldErrors) numberField {
			return numberField{Name: name, Label: label, Value: value, Bounds: b, Step: step, Error: errs[name]}
		},
	}
}

func (h *FormHandler) view(in features.FormInput) formView {
	return formView{
		Input:     in,
		Districts: features.KnownDistricts(),
		Amenities: in.Amenities.Flags(),
		Bounds: formBounds{
			Floors:       features.FloorsBounds,
			YearBuilt:    features.YearBuiltBounds,
			Distance:     features.DistanceBounds,
			Units:        features.UnitsBounds,
			PolicyRate:   features.PolicyRateBounds,
			Unemployment: features.UnemploymentBounds,
		},
		ModelVersion: h.estimator.ModelVersion(),
	}
}

// Index renders the form with its default widget values.
func (h *FormHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, h.view(features.DefaultFormInput()))
}

// Submit estimates the submitted form and renders the result below it.
func (h *FormHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		v := h.view(features.DefaultFormInput())
		v.Failure = "The form could not be read."
		h.render(w, http.StatusBadRequest, v)
		return
	}

	in, err := features.ParseForm(r.PostForm)
	v := h.view(in)
	if err != nil {
		v.Errors = fieldErrors(err)
		h.render(w, http.StatusBadRequest, v)
		return
	}

	est, err := h.estimator.Estimate(in)
	if err != nil {
		var fe features.FieldErrors
		if errors.As(err, &fe) {
			v.Errors = fe
			h.render(w, http.StatusBadRequest, v)
			return
		}
		h.logger.Error("estimate failed", "error", err)
		v.Failure = estimateFailedMessage
		h.render(w, http.StatusInternalServerError, v)
		return
	}

	v.Estimate = est
	v.Record = recordCells(est.Record)
	h.render(w, http.StatusOK, v)
}

func (h *FormHandler) render(w http.ResponseWriter, status int, v formView) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, "index.html", v); err != nil {
		h.logger.Error("rendering form", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func recordCells(rec features.Record) []recordCell {
	names := rec.Names()
	cells := make([]recordCell, len(names))
	for i, name := range names {
		cells[i] = recordCell{Name: name, Value: rec.At(i).String()}
	}
	return cells
}

func fieldErrors(err error) features.FieldErrors {
	var fe features.FieldErrors
	if errors.As(err, &fe) {
		return fe
	}
	return features.FieldErrors{"form": err.Error()}
}
