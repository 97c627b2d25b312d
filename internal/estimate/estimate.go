// Package estimate turns form submissions into price estimates.
package estimate

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/randytsao24/condoprice/internal/features"
	"github.com/randytsao24/condoprice/internal/model"
)

var ErrPredictor = errors.New("predictor failed")

// Estimate is the result of one prediction request.
type Estimate struct {
	ID           string          `json:"id"`
	Price        float64         `json:"price"`
	Formatted    string          `json:"formatted"`
	ModelVersion string          `json:"model_version,omitempty"`
	Record       features.Record `json:"record"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Service assembles records and runs them through a predictor. It holds no
// per-request state.
type Service struct {
	predictor    model.Predictor
	schema       *features.Schema
	validator    *features.Validator
	modelVersion string
	logger       *slog.Logger
}

// NewService creates a service over predictor using the V4 schema.
func NewService(predictor model.Predictor, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	schema := features.V4()
	validator, err := features.NewValidator(schema)
	if err != nil {
		return nil, fmt.Errorf("record validator: %w", err)
	}

	var version string
	if v, ok := predictor.(interface{ Version() string }); ok {
		version = v.Version()
	}

	return &Service{
		predictor:    predictor,
		schema:       schema,
		validator:    validator,
		modelVersion: version,
		logger:       logger,
	}, nil
}

// ModelVersion returns the version of the loaded artifact, if known.
func (s *Service) ModelVersion() string { return s.modelVersion }

// Estimate prices a form snapshot.
func (s *Service) Estimate(in features.FormInput) (*Estimate, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	rec, err := s.schema.Assemble(in.Overrides())
	if err != nil {
		return nil, err
	}
	return s.predict(rec)
}

// EstimateOverrides prices an arbitrary override mapping. Keys outside the
// schema are ignored.
func (s *Service) EstimateOverrides(overrides features.Overrides) (*Estimate, error) {
	if unknown := s.schema.UnknownKeys(overrides); len(unknown) > 0 {
		s.logger.Debug("ignoring unknown override keys", "keys", unknown)
	}
	if err := features.CheckBounds(overrides); err != nil {
		return nil, err
	}
	rec, err := s.schema.Assemble(overrides)
	if err != nil {
		return nil, err
	}
	return s.predict(rec)
}

// Assemble builds the record for a snapshot without predicting.
func (s *Service) Assemble(in features.FormInput) (features.Record, error) {
	if err := in.Validate(); err != nil {
		return features.Record{}, err
	}
	return s.schema.Assemble(in.Overrides())
}

func (s *Service) predict(rec features.Record) (*Estimate, error) {
	start := time.Now()

	if err := s.validator.Validate(rec); err != nil {
		return nil, err
	}
	table, err := features.NewTable(s.schema, rec)
	if err != nil {
		return nil, err
	}

	out, err := s.predictor.Predict(table)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPredictor, err)
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("%w: got %d predictions for 1 row", ErrPredictor, len(out))
	}
	if math.IsNaN(out[0]) || math.IsInf(out[0], 0) {
		return nil, fmt.Errorf("%w: non-finite prediction", ErrPredictor)
	}

	est := &Estimate{
		ID:           uuid.NewString(),
		Price:        out[0],
		Formatted:    FormatBaht(out[0]),
		ModelVersion: s.modelVersion,
		Record:       rec,
		CreatedAt:    time.Now().UTC(),
	}

	s.logger.Info("estimate",
		"id", est.ID,
		"district", rec.Str(features.ColDistrict),
		"price", est.Price,
		"duration", time.Since(start).String(),
	)
	return est, nil
}

// FormatBaht renders a price with thousands separators and two decimals.
// A negative price keeps its sign ahead of the currency symbol.
func FormatBaht(v float64) string {
	if v < 0 {
		return "-฿" + humanize.FormatFloat("#,###.##", -v)
	}
	return "฿" + humanize.FormatFloat("#,###.##", v)
}
