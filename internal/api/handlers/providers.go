package handlers

import (
	"github.com/randytsao24/condoprice/internal/estimate"
	"github.com/randytsao24/condoprice/internal/features"
	"github.com/randytsao24/condoprice/internal/models"
)

// Estimator abstracts the pricing service for testability.
type Estimator interface {
	Estimate(in features.FormInput) (*estimate.Estimate, error)
	EstimateOverrides(overrides features.Overrides) (*estimate.Estimate, error)
	ModelVersion() string
}

// StationFinder abstracts the station lookup.
type StationFinder interface {
	FindClosest(lat, lng float64, limit int) []models.StationWithDistance
	ParentStationCount() int
}

// DistrictLocator resolves a district to its centroid.
type DistrictLocator interface {
	Get(name string) (models.District, bool)
}
