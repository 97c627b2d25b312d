package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/randytsao24/condoprice/internal/cache"
	"github.com/randytsao24/condoprice/internal/features"
	"github.com/randytsao24/condoprice/internal/models"
)

const (
	defaultStationsLimit = 3
	maxStationsLimit     = 10
)

var (
	errStationsUnavailable  = errors.New("station data is not configured; set STATIONS_PATH")
	errDistrictsUnavailable = errors.New("district data is not configured; set DISTRICTS_PATH")
)

type StationHandler struct {
	stations  StationFinder
	districts DistrictLocator
	cache     *cache.Cache[[]models.StationWithDistance]
}

// NewStationHandler creates a handler over stations and districts, either of
// which may be nil when its data file is not configured.
func NewStationHandler(stations StationFinder, districts DistrictLocator, c *cache.Cache[[]models.StationWithDistance]) *StationHandler {
	return &StationHandler{stations: stations, districts: districts, cache: c}
}

// Nearest returns the closest rail stations to lat/lng. The first entry's
// distance_km is the value for the form's distance field.
func (h *StationHandler) Nearest(w http.ResponseWriter, r *http.Request) {
	if h.stations == nil {
		writeError(w, http.StatusServiceUnavailable, "Station lookup unavailable", errStationsUnavailable)
		return
	}

	lat, errLat := parseCoord(r, "lat", 90)
	lng, errLng := parseCoord(r, "lng", 180)
	if err := errors.Join(errLat, errLng); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid coordinates", err)
		return
	}
	limit := parseIntParam(r, "limit", defaultStationsLimit, 1, maxStationsLimit)

	stations, cached := h.closest(lat, lng, limit)
	writeJSON(w, http.StatusOK, stationsBody(map[string]any{
		"lat": lat,
		"lng": lng,
	}, stations, cached))
}

// NearDistrict returns the closest rail stations to a district's centroid.
func (h *StationHandler) NearDistrict(w http.ResponseWriter, r *http.Request) {
	if h.stations == nil {
		writeError(w, http.StatusServiceUnavailable, "Station lookup unavailable", errStationsUnavailable)
		return
	}
	if h.districts == nil {
		writeError(w, http.StatusServiceUnavailable, "District lookup unavailable", errDistrictsUnavailable)
		return
	}

	name := r.PathValue("district")
	if !features.IsKnownDistrict(name) {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error":   "District not found",
			"message": "District " + name + " is not one the model knows; see /api/districts",
		})
		return
	}
	district, found := h.districts.Get(name)
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error":   "District location not found",
			"message": "No centroid is configured for " + name,
		})
		return
	}

	limit := parseIntParam(r, "limit", defaultStationsLimit, 1, maxStationsLimit)
	stations, cached := h.closest(district.Lat, district.Lng, limit)
	writeJSON(w, http.StatusOK, stationsBody(map[string]any{
		"district": district,
	}, stations, cached))
}

func (h *StationHandler) closest(lat, lng float64, limit int) ([]models.StationWithDistance, bool) {
	load := func() ([]models.StationWithDistance, error) {
		return h.stations.FindClosest(lat, lng, limit), nil
	}
	if h.cache == nil {
		stations, _ := load()
		return stations, false
	}
	key := fmt.Sprintf("%.4f,%.4f,%d", lat, lng, limit)
	stations, cached, _ := h.cache.GetOrLoad(key, load)
	return stations, cached
}

func stationsBody(body map[string]any, stations []models.StationWithDistance, cached bool) map[string]any {
	body["success"] = true
	body["stations"] = stations
	body["metadata"] = map[string]any{
		"stations_found": len(stations),
		"cached":         cached,
	}
	if len(stations) > 0 {
		body["nearest_km"] = stations[0].DistanceKm
	}
	return body
}

func parseCoord(r *http.Request, name string, limit float64) (float64, error) {
	str := r.URL.Query().Get(name)
	if str == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	val, err := strconv.ParseFloat(str, 64)
	if err != nil || math.IsNaN(val) || val < -limit || val > limit {
		return 0, fmt.Errorf("%s must be a number between %g and %g", name, -limit, limit)
	}
	return val, nil
}

func parseIntParam(r *http.Request, name string, defaultVal, min, max int) int {
	str := r.URL.Query().Get(name)
	if str == "" {
		return defaultVal
	}

	val, err := strconv.Atoi(str)
	if err != nil {
		return defaultVal
	}

	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
