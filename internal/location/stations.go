// Package location handles transit station lookups
package location

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/randytsao24/condoprice/internal/models"
)

// StationService manages rail station data
type StationService struct {
	stations []models.Station
	mu       sync.RWMutex
	loaded   bool
}

// NewStationService creates a new station service
func NewStationService() *StationService {
	return &StationService{}
}

// Load reads station data from a GTFS stops.txt file. Columns are located by
// header name, so feeds may order them freely.
func (s *StationService) Load(filepath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(filepath)
	if err != nil {
		return fmt.Errorf("opening stations file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("reading CSV: %w", err)
	}

	if len(records) < 2 {
		return fmt.Errorf("stations file has no data rows")
	}

	col := make(map[string]int)
	for i, h := range records[0] {
		col[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, required := range []string{"stop_id", "stop_name", "stop_lat", "stop_lon"} {
		if _, ok := col[required]; !ok {
			return fmt.Errorf("stations file missing %s column", required)
		}
	}
	field := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var stations []models.Station
	for _, record := range records[1:] {
		lat, errLat := strconv.ParseFloat(field(record, "stop_lat"), 64)
		lng, errLng := strconv.ParseFloat(field(record, "stop_lon"), 64)
		if errLat != nil || errLng != nil {
			continue
		}
		locationType, _ := strconv.Atoi(field(record, "location_type"))

		stations = append(stations, models.Station{
			ID:            field(record, "stop_id"),
			Name:          field(record, "stop_name"),
			Lat:           lat,
			Lng:           lng,
			LocationType:  locationType,
			ParentStation: field(record, "parent_station"),
		})
	}

	s.stations = stations
	s.loaded = true
	return nil
}

// FindNearby returns stations within a radius (meters) of a point
func (s *StationService) FindNearby(lat, lng, radiusMeters float64) []models.StationWithDistance {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []models.StationWithDistance
	for _, st := range s.stations {
		// Only include parent stations (location_type = 1)
		if st.LocationType != 1 {
			continue
		}

		dist := Haversine(lat, lng, st.Lat, st.Lng)
		if dist <= radiusMeters {
			results = append(results, withDistance(st, dist))
		}
	}

	sortByDistance(results)
	return results
}

// FindClosest returns the N closest stations to a point
func (s *StationService) FindClosest(lat, lng float64, limit int) []models.StationWithDistance {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []models.StationWithDistance
	for _, st := range s.stations {
		if st.LocationType != 1 {
			continue
		}
		results = append(results, withDistance(st, Haversine(lat, lng, st.Lat, st.Lng)))
	}

	sortByDistance(results)

	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}
	return results
}

// NearestDistanceKm returns the distance to the closest station in km,
// rounded to the form's 0.1 km precision
func (s *StationService) NearestDistanceKm(lat, lng float64) (float64, bool) {
	closest := s.FindClosest(lat, lng, 1)
	if len(closest) == 0 {
		return 0, false
	}
	return closest[0].DistanceKm, true
}

// Count returns the number of loaded stops
func (s *StationService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.stations)
}

// ParentStationCount returns the count of parent stations only
func (s *StationService) ParentStationCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, st := range s.stations {
		if st.LocationType == 1 {
			count++
		}
	}
	return count
}

// GetByID returns a station by its ID
func (s *StationService) GetByID(id string) (models.Station, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, st := range s.stations {
		if st.ID == id {
			return st, true
		}
	}
	return models.Station{}, false
}

// IsLoaded returns true if data has been loaded
func (s *StationService) IsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func withDistance(st models.Station, meters float64) models.StationWithDistance {
	return models.StationWithDistance{
		Station:        st,
		DistanceMeters: meters,
		DistanceKm:     MetersToKilometers(meters),
	}
}

func sortByDistance(results []models.StationWithDistance) {
	sort.Slice(results, func(i, j int) bool {
		return results[i].DistanceMeters < results[j].DistanceMeters
	})
}
