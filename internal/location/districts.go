package location

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/randytsao24/condoprice/internal/models"
)

// DistrictService manages district centroid data
type DistrictService struct {
	districts map[string]models.District
	mu        sync.RWMutex
	loaded    bool
}

// NewDistrictService creates a new district service
func NewDistrictService() *DistrictService {
	return &DistrictService{
		districts: make(map[string]models.District),
	}
}

// Load reads district centroids from a JSON file
func (s *DistrictService) Load(filepath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(filepath)
	if err != nil {
		return fmt.Errorf("reading districts file: %w", err)
	}

	// The JSON is a map of district name -> centroid
	var raw map[string]struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing districts JSON: %w", err)
	}

	districts := make(map[string]models.District, len(raw))
	for name, loc := range raw {
		districts[name] = models.District{Name: name, Lat: loc.Lat, Lng: loc.Lng}
	}

	s.districts = districts
	s.loaded = true
	return nil
}

// Get returns a district by name
func (s *DistrictService) Get(name string) (models.District, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, exists := s.districts[name]
	return d, exists
}

// GetAll returns all districts sorted by name
func (s *DistrictService) GetAll() []models.District {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.District, 0, len(s.districts))
	for _, d := range s.districts {
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Count returns the number of loaded districts
func (s *DistrictService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.districts)
}

// IsLoaded returns true if data has been loaded
func (s *DistrictService) IsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}
