// Package models defines shared data types
package models

// Station represents a rail transit stop from a GTFS stops.txt
type Station struct {
	ID            string  `json:"stop_id"`
	Name          string  `json:"stop_name"`
	Lat           float64 `json:"stop_lat"`
	Lng           float64 `json:"stop_lon"`
	LocationType  int     `json:"location_type"`
	ParentStation string  `json:"parent_station,omitempty"`
}

// StationWithDistance is a Station with distance from a reference point
type StationWithDistance struct {
	Station
	DistanceMeters float64 `json:"distance_meters"`
	DistanceKm     float64 `json:"distance_km"`
}


// District is a Bangkok district with the centroid used for station lookups
type District struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}
