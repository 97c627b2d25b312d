package location

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadShipped(t *testing.T) *StationService {
	t.Helper()
	svc := NewStationService()
	require.NoError(t, svc.Load(filepath.Join("..", "..", "data", "stations.txt")))
	return svc
}

func TestLoadStations(t *testing.T) {
	svc := loadShipped(t)

	assert.True(t, svc.IsLoaded())
	assert.Greater(t, svc.Count(), svc.ParentStationCount())

	st, ok := svc.GetByID("E4")
	require.True(t, ok)
	assert.Equal(t, "Asok", st.Name)
}

func TestFindClosest(t *testing.T) {
	svc := loadShipped(t)

	// Terminal 21, above Asok / Sukhumvit interchange
	got := svc.FindClosest(13.7376, 100.5603, 3)
	require.Len(t, got, 3)
	assert.Equal(t, "E4", got[0].ID)
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1].DistanceMeters, got[i].DistanceMeters)
	}
	for _, s := range got {
		assert.Equal(t, 1, s.LocationType, "entrances must be skipped")
	}
}

func TestFindNearby(t *testing.T) {
	svc := loadShipped(t)

	got := svc.FindNearby(13.7376, 100.5603, 300)
	require.NotEmpty(t, got)
	for _, s := range got {
		assert.LessOrEqual(t, s.DistanceMeters, 300.0)
	}
	assert.Empty(t, svc.FindNearby(14.5, 101.5, 1000))
}

func TestNearestDistanceKm(t *testing.T) {
	svc := loadShipped(t)

	km, ok := svc.NearestDistanceKm(13.7376, 100.5603)
	require.True(t, ok)
	assert.Equal(t, 0.1, km)

	_, ok = NewStationService().NearestDistanceKm(13.7, 100.5)
	assert.False(t, ok)
}

func TestLoadStationsHeaderOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stops.txt")
	data := "stop_lat,stop_lon,stop_name,stop_id,location_type\n13.745595,100.534111,Siam,CEN,1\nbad,row,x,y,1\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	svc := NewStationService()
	require.NoError(t, svc.Load(path))
	assert.Equal(t, 1, svc.Count())
	st, ok := svc.GetByID("CEN")
	require.True(t, ok)
	assert.Equal(t, "Siam", st.Name)
}

func TestLoadStationsErrors(t *testing.T) {
	svc := NewStationService()
	assert.Error(t, svc.Load(filepath.Join(t.TempDir(), "missing.txt")))

	path := filepath.Join(t.TempDir(), "stops.txt")
	require.NoError(t, os.WriteFile(path, []byte("stop_id,stop_name\nA,B\n"), 0o644))
	assert.Error(t, svc.Load(path))
	assert.False(t, svc.IsLoaded())
}

func TestHaversine(t *testing.T) {
	assert.Zero(t, Haversine(13.7, 100.5, 13.7, 100.5))
	// One degree of latitude is roughly 111 km
	assert.InDelta(t, 111_195, Haversine(13, 100.5, 14, 100.5), 100)
	assert.Equal(t, 1.5, MetersToKilometers(1_460))
}
