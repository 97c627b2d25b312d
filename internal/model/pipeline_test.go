package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randytsao24/condoprice/internal/features"
)

// linearArtifact scales nothing and prices units, pools and Sathon only.
func linearArtifact() *Artifact {
	schema := features.V4()
	var cols []ArtifactColumn
	var numeric int
	for _, c := range schema.Columns() {
		cols = append(cols, ArtifactColumn{Name: c.Name, Kind: c.Kind})
		if c.Kind == features.Numeric {
			numeric++
		}
	}
	districts := features.KnownDistricts()

	mean := make([]float64, numeric)
	scale := make([]float64, numeric)
	for i := range scale {
		scale[i] = 1
	}
	coef := make([]float64, numeric+len(districts))
	coef[schema.Index(features.ColUnits)] = 1000
	coef[schema.Index(features.ColPool)] = 50000
	for i, d := range districts {
		if d == "Sathon" {
			coef[numeric+i] = 1_000_000
		}
	}

	return &Artifact{
		Name:          "test_model",
		Version:       "t1",
		SchemaVersion: features.SchemaVersion,
		Columns:       cols,
		Preprocessor: PreprocessorSpec{
			Numeric:     ScalerSpec{Mean: mean, Scale: scale},
			Categorical: map[string]EncoderSpec{"district": {Categories: districts}},
		},
		Regressor: RegressorSpec{Type: "linear", Intercept: 10, Coef: coef},
	}
}

func forestArtifact() *Artifact {
	a := linearArtifact()
	floors := features.V4().Index(features.ColNbrFloors)
	a.Regressor = RegressorSpec{
		Type: "forest",
		Trees: []TreeSpec{
			{Nodes: []NodeSpec{
				{Feature: floors, Threshold: 20, Left: 1, Right: 2},
				{Left: -1, Right: -1, Value: 100},
				{Left: -1, Right: -1, Value: 200},
			}},
			{Nodes: []NodeSpec{{Left: -1, Right: -1, Value: 300}}},
		},
	}
	return a
}

func scenarioTable(t *testing.T) features.Table {
	t.Helper()
	rec, err := features.Assemble(features.Overrides{
		features.ColNbrFloors:          features.Num(30),
		features.ColYearBuilt:          features.Num(2018),
		features.ColDistNearestStation: features.Num(1.5),
		features.ColUnits:              features.Num(150),
		features.ColDistrict:           features.Cat("Sathon"),
		features.ColPolicyRate:         features.Num(1.75),
		features.ColElevator:           features.Flag(true),
		features.ColPool:               features.Flag(true),
	})
	require.NoError(t, err)
	table, err := features.NewTable(features.V4(), rec)
	require.NoError(t, err)
	return table
}

func TestLinearPredict(t *testing.T) {
	p, err := Build(linearArtifact())
	require.NoError(t, err)
	require.NoError(t, p.CheckSchema(features.V4()))

	got, err := p.Predict(scenarioTable(t))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 10+150*1000+50000+1_000_000, got[0], 1e-6)
}

func TestUnknownDistrictEncodesAsZeros(t *testing.T) {
	p, err := Build(linearArtifact())
	require.NoError(t, err)

	table, err := features.NewTable(features.V4(), features.Defaults())
	require.NoError(t, err)

	got, err := p.Predict(table)
	require.NoError(t, err)
	assert.InDelta(t, 10, got[0], 1e-9)
}

func TestForestPredict(t *testing.T) {
	p, err := Build(forestArtifact())
	require.NoError(t, err)

	low, err := features.Assemble(features.Overrides{features.ColNbrFloors: features.Num(10)})
	require.NoError(t, err)
	high, err := features.Assemble(features.Overrides{features.ColNbrFloors: features.Num(30)})
	require.NoError(t, err)
	table, err := features.NewTable(features.V4(), low, high)
	require.NoError(t, err)

	got, err := p.Predict(table)
	require.NoError(t, err)
	assert.Equal(t, []float64{200, 250}, got)
}

func TestScalerApplied(t *testing.T) {
	a := linearArtifact()
	units := features.V4().Index(features.ColUnits)
	a.Preprocessor.Numeric.Mean[units] = 100
	a.Preprocessor.Numeric.Scale[units] = 50

	p, err := Build(a)
	require.NoError(t, err)
	got, err := p.Predict(scenarioTable(t))
	require.NoError(t, err)
	// (150-100)/50 = 1 unit step
	assert.InDelta(t, 10+1000+50000+1_000_000, got[0], 1e-6)
}

func TestArtifactRoundTrip(t *testing.T) {
	dir := t.TempDir()
	want, err := Build(forestArtifact())
	require.NoError(t, err)
	wantOut, err := want.Predict(scenarioTable(t))
	require.NoError(t, err)

	for _, name := range []string{"model.json", "model.yaml", "model.yml", "model.pb"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, WriteArtifact(path, forestArtifact()))

			p, err := Load(path, features.V4())
			require.NoError(t, err)
			assert.Equal(t, "test_model", p.Name())
			assert.Equal(t, "t1", p.Version())
			assert.Equal(t, features.V4().Names(), p.Columns())

			got, err := p.Predict(scenarioTable(t))
			require.NoError(t, err)
			assert.Equal(t, wantOut, got)
		})
	}
}

func TestLoadMissingArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "real_estate_model_v4.json")
	_, err := Load(path, features.V4())
	require.ErrorIs(t, err, ErrArtifactNotFound)
	assert.Contains(t, err.Error(), "real_estate_model_v4.json")
	assert.Contains(t, err.Error(), "MODEL_PATH")
}

func TestLoadSchemaMismatch(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(a *Artifact)
	}{
		{"columns swapped", func(a *Artifact) {
			a.Columns[0], a.Columns[1] = a.Columns[1], a.Columns[0]
		}},
		{"older schema version", func(a *Artifact) { a.SchemaVersion = "v3" }},
		{"district missing from encoder", func(a *Artifact) {
			enc := a.Preprocessor.Categorical["district"]
			enc.Categories = enc.Categories[1:]
			a.Preprocessor.Categorical["district"] = enc
			a.Regressor.Coef = a.Regressor.Coef[1:]
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := linearArtifact()
			tc.mutate(a)
			path := filepath.Join(t.TempDir(), "model.json")
			require.NoError(t, WriteArtifact(path, a))

			_, err := Load(path, features.V4())
			assert.ErrorIs(t, err, features.ErrSchemaMismatch)
		})
	}
}

func TestLoadInvalidArtifact(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(a *Artifact)
	}{
		{"coefficient count", func(a *Artifact) { a.Regressor.Coef = a.Regressor.Coef[:3] }},
		{"unknown regressor", func(a *Artifact) { a.Regressor.Type = "svm" }},
		{"scaler length", func(a *Artifact) { a.Preprocessor.Numeric.Mean = nil }},
		{"tree cycle", func(a *Artifact) {
			a.Regressor = RegressorSpec{Type: "forest", Trees: []TreeSpec{{Nodes: []NodeSpec{
				{Feature: 0, Threshold: 1, Left: 0, Right: 1},
				{Left: -1, Right: -1, Value: 1},
			}}}}
		}},
		{"missing encoder", func(a *Artifact) { a.Preprocessor.Categorical = nil }},
		{"no name", func(a *Artifact) { a.Name = "" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := linearArtifact()
			tc.mutate(a)
			path := filepath.Join(t.TempDir(), "model.json")
			require.NoError(t, WriteArtifact(path, a))

			_, err := Load(path, features.V4())
			assert.ErrorIs(t, err, ErrInvalidArtifact)
		})
	}
}

func TestLoadGarbage(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "model.pb")
	require.NoError(t, os.WriteFile(path, []byte("not a protobuf message \xff\xff"), 0o644))
	_, err := Load(path, features.V4())
	assert.ErrorIs(t, err, ErrInvalidArtifact)

	path = filepath.Join(dir, "model.joblib")
	require.NoError(t, os.WriteFile(path, []byte{0}, 0o644))
	_, err = Load(path, features.V4())
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestPredictRejectsForeignTable(t *testing.T) {
	p, err := Build(linearArtifact())
	require.NoError(t, err)

	other, err := features.NewSchema("v4", features.Column{Name: "units", Kind: features.Numeric, Default: features.Num(0)})
	require.NoError(t, err)
	table, err := features.NewTable(other, other.Defaults())
	require.NoError(t, err)

	_, err = p.Predict(table)
	assert.ErrorIs(t, err, features.ErrSchemaMismatch)
}

func TestShippedArtifact(t *testing.T) {
	p, err := Load(filepath.Join("..", "..", "data", "real_estate_model_v4.json"), features.V4())
	require.NoError(t, err)

	rec, err := features.DefaultFormInput().Record()
	require.NoError(t, err)
	table, err := features.NewTable(features.V4(), rec)
	require.NoError(t, err)

	got, err := p.Predict(table)
	require.NoError(t, err)
	assert.Greater(t, got[0], 0.0)
}

func TestDecodeArtifactJSON(t *testing.T) {
	data, err := EncodeArtifact(linearArtifact(), FormatJSON)
	require.NoError(t, err)

	a, err := DecodeArtifact(data, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "test_model", a.Name)
	assert.Equal(t, "linear", a.Regressor.Type)

	tests := []struct {
		name string
		data string
	}{
		{"truncated", string(data[:len(data)/2])},
		{"not an object", `[1, 2, 3]`},
		{"missing fields", `{"name": "x"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeArtifact([]byte(tc.data), FormatJSON)
			assert.ErrorIs(t, err, ErrInvalidArtifact)
		})
	}
}
