package features

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wantColumns = []string{
	"latitude", "longitude", "year_built", "proj_area", "nbr_floors", "units",
	"Elevator", "Parking", "Security", "CCTV", "Pool", "Sauna", "Gym", "Garden",
	"Playground", "Shop", "Restaurant", "Wifi",
	"dist_nearest_station", "policy_rate", "unemployment_count_k",
	"district",
}

func TestSchemaOrder(t *testing.T) {
	if diff := cmp.Diff(wantColumns, V4().Names()); diff != "" {
		t.Errorf("column order mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, SchemaVersion, V4().Version())
	assert.Equal(t, 22, V4().Len())
	assert.Len(t, AmenityColumns(), 12)
}

func TestAssembleEmptyOverridesEqualsDefaults(t *testing.T) {
	rec, err := Assemble(nil)
	require.NoError(t, err)

	if diff := cmp.Diff(Defaults().Map(), rec.Map()); diff != "" {
		t.Errorf("record differs from defaults (-want +got):\n%s", diff)
	}
	assert.Equal(t, "None", rec.Str(ColDistrict))
	for _, name := range wantColumns[:21] {
		v, ok := rec.Value(name)
		require.True(t, ok, name)
		assert.Equal(t, Numeric, v.Kind(), name)
		assert.Zero(t, v.Float(), name)
	}
}

func TestAssembleScenario(t *testing.T) {
	overrides := Overrides{
		ColNbrFloors:          Num(30),
		ColYearBuilt:          Num(2018),
		ColDistNearestStation: Num(1.5),
		ColUnits:              Num(150),
		ColDistrict:           Cat("Sathon"),
		ColPolicyRate:         Num(1.75),
		ColElevator:           Flag(true),
		ColPool:               Flag(true),
	}

	rec, err := Assemble(overrides)
	require.NoError(t, err)

	assert.Equal(t, wantColumns, rec.Names())
	assert.Equal(t, 30.0, rec.Float(ColNbrFloors))
	assert.Equal(t, 2018.0, rec.Float(ColYearBuilt))
	assert.Equal(t, 1.5, rec.Float(ColDistNearestStation))
	assert.Equal(t, 150.0, rec.Float(ColUnits))
	assert.Equal(t, 1.75, rec.Float(ColPolicyRate))
	assert.Equal(t, 1.0, rec.Float(ColElevator))
	assert.Equal(t, 1.0, rec.Float(ColPool))
	assert.Equal(t, "Sathon", rec.Str(ColDistrict))

	defaults := Defaults()
	for _, name := range wantColumns {
		if _, set := overrides[name]; set {
			continue
		}
		want, _ := defaults.Value(name)
		got, _ := rec.Value(name)
		assert.Equal(t, want, got, name)
	}
}

func TestAssembleDoesNotMutateDefaults(t *testing.T) {
	_, err := Assemble(Overrides{ColUnits: Num(10)})
	require.NoError(t, err)
	assert.Zero(t, Defaults().Float(ColUnits))
}

func TestFlagMapping(t *testing.T) {
	assert.Equal(t, Num(1), Flag(true))
	assert.Equal(t, Num(0), Flag(false))
}

func TestAssembleIgnoresUnknownKeys(t *testing.T) {
	overrides := Overrides{"bedrooms": Num(3), ColUnits: Num(20), "another": Cat("x")}

	rec, err := Assemble(overrides)
	require.NoError(t, err)
	assert.Equal(t, len(wantColumns), rec.Len())
	_, present := rec.Value("bedrooms")
	assert.False(t, present)
	assert.Equal(t, []string{"another", "bedrooms"}, UnknownKeys(overrides))
}

func TestAssembleRejects(t *testing.T) {
	tests := []struct {
		name      string
		overrides Overrides
		wantErr   error
	}{
		{"district outside known set", Overrides{ColDistrict: Cat("Pattaya")}, ErrUnknownCategory},
		{"string for numeric column", Overrides{ColUnits: Cat("150")}, ErrKindMismatch},
		{"number for categorical column", Overrides{ColDistrict: Num(3)}, ErrKindMismatch},
		{"zero value", Overrides{ColGym: {}}, ErrKindMismatch},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Assemble(tc.overrides)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestAssembleEveryKnownDistrict(t *testing.T) {
	for _, d := range KnownDistricts() {
		rec, err := Assemble(Overrides{ColDistrict: Cat(d)})
		require.NoError(t, err, d)
		assert.Equal(t, d, rec.Str(ColDistrict))
	}
	_, err := Assemble(Overrides{ColDistrict: Cat(UnknownCategory)})
	assert.ErrorIs(t, err, ErrUnknownCategory)

	rec, err := Assemble(Overrides{ColUnits: Num(5)})
	require.NoError(t, err)
	assert.Equal(t, UnknownCategory, rec.Str(ColDistrict), "default stays in place")
}

func TestRecordMarshalJSONKeepsOrder(t *testing.T) {
	rec, err := Assemble(Overrides{ColDistrict: Cat("Dusit"), ColGym: Flag(true)})
	require.NoError(t, err)

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	s := string(data)
	last := -1
	for _, name := range wantColumns {
		i := strings.Index(s, `"`+name+`":`)
		require.GreaterOrEqual(t, i, 0, name)
		assert.Greater(t, i, last, "column %s out of order", name)
		last = i
	}

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "Dusit", decoded["district"])
	assert.Equal(t, 1.0, decoded["Gym"])
}

func TestNewTable(t *testing.T) {
	rec, err := Assemble(nil)
	require.NoError(t, err)

	table, err := NewTable(V4(), rec)
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
	assert.Equal(t, wantColumns, table.Columns())

	_, err = NewTable(V4())
	assert.ErrorIs(t, err, ErrEmptyTable)

	other, err := NewSchema("v0", Column{Name: "x", Kind: Numeric, Default: Num(0)})
	require.NoError(t, err)
	_, err = NewTable(other, rec)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestNewSchemaRejectsBadColumns(t *testing.T) {
	_, err := NewSchema("t",
		Column{Name: "a", Kind: Numeric, Default: Num(0)},
		Column{Name: "a", Kind: Numeric, Default: Num(0)},
	)
	assert.Error(t, err)

	_, err = NewSchema("t", Column{Name: "a", Kind: Numeric, Default: Cat("x")})
	assert.Error(t, err)
}

func TestCompareColumns(t *testing.T) {
	cols := V4().Columns()
	require.NoError(t, CompareColumns(V4(), cols))

	swapped := V4().Columns()
	swapped[0], swapped[1] = swapped[1], swapped[0]
	err := CompareColumns(V4(), swapped)
	require.ErrorIs(t, err, ErrSchemaMismatch)
	assert.Contains(t, err.Error(), `column 0 is "longitude"`)

	assert.ErrorIs(t, CompareColumns(V4(), cols[:5]), ErrSchemaMismatch)

	retyped := V4().Columns()
	retyped[21].Kind = Numeric
	assert.ErrorIs(t, CompareColumns(V4(), retyped), ErrSchemaMismatch)
}

func TestOverridesFromMap(t *testing.T) {
	o, err := OverridesFromMap(map[string]any{
		"units":    120.0,
		"Pool":     true,
		"Sauna":    false,
		"district": "Bang Rak",
	})
	require.NoError(t, err)
	assert.Equal(t, Num(120), o["units"])
	assert.Equal(t, Num(1), o["Pool"])
	assert.Equal(t, Num(0), o["Sauna"])
	assert.Equal(t, Cat("Bang Rak"), o["district"])

	_, err = OverridesFromMap(map[string]any{"units": []any{1.0}})
	assert.Error(t, err)
}
