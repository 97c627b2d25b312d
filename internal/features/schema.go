// Package features defines the feature schema the price model was fit on and
// assembles form input into complete, correctly ordered feature records.
package features

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

// SchemaVersion identifies the column layout shared by the assembler and the
// model artifact. Artifacts record the version they were trained against.
const SchemaVersion = "v4"

// Column names, in training order.
const (
	ColLatitude           = "latitude"
	ColLongitude          = "longitude"
	ColYearBuilt          = "year_built"
	ColProjArea           = "proj_area"
	ColNbrFloors          = "nbr_floors"
	ColUnits              = "units"
	ColElevator           = "Elevator"
	ColParking            = "Parking"
	ColSecurity           = "Security"
	ColCCTV               = "CCTV"
	ColPool               = "Pool"
	ColSauna              = "Sauna"
	ColGym                = "Gym"
	ColGarden             = "Garden"
	ColPlayground         = "Playground"
	ColShop               = "Shop"
	ColRestaurant         = "Restaurant"
	ColWifi               = "Wifi"
	ColDistNearestStation = "dist_nearest_station"
	ColPolicyRate         = "policy_rate"
	ColUnemploymentCountK = "unemployment_count_k"
	ColDistrict           = "district"
)

// UnknownCategory is the categorical default. The model encodes it as an
// all-zero one-hot vector.
const UnknownCategory = "None"

var (
	ErrKindMismatch    = errors.New("value kind does not match column")
	ErrUnknownCategory = errors.New("unknown category")
	ErrSchemaMismatch  = errors.New("schema mismatch")
)

// Kind classifies a column.
type Kind string

const (
	Numeric     Kind = "numeric"
	Categorical Kind = "categorical"
)

// Column is one named input of the schema.
type Column struct {
	Name       string   `json:"name"`
	Kind       Kind     `json:"kind"`
	Default    Value    `json:"default"`
	Categories []string `json:"categories,omitempty"`
}

// Schema is an ordered, immutable set of columns.
type Schema struct {
	version string
	columns []Column
	index   map[string]int
}

// NewSchema builds a schema from columns in order. Column names must be unique
// and defaults must match their column's kind.
func NewSchema(version string, columns ...Column) (*Schema, error) {
	s := &Schema{
		version: version,
		columns: make([]Column, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, col := range columns {
		if _, dup := s.index[col.Name]; dup {
			return nil, fmt.Errorf("duplicate column %q", col.Name)
		}
		if col.Default.Kind() != col.Kind {
			return nil, fmt.Errorf("column %q: default is %s, want %s", col.Name, col.Default.Kind(), col.Kind)
		}
		col.Categories = slices.Clone(col.Categories)
		s.columns[i] = col
		s.index[col.Name] = i
	}
	return s, nil
}

// Version returns the schema version.
func (s *Schema) Version() string { return s.version }

// Len returns the number of columns.
func (s *Schema) Len() int { return len(s.columns) }

// Columns returns a copy of the columns in order.
func (s *Schema) Columns() []Column {
	out := make([]Column, len(s.columns))
	for i, col := range s.columns {
		col.Categories = slices.Clone(col.Categories)
		out[i] = col
	}
	return out
}

// Names returns the column names in order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.columns))
	for i, col := range s.columns {
		names[i] = col.Name
	}
	return names
}

// Index returns the position of a column, or -1.
func (s *Schema) Index(name string) int {
	if i, ok := s.index[name]; ok {
		return i
	}
	return -1
}

// Lookup returns the named column.
func (s *Schema) Lookup(name string) (Column, bool) {
	i, ok := s.index[name]
	if !ok {
		return Column{}, false
	}
	return s.columns[i], true
}

// Allows reports whether a categorical column accepts value as an override.
// The unknown category is only ever the untouched default.
func (s *Schema) Allows(name, value string) bool {
	col, ok := s.Lookup(name)
	if !ok || col.Kind != Categorical {
		return false
	}
	return slices.Contains(col.Categories, value)
}

// Defaults returns the default value table as a record.
func (s *Schema) Defaults() Record {
	values := make([]Value, len(s.columns))
	for i, col := range s.columns {
		values[i] = col.Default
	}
	return Record{schema: s, values: values}
}

// Compare returns an error wrapping ErrSchemaMismatch describing the first
// difference between s and other.
func (s *Schema) Compare(other *Schema) error {
	if s.version != other.version {
		return fmt.Errorf("%w: version %q, want %q", ErrSchemaMismatch, other.version, s.version)
	}
	return CompareColumns(s, other.Columns())
}

// CompareColumns checks that columns match s by name, order and kind.
func CompareColumns(s *Schema, columns []Column) error {
	if len(columns) != len(s.columns) {
		return fmt.Errorf("%w: %d columns, want %d", ErrSchemaMismatch, len(columns), len(s.columns))
	}
	for i, want := range s.columns {
		got := columns[i]
		if got.Name != want.Name {
			return fmt.Errorf("%w: column %d is %q, want %q", ErrSchemaMismatch, i, got.Name, want.Name)
		}
		if got.Kind != want.Kind {
			return fmt.Errorf("%w: column %q is %s, want %s", ErrSchemaMismatch, got.Name, got.Kind, want.Kind)
		}
	}
	return nil
}

// knownDistricts are the Bangkok districts present in the training set.
var knownDistricts = []string{
	"Bang Kapi", "Huai Khwang", "Bangkok Noi", "Prawet", "Bang Sue",
	"Khlong Toei", "Chatuchak", "Lat Phrao", "Bang Phlat", "Phaya Thai",
	"Phra Khanong", "Sathon", "Watthana", "Pathum Wan", "Suan Luang",
	"Ratchathewi", "Din Daeng", "Bang Khen", "Don Mueang", "Thon Buri",
	"Khlong San", "Bang Rak", "Yan Nawa", "Chom Thong", "Dusit",
	"Phasi Charoen", "Saphan Sung", "Bang Kho Laem", "Lak Si",
}

// amenityColumns lists the binary amenity flags in schema order.
var amenityColumns = []string{
	ColElevator, ColParking, ColSecurity, ColCCTV, ColPool, ColSauna,
	ColGym, ColGarden, ColPlayground, ColShop, ColRestaurant, ColWifi,
}

var v4 = mustSchema(NewSchema(SchemaVersion, v4Columns()...))

func v4Columns() []Column {
	numeric := func(name string) Column {
		return Column{Name: name, Kind: Numeric, Default: Num(0)}
	}

	cols := []Column{
		numeric(ColLatitude),
		numeric(ColLongitude),
		numeric(ColYearBuilt),
		numeric(ColProjArea),
		numeric(ColNbrFloors),
		numeric(ColUnits),
	}
	for _, name := range amenityColumns {
		cols = append(cols, numeric(name))
	}
	cols = append(cols,
		numeric(ColDistNearestStation),
		numeric(ColPolicyRate),
		numeric(ColUnemploymentCountK),
		Column{
			Name:       ColDistrict,
			Kind:       Categorical,
			Default:    Cat(UnknownCategory),
			Categories: knownDistricts,
		},
	)
	return cols
}

func mustSchema(s *Schema, err error) *Schema {
	if err != nil {
		panic(err)
	}
	return s
}

// V4 returns the schema the current model artifacts are trained on.
func V4() *Schema { return v4 }

// Defaults returns the V4 default value table: every numeric column 0.0 and
// district set to the unknown category.
func Defaults() Record { return v4.Defaults() }

// KnownDistricts returns the known districts sorted alphabetically.
func KnownDistricts() []string {
	out := slices.Clone(knownDistricts)
	sort.Strings(out)
	return out
}

// IsKnownDistrict reports whether name is one of the training-set districts.
func IsKnownDistrict(name string) bool {
	return slices.Contains(knownDistricts, name)
}

// AmenityColumns returns the amenity flag columns in schema order.
func AmenityColumns() []string { return slices.Clone(amenityColumns) }
