package features

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Placeholders for the columns the form does not expose. They should be the
// training-set means; until those are published they are rough Bangkok
// centre values.
const (
	DefaultLatitude  = 13.75
	DefaultLongitude = 100.5
	DefaultProjArea  = 2000.0
)

// Bounds describes the range a form widget accepts. A zero Step means any
// value in range.
type Bounds struct {
	Min  float64
	Max  float64
	Step float64
}

// Contains reports whether x is in range and on a step boundary.
func (b Bounds) Contains(x float64) bool {
	if math.IsNaN(x) || x < b.Min || x > b.Max {
		return false
	}
	if b.Step == 0 {
		return true
	}
	steps := (x - b.Min) / b.Step
	return math.Abs(steps-math.Round(steps)) < 1e-9
}

func (b Bounds) describe() string {
	return fmt.Sprintf("must be between %s and %s", fmtBound(b.Min), fmtBound(b.Max))
}

func fmtBound(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// Widget bounds.
var (
	FloorsBounds       = Bounds{Min: 1, Max: 60, Step: 1}
	YearBuiltBounds    = Bounds{Min: 1990, Max: 2025, Step: 1}
	DistanceBounds     = Bounds{Min: 0, Max: 20}
	UnitsBounds        = Bounds{Min: 1, Max: 2000, Step: 1}
	PolicyRateBounds   = Bounds{Min: 0.5, Max: 5, Step: 0.25}
	UnemploymentBounds = Bounds{Min: 0, Max: 2000}
)

// Amenities are the project's facility toggles.
type Amenities struct {
	Elevator   bool
	Parking    bool
	Security   bool
	CCTV       bool
	Pool       bool
	Sauna      bool
	Gym        bool
	Garden     bool
	Playground bool
	Shop       bool
	Restaurant bool
	Wifi       bool
}

// Flags returns each amenity column with its state, in schema order.
func (a Amenities) Flags() []AmenityFlag {
	return []AmenityFlag{
		{ColElevator, a.Elevator},
		{ColParking, a.Parking},
		{ColSecurity, a.Security},
		{ColCCTV, a.CCTV},
		{ColPool, a.Pool},
		{ColSauna, a.Sauna},
		{ColGym, a.Gym},
		{ColGarden, a.Garden},
		{ColPlayground, a.Playground},
		{ColShop, a.Shop},
		{ColRestaurant, a.Restaurant},
		{ColWifi, a.Wifi},
	}
}

// With returns a copy with the named amenity set to on.
func (a Amenities) With(name string, on bool) (Amenities, error) {
	switch name {
	case ColElevator:
		a.Elevator = on
	case ColParking:
		a.Parking = on
	case ColSecurity:
		a.Security = on
	case ColCCTV:
		a.CCTV = on
	case ColPool:
		a.Pool = on
	case ColSauna:
		a.Sauna = on
	case ColGym:
		a.Gym = on
	case ColGarden:
		a.Garden = on
	case ColPlayground:
		a.Playground = on
	case ColShop:
		a.Shop = on
	case ColRestaurant:
		a.Restaurant = on
	case ColWifi:
		a.Wifi = on
	default:
		return a, fmt.Errorf("unknown amenity %q", name)
	}
	return a, nil
}

// AmenityFlag pairs an amenity column with its state.
type AmenityFlag struct {
	Name string
	On   bool
}

// FormInput is a snapshot of one form submission.
type FormInput struct {
	NbrFloors          int
	YearBuilt          int
	DistNearestStation float64
	Units              int
	District           string
	PolicyRate         float64
	UnemploymentCountK float64
	Amenities          Amenities
}

// DefaultFormInput returns the values the form shows before any edits.
func DefaultFormInput() FormInput {
	return FormInput{
		NbrFloors:          30,
		YearBuilt:          2018,
		DistNearestStation: 1.5,
		Units:              150,
		District:           KnownDistricts()[0],
		PolicyRate:         1.75,
		UnemploymentCountK: 400,
		Amenities: Amenities{
			Elevator: true,
			Parking:  true,
			Security: true,
			CCTV:     true,
			Pool:     true,
			Gym:      true,
			Garden:   true,
			Wifi:     true,
		},
	}
}

// FieldErrors maps form fields to validation messages.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e[k]
	}
	return "invalid form input: " + strings.Join(parts, "; ")
}

var fieldBounds = map[string]Bounds{
	ColNbrFloors:          FloorsBounds,
	ColYearBuilt:          YearBuiltBounds,
	ColDistNearestStation: DistanceBounds,
	ColUnits:              UnitsBounds,
	ColPolicyRate:         PolicyRateBounds,
	ColUnemploymentCountK: UnemploymentBounds,
}

func (e FieldErrors) check(field string, x float64, b Bounds) {
	if b.Contains(x) {
		return
	}
	if b.Step != 0 && x >= b.Min && x <= b.Max {
		e[field] = fmt.Sprintf("must be a multiple of %s from %s", fmtBound(b.Step), fmtBound(b.Min))
		return
	}
	e[field] = b.describe()
}

// CheckBounds applies the widget bounds to numeric overrides of the columns
// the form exposes. Other columns and non-numeric values are left to Assemble.
func CheckBounds(overrides Overrides) error {
	errs := FieldErrors{}
	for field, b := range fieldBounds {
		v, ok := overrides[field]
		if !ok || v.Kind() != Numeric {
			continue
		}
		errs.check(field, v.Float(), b)
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Validate checks the snapshot against the widget bounds.
func (f FormInput) Validate() error {
	errs := FieldErrors{}
	errs.check(ColNbrFloors, float64(f.NbrFloors), FloorsBounds)
	errs.check(ColYearBuilt, float64(f.YearBuilt), YearBuiltBounds)
	errs.check(ColDistNearestStation, f.DistNearestStation, DistanceBounds)
	errs.check(ColUnits, float64(f.Units), UnitsBounds)
	errs.check(ColPolicyRate, f.PolicyRate, PolicyRateBounds)
	errs.check(ColUnemploymentCountK, f.UnemploymentCountK, UnemploymentBounds)
	if !IsKnownDistrict(f.District) {
		errs[ColDistrict] = fmt.Sprintf("unknown district %q", f.District)
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ParseForm reads a submitted form. Numeric fields are required; an amenity
// is on when its checkbox field is present.
func ParseForm(values url.Values) (FormInput, error) {
	var in FormInput
	errs := FieldErrors{}

	parseInt := func(field string, dst *int) {
		raw := strings.TrimSpace(values.Get(field))
		if raw == "" {
			errs[field] = "is required"
			return
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs[field] = "must be a whole number"
			return
		}
		*dst = n
	}
	parseFloat := func(field string, dst *float64) {
		raw := strings.TrimSpace(values.Get(field))
		if raw == "" {
			errs[field] = "is required"
			return
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			errs[field] = "must be a number"
			return
		}
		*dst = f
	}

	parseInt(ColNbrFloors, &in.NbrFloors)
	parseInt(ColYearBuilt, &in.YearBuilt)
	parseFloat(ColDistNearestStation, &in.DistNearestStation)
	parseInt(ColUnits, &in.Units)
	parseFloat(ColPolicyRate, &in.PolicyRate)
	parseFloat(ColUnemploymentCountK, &in.UnemploymentCountK)
	in.District = strings.TrimSpace(values.Get(ColDistrict))

	for _, name := range amenityColumns {
		if _, on := values[name]; on {
			in.Amenities, _ = in.Amenities.With(name, true)
		}
	}

	if err := in.Validate(); err != nil {
		for field, msg := range err.(FieldErrors) {
			if _, seen := errs[field]; !seen {
				errs[field] = msg
			}
		}
	}
	if len(errs) > 0 {
		return in, errs
	}
	return in, nil
}

// Overrides returns the override mapping for the snapshot, including the
// placeholder values for columns the form does not expose.
func (f FormInput) Overrides() Overrides {
	o := Overrides{
		ColNbrFloors:          Num(float64(f.NbrFloors)),
		ColYearBuilt:          Num(float64(f.YearBuilt)),
		ColDistNearestStation: Num(f.DistNearestStation),
		ColUnits:              Num(float64(f.Units)),
		ColDistrict:           Cat(f.District),
		ColUnemploymentCountK: Num(f.UnemploymentCountK),
		ColPolicyRate:         Num(f.PolicyRate),

		ColLatitude:  Num(DefaultLatitude),
		ColLongitude: Num(DefaultLongitude),
		ColProjArea:  Num(DefaultProjArea),
	}
	for _, a := range f.Amenities.Flags() {
		o[a.Name] = Flag(a.On)
	}
	return o
}

// Record assembles the snapshot into a V4 record.
func (f FormInput) Record() (Record, error) {
	return Assemble(f.Overrides())
}
