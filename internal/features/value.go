package features

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Value is a single cell of a feature record: a float for numeric columns or
// a string for categorical ones.
type Value struct {
	kind Kind
	num  float64
	str  string
}

// Num returns a numeric value.
func Num(f float64) Value { return Value{kind: Numeric, num: f} }

// Flag returns a binary numeric value: true is 1.0, false is 0.0.
func Flag(b bool) Value {
	if b {
		return Num(1)
	}
	return Num(0)
}

// Cat returns a categorical value.
func Cat(s string) Value { return Value{kind: Categorical, str: s} }

// Kind returns the value's kind. The zero Value has an empty kind.
func (v Value) Kind() Kind { return v.kind }

// Float returns the numeric payload, or 0 for categorical values.
func (v Value) Float() float64 { return v.num }

// Str returns the categorical payload, or "" for numeric values.
func (v Value) Str() string { return v.str }

// Interface returns the payload as float64 or string.
func (v Value) Interface() any {
	if v.kind == Categorical {
		return v.str
	}
	return v.num
}

func (v Value) String() string {
	switch v.kind {
	case Numeric:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case Categorical:
		return v.str
	}
	return "<invalid>"
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case Numeric:
		return json.Marshal(v.num)
	case Categorical:
		return json.Marshal(v.str)
	}
	return []byte("null"), nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := valueOf(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func valueOf(raw any) (Value, error) {
	switch x := raw.(type) {
	case float64:
		return Num(x), nil
	case int:
		return Num(float64(x)), nil
	case bool:
		return Flag(x), nil
	case string:
		return Cat(x), nil
	}
	return Value{}, fmt.Errorf("unsupported value %v (%T)", raw, raw)
}

// Overrides maps column names to user-supplied values.
type Overrides map[string]Value

// OverridesFromMap converts decoded JSON into overrides. Numbers become
// numeric values, booleans become flags and strings become categories.
func OverridesFromMap(raw map[string]any) (Overrides, error) {
	out := make(Overrides, len(raw))
	for name, x := range raw {
		v, err := valueOf(x)
		if err != nil {
			return nil, fmt.Errorf("override %q: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}
