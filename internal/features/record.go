package features

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"
)

// Record assigns a value to every column of a schema, in schema order.
type Record struct {
	schema *Schema
	values []Value
}

// Assemble starts from the default value table and overwrites the columns
// present in overrides. Keys that are not schema columns are ignored.
func (s *Schema) Assemble(overrides Overrides) (Record, error) {
	rec := s.Defaults()
	for i, col := range s.columns {
		v, ok := overrides[col.Name]
		if !ok {
			continue
		}
		if v.Kind() != col.Kind {
			return Record{}, fmt.Errorf("%w: %q is %s, got %s", ErrKindMismatch, col.Name, col.Kind, kindName(v.Kind()))
		}
		if col.Kind == Categorical && !s.Allows(col.Name, v.Str()) {
			return Record{}, fmt.Errorf("%w: %s %q", ErrUnknownCategory, col.Name, v.Str())
		}
		rec.values[i] = v
	}
	return rec, nil
}

// UnknownKeys returns the override keys that are not schema columns, sorted.
func (s *Schema) UnknownKeys(overrides Overrides) []string {
	var unknown []string
	for name := range overrides {
		if _, ok := s.index[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// Assemble builds a V4 record from overrides.
func Assemble(overrides Overrides) (Record, error) { return v4.Assemble(overrides) }

// UnknownKeys returns the override keys that are not V4 columns.
func UnknownKeys(overrides Overrides) []string { return v4.UnknownKeys(overrides) }

func kindName(k Kind) string {
	if k == "" {
		return "empty"
	}
	return string(k)
}

// Schema returns the schema the record conforms to.
func (r Record) Schema() *Schema { return r.schema }

// Len returns the number of values.
func (r Record) Len() int { return len(r.values) }

// Names returns the column names in order.
func (r Record) Names() []string {
	if r.schema == nil {
		return nil
	}
	return r.schema.Names()
}

// At returns the i-th value.
func (r Record) At(i int) Value { return r.values[i] }

// Values returns a copy of the values in column order.
func (r Record) Values() []Value { return slices.Clone(r.values) }

// Value returns the value of the named column.
func (r Record) Value(name string) (Value, bool) {
	if r.schema == nil {
		return Value{}, false
	}
	i := r.schema.Index(name)
	if i < 0 {
		return Value{}, false
	}
	return r.values[i], true
}

// Float returns the numeric value of the named column, or 0.
func (r Record) Float(name string) float64 {
	v, _ := r.Value(name)
	return v.Float()
}

// Str returns the categorical value of the named column, or "".
func (r Record) Str(name string) string {
	v, _ := r.Value(name)
	return v.Str()
}

// Row returns the payloads in column order.
func (r Record) Row() []any {
	row := make([]any, len(r.values))
	for i, v := range r.values {
		row[i] = v.Interface()
	}
	return row
}

// Map returns the record as a name to payload map.
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r.values))
	for i, name := range r.Names() {
		m[name] = r.values[i].Interface()
	}
	return m
}

// MarshalJSON encodes the record as an object with keys in column order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.Names() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := r.values[i].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Table is the tabular predictor input: rows of records sharing one schema.
type Table struct {
	schema *Schema
	rows   []Record
}

var ErrEmptyTable = errors.New("table has no rows")

// NewTable builds a table from records conforming to s.
func NewTable(s *Schema, records ...Record) (Table, error) {
	if len(records) == 0 {
		return Table{}, ErrEmptyTable
	}
	for i, rec := range records {
		if rec.schema != s {
			return Table{}, fmt.Errorf("%w: row %d uses a different schema", ErrSchemaMismatch, i)
		}
	}
	return Table{schema: s, rows: slices.Clone(records)}, nil
}

// Schema returns the table's schema.
func (t Table) Schema() *Schema { return t.schema }

// Columns returns the column names in order.
func (t Table) Columns() []string {
	if t.schema == nil {
		return nil
	}
	return t.schema.Names()
}

// Rows returns the table's records.
func (t Table) Rows() []Record { return slices.Clone(t.rows) }

// Len returns the number of rows.
func (t Table) Len() int { return len(t.rows) }
