package model

import (
	"fmt"
	"slices"

	"github.com/randytsao24/condoprice/internal/features"
)

// Predictor maps a feature table to one prediction per row.
type Predictor interface {
	Predict(table features.Table) ([]float64, error)
}

// Pipeline is a loaded artifact: a preprocessor followed by a regressor.
type Pipeline struct {
	name          string
	version       string
	schemaVersion string
	columns       []features.Column
	prep          preprocessor
	reg           regressor
}

// Load reads the artifact at path, builds its pipeline and checks that it was
// fit on schema. Any failure means the service cannot answer requests.
func Load(path string, schema *features.Schema) (*Pipeline, error) {
	a, err := ReadArtifact(path)
	if err != nil {
		return nil, err
	}
	p, err := Build(a)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := p.CheckSchema(schema); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Build constructs a pipeline from a decoded artifact.
func Build(a *Artifact) (*Pipeline, error) {
	cols := make([]features.Column, len(a.Columns))
	for i, c := range a.Columns {
		cols[i] = features.Column{Name: c.Name, Kind: c.Kind}
	}

	prep, err := newPreprocessor(cols, a.Preprocessor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}
	reg, err := newRegressor(a.Regressor, prep.width())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}

	return &Pipeline{
		name:          a.Name,
		version:       a.Version,
		schemaVersion: a.SchemaVersion,
		columns:       cols,
		prep:          prep,
		reg:           reg,
	}, nil
}

// Name returns the artifact name.
func (p *Pipeline) Name() string { return p.name }

// Version returns the artifact version.
func (p *Pipeline) Version() string { return p.version }

// SchemaVersion returns the schema version the pipeline was fit on.
func (p *Pipeline) SchemaVersion() string { return p.schemaVersion }

// Columns returns the input column names in fit order.
func (p *Pipeline) Columns() []string {
	names := make([]string, len(p.columns))
	for i, c := range p.columns {
		names[i] = c.Name
	}
	return names
}

// CheckSchema reports whether the pipeline's input layout matches schema.
func (p *Pipeline) CheckSchema(schema *features.Schema) error {
	if p.schemaVersion != schema.Version() {
		return fmt.Errorf("%w: artifact fit on schema %q, service uses %q", features.ErrSchemaMismatch, p.schemaVersion, schema.Version())
	}
	if err := features.CompareColumns(schema, p.columns); err != nil {
		return err
	}
	for _, col := range schema.Columns() {
		if col.Kind != features.Categorical {
			continue
		}
		for _, c := range col.Categories {
			if !p.prep.knows(col.Name, c) {
				return fmt.Errorf("%w: artifact encoder for %q lacks category %q", features.ErrSchemaMismatch, col.Name, c)
			}
		}
	}
	return nil
}

// Predict runs every row of table through the pipeline.
func (p *Pipeline) Predict(table features.Table) ([]float64, error) {
	if !slices.Equal(table.Columns(), p.Columns()) {
		return nil, fmt.Errorf("%w: table columns do not match the artifact", features.ErrSchemaMismatch)
	}
	rows := table.Rows()
	out := make([]float64, len(rows))
	x := make([]float64, p.prep.width())
	for i, rec := range rows {
		p.prep.transform(rec, x)
		out[i] = p.reg.predict(x)
	}
	return out, nil
}

// preprocessor standardizes numeric columns and one-hot encodes categorical
// ones. The encoded vector holds the numeric block first, then one block per
// categorical column, each in column order.
type preprocessor struct {
	numeric     []int
	mean        []float64
	scale       []float64
	categorical []int
	catNames    []string
	encoders    []map[string]int
	offsets     []int
	size        int
}

func newPreprocessor(cols []features.Column, spec PreprocessorSpec) (preprocessor, error) {
	var p preprocessor
	for i, c := range cols {
		switch c.Kind {
		case features.Numeric:
			p.numeric = append(p.numeric, i)
		case features.Categorical:
			p.categorical = append(p.categorical, i)
		default:
			return p, fmt.Errorf("column %q has unknown kind %q", c.Name, c.Kind)
		}
	}

	if len(spec.Numeric.Mean) != len(p.numeric) || len(spec.Numeric.Scale) != len(p.numeric) {
		return p, fmt.Errorf("scaler has %d means and %d scales for %d numeric columns",
			len(spec.Numeric.Mean), len(spec.Numeric.Scale), len(p.numeric))
	}
	p.mean = slices.Clone(spec.Numeric.Mean)
	p.scale = make([]float64, len(spec.Numeric.Scale))
	for i, s := range spec.Numeric.Scale {
		if s == 0 {
			s = 1
		}
		p.scale[i] = s
	}

	p.size = len(p.numeric)
	for _, idx := range p.categorical {
		name := cols[idx].Name
		enc, ok := spec.Categorical[name]
		if !ok {
			return p, fmt.Errorf("no encoder for categorical column %q", name)
		}
		lookup := make(map[string]int, len(enc.Categories))
		for j, c := range enc.Categories {
			if _, dup := lookup[c]; dup {
				return p, fmt.Errorf("encoder for %q repeats category %q", name, c)
			}
			lookup[c] = j
		}
		p.catNames = append(p.catNames, name)
		p.encoders = append(p.encoders, lookup)
		p.offsets = append(p.offsets, p.size)
		p.size += len(enc.Categories)
	}
	return p, nil
}

func (p preprocessor) width() int { return p.size }

func (p preprocessor) knows(column, category string) bool {
	k := slices.Index(p.catNames, column)
	if k < 0 {
		return false
	}
	_, ok := p.encoders[k][category]
	return ok
}

// transform encodes rec into x, which must have width() elements.
func (p preprocessor) transform(rec features.Record, x []float64) {
	clear(x)
	for j, idx := range p.numeric {
		x[j] = (rec.At(idx).Float() - p.mean[j]) / p.scale[j]
	}
	for k, idx := range p.categorical {
		if pos, ok := p.encoders[k][rec.At(idx).Str()]; ok {
			x[p.offsets[k]+pos] = 1
		}
	}
}
