// Package model loads trained price-model artifacts and runs predictions
// over feature tables.
package model

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"gopkg.in/yaml.v3"

	"github.com/randytsao24/condoprice/internal/features"
)

var (
	ErrArtifactNotFound = errors.New("model artifact not found")
	ErrInvalidArtifact  = errors.New("invalid model artifact")
	ErrUnknownFormat    = errors.New("unknown artifact format")
)

//go:embed artifact.schema.json
var artifactSchemaJSON []byte

var artifactSchema = jsonschema.MustCompileString("artifact.schema.json", string(artifactSchemaJSON))

// Artifact is the serialized form of a trained pipeline.
type Artifact struct {
	Name          string           `json:"name" yaml:"name"`
	Version       string           `json:"version" yaml:"version"`
	SchemaVersion string           `json:"schema_version" yaml:"schema_version"`
	Columns       []ArtifactColumn `json:"columns" yaml:"columns"`
	Preprocessor  PreprocessorSpec `json:"preprocessor" yaml:"preprocessor"`
	Regressor     RegressorSpec    `json:"regressor" yaml:"regressor"`
}

// ArtifactColumn is one input column the pipeline was fit on.
type ArtifactColumn struct {
	Name string        `json:"name" yaml:"name"`
	Kind features.Kind `json:"kind" yaml:"kind"`
}

// PreprocessorSpec holds the fitted scaling and encoding parameters.
type PreprocessorSpec struct {
	Numeric     ScalerSpec             `json:"numeric" yaml:"numeric"`
	Categorical map[string]EncoderSpec `json:"categorical,omitempty" yaml:"categorical,omitempty"`
}

// ScalerSpec standardizes numeric columns: (x - mean) / scale.
type ScalerSpec struct {
	Mean  []float64 `json:"mean" yaml:"mean"`
	Scale []float64 `json:"scale" yaml:"scale"`
}

// EncoderSpec one-hot encodes a categorical column. Values outside
// Categories encode as all zeros.
type EncoderSpec struct {
	Categories []string `json:"categories" yaml:"categories"`
}

// RegressorSpec is either a linear model or a forest of regression trees.
type RegressorSpec struct {
	Type      string     `json:"type" yaml:"type"`
	Intercept float64    `json:"intercept,omitempty" yaml:"intercept,omitempty"`
	Coef      []float64  `json:"coef,omitempty" yaml:"coef,omitempty"`
	Trees     []TreeSpec `json:"trees,omitempty" yaml:"trees,omitempty"`
}

// TreeSpec is a flattened regression tree; node 0 is the root.
type TreeSpec struct {
	Nodes []NodeSpec `json:"nodes" yaml:"nodes"`
}

// NodeSpec is a split node, or a leaf when Left and Right are both -1.
type NodeSpec struct {
	Feature   int     `json:"feature" yaml:"feature"`
	Threshold float64 `json:"threshold" yaml:"threshold"`
	Left      int     `json:"left" yaml:"left"`
	Right     int     `json:"right" yaml:"right"`
	Value     float64 `json:"value" yaml:"value"`
}

// Format is an artifact encoding.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatProtobuf Format = "pb"
)

// FormatOf picks the encoding from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".pb", ".binpb":
		return FormatProtobuf, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
}

// ReadArtifact reads and validates the artifact at path.
func ReadArtifact(path string) (*Artifact, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s (export the trained pipeline to this path or point MODEL_PATH at it)", ErrArtifactNotFound, path)
		}
		return nil, fmt.Errorf("reading model artifact %s: %w", path, err)
	}
	a, err := DecodeArtifact(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

// DecodeArtifact decodes data in the given format and validates it against
// the artifact JSON Schema.
func DecodeArtifact(data []byte, format Format) (*Artifact, error) {
	doc, err := toJSON(data, format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}

	var v any
	if err := json.Unmarshal(doc, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}
	if err := artifactSchema.Validate(v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}

	var a Artifact
	if err := json.Unmarshal(doc, &a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}
	return &a, nil
}

// toJSON normalizes any supported encoding to JSON bytes.
func toJSON(data []byte, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return data, nil
	case FormatYAML:
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing yaml: %w", err)
		}
		return json.Marshal(doc)
	case FormatProtobuf:
		var st structpb.Struct
		if err := proto.Unmarshal(data, &st); err != nil {
			return nil, fmt.Errorf("parsing protobuf struct: %w", err)
		}
		return json.Marshal(st.AsMap())
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// EncodeArtifact serializes a in the given format.
func EncodeArtifact(a *Artifact, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(a, "", "  ")
	case FormatYAML:
		return yaml.Marshal(a)
	case FormatProtobuf:
		doc, err := json.Marshal(a)
		if err != nil {
			return nil, err
		}
		var m map[string]any
		if err := json.Unmarshal(doc, &m); err != nil {
			return nil, err
		}
		st, err := structpb.NewStruct(m)
		if err != nil {
			return nil, fmt.Errorf("building protobuf struct: %w", err)
		}
		return proto.Marshal(st)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// WriteArtifact encodes a by the extension of path and writes it.
func WriteArtifact(path string, a *Artifact) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := EncodeArtifact(a, format)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
