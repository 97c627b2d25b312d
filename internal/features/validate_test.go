package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator(t *testing.T) {
	v, err := NewValidator(V4())
	require.NoError(t, err)

	rec, err := DefaultFormInput().Record()
	require.NoError(t, err)
	assert.NoError(t, v.Validate(rec))
	assert.NoError(t, v.Validate(Defaults()))
}

func TestValidatorRejectsForeignRecord(t *testing.T) {
	v, err := NewValidator(V4())
	require.NoError(t, err)

	other, err := NewSchema(SchemaVersion, Column{Name: "units", Kind: Numeric, Default: Num(0)})
	require.NoError(t, err)

	err = v.Validate(other.Defaults())
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestJSONSchemaShape(t *testing.T) {
	doc := V4().JSONSchema()

	assert.Equal(t, false, doc["additionalProperties"])
	assert.Equal(t, V4().Names(), doc["required"])

	props := doc["properties"].(map[string]any)
	require.Len(t, props, V4().Len())
	district := props["district"].(map[string]any)
	enum := district["enum"].([]string)
	assert.Contains(t, enum, "None")
	assert.Contains(t, enum, "Sathon")
	assert.Len(t, enum, len(KnownDistricts())+1)
}
