package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/randytsao24/condoprice/internal/features"
)

func readRows(t *testing.T, data []byte) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	return rows
}

func TestRecordsXLSX(t *testing.T) {
	in := features.DefaultFormInput()
	in.District = "Sathon"
	rec, err := in.Record()
	require.NoError(t, err)

	data, err := RecordsXLSX([]features.Record{rec}, nil)
	require.NoError(t, err)

	rows := readRows(t, data)
	require.Len(t, rows, 2)
	assert.Equal(t, features.V4().Names(), rows[0])

	got := rows[1]
	require.Len(t, got, 22)
	assert.Equal(t, "13.75", got[features.V4().Index(features.ColLatitude)])
	assert.Equal(t, "30", got[features.V4().Index(features.ColNbrFloors)])
	assert.Equal(t, "1", got[features.V4().Index(features.ColPool)])
	assert.Equal(t, "0", got[features.V4().Index(features.ColSauna)])
	assert.Equal(t, "Sathon", got[21])
}

func TestRecordsXLSXWithPrices(t *testing.T) {
	a, err := features.Assemble(features.Overrides{features.ColUnits: features.Num(10)})
	require.NoError(t, err)
	b := features.Defaults()

	data, err := RecordsXLSX([]features.Record{a, b}, []float64{1500000, 2500000})
	require.NoError(t, err)

	rows := readRows(t, data)
	require.Len(t, rows, 3)
	assert.Equal(t, PriceHeader, rows[0][len(rows[0])-1])
	assert.Equal(t, "1500000", rows[1][22])
	assert.Equal(t, "2500000", rows[2][22])
	assert.Equal(t, features.UnknownCategory, rows[2][21])
}

func TestRecordsXLSXErrors(t *testing.T) {
	_, err := RecordsXLSX(nil, nil)
	assert.ErrorIs(t, err, ErrNoRecords)

	_, err = RecordsXLSX([]features.Record{features.Defaults()}, []float64{1, 2})
	assert.Error(t, err)
}
