// Package export renders assembled feature records as spreadsheets.
package export

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/randytsao24/condoprice/internal/features"
)

// SheetName is the worksheet holding the records.
const SheetName = "Record"

// PriceHeader labels the optional trailing price column.
const PriceHeader = "estimated_price"

var ErrNoRecords = errors.New("no records to export")

// RecordsXLSX writes records as one header row of column names followed by
// one row per record, in schema order. When prices is non-nil it must have
// one entry per record and is appended as a final column.
func RecordsXLSX(records []features.Record, prices []float64) ([]byte, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	if prices != nil && len(prices) != len(records) {
		return nil, fmt.Errorf("got %d prices for %d records", len(prices), len(records))
	}
	names := records[0].Names()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	header := make([]any, 0, len(names)+1)
	for _, n := range names {
		header = append(header, n)
	}
	if prices != nil {
		header = append(header, PriceHeader)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("xlsx header: %w", err)
	}

	for i, rec := range records {
		if rec.Len() != len(names) {
			return nil, fmt.Errorf("%w: record %d has %d columns, want %d", features.ErrSchemaMismatch, i, rec.Len(), len(names))
		}
		row := rec.Row()
		if prices != nil {
			row = append(row, prices[i])
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("xlsx row %d: %w", i, err)
		}
	}

	last, _ := excelize.ColumnNumberToName(len(header))
	_ = f.SetColWidth(SheetName, "A", last, 14)
	_ = f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
