package loaders

import (
	"errors"
	"fmt"
	"io"

	"github.com/sheetdiff/sheetdiff/cmd/engine"
	"github.com/xuri/excelize/v2"
)

// ErrNoSheets is returned when a workbook contains no sheets
var ErrNoSheets = errors.New("workbook has no sheets")

// LoadXLSX parses the first sheet of an Excel workbook into a table.
// Cells come back from the workbook as display strings and go through
// the same type ladder as CSV cells.
func LoadXLSX(r io.Reader) (*engine.Table, error) {
	workbook, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}

	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyInput
	}

	return buildTable(rows)
}
