package loaders

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sheetdiff/sheetdiff/cmd/engine"
)

// LoadCSV parses a CSV stream into a table. The first record is the
// header. Comma is the primary delimiter; when the header parses as a
// single field that itself contains semicolons, the stream is reparsed
// with a semicolon delimiter (the convention of European spreadsheet
// exports).
func LoadCSV(r io.Reader) (*engine.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV input: %w", err)
	}

	records, err := parseCSV(data, ',')
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrEmptyInput
	}

	if len(records[0]) == 1 && strings.Contains(records[0][0], ";") {
		records, err = parseCSV(data, ';')
		if err != nil {
			return nil, err
		}
	}

	return buildTable(records)
}

// parseCSV reads every record with the given delimiter, tolerating
// ragged record lengths. Short rows are padded to header width during
// table construction.
func parseCSV(data []byte, delimiter rune) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return records, nil
}

// buildTable converts header-plus-rows string records into a typed
// table: each cell is parsed down a fixed ladder, then each column's
// cells are unified to a single kind.
func buildTable(records [][]string) (*engine.Table, error) {
	headers := records[0]
	seen := make(map[string]bool, len(headers))
	for _, h := range headers {
		if seen[h] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateHeader, h)
		}
		seen[h] = true
	}

	cells := make([][]engine.Value, len(headers))
	for i := range cells {
		cells[i] = make([]engine.Value, 0, len(records)-1)
	}
	for _, record := range records[1:] {
		for i := range headers {
			raw := ""
			if i < len(record) {
				raw = record[i]
			}
			cells[i] = append(cells[i], convertCell(raw))
		}
	}

	columns := make([]engine.Column, len(headers))
	for i, name := range headers {
		columns[i] = unifyColumn(name, cells[i])
	}
	return engine.NewTable(columns...)
}

// convertCell parses a raw cell down the type ladder: empty is null,
// then integer, float, boolean, and finally text. Booleans accept only
// the literal words true/false so that 0 and 1 stay integers.
func convertCell(raw string) engine.Value {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return engine.Null()
	}

	if intVal, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return engine.Int(intVal)
	}

	if floatVal, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return engine.Float(floatVal)
	}

	if strings.EqualFold(trimmed, "true") {
		return engine.Bool(true)
	}
	if strings.EqualFold(trimmed, "false") {
		return engine.Bool(false)
	}

	return engine.Text(raw)
}

// unifyColumn settles a column on a single kind:
//
//   - all nulls stay a null column;
//   - integers promote to float when any float is present;
//   - uniform integer, float, or bool cells keep their kind;
//   - any text cell, or any other kind mix, demotes the whole column
//     to text.
func unifyColumn(name string, values []engine.Value) engine.Column {
	var hasInt, hasFloat, hasBool, hasText bool
	for _, v := range values {
		switch v.Kind() {
		case engine.KindInteger:
			hasInt = true
		case engine.KindFloat:
			hasFloat = true
		case engine.KindBool:
			hasBool = true
		case engine.KindText:
			hasText = true
		}
	}

	switch {
	case !hasInt && !hasFloat && !hasBool && !hasText:
		return engine.Column{Name: name, Kind: engine.KindNull, Values: values}
	case hasText, hasBool && (hasInt || hasFloat):
		return engine.Column{Name: name, Kind: engine.KindText, Values: toText(values)}
	case hasBool:
		return engine.Column{Name: name, Kind: engine.KindBool, Values: values}
	case hasFloat:
		return engine.Column{Name: name, Kind: engine.KindFloat, Values: toFloat(values)}
	default:
		return engine.Column{Name: name, Kind: engine.KindInteger, Values: values}
	}
}

func toText(values []engine.Value) []engine.Value {
	out := make([]engine.Value, len(values))
	for i, v := range values {
		switch {
		case v.IsNull():
			out[i] = v
		case v.Kind() == engine.KindText:
			out[i] = v
		default:
			out[i] = engine.Text(v.String())
		}
	}
	return out
}

func toFloat(values []engine.Value) []engine.Value {
	out := make([]engine.Value, len(values))
	for i, v := range values {
		if v.Kind() == engine.KindInteger {
			out[i] = engine.Float(float64(v.Int()))
		} else {
			out[i] = v
		}
	}
	return out
}
