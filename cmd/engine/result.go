package engine

import (
	"encoding/json"
	"fmt"
)

// Status is the terminal state of a comparison. Every status is final:
// each reflects a property of the input data that only the caller can
// remedy, so there is no retry path.
type Status int

const (
	// StatusSuccess means the pipeline ran to completion. Diffs may
	// still exist; callers must check the diff list, not just the
	// status, to know whether the tables matched.
	StatusSuccess Status = iota
	// StatusStructuralMismatch means the data-column name sets differ
	StatusStructuralMismatch
	// StatusSizeMismatch means the aligned row counts differ
	StatusSizeMismatch
	// StatusSortError means a sort key column was missing or its
	// values were not mutually comparable
	StatusSortError
)

var statusNames = map[Status]string{
	StatusSuccess:            "success",
	StatusStructuralMismatch: "structural_mismatch",
	StatusSizeMismatch:       "size_mismatch",
	StatusSortError:          "sort_error",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// ExitCode maps a status to the process exit code of the compare
// command: 0 success, 1 structural mismatch, 2 size mismatch, 3 sort
// error.
func (s Status) ExitCode() int {
	switch s {
	case StatusStructuralMismatch:
		return 1
	case StatusSizeMismatch:
		return 2
	case StatusSortError:
		return 3
	default:
		return 0
	}
}

// MarshalJSON encodes the status as its name
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a status from its name
func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for status, statusName := range statusNames {
		if statusName == name {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("unknown status: %q", name)
}

// DiffRecord captures one mismatched cell of one column at one aligned
// row position. Row positions are the original source lines recorded by
// the tag columns; values are the values as actually compared, i.e.
// post-normalization.
type DiffRecord struct {
	RowA   int64 `json:"original_row_a"`
	RowB   int64 `json:"original_row_b"`
	ValueA Value `json:"value_a"`
	ValueB Value `json:"value_b"`
}

// ColumnDiff aggregates the mismatches of a single column
type ColumnDiff struct {
	Count   int          `json:"count"`
	Records []DiffRecord `json:"records"`
}

// Result is the full comparison report. It is a pure function of the
// two input tables and the key list; no hidden state affects it.
type Result struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`

	// SchemaDiff carries the sorted symmetric difference of the two
	// data-column name sets when Status is StatusStructuralMismatch.
	SchemaDiff []string `json:"schema_diff,omitempty"`

	// RowCountA/RowCountB carry both row counts when Status is
	// StatusSizeMismatch.
	RowCountA int `json:"row_count_a,omitempty"`
	RowCountB int `json:"row_count_b,omitempty"`

	// SortColumns names the offending column(s) when Status is
	// StatusSortError.
	SortColumns []string `json:"sort_columns,omitempty"`

	TotalRows     int                   `json:"total_rows"`
	DiffColumns   []string              `json:"diff_columns"`
	Diffs         map[string]ColumnDiff `json:"diffs"`
	RowsWithDiffs int                   `json:"rows_with_diffs"`

	// FullRowsA/FullRowsB are both tables restricted to the rows with
	// at least one mismatch, all columns retained (tags included) for
	// side-by-side inspection. Nil when no row differs.
	FullRowsA *Table `json:"full_rows_a,omitempty"`
	FullRowsB *Table `json:"full_rows_b,omitempty"`
}

// Equal reports whether the comparison found no divergence. Only
// meaningful for StatusSuccess results.
func (r *Result) Equal() bool {
	return r.Status == StatusSuccess && len(r.DiffColumns) == 0
}
