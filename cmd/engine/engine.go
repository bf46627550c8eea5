// Package engine compares two tabular datasets with the same logical
// schema and reports which columns and rows diverge, preserving each
// row's original position in its source table.
//
// The pipeline is a linear, synchronous sequence of pure
// transformations: tag rows with their source position, validate the
// column-name sets, reconcile per-column value representations, align
// rows by key (or full content), detect per-column null-aware
// mismatches, and aggregate the report. The engine performs no I/O and
// holds no state across invocations.
package engine

import (
	"fmt"
	"sort"
)

// Options configures a comparison.
type Options struct {
	// Keys names the columns used for row alignment. When empty, rows
	// align by their full data content: tables containing the same
	// multiset of rows in different physical order produce zero diffs.
	Keys []string

	// Progress, when non-nil, is invoked after each data column is
	// checked with the number of columns done and the total. It is
	// purely cooperative and never affects the computed result.
	Progress func(done, total int)
}

// Compare runs the full pipeline over two raw tables and returns the
// report. It never panics across this boundary; every failure mode is
// a Status value on the Result.
func Compare(a, b *Table, opts Options) *Result {
	// Tag before anything can reorder rows, so the tag reflects the
	// true source position.
	ta := a.WithRowTag(TagColumnA)
	tb := b.WithRowTag(TagColumnB)

	if diff := schemaDiff(ta, tb); len(diff) > 0 {
		return &Result{
			Status:     StatusStructuralMismatch,
			Message:    fmt.Sprintf("column sets differ: %v", diff),
			SchemaDiff: diff,
			Diffs:      map[string]ColumnDiff{},
		}
	}

	ta, tb = normalizeTypes(ta, tb)

	ta, tb, sortRes := alignTables(ta, tb, opts.Keys)
	if sortRes != nil {
		return sortRes
	}

	if ta.NumRows() != tb.NumRows() {
		return &Result{
			Status:    StatusSizeMismatch,
			Message:   fmt.Sprintf("row counts differ: %d vs %d", ta.NumRows(), tb.NumRows()),
			RowCountA: ta.NumRows(),
			RowCountB: tb.NumRows(),
			Diffs:     map[string]ColumnDiff{},
		}
	}

	globalMask, diffColumns, diffs := detectDiffs(ta, tb, opts.Progress)

	result := &Result{
		Status:      StatusSuccess,
		TotalRows:   ta.NumRows(),
		DiffColumns: diffColumns,
		Diffs:       diffs,
	}
	for _, hit := range globalMask {
		if hit {
			result.RowsWithDiffs++
		}
	}
	if result.RowsWithDiffs > 0 {
		result.FullRowsA = ta.filterRows(globalMask)
		result.FullRowsB = tb.filterRows(globalMask)
	}
	return result
}

// schemaDiff returns the sorted symmetric difference of the two
// data-column name sets. Column order is irrelevant; only the name set
// matters.
func schemaDiff(a, b *Table) []string {
	namesA := make(map[string]bool)
	for _, name := range a.DataColumnNames() {
		namesA[name] = true
	}
	namesB := make(map[string]bool)
	for _, name := range b.DataColumnNames() {
		namesB[name] = true
	}

	var diff []string
	for name := range namesA {
		if !namesB[name] {
			diff = append(diff, name)
		}
	}
	for name := range namesB {
		if !namesA[name] {
			diff = append(diff, name)
		}
	}
	sort.Strings(diff)
	return diff
}
