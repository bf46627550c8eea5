package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// incomparableError reports that two values inside a sort key column
// could not be ordered against each other.
type incomparableError struct {
	column string
	a, b   Kind
}

func (e *incomparableError) Error() string {
	return fmt.Sprintf("column %q holds incomparable kinds %s and %s", e.column, e.a, e.b)
}

// alignTables reorders both tables so that logically-corresponding
// rows occupy the same position. The sort key is the caller-supplied
// key columns, or, absent keys, the full ordered list of data columns:
// rows then order by their entire content, so equal multisets of rows
// align identically regardless of physical order.
//
// Two genuinely distinct but byte-identical rows are indistinguishable
// under content alignment and pair with each other arbitrarily (though
// stably); this is inherent to the approach, not a defect to resolve.
//
// A non-nil Result return is terminal (SortError).
func alignTables(a, b *Table, keys []string) (*Table, *Table, *Result) {
	keyNames := keys
	if len(keyNames) == 0 {
		keyNames = a.DataColumnNames()
	} else {
		var missing []string
		for _, key := range keyNames {
			_, inA := a.Column(key)
			_, inB := b.Column(key)
			if !inA || !inB {
				missing = append(missing, key)
			}
		}
		if len(missing) > 0 {
			return nil, nil, &Result{
				Status:      StatusSortError,
				Message:     fmt.Sprintf("sort key column(s) not found: %s", strings.Join(missing, ", ")),
				SortColumns: missing,
				Diffs:       map[string]ColumnDiff{},
			}
		}
	}

	sortedA, err := sortTable(a, keyNames)
	if err == nil {
		var sortedB *Table
		sortedB, err = sortTable(b, keyNames)
		if err == nil {
			return sortedA, sortedB, nil
		}
	}

	result := &Result{
		Status:  StatusSortError,
		Message: fmt.Sprintf("sort failed: %v", err),
		Diffs:   map[string]ColumnDiff{},
	}
	var incomparable *incomparableError
	if errors.As(err, &incomparable) {
		result.SortColumns = []string{incomparable.column}
	}
	return nil, nil, result
}

// sortTable returns a new table with rows stably ordered by the key
// columns. Stability is required: rows equal on the key keep their
// pre-sort relative order, the only available tie-break when duplicate
// keys exist. Silently reordering ties would make diffs
// nondeterministic.
func sortTable(t *Table, keyNames []string) (*Table, error) {
	keyCols := make([]*Column, len(keyNames))
	for i, name := range keyNames {
		col, ok := t.Column(name)
		if !ok {
			return nil, fmt.Errorf("sort key column %q not found", name)
		}
		keyCols[i] = col
	}

	perm := make([]int, t.NumRows())
	for i := range perm {
		perm[i] = i
	}

	var sortErr error
	sort.SliceStable(perm, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		for _, col := range keyCols {
			cmp, err := compareValues(col.Values[perm[i]], col.Values[perm[j]])
			if err != nil {
				sortErr = &incomparableError{
					column: col.Name,
					a:      col.Values[perm[i]].Kind(),
					b:      col.Values[perm[j]].Kind(),
				}
				return false
			}
			if cmp != 0 {
				return cmp < 0
			}
		}
		return false
	})
	if sortErr != nil {
		return nil, sortErr
	}

	return t.reorder(perm), nil
}

// compareValues orders two values. Null sorts before everything and
// equals only null; integers and floats compare numerically across the
// two kinds; bools order false before true. Any other kind mix is an
// error, surfaced to the caller as a SortError.
func compareValues(a, b Value) (int, error) {
	switch {
	case a.IsNull() && b.IsNull():
		return 0, nil
	case a.IsNull():
		return -1, nil
	case b.IsNull():
		return 1, nil
	}

	if isNumeric(a.Kind()) && isNumeric(b.Kind()) {
		fa, fb := a.asFloat(), b.asFloat()
		switch {
		case fa < fb:
			return -1, nil
		case fa > fb:
			return 1, nil
		default:
			return 0, nil
		}
	}

	if a.Kind() != b.Kind() {
		return 0, fmt.Errorf("cannot order %s against %s", a.Kind(), b.Kind())
	}

	switch a.Kind() {
	case KindText:
		return strings.Compare(a.Text(), b.Text()), nil
	case KindBool:
		switch {
		case a.Bool() == b.Bool():
			return 0, nil
		case !a.Bool():
			return -1, nil
		default:
			return 1, nil
		}
	default:
		return 0, fmt.Errorf("cannot order values of kind %s", a.Kind())
	}
}
