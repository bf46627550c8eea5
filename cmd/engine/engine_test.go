package engine

import (
	"testing"
)

func intCol(name string, vals ...int64) Column {
	values := make([]Value, len(vals))
	for i, v := range vals {
		values[i] = Int(v)
	}
	return Column{Name: name, Kind: KindInteger, Values: values}
}

func floatCol(name string, vals ...float64) Column {
	values := make([]Value, len(vals))
	for i, v := range vals {
		values[i] = Float(v)
	}
	return Column{Name: name, Kind: KindFloat, Values: values}
}

func textCol(name string, vals ...string) Column {
	values := make([]Value, len(vals))
	for i, v := range vals {
		values[i] = Text(v)
	}
	return Column{Name: name, Kind: KindText, Values: values}
}

func mustTable(t *testing.T, cols ...Column) *Table {
	t.Helper()
	table, err := NewTable(cols...)
	if err != nil {
		t.Fatalf("failed to build table: %v", err)
	}
	return table
}

func TestCompareAlignsByKey(t *testing.T) {
	a := mustTable(t, intCol("id", 1, 2), floatCol("amt", 10.0, 20.0))
	b := mustTable(t, intCol("id", 2, 1), floatCol("amt", 20.0, 10.0))

	result := Compare(a, b, Options{Keys: []string{"id"}})

	if result.Status != StatusSuccess {
		t.Fatalf("expected success, got %s (%s)", result.Status, result.Message)
	}
	if !result.Equal() {
		t.Fatalf("expected zero diffs, got columns %v", result.DiffColumns)
	}
	if result.TotalRows != 2 {
		t.Fatalf("expected 2 aligned rows, got %d", result.TotalRows)
	}
	if result.RowsWithDiffs != 0 {
		t.Fatalf("expected 0 rows with diffs, got %d", result.RowsWithDiffs)
	}
	if result.FullRowsA != nil || result.FullRowsB != nil {
		t.Fatal("full-row subsets should be nil when nothing differs")
	}
}

func TestCompareReportsCellDivergence(t *testing.T) {
	a := mustTable(t, intCol("id", 1, 2), floatCol("amt", 10.0, 20.0))
	b := mustTable(t, intCol("id", 2, 1), floatCol("amt", 20.0, 10.5))

	result := Compare(a, b, Options{Keys: []string{"id"}})

	if result.Status != StatusSuccess {
		t.Fatalf("expected success, got %s (%s)", result.Status, result.Message)
	}
	if len(result.DiffColumns) != 1 || result.DiffColumns[0] != "amt" {
		t.Fatalf("expected mismatched columns [amt], got %v", result.DiffColumns)
	}

	diff := result.Diffs["amt"]
	if diff.Count != 1 || len(diff.Records) != 1 {
		t.Fatalf("expected one diff record, got count=%d records=%d", diff.Count, len(diff.Records))
	}

	rec := diff.Records[0]
	// id=1 is the first data row on both sides, so the tag is the
	// header offset: source line 2.
	if rec.RowA != 2 {
		t.Fatalf("expected original row 2 on side A, got %d", rec.RowA)
	}
	if rec.RowB != 3 {
		t.Fatalf("expected original row 3 on side B, got %d", rec.RowB)
	}
	if rec.ValueA.Float() != 10.0 || rec.ValueB.Float() != 10.5 {
		t.Fatalf("expected values 10.0 vs 10.5, got %s vs %s", rec.ValueA, rec.ValueB)
	}

	if result.RowsWithDiffs != 1 {
		t.Fatalf("expected 1 row with diffs, got %d", result.RowsWithDiffs)
	}
	if result.FullRowsA == nil || result.FullRowsA.NumRows() != 1 {
		t.Fatal("expected one full row from side A")
	}
	if result.FullRowsB == nil || result.FullRowsB.NumRows() != 1 {
		t.Fatal("expected one full row from side B")
	}

	// Tags travel with their rows through alignment and filtering.
	tagA, ok := result.FullRowsA.Column(TagColumnA)
	if !ok {
		t.Fatal("full rows from side A should retain the tag column")
	}
	if tagA.Values[0].Int() != 2 {
		t.Fatalf("expected tag 2 on the diverging A row, got %d", tagA.Values[0].Int())
	}
}

func TestCompareStructuralMismatch(t *testing.T) {
	a := mustTable(t, intCol("id", 1), floatCol("amt", 10.0))
	b := mustTable(t, intCol("id", 1), floatCol("amount", 10.0))

	result := Compare(a, b, Options{})

	if result.Status != StatusStructuralMismatch {
		t.Fatalf("expected structural mismatch, got %s", result.Status)
	}
	want := []string{"amount", "amt"}
	if len(result.SchemaDiff) != len(want) {
		t.Fatalf("expected schema diff %v, got %v", want, result.SchemaDiff)
	}
	for i, name := range want {
		if result.SchemaDiff[i] != name {
			t.Fatalf("expected schema diff %v, got %v", want, result.SchemaDiff)
		}
	}
	if result.Status.ExitCode() != 1 {
		t.Fatalf("expected exit code 1, got %d", result.Status.ExitCode())
	}
}

func TestCompareSizeMismatch(t *testing.T) {
	a := mustTable(t, intCol("id", 1, 2, 3), floatCol("amt", 10, 20, 30))
	b := mustTable(t, intCol("id", 1, 2), floatCol("amt", 10, 20))

	result := Compare(a, b, Options{Keys: []string{"id"}})

	if result.Status != StatusSizeMismatch {
		t.Fatalf("expected size mismatch, got %s", result.Status)
	}
	if result.RowCountA != 3 || result.RowCountB != 2 {
		t.Fatalf("expected counts (3,2), got (%d,%d)", result.RowCountA, result.RowCountB)
	}
	if result.Status.ExitCode() != 2 {
		t.Fatalf("expected exit code 2, got %d", result.Status.ExitCode())
	}
}

func TestCompareIdempotence(t *testing.T) {
	build := func() *Table {
		return mustTable(t,
			intCol("id", 3, 1, 2),
			textCol("name", "c", "a ", "b"),
			Column{Name: "flag", Kind: KindBool, Values: []Value{Bool(true), Null(), Bool(false)}},
		)
	}

	for _, keys := range [][]string{nil, {"id"}, {"id", "name"}} {
		result := Compare(build(), build(), Options{Keys: keys})
		if result.Status != StatusSuccess {
			t.Fatalf("keys %v: expected success, got %s (%s)", keys, result.Status, result.Message)
		}
		if !result.Equal() {
			t.Fatalf("keys %v: self-comparison produced diffs in %v", keys, result.DiffColumns)
		}
		if result.RowsWithDiffs != 0 {
			t.Fatalf("keys %v: expected 0 rows with diffs, got %d", keys, result.RowsWithDiffs)
		}
	}
}

func TestCompareSymmetry(t *testing.T) {
	a := mustTable(t, intCol("id", 1, 2), textCol("city", "lisbon", "porto"))
	b := mustTable(t, intCol("id", 1, 2), textCol("city", "lisbon", "faro"))

	ab := Compare(a, b, Options{Keys: []string{"id"}})
	ba := Compare(b, a, Options{Keys: []string{"id"}})

	if len(ab.DiffColumns) != len(ba.DiffColumns) {
		t.Fatalf("mismatched column sets: %v vs %v", ab.DiffColumns, ba.DiffColumns)
	}
	if ab.RowsWithDiffs != ba.RowsWithDiffs {
		t.Fatalf("rows-with-diffs differ: %d vs %d", ab.RowsWithDiffs, ba.RowsWithDiffs)
	}

	recAB := ab.Diffs["city"].Records[0]
	recBA := ba.Diffs["city"].Records[0]
	if recAB.ValueA != recBA.ValueB || recAB.ValueB != recBA.ValueA {
		t.Fatalf("expected swapped value pairs, got (%s,%s) vs (%s,%s)",
			recAB.ValueA, recAB.ValueB, recBA.ValueA, recBA.ValueB)
	}
	if recAB.RowA != recBA.RowB || recAB.RowB != recBA.RowA {
		t.Fatalf("expected swapped row tags, got (%d,%d) vs (%d,%d)",
			recAB.RowA, recAB.RowB, recBA.RowA, recBA.RowB)
	}
}

func TestCompareOrderIndependenceWithoutKeys(t *testing.T) {
	a := mustTable(t,
		intCol("id", 1, 2, 3),
		textCol("name", "a", "b", "c"),
	)
	b := mustTable(t,
		intCol("id", 3, 1, 2),
		textCol("name", "c", "a", "b"),
	)

	result := Compare(a, b, Options{})
	if result.Status != StatusSuccess {
		t.Fatalf("expected success, got %s (%s)", result.Status, result.Message)
	}
	if !result.Equal() {
		t.Fatalf("same multiset in different order should not diff, got %v", result.DiffColumns)
	}
}

func TestCompareNullAwareEquality(t *testing.T) {
	a := mustTable(t,
		intCol("id", 1, 2, 3),
		Column{Name: "note", Kind: KindText, Values: []Value{Null(), Null(), Text("x")}},
	)
	b := mustTable(t,
		intCol("id", 1, 2, 3),
		Column{Name: "note", Kind: KindText, Values: []Value{Null(), Text("y"), Null()}},
	)

	result := Compare(a, b, Options{Keys: []string{"id"}})
	if result.Status != StatusSuccess {
		t.Fatalf("expected success, got %s (%s)", result.Status, result.Message)
	}

	diff := result.Diffs["note"]
	if diff.Count != 2 {
		t.Fatalf("null vs null must not diff, null vs value must: expected 2 records, got %d", diff.Count)
	}
	if result.RowsWithDiffs != 2 {
		t.Fatalf("expected 2 rows with diffs, got %d", result.RowsWithDiffs)
	}
}

func TestCompareNormalizesKindDrift(t *testing.T) {
	// One side exported quantities as padded text, the other as
	// integers; both represent the same data.
	a := mustTable(t, intCol("id", 1, 2), textCol("qty", " 10 ", "20"))
	b := mustTable(t, intCol("id", 1, 2), intCol("qty", 10, 20))

	result := Compare(a, b, Options{Keys: []string{"id"}})
	if result.Status != StatusSuccess {
		t.Fatalf("expected success, got %s (%s)", result.Status, result.Message)
	}
	if !result.Equal() {
		t.Fatalf("kind drift should normalize away, got diffs in %v", result.DiffColumns)
	}
}

func TestCompareTrimsTextPadding(t *testing.T) {
	a := mustTable(t, intCol("id", 1), textCol("name", "  lisbon"))
	b := mustTable(t, intCol("id", 1), textCol("name", "lisbon  "))

	result := Compare(a, b, Options{Keys: []string{"id"}})
	if !result.Equal() {
		t.Fatalf("incidental padding should not diff, got %v", result.DiffColumns)
	}
}

func TestComparePreservesNativeNumericEquality(t *testing.T) {
	// Kinds agree and are non-textual, so values compare natively and
	// a genuine numeric difference is never masked by stringification.
	a := mustTable(t, intCol("id", 1), floatCol("amt", 10.0))
	b := mustTable(t, intCol("id", 1), floatCol("amt", 10.000001))

	result := Compare(a, b, Options{Keys: []string{"id"}})
	if result.Equal() {
		t.Fatal("expected a numeric diff to survive normalization")
	}
}

func TestCompareEmptyTables(t *testing.T) {
	a := mustTable(t, intCol("id"), textCol("name"))
	b := mustTable(t, intCol("id"), textCol("name"))

	result := Compare(a, b, Options{})
	if result.Status != StatusSuccess {
		t.Fatalf("expected success on empty tables, got %s", result.Status)
	}
	if !result.Equal() || result.TotalRows != 0 {
		t.Fatalf("expected the empty-equal terminal state, got diffs=%v rows=%d",
			result.DiffColumns, result.TotalRows)
	}
}

func TestCompareDiffColumnsInTableOrder(t *testing.T) {
	a := mustTable(t,
		intCol("id", 1),
		textCol("zeta", "x"),
		textCol("alpha", "y"),
	)
	b := mustTable(t,
		intCol("id", 1),
		textCol("zeta", "x2"),
		textCol("alpha", "y2"),
	)

	result := Compare(a, b, Options{Keys: []string{"id"}})
	want := []string{"zeta", "alpha"}
	if len(result.DiffColumns) != 2 || result.DiffColumns[0] != want[0] || result.DiffColumns[1] != want[1] {
		t.Fatalf("mismatched columns must keep table order %v, got %v", want, result.DiffColumns)
	}
}

func TestCompareProgressCallback(t *testing.T) {
	a := mustTable(t, intCol("id", 1), textCol("name", "a"), floatCol("amt", 1))
	b := mustTable(t, intCol("id", 1), textCol("name", "a"), floatCol("amt", 1))

	var calls [][2]int
	Compare(a, b, Options{Keys: []string{"id"}, Progress: func(done, total int) {
		calls = append(calls, [2]int{done, total})
	}})

	if len(calls) != 3 {
		t.Fatalf("expected one callback per data column, got %d", len(calls))
	}
	last := calls[len(calls)-1]
	if last[0] != 3 || last[1] != 3 {
		t.Fatalf("expected final callback (3,3), got (%d,%d)", last[0], last[1])
	}
}
