package engine

import (
	"errors"
	"testing"
)

func TestNewTableRejectsDuplicateColumns(t *testing.T) {
	_, err := NewTable(intCol("id", 1), intCol("id", 2))
	if !errors.Is(err, ErrDuplicateColumn) {
		t.Fatalf("expected ErrDuplicateColumn, got %v", err)
	}
}

func TestNewTableRejectsRaggedColumns(t *testing.T) {
	_, err := NewTable(intCol("id", 1, 2), textCol("name", "a"))
	if !errors.Is(err, ErrRaggedColumns) {
		t.Fatalf("expected ErrRaggedColumns, got %v", err)
	}
}

func TestWithRowTagOffset(t *testing.T) {
	table := mustTable(t, intCol("id", 7, 8, 9))
	tagged := table.WithRowTag(TagColumnA)

	col, ok := tagged.Column(TagColumnA)
	if !ok {
		t.Fatal("tag column missing")
	}
	// Data row 0 sits on source line 2, right under the header.
	for i, want := range []int64{2, 3, 4} {
		if col.Values[i].Int() != want {
			t.Fatalf("row %d: expected tag %d, got %d", i, want, col.Values[i].Int())
		}
	}

	if len(tagged.DataColumnNames()) != 1 {
		t.Fatalf("tag column must not count as data, got %v", tagged.DataColumnNames())
	}
}

func TestFilterRows(t *testing.T) {
	table := mustTable(t, intCol("id", 1, 2, 3), textCol("name", "a", "b", "c"))

	kept := table.filterRows([]bool{true, false, true})
	if kept.NumRows() != 2 {
		t.Fatalf("expected 2 rows, got %d", kept.NumRows())
	}
	names, _ := kept.Column("name")
	if names.Values[0].Text() != "a" || names.Values[1].Text() != "c" {
		t.Fatalf("wrong rows kept: %s, %s", names.Values[0], names.Values[1])
	}
}

func TestValueEqual(t *testing.T) {
	cases := []struct {
		name string
		a, b Value
		want bool
	}{
		{"null equals null", Null(), Null(), true},
		{"null never equals value", Null(), Int(0), false},
		{"int vs float numeric", Int(10), Float(10.0), true},
		{"int vs float differ", Int(10), Float(10.5), false},
		{"text", Text("a"), Text("a"), true},
		{"text vs int", Text("1"), Int(1), false},
		{"bool", Bool(true), Bool(true), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Equal(tc.b); got != tc.want {
				t.Fatalf("Equal(%s, %s) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
			if got := tc.b.Equal(tc.a); got != tc.want {
				t.Fatalf("Equal must be symmetric for (%s, %s)", tc.a, tc.b)
			}
		})
	}
}

func TestValueString(t *testing.T) {
	if Null().String() != "" {
		t.Fatalf("null should render empty, got %q", Null().String())
	}
	if Float(10.5).String() != "10.5" {
		t.Fatalf("unexpected float rendering: %q", Float(10.5).String())
	}
	if Int(-3).String() != "-3" {
		t.Fatalf("unexpected int rendering: %q", Int(-3).String())
	}
}
