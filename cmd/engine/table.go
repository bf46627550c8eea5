package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Static errors for table construction
var (
	ErrDuplicateColumn = errors.New("duplicate column name")
	ErrRaggedColumns   = errors.New("columns have differing row counts")
)

// Kind identifies the declared type of a column or cell value.
type Kind int

const (
	KindNull Kind = iota
	KindInteger
	KindFloat
	KindText
	KindBool
)

var kindNames = map[Kind]string{
	KindNull:    "null",
	KindInteger: "integer",
	KindFloat:   "float",
	KindText:    "text",
	KindBool:    "bool",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalJSON encodes the kind as its name
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes a kind from its name
func (k *Kind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for kind, kindName := range kindNames {
		if kindName == name {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown kind: %q", name)
}

// Value is a tagged variant over the closed set of cell kinds.
// The zero value is null.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
	b    bool
}

// Null returns the null value
func Null() Value { return Value{} }

// Int returns an integer value
func Int(v int64) Value { return Value{kind: KindInteger, i: v} }

// Float returns a floating-point value
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }

// Text returns a text value
func Text(v string) Value { return Value{kind: KindText, s: v} }

// Bool returns a boolean value
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// Kind returns the kind tag of the value
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null
func (v Value) IsNull() bool { return v.kind == KindNull }

// Int returns the integer payload (zero unless Kind is KindInteger)
func (v Value) Int() int64 { return v.i }

// Float returns the float payload (zero unless Kind is KindFloat)
func (v Value) Float() float64 { return v.f }

// Text returns the text payload (empty unless Kind is KindText)
func (v Value) Text() string { return v.s }

// Bool returns the boolean payload (false unless Kind is KindBool)
func (v Value) Bool() bool { return v.b }

// String renders the value for display. Null renders as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return v.s
	}
}

// Equal implements null-aware equality: null equals null, null never
// equals a non-null value, and non-null values compare under their
// native kind. Integer and float compare numerically across the two
// kinds; any other kind mix is unequal.
func (v Value) Equal(other Value) bool {
	if v.kind == KindNull || other.kind == KindNull {
		return v.kind == KindNull && other.kind == KindNull
	}
	if v.kind == other.kind {
		switch v.kind {
		case KindInteger:
			return v.i == other.i
		case KindFloat:
			return v.f == other.f
		case KindBool:
			return v.b == other.b
		default:
			return v.s == other.s
		}
	}
	if isNumeric(v.kind) && isNumeric(other.kind) {
		return v.asFloat() == other.asFloat()
	}
	return false
}

func isNumeric(k Kind) bool { return k == KindInteger || k == KindFloat }

func (v Value) asFloat() float64 {
	if v.kind == KindInteger {
		return float64(v.i)
	}
	return v.f
}

type valueJSON struct {
	Kind  Kind        `json:"kind"`
	Value interface{} `json:"value,omitempty"`
}

// MarshalJSON encodes the value with an explicit kind tag so that
// cached results round-trip without loss.
func (v Value) MarshalJSON() ([]byte, error) {
	out := valueJSON{Kind: v.kind}
	switch v.kind {
	case KindInteger:
		out.Value = v.i
	case KindFloat:
		out.Value = v.f
	case KindText:
		out.Value = v.s
	case KindBool:
		out.Value = v.b
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a value produced by MarshalJSON
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw struct {
		Kind  Kind            `json:"kind"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Kind {
	case KindNull:
		*v = Null()
	case KindInteger:
		var i int64
		if err := json.Unmarshal(raw.Value, &i); err != nil {
			return err
		}
		*v = Int(i)
	case KindFloat:
		var f float64
		if err := json.Unmarshal(raw.Value, &f); err != nil {
			return err
		}
		*v = Float(f)
	case KindText:
		var s string
		if err := json.Unmarshal(raw.Value, &s); err != nil {
			return err
		}
		*v = Text(s)
	case KindBool:
		var b bool
		if err := json.Unmarshal(raw.Value, &b); err != nil {
			return err
		}
		*v = Bool(b)
	default:
		return fmt.Errorf("unknown value kind: %v", raw.Kind)
	}
	return nil
}

// Column is a named, kinded sequence of values, one per row.
type Column struct {
	Name   string  `json:"name"`
	Kind   Kind    `json:"kind"`
	Values []Value `json:"values"`
}

// Table is an ordered sequence of columns sharing a common row count.
// Tables are immutable by convention: every pipeline stage builds a new
// Table rather than mutating an existing one.
type Table struct {
	Columns []Column `json:"columns"`
}

// Tag column names. Each side carries its own tag so that a mismatched
// row can be traced back to its position in either source file.
const (
	TagColumnA = "original_row_a"
	TagColumnB = "original_row_b"

	// headerRowOffset places data row 0 at source line 2: spreadsheet
	// exports carry the header on line 1.
	headerRowOffset = 2
)

// IsTagColumn reports whether name is one of the synthetic
// original-position columns.
func IsTagColumn(name string) bool {
	return name == TagColumnA || name == TagColumnB
}

// NewTable builds a table from columns, validating that names are
// unique and all columns have the same row count.
func NewTable(columns ...Column) (*Table, error) {
	seen := make(map[string]bool, len(columns))
	for _, col := range columns {
		if seen[col.Name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, col.Name)
		}
		seen[col.Name] = true
	}
	for i := 1; i < len(columns); i++ {
		if len(columns[i].Values) != len(columns[0].Values) {
			return nil, fmt.Errorf("%w: %q has %d rows, %q has %d",
				ErrRaggedColumns, columns[i].Name, len(columns[i].Values), columns[0].Name, len(columns[0].Values))
		}
	}
	return &Table{Columns: columns}, nil
}

// NumRows returns the row count of the table
func (t *Table) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// Column returns the named column, if present
func (t *Table) Column(name string) (*Column, bool) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// ColumnNames returns all column names in table order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}

// DataColumnNames returns column names in table order with the
// synthetic tag columns excluded.
func (t *Table) DataColumnNames() []string {
	names := make([]string, 0, len(t.Columns))
	for _, col := range t.Columns {
		if !IsTagColumn(col.Name) {
			names = append(names, col.Name)
		}
	}
	return names
}

// WithRowTag returns a new table with an appended integer column
// recording each row's original 1-based source line (header offset
// included). Must run before any reordering.
func (t *Table) WithRowTag(name string) *Table {
	tags := make([]Value, t.NumRows())
	for i := range tags {
		tags[i] = Int(int64(i + headerRowOffset))
	}
	columns := make([]Column, 0, len(t.Columns)+1)
	columns = append(columns, t.Columns...)
	columns = append(columns, Column{Name: name, Kind: KindInteger, Values: tags})
	return &Table{Columns: columns}
}

// withColumn returns a new table with the named column replaced
func (t *Table) withColumn(replacement Column) *Table {
	columns := make([]Column, len(t.Columns))
	copy(columns, t.Columns)
	for i := range columns {
		if columns[i].Name == replacement.Name {
			columns[i] = replacement
		}
	}
	return &Table{Columns: columns}
}

// reorder returns a new table with rows permuted; perm[i] names the
// source row that lands at position i. Tags travel with their rows.
func (t *Table) reorder(perm []int) *Table {
	columns := make([]Column, len(t.Columns))
	for i, col := range t.Columns {
		values := make([]Value, len(col.Values))
		for j, src := range perm {
			values[j] = col.Values[src]
		}
		columns[i] = Column{Name: col.Name, Kind: col.Kind, Values: values}
	}
	return &Table{Columns: columns}
}

// filterRows returns a new table restricted to rows where mask is true,
// all columns retained.
func (t *Table) filterRows(mask []bool) *Table {
	columns := make([]Column, len(t.Columns))
	for i, col := range t.Columns {
		values := make([]Value, 0)
		for j, keep := range mask {
			if keep {
				values = append(values, col.Values[j])
			}
		}
		columns[i] = Column{Name: col.Name, Kind: col.Kind, Values: values}
	}
	return &Table{Columns: columns}
}
