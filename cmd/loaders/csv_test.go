package loaders

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sheetdiff/sheetdiff/cmd/engine"
)

func TestLoadCSVTypeInference(t *testing.T) {
	input := "id,amount,name,active\n1,10.5,alice,true\n2,20,bob,false\n"

	table, err := LoadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	cases := []struct {
		column string
		kind   engine.Kind
	}{
		{"id", engine.KindInteger},
		{"amount", engine.KindFloat},
		{"name", engine.KindText},
		{"active", engine.KindBool},
	}
	for _, tc := range cases {
		col, ok := table.Column(tc.column)
		if !ok {
			t.Fatalf("column %q missing", tc.column)
		}
		if col.Kind != tc.kind {
			t.Fatalf("column %q: expected kind %s, got %s", tc.column, tc.kind, col.Kind)
		}
	}

	// "20" is an integer cell, but the column holds a float, so it
	// promotes.
	amount, _ := table.Column("amount")
	if amount.Values[1].Kind() != engine.KindFloat || amount.Values[1].Float() != 20 {
		t.Fatalf("expected promoted float 20, got %s %s", amount.Values[1].Kind(), amount.Values[1])
	}
}

func TestLoadCSVSemicolonFallback(t *testing.T) {
	input := "id;name\n1;alice\n2;bob\n"

	table, err := LoadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(table.Columns) != 2 {
		t.Fatalf("expected 2 columns after delimiter fallback, got %d", len(table.Columns))
	}
	name, _ := table.Column("name")
	if name.Values[0].Text() != "alice" {
		t.Fatalf("expected alice, got %q", name.Values[0].Text())
	}
}

func TestLoadCSVEmptyCellsAreNull(t *testing.T) {
	input := "id,note\n1,\n2,hello\n"

	table, err := LoadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	note, _ := table.Column("note")
	if !note.Values[0].IsNull() {
		t.Fatal("empty cell should load as null")
	}
	if note.Values[1].Text() != "hello" {
		t.Fatalf("expected hello, got %q", note.Values[1].Text())
	}
}

func TestLoadCSVShortRowsPadWithNull(t *testing.T) {
	input := "id,name,note\n1,alice\n"

	table, err := LoadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	note, _ := table.Column("note")
	if !note.Values[0].IsNull() {
		t.Fatal("missing trailing cell should load as null")
	}
}

func TestLoadCSVNumericLiteralBoolsStayNumeric(t *testing.T) {
	input := "flag\n1\n0\n"

	table, err := LoadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	flag, _ := table.Column("flag")
	if flag.Kind != engine.KindInteger {
		t.Fatalf("0/1 cells must stay integers, got %s", flag.Kind)
	}
}

func TestLoadCSVMixedColumnDemotesToText(t *testing.T) {
	input := "v\n1\nhello\n"

	table, err := LoadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	col, _ := table.Column("v")
	if col.Kind != engine.KindText {
		t.Fatalf("mixed column should demote to text, got %s", col.Kind)
	}
	if col.Values[0].Text() != "1" {
		t.Fatalf("numeric cell should render as text, got %q", col.Values[0].Text())
	}
}

func TestLoadCSVRejectsDuplicateHeader(t *testing.T) {
	_, err := LoadCSV(strings.NewReader("id,id\n1,2\n"))
	if err == nil || !strings.Contains(err.Error(), "duplicate header") {
		t.Fatalf("expected duplicate header error, got %v", err)
	}
}

func TestLoadFileGzipCSV(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write([]byte("id,name\n1,alice\n")); err != nil {
		t.Fatalf("gzip write failed: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("gzip close failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "data.csv.gz")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	table, err := loadFile(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if table.NumRows() != 1 {
		t.Fatalf("expected 1 row, got %d", table.NumRows())
	}
}

func TestLoadFileUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.parquet")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	_, err := loadFile(path)
	if err == nil || !strings.Contains(err.Error(), "unsupported file format") {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
}
