package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sheetdiff/sheetdiff/cmd/engine"
)

var (
	matchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)

	mismatchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F87")).
			Bold(true)

	columnNameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAA00")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
)

// outputResult writes the comparison report to the configured
// destination in the configured format.
func outputResult(config *Config, result *engine.Result) error {
	var out io.Writer = os.Stdout
	if config.OutputFile != "" {
		f, err := os.Create(config.OutputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if config.OutputFormat == "json" {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}
	return renderText(out, result)
}

func renderText(w io.Writer, result *engine.Result) error {
	var b strings.Builder

	b.WriteString("\n")
	switch result.Status {
	case engine.StatusStructuralMismatch:
		b.WriteString(mismatchStyle.Render("❌ Structural mismatch") + "\n")
		b.WriteString(fmt.Sprintf("   Columns not present on both sides: %s\n",
			strings.Join(result.SchemaDiff, ", ")))
	case engine.StatusSizeMismatch:
		b.WriteString(mismatchStyle.Render("❌ Size mismatch") + "\n")
		b.WriteString(fmt.Sprintf("   Row counts: %d vs %d\n", result.RowCountA, result.RowCountB))
	case engine.StatusSortError:
		b.WriteString(mismatchStyle.Render("❌ Sort error") + "\n")
		b.WriteString("   " + result.Message + "\n")
	default:
		renderSuccess(&b, result)
	}
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func renderSuccess(b *strings.Builder, result *engine.Result) {
	if result.Equal() {
		b.WriteString(matchStyle.Render("✅ Datasets match") + "\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf("   %d rows compared, no differences", result.TotalRows)) + "\n")
		return
	}

	b.WriteString(mismatchStyle.Render("⚠️  Datasets differ") + "\n")
	b.WriteString(fmt.Sprintf("   Rows compared:       %d\n", result.TotalRows))
	b.WriteString(fmt.Sprintf("   Rows with diffs:     %d\n", result.RowsWithDiffs))
	b.WriteString(fmt.Sprintf("   Mismatched columns:  %s\n", strings.Join(result.DiffColumns, ", ")))

	for _, name := range result.DiffColumns {
		diff := result.Diffs[name]
		b.WriteString("\n")
		b.WriteString(columnNameStyle.Render(fmt.Sprintf("   Column %q (%d diffs)", name, diff.Count)) + "\n")

		rows := make([][]string, 0, len(diff.Records))
		for _, rec := range diff.Records {
			rows = append(rows, []string{
				strconv.FormatInt(rec.RowA, 10),
				strconv.FormatInt(rec.RowB, 10),
				displayValue(rec.ValueA),
				displayValue(rec.ValueB),
			})
		}
		writeTable(b, []string{"Row A", "Row B", "Value A", "Value B"}, rows)
	}

	if result.FullRowsA != nil {
		b.WriteString("\n")
		b.WriteString(columnNameStyle.Render("   Full diverging rows, side A") + "\n")
		writeTableFromColumns(b, result.FullRowsA)
		b.WriteString("\n")
		b.WriteString(columnNameStyle.Render("   Full diverging rows, side B") + "\n")
		writeTableFromColumns(b, result.FullRowsB)
	}
}

func displayValue(v engine.Value) string {
	if v.IsNull() {
		return "(null)"
	}
	return v.String()
}

// writeTable renders an aligned plain-text table, indented to match
// the surrounding report.
func writeTable(b *strings.Builder, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	writeRow := func(cells []string) {
		b.WriteString("   ")
		for i, cell := range cells {
			b.WriteString("| " + cell + strings.Repeat(" ", widths[i]-len(cell)) + " ")
		}
		b.WriteString("|\n")
	}

	writeRow(headers)
	b.WriteString("   ")
	for _, w := range widths {
		b.WriteString("|" + strings.Repeat("-", w+2))
	}
	b.WriteString("|\n")
	for _, row := range rows {
		writeRow(row)
	}
}

func writeTableFromColumns(b *strings.Builder, table *engine.Table) {
	headers := table.ColumnNames()
	rows := make([][]string, table.NumRows())
	for i := range rows {
		row := make([]string, len(table.Columns))
		for j, col := range table.Columns {
			row[j] = displayValue(col.Values[i])
		}
		rows[i] = row
	}
	writeTable(b, headers, rows)
}

// exportDiffRecords writes every diff record to a CSV file, one row
// per mismatched cell, columns in report order.
func exportDiffRecords(path string, result *engine.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write([]string{"column", "row_a", "row_b", "value_a", "value_b"}); err != nil {
		return fmt.Errorf("failed to write export header: %w", err)
	}

	for _, name := range result.DiffColumns {
		for _, rec := range result.Diffs[name].Records {
			record := []string{
				name,
				strconv.FormatInt(rec.RowA, 10),
				strconv.FormatInt(rec.RowB, 10),
				rec.ValueA.String(),
				rec.ValueB.String(),
			}
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("failed to write export record: %w", err)
			}
		}
	}

	writer.Flush()
	return writer.Error()
}
