package engine

import "strings"

// normalizeTypes reconciles per-column value representations between
// the two sides so that representation drift does not produce false
// mismatches:
//
//   - columns whose declared kinds differ are coerced on both sides to
//     a trimmed textual rendering;
//   - columns that are textual on both sides are trimmed even without
//     a kind mismatch (spreadsheet exports pad cells freely);
//   - columns whose kinds agree and are non-textual keep their native
//     values, so genuine numeric differences are never masked by a
//     detour through text.
//
// The coercion is a total, explicit function over pairs of kinds;
// there is no implicit per-cell guessing.
func normalizeTypes(a, b *Table) (*Table, *Table) {
	for _, name := range a.DataColumnNames() {
		colA, _ := a.Column(name)
		colB, ok := b.Column(name)
		if !ok {
			continue
		}

		switch {
		case colA.Kind != colB.Kind:
			a = a.withColumn(toTrimmedText(*colA))
			b = b.withColumn(toTrimmedText(*colB))
		case colA.Kind == KindText:
			a = a.withColumn(trimText(*colA))
			b = b.withColumn(trimText(*colB))
		}
	}
	return a, b
}

// toTrimmedText renders every non-null value of col as trimmed text
func toTrimmedText(col Column) Column {
	values := make([]Value, len(col.Values))
	for i, v := range col.Values {
		if v.IsNull() {
			values[i] = Null()
			continue
		}
		values[i] = Text(strings.TrimSpace(v.String()))
	}
	return Column{Name: col.Name, Kind: KindText, Values: values}
}

// trimText strips leading/trailing whitespace from a text column
func trimText(col Column) Column {
	values := make([]Value, len(col.Values))
	for i, v := range col.Values {
		if v.Kind() == KindText {
			values[i] = Text(strings.TrimSpace(v.Text()))
		} else {
			values[i] = v
		}
	}
	return Column{Name: col.Name, Kind: col.Kind, Values: values}
}
