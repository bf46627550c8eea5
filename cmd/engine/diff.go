package engine

// detectDiffs walks the data columns of both aligned tables in table
// order and computes, for each, a positional mismatch mask under
// null-aware equality. Per-column masks fold into a single global mask
// via logical OR: a row globally differs if any column differs at that
// position.
//
// For every column with at least one mismatch, the per-position pair
// of row tags and the pair of compared values become that column's
// DiffRecords, and the column name is appended to the mismatched list
// in table order.
func detectDiffs(a, b *Table, progress func(done, total int)) ([]bool, []string, map[string]ColumnDiff) {
	tagsA, _ := a.Column(TagColumnA)
	tagsB, _ := b.Column(TagColumnB)

	dataColumns := a.DataColumnNames()
	globalMask := make([]bool, a.NumRows())
	diffColumns := make([]string, 0)
	diffs := make(map[string]ColumnDiff)

	for done, name := range dataColumns {
		colA, _ := a.Column(name)
		colB, _ := b.Column(name)

		var records []DiffRecord
		for i := range colA.Values {
			if colA.Values[i].Equal(colB.Values[i]) {
				continue
			}
			globalMask[i] = true
			records = append(records, DiffRecord{
				RowA:   tagsA.Values[i].Int(),
				RowB:   tagsB.Values[i].Int(),
				ValueA: colA.Values[i],
				ValueB: colB.Values[i],
			})
		}

		if len(records) > 0 {
			diffColumns = append(diffColumns, name)
			diffs[name] = ColumnDiff{Count: len(records), Records: records}
		}

		if progress != nil {
			progress(done+1, len(dataColumns))
		}
	}

	return globalMask, diffColumns, diffs
}
