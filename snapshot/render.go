package snapshot

import (
	"fmt"
	"strings"

	"github.com/shibukawa/solite/engine"
)

// RenderStatement drives stmt to completion and renders its preamble plus
// body per §4.7's shape rules. sourcePath is the path written into the
// "Source: " line, relative to the snapshot directory. rawSQL is the
// statement's original (unexpanded) text.
//
// A (_, false, nil) return means the statement produced no columns and no
// rows (e.g. a DDL statement) and should not produce a snapshot file at
// all.
func RenderStatement(sourcePath, rawSQL string, stmt *engine.Statement) (string, bool, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Source: %s\n%s\n---\n", sourcePath, dedent(strings.TrimSpace(rawSQL)))

	columns := stmt.ColumnNames()
	var rows [][]engine.OwnedValue

	for {
		has, err := stmt.Step()
		if err != nil {
			engErr, ok := err.(*engine.Error)
			if !ok {
				return "", false, err
			}
			fmt.Fprintf(&b, "ERROR%s\n", engErr.Error())
			return b.String(), true, nil
		}
		if !has {
			break
		}
		row := make([]engine.OwnedValue, len(columns))
		for i := range columns {
			row[i] = stmt.Value(i).Owned()
		}
		rows = append(rows, row)
	}

	switch {
	case len(columns) == 1 && len(rows) == 1:
		fmt.Fprint(&b, snapshotValue(rows[0][0]))
	case len(columns) == 0 && len(rows) == 0:
		return "", false, nil
	case len(rows) == 0:
		fmt.Fprint(&b, "[no results]")
	default:
		for _, row := range rows {
			b.WriteString("{\n")
			for i, col := range columns {
				fmt.Fprintf(&b, "\t%s: %s\n", col, snapshotValue(row[i]))
			}
			b.WriteString("}\n")
		}
	}
	b.WriteByte('\n')
	return b.String(), true, nil
}
