package runtime

import (
	"github.com/shibukawa/solite/dotcmd"
)

// buildVegaLiteSpec drains cmd.Stmt's rows into a Vega-Lite v6 spec,
// porting vegalite.rs's execute: columns named "x" or "y" are guessed
// quantitative, everything else nominal.
func buildVegaLiteSpec(cmd *dotcmd.Command) (map[string]any, error) {
	stmt := cmd.Stmt
	columns := stmt.ColumnNames()

	var rows []map[string]any
	for {
		has, err := stmt.Step()
		if err != nil {
			return nil, err
		}
		if !has {
			break
		}
		row := make(map[string]any, len(columns))
		for i, name := range columns {
			v := stmt.Value(i)
			switch v.Owned().ValueKind() {
			case "null", "blob":
				row[name] = nil
			case "int":
				iv, _ := v.Int64()
				row[name] = iv
			case "float":
				f, _ := v.Float64()
				row[name] = f
			default:
				row[name] = v.Text()
			}
		}
		rows = append(rows, row)
	}

	encoding := make(map[string]any, len(columns))
	for _, name := range columns {
		kind := "nominal"
		if name == "x" || name == "y" {
			kind = "quantitative"
		}
		encoding[name] = map[string]any{"field": name, "type": kind}
	}

	return map[string]any{
		"$schema":     "https://vega.github.io/schema/vega-lite/v6.json",
		"description": "A simple bar chart with embedded data.",
		"data":        map[string]any{"values": rows},
		"mark":        cmd.Target,
		"encoding":    encoding,
	}, nil
}
