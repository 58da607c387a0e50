package export

import (
	"compress/gzip"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/klauspost/compress/zstd"

	"github.com/shibukawa/solite/engine"
)

// OpenSink creates (or truncates) path and wraps it with the
// compression implied by its extension, mirroring
// exporter.rs's output_from_path.
func OpenSink(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("export: create %s: %w", path, err)
	}
	switch CompressionFromPath(path) {
	case "gz":
		return &gzipSink{gz: gzip.NewWriter(f), file: f}, nil
	case "zst":
		enc, err := zstd.NewWriter(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("export: zstd writer: %w", err)
		}
		return &zstdSink{enc: enc, file: f}, nil
	default:
		return f, nil
	}
}

type gzipSink struct {
	gz   *gzip.Writer
	file *os.File
}

func (s *gzipSink) Write(p []byte) (int, error) { return s.gz.Write(p) }
func (s *gzipSink) Close() error {
	if err := s.gz.Close(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

type zstdSink struct {
	enc  *zstd.Encoder
	file *os.File
}

func (s *zstdSink) Write(p []byte) (int, error) { return s.enc.Write(p) }
func (s *zstdSink) Close() error {
	if err := s.enc.Close(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

// Write drains stmt (which must not yet have been stepped) and renders
// its rows to w in format. Returns the number of rows written.
func Write(stmt *engine.Statement, w io.Writer, format Format) (int, error) {
	switch format {
	case Csv:
		return writeDelimited(stmt, w, ',')
	case Tsv:
		return writeDelimited(stmt, w, '\t')
	case Json:
		return writeJSON(stmt, w, false)
	case Ndjson:
		return writeJSON(stmt, w, true)
	case Value:
		return writeValue(stmt, w)
	case Clipboard:
		return writeClipboardHTML(stmt, w)
	default:
		return 0, fmt.Errorf("export: unknown format %d", format)
	}
}

func writeDelimited(stmt *engine.Statement, w io.Writer, delim rune) (int, error) {
	cw := csv.NewWriter(w)
	cw.Comma = delim
	if err := cw.Write(stmt.ColumnNames()); err != nil {
		return 0, err
	}

	n := 0
	for {
		has, err := stmt.Step()
		if err != nil {
			return n, err
		}
		if !has {
			break
		}
		record := make([]string, stmt.ColumnCount())
		for i := range record {
			record[i] = cellText(stmt.Value(i))
		}
		if err := cw.Write(record); err != nil {
			return n, err
		}
		n++
	}
	cw.Flush()
	return n, cw.Error()
}

// cellText renders a cell the way write_csv_row does: NULL and blob
// become an empty field, everything else its plain text form.
func cellText(v engine.Value) string {
	switch v.Owned().ValueKind() {
	case "null", "blob":
		return ""
	case "int":
		i, _ := v.Int64()
		return strconv.FormatInt(i, 10)
	case "float":
		f, _ := v.Float64()
		return strconv.FormatFloat(f, 'g', -1, 64)
	default:
		return v.Text()
	}
}

func writeJSON(stmt *engine.Statement, w io.Writer, ndjson bool) (int, error) {
	columns := stmt.ColumnNames()
	n := 0
	if !ndjson {
		if _, err := w.Write([]byte{'['}); err != nil {
			return 0, err
		}
	}
	for {
		has, err := stmt.Step()
		if err != nil {
			return n, err
		}
		if !has {
			break
		}
		if !ndjson && n > 0 {
			if _, err := w.Write([]byte{','}); err != nil {
				return n, err
			}
		}
		obj := make(map[string]any, len(columns))
		for i, col := range columns {
			obj[col] = jsonCell(stmt.Value(i))
		}
		enc, err := json.Marshal(obj)
		if err != nil {
			return n, err
		}
		if _, err := w.Write(enc); err != nil {
			return n, err
		}
		if ndjson {
			if _, err := w.Write([]byte{'\n'}); err != nil {
				return n, err
			}
		}
		n++
	}
	if !ndjson {
		if _, err := w.Write([]byte("]\n")); err != nil {
			return n, err
		}
	}
	return n, nil
}

// jsonCell mirrors write_json_row: JSON-subtyped text is re-parsed and
// embedded as a structured value rather than a quoted string; blobs
// can't round-trip through JSON so they serialize as null.
func jsonCell(v engine.Value) any {
	if v.Subtype() == engine.SubtypeJSON {
		var parsed any
		if err := json.Unmarshal([]byte(v.Text()), &parsed); err == nil {
			return parsed
		}
	}
	switch v.Owned().ValueKind() {
	case "null", "blob":
		return nil
	case "int":
		i, _ := v.Int64()
		return i
	case "float":
		f, _ := v.Float64()
		return f
	default:
		return v.Text()
	}
}

// writeValue implements the single-scalar export: exactly one row of
// one column is expected; anything else is an error.
func writeValue(stmt *engine.Statement, w io.Writer) (int, error) {
	if n := stmt.ColumnCount(); n != 1 {
		return 0, fmt.Errorf("export: %d columns returned, expected a single column", n)
	}

	has, err := stmt.Step()
	if err != nil {
		return 0, err
	}
	if !has {
		return 0, fmt.Errorf("export: no rows returned")
	}

	v := stmt.Value(0)
	switch {
	case v.IsNull():
		// nothing written
	case v.Blob() != nil:
		if _, err := w.Write(v.Blob()); err != nil {
			return 0, err
		}
	default:
		if _, err := io.WriteString(w, cellText(v)); err != nil {
			return 0, err
		}
	}

	has, err = stmt.Step()
	if err != nil {
		return 1, err
	}
	if has {
		return 1, fmt.Errorf("export: more than one row returned, expected a single row")
	}
	return 1, nil
}

// writeClipboardHTML renders the <table> markup exporter.rs's clipboard
// path builds: a <thead> row of column names (also in <td>, not <th> —
// the original uses one cell tag throughout) followed by a <tbody> of
// data rows; pushing it onto the system clipboard is left to the caller
// (no clipboard library is available in the dependency pack this module
// was grounded on).
func writeClipboardHTML(stmt *engine.Statement, w io.Writer) (int, error) {
	var b []byte
	b = append(b, "<table> <thead> <tr>"...)
	for _, col := range stmt.ColumnNames() {
		b = append(b, "<td>"...)
		b = append(b, col...)
		b = append(b, "</td>"...)
	}
	b = append(b, "</tr> </thead>"...)
	b = append(b, "<tbody>"...)

	n := 0
	for {
		has, err := stmt.Step()
		if err != nil {
			return n, err
		}
		if !has {
			break
		}
		b = append(b, "<tr>"...)
		for i := 0; i < stmt.ColumnCount(); i++ {
			b = append(b, "<td>"...)
			b = append(b, cellText(stmt.Value(i))...)
			b = append(b, "</td>"...)
		}
		b = append(b, "</tr>"...)
		n++
	}
	b = append(b, "</tbody>"...)
	b = append(b, "</table>"...)

	_, err := w.Write(b)
	return n, err
}
