package export

import (
	"path/filepath"
	"strings"
)

// Format is one of the writer dispatch targets in §4.8.
type Format int

const (
	Csv Format = iota
	Tsv
	Json
	Ndjson
	Value
	Clipboard
)

// FormatFromPath infers a Format from path's extension, per
// exporter.rs's format_from_path: a trailing .gz/.zst is stripped first
// so compression and format selection are independent. Returns ok=false
// for an unrecognized or missing extension.
func FormatFromPath(path string) (f Format, ok bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "gz" || ext == "zst" {
		ext = strings.ToLower(strings.TrimPrefix(filepath.Ext(strings.TrimSuffix(path, filepath.Ext(path))), "."))
	}
	switch ext {
	case "csv":
		return Csv, true
	case "tsv":
		return Tsv, true
	case "json":
		return Json, true
	case "ndjson", "jsonl":
		return Ndjson, true
	default:
		return 0, false
	}
}

// CompressionFromPath reports the outer stream wrapper implied by path's
// extension ("gz", "zst", or "" for none).
func CompressionFromPath(path string) string {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "gz":
		return "gz"
	case "zst":
		return "zst"
	default:
		return ""
	}
}
