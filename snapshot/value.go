// Package snapshot implements the deterministic statement-rendering and
// review workflow described in §4.7: run a block to completion, render
// each executed statement's result into a `.snap` file, and reconcile
// what was produced against what is already on disk.
package snapshot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shibukawa/solite/engine"
)

// snapshotValue renders a single cell the way the engine's snapshot_value
// does: NULL as the bare word, numbers as decimal text, strings through
// the engine's %Q escape (JSON-subtyped text gets a "(json) " prefix),
// blobs as an uppercase hex literal, and a pointer-tagged NULL as the
// literal "pointer[]" (pointers never survive a snapshot round-trip).
func snapshotValue(v engine.Value) string {
	if v.Subtype() == engine.SubtypePointer && v.IsNull() {
		return "pointer[]"
	}
	switch v.Owned().ValueKind() {
	case "null":
		return "NULL"
	case "int":
		i, _ := v.Int64()
		return strconv.FormatInt(i, 10)
	case "float":
		f, _ := v.Float64()
		return strconv.FormatFloat(f, 'g', -1, 64)
	case "blob":
		return fmt.Sprintf("X'%X'", v.Blob())
	default:
		text := escapeQ(v.Text())
		if v.Subtype() == engine.SubtypeJSON {
			return "(json) " + text
		}
		return text
	}
}

// escapeQ mirrors SQLite's %Q conversion: the value wrapped in single
// quotes, with embedded quotes doubled.
func escapeQ(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		if r == '\'' {
			b.WriteByte('\'')
		}
		b.WriteRune(r)
	}
	b.WriteByte('\'')
	return b.String()
}

// dedent strips the longest common leading whitespace run shared by every
// non-blank line of s, matching the original's textwrap-style dedent
// applied to a statement's SQL text before it is embedded in a snapshot
// preamble.
func dedent(s string) string {
	lines := strings.Split(s, "\n")

	var prefix string
	havePrefix := false
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if !havePrefix {
			prefix = indent
			havePrefix = true
			continue
		}
		prefix = commonPrefix(prefix, indent)
	}
	if prefix == "" {
		return s
	}

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines[i] = strings.TrimPrefix(line, prefix)
	}
	return strings.Join(lines, "\n")
}

func commonPrefix(a, b string) string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return a[:i]
}
