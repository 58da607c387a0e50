// Package block models enqueued source text (a file, a REPL line, a
// notebook cell) and the lexer-aware splitter that pulls SQL statements
// and dot commands out of it one at a time.
package block

import "sort"

// SourceKind is where a block's text came from.
type SourceKind int

const (
	FileSource SourceKind = iota
	ReplSource
	NotebookCellSource
)

func (k SourceKind) String() string {
	switch k {
	case FileSource:
		return "file"
	case ReplSource:
		return "repl"
	case NotebookCellSource:
		return "notebook-cell"
	default:
		return "unknown"
	}
}

// Block is a unit of enqueued source. It is pushed by callers, popped
// and mutated in place by the driver, and dropped once fully consumed.
type Block struct {
	Name     string
	Source   SourceKind
	Contents string

	// Offset is the current byte cursor into Contents; it only ever
	// advances.
	Offset int

	// Regions is the stack of open `-- #region NAME` names, used for
	// snapshot-key derivation.
	Regions []string

	lineStarts []int
}

// New builds a Block over contents, indexing line starts once up front.
func New(name, contents string, kind SourceKind) *Block {
	lineStarts := []int{0}
	for i := 0; i < len(contents); i++ {
		if contents[i] == '\n' {
			lineStarts = append(lineStarts, i+1)
		}
	}
	return &Block{Name: name, Source: kind, Contents: contents, lineStarts: lineStarts}
}

// Done reports whether the block has no more bytes to drive.
func (b *Block) Done() bool { return b.Offset >= len(b.Contents) }

// Remaining is the unconsumed suffix of Contents.
func (b *Block) Remaining() string { return b.Contents[b.Offset:] }

// LineCol converts a byte offset into 1-based line/column.
func (b *Block) LineCol(offset int) (line, col int) {
	idx := sort.Search(len(b.lineStarts), func(i int) bool { return b.lineStarts[i] > offset }) - 1
	if idx < 0 {
		idx = 0
	}
	return idx + 1, offset - b.lineStarts[idx] + 1
}

// RegionPath joins the active region stack with "-", for snapshot-key
// derivation. Empty when no region is open.
func (b *Block) RegionPath() string {
	if len(b.Regions) == 0 {
		return ""
	}
	out := b.Regions[0]
	for _, r := range b.Regions[1:] {
		out += "-" + r
	}
	return out
}
