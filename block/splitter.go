package block

import (
	"io"
	"regexp"
	"strings"

	"github.com/shibukawa/solite/dotcmd"
	"github.com/shibukawa/solite/engine"
	"github.com/shibukawa/solite/replacement"
	"github.com/shibukawa/solite/tokenizer"
)

var (
	regionOpenRE = regexp.MustCompile(`(?m)^\s*--\s*#region\s+(\w*)\s*$`)
	regionEndRE  = regexp.MustCompile(`(?m)^\s*--\s*#endregion\s*$`)
)

// SourceRef locates a Step in its originating block.
type SourceRef struct {
	BlockName  string
	Line, Col  int
	RegionPath string
}

// SQLStep is the SQL arm of a Step.
type SQLStep struct {
	Stmt   *engine.Statement
	RawSQL string
}

// Step is the splitter's yield type.
type Step struct {
	Preamble *string
	Source   SourceRef
	SQL      *SQLStep
	Dot      *dotcmd.Command
}

// ErrDone is returned by Splitter.Next when the block has nothing left
// to drive; it is not a real error, just an end-of-block marker, and is
// equal to io.EOF so callers can reuse the familiar sentinel.
var ErrDone = io.EOF

// Splitter turns raw block bytes into Steps, per §4.3.
type Splitter struct {
	UVResolver dotcmd.UVResolver
}

// Next pulls the next unit of work out of b, advancing its offset. It
// returns (nil, ErrDone) once the block is exhausted.
func (sp *Splitter) Next(b *Block, rt dotcmd.Runtime) (*Step, error) {
	if b.Done() {
		return nil, ErrDone
	}

	preambleStart := b.Offset
	end, err := sp.skipIgnorable(b.Contents, b.Offset)
	if err != nil {
		return nil, err
	}
	preambleText := b.Contents[preambleStart:end]
	applyRegionMarkers(b, preambleText)
	b.Offset = end

	var preamble *string
	if preambleText != "" {
		preamble = &preambleText
	}

	if b.Done() {
		// Nothing left but trivia; nothing to yield, but the preamble
		// bytes were still consumed for offset-monotonicity purposes.
		return nil, ErrDone
	}

	line, col := b.LineCol(b.Offset)
	source := SourceRef{BlockName: b.Name, Line: line, Col: col, RegionPath: b.RegionPath()}

	switch b.Contents[b.Offset] {
	case '.':
		return sp.parseDotLine(b, rt, preamble, source, false)
	case '!':
		return sp.parseDotLine(b, rt, preamble, source, true)
	default:
		return sp.parseSQL(b, rt, preamble, source)
	}
}

// skipIgnorable consumes whitespace, line comments, block comments and
// leading shebang-style `#` lines starting at offset, returning the new
// offset.
func (sp *Splitter) skipIgnorable(contents string, offset int) (int, error) {
	pos := offset
	for pos < len(contents) {
		c := contents[pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			pos++
		case c == '-' && pos+1 < len(contents) && contents[pos+1] == '-':
			pos = skipToLineEnd(contents, pos)
		case c == '#' && (pos == 0 || contents[pos-1] == '\n'):
			pos = skipToLineEnd(contents, pos)
		case c == '/' && pos+1 < len(contents) && contents[pos+1] == '*':
			newPos, err := skipBlockComment(contents, pos)
			if err != nil {
				return pos, err
			}
			pos = newPos
		default:
			return pos, nil
		}
	}
	return pos, nil
}

func skipToLineEnd(contents string, pos int) int {
	for pos < len(contents) && contents[pos] != '\n' {
		pos++
	}
	if pos < len(contents) {
		pos++ // include the newline itself
	}
	return pos
}

func skipBlockComment(contents string, pos int) (int, error) {
	tz := tokenizer.NewSqlTokenizer(contents[pos:])
	for tok, err := range tz.Tokens() {
		if err != nil {
			return pos, err
		}
		if tok.Type == tokenizer.BLOCK_COMMENT {
			return pos + tok.Position.Offset + len(tok.Value), nil
		}
		break
	}
	return pos, tokenizer.ErrUnterminatedComment
}

// applyRegionMarkers scans each completed line of a just-consumed
// preamble for `-- #region NAME` / `-- #endregion` and updates b's
// region stack. Purely advisory, per §4.3's invariants.
func applyRegionMarkers(b *Block, preamble string) {
	for _, line := range strings.SplitAfter(preamble, "\n") {
		if line == "" {
			continue
		}
		if m := regionOpenRE.FindStringSubmatch(line); m != nil {
			b.Regions = append(b.Regions, m[1])
			continue
		}
		if regionEndRE.MatchString(line) {
			if len(b.Regions) > 0 {
				b.Regions = b.Regions[:len(b.Regions)-1]
			}
		}
	}
}

func (sp *Splitter) parseDotLine(b *Block, rt dotcmd.Runtime, preamble *string, source SourceRef, shell bool) (*Step, error) {
	lineEnd := skipToLineEnd(b.Contents, b.Offset)
	rawLine := b.Contents[b.Offset:lineEnd]
	trimmed := strings.TrimRight(rawLine, "\n")
	body := trimmed[1:] // drop leading '.' or '!'

	var name, args string
	if shell {
		args = body
	} else {
		name, args = dotcmd.SplitCommandLine(body)
	}

	rest := b.Contents[lineEnd:]
	cmd, err := dotcmd.Parse(name, args, rest, rt, sp.UVResolver)
	if err != nil {
		return nil, err
	}

	b.Offset = lineEnd + cmd.ConsumedRest
	return &Step{Preamble: preamble, Source: source, Dot: cmd}, nil
}

func (sp *Splitter) parseSQL(b *Block, rt dotcmd.Runtime, preamble *string, source SourceRef) (*Step, error) {
	conn := rt.Connection()
	restOffset, stmt, err := rt.PrepareWithParameters(b.Contents[b.Offset:])
	if err != nil {
		if eerr, ok := err.(*engine.Error); ok {
			if table, isMissing := eerr.MissingTable(); isMissing {
				if createSQL, ok := replacement.Scan(table); ok {
					if execErr := conn.Execute(createSQL); execErr != nil {
						return nil, execErr
					}
					return sp.parseSQL(b, rt, preamble, source)
				}
			}
		}
		return nil, err
	}

	if stmt == nil {
		// Only whitespace/comments remained; nothing to yield.
		b.Offset = len(b.Contents)
		return nil, ErrDone
	}

	rawSQL := stmt.OriginalSQL()
	if restOffset != nil {
		b.Offset += *restOffset
	} else {
		b.Offset = len(b.Contents)
	}

	return &Step{Preamble: preamble, Source: source, SQL: &SQLStep{Stmt: stmt, RawSQL: rawSQL}}, nil
}
