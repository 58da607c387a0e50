package snapshot

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"
)

var (
	insertFmt = color.New(color.FgGreen)
	deleteFmt = color.New(color.FgRed)
	lineNoFmt = color.New(color.FgCyan, color.Faint)
)

// Decision is the outcome of reviewing one candidate snapshot.
type Decision int

const (
	Accept Decision = iota
	Reject
)

// Prompt is the keyboard-driven accept/reject/remove interaction. Default
// is a *bufio.Reader over an io.Reader/io.Writer pair so tests can drive
// it with an in-memory buffer; Console wires it to stdin/stdout.
type Prompt struct {
	In  *bufio.Reader
	Out io.Writer
}

func NewConsolePrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{In: bufio.NewReader(in), Out: out}
}

// PrintDiff writes a unified, colored diff of old vs. new, in the style
// of the original's print_diff (console-width rule, colored +/- gutters
// dropped in favor of go-difflib's unified hunk format, since no
// inline-diff library exists in the example pack).
func (p *Prompt) PrintDiff(path, oldText, newText string) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldText),
		B:        difflib.SplitLines(newText),
		FromFile: path + " (existing)",
		ToFile:   path + " (new)",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		fmt.Fprintln(p.Out, err)
		return
	}
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			insertFmt.Fprintln(p.Out, line)
		case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
			deleteFmt.Fprintln(p.Out, line)
		default:
			lineNoFmt.Fprintln(p.Out, line)
		}
	}
}

// AskDecision prompts for "a" (accept) / "r" (reject) and loops on any
// other input.
func (p *Prompt) AskDecision(label string) (Decision, error) {
	insertFmt.Fprint(p.Out, "  a accept     ")
	fmt.Fprintln(p.Out, "keep the new snapshot")
	deleteFmt.Fprint(p.Out, "  r reject     ")
	fmt.Fprintln(p.Out, "reject the new snapshot")

	for {
		fmt.Fprintf(p.Out, "%s [a/r]: ", label)
		line, err := p.In.ReadString('\n')
		if err != nil && line == "" {
			return Reject, err
		}
		switch strings.TrimSpace(strings.ToLower(line)) {
		case "a":
			return Accept, nil
		case "r":
			return Reject, nil
		}
	}
}

// AskRemoval prompts y/n for deleting a stale snapshot file that was not
// regenerated during this run.
func (p *Prompt) AskRemoval(path string) (bool, error) {
	for {
		fmt.Fprintf(p.Out, "remove stale snapshot %s? [y/n]: ", path)
		line, err := p.In.ReadString('\n')
		if err != nil && line == "" {
			return false, err
		}
		switch strings.TrimSpace(strings.ToLower(line)) {
		case "y":
			return true, nil
		case "n":
			return false, nil
		}
	}
}
