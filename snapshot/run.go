package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shibukawa/solite/block"
	"github.com/shibukawa/solite/dotcmd"
	"github.com/shibukawa/solite/runtime"
)

// Runner drives a single source file through a Runtime to completion,
// writing (or reviewing) a `.snap` file per executed SQL statement.
type Runner struct {
	RT     *runtime.Runtime
	Trace  *Trace
	Prompt *Prompt

	// Dir is the snapshot directory. Runner applies no default of its
	// own; SnapshotDirFor gives the conventional "<file-parent>/__snapshots__".
	Dir string

	// Interactive enables the review flow (diff + accept/reject/remove
	// prompts). When false, mismatches are written without confirmation
	// (used by non-interactive CI runs, matching `--yes`/`--update`
	// style tooling elsewhere in the original).
	Interactive bool

	keyer  *Keyer
	report Report
}

// SnapshotDirFor resolves the output directory for sourcePath, honoring
// SOLITE_SNAPSHOT_DIRECTORY.
func SnapshotDirFor(sourcePath string) string {
	if dir := os.Getenv("SOLITE_SNAPSHOT_DIRECTORY"); dir != "" {
		return dir
	}
	return filepath.Join(filepath.Dir(sourcePath), "__snapshots__")
}

// NewRunner wires a Runner around an already-open runtime and trace.
func NewRunner(rt *runtime.Runtime, trace *Trace, prompt *Prompt, dir string) *Runner {
	return &Runner{RT: rt, Trace: trace, Prompt: prompt, Dir: dir}
}

// RunFile enqueues sourcePath's contents on the runtime and drives it to
// completion, snapshotting every SQL step. existing is the set of
// snapshot file basenames already on disk for this source file, used to
// offer removal of files that were not regenerated this run.
func (r *Runner) RunFile(sourcePath, contents string, existing map[string]bool) (*Report, error) {
	base := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	r.keyer = NewKeyer(base)
	r.RT.Enqueue(sourcePath, contents, block.FileSource)

	produced := map[string]bool{}

	for {
		step, err := r.RT.NextStep()
		if errors.Is(err, runtime.ErrStackEmpty) {
			break
		}
		if err != nil {
			return &r.report, err
		}

		if step.SQL != nil {
			name, err := r.snapshotOne(sourcePath, step)
			if err != nil {
				return &r.report, err
			}
			produced[name] = true
			continue
		}
		if step.Dot != nil {
			if step.Dot.Kind == dotcmd.Load {
				if err := r.Trace.SnapshotBaseline(); err != nil {
					return &r.report, err
				}
			}
			if err := r.RT.ExecuteDot(step.Dot); err != nil {
				return &r.report, err
			}
			if step.Dot.Kind == dotcmd.Load {
				funcs, mods, err := r.Trace.LoadDelta()
				if err != nil {
					return &r.report, err
				}
				r.report.Extensions = NewExtensionsReport(funcs, mods, nil)
			}
		}
	}

	for name := range existing {
		if produced[name] {
			continue
		}
		path := filepath.Join(r.Dir, name)
		if r.Interactive && r.Prompt != nil {
			ok, err := r.Prompt.AskRemoval(path)
			if err != nil {
				return &r.report, err
			}
			if !ok {
				continue
			}
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return &r.report, err
		}
		r.report.NumRemoved++
	}

	return &r.report, nil
}

func (r *Runner) snapshotOne(sourcePath string, step *block.Step) (string, error) {
	stmt := step.SQL.Stmt
	id, err := r.Trace.RegisterStatement(step.SQL.RawSQL, sourcePath)
	if err != nil {
		return "", err
	}

	body, ok, err := RenderStatement(sourcePath, step.SQL.RawSQL, stmt)
	if regErr := r.Trace.RegisterBytecode(id, stmt); regErr != nil {
		return "", regErr
	}
	if err != nil {
		return "", err
	}

	name := r.keyer.Next(step.Source.RegionPath)
	if !ok {
		return name, nil
	}

	path := filepath.Join(r.Dir, name)
	existing, readErr := os.ReadFile(path)
	if readErr != nil {
		if !os.IsNotExist(readErr) {
			return name, readErr
		}
		return name, r.writeNew(path, body)
	}

	oldText := normalizeNewlines(string(existing))
	if oldText == body {
		r.report.NumMatches++
		return name, nil
	}

	if !r.Interactive || r.Prompt == nil {
		return name, r.overwrite(path, body)
	}

	r.Prompt.PrintDiff(name, oldText, body)
	decision, err := r.Prompt.AskDecision(fmt.Sprintf("snapshot %s changed", name))
	if err != nil {
		return name, err
	}
	if decision == Accept {
		r.report.NumAccepted++
		return name, r.overwrite(path, body)
	}
	r.report.NumRejected++
	return name, nil
}

func (r *Runner) writeNew(path, body string) error {
	if r.Interactive && r.Prompt != nil {
		r.Prompt.PrintDiff(filepath.Base(path), "", body)
		decision, err := r.Prompt.AskDecision(fmt.Sprintf("new snapshot %s", filepath.Base(path)))
		if err != nil {
			return err
		}
		if decision != Accept {
			r.report.NumRejected++
			return nil
		}
	}
	r.report.NumAccepted++
	return r.overwrite(path, body)
}

func (r *Runner) overwrite(path, body string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(body), 0o644)
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
