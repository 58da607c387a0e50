// Command solite is a thin demonstration CLI over the core runtime: it
// wires run/snapshot/bench/export subcommands the way cmd/snapsql does,
// as an illustration rather than a full REPL/TUI/notebook front-end
// (those are external collaborators per spec.md §1).
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/shibukawa/solite/block"
	"github.com/shibukawa/solite/config"
	"github.com/shibukawa/solite/dotcmd"
	"github.com/shibukawa/solite/engine"
	"github.com/shibukawa/solite/export"
	"github.com/shibukawa/solite/runtime"
	"github.com/shibukawa/solite/snapshot"
)

// Context carries global flags into every subcommand's Run method.
type Context struct {
	Config  string
	Verbose bool
}

var CLI struct {
	Config   string      `help:"Configuration file path" default:"solite.yaml"`
	Verbose  bool        `help:"Enable verbose output" short:"v"`
	Run      RunCmd      `cmd:"" help:"Execute a SQL block file to completion"`
	Snapshot SnapshotCmd `cmd:"" help:"Run a SQL block file under the snapshot engine"`
	Bench    BenchCmd    `cmd:"" help:"Benchmark a single statement"`
	Export   ExportCmd   `cmd:"" help:"Execute a statement and export its rows"`
	Version  VersionCmd  `cmd:"" help:"Show version information"`
}

type VersionCmd struct{}

func (c *VersionCmd) Run(_ *Context) error {
	fmt.Println("solite v0.1.0")
	return nil
}

// RunCmd drives a file's blocks to completion, printing .print/.sh
// output as it streams in.
type RunCmd struct {
	Path string `arg:"" help:"Block source file to execute"`
}

func (c *RunCmd) Run(ctx *Context) error {
	conn, err := engine.OpenInMemory()
	if err != nil {
		return err
	}
	defer conn.Close()

	rt := runtime.New(conn)
	rt.Output = func(line string) { fmt.Println(line) }

	contents, err := os.ReadFile(c.Path)
	if err != nil {
		return err
	}
	rt.Enqueue(c.Path, string(contents), block.FileSource)
	return rt.ExecuteToCompletion()
}

// SnapshotCmd runs a file's blocks under the snapshot engine, reviewing
// interactively unless --yes is passed.
type SnapshotCmd struct {
	Path string `arg:"" help:"Block source file to snapshot"`
	Yes  bool   `help:"Write mismatches without prompting" default:"false"`
}

func (c *SnapshotCmd) Run(ctx *Context) error {
	cfg, err := config.Load(ctx.Config)
	if err != nil {
		return err
	}

	conn, err := engine.OpenInMemory()
	if err != nil {
		return err
	}
	defer conn.Close()

	trace, err := snapshot.Attach(conn)
	if err != nil {
		return err
	}

	dir := cfg.SnapshotDirectory
	if dir == "" {
		dir = snapshot.SnapshotDirFor(c.Path)
	}

	var prompt *snapshot.Prompt
	if !c.Yes {
		prompt = snapshot.NewConsolePrompt(os.Stdin, colorableStdout())
	}

	runner := snapshot.NewRunner(runtime.New(conn), trace, prompt, dir)
	runner.Interactive = !c.Yes

	contents, err := os.ReadFile(c.Path)
	if err != nil {
		return err
	}

	existing, err := existingSnapshotNames(dir, filepath.Base(c.Path))
	if err != nil {
		return err
	}

	report, err := runner.RunFile(c.Path, string(contents), existing)
	if err != nil {
		return err
	}
	fmt.Print(report.String())
	return nil
}

func existingSnapshotNames(dir, sourceBase string) (map[string]bool, error) {
	base := sourceBase[:len(sourceBase)-len(filepath.Ext(sourceBase))]
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return map[string]bool{}, nil
	}
	if err != nil {
		return nil, err
	}
	out := map[string]bool{}
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".snap" {
			if len(e.Name()) > len(base) && e.Name()[:len(base)] == base {
				out[e.Name()] = true
			}
		}
	}
	return out, nil
}

// BenchCmd prepares and benchmarks a single statement.
type BenchCmd struct {
	SQL        string `arg:"" help:"Statement text to benchmark"`
	Iterations int    `help:"Iteration count" short:"n" default:"10"`
}

func (c *BenchCmd) Run(ctx *Context) error {
	conn, err := engine.OpenInMemory()
	if err != nil {
		return err
	}
	defer conn.Close()

	rt := runtime.New(conn)
	_, stmt, err := rt.PrepareWithParameters(c.SQL)
	if err != nil {
		return err
	}

	cmd := &dotcmd.Command{Kind: dotcmd.Bench, Stmt: stmt, Iterations: c.Iterations}
	rt.Output = func(line string) { fmt.Println(line) }
	return rt.ExecuteDot(cmd)
}

// ExportCmd prepares a statement and exports its rows to a path, with
// the format inferred from the extension.
type ExportCmd struct {
	SQL  string `arg:"" help:"Statement text to execute"`
	Path string `arg:"" help:"Output path (format inferred from extension)"`
}

func (c *ExportCmd) Run(ctx *Context) error {
	conn, err := engine.OpenInMemory()
	if err != nil {
		return err
	}
	defer conn.Close()

	rt := runtime.New(conn)
	_, stmt, err := rt.PrepareWithParameters(c.SQL)
	if err != nil {
		return err
	}

	format, ok := export.FormatFromPath(c.Path)
	if !ok {
		return fmt.Errorf("cannot infer export format from %q", c.Path)
	}
	sink, err := export.OpenSink(c.Path)
	if err != nil {
		return err
	}
	defer sink.Close()

	_, err = export.Write(stmt, sink, format)
	return err
}

// colorableStdout wraps stdout for ANSI-on-Windows support, and disables
// color globally when stdout isn't a real terminal (piped output, CI logs).
func colorableStdout() io.Writer {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}
	return colorable.NewColorableStdout()
}

func main() {
	kctx := kong.Parse(&CLI)
	appCtx := &Context{Config: CLI.Config, Verbose: CLI.Verbose}
	if err := kctx.Run(appCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
