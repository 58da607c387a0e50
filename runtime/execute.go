package runtime

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os/exec"

	"golang.org/x/sync/errgroup"

	"github.com/shibukawa/solite/dotcmd"
	"github.com/shibukawa/solite/export"
)

// ExecuteDot dispatches a parsed dot command, per §4.5.
func (r *Runtime) ExecuteDot(cmd *dotcmd.Command) error {
	switch cmd.Kind {
	case dotcmd.Print:
		r.emit(cmd.Text)
		return nil

	case dotcmd.Shell:
		return r.runShell(cmd.ShellLine)

	case dotcmd.Tables:
		names, err := r.listTables()
		if err != nil {
			return err
		}
		for _, n := range names {
			r.emit(n)
		}
		return nil

	case dotcmd.Schema:
		stmts, err := r.schemaStatements()
		if err != nil {
			return err
		}
		for _, s := range stmts {
			r.emit(s)
		}
		return nil

	case dotcmd.Open:
		return r.Reopen(cmd.Path)

	case dotcmd.Load:
		return r.conn.LoadExtension(cmd.LoadPath, cmd.Entrypoint)

	case dotcmd.Timer:
		r.timerEnabled = cmd.TimerOn
		return nil

	case dotcmd.ParamSet:
		return r.DefineParameter(cmd.ParamKey, cmd.ParamValue)

	case dotcmd.ParamUnset:
		return r.UnsetParameter(cmd.ParamKey)

	case dotcmd.ParamList:
		r.emit(dotcmd.FormatParamList(r.ListParameters()))
		return nil

	case dotcmd.ParamClear:
		return r.ClearParameters()

	case dotcmd.Export:
		return r.runExport(cmd)

	case dotcmd.VegaLite:
		return r.runVegaLite(cmd)

	case dotcmd.Bench:
		report, err := r.runBench(cmd)
		if err != nil {
			return err
		}
		r.emit(report.String())
		return nil

	default:
		return fmt.Errorf("runtime: unhandled dot command kind %v", cmd.Kind)
	}
}

func (r *Runtime) listTables() ([]string, error) {
	_, stmt, err := r.conn.Prepare(`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite\_%' ESCAPE '\' ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	var names []string
	for {
		has, err := stmt.Step()
		if err != nil {
			return names, err
		}
		if !has {
			break
		}
		names = append(names, stmt.Value(0).Text())
	}
	return names, nil
}

func (r *Runtime) schemaStatements() ([]string, error) {
	_, stmt, err := r.conn.Prepare(`SELECT sql FROM sqlite_master WHERE sql IS NOT NULL ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	var out []string
	for {
		has, err := stmt.Step()
		if err != nil {
			return out, err
		}
		if !has {
			break
		}
		out = append(out, stmt.Value(0).Text())
	}
	return out, nil
}

// runShell spawns ShellLine through /bin/sh and streams its stdout and
// stderr lines back through emit as they arrive; the two pipes are
// drained concurrently so a chatty stderr producer can't deadlock a
// child that blocks on a full stdout pipe.
func (r *Runtime) runShell(line string) error {
	cmd := exec.Command("/bin/sh", "-c", line)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return err
	}

	if err := cmd.Start(); err != nil {
		return err
	}

	var g errgroup.Group
	g.Go(func() error {
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			r.emit(scanner.Text())
		}
		return scanner.Err()
	})
	g.Go(func() error {
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			r.emit(scanner.Text())
		}
		return scanner.Err()
	})

	if err := g.Wait(); err != nil {
		cmd.Wait()
		return err
	}
	return cmd.Wait()
}

func (r *Runtime) runExport(cmd *dotcmd.Command) error {
	format, ok := export.FormatFromPath(cmd.Target)
	if !ok {
		return fmt.Errorf("dotcmd: .export: cannot infer format from %q", cmd.Target)
	}

	sink, err := export.OpenSink(cmd.Target)
	if err != nil {
		return err
	}
	defer sink.Close()

	_, err = export.Write(cmd.Stmt, sink, format)
	return err
}

func (r *Runtime) runVegaLite(cmd *dotcmd.Command) error {
	spec, err := buildVegaLiteSpec(cmd)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(spec)
	if err != nil {
		return err
	}
	r.emit(string(encoded))
	return nil
}
