package dotcmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shibukawa/solite/engine"
)

// Parse is the dot-command entry point: (command_name, args_string,
// remaining_block_text, runtime) -> command, or a parse error. name is
// "" for a '!' shell shorthand line, in which case args is the whole
// shell line verbatim. rest is everything in the block after the dot
// line's newline; commands that co-parse trailing SQL (export,
// vegalite/vl, bench) consume a prefix of it and report how much in
// Command.ConsumedRest.
func Parse(name, args, rest string, rt Runtime, uv UVResolver) (*Command, error) {
	if name == "" {
		return &Command{Kind: Shell, ShellLine: args}, nil
	}

	switch strings.ToLower(name) {
	case "print":
		return &Command{Kind: Print, Text: args}, nil
	case "sh":
		return &Command{Kind: Shell, ShellLine: args}, nil
	case "tables":
		return &Command{Kind: Tables}, nil
	case "schema":
		return &Command{Kind: Schema}, nil
	case "open":
		path := strings.TrimSpace(args)
		if path == "" {
			return nil, fmt.Errorf("%w: .open requires a path", ErrBadArguments)
		}
		return &Command{Kind: Open, Path: path}, nil
	case "load":
		return parseLoad(args, uv)
	case "timer":
		on, err := parseBool(args)
		if err != nil {
			return nil, fmt.Errorf("%w: .timer %s", ErrBadArguments, args)
		}
		return &Command{Kind: Timer, TimerOn: on}, nil
	case "param":
		return parseParam(args, rt)
	case "export":
		return parseTrailingSQL(Export, args, rest, rt)
	case "vegalite", "vl":
		return parseTrailingSQL(VegaLite, args, rest, rt)
	case "bench":
		return parseBench(args, rest, rt)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
}

// SplitCommandLine splits a dot line (without its leading '.' or '!')
// into the command name and the single-space-delimited argument string.
func SplitCommandLine(line string) (name, args string) {
	idx := strings.IndexByte(line, ' ')
	if idx < 0 {
		return line, ""
	}
	return line[:idx], line[idx+1:]
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "on":
		return true, nil
	case "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%w: not a boolean: %q", ErrBadArguments, s)
	}
}

func parseLoad(args string, uv UVResolver) (*Command, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: .load requires a path", ErrBadArguments)
	}

	path := fields[0]
	entrypoint := ""
	if len(fields) > 1 {
		entrypoint = fields[1]
	}

	if rest, ok := strings.CutPrefix(path, "uv:"); ok {
		if uv == nil {
			return nil, fmt.Errorf("%w: .load uv: requires a UVResolver", ErrBadArguments)
		}
		resolved, ok, err := uv(rest)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: uv could not resolve %q", ErrBadArguments, rest)
		}
		return &Command{Kind: Load, LoadPath: resolved, Entrypoint: entrypoint, ViaUV: true}, nil
	}

	return &Command{Kind: Load, LoadPath: path, Entrypoint: entrypoint}, nil
}

func parseParam(args string, rt Runtime) (*Command, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: .param requires a subcommand", ErrBadArguments)
	}

	switch fields[0] {
	case "set":
		if len(fields) < 3 {
			return nil, fmt.Errorf("%w: .param set NAME VALUE", ErrBadArguments)
		}
		key := fields[1]
		raw := strings.Join(fields[2:], " ")
		return &Command{Kind: ParamSet, ParamKey: key, ParamValue: parseLiteral(raw)}, nil
	case "unset":
		if len(fields) < 2 {
			return nil, fmt.Errorf("%w: .param unset NAME", ErrBadArguments)
		}
		return &Command{Kind: ParamUnset, ParamKey: fields[1]}, nil
	case "list":
		return &Command{Kind: ParamList}, nil
	case "clear":
		return &Command{Kind: ParamClear}, nil
	default:
		return nil, fmt.Errorf("%w: unknown .param subcommand %q", ErrBadArguments, fields[0])
	}
}

// parseLiteral parses a SQLite-literal-shaped value (int, then float,
// falling back to text) the way `.param set` stores it.
func parseLiteral(raw string) engine.OwnedValue {
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return engine.IntValue(i)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return engine.FloatValue(f)
	}
	return engine.TextValue(raw)
}

// FormatParamList renders `.param list` output: "NAME = VALUE" lines
// sorted by name for determinism.
func FormatParamList(entries []ParamEntry) string {
	sorted := append([]ParamEntry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var b strings.Builder
	for _, e := range sorted {
		fmt.Fprintf(&b, "%s = %s\n", e.Name, literalText(e.Value))
	}
	return b.String()
}

func literalText(v engine.OwnedValue) string {
	if v.IsNull() {
		return "NULL"
	}
	switch {
	case v.Blob() != nil:
		return string(v.Blob())
	default:
		if i, ok := v.Int64(); ok && v.Text() == "" {
			return strconv.FormatInt(i, 10)
		}
		if f, ok := v.Float64(); ok && v.Text() == "" {
			return strconv.FormatFloat(f, 'g', -1, 64)
		}
		return v.Text()
	}
}

// parseTrailingSQL implements the shared shape of `.export` and
// `.vegalite`/`.vl`: a target/mark argument followed by a trailing SQL
// statement parsed out of rest.
func parseTrailingSQL(kind Kind, args, rest string, rt Runtime) (*Command, error) {
	target := strings.TrimSpace(args)
	if target == "" {
		return nil, fmt.Errorf("%w: .%s requires a target", ErrBadArguments, kind)
	}

	stmt, rawSQL, consumed, err := prepareRest(rest, rt)
	if err != nil {
		return nil, err
	}

	return &Command{Kind: kind, Target: target, Stmt: stmt, RawSQL: rawSQL, ConsumedRest: consumed}, nil
}

func parseBench(args, rest string, rt Runtime) (*Command, error) {
	name := ""
	iterations := 10 // matches the original dot/bench.rs's fixed 10-run loop
	fields := strings.Fields(args)
	for i := 0; i < len(fields); i++ {
		switch fields[i] {
		case "--name":
			if i+1 >= len(fields) {
				return nil, fmt.Errorf("%w: --name requires a value", ErrBadArguments)
			}
			i++
			name = fields[i]
		case "--n", "-n":
			if i+1 >= len(fields) {
				return nil, fmt.Errorf("%w: -n requires a value", ErrBadArguments)
			}
			i++
			n, err := strconv.Atoi(fields[i])
			if err != nil {
				return nil, fmt.Errorf("%w: -n %s", ErrBadArguments, fields[i])
			}
			iterations = n
		}
	}

	stmt, rawSQL, consumed, err := prepareRest(rest, rt)
	if err != nil {
		return nil, err
	}

	return &Command{
		Kind: Bench, BenchName: name, Iterations: iterations,
		Stmt: stmt, RawSQL: rawSQL, ConsumedRest: consumed,
	}, nil
}

// prepareRest prepares the first SQL statement in rest and reports how
// many of its bytes were consumed, relative to rest (never an absolute
// block offset — see the rest_length resolution in SPEC_FULL.md).
func prepareRest(rest string, rt Runtime) (stmt *engine.Statement, rawSQL string, consumed int, err error) {
	restOffset, stmt, err := rt.PrepareWithParameters(rest)
	if err != nil {
		return nil, "", 0, err
	}
	if stmt == nil {
		return nil, "", 0, fmt.Errorf("%w: expected a trailing SQL statement", ErrBadArguments)
	}
	rawSQL = stmt.OriginalSQL()
	if restOffset != nil {
		consumed = *restOffset
	} else {
		consumed = len(rest)
	}
	return stmt, rawSQL, consumed, nil
}
