// Package dotcmd implements the dot-command subsystem: parsing of the
// lines (or '!' shell shorthand) that appear inside a block alongside
// SQL, and the tagged-variant command type the runtime executes.
package dotcmd

import (
	"errors"

	"github.com/shibukawa/solite/engine"
)

var (
	ErrUnknownCommand = errors.New("dotcmd: unknown command")
	ErrBadArguments   = errors.New("dotcmd: invalid arguments")
)

// Kind tags which variant a Command is.
type Kind int

const (
	Print Kind = iota
	Shell
	Tables
	Schema
	Open
	Load
	Timer
	ParamSet
	ParamUnset
	ParamList
	ParamClear
	Export
	VegaLite
	Bench
)

func (k Kind) String() string {
	switch k {
	case Print:
		return "print"
	case Shell:
		return "sh"
	case Tables:
		return "tables"
	case Schema:
		return "schema"
	case Open:
		return "open"
	case Load:
		return "load"
	case Timer:
		return "timer"
	case ParamSet:
		return "param-set"
	case ParamUnset:
		return "param-unset"
	case ParamList:
		return "param-list"
	case ParamClear:
		return "param-clear"
	case Export:
		return "export"
	case VegaLite:
		return "vegalite"
	case Bench:
		return "bench"
	default:
		return "unknown"
	}
}

// Command is the dot-command tagged variant. Only the fields relevant
// to Kind are populated; the rest are zero.
type Command struct {
	Kind Kind

	// Print
	Text string

	// Shell
	ShellLine string

	// Open
	Path string

	// Load
	LoadPath   string
	Entrypoint string
	ViaUV      bool

	// Timer
	TimerOn bool

	// Param
	ParamKey   string
	ParamValue engine.OwnedValue

	// Export / VegaLite / Bench share the trailing-SQL shape.
	Target       string // export path, or vegalite mark name
	Stmt         *engine.Statement
	RawSQL       string
	ConsumedRest int // bytes of `rest` consumed by the trailing SQL

	// Bench
	BenchName  string
	Iterations int
}

// ParamEntry is one row of `.param list`.
type ParamEntry struct {
	Name  string
	Value engine.OwnedValue
}

// Runtime is the slice of runtime.Runtime the dot-command subsystem
// needs. Defined here (not imported from package runtime) so dotcmd has
// no dependency on its own caller; runtime.Runtime satisfies this
// interface.
type Runtime interface {
	Connection() *engine.Connection
	Reopen(path string) error
	DefineParameter(name string, value engine.OwnedValue) error
	UnsetParameter(name string) error
	ListParameters() []ParamEntry
	ClearParameters() error

	// PrepareWithParameters prepares sql, binding any named placeholder
	// to its matching entry in the parameter store. export/vegalite/bench
	// all co-parse their trailing SQL through this rather than a raw
	// Connection.Prepare, so parameters are live in snapshots and
	// benchmarks exactly as they are in a plain query.
	PrepareWithParameters(sqlText string) (*int, *engine.Statement, error)
}

// UVResolver resolves a `uv:`-prefixed package name to a filesystem
// path, the way `uv tool run` would. The core does not invoke `uv`
// itself; callers that want the uv: branch satisfied must supply a
// resolver.
type UVResolver func(pkg string) (path string, ok bool, err error)
