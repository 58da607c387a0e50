// Package runtime is the pull-based driver described in the spec as the
// `next_step` state machine: it owns a connection and a block stack,
// drains blocks through the splitter, and executes the steps they
// yield.
package runtime

import (
	"errors"
	"strings"

	"github.com/shibukawa/solite/block"
	"github.com/shibukawa/solite/dotcmd"
	"github.com/shibukawa/solite/engine"
)

// ErrStackEmpty is returned by NextStep when there is no more work:
// the spec's `None` arm of `Some(Ok)/Some(Err)/None`.
var ErrStackEmpty = errors.New("runtime: block stack is empty")

// Runtime owns a connection, a block stack (LIFO with front-insertion
// for resumption), and the parameter-store-initialized flag.
type Runtime struct {
	conn     *engine.Connection
	stack    *block.Stack
	splitter *block.Splitter

	paramStoreReady bool
	timerEnabled    bool

	// Output receives text from .print and streamed .sh output; tests
	// and embedders assign it directly. When nil, that text is dropped.
	Output func(line string)

	// OnReopen, when set, is called after .open replaces the
	// connection, so a caller can re-register bundled extensions on the
	// fresh handle.
	OnReopen func(conn *engine.Connection) error
}

// New wraps an already-open connection in a Runtime.
func New(conn *engine.Connection) *Runtime {
	return &Runtime{
		conn:     conn,
		stack:    block.NewStack(),
		splitter: &block.Splitter{},
	}
}

// SetUVResolver installs the resolver `.load uv:pkg` uses.
func (r *Runtime) SetUVResolver(uv dotcmd.UVResolver) { r.splitter.UVResolver = uv }

func (r *Runtime) Connection() *engine.Connection { return r.conn }

// Enqueue pushes a new block of source text onto the stack.
func (r *Runtime) Enqueue(name, contents string, kind block.SourceKind) {
	r.stack.Push(block.New(name, contents, kind))
}

// NextStep returns the next step, ErrStackEmpty once the stack is
// drained, or any other error the splitter produced for the block that
// was on top (that block is then discarded; blocks below it are
// preserved, per the spec's error-isolation rule).
func (r *Runtime) NextStep() (*block.Step, error) {
	for {
		top, ok := r.stack.Pop()
		if !ok {
			return nil, ErrStackEmpty
		}

		step, err := r.splitter.Next(top, r)
		if errors.Is(err, block.ErrDone) {
			continue
		}
		if err != nil {
			return nil, err
		}

		if !top.Done() {
			r.stack.Push(top)
		}
		return step, nil
	}
}

// PrepareWithParameters prepares sql and binds every named placeholder
// from the parameter store, with its sigil (":", "@", "$") stripped.
// Unresolved names are left bound to NULL (the engine default).
func (r *Runtime) PrepareWithParameters(sqlText string) (*int, *engine.Statement, error) {
	restOffset, stmt, err := r.conn.Prepare(sqlText)
	if err != nil || stmt == nil {
		return restOffset, stmt, err
	}

	for i := 1; i <= stmt.ParameterCount(); i++ {
		name := stmt.ParameterName(i)
		if name == "" {
			continue
		}
		bare := strings.TrimLeft(name, ":@$")
		if value, ok := r.lookupParameter(bare); ok {
			if err := value.BindTo(stmt, i); err != nil {
				return restOffset, stmt, err
			}
		}
	}

	return restOffset, stmt, nil
}

// ExecuteToCompletion drains NextStep until exhaustion, executing every
// SQL statement and dispatching every dot command, propagating the
// first error.
func (r *Runtime) ExecuteToCompletion() error {
	for {
		step, err := r.NextStep()
		if errors.Is(err, ErrStackEmpty) {
			return nil
		}
		if err != nil {
			return err
		}

		if step.SQL != nil {
			if _, err := step.SQL.Stmt.Execute(); err != nil {
				return err
			}
		}
		if step.Dot != nil {
			if err := r.ExecuteDot(step.Dot); err != nil {
				return err
			}
		}
	}
}

// Reopen replaces the runtime's connection with one opened on path
// (":memory:" or "" for an in-memory database), invoking OnReopen on the
// fresh handle so bundled extensions can be re-registered.
func (r *Runtime) Reopen(path string) error {
	var (
		conn *engine.Connection
		err  error
	)
	if path == "" || path == ":memory:" {
		conn, err = engine.OpenInMemory()
	} else {
		conn, err = engine.Open(path)
	}
	if err != nil {
		return err
	}

	if r.OnReopen != nil {
		if err := r.OnReopen(conn); err != nil {
			conn.Close()
			return err
		}
	}

	old := r.conn
	r.conn = conn
	r.paramStoreReady = false
	if old != nil {
		old.Close()
	}
	return nil
}

func (r *Runtime) emit(line string) {
	if r.Output != nil {
		r.Output(line)
	}
}
