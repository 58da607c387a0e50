package engine

import (
	"database/sql/driver"
	"io"

	"github.com/mattn/go-sqlite3"
)

// ColumnInfo is one column's static metadata, available once a
// Statement has produced its first row (or been asked directly).
type ColumnInfo struct {
	Name         string
	DeclaredType string
	Database     string
	Table        string
	Origin       string
}

// Statement owns a native prepared statement handle. It is mutated only
// by the Bind* methods, Step, and Reset, and is destroyed by Close
// (which releases the native handle).
type Statement struct {
	conn *Connection

	native *sqlite3.SQLiteStmt
	rows   driver.Rows

	originalSQL string
	paramNames  []string
	args        []driver.Value

	currentRow      []driver.Value
	currentSubtypes []Subtype
	generation      uint64

	done   bool
	closed bool
}

func newStatement(conn *Connection, native *sqlite3.SQLiteStmt, sqlText string) *Statement {
	n := native.NumInput()
	return &Statement{
		conn:        conn,
		native:      native,
		originalSQL: sqlText,
		args:        make([]driver.Value, n),
		paramNames:  make([]string, n),
	}
}

// OriginalSQL is the text passed to Connection.Prepare (just the first
// statement, not any trailing text).
func (s *Statement) OriginalSQL() string { return s.originalSQL }

// ExpandedSQL is the original text with bound parameters substituted in,
// as reported by the driver.
func (s *Statement) ExpandedSQL() string {
	if expander, ok := any(s.native).(interface{ ExpandedSQL() string }); ok {
		return expander.ExpandedSQL()
	}
	return s.originalSQL
}

func (s *Statement) ColumnNames() []string { return s.native.Columns() }

func (s *Statement) ColumnCount() int { return len(s.native.Columns()) }

// ColumnTypes returns each column's name and, when the driver exposes
// DeclTypes, its declared type. Database, Table and Origin are always
// left empty; origin metadata is not read from the driver.
func (s *Statement) ColumnTypes() []ColumnInfo {
	names := s.native.Columns()
	infos := make([]ColumnInfo, len(names))
	type declTyper interface{ DeclTypes() []string }
	var declTypes []string
	if dt, ok := any(s.native).(declTyper); ok {
		declTypes = dt.DeclTypes()
	}
	for i, n := range names {
		infos[i] = ColumnInfo{Name: n}
		if i < len(declTypes) {
			infos[i].DeclaredType = declTypes[i]
		}
	}
	return infos
}

func (s *Statement) ParameterCount() int { return len(s.args) }

// ParameterName returns the bind-parameter name at the given 1-based
// index (":foo", "@foo", "$foo"), or "" if positional/unknown.
func (s *Statement) ParameterName(idx int) string {
	if namer, ok := any(s.native).(interface{ BindParameterName(int) string }); ok {
		return namer.BindParameterName(idx)
	}
	if idx >= 1 && idx <= len(s.paramNames) {
		return s.paramNames[idx-1]
	}
	return ""
}

// Readonly reports whether stepping this statement leaves the database
// unchanged. It reports false when the driver does not expose the flag.
func (s *Statement) Readonly() bool {
	if ro, ok := any(s.native).(interface{ Readonly() bool }); ok {
		return ro.Readonly()
	}
	return false
}

func (s *Statement) checkOpen() error {
	if s.closed {
		return ErrStatementClosed
	}
	return nil
}

func (s *Statement) BindNull(idx int) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	s.args[idx-1] = nil
	return nil
}

func (s *Statement) BindInt64(idx int, v int64) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	s.args[idx-1] = v
	return nil
}

func (s *Statement) BindFloat64(idx int, v float64) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	s.args[idx-1] = v
	return nil
}

func (s *Statement) BindText(idx int, v string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	s.args[idx-1] = v
	return nil
}

func (s *Statement) BindBlob(idx int, v []byte) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	s.args[idx-1] = v
	return nil
}

// BindPointer binds a named opaque pointer (the sqlite3_bind_pointer
// mechanism), used to pass a statement handle into the bytecode() table
// under the sentinel name "stmt-pointer". go-sqlite3 does not expose
// sqlite3_bind_pointer through its public driver.Stmt surface; this is
// a best-effort extension point for a driver build that adds it.
func (s *Statement) BindPointer(idx int, name string, ptr any) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	type pointerBinder interface {
		BindPointer(idx int, name string, ptr any) error
	}
	if b, ok := any(s.native).(pointerBinder); ok {
		return b.BindPointer(idx, name, ptr)
	}
	return errUnsupportedf("bind_pointer")
}

func errUnsupportedf(what string) error {
	return &Error{ResultCode: 1, CodeDescription: "unsupported", Message: what + " not supported by this driver build"}
}

// Step advances the cursor. It returns (true, nil) positioned on a row,
// (false, nil) on normal completion, or (false, err) on failure.
func (s *Statement) Step() (bool, error) {
	if err := s.checkOpen(); err != nil {
		return false, err
	}
	if s.done {
		return false, nil
	}

	if s.rows == nil {
		rows, err := s.native.Query(s.args)
		if err != nil {
			return false, normalizeError(err)
		}
		s.rows = rows
	}

	dest := make([]driver.Value, len(s.native.Columns()))
	err := s.rows.Next(dest)
	if err == io.EOF {
		s.done = true
		return false, nil
	}
	if err != nil {
		return false, normalizeError(err)
	}

	s.currentRow = dest
	s.currentSubtypes = s.readSubtypes(len(dest))
	s.generation++
	return true, nil
}

func (s *Statement) readSubtypes(n int) []Subtype {
	type subtyper interface{ ColumnTypeSubtype(int) int }
	st, ok := s.rows.(subtyper)
	if !ok {
		return nil
	}
	out := make([]Subtype, n)
	for i := range out {
		out[i] = Subtype(st.ColumnTypeSubtype(i))
	}
	return out
}

// Execute steps the statement to completion, returning the number of
// rows yielded (0 for DML/DDL with no result set).
func (s *Statement) Execute() (int64, error) {
	var n int64
	for {
		has, err := s.Step()
		if err != nil {
			return n, err
		}
		if !has {
			return n, nil
		}
		n++
	}
}

// Value returns a borrowed, zero-copy view over column idx (0-based) of
// the current row. It expires at the next Step/Reset call.
func (s *Statement) Value(idx int) Value {
	return borrowedValue{stmt: s, gen: s.generation, colIdx: idx}
}

// Reset rewinds the statement so it can be re-stepped (e.g. with new
// bound values), invalidating any borrowed values from the prior run.
func (s *Statement) Reset() error {
	if s.rows != nil {
		s.rows.Close()
		s.rows = nil
	}
	s.done = false
	s.generation++
	// go-sqlite3's SQLiteStmt.Query resets the native statement
	// internally before stepping, so there is nothing else to do here;
	// the next Step call will issue a fresh Query.
	return nil
}

func (s *Statement) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.rows != nil {
		s.rows.Close()
		s.rows = nil
	}
	return s.native.Close()
}
