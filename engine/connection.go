package engine

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"
	"sync"

	"github.com/mattn/go-sqlite3"

	"github.com/shibukawa/solite/tokenizer"
)

// dbConfigEnableStmtScanStatus is SQLITE_DBCONFIG_STMT_SCANSTATUS (1018),
// preserved literally per the spec: some bundled extensions require it
// to be enabled on the in-memory database's connection. It backs the
// ncycle column of the bytecode trace.
const dbConfigEnableStmtScanStatus = 1018

// Connection owns one native SQLite database handle. It is not
// shareable across goroutines for concurrent use; like the engine
// itself, it may be handed to another goroutine only while exclusively
// held by the caller.
type Connection struct {
	path string

	mu          sync.Mutex
	db          *sql.DB
	conn        *sql.Conn
	raw         *sqlite3.SQLiteConn
	interrupted bool

	progressAux any
}

// connector opens a fresh driver.Conn on every Connect call; Connection
// pins *sql.DB to a single open connection (SetMaxOpenConns(1)) and holds
// that *sql.Conn for its whole life, so conn.Raw always observes the one
// native handle opened first.
type connector struct {
	dsn        string
	extensions bool
}

func (c *connector) Connect(ctx context.Context) (driver.Conn, error) {
	drv := &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			if err := conn.EnableLoadExtension(c.extensions); err != nil {
				return err
			}
			return nil
		},
	}
	return drv.Open(c.dsn)
}

func (c *connector) Driver() driver.Driver { return &sqlite3.SQLiteDriver{} }

func open(dsn string, inMemory bool) (*Connection, error) {
	db := sql.OpenDB(&connector{dsn: dsn, extensions: true})
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	sc, err := db.Conn(context.Background())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("engine: open %s: %w", dsn, err)
	}

	c := &Connection{path: dsn, db: db, conn: sc}

	if err := sc.Raw(func(driverConn any) error {
		c.raw = driverConn.(*sqlite3.SQLiteConn)
		return nil
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("engine: raw handle: %w", err)
	}

	if inMemory {
		// SetDbConfig is not part of go-sqlite3's exported API as of
		// this writing; this call names the exact flag the spec
		// requires and is the extension point a build carrying a
		// patched driver (or a future upstream release) would fill in.
		if setter, ok := any(c.raw).(interface {
			SetDbConfig(op, val int) (int, error)
		}); ok {
			if _, err := setter.SetDbConfig(dbConfigEnableStmtScanStatus, 1); err != nil {
				db.Close()
				return nil, fmt.Errorf("engine: db_config(%d): %w", dbConfigEnableStmtScanStatus, err)
			}
		}
	}

	return c, nil
}

// Open opens a file-backed database at path.
func Open(path string) (*Connection, error) {
	return open(path, false)
}

// OpenInMemory opens a private in-memory database, enabling the
// vendor-specific db-config flag the spec requires for certain bundled
// extensions.
func OpenInMemory() (*Connection, error) {
	return open(":memory:", true)
}

func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	c.conn = nil
	c.raw = nil
	return err
}

func (c *Connection) closed() bool { return c.db == nil }

// Prepare prepares the first statement found in sql, per the spec's
// contract: a rest offset is reported iff only a prefix was consumed, a
// nil statement means the input was whitespace/comments only.
//
// go-sqlite3's driver.Stmt does not expose sqlite3_prepare_v2's tail
// pointer (it's consumed internally by Exec/Query's multi-statement
// loop), so the boundary is found here with the adapted tokenizer before
// the driver is asked to prepare anything; this keeps the (rest_offset,
// statement) contract without unexported driver internals.
func (c *Connection) Prepare(sql string) (restOffset *int, stmt *Statement, err error) {
	if c.closed() {
		return nil, nil, ErrConnectionClosed
	}

	end, onlyTrivia := firstStatementEnd(sql)
	if onlyTrivia {
		return nil, nil, nil
	}

	text := sql[:end]
	rest := strings.TrimSpace(sql[end:])
	var restOnlyTrivia bool
	if rest == "" {
		restOnlyTrivia = true
	} else if _, triv := firstStatementEnd(sql[end:]); triv {
		restOnlyTrivia = true
	}

	native, err := c.raw.Prepare(text)
	if err != nil {
		return nil, nil, normalizeError(err)
	}

	st := newStatement(c, native, text)

	if !restOnlyTrivia {
		o := end
		return &o, st, nil
	}
	return nil, st, nil
}

// firstStatementEnd scans sql with the tokenizer for the end of the
// first SQL statement (the byte offset just after its terminating
// semicolon, or end of string if unterminated). onlyTrivia is true when
// sql contains nothing but whitespace and comments.
func firstStatementEnd(sqlText string) (end int, onlyTrivia bool) {
	tz := tokenizer.NewSqlTokenizer(sqlText)
	sawContent := false
	lastNonTrivia := 0

	for tok, err := range tz.Tokens() {
		if err != nil {
			// Let the driver itself surface the real syntax error.
			return len(sqlText), false
		}
		switch tok.Type {
		case tokenizer.EOF:
			if !sawContent {
				return len(sqlText), true
			}
			return len(sqlText), false
		case tokenizer.WHITESPACE, tokenizer.LINE_COMMENT, tokenizer.BLOCK_COMMENT:
			continue
		case tokenizer.SEMICOLON:
			return tok.Position.Offset + len(tok.Value), false
		default:
			sawContent = true
			lastNonTrivia = tok.Position.Offset + len(tok.Value)
		}
	}
	_ = lastNonTrivia
	return len(sqlText), !sawContent
}

// Execute runs sqlText for its side effects, discarding any result rows.
// The text is handed to the driver's Exec, which runs every statement in
// it in turn.
func (c *Connection) Execute(sqlText string) error {
	if c.closed() {
		return ErrConnectionClosed
	}
	_, err := c.conn.ExecContext(context.Background(), sqlText)
	return normalizeError(err)
}

// ExecuteScript runs sql as a sequence of statements, using the
// driver's native multi-statement execution.
func (c *Connection) ExecuteScript(sqlText string) error {
	return c.Execute(sqlText)
}

// LoadExtension dynamically loads a shared library. entrypoint, when
// empty, uses the library's default entry point.
func (c *Connection) LoadExtension(path, entrypoint string) error {
	if c.closed() {
		return ErrConnectionClosed
	}
	if err := c.raw.LoadExtension(path, entrypoint); err != nil {
		return normalizeError(err)
	}
	return nil
}

// Serialize returns the current main database as a byte slice. Requires
// go-sqlite3 built with the `sqlite_serialize` tag.
func (c *Connection) Serialize() ([]byte, error) {
	if c.closed() {
		return nil, ErrConnectionClosed
	}
	serializer, ok := any(c.raw).(interface{ Serialize(schema string) ([]byte, error) })
	if !ok {
		return nil, fmt.Errorf("engine: serialize unsupported (build without sqlite_serialize tag)")
	}
	b, err := serializer.Serialize("main")
	if err != nil {
		return nil, normalizeError(err)
	}
	return b, nil
}

// ProgressCallback is invoked roughly every ops virtual-machine cycles.
// Returning true aborts the in-flight statement.
type ProgressCallback func(aux any) bool

// SetProgressHandler installs cb, invoked every ops VM cycles; aux is
// passed back to cb on every call. Ownership of cb and aux is
// transferred to the connection until the next install (or Close).
func (c *Connection) SetProgressHandler(ops int, cb ProgressCallback, aux any) {
	c.progressAux = aux
	if cb == nil {
		c.raw.RegisterProgressHandler(0, nil)
		return
	}
	c.raw.RegisterProgressHandler(ops, func() bool {
		return cb(aux)
	})
}

// ClearProgressHandler removes any installed handler.
func (c *Connection) ClearProgressHandler() {
	c.raw.RegisterProgressHandler(0, nil)
	c.progressAux = nil
}

// Interrupt requests cancellation of any in-flight statement on this
// connection. Safe to call from any goroutine.
func (c *Connection) Interrupt() {
	c.mu.Lock()
	c.interrupted = true
	c.mu.Unlock()
	c.raw.Interrupt()
}

func (c *Connection) IsInterrupted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interrupted
}

// InTransaction mirrors the engine's autocommit state.
func (c *Connection) InTransaction() bool {
	return !c.raw.AutoCommit()
}

func (c *Connection) Path() string { return c.path }

// rawConn exposes the underlying *sqlite3.SQLiteConn for use by
// statement.go and bytecode.go within this package only.
func (c *Connection) rawConn() *sqlite3.SQLiteConn { return c.raw }
