package snapshot

import (
	"fmt"

	"github.com/shibukawa/solite/engine"
)

// Trace is the shadow in-memory database a snapshot run attaches to the
// driven connection, recording every snapped statement and its bytecode
// for later export, plus the extension function/module inventory around
// a `.load`.
type Trace struct {
	conn *engine.Connection

	nextID int64
}

const attachSchema = `
ATTACH DATABASE ':memory:' AS solite_snapshot;

CREATE TABLE solite_snapshot.snapped_statement (
	id INTEGER PRIMARY KEY,
	sql TEXT NOT NULL,
	reference TEXT NOT NULL,
	execution_start REAL,
	execution_end REAL
);

CREATE TABLE solite_snapshot.snapped_statement_bytecode_steps (
	statement_id INTEGER NOT NULL,
	addr INTEGER, opcode TEXT, p1 INTEGER, p2 INTEGER, p3 INTEGER,
	p4 TEXT, p5 INTEGER, comment TEXT, subprog TEXT, nexec INTEGER, ncycle INTEGER
);

CREATE TABLE solite_snapshot.base_functions(name TEXT);
CREATE TABLE solite_snapshot.base_modules(name TEXT);
CREATE TABLE solite_snapshot.loaded_functions(name TEXT);
CREATE TABLE solite_snapshot.loaded_modules(name TEXT);
`

// Attach opens the shadow schema on conn. Must be called once per
// connection before any RegisterStatement call.
func Attach(conn *engine.Connection) (*Trace, error) {
	if err := conn.ExecuteScript(attachSchema); err != nil {
		return nil, fmt.Errorf("snapshot: attach trace schema: %w", err)
	}
	return &Trace{conn: conn}, nil
}

// RegisterStatement records a snapped statement and returns its assigned
// id, used to key its bytecode rows.
func (t *Trace) RegisterStatement(sqlText, reference string) (int64, error) {
	t.nextID++
	id := t.nextID
	_, stmt, err := t.conn.Prepare(
		`INSERT INTO solite_snapshot.snapped_statement(id, sql, reference) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()
	if err := stmt.BindInt64(1, id); err != nil {
		return 0, err
	}
	if err := stmt.BindText(2, sqlText); err != nil {
		return 0, err
	}
	if err := stmt.BindText(3, reference); err != nil {
		return 0, err
	}
	if _, err := stmt.Execute(); err != nil {
		return 0, err
	}
	return id, nil
}

// RegisterBytecode records target's bytecode trace under statementID.
func (t *Trace) RegisterBytecode(statementID int64, target *engine.Statement) error {
	steps, err := t.conn.BytecodeSteps(target)
	if err != nil {
		return err
	}
	for _, s := range steps {
		_, ins, err := t.conn.Prepare(`INSERT INTO solite_snapshot.snapped_statement_bytecode_steps
			(statement_id, addr, opcode, p1, p2, p3, p4, p5, comment, subprog, nexec, ncycle)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		bind := func(idx int, v int64) error { return ins.BindInt64(idx, v) }
		if err := bind(1, statementID); err != nil {
			ins.Close()
			return err
		}
		_ = bind(2, s.Addr)
		_ = ins.BindText(3, s.Opcode)
		_ = bind(4, s.P1)
		_ = bind(5, s.P2)
		_ = bind(6, s.P3)
		_ = ins.BindText(7, s.P4)
		_ = bind(8, s.P5)
		_ = ins.BindText(9, s.Comment)
		_ = ins.BindText(10, s.Subprog)
		_ = bind(11, s.Nexec)
		_ = bind(12, s.Ncycle)
		if _, err := ins.Execute(); err != nil {
			ins.Close()
			return err
		}
		ins.Close()
	}
	return nil
}

// SnapshotBaseline records the function/module inventory before a `.load`
// runs, so LoadDelta can report what the extension introduced.
func (t *Trace) SnapshotBaseline() error {
	if err := t.conn.Execute(`DELETE FROM solite_snapshot.base_functions;
		INSERT INTO solite_snapshot.base_functions SELECT name FROM pragma_function_list ORDER BY 1;
		DELETE FROM solite_snapshot.base_modules;
		INSERT INTO solite_snapshot.base_modules SELECT name FROM pragma_module_list ORDER BY 1;`); err != nil {
		return fmt.Errorf("snapshot: base inventory: %w", err)
	}
	return nil
}

// LoadDelta computes the functions/modules introduced since the last
// SnapshotBaseline call, storing them as "loaded" and returning their
// names, sorted, for the aggregated report.
func (t *Trace) LoadDelta() (functions, modules []string, err error) {
	if err := t.conn.Execute(`DELETE FROM solite_snapshot.loaded_functions;
		INSERT INTO solite_snapshot.loaded_functions
			SELECT name FROM pragma_function_list WHERE name NOT IN (SELECT name FROM solite_snapshot.base_functions);
		DELETE FROM solite_snapshot.loaded_modules;
		INSERT INTO solite_snapshot.loaded_modules
			SELECT name FROM pragma_module_list WHERE name NOT IN (SELECT name FROM solite_snapshot.base_modules);`); err != nil {
		return nil, nil, fmt.Errorf("snapshot: load delta: %w", err)
	}

	functions, err = t.queryNames(`SELECT name FROM solite_snapshot.loaded_functions ORDER BY 1`)
	if err != nil {
		return nil, nil, err
	}
	modules, err = t.queryNames(`SELECT name FROM solite_snapshot.loaded_modules ORDER BY 1`)
	if err != nil {
		return nil, nil, err
	}
	return functions, modules, nil
}

func (t *Trace) queryNames(q string) ([]string, error) {
	_, stmt, err := t.conn.Prepare(q)
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
