package engine

import "fmt"

// BytecodeStep is one row of the engine's virtual-machine introspection
// view, surfaced via the `bytecode()` eponymous virtual table. Used by
// progress reporting, the benchmark report, and the snapshot trace
// database.
type BytecodeStep struct {
	Addr    int64
	Opcode  string
	P1      int64
	P2      int64
	P3      int64
	P4      string
	P5      int64
	Comment string
	Subprog string
	Nexec   int64
	Ncycle  int64
}

// stmtPointerParam is the sentinel bind name the bytecode() table
// expects its target statement pointer under.
const stmtPointerParam = "stmt-pointer"

// BytecodeSteps returns the ordered bytecode trace for target, by
// preparing `SELECT ... FROM bytecode(?)` and binding target's pointer
// under the sentinel name "stmt-pointer". Requires SQLite built with
// -DSQLITE_ENABLE_BYTECODE_VTAB=1.
func (c *Connection) BytecodeSteps(target *Statement) ([]BytecodeStep, error) {
	if c.closed() {
		return nil, ErrConnectionClosed
	}

	const q = `select addr, opcode, p1, p2, p3, p4, p5, comment, subprog, nexec, ncycle from bytecode(?)`
	_, stmt, err := c.Prepare(q)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	if err := stmt.BindPointer(1, stmtPointerParam, target); err != nil {
		return nil, fmt.Errorf("engine: bytecode: %w", err)
	}

	var steps []BytecodeStep
	for {
		has, err := stmt.Step()
		if err != nil {
			return steps, err
		}
		if !has {
			break
		}

		get := func(i int) Value { return stmt.Value(i) }
		asInt := func(i int) int64 {
			v, _ := get(i).Int64()
			return v
		}

		steps = append(steps, BytecodeStep{
			Addr:    asInt(0),
			Opcode:  get(1).Text(),
			P1:      asInt(2),
			P2:      asInt(3),
			P3:      asInt(4),
			P4:      get(5).Text(),
			P5:      asInt(6),
			Comment: get(7).Text(),
			Subprog: get(8).Text(),
			Nexec:   asInt(9),
			Ncycle:  asInt(10),
		})
	}
	return steps, nil
}
