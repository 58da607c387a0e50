package runtime

import (
	"fmt"

	"github.com/shibukawa/solite/dotcmd"
	"github.com/shibukawa/solite/engine"
)

const paramTable = `temp.solite_params`

const createParamTableSQL = `CREATE TABLE IF NOT EXISTS ` + paramTable + ` (
	name TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	int_value INTEGER,
	float_value REAL,
	text_value TEXT,
	blob_value BLOB,
	subtype INTEGER NOT NULL DEFAULT 0
)`

const upsertParamSQL = `INSERT INTO ` + paramTable + `
	(name, kind, int_value, float_value, text_value, blob_value, subtype)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(name) DO UPDATE SET
		kind = excluded.kind, int_value = excluded.int_value,
		float_value = excluded.float_value, text_value = excluded.text_value,
		blob_value = excluded.blob_value, subtype = excluded.subtype`

// ensureParamStore lazily creates the parameter table. Per the spec's
// design note, the pragma dance around creation (writable-schema on,
// defensive off) is restored exactly on every exit path — deferred
// restoration gives that for free, including on the create failing.
func (r *Runtime) ensureParamStore() (err error) {
	if r.paramStoreReady {
		return nil
	}

	defensive, err := r.queryPragmaBool("defensive")
	if err != nil {
		return err
	}
	writable, err := r.queryPragmaBool("writable_schema")
	if err != nil {
		return err
	}

	if err := r.conn.Execute(pragmaSet("defensive", false)); err != nil {
		return err
	}
	defer func() {
		if restoreErr := r.conn.Execute(pragmaSet("defensive", defensive)); restoreErr != nil && err == nil {
			err = restoreErr
		}
	}()

	if err := r.conn.Execute(pragmaSet("writable_schema", true)); err != nil {
		return err
	}
	defer func() {
		if restoreErr := r.conn.Execute(pragmaSet("writable_schema", writable)); restoreErr != nil && err == nil {
			err = restoreErr
		}
	}()

	if err := r.conn.Execute(createParamTableSQL); err != nil {
		return err
	}

	r.paramStoreReady = true
	return nil
}

func pragmaSet(name string, on bool) string {
	state := "OFF"
	if on {
		state = "ON"
	}
	return fmt.Sprintf("PRAGMA %s=%s", name, state)
}

func (r *Runtime) queryPragmaBool(name string) (bool, error) {
	_, stmt, err := r.conn.Prepare(fmt.Sprintf("PRAGMA %s", name))
	if err != nil {
		return false, err
	}
	defer stmt.Close()

	has, err := stmt.Step()
	if err != nil {
		return false, err
	}
	if !has {
		return false, nil
	}
	v, _ := stmt.Value(0).Int64()
	return v != 0, nil
}

// DefineParameter lazy-initializes the parameter table, then upserts
// key = value.
func (r *Runtime) DefineParameter(key string, value engine.OwnedValue) error {
	if err := r.ensureParamStore(); err != nil {
		return err
	}

	_, stmt, err := r.conn.Prepare(upsertParamSQL)
	if err != nil {
		return err
	}
	defer stmt.Close()

	stmt.BindText(1, key)
	stmt.BindText(2, value.ValueKind())
	switch value.ValueKind() {
	case "int":
		i, _ := value.Int64()
		stmt.BindInt64(3, i)
		stmt.BindNull(4)
		stmt.BindNull(5)
		stmt.BindNull(6)
	case "float":
		f, _ := value.Float64()
		stmt.BindNull(3)
		stmt.BindFloat64(4, f)
		stmt.BindNull(5)
		stmt.BindNull(6)
	case "text":
		stmt.BindNull(3)
		stmt.BindNull(4)
		stmt.BindText(5, value.Text())
		stmt.BindNull(6)
	case "blob":
		stmt.BindNull(3)
		stmt.BindNull(4)
		stmt.BindNull(5)
		stmt.BindBlob(6, value.Blob())
	default:
		stmt.BindNull(3)
		stmt.BindNull(4)
		stmt.BindNull(5)
		stmt.BindNull(6)
	}
	stmt.BindInt64(7, int64(value.Subtype()))

	_, err = stmt.Execute()
	return err
}

func (r *Runtime) UnsetParameter(key string) error {
	if !r.paramStoreReady {
		return nil
	}
	_, stmt, err := r.conn.Prepare(`DELETE FROM ` + paramTable + ` WHERE name = ?`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	stmt.BindText(1, key)
	_, err = stmt.Execute()
	return err
}

func (r *Runtime) ClearParameters() error {
	if !r.paramStoreReady {
		return nil
	}
	_, stmt, err := r.conn.Prepare(`DELETE FROM ` + paramTable)
	if err != nil {
		return err
	}
	defer stmt.Close()
	_, err = stmt.Execute()
	return err
}

func (r *Runtime) ListParameters() []dotcmd.ParamEntry {
	if !r.paramStoreReady {
		return nil
	}
	_, stmt, err := r.conn.Prepare(`SELECT name, kind, int_value, float_value, text_value, blob_value, subtype FROM ` + paramTable + ` ORDER BY name`)
	if err != nil {
		return nil
	}
	defer stmt.Close()

	var out []dotcmd.ParamEntry
	for {
		has, err := stmt.Step()
		if err != nil || !has {
			break
		}
		name := stmt.Value(0).Text()
		value := rowToOwnedValue(stmt)
		out = append(out, dotcmd.ParamEntry{Name: name, Value: value})
	}
	return out
}

func (r *Runtime) lookupParameter(name string) (engine.OwnedValue, bool) {
	if !r.paramStoreReady {
		return engine.OwnedValue{}, false
	}
	_, stmt, err := r.conn.Prepare(`SELECT name, kind, int_value, float_value, text_value, blob_value, subtype FROM ` + paramTable + ` WHERE name = ?`)
	if err != nil {
		return engine.OwnedValue{}, false
	}
	defer stmt.Close()
	stmt.BindText(1, name)

	has, err := stmt.Step()
	if err != nil || !has {
		return engine.OwnedValue{}, false
	}
	return rowToOwnedValue(stmt), true
}

// rowToOwnedValue reconstructs an OwnedValue from a row of the
// name/kind/int_value/float_value/text_value/blob_value/subtype shape,
// positioned with kind at column 1.
func rowToOwnedValue(stmt *engine.Statement) engine.OwnedValue {
	kind := stmt.Value(1).Text()
	subtype, _ := stmt.Value(6).Int64()

	var v engine.OwnedValue
	switch kind {
	case "int":
		i, _ := stmt.Value(2).Int64()
		v = engine.IntValue(i)
	case "float":
		f, _ := stmt.Value(3).Float64()
		v = engine.FloatValue(f)
	case "text":
		v = engine.TextValue(stmt.Value(4).Text())
	case "blob":
		v = engine.BlobValue(stmt.Value(5).Blob())
	default:
		v = engine.NullValue()
	}
	return v.WithSubtype(engine.Subtype(subtype))
}
