package engine

// Subtype is a small integer tag SQLite attaches to a value. Reserved
// subtypes used here: JSON text (74) and a pointer-bearing NULL (112).
type Subtype int

const (
	SubtypeNone    Subtype = 0
	SubtypeJSON    Subtype = 74
	SubtypePointer Subtype = 112
)

// Value is the read side of the five SQLite storage classes, plus the
// subtype tag. Two implementations exist: borrowedValue, read without
// copying from the row currently positioned under a *Statement, and
// OwnedValue, a plain struct that is always safe to retain.
type Value interface {
	IsNull() bool
	Int64() (int64, bool)
	Float64() (float64, bool)
	Text() string
	Blob() []byte
	Subtype() Subtype
	Owned() OwnedValue
}

type valueKind byte

const (
	kindNull valueKind = iota
	kindInt
	kindFloat
	kindText
	kindBlob
)

// OwnedValue copies the underlying bytes (if any) out of engine-owned
// memory. It never expires.
type OwnedValue struct {
	kind    valueKind
	i       int64
	f       float64
	t       string
	b       []byte
	subtype Subtype
}

func NullValue() OwnedValue                       { return OwnedValue{kind: kindNull} }
func IntValue(v int64) OwnedValue                 { return OwnedValue{kind: kindInt, i: v} }
func FloatValue(v float64) OwnedValue             { return OwnedValue{kind: kindFloat, f: v} }
func TextValue(v string) OwnedValue                { return OwnedValue{kind: kindText, t: v} }
func BlobValue(v []byte) OwnedValue               { return OwnedValue{kind: kindBlob, b: append([]byte(nil), v...)} }
func PointerNullValue() OwnedValue                { return OwnedValue{kind: kindNull, subtype: SubtypePointer} }

func (v OwnedValue) WithSubtype(s Subtype) OwnedValue {
	v.subtype = s
	return v
}

func (v OwnedValue) IsNull() bool { return v.kind == kindNull }

func (v OwnedValue) Int64() (int64, bool) {
	switch v.kind {
	case kindInt:
		return v.i, true
	case kindFloat:
		return int64(v.f), true
	default:
		return 0, false
	}
}

func (v OwnedValue) Float64() (float64, bool) {
	switch v.kind {
	case kindFloat:
		return v.f, true
	case kindInt:
		return float64(v.i), true
	default:
		return 0, false
	}
}

func (v OwnedValue) Text() string {
	switch v.kind {
	case kindText:
		return v.t
	case kindBlob:
		return string(v.b)
	default:
		return ""
	}
}

func (v OwnedValue) Blob() []byte {
	if v.kind == kindBlob {
		return v.b
	}
	return nil
}

func (v OwnedValue) Subtype() Subtype { return v.subtype }

func (v OwnedValue) Owned() OwnedValue { return v }

// ValueKind reports the storage class this value was constructed with
// ("null", "int", "float", "text", "blob"), independent of the coercions
// Int64/Float64/Text/Blob perform. The parameter store uses this to pick
// which column to persist a value under.
func (v OwnedValue) ValueKind() string {
	switch v.kind {
	case kindInt:
		return "int"
	case kindFloat:
		return "float"
	case kindText:
		return "text"
	case kindBlob:
		return "blob"
	default:
		return "null"
	}
}

// BindTo binds v onto stmt's 1-based parameter idx using the Bind*
// method matching its storage class.
func (v OwnedValue) BindTo(stmt *Statement, idx int) error {
	switch v.kind {
	case kindInt:
		return stmt.BindInt64(idx, v.i)
	case kindFloat:
		return stmt.BindFloat64(idx, v.f)
	case kindText:
		return stmt.BindText(idx, v.t)
	case kindBlob:
		return stmt.BindBlob(idx, v.b)
	default:
		if v.subtype == SubtypePointer {
			return stmt.BindNull(idx)
		}
		return stmt.BindNull(idx)
	}
}

// borrowedValue is a zero-copy view over the column at colIdx of the row
// a *Statement is currently positioned on. It is only valid until the
// statement's generation counter advances (the next Step/Reset call);
// reading it afterward panics rather than returning stale or aliased
// data, per the spec invariant that the borrowed flavor never outlives
// the cursor position that produced it.
type borrowedValue struct {
	stmt   *Statement
	gen    uint64
	colIdx int
}

func (v borrowedValue) checkLive() {
	if v.stmt.generation != v.gen {
		panic(ErrValueExpired)
	}
}

func (v borrowedValue) IsNull() bool {
	v.checkLive()
	return v.stmt.currentRow[v.colIdx] == nil
}

func (v borrowedValue) Int64() (int64, bool) {
	v.checkLive()
	switch x := v.stmt.currentRow[v.colIdx].(type) {
	case int64:
		return x, true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}

func (v borrowedValue) Float64() (float64, bool) {
	v.checkLive()
	switch x := v.stmt.currentRow[v.colIdx].(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}

func (v borrowedValue) Text() string {
	v.checkLive()
	switch x := v.stmt.currentRow[v.colIdx].(type) {
	case string:
		return x
	case []byte:
		if len(x) == 0 {
			return ""
		}
		return string(x)
	default:
		return ""
	}
}

func (v borrowedValue) Blob() []byte {
	v.checkLive()
	switch x := v.stmt.currentRow[v.colIdx].(type) {
	case []byte:
		return x
	case string:
		return []byte(x)
	default:
		return nil
	}
}

func (v borrowedValue) Subtype() Subtype {
	v.checkLive()
	if subs := v.stmt.currentSubtypes; subs != nil && v.colIdx < len(subs) {
		return subs[v.colIdx]
	}
	return SubtypeNone
}

func (v borrowedValue) Owned() OwnedValue {
	v.checkLive()
	if v.IsNull() {
		return OwnedValue{kind: kindNull, subtype: v.Subtype()}
	}
	switch x := v.stmt.currentRow[v.colIdx].(type) {
	case int64:
		return IntValue(x).WithSubtype(v.Subtype())
	case float64:
		return FloatValue(x).WithSubtype(v.Subtype())
	case string:
		ov := TextValue(x)
		return ov.WithSubtype(v.Subtype())
	case []byte:
		return BlobValue(x).WithSubtype(v.Subtype())
	default:
		return OwnedValue{kind: kindNull}
	}
}
