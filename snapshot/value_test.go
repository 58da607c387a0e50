package snapshot

import (
	"testing"

	"github.com/shibukawa/solite/engine"
)

func TestSnapshotValueScalars(t *testing.T) {
	cases := []struct {
		v    engine.OwnedValue
		want string
	}{
		{engine.NullValue(), "NULL"},
		{engine.IntValue(42), "42"},
		{engine.FloatValue(1.5), "1.5"},
		{engine.TextValue("hi"), "'hi'"},
		{engine.TextValue("it's"), "'it''s'"},
		{engine.BlobValue([]byte{0xde, 0xad, 0xbe, 0xef}), "X'DEADBEEF'"},
		{engine.PointerNullValue(), "pointer[]"},
	}
	for _, c := range cases {
		if got := snapshotValue(c.v); got != c.want {
			t.Fatalf("snapshotValue(%#v) = %q, want %q", c.v, got, c.want)
		}
	}
}

func TestSnapshotValueJSONSubtype(t *testing.T) {
	v := engine.TextValue(`{"a":1}`).WithSubtype(engine.SubtypeJSON)
	got := snapshotValue(v)
	want := `(json) '{"a":1}'`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDedentCommonIndent(t *testing.T) {
	in := "  select 1,\n  2;"
	got := dedent(in)
	want := "select 1,\n2;"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDedentNoCommonIndent(t *testing.T) {
	in := "select 1;\n  select 2;"
	if got := dedent(in); got != in {
		t.Fatalf("got %q, want unchanged %q", got, in)
	}
}
