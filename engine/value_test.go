package engine

import (
	"bytes"
	"testing"
)

func TestOwnedValueRoundTrip(t *testing.T) {
	cases := []OwnedValue{
		NullValue(),
		IntValue(42),
		FloatValue(3.5),
		TextValue("hello"),
		BlobValue([]byte{1, 2, 3}),
	}

	for _, v := range cases {
		if v.Owned() != v {
			t.Fatalf("Owned() not idempotent for %+v", v)
		}
	}
}

func TestOwnedValueBlobIsCopied(t *testing.T) {
	src := []byte{1, 2, 3}
	v := BlobValue(src)
	src[0] = 99
	if bytes.Equal(v.Blob(), src) {
		t.Fatal("BlobValue aliased the source slice")
	}
}

func TestPointerNullValueSubtype(t *testing.T) {
	v := PointerNullValue()
	if !v.IsNull() {
		t.Fatal("expected null")
	}
	if v.Subtype() != SubtypePointer {
		t.Fatalf("subtype = %d, want %d", v.Subtype(), SubtypePointer)
	}
}

func TestIntFloatCoercion(t *testing.T) {
	f := FloatValue(2.9)
	i, ok := f.Int64()
	if !ok || i != 2 {
		t.Fatalf("Int64() = (%d, %v)", i, ok)
	}

	iv := IntValue(7)
	fv, ok := iv.Float64()
	if !ok || fv != 7.0 {
		t.Fatalf("Float64() = (%v, %v)", fv, ok)
	}
}
