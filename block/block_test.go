package block

import "testing"

func TestLineCol(t *testing.T) {
	b := New("t", "abc\ndef\nghi", FileSource)

	line, col := b.LineCol(0)
	if line != 1 || col != 1 {
		t.Fatalf("got %d:%d", line, col)
	}

	line, col = b.LineCol(4) // 'd'
	if line != 2 || col != 1 {
		t.Fatalf("got %d:%d", line, col)
	}

	line, col = b.LineCol(9) // offset 9 is 'h', the second character of ghi
	if line != 3 || col != 2 {
		t.Fatalf("got %d:%d", line, col)
	}
}

func TestRegionPath(t *testing.T) {
	b := New("t", "", FileSource)
	if b.RegionPath() != "" {
		t.Fatalf("expected empty region path")
	}
	b.Regions = []string{"outer", "inner"}
	if got := b.RegionPath(); got != "outer-inner" {
		t.Fatalf("got %q", got)
	}
}

func TestStackPushPopOrder(t *testing.T) {
	s := NewStack()
	a := New("a", "", FileSource)
	c := New("b", "", FileSource)
	s.Push(a)
	s.Push(c)

	got, ok := s.Pop()
	if !ok || got != c {
		t.Fatal("expected b popped first (LIFO)")
	}
	got, ok = s.Pop()
	if !ok || got != a {
		t.Fatal("expected a popped second")
	}
	if !s.Empty() {
		t.Fatal("expected empty stack")
	}
}
