package snapshot

import "testing"

func TestKeyerTopLevelCounter(t *testing.T) {
	k := NewKeyer("sample")
	if got := k.Next(""); got != "sample-1.snap" {
		t.Fatalf("got %q", got)
	}
	if got := k.Next(""); got != "sample-2.snap" {
		t.Fatalf("got %q", got)
	}
}

func TestKeyerPerRegionCounter(t *testing.T) {
	k := NewKeyer("sample")
	if got := k.Next("setup"); got != "sample-setup-1.snap" {
		t.Fatalf("got %q", got)
	}
	if got := k.Next(""); got != "sample-1.snap" {
		t.Fatalf("got %q", got)
	}
	if got := k.Next("setup"); got != "sample-setup-2.snap" {
		t.Fatalf("got %q", got)
	}
}
