package dotcmd

import (
	"testing"

	"github.com/shibukawa/solite/engine"
)

func TestParseBool(t *testing.T) {
	cases := map[string]bool{"yes": true, "y": true, "ON": true, "no": false, "N": false, "off": false}
	for s, want := range cases {
		got, err := parseBool(s)
		if err != nil {
			t.Fatalf("parseBool(%q): %v", s, err)
		}
		if got != want {
			t.Fatalf("parseBool(%q) = %v, want %v", s, got, want)
		}
	}

	if _, err := parseBool("maybe"); err == nil {
		t.Fatal("expected error for invalid boolean")
	}
}

func TestSplitCommandLine(t *testing.T) {
	name, args := SplitCommandLine("param set p 1")
	if name != "param" || args != "set p 1" {
		t.Fatalf("got %q %q", name, args)
	}

	name, args = SplitCommandLine("tables")
	if name != "tables" || args != "" {
		t.Fatalf("got %q %q", name, args)
	}
}

func TestParseLiteral(t *testing.T) {
	if v := parseLiteral("42"); true {
		if i, ok := v.Int64(); !ok || i != 42 {
			t.Fatalf("want int 42, got %+v", v)
		}
	}
	if v := parseLiteral("3.5"); true {
		if f, ok := v.Float64(); !ok || f != 3.5 {
			t.Fatalf("want float 3.5, got %+v", v)
		}
	}
	if v := parseLiteral("hello"); v.Text() != "hello" {
		t.Fatalf("want text hello, got %+v", v)
	}
}

func TestFormatParamListSorted(t *testing.T) {
	out := FormatParamList([]ParamEntry{
		{Name: "zeta", Value: engine.TextValue("z")},
		{Name: "alpha", Value: engine.IntValue(1)},
	})
	want := "alpha = 1\nzeta = z\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestParseShellShorthand(t *testing.T) {
	cmd, err := Parse("", "ls -la", "", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if cmd.Kind != Shell || cmd.ShellLine != "ls -la" {
		t.Fatalf("got %+v", cmd)
	}
}

func TestParseUnknownCommand(t *testing.T) {
	_, err := Parse("bogus", "", "", nil, nil)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestParseTimerRejectsGarbage(t *testing.T) {
	_, err := Parse("timer", "maybe", "", nil, nil)
	if err == nil {
		t.Fatal("expected error")
	}
}
