package block

import (
	"testing"

	"github.com/shibukawa/solite/dotcmd"
	"github.com/shibukawa/solite/engine"
)

type fakeRuntime struct {
	params map[string]engine.OwnedValue
}

func newFakeRuntime() *fakeRuntime { return &fakeRuntime{params: map[string]engine.OwnedValue{}} }

func (f *fakeRuntime) Connection() *engine.Connection { return nil }
func (f *fakeRuntime) Reopen(path string) error       { return nil }
func (f *fakeRuntime) DefineParameter(name string, value engine.OwnedValue) error {
	f.params[name] = value
	return nil
}
func (f *fakeRuntime) UnsetParameter(name string) error {
	delete(f.params, name)
	return nil
}
func (f *fakeRuntime) ListParameters() []dotcmd.ParamEntry {
	var out []dotcmd.ParamEntry
	for k, v := range f.params {
		out = append(out, dotcmd.ParamEntry{Name: k, Value: v})
	}
	return out
}
func (f *fakeRuntime) ClearParameters() error {
	f.params = map[string]engine.OwnedValue{}
	return nil
}
func (f *fakeRuntime) PrepareWithParameters(sqlText string) (*int, *engine.Statement, error) {
	return nil, nil, nil
}

func TestSkipIgnorablePrefix(t *testing.T) {
	sp := &Splitter{}
	contents := "-- hello\n  /* block */\nselect 1;"
	end, err := sp.skipIgnorable(contents, 0)
	if err != nil {
		t.Fatal(err)
	}
	if contents[end:] != "select 1;" {
		t.Fatalf("got %q", contents[end:])
	}
}

func TestSkipIgnorableShebangOnlyAtLineStart(t *testing.T) {
	sp := &Splitter{}
	contents := "#!/usr/bin/env solite\nselect 1;"
	end, err := sp.skipIgnorable(contents, 0)
	if err != nil {
		t.Fatal(err)
	}
	if contents[end:] != "select 1;" {
		t.Fatalf("got %q", contents[end:])
	}
}

func TestApplyRegionMarkersOpenAndClose(t *testing.T) {
	b := New("t", "", FileSource)
	applyRegionMarkers(b, "-- #region setup\n")
	if b.RegionPath() != "setup" {
		t.Fatalf("got %q", b.RegionPath())
	}
	applyRegionMarkers(b, "-- #endregion\n")
	if b.RegionPath() != "" {
		t.Fatalf("expected closed region, got %q", b.RegionPath())
	}
}

func TestParseDotLineTables(t *testing.T) {
	sp := &Splitter{}
	b := New("t", ".tables\nselect 1;", FileSource)
	rt := newFakeRuntime()

	step, err := sp.parseDotLine(b, rt, nil, SourceRef{}, false)
	if err != nil {
		t.Fatal(err)
	}
	if step.Dot == nil || step.Dot.Kind != dotcmd.Tables {
		t.Fatalf("got %+v", step.Dot)
	}
	if b.Contents[b.Offset:] != "select 1;" {
		t.Fatalf("offset left %q", b.Contents[b.Offset:])
	}
}

func TestParseDotLineShellShorthand(t *testing.T) {
	sp := &Splitter{}
	b := New("t", "!echo hi\n", FileSource)
	rt := newFakeRuntime()

	step, err := sp.parseDotLine(b, rt, nil, SourceRef{}, true)
	if err != nil {
		t.Fatal(err)
	}
	if step.Dot.Kind != dotcmd.Shell || step.Dot.ShellLine != "echo hi" {
		t.Fatalf("got %+v", step.Dot)
	}
}

func TestNextStopsAtEOF(t *testing.T) {
	sp := &Splitter{}
	b := New("t", "   \n-- only a comment\n", FileSource)
	rt := newFakeRuntime()

	_, err := sp.Next(b, rt)
	if err != ErrDone {
		t.Fatalf("expected ErrDone, got %v", err)
	}
	if !b.Done() {
		t.Fatal("expected block fully consumed")
	}
}
