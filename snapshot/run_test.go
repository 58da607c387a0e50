package snapshot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shibukawa/solite/engine"
	"github.com/shibukawa/solite/runtime"
)

func newTestRunner(t *testing.T) (*Runner, string) {
	t.Helper()
	conn, err := engine.OpenInMemory()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	trace, err := Attach(conn)
	if err != nil {
		t.Fatalf("attach trace: %v", err)
	}

	dir := t.TempDir()
	rt := runtime.New(conn)
	return NewRunner(rt, trace, nil, dir), dir
}

func TestRunFileSingleValueNonInteractive(t *testing.T) {
	runner, dir := newTestRunner(t)

	report, err := runner.RunFile("sample.sql", "select 1;", nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.NumAccepted != 1 {
		t.Fatalf("expected 1 new snapshot accepted, got %+v", report)
	}

	data, err := os.ReadFile(filepath.Join(dir, "sample-1.snap"))
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if !strings.HasSuffix(string(data), "---\n1\n") {
		t.Fatalf("unexpected snapshot body: %q", data)
	}
}

func TestRunFileRerunMatches(t *testing.T) {
	runner, dir := newTestRunner(t)

	if _, err := runner.RunFile("sample.sql", "select 1;", nil); err != nil {
		t.Fatalf("first run: %v", err)
	}

	conn2, err := engine.OpenInMemory()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { conn2.Close() })
	trace2, err := Attach(conn2)
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	runner2 := NewRunner(runtime.New(conn2), trace2, nil, dir)

	report, err := runner2.RunFile("sample.sql", "select 1;", map[string]bool{"sample-1.snap": true})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if report.NumMatches != 1 {
		t.Fatalf("expected a match on rerun, got %+v", report)
	}
	if report.NumRemoved != 0 {
		t.Fatalf("expected nothing removed, got %+v", report)
	}
}

func TestRunFileRemovesStaleSnapshot(t *testing.T) {
	runner, dir := newTestRunner(t)
	if err := os.WriteFile(filepath.Join(dir, "sample-old.snap"), []byte("stale"), 0o644); err != nil {
		t.Fatalf("seed stale file: %v", err)
	}

	report, err := runner.RunFile("sample.sql", "select 1;", map[string]bool{"sample-old.snap": true})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.NumRemoved != 1 {
		t.Fatalf("expected 1 removal, got %+v", report)
	}
	if _, err := os.Stat(filepath.Join(dir, "sample-old.snap")); !os.IsNotExist(err) {
		t.Fatalf("expected stale snapshot to be deleted, stat err = %v", err)
	}
}
