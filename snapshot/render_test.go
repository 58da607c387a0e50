package snapshot

import (
	"strings"
	"testing"

	"github.com/shibukawa/solite/engine"
)

func prepareTest(t *testing.T, sql string) *engine.Statement {
	t.Helper()
	conn, err := engine.OpenInMemory()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	_, stmt, err := conn.Prepare(sql)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	return stmt
}

func TestRenderStatementSingleValue(t *testing.T) {
	stmt := prepareTest(t, "select 1;")
	body, ok, err := RenderStatement("sample.sql", "select 1;", stmt)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !ok {
		t.Fatal("expected a snapshot to be produced")
	}
	if !strings.HasPrefix(body, "Source: sample.sql\nselect 1;\n---\n") {
		t.Fatalf("unexpected preamble: %q", body)
	}
	if !strings.HasSuffix(body, "---\n1\n") {
		t.Fatalf("unexpected body: %q", body)
	}
	if strings.HasSuffix(body, "1\n\n") {
		t.Fatalf("single-value body must end with exactly one newline, per spec scenario 5: %q", body)
	}
}

func TestRenderStatementNoResults(t *testing.T) {
	stmt := prepareTest(t, "create table t(a);")
	_, ok, err := RenderStatement("sample.sql", "create table t(a);", stmt)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if ok {
		t.Fatal("expected no snapshot for a no-column, no-row statement")
	}
}

func TestRenderStatementMultiRow(t *testing.T) {
	stmt := prepareTest(t, "select 1 as a, 'x' as b union all select 2, 'y';")
	body, ok, err := RenderStatement("sample.sql", "select 1 as a, 'x' as b union all select 2, 'y';", stmt)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !ok {
		t.Fatal("expected a snapshot to be produced")
	}
	if !strings.Contains(body, "\ta: 1\n\tb: 'x'\n") {
		t.Fatalf("missing first row: %q", body)
	}
	if !strings.Contains(body, "\ta: 2\n\tb: 'y'\n") {
		t.Fatalf("missing second row: %q", body)
	}
}

func TestRenderStatementStepError(t *testing.T) {
	stmt := prepareTest(t, "select not_exist();")
	body, ok, err := RenderStatement("sample.sql", "select not_exist();", stmt)
	if err != nil {
		t.Fatalf("render should capture the step error in the body, not return it: %v", err)
	}
	if !ok {
		t.Fatal("expected an error snapshot to be produced")
	}
	if !strings.HasPrefix(body, "Source: sample.sql\nselect not_exist();\n---\nERROR[1]") {
		t.Fatalf("unexpected error body: %q", body)
	}
}
