package engine

import "testing"

func TestFirstStatementEndSingleStatement(t *testing.T) {
	end, onlyTrivia := firstStatementEnd("select 1;")
	if onlyTrivia {
		t.Fatal("expected content")
	}
	if end != len("select 1;") {
		t.Fatalf("end = %d, want %d", end, len("select 1;"))
	}
}

func TestFirstStatementEndLeavesRest(t *testing.T) {
	sql := "select 1; select 2;"
	end, onlyTrivia := firstStatementEnd(sql)
	if onlyTrivia {
		t.Fatal("expected content")
	}
	if sql[:end] != "select 1;" {
		t.Fatalf("got %q", sql[:end])
	}
	if sql[end:] != " select 2;" {
		t.Fatalf("rest = %q", sql[end:])
	}
}

func TestFirstStatementEndWhitespaceOnly(t *testing.T) {
	_, onlyTrivia := firstStatementEnd("  \n-- comment\n  ")
	if !onlyTrivia {
		t.Fatal("expected onlyTrivia")
	}
}

func TestFirstStatementEndSemicolonInsideString(t *testing.T) {
	sql := "select ';not a boundary';select 2;"
	end, _ := firstStatementEnd(sql)
	if sql[:end] != "select ';not a boundary';" {
		t.Fatalf("got %q", sql[:end])
	}
}

func TestFirstStatementEndUnterminated(t *testing.T) {
	end, onlyTrivia := firstStatementEnd("select 1")
	if onlyTrivia {
		t.Fatal("expected content, not trivia")
	}
	if end != len("select 1") {
		t.Fatalf("end = %d", end)
	}
}
