package replacement

import "testing"

func TestScanCSV(t *testing.T) {
	sql, ok := Scan("data.csv")
	if !ok {
		t.Fatal("expected recognized extension")
	}
	want := `CREATE VIRTUAL TABLE temp."data.csv" USING csv`
	if sql != want {
		t.Fatalf("got %q, want %q", sql, want)
	}
}

func TestScanTSVCaseInsensitive(t *testing.T) {
	sql, ok := Scan("DATA.TSV")
	if !ok {
		t.Fatal("expected recognized extension")
	}
	want := `CREATE VIRTUAL TABLE temp."DATA.TSV" USING tsv(flexible=true)`
	if sql != want {
		t.Fatalf("got %q, want %q", sql, want)
	}
}

func TestScanUnknownExtension(t *testing.T) {
	if _, ok := Scan("data.json"); ok {
		t.Fatal("expected unknown extension to be rejected")
	}
}

func TestScanQuoteEscaping(t *testing.T) {
	sql, ok := Scan(`weird"name.csv`)
	if !ok {
		t.Fatal("expected recognized extension")
	}
	want := `CREATE VIRTUAL TABLE temp."weird""name.csv" USING csv`
	if sql != want {
		t.Fatalf("got %q, want %q", sql, want)
	}
}
