package export

import "testing"

func TestFormatFromPath(t *testing.T) {
	cases := map[string]Format{
		"out.csv":     Csv,
		"out.tsv":     Tsv,
		"out.json":    Json,
		"out.ndjson":  Ndjson,
		"out.jsonl":   Ndjson,
		"out.csv.gz":  Csv,
		"out.json.zst": Json,
	}
	for path, want := range cases {
		got, ok := FormatFromPath(path)
		if !ok {
			t.Fatalf("%s: expected a recognized format", path)
		}
		if got != want {
			t.Fatalf("%s: got %v, want %v", path, got, want)
		}
	}

	if _, ok := FormatFromPath("out.txt"); ok {
		t.Fatal("expected out.txt to be unrecognized")
	}
}

func TestCompressionFromPath(t *testing.T) {
	if c := CompressionFromPath("a.csv.gz"); c != "gz" {
		t.Fatalf("got %q", c)
	}
	if c := CompressionFromPath("a.json.zst"); c != "zst" {
		t.Fatalf("got %q", c)
	}
	if c := CompressionFromPath("a.csv"); c != "" {
		t.Fatalf("got %q", c)
	}
}
