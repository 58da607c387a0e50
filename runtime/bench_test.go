package runtime

import (
	"strings"
	"testing"
	"time"

	"github.com/shibukawa/solite/engine"
)

func TestFormatRuntimeSubThreshold(t *testing.T) {
	got := formatRuntime(1500 * time.Microsecond)
	if got != "1.500ms" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatRuntimeAboveThreshold(t *testing.T) {
	got := formatRuntime(1500 * time.Millisecond)
	if !strings.Contains(got, "1.5") {
		t.Fatalf("got %q", got)
	}
}

func TestBenchReportStatistics(t *testing.T) {
	r := BenchReport{
		Name:       "q1",
		Iterations: 3,
		Times:      []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 30 * time.Millisecond},
	}
	if r.mean() != 20*time.Millisecond {
		t.Fatalf("mean = %v", r.mean())
	}
	if r.min() != 10*time.Millisecond || r.max() != 30*time.Millisecond {
		t.Fatalf("min/max = %v/%v", r.min(), r.max())
	}
	out := r.String()
	if !strings.Contains(out, "Benchmark: q1") {
		t.Fatalf("missing title: %q", out)
	}
	if !strings.Contains(out, "3 iterations") {
		t.Fatalf("missing iteration count: %q", out)
	}
}

func TestRenderStepsEmpty(t *testing.T) {
	if renderSteps(nil) != "" {
		t.Fatal("expected empty report for no steps")
	}
}

func TestRenderStepsBasicLoop(t *testing.T) {
	steps := []engine.BytecodeStep{
		{Addr: 0, Opcode: "Init", P2: 5},
		{Addr: 1, Opcode: "Rewind", P2: 4, Ncycle: 10},
		{Addr: 2, Opcode: "Column", Ncycle: 20},
		{Addr: 3, Opcode: "Next", P2: 2, Ncycle: 5},
		{Addr: 4, Opcode: "Halt"},
	}
	out := renderSteps(steps)
	if !strings.Contains(out, "QUERY PLAN (cycles=35 [100%])") {
		t.Fatalf("missing header: %q", out)
	}
	if !strings.Contains(out, "Next") {
		t.Fatalf("missing Next opcode: %q", out)
	}
}
