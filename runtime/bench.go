package runtime

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shibukawa/solite/dotcmd"
	"github.com/shibukawa/solite/engine"
)

// BenchReport is the result of running a .bench command's statement
// for its configured iteration count.
type BenchReport struct {
	Name       string
	Iterations int
	Times      []time.Duration
	QueryPlan  string
}

func (r BenchReport) mean() time.Duration {
	if len(r.Times) == 0 {
		return 0
	}
	var sum time.Duration
	for _, t := range r.Times {
		sum += t
	}
	return sum / time.Duration(len(r.Times))
}

func (r BenchReport) stddev() time.Duration {
	if len(r.Times) < 2 {
		return 0
	}
	mean := float64(r.mean())
	var sq float64
	for _, t := range r.Times {
		d := float64(t) - mean
		sq += d * d
	}
	return time.Duration(math.Sqrt(sq / float64(len(r.Times))))
}

func (r BenchReport) min() time.Duration {
	m := r.Times[0]
	for _, t := range r.Times[1:] {
		if t < m {
			m = t
		}
	}
	return m
}

func (r BenchReport) max() time.Duration {
	m := r.Times[0]
	for _, t := range r.Times[1:] {
		if t > m {
			m = t
		}
	}
	return m
}

// formatRuntime mirrors bench.rs's format_runtime: sub-50ms spans print
// as fractional milliseconds, longer ones round to the millisecond.
func formatRuntime(d time.Duration) string {
	if d < 50*time.Millisecond {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000.0)
	}
	return d.Round(time.Millisecond).String()
}

// String renders the header line bench.rs's BenchResult::report builds,
// followed by the last iteration's bytecode QUERY PLAN.
func (r BenchReport) String() string {
	title := "Benchmark"
	if r.Name != "" {
		title = "Benchmark: " + r.Name
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", title)
	fmt.Fprintf(&b, "  Time  (mean ± σ):   %s ± %s (%d iterations)\n",
		formatRuntime(r.mean()), formatRuntime(r.stddev()), r.Iterations)
	fmt.Fprintf(&b, "  Range (min … max):  %s … %s\n", formatRuntime(r.min()), formatRuntime(r.max()))
	if r.QueryPlan != "" {
		b.WriteString(r.QueryPlan)
	}
	return b.String()
}

// runBench runs cmd.Stmt cmd.Iterations times, resetting it between
// runs, and captures the bytecode trace of the final iteration the way
// bench.rs's execute loop does (it overwrites `report` every pass, so
// only the last iteration's plan survives).
func (r *Runtime) runBench(cmd *dotcmd.Command) (BenchReport, error) {
	report := BenchReport{Name: cmd.BenchName, Iterations: cmd.Iterations}
	for i := 0; i < cmd.Iterations; i++ {
		start := time.Now()
		if _, err := cmd.Stmt.Execute(); err != nil {
			return report, err
		}
		elapsed := time.Since(start)
		report.Times = append(report.Times, elapsed)

		steps, err := r.conn.BytecodeSteps(cmd.Stmt)
		if err != nil {
			return report, err
		}
		report.QueryPlan = renderSteps(steps)

		if err := cmd.Stmt.Reset(); err != nil {
			return report, err
		}
	}
	return report, nil
}

var loopOpcodes = map[string]bool{
	"Next": true, "Prev": true, "VNext": true, "VPrev": true,
	"SorterNext": true, "NextIfOpen": true, "PrevIfOpen": true,
}

var gotoLoopTargets = map[string]bool{
	"Yield": true, "SeekLT": true, "SeekGT": true, "RowSetRead": true, "Rewind": true,
}

// renderSteps ports bench.rs's render_steps: a loop-indentation heuristic
// over Next/Prev/Goto opcodes, followed by a fixed-width "QUERY PLAN"
// table with per-step cycle percentages.
func renderSteps(steps []engine.BytecodeStep) string {
	if len(steps) == 0 {
		return ""
	}

	n := len(steps)
	indent := make([]int, n)

	for i, step := range steps {
		p2op := int(step.P2) + (i - int(step.Addr))

		if loopOpcodes[step.Opcode] {
			if p2op >= 0 && p2op < n {
				for j := p2op; j < i; j++ {
					indent[j] += 2
				}
			}
		}

		if step.Opcode == "Goto" && p2op >= 0 && p2op < n {
			if gotoLoopTargets[steps[p2op].Opcode] || step.P1 != 0 {
				for j := p2op; j < i; j++ {
					indent[j] += 2
				}
			}
		}
	}

	var totalCycles int64
	maxComment := 20
	for _, s := range steps {
		totalCycles += s.Ncycle
		if len(s.Comment) > maxComment {
			maxComment = len(s.Comment)
		}
	}
	commentWidth := maxComment + 2

	var b strings.Builder
	fmt.Fprintf(&b, "QUERY PLAN (cycles=%d [100%%])\n", totalCycles)
	b.WriteString("addr  opcode         p1    p2    p3    p4             p5  comment\n")
	b.WriteString("----  -------------  ----  ----  ----  -------------  --  -------\n")

	for i, s := range steps {
		pad := strings.Repeat(" ", indent[i])
		line := fmt.Sprintf("%-4d  %s%-13s  %-4d  %-4d  %-4d  %-13s  %-2d  ",
			s.Addr, pad, s.Opcode, s.P1, s.P2, s.P3, s.P4, s.P5)
		if s.Ncycle > 0 {
			pct := int64(math.Round(float64(s.Ncycle) / float64(totalCycles) * 100))
			line += fmt.Sprintf("%-*s(cycles=%d [%d%%])", commentWidth, s.Comment, s.Ncycle, pct)
		} else {
			line += s.Comment
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	return b.String()
}
