package snapshot

import (
	"fmt"
	"strings"
)

// ExtensionsReport summarizes the functions/modules a `.load` introduced
// during a snapshot run, cross-referenced against a documented allow-list
// so undocumented additions (or documented ones that never showed up)
// stand out.
type ExtensionsReport struct {
	Functions         []string
	Modules           []string
	UndocumentedFuncs []string
	UnobservedFuncs   []string
}

// NewExtensionsReport classifies observed against documented names.
func NewExtensionsReport(observedFuncs, observedModules, documentedFuncs []string) ExtensionsReport {
	documented := make(map[string]bool, len(documentedFuncs))
	for _, f := range documentedFuncs {
		documented[f] = true
	}
	seen := make(map[string]bool, len(observedFuncs))
	var undocumented []string
	for _, f := range observedFuncs {
		seen[f] = true
		if !documented[f] {
			undocumented = append(undocumented, f)
		}
	}
	var unobserved []string
	for _, f := range documentedFuncs {
		if !seen[f] {
			unobserved = append(unobserved, f)
		}
	}
	return ExtensionsReport{
		Functions:         observedFuncs,
		Modules:           observedModules,
		UndocumentedFuncs: undocumented,
		UnobservedFuncs:   unobserved,
	}
}

func (e ExtensionsReport) empty() bool {
	return len(e.Functions) == 0 && len(e.Modules) == 0
}

// Report is the aggregated outcome of a snapshot run over one or more
// blocks.
type Report struct {
	NumMatches  int
	NumAccepted int
	NumRejected int
	NumRemoved  int
	Extensions  ExtensionsReport
}

func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d matched, %d accepted, %d rejected, %d removed\n",
		r.NumMatches, r.NumAccepted, r.NumRejected, r.NumRemoved)

	if !r.Extensions.empty() {
		fmt.Fprintf(&b, "extensions: %d function(s), %d module(s) loaded\n",
			len(r.Extensions.Functions), len(r.Extensions.Modules))
		if len(r.Extensions.UndocumentedFuncs) > 0 {
			fmt.Fprintf(&b, "  undocumented: %s\n", strings.Join(r.Extensions.UndocumentedFuncs, ", "))
		}
		if len(r.Extensions.UnobservedFuncs) > 0 {
			fmt.Fprintf(&b, "  documented but unobserved: %s\n", strings.Join(r.Extensions.UnobservedFuncs, ", "))
		}
	}
	return b.String()
}
