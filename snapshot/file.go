package snapshot

import "fmt"

// Keyer assigns snapshot filenames of the form
// "<basename>[-<region-path>]-<idx>.snap", where idx is a counter private
// to each region path. It starts at 1 the first time a path is seen in a
// run; leaving a region and re-entering it later resumes that path's
// counter, so earlier snapshots under the same path are not overwritten.
type Keyer struct {
	basename string
	counters map[string]int
}

func NewKeyer(basename string) *Keyer {
	return &Keyer{basename: basename, counters: map[string]int{}}
}

// Next returns the next filename for regionPath ("" for top-level SQL).
func (k *Keyer) Next(regionPath string) string {
	k.counters[regionPath]++
	idx := k.counters[regionPath]
	if regionPath == "" {
		return fmt.Sprintf("%s-%d.snap", k.basename, idx)
	}
	return fmt.Sprintf("%s-%s-%d.snap", k.basename, regionPath, idx)
}
