// Package partition validates a set of selection patterns against a catalog
// before anything runs. The completeness check at aggregation time assumes
// the patterns partition the catalog; nothing in the run path enforces that,
// so overlapping or gappy pattern sets are only discovered after an expensive
// full run. This check surfaces those defects at definition time instead.
package partition

import (
	"fmt"
	"regexp"
	"strings"

	"matrixctl/internal/catalog"
)

// Overlap records two patterns whose selections intersect, with the shared
// environments in catalog order.
type Overlap struct {
	A, B         string
	Environments []string
}

// CheckResult is the outcome of a static partition validation.
type CheckResult struct {
	// Overlaps holds every pairwise pattern intersection over the catalog.
	Overlaps []Overlap
	// Uncovered holds catalog environments no pattern selects, in catalog
	// order.
	Uncovered []string
	// Empty holds patterns that select nothing; they would fail their
	// slice with an empty selection.
	Empty []string
}

// OK reports whether the patterns partition the catalog exactly.
func (r *CheckResult) OK() bool {
	return len(r.Overlaps) == 0 && len(r.Uncovered) == 0 && len(r.Empty) == 0
}

// Format renders a line-oriented listing of every defect found.
func (r *CheckResult) Format() string {
	if r.OK() {
		return "patterns partition the catalog exactly\n"
	}
	var b strings.Builder
	for _, o := range r.Overlaps {
		fmt.Fprintf(&b, "overlap: %q and %q both select %s\n", o.A, o.B, strings.Join(o.Environments, ", "))
	}
	for _, name := range r.Uncovered {
		fmt.Fprintf(&b, "uncovered: %s\n", name)
	}
	for _, p := range r.Empty {
		fmt.Fprintf(&b, "empty: %q selects nothing\n", p)
	}
	return b.String()
}

// Check computes, for every pattern, the set of catalog environments it
// selects, then reports pairwise intersections, uncovered environments and
// patterns that select nothing. Invalid patterns fail the check outright.
func Check(cat *catalog.Catalog, patterns []string) (*CheckResult, error) {
	regexps := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid selection pattern %q: %w", p, err)
		}
		regexps[i] = re
	}

	names := cat.Names()
	selections := make([]map[string]struct{}, len(patterns))
	for i, re := range regexps {
		selections[i] = make(map[string]struct{})
		for _, name := range names {
			if re.MatchString(name) {
				selections[i][name] = struct{}{}
			}
		}
	}

	result := &CheckResult{}
	for i, p := range patterns {
		if len(selections[i]) == 0 {
			result.Empty = append(result.Empty, p)
		}
	}

	for i := 0; i < len(patterns); i++ {
		for j := i + 1; j < len(patterns); j++ {
			var shared []string
			for _, name := range names {
				if _, inA := selections[i][name]; !inA {
					continue
				}
				if _, inB := selections[j][name]; inB {
					shared = append(shared, name)
				}
			}
			if len(shared) > 0 {
				result.Overlaps = append(result.Overlaps, Overlap{
					A:            patterns[i],
					B:            patterns[j],
					Environments: shared,
				})
			}
		}
	}

	for _, name := range names {
		covered := false
		for i := range patterns {
			if _, ok := selections[i][name]; ok {
				covered = true
				break
			}
		}
		if !covered {
			result.Uncovered = append(result.Uncovered, name)
		}
	}

	return result, nil
}
