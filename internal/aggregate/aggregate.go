// Package aggregate implements the post-hoc completeness check: after every
// slice has published its result record, the union of executed environments
// must equal the declared catalog. The check is a pure set difference; there
// is nothing to retry, because "every declared environment ran" cannot be
// repaired after the fact.
package aggregate

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"matrixctl/internal/catalog"
	"matrixctl/internal/results"
)

// ErrIncomplete is returned when the execution ledger does not match the
// catalog. The diff is always reported alongside; auto-correcting (for
// example by re-running the missing slice) would hide a real
// selection-pattern bug.
var ErrIncomplete = errors.New("completeness check failed")

// Report is the aggregation verdict.
type Report struct {
	// Missing holds catalog environments that appear in no published
	// record, in catalog order.
	Missing []string
	// Unexpected holds executed environments the catalog never declared,
	// sorted.
	Unexpected []string
	// Counts maps every executed environment to the number of records it
	// appeared in. Counts above one indicate overlapping selection
	// patterns; this is diagnostic only and does not fail the check.
	Counts map[string]int
	// Records is the number of published records consumed.
	Records int
	// CatalogSize is the number of declared environments.
	CatalogSize int
}

// Aggregate reconstructs the execution ledger from the published records and
// compares it against the catalog.
func Aggregate(cat *catalog.Catalog, records []*results.Record) *Report {
	rep := &Report{
		Counts:      make(map[string]int),
		Records:     len(records),
		CatalogSize: cat.Len(),
	}

	for _, rec := range records {
		for name := range rec.Environments {
			rep.Counts[name]++
		}
	}

	for _, name := range cat.Names() {
		if rep.Counts[name] == 0 {
			rep.Missing = append(rep.Missing, name)
		}
	}
	for name := range rep.Counts {
		if !cat.Contains(name) {
			rep.Unexpected = append(rep.Unexpected, name)
		}
	}
	sort.Strings(rep.Unexpected)

	return rep
}

// Passed reports whether every declared environment was executed and nothing
// undeclared appeared.
func (r *Report) Passed() bool {
	return len(r.Missing) == 0 && len(r.Unexpected) == 0
}

// Duplicates returns the environments that appeared in more than one record,
// sorted. Overlapping patterns are a partitioning bug worth surfacing even
// when completeness holds.
func (r *Report) Duplicates() []string {
	var dups []string
	for name, count := range r.Counts {
		if count > 1 {
			dups = append(dups, name)
		}
	}
	sort.Strings(dups)
	return dups
}

// Err returns nil when the check passed, otherwise ErrIncomplete annotated
// with the set sizes.
func (r *Report) Err() error {
	if r.Passed() {
		return nil
	}
	return fmt.Errorf("%w: %d missing, %d unexpected", ErrIncomplete, len(r.Missing), len(r.Unexpected))
}

// Diff renders the line-oriented missing/unexpected listing consumed by CI
// logs. One environment per line, prefixed by its set.
func (r *Report) Diff() string {
	var b strings.Builder
	if r.Passed() {
		fmt.Fprintf(&b, "complete: all %d environments executed across %d records\n", r.CatalogSize, r.Records)
		return b.String()
	}
	for _, name := range r.Missing {
		fmt.Fprintf(&b, "missing: %s\n", name)
	}
	for _, name := range r.Unexpected {
		fmt.Fprintf(&b, "unexpected: %s\n", name)
	}
	return b.String()
}
