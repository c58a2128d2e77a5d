// Package sanitize derives filesystem-safe result-file keys from selection
// patterns.
//
// A selection pattern is a regular expression and may contain characters that
// are unsafe or awkward in filenames. Key replaces each such character with a
// placeholder, position for position. The mapping is intentionally simple and
// therefore lossy: two patterns that differ only in forbidden characters at
// the same positions collapse to the same key ("a^b" and "a?b" both become
// "a_b"). Keys are storage identifiers only and are never parsed back into
// patterns; the original pattern travels inside the result record for audit.
package sanitize

import (
	"path/filepath"
	"strings"
)

// ResultFileExt is the suffix of every per-slice result file.
const ResultFileExt = ".results"

const placeholder = '_'

// forbidden is the set of pattern characters replaced by the placeholder.
const forbidden = "^?()$"

// Key derives the storage key for a selection pattern. Deterministic, pure,
// and not injective (see the package comment).
func Key(pattern string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(forbidden, r) {
			return placeholder
		}
		return r
	}, pattern)
}

// ResultFileName returns the deterministic result-file path for a pattern:
// <tmpRoot>/<Key(pattern)>.results.
func ResultFileName(tmpRoot, pattern string) string {
	return filepath.Join(tmpRoot, Key(pattern)+ResultFileExt)
}
