// Package diff computes display deltas between document versions.
package diff

import "github.com/pmezard/go-difflib/difflib"

// ErrorSentinel is the diff value stamped onto an Error terminal snapshot.
const ErrorSentinel = "!error"

// Compute returns the unified diff from previous to current. It is
// deterministic and total: identical inputs produce an empty delta.
// The result is informational; snapshots always carry full content.
func Compute(previous, current string) string {
	if previous == current {
		return ""
	}
	out, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(previous),
		B:        difflib.SplitLines(current),
		FromFile: "previous",
		ToFile:   "current",
		Context:  3,
	})
	if err != nil {
		// The writer is an in-memory buffer; this branch is unreachable
		// in practice but the contract is total either way.
		return ""
	}
	return out
}
