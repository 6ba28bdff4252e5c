package diffmerge

import (
	"fmt"
	"strings"
)

// Decision is the operator's choice for one hunk, or for the whole
// file.
type Decision string

const (
	// DecisionApply takes the incoming (upstream) lines
	DecisionApply Decision = "apply"

	// DecisionReject keeps the current (user) lines
	DecisionReject Decision = "reject"

	// DecisionSkipFile aborts the merge for this file with no mutation
	DecisionSkipFile Decision = "skip-file"
)

// DecideFunc supplies the operator's decision for a hunk. index is
// 0-based; total is the number of hunks in this file.
type DecideFunc func(label string, hunk Hunk, index, total int) Decision

// MergeResult is the outcome of one file's merge session.
type MergeResult struct {
	// Content is the assembled merged text; empty and meaningless when
	// Skipped is set.
	Content string

	Applied  int
	Rejected int

	// Skipped means the operator chose to leave the file untouched.
	Skipped bool
}

// Merge walks hunks in document order, asks decide for each, and
// assembles the final content by interleaving chosen hunks with the
// untouched context lines of the old text.
//
// A malformed hunk sequence (overlapping or out-of-order ranges) is a
// programming error and panics; it can only come from a bug in hunk
// generation, never from user input.
func Merge(label, oldText string, hunks []Hunk, decide DecideFunc) MergeResult {
	oldLines := splitLines(oldText)

	var result MergeResult
	var merged []string
	cursor := 0 // 0-based position in oldLines

	for i, hunk := range hunks {
		start := hunk.OldStart - 1
		if start < cursor || start > len(oldLines) {
			panic(fmt.Sprintf("diffmerge: malformed hunk sequence for %s: hunk %d starts at old line %d, cursor at %d",
				label, i, hunk.OldStart, cursor+1))
		}
		if start+hunk.OldCount > len(oldLines) {
			panic(fmt.Sprintf("diffmerge: malformed hunk for %s: hunk %d covers old lines %d-%d beyond %d",
				label, i, hunk.OldStart, hunk.OldStart+hunk.OldCount-1, len(oldLines)))
		}

		merged = append(merged, oldLines[cursor:start]...)
		cursor = start

		switch decide(label, hunk, i, len(hunks)) {
		case DecisionApply:
			merged = append(merged, hunk.Added...)
			cursor += hunk.OldCount
			result.Applied++
		case DecisionReject:
			merged = append(merged, oldLines[cursor:cursor+hunk.OldCount]...)
			cursor += hunk.OldCount
			result.Rejected++
		case DecisionSkipFile:
			return MergeResult{Skipped: true}
		}
	}
	merged = append(merged, oldLines[cursor:]...)

	result.Content = joinLines(merged, oldText)
	return result
}

// joinLines reassembles lines, preserving the old text's
// trailing-newline convention. An empty old text gets a trailing
// newline whenever the merge produced content.
func joinLines(lines []string, oldText string) string {
	if len(lines) == 0 {
		return ""
	}
	joined := strings.Join(lines, "\n")
	if oldText == "" || strings.HasSuffix(oldText, "\n") {
		joined += "\n"
	}
	return joined
}
