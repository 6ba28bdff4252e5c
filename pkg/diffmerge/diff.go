// Package diffmerge computes line-oriented change hunks between two
// text blobs and drives the per-hunk apply/reject merge used when a
// tracked file has both upstream and user edits. The merge itself is a
// pure reducer over a hunk list plus operator choices: it performs no
// file I/O, so it can be tested with scripted decisions.
package diffmerge

import (
	"strings"
	"unicode/utf8"
)

// Hunk is one contiguous run of changed lines, anchored in both
// versions. OldStart/NewStart are 1-based line numbers; a pure
// insertion has OldCount == 0 and anchors at the line it precedes.
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int

	// Removed holds the old version's lines covered by this hunk,
	// Added the new version's replacement lines.
	Removed []string
	Added   []string

	// ContextBefore holds up to three preceding unchanged lines, kept
	// only so the operator can see where the hunk lands.
	ContextBefore []string
}

const contextLines = 3

// GenerateHunks diffs two text blobs line by line and returns the
// change hunks in document order. Identical blobs yield no hunks; a
// changed file with no hunks is valid and means "no effective change".
func GenerateHunks(oldText, newText string) []Hunk {
	oldLines := splitLines(oldText)
	newLines := splitLines(newText)

	ops := diffLines(oldLines, newLines)

	var hunks []Hunk
	oldPos, newPos := 0, 0 // 0-based cursors into oldLines/newLines
	i := 0
	for i < len(ops) {
		if ops[i] == opEqual {
			oldPos++
			newPos++
			i++
			continue
		}

		hunk := Hunk{
			OldStart: oldPos + 1,
			NewStart: newPos + 1,
		}
		for j := oldPos - contextLines; j < oldPos; j++ {
			if j >= 0 {
				hunk.ContextBefore = append(hunk.ContextBefore, oldLines[j])
			}
		}
		// A hunk is a maximal run of non-equal ops: removals first in
		// old order, insertions in new order.
		for i < len(ops) && ops[i] != opEqual {
			switch ops[i] {
			case opDelete:
				hunk.Removed = append(hunk.Removed, oldLines[oldPos])
				oldPos++
			case opInsert:
				hunk.Added = append(hunk.Added, newLines[newPos])
				newPos++
			}
			i++
		}
		hunk.OldCount = len(hunk.Removed)
		hunk.NewCount = len(hunk.Added)
		hunks = append(hunks, hunk)
	}
	return hunks
}

type diffOp int8

const (
	opEqual diffOp = iota
	opDelete
	opInsert
)

// diffLines computes an edit script via longest-common-subsequence over
// lines. Deletions are emitted before insertions at the same position,
// so hunks come out with removed lines first.
func diffLines(oldLines, newLines []string) []diffOp {
	n, m := len(oldLines), len(newLines)

	// lcs[i][j] = LCS length of oldLines[i:] and newLines[j:]
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if oldLines[i] == newLines[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else if lcs[i+1][j] >= lcs[i][j+1] {
				lcs[i][j] = lcs[i+1][j]
			} else {
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	ops := make([]diffOp, 0, n+m)
	i, j := 0, 0
	for i < n && j < m {
		switch {
		case oldLines[i] == newLines[j]:
			ops = append(ops, opEqual)
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			ops = append(ops, opDelete)
			i++
		default:
			ops = append(ops, opInsert)
			j++
		}
	}
	for ; i < n; i++ {
		ops = append(ops, opDelete)
	}
	for ; j < m; j++ {
		ops = append(ops, opInsert)
	}
	return ops
}

// binarySampleSize bounds how much content the binary heuristic reads.
const binarySampleSize = 8192

// IsBinary reports whether content looks binary: a null byte or invalid
// UTF-8 in the leading sample. Binary files are never hunk-merged; they
// get whole-file skip/overwrite choices only.
func IsBinary(content []byte) bool {
	sample := content
	if len(sample) > binarySampleSize {
		sample = sample[:binarySampleSize]
		// Avoid flagging a multi-byte rune cut by the sample boundary.
		for k := 0; k < utf8.UTFMax && len(sample) > 0; k++ {
			r, size := utf8.DecodeLastRune(sample)
			if r != utf8.RuneError || size != 1 {
				break
			}
			sample = sample[:len(sample)-1]
		}
	}
	for _, b := range sample {
		if b == 0 {
			return true
		}
	}
	return !utf8.Valid(sample)
}

// splitLines splits text into lines without their terminators. The
// trailing-newline question is handled at reassembly time.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}
