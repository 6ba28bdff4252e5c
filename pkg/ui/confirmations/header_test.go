package confirmations

// Test Type: Unit Test
// Verifies the console hunk header reports positions as given: hunk
// line numbers are 1-based already and must not be shifted.

import (
	"testing"

	"github.com/arthur-debert/syncpack/pkg/diffmerge"
	"github.com/stretchr/testify/assert"
)

func TestHunkHeader_LineNumberVerbatim(t *testing.T) {
	hunk := diffmerge.Hunk{OldStart: 7, OldCount: 2, NewStart: 7, NewCount: 1}

	header := hunkHeader(".zed/rules/style.md", hunk, 0, 3)

	assert.Contains(t, header, "change 1 of 3")
	assert.Contains(t, header, "(line 7)")
}
