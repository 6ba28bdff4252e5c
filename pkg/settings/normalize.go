package settings

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	bracedVar     = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)
)

// NormalizeCommand reduces a hook command string to its comparison
// form: surrounding whitespace trimmed, internal whitespace runs
// collapsed, and ${VAR} path-variable spellings folded to $VAR. Two
// commands that normalize equal are the same logical directive even if
// the user reformatted one of them.
//
// This is a pure function called at comparison sites; there is no
// shared normalization cache to keep the merge side-effect-free.
func NormalizeCommand(command string) string {
	norm := strings.TrimSpace(command)
	norm = whitespaceRun.ReplaceAllString(norm, " ")
	norm = bracedVar.ReplaceAllString(norm, "$$$1")
	return norm
}
