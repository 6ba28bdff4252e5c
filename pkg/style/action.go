package style

import (
	"os"

	"github.com/arthur-debert/syncpack/pkg/types"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// colorMode holds the configured override: "always", "never", or
// "auto" (terminal detection).
var colorMode = "auto"

// SetColorMode applies the configured color mode. Unknown values fall
// back to auto.
func SetColorMode(mode string) {
	switch mode {
	case "always", "never", "auto":
		colorMode = mode
	default:
		colorMode = "auto"
	}
	switch {
	case colorMode == "always":
		lipgloss.SetColorProfile(termenv.ANSI256)
	case !Colorized():
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// Colorized reports whether output should be colored: the configured
// mode when forced, terminal support otherwise.
func Colorized() bool {
	switch colorMode {
	case "always":
		return true
	case "never":
		return false
	}
	return termenv.NewOutput(os.Stdout).ColorProfile() != termenv.Ascii
}

// ActionStyle returns the style for one reconciliation action.
func ActionStyle(action types.ActionType) lipgloss.Style {
	switch action {
	case types.ActionInstall:
		return SuccessStyle
	case types.ActionUpdate:
		return InfoStyle
	case types.ActionConflict:
		return ErrorStyle
	case types.ActionDelete:
		return WarningStyle
	case types.ActionSkip:
		return MutedStyle
	}
	return NormalStyle
}

// ActionGlyph returns the one-character marker for an action.
func ActionGlyph(action types.ActionType) string {
	switch action {
	case types.ActionInstall:
		return "+"
	case types.ActionUpdate:
		return "~"
	case types.ActionConflict:
		return "!"
	case types.ActionDelete:
		return "-"
	case types.ActionSkip:
		return "="
	}
	return "?"
}
