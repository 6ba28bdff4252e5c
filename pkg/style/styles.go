// Package style centralizes terminal styling: one palette, one set of
// lipgloss styles, and per-action colors for plan rendering.
package style

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette. Adaptive colors pick a readable variant for light and dark
// terminal backgrounds.
var (
	HeadingColor = lipgloss.AdaptiveColor{Light: "#1a1a66", Dark: "#8888ff"}
	TextColor    = lipgloss.AdaptiveColor{Light: "#1a1a1a", Dark: "#e6e6e6"}
	MutedColor   = lipgloss.AdaptiveColor{Light: "#777777", Dark: "#888888"}
	SuccessColor = lipgloss.AdaptiveColor{Light: "#006600", Dark: "#66cc66"}
	ErrorColor   = lipgloss.AdaptiveColor{Light: "#cc0000", Dark: "#ff6666"}
	WarningColor = lipgloss.AdaptiveColor{Light: "#996600", Dark: "#ffcc66"}
	InfoColor    = lipgloss.AdaptiveColor{Light: "#005599", Dark: "#66aaff"}
	PathColor    = lipgloss.AdaptiveColor{Light: "#550088", Dark: "#cc99ff"}
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(HeadingColor).
			Bold(true)

	NormalStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	MutedStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(InfoColor)

	PathStyle = lipgloss.NewStyle().
			Foreground(PathColor).
			Italic(true)
)
