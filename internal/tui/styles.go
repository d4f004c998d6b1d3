package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Colors matching the output/colors.go scheme
var (
	colorCyan    = lipgloss.Color("6")
	colorYellow  = lipgloss.Color("3")
	colorRed     = lipgloss.Color("1")
	colorGreen   = lipgloss.Color("2")
	colorMagenta = lipgloss.Color("5")
	colorWhite   = lipgloss.Color("15")
	colorGray    = lipgloss.Color("8")
)

// Text styles
var (
	styleCode      = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	stylePrice     = lipgloss.NewStyle().Foreground(colorYellow)
	stylePriceBest = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	styleDate      = lipgloss.NewStyle().Foreground(colorMagenta)
	styleMuted     = lipgloss.NewStyle().Foreground(colorGray)
	styleHeader    = lipgloss.NewStyle().Foreground(colorWhite).Bold(true)
)

// Panel border styles
var (
	stylePanelFocused = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorCyan)

	stylePanelNormal = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorGray)
)

// Selected item in a list
var styleSelected = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)

// Resolved location code next to a field
var styleResolved = lipgloss.NewStyle().
	Foreground(lipgloss.Color("0")).
	Background(colorGreen).
	Bold(true)

// Status bar at the bottom
var styleStatusBar = lipgloss.NewStyle().
	Foreground(colorGray).
	Background(lipgloss.Color("0"))

// Loading indicator
var styleLoading = lipgloss.NewStyle().Foreground(colorYellow).Italic(true)

// Error text
var styleError = lipgloss.NewStyle().Foreground(colorRed)

// Logo/brand style
var styleLogo = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
