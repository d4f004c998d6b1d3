package output

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ColorMode represents the color output mode
type ColorMode int

const (
	// ColorAuto enables colors if output is a TTY
	ColorAuto ColorMode = iota
	// ColorAlways forces colors on
	ColorAlways
	// ColorNever disables colors
	ColorNever
)

// Colors holds the color functions for different output types
type Colors struct {
	Code      func(format string, a ...interface{}) string
	Name      func(format string, a ...interface{}) string
	Price     func(format string, a ...interface{}) string
	PriceBest func(format string, a ...interface{}) string
	Error     func(format string, a ...interface{}) string
	Date      func(format string, a ...interface{}) string
	Header    func(format string, a ...interface{}) string
	Muted     func(format string, a ...interface{}) string
}

// NewColors creates a new Colors instance based on the color mode
func NewColors(mode ColorMode) *Colors {
	useColors := false
	switch mode {
	case ColorAlways:
		useColors = true
		color.NoColor = false
	case ColorNever:
		useColors = false
	case ColorAuto:
		useColors = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	}

	if !useColors {
		noColor := func(format string, a ...interface{}) string {
			if len(a) == 0 {
				return format
			}
			return color.New().Sprintf(format, a...)
		}
		return &Colors{
			Code:      noColor,
			Name:      noColor,
			Price:     noColor,
			PriceBest: noColor,
			Error:     noColor,
			Date:      noColor,
			Header:    noColor,
			Muted:     noColor,
		}
	}

	return &Colors{
		Code:      color.New(color.FgCyan, color.Bold).SprintfFunc(),
		Name:      color.New(color.FgWhite).SprintfFunc(),
		Price:     color.New(color.FgYellow).SprintfFunc(),
		PriceBest: color.New(color.FgGreen, color.Bold).SprintfFunc(),
		Error:     color.New(color.FgRed).SprintfFunc(),
		Date:      color.New(color.FgMagenta).SprintfFunc(),
		Header:    color.New(color.FgWhite, color.Bold).SprintfFunc(),
		Muted:     color.New(color.FgHiBlack).SprintfFunc(),
	}
}

// FormatPrice formats a fare with its currency (fixed 12-char width).
// The cheapest fare of a listing is highlighted.
func (c *Colors) FormatPrice(value float64, currency string, best bool) string {
	s := FormatAmount(value, currency)
	if best {
		return c.PriceBest("%12s", s)
	}
	return c.Price("%12s", s)
}

// ParseColorMode parses a color mode string
func ParseColorMode(s string) ColorMode {
	switch s {
	case "always":
		return ColorAlways
	case "never":
		return ColorNever
	default:
		return ColorAuto
	}
}
