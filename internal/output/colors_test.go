package output

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/skyscout/skyscout-cli/internal/testutil"
)

func TestParseColorMode(t *testing.T) {
	tests := []struct {
		input string
		want  ColorMode
	}{
		{"always", ColorAlways},
		{"never", ColorNever},
		{"auto", ColorAuto},
		{"", ColorAuto},
		{"invalid", ColorAuto},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			testutil.AssertEqual(t, ParseColorMode(tt.input), tt.want)
		})
	}
}

func TestNewColors_NeverMode(t *testing.T) {
	oldNoColor := color.NoColor
	defer func() { color.NoColor = oldNoColor }()
	color.NoColor = true

	c := NewColors(ColorNever)

	testutil.AssertEqual(t, c.Code("DEL"), "DEL")
	testutil.AssertEqual(t, c.Name("Delhi, India"), "Delhi, India")
	testutil.AssertEqual(t, c.Price("₹5,000"), "₹5,000")
	testutil.AssertEqual(t, c.PriceBest("₹4,200"), "₹4,200")
	testutil.AssertEqual(t, c.Error("HTTP 502"), "HTTP 502")
	testutil.AssertEqual(t, c.Date("2026-10-18"), "2026-10-18")
	testutil.AssertEqual(t, c.Header("Deals"), "Deals")
	testutil.AssertEqual(t, c.Muted("direct"), "direct")
}

func TestNewColors_AlwaysMode(t *testing.T) {
	oldNoColor := color.NoColor
	defer func() { color.NoColor = oldNoColor }()

	c := NewColors(ColorAlways)

	result := c.Code("DEL")
	testutil.AssertContains(t, result, "\033[")
	testutil.AssertContains(t, result, "DEL")

	result = c.PriceBest("₹4,200")
	testutil.AssertContains(t, result, "\033[")
	testutil.AssertContains(t, result, "₹4,200")
}

func TestColors_Sprintf(t *testing.T) {
	oldNoColor := color.NoColor
	defer func() { color.NoColor = oldNoColor }()
	color.NoColor = true

	c := NewColors(ColorNever)

	testutil.AssertEqual(t, c.Code("%-3s|", "DE"), "DE |")
	testutil.AssertEqual(t, c.Muted("%d stop(s)", 1), "1 stop(s)")
}

func TestFormatPrice_Width(t *testing.T) {
	oldNoColor := color.NoColor
	defer func() { color.NoColor = oldNoColor }()
	color.NoColor = true

	c := NewColors(ColorNever)

	for _, v := range []float64{0, 99, 4200, 12500.5, 999999} {
		got := c.FormatPrice(v, "inr", false)
		testutil.AssertEqual(t, utf8.RuneCountInString(got), 12)
		testutil.AssertTrue(t, strings.HasPrefix(strings.TrimSpace(got), "₹"))
	}
}

func TestFormatPrice_BestIsHighlighted(t *testing.T) {
	oldNoColor := color.NoColor
	defer func() { color.NoColor = oldNoColor }()

	c := NewColors(ColorAlways)
	best := c.FormatPrice(4200, "inr", true)
	other := c.FormatPrice(4200, "inr", false)

	testutil.AssertTrue(t, best != other)
	testutil.AssertEqual(t, stripANSI(best), stripANSI(other))
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		value    float64
		currency string
		want     string
	}{
		{4200, "inr", "₹4,200"},
		{4200, "INR", "₹4,200"},
		{3100.5, "inr", "₹3,100.50"},
		{999, "usd", "$999"},
		{1234567, "eur", "€1,234,567"},
		{-15, "gbp", "-£15"},
		{4200, "chf", "4,200 CHF"},
		{4200, "", "4,200"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			testutil.AssertEqual(t, FormatAmount(tt.value, tt.currency), tt.want)
		})
	}
}

func stripANSI(s string) string {
	var result strings.Builder
	inEscape := false

	for _, r := range s {
		if r == '\033' {
			inEscape = true
			continue
		}
		if inEscape {
			if r == 'm' {
				inEscape = false
			}
			continue
		}
		result.WriteRune(r)
	}

	return result.String()
}
