package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"github.com/skyscout/skyscout-cli/internal/output"
	"github.com/skyscout/skyscout-cli/internal/typeahead"
)

// View renders the entire TUI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	header := renderHeader()
	formPanel := m.renderForm()
	statusBar := m.renderStatusBar()

	panelHeight := m.height - lipgloss.Height(header) - lipgloss.Height(formPanel) - lipgloss.Height(statusBar)
	if panelHeight < 3 {
		panelHeight = 3
	}

	// Panel widths: ~55% results, ~45% deals
	leftWidth := m.width*55/100 - 2
	rightWidth := m.width - leftWidth - 4
	if leftWidth < 20 {
		leftWidth = 20
	}
	if rightWidth < 20 {
		rightWidth = 20
	}

	leftBorder := stylePanelNormal
	if m.focus == focusResults {
		leftBorder = stylePanelFocused
	}
	leftPanel := leftBorder.
		Width(leftWidth).
		Height(panelHeight - 2).
		Render(m.renderResults(leftWidth, panelHeight-2))

	rightBorder := stylePanelNormal
	if m.focus == focusDeals {
		rightBorder = stylePanelFocused
	}
	rightPanel := rightBorder.
		Width(rightWidth).
		Height(panelHeight - 2).
		Render(m.renderDeals(rightWidth, panelHeight-2))

	panels := lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, rightPanel)
	return lipgloss.JoinVertical(lipgloss.Left, header, formPanel, panels, statusBar)
}

// renderHeader renders the brand line.
func renderHeader() string {
	return styleLogo.Render(" ✈ skyscout") + styleMuted.Render("  find your next flight")
}

// renderForm renders the origin, destination and date fields with the
// suggestion list of the focused field.
func (m Model) renderForm() string {
	formFocused := m.focus == focusOrigin || m.focus == focusDestination || m.focus == focusDate
	border := stylePanelNormal
	if formFocused {
		border = stylePanelFocused
	}

	var b strings.Builder
	b.WriteString(renderField("From", m.originInput, m.originSnap))
	b.WriteString("\n")
	b.WriteString(renderField("To  ", m.destinationInput, m.destinationSnap))
	b.WriteString("\n")
	b.WriteString(styleHeader.Render("Date ") + m.dateInput.View())

	if _, snap, ok := m.activeSession(); ok {
		if list := m.renderSuggestions(snap); list != "" {
			b.WriteString("\n")
			b.WriteString(list)
		}
	}
	if m.formErr != "" {
		b.WriteString("\n")
		b.WriteString(styleError.Render(m.formErr))
	}

	return border.Width(m.width - 2).Render(b.String())
}

func renderField(label string, input textinput.Model, snap typeahead.Snapshot) string {
	line := styleHeader.Render(label+" ") + input.View()

	switch snap.State {
	case typeahead.Pending, typeahead.Loading:
		line += " " + styleLoading.Render("searching…")
	case typeahead.Selected:
		if snap.Selection.Code != "" {
			line += " " + styleResolved.Render(" "+snap.Selection.Code+" ")
		}
	case typeahead.Idle:
		if snap.Err != nil {
			line += " " + styleError.Render("lookup failed")
		}
	}
	return line
}

func (m Model) renderSuggestions(snap typeahead.Snapshot) string {
	if snap.State != typeahead.Suggesting {
		return ""
	}
	if len(snap.Suggestions) == 0 {
		return styleMuted.Render("  No matching places")
	}

	const maxVisible = 6
	start, end := visibleRange(m.suggestionCursor, len(snap.Suggestions), maxVisible)

	var lines []string
	for i := start; i < end; i++ {
		p := snap.Suggestions[i]
		entry := fmt.Sprintf("%s  %s", styleCode.Render(fmt.Sprintf("%-3s", p.Code)), p.Label())
		if p.Type != "" {
			entry += " " + styleMuted.Render("("+p.Type+")")
		}
		if i == m.suggestionCursor {
			lines = append(lines, styleSelected.Render(" >")+entry)
		} else {
			lines = append(lines, "  "+entry)
		}
	}
	return strings.Join(lines, "\n")
}

// renderResults renders the itineraries of the last search.
func (m Model) renderResults(width, height int) string {
	title := styleHeader.Render("FLIGHTS")
	if m.request != nil {
		req := *m.request
		title += styleMuted.Render(fmt.Sprintf("  %s → %s  ", req.Origin(), req.Destination())) + styleDate.Render(req.DepartDate())
	}

	if m.resultsLoading {
		return title + "\n" + styleLoading.Render(" Searching flights...")
	}
	if m.resultsErr != nil {
		return title + "\n" + styleError.Render(" Error: "+m.resultsErr.Error())
	}
	if m.request == nil {
		return title + "\n" + styleMuted.Render(" Pick origin and destination, then press Enter on the date")
	}
	if len(m.itineraries) == 0 {
		return title + "\n" + styleMuted.Render(" No flights found")
	}

	maxVisible := height - 2
	if maxVisible < 1 {
		maxVisible = 1
	}
	start, end := visibleRange(m.resultsCursor, len(m.itineraries), maxVisible)

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	for i := start; i < end; i++ {
		it := m.itineraries[i]
		price := styleError.Render(fmt.Sprintf("%12s", "n/a"))
		if fare, ok := it.Fare(); ok {
			style := stylePrice
			if i == 0 {
				style = stylePriceBest
			}
			price = style.Render(fmt.Sprintf("%12s", output.FormatAmount(fare, m.currency)))
		}
		entry := fmt.Sprintf("%s  %s", price, truncate(strings.TrimSpace(it.String("airline")+" "+it.String("flight_number")), width-18))
		if i == m.resultsCursor && m.focus == focusResults {
			b.WriteString(styleSelected.Render(">") + entry)
		} else {
			b.WriteString(" " + entry)
		}
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// renderDeals renders the catalog with the lowest fare of each destination.
func (m Model) renderDeals(width, height int) string {
	title := styleHeader.Render("DEALS") + styleMuted.Render("  ") + styleDate.Render(m.dealsDate)
	if m.dealsLoading {
		title += " " + styleLoading.Render("loading…")
	}
	if m.dealsErr != nil {
		return title + "\n" + styleError.Render(" Error: "+m.dealsErr.Error())
	}

	best := -1.0
	if m.dealsResult != nil {
		for _, p := range m.dealsResult.Prices {
			if best < 0 || p < best {
				best = p
			}
		}
	}

	maxVisible := height - 2
	if maxVisible < 1 {
		maxVisible = 1
	}
	start, end := visibleRange(m.dealsCursor, len(m.catalog), maxVisible)

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	for i := start; i < end; i++ {
		d := m.catalog[i]

		price := styleMuted.Render(fmt.Sprintf("%12s", "…"))
		if m.dealsResult != nil {
			if p, ok := m.dealsResult.Price(d.Code); ok {
				style := stylePrice
				if p == best {
					style = stylePriceBest
				}
				price = style.Render(fmt.Sprintf("%12s", output.FormatAmount(p, m.currency)))
			} else if reason, ok := m.dealsResult.Reason(d.Code); ok {
				price = styleError.Render(fmt.Sprintf("%12s", truncate(reason, 12)))
			}
		}

		label := truncate(d.Label, width-22)
		entry := fmt.Sprintf("%s %s %s", styleCode.Render(d.Code), fmt.Sprintf("%-*s", width-22, label), price)
		if i == m.dealsCursor && m.focus == focusDeals {
			b.WriteString(styleSelected.Render(">") + entry)
		} else {
			b.WriteString(" " + entry)
		}
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// renderStatusBar renders context-aware keyboard hints at the bottom.
func (m Model) renderStatusBar() string {
	var hints string
	switch m.focus {
	case focusOrigin, focusDestination:
		hints = "↑/↓:suggestions  Enter:select  Ctrl+S:swap  Tab:next  Esc:clear  Ctrl+C:quit"
	case focusDate:
		hints = "Enter:search  Ctrl+S:swap  Tab:deals  Esc:tomorrow  Ctrl+C:quit"
	case focusDeals:
		hints = "j/k:navigate  Enter:discover trips  r:refresh  Tab:flights  q:quit"
	case focusResults:
		hints = "j/k:navigate  Esc:form  Tab:form  q:quit"
	}

	return styleStatusBar.Width(m.width).Render(" " + hints)
}

// visibleRange calculates the start and end indices for a scrollable list.
func visibleRange(cursor, total, maxVisible int) (int, int) {
	if total <= maxVisible {
		return 0, total
	}

	start := cursor - maxVisible/2
	if start < 0 {
		start = 0
	}
	end := start + maxVisible
	if end > total {
		end = total
		start = end - maxVisible
		if start < 0 {
			start = 0
		}
	}
	return start, end
}

// truncate truncates a string to the given width in runes.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "~"
}
