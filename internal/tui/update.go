package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/skyscout/skyscout-cli/internal/deals"
	"github.com/skyscout/skyscout-cli/internal/models"
	"github.com/skyscout/skyscout-cli/internal/search"
)

// Update handles all messages and key events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case formChangedMsg:
		m.refreshSnapshots()
		return m, waitForFormChange(m.changed, m.life.stop)

	case faresResultMsg:
		return m.handleFaresResult(msg)

	case dealsResultMsg:
		return m.handleDealsResult(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Pass remaining messages (cursor blink) to the focused input
	var cmd tea.Cmd
	switch m.focus {
	case focusOrigin:
		m.originInput, cmd = m.originInput.Update(msg)
	case focusDestination:
		m.destinationInput, cmd = m.destinationInput.Update(msg)
	case focusDate:
		m.dateInput, cmd = m.dateInput.Update(msg)
	}
	return m, cmd
}

func (m *Model) refreshSnapshots() {
	m.originSnap = m.form.Origin.Snapshot()
	m.destinationSnap = m.form.Destination.Snapshot()
	if _, snap, ok := m.activeSession(); ok && m.suggestionCursor >= len(snap.Suggestions) {
		m.suggestionCursor = 0
	}
}

func (m Model) handleFaresResult(msg faresResultMsg) (tea.Model, tea.Cmd) {
	// Ignore stale results
	if msg.seq != m.searchSeq {
		return m, nil
	}
	if errors.Is(msg.err, context.Canceled) {
		return m, nil
	}
	m.resultsLoading = false
	m.resultsErr = msg.err
	if msg.err != nil {
		m.log.Warn("fare search failed",
			zap.String("origin", msg.request.Origin()),
			zap.String("destination", msg.request.Destination()),
			zap.String("date", msg.request.DepartDate()),
			zap.Error(msg.err))
		m.itineraries = nil
		return m, nil
	}

	itineraries := make([]models.Itinerary, len(msg.itineraries))
	copy(itineraries, msg.itineraries)
	models.SortByFare(itineraries)
	m.itineraries = itineraries
	m.resultsCursor = 0
	return m, nil
}

func (m Model) handleDealsResult(msg dealsResultMsg) (tea.Model, tea.Cmd) {
	if !m.life.current(msg.run) {
		return m, nil
	}
	if errors.Is(msg.err, deals.ErrCancelled) {
		return m, nil
	}
	m.dealsLoading = false
	m.dealsErr = msg.err
	if msg.err == nil {
		res := msg.result
		m.dealsResult = &res
		m.dealsDate = msg.date
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys
	switch msg.String() {
	case "ctrl+c":
		m.Close()
		return m, tea.Quit
	case "ctrl+s":
		return m.swap()
	case "tab":
		return m.cycleFocus(1), nil
	case "shift+tab":
		return m.cycleFocus(-1), nil
	}

	switch m.focus {
	case focusOrigin, focusDestination:
		return m.handleFieldKeys(msg)
	case focusDate:
		return m.handleDateKeys(msg)
	case focusDeals:
		return m.handleDealsKeys(msg)
	case focusResults:
		return m.handleResultsKeys(msg)
	}
	return m, nil
}

func (m Model) cycleFocus(step int) Model {
	idx := 0
	for i, f := range focusOrder {
		if f == m.focus {
			idx = i
			break
		}
	}
	idx = (idx + step + len(focusOrder)) % len(focusOrder)
	return m.setFocus(focusOrder[idx])
}

func (m Model) setFocus(f focusPanel) Model {
	m.originInput.Blur()
	m.destinationInput.Blur()
	m.dateInput.Blur()

	m.focus = f
	m.suggestionCursor = 0
	switch f {
	case focusOrigin:
		m.originInput.Focus()
	case focusDestination:
		m.destinationInput.Focus()
	case focusDate:
		m.dateInput.Focus()
	}
	return m
}

func (m Model) handleFieldKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	session, snap, _ := m.activeSession()

	switch msg.String() {
	case "up", "ctrl+p":
		if m.suggestionCursor > 0 {
			m.suggestionCursor--
		}
		return m, nil

	case "down", "ctrl+n":
		if m.suggestionCursor < len(snap.Suggestions)-1 {
			m.suggestionCursor++
		}
		return m, nil

	case "enter":
		if len(snap.Suggestions) == 0 {
			// Nothing to pick; move on like tab
			return m.cycleFocus(1), nil
		}
		place, err := session.SelectIndex(m.suggestionCursor)
		if err != nil {
			return m, nil
		}
		m.formErr = ""
		m.setInputText(m.focus, place.Label())
		m.refreshSnapshots()
		return m.cycleFocus(1), nil

	case "esc":
		session.Reset()
		m.setInputText(m.focus, "")
		m.refreshSnapshots()
		return m, nil
	}

	var cmd tea.Cmd
	var before, after string
	if m.focus == focusOrigin {
		before = m.originInput.Value()
		m.originInput, cmd = m.originInput.Update(msg)
		after = m.originInput.Value()
	} else {
		before = m.destinationInput.Value()
		m.destinationInput, cmd = m.destinationInput.Update(msg)
		after = m.destinationInput.Value()
	}
	if after != before {
		session.Input(after)
		m.suggestionCursor = 0
		m.formErr = ""
		m.refreshSnapshots()
	}
	return m, cmd
}

func (m *Model) setInputText(f focusPanel, text string) {
	switch f {
	case focusOrigin:
		m.originInput.SetValue(text)
		m.originInput.CursorEnd()
	case focusDestination:
		m.destinationInput.SetValue(text)
		m.destinationInput.CursorEnd()
	}
}

func (m Model) swap() (tea.Model, tea.Cmd) {
	m.form.Swap()
	m.setInputText(focusOrigin, m.form.Origin.Selection().Text)
	m.setInputText(focusDestination, m.form.Destination.Selection().Text)
	m.refreshSnapshots()
	return m, nil
}

func (m Model) handleDateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return m.submit()
	case "esc":
		m.dateInput.SetValue(deals.Tomorrow(m.now()))
		return m, nil
	}

	var cmd tea.Cmd
	m.dateInput, cmd = m.dateInput.Update(msg)
	return m, cmd
}

// submit validates the form and starts the fare search
func (m Model) submit() (tea.Model, tea.Cmd) {
	date := strings.TrimSpace(m.dateInput.Value())
	if date != "" {
		if _, err := time.Parse(time.DateOnly, date); err != nil {
			m.formErr = "Departure date must be YYYY-MM-DD."
			return m, nil
		}
	}

	req, err := m.form.Submit(date)
	if err != nil {
		var verr *search.ValidationError
		if errors.As(err, &verr) {
			m.formErr = verr.Error()
		} else {
			m.formErr = err.Error()
		}
		return m, nil
	}
	return m.startSearch(req)
}

func (m Model) startSearch(req search.Request) (tea.Model, tea.Cmd) {
	m.formErr = ""
	if m.fares == nil {
		return m, nil
	}
	m.searchSeq++
	m.request = &req
	m.itineraries = nil
	m.resultsErr = nil
	m.resultsLoading = true
	m.resultsCursor = 0
	m = m.setFocus(focusResults)
	return m, fetchFares(m.searchCh, m.fares, req, m.searchSeq)
}

func (m Model) handleDealsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.Close()
		return m, tea.Quit

	case "j", "down":
		if m.dealsCursor < len(m.catalog)-1 {
			m.dealsCursor++
		}
		return m, nil

	case "k", "up":
		if m.dealsCursor > 0 {
			m.dealsCursor--
		}
		return m, nil

	case "r":
		if m.aggregator == nil {
			return m, nil
		}
		if date := strings.TrimSpace(m.dateInput.Value()); date != "" {
			m.dealsDate = date
		}
		m.dealsLoading = true
		m.dealsErr = nil
		return m, m.startDeals()

	case "enter":
		// Discover trips: search from the deal's origin to the highlighted destination
		if m.dealsCursor >= len(m.catalog) {
			return m, nil
		}
		dest := m.catalog[m.dealsCursor]
		originLabel := dest.Origin
		if dest.Origin == models.DefaultOrigin {
			originLabel = models.DefaultOriginLabel
		}
		req, err := search.Build(
			search.Endpoint{Code: dest.Origin, Label: originLabel},
			search.Endpoint{Code: dest.Code, Label: dest.Label},
			m.dealsDate,
		)
		if err != nil {
			m.formErr = err.Error()
			return m, nil
		}
		return m.startSearch(req)
	}
	return m, nil
}

func (m Model) handleResultsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.Close()
		return m, tea.Quit

	case "j", "down":
		if m.resultsCursor < len(m.itineraries)-1 {
			m.resultsCursor++
		}
	case "k", "up":
		if m.resultsCursor > 0 {
			m.resultsCursor--
		}
	case "esc", "/":
		return m.setFocus(focusOrigin), nil
	}
	return m, nil
}
