package tui

import (
	"github.com/skyscout/skyscout-cli/internal/deals"
	"github.com/skyscout/skyscout-cli/internal/models"
	"github.com/skyscout/skyscout-cli/internal/search"
)

// formChangedMsg signals that a typeahead session changed state.
// Signals coalesce; the model reads fresh snapshots when it handles one.
type formChangedMsg struct{}

// faresResultMsg carries the itineraries of a submitted search.
// seq is used for stale-result detection.
type faresResultMsg struct {
	seq         int
	request     search.Request
	itineraries []models.Itinerary
	err         error
}

// dealsResultMsg carries a finished deals run
type dealsResultMsg struct {
	run    *deals.Run
	date   string
	result deals.Result
	err    error
}
