package typeahead

import (
	"github.com/skyscout/skyscout-cli/internal/gateway"
	"github.com/skyscout/skyscout-cli/internal/search"
)

const (
	FieldOrigin      = "origin"
	FieldDestination = "destination"
)

// Form pairs the origin and destination sessions of a search form
type Form struct {
	Origin      *Session
	Destination *Session
}

// NewForm creates both sessions with the same lookup and options
func NewForm(lookup gateway.PlaceLookup, opts ...Option) *Form {
	return &Form{
		Origin:      NewSession(FieldOrigin, lookup, opts...),
		Destination: NewSession(FieldDestination, lookup, opts...),
	}
}

// Swap exchanges text and code of origin and destination and marks both
// selected. Pending lookups of both fields are cancelled.
func (f *Form) Swap() {
	f.Origin.mu.Lock()
	f.Destination.mu.Lock()

	if f.Origin.closed || f.Destination.closed {
		f.Destination.mu.Unlock()
		f.Origin.mu.Unlock()
		return
	}

	origin, destination := f.Origin.sel, f.Destination.sel
	origin.Selected, destination.Selected = true, true
	f.Origin.selectLocked(destination)
	f.Destination.selectLocked(origin)

	f.Destination.mu.Unlock()
	f.Origin.mu.Unlock()

	f.Origin.notify()
	f.Destination.notify()
}

// Submit builds the search request from the current selections
func (f *Form) Submit(departDate string) (search.Request, error) {
	origin := f.Origin.Selection()
	destination := f.Destination.Selection()
	return search.Build(
		search.Endpoint{Code: origin.Code, Label: origin.Text},
		search.Endpoint{Code: destination.Code, Label: destination.Text},
		departDate,
	)
}

// Close tears down both sessions
func (f *Form) Close() {
	f.Origin.Close()
	f.Destination.Close()
}
