package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/skyscout/skyscout-cli/internal/api"
	"github.com/skyscout/skyscout-cli/internal/deals"
	"github.com/skyscout/skyscout-cli/internal/gateway"
	"github.com/skyscout/skyscout-cli/internal/models"
	"github.com/skyscout/skyscout-cli/internal/search"
)

const apiTimeout = 15 * time.Second

// waitForFormChange returns a tea.Cmd that blocks until a session signals a change.
func waitForFormChange(changed <-chan struct{}, stop <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-changed:
			return formChangedMsg{}
		case <-stop:
			return nil
		}
	}
}

// fetchFares returns a tea.Cmd that looks up the itineraries of a search.
// A newer search on the same channel cancels this one.
func fetchFares(ch *gateway.Channel, fares gateway.FareLookup, req search.Request, seq int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
		defer cancel()

		key := req.Origin() + "-" + req.Destination()
		itineraries, err := gateway.Do(ch, ctx, api.KindFares, key, func(ctx context.Context) ([]models.Itinerary, error) {
			return fares.LookupFares(ctx, req.FareRequest())
		})
		return faresResultMsg{
			seq:         seq,
			request:     req,
			itineraries: itineraries,
			err:         err,
		}
	}
}

// waitForDeals returns a tea.Cmd that waits for a deals run to finish.
func waitForDeals(run *deals.Run, date string) tea.Cmd {
	return func() tea.Msg {
		res, err := run.Wait()
		return dealsResultMsg{run: run, date: date, result: res, err: err}
	}
}
