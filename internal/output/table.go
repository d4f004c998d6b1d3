package output

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/skyscout/skyscout-cli/internal/deals"
	"github.com/skyscout/skyscout-cli/internal/models"
	"github.com/skyscout/skyscout-cli/internal/search"
)

// TableOptions configures the table output
type TableOptions struct {
	Colors   *Colors
	Currency string
	// ShowDescriptions prints the catalog blurb under each deal
	ShowDescriptions bool
}

func (o TableOptions) colors() *Colors {
	if o.Colors == nil {
		return NewColors(ColorNever)
	}
	return o.Colors
}

// RenderPlaces renders place candidates as a list
func RenderPlaces(w io.Writer, places []models.Place, opts TableOptions) {
	if len(places) == 0 {
		_, _ = fmt.Fprintln(w, "No places found.")
		return
	}

	c := opts.colors()
	_, _ = fmt.Fprintln(w, c.Header("Found places:"))
	_, _ = fmt.Fprintln(w)

	for _, p := range places {
		kind := ""
		if p.Type != "" {
			kind = c.Muted("(%s)", p.Type)
		}
		_, _ = fmt.Fprintf(w, "  %s  %s %s\n", c.Code("%-3s", p.Code), c.Name("%s", p.Label()), kind)
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "%s skyscout fares --from %s --to <code>\n", c.Muted("Use:"), places[0].Code)
}

// RenderSearchRequest renders the route header of a search
func RenderSearchRequest(w io.Writer, req search.Request, opts TableOptions) {
	c := opts.colors()

	from := req.Origin()
	if req.OriginInput() != "" {
		from = fmt.Sprintf("%s (%s)", req.OriginInput(), req.Origin())
	}
	to := req.Destination()
	if req.DestinationInput() != "" {
		to = fmt.Sprintf("%s (%s)", req.DestinationInput(), req.Destination())
	}

	_, _ = fmt.Fprintf(w, "%s %s → %s\n", c.Header("Route:"), from, to)
	_, _ = fmt.Fprintf(w, "%s %s  %s\n", c.Header("Date:"), c.Date("%s", req.DepartDate()), c.Muted("one way"))
}

// RenderItineraries renders priced itineraries, cheapest first.
// The slice is sorted in place.
func RenderItineraries(w io.Writer, itineraries []models.Itinerary, opts TableOptions) {
	if len(itineraries) == 0 {
		_, _ = fmt.Fprintln(w, "No flights found.")
		return
	}

	c := opts.colors()
	models.SortByFare(itineraries)
	best, hasBest := models.MinFare(itineraries)

	for _, it := range itineraries {
		fare, ok := it.Fare()
		priceStr := c.Error("%12s", "n/a")
		if ok {
			priceStr = c.FormatPrice(fare, opts.Currency, hasBest && fare == best)
		}

		airline := truncate(it.String("airline"), 12)
		flight := it.String("flight_number")
		if flight == "" {
			flight = it.String("flight")
		}

		details := ""
		if t := it.Int("transfers"); t > 0 {
			details = c.Muted("%d stop(s)", t)
		} else if _, present := it["transfers"]; present {
			details = c.Muted("direct")
		}

		_, _ = fmt.Fprintf(w, "%s  %s  %s  %s\n",
			priceStr,
			c.Name("%-12s", airline),
			c.Code("%-8s", truncate(flight, 8)),
			details,
		)
	}

	if hasBest {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintf(w, "%s %s\n", c.Header("Cheapest:"), c.PriceBest("%s", FormatAmount(best, opts.Currency)))
	}
}

// RenderDeals renders the lowest fare (or the failure reason) per catalog entry
func RenderDeals(w io.Writer, catalog []models.Destination, res deals.Result, date string, opts TableOptions) {
	if len(catalog) == 0 {
		_, _ = fmt.Fprintln(w, "No destinations configured.")
		return
	}

	c := opts.colors()
	origin := catalog[0].Origin
	_, _ = fmt.Fprintf(w, "%s %s %s %s\n", c.Header("Deals from"), c.Code("%s", origin), c.Header("on"), c.Date("%s", date))
	_, _ = fmt.Fprintln(w)

	best := -1.0
	for _, p := range res.Prices {
		if best < 0 || p < best {
			best = p
		}
	}

	seen := make(map[string]bool, len(catalog))
	for _, d := range catalog {
		if seen[d.Code] {
			continue
		}
		seen[d.Code] = true

		var priceStr string
		if p, ok := res.Price(d.Code); ok {
			priceStr = c.FormatPrice(p, opts.Currency, p == best)
		} else if reason, ok := res.Reason(d.Code); ok {
			priceStr = c.Error("%12s", truncate(reason, 12))
		} else {
			priceStr = c.Muted("%12s", "…")
		}

		_, _ = fmt.Fprintf(w, "  %s  %s  %s\n", c.Code("%-3s", d.Code), c.Name("%-28s", truncate(d.Label, 28)), priceStr)
		if opts.ShowDescriptions && d.Description != "" {
			_, _ = fmt.Fprintf(w, "       %s\n", c.Muted("%s", d.Description))
		}
	}

	if len(res.Errors) > 0 {
		_, _ = fmt.Fprintln(w)
		for _, d := range catalog {
			if reason, ok := res.Reason(d.Code); ok && utf8.RuneCountInString(reason) > 12 {
				_, _ = fmt.Fprintf(w, "  %s %s\n", c.Code("%s", d.Code+":"), c.Error("%s", reason))
			}
		}
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}
