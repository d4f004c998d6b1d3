package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/skyscout/skyscout-cli/internal/api"
	"github.com/skyscout/skyscout-cli/internal/cache"
	"github.com/skyscout/skyscout-cli/internal/deals"
	"github.com/skyscout/skyscout-cli/internal/gateway"
	"github.com/skyscout/skyscout-cli/internal/models"
	"github.com/skyscout/skyscout-cli/internal/output"
	"github.com/skyscout/skyscout-cli/internal/search"
	"github.com/skyscout/skyscout-cli/internal/tui"
)

var version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "skyscout",
	Short: "Search one-way flights and featured fare deals from the terminal",
	Long: `skyscout is a command-line interface for searching one-way flights.

Features:
  - Airport and city lookup by name or IATA code
  - Lowest fares for a route on a given day
  - Featured destinations with the cheapest fare for tomorrow
  - Interactive search with live suggestions (TUI)
  - JSON output for scripting
  - Response caching (file or Redis)

Quick Start:
  1. Launch TUI:              skyscout (or skyscout tui)
  2. Look up a place:         skyscout places "New Del"
  3. Search fares:            skyscout fares --from DEL --to "Mumbai" --date 2026-03-14
  4. Show featured deals:     skyscout deals
  5. Keep deals refreshing:   skyscout deals --watch`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// If no subcommand is provided, launch TUI
		if len(args) == 0 {
			return runTUI(cmd, args)
		}
		return cmd.Help()
	},
}

// Global flags
var (
	flagDate     string
	flagJSON     bool
	flagRawJSON  bool
	flagColor    string
	flagNoCache  bool
	flagConfig   string
	flagLogLevel string
)

// Command flags
var (
	flagFrom     string
	flagTo       string
	flagOrigin   string
	flagWatch    bool
	flagInterval time.Duration
	flagLong     bool
)

func init() {
	rootCmd.AddCommand(placesCmd)
	rootCmd.AddCommand(faresCmd)
	rootCmd.AddCommand(dealsCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cachePruneCmd)

	rootCmd.PersistentFlags().StringVarP(&flagDate, "date", "d", "", "Departure date (YYYY-MM-DD or DD.MM.YYYY, default tomorrow)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagRawJSON, "raw-json", false, "Output raw API response")
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "auto", "Color output: auto, always, never")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Disable response caching")
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	faresCmd.Flags().StringVarP(&flagFrom, "from", "f", "", "Origin airport code or place name")
	faresCmd.Flags().StringVarP(&flagTo, "to", "t", "", "Destination airport code or place name")

	dealsCmd.Flags().StringVarP(&flagOrigin, "origin", "o", "", "Departure airport for every deal (default from config)")
	dealsCmd.Flags().BoolVarP(&flagWatch, "watch", "w", false, "Watch mode: refresh periodically")
	dealsCmd.Flags().DurationVar(&flagInterval, "interval", 5*time.Minute, "Refresh interval in watch mode")
	dealsCmd.Flags().BoolVarP(&flagLong, "long", "l", false, "Show destination descriptions")
}

func tableOptions(currency string) output.TableOptions {
	return output.TableOptions{
		Colors:           output.NewColors(output.ParseColorMode(flagColor)),
		Currency:         currency,
		ShowDescriptions: flagLong,
	}
}

var placesCmd = &cobra.Command{
	Use:   "places <term>",
	Short: "Look up airports and cities",
	Long: `Look up airports and cities matching a search term.

Examples:
  skyscout places "New Del"
  skyscout places BOM --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPlaces,
}

func runPlaces(cmd *cobra.Command, args []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := output.SignalContext(cmd.Context())
	defer cancel()

	term := strings.Join(args, " ")
	out := cmd.OutOrStdout()

	if flagRawJSON {
		raw, err := a.client.LookupPlacesRaw(ctx, term)
		if err != nil {
			return err
		}
		return printPrettyJSON(out, raw)
	}

	places, err := a.client.LookupPlaces(ctx, term)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(out, places)
	}

	output.RenderPlaces(out, places, tableOptions(a.cfg.Fares.Currency))
	return nil
}

var faresCmd = &cobra.Command{
	Use:   "fares",
	Short: "Search one-way fares for a route",
	Long: `Search one-way fares between two places on a given day.

Places may be given as IATA codes or as free text; free text resolves to the
first matching airport or city.

Examples:
  skyscout fares --from DEL --to BOM
  skyscout fares --from "New Delhi" --to Mumbai --date 2026-03-14
  skyscout fares -f DEL -t TRV --json`,
	Args: cobra.NoArgs,
	RunE: runFares,
}

// faresJSON is the --json document for the fares command
type faresJSON struct {
	Request     search.Request     `json:"request"`
	Cheapest    *float64           `json:"cheapest,omitempty"`
	Itineraries []models.Itinerary `json:"itineraries"`
}

func runFares(cmd *cobra.Command, args []string) error {
	date, err := parseDate(flagDate, time.Now())
	if err != nil {
		return err
	}

	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := output.SignalContext(cmd.Context())
	defer cancel()

	origin, err := resolveEndpoint(ctx, a.client, flagFrom)
	if err != nil {
		return fmt.Errorf("origin: %w", err)
	}
	destination, err := resolveEndpoint(ctx, a.client, flagTo)
	if err != nil {
		return fmt.Errorf("destination: %w", err)
	}

	req, err := search.Build(origin, destination, date)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if flagRawJSON {
		raw, err := a.client.LookupFaresRaw(ctx, req.FareRequest())
		if err != nil {
			return err
		}
		return printPrettyJSON(out, raw)
	}

	ch := gateway.NewChannel()
	defer ch.Close()
	itineraries, err := gateway.Do(ch, ctx, api.KindFares, req.Origin()+"-"+req.Destination(),
		func(ctx context.Context) ([]models.Itinerary, error) {
			return a.client.LookupFares(ctx, req.FareRequest())
		})
	if err != nil {
		return err
	}

	if flagJSON {
		doc := faresJSON{Request: req, Itineraries: itineraries}
		if best, ok := models.MinFare(itineraries); ok {
			doc.Cheapest = &best
		}
		if doc.Itineraries == nil {
			doc.Itineraries = []models.Itinerary{}
		}
		return printJSON(out, doc)
	}

	opts := tableOptions(a.cfg.Fares.Currency)
	output.RenderSearchRequest(out, req, opts)
	output.RenderItineraries(out, itineraries, opts)
	return nil
}

var dealsCmd = &cobra.Command{
	Use:   "deals",
	Short: "Show the cheapest fare to each featured destination",
	Long: `Show the lowest one-way fare to each featured destination.

Every destination is looked up concurrently. A destination whose lookup fails
is listed with the reason instead of a price.

Examples:
  skyscout deals
  skyscout deals --origin BOM --date 2026-03-14
  skyscout deals --watch --interval 10m`,
	Args: cobra.NoArgs,
	RunE: runDeals,
}

// dealsJSON is the --json document for the deals command
type dealsJSON struct {
	Origin string             `json:"origin"`
	Date   string             `json:"date"`
	Prices map[string]float64 `json:"prices"`
	Errors map[string]string  `json:"errors"`
}

func runDeals(cmd *cobra.Command, args []string) error {
	// Validate up front; in watch mode an empty date is re-resolved every round.
	if _, err := parseDate(flagDate, time.Now()); err != nil {
		return err
	}

	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := output.SignalContext(cmd.Context())
	defer cancel()

	agg, catalog := a.aggregator(strings.ToUpper(strings.TrimSpace(flagOrigin)))
	opts := tableOptions(a.cfg.Fares.Currency)
	out := cmd.OutOrStdout()

	render := func(ctx context.Context) error {
		date, err := parseDate(flagDate, time.Now())
		if err != nil {
			return err
		}
		res, err := agg.Aggregate(ctx, catalog, date)
		if errors.Is(err, deals.ErrCancelled) {
			return nil
		}
		if err != nil {
			return err
		}

		if flagJSON {
			origin := ""
			if len(catalog) > 0 {
				origin = catalog[0].Origin
			}
			return printJSON(out, dealsJSON{Origin: origin, Date: date, Prices: res.Prices, Errors: res.Errors})
		}
		output.RenderDeals(out, catalog, res, date, opts)
		return nil
	}

	if flagWatch {
		if flagInterval <= 0 {
			return fmt.Errorf("invalid --interval %s: must be positive", flagInterval)
		}
		output.Watch(ctx, out, cmd.ErrOrStderr(), flagInterval, render)
		return nil
	}
	return render(ctx)
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive search",
	Long: `Launch the interactive terminal user interface.

Type into Origin and Destination to get suggestions, pick one with the arrow
keys and Enter, then submit the date to search fares. The deals panel loads
the cheapest fare to each featured destination for tomorrow.`,
	RunE: runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	agg, catalog := a.aggregator("")
	model := tui.New(tui.Config{
		Places:     a.client,
		Fares:      a.client,
		Aggregator: agg,
		Catalog:    catalog,
		Currency:   a.cfg.Fares.Currency,
		Delay:      a.cfg.Typeahead.Debounce,
		MinLength:  a.cfg.Typeahead.MinLength,
		Logger:     a.log,
		Metrics:    a.metrics,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	final, err := p.Run()
	if m, ok := final.(tui.Model); ok {
		m.Close()
	} else {
		model.Close()
	}
	return err
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the local response cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached response",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFileCache(cmd, "cleared", (*cache.FileCache).Clear)
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove expired cached responses",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFileCache(cmd, "pruned", (*cache.FileCache).Cleanup)
	},
}

func withFileCache(cmd *cobra.Command, verb string, fn func(*cache.FileCache) error) error {
	dir := cache.DefaultCacheDir()
	fc, err := cache.NewFileCache(dir, 0)
	if err != nil {
		return err
	}
	if err := fn(fc); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Cache %s: %s\n", verb, dir)
	return nil
}

// resolveEndpoint turns user input into a search endpoint. Three letters are
// taken as an IATA code; anything else resolves to the first matching place.
// Empty input yields an empty endpoint so validation can report it.
func resolveEndpoint(ctx context.Context, places gateway.PlaceLookup, value string) (search.Endpoint, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return search.Endpoint{}, nil
	}
	if looksLikeCode(value) {
		code := strings.ToUpper(value)
		return search.Endpoint{Code: code, Label: code}, nil
	}

	found, err := places.LookupPlaces(ctx, value)
	if err != nil {
		return search.Endpoint{}, err
	}
	if len(found) == 0 {
		return search.Endpoint{}, fmt.Errorf("no airport or city matches %q", value)
	}
	return search.Endpoint{Code: found[0].Code, Label: found[0].Label()}, nil
}

// looksLikeCode reports whether s is shaped like an IATA code
func looksLikeCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}

// parseDate accepts YYYY-MM-DD, DD.MM.YYYY, "today" and "tomorrow".
// An empty value means tomorrow.
func parseDate(value string, now time.Time) (string, error) {
	value = strings.TrimSpace(value)
	switch strings.ToLower(value) {
	case "", "tomorrow":
		return deals.Tomorrow(now), nil
	case "today":
		return now.Format(time.DateOnly), nil
	}

	for _, layout := range []string{time.DateOnly, "02.01.2006"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(time.DateOnly), nil
		}
	}
	return "", fmt.Errorf("invalid date %q: use YYYY-MM-DD or DD.MM.YYYY", value)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printPrettyJSON re-indents a raw API response
func printPrettyJSON(w io.Writer, data []byte) error {
	var pretty any
	if err := json.Unmarshal(data, &pretty); err != nil {
		// If we can't parse it, just print raw
		_, _ = fmt.Fprintln(w, string(data))
		return err
	}
	return printJSON(w, pretty)
}
