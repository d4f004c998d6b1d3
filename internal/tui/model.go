package tui

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/skyscout/skyscout-cli/internal/deals"
	"github.com/skyscout/skyscout-cli/internal/gateway"
	"github.com/skyscout/skyscout-cli/internal/metrics"
	"github.com/skyscout/skyscout-cli/internal/models"
	"github.com/skyscout/skyscout-cli/internal/search"
	"github.com/skyscout/skyscout-cli/internal/typeahead"
)

type focusPanel int

const (
	focusOrigin focusPanel = iota
	focusDestination
	focusDate
	focusDeals
	focusResults
)

// focusOrder is the tab cycle
var focusOrder = []focusPanel{focusOrigin, focusDestination, focusDate, focusDeals, focusResults}

// Config wires the TUI to its services
type Config struct {
	Places     gateway.PlaceLookup
	Fares      gateway.FareLookup
	Aggregator *deals.Aggregator
	Catalog    []models.Destination
	Currency   string

	Delay     time.Duration
	MinLength int

	Logger  *zap.Logger
	Metrics *metrics.Metrics
	// Now defaults to time.Now; tests pin it
	Now func() time.Time
}

// Model is the root Bubble Tea model for the TUI.
type Model struct {
	fares      gateway.FareLookup
	aggregator *deals.Aggregator
	catalog    []models.Destination
	currency   string
	log        *zap.Logger
	now        func() time.Time

	width  int
	height int
	focus  focusPanel

	life             *lifecycle
	form             *typeahead.Form
	changed          chan struct{}
	originInput      textinput.Model
	destinationInput textinput.Model
	dateInput        textinput.Model
	originSnap       typeahead.Snapshot
	destinationSnap  typeahead.Snapshot
	suggestionCursor int
	formErr          string

	// Results panel
	searchCh       *gateway.Channel
	searchSeq      int
	request        *search.Request
	itineraries    []models.Itinerary
	resultsLoading bool
	resultsErr     error
	resultsCursor  int

	// Deals panel
	dealsDate    string
	dealsResult  *deals.Result
	dealsLoading bool
	dealsErr     error
	dealsCursor  int
}

// New creates a new TUI model.
func New(cfg Config) Model {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	catalog := cfg.Catalog
	if catalog == nil {
		catalog = models.DefaultCatalog
	}
	aggregator := cfg.Aggregator
	if aggregator == nil && cfg.Fares != nil {
		aggregator = deals.NewAggregator(cfg.Fares, deals.WithLogger(log), deals.WithMetrics(cfg.Metrics))
	}

	changed := make(chan struct{}, 1)
	form := typeahead.NewForm(cfg.Places,
		typeahead.WithDelay(cfg.Delay),
		typeahead.WithMinLength(cfg.MinLength),
		typeahead.WithLogger(log),
		typeahead.WithMetrics(cfg.Metrics),
		typeahead.OnChange(func(typeahead.Snapshot) {
			select {
			case changed <- struct{}{}:
			default:
			}
		}),
	)

	origin := newInput("From (city or airport)")
	origin.Focus()
	destination := newInput("To (city or airport)")
	date := newInput("YYYY-MM-DD")
	date.CharLimit = 10
	date.Width = 12
	date.SetValue(deals.Tomorrow(now()))

	return Model{
		fares:            cfg.Fares,
		aggregator:       aggregator,
		catalog:          catalog,
		currency:         cfg.Currency,
		log:              log,
		now:              now,
		focus:            focusOrigin,
		life:             &lifecycle{stop: make(chan struct{})},
		form:             form,
		changed:          changed,
		originInput:      origin,
		destinationInput: destination,
		dateInput:        date,
		originSnap:       form.Origin.Snapshot(),
		destinationSnap:  form.Destination.Snapshot(),
		searchCh:         gateway.NewChannel(),
		dealsDate:        deals.Tomorrow(now()),
		dealsLoading:     aggregator != nil,
	}
}

func newInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 100
	ti.Width = 32
	return ti
}

// Init starts the cursor blink, the form listener and the deals fan-out.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForFormChange(m.changed, m.life.stop), m.startDeals())
}

// startDeals launches a deals run for the current date, cancelling the previous one
func (m Model) startDeals() tea.Cmd {
	if m.aggregator == nil {
		return nil
	}
	run := m.aggregator.Start(context.Background(), m.catalog, m.dealsDate, nil)
	if !m.life.adopt(run) {
		return nil
	}
	return waitForDeals(run, m.dealsDate)
}

// Close cancels every pending lookup and in-flight request. It is idempotent.
func (m Model) Close() {
	if !m.life.close() {
		return
	}
	m.form.Close()
	m.searchCh.Close()
}

// lifecycle is the state shared by every copy of the model
type lifecycle struct {
	mu       sync.Mutex
	stop     chan struct{}
	dealsRun *deals.Run
	closed   bool
}

// adopt makes run the current deals run and cancels the previous one
func (l *lifecycle) adopt(run *deals.Run) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		run.Cancel()
		return false
	}
	if l.dealsRun != nil {
		l.dealsRun.Cancel()
	}
	l.dealsRun = run
	return true
}

func (l *lifecycle) current(run *deals.Run) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return !l.closed && l.dealsRun == run
}

func (l *lifecycle) close() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false
	}
	l.closed = true
	close(l.stop)
	if l.dealsRun != nil {
		l.dealsRun.Cancel()
	}
	return true
}

// activeSession returns the session behind the focused field, if any
func (m Model) activeSession() (*typeahead.Session, typeahead.Snapshot, bool) {
	switch m.focus {
	case focusOrigin:
		return m.form.Origin, m.originSnap, true
	case focusDestination:
		return m.form.Destination, m.destinationSnap, true
	}
	return nil, typeahead.Snapshot{}, false
}
