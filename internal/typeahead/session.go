// Package typeahead turns keystrokes in a location field into debounced,
// cancellable place lookups and tracks what the user picked.
package typeahead

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/skyscout/skyscout-cli/internal/debounce"
	"github.com/skyscout/skyscout-cli/internal/gateway"
	"github.com/skyscout/skyscout-cli/internal/metrics"
	"github.com/skyscout/skyscout-cli/internal/models"
)

const (
	DefaultDelay     = 500 * time.Millisecond
	DefaultMinLength = 2
)

// ErrNoSuggestion is returned by SelectIndex for an index outside the list
var ErrNoSuggestion = errors.New("no such suggestion")

// State is the lifecycle state of a field
type State int

const (
	Idle State = iota
	Pending
	Loading
	Suggesting
	Selected
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Loading:
		return "loading"
	case Suggesting:
		return "suggesting"
	case Selected:
		return "selected"
	default:
		return "unknown"
	}
}

// Selection is the user-visible text of a field and the code it resolved to
type Selection struct {
	Text     string
	Code     string
	Selected bool
}

// Snapshot is an immutable view of a session
type Snapshot struct {
	Field       string
	State       State
	Selection   Selection
	Suggestions []models.Place
	Err         error
}

// Session is the typeahead state of one input field. It is safe for
// concurrent use; lookups settle on their own goroutines.
type Session struct {
	mu sync.Mutex

	field     string
	lookup    gateway.PlaceLookup
	delay     time.Duration
	minLength int
	ctx       context.Context
	log       *zap.Logger
	metrics   *metrics.Metrics
	onChange  func(Snapshot)
	notifyMu  sync.Mutex

	sched *debounce.Scheduler
	ch    *gateway.Channel

	sel         Selection
	state       State
	suggestions []models.Place
	lastErr     error
	gen         uint64
	closed      bool
}

// Option configures a Session
type Option func(*Session)

// WithDelay sets the quiet period before a lookup is issued
func WithDelay(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.delay = d
		}
	}
}

// WithMinLength sets the minimum trimmed query length that triggers a lookup
func WithMinLength(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.minLength = n
		}
	}
}

// WithContext sets the parent context of every lookup the session issues
func WithContext(ctx context.Context) Option {
	return func(s *Session) {
		if ctx != nil {
			s.ctx = ctx
		}
	}
}

// WithLogger sets the logger for lookup failures
func WithLogger(log *zap.Logger) Option {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMetrics records superseded inputs
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

// OnChange registers fn to receive a snapshot after every state change.
// Calls are serialized and each carries the state current at delivery, so the
// last call always reflects the latest state. fn may run on any goroutine and
// must not call back into the session.
func OnChange(fn func(Snapshot)) Option {
	return func(s *Session) {
		s.onChange = fn
	}
}

// NewSession creates an idle session for the named field
func NewSession(field string, lookup gateway.PlaceLookup, opts ...Option) *Session {
	s := &Session{
		field:     field,
		lookup:    lookup,
		delay:     DefaultDelay,
		minLength: DefaultMinLength,
		ctx:       context.Background(),
		log:       zap.NewNop(),
		sched:     debounce.New(),
		ch:        gateway.NewChannel(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(zap.String("field", field))
	return s
}

// Field returns the field name
func (s *Session) Field() string {
	return s.field
}

// Input records edited text. Any pending timer and in-flight lookup are
// cancelled and the current suggestions dropped. Text shorter than the
// minimum length leaves the field idle; otherwise a lookup is scheduled.
func (s *Session) Input(text string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	s.ch.Cancel()
	s.gen++
	s.sel = Selection{Text: text}
	s.suggestions = nil
	s.lastErr = nil

	term := strings.TrimSpace(text)
	if utf8.RuneCountInString(term) < s.minLength {
		s.sched.Cancel()
		s.state = Idle
	} else {
		s.state = Pending
		gen := s.gen
		if s.sched.Schedule(s.delay, func() { s.fire(gen, term) }) {
			s.metrics.ObserveSuperseded()
		}
	}
	s.mu.Unlock()

	s.notify()
}

// fire runs when the debounce timer for generation gen expires
func (s *Session) fire(gen uint64, term string) {
	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}

	_, ok := gateway.LookupPlaces(s.ch, s.ctx, s.lookup, term, func(tok gateway.Token, out gateway.Outcome[[]models.Place]) {
		s.settle(tok, gen, out)
	})
	if !ok {
		s.mu.Unlock()
		return
	}
	s.state = Loading
	s.mu.Unlock()

	s.notify()
}

func (s *Session) settle(tok gateway.Token, gen uint64, out gateway.Outcome[[]models.Place]) {
	s.mu.Lock()
	if s.closed || gen != s.gen || !s.ch.Valid(tok) {
		s.mu.Unlock()
		return
	}

	if out.Failed() {
		s.log.Warn("place lookup failed",
			zap.String("term", strings.TrimSpace(s.sel.Text)),
			zap.Error(out.Err))
		s.suggestions = nil
		s.lastErr = out.Err
		s.state = Idle
	} else {
		s.suggestions = out.Value
		s.state = Suggesting
	}
	s.mu.Unlock()

	s.notify()
}

// Select commits a candidate: the field shows its label, resolves to its
// code and the suggestion list is cleared.
func (s *Session) Select(place models.Place) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.selectLocked(Selection{Text: place.Label(), Code: place.Code, Selected: true})
	s.mu.Unlock()

	s.notify()
}

// SelectIndex selects the i-th current suggestion
func (s *Session) SelectIndex(i int) (models.Place, error) {
	s.mu.Lock()
	if s.closed || i < 0 || i >= len(s.suggestions) {
		s.mu.Unlock()
		return models.Place{}, ErrNoSuggestion
	}
	place := s.suggestions[i]
	s.selectLocked(Selection{Text: place.Label(), Code: place.Code, Selected: true})
	s.mu.Unlock()

	s.notify()
	return place, nil
}

// Set overwrites the field without a lookup, as if the user had selected it
func (s *Session) Set(sel Selection) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.selectLocked(sel)
	s.mu.Unlock()

	s.notify()
}

func (s *Session) selectLocked(sel Selection) {
	s.sched.Cancel()
	s.ch.Cancel()
	s.gen++
	s.sel = sel
	s.suggestions = nil
	s.lastErr = nil
	if sel.Selected {
		s.state = Selected
	} else {
		s.state = Idle
	}
}

// Reset empties the field
func (s *Session) Reset() {
	s.Set(Selection{})
}

// Close cancels any pending timer and in-flight lookup; the session ignores
// every later call and outcome. Close is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.gen++
	s.sched.Cancel()
	s.ch.Close()
	s.suggestions = nil
}

// Closed reports whether Close has been called
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Snapshot returns the current state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Selection returns the current text and code
func (s *Session) Selection() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel
}

func (s *Session) snapshotLocked() Snapshot {
	var suggestions []models.Place
	if len(s.suggestions) > 0 {
		suggestions = make([]models.Place, len(s.suggestions))
		copy(suggestions, s.suggestions)
	}
	return Snapshot{
		Field:       s.field,
		State:       s.state,
		Selection:   s.sel,
		Suggestions: suggestions,
		Err:         s.lastErr,
	}
}

func (s *Session) notify() {
	if s.onChange == nil {
		return
	}
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	s.onChange(s.Snapshot())
}
