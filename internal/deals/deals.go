// Package deals estimates the lowest current fare for every destination of a
// catalog by querying the fare service concurrently.
package deals

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/skyscout/skyscout-cli/internal/api"
	"github.com/skyscout/skyscout-cli/internal/gateway"
	"github.com/skyscout/skyscout-cli/internal/metrics"
	"github.com/skyscout/skyscout-cli/internal/models"
)

// ReasonUnavailable is recorded when a lookup succeeded without a usable fare
const ReasonUnavailable = "Price unavailable"

// ErrCancelled is returned when the run was cancelled before every lookup settled
var ErrCancelled = errors.New("aggregation cancelled")

// Result maps every destination code to either its lowest fare or a failure reason
type Result struct {
	Prices map[string]float64 `json:"prices"`
	Errors map[string]string  `json:"errors"`
}

// Len returns the number of destinations covered
func (r Result) Len() int {
	return len(r.Prices) + len(r.Errors)
}

// Price returns the lowest fare for code, if one was found
func (r Result) Price(code string) (float64, bool) {
	v, ok := r.Prices[code]
	return v, ok
}

// Reason returns the failure reason for code, if the lookup failed
func (r Result) Reason(code string) (string, bool) {
	v, ok := r.Errors[code]
	return v, ok
}

// Aggregator fans fare lookups out over a catalog
type Aggregator struct {
	fares       gateway.FareLookup
	log         *zap.Logger
	metrics     *metrics.Metrics
	tracer      trace.Tracer
	concurrency int
}

// Option configures an Aggregator
type Option func(*Aggregator)

// WithLogger sets the logger
func WithLogger(log *zap.Logger) Option {
	return func(a *Aggregator) {
		if log != nil {
			a.log = log
		}
	}
}

// WithMetrics records run outcomes
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Aggregator) {
		a.metrics = m
	}
}

// WithConcurrency bounds the number of lookups in flight; 0 means one per destination
func WithConcurrency(n int) Option {
	return func(a *Aggregator) {
		if n >= 0 {
			a.concurrency = n
		}
	}
}

// NewAggregator creates an aggregator over the given fare lookup
func NewAggregator(fares gateway.FareLookup, opts ...Option) *Aggregator {
	a := &Aggregator{
		fares:  fares,
		log:    zap.NewNop(),
		tracer: otel.Tracer("skyscout/deals"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// outcome is the settled lookup of one destination
type outcome struct {
	code   string
	price  float64
	reason string
	ok     bool
}

// Aggregate queries every distinct destination for the given date and waits
// for all of them. One failing lookup never affects the others. When ctx is
// cancelled first, no result is produced and ErrCancelled is returned.
func (a *Aggregator) Aggregate(ctx context.Context, catalog []models.Destination, date string) (Result, error) {
	ctx, span := a.tracer.Start(ctx, "deals.aggregate", trace.WithAttributes(
		attribute.Int("deals.destinations", len(catalog)),
		attribute.String("deals.date", date),
	))
	defer span.End()

	start := time.Now()
	entries := distinct(catalog)
	outcomes := make([]outcome, len(entries))

	g := new(errgroup.Group)
	if a.concurrency > 0 {
		g.SetLimit(a.concurrency)
	}
	for i, dest := range entries {
		i, dest := i, dest
		g.Go(func() error {
			outcomes[i] = a.lookup(ctx, dest, date)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		a.log.Debug("aggregation cancelled", zap.String("date", date), zap.Error(err))
		a.metrics.ObserveAggregation(metrics.OutcomeCancelled, 0, 0)
		span.SetStatus(otelcodes.Error, "cancelled")
		return Result{}, ErrCancelled
	}

	res := Result{
		Prices: make(map[string]float64, len(entries)),
		Errors: make(map[string]string),
	}
	for _, o := range outcomes {
		if o.ok {
			res.Prices[o.code] = o.price
		} else {
			res.Errors[o.code] = o.reason
		}
	}

	a.log.Info("aggregation finished",
		zap.String("date", date),
		zap.Int("prices", len(res.Prices)),
		zap.Int("errors", len(res.Errors)),
		zap.Duration("took", time.Since(start)))
	a.metrics.ObserveAggregation(metrics.OutcomeSuccess, len(res.Prices), len(res.Errors))
	span.SetAttributes(attribute.Int("deals.prices", len(res.Prices)), attribute.Int("deals.errors", len(res.Errors)))
	span.SetStatus(otelcodes.Ok, "ok")
	return res, nil
}

func (a *Aggregator) lookup(ctx context.Context, dest models.Destination, date string) outcome {
	req := api.FareRequest{
		Origin:      dest.Origin,
		Destination: dest.Code,
		DepartDate:  date,
		OneWay:      true,
	}

	itineraries, err := a.fares.LookupFares(ctx, req)
	if err != nil {
		lerr := &gateway.LookupError{Op: api.KindFares, Key: dest.Origin + "-" + dest.Code, Err: err}
		if ctx.Err() == nil {
			a.log.Warn("fare lookup failed",
				zap.String("origin", dest.Origin),
				zap.String("destination", dest.Code),
				zap.Error(lerr))
		}
		return outcome{code: dest.Code, reason: err.Error()}
	}

	price, ok := models.MinFare(itineraries)
	if !ok {
		a.log.Debug("no usable fare",
			zap.String("origin", dest.Origin),
			zap.String("destination", dest.Code),
			zap.Int("itineraries", len(itineraries)),
			zap.Error(models.ErrNoFares))
		return outcome{code: dest.Code, reason: ReasonUnavailable}
	}
	return outcome{code: dest.Code, price: price, ok: true}
}

// distinct drops catalog entries whose code was already seen
func distinct(catalog []models.Destination) []models.Destination {
	seen := make(map[string]struct{}, len(catalog))
	out := make([]models.Destination, 0, len(catalog))
	for _, d := range catalog {
		if _, ok := seen[d.Code]; ok {
			continue
		}
		seen[d.Code] = struct{}{}
		out = append(out, d)
	}
	return out
}

// Run is a handle on an aggregation started in the background
type Run struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	result Result
	err    error
}

// Start begins an aggregation and calls apply with the result once every
// lookup settled. apply is never called after Cancel.
func (a *Aggregator) Start(ctx context.Context, catalog []models.Destination, date string, apply func(Result)) *Run {
	ctx, cancel := context.WithCancel(ctx)
	r := &Run{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(r.done)
		res, err := a.Aggregate(ctx, catalog, date)

		r.mu.Lock()
		defer r.mu.Unlock()
		if err == nil && ctx.Err() != nil {
			err = ErrCancelled
		}
		r.result, r.err = res, err
		if err == nil && apply != nil {
			apply(res)
		}
	}()
	return r
}

// Cancel stops the run; a result not yet applied is discarded
func (r *Run) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancel()
}

// Wait blocks until the run finished and returns its outcome
func (r *Run) Wait() (Result, error) {
	<-r.done
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result, r.err
}

// Done is closed when the run finished
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Tomorrow returns the ISO date of the calendar day after now, in now's location
func Tomorrow(now time.Time) string {
	y, m, d := now.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, now.Location()).Format(time.DateOnly)
}
