package deals

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/skyscout/skyscout-cli/internal/api"
	"github.com/skyscout/skyscout-cli/internal/metrics"
	"github.com/skyscout/skyscout-cli/internal/models"
	"github.com/skyscout/skyscout-cli/internal/testutil"
)

// fakeFares answers per destination code
type fakeFares struct {
	mu      sync.Mutex
	answers map[string][]models.Itinerary
	errs    map[string]error
	block   chan struct{}

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	calls       atomic.Int32
}

func (f *fakeFares) LookupFares(ctx context.Context, req api.FareRequest) ([]models.Itinerary, error) {
	f.calls.Add(1)
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		peak := f.maxInFlight.Load()
		if n <= peak || f.maxInFlight.CompareAndSwap(peak, n) {
			break
		}
	}

	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[req.Destination]; err != nil {
		return nil, err
	}
	return f.answers[req.Destination], nil
}

func itinerary(fields map[string]string) models.Itinerary {
	it := models.Itinerary{}
	for k, v := range fields {
		it[k] = json.RawMessage(v)
	}
	return it
}

func catalog(codes ...string) []models.Destination {
	out := make([]models.Destination, len(codes))
	for i, code := range codes {
		out[i] = models.Destination{Code: code, Origin: models.DefaultOrigin, Label: code}
	}
	return out
}

func TestAggregate_PricesAndErrors(t *testing.T) {
	fares := &fakeFares{
		answers: map[string][]models.Itinerary{
			"TRV": {
				itinerary(map[string]string{"price": "5000"}),
				itinerary(map[string]string{"value": "4200"}),
			},
		},
		errs: map[string]error{"BOM": errors.New("HTTP 502")},
	}
	a := NewAggregator(fares)

	res, err := a.Aggregate(context.Background(), catalog("TRV", "BOM"), "2026-10-18")
	testutil.AssertNil(t, err)

	testutil.AssertEqual(t, len(res.Prices), 1)
	testutil.AssertEqual(t, len(res.Errors), 1)
	price, ok := res.Price("TRV")
	testutil.AssertTrue(t, ok)
	testutil.AssertEqual(t, price, 4200.0)

	reason, ok := res.Reason("BOM")
	testutil.AssertTrue(t, ok)
	testutil.AssertEqual(t, reason, "HTTP 502")
}

func TestAggregate_EveryCodeExactlyOnce(t *testing.T) {
	fares := &fakeFares{
		answers: map[string][]models.Itinerary{
			"TRV": {itinerary(map[string]string{"price": "4200"})},
			"PNQ": {itinerary(map[string]string{"price": `"3100.50"`})},
			"CCU": {itinerary(map[string]string{"airline": `"6E"`})},
			"MAA": {},
		},
		errs: map[string]error{
			"BOM": errors.New("HTTP 502"),
			"IXL": &api.ServiceError{Endpoint: "/api/flights/search", Reason: "Failed to fetch flight data"},
		},
	}
	a := NewAggregator(fares)

	res, err := a.Aggregate(context.Background(), models.DefaultCatalog, "2026-10-18")
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, res.Len(), len(models.DefaultCatalog))

	for _, d := range models.DefaultCatalog {
		_, priced := res.Prices[d.Code]
		_, failed := res.Errors[d.Code]
		if priced == failed {
			t.Errorf("%s: priced=%v failed=%v, want exactly one", d.Code, priced, failed)
		}
	}

	testutil.AssertEqual(t, res.Prices["PNQ"], 3100.5)
	testutil.AssertEqual(t, res.Errors["IXL"], "Failed to fetch flight data")
	testutil.AssertEqual(t, res.Errors["CCU"], ReasonUnavailable)
	testutil.AssertEqual(t, res.Errors["MAA"], ReasonUnavailable)
	testutil.AssertEqual(t, res.Errors["AMD"], ReasonUnavailable)
}

func TestAggregate_EmptyCatalog(t *testing.T) {
	a := NewAggregator(&fakeFares{})

	res, err := a.Aggregate(context.Background(), nil, "2026-10-18")
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, res.Len(), 0)
}

func TestAggregate_DuplicateCodesCollapse(t *testing.T) {
	fares := &fakeFares{answers: map[string][]models.Itinerary{
		"TRV": {itinerary(map[string]string{"price": "4200"})},
	}}
	a := NewAggregator(fares)

	res, err := a.Aggregate(context.Background(), catalog("TRV", "TRV"), "2026-10-18")
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, res.Len(), 1)
	testutil.AssertEqual(t, fares.calls.Load(), int32(1))
}

func TestAggregate_Concurrent(t *testing.T) {
	fares := &fakeFares{block: make(chan struct{})}
	a := NewAggregator(fares)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = a.Aggregate(context.Background(), catalog("TRV", "BOM", "PNQ", "IXL"), "2026-10-18")
	}()

	testutil.Eventually(t, time.Second, func() bool { return fares.inFlight.Load() == 4 })
	close(fares.block)
	<-done
}

func TestAggregate_ConcurrencyLimit(t *testing.T) {
	fares := &fakeFares{}
	a := NewAggregator(fares, WithConcurrency(2))

	res, err := a.Aggregate(context.Background(), models.DefaultCatalog, "2026-10-18")
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, res.Len(), len(models.DefaultCatalog))
	testutil.AssertTrue(t, fares.maxInFlight.Load() <= 2)
}

func TestAggregate_Cancelled(t *testing.T) {
	fares := &fakeFares{block: make(chan struct{})}
	a := NewAggregator(fares)
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		_, err := a.Aggregate(ctx, catalog("TRV", "BOM"), "2026-10-18")
		errCh <- err
	}()

	testutil.Eventually(t, time.Second, func() bool { return fares.inFlight.Load() == 2 })
	cancel()

	select {
	case err := <-errCh:
		testutil.AssertErrorIs(t, err, ErrCancelled)
	case <-time.After(time.Second):
		t.Fatal("Aggregate did not return after cancellation")
	}
}

func TestAggregate_Metrics(t *testing.T) {
	m := metrics.NewMetrics("skyscout")
	fares := &fakeFares{
		answers: map[string][]models.Itinerary{"TRV": {itinerary(map[string]string{"price": "4200"})}},
		errs:    map[string]error{"BOM": errors.New("HTTP 502")},
	}
	a := NewAggregator(fares, WithMetrics(m))

	_, err := a.Aggregate(context.Background(), catalog("TRV", "BOM"), "2026-10-18")
	testutil.AssertNil(t, err)

	testutil.AssertEqual(t, promtest.ToFloat64(m.Aggregations.WithLabelValues(metrics.OutcomeSuccess)), 1.0)
	testutil.AssertEqual(t, promtest.ToFloat64(m.AggregationItems.WithLabelValues(metrics.OutcomeSuccess)), 1.0)
	testutil.AssertEqual(t, promtest.ToFloat64(m.AggregationItems.WithLabelValues(metrics.OutcomeFailure)), 1.0)
}

func TestStart_AppliesResult(t *testing.T) {
	fares := &fakeFares{answers: map[string][]models.Itinerary{
		"TRV": {itinerary(map[string]string{"price": "4200"})},
	}}
	a := NewAggregator(fares)

	applied := make(chan Result, 1)
	run := a.Start(context.Background(), catalog("TRV"), "2026-10-18", func(res Result) { applied <- res })

	res, err := run.Wait()
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, res.Prices["TRV"], 4200.0)

	select {
	case got := <-applied:
		testutil.AssertEqual(t, got.Prices["TRV"], 4200.0)
	default:
		t.Fatal("apply was not called before Wait returned")
	}
}

func TestStart_CancelSkipsApply(t *testing.T) {
	fares := &fakeFares{block: make(chan struct{})}
	a := NewAggregator(fares)

	var applied atomic.Bool
	run := a.Start(context.Background(), catalog("TRV", "BOM"), "2026-10-18", func(Result) { applied.Store(true) })

	testutil.Eventually(t, time.Second, func() bool { return fares.inFlight.Load() == 2 })
	run.Cancel()
	close(fares.block)

	_, err := run.Wait()
	testutil.AssertErrorIs(t, err, ErrCancelled)
	testutil.AssertFalse(t, applied.Load())

	select {
	case <-run.Done():
	default:
		t.Fatal("Done not closed after Wait")
	}
}

func TestTomorrow(t *testing.T) {
	kolkata := time.FixedZone("IST", 5*3600+1800)
	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{"mid month", time.Date(2026, 10, 17, 15, 0, 0, 0, time.UTC), "2026-10-18"},
		{"month end", time.Date(2026, 10, 31, 23, 59, 0, 0, time.UTC), "2026-11-01"},
		{"year end", time.Date(2026, 12, 31, 8, 0, 0, 0, time.UTC), "2027-01-01"},
		{"leap day", time.Date(2028, 2, 28, 8, 0, 0, 0, time.UTC), "2028-02-29"},
		{"local zone", time.Date(2026, 10, 17, 0, 30, 0, 0, kolkata), "2026-10-18"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertEqual(t, Tomorrow(tt.now), tt.want)
		})
	}
}
