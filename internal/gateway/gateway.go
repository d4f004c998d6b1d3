// Package gateway issues lookups against the remote services with
// cooperative cancellation.
//
// Each logical scope (one input field, one aggregation run) owns a Channel.
// Starting a request on a channel cancels the request already in flight, so
// only the most recently issued request can ever deliver an outcome.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/skyscout/skyscout-cli/internal/api"
	"github.com/skyscout/skyscout-cli/internal/models"
)

// ErrLookupFailed matches every failed (not cancelled) lookup
var ErrLookupFailed = errors.New("lookup failed")

// ErrClosed is returned by Begin on a closed channel
var ErrClosed = errors.New("channel closed")

// PlaceLookup resolves free text to candidate places
type PlaceLookup interface {
	LookupPlaces(ctx context.Context, term string) ([]models.Place, error)
}

// FareLookup returns priced itineraries for a route and day
type FareLookup interface {
	LookupFares(ctx context.Context, req api.FareRequest) ([]models.Itinerary, error)
}

// LookupError is the typed failure outcome of a lookup
type LookupError struct {
	Op  string // "places" or "fares"
	Key string // search term or route
	Err error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s lookup for %q failed: %v", e.Op, e.Key, e.Err)
}

// Unwrap returns the transport error
func (e *LookupError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for LookupError
func (e *LookupError) Is(target error) bool {
	return target == ErrLookupFailed
}

// Token identifies one request issued on a channel
type Token struct {
	seq uint64
	ctx context.Context
}

// Context returns the request context; it is cancelled once the token is superseded
func (t Token) Context() context.Context {
	if t.ctx == nil {
		return context.Background()
	}
	return t.ctx
}

// Seq returns the issue order of the token on its channel
func (t Token) Seq() uint64 {
	return t.seq
}

// Channel is the cancellation scope for a stream of requests
type Channel struct {
	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
	closed bool
}

// NewChannel creates an open channel
func NewChannel() *Channel {
	return &Channel{}
}

// Begin cancels the in-flight request and issues a new token derived from parent
func (c *Channel) Begin(parent context.Context) (Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return Token{}, ErrClosed
	}
	c.cancelLocked()

	ctx, cancel := context.WithCancel(parent)
	c.seq++
	c.cancel = cancel
	return Token{seq: c.seq, ctx: ctx}, nil
}

// Valid reports whether tok is the latest token of an open channel and is still live
func (c *Channel) Valid(tok Token) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed && tok.seq == c.seq && tok.seq != 0 && tok.Context().Err() == nil
}

// Cancel aborts the in-flight request; later outcomes of it are discarded
func (c *Channel) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
	c.seq++
}

// Close cancels everything and refuses new requests. It is idempotent.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
	c.closed = true
}

func (c *Channel) cancelLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Outcome is a settled lookup: exactly one of Value or Err is meaningful
type Outcome[T any] struct {
	Value T
	Err   error
}

// Failed reports whether the lookup failed
func (o Outcome[T]) Failed() bool {
	return o.Err != nil
}

// Run issues fn on the channel and hands its outcome to apply, asynchronously.
// apply is skipped when the request was superseded, cancelled or the channel
// closed; callers holding their own lock should re-check c.Valid(tok) in apply.
// Run reports false when the channel is closed.
func Run[T any](c *Channel, parent context.Context, op, key string, fn func(ctx context.Context) (T, error), apply func(Token, Outcome[T])) (Token, bool) {
	tok, err := c.Begin(parent)
	if err != nil {
		return Token{}, false
	}

	go func() {
		out := settle(tok.Context(), op, key, fn)
		if !c.Valid(tok) {
			return
		}
		apply(tok, out)
	}()
	return tok, true
}

// Do is the synchronous form of Run. It returns the context error when the
// request was superseded or cancelled before it settled.
func Do[T any](c *Channel, parent context.Context, op, key string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	tok, err := c.Begin(parent)
	if err != nil {
		return zero, err
	}

	out := settle(tok.Context(), op, key, fn)
	if !c.Valid(tok) {
		if err := tok.Context().Err(); err != nil {
			return zero, err
		}
		return zero, context.Canceled
	}
	return out.Value, out.Err
}

func settle[T any](ctx context.Context, op, key string, fn func(ctx context.Context) (T, error)) Outcome[T] {
	v, err := fn(ctx)
	if err != nil {
		return Outcome[T]{Err: &LookupError{Op: op, Key: key, Err: err}}
	}
	return Outcome[T]{Value: v}
}

// LookupPlaces issues a place lookup on the channel
func LookupPlaces(c *Channel, parent context.Context, lookup PlaceLookup, term string, apply func(Token, Outcome[[]models.Place])) (Token, bool) {
	return Run(c, parent, api.KindPlaces, term, func(ctx context.Context) ([]models.Place, error) {
		return lookup.LookupPlaces(ctx, term)
	}, apply)
}

// LookupFares issues a fare lookup on the channel
func LookupFares(c *Channel, parent context.Context, lookup FareLookup, req api.FareRequest, apply func(Token, Outcome[[]models.Itinerary])) (Token, bool) {
	return Run(c, parent, api.KindFares, req.Origin+"-"+req.Destination, func(ctx context.Context) ([]models.Itinerary, error) {
		return lookup.LookupFares(ctx, req)
	}, apply)
}
