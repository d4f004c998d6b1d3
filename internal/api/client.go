package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/skyscout/skyscout-cli/internal/cache"
	"github.com/skyscout/skyscout-cli/internal/metrics"
	"github.com/skyscout/skyscout-cli/internal/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultCacheTTL = 90 * time.Second
	userAgent       = "skyscout-cli (+https://github.com/skyscout/skyscout-cli)"
)

// Lookup kinds, used for logs, spans and metrics
const (
	KindPlaces = "places"
	KindFares  = "fares"
)

// Client talks to the city autocomplete service and the fare service
type Client struct {
	httpClient *http.Client
	placesURL  string
	faresURL   string
	locale     string
	currency   string
	cache      cache.Cache
	log        *zap.Logger
	metrics    *metrics.Metrics
}

// ClientOption configures the Client
type ClientOption func(*Client)

// WithTimeout sets the HTTP client timeout
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithPlacesURL overrides the autocomplete service base URL
func WithPlacesURL(base string) ClientOption {
	return func(c *Client) {
		if strings.TrimSpace(base) != "" {
			c.placesURL = strings.TrimRight(strings.TrimSpace(base), "/")
		}
	}
}

// WithFaresURL overrides the fare service base URL
func WithFaresURL(base string) ClientOption {
	return func(c *Client) {
		if strings.TrimSpace(base) != "" {
			c.faresURL = strings.TrimRight(strings.TrimSpace(base), "/")
		}
	}
}

// WithLocale sets the language of place names
func WithLocale(locale string) ClientOption {
	return func(c *Client) {
		if strings.TrimSpace(locale) != "" {
			c.locale = strings.TrimSpace(locale)
		}
	}
}

// WithCurrency sets the fare currency
func WithCurrency(currency string) ClientOption {
	return func(c *Client) {
		if strings.TrimSpace(currency) != "" {
			c.currency = strings.ToLower(strings.TrimSpace(currency))
		}
	}
}

// WithCache enables caching with the provided cache implementation
func WithCache(cache cache.Cache) ClientOption {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithDefaultCache enables caching with the default file cache
func WithDefaultCache(ttl time.Duration) ClientOption {
	return func(c *Client) {
		if ttl <= 0 {
			ttl = defaultCacheTTL
		}
		fc, err := cache.NewFileCache(cache.DefaultCacheDir(), ttl)
		if err == nil {
			c.cache = fc
		}
	}
}

// WithLogger sets the logger
func WithLogger(log *zap.Logger) ClientOption {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithMetrics records lookup counters and latencies
func WithMetrics(m *metrics.Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a new API client
func NewClient(opts ...ClientOption) (*Client, error) {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		placesURL:  PlacesBaseURL,
		faresURL:   FaresBaseURL,
		locale:     DefaultLocale,
		currency:   DefaultCurrency,
		log:        zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if _, err := url.Parse(c.placesURL); err != nil {
		return nil, fmt.Errorf("invalid places base url: %w", err)
	}
	if _, err := url.Parse(c.faresURL); err != nil {
		return nil, fmt.Errorf("invalid fares base url: %w", err)
	}

	return c, nil
}

// LookupPlaces resolves a free-text term to candidate places
func (c *Client) LookupPlaces(ctx context.Context, term string) ([]models.Place, error) {
	body, err := c.LookupPlacesRaw(ctx, term)
	if err != nil {
		return nil, err
	}

	var resp []models.PlaceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse places response: %w", err)
	}

	places := make([]models.Place, 0, len(resp))
	for _, entry := range resp {
		p := entry.ToPlace()
		if p.Code == "" {
			continue
		}
		places = append(places, *p)
	}

	return places, nil
}

// LookupPlacesRaw resolves a term and returns raw JSON
func (c *Client) LookupPlacesRaw(ctx context.Context, term string) (json.RawMessage, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, fmt.Errorf("%w: empty search term", ErrInvalidRequest)
	}

	params := url.Values{}
	params.Set("term", term)
	params.Set("locale", c.locale)

	reqURL := c.placesURL + EndpointPlaces + "?" + params.Encode()

	return c.doRequest(ctx, KindPlaces, reqURL, nil)
}

// FareRequest contains parameters for a fare lookup
type FareRequest struct {
	Origin      string // Origin location code (required)
	Destination string // Destination location code (required)
	DepartDate  string // ISO-8601 date, YYYY-MM-DD (required)
	OneWay      bool   // One-way trip
}

// LookupFares fetches priced itineraries for one route and day
func (c *Client) LookupFares(ctx context.Context, req FareRequest) ([]models.Itinerary, error) {
	body, err := c.LookupFaresRaw(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := decodeFares(body)
	if err != nil {
		return nil, err
	}

	return resp.Data, nil
}

// LookupFaresRaw fetches fares and returns raw JSON
func (c *Client) LookupFaresRaw(ctx context.Context, req FareRequest) (json.RawMessage, error) {
	origin := strings.ToUpper(strings.TrimSpace(req.Origin))
	destination := strings.ToUpper(strings.TrimSpace(req.Destination))
	if origin == "" || destination == "" {
		return nil, fmt.Errorf("%w: origin and destination are required", ErrInvalidRequest)
	}
	if _, err := time.Parse("2006-01-02", req.DepartDate); err != nil {
		return nil, fmt.Errorf("%w: depart date %q is not YYYY-MM-DD", ErrInvalidRequest, req.DepartDate)
	}

	params := url.Values{}
	params.Set("origin", origin)
	params.Set("destination", destination)
	params.Set("depart_date", req.DepartDate)
	params.Set("one_way", fmt.Sprintf("%t", req.OneWay))
	params.Set("currency", c.currency)

	reqURL := c.faresURL + EndpointFares + "?" + params.Encode()

	return c.doRequest(ctx, KindFares, reqURL, func(body []byte) error {
		_, err := decodeFares(body)
		return err
	})
}

// decodeFares parses a fare envelope and turns failure envelopes into errors
func decodeFares(body []byte) (*models.FaresResponse, error) {
	var resp models.FaresResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse fares response: %w", err)
	}
	if !resp.OK() {
		return nil, &ServiceError{Endpoint: EndpointFares, Reason: resp.Reason()}
	}
	return &resp, nil
}

// doRequest performs an HTTP GET request with optional caching.
// validate, when set, must accept the body before it is cached.
func (c *Client) doRequest(ctx context.Context, kind, reqURL string, validate func([]byte) error) ([]byte, error) {
	ctx, span := otel.Tracer("skyscout/api").Start(ctx, "api."+kind)
	defer span.End()
	span.SetAttributes(attribute.String("lookup.kind", kind), attribute.String("http.url", reqURL))

	log := c.log.With(zap.String("op", "api."+kind), zap.String("url", reqURL))

	// Check cache first
	if c.cache != nil {
		if data, ok := c.cache.Get(ctx, reqURL); ok {
			span.AddEvent("cache.hit")
			c.metrics.ObserveLookup(kind, metrics.OutcomeCached, 0)
			log.Debug("cache hit")
			return data, nil
		}
	}

	start := time.Now()
	body, err := c.get(ctx, reqURL)
	if err == nil && validate != nil {
		err = validate(body)
	}
	if err != nil {
		outcome := metrics.OutcomeFailure
		if ctx.Err() != nil {
			outcome = metrics.OutcomeCancelled
		}
		c.metrics.ObserveLookup(kind, outcome, time.Since(start))
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, outcome)
		log.Debug("lookup failed", zap.Error(err))
		return nil, err
	}
	c.metrics.ObserveLookup(kind, metrics.OutcomeSuccess, time.Since(start))
	span.SetStatus(otelcodes.Ok, "ok")

	// Store in cache
	if c.cache != nil {
		if err := c.cache.Set(ctx, reqURL, body); err != nil {
			log.Warn("cache write failed", zap.Error(err))
		}
	}

	return body, nil
}

func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Check for context errors
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, NewAPIError(resp.StatusCode, resp.Status, extractEndpoint(reqURL))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}

// extractEndpoint extracts the endpoint path from a full URL
func extractEndpoint(fullURL string) string {
	u, err := url.Parse(fullURL)
	if err != nil {
		return fullURL
	}
	return u.Path
}
