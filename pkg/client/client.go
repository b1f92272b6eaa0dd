// Package client provides the core Shovels API client: a single-request
// executor with optional Redis caching, the paginated fetch surface, and the
// typed domain methods for permits, contractors, and locations.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/shovels-data/shovels-go/pkg/cache"
	"github.com/shovels-data/shovels-go/pkg/pagination"
)

// Prometheus metrics for Shovels client operations.
var (
	shovelsRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shovels_requests_total",
		Help: "Total Shovels API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	shovelsRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shovels_request_duration_seconds",
		Help:    "Shovels API request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	shovelsErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shovels_errors_total",
		Help: "Total Shovels API errors by class",
	}, []string{"class"})
)

const (
	// DefaultBaseURL is the production Shovels API endpoint.
	DefaultBaseURL = "https://api.shovels.ai/v2"

	// apiKeyHeader carries the API key on every request.
	apiKeyHeader = "X-API-Key"

	// dateFormat is the wire format for date parameters.
	dateFormat = "2006-01-02"

	// defaultWindowDays is the default lookback for permit/metric date
	// windows when the caller supplies none.
	defaultWindowDays = 180

	// maxErrorBodyBytes bounds how much of an error response is kept.
	maxErrorBodyBytes = 2048
)

// Config holds the client configuration.
type Config struct {
	// APIKey is the Shovels API key (REQUIRED). Sent as the X-API-Key header.
	APIKey string

	// BaseURL overrides the API endpoint (default: DefaultBaseURL).
	BaseURL string

	// Timeout is the per-request HTTP timeout (default: 30s).
	Timeout time.Duration

	// Redis enables the optional response cache when set.
	Redis *redis.Client

	// CacheTTL is how long cached page responses live (default: 6h).
	// Only used when Redis is set.
	CacheTTL time.Duration

	// Now supplies the current time for default date windows. Defaults to
	// time.Now; tests inject a fixed clock.
	Now func() time.Time
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:   apiKey,
		BaseURL:  DefaultBaseURL,
		Timeout:  30 * time.Second,
		CacheTTL: 6 * time.Hour,
	}
}

// Client is the Shovels API client. A single Client reuses one underlying
// HTTP connection pool across calls; it carries no per-chain pagination
// state and is safe to reuse for sequential calls.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	cache      *cache.Manager
	engine     *pagination.Engine
	logger     zerolog.Logger
	now        func() time.Time
}

// New creates a new Shovels client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	logger := log.With().Str("component", "shovels-client").Logger()

	c := &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		logger:  logger,
		now:     now,
	}

	if cfg.Redis != nil {
		ttl := cfg.CacheTTL
		if ttl <= 0 {
			ttl = 6 * time.Hour
		}
		c.cache = cache.NewManager(cfg.Redis, ttl)
	}

	c.engine = pagination.NewEngine(c, logger)

	return c, nil
}

// do performs exactly one HTTP GET against endpoint with the given query
// parameters and returns the raw response body. Non-200 statuses, transport
// errors, and cache interactions are all handled here.
func (c *Client) do(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	startTime := time.Now()
	defer func() {
		shovelsRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	key := cache.Key{Endpoint: endpoint, Query: params}
	if c.cache != nil {
		entry, err := c.cache.Get(ctx, key)
		if err == nil {
			c.logger.Debug().
				Str("endpoint", endpoint).
				Dur("age", entry.Age()).
				Msg("Serving response from cache")
			return entry.Data, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Cache get error")
		}
	}

	requestURL := c.baseURL + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request for %s: %w", endpoint, err)
	}
	req.URL.RawQuery = params.Encode()
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		shovelsErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		shovelsRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
		return nil, fmt.Errorf("request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	shovelsRequestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Endpoint:   endpoint,
			Body:       string(body),
			Class:      classifyStatus(resp.StatusCode),
		}
		shovelsErrorsTotal.WithLabelValues(string(apiErr.Class)).Inc()
		c.logger.Error().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("error_class", string(apiErr.Class)).
			Str("body", apiErr.Body).
			Msg("Shovels API request error")
		return nil, apiErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		shovelsErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("Failed to read response body")
		return nil, fmt.Errorf("read %s response: %w", endpoint, err)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, body); err != nil {
			c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Failed to cache response")
		}
	}

	return body, nil
}

// FetchPage fetches and decodes a single page. It implements
// pagination.Fetcher so the engine can drive it through a chain.
func (c *Client) FetchPage(ctx context.Context, endpoint string, params url.Values) (*pagination.PageResponse, error) {
	body, err := c.do(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}

	var page pagination.PageResponse
	if err := json.Unmarshal(body, &page); err != nil {
		shovelsErrorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("Failed to decode page response")
		return nil, fmt.Errorf("decode %s response: %w", endpoint, err)
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Int("items", len(page.Items)).
		Int("size", page.Size).
		Msg("Page fetched")

	return &page, nil
}

// FetchAll runs a full pagination chain against an arbitrary endpoint.
// Domain methods build on this; it is exported for endpoints the typed
// surface does not cover yet.
func (c *Client) FetchAll(ctx context.Context, endpoint string, params url.Values, opts pagination.Options) ([]pagination.Record, error) {
	return c.engine.FetchAll(ctx, endpoint, params, opts)
}

// fanOut runs one pagination chain per identifier and flattens the results.
// One identifier's failure is logged and skipped; partial items from a failed
// chain are kept. The batch never aborts.
func (c *Client) fanOut(operation string, ids []string, chain func(id string) ([]pagination.Record, error)) []pagination.Record {
	c.logger.Info().
		Str("operation", operation).
		Int("identifiers", len(ids)).
		Msg("Starting fan-out")

	var results []pagination.Record
	for i, id := range ids {
		c.logger.Info().
			Str("operation", operation).
			Str("id", id).
			Int("index", i+1).
			Int("total", len(ids)).
			Msg("Fetching identifier")

		items, err := chain(id)
		results = append(results, items...)
		if err != nil {
			c.logger.Error().
				Err(err).
				Str("operation", operation).
				Str("id", id).
				Msg("Identifier fetch failed - continuing with next")
		}
	}

	c.logger.Info().
		Str("operation", operation).
		Int("identifiers", len(ids)).
		Int("items", len(results)).
		Msg("Fan-out complete")

	return results
}

// withDateDefaults clones params and fills the from/to date window with the
// last defaultWindowDays ending today. Computed once per batch, not per
// identifier, from the injected clock.
func (c *Client) withDateDefaults(params url.Values, fromKey, toKey string) url.Values {
	out := cloneValues(params)
	today := c.now()
	if out.Get(fromKey) == "" {
		out.Set(fromKey, today.AddDate(0, 0, -defaultWindowDays).Format(dateFormat))
	}
	if out.Get(toKey) == "" {
		out.Set(toKey, today.Format(dateFormat))
	}
	return out
}

// requireMetricFilters enforces the filters the metrics endpoints demand.
func requireMetricFilters(params url.Values) error {
	if params.Get("property_type") == "" {
		return ErrPropertyTypeRequired
	}
	if params.Get("tag") == "" {
		return ErrTagRequired
	}
	return nil
}

func cloneValues(params url.Values) url.Values {
	out := make(url.Values, len(params)+2)
	for key, values := range params {
		out[key] = append([]string(nil), values...)
	}
	return out
}

// Close releases client resources.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// SetLogger replaces the client logger (for testing).
func (c *Client) SetLogger(logger zerolog.Logger) {
	c.logger = logger
	c.engine = pagination.NewEngine(c, logger)
}
