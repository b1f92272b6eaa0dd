package pagination

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for pagination chains.
var (
	paginationIterations = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shovels_pagination_iterations",
		Help:    "Number of page fetches per pagination chain",
		Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
	})

	paginationAbortedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shovels_pagination_aborted_total",
		Help: "Pagination chains stopped early by reason",
	}, []string{"reason"})
)

// Validation errors reported before any network call is made.
var (
	// ErrInvalidPage is returned when a negative page number is supplied.
	ErrInvalidPage = errors.New("page must be greater than or equal to 1")

	// ErrInvalidSize is returned when size is outside [1, 100].
	ErrInvalidSize = errors.New("size must be between 1 and 100")
)

// Fetcher fetches a single page. The Shovels client implements this with its
// request executor; tests substitute their own.
type Fetcher interface {
	FetchPage(ctx context.Context, endpoint string, params url.Values) (*PageResponse, error)
}

// Options control a single pagination chain. Zero values mean "not set":
// the server chooses the starting page and page size, and the chain runs
// until the continuation is exhausted.
type Options struct {
	// Page is the starting page number for offset pagination. Must be >= 1
	// when set.
	Page int

	// Size is the requested page size. Must be in [1, 100] when set.
	Size int

	// Cursor is the starting cursor token for cursor pagination.
	Cursor string

	// MaxIterations caps the number of HTTP fetches in this chain.
	MaxIterations int
}

// validate reports caller programming errors before any request is issued.
func (o Options) validate() error {
	if o.Page < 0 {
		return ErrInvalidPage
	}
	if o.Size < 0 || o.Size > 100 {
		return ErrInvalidSize
	}
	return nil
}

// Engine drives pagination chains against a Fetcher.
type Engine struct {
	fetcher Fetcher
	logger  zerolog.Logger
}

// NewEngine creates a pagination engine.
func NewEngine(fetcher Fetcher, logger zerolog.Logger) *Engine {
	return &Engine{
		fetcher: fetcher,
		logger:  logger,
	}
}

// FetchAll fetches every page of endpoint, following whichever continuation
// the responses carry, and returns the accumulated records in arrival order.
//
// A fetch failure mid-chain stops the chain and returns the records collected
// so far together with the error; earlier pages are never discarded. The
// error is nil when the chain completed normally (continuation exhausted,
// single-page response, or MaxIterations reached).
func (e *Engine) FetchAll(ctx context.Context, endpoint string, base url.Values, opts Options) ([]Record, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	params := cloneValues(base)
	if opts.Size > 0 {
		params.Set("size", strconv.Itoa(opts.Size))
	}

	cursor := opts.Cursor
	page := opts.Page

	var items []Record
	iterations := 0
	start := time.Now()

	for {
		iterations++
		if cursor != "" {
			params.Set("cursor", cursor)
		}
		if page > 0 {
			params.Set("page", strconv.Itoa(page))
		}

		e.logger.Debug().
			Str("endpoint", endpoint).
			Int("iteration", iterations).
			Int("page", page).
			Str("cursor", cursor).
			Msg("Fetching page")

		resp, err := e.fetcher.FetchPage(ctx, endpoint, params)
		if err != nil {
			paginationAbortedTotal.WithLabelValues("fetch_error").Inc()
			paginationIterations.Observe(float64(iterations))
			e.logger.Error().
				Err(err).
				Str("endpoint", endpoint).
				Int("iteration", iterations).
				Int("items", len(items)).
				Msg("Page fetch failed - returning partial results")
			return items, err
		}

		items = append(items, resp.Items...)

		if opts.MaxIterations > 0 && iterations >= opts.MaxIterations {
			paginationAbortedTotal.WithLabelValues("max_iterations").Inc()
			break
		}

		cont := resp.Continuation
		if cont.Kind == ContinuationCursor {
			cursor = cont.Cursor
			continue
		}
		if cont.Kind == ContinuationPage {
			page = cont.Page
			continue
		}
		break
	}

	paginationIterations.Observe(float64(iterations))
	e.logger.Info().
		Str("endpoint", endpoint).
		Int("requests", iterations).
		Int("items", len(items)).
		Dur("duration", time.Since(start)).
		Msg("Pagination chain complete")

	return items, nil
}

// cloneValues copies base so pagination state never leaks into the caller's
// parameter map.
func cloneValues(base url.Values) url.Values {
	params := make(url.Values, len(base)+3)
	for key, values := range base {
		params[key] = append([]string(nil), values...)
	}
	return params
}
