// Package catalog fetches movie records from TMDB.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/actuallystonmai/movie-recommender/internal/domain"
	"github.com/actuallystonmai/movie-recommender/internal/metrics"
)

const (
	defaultBaseURL = "https://api.themoviedb.org/3"
	maxBodyBytes   = 4 << 20
	breakerName    = "tmdb"
)

// errCallerGone marks a call abandoned by its caller. It says nothing about
// TMDB's health, so the breaker does not count it.
var errCallerGone = errors.New("caller gone")

type Options struct {
	APIKey    string
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second
}

// Client talks to the TMDB v3 API. It never retries: a failed call is
// reported to the caller, which degrades the affected signal.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[[]byte]
	logger  zerolog.Logger
}

func NewClient(opts Options, logger zerolog.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	limit := rate.Inf
	burst := 1
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
		burst = max(1, int(opts.RateLimit/4))
	}

	c := &Client{
		apiKey:  opts.APIKey,
		baseURL: opts.BaseURL,
		http:    &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger.With().Str("component", "catalog").Logger(),
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)
	c.cb = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		// Opens at >= 60% failures once there are at least 10 requests
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		// A missing movie is a valid answer, not an outage
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrNotFound) || errors.Is(err, errCallerGone)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		},
	})
	return c
}

// MovieDetails returns the full record, including credits.
func (c *Client) MovieDetails(ctx context.Context, id int64) (*domain.Movie, error) {
	var m domain.Movie
	endpoint := "/movie/" + strconv.FormatInt(id, 10)
	if err := c.get(ctx, "movie_details", endpoint, url.Values{"append_to_response": {"credits"}}, &m); err != nil {
		return nil, fmt.Errorf("movie details %d: %w", id, err)
	}
	return &m, nil
}

// Discover searches movies by genre with a minimum rating.
func (c *Client) Discover(ctx context.Context, q domain.DiscoverQuery) (*domain.MoviePage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(max(1, q.Page)))
	if q.GenreID != 0 {
		params.Set("with_genres", strconv.Itoa(q.GenreID))
	}
	if q.MinRating > 0 {
		params.Set("vote_average.gte", strconv.FormatFloat(q.MinRating, 'f', 1, 64))
	}
	if q.SortBy != "" {
		params.Set("sort_by", string(q.SortBy))
	}

	var page domain.MoviePage
	if err := c.get(ctx, "discover", "/discover/movie", params, &page); err != nil {
		return nil, fmt.Errorf("discover genre %d: %w", q.GenreID, err)
	}
	return &page, nil
}

// Trending returns this week's trending movies.
func (c *Client) Trending(ctx context.Context) (*domain.MoviePage, error) {
	var page domain.MoviePage
	if err := c.get(ctx, "trending", "/trending/movie/week", nil, &page); err != nil {
		return nil, fmt.Errorf("trending: %w", err)
	}
	return &page, nil
}

func (c *Client) get(ctx context.Context, name, endpoint string, params url.Values, out any) error {
	if c.apiKey == "" {
		metrics.CatalogRequests.WithLabelValues(name, "unconfigured").Inc()
		return fmt.Errorf("tmdb api key: %w", domain.ErrUnconfigured)
	}

	if err := ctx.Err(); err != nil {
		metrics.CatalogRequests.WithLabelValues(name, "cancelled").Inc()
		return fmt.Errorf("%s: %w", name, err)
	}

	start := time.Now()
	body, err := c.cb.Execute(func() ([]byte, error) {
		body, err := c.do(ctx, endpoint, params)
		if err != nil && ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", errCallerGone, err)
		}
		return body, err
	})
	metrics.CatalogRequestDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	if errors.Is(err, errCallerGone) {
		metrics.CatalogRequests.WithLabelValues(name, "cancelled").Inc()
		return err
	}
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CatalogRequests.WithLabelValues(name, "rejected").Inc()
			return fmt.Errorf("%w: %w", domain.ErrTransient, err)
		}
		if errors.Is(err, domain.ErrNotFound) {
			metrics.CatalogRequests.WithLabelValues(name, "not_found").Inc()
		} else {
			metrics.CatalogRequests.WithLabelValues(name, "failure").Inc()
		}
		return err
	}
	metrics.CatalogRequests.WithLabelValues(name, "success").Inc()

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w: %w", domain.ErrTransient, err)
	}

	u, err := url.Parse(c.baseURL + endpoint)
	if err != nil {
		return nil, fmt.Errorf("build url: %w", err)
	}
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("api_key", c.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w: %w", endpoint, domain.ErrTransient, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w: %w", domain.ErrTransient, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", endpoint, domain.ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("%s: status %d: %w", endpoint, resp.StatusCode, domain.ErrTransient)
	}
	return body, nil
}
