package catalog

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/actuallystonmai/movie-recommender/internal/domain"
	"github.com/actuallystonmai/movie-recommender/internal/metrics"
)

// Source is anything that can answer catalog queries.
type Source interface {
	MovieDetails(ctx context.Context, id int64) (*domain.Movie, error)
	Discover(ctx context.Context, q domain.DiscoverQuery) (*domain.MoviePage, error)
	Trending(ctx context.Context) (*domain.MoviePage, error)
}

// Store caches catalog payloads. Get methods return nil, nil on a miss.
type Store interface {
	GetMovie(ctx context.Context, movieID int64) (*domain.Movie, error)
	SetMovie(ctx context.Context, m *domain.Movie) error
	GetTrending(ctx context.Context) (*domain.MoviePage, error)
	SetTrending(ctx context.Context, page *domain.MoviePage) error
}

// Cached is a read-through decorator over a Source. Cache errors are logged
// and bypassed; they never fail a lookup.
type Cached struct {
	next   Source
	store  Store
	logger zerolog.Logger
}

func NewCached(next Source, store Store, logger zerolog.Logger) *Cached {
	return &Cached{
		next:   next,
		store:  store,
		logger: logger.With().Str("component", "catalog_cache").Logger(),
	}
}

func (c *Cached) MovieDetails(ctx context.Context, id int64) (*domain.Movie, error) {
	m, err := c.store.GetMovie(ctx, id)
	if err != nil {
		c.logger.Warn().Err(err).Int64("movie_id", id).Msg("movie cache read failed")
	}
	if m != nil {
		metrics.CacheLookups.WithLabelValues("movie", "hit").Inc()
		return m, nil
	}
	metrics.CacheLookups.WithLabelValues("movie", "miss").Inc()

	m, err = c.next.MovieDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.store.SetMovie(ctx, m); err != nil {
		c.logger.Warn().Err(err).Int64("movie_id", id).Msg("movie cache write failed")
	}
	return m, nil
}

func (c *Cached) Discover(ctx context.Context, q domain.DiscoverQuery) (*domain.MoviePage, error) {
	return c.next.Discover(ctx, q)
}

func (c *Cached) Trending(ctx context.Context) (*domain.MoviePage, error) {
	page, err := c.store.GetTrending(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("trending cache read failed")
	}
	if page != nil {
		metrics.CacheLookups.WithLabelValues("trending", "hit").Inc()
		return page, nil
	}
	metrics.CacheLookups.WithLabelValues("trending", "miss").Inc()

	page, err = c.next.Trending(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.store.SetTrending(ctx, page); err != nil {
		c.logger.Warn().Err(err).Msg("trending cache write failed")
	}
	return page, nil
}
