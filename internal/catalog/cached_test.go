package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/actuallystonmai/movie-recommender/internal/domain"
)

type countingSource struct {
	detailCalls   int
	trendingCalls int
	err           error
}

func (s *countingSource) MovieDetails(ctx context.Context, id int64) (*domain.Movie, error) {
	s.detailCalls++
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Movie{ID: id, Title: "movie"}, nil
}

func (s *countingSource) Discover(ctx context.Context, q domain.DiscoverQuery) (*domain.MoviePage, error) {
	return &domain.MoviePage{}, nil
}

func (s *countingSource) Trending(ctx context.Context) (*domain.MoviePage, error) {
	s.trendingCalls++
	return &domain.MoviePage{Results: []domain.Movie{{ID: 1}}}, nil
}

type mapStore struct {
	movies   map[int64]*domain.Movie
	trending *domain.MoviePage
	failGet  bool
}

func newMapStore() *mapStore {
	return &mapStore{movies: map[int64]*domain.Movie{}}
}

func (s *mapStore) GetMovie(ctx context.Context, id int64) (*domain.Movie, error) {
	if s.failGet {
		return nil, errors.New("redis down")
	}
	return s.movies[id], nil
}

func (s *mapStore) SetMovie(ctx context.Context, m *domain.Movie) error {
	s.movies[m.ID] = m
	return nil
}

func (s *mapStore) GetTrending(ctx context.Context) (*domain.MoviePage, error) {
	if s.failGet {
		return nil, errors.New("redis down")
	}
	return s.trending, nil
}

func (s *mapStore) SetTrending(ctx context.Context, page *domain.MoviePage) error {
	s.trending = page
	return nil
}

func TestCachedMovieDetailsReadThrough(t *testing.T) {
	src := &countingSource{}
	c := NewCached(src, newMapStore(), zerolog.Nop())

	for i := 0; i < 3; i++ {
		if _, err := c.MovieDetails(context.Background(), 42); err != nil {
			t.Fatalf("MovieDetails() error: %v", err)
		}
	}
	if src.detailCalls != 1 {
		t.Errorf("expected 1 upstream call, got %d", src.detailCalls)
	}
}

func TestCachedTrendingReadThrough(t *testing.T) {
	src := &countingSource{}
	c := NewCached(src, newMapStore(), zerolog.Nop())

	c.Trending(context.Background())
	c.Trending(context.Background())
	if src.trendingCalls != 1 {
		t.Errorf("expected 1 upstream call, got %d", src.trendingCalls)
	}
}

func TestCachedBypassesBrokenStore(t *testing.T) {
	src := &countingSource{}
	store := newMapStore()
	store.failGet = true
	c := NewCached(src, store, zerolog.Nop())

	m, err := c.MovieDetails(context.Background(), 7)
	if err != nil {
		t.Fatalf("cache failure must not fail the lookup: %v", err)
	}
	if m.ID != 7 {
		t.Errorf("got movie %d, want 7", m.ID)
	}
}

func TestCachedDoesNotStoreErrors(t *testing.T) {
	src := &countingSource{err: domain.ErrNotFound}
	store := newMapStore()
	c := NewCached(src, store, zerolog.Nop())

	if _, err := c.MovieDetails(context.Background(), 7); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if len(store.movies) != 0 {
		t.Error("failed lookups must not be cached")
	}
}
