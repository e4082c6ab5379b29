package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/actuallystonmai/movie-recommender/internal/domain"
)

type fakeCatalog struct {
	mu          sync.Mutex
	movies      map[int64]domain.Movie
	byGenre     map[int][]domain.Movie
	trending    []domain.Movie
	trendingErr error
	discoverErr error
	detailErr   map[int64]error
	discovers   []domain.DiscoverQuery
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		movies:    map[int64]domain.Movie{},
		byGenre:   map[int][]domain.Movie{},
		detailErr: map[int64]error{},
	}
}

// add registers a movie under each of its genres.
func (c *fakeCatalog) add(m domain.Movie) {
	c.movies[m.ID] = m
	for _, g := range m.GenreIDs {
		c.byGenre[g] = append(c.byGenre[g], m)
	}
}

func (c *fakeCatalog) MovieDetails(ctx context.Context, id int64) (*domain.Movie, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.detailErr[id]; err != nil {
		return nil, err
	}
	m, ok := c.movies[id]
	if !ok {
		return nil, fmt.Errorf("movie %d: %w", id, domain.ErrNotFound)
	}
	return &m, nil
}

func (c *fakeCatalog) Discover(ctx context.Context, q domain.DiscoverQuery) (*domain.MoviePage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.discovers = append(c.discovers, q)
	if c.discoverErr != nil {
		return nil, c.discoverErr
	}
	return &domain.MoviePage{Page: 1, Results: append([]domain.Movie(nil), c.byGenre[q.GenreID]...)}, nil
}

func (c *fakeCatalog) Trending(ctx context.Context) (*domain.MoviePage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.trendingErr != nil {
		return nil, c.trendingErr
	}
	return &domain.MoviePage{Page: 1, Results: append([]domain.Movie(nil), c.trending...)}, nil
}

type fakeStore struct {
	mu        sync.Mutex
	prefs     map[uuid.UUID]domain.PreferenceVector
	favorites map[uuid.UUID][]domain.OwnedMovie
	watchlist map[uuid.UUID][]domain.OwnedMovie
	features  map[int64]domain.MovieFeatures
	cache     map[uuid.UUID][]domain.Candidate

	loadErr    error
	cacheErr   error
	upsertErr  map[int]error
	featureErr error
	upserts    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		prefs:     map[uuid.UUID]domain.PreferenceVector{},
		favorites: map[uuid.UUID][]domain.OwnedMovie{},
		watchlist: map[uuid.UUID][]domain.OwnedMovie{},
		features:  map[int64]domain.MovieFeatures{},
		cache:     map[uuid.UUID][]domain.Candidate{},
		upsertErr: map[int]error{},
	}
}

func (s *fakeStore) favorite(user uuid.UUID, ids ...int64) {
	for _, id := range ids {
		s.favorites[user] = append(s.favorites[user], domain.OwnedMovie{MovieID: id})
	}
}

func (s *fakeStore) GetPreferences(ctx context.Context, userID uuid.UUID) (domain.PreferenceVector, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	out := domain.PreferenceVector{}
	for g, v := range s.prefs[userID] {
		out[g] = v
	}
	return out, nil
}

func (s *fakeStore) GetFavorites(ctx context.Context, userID uuid.UUID) ([]domain.OwnedMovie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.favorites[userID], nil
}

func (s *fakeStore) GetWatchlist(ctx context.Context, userID uuid.UUID) ([]domain.OwnedMovie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watchlist[userID], nil
}

func (s *fakeStore) UpsertPreference(ctx context.Context, userID uuid.UUID, genreID int, delta float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.upsertErr[genreID]; err != nil {
		return err
	}
	if s.prefs[userID] == nil {
		s.prefs[userID] = domain.PreferenceVector{}
	}
	s.prefs[userID][genreID] = domain.ClampScore(s.prefs[userID][genreID] + delta)
	s.upserts++
	return nil
}

func (s *fakeStore) HasMovieFeatures(ctx context.Context, movieID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.features[movieID]
	return ok, nil
}

func (s *fakeStore) InsertMovieFeaturesIfAbsent(ctx context.Context, f domain.MovieFeatures) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.featureErr != nil {
		return false, s.featureErr
	}
	if _, ok := s.features[f.MovieID]; ok {
		return false, nil
	}
	s.features[f.MovieID] = f
	return true, nil
}

func (s *fakeStore) FindMoviesByGenre(ctx context.Context, genreID int, minRating float64, limit int) ([]domain.MovieFeatures, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.MovieFeatures
	for _, f := range s.features {
		if f.VoteAverage < minRating {
			continue
		}
		for _, g := range f.Genres {
			if g == genreID {
				out = append(out, f)
				break
			}
		}
	}
	sortFeatures(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeStore) FindCoFavorites(ctx context.Context, userID uuid.UUID, movieIDs []int64) ([]domain.UserMovie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wanted := map[int64]bool{}
	for _, id := range movieIDs {
		wanted[id] = true
	}
	var out []domain.UserMovie
	for u, favs := range s.favorites {
		if u == userID {
			continue
		}
		for _, f := range favs {
			if wanted[f.MovieID] {
				out = append(out, domain.UserMovie{UserID: u, MovieID: f.MovieID})
			}
		}
	}
	return out, nil
}

func (s *fakeStore) FavoritesByUsers(ctx context.Context, userIDs []uuid.UUID, exclude []int64) ([]domain.UserMovie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	skip := map[int64]bool{}
	for _, id := range exclude {
		skip[id] = true
	}
	var out []domain.UserMovie
	for _, u := range userIDs {
		for _, f := range s.favorites[u] {
			if !skip[f.MovieID] {
				out = append(out, domain.UserMovie{UserID: u, MovieID: f.MovieID})
			}
		}
	}
	return out, nil
}

func (s *fakeStore) ReplaceCachedRecommendations(ctx context.Context, userID uuid.UUID, recs []domain.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cacheErr != nil {
		return s.cacheErr
	}
	s.cache[userID] = append([]domain.Candidate(nil), recs...)
	return nil
}

// sortFeatures orders by popularity desc, then movie id.
func sortFeatures(fs []domain.MovieFeatures) {
	for i := 1; i < len(fs); i++ {
		for j := i; j > 0; j-- {
			a, b := fs[j-1], fs[j]
			if a.PopularityScore > b.PopularityScore || (a.PopularityScore == b.PopularityScore && a.MovieID < b.MovieID) {
				break
			}
			fs[j-1], fs[j] = b, a
		}
	}
}

type failingStore struct {
	*fakeStore
}

func (s failingStore) GetWatchlist(ctx context.Context, userID uuid.UUID) ([]domain.OwnedMovie, error) {
	return nil, errors.New("connection refused")
}
