package sqlite

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/actuallystonmai/movie-recommender/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUpsertPreferenceClamps(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := uuid.New()

	for i := 0; i < 10; i++ {
		if err := s.UpsertPreference(ctx, user, 28, 0.3); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	for i := 0; i < 10; i++ {
		if err := s.UpsertPreference(ctx, user, 18, -0.2); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	prefs, err := s.GetPreferences(ctx, user)
	if err != nil {
		t.Fatalf("get preferences: %v", err)
	}
	if prefs[28] != 1.0 {
		t.Errorf("expected action=1.0, got %f", prefs[28])
	}
	if prefs[18] != -1.0 {
		t.Errorf("expected drama=-1.0, got %f", prefs[18])
	}
}

func TestUpsertPreferenceAccumulates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := uuid.New()

	for _, d := range []float64{0.3, 0.1, -0.2} {
		if err := s.UpsertPreference(ctx, user, 35, d); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	prefs, err := s.GetPreferences(ctx, user)
	if err != nil {
		t.Fatalf("get preferences: %v", err)
	}
	if math.Abs(prefs[35]-0.2) > 1e-9 {
		t.Errorf("expected comedy=0.2, got %f", prefs[35])
	}

	other, err := s.GetPreferences(ctx, uuid.New())
	if err != nil {
		t.Fatalf("get preferences: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("expected empty vector for unknown user, got %v", other)
	}
}

func TestInsertMovieFeaturesIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	director := int64(525)
	first := domain.MovieFeatures{MovieID: 27205, Genres: []int{28, 878}, CastIDs: []int64{6193}, DirectorID: &director, VoteAverage: 8.4, PopularityScore: 90, ReleaseYear: 2010}
	wrote, err := s.InsertMovieFeaturesIfAbsent(ctx, first)
	if err != nil || !wrote {
		t.Fatalf("first insert: wrote=%v err=%v", wrote, err)
	}

	second := first
	second.VoteAverage = 1.0
	wrote, err = s.InsertMovieFeaturesIfAbsent(ctx, second)
	if err != nil {
		t.Fatalf("second insert: %v", err)
	}
	if wrote {
		t.Error("second insert should not write")
	}

	got, err := s.FindMoviesByGenre(ctx, 878, 0, 10)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if got[0].VoteAverage != 8.4 {
		t.Errorf("record was overwritten: vote=%f", got[0].VoteAverage)
	}
	if got[0].DirectorID == nil || *got[0].DirectorID != director {
		t.Errorf("expected director %d, got %v", director, got[0].DirectorID)
	}
}

func TestFindMoviesByGenreFiltersAndOrders(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	records := []domain.MovieFeatures{
		{MovieID: 1, Genres: []int{28}, VoteAverage: 7.0, PopularityScore: 10},
		{MovieID: 2, Genres: []int{28, 12}, VoteAverage: 6.0, PopularityScore: 50},
		{MovieID: 3, Genres: []int{28}, VoteAverage: 4.0, PopularityScore: 99},
		{MovieID: 4, Genres: []int{18}, VoteAverage: 9.0, PopularityScore: 80},
		{MovieID: 5, Genres: []int{280}, VoteAverage: 9.0, PopularityScore: 70},
	}
	for _, r := range records {
		if _, err := s.InsertMovieFeaturesIfAbsent(ctx, r); err != nil {
			t.Fatalf("insert %d: %v", r.MovieID, err)
		}
	}

	got, err := s.FindMoviesByGenre(ctx, 28, 5.0, 15)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0].MovieID != 2 || got[1].MovieID != 1 {
		t.Errorf("expected order [2 1], got [%d %d]", got[0].MovieID, got[1].MovieID)
	}

	limited, err := s.FindMoviesByGenre(ctx, 28, 0, 1)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(limited) != 1 || limited[0].MovieID != 3 {
		t.Errorf("expected only movie 3, got %+v", limited)
	}
}

func TestFavoritesLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := uuid.New()

	rec := domain.NewInteractionRecord(user, domain.Movie{ID: 603, Title: "The Matrix"})
	if err := s.AddFavorite(ctx, rec); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.AddFavorite(ctx, rec); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}

	favs, err := s.GetFavorites(ctx, user)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(favs) != 1 || favs[0].MovieID != 603 || favs[0].Title != "The Matrix" {
		t.Errorf("unexpected favorites: %+v", favs)
	}

	if err := s.RemoveFavorite(ctx, user, 603); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.RemoveFavorite(ctx, user, 603); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestWatchlistIsSeparateFromFavorites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := uuid.New()

	if err := s.AddToWatchlist(ctx, domain.NewInteractionRecord(user, domain.Movie{ID: 550})); err != nil {
		t.Fatalf("add watchlist: %v", err)
	}
	if err := s.AddFavorite(ctx, domain.NewInteractionRecord(user, domain.Movie{ID: 550})); err != nil {
		t.Fatalf("add favorite with same movie: %v", err)
	}

	wl, err := s.GetWatchlist(ctx, user)
	if err != nil {
		t.Fatalf("get watchlist: %v", err)
	}
	if len(wl) != 1 {
		t.Errorf("expected 1 watchlist item, got %d", len(wl))
	}
	if err := s.RemoveFromWatchlist(ctx, user, 550); err != nil {
		t.Fatalf("remove watchlist: %v", err)
	}
	favs, _ := s.GetFavorites(ctx, user)
	if len(favs) != 1 {
		t.Errorf("favorite should survive watchlist removal, got %d", len(favs))
	}
}

func TestCoFavorites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	add := func(u uuid.UUID, id int64) {
		t.Helper()
		if err := s.AddFavorite(ctx, domain.NewInteractionRecord(u, domain.Movie{ID: id})); err != nil {
			t.Fatalf("add favorite: %v", err)
		}
	}
	add(a, 1)
	add(a, 2)
	add(b, 1)
	add(b, 3)
	add(c, 4)

	co, err := s.FindCoFavorites(ctx, a, []int64{1, 2})
	if err != nil {
		t.Fatalf("co-favorites: %v", err)
	}
	if len(co) != 1 || co[0].UserID != b || co[0].MovieID != 1 {
		t.Errorf("unexpected co-favorites: %+v", co)
	}

	none, err := s.FindCoFavorites(ctx, a, nil)
	if err != nil || len(none) != 0 {
		t.Errorf("expected no rows for empty movie list, got %+v err=%v", none, err)
	}

	theirs, err := s.FavoritesByUsers(ctx, []uuid.UUID{b}, []int64{1, 2})
	if err != nil {
		t.Fatalf("favorites by users: %v", err)
	}
	if len(theirs) != 1 || theirs[0].MovieID != 3 {
		t.Errorf("expected only movie 3, got %+v", theirs)
	}

	all, err := s.FavoritesByUsers(ctx, []uuid.UUID{b, c}, nil)
	if err != nil {
		t.Fatalf("favorites by users: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 rows without exclusions, got %d", len(all))
	}
}

func TestReplaceCachedRecommendations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := uuid.New()

	first := []domain.Candidate{
		{MovieID: 1, Score: 0.9, Reason: "Trending now.", Source: domain.SourceTrending},
		{MovieID: 2, Score: 0.5, Reason: "Because you like Action movies.", Source: domain.SourceContent},
	}
	if err := s.ReplaceCachedRecommendations(ctx, user, first); err != nil {
		t.Fatalf("replace: %v", err)
	}

	second := []domain.Candidate{
		{MovieID: 7, Score: 0.4, Reason: "Additional genre-based recommendation.", Source: domain.SourceContent},
	}
	if err := s.ReplaceCachedRecommendations(ctx, user, second); err != nil {
		t.Fatalf("replace: %v", err)
	}

	got, err := s.GetCachedRecommendations(ctx, user)
	if err != nil {
		t.Fatalf("get cached: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected cache to be replaced, got %d rows", len(got))
	}
	if got[0].Candidate() != second[0] {
		t.Errorf("round trip mismatch: %+v", got[0].Candidate())
	}
	if got[0].CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}

	if err := s.ClearCachedRecommendations(ctx, user); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got, _ = s.GetCachedRecommendations(ctx, user)
	if len(got) != 0 {
		t.Errorf("expected empty cache after clear, got %d", len(got))
	}
}

func TestUserPagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	users := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	s.UpsertPreference(ctx, users[0], 28, 0.3)
	s.AddFavorite(ctx, domain.NewInteractionRecord(users[0], domain.Movie{ID: 1}))
	s.AddFavorite(ctx, domain.NewInteractionRecord(users[1], domain.Movie{ID: 1}))
	s.AddToWatchlist(ctx, domain.NewInteractionRecord(users[2], domain.Movie{ID: 2}))

	total, err := s.CountUsers(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if total != 3 {
		t.Errorf("expected 3 users, got %d", total)
	}

	page1, err := s.GetUserIDsPaginated(ctx, 1, 2)
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	page2, err := s.GetUserIDsPaginated(ctx, 2, 2)
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if len(page1) != 2 || len(page2) != 1 {
		t.Errorf("expected pages of 2 and 1, got %d and %d", len(page1), len(page2))
	}
}
