package recommend

import (
	"context"
	"math"
	"slices"
	"testing"

	"github.com/google/uuid"

	"github.com/actuallystonmai/movie-recommender/internal/domain"
)

func noWarn(Warning) {}

func TestCollaborativeNeighbourConsensus(t *testing.T) {
	store := newFakeStore()
	a, b := uuid.New(), uuid.New()
	store.favorite(a, 10)
	store.favorite(b, 10, 20)

	cands, err := NewCollaborativeSignal(store).Generate(context.Background(), SignalInput{
		UserID:    a,
		Favorites: store.favorites[a],
		Warn:      noWarn,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(cands) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(cands))
	}
	want := domain.Candidate{MovieID: 20, Score: 0.2, Reason: "Users with similar taste also liked this.", Source: domain.SourceCollaborative}
	if cands[0] != want {
		t.Errorf("expected %+v, got %+v", want, cands[0])
	}
}

func TestCollaborativeWithoutFavorites(t *testing.T) {
	cands, err := NewCollaborativeSignal(newFakeStore()).Generate(context.Background(), SignalInput{UserID: uuid.New(), Warn: noWarn})
	if err != nil || len(cands) != 0 {
		t.Errorf("expected nothing, got %v err=%v", cands, err)
	}
}

func TestTopNeighboursKeepsFive(t *testing.T) {
	var shared []domain.UserMovie
	users := make([]uuid.UUID, 7)
	for i := range users {
		users[i] = uuid.New()
		for j := 0; j <= i; j++ {
			shared = append(shared, domain.UserMovie{UserID: users[i], MovieID: int64(j)})
		}
	}

	top := topNeighbours(shared, 5)
	if len(top) != 5 {
		t.Fatalf("expected 5 neighbours, got %d", len(top))
	}
	if top[0] != users[6] || top[4] != users[2] {
		t.Errorf("neighbours not ranked by shared count: %v", top)
	}
}

func TestContentScoring(t *testing.T) {
	store := newFakeStore()
	store.features[1] = domain.MovieFeatures{MovieID: 1, Genres: []int{28}, VoteAverage: 8, PopularityScore: 50}
	store.features[2] = domain.MovieFeatures{MovieID: 2, Genres: []int{28}, VoteAverage: 4.9, PopularityScore: 90}
	store.features[3] = domain.MovieFeatures{MovieID: 3, Genres: []int{18}, VoteAverage: 9, PopularityScore: 90}

	cands, err := NewContentSignal(store).Generate(context.Background(), SignalInput{
		Preferences: domain.PreferenceVector{28: 0.5, 18: 0.1},
		Warn:        noWarn,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(cands) != 1 {
		t.Fatalf("expected 1 candidate, got %+v", cands)
	}
	if math.Abs(cands[0].Score-0.5*0.8*0.5) > 1e-9 {
		t.Errorf("unexpected score %f", cands[0].Score)
	}
	if cands[0].Reason != "Because you like Action movies." {
		t.Errorf("unexpected reason %q", cands[0].Reason)
	}
}

func TestTrendingScoring(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.trending = []domain.Movie{
		{ID: 1, GenreIDs: []int{28, 12}, Popularity: 500, VoteAverage: 8},
		{ID: 2, Popularity: 1000, VoteAverage: 5},
	}
	sig := NewTrendingSignal(catalog)

	liked, err := sig.Generate(context.Background(), SignalInput{
		Preferences: domain.PreferenceVector{28: 0.3, 12: -0.4},
		Warn:        noWarn,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	// half the genres liked, 12 is negative
	if want := 0.4*0.5 + 0.3*0.5 + 0.3*0.8; math.Abs(liked[0].Score-want) > 1e-9 {
		t.Errorf("expected %f, got %f", want, liked[0].Score)
	}
	if want := 0.3*1.0 + 0.3*0.5; math.Abs(liked[1].Score-want) > 1e-9 {
		t.Errorf("expected %f for genreless movie, got %f", want, liked[1].Score)
	}

	fresh, err := sig.Generate(context.Background(), SignalInput{Warn: noWarn})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if want := 0.4*0.5 + 0.3*0.5 + 0.3*0.8; math.Abs(fresh[0].Score-want) > 1e-9 {
		t.Errorf("new user should get neutral match, got %f", fresh[0].Score)
	}
}

func TestFuseWeightsFirstOccurrence(t *testing.T) {
	fused := Fuse([]domain.Candidate{
		{MovieID: 1, Score: 0.5, Reason: "content", Source: domain.SourceContent},
		{MovieID: 2, Score: 0.5, Reason: "collab", Source: domain.SourceCollaborative},
		{MovieID: 1, Score: 0.2, Reason: "collab", Source: domain.SourceCollaborative},
		{MovieID: 3, Score: 1.0, Reason: "trending", Source: domain.SourceTrending},
		{MovieID: 4, Score: 0.3, Reason: "cast", Source: domain.SourceSimilarCast},
		{MovieID: 5, Score: 0.3, Reason: "director", Source: domain.SourceSimilarDirector},
	})

	got := make([]int64, len(fused))
	for i, c := range fused {
		got[i] = c.MovieID
	}
	if !slices.Equal(got, []int64{1, 2, 3, 4, 5}) {
		t.Errorf("unexpected order %v", got)
	}
	if math.Abs(fused[0].Score-1.6) > 1e-9 || fused[0].Reason != "content" {
		t.Errorf("expected first occurrence to win with 1.6, got %+v", fused[0])
	}
	if math.Abs(fused[2].Score-0.3) > 1e-9 {
		t.Errorf("expected trending to be damped to 0.3, got %f", fused[2].Score)
	}
}

func TestFilterOwnedIsOrderStable(t *testing.T) {
	cands := []domain.Candidate{{MovieID: 5}, {MovieID: 1}, {MovieID: 4}, {MovieID: 2}, {MovieID: 3}}
	owned := map[int64]struct{}{1: {}, 2: {}}

	for i := 0; i < 3; i++ {
		got := FilterOwned(cands, owned, 2)
		if len(got) != 2 || got[0].MovieID != 5 || got[1].MovieID != 4 {
			t.Fatalf("unexpected filter result %+v", got)
		}
	}
}
