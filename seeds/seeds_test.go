package seeds

import (
	"context"
	"math/rand"
	"testing"

	"github.com/rs/zerolog"

	"github.com/actuallystonmai/movie-recommender/internal/repository/sqlite"
)

func TestSetupPopulatesStore(t *testing.T) {
	store, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	if err := Setup(ctx, store, zerolog.Nop()); err != nil {
		t.Fatalf("setup: %v", err)
	}

	users, err := store.CountUsers(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if users != 20 {
		t.Errorf("expected 20 users, got %d", users)
	}

	favs, err := store.GetFavorites(ctx, DemoUserID(1))
	if err != nil {
		t.Fatalf("favorites: %v", err)
	}
	if len(favs) < 2 {
		t.Errorf("expected at least 2 favorites, got %d", len(favs))
	}

	prefs, err := store.GetPreferences(ctx, DemoUserID(1))
	if err != nil {
		t.Fatalf("preferences: %v", err)
	}
	for g, score := range prefs {
		if score < -1 || score > 1 {
			t.Errorf("genre %d out of range: %f", g, score)
		}
	}

	found, err := store.FindMoviesByGenre(ctx, 37, 0, 10)
	if err != nil {
		t.Fatalf("features: %v", err)
	}
	if len(found) != 2 {
		t.Errorf("expected 2 westerns, got %d", len(found))
	}
}

func TestWeightedChoice(t *testing.T) {
	if got := weightedChoice(rand.New(rand.NewSource(1)), []string{"only"}, []float64{0}); got != "only" {
		t.Errorf("expected fallback to last choice, got %q", got)
	}
}
