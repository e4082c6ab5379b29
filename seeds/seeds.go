// Package seeds loads demo users, lists, preferences and movie features so a
// fresh database produces personalized recommendations straight away.
package seeds

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/actuallystonmai/movie-recommender/internal/domain"
)

type Store interface {
	UpsertPreference(ctx context.Context, userID uuid.UUID, genreID int, delta float64) error
	AddFavorite(ctx context.Context, rec domain.InteractionRecord) error
	AddToWatchlist(ctx context.Context, rec domain.InteractionRecord) error
	InsertMovieFeaturesIfAbsent(ctx context.Context, f domain.MovieFeatures) (bool, error)
}

type seedMovie struct {
	id     int64
	title  string
	year   int
	vote   float64
	genres []int
}

var movies = []seedMovie{
	{27205, "Inception", 2010, 8.4, []int{28, 878, 12}},
	{155, "The Dark Knight", 2008, 8.5, []int{18, 28, 80, 53}},
	{603, "The Matrix", 1999, 8.2, []int{28, 878}},
	{680, "Pulp Fiction", 1994, 8.5, []int{53, 80}},
	{278, "The Shawshank Redemption", 1994, 8.7, []int{18, 80}},
	{238, "The Godfather", 1972, 8.7, []int{18, 80}},
	{13, "Forrest Gump", 1994, 8.5, []int{35, 18, 10749}},
	{550, "Fight Club", 1999, 8.4, []int{18}},
	{157336, "Interstellar", 2014, 8.4, []int{12, 18, 878}},
	{122, "The Lord of the Rings: The Return of the King", 2003, 8.5, []int{12, 14, 28}},
	{120, "The Lord of the Rings: The Fellowship of the Ring", 2001, 8.4, []int{12, 14, 28}},
	{424, "Schindler's List", 1993, 8.6, []int{18, 36, 10752}},
	{769, "GoodFellas", 1990, 8.5, []int{18, 80}},
	{496243, "Parasite", 2019, 8.5, []int{35, 53, 18}},
	{129, "Spirited Away", 2001, 8.5, []int{16, 10751, 14}},
	{8587, "The Lion King", 1994, 8.3, []int{10751, 16, 18}},
	{862, "Toy Story", 1995, 8.0, []int{16, 12, 10751, 35}},
	{76341, "Mad Max: Fury Road", 2015, 7.6, []int{28, 12, 878}},
	{245891, "John Wick", 2014, 7.4, []int{28, 53}},
	{438631, "Dune", 2021, 7.8, []int{878, 12}},
	{329865, "Arrival", 2016, 7.6, []int{18, 878, 9648}},
	{807, "Se7en", 1995, 8.4, []int{80, 9648, 53}},
	{274, "The Silence of the Lambs", 1991, 8.3, []int{80, 18, 53}},
	{694, "The Shining", 1980, 8.2, []int{27, 53}},
	{348, "Alien", 1979, 8.2, []int{27, 878}},
	{419430, "Get Out", 2017, 7.6, []int{9648, 53, 27}},
	{493922, "Hereditary", 2018, 7.3, []int{27, 9648, 53}},
	{120467, "The Grand Budapest Hotel", 2014, 8.0, []int{35, 18}},
	{8363, "Superbad", 2007, 7.2, []int{35}},
	{18785, "The Hangover", 2009, 7.3, []int{35}},
	{313369, "La La Land", 2016, 7.9, []int{35, 18, 10749, 10402}},
	{597, "Titanic", 1997, 7.9, []int{18, 10749}},
	{11, "Star Wars", 1977, 8.2, []int{12, 28, 878}},
	{105, "Back to the Future", 1985, 8.3, []int{12, 35, 878}},
	{85, "Raiders of the Lost Ark", 1981, 7.9, []int{12, 28}},
	{857, "Saving Private Ryan", 1998, 8.2, []int{18, 36, 10752}},
	{530915, "1917", 2019, 8.0, []int{10752, 18, 28}},
	{429, "The Good, the Bad and the Ugly", 1966, 8.5, []int{37}},
	{68718, "Django Unchained", 2012, 8.2, []int{18, 37}},
}

// taste genres a demo user leans towards, with their share of users
var (
	tasteGenres  = []int{28, 18, 35, 878, 27, 80}
	tasteWeights = []float64{0.25, 0.2, 0.15, 0.15, 0.1, 0.15}
)

// DemoUserID is stable across runs so demo links keep working.
func DemoUserID(i int) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("movie-recommender/demo-user/%d", i)))
}

func Setup(ctx context.Context, store Store, logger zerolog.Logger) error {
	rng := rand.New(rand.NewSource(42))

	logger.Info().Int("movies", len(movies)).Msg("inserting movie features")
	catalog, err := seedFeatures(ctx, store, rng)
	if err != nil {
		return fmt.Errorf("seed features: %w", err)
	}

	logger.Info().Int("users", 20).Msg("inserting demo users")
	if err := seedUsers(ctx, store, rng, catalog, 20); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}

	logger.Info().Msg("seeding complete")
	return nil
}

func seedFeatures(ctx context.Context, store Store, rng *rand.Rand) ([]domain.Movie, error) {
	catalog := make([]domain.Movie, 0, len(movies))
	for _, sm := range movies {
		m := domain.Movie{
			ID:          sm.id,
			Title:       sm.title,
			ReleaseDate: fmt.Sprintf("%d-01-01", sm.year),
			VoteAverage: sm.vote,
			Popularity:  powerLawScore(rng) * 200,
			GenreIDs:    sm.genres,
		}
		if _, err := store.InsertMovieFeaturesIfAbsent(ctx, domain.NewMovieFeatures(m, nil)); err != nil {
			return nil, fmt.Errorf("movie %d: %w", m.ID, err)
		}
		catalog = append(catalog, m)
	}
	return catalog, nil
}

func seedUsers(ctx context.Context, store Store, rng *rand.Rand, catalog []domain.Movie, n int) error {
	for i := range n {
		userID := DemoUserID(i + 1)
		taste := weightedChoice(rng, tasteGenres, tasteWeights)
		picked := make(map[int64]bool)

		for range 2 + rng.Intn(4) {
			m := pickMovie(rng, catalog, taste, picked)
			if err := addInteraction(ctx, store, userID, m, domain.ActionFavorite); err != nil {
				return err
			}
		}
		for range 1 + rng.Intn(3) {
			m := pickMovie(rng, catalog, taste, picked)
			if err := addInteraction(ctx, store, userID, m, domain.ActionWatchlist); err != nil {
				return err
			}
		}
	}
	return nil
}

// addInteraction records the list entry and applies the action's delta the
// same way a live interaction would.
func addInteraction(ctx context.Context, store Store, userID uuid.UUID, m domain.Movie, action domain.Action) error {
	rec := domain.NewInteractionRecord(userID, m)
	rec.AddedAt = time.Now()

	var err error
	if action == domain.ActionFavorite {
		err = store.AddFavorite(ctx, rec)
	} else {
		err = store.AddToWatchlist(ctx, rec)
	}
	if errors.Is(err, domain.ErrAlreadyExists) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s movie %d for %s: %w", action, m.ID, userID, err)
	}

	for _, g := range m.GenreIDs {
		if err := store.UpsertPreference(ctx, userID, g, action.Delta()); err != nil {
			return fmt.Errorf("preference genre %d for %s: %w", g, userID, err)
		}
	}
	return nil
}

// pickMovie favours the taste genre 70% of the time and never repeats.
func pickMovie(rng *rand.Rand, catalog []domain.Movie, taste int, picked map[int64]bool) domain.Movie {
	var pool []domain.Movie
	if rng.Float64() < 0.7 {
		for _, m := range catalog {
			if !picked[m.ID] && hasGenre(m, taste) {
				pool = append(pool, m)
			}
		}
	}
	if len(pool) == 0 {
		for _, m := range catalog {
			if !picked[m.ID] {
				pool = append(pool, m)
			}
		}
	}
	m := pool[rng.Intn(len(pool))]
	picked[m.ID] = true
	return m
}

func hasGenre(m domain.Movie, genre int) bool {
	for _, g := range m.GenreIDs {
		if g == genre {
			return true
		}
	}
	return false
}

func powerLawScore(rng *rand.Rand) float64 {
	u := rng.Float64()
	if u == 0 {
		u = 0.001
	}
	raw := math.Pow(u, 2.0)
	if raw < 0.01 {
		raw = 0.01
	}
	return math.Round(raw*100) / 100
}

func weightedChoice[T any](rng *rand.Rand, choices []T, weights []float64) T {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := rng.Float64() * total
	cumulative := 0.0
	for i, w := range weights {
		cumulative += w
		if r <= cumulative {
			return choices[i]
		}
	}
	return choices[len(choices)-1]
}
