package recommend

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/actuallystonmai/movie-recommender/internal/domain"
	"github.com/actuallystonmai/movie-recommender/internal/metrics"
)

// UpdateResult reports what a preference update changed.
type UpdateResult struct {
	// GenreIDs are the genres whose score was updated.
	GenreIDs        []int
	FeaturesWritten bool
	Warnings        []Warning
}

// UpdateUserPreferences shifts the user's score for every genre of the movie
// by the action's delta. Favorites also capture the movie's feature record
// the first time it is seen. Failures are reported, never returned.
func (e *Engine) UpdateUserPreferences(ctx context.Context, userID uuid.UUID, movie domain.Movie, action domain.Action) UpdateResult {
	logger := e.logger.With().
		Str("user_id", userID.String()).
		Int64("movie_id", movie.ID).
		Str("action", string(action)).
		Logger()
	w := newWarnings(logger)
	res := e.updatePreferences(ctx, w, userID, movie, action)
	res.Warnings = w.list()
	return res
}

func (e *Engine) updatePreferences(ctx context.Context, w *warnings, userID uuid.UUID, movie domain.Movie, action domain.Action) UpdateResult {
	var res UpdateResult
	if !action.Valid() {
		w.add(Warning{Stage: StageUpdatingPreferences, MovieID: movie.ID, Err: fmt.Errorf("unknown action %q", action)})
		return res
	}

	genres := movie.GenreIDList()
	var details *domain.Movie
	if len(genres) == 0 {
		d, err := e.catalog.MovieDetails(ctx, movie.ID)
		if err != nil {
			w.add(Warning{Stage: StageUpdatingPreferences, MovieID: movie.ID, Err: fmt.Errorf("fetch genres: %w", err)})
			return res
		}
		details = d
		genres = d.GenreIDList()
	}
	if len(genres) == 0 {
		return res
	}

	if action == domain.ActionFavorite {
		res.FeaturesWritten = e.populateFeatures(ctx, w, movie, details)
	}

	delta := action.Delta()
	for _, g := range genres {
		if err := e.store.UpsertPreference(ctx, userID, g, delta); err != nil {
			w.add(Warning{Stage: StageUpdatingPreferences, GenreID: g, MovieID: movie.ID, Err: err})
			continue
		}
		metrics.PreferenceUpdates.WithLabelValues(string(action)).Inc()
		res.GenreIDs = append(res.GenreIDs, g)
	}
	return res
}

// populateFeatures writes the movie's feature record unless one exists.
// Records are never refreshed once written.
func (e *Engine) populateFeatures(ctx context.Context, w *warnings, movie domain.Movie, details *domain.Movie) bool {
	exists, err := e.store.HasMovieFeatures(ctx, movie.ID)
	if err != nil {
		w.add(Warning{Stage: StageUpdatingPreferences, MovieID: movie.ID, Err: fmt.Errorf("check features: %w", err)})
		return false
	}
	if exists {
		return false
	}

	if details == nil {
		details, err = e.catalog.MovieDetails(ctx, movie.ID)
		if err != nil {
			w.add(Warning{Stage: StageUpdatingPreferences, MovieID: movie.ID, Err: fmt.Errorf("fetch details for features: %w", err)})
			return false
		}
	}

	wrote, err := e.store.InsertMovieFeaturesIfAbsent(ctx, domain.NewMovieFeatures(movie, details))
	if err != nil {
		w.add(Warning{Stage: StageUpdatingPreferences, MovieID: movie.ID, Err: fmt.Errorf("insert features: %w", err)})
		return false
	}
	return wrote
}
