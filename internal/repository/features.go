package repository

import (
	"context"

	"github.com/actuallystonmai/movie-recommender/internal/domain"
)

func (r *Repository) HasMovieFeatures(ctx context.Context, movieID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM movie_features WHERE movie_id = $1)`, movieID,
	).Scan(&exists)
	if err != nil {
		return false, transient(err, "check features for movie %d", movieID)
	}
	return exists, nil
}

// Insert the feature record unless one exists; reports whether a row was written
func (r *Repository) InsertMovieFeaturesIfAbsent(ctx context.Context, f domain.MovieFeatures) (bool, error) {
	genres := make([]int32, len(f.Genres))
	for i, g := range f.Genres {
		genres[i] = int32(g)
	}

	tag, err := r.pool.Exec(ctx,
		`INSERT INTO movie_features
			(movie_id, genres, cast_ids, director_id, popularity_score, vote_average, release_year, runtime)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (movie_id) DO NOTHING`,
		f.MovieID, genres, nonNil(f.CastIDs), f.DirectorID, f.PopularityScore, f.VoteAverage, f.ReleaseYear, f.Runtime,
	)
	if err != nil {
		return false, transient(err, "insert features for movie %d", f.MovieID)
	}
	return tag.RowsAffected() == 1, nil
}

// Feature records tagged with the genre, most popular first
func (r *Repository) FindMoviesByGenre(ctx context.Context, genreID int, minRating float64, limit int) ([]domain.MovieFeatures, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT movie_id, genres, cast_ids, director_id, popularity_score, vote_average, release_year, runtime
		FROM movie_features
		WHERE genres @> ARRAY[$1::int] AND vote_average >= $2
		ORDER BY popularity_score DESC, movie_id
		LIMIT $3`,
		genreID, minRating, limit,
	)
	if err != nil {
		return nil, transient(err, "query features for genre %d", genreID)
	}
	defer rows.Close()

	var items []domain.MovieFeatures
	for rows.Next() {
		var f domain.MovieFeatures
		var genres []int32
		if err := rows.Scan(&f.MovieID, &genres, &f.CastIDs, &f.DirectorID,
			&f.PopularityScore, &f.VoteAverage, &f.ReleaseYear, &f.Runtime); err != nil {
			return nil, transient(err, "scan features")
		}
		f.Genres = make([]int, len(genres))
		for i, g := range genres {
			f.Genres[i] = int(g)
		}
		items = append(items, f)
	}
	if err := rows.Err(); err != nil {
		return nil, transient(err, "iterate features")
	}
	return items, nil
}
