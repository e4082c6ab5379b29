package sqlite

import (
	"context"
	"database/sql"

	"github.com/goccy/go-json"

	"github.com/actuallystonmai/movie-recommender/internal/domain"
)

func (s *Store) HasMovieFeatures(ctx context.Context, movieID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM movie_features WHERE movie_id = ?)`, movieID,
	).Scan(&exists)
	if err != nil {
		return false, transient(err, "check features for movie %d", movieID)
	}
	return exists, nil
}

func (s *Store) InsertMovieFeaturesIfAbsent(ctx context.Context, f domain.MovieFeatures) (bool, error) {
	genres, err := json.Marshal(nonNilInts(f.Genres))
	if err != nil {
		return false, err
	}
	cast, err := json.Marshal(nonNilInt64s(f.CastIDs))
	if err != nil {
		return false, err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO movie_features
			(movie_id, genres, cast_ids, director_id, popularity_score, vote_average, release_year, runtime)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (movie_id) DO NOTHING`,
		f.MovieID, string(genres), string(cast), f.DirectorID, f.PopularityScore, f.VoteAverage, f.ReleaseYear, f.Runtime,
	)
	if err != nil {
		return false, transient(err, "insert features for movie %d", f.MovieID)
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

func (s *Store) FindMoviesByGenre(ctx context.Context, genreID int, minRating float64, limit int) ([]domain.MovieFeatures, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT movie_id, genres, cast_ids, director_id, popularity_score, vote_average, release_year, runtime
		FROM movie_features
		WHERE EXISTS (SELECT 1 FROM json_each(movie_features.genres) WHERE json_each.value = ?)
		  AND vote_average >= ?
		ORDER BY popularity_score DESC, movie_id
		LIMIT ?`,
		genreID, minRating, limit,
	)
	if err != nil {
		return nil, transient(err, "query features for genre %d", genreID)
	}
	defer rows.Close()

	var items []domain.MovieFeatures
	for rows.Next() {
		var f domain.MovieFeatures
		var genres, cast string
		var director sql.NullInt64
		if err := rows.Scan(&f.MovieID, &genres, &cast, &director,
			&f.PopularityScore, &f.VoteAverage, &f.ReleaseYear, &f.Runtime); err != nil {
			return nil, transient(err, "scan features")
		}
		if err := json.Unmarshal([]byte(genres), &f.Genres); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(cast), &f.CastIDs); err != nil {
			return nil, err
		}
		if director.Valid {
			id := director.Int64
			f.DirectorID = &id
		}
		items = append(items, f)
	}
	if err := rows.Err(); err != nil {
		return nil, transient(err, "iterate features")
	}
	return items, nil
}

func nonNilInts(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}

func nonNilInt64s(v []int64) []int64 {
	if v == nil {
		return []int64{}
	}
	return v
}
