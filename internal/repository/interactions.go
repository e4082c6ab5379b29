package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/actuallystonmai/movie-recommender/internal/domain"
)

type list string

const (
	favorites list = "favorites"
	watchlist list = "watchlist"
)

func (r *Repository) GetFavorites(ctx context.Context, userID uuid.UUID) ([]domain.OwnedMovie, error) {
	return r.getList(ctx, favorites, userID)
}

func (r *Repository) GetWatchlist(ctx context.Context, userID uuid.UUID) ([]domain.OwnedMovie, error) {
	return r.getList(ctx, watchlist, userID)
}

func (r *Repository) AddFavorite(ctx context.Context, rec domain.InteractionRecord) error {
	return r.addToList(ctx, favorites, rec)
}

func (r *Repository) RemoveFavorite(ctx context.Context, userID uuid.UUID, movieID int64) error {
	return r.removeFromList(ctx, favorites, userID, movieID)
}

func (r *Repository) AddToWatchlist(ctx context.Context, rec domain.InteractionRecord) error {
	return r.addToList(ctx, watchlist, rec)
}

func (r *Repository) RemoveFromWatchlist(ctx context.Context, userID uuid.UUID, movieID int64) error {
	return r.removeFromList(ctx, watchlist, userID, movieID)
}

func (r *Repository) getList(ctx context.Context, l list, userID uuid.UUID) ([]domain.OwnedMovie, error) {
	rows, err := r.pool.Query(ctx,
		fmt.Sprintf(`SELECT movie_id, movie_title FROM %s WHERE user_id = $1 ORDER BY added_at DESC`, l),
		userID,
	)
	if err != nil {
		return nil, transient(err, "query %s for user %s", l, userID)
	}
	defer rows.Close()

	var items []domain.OwnedMovie
	for rows.Next() {
		var m domain.OwnedMovie
		if err := rows.Scan(&m.MovieID, &m.Title); err != nil {
			return nil, transient(err, "scan %s item", l)
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, transient(err, "iterate %s", l)
	}
	return items, nil
}

func (r *Repository) addToList(ctx context.Context, l list, rec domain.InteractionRecord) error {
	tag, err := r.pool.Exec(ctx,
		fmt.Sprintf(`INSERT INTO %s (user_id, movie_id, movie_title, movie_poster_path, movie_release_date, movie_vote_average)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, movie_id) DO NOTHING`, l),
		rec.UserID, rec.MovieID, rec.Title, rec.PosterPath, rec.ReleaseDate, rec.VoteAverage,
	)
	if err != nil {
		return transient(err, "insert %s user=%s movie=%d", l, rec.UserID, rec.MovieID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s movie %d: %w", l, rec.MovieID, domain.ErrAlreadyExists)
	}
	return nil
}

func (r *Repository) removeFromList(ctx context.Context, l list, userID uuid.UUID, movieID int64) error {
	tag, err := r.pool.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1 AND movie_id = $2`, l),
		userID, movieID,
	)
	if err != nil {
		return transient(err, "delete %s user=%s movie=%d", l, userID, movieID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s movie %d: %w", l, movieID, domain.ErrNotFound)
	}
	return nil
}

// Favorites of other users that overlap the given movies
func (r *Repository) FindCoFavorites(ctx context.Context, userID uuid.UUID, movieIDs []int64) ([]domain.UserMovie, error) {
	return r.queryUserMovies(ctx,
		`SELECT user_id, movie_id FROM favorites WHERE movie_id = ANY($1) AND user_id <> $2`,
		nonNil(movieIDs), userID,
	)
}

// All favorites of the given users, minus the excluded movies
func (r *Repository) FavoritesByUsers(ctx context.Context, userIDs []uuid.UUID, exclude []int64) ([]domain.UserMovie, error) {
	return r.queryUserMovies(ctx,
		`SELECT user_id, movie_id FROM favorites
		WHERE user_id::text = ANY($1) AND NOT (movie_id = ANY($2))`,
		uuidStrings(userIDs), nonNil(exclude),
	)
}

func (r *Repository) queryUserMovies(ctx context.Context, query string, args ...any) ([]domain.UserMovie, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, transient(err, "query favorites")
	}
	defer rows.Close()

	var out []domain.UserMovie
	for rows.Next() {
		var um domain.UserMovie
		if err := rows.Scan(&um.UserID, &um.MovieID); err != nil {
			return nil, transient(err, "scan favorite")
		}
		out = append(out, um)
	}
	if err := rows.Err(); err != nil {
		return nil, transient(err, "iterate favorites")
	}
	return out, nil
}
