package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/actuallystonmai/movie-recommender/internal/domain"
)

type list string

const (
	favorites list = "favorites"
	watchlist list = "watchlist"
)

func (s *Store) GetFavorites(ctx context.Context, userID uuid.UUID) ([]domain.OwnedMovie, error) {
	return s.getList(ctx, favorites, userID)
}

func (s *Store) GetWatchlist(ctx context.Context, userID uuid.UUID) ([]domain.OwnedMovie, error) {
	return s.getList(ctx, watchlist, userID)
}

func (s *Store) AddFavorite(ctx context.Context, rec domain.InteractionRecord) error {
	return s.addToList(ctx, favorites, rec)
}

func (s *Store) RemoveFavorite(ctx context.Context, userID uuid.UUID, movieID int64) error {
	return s.removeFromList(ctx, favorites, userID, movieID)
}

func (s *Store) AddToWatchlist(ctx context.Context, rec domain.InteractionRecord) error {
	return s.addToList(ctx, watchlist, rec)
}

func (s *Store) RemoveFromWatchlist(ctx context.Context, userID uuid.UUID, movieID int64) error {
	return s.removeFromList(ctx, watchlist, userID, movieID)
}

func (s *Store) getList(ctx context.Context, l list, userID uuid.UUID) ([]domain.OwnedMovie, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT movie_id, movie_title FROM %s WHERE user_id = ? ORDER BY added_at DESC, id DESC`, l),
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

func (s *Store) addToList(ctx context.Context, l list, rec domain.InteractionRecord) error {
	addedAt := rec.AddedAt
	if addedAt.IsZero() {
		addedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (user_id, movie_id, movie_title, movie_poster_path, movie_release_date, movie_vote_average, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, movie_id) DO NOTHING`, l),
		rec.UserID, rec.MovieID, rec.Title, rec.PosterPath, rec.ReleaseDate, rec.VoteAverage, addedAt.UnixNano(),
	)
	if err != nil {
		return transient(err, "insert %s user=%s movie=%d", l, rec.UserID, rec.MovieID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s movie %d: %w", l, rec.MovieID, domain.ErrAlreadyExists)
	}
	return nil
}

func (s *Store) removeFromList(ctx context.Context, l list, userID uuid.UUID, movieID int64) error {
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE user_id = ? AND movie_id = ?`, l), userID, movieID)
	if err != nil {
		return transient(err, "delete %s user=%s movie=%d", l, userID, movieID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s movie %d: %w", l, movieID, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) FindCoFavorites(ctx context.Context, userID uuid.UUID, movieIDs []int64) ([]domain.UserMovie, error) {
	if len(movieIDs) == 0 {
		return nil, nil
	}
	args := make([]any, 0, len(movieIDs)+1)
	for _, id := range movieIDs {
		args = append(args, id)
	}
	args = append(args, userID)

	return s.queryUserMovies(ctx,
		`SELECT user_id, movie_id FROM favorites WHERE movie_id IN (`+placeholders(len(movieIDs))+`) AND user_id <> ?`,
		args...,
	)
}

func (s *Store) FavoritesByUsers(ctx context.Context, userIDs []uuid.UUID, exclude []int64) ([]domain.UserMovie, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	args := make([]any, 0, len(userIDs)+len(exclude))
	for _, id := range userIDs {
		args = append(args, id)
	}
	query := `SELECT user_id, movie_id FROM favorites WHERE user_id IN (` + placeholders(len(userIDs)) + `)`
	if len(exclude) > 0 {
		query += ` AND movie_id NOT IN (` + placeholders(len(exclude)) + `)`
		for _, id := range exclude {
			args = append(args, id)
		}
	}
	return s.queryUserMovies(ctx, query, args...)
}

func (s *Store) queryUserMovies(ctx context.Context, query string, args ...any) ([]domain.UserMovie, error) {
	rows, err := s.db.QueryContext(ctx, query+` ORDER BY id`, args...)
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

const knownUsers = `SELECT user_id FROM user_preferences
	UNION SELECT user_id FROM favorites
	UNION SELECT user_id FROM watchlist`

func (s *Store) GetUserIDsPaginated(ctx context.Context, page, limit int) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id FROM (`+knownUsers+`) ORDER BY user_id LIMIT ? OFFSET ?`, limit, (page-1)*limit)
	if err != nil {
		return nil, transient(err, "query user ids for page %d", page)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, transient(err, "scan user id")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, transient(err, "iterate user ids")
	}
	return ids, nil
}

func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM (`+knownUsers+`)`).Scan(&total); err != nil {
		return 0, transient(err, "count users")
	}
	return total, nil
}
