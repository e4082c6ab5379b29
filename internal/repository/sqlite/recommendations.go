package sqlite

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/actuallystonmai/movie-recommender/internal/domain"
)

func (s *Store) ReplaceCachedRecommendations(ctx context.Context, userID uuid.UUID, recs []domain.Candidate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return transient(err, "begin cache replace")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_recommendations WHERE user_id = ?`, userID); err != nil {
		return transient(err, "clear cached recommendations for user %s", userID)
	}

	now := time.Now().Unix()
	for _, rec := range recs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_recommendations (user_id, movie_id, recommendation_score, recommendation_type, reason, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			userID, rec.MovieID, rec.Score, string(rec.Source), rec.Reason, now,
		); err != nil {
			return transient(err, "insert cached recommendation for user %s", userID)
		}
	}

	if err := tx.Commit(); err != nil {
		return transient(err, "commit cache replace")
	}
	return nil
}

func (s *Store) GetCachedRecommendations(ctx context.Context, userID uuid.UUID) ([]domain.CachedRecommendation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, movie_id, recommendation_score, recommendation_type, reason, created_at
		FROM user_recommendations WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, transient(err, "query cached recommendations for user %s", userID)
	}
	defer rows.Close()

	var items []domain.CachedRecommendation
	for rows.Next() {
		var c domain.CachedRecommendation
		var source string
		var createdAt int64
		if err := rows.Scan(&c.UserID, &c.MovieID, &c.Score, &source, &c.Reason, &createdAt); err != nil {
			return nil, transient(err, "scan cached recommendation")
		}
		c.Source = domain.Source(source)
		c.CreatedAt = time.Unix(createdAt, 0).UTC()
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, transient(err, "iterate cached recommendations")
	}
	return items, nil
}

func (s *Store) ClearCachedRecommendations(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM user_recommendations WHERE user_id = ?`, userID); err != nil {
		return transient(err, "clear cached recommendations for user %s", userID)
	}
	return nil
}
