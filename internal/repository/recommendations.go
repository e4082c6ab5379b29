package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/actuallystonmai/movie-recommender/internal/domain"
)

// Replace the user's cached recommendations in one transaction
func (r *Repository) ReplaceCachedRecommendations(ctx context.Context, userID uuid.UUID, recs []domain.Candidate) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return transient(err, "begin cache replace")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM user_recommendations WHERE user_id = $1`, userID); err != nil {
		return transient(err, "clear cached recommendations for user %s", userID)
	}

	if len(recs) > 0 {
		rows := make([]string, 0, len(recs))
		args := make([]any, 0, len(recs)*5)
		for _, rec := range recs {
			base := len(args)
			rows = append(rows, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4, base+5))
			args = append(args, userID, rec.MovieID, rec.Score, string(rec.Source), rec.Reason)
		}
		query := `INSERT INTO user_recommendations (user_id, movie_id, recommendation_score, recommendation_type, reason) VALUES ` +
			strings.Join(rows, ", ")
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return transient(err, "insert cached recommendations for user %s", userID)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return transient(err, "commit cache replace")
	}
	return nil
}

// Cached recommendations in the order they were written
func (r *Repository) GetCachedRecommendations(ctx context.Context, userID uuid.UUID) ([]domain.CachedRecommendation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, movie_id, recommendation_score, recommendation_type, reason, created_at
		FROM user_recommendations WHERE user_id = $1 ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, transient(err, "query cached recommendations for user %s", userID)
	}
	defer rows.Close()

	var items []domain.CachedRecommendation
	for rows.Next() {
		var c domain.CachedRecommendation
		var source string
		if err := rows.Scan(&c.UserID, &c.MovieID, &c.Score, &source, &c.Reason, &c.CreatedAt); err != nil {
			return nil, transient(err, "scan cached recommendation")
		}
		c.Source = domain.Source(source)
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, transient(err, "iterate cached recommendations")
	}
	return items, nil
}

func (r *Repository) ClearCachedRecommendations(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM user_recommendations WHERE user_id = $1`, userID); err != nil {
		return transient(err, "clear cached recommendations for user %s", userID)
	}
	return nil
}
