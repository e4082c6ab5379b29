package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/actuallystonmai/movie-recommender/internal/domain"
)

// Get genre preference vector; empty when the user has none
func (r *Repository) GetPreferences(ctx context.Context, userID uuid.UUID) (domain.PreferenceVector, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT genre_id, preference_score FROM user_preferences WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, transient(err, "query preferences for user %s", userID)
	}
	defer rows.Close()

	prefs := domain.PreferenceVector{}
	for rows.Next() {
		var genreID int
		var score float64
		if err := rows.Scan(&genreID, &score); err != nil {
			return nil, transient(err, "scan preference")
		}
		prefs[genreID] = score
	}
	if err := rows.Err(); err != nil {
		return nil, transient(err, "iterate preferences")
	}
	return prefs, nil
}

// Add delta to a genre score, clamped to [-1, 1]. A missing row starts at 0.
func (r *Repository) UpsertPreference(ctx context.Context, userID uuid.UUID, genreID int, delta float64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_preferences (user_id, genre_id, preference_score)
		VALUES ($1, $2, GREATEST(-1.0, LEAST(1.0, $3::double precision)))
		ON CONFLICT (user_id, genre_id) DO UPDATE
			SET preference_score = GREATEST(-1.0, LEAST(1.0, user_preferences.preference_score + $3::double precision)),
			    updated_at = now()`,
		userID, genreID, delta,
	)
	if err != nil {
		return transient(err, "upsert preference user=%s genre=%d", userID, genreID)
	}
	return nil
}
