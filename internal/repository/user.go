package repository

import (
	"context"

	"github.com/google/uuid"
)

const knownUsers = `SELECT user_id FROM user_preferences
	UNION SELECT user_id FROM favorites
	UNION SELECT user_id FROM watchlist`

// Get user ids for page
func (r *Repository) GetUserIDsPaginated(ctx context.Context, page, limit int) ([]uuid.UUID, error) {
	offset := (page - 1) * limit
	rows, err := r.pool.Query(ctx,
		`SELECT user_id FROM (`+knownUsers+`) u ORDER BY user_id LIMIT $1 OFFSET $2`, limit, offset,
	)
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

// Count users with any preference or interaction
func (r *Repository) CountUsers(ctx context.Context) (int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM (`+knownUsers+`) u`).Scan(&total); err != nil {
		return 0, transient(err, "count users")
	}
	return total, nil
}
