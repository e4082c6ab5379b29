// Package sqlite is an embedded preference store with the same contract as
// the PostgreSQL repository. It backs local runs (STORE_DRIVER=sqlite) and
// store-level tests.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/actuallystonmai/movie-recommender/internal/domain"

	_ "modernc.org/sqlite" // pure-Go driver
)

const schema = `
CREATE TABLE IF NOT EXISTS user_preferences (
	user_id TEXT NOT NULL,
	genre_id INTEGER NOT NULL,
	preference_score REAL NOT NULL,
	updated_at INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (user_id, genre_id)
);
CREATE TABLE IF NOT EXISTS favorites (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL,
	movie_id INTEGER NOT NULL,
	movie_title TEXT NOT NULL DEFAULT '',
	movie_poster_path TEXT NOT NULL DEFAULT '',
	movie_release_date TEXT NOT NULL DEFAULT '',
	movie_vote_average REAL NOT NULL DEFAULT 0,
	added_at INTEGER NOT NULL,
	UNIQUE (user_id, movie_id)
);
CREATE INDEX IF NOT EXISTS idx_favorites_movie ON favorites (movie_id);
CREATE TABLE IF NOT EXISTS watchlist (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL,
	movie_id INTEGER NOT NULL,
	movie_title TEXT NOT NULL DEFAULT '',
	movie_poster_path TEXT NOT NULL DEFAULT '',
	movie_release_date TEXT NOT NULL DEFAULT '',
	movie_vote_average REAL NOT NULL DEFAULT 0,
	added_at INTEGER NOT NULL,
	UNIQUE (user_id, movie_id)
);
CREATE TABLE IF NOT EXISTS movie_features (
	movie_id INTEGER PRIMARY KEY,
	genres TEXT NOT NULL DEFAULT '[]',
	cast_ids TEXT NOT NULL DEFAULT '[]',
	director_id INTEGER,
	popularity_score REAL NOT NULL DEFAULT 0,
	vote_average REAL NOT NULL DEFAULT 0,
	release_year INTEGER NOT NULL DEFAULT 2000,
	runtime INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS user_recommendations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL,
	movie_id INTEGER NOT NULL,
	recommendation_score REAL NOT NULL,
	recommendation_type TEXT NOT NULL,
	reason TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_user_recommendations_user ON user_recommendations (user_id);
`

type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path and applies the schema.
// ":memory:" gives a private in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if path == ":memory:" {
		// every connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func transient(err error, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %w", fmt.Sprintf(format, args...), domain.ErrTransient, err)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func (s *Store) GetPreferences(ctx context.Context, userID uuid.UUID) (domain.PreferenceVector, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT genre_id, preference_score FROM user_preferences WHERE user_id = ?`, userID)
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

func (s *Store) UpsertPreference(ctx context.Context, userID uuid.UUID, genreID int, delta float64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_preferences (user_id, genre_id, preference_score, updated_at)
		VALUES (?, ?, MAX(-1.0, MIN(1.0, ?)), ?)
		ON CONFLICT (user_id, genre_id) DO UPDATE
			SET preference_score = MAX(-1.0, MIN(1.0, user_preferences.preference_score + ?)),
			    updated_at = excluded.updated_at`,
		userID, genreID, delta, time.Now().Unix(), delta,
	)
	if err != nil {
		return transient(err, "upsert preference user=%s genre=%d", userID, genreID)
	}
	return nil
}
