package domain

import (
	"time"

	"github.com/google/uuid"
)

// InteractionRecord is a favorite or watchlist entry with a denormalized
// snapshot of the movie at the time it was added.
type InteractionRecord struct {
	UserID      uuid.UUID `json:"user_id"`
	MovieID     int64     `json:"movie_id"`
	Title       string    `json:"movie_title"`
	PosterPath  string    `json:"movie_poster_path"`
	ReleaseDate string    `json:"movie_release_date"`
	VoteAverage float64   `json:"movie_vote_average"`
	AddedAt     time.Time `json:"added_at"`
}

// NewInteractionRecord snapshots a movie for a user's list.
func NewInteractionRecord(userID uuid.UUID, m Movie) InteractionRecord {
	return InteractionRecord{
		UserID:      userID,
		MovieID:     m.ID,
		Title:       m.Title,
		PosterPath:  m.PosterPath,
		ReleaseDate: m.ReleaseDate,
		VoteAverage: m.VoteAverage,
	}
}

// OwnedMovie is the slim projection of a favorite or watchlist row.
type OwnedMovie struct {
	MovieID int64  `json:"movie_id"`
	Title   string `json:"movie_title"`
}

// UserMovie pairs a user with one of their favorites.
type UserMovie struct {
	UserID  uuid.UUID
	MovieID int64
}

// OwnedSet is the union of movie ids across the given lists.
func OwnedSet(lists ...[]OwnedMovie) map[int64]struct{} {
	set := make(map[int64]struct{})
	for _, list := range lists {
		for _, m := range list {
			set[m.MovieID] = struct{}{}
		}
	}
	return set
}
