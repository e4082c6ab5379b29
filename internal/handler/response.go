package handler

import "github.com/actuallystonmai/movie-recommender/internal/domain"

type RecommendationResponse struct {
	UserID          string                    `json:"user_id"`
	Recommendations []domain.Movie            `json:"recommendations"`
	Metadata        domain.RecommendationMeta `json:"metadata"`
}

type CachedRecommendationsResponse struct {
	UserID          string                        `json:"user_id"`
	Recommendations []domain.CachedRecommendation `json:"recommendations"`
}

type InteractionResponse struct {
	UserID           string   `json:"user_id"`
	MovieID          int64    `json:"movie_id"`
	Action           string   `json:"action"`
	GenresUpdated    []int    `json:"genres_updated"`
	FeaturesCaptured bool     `json:"features_captured"`
	Warnings         []string `json:"warnings,omitempty"`
}

// MovieRequest is the movie snapshot the UI sends when adding to a list.
// Genres are optional; missing ones are looked up in the catalog.
type MovieRequest struct {
	MovieID     int64   `json:"movie_id" validate:"required,gt=0"`
	Title       string  `json:"title" validate:"max=500"`
	PosterPath  string  `json:"poster_path" validate:"max=500"`
	ReleaseDate string  `json:"release_date" validate:"omitempty,datetime=2006-01-02"`
	VoteAverage float64 `json:"vote_average" validate:"gte=0,lte=10"`
	Popularity  float64 `json:"popularity" validate:"gte=0"`
	GenreIDs    []int   `json:"genre_ids" validate:"max=20,dive,gt=0"`
}

func (r MovieRequest) Movie() domain.Movie {
	return domain.Movie{
		ID:          r.MovieID,
		Title:       r.Title,
		PosterPath:  r.PosterPath,
		ReleaseDate: r.ReleaseDate,
		VoteAverage: r.VoteAverage,
		Popularity:  r.Popularity,
		GenreIDs:    r.GenreIDs,
	}
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
