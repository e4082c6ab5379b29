package domain

import (
	"strconv"
	"time"
)

const maxFeatureCast = 10

// MovieFeatures is the per-movie snapshot used by content-based scoring.
// It is captured once, on the first favorite, and never refreshed.
type MovieFeatures struct {
	MovieID         int64   `json:"movie_id"`
	Genres          []int   `json:"genres"`
	CastIDs         []int64 `json:"cast_ids"`
	DirectorID      *int64  `json:"director_id,omitempty"`
	PopularityScore float64 `json:"popularity_score"`
	VoteAverage     float64 `json:"vote_average"`
	ReleaseYear     int     `json:"release_year"`
	Runtime         int     `json:"runtime"`
}

// NewMovieFeatures builds a feature record from what the caller knows about
// the movie and, when available, its catalog details.
func NewMovieFeatures(m Movie, details *Movie) MovieFeatures {
	f := MovieFeatures{MovieID: m.ID}

	if details != nil {
		f.Genres = details.GenreIDList()
	}
	if len(f.Genres) == 0 {
		f.Genres = m.GenreIDList()
	}

	if details != nil && details.Credits != nil {
		for i, c := range details.Credits.Cast {
			if i == maxFeatureCast {
				break
			}
			f.CastIDs = append(f.CastIDs, c.ID)
		}
		if id, ok := details.Director(); ok {
			f.DirectorID = &id
		}
	}

	f.PopularityScore = firstNonZero(m.Popularity, detailsField(details, func(d *Movie) float64 { return d.Popularity }))
	f.VoteAverage = firstNonZero(m.VoteAverage, detailsField(details, func(d *Movie) float64 { return d.VoteAverage }))

	releaseDate := m.ReleaseDate
	if releaseDate == "" && details != nil {
		releaseDate = details.ReleaseDate
	}
	f.ReleaseYear = releaseYear(releaseDate)

	if details != nil {
		f.Runtime = details.Runtime
	}
	return f
}

func detailsField(d *Movie, get func(*Movie) float64) float64 {
	if d == nil {
		return 0
	}
	return get(d)
}

func firstNonZero(vals ...float64) float64 {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}

// releaseYear parses the year of a YYYY-MM-DD date, defaulting to 2000.
func releaseYear(date string) int {
	if t, err := time.Parse(time.DateOnly, date); err == nil {
		return t.Year()
	}
	if len(date) >= 4 {
		if y, err := strconv.Atoi(date[:4]); err == nil {
			return y
		}
	}
	return 2000
}
