package domain

import "sort"

const (
	MinPreferenceScore = -1.0
	MaxPreferenceScore = 1.0
)

// PreferenceVector maps genre id to an affinity score in [-1, 1].
type PreferenceVector map[int]float64

type GenreScore struct {
	GenreID int
	Score   float64
}

// Top returns up to n genres scoring strictly above threshold, best first.
// Equal scores are ordered by genre id.
func (p PreferenceVector) Top(threshold float64, n int) []GenreScore {
	out := make([]GenreScore, 0, len(p))
	for id, score := range p {
		if score > threshold {
			out = append(out, GenreScore{GenreID: id, Score: score})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].GenreID < out[j].GenreID
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Positive returns the set of genres with a score above zero.
func (p PreferenceVector) Positive() map[int]struct{} {
	set := make(map[int]struct{}, len(p))
	for id, score := range p {
		if score > 0 {
			set[id] = struct{}{}
		}
	}
	return set
}

// ClampScore bounds a preference score to [-1, 1].
func ClampScore(v float64) float64 {
	return max(MinPreferenceScore, min(MaxPreferenceScore, v))
}

// Action is a user interaction that shifts genre preferences.
type Action string

const (
	ActionFavorite   Action = "favorite"
	ActionUnfavorite Action = "unfavorite"
	ActionWatchlist  Action = "watchlist"
)

// Delta is the preference shift applied to each genre of the movie.
func (a Action) Delta() float64 {
	switch a {
	case ActionFavorite:
		return 0.3
	case ActionWatchlist:
		return 0.1
	case ActionUnfavorite:
		return -0.2
	}
	return 0
}

func (a Action) Valid() bool {
	switch a {
	case ActionFavorite, ActionUnfavorite, ActionWatchlist:
		return true
	}
	return false
}
