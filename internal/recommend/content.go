package recommend

import (
	"context"
	"fmt"

	"github.com/actuallystonmai/movie-recommender/internal/domain"
)

const (
	contentGenreThreshold = 0.1
	contentTopGenres      = 5
	contentMinRating      = 5.0
	contentPerGenre       = 15
)

// ContentSignal scores feature-store movies in the user's favoured genres.
type ContentSignal struct {
	store Store
}

func NewContentSignal(store Store) *ContentSignal {
	return &ContentSignal{store: store}
}

func (s *ContentSignal) Source() domain.Source { return domain.SourceContent }

// Generate never fails as a whole: a genre whose query fails is skipped.
func (s *ContentSignal) Generate(ctx context.Context, in SignalInput) ([]domain.Candidate, error) {
	var out []domain.Candidate
	for _, g := range in.Preferences.Top(contentGenreThreshold, contentTopGenres) {
		features, err := s.store.FindMoviesByGenre(ctx, g.GenreID, contentMinRating, contentPerGenre)
		if err != nil {
			in.Warn(Warning{GenreID: g.GenreID, Err: err})
			continue
		}

		reason := fmt.Sprintf("Because you like %s movies.", domain.GenreName(g.GenreID))
		for _, f := range features {
			out = append(out, domain.Candidate{
				MovieID: f.MovieID,
				Score:   g.Score * (f.VoteAverage / 10) * (f.PopularityScore / 100),
				Reason:  reason,
				Source:  domain.SourceContent,
			})
		}
	}
	return out, nil
}
