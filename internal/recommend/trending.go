package recommend

import (
	"context"
	"fmt"

	"github.com/actuallystonmai/movie-recommender/internal/domain"
)

const (
	trendingReason       = "Trending now."
	neutralGenreMatch    = 0.5
	trendingMatchWeight  = 0.4
	trendingPopWeight    = 0.3
	trendingRatingWeight = 0.3
)

// TrendingSignal scores this week's trending movies by genre match,
// popularity and rating.
type TrendingSignal struct {
	catalog Catalog
}

func NewTrendingSignal(catalog Catalog) *TrendingSignal {
	return &TrendingSignal{catalog: catalog}
}

func (s *TrendingSignal) Source() domain.Source { return domain.SourceTrending }

func (s *TrendingSignal) Generate(ctx context.Context, in SignalInput) ([]domain.Candidate, error) {
	page, err := s.catalog.Trending(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch trending: %w", err)
	}

	liked := in.Preferences.Positive()
	out := make([]domain.Candidate, 0, len(page.Results))
	for i := range page.Results {
		m := &page.Results[i]
		match := neutralGenreMatch
		if len(in.Preferences) > 0 {
			match = genreMatch(m.GenreIDList(), liked)
		}
		out = append(out, domain.Candidate{
			MovieID: m.ID,
			Score:   trendingMatchWeight*match + trendingPopWeight*(m.Popularity/1000) + trendingRatingWeight*(m.VoteAverage/10),
			Reason:  trendingReason,
			Source:  domain.SourceTrending,
		})
	}
	return out, nil
}

// genreMatch is the fraction of the movie's genres the user likes.
func genreMatch(genres []int, liked map[int]struct{}) float64 {
	hits := 0
	for _, g := range genres {
		if _, ok := liked[g]; ok {
			hits++
		}
	}
	return float64(hits) / float64(max(len(genres), 1))
}
