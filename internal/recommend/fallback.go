package recommend

import (
	"context"
	"fmt"
	"math"

	"github.com/actuallystonmai/movie-recommender/internal/domain"
)

const fallbackMinRating = 6.0

// genreSearch discovers well-rated movies in the given genres, skipping
// excluded ids, and resolves each to full details. It asks each genre for a
// little more than its share so exclusions do not starve the result. When
// nothing is found it falls back to trending movies; the second return value
// reports that.
func (e *Engine) genreSearch(ctx context.Context, p *pass, stage Stage, genres []domain.GenreScore, exclude map[int64]struct{}, limit int) ([]domain.Movie, bool) {
	if limit <= 0 {
		return nil, false
	}

	perGenre := int(math.Ceil(float64(limit)/float64(max(len(genres), 1)))) + 2
	var movies []domain.Movie
	// a movie tagged with several of the genres is fetched once
	fetched := make(map[int64]struct{})

	for _, g := range genres {
		page, err := e.catalog.Discover(ctx, domain.DiscoverQuery{
			GenreID:   g.GenreID,
			MinRating: fallbackMinRating,
			SortBy:    e.randomSortKey(),
			Page:      1,
		})
		if err != nil {
			p.warnings.add(Warning{Stage: stage, GenreID: g.GenreID, Err: fmt.Errorf("discover: %w", err)})
			continue
		}

		tried := 0
		for _, m := range page.Results {
			if tried == perGenre || len(movies) >= limit {
				break
			}
			if _, ok := exclude[m.ID]; ok {
				continue
			}
			if _, ok := fetched[m.ID]; ok {
				continue
			}
			fetched[m.ID] = struct{}{}
			tried++

			details, err := e.catalog.MovieDetails(ctx, m.ID)
			if err != nil {
				p.warnings.add(Warning{Stage: stage, GenreID: g.GenreID, MovieID: m.ID, Err: err})
				continue
			}
			movies = append(movies, *details)
		}
		if len(movies) >= limit {
			break
		}
	}

	if len(movies) == 0 {
		return e.trendingFallback(ctx, p, stage, exclude, limit), true
	}

	movies = dedupe(movies)
	e.shuffle(len(movies), func(i, j int) { movies[i], movies[j] = movies[j], movies[i] })
	if len(movies) > limit {
		movies = movies[:limit]
	}
	return movies, false
}

// trendingFallback is the last resort: this week's trending movies minus the
// excluded ids, shuffled. A catalog failure yields an empty list.
func (e *Engine) trendingFallback(ctx context.Context, p *pass, stage Stage, exclude map[int64]struct{}, limit int) []domain.Movie {
	page, err := e.catalog.Trending(ctx)
	if err != nil {
		p.warnings.add(Warning{Stage: stage, Source: domain.SourceTrending, Err: fmt.Errorf("trending fallback: %w", err)})
		return nil
	}

	movies := make([]domain.Movie, 0, len(page.Results))
	for _, m := range page.Results {
		if _, ok := exclude[m.ID]; !ok {
			movies = append(movies, m)
		}
	}
	movies = dedupe(movies)
	e.shuffle(len(movies), func(i, j int) { movies[i], movies[j] = movies[j], movies[i] })
	if len(movies) > limit {
		movies = movies[:limit]
	}
	return movies
}

func dedupe(movies []domain.Movie) []domain.Movie {
	seen := make(map[int64]struct{}, len(movies))
	out := movies[:0]
	for _, m := range movies {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	return out
}
