package recommend

import (
	"context"
	"fmt"

	"github.com/actuallystonmai/movie-recommender/internal/domain"
)

// finalize filters owned movies, tops up a short list, persists the cache
// snapshot, shuffles and resolves details.
func (e *Engine) finalize(ctx context.Context, p *pass, fused []domain.Candidate, owned map[int64]struct{}, strategy Strategy) Result {
	selected := FilterOwned(fused, owned, p.limit)

	if len(selected) < p.limit && len(p.prefs) > 0 {
		exclude := union(owned, candidateIDs(selected))
		movies, _ := e.genreSearch(ctx, p, StageToppingUp, p.prefs.Top(contentGenreThreshold, contentTopGenres), exclude, p.limit-len(selected))
		selected = append(selected, asCandidates(movies, topUpScore, topUpReason)...)
	}

	if err := e.store.ReplaceCachedRecommendations(ctx, p.userID, selected); err != nil {
		p.warnings.add(Warning{Stage: StageCaching, Err: err})
	}

	shuffled := append([]domain.Candidate(nil), selected...)
	e.shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	if len(shuffled) > p.limit {
		shuffled = shuffled[:p.limit]
	}

	return Result{
		Movies:     e.resolve(ctx, p, shuffled),
		Candidates: selected,
		Strategy:   strategy,
	}
}

// resolve fetches details one movie at a time, omitting failures.
func (e *Engine) resolve(ctx context.Context, p *pass, cands []domain.Candidate) []domain.Movie {
	movies := make([]domain.Movie, 0, len(cands))
	for _, c := range cands {
		m, err := e.catalog.MovieDetails(ctx, c.MovieID)
		if err != nil {
			p.warnings.add(Warning{Stage: StageResolvingDetails, MovieID: c.MovieID, Err: fmt.Errorf("movie details: %w", err)})
			continue
		}
		movies = append(movies, *m)
	}
	return movies
}
