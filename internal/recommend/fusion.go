package recommend

import (
	"sort"

	"github.com/actuallystonmai/movie-recommender/internal/domain"
)

// repeatWeight scales the raw score of a movie's second and later candidates.
const repeatWeight = 0.5

var sourceWeights = map[domain.Source]float64{
	domain.SourceContent:         3.0,
	domain.SourceCollaborative:   2.0,
	domain.SourceTrending:        0.3,
	domain.SourceSimilarCast:     1.0,
	domain.SourceSimilarDirector: 1.0,
}

// Fuse merges candidates by movie id. The first candidate for a movie is
// weighted by its source and keeps its reason; each repeat adds half its
// raw score. Output is score descending, first-seen order on ties.
func Fuse(cands []domain.Candidate) []domain.Candidate {
	index := make(map[int64]int, len(cands))
	out := make([]domain.Candidate, 0, len(cands))

	for _, c := range cands {
		if i, ok := index[c.MovieID]; ok {
			out[i].Score += repeatWeight * c.Score
			continue
		}
		w, ok := sourceWeights[c.Source]
		if !ok {
			w = 1.0
		}
		c.Score *= w
		index[c.MovieID] = len(out)
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// FilterOwned drops owned movies and truncates to limit, preserving order.
func FilterOwned(cands []domain.Candidate, owned map[int64]struct{}, limit int) []domain.Candidate {
	out := make([]domain.Candidate, 0, min(len(cands), limit))
	for _, c := range cands {
		if len(out) == limit {
			break
		}
		if _, ok := owned[c.MovieID]; ok {
			continue
		}
		out = append(out, c)
	}
	return out
}
