package recommend

import (
	"context"

	"github.com/actuallystonmai/movie-recommender/internal/domain"
)

// SimilarCastSignal would recommend movies sharing cast with the user's
// favorites. It is registered so fusion already weights its source, but it
// produces nothing until cast similarity is implemented over movie_features.
type SimilarCastSignal struct{}

func (SimilarCastSignal) Source() domain.Source { return domain.SourceSimilarCast }

func (SimilarCastSignal) Generate(ctx context.Context, in SignalInput) ([]domain.Candidate, error) {
	return nil, nil
}

// SimilarDirectorSignal is the director counterpart of SimilarCastSignal and
// is likewise unimplemented.
type SimilarDirectorSignal struct{}

func (SimilarDirectorSignal) Source() domain.Source { return domain.SourceSimilarDirector }

func (SimilarDirectorSignal) Generate(ctx context.Context, in SignalInput) ([]domain.Candidate, error) {
	return nil, nil
}
