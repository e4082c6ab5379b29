package recommend

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/actuallystonmai/movie-recommender/internal/domain"
	"github.com/actuallystonmai/movie-recommender/internal/metrics"
)

// Signal is one independent producer of raw candidates.
type Signal interface {
	Source() domain.Source
	Generate(ctx context.Context, in SignalInput) ([]domain.Candidate, error)
}

// SignalInput is the user context shared by every signal in a pass.
type SignalInput struct {
	UserID      uuid.UUID
	Preferences domain.PreferenceVector
	Favorites   []domain.OwnedMovie
	// Warn records a partial failure, such as one genre query, that the
	// signal recovered from.
	Warn func(Warning)
}

// DefaultSignals returns the signals in fusion order: content-family
// signals first, then collaborative, then trending.
func DefaultSignals(catalog Catalog, store Store) []Signal {
	return []Signal{
		NewContentSignal(store),
		SimilarCastSignal{},
		SimilarDirectorSignal{},
		NewCollaborativeSignal(store),
		NewTrendingSignal(catalog),
	}
}

// personalized reports whether candidates of this source count as
// personalized when deciding between fusion and fallback.
func personalized(s domain.Source) bool {
	return s != domain.SourceTrending
}

// runSignals runs every registered signal concurrently and waits for all of
// them. A failed signal contributes nothing and leaves a warning. Results
// keep registration order.
func (e *Engine) runSignals(ctx context.Context, p *pass) (personal, trending []domain.Candidate) {
	signals := e.registered()
	results := make([][]domain.Candidate, len(signals))

	var g errgroup.Group
	for i, sig := range signals {
		source := sig.Source()
		in := SignalInput{
			UserID:      p.userID,
			Preferences: p.prefs,
			Favorites:   p.favorites,
			Warn: func(w Warning) {
				w.Stage = StageGeneratingSignals
				w.Source = source
				p.warnings.add(w)
			},
		}

		g.Go(func() error {
			cands, err := sig.Generate(ctx, in)
			if err != nil {
				metrics.SignalErrors.WithLabelValues(string(source)).Inc()
				in.Warn(Warning{Err: err})
				return nil
			}
			metrics.SignalCandidates.WithLabelValues(string(source)).Observe(float64(len(cands)))
			results[i] = cands
			return nil
		})
	}
	_ = g.Wait()

	for i, sig := range signals {
		if personalized(sig.Source()) {
			personal = append(personal, results[i]...)
		} else {
			trending = append(trending, results[i]...)
		}
	}
	return personal, trending
}
