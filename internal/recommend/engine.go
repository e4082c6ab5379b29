// Package recommend generates personalized movie recommendations by fusing
// content, collaborative and trending signals, topping up thin lists with
// genre-driven catalog search.
package recommend

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/actuallystonmai/movie-recommender/internal/domain"
	"github.com/actuallystonmai/movie-recommender/internal/metrics"
)

// Catalog is the subset of the movie catalog the engine reads.
type Catalog interface {
	MovieDetails(ctx context.Context, id int64) (*domain.Movie, error)
	Discover(ctx context.Context, q domain.DiscoverQuery) (*domain.MoviePage, error)
	Trending(ctx context.Context) (*domain.MoviePage, error)
}

// Store is the preference store the engine reads and writes.
type Store interface {
	GetPreferences(ctx context.Context, userID uuid.UUID) (domain.PreferenceVector, error)
	GetFavorites(ctx context.Context, userID uuid.UUID) ([]domain.OwnedMovie, error)
	GetWatchlist(ctx context.Context, userID uuid.UUID) ([]domain.OwnedMovie, error)
	UpsertPreference(ctx context.Context, userID uuid.UUID, genreID int, delta float64) error
	HasMovieFeatures(ctx context.Context, movieID int64) (bool, error)
	InsertMovieFeaturesIfAbsent(ctx context.Context, f domain.MovieFeatures) (bool, error)
	FindMoviesByGenre(ctx context.Context, genreID int, minRating float64, limit int) ([]domain.MovieFeatures, error)
	FindCoFavorites(ctx context.Context, userID uuid.UUID, movieIDs []int64) ([]domain.UserMovie, error)
	FavoritesByUsers(ctx context.Context, userIDs []uuid.UUID, exclude []int64) ([]domain.UserMovie, error)
	ReplaceCachedRecommendations(ctx context.Context, userID uuid.UUID, recs []domain.Candidate) error
}

// Strategy names the path that produced a result.
type Strategy string

const (
	StrategyFused            Strategy = "fused"
	StrategySupplemented     Strategy = "supplemented"
	StrategyGenreFallback    Strategy = "genre_fallback"
	StrategyTrendingFallback Strategy = "trending_fallback"
	StrategyNone             Strategy = "none"
)

const (
	supplementScore  = 0.5
	topUpScore       = 0.4
	supplementReason = "Based on your genre preferences."
	topUpReason      = "Additional genre-based recommendation."
)

// Result is the outcome of one generation pass. Generation never fails; what
// went wrong along the way is listed in Warnings.
type Result struct {
	Movies []domain.Movie
	// Candidates is the list persisted to the recommendation cache, before
	// the presentation shuffle. Empty for the fallback strategies.
	Candidates []domain.Candidate
	Warnings   []Warning
	Strategy   Strategy
}

type Options struct {
	// Seed for shuffles and discover sort keys; 0 seeds from the clock.
	Seed int64
}

// Engine is stateless apart from its registered signals and random source,
// and is safe for concurrent use.
type Engine struct {
	catalog Catalog
	store   Store
	logger  zerolog.Logger

	signals []Signal
	sigMu   sync.RWMutex

	rng   *rand.Rand
	rngMu sync.Mutex
}

// New builds an engine with the default signal set registered.
func New(catalog Catalog, store Store, opts Options, logger zerolog.Logger) *Engine {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	e := &Engine{
		catalog: catalog,
		store:   store,
		logger:  logger.With().Str("component", "recommend").Logger(),
		rng:     rand.New(rand.NewSource(seed)), //nolint:gosec // variety, not security
	}
	for _, s := range DefaultSignals(catalog, store) {
		e.RegisterSignal(s)
	}
	return e
}

// RegisterSignal adds a signal, replacing any registered for the same source.
func (e *Engine) RegisterSignal(s Signal) {
	e.sigMu.Lock()
	defer e.sigMu.Unlock()

	for i, existing := range e.signals {
		if existing.Source() == s.Source() {
			e.signals[i] = s
			return
		}
	}
	e.signals = append(e.signals, s)
}

func (e *Engine) registered() []Signal {
	e.sigMu.RLock()
	defer e.sigMu.RUnlock()
	return append([]Signal(nil), e.signals...)
}

// pass carries the per-request state of one generation.
type pass struct {
	userID    uuid.UUID
	limit     int
	prefs     domain.PreferenceVector
	favorites []domain.OwnedMovie
	watchlist []domain.OwnedMovie
	warnings  *warnings
}

// GenerateRecommendations produces at most limit movies for the user, none of
// which are in the user's favorites or watchlist.
func (e *Engine) GenerateRecommendations(ctx context.Context, userID uuid.UUID, limit int) Result {
	start := time.Now()
	logger := e.logger.With().Str("user_id", userID.String()).Int("limit", limit).Logger()

	p := &pass{userID: userID, limit: limit, warnings: newWarnings(logger)}
	res := e.generate(ctx, p)
	res.Warnings = p.warnings.list()

	metrics.GenerationsTotal.WithLabelValues(string(res.Strategy)).Inc()
	metrics.GenerationDuration.Observe(time.Since(start).Seconds())

	logger.Debug().
		Str("strategy", string(res.Strategy)).
		Int("returned", len(res.Movies)).
		Int("warnings", len(res.Warnings)).
		Dur("elapsed", time.Since(start)).
		Msg("recommendations generated")
	return res
}

func (e *Engine) generate(ctx context.Context, p *pass) Result {
	if p.limit <= 0 {
		return Result{Strategy: StrategyNone}
	}

	if err := e.loadContext(ctx, p); err != nil {
		p.warnings.add(Warning{Stage: StageLoadingContext, Err: err})
		owned := domain.OwnedSet(p.favorites, p.watchlist)
		return Result{
			Movies:   e.trendingFallback(ctx, p, StageLoadingContext, owned, p.limit),
			Strategy: StrategyTrendingFallback,
		}
	}

	owned := domain.OwnedSet(p.favorites, p.watchlist)
	personalized, trending := e.runSignals(ctx, p)
	hasPrefs := len(p.prefs) > 0

	switch {
	case len(personalized) > 0 && len(personalized) < p.limit && hasPrefs:
		exclude := union(owned, candidateIDs(personalized))
		movies, _ := e.genreSearch(ctx, p, StageToppingUp, p.prefs.Top(0.1, 5), exclude, p.limit-len(personalized))
		supplements := asCandidates(movies, supplementScore, supplementReason)
		fused := Fuse(append(personalized, supplements...))
		return e.finalize(ctx, p, fused, owned, StrategySupplemented)

	case len(personalized) == 0 && hasPrefs:
		movies, fellBack := e.genreSearch(ctx, p, StageToppingUp, p.prefs.Top(0, 3), owned, p.limit)
		strategy := StrategyGenreFallback
		if fellBack {
			strategy = StrategyTrendingFallback
		}
		return Result{Movies: movies, Strategy: strategy}
	}

	fused := Fuse(append(personalized, trending...))
	if len(fused) == 0 {
		return Result{
			Movies:   e.trendingFallback(ctx, p, StageFusing, owned, p.limit),
			Strategy: StrategyTrendingFallback,
		}
	}
	return e.finalize(ctx, p, fused, owned, StrategyFused)
}

// loadContext reads preferences, favorites and watchlist. Lists read before
// a failure are kept so the fallback can still exclude them.
func (e *Engine) loadContext(ctx context.Context, p *pass) error {
	var err error
	if p.favorites, err = e.store.GetFavorites(ctx, p.userID); err != nil {
		return err
	}
	if p.watchlist, err = e.store.GetWatchlist(ctx, p.userID); err != nil {
		return err
	}
	if p.prefs, err = e.store.GetPreferences(ctx, p.userID); err != nil {
		return err
	}
	return nil
}

func (e *Engine) shuffle(n int, swap func(i, j int)) {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	e.rng.Shuffle(n, swap)
}

func (e *Engine) randomSortKey() domain.SortKey {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return domain.SortKeys[e.rng.Intn(len(domain.SortKeys))]
}

func union(sets ...map[int64]struct{}) map[int64]struct{} {
	out := make(map[int64]struct{})
	for _, s := range sets {
		for id := range s {
			out[id] = struct{}{}
		}
	}
	return out
}

func candidateIDs(cands []domain.Candidate) map[int64]struct{} {
	ids := make(map[int64]struct{}, len(cands))
	for _, c := range cands {
		ids[c.MovieID] = struct{}{}
	}
	return ids
}

func asCandidates(movies []domain.Movie, score float64, reason string) []domain.Candidate {
	out := make([]domain.Candidate, 0, len(movies))
	for _, m := range movies {
		out = append(out, domain.Candidate{
			MovieID: m.ID,
			Score:   score,
			Reason:  reason,
			Source:  domain.SourceContent,
		})
	}
	return out
}
