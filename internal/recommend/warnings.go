package recommend

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/actuallystonmai/movie-recommender/internal/domain"
	"github.com/actuallystonmai/movie-recommender/internal/metrics"
)

// Stage is a step of the generation pipeline.
type Stage string

const (
	StageLoadingContext      Stage = "loading_context"
	StageGeneratingSignals   Stage = "generating_signals"
	StageFusing              Stage = "fusing"
	StageToppingUp           Stage = "topping_up"
	StageFiltering           Stage = "filtering"
	StageCaching             Stage = "caching"
	StageShuffling           Stage = "shuffling"
	StageResolvingDetails    Stage = "resolving_details"
	StageUpdatingPreferences Stage = "updating_preferences"
)

// Warning is a non-fatal failure that degraded, but did not abort, the call.
type Warning struct {
	Stage   Stage
	Source  domain.Source
	MovieID int64
	GenreID int
	Err     error
}

func (w Warning) String() string {
	var b strings.Builder
	b.WriteString(string(w.Stage))
	if w.Source != "" {
		fmt.Fprintf(&b, " source=%s", w.Source)
	}
	if w.GenreID != 0 {
		fmt.Fprintf(&b, " genre=%d", w.GenreID)
	}
	if w.MovieID != 0 {
		fmt.Fprintf(&b, " movie=%d", w.MovieID)
	}
	if w.Err != nil {
		fmt.Fprintf(&b, ": %v", w.Err)
	}
	return b.String()
}

// warnings collects warnings from concurrent signal generators.
type warnings struct {
	mu     sync.Mutex
	items  []Warning
	logger zerolog.Logger
}

func newWarnings(logger zerolog.Logger) *warnings {
	return &warnings{logger: logger}
}

func (w *warnings) add(warn Warning) {
	metrics.Warnings.WithLabelValues(string(warn.Stage)).Inc()

	ev := w.logger.Warn().Err(warn.Err).Str("stage", string(warn.Stage))
	if warn.Source != "" {
		ev = ev.Str("source", string(warn.Source))
	}
	if warn.GenreID != 0 {
		ev = ev.Int("genre_id", warn.GenreID)
	}
	if warn.MovieID != 0 {
		ev = ev.Int64("movie_id", warn.MovieID)
	}
	ev.Msg("recommendation step degraded")

	w.mu.Lock()
	w.items = append(w.items, warn)
	w.mu.Unlock()
}

func (w *warnings) list() []Warning {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Warning(nil), w.items...)
}
