package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/actuallystonmai/movie-recommender/internal/domain"
	"github.com/actuallystonmai/movie-recommender/internal/recommend"
)

const (
	DefaultLimit = 12
	MaxLimit     = 50

	DefaultBatchPageSize = 20
	MaxBatchPageSize     = 100
	MaxBatchPage         = 10000
	DefaultBatchPerUser  = 10
	batchConcurrency     = 10
)

type Engine interface {
	GenerateRecommendations(ctx context.Context, userID uuid.UUID, limit int) recommend.Result
	UpdateUserPreferences(ctx context.Context, userID uuid.UUID, movie domain.Movie, action domain.Action) recommend.UpdateResult
}

type Store interface {
	AddFavorite(ctx context.Context, rec domain.InteractionRecord) error
	RemoveFavorite(ctx context.Context, userID uuid.UUID, movieID int64) error
	AddToWatchlist(ctx context.Context, rec domain.InteractionRecord) error
	RemoveFromWatchlist(ctx context.Context, userID uuid.UUID, movieID int64) error
	GetCachedRecommendations(ctx context.Context, userID uuid.UUID) ([]domain.CachedRecommendation, error)
	ClearCachedRecommendations(ctx context.Context, userID uuid.UUID) error
	GetUserIDsPaginated(ctx context.Context, page, limit int) ([]uuid.UUID, error)
	CountUsers(ctx context.Context) (int, error)
}

type Service struct {
	engine Engine
	store  Store
	logger zerolog.Logger
}

func NewService(engine Engine, store Store, logger zerolog.Logger) *Service {
	return &Service{
		engine: engine,
		store:  store,
		logger: logger.With().Str("component", "service").Logger(),
	}
}

// NormalizeLimit applies the default and the cap.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

func (s *Service) GetRecommendations(ctx context.Context, userID uuid.UUID, limit int) recommend.Result {
	return s.engine.GenerateRecommendations(ctx, userID, NormalizeLimit(limit))
}

// Drop the cached snapshot, then generate a fresh list
func (s *Service) RefreshRecommendations(ctx context.Context, userID uuid.UUID, limit int) (recommend.Result, error) {
	if err := s.store.ClearCachedRecommendations(ctx, userID); err != nil {
		return recommend.Result{}, fmt.Errorf("clear cached recommendations: %w", err)
	}
	return s.GetRecommendations(ctx, userID, limit), nil
}

func (s *Service) GetCachedRecommendations(ctx context.Context, userID uuid.UUID) ([]domain.CachedRecommendation, error) {
	recs, err := s.store.GetCachedRecommendations(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch cached recommendations: %w", err)
	}
	return recs, nil
}

// AddFavorite records the favorite and nudges the movie's genres up.
func (s *Service) AddFavorite(ctx context.Context, userID uuid.UUID, movie domain.Movie) (recommend.UpdateResult, error) {
	if err := s.store.AddFavorite(ctx, domain.NewInteractionRecord(userID, movie)); err != nil {
		return recommend.UpdateResult{}, err
	}
	return s.afterInteraction(ctx, userID, movie, domain.ActionFavorite), nil
}

func (s *Service) RemoveFavorite(ctx context.Context, userID uuid.UUID, movieID int64) (recommend.UpdateResult, error) {
	if err := s.store.RemoveFavorite(ctx, userID, movieID); err != nil {
		return recommend.UpdateResult{}, err
	}
	return s.afterInteraction(ctx, userID, domain.Movie{ID: movieID}, domain.ActionUnfavorite), nil
}

func (s *Service) AddToWatchlist(ctx context.Context, userID uuid.UUID, movie domain.Movie) (recommend.UpdateResult, error) {
	if err := s.store.AddToWatchlist(ctx, domain.NewInteractionRecord(userID, movie)); err != nil {
		return recommend.UpdateResult{}, err
	}
	return s.afterInteraction(ctx, userID, movie, domain.ActionWatchlist), nil
}

// Removing from the watchlist carries no preference shift.
func (s *Service) RemoveFromWatchlist(ctx context.Context, userID uuid.UUID, movieID int64) error {
	if err := s.store.RemoveFromWatchlist(ctx, userID, movieID); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *Service) afterInteraction(ctx context.Context, userID uuid.UUID, movie domain.Movie, action domain.Action) recommend.UpdateResult {
	res := s.engine.UpdateUserPreferences(ctx, userID, movie, action)
	s.invalidate(ctx, userID)
	return res
}

// invalidate drops the cached snapshot, which may now hold an owned movie.
func (s *Service) invalidate(ctx context.Context, userID uuid.UUID) {
	if err := s.store.ClearCachedRecommendations(ctx, userID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID.String()).Msg("cache invalidation failed")
	}
}

// normalizeBatch fills defaults and caps each field.
func normalizeBatch(q domain.BatchQuery) domain.BatchQuery {
	q.Page = min(max(q.Page, 1), MaxBatchPage)
	if q.PageSize <= 0 {
		q.PageSize = DefaultBatchPageSize
	}
	q.PageSize = min(q.PageSize, MaxBatchPageSize)
	if q.PerUser <= 0 {
		q.PerUser = DefaultBatchPerUser
	}
	q.PerUser = min(q.PerUser, MaxLimit)
	return q
}

// GetBatchRecommendations generates recommendations for one page of known
// users with a bounded worker pool. A page past the end yields no results.
func (s *Service) GetBatchRecommendations(ctx context.Context, q domain.BatchQuery) (*domain.BatchResponse, error) {
	start := time.Now()
	q = normalizeBatch(q)

	userIDs, err := s.store.GetUserIDsPaginated(ctx, q.Page, q.PageSize)
	if err != nil {
		return nil, fmt.Errorf("fetch user ids: %w", err)
	}

	totalUsers, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	// bounded worker pool
	results := make([]domain.BatchUserResult, len(userIDs))
	var wg sync.WaitGroup
	sem := make(chan struct{}, batchConcurrency)

	for i, userID := range userIDs {
		wg.Add(1)
		go func(idx int, uid uuid.UUID) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[idx] = s.processUserForBatch(ctx, uid, q.PerUser)
		}(i, userID)
	}
	wg.Wait()

	successCount := 0
	emptyCount := 0
	for _, r := range results {
		if r.Status == domain.StatusSuccess {
			successCount++
		} else {
			emptyCount++
		}
	}

	s.logger.Debug().
		Int("page", q.Page).
		Int("users", len(results)).
		Int("empty", emptyCount).
		Msg("batch generated")

	return &domain.BatchResponse{
		Page:       q.Page,
		Limit:      q.PageSize,
		PerUser:    q.PerUser,
		TotalUsers: totalUsers,
		TotalPages: (totalUsers + q.PageSize - 1) / q.PageSize,
		Results:    results,
		Summary: domain.BatchSummary{
			SuccessCount:     successCount,
			EmptyCount:       emptyCount,
			ProcessingTimeMs: time.Since(start).Milliseconds(),
		},
		Metadata: domain.BatchMeta{
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}

func (s *Service) processUserForBatch(ctx context.Context, userID uuid.UUID, perUser int) domain.BatchUserResult {
	res := s.engine.GenerateRecommendations(ctx, userID, perUser)

	out := domain.BatchUserResult{
		UserID:          userID,
		Recommendations: res.Movies,
		Status:          domain.StatusSuccess,
		Strategy:        string(res.Strategy),
	}
	if len(res.Movies) == 0 {
		out.Status = domain.StatusEmpty
	}
	for _, w := range res.Warnings {
		out.Warnings = append(out.Warnings, w.String())
	}
	return out
}
