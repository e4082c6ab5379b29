package handler

import (
	"net/http"
	"time"

	"github.com/actuallystonmai/movie-recommender/internal/domain"
	"github.com/actuallystonmai/movie-recommender/internal/recommend"
)

// GET /users/{userID}/recommendations
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	result := h.service.GetRecommendations(r.Context(), userID, limit)
	writeJSON(w, http.StatusOK, newRecommendationResponse(userID.String(), result))
}

// POST /users/{userID}/recommendations/refresh
func (h *Handler) RefreshRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	result, err := h.service.RefreshRecommendations(r.Context(), userID, limit)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newRecommendationResponse(userID.String(), result))
}

// GET /users/{userID}/recommendations/cached
func (h *Handler) GetCachedRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	recs, err := h.service.GetCachedRecommendations(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if recs == nil {
		recs = []domain.CachedRecommendation{}
	}
	writeJSON(w, http.StatusOK, CachedRecommendationsResponse{
		UserID:          userID.String(),
		Recommendations: recs,
	})
}

func newRecommendationResponse(userID string, result recommend.Result) RecommendationResponse {
	movies := result.Movies
	if movies == nil {
		movies = []domain.Movie{}
	}
	return RecommendationResponse{
		UserID:          userID,
		Recommendations: movies,
		Metadata: domain.RecommendationMeta{
			Strategy:    string(result.Strategy),
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
			TotalCount:  len(movies),
			Warnings:    len(result.Warnings),
		},
	}
}
