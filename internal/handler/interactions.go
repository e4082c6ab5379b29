package handler

import (
	"context"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/actuallystonmai/movie-recommender/internal/domain"
	"github.com/actuallystonmai/movie-recommender/internal/recommend"
)

// POST /users/{userID}/favorites
func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	h.addToList(w, r, domain.ActionFavorite, h.service.AddFavorite)
}

// POST /users/{userID}/watchlist
func (h *Handler) AddToWatchlist(w http.ResponseWriter, r *http.Request) {
	h.addToList(w, r, domain.ActionWatchlist, h.service.AddToWatchlist)
}

// DELETE /users/{userID}/favorites/{movieID}
func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}
	movieID, ok := parseMovieID(w, r)
	if !ok {
		return
	}

	res, err := h.service.RemoveFavorite(r.Context(), userID, movieID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newInteractionResponse(userID, movieID, domain.ActionUnfavorite, res))
}

// DELETE /users/{userID}/watchlist/{movieID}
func (h *Handler) RemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}
	movieID, ok := parseMovieID(w, r)
	if !ok {
		return
	}

	if err := h.service.RemoveFromWatchlist(r.Context(), userID, movieID); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addToList(w http.ResponseWriter, r *http.Request, action domain.Action,
	add func(ctx context.Context, userID uuid.UUID, movie domain.Movie) (recommend.UpdateResult, error)) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	var req MovieRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	res, err := add(r.Context(), userID, req.Movie())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newInteractionResponse(userID, req.MovieID, action, res))
}

func newInteractionResponse(userID uuid.UUID, movieID int64, action domain.Action, res recommend.UpdateResult) InteractionResponse {
	out := InteractionResponse{
		UserID:           userID.String(),
		MovieID:          movieID,
		Action:           string(action),
		GenresUpdated:    res.GenreIDs,
		FeaturesCaptured: res.FeaturesWritten,
	}
	if out.GenresUpdated == nil {
		out.GenresUpdated = []int{}
	}
	for _, w := range res.Warnings {
		out.Warnings = append(out.Warnings, w.String())
	}
	return out
}
