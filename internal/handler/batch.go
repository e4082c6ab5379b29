package handler

import (
	"net/http"

	"github.com/actuallystonmai/movie-recommender/internal/domain"
	"github.com/actuallystonmai/movie-recommender/internal/service"
)

// GET /recommendations/batch?page=&limit=&per_user=
//
// limit is the number of users per page; per_user caps each user's list.
// Absent parameters take the service defaults.
func (h *Handler) GetBatchRecommendations(w http.ResponseWriter, r *http.Request) {
	var q domain.BatchQuery
	var ok bool
	if q.Page, ok = queryInt(w, r, "page", service.MaxBatchPage); !ok {
		return
	}
	if q.PageSize, ok = queryInt(w, r, "limit", service.MaxBatchPageSize); !ok {
		return
	}
	if q.PerUser, ok = queryInt(w, r, "per_user", service.MaxLimit); !ok {
		return
	}

	result, err := h.service.GetBatchRecommendations(r.Context(), q)
	if err != nil {
		h.logger.Warn().Err(err).Int("page", q.Page).Msg("batch recommendations failed")
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
