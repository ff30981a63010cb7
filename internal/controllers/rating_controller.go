package controllers

import (
	"net/http"
	"strconv"

	"github.com/nyumbani/billing-service/internal/services"
	"github.com/nyumbani/billing-service/internal/utils"
)

const defaultRatingLimit = 50

type RatingController struct {
	ratingService *services.RatingService
}

func NewRatingController(s *services.RatingService) *RatingController {
	return &RatingController{ratingService: s}
}

// ----------------------------------------------------------------
// GET /api/v1/ratings?order=asc&limit=20  (manager)
// ----------------------------------------------------------------
func (c *RatingController) ListTenantRatingsHandler(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDFromContext(w, r)
	if !ok {
		return
	}

	order := r.URL.Query().Get("order")
	if order == "" {
		order = services.RatingOrderDesc
	}
	if order != services.RatingOrderDesc && order != services.RatingOrderAsc {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
			"order must be 'desc' or 'asc'", nil)
		return
	}

	limit := defaultRatingLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
				"limit must be a positive integer", nil, err)
			return
		}
		limit = parsed
	}

	ratings, err := c.ratingService.ListTenantRatings(r.Context(), orgID, order, limit)
	if err != nil {
		utils.Logger.WithError(err).Errorf("Failed to build tenant ratings for org %s", orgID)
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not build ratings", nil, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, ratings)
}
