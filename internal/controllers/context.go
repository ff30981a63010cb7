package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/nyumbani/billing-service/internal/middleware"
	"github.com/nyumbani/billing-service/internal/utils"
)

// userIDFromContext pulls the authenticated user out of the request
// context. A false return means the 401 has already been written.
func userIDFromContext(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	ctxUserID := r.Context().Value(middleware.ContextKeyUserID)
	if ctxUserID == nil {
		utils.RespondErrorWithCode(
			w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "No userID in context", nil,
		)
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(ctxUserID.(string))
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Malformed userID in context", nil, err,
		)
		return uuid.Nil, false
	}
	return userID, true
}

func orgIDFromContext(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	ctxOrgID := r.Context().Value(middleware.ContextKeyOrgID)
	orgStr, _ := ctxOrgID.(string)
	if orgStr == "" {
		utils.RespondErrorWithCode(
			w, http.StatusForbidden, utils.ErrCodeForbidden, "No organization in context", nil,
		)
		return uuid.Nil, false
	}
	orgID, err := uuid.Parse(orgStr)
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusForbidden, utils.ErrCodeForbidden, "Malformed organization in context", nil, err,
		)
		return uuid.Nil, false
	}
	return orgID, true
}
