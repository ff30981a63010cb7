package controllers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/nyumbani/billing-service/internal/services"
	"github.com/nyumbani/billing-service/internal/utils"
)

type StatementController struct {
	statementService *services.StatementService
}

func NewStatementController(s *services.StatementService) *StatementController {
	return &StatementController{statementService: s}
}

// ----------------------------------------------------------------
// GET /api/v1/statements/me?range=3m
// ----------------------------------------------------------------
func (c *StatementController) GetMyStatementHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(w, r)
	if !ok {
		return
	}

	resp, err := c.statementService.GetTenantStatement(r.Context(), userID, r.URL.Query().Get("range"))
	if err != nil {
		var appErr *utils.AppError
		if errors.As(err, &appErr) {
			utils.HandleAppError(w, appErr)
			return
		}
		utils.Logger.WithError(err).Errorf("Failed to build statement for tenant %s", userID)
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not build statement", nil, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ----------------------------------------------------------------
// GET /api/v1/statements/tenants/{tenant_id}?range=6m  (manager)
// ----------------------------------------------------------------
func (c *StatementController) GetTenantStatementHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uuid.Parse(mux.Vars(r)["tenant_id"])
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid tenant_id", nil, err)
		return
	}

	resp, err := c.statementService.GetTenantStatement(r.Context(), tenantID, r.URL.Query().Get("range"))
	if err != nil {
		var appErr *utils.AppError
		if errors.As(err, &appErr) {
			utils.HandleAppError(w, appErr)
			return
		}
		utils.Logger.WithError(err).Errorf("Failed to build statement for tenant %s", tenantID)
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not build statement", nil, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ----------------------------------------------------------------
// GET /api/v1/statements/leases/{lease_id}?range=year
// ----------------------------------------------------------------
func (c *StatementController) GetLeaseStatementHandler(w http.ResponseWriter, r *http.Request) {
	leaseID, err := uuid.Parse(mux.Vars(r)["lease_id"])
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid lease_id", nil, err)
		return
	}

	resp, err := c.statementService.GetLeaseStatement(r.Context(), leaseID, r.URL.Query().Get("range"))
	if err != nil {
		if errors.Is(err, utils.ErrLeaseNotFound) {
			utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Lease not found", nil)
			return
		}
		var appErr *utils.AppError
		if errors.As(err, &appErr) {
			utils.HandleAppError(w, appErr)
			return
		}
		utils.Logger.WithError(err).Errorf("Failed to build statement for lease %s", leaseID)
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not build statement", nil, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, resp)
}
