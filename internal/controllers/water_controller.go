package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/nyumbani/billing-service/internal/dtos"
	"github.com/nyumbani/billing-service/internal/services"
	"github.com/nyumbani/billing-service/internal/utils"
)

var waterValidate = validator.New()

type WaterController struct {
	waterService *services.WaterBillingService
}

func NewWaterController(s *services.WaterBillingService) *WaterController {
	return &WaterController{waterService: s}
}

// ----------------------------------------------------------------
// POST /api/v1/water/readings  (manager)
// ----------------------------------------------------------------
func (c *WaterController) RecordReadingsHandler(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDFromContext(w, r)
	if !ok {
		return
	}

	var req dtos.RecordWaterReadingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON body", nil, err)
		return
	}
	if err := waterValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil, err)
		return
	}

	bills, err := c.waterService.RecordReadings(r.Context(), orgID, &req)
	if err != nil {
		if errors.Is(err, utils.ErrLeaseNotFound) {
			utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Lease not found", nil)
			return
		}
		utils.Logger.WithError(err).Errorf("Failed to record water readings for org %s", orgID)
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not record readings", nil, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, bills)
}

// ----------------------------------------------------------------
// POST /api/v1/water/post-bills  (manager)
// ----------------------------------------------------------------
func (c *WaterController) PostPendingBillsHandler(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDFromContext(w, r)
	if !ok {
		return
	}

	result, err := c.waterService.PostPendingBills(r.Context(), orgID)
	if err != nil {
		utils.Logger.WithError(err).Errorf("Failed to post water bills for org %s", orgID)
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not post water bills", nil, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, result)
}
