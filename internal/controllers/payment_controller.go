package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/nyumbani/billing-service/internal/dtos"
	"github.com/nyumbani/billing-service/internal/models"
	"github.com/nyumbani/billing-service/internal/services"
	"github.com/nyumbani/billing-service/internal/utils"
)

var paymentValidate = validator.New()

type PaymentController struct {
	paymentService *services.PaymentService
}

func NewPaymentController(s *services.PaymentService) *PaymentController {
	return &PaymentController{paymentService: s}
}

// ----------------------------------------------------------------
// POST /api/v1/payments
// ----------------------------------------------------------------
func (c *PaymentController) SubmitPaymentHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(w, r)
	if !ok {
		return
	}

	var req dtos.SubmitPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON body", nil, err)
		return
	}
	if err := paymentValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil, err)
		return
	}

	payment, err := c.paymentService.SubmitPayment(r.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, utils.ErrInvoiceNotFound) {
			utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Invoice not found", nil)
			return
		}
		var appErr *utils.AppError
		if errors.As(err, &appErr) {
			utils.HandleAppError(w, err)
			return
		}
		utils.Logger.WithError(err).Errorf("Failed to submit payment for tenant %s", userID)
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not submit payment", nil, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, paymentToDTO(payment))
}

// ----------------------------------------------------------------
// POST /api/v1/payments/{payment_id}/verify  (manager)
// ----------------------------------------------------------------
func (c *PaymentController) VerifyPaymentHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(w, r)
	if !ok {
		return
	}
	paymentID, err := uuid.Parse(mux.Vars(r)["payment_id"])
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payment_id", nil, err)
		return
	}

	payment, err := c.paymentService.VerifyPayment(r.Context(), paymentID, userID)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrPaymentNotFound):
			utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Payment not found", nil)
		case errors.Is(err, utils.ErrPaymentAlreadyVerified):
			utils.RespondErrorWithCode(w, http.StatusConflict, utils.ErrCodeConflict, "Payment already verified", nil)
		default:
			utils.Logger.WithError(err).Errorf("Failed to verify payment %s", paymentID)
			utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not verify payment", nil, err)
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, paymentToDTO(payment))
}

// ----------------------------------------------------------------
// POST /api/v1/payments/{payment_id}/reject  (manager)
// ----------------------------------------------------------------
func (c *PaymentController) RejectPaymentHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(w, r)
	if !ok {
		return
	}
	paymentID, err := uuid.Parse(mux.Vars(r)["payment_id"])
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payment_id", nil, err)
		return
	}

	var req dtos.RejectPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON body", nil, err)
		return
	}
	if err := paymentValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil, err)
		return
	}

	if err := c.paymentService.RejectPayment(r.Context(), paymentID, userID, req.Reason); err != nil {
		switch {
		case errors.Is(err, utils.ErrPaymentNotFound):
			utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Payment not found", nil)
		case errors.Is(err, utils.ErrPaymentAlreadyVerified):
			utils.RespondErrorWithCode(w, http.StatusConflict, utils.ErrCodeConflict, "Payment already verified", nil)
		default:
			utils.Logger.WithError(err).Errorf("Failed to reject payment %s", paymentID)
			utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not reject payment", nil, err)
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}

func paymentToDTO(p *models.Payment) dtos.PaymentDTO {
	return dtos.PaymentDTO{
		ID:            p.ID,
		InvoiceID:     p.InvoiceID,
		AmountPaid:    p.AmountPaid,
		PaymentMethod: string(p.PaymentMethod),
		PaymentDate:   p.PaymentDate,
		Verified:      p.Verified,
		MonthsPaid:    p.MonthsPaid,
		VerifiedAt:    p.VerifiedAt,
		Reference:     p.Reference(),
		Notes:         p.Notes,
	}
}
