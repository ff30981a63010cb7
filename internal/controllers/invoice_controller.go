package controllers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/nyumbani/billing-service/internal/dtos"
	"github.com/nyumbani/billing-service/internal/models"
	"github.com/nyumbani/billing-service/internal/repositories"
	"github.com/nyumbani/billing-service/internal/services"
	"github.com/nyumbani/billing-service/internal/utils"
)

type InvoiceController struct {
	rentPeriodService *services.RentPeriodService
	invoiceRepo       repositories.InvoiceRepository
	leaseRepo         repositories.LeaseRepository
}

func NewInvoiceController(
	rentPeriodService *services.RentPeriodService,
	invoiceRepo repositories.InvoiceRepository,
	leaseRepo repositories.LeaseRepository,
) *InvoiceController {
	return &InvoiceController{
		rentPeriodService: rentPeriodService,
		invoiceRepo:       invoiceRepo,
		leaseRepo:         leaseRepo,
	}
}

// ----------------------------------------------------------------
// GET /api/v1/leases/{lease_id}/current-invoice
// ----------------------------------------------------------------
func (c *InvoiceController) ResolveCurrentInvoiceHandler(w http.ResponseWriter, r *http.Request) {
	leaseID, err := uuid.Parse(mux.Vars(r)["lease_id"])
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid lease_id", nil, err)
		return
	}

	outcome, svcErr := c.rentPeriodService.ResolveCurrentInvoice(r.Context(), leaseID)
	if svcErr != nil {
		if errors.Is(svcErr, utils.ErrLeaseNotFound) {
			utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Lease not found", nil)
			return
		}
		var appErr *utils.AppError
		if errors.As(svcErr, &appErr) {
			utils.HandleAppError(w, svcErr)
			return
		}
		utils.Logger.WithError(svcErr).Errorf("Failed to resolve current invoice for lease %s", leaseID)
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not resolve invoice", nil, svcErr)
		return
	}

	lease, err := c.leaseRepo.GetByID(r.Context(), leaseID)
	if err != nil {
		utils.Logger.WithError(err).Errorf("Failed to load lease %s after resolution", leaseID)
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not resolve invoice", nil, err)
		return
	}

	resp := dtos.ResolveInvoiceResponse{
		Invoice: invoiceToDTO(outcome.Invoice, outcome.Detail, lease),
		Created: outcome.Created,
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ----------------------------------------------------------------
// GET /api/v1/leases/{lease_id}/invoices
// ----------------------------------------------------------------
func (c *InvoiceController) ListLeaseInvoicesHandler(w http.ResponseWriter, r *http.Request) {
	leaseID, err := uuid.Parse(mux.Vars(r)["lease_id"])
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid lease_id", nil, err)
		return
	}

	lease, err := c.leaseRepo.GetByID(r.Context(), leaseID)
	if err != nil {
		utils.Logger.WithError(err).Errorf("Failed to load lease %s", leaseID)
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not list invoices", nil, err)
		return
	}
	if lease == nil {
		utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Lease not found", nil)
		return
	}

	invoices, err := c.invoiceRepo.ListByLease(r.Context(), leaseID)
	if err != nil {
		utils.Logger.WithError(err).Errorf("Failed to list invoices for lease %s", leaseID)
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not list invoices", nil, err)
		return
	}

	out := make([]dtos.InvoiceDTO, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, invoiceToDTO(inv, nil, lease))
	}
	utils.RespondWithJSON(w, http.StatusOK, out)
}

func invoiceToDTO(inv *models.Invoice, detail *models.InvoiceDetail, lease *models.Lease) dtos.InvoiceDTO {
	dto := dtos.InvoiceDTO{
		ID:            inv.ID,
		LeaseID:       inv.LeaseID,
		InvoiceType:   string(inv.InvoiceType),
		Amount:        inv.Amount,
		PeriodStart:   utils.ToISODate(inv.PeriodStart),
		DueDate:       utils.ToISODate(inv.DueDate),
		StatusText:    inv.StatusText,
		MonthsCovered: inv.MonthsCovered,
		Description:   inv.Description,
		State:         string(services.ClassifyInvoice(inv, lease)),
		CreatedAt:     inv.CreatedAt,
	}
	if detail != nil {
		dto.TenantName = detail.TenantName
		dto.UnitNumber = detail.UnitNumber
		dto.BuildingName = detail.BuildingName
		dto.PropertyName = detail.PropertyName
	}
	return dto
}
