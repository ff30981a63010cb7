package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nyumbani/billing-service/internal/dtos"
	"github.com/nyumbani/billing-service/internal/models"
	"github.com/nyumbani/billing-service/internal/repositories"
	"github.com/nyumbani/billing-service/internal/utils"
)

type WaterBillingService struct {
	waterRepo   repositories.WaterBillRepository
	invoiceRepo repositories.InvoiceRepository
	leaseRepo   repositories.LeaseRepository
	now         func() time.Time
}

func NewWaterBillingService(
	waterRepo repositories.WaterBillRepository,
	invoiceRepo repositories.InvoiceRepository,
	leaseRepo repositories.LeaseRepository,
) *WaterBillingService {
	return &WaterBillingService{
		waterRepo:   waterRepo,
		invoiceRepo: invoiceRepo,
		leaseRepo:   leaseRepo,
		now:         time.Now,
	}
}

// RecordReadings stores meter readings as pending water bills. Amounts
// are computed server side from consumption and rate.
func (s *WaterBillingService) RecordReadings(ctx context.Context, organizationID uuid.UUID, req *dtos.RecordWaterReadingsRequest) ([]*models.WaterBill, error) {
	nowUTC := s.now().UTC()
	bills := make([]*models.WaterBill, 0, len(req.Readings))
	for _, r := range req.Readings {
		lease, err := s.leaseRepo.GetByID(ctx, r.LeaseID)
		if err != nil {
			return nil, err
		}
		if lease == nil {
			return nil, utils.ErrLeaseNotFound
		}
		if lease.OrganizationID != organizationID {
			return nil, utils.ErrLeaseNotFound
		}

		consumption := r.CurrentReading - r.PreviousReading
		bill := &models.WaterBill{
			ID:              uuid.New(),
			LeaseID:         r.LeaseID,
			OrganizationID:  organizationID,
			PeriodStart:     utils.StartOfMonthUTC(r.PeriodStart),
			PreviousReading: r.PreviousReading,
			CurrentReading:  r.CurrentReading,
			RatePerUnit:     r.RatePerUnit,
			Amount:          consumption * r.RatePerUnit,
			Status:          models.WaterBillStatusPending,
			CreatedAt:       nowUTC,
			UpdatedAt:       nowUTC,
		}
		if err := s.waterRepo.Create(ctx, bill); err != nil {
			return nil, err
		}
		bills = append(bills, bill)
	}
	return bills, nil
}

// PostPendingBills converts every pending water bill in the organization
// into a water invoice. A failing bill is logged, counted, and left
// pending for the next sweep; the rest of the batch proceeds.
func (s *WaterBillingService) PostPendingBills(ctx context.Context, organizationID uuid.UUID) (*dtos.WaterPostingResultDTO, error) {
	pending, err := s.waterRepo.ListPendingByOrganization(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	result := &dtos.WaterPostingResultDTO{Pending: len(pending)}
	for _, bill := range pending {
		created, err := s.postBill(ctx, bill)
		if err != nil {
			utils.Logger.Errorf("failed to post water bill %s: %v", bill.ID, err)
			result.Failed++
			continue
		}
		if created {
			result.Billed++
		} else {
			result.Skipped++
		}
	}
	return result, nil
}

func (s *WaterBillingService) postBill(ctx context.Context, bill *models.WaterBill) (bool, error) {
	period := utils.StartOfMonthUTC(bill.PeriodStart)
	nowUTC := s.now().UTC()

	build := func() *models.Invoice {
		statusText := models.InvoiceStatusUnpaid
		return &models.Invoice{
			ID:             uuid.New(),
			LeaseID:        bill.LeaseID,
			OrganizationID: bill.OrganizationID,
			InvoiceType:    models.InvoiceTypeWater,
			Amount:         bill.Amount,
			PeriodStart:    period,
			DueDate:        WaterDueDateFor(period),
			Status:         false,
			StatusText:     &statusText,
			MonthsCovered:  1,
			Description: fmt.Sprintf("Water for %s (%.1f units)",
				period.Format("January 2006"), bill.CurrentReading-bill.PreviousReading),
			CreatedAt: nowUTC,
			UpdatedAt: nowUTC,
		}
	}

	outcome, err := ensureInvoiceForPeriod(ctx, s.invoiceRepo, bill.LeaseID, models.InvoiceTypeWater, period, build)
	if err != nil {
		return false, err
	}
	if err := s.waterRepo.MarkBilled(ctx, bill.ID, outcome.Invoice.ID); err != nil {
		return false, err
	}
	return outcome.Created, nil
}
