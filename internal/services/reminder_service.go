package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nyumbani/billing-service/internal/constants"
	"github.com/nyumbani/billing-service/internal/repositories"
	"github.com/nyumbani/billing-service/internal/utils"
)

// RentReminderService runs the daily sweep that nudges tenants with an
// unpaid rent invoice. One lease failing never stops the sweep.
type RentReminderService struct {
	leaseRepo  repositories.LeaseRepository
	userRepo   repositories.UserProfileRepository
	rentPeriod *RentPeriodService
	notifier   Notifier
	now        func() time.Time
}

func NewRentReminderService(
	leaseRepo repositories.LeaseRepository,
	userRepo repositories.UserProfileRepository,
	rentPeriod *RentPeriodService,
	notifier Notifier,
) *RentReminderService {
	return &RentReminderService{
		leaseRepo:  leaseRepo,
		userRepo:   userRepo,
		rentPeriod: rentPeriod,
		notifier:   notifier,
		now:        time.Now,
	}
}

// RunDailyReminderSweep resolves every active lease's current invoice and
// sends a reminder for the ones still owing.
func (s *RentReminderService) RunDailyReminderSweep(ctx context.Context) {
	start := s.now()
	leases, err := s.leaseRepo.ListAllActive(ctx)
	if err != nil {
		utils.Logger.Errorf("rent reminder sweep aborted, lease listing failed: %v", err)
		return
	}

	var sent, skipped, failed int
	for _, lease := range leases {
		if ctx.Err() != nil {
			utils.Logger.Warnf("rent reminder sweep cancelled after %d leases: %v", sent+skipped+failed, ctx.Err())
			return
		}

		outcome, err := s.rentPeriod.ResolveCurrentInvoice(ctx, lease.ID)
		if err != nil {
			utils.Logger.Errorf("rent reminder sweep: lease %s resolution failed: %v", lease.ID, err)
			failed++
			continue
		}
		if outcome == nil || outcome.Invoice == nil {
			skipped++
			continue
		}
		if ClassifyInvoice(outcome.Invoice, lease) != InvoiceStateUnpaid {
			skipped++
			continue
		}
		// A prepaid lease resolves to a future period; that rent is not
		// due yet and gets no reminder.
		if utils.IsAfterMonth(outcome.Invoice.DueDate, s.now()) {
			skipped++
			continue
		}

		if err := s.remind(ctx, lease.TenantUserID, lease.OrganizationID, outcome); err != nil {
			failed++
			continue
		}
		sent++
	}

	utils.Logger.Infof("rent reminder sweep done in %s: %d sent, %d skipped, %d failed",
		time.Since(start).Round(time.Millisecond), sent, skipped, failed)
}

func (s *RentReminderService) remind(ctx context.Context, tenantUserID, organizationID uuid.UUID, outcome *ResolveOutcome) error {
	tenant, err := s.userRepo.GetByID(ctx, tenantUserID)
	if err != nil {
		utils.Logger.Warnf("rent reminder sweep: tenant %s lookup failed: %v", tenantUserID, err)
		return err
	}
	if tenant == nil {
		return fmt.Errorf("tenant %s not found", tenantUserID)
	}

	inv := outcome.Invoice
	body := fmt.Sprintf("Hi %s, your rent of %s %.2f for %s is due on %s. Please pay to avoid penalties.",
		tenant.FullName, constants.CurrencyCode, inv.Amount,
		inv.PeriodStart.UTC().Format("January 2006"),
		utils.ToISODate(inv.DueDate))

	invoiceID := inv.ID
	s.notifier.Send(ctx, Notification{
		OrganizationID:    organizationID,
		Phone:             tenant.PhoneNumber,
		Subject:           "Rent due reminder",
		Body:              body,
		RelatedEntityType: "invoice",
		RelatedEntityID:   &invoiceID,
	})
	return nil
}
