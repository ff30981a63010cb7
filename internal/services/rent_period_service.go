package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nyumbani/billing-service/internal/constants"
	"github.com/nyumbani/billing-service/internal/models"
	"github.com/nyumbani/billing-service/internal/repositories"
	"github.com/nyumbani/billing-service/internal/utils"
)

// LeaseEligibleStart returns the first month the lease owes rent. A lease
// that starts mid-month (day > 1) is not billed for the partial month; its
// eligibility begins the following month.
func LeaseEligibleStart(l *models.Lease) time.Time {
	start := l.StartDate.UTC()
	month := utils.StartOfMonthUTC(start)
	if start.Day() > 1 {
		return utils.AddMonthsUTC(month, 1)
	}
	return month
}

// NextBillablePeriod computes the month that should be billed next for the
// lease: the cached pointer (or today's month without one), advanced past
// rent_paid_until, never earlier than the eligibility start.
func NextBillablePeriod(l *models.Lease, now time.Time) time.Time {
	eligible := LeaseEligibleStart(l)

	candidate := utils.StartOfMonthUTC(now)
	if l.NextRentDueDate != nil {
		candidate = utils.StartOfMonthUTC(*l.NextRentDueDate)
	}
	if candidate.Before(eligible) {
		candidate = eligible
	}

	if l.RentPaidUntil != nil {
		paid := utils.StartOfMonthUTC(*l.RentPaidUntil)
		if !paid.Before(candidate) {
			candidate = utils.AddMonthsUTC(paid, 1)
		}
	}
	if candidate.Before(eligible) {
		candidate = eligible
	}
	return candidate
}

// RentDueDateFor derives a rent invoice's due date from its billing month.
func RentDueDateFor(period time.Time) time.Time {
	p := period.UTC()
	return time.Date(p.Year(), p.Month(), constants.RentDueDayOfMonth, 0, 0, 0, 0, time.UTC)
}

// WaterDueDateFor derives a water invoice's due date from its billing month.
func WaterDueDateFor(period time.Time) time.Time {
	p := period.UTC()
	return time.Date(p.Year(), p.Month(), constants.WaterDueDayOfMonth, 0, 0, 0, 0, time.UTC)
}

// ResolveOutcome reports what the resolver settled on. Created is true
// only when this call inserted the invoice row.
type ResolveOutcome struct {
	Invoice *models.Invoice
	Detail  *models.InvoiceDetail
	Created bool
}

type RentPeriodService struct {
	leaseRepo   repositories.LeaseRepository
	invoiceRepo repositories.InvoiceRepository
	now         func() time.Time
}

func NewRentPeriodService(leaseRepo repositories.LeaseRepository, invoiceRepo repositories.InvoiceRepository) *RentPeriodService {
	return &RentPeriodService{
		leaseRepo:   leaseRepo,
		invoiceRepo: invoiceRepo,
		now:         time.Now,
	}
}

// ResolveCurrentInvoice determines the invoice the lease currently owes.
//
// An outstanding older unpaid invoice always takes precedence over
// generating one for the current period: tenants clear old invoices before
// being shown a new one. Only when nothing genuinely unpaid exists does the
// resolver compute the next billable month and create-or-fetch its invoice.
func (s *RentPeriodService) ResolveCurrentInvoice(ctx context.Context, leaseID uuid.UUID) (*ResolveOutcome, error) {
	lease, err := s.leaseRepo.GetByID(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	if lease == nil {
		return nil, utils.ErrLeaseNotFound
	}
	if lease.MonthlyRent <= 0 {
		return nil, utils.NewValidationError("lease has no monthly rent configured", utils.ErrMissingMonthlyRent)
	}

	lease, err = s.healBillingCursor(ctx, lease)
	if err != nil {
		return nil, err
	}

	// Oldest unpaid invoice wins. The repository's "unpaid" is the raw
	// flag; the classifier drops rows the lease pointer already covers.
	unpaid, err := s.invoiceRepo.FindOldestUnpaidRent(ctx, lease.ID)
	if err != nil {
		return nil, err
	}
	for _, inv := range unpaid {
		if ClassifyInvoice(inv, lease) == InvoiceStateUnpaid {
			detail, derr := s.invoiceRepo.GetDetailByID(ctx, inv.ID)
			if derr != nil {
				return nil, derr
			}
			return &ResolveOutcome{Invoice: inv, Detail: detail, Created: false}, nil
		}
	}

	period := NextBillablePeriod(lease, s.now())
	outcome, err := s.ensureRentInvoice(ctx, lease, period)
	if err != nil {
		return nil, err
	}

	if outcome.Created {
		// Period resolution owns the forward pointer; a lost race here
		// only means the next resolution heals it again.
		cursorErr := s.leaseRepo.UpdateBillingCursor(ctx, lease.ID, constants.MaxCursorUpdateRetries, func(l *models.Lease) error {
			p := period
			if l.NextRentDueDate == nil || utils.StartOfMonthUTC(*l.NextRentDueDate).Before(p) {
				l.NextRentDueDate = &p
			}
			return nil
		})
		if cursorErr != nil {
			utils.Logger.WithError(cursorErr).Warnf("Failed to advance next_rent_due_date for lease %s", lease.ID)
		}
	}
	return outcome, nil
}

// healBillingCursor bumps a null or stale next_rent_due_date pointer up to
// the lease's eligibility start, persisting when a write is needed.
func (s *RentPeriodService) healBillingCursor(ctx context.Context, lease *models.Lease) (*models.Lease, error) {
	eligible := LeaseEligibleStart(lease)
	if lease.NextRentDueDate != nil && !utils.StartOfMonthUTC(*lease.NextRentDueDate).Before(eligible) {
		return lease, nil
	}

	err := s.leaseRepo.UpdateBillingCursor(ctx, lease.ID, constants.MaxCursorUpdateRetries, func(l *models.Lease) error {
		e := eligible
		if l.NextRentDueDate == nil || utils.StartOfMonthUTC(*l.NextRentDueDate).Before(e) {
			l.NextRentDueDate = &e
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	healed, err := s.leaseRepo.GetByID(ctx, lease.ID)
	if err != nil {
		return nil, err
	}
	if healed == nil {
		return nil, utils.ErrLeaseNotFound
	}
	return healed, nil
}

func (s *RentPeriodService) ensureRentInvoice(ctx context.Context, lease *models.Lease, period time.Time) (*ResolveOutcome, error) {
	build := func() *models.Invoice {
		return &models.Invoice{
			ID:             uuid.New(),
			LeaseID:        lease.ID,
			OrganizationID: lease.OrganizationID,
			InvoiceType:    models.InvoiceTypeRent,
			Amount:         lease.MonthlyRent,
			PeriodStart:    period,
			DueDate:        RentDueDateFor(period),
			Status:         false,
			StatusText:     utils.StrPtr(models.InvoiceStatusUnpaid),
			MonthsCovered:  1,
			Description:    fmt.Sprintf("Rent for %s", period.Format("January 2006")),
		}
	}

	outcome, err := ensureInvoiceForPeriod(ctx, s.invoiceRepo, lease.ID, models.InvoiceTypeRent, period, build)
	if err != nil {
		return nil, err
	}

	detail, err := s.invoiceRepo.GetDetailByID(ctx, outcome.Invoice.ID)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		// The row existed a moment ago; a missing refetch is not retried.
		return nil, fmt.Errorf("invoice %s vanished after create-or-fetch: %w", outcome.Invoice.ID, utils.ErrInvoicePreparation)
	}
	return &ResolveOutcome{Invoice: outcome.Invoice, Detail: detail, Created: outcome.Created}, nil
}
