package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nyumbani/billing-service/internal/dtos"
	"github.com/nyumbani/billing-service/internal/models"
	"github.com/nyumbani/billing-service/internal/repositories"
	"github.com/nyumbani/billing-service/internal/utils"
)

const (
	TransactionKindCharge  = "charge"
	TransactionKindPayment = "payment"
)

// Provider-side statuses that keep a payment out of the ledger even if the
// row is otherwise marked verified.
var paymentFailureStatuses = map[string]struct{}{
	"failed":    {},
	"cancelled": {},
	"canceled":  {},
	"void":      {},
	"reversed":  {},
	"rejected":  {},
	"timeout":   {},
	"expired":   {},
}

func isFailedPaymentStatus(status *string) bool {
	if status == nil {
		return false
	}
	_, ok := paymentFailureStatuses[strings.ToLower(strings.TrimSpace(*status))]
	return ok
}

// ParseStatementRange maps a caller-supplied window key to the inclusive
// start cutoff, nil meaning unbounded. Unknown keys are a validation error.
func ParseStatementRange(key string, now time.Time) (*time.Time, error) {
	months := 0
	switch key {
	case "", "all":
		return nil, nil
	case "last_month":
		months = 1
	case "3m":
		months = 3
	case "6m":
		months = 6
	case "year":
		months = 12
	default:
		return nil, utils.NewValidationError(
			fmt.Sprintf("unknown statement range %q", key), utils.ErrInvalidRangeKey)
	}
	cutoff := utils.DateOnlyUTC(utils.AddMonthsUTC(now, -months))
	return &cutoff, nil
}

// AssembleStatement merges invoice charges and verified payments into one
// chronological, balance-tracked transaction list.
//
// The full unfiltered sequence is always computed first and only then
// sliced to the requested window; the opening balance of a filtered view
// is the balance_after of the last transaction strictly before the cutoff.
// Filtering before computing balances would corrupt that figure.
func AssembleStatement(
	leases []*models.Lease,
	invoices []*models.Invoice,
	payments []*models.Payment,
	windowStart *time.Time,
) *dtos.StatementResponse {
	leaseByID := make(map[uuid.UUID]*models.Lease, len(leases))
	for _, l := range leases {
		leaseByID[l.ID] = l
	}

	entries := make([]dtos.StatementTransactionDTO, 0, len(invoices)+len(payments))

	// Charges first so the later stable sort keeps a same-timestamp
	// invoice+payment pair in charge-then-payment order.
	for _, inv := range invoices {
		lease := leaseByID[inv.LeaseID]
		state := ClassifyInvoice(inv, lease)
		if state == InvoiceStateVoid {
			continue
		}

		entry := dtos.StatementTransactionDTO{
			ID:          inv.ID,
			Kind:        TransactionKindCharge,
			Description: chargeDescription(inv),
			Amount:      inv.Amount,
			PostedAt:    inv.DueDate.UTC(),
		}
		if state == InvoiceStateCovered {
			// Keep a visible allocation marker instead of dropping the row.
			entry.Amount = 0
			entry.CoverageLabel = utils.StrPtr(coverageLabel(inv, lease))
		}
		entries = append(entries, entry)
	}

	for _, p := range payments {
		if !p.Verified || isFailedPaymentStatus(p.ProviderStatus) {
			continue
		}
		entries = append(entries, dtos.StatementTransactionDTO{
			ID:          p.ID,
			Kind:        TransactionKindPayment,
			Description: paymentDescription(p),
			Reference:   p.Reference(),
			Amount:      -p.AmountPaid,
			PostedAt:    p.PaymentDate.UTC(),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].PostedAt.Before(entries[j].PostedAt)
	})

	var running float64
	for i := range entries {
		running += entries[i].Amount
		entries[i].BalanceAfter = round2(running)
	}

	return sliceToWindow(entries, windowStart)
}

func sliceToWindow(entries []dtos.StatementTransactionDTO, windowStart *time.Time) *dtos.StatementResponse {
	opening := 0.0
	window := entries
	if windowStart != nil {
		cutoff := utils.DateOnlyUTC(*windowStart)
		first := len(entries)
		for i, e := range entries {
			if !utils.DateOnlyUTC(e.PostedAt).Before(cutoff) {
				first = i
				break
			}
		}
		if first > 0 {
			opening = entries[first-1].BalanceAfter
		}
		window = entries[first:]
	}

	var totalCharges, totalPayments float64
	for _, e := range window {
		if e.Amount >= 0 {
			totalCharges += e.Amount
		} else {
			totalPayments += -e.Amount
		}
	}
	closing := opening
	if len(window) > 0 {
		closing = window[len(window)-1].BalanceAfter
	}

	resp := &dtos.StatementResponse{
		Summary: dtos.StatementSummaryDTO{
			OpeningBalance: round2(opening),
			ClosingBalance: round2(closing),
			TotalCharges:   round2(totalCharges),
			TotalPayments:  round2(totalPayments),
		},
		Transactions: window,
	}
	if windowStart != nil {
		resp.Period.Start = utils.StrPtr(utils.ToISODate(*windowStart))
	}
	if resp.Transactions == nil {
		resp.Transactions = []dtos.StatementTransactionDTO{}
	}
	return resp
}

func chargeDescription(inv *models.Invoice) string {
	if inv.Description != "" {
		return inv.Description
	}
	switch inv.InvoiceType {
	case models.InvoiceTypeWater:
		return fmt.Sprintf("Water for %s", inv.PeriodStart.UTC().Format("January 2006"))
	default:
		return fmt.Sprintf("Rent for %s", inv.PeriodStart.UTC().Format("January 2006"))
	}
}

func paymentDescription(p *models.Payment) string {
	switch p.PaymentMethod {
	case models.PaymentMethodMpesa:
		return "M-Pesa payment"
	case models.PaymentMethodBankTransfer:
		return "Bank transfer"
	default:
		return "Payment"
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

/* ------------------------------------------------------------------
   Orchestration
------------------------------------------------------------------ */

type StatementService struct {
	leaseRepo   repositories.LeaseRepository
	invoiceRepo repositories.InvoiceRepository
	paymentRepo repositories.PaymentRepository
	now         func() time.Time
}

func NewStatementService(
	leaseRepo repositories.LeaseRepository,
	invoiceRepo repositories.InvoiceRepository,
	paymentRepo repositories.PaymentRepository,
) *StatementService {
	return &StatementService{
		leaseRepo:   leaseRepo,
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		now:         time.Now,
	}
}

// GetTenantStatement assembles the statement across all of a tenant's
// leases for the requested window.
func (s *StatementService) GetTenantStatement(ctx context.Context, tenantUserID uuid.UUID, rangeKey string) (*dtos.StatementResponse, error) {
	nowUTC := s.now().UTC()
	cutoff, err := ParseStatementRange(rangeKey, nowUTC)
	if err != nil {
		return nil, err
	}

	leases, err := s.leaseRepo.ListByTenant(ctx, tenantUserID)
	if err != nil {
		return nil, err
	}
	leaseIDs := make([]uuid.UUID, 0, len(leases))
	for _, l := range leases {
		leaseIDs = append(leaseIDs, l.ID)
	}

	invoices, err := s.invoiceRepo.ListByLeases(ctx, leaseIDs)
	if err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.ListVerifiedByTenant(ctx, tenantUserID)
	if err != nil {
		return nil, err
	}

	resp := AssembleStatement(leases, invoices, payments, cutoff)
	resp.Period.End = utils.StrPtr(utils.ToISODate(nowUTC))
	return resp, nil
}

// GetLeaseStatement scopes the statement to a single lease.
func (s *StatementService) GetLeaseStatement(ctx context.Context, leaseID uuid.UUID, rangeKey string) (*dtos.StatementResponse, error) {
	nowUTC := s.now().UTC()
	cutoff, err := ParseStatementRange(rangeKey, nowUTC)
	if err != nil {
		return nil, err
	}

	lease, err := s.leaseRepo.GetByID(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	if lease == nil {
		return nil, utils.ErrLeaseNotFound
	}

	invoices, err := s.invoiceRepo.ListByLease(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.ListVerifiedByTenant(ctx, lease.TenantUserID)
	if err != nil {
		return nil, err
	}
	// Keep only payments against this lease's invoices.
	invoiceIDs := make(map[uuid.UUID]struct{}, len(invoices))
	for _, inv := range invoices {
		invoiceIDs[inv.ID] = struct{}{}
	}
	scoped := payments[:0:0]
	for _, p := range payments {
		if _, ok := invoiceIDs[p.InvoiceID]; ok {
			scoped = append(scoped, p)
		}
	}

	resp := AssembleStatement([]*models.Lease{lease}, invoices, scoped, cutoff)
	resp.Period.End = utils.StrPtr(utils.ToISODate(nowUTC))
	return resp, nil
}
