package services

import (
	"strings"

	"github.com/nyumbani/billing-service/internal/models"
	"github.com/nyumbani/billing-service/internal/utils"
)

// InvoiceState is the closed classification every consumer works from,
// computed once here instead of re-sniffing the legacy status columns at
// each call site.
type InvoiceState string

const (
	InvoiceStateUnpaid  InvoiceState = "UNPAID"
	InvoiceStateCovered InvoiceState = "COVERED"
	InvoiceStatePaid    InvoiceState = "PAID"
	InvoiceStateVoid    InvoiceState = "VOID"
)

// Legacy rows spell "paid" several ways; the boolean flag wins, then the
// free-text variants.
var paidStatusSpellings = map[string]struct{}{
	"paid":     {},
	"verified": {},
	"settled":  {},
	"true":     {},
}

func normalizedStatusText(inv *models.Invoice) string {
	if inv.StatusText == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*inv.StatusText))
}

func isExplicitlyPaid(inv *models.Invoice) bool {
	if inv.Status {
		return true
	}
	_, ok := paidStatusSpellings[normalizedStatusText(inv)]
	return ok
}

// ClassifyInvoice decides how an invoice counts for owed/unpaid reporting.
//
// Rent invoices are Covered when the lease's rent_paid_until pointer
// already subsumes their due month, or when their due month precedes the
// lease's eligibility start (a pre-start row that should never have been
// billed). Both checks are month-granular. Water invoices only settle via
// their own status; rent coverage never pays a water bill.
func ClassifyInvoice(inv *models.Invoice, lease *models.Lease) InvoiceState {
	if normalizedStatusText(inv) == models.InvoiceStatusVoid {
		return InvoiceStateVoid
	}
	if isExplicitlyPaid(inv) {
		return InvoiceStatePaid
	}
	if lease != nil && inv.InvoiceType == models.InvoiceTypeRent {
		due := utils.StartOfMonthUTC(inv.DueDate)
		if lease.RentPaidUntil != nil && !utils.IsAfterMonth(due, *lease.RentPaidUntil) {
			return InvoiceStateCovered
		}
		if utils.IsBeforeMonth(due, LeaseEligibleStart(lease)) {
			return InvoiceStateCovered
		}
	}
	return InvoiceStateUnpaid
}

// IsSettled reports whether the invoice should be excluded from "unpaid"
// aggregation.
func IsSettled(state InvoiceState) bool {
	return state != InvoiceStateUnpaid
}

// coverageLabel distinguishes the two covered cases for statement display.
func coverageLabel(inv *models.Invoice, lease *models.Lease) string {
	if lease != nil && utils.IsBeforeMonth(utils.StartOfMonthUTC(inv.DueDate), LeaseEligibleStart(lease)) {
		return "pre_start"
	}
	return "covered"
}
