package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/nyumbani/billing-service/internal/models"
	"github.com/nyumbani/billing-service/internal/utils"
)

func testLease(startDate time.Time, paidUntil *time.Time) *models.Lease {
	return &models.Lease{
		ID:            uuid.New(),
		TenantUserID:  uuid.New(),
		StartDate:     startDate,
		MonthlyRent:   25000,
		Status:        models.LeaseStatusActive,
		RentPaidUntil: paidUntil,
	}
}

func rentInvoice(leaseID uuid.UUID, period time.Time, statusText string) *models.Invoice {
	inv := &models.Invoice{
		ID:          uuid.New(),
		LeaseID:     leaseID,
		InvoiceType: models.InvoiceTypeRent,
		Amount:      25000,
		PeriodStart: period,
		DueDate:     RentDueDateFor(period),
	}
	if statusText != "" {
		inv.StatusText = &statusText
	}
	return inv
}

func TestClassifyInvoiceVoidWinsOverEverything(t *testing.T) {
	paidUntil := day(2024, time.December, 1)
	lease := testLease(day(2024, time.January, 1), &paidUntil)
	inv := rentInvoice(lease.ID, day(2024, time.June, 1), models.InvoiceStatusVoid)

	require.Equal(t, InvoiceStateVoid, ClassifyInvoice(inv, lease))
}

func TestClassifyInvoicePaidSpellings(t *testing.T) {
	lease := testLease(day(2024, time.January, 1), nil)

	for _, spelling := range []string{"paid", "Paid", " VERIFIED ", "settled", "true"} {
		inv := rentInvoice(lease.ID, day(2024, time.June, 1), spelling)
		require.Equal(t, InvoiceStatePaid, ClassifyInvoice(inv, lease), "spelling %q", spelling)
	}

	// Boolean flag wins even with no status text.
	inv := rentInvoice(lease.ID, day(2024, time.June, 1), "")
	inv.Status = true
	require.Equal(t, InvoiceStatePaid, ClassifyInvoice(inv, lease))
}

func TestClassifyInvoiceCoverageByPointer(t *testing.T) {
	paidUntil := day(2024, time.June, 1)
	lease := testLease(day(2024, time.January, 1), &paidUntil)

	// Due month at or before the pointer month is covered even though the
	// raw status still says unpaid.
	for _, period := range []time.Time{day(2024, time.April, 1), day(2024, time.June, 1)} {
		inv := rentInvoice(lease.ID, period, models.InvoiceStatusUnpaid)
		require.Equal(t, InvoiceStateCovered, ClassifyInvoice(inv, lease),
			"period %s", utils.ToISODate(period))
	}

	inv := rentInvoice(lease.ID, day(2024, time.July, 1), models.InvoiceStatusUnpaid)
	require.Equal(t, InvoiceStateUnpaid, ClassifyInvoice(inv, lease))
}

func TestClassifyInvoicePreStartCoverage(t *testing.T) {
	// Mid-month start: eligibility begins the following month, so a March
	// invoice on a March-15 lease is a pre-start row.
	lease := testLease(day(2024, time.March, 15), nil)
	require.Equal(t, day(2024, time.April, 1), LeaseEligibleStart(lease))

	preStart := rentInvoice(lease.ID, day(2024, time.March, 1), models.InvoiceStatusUnpaid)
	require.Equal(t, InvoiceStateCovered, ClassifyInvoice(preStart, lease))

	first := rentInvoice(lease.ID, day(2024, time.April, 1), models.InvoiceStatusUnpaid)
	require.Equal(t, InvoiceStateUnpaid, ClassifyInvoice(first, lease))
}

func TestClassifyInvoiceWaterNeverCoveredByRentPointer(t *testing.T) {
	paidUntil := day(2024, time.December, 1)
	lease := testLease(day(2024, time.January, 1), &paidUntil)

	water := rentInvoice(lease.ID, day(2024, time.June, 1), models.InvoiceStatusUnpaid)
	water.InvoiceType = models.InvoiceTypeWater

	require.Equal(t, InvoiceStateUnpaid, ClassifyInvoice(water, lease))
}

func TestLeaseEligibleStartFirstOfMonth(t *testing.T) {
	lease := testLease(day(2024, time.March, 1), nil)
	require.Equal(t, day(2024, time.March, 1), LeaseEligibleStart(lease))
}

func TestNextBillablePeriod(t *testing.T) {
	now := day(2024, time.June, 10)

	// No cursor at all: bill the current month.
	lease := testLease(day(2024, time.January, 1), nil)
	require.Equal(t, day(2024, time.June, 1), NextBillablePeriod(lease, now))

	// Pointer behind rent_paid_until: advance past the paid month.
	paidUntil := day(2024, time.July, 1)
	lease = testLease(day(2024, time.January, 1), &paidUntil)
	require.Equal(t, day(2024, time.August, 1), NextBillablePeriod(lease, now))

	// Eligibility clamps a too-early candidate.
	lease = testLease(day(2024, time.August, 20), nil)
	require.Equal(t, day(2024, time.September, 1), NextBillablePeriod(lease, now))
}
