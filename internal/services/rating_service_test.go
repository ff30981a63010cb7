package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/nyumbani/billing-service/internal/models"
)

func TestRateTenantNullSafety(t *testing.T) {
	got := AggregateTenantRatings([]TenantRatingInput{
		{TenantID: uuid.New(), Name: "Akinyi Odhiambo"},
	}, day(2024, time.June, 1), RatingOrderDesc, 0)

	require.Len(t, got, 1)
	require.Nil(t, got[0].OnTimeRate)
	require.Equal(t, RatingBucketNone, got[0].Bucket)
	require.Zero(t, got[0].Payments)
}

func TestRateTenantMeanAndBuckets(t *testing.T) {
	lease := testLease(day(2024, time.January, 1), nil)
	inv1 := rentInvoice(lease.ID, day(2024, time.March, 1), models.InvoiceStatusPaid)
	inv2 := rentInvoice(lease.ID, day(2024, time.April, 1), models.InvoiceStatusPaid)

	// Day 4 scores 100, day 20 scores 80: mean 90, green.
	in := TenantRatingInput{
		TenantID: lease.TenantUserID,
		Name:     "Njeri Mwangi",
		Leases:   []*models.Lease{lease},
		Invoices: []*models.Invoice{inv1, inv2},
		Payments: []*models.Payment{
			verifiedPayment(inv1.ID, lease.TenantUserID, 25000, day(2024, time.March, 4)),
			verifiedPayment(inv2.ID, lease.TenantUserID, 25000, day(2024, time.April, 20)),
		},
	}

	got := AggregateTenantRatings([]TenantRatingInput{in}, day(2024, time.June, 1), RatingOrderDesc, 0)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].OnTimeRate)
	require.Equal(t, 90, *got[0].OnTimeRate)
	require.Equal(t, RatingBucketGreen, got[0].Bucket)
	require.Equal(t, 2, got[0].Payments)
}

func TestRateTenantOverduePenalty(t *testing.T) {
	lease := testLease(day(2024, time.January, 1), nil)
	inv := rentInvoice(lease.ID, day(2024, time.June, 1), models.InvoiceStatusUnpaid)

	in := TenantRatingInput{
		TenantID: lease.TenantUserID,
		Leases:   []*models.Lease{lease},
		Invoices: []*models.Invoice{inv},
	}

	// Before the 25th the unpaid invoice contributes nothing.
	got := AggregateTenantRatings([]TenantRatingInput{in}, day(2024, time.June, 24), RatingOrderDesc, 0)
	require.Nil(t, got[0].OnTimeRate)
	require.Equal(t, RatingBucketNone, got[0].Bucket)

	// From the 25th it contributes one 60-point penalty entry.
	got = AggregateTenantRatings([]TenantRatingInput{in}, day(2024, time.June, 25), RatingOrderDesc, 0)
	require.NotNil(t, got[0].OnTimeRate)
	require.Equal(t, 60, *got[0].OnTimeRate)
	require.Equal(t, RatingBucketRed, got[0].Bucket)
	require.Zero(t, got[0].Payments, "penalties are not payments")
}

func TestRateTenantCoveredInvoiceNeverPenalized(t *testing.T) {
	paidUntil := day(2024, time.June, 1)
	lease := testLease(day(2024, time.January, 1), &paidUntil)
	inv := rentInvoice(lease.ID, day(2024, time.May, 1), models.InvoiceStatusUnpaid)

	in := TenantRatingInput{
		TenantID: lease.TenantUserID,
		Leases:   []*models.Lease{lease},
		Invoices: []*models.Invoice{inv},
	}

	got := AggregateTenantRatings([]TenantRatingInput{in}, day(2024, time.July, 30), RatingOrderDesc, 0)
	require.Nil(t, got[0].OnTimeRate, "covered invoices are not unpaid")
}

func TestRatingSortAndLimit(t *testing.T) {
	now := day(2024, time.June, 1)

	build := func(name string, payDays ...int) TenantRatingInput {
		lease := testLease(day(2024, time.January, 1), nil)
		in := TenantRatingInput{TenantID: lease.TenantUserID, Name: name, Leases: []*models.Lease{lease}}
		for i, d := range payDays {
			inv := rentInvoice(lease.ID, day(2024, time.Month(i+1), 1), models.InvoiceStatusPaid)
			in.Invoices = append(in.Invoices, inv)
			in.Payments = append(in.Payments,
				verifiedPayment(inv.ID, lease.TenantUserID, 25000, day(2024, time.Month(i+1), d)))
		}
		return in
	}

	inputs := []TenantRatingInput{
		build("Consistent", 4, 4, 4), // 100
		build("Sometimes", 20, 20),   // 80
		{TenantID: uuid.New(), Name: "Unrated"},
	}

	desc := AggregateTenantRatings(inputs, now, RatingOrderDesc, 0)
	require.Equal(t, "Consistent", desc[0].Name)
	require.Equal(t, "Sometimes", desc[1].Name)
	require.Equal(t, "Unrated", desc[2].Name, "unrated sorts last on descending order")

	asc := AggregateTenantRatings(inputs, now, RatingOrderAsc, 0)
	require.Equal(t, "Sometimes", asc[0].Name)
	require.Equal(t, "Consistent", asc[1].Name)
	require.Equal(t, "Unrated", asc[2].Name, "unrated sorts last on ascending order too")

	limited := AggregateTenantRatings(inputs, now, RatingOrderDesc, 1)
	require.Len(t, limited, 1)
	require.Equal(t, "Consistent", limited[0].Name)
}

func TestListTenantRatingsJoinsNames(t *testing.T) {
	orgID := uuid.New()
	tenant := &models.UserProfile{
		ID:             uuid.New(),
		OrganizationID: orgID,
		FullName:       "Baraka Otieno",
		Role:           models.UserRoleTenant,
	}
	lease := testLease(day(2024, time.January, 1), nil)
	lease.TenantUserID = tenant.ID
	lease.OrganizationID = orgID

	inv := rentInvoice(lease.ID, day(2024, time.March, 1), models.InvoiceStatusPaid)
	inv.OrganizationID = orgID
	payment := verifiedPayment(inv.ID, tenant.ID, 25000, day(2024, time.March, 3))
	payment.OrganizationID = orgID

	svc := NewRatingService(
		newFakeLeaseRepo(lease),
		newFakeInvoiceRepo(inv),
		newFakePaymentRepo(payment),
		newFakeUserRepo(tenant),
	)
	svc.now = func() time.Time { return day(2024, time.June, 1) }

	got, err := svc.ListTenantRatings(context.Background(), orgID, RatingOrderDesc, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Baraka Otieno", got[0].Name)
	require.Equal(t, tenant.ID, got[0].TenantID)
	require.NotNil(t, got[0].OnTimeRate)
	require.Equal(t, 100, *got[0].OnTimeRate)
}
