package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/nyumbani/billing-service/internal/dtos"
	"github.com/nyumbani/billing-service/internal/models"
	"github.com/nyumbani/billing-service/internal/utils"
)

type fakeWaterBillRepo struct {
	mu    sync.Mutex
	bills map[uuid.UUID]*models.WaterBill
}

func newFakeWaterBillRepo() *fakeWaterBillRepo {
	return &fakeWaterBillRepo{bills: make(map[uuid.UUID]*models.WaterBill)}
}

func (r *fakeWaterBillRepo) Create(ctx context.Context, wb *models.WaterBill) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *wb
	r.bills[wb.ID] = &cp
	return nil
}

func (r *fakeWaterBillRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.WaterBill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wb, ok := r.bills[id]
	if !ok {
		return nil, nil
	}
	cp := *wb
	return &cp, nil
}

func (r *fakeWaterBillRepo) ListPendingByOrganization(ctx context.Context, orgID uuid.UUID) ([]*models.WaterBill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.WaterBill
	for _, wb := range r.bills {
		if wb.OrganizationID == orgID && wb.Status == models.WaterBillStatusPending {
			cp := *wb
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeWaterBillRepo) MarkBilled(ctx context.Context, id uuid.UUID, invoiceID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	wb, ok := r.bills[id]
	if !ok || wb.Status != models.WaterBillStatusPending {
		return utils.ErrNoRowsUpdated
	}
	wb.Status = models.WaterBillStatusBilled
	inv := invoiceID
	wb.InvoiceID = &inv
	return nil
}

func TestRecordReadingsComputesAmount(t *testing.T) {
	orgID := uuid.New()
	lease := testLease(day(2024, time.January, 1), nil)
	lease.OrganizationID = orgID

	waterRepo := newFakeWaterBillRepo()
	svc := NewWaterBillingService(waterRepo, newFakeInvoiceRepo(), newFakeLeaseRepo(lease))
	svc.now = func() time.Time { return day(2024, time.June, 10) }

	bills, err := svc.RecordReadings(context.Background(), orgID, &dtos.RecordWaterReadingsRequest{
		Readings: []dtos.WaterReadingEntry{{
			LeaseID:         lease.ID,
			PeriodStart:     day(2024, time.June, 1),
			PreviousReading: 120,
			CurrentReading:  132.5,
			RatePerUnit:     150,
		}},
	})
	require.NoError(t, err)
	require.Len(t, bills, 1)
	require.InDelta(t, 1875, bills[0].Amount, 0.01)
	require.Equal(t, models.WaterBillStatusPending, bills[0].Status)
}

func TestRecordReadingsRejectsForeignLease(t *testing.T) {
	lease := testLease(day(2024, time.January, 1), nil)
	lease.OrganizationID = uuid.New()

	svc := NewWaterBillingService(newFakeWaterBillRepo(), newFakeInvoiceRepo(), newFakeLeaseRepo(lease))

	_, err := svc.RecordReadings(context.Background(), uuid.New(), &dtos.RecordWaterReadingsRequest{
		Readings: []dtos.WaterReadingEntry{{
			LeaseID:        lease.ID,
			PeriodStart:    day(2024, time.June, 1),
			CurrentReading: 10,
			RatePerUnit:    150,
		}},
	})
	require.ErrorIs(t, err, utils.ErrLeaseNotFound)
}

func TestPostPendingBillsCreatesWaterInvoices(t *testing.T) {
	orgID := uuid.New()
	lease := testLease(day(2024, time.January, 1), nil)
	lease.OrganizationID = orgID

	waterRepo := newFakeWaterBillRepo()
	invoiceRepo := newFakeInvoiceRepo()
	svc := NewWaterBillingService(waterRepo, invoiceRepo, newFakeLeaseRepo(lease))
	svc.now = func() time.Time { return day(2024, time.June, 10) }

	bills, err := svc.RecordReadings(context.Background(), orgID, &dtos.RecordWaterReadingsRequest{
		Readings: []dtos.WaterReadingEntry{{
			LeaseID:         lease.ID,
			PeriodStart:     day(2024, time.June, 1),
			PreviousReading: 100,
			CurrentReading:  110,
			RatePerUnit:     150,
		}},
	})
	require.NoError(t, err)

	result, err := svc.PostPendingBills(context.Background(), orgID)
	require.NoError(t, err)
	require.Equal(t, 1, result.Pending)
	require.Equal(t, 1, result.Billed)
	require.Zero(t, result.Failed)

	billed, err := waterRepo.GetByID(context.Background(), bills[0].ID)
	require.NoError(t, err)
	require.Equal(t, models.WaterBillStatusBilled, billed.Status)
	require.NotNil(t, billed.InvoiceID)

	inv, err := invoiceRepo.GetByID(context.Background(), *billed.InvoiceID)
	require.NoError(t, err)
	require.Equal(t, models.InvoiceTypeWater, inv.InvoiceType)
	require.InDelta(t, 1500, inv.Amount, 0.01)
	require.Equal(t, day(2024, time.June, 15), inv.DueDate, "water bills fall due mid-month")
}

func TestPostPendingBillsSkipsAlreadyInvoicedPeriod(t *testing.T) {
	orgID := uuid.New()
	lease := testLease(day(2024, time.January, 1), nil)
	lease.OrganizationID = orgID

	existing := &models.Invoice{
		ID:          uuid.New(),
		LeaseID:     lease.ID,
		InvoiceType: models.InvoiceTypeWater,
		Amount:      900,
		PeriodStart: day(2024, time.June, 1),
		DueDate:     day(2024, time.June, 15),
	}

	waterRepo := newFakeWaterBillRepo()
	invoiceRepo := newFakeInvoiceRepo(existing)
	svc := NewWaterBillingService(waterRepo, invoiceRepo, newFakeLeaseRepo(lease))
	svc.now = func() time.Time { return day(2024, time.June, 10) }

	_, err := svc.RecordReadings(context.Background(), orgID, &dtos.RecordWaterReadingsRequest{
		Readings: []dtos.WaterReadingEntry{{
			LeaseID:         lease.ID,
			PeriodStart:     day(2024, time.June, 1),
			PreviousReading: 100,
			CurrentReading:  106,
			RatePerUnit:     150,
		}},
	})
	require.NoError(t, err)

	result, err := svc.PostPendingBills(context.Background(), orgID)
	require.NoError(t, err)
	require.Equal(t, 1, result.Pending)
	require.Zero(t, result.Billed)
	require.Equal(t, 1, result.Skipped, "existing invoice absorbs the bill")

	// The bill still links to the pre-existing invoice.
	pending, err := waterRepo.ListPendingByOrganization(context.Background(), orgID)
	require.NoError(t, err)
	require.Empty(t, pending)
}
