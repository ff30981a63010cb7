package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/nyumbani/billing-service/internal/models"
	"github.com/nyumbani/billing-service/internal/utils"
)

type WaterBillRepository interface {
	Create(ctx context.Context, wb *models.WaterBill) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.WaterBill, error)
	ListPendingByOrganization(ctx context.Context, orgID uuid.UUID) ([]*models.WaterBill, error)
	MarkBilled(ctx context.Context, id uuid.UUID, invoiceID uuid.UUID) error
}

type waterBillRepo struct {
	db DB
}

func NewWaterBillRepository(db DB) WaterBillRepository {
	return &waterBillRepo{db: db}
}

func baseSelectWaterBill() string {
	return `
        SELECT
            id, lease_id, organization_id, period_start, previous_reading,
            current_reading, rate_per_unit, amount, status, invoice_id,
            created_at, updated_at
        FROM water_bills
    `
}

func scanWaterBill(row pgx.Row) (*models.WaterBill, error) {
	var wb models.WaterBill
	err := row.Scan(
		&wb.ID, &wb.LeaseID, &wb.OrganizationID, &wb.PeriodStart, &wb.PreviousReading,
		&wb.CurrentReading, &wb.RatePerUnit, &wb.Amount, &wb.Status, &wb.InvoiceID,
		&wb.CreatedAt, &wb.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &wb, nil
}

func (r *waterBillRepo) Create(ctx context.Context, wb *models.WaterBill) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO water_bills (
            id, lease_id, organization_id, period_start, previous_reading,
            current_reading, rate_per_unit, amount, status,
            created_at, updated_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9, NOW(), NOW())
    `,
		wb.ID, wb.LeaseID, wb.OrganizationID, wb.PeriodStart, wb.PreviousReading,
		wb.CurrentReading, wb.RatePerUnit, wb.Amount, wb.Status,
	)
	return err
}

func (r *waterBillRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.WaterBill, error) {
	return scanWaterBill(r.db.QueryRow(ctx, baseSelectWaterBill()+" WHERE id=$1", id))
}

func (r *waterBillRepo) ListPendingByOrganization(ctx context.Context, orgID uuid.UUID) ([]*models.WaterBill, error) {
	rows, err := r.db.Query(ctx,
		baseSelectWaterBill()+" WHERE organization_id=$1 AND status=$2 ORDER BY period_start, created_at",
		orgID, models.WaterBillStatusPending,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.WaterBill
	for rows.Next() {
		wb, err := scanWaterBill(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, wb)
	}
	return out, rows.Err()
}

func (r *waterBillRepo) MarkBilled(ctx context.Context, id uuid.UUID, invoiceID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
        UPDATE water_bills SET
            status=$1, invoice_id=$2, updated_at=NOW()
        WHERE id=$3 AND status=$4
    `, models.WaterBillStatusBilled, invoiceID, id, models.WaterBillStatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return utils.ErrNoRowsUpdated
	}
	return nil
}
