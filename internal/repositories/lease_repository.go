package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/nyumbani/billing-service/internal/models"
)

/* ------------------------------------------------------------------
   Public interface
------------------------------------------------------------------ */

type LeaseRepository interface {
	Create(ctx context.Context, l *models.Lease) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Lease, error)
	ListByTenant(ctx context.Context, tenantUserID uuid.UUID) ([]*models.Lease, error)
	ListActiveByOrganization(ctx context.Context, orgID uuid.UUID) ([]*models.Lease, error)
	ListAllActive(ctx context.Context) ([]*models.Lease, error)

	UpdateIfVersion(ctx context.Context, l *models.Lease, expected int64) (pgconn.CommandTag, error)

	// UpdateBillingCursor is the single write path for rent_paid_until /
	// next_rent_due_date. mutate edits the fetched lease's cursor fields;
	// the write is guarded by row_version and retried on contention.
	UpdateBillingCursor(ctx context.Context, id uuid.UUID, maxRetries int, mutate func(*models.Lease) error) error

	SetStatus(ctx context.Context, id uuid.UUID, status models.LeaseStatusType) error
}

/* ------------------------------------------------------------------
   Implementation
------------------------------------------------------------------ */

type leaseRepo struct {
	*BaseVersionedRepo[*models.Lease]
	db DB
}

func NewLeaseRepository(db DB) LeaseRepository {
	r := &leaseRepo{db: db}
	selectStmt := baseSelectLease() + " WHERE id=$1"
	r.BaseVersionedRepo = NewBaseRepo(db, selectStmt, scanLease)
	return r
}

func baseSelectLease() string {
	return `
        SELECT
            id, organization_id, tenant_user_id, unit_id, start_date, end_date,
            monthly_rent, status, rent_paid_until, next_rent_due_date,
            created_at, updated_at, row_version
        FROM leases
    `
}

func scanLease(row pgx.Row) (*models.Lease, error) {
	var l models.Lease
	err := row.Scan(
		&l.ID, &l.OrganizationID, &l.TenantUserID, &l.UnitID, &l.StartDate, &l.EndDate,
		&l.MonthlyRent, &l.Status, &l.RentPaidUntil, &l.NextRentDueDate,
		&l.CreatedAt, &l.UpdatedAt, &l.RowVersion,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *leaseRepo) Create(ctx context.Context, l *models.Lease) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO leases (
            id, organization_id, tenant_user_id, unit_id, start_date, end_date,
            monthly_rent, status, rent_paid_until, next_rent_due_date,
            created_at, updated_at, row_version
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10, NOW(), NOW(), 1)
    `,
		l.ID,
		l.OrganizationID,
		l.TenantUserID,
		l.UnitID,
		l.StartDate,
		l.EndDate,
		l.MonthlyRent,
		l.Status,
		l.RentPaidUntil,
		l.NextRentDueDate,
	)
	return err
}

func (r *leaseRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Lease, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *leaseRepo) ListByTenant(ctx context.Context, tenantUserID uuid.UUID) ([]*models.Lease, error) {
	rows, err := r.db.Query(ctx, baseSelectLease()+" WHERE tenant_user_id=$1 ORDER BY start_date", tenantUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLeases(rows)
}

func (r *leaseRepo) ListActiveByOrganization(ctx context.Context, orgID uuid.UUID) ([]*models.Lease, error) {
	rows, err := r.db.Query(ctx,
		baseSelectLease()+" WHERE organization_id=$1 AND status=$2 ORDER BY created_at",
		orgID, models.LeaseStatusActive,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLeases(rows)
}

func (r *leaseRepo) ListAllActive(ctx context.Context) ([]*models.Lease, error) {
	rows, err := r.db.Query(ctx,
		baseSelectLease()+" WHERE status=$1 ORDER BY created_at",
		models.LeaseStatusActive,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLeases(rows)
}

func collectLeases(rows pgx.Rows) ([]*models.Lease, error) {
	var out []*models.Lease
	for rows.Next() {
		l, err := scanLease(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *leaseRepo) UpdateIfVersion(ctx context.Context, l *models.Lease, expected int64) (pgconn.CommandTag, error) {
	return r.db.Exec(ctx, `
        UPDATE leases SET
            rent_paid_until=$1, next_rent_due_date=$2, status=$3,
            updated_at=NOW(), row_version=row_version+1
        WHERE id=$4 AND row_version=$5
    `,
		l.RentPaidUntil, l.NextRentDueDate, l.Status,
		l.ID, expected,
	)
}

func (r *leaseRepo) UpdateBillingCursor(ctx context.Context, id uuid.UUID, maxRetries int, mutate func(*models.Lease) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), maxRetries, mutate, r.UpdateIfVersion)
}

func (r *leaseRepo) SetStatus(ctx context.Context, id uuid.UUID, status models.LeaseStatusType) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE leases SET status=$1, updated_at=NOW() WHERE id=$2`,
		status, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
