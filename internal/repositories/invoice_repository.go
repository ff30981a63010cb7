package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/nyumbani/billing-service/internal/models"
)

/* ------------------------------------------------------------------
   Public interface
------------------------------------------------------------------ */

type InvoiceRepository interface {
	// Create inserts with ON CONFLICT (lease_id, invoice_type, period_start)
	// DO NOTHING. The bool reports whether a row was actually inserted;
	// false means a concurrent creator already holds the period.
	Create(ctx context.Context, inv *models.Invoice) (bool, error)

	GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	GetByLeaseTypeAndPeriod(ctx context.Context, leaseID uuid.UUID, invType models.InvoiceType, periodStart time.Time) (*models.Invoice, error)
	GetDetailByID(ctx context.Context, id uuid.UUID) (*models.InvoiceDetail, error)

	// FindOldestUnpaidRent returns unpaid-flagged rent invoices for the
	// lease ordered by period_start then due_date ascending. The caller
	// still runs the coverage classifier over them; rows the lease pointer
	// already covers are not "unpaid" for business purposes.
	FindOldestUnpaidRent(ctx context.Context, leaseID uuid.UUID) ([]*models.Invoice, error)

	ListByLease(ctx context.Context, leaseID uuid.UUID) ([]*models.Invoice, error)
	ListByLeases(ctx context.Context, leaseIDs []uuid.UUID) ([]*models.Invoice, error)
	ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*models.Invoice, error)

	SetStatusText(ctx context.Context, id uuid.UUID, paid bool, statusText string) error
}

/* ------------------------------------------------------------------
   Implementation
------------------------------------------------------------------ */

type invoiceRepo struct {
	db DB
}

func NewInvoiceRepository(db DB) InvoiceRepository {
	return &invoiceRepo{db: db}
}

func baseSelectInvoice() string {
	return `
        SELECT
            id, lease_id, organization_id, invoice_type, amount, period_start,
            due_date, status, status_text, months_covered, description,
            created_at, updated_at, row_version
        FROM invoices
    `
}

func scanInvoice(row pgx.Row) (*models.Invoice, error) {
	var inv models.Invoice
	err := row.Scan(
		&inv.ID, &inv.LeaseID, &inv.OrganizationID, &inv.InvoiceType, &inv.Amount, &inv.PeriodStart,
		&inv.DueDate, &inv.Status, &inv.StatusText, &inv.MonthsCovered, &inv.Description,
		&inv.CreatedAt, &inv.UpdatedAt, &inv.RowVersion,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func collectInvoices(rows pgx.Rows) ([]*models.Invoice, error) {
	var out []*models.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *invoiceRepo) Create(ctx context.Context, inv *models.Invoice) (bool, error) {
	tag, err := r.db.Exec(ctx, `
        INSERT INTO invoices (
            id, lease_id, organization_id, invoice_type, amount, period_start,
            due_date, status, status_text, months_covered, description,
            created_at, updated_at, row_version
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11, NOW(), NOW(), 1)
        ON CONFLICT (lease_id, invoice_type, period_start) DO NOTHING
    `,
		inv.ID, inv.LeaseID, inv.OrganizationID, inv.InvoiceType, inv.Amount, inv.PeriodStart,
		inv.DueDate, inv.Status, inv.StatusText, inv.MonthsCovered, inv.Description,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *invoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	return scanInvoice(r.db.QueryRow(ctx, baseSelectInvoice()+" WHERE id=$1", id))
}

func (r *invoiceRepo) GetByLeaseTypeAndPeriod(ctx context.Context, leaseID uuid.UUID, invType models.InvoiceType, periodStart time.Time) (*models.Invoice, error) {
	return scanInvoice(r.db.QueryRow(ctx,
		baseSelectInvoice()+" WHERE lease_id=$1 AND invoice_type=$2 AND period_start=$3",
		leaseID, invType, periodStart,
	))
}

const invoiceDetailQuery = `
        SELECT
            i.id, i.lease_id, i.organization_id, i.invoice_type, i.amount, i.period_start,
            i.due_date, i.status, i.status_text, i.months_covered, i.description,
            i.created_at, i.updated_at, i.row_version,
            l.tenant_user_id, COALESCE(up.full_name, ''),
            COALESCE(u.unit_number, ''), COALESCE(b.name, ''), COALESCE(p.name, '')
        FROM invoices i
        JOIN leases l            ON l.id = i.lease_id
        LEFT JOIN user_profiles up ON up.id = l.tenant_user_id
        LEFT JOIN units u          ON u.id = l.unit_id
        LEFT JOIN buildings b      ON b.id = u.building_id
        LEFT JOIN properties p     ON p.id = b.property_id
        WHERE i.id=$1
    `

func (r *invoiceRepo) GetDetailByID(ctx context.Context, id uuid.UUID) (*models.InvoiceDetail, error) {
	row := r.db.QueryRow(ctx, invoiceDetailQuery, id)

	var d models.InvoiceDetail
	err := row.Scan(
		&d.ID, &d.LeaseID, &d.OrganizationID, &d.InvoiceType, &d.Amount, &d.PeriodStart,
		&d.DueDate, &d.Status, &d.StatusText, &d.MonthsCovered, &d.Description,
		&d.CreatedAt, &d.UpdatedAt, &d.RowVersion,
		&d.TenantUserID, &d.TenantName,
		&d.UnitNumber, &d.BuildingName, &d.PropertyName,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *invoiceRepo) FindOldestUnpaidRent(ctx context.Context, leaseID uuid.UUID) ([]*models.Invoice, error) {
	rows, err := r.db.Query(ctx,
		baseSelectInvoice()+`
        WHERE lease_id=$1 AND invoice_type=$2 AND status=false
          AND (status_text IS NULL OR status_text NOT IN ($3, $4))
        ORDER BY period_start ASC, due_date ASC
    `,
		leaseID, models.InvoiceTypeRent, models.InvoiceStatusPaid, models.InvoiceStatusVoid,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInvoices(rows)
}

func (r *invoiceRepo) ListByLease(ctx context.Context, leaseID uuid.UUID) ([]*models.Invoice, error) {
	rows, err := r.db.Query(ctx,
		baseSelectInvoice()+" WHERE lease_id=$1 ORDER BY period_start ASC, due_date ASC",
		leaseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInvoices(rows)
}

func (r *invoiceRepo) ListByLeases(ctx context.Context, leaseIDs []uuid.UUID) ([]*models.Invoice, error) {
	if len(leaseIDs) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx,
		baseSelectInvoice()+" WHERE lease_id = ANY($1) ORDER BY period_start ASC, due_date ASC",
		leaseIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInvoices(rows)
}

func (r *invoiceRepo) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*models.Invoice, error) {
	rows, err := r.db.Query(ctx,
		baseSelectInvoice()+" WHERE organization_id=$1 ORDER BY period_start ASC, due_date ASC",
		orgID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInvoices(rows)
}

func (r *invoiceRepo) SetStatusText(ctx context.Context, id uuid.UUID, paid bool, statusText string) error {
	tag, err := r.db.Exec(ctx, `
        UPDATE invoices SET
            status=$1, status_text=$2, updated_at=NOW(), row_version=row_version+1
        WHERE id=$3
    `, paid, statusText, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
