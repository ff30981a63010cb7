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

type PaymentRepository interface {
	Create(ctx context.Context, p *models.Payment) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*models.Payment, error)
	ListVerifiedByTenant(ctx context.Context, tenantUserID uuid.UUID) ([]*models.Payment, error)
	ListVerifiedByOrganization(ctx context.Context, orgID uuid.UUID) ([]*models.Payment, error)

	// MarkVerified flips the row to verified exactly once; a second call
	// affects zero rows and reports pgx.ErrNoRows.
	MarkVerified(ctx context.Context, id uuid.UUID, verifiedBy uuid.UUID, verifiedAt time.Time) error

	// AppendRejectionNote annotates a rejected submission. The row stays
	// unverified and is never deleted.
	AppendRejectionNote(ctx context.Context, id uuid.UUID, note string) error
}

/* ------------------------------------------------------------------
   Implementation
------------------------------------------------------------------ */

type paymentRepo struct {
	db DB
}

func NewPaymentRepository(db DB) PaymentRepository {
	return &paymentRepo{db: db}
}

func baseSelectPayment() string {
	return `
        SELECT
            id, invoice_id, tenant_user_id, organization_id, amount_paid,
            payment_method, payment_date, verified, months_paid,
            verified_by, verified_at, provider_status,
            mpesa_receipt_number, bank_reference_number, notes,
            created_at, updated_at
        FROM payments
    `
}

func scanPayment(row pgx.Row) (*models.Payment, error) {
	var p models.Payment
	err := row.Scan(
		&p.ID, &p.InvoiceID, &p.TenantUserID, &p.OrganizationID, &p.AmountPaid,
		&p.PaymentMethod, &p.PaymentDate, &p.Verified, &p.MonthsPaid,
		&p.VerifiedBy, &p.VerifiedAt, &p.ProviderStatus,
		&p.MpesaReceiptNumber, &p.BankReferenceNumber, &p.Notes,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectPayments(rows pgx.Rows) ([]*models.Payment, error) {
	var out []*models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *paymentRepo) Create(ctx context.Context, p *models.Payment) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO payments (
            id, invoice_id, tenant_user_id, organization_id, amount_paid,
            payment_method, payment_date, verified, months_paid,
            provider_status, mpesa_receipt_number, bank_reference_number, notes,
            created_at, updated_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13, NOW(), NOW())
    `,
		p.ID, p.InvoiceID, p.TenantUserID, p.OrganizationID, p.AmountPaid,
		p.PaymentMethod, p.PaymentDate, p.Verified, p.MonthsPaid,
		p.ProviderStatus, p.MpesaReceiptNumber, p.BankReferenceNumber, p.Notes,
	)
	return err
}

func (r *paymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	return scanPayment(r.db.QueryRow(ctx, baseSelectPayment()+" WHERE id=$1", id))
}

func (r *paymentRepo) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*models.Payment, error) {
	rows, err := r.db.Query(ctx,
		baseSelectPayment()+" WHERE invoice_id=$1 ORDER BY payment_date",
		invoiceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPayments(rows)
}

func (r *paymentRepo) ListVerifiedByTenant(ctx context.Context, tenantUserID uuid.UUID) ([]*models.Payment, error) {
	rows, err := r.db.Query(ctx,
		baseSelectPayment()+" WHERE tenant_user_id=$1 AND verified=true ORDER BY payment_date",
		tenantUserID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPayments(rows)
}

func (r *paymentRepo) ListVerifiedByOrganization(ctx context.Context, orgID uuid.UUID) ([]*models.Payment, error) {
	rows, err := r.db.Query(ctx,
		baseSelectPayment()+" WHERE organization_id=$1 AND verified=true ORDER BY payment_date",
		orgID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPayments(rows)
}

func (r *paymentRepo) MarkVerified(ctx context.Context, id uuid.UUID, verifiedBy uuid.UUID, verifiedAt time.Time) error {
	tag, err := r.db.Exec(ctx, `
        UPDATE payments SET
            verified=true, verified_by=$1, verified_at=$2, updated_at=NOW()
        WHERE id=$3 AND verified=false
    `, verifiedBy, verifiedAt, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *paymentRepo) AppendRejectionNote(ctx context.Context, id uuid.UUID, note string) error {
	tag, err := r.db.Exec(ctx, `
        UPDATE payments SET
            notes = COALESCE(notes || E'\n', '') || $1,
            updated_at = NOW()
        WHERE id=$2 AND verified=false
    `, note, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
