package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/nyumbani/billing-service/internal/models"
)

// In-memory repository fakes shared by the service tests.

type fakeLeaseRepo struct {
	mu     sync.Mutex
	leases map[uuid.UUID]*models.Lease
}

func newFakeLeaseRepo(leases ...*models.Lease) *fakeLeaseRepo {
	r := &fakeLeaseRepo{leases: make(map[uuid.UUID]*models.Lease)}
	for _, l := range leases {
		cp := *l
		r.leases[l.ID] = &cp
	}
	return r
}

func (r *fakeLeaseRepo) Create(ctx context.Context, l *models.Lease) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *l
	r.leases[l.ID] = &cp
	return nil
}

func (r *fakeLeaseRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Lease, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leases[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (r *fakeLeaseRepo) ListByTenant(ctx context.Context, tenantUserID uuid.UUID) ([]*models.Lease, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Lease
	for _, l := range r.leases {
		if l.TenantUserID == tenantUserID {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeLeaseRepo) ListActiveByOrganization(ctx context.Context, orgID uuid.UUID) ([]*models.Lease, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Lease
	for _, l := range r.leases {
		if l.OrganizationID == orgID && l.Status == models.LeaseStatusActive {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeLeaseRepo) ListAllActive(ctx context.Context) ([]*models.Lease, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Lease
	for _, l := range r.leases {
		if l.Status == models.LeaseStatusActive {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeLeaseRepo) UpdateIfVersion(ctx context.Context, l *models.Lease, expected int64) (pgconn.CommandTag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.leases[l.ID]
	if !ok || current.RowVersion != expected {
		return pgconn.CommandTag("UPDATE 0"), nil
	}
	cp := *l
	cp.RowVersion = expected + 1
	r.leases[l.ID] = &cp
	return pgconn.CommandTag("UPDATE 1"), nil
}

func (r *fakeLeaseRepo) UpdateBillingCursor(ctx context.Context, id uuid.UUID, maxRetries int, mutate func(*models.Lease) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leases[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if err := mutate(l); err != nil {
		return err
	}
	l.RowVersion++
	return nil
}

func (r *fakeLeaseRepo) SetStatus(ctx context.Context, id uuid.UUID, status models.LeaseStatusType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.leases[id]; ok {
		l.Status = status
	}
	return nil
}

type fakeInvoiceRepo struct {
	mu       sync.Mutex
	invoices map[uuid.UUID]*models.Invoice
	// createHook lets contention tests intercept inserts.
	createHook func(inv *models.Invoice) (bool, error)
}

func newFakeInvoiceRepo(invoices ...*models.Invoice) *fakeInvoiceRepo {
	r := &fakeInvoiceRepo{invoices: make(map[uuid.UUID]*models.Invoice)}
	for _, inv := range invoices {
		cp := *inv
		r.invoices[inv.ID] = &cp
	}
	return r
}

func (r *fakeInvoiceRepo) Create(ctx context.Context, inv *models.Invoice) (bool, error) {
	if r.createHook != nil {
		return r.createHook(inv)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.invoices {
		if existing.LeaseID == inv.LeaseID &&
			existing.InvoiceType == inv.InvoiceType &&
			existing.PeriodStart.Equal(inv.PeriodStart) {
			return false, nil
		}
	}
	cp := *inv
	r.invoices[inv.ID] = &cp
	return true, nil
}

func (r *fakeInvoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (r *fakeInvoiceRepo) GetByLeaseTypeAndPeriod(ctx context.Context, leaseID uuid.UUID, invType models.InvoiceType, periodStart time.Time) (*models.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invoices {
		if inv.LeaseID == leaseID && inv.InvoiceType == invType && inv.PeriodStart.Equal(periodStart) {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeInvoiceRepo) GetDetailByID(ctx context.Context, id uuid.UUID) (*models.InvoiceDetail, error) {
	inv, err := r.GetByID(ctx, id)
	if err != nil || inv == nil {
		return nil, err
	}
	return &models.InvoiceDetail{Invoice: *inv, TenantName: "Wanjiku Kamau", UnitNumber: "A4"}, nil
}

func (r *fakeInvoiceRepo) FindOldestUnpaidRent(ctx context.Context, leaseID uuid.UUID) ([]*models.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Invoice
	for _, inv := range r.invoices {
		if inv.LeaseID != leaseID || inv.InvoiceType != models.InvoiceTypeRent || inv.Status {
			continue
		}
		text := ""
		if inv.StatusText != nil {
			text = *inv.StatusText
		}
		if text == models.InvoiceStatusPaid || text == models.InvoiceStatusVoid {
			continue
		}
		cp := *inv
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PeriodStart.Equal(out[j].PeriodStart) {
			return out[i].PeriodStart.Before(out[j].PeriodStart)
		}
		return out[i].DueDate.Before(out[j].DueDate)
	})
	return out, nil
}

func (r *fakeInvoiceRepo) ListByLease(ctx context.Context, leaseID uuid.UUID) ([]*models.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Invoice
	for _, inv := range r.invoices {
		if inv.LeaseID == leaseID {
			cp := *inv
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeInvoiceRepo) ListByLeases(ctx context.Context, leaseIDs []uuid.UUID) ([]*models.Invoice, error) {
	var out []*models.Invoice
	for _, id := range leaseIDs {
		part, _ := r.ListByLease(ctx, id)
		out = append(out, part...)
	}
	return out, nil
}

func (r *fakeInvoiceRepo) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*models.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Invoice
	for _, inv := range r.invoices {
		if inv.OrganizationID == orgID {
			cp := *inv
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeInvoiceRepo) SetStatusText(ctx context.Context, id uuid.UUID, paid bool, statusText string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return pgx.ErrNoRows
	}
	inv.Status = paid
	text := statusText
	inv.StatusText = &text
	return nil
}

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments map[uuid.UUID]*models.Payment
}

func newFakePaymentRepo(payments ...*models.Payment) *fakePaymentRepo {
	r := &fakePaymentRepo{payments: make(map[uuid.UUID]*models.Payment)}
	for _, p := range payments {
		cp := *p
		r.payments[p.ID] = &cp
	}
	return r
}

func (r *fakePaymentRepo) Create(ctx context.Context, p *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.payments[p.ID] = &cp
	return nil
}

func (r *fakePaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakePaymentRepo) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Payment
	for _, p := range r.payments {
		if p.InvoiceID == invoiceID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) ListVerifiedByTenant(ctx context.Context, tenantUserID uuid.UUID) ([]*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Payment
	for _, p := range r.payments {
		if p.TenantUserID == tenantUserID && p.Verified {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) ListVerifiedByOrganization(ctx context.Context, orgID uuid.UUID) ([]*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Payment
	for _, p := range r.payments {
		if p.OrganizationID == orgID && p.Verified {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) MarkVerified(ctx context.Context, id uuid.UUID, verifiedBy uuid.UUID, verifiedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok || p.Verified {
		return pgx.ErrNoRows
	}
	p.Verified = true
	p.VerifiedBy = &verifiedBy
	at := verifiedAt
	p.VerifiedAt = &at
	return nil
}

func (r *fakePaymentRepo) AppendRejectionNote(ctx context.Context, id uuid.UUID, note string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok || p.Verified {
		return pgx.ErrNoRows
	}
	if p.Notes == nil || *p.Notes == "" {
		n := note
		p.Notes = &n
	} else {
		joined := *p.Notes + "\n" + note
		p.Notes = &joined
	}
	return nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*models.UserProfile
}

func newFakeUserRepo(users ...*models.UserProfile) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uuid.UUID]*models.UserProfile)}
	for _, u := range users {
		cp := *u
		r.users[u.ID] = &cp
	}
	return r
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.UserProfile, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) ListTenantsByOrganization(ctx context.Context, orgID uuid.UUID) ([]*models.UserProfile, error) {
	var out []*models.UserProfile
	for _, u := range r.users {
		if u.OrganizationID == orgID && u.Role == models.UserRoleTenant {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []Notification
}

func (n *fakeNotifier) Send(ctx context.Context, msg Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
}
