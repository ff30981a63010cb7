package models

import (
	"time"

	"github.com/google/uuid"
)

type LeaseStatusType string

const (
	LeaseStatusActive    LeaseStatusType = "active"
	LeaseStatusPending   LeaseStatusType = "pending"
	LeaseStatusRenewed   LeaseStatusType = "renewed"
	LeaseStatusExpired   LeaseStatusType = "expired"
	LeaseStatusCancelled LeaseStatusType = "cancelled"
)

// Lease binds a tenant to a unit for a period at a monthly rent. Rows are
// never deleted; they only transition status.
//
// RentPaidUntil and NextRentDueDate together form the lease's billing
// cursor. RentPaidUntil, when set, is always month-aligned (first of
// month); consumers normalize before comparing anyway. The cursor is only
// ever written through LeaseRepository.UpdateBillingCursor: payment
// verification advances RentPaidUntil, period resolution heals
// NextRentDueDate forward.
type Lease struct {
	Versioned

	ID             uuid.UUID       `json:"id"`
	OrganizationID uuid.UUID       `json:"organization_id"`
	TenantUserID   uuid.UUID       `json:"tenant_user_id"`
	UnitID         uuid.UUID       `json:"unit_id"`
	StartDate      time.Time       `json:"start_date"`
	EndDate        *time.Time      `json:"end_date,omitempty"`
	MonthlyRent    float64         `json:"monthly_rent"`
	Status         LeaseStatusType `json:"status"`

	RentPaidUntil   *time.Time `json:"rent_paid_until,omitempty"`
	NextRentDueDate *time.Time `json:"next_rent_due_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (l *Lease) GetID() string {
	return l.ID.String()
}

// BillingCursor is the lease's paid-through / next-due pointer pair as a
// value object. Mutations happen through the two named operations so every
// write site goes through the same month normalization.
type BillingCursor struct {
	PaidUntil   *time.Time
	NextDueDate *time.Time
}

func (l *Lease) Cursor() BillingCursor {
	return BillingCursor{PaidUntil: l.RentPaidUntil, NextDueDate: l.NextRentDueDate}
}
