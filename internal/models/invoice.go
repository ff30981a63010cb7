package models

import (
	"time"

	"github.com/google/uuid"
)

type InvoiceType string

const (
	InvoiceTypeRent  InvoiceType = "rent"
	InvoiceTypeWater InvoiceType = "water"
)

// Legacy free-text status vocabulary carried over from the original data.
// New writes stick to these spellings; reads tolerate the wider set the
// coverage classifier knows about.
const (
	InvoiceStatusUnpaid        = "unpaid"
	InvoiceStatusOverdue       = "overdue"
	InvoiceStatusPartiallyPaid = "partially_paid"
	InvoiceStatusPaid          = "paid"
	InvoiceStatusVoid          = "void"
)

// Invoice is one billing charge against a lease. For rent invoices
// PeriodStart is the month-aligned date identifying the billing month, and
// at most one invoice exists per (lease_id, invoice_type, period_start),
// enforced by a unique constraint and the create-or-fetch upsert.
// Invoices are never physically deleted; void via StatusText.
type Invoice struct {
	Versioned

	ID             uuid.UUID   `json:"id"`
	LeaseID        uuid.UUID   `json:"lease_id"`
	OrganizationID uuid.UUID   `json:"organization_id"`
	InvoiceType    InvoiceType `json:"invoice_type"`
	Amount         float64     `json:"amount"`
	PeriodStart    time.Time   `json:"period_start"`
	DueDate        time.Time   `json:"due_date"`

	// Status is the legacy boolean paid flag; StatusText refines it.
	Status     bool    `json:"status"`
	StatusText *string `json:"status_text,omitempty"`

	MonthsCovered int    `json:"months_covered"`
	Description   string `json:"description"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *Invoice) GetID() string {
	return i.ID.String()
}

// InvoiceDetail is an invoice joined with its lease/unit/building display
// fields, used after creation to return a render-ready row.
type InvoiceDetail struct {
	Invoice

	TenantUserID uuid.UUID `json:"tenant_user_id"`
	TenantName   string    `json:"tenant_name"`
	UnitNumber   string    `json:"unit_number"`
	BuildingName string    `json:"building_name"`
	PropertyName string    `json:"property_name"`
}
