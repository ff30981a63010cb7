package dtos

import (
	"time"

	"github.com/google/uuid"
)

// InvoiceDTO is the render-ready invoice shape returned by the resolver
// endpoints, including the joined display fields.
type InvoiceDTO struct {
	ID            uuid.UUID `json:"id"`
	LeaseID       uuid.UUID `json:"lease_id"`
	InvoiceType   string    `json:"invoice_type"`
	Amount        float64   `json:"amount"`
	PeriodStart   string    `json:"period_start"` // YYYY-MM-DD
	DueDate       string    `json:"due_date"`     // YYYY-MM-DD
	StatusText    *string   `json:"status_text,omitempty"`
	MonthsCovered int       `json:"months_covered"`
	Description   string    `json:"description"`
	State         string    `json:"state"` // UNPAID | COVERED | PAID | VOID

	TenantName   string `json:"tenant_name,omitempty"`
	UnitNumber   string `json:"unit_number,omitempty"`
	BuildingName string `json:"building_name,omitempty"`
	PropertyName string `json:"property_name,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// ResolveInvoiceResponse reports the invoice a lease currently owes and
// whether this request created it.
type ResolveInvoiceResponse struct {
	Invoice InvoiceDTO `json:"invoice"`
	Created bool       `json:"created"`
}
