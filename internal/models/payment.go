package models

import (
	"time"

	"github.com/google/uuid"
)

type PaymentMethodType string

const (
	PaymentMethodMpesa        PaymentMethodType = "mpesa"
	PaymentMethodBankTransfer PaymentMethodType = "bank_transfer"
	PaymentMethodCash         PaymentMethodType = "cash"
)

// Payment is a tenant's submission against an invoice. It is created
// unverified; approval flips Verified exactly once, rejection appends a
// note and leaves Verified false. Rows are never deleted. Only verified
// payments count toward balances, scoring, and rent_paid_until.
type Payment struct {
	ID             uuid.UUID         `json:"id"`
	InvoiceID      uuid.UUID         `json:"invoice_id"`
	TenantUserID   uuid.UUID         `json:"tenant_user_id"`
	OrganizationID uuid.UUID         `json:"organization_id"`
	AmountPaid     float64           `json:"amount_paid"`
	PaymentMethod  PaymentMethodType `json:"payment_method"`
	PaymentDate    time.Time         `json:"payment_date"`

	Verified   bool       `json:"verified"`
	MonthsPaid int        `json:"months_paid"`
	VerifiedBy *uuid.UUID `json:"verified_by,omitempty"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`

	// Provider-side status, when the gateway reports one. Anything in the
	// known failure vocabulary keeps the payment out of the ledger.
	ProviderStatus *string `json:"provider_status,omitempty"`

	MpesaReceiptNumber  *string `json:"mpesa_receipt_number,omitempty"`
	BankReferenceNumber *string `json:"bank_reference_number,omitempty"`
	Notes               *string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Reference returns the external reference to show on statements.
func (p *Payment) Reference() string {
	if p.MpesaReceiptNumber != nil && *p.MpesaReceiptNumber != "" {
		return *p.MpesaReceiptNumber
	}
	if p.BankReferenceNumber != nil && *p.BankReferenceNumber != "" {
		return *p.BankReferenceNumber
	}
	return ""
}
