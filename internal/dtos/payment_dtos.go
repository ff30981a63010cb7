package dtos

import (
	"time"

	"github.com/google/uuid"
)

type SubmitPaymentRequest struct {
	InvoiceID           uuid.UUID `json:"invoice_id" validate:"required"`
	AmountPaid          float64   `json:"amount_paid" validate:"required,gt=0"`
	PaymentMethod       string    `json:"payment_method" validate:"required,oneof=mpesa bank_transfer cash"`
	PaymentDate         time.Time `json:"payment_date" validate:"required"`
	MonthsPaid          int       `json:"months_paid" validate:"omitempty,min=1"`
	MpesaReceiptNumber  *string   `json:"mpesa_receipt_number,omitempty"`
	BankReferenceNumber *string   `json:"bank_reference_number,omitempty"`
	Notes               *string   `json:"notes,omitempty"`
}

type RejectPaymentRequest struct {
	Reason string `json:"reason" validate:"required,min=3"`
}

type PaymentDTO struct {
	ID            uuid.UUID  `json:"id"`
	InvoiceID     uuid.UUID  `json:"invoice_id"`
	AmountPaid    float64    `json:"amount_paid"`
	PaymentMethod string     `json:"payment_method"`
	PaymentDate   time.Time  `json:"payment_date"`
	Verified      bool       `json:"verified"`
	MonthsPaid    int        `json:"months_paid"`
	VerifiedAt    *time.Time `json:"verified_at,omitempty"`
	Reference     string     `json:"reference,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
}
