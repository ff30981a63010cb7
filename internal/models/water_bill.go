package models

import (
	"time"

	"github.com/google/uuid"
)

type WaterBillStatusType string

const (
	WaterBillStatusPending WaterBillStatusType = "pending"
	WaterBillStatusBilled  WaterBillStatusType = "billed"
)

// WaterBill is a metered water charge for a lease's unit in one billing
// month. Posting converts pending bills into `water` invoices through the
// same upsert engine rent uses, then marks them billed.
type WaterBill struct {
	ID              uuid.UUID           `json:"id"`
	LeaseID         uuid.UUID           `json:"lease_id"`
	OrganizationID  uuid.UUID           `json:"organization_id"`
	PeriodStart     time.Time           `json:"period_start"`
	PreviousReading float64             `json:"previous_reading"`
	CurrentReading  float64             `json:"current_reading"`
	RatePerUnit     float64             `json:"rate_per_unit"`
	Amount          float64             `json:"amount"`
	Status          WaterBillStatusType `json:"status"`
	InvoiceID       *uuid.UUID          `json:"invoice_id,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}
