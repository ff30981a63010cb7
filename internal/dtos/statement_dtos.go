package dtos

import (
	"time"

	"github.com/google/uuid"
)

// StatementTransactionDTO is one balance-tracked row in a tenant statement.
// Charges carry positive amounts, payments negative ones. Covered invoices
// appear as zero-amount rows with CoverageLabel set so the allocation stays
// visible in the audit trail.
type StatementTransactionDTO struct {
	ID            uuid.UUID `json:"id"`
	Kind          string    `json:"kind"` // charge | payment
	Description   string    `json:"description"`
	Reference     string    `json:"reference,omitempty"`
	Amount        float64   `json:"amount"`
	PostedAt      time.Time `json:"posted_at"`
	BalanceAfter  float64   `json:"balance_after"`
	CoverageLabel *string   `json:"coverage_label,omitempty"`
}

type StatementPeriodDTO struct {
	Start *string `json:"start"` // YYYY-MM-DD, null for an unbounded window
	End   *string `json:"end"`
}

type StatementSummaryDTO struct {
	OpeningBalance float64 `json:"openingBalance"`
	ClosingBalance float64 `json:"closingBalance"`
	TotalCharges   float64 `json:"totalCharges"`
	TotalPayments  float64 `json:"totalPayments"`
}

type StatementResponse struct {
	Period       StatementPeriodDTO        `json:"period"`
	Summary      StatementSummaryDTO       `json:"summary"`
	Transactions []StatementTransactionDTO `json:"transactions"`
}
