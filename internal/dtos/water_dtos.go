package dtos

import (
	"time"

	"github.com/google/uuid"
)

type WaterReadingEntry struct {
	LeaseID         uuid.UUID `json:"lease_id" validate:"required"`
	PeriodStart     time.Time `json:"period_start" validate:"required"`
	PreviousReading float64   `json:"previous_reading" validate:"min=0"`
	CurrentReading  float64   `json:"current_reading" validate:"required,gtefield=PreviousReading"`
	RatePerUnit     float64   `json:"rate_per_unit" validate:"required,gt=0"`
}

type RecordWaterReadingsRequest struct {
	Readings []WaterReadingEntry `json:"readings" validate:"required,min=1,dive"`
}

// WaterPostingResultDTO summarizes a bulk posting sweep. Billed counts
// invoices this sweep created; Skipped counts bills whose invoice already
// existed; Failed bills are left pending for the next sweep.
type WaterPostingResultDTO struct {
	Pending int `json:"pending"`
	Billed  int `json:"billed"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}
