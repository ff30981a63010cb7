package dtos

import "github.com/google/uuid"

// TenantRatingDTO is one row of the manager on-time-payment dashboard.
// OnTimeRate is nil (bucket "none") for tenants with no scoreable history;
// that is distinct from a true zero.
type TenantRatingDTO struct {
	TenantID   uuid.UUID `json:"tenant_id"`
	Name       string    `json:"name"`
	OnTimeRate *int      `json:"on_time_rate"`
	Payments   int       `json:"payments"`
	Bucket     string    `json:"bucket"` // green | yellow | orange | red | none
}
