package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nyumbani/billing-service/internal/constants"
	"github.com/nyumbani/billing-service/internal/models"
	"github.com/nyumbani/billing-service/internal/repositories"
	"github.com/nyumbani/billing-service/internal/utils"
)

// EnsureOutcome tags whether the upsert created the invoice or found one a
// concurrent creator (or an earlier request) already put there.
type EnsureOutcome struct {
	Invoice *models.Invoice
	Created bool
}

// ensureInvoiceForPeriod idempotently guarantees exactly one invoice for
// (leaseID, invType, periodStart). Each attempt fetches first, then inserts
// with the conflict-target upsert; losing the race just means the next
// fetch finds the winner's row. Constraint collisions are retried up to the
// attempt bound; every other write error surfaces immediately.
func ensureInvoiceForPeriod(
	ctx context.Context,
	repo repositories.InvoiceRepository,
	leaseID uuid.UUID,
	invType models.InvoiceType,
	periodStart time.Time,
	build func() *models.Invoice,
) (*EnsureOutcome, error) {
	for attempt := 1; attempt <= constants.MaxInvoiceEnsureAttempts; attempt++ {
		existing, err := repo.GetByLeaseTypeAndPeriod(ctx, leaseID, invType, periodStart)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return &EnsureOutcome{Invoice: existing, Created: false}, nil
		}

		inv := build()
		inserted, err := repo.Create(ctx, inv)
		if err != nil {
			if repositories.IsUniqueViolation(err) {
				// Concurrent creator won; loop around and fetch theirs.
				continue
			}
			return nil, err
		}
		if inserted {
			return &EnsureOutcome{Invoice: inv, Created: true}, nil
		}
		// ON CONFLICT DO NOTHING swallowed the insert: refetch next pass.
	}
	return nil, fmt.Errorf("lease %s %s %s: %w",
		leaseID, invType, utils.ToISODate(periodStart), utils.ErrInvoicePreparation)
}
