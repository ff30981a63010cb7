package repositories

import (
	"context"

	"github.com/nyumbani/billing-service/internal/models"
)

type CommunicationRepository interface {
	Create(ctx context.Context, c *models.Communication) error
}

type communicationRepo struct {
	db DB
}

func NewCommunicationRepository(db DB) CommunicationRepository {
	return &communicationRepo{db: db}
}

func (r *communicationRepo) Create(ctx context.Context, c *models.Communication) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO communications (
            id, organization_id, recipient, channel, message,
            related_entity_type, related_entity_id, status, error, created_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9, NOW())
    `,
		c.ID, c.OrganizationID, c.Recipient, c.Channel, c.Message,
		c.RelatedEntityType, c.RelatedEntityID, c.Status, c.Error,
	)
	return err
}
