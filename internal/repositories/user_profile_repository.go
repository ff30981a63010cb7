package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/nyumbani/billing-service/internal/models"
)

type UserProfileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.UserProfile, error)
	ListTenantsByOrganization(ctx context.Context, orgID uuid.UUID) ([]*models.UserProfile, error)
}

type userProfileRepo struct {
	db DB
}

func NewUserProfileRepository(db DB) UserProfileRepository {
	return &userProfileRepo{db: db}
}

func baseSelectUserProfile() string {
	return `
        SELECT id, organization_id, full_name, phone_number, email, role, created_at
        FROM user_profiles
    `
}

func scanUserProfile(row pgx.Row) (*models.UserProfile, error) {
	var up models.UserProfile
	err := row.Scan(
		&up.ID, &up.OrganizationID, &up.FullName, &up.PhoneNumber, &up.Email, &up.Role, &up.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &up, nil
}

func (r *userProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.UserProfile, error) {
	return scanUserProfile(r.db.QueryRow(ctx, baseSelectUserProfile()+" WHERE id=$1", id))
}

func (r *userProfileRepo) ListTenantsByOrganization(ctx context.Context, orgID uuid.UUID) ([]*models.UserProfile, error) {
	rows, err := r.db.Query(ctx,
		baseSelectUserProfile()+" WHERE organization_id=$1 AND role=$2 ORDER BY full_name",
		orgID, models.UserRoleTenant,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.UserProfile
	for rows.Next() {
		up, err := scanUserProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, up)
	}
	return out, rows.Err()
}
