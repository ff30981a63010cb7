package models

import (
	"time"

	"github.com/google/uuid"
)

type UserRoleType string

const (
	UserRoleTenant  UserRoleType = "tenant"
	UserRoleManager UserRoleType = "manager"
	UserRoleAdmin   UserRoleType = "admin"
)

type UserProfile struct {
	ID             uuid.UUID    `json:"id"`
	OrganizationID uuid.UUID    `json:"organization_id"`
	FullName       string       `json:"full_name"`
	PhoneNumber    string       `json:"phone_number"`
	Email          string       `json:"email"`
	Role           UserRoleType `json:"role"`
	CreatedAt      time.Time    `json:"created_at"`
}
