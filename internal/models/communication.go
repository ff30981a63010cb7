package models

import (
	"time"

	"github.com/google/uuid"
)

type CommunicationChannelType string

const (
	CommunicationChannelSMS   CommunicationChannelType = "sms"
	CommunicationChannelEmail CommunicationChannelType = "email"
)

type CommunicationStatusType string

const (
	CommunicationStatusSent   CommunicationStatusType = "sent"
	CommunicationStatusFailed CommunicationStatusType = "failed"
)

// Communication is the audit record of one outbound notice. Delivery is
// best-effort; a failed row never rolls back the mutation that caused it.
type Communication struct {
	ID             uuid.UUID                `json:"id"`
	OrganizationID uuid.UUID                `json:"organization_id"`
	Recipient      string                   `json:"recipient"`
	Channel        CommunicationChannelType `json:"channel"`
	Message        string                   `json:"message"`

	RelatedEntityType *string    `json:"related_entity_type,omitempty"`
	RelatedEntityID   *uuid.UUID `json:"related_entity_id,omitempty"`

	Status CommunicationStatusType `json:"status"`
	Error  *string                 `json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
