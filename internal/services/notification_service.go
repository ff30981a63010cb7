package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/nyumbani/billing-service/internal/models"
	"github.com/nyumbani/billing-service/internal/repositories"
	"github.com/nyumbani/billing-service/internal/utils"
)

// Notification is one outbound message. Phone takes SMS, Email takes
// email; either may be empty.
type Notification struct {
	OrganizationID    uuid.UUID
	Phone             string
	Email             string
	Subject           string
	Body              string
	RelatedEntityType string
	RelatedEntityID   *uuid.UUID
}

// Notifier delivers tenant-facing messages. Delivery is best effort and
// must never fail the operation that triggered it.
type Notifier interface {
	Send(ctx context.Context, n Notification)
}

type MessagingService struct {
	twilioClient   *twilio.RestClient
	sendgridAPIKey string
	commRepo       repositories.CommunicationRepository
	fromPhone      string
	fromEmail      string
	orgName        string
	sandboxMode    bool
}

func NewMessagingService(
	twilioClient *twilio.RestClient,
	sendgridAPIKey string,
	commRepo repositories.CommunicationRepository,
	fromPhone, fromEmail, orgName string,
	sandboxMode bool,
) *MessagingService {
	return &MessagingService{
		twilioClient:   twilioClient,
		sendgridAPIKey: sendgridAPIKey,
		commRepo:       commRepo,
		fromPhone:      fromPhone,
		fromEmail:      fromEmail,
		orgName:        orgName,
		sandboxMode:    sandboxMode,
	}
}

// Send fans the notification out over every channel the recipient has.
// Failures are logged and recorded on the communication trail only.
func (s *MessagingService) Send(ctx context.Context, n Notification) {
	if n.Phone != "" {
		s.sendSMS(ctx, n)
	}
	if n.Email != "" {
		s.sendEmail(ctx, n)
	}
}

func (s *MessagingService) sendSMS(ctx context.Context, n Notification) {
	if s.sandboxMode {
		utils.Logger.Infof("sandbox mode, skipping SMS to %s: %s", n.Phone, n.Body)
		s.record(ctx, n, models.CommunicationChannelSMS, n.Phone, nil)
		return
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(n.Phone)
	params.SetFrom(s.fromPhone)
	params.SetBody(n.Body)

	_, err := s.twilioClient.Api.CreateMessage(params)
	if err != nil {
		utils.Logger.Errorf("failed to send SMS to %s: %v", n.Phone, err)
	}
	s.record(ctx, n, models.CommunicationChannelSMS, n.Phone, err)
}

func (s *MessagingService) sendEmail(ctx context.Context, n Notification) {
	if s.sandboxMode {
		utils.Logger.Infof("sandbox mode, skipping email to %s: %s", n.Email, n.Subject)
		s.record(ctx, n, models.CommunicationChannelEmail, n.Email, nil)
		return
	}

	from := mail.NewEmail(s.orgName, s.fromEmail)
	to := mail.NewEmail("", n.Email)
	message := mail.NewSingleEmail(from, n.Subject, to, n.Body, n.Body)
	client := sendgrid.NewSendClient(s.sendgridAPIKey)

	resp, err := client.Send(message)
	if err != nil {
		utils.Logger.Errorf("failed to send email to %s: %v", n.Email, err)
	} else if resp.StatusCode >= 400 {
		utils.Logger.Errorf("sendgrid returned %d for email to %s", resp.StatusCode, n.Email)
	}
	s.record(ctx, n, models.CommunicationChannelEmail, n.Email, err)
}

func (s *MessagingService) record(ctx context.Context, n Notification, channel models.CommunicationChannelType, recipient string, sendErr error) {
	comm := &models.Communication{
		ID:             uuid.New(),
		OrganizationID: n.OrganizationID,
		Recipient:      recipient,
		Channel:        channel,
		Message:        n.Body,
		Status:         models.CommunicationStatusSent,
		CreatedAt:      time.Now().UTC(),
	}
	if n.RelatedEntityType != "" {
		comm.RelatedEntityType = utils.StrPtr(n.RelatedEntityType)
	}
	comm.RelatedEntityID = n.RelatedEntityID
	if sendErr != nil {
		comm.Status = models.CommunicationStatusFailed
		comm.Error = utils.StrPtr(sendErr.Error())
	}
	if err := s.commRepo.Create(ctx, comm); err != nil {
		utils.Logger.Errorf("failed to record communication for %s: %v", recipient, err)
	}
}
