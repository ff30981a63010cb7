package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/nyumbani/billing-service/internal/constants"
	"github.com/nyumbani/billing-service/internal/dtos"
	"github.com/nyumbani/billing-service/internal/models"
	"github.com/nyumbani/billing-service/internal/repositories"
	"github.com/nyumbani/billing-service/internal/utils"
)

type PaymentService struct {
	paymentRepo repositories.PaymentRepository
	invoiceRepo repositories.InvoiceRepository
	leaseRepo   repositories.LeaseRepository
	userRepo    repositories.UserProfileRepository
	notifier    Notifier
	now         func() time.Time
}

func NewPaymentService(
	paymentRepo repositories.PaymentRepository,
	invoiceRepo repositories.InvoiceRepository,
	leaseRepo repositories.LeaseRepository,
	userRepo repositories.UserProfileRepository,
	notifier Notifier,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		invoiceRepo: invoiceRepo,
		leaseRepo:   leaseRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		now:         time.Now,
	}
}

// SubmitPayment records an unverified payment claim against an invoice.
// Nothing moves on the ledger until a manager verifies it.
func (s *PaymentService) SubmitPayment(ctx context.Context, tenantUserID uuid.UUID, req *dtos.SubmitPaymentRequest) (*models.Payment, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, req.InvoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, utils.ErrInvoiceNotFound
	}
	if isExplicitlyPaid(invoice) || ClassifyInvoice(invoice, nil) == InvoiceStateVoid {
		return nil, utils.NewValidationError("invoice is already settled", utils.ErrInvalidAmount)
	}

	months := req.MonthsPaid
	if months < 1 {
		months = 1
	}

	nowUTC := s.now().UTC()
	payment := &models.Payment{
		ID:                  uuid.New(),
		InvoiceID:           invoice.ID,
		TenantUserID:        tenantUserID,
		OrganizationID:      invoice.OrganizationID,
		AmountPaid:          req.AmountPaid,
		PaymentMethod:       models.PaymentMethodType(req.PaymentMethod),
		PaymentDate:         req.PaymentDate.UTC(),
		Verified:            false,
		MonthsPaid:          months,
		MpesaReceiptNumber:  req.MpesaReceiptNumber,
		BankReferenceNumber: req.BankReferenceNumber,
		Notes:               req.Notes,
		CreatedAt:           nowUTC,
		UpdatedAt:           nowUTC,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// VerifyPayment approves a submitted payment. Verification happens at
// most once; a second call reports ErrPaymentAlreadyVerified. On
// success the invoice status and the lease billing cursor are updated,
// and the tenant gets a receipt.
func (s *PaymentService) VerifyPayment(ctx context.Context, paymentID, verifiedBy uuid.UUID) (*models.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, utils.ErrPaymentNotFound
	}
	if payment.Verified {
		return nil, utils.ErrPaymentAlreadyVerified
	}

	nowUTC := s.now().UTC()
	err = s.paymentRepo.MarkVerified(ctx, paymentID, verifiedBy, nowUTC)
	if errors.Is(err, pgx.ErrNoRows) {
		// Lost the race with another verifier.
		return nil, utils.ErrPaymentAlreadyVerified
	}
	if err != nil {
		return nil, err
	}
	payment.Verified = true
	payment.VerifiedBy = &verifiedBy
	payment.VerifiedAt = &nowUTC

	invoice, err := s.invoiceRepo.GetByID(ctx, payment.InvoiceID)
	if err != nil {
		utils.Logger.Errorf("payment %s verified but invoice lookup failed: %v", paymentID, err)
		return payment, nil
	}
	if invoice == nil {
		utils.Logger.Errorf("payment %s verified but invoice %s is missing", paymentID, payment.InvoiceID)
		return payment, nil
	}

	if err := s.settleInvoice(ctx, invoice); err != nil {
		utils.Logger.Errorf("failed to update invoice %s after verifying payment %s: %v", invoice.ID, paymentID, err)
	}
	if invoice.InvoiceType == models.InvoiceTypeRent {
		if err := s.advanceBillingCursor(ctx, invoice, payment); err != nil {
			utils.Logger.Warnf("failed to advance billing cursor for lease %s: %v", invoice.LeaseID, err)
		}
	}

	go s.sendReceipt(context.Background(), invoice, payment)

	return payment, nil
}

// RejectPayment annotates a pending submission with the manager's
// reason. The row stays unverified and is never deleted.
func (s *PaymentService) RejectPayment(ctx context.Context, paymentID, rejectedBy uuid.UUID, reason string) error {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return err
	}
	if payment == nil {
		return utils.ErrPaymentNotFound
	}
	if payment.Verified {
		return utils.ErrPaymentAlreadyVerified
	}

	note := fmt.Sprintf("[rejected %s by %s] %s",
		s.now().UTC().Format(time.DateOnly), rejectedBy, reason)
	return s.paymentRepo.AppendRejectionNote(ctx, paymentID, note)
}

// settleInvoice recomputes the invoice status from the sum of verified
// payments against it.
func (s *PaymentService) settleInvoice(ctx context.Context, invoice *models.Invoice) error {
	payments, err := s.paymentRepo.ListByInvoice(ctx, invoice.ID)
	if err != nil {
		return err
	}
	var totalVerified float64
	for _, p := range payments {
		if p.Verified && !isFailedPaymentStatus(p.ProviderStatus) {
			totalVerified += p.AmountPaid
		}
	}

	if totalVerified >= invoice.Amount {
		return s.invoiceRepo.SetStatusText(ctx, invoice.ID, true, models.InvoiceStatusPaid)
	}
	if totalVerified > 0 {
		return s.invoiceRepo.SetStatusText(ctx, invoice.ID, false, models.InvoiceStatusPartiallyPaid)
	}
	return nil
}

// advanceBillingCursor moves rent_paid_until forward to cover the months
// the payment bought. The cursor only ever moves forward.
func (s *PaymentService) advanceBillingCursor(ctx context.Context, invoice *models.Invoice, payment *models.Payment) error {
	months := payment.MonthsPaid
	if months < 1 {
		months = 1
	}
	period := utils.StartOfMonthUTC(invoice.PeriodStart)
	newPaidUntil := utils.AddMonthsUTC(period, months-1)
	newNextDue := utils.AddMonthsUTC(newPaidUntil, 1)

	return s.leaseRepo.UpdateBillingCursor(ctx, invoice.LeaseID, constants.MaxCursorUpdateRetries, func(l *models.Lease) error {
		if l.RentPaidUntil == nil || utils.IsAfterMonth(newPaidUntil, *l.RentPaidUntil) {
			l.RentPaidUntil = &newPaidUntil
		}
		if l.NextRentDueDate == nil || utils.IsAfterMonth(newNextDue, *l.NextRentDueDate) {
			l.NextRentDueDate = &newNextDue
		}
		return nil
	})
}

func (s *PaymentService) sendReceipt(ctx context.Context, invoice *models.Invoice, payment *models.Payment) {
	tenant, err := s.userRepo.GetByID(ctx, payment.TenantUserID)
	if err != nil || tenant == nil {
		utils.Logger.Warnf("receipt skipped, tenant %s lookup failed: %v", payment.TenantUserID, err)
		return
	}

	body := fmt.Sprintf("Hi %s, we have received your payment of %s %.2f for %s. Thank you.",
		tenant.FullName, constants.CurrencyCode, payment.AmountPaid,
		invoice.PeriodStart.UTC().Format("January 2006"))

	paymentID := payment.ID
	s.notifier.Send(ctx, Notification{
		OrganizationID:    payment.OrganizationID,
		Phone:             tenant.PhoneNumber,
		Email:             tenant.Email,
		Subject:           "Payment received",
		Body:              body,
		RelatedEntityType: "payment",
		RelatedEntityID:   &paymentID,
	})
}
