package services

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nyumbani/billing-service/internal/constants"
	"github.com/nyumbani/billing-service/internal/dtos"
	"github.com/nyumbani/billing-service/internal/models"
	"github.com/nyumbani/billing-service/internal/repositories"
)

const (
	RatingBucketGreen  = "green"
	RatingBucketYellow = "yellow"
	RatingBucketOrange = "orange"
	RatingBucketRed    = "red"
	RatingBucketNone   = "none"

	RatingOrderDesc = "desc"
	RatingOrderAsc  = "asc"
)

// TenantRatingInput carries everything the aggregation needs about one
// tenant. The caller resolves names and ownership up front so the math
// stays pure.
type TenantRatingInput struct {
	TenantID uuid.UUID
	Name     string
	Leases   []*models.Lease
	Invoices []*models.Invoice
	Payments []*models.Payment
}

// AggregateTenantRatings scores every verified payment, adds a fixed
// penalty for each unpaid rent invoice past its grace date, and buckets
// the rounded mean. Tenants with no scorable events rate as "none".
func AggregateTenantRatings(inputs []TenantRatingInput, now time.Time, order string, limit int) []dtos.TenantRatingDTO {
	out := make([]dtos.TenantRatingDTO, 0, len(inputs))
	for _, in := range inputs {
		out = append(out, rateTenant(in, now))
	}

	asc := strings.EqualFold(order, RatingOrderAsc)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		av, bv := ratingSortKey(a.OnTimeRate, asc), ratingSortKey(b.OnTimeRate, asc)
		if av != bv {
			if asc {
				return av < bv
			}
			return av > bv
		}
		if a.Payments != b.Payments {
			return a.Payments > b.Payments
		}
		return a.Name < b.Name
	})

	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

// Unrated tenants sink to the bottom of either ordering.
func ratingSortKey(rate *int, asc bool) float64 {
	if rate == nil {
		if asc {
			return math.Inf(1)
		}
		return math.Inf(-1)
	}
	return float64(*rate)
}

func rateTenant(in TenantRatingInput, now time.Time) dtos.TenantRatingDTO {
	leaseByID := make(map[uuid.UUID]*models.Lease, len(in.Leases))
	for _, l := range in.Leases {
		leaseByID[l.ID] = l
	}
	invoiceByID := make(map[uuid.UUID]*models.Invoice, len(in.Invoices))
	for _, inv := range in.Invoices {
		invoiceByID[inv.ID] = inv
	}

	var sum, count, paymentCount int
	for _, p := range in.Payments {
		if !p.Verified || isFailedPaymentStatus(p.ProviderStatus) {
			continue
		}
		var due *time.Time
		if inv, ok := invoiceByID[p.InvoiceID]; ok {
			due = &inv.DueDate
		}
		paid := p.PaymentDate
		score, ok := ScorePayment(due, &paid)
		if !ok {
			continue
		}
		sum += score
		count++
		paymentCount++
	}

	for _, inv := range in.Invoices {
		if inv.InvoiceType != models.InvoiceTypeRent {
			continue
		}
		lease := leaseByID[inv.LeaseID]
		if ClassifyInvoice(inv, lease) != InvoiceStateUnpaid {
			continue
		}
		if !IsPastPenaltyDate(inv.DueDate, now) {
			continue
		}
		sum += constants.OverduePenaltyScore
		count++
	}

	dto := dtos.TenantRatingDTO{
		TenantID: in.TenantID,
		Name:     in.Name,
		Payments: paymentCount,
		Bucket:   RatingBucketNone,
	}
	if count == 0 {
		return dto
	}
	rate := int(math.Round(float64(sum) / float64(count)))
	dto.OnTimeRate = &rate
	dto.Bucket = ratingBucket(rate)
	return dto
}

func ratingBucket(rate int) string {
	switch {
	case rate >= constants.RatingBucketGreenMin:
		return RatingBucketGreen
	case rate >= constants.RatingBucketYellowMin:
		return RatingBucketYellow
	case rate >= constants.RatingBucketOrangeMin:
		return RatingBucketOrange
	default:
		return RatingBucketRed
	}
}

/* ------------------------------------------------------------------
   Orchestration
------------------------------------------------------------------ */

type RatingService struct {
	leaseRepo   repositories.LeaseRepository
	invoiceRepo repositories.InvoiceRepository
	paymentRepo repositories.PaymentRepository
	userRepo    repositories.UserProfileRepository
	now         func() time.Time
}

func NewRatingService(
	leaseRepo repositories.LeaseRepository,
	invoiceRepo repositories.InvoiceRepository,
	paymentRepo repositories.PaymentRepository,
	userRepo repositories.UserProfileRepository,
) *RatingService {
	return &RatingService{
		leaseRepo:   leaseRepo,
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		now:         time.Now,
	}
}

// ListTenantRatings builds the rating board for one organization.
func (s *RatingService) ListTenantRatings(ctx context.Context, organizationID uuid.UUID, order string, limit int) ([]dtos.TenantRatingDTO, error) {
	leases, err := s.leaseRepo.ListActiveByOrganization(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	invoices, err := s.invoiceRepo.ListByOrganization(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.ListVerifiedByOrganization(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	tenants, err := s.userRepo.ListTenantsByOrganization(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	leasesByTenant := make(map[uuid.UUID][]*models.Lease)
	leaseOwner := make(map[uuid.UUID]uuid.UUID, len(leases))
	for _, l := range leases {
		leasesByTenant[l.TenantUserID] = append(leasesByTenant[l.TenantUserID], l)
		leaseOwner[l.ID] = l.TenantUserID
	}
	invoicesByTenant := make(map[uuid.UUID][]*models.Invoice)
	for _, inv := range invoices {
		if tenantID, ok := leaseOwner[inv.LeaseID]; ok {
			invoicesByTenant[tenantID] = append(invoicesByTenant[tenantID], inv)
		}
	}
	paymentsByTenant := make(map[uuid.UUID][]*models.Payment)
	for _, p := range payments {
		paymentsByTenant[p.TenantUserID] = append(paymentsByTenant[p.TenantUserID], p)
	}

	inputs := make([]TenantRatingInput, 0, len(tenants))
	for _, t := range tenants {
		inputs = append(inputs, TenantRatingInput{
			TenantID: t.ID,
			Name:     t.FullName,
			Leases:   leasesByTenant[t.ID],
			Invoices: invoicesByTenant[t.ID],
			Payments: paymentsByTenant[t.ID],
		})
	}

	return AggregateTenantRatings(inputs, s.now().UTC(), order, limit), nil
}
