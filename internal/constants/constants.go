package constants

import "time"

// Billing-period rules
const (
	// Day-of-month each invoice type falls due within its billing month.
	RentDueDayOfMonth  = 1
	WaterDueDayOfMonth = 15

	// An unpaid invoice is treated as delinquent for scoring once the
	// 25th of its due month is reached.
	PenaltyDayOfMonth = 25
)

// Payment timeliness scoring (day-of-month thresholds within the due month)
const (
	ScorePaidEarly     = 100 // paid in a month before the due month, or by the 5th
	ScorePaidMidMonth  = 90  // paid by the 15th
	ScorePaidLateMonth = 80  // paid by the 25th
	ScorePaidLate      = 60  // paid after the 25th or in a later month

	// Flat score contributed once per unpaid invoice past the penalty date.
	OverduePenaltyScore = 60

	ScoreDayEarlyCutoff = 5
	ScoreDayMidCutoff   = 15
	ScoreDayLateCutoff  = 25
)

// Tenant rating buckets
const (
	RatingBucketGreenMin  = 90
	RatingBucketYellowMin = 80
	RatingBucketOrangeMin = 70
)

// Concurrency bounds
const (
	// Attempts for the create-or-fetch invoice upsert when racing a
	// concurrent creator on the (lease_id, invoice_type, period_start) key.
	MaxInvoiceEnsureAttempts = 6

	// Optimistic-lock retries for billing-cursor updates on the lease row.
	MaxCursorUpdateRetries = 3
)

// Rent reminders
const (
	RentReminderCronSpec = "0 7 * * *" // 07:00 UTC daily
	RentReminderTimeout  = 10 * time.Minute
)

const (
	CurrencyCode     = "KES"
	BusinessTimezone = "Africa/Nairobi"
)
