package services

import (
	"time"

	"github.com/nyumbani/billing-service/internal/constants"
	"github.com/nyumbani/billing-service/internal/utils"
)

// ScorePayment assigns a 0-100 timeliness score to a payment relative to
// its invoice due date. The comparison is month-granular: a payment in an
// earlier month than the due month is prepaid (100), a later month is late
// (60), and within the due month the score depends only on the day the
// payment landed, never on the due day. Without a due date the day-of-month
// thresholds apply directly.
//
// The second return is false when no score applies (no paid date); such
// payments are excluded from aggregation, never scored zero.
func ScorePayment(dueDate, paidDate *time.Time) (int, bool) {
	if paidDate == nil {
		return 0, false
	}
	paid := paidDate.UTC()
	if dueDate == nil {
		return scoreByPaidDay(paid.Day()), true
	}
	if utils.IsBeforeMonth(paid, *dueDate) {
		return constants.ScorePaidEarly, true
	}
	if utils.IsAfterMonth(paid, *dueDate) {
		return constants.ScorePaidLate, true
	}
	return scoreByPaidDay(paid.Day()), true
}

func scoreByPaidDay(day int) int {
	switch {
	case day <= constants.ScoreDayEarlyCutoff:
		return constants.ScorePaidEarly
	case day <= constants.ScoreDayMidCutoff:
		return constants.ScorePaidMidMonth
	case day <= constants.ScoreDayLateCutoff:
		return constants.ScorePaidLateMonth
	default:
		return constants.ScorePaidLate
	}
}

// IsPastPenaltyDate reports whether today (date-only, UTC) has reached the
// 25th of the due month. An unpaid invoice past this threshold contributes
// one flat penalty score to its tenant's aggregate.
func IsPastPenaltyDate(dueDate, today time.Time) bool {
	due := dueDate.UTC()
	threshold := time.Date(due.Year(), due.Month(), constants.PenaltyDayOfMonth, 0, 0, 0, 0, time.UTC)
	return !utils.DateOnlyUTC(today).Before(threshold)
}
