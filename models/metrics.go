package models

import (
	"time"

	"bitbucket.org/mmdatafocus/loanpulse_backend/utils"
)

// PaymentStatus buckets days_late into six mutually exclusive categories.
// The set is fixed: chart series, colors and ordering are declared here, not
// discovered from live data.
type PaymentStatus string

const (
	StatusEarly         PaymentStatus = "Early"
	StatusOnTime        PaymentStatus = "On Time"
	StatusSlightlyLate  PaymentStatus = "Slightly Late (1-7 days)"
	StatusLate          PaymentStatus = "Late (8-30 days)"
	StatusVeryLate      PaymentStatus = "Very Late (31-60 days)"
	StatusExtremelyLate PaymentStatus = "Extremely Late (60+ days)"
)

var paymentStatusOrder = []PaymentStatus{
	StatusEarly,
	StatusOnTime,
	StatusSlightlyLate,
	StatusLate,
	StatusVeryLate,
	StatusExtremelyLate,
}

var paymentStatusColors = map[PaymentStatus]string{
	StatusEarly:         "#27AE60",
	StatusOnTime:        "#2C3E50",
	StatusSlightlyLate:  "#F39C12",
	StatusLate:          "#E67E22",
	StatusVeryLate:      "#D35400",
	StatusExtremelyLate: "#E74C3C",
}

// AllPaymentStatuses returns the categories in display/sort order.
func AllPaymentStatuses() []PaymentStatus {
	out := make([]PaymentStatus, len(paymentStatusOrder))
	copy(out, paymentStatusOrder)
	return out
}

func (s PaymentStatus) Color() string {
	return paymentStatusColors[s]
}

func (s PaymentStatus) SortOrder() int {
	for i, status := range paymentStatusOrder {
		if status == s {
			return i
		}
	}
	return len(paymentStatusOrder)
}

// StatusForDaysLate assigns the bucket. Boundary values belong to the
// lower-numbered bucket: exactly 7 days late is still "Slightly Late",
// exactly 8 is "Late".
func StatusForDaysLate(daysLate int) PaymentStatus {
	switch {
	case daysLate <= -1:
		return StatusEarly
	case daysLate <= 0:
		return StatusOnTime
	case daysLate <= 7:
		return StatusSlightlyLate
	case daysLate <= 30:
		return StatusLate
	case daysLate <= 60:
		return StatusVeryLate
	default:
		return StatusExtremelyLate
	}
}

// ComputeMetrics derives the delinquency metrics for every row. It is a
// total function: every input row yields a scored row, no failure mode.
//
// asOf is the evaluation instant, captured once per batch by the caller. A
// row with no payment accrues lateness against asOf rather than a fixed
// reference, so unpaid rows are a function of evaluation time across
// re-runs; with the same asOf the computation is idempotent.
//
// The input slice is not mutated; callers keep the joiner's output intact
// for independent re-derivation of the views.
func ComputeMetrics(rows []ReconciledRow, asOf time.Time) []ReconciledRow {
	out := make([]ReconciledRow, len(rows))
	for i, row := range rows {
		if row.PaidAt != nil {
			row.DaysLate = utils.DaysBetween(row.PlanAt, *row.PaidAt)
		} else {
			row.DaysLate = utils.DaysBetween(row.PlanAt, asOf)
		}

		row.PaymentGap = row.PlanSumTotal.Sub(row.PaidSum)
		row.IsDelinquent = row.DaysLate > 0

		if row.PutAt != nil {
			row.LoanAgeDays = utils.DaysBetween(*row.PutAt, row.PlanAt)
		} else {
			row.LoanAgeDays = 0
		}

		row.PaymentStatus = StatusForDaysLate(row.DaysLate)
		out[i] = row
	}
	return out
}
