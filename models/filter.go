package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RowFilter narrows the reconciled rows the way the dashboard sidebar does:
// by planned-payment date range and by issued loan amount. Nil bounds are
// open; set bounds are inclusive.
type RowFilter struct {
	PlanFrom  *time.Time
	PlanTo    *time.Time
	MinIssued *decimal.Decimal
	MaxIssued *decimal.Decimal
}

func (f RowFilter) Apply(rows []ReconciledRow) []ReconciledRow {
	out := make([]ReconciledRow, 0, len(rows))
	for _, row := range rows {
		if f.PlanFrom != nil && row.PlanAt.Before(*f.PlanFrom) {
			continue
		}
		if f.PlanTo != nil && row.PlanAt.After(*f.PlanTo) {
			continue
		}
		if f.MinIssued != nil && row.IssuedSum.LessThan(*f.MinIssued) {
			continue
		}
		if f.MaxIssued != nil && row.IssuedSum.GreaterThan(*f.MaxIssued) {
			continue
		}
		out = append(out, row)
	}
	return out
}

// PortfolioSummary is the headline block of the analysis: loan counts,
// lateness averages and planned-vs-paid totals over a (possibly filtered)
// row set.
type PortfolioSummary struct {
	TotalLoans        int             `json:"totalLoans"`
	TotalPayments     int             `json:"totalPayments"`
	TotalLoanAmount   decimal.Decimal `json:"totalLoanAmount"`
	AvgDaysLate       float64         `json:"avgDaysLate"`
	DelinquencyRate   float64         `json:"delinquencyRate"`
	OnTimeOrEarly     int             `json:"onTimeOrEarly"`
	LatePayments      int             `json:"latePayments"`
	TotalPlanned      decimal.Decimal `json:"totalPlanned"`
	TotalPaid         decimal.Decimal `json:"totalPaid"`
	PaymentDeficit    decimal.Decimal `json:"paymentDeficit"`
	PaymentDeficitPct float64         `json:"paymentDeficitPct"`
}

// Summarize tolerates an empty row set: the presentation layer's filters can
// legitimately match nothing, so every ratio falls back to zero instead of
// dividing by it.
func Summarize(rows []ReconciledRow) PortfolioSummary {
	summary := PortfolioSummary{
		TotalLoanAmount: decimal.Zero,
		TotalPlanned:    decimal.Zero,
		TotalPaid:       decimal.Zero,
		PaymentDeficit:  decimal.Zero,
	}
	if len(rows) == 0 {
		return summary
	}

	loans := make(map[string]struct{})
	delinquentLoans := make(map[string]struct{})
	daysLateSum := 0

	for _, row := range rows {
		loans[row.OrderId] = struct{}{}
		if row.IsDelinquent {
			delinquentLoans[row.OrderId] = struct{}{}
			summary.LatePayments++
		} else {
			summary.OnTimeOrEarly++
		}
		daysLateSum += row.DaysLate
		summary.TotalLoanAmount = summary.TotalLoanAmount.Add(row.IssuedSum)
		summary.TotalPlanned = summary.TotalPlanned.Add(row.PlanSumTotal)
		summary.TotalPaid = summary.TotalPaid.Add(row.PaidSum)
	}

	summary.TotalLoans = len(loans)
	summary.TotalPayments = len(rows)
	summary.AvgDaysLate = float64(daysLateSum) / float64(len(rows))
	if len(loans) > 0 {
		summary.DelinquencyRate = float64(len(delinquentLoans)) / float64(len(loans)) * 100
	}
	summary.PaymentDeficit = summary.TotalPlanned.Sub(summary.TotalPaid)
	if summary.TotalPlanned.IsPositive() {
		deficit, _ := summary.PaymentDeficit.Div(summary.TotalPlanned).Float64()
		summary.PaymentDeficitPct = deficit * 100
	}

	return summary
}
