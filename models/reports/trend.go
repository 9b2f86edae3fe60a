// Package reports holds the read-only projections consumed by the
// presentation layer: monthly aggregation views and the two export
// encodings. Everything here is re-derivable from the same row set.
package reports

import (
	"sort"
	"time"

	"bitbucket.org/mmdatafocus/loanpulse_backend/models"
	"github.com/shopspring/decimal"
)

// TrendPoint is one calendar month of delinquency movement.
type TrendPoint struct {
	Month           string  `json:"month"`
	AvgDaysLate     float64 `json:"avgDaysLate"`
	DelinquencyRate float64 `json:"delinquencyRate"`
	PaymentCount    int     `json:"paymentCount"`
}

// MonthlyTrend groups rows by the calendar month of plan_at and emits mean
// days late, delinquency rate (percent) and row count, oldest month first.
func MonthlyTrend(rows []models.ReconciledRow) []TrendPoint {
	type bucket struct {
		daysLateSum int
		delinquent  int
		count       int
	}
	buckets := make(map[string]*bucket)
	for _, row := range rows {
		key := monthKey(row.PlanAt)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		b.daysLateSum += row.DaysLate
		if row.IsDelinquent {
			b.delinquent++
		}
		b.count++
	}

	points := make([]TrendPoint, 0, len(buckets))
	for month, b := range buckets {
		points = append(points, TrendPoint{
			Month:           month,
			AvgDaysLate:     float64(b.daysLateSum) / float64(b.count),
			DelinquencyRate: float64(b.delinquent) / float64(b.count) * 100,
			PaymentCount:    b.count,
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Month < points[j].Month })
	return points
}

// ComparisonPoint is one month of planned-vs-actual payment volume.
type ComparisonPoint struct {
	Month        string          `json:"month"`
	PlannedTotal decimal.Decimal `json:"plannedTotal"`
	PaidTotal    decimal.Decimal `json:"paidTotal"`
	// PaymentRate is paid/planned in percent; 0 when nothing was planned
	// for the month (never NaN).
	PaymentRate float64 `json:"paymentRate"`
}

func PlannedVsActual(rows []models.ReconciledRow) []ComparisonPoint {
	type bucket struct {
		planned decimal.Decimal
		paid    decimal.Decimal
	}
	buckets := make(map[string]*bucket)
	for _, row := range rows {
		key := monthKey(row.PlanAt)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{planned: decimal.Zero, paid: decimal.Zero}
			buckets[key] = b
		}
		b.planned = b.planned.Add(row.PlanSumTotal)
		b.paid = b.paid.Add(row.PaidSum)
	}

	points := make([]ComparisonPoint, 0, len(buckets))
	for month, b := range buckets {
		point := ComparisonPoint{
			Month:        month,
			PlannedTotal: b.planned,
			PaidTotal:    b.paid,
		}
		if b.planned.IsPositive() {
			rate, _ := b.paid.Div(b.planned).Float64()
			point.PaymentRate = rate * 100
		}
		points = append(points, point)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Month < points[j].Month })
	return points
}

// StatusShare is one payment-status slice of a month's rows.
type StatusShare struct {
	Status  models.PaymentStatus `json:"status"`
	Color   string               `json:"color"`
	Count   int                  `json:"count"`
	Percent float64              `json:"percent"`
}

// BehaviorMonth breaks a month down by payment status. Every month carries
// all six statuses in their declared order, zero-count ones included, so
// chart series never depend on which labels happen to occur in the data.
type BehaviorMonth struct {
	Month    string        `json:"month"`
	Total    int           `json:"total"`
	Statuses []StatusShare `json:"statuses"`
}

func PaymentBehavior(rows []models.ReconciledRow) []BehaviorMonth {
	counts := make(map[string]map[models.PaymentStatus]int)
	for _, row := range rows {
		key := monthKey(row.PlanAt)
		if counts[key] == nil {
			counts[key] = make(map[models.PaymentStatus]int)
		}
		counts[key][row.PaymentStatus]++
	}

	months := make([]BehaviorMonth, 0, len(counts))
	for month, statusCounts := range counts {
		total := 0
		for _, c := range statusCounts {
			total += c
		}
		entry := BehaviorMonth{Month: month, Total: total}
		for _, status := range models.AllPaymentStatuses() {
			count := statusCounts[status]
			share := StatusShare{
				Status: status,
				Color:  status.Color(),
				Count:  count,
			}
			if total > 0 {
				share.Percent = float64(count) / float64(total) * 100
			}
			entry.Statuses = append(entry.Statuses, share)
		}
		months = append(months, entry)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Month < months[j].Month })
	return months
}

func monthKey(t time.Time) string {
	return t.Format("2006-01")
}
