package reports

import (
	"sort"

	"bitbucket.org/mmdatafocus/loanpulse_backend/models"
	"github.com/shopspring/decimal"
)

// Loan amount buckets are lower-inclusive, upper-exclusive; the last bucket
// catches everything at or above 10K. A nil upper bound means unbounded.
type amountRange struct {
	label string
	lower decimal.Decimal
	upper *decimal.Decimal
}

var loanAmountRanges = buildLoanAmountRanges()

func buildLoanAmountRanges() []amountRange {
	edges := []int64{0, 1000, 2000, 5000, 10000}
	labels := []string{"0-1K", "1K-2K", "2K-5K", "5K-10K", "10K+"}

	ranges := make([]amountRange, len(labels))
	for i := range labels {
		r := amountRange{label: labels[i], lower: decimal.NewFromInt(edges[i])}
		if i+1 < len(edges) {
			upper := decimal.NewFromInt(edges[i+1])
			r.upper = &upper
		}
		ranges[i] = r
	}
	return ranges
}

// LoanAmountRangeLabels returns the row axis of the heatmap in order.
func LoanAmountRangeLabels() []string {
	labels := make([]string, len(loanAmountRanges))
	for i, r := range loanAmountRanges {
		labels[i] = r.label
	}
	return labels
}

// RangeForAmount buckets an issued sum. Anything that fits no bounded
// bucket, including everything at or above 10K, lands in the final one.
func RangeForAmount(amount decimal.Decimal) string {
	for _, r := range loanAmountRanges {
		if r.upper == nil {
			break
		}
		if amount.GreaterThanOrEqual(r.lower) && amount.LessThan(*r.upper) {
			return r.label
		}
	}
	return loanAmountRanges[len(loanAmountRanges)-1].label
}

// HeatmapGrid is mean days_late per (loan amount range, year-month) cell.
// Cells[i][j] corresponds to Ranges[i] and Periods[j]. Empty cells hold the
// sentinel 0; callers must not read it as "zero days late on average"
// without checking Counts.
type HeatmapGrid struct {
	Ranges  []string    `json:"ranges"`
	Periods []string    `json:"periods"`
	Cells   [][]float64 `json:"cells"`
	Counts  [][]int     `json:"counts"`
}

func Heatmap(rows []models.ReconciledRow) HeatmapGrid {
	type cell struct {
		daysLateSum int
		count       int
	}

	cells := make(map[string]map[string]*cell)
	periodSet := make(map[string]struct{})
	for _, row := range rows {
		period := monthKey(row.PlanAt)
		rangeLabel := RangeForAmount(row.IssuedSum)
		periodSet[period] = struct{}{}
		if cells[rangeLabel] == nil {
			cells[rangeLabel] = make(map[string]*cell)
		}
		c, ok := cells[rangeLabel][period]
		if !ok {
			c = &cell{}
			cells[rangeLabel][period] = c
		}
		c.daysLateSum += row.DaysLate
		c.count++
	}

	periods := make([]string, 0, len(periodSet))
	for p := range periodSet {
		periods = append(periods, p)
	}
	sort.Strings(periods)

	grid := HeatmapGrid{
		Ranges:  LoanAmountRangeLabels(),
		Periods: periods,
		Cells:   make([][]float64, len(loanAmountRanges)),
		Counts:  make([][]int, len(loanAmountRanges)),
	}
	for i, rangeLabel := range grid.Ranges {
		grid.Cells[i] = make([]float64, len(periods))
		grid.Counts[i] = make([]int, len(periods))
		for j, period := range periods {
			if c, ok := cells[rangeLabel][period]; ok && c.count > 0 {
				grid.Cells[i][j] = float64(c.daysLateSum) / float64(c.count)
				grid.Counts[i][j] = c.count
			}
		}
	}
	return grid
}
