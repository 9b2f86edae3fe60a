package models

import (
	"io"
	"time"

	"github.com/shopspring/decimal"
)

// PlanEntry is one scheduled installment obligation tied to an order.
type PlanEntry struct {
	OrderId      string           `json:"order_id"`
	PlanAt       time.Time        `json:"plan_at"`
	PlanSumTotal *decimal.Decimal `json:"plan_sum_total"`
}

type PlanTable struct {
	Records []PlanEntry
}

var planColumns = []string{"order_id", "plan_at", "plan_sum_total"}

// ParsePlan reads the payment-plan source. Rows missing order_id or plan_at
// are dropped; plan_at is the temporal anchor every downstream metric hangs
// off.
func ParsePlan(r io.Reader) (*PlanTable, NormalizeStats, error) {
	var stats NormalizeStats

	table, err := readTable(r)
	if err != nil {
		return nil, stats, err
	}
	if err := table.requireColumns("payment plan", planColumns); err != nil {
		return nil, stats, err
	}

	out := &PlanTable{Records: make([]PlanEntry, 0, len(table.rows))}
	for _, row := range table.rows {
		stats.RowsRead++

		orderId := canonicalOrderId(table.cell(row, "order_id"))
		planAt := parseTimeCell(table.cell(row, "plan_at"), &stats)
		if orderId == "" || planAt == nil {
			stats.RowsDropped++
			continue
		}

		out.Records = append(out.Records, PlanEntry{
			OrderId:      orderId,
			PlanAt:       *planAt,
			PlanSumTotal: parseAmountCell(table.cell(row, "plan_sum_total"), &stats),
		})
	}

	return out, stats, nil
}

func (t *PlanTable) OrderIdSet() map[string]struct{} {
	set := make(map[string]struct{}, len(t.Records))
	for _, r := range t.Records {
		set[r.OrderId] = struct{}{}
	}
	return set
}
