package models

import (
	"io"
	"time"

	"bitbucket.org/mmdatafocus/loanpulse_backend/utils"
	"github.com/shopspring/decimal"
)

// Order is one loan disbursement record. Immutable after normalization.
type Order struct {
	OrderId   string           `json:"order_id"`
	CreatedAt *time.Time       `json:"created_at"`
	PutAt     *time.Time       `json:"put_at"`
	ClosedAt  *time.Time       `json:"closed_at"`
	IssuedSum *decimal.Decimal `json:"issued_sum"`
}

type OrderTable struct {
	Records []Order
}

var orderColumns = []string{"order_id", "created_at", "put_at", "closed_at", "issued_sum"}

// ParseOrders reads the orders source. Rows without an order_id are
// dropped; any other malformed cell coerces to missing.
func ParseOrders(r io.Reader) (*OrderTable, NormalizeStats, error) {
	var stats NormalizeStats

	table, err := readTable(r)
	if err != nil {
		return nil, stats, err
	}
	if err := table.requireColumns("orders", orderColumns); err != nil {
		return nil, stats, err
	}

	out := &OrderTable{Records: make([]Order, 0, len(table.rows))}
	for _, row := range table.rows {
		stats.RowsRead++

		orderId := canonicalOrderId(table.cell(row, "order_id"))
		if orderId == "" {
			stats.RowsDropped++
			continue
		}

		record := Order{OrderId: orderId}
		record.CreatedAt = parseTimeCell(table.cell(row, "created_at"), &stats)
		record.PutAt = parseTimeCell(table.cell(row, "put_at"), &stats)
		record.ClosedAt = parseTimeCell(table.cell(row, "closed_at"), &stats)
		record.IssuedSum = parseAmountCell(table.cell(row, "issued_sum"), &stats)

		out.Records = append(out.Records, record)
	}

	return out, stats, nil
}

// OrderIdSet supports orphan diagnostics via set difference.
func (t *OrderTable) OrderIdSet() map[string]struct{} {
	set := make(map[string]struct{}, len(t.Records))
	for _, r := range t.Records {
		set[r.OrderId] = struct{}{}
	}
	return set
}

// parseTimeCell coerces unparseable timestamps to nil. Empty cells are
// missing data, not coercions.
func parseTimeCell(raw string, stats *NormalizeStats) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := utils.ParseTimestamp(raw)
	if err != nil {
		stats.CellsCoerced++
		return nil
	}
	return &t
}

func parseAmountCell(raw string, stats *NormalizeStats) *decimal.Decimal {
	if raw == "" {
		return nil
	}
	d, err := utils.ParseDecimal(raw)
	if err != nil {
		stats.CellsCoerced++
		return nil
	}
	return &d
}
