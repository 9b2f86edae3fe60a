package models

import (
	"io"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentRecord is one actual money transfer tied to an order. An order may
// carry any number of them, including none.
type PaymentRecord struct {
	OrderId string           `json:"order_id"`
	PaidAt  time.Time        `json:"paid_at"`
	PaidSum *decimal.Decimal `json:"paid_sum"`
}

type PaymentTable struct {
	Records []PaymentRecord
}

var paymentColumns = []string{"order_id", "paid_at", "paid_sum"}

// ParsePayments reads the actual-payments source. Rows missing order_id or
// paid_at are dropped.
func ParsePayments(r io.Reader) (*PaymentTable, NormalizeStats, error) {
	var stats NormalizeStats

	table, err := readTable(r)
	if err != nil {
		return nil, stats, err
	}
	if err := table.requireColumns("payments", paymentColumns); err != nil {
		return nil, stats, err
	}

	out := &PaymentTable{Records: make([]PaymentRecord, 0, len(table.rows))}
	for _, row := range table.rows {
		stats.RowsRead++

		orderId := canonicalOrderId(table.cell(row, "order_id"))
		paidAt := parseTimeCell(table.cell(row, "paid_at"), &stats)
		if orderId == "" || paidAt == nil {
			stats.RowsDropped++
			continue
		}

		out.Records = append(out.Records, PaymentRecord{
			OrderId: orderId,
			PaidAt:  *paidAt,
			PaidSum: parseAmountCell(table.cell(row, "paid_sum"), &stats),
		})
	}

	return out, stats, nil
}

func (t *PaymentTable) OrderIdSet() map[string]struct{} {
	set := make(map[string]struct{}, len(t.Records))
	for _, r := range t.Records {
		set[r.OrderId] = struct{}{}
	}
	return set
}
