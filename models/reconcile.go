package models

import (
	"time"

	"bitbucket.org/mmdatafocus/loanpulse_backend/utils"
	"github.com/shopspring/decimal"
)

// ReconciledRow is the per-plan-entry result of joining all three sources,
// plus the derived delinquency metrics. One plan entry produces one row per
// matching payment record (or a single unpaid row when none match).
type ReconciledRow struct {
	OrderId      string           `json:"order_id"`
	CreatedAt    *time.Time       `json:"created_at"`
	PutAt        *time.Time       `json:"put_at"`
	ClosedAt     *time.Time       `json:"closed_at"`
	IssuedSum    decimal.Decimal  `json:"issued_sum"`
	PlanAt       time.Time        `json:"plan_at"`
	PlanSumTotal decimal.Decimal  `json:"plan_sum_total"`
	PaidAt       *time.Time       `json:"paid_at"`
	PaidSum      decimal.Decimal  `json:"paid_sum"`

	DaysLate      int             `json:"days_late"`
	PaymentGap    decimal.Decimal `json:"payment_gap"`
	IsDelinquent  bool            `json:"is_delinquent"`
	LoanAgeDays   int             `json:"loan_age_days"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
}

// Reconcile joins the three normalized tables into one row per planned
// payment:
//
//  1. Orders x Plan, inner join on order_id. A plan entry without an order
//     has no loan context and is silently dropped (surfaced by Diagnose, not
//     treated as an error here).
//  2. Result x Payments, left join on order_id. Every plan row survives; an
//     order_id with several payments multiplies the plan row, one per
//     payment. That is the natural one-to-many join shape and is never
//     deduplicated.
//
// Fill policy: a plan row with no payment is "paid nothing", so paid_sum is
// 0 and paid_at stays nil. A positive paid_sum with no payment date is
// treated as same-date settlement and backfilled with plan_at.
//
// The inputs are never mutated; the result is a new slice.
func Reconcile(orders *OrderTable, plan *PlanTable, payments *PaymentTable) []ReconciledRow {
	ordersById := make(map[string]Order, len(orders.Records))
	for _, o := range orders.Records {
		if _, exists := ordersById[o.OrderId]; !exists {
			ordersById[o.OrderId] = o
		}
	}

	paymentsById := make(map[string][]PaymentRecord, len(payments.Records))
	for _, p := range payments.Records {
		paymentsById[p.OrderId] = append(paymentsById[p.OrderId], p)
	}

	rows := make([]ReconciledRow, 0, len(plan.Records))
	for _, entry := range plan.Records {
		order, ok := ordersById[entry.OrderId]
		if !ok {
			continue
		}

		// Amounts the normalizer coerced to missing enter the arithmetic
		// as zero so every downstream metric stays numerically defined.
		base := ReconciledRow{
			OrderId:      entry.OrderId,
			CreatedAt:    order.CreatedAt,
			PutAt:        order.PutAt,
			ClosedAt:     order.ClosedAt,
			IssuedSum:    utils.DereferencePtr(order.IssuedSum, decimal.Zero),
			PlanAt:       entry.PlanAt,
			PlanSumTotal: utils.DereferencePtr(entry.PlanSumTotal, decimal.Zero),
		}

		matches := paymentsById[entry.OrderId]
		if len(matches) == 0 {
			base.PaidSum = decimal.Zero
			rows = append(rows, base)
			continue
		}

		for _, payment := range matches {
			row := base
			row.PaidSum = utils.DereferencePtr(payment.PaidSum, decimal.Zero)
			if !payment.PaidAt.IsZero() {
				paidAt := payment.PaidAt
				row.PaidAt = &paidAt
			} else if row.PaidSum.IsPositive() {
				// Same-date settlement default, not a data error.
				planAt := row.PlanAt
				row.PaidAt = &planAt
			}
			rows = append(rows, row)
		}
	}

	return rows
}
