package models

// Diagnostics reports join-key mismatches across the three normalized
// sources. Computed by set difference on order_id, not from the joined
// table, so dropped orphans stay visible.
type Diagnostics struct {
	OrdersWithoutPayments int `json:"ordersWithoutPayments"`
	PaymentsWithoutPlan   int `json:"paymentsWithoutPlan"`
	PlanWithoutOrders     int `json:"planWithoutOrders"`
}

func Diagnose(orders *OrderTable, plan *PlanTable, payments *PaymentTable) Diagnostics {
	orderIds := orders.OrderIdSet()
	planIds := plan.OrderIdSet()
	paymentIds := payments.OrderIdSet()

	return Diagnostics{
		OrdersWithoutPayments: countMissing(orderIds, paymentIds),
		PaymentsWithoutPlan:   countMissing(paymentIds, planIds),
		PlanWithoutOrders:     countMissing(planIds, orderIds),
	}
}

func countMissing(from map[string]struct{}, in map[string]struct{}) int {
	count := 0
	for id := range from {
		if _, ok := in[id]; !ok {
			count++
		}
	}
	return count
}
