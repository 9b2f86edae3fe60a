package models_test

import (
	"reflect"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/loanpulse_backend/models"
	"github.com/shopspring/decimal"
)

func TestStatusForDaysLate_Boundaries(t *testing.T) {
	cases := []struct {
		daysLate int
		expected models.PaymentStatus
	}{
		{-45, models.StatusEarly},
		{-1, models.StatusEarly},
		{0, models.StatusOnTime},
		{1, models.StatusSlightlyLate},
		{7, models.StatusSlightlyLate},
		{8, models.StatusLate},
		{30, models.StatusLate},
		{31, models.StatusVeryLate},
		{60, models.StatusVeryLate},
		{61, models.StatusExtremelyLate},
		{500, models.StatusExtremelyLate},
	}
	for _, tc := range cases {
		if got := models.StatusForDaysLate(tc.daysLate); got != tc.expected {
			t.Fatalf("StatusForDaysLate(%d) expected %q, got %q", tc.daysLate, tc.expected, got)
		}
	}
}

func TestPaymentStatuses_DeclaredOrderAndColors(t *testing.T) {
	statuses := models.AllPaymentStatuses()
	if len(statuses) != 6 {
		t.Fatalf("expected 6 statuses, got %d", len(statuses))
	}
	for i, status := range statuses {
		if status.SortOrder() != i {
			t.Fatalf("%q: sort order %d at position %d", status, status.SortOrder(), i)
		}
		if status.Color() == "" {
			t.Fatalf("%q has no declared color", status)
		}
	}
	if statuses[0] != models.StatusEarly || statuses[5] != models.StatusExtremelyLate {
		t.Fatalf("unexpected status ordering: %v", statuses)
	}
}

func scoredRow(t *testing.T, planAt string, paidAt string, planSum string, paidSum string, asOf string) models.ReconciledRow {
	t.Helper()
	row := models.ReconciledRow{
		OrderId:      "O1",
		PlanAt:       mustDay(t, planAt),
		PlanSumTotal: decimal.RequireFromString(planSum),
		PaidSum:      decimal.RequireFromString(paidSum),
	}
	if paidAt != "" {
		paid := mustDay(t, paidAt)
		row.PaidAt = &paid
	}
	rows := models.ComputeMetrics([]models.ReconciledRow{row}, mustDay(t, asOf))
	return rows[0]
}

func TestComputeMetrics_PaidRows(t *testing.T) {
	cases := []struct {
		name     string
		planAt   string
		paidAt   string
		daysLate int
		status   models.PaymentStatus
	}{
		{"same day settles on time", "2024-02-01", "2024-02-01", 0, models.StatusOnTime},
		{"exactly seven days is slightly late", "2024-02-01", "2024-02-08", 7, models.StatusSlightlyLate},
		{"exactly eight days is late", "2024-02-01", "2024-02-09", 8, models.StatusLate},
		{"early payment has negative lateness", "2024-02-10", "2024-02-05", -5, models.StatusEarly},
	}
	for _, tc := range cases {
		row := scoredRow(t, tc.planAt, tc.paidAt, "100", "100", "2025-01-01")
		if row.DaysLate != tc.daysLate {
			t.Fatalf("%s: expected days_late %d, got %d", tc.name, tc.daysLate, row.DaysLate)
		}
		if row.PaymentStatus != tc.status {
			t.Fatalf("%s: expected status %q, got %q", tc.name, tc.status, row.PaymentStatus)
		}
		if row.IsDelinquent != (tc.daysLate > 0) {
			t.Fatalf("%s: delinquency flag inconsistent with days_late", tc.name)
		}
	}
}

func TestComputeMetrics_UnpaidRowAccruesAgainstAsOf(t *testing.T) {
	row := scoredRow(t, "2024-02-01", "", "100", "0", "2024-03-15")
	if row.DaysLate != 43 {
		t.Fatalf("expected 43 days late against asOf, got %d", row.DaysLate)
	}
	if !row.IsDelinquent {
		t.Fatalf("unpaid overdue row must be delinquent")
	}
	if row.PaymentGap.String() != "100" {
		t.Fatalf("expected payment gap 100, got %s", row.PaymentGap)
	}
}

func TestComputeMetrics_PaymentGapSigned(t *testing.T) {
	row := scoredRow(t, "2024-02-01", "2024-02-01", "100", "130", "2024-03-01")
	if row.PaymentGap.String() != "-30" {
		t.Fatalf("overpayment must yield a negative gap, got %s", row.PaymentGap)
	}
}

func TestComputeMetrics_LoanAge(t *testing.T) {
	putAt := mustDay(t, "2024-01-01")
	rows := []models.ReconciledRow{
		{OrderId: "O1", PlanAt: mustDay(t, "2024-02-01"), PutAt: &putAt, PlanSumTotal: decimal.Zero, PaidSum: decimal.Zero},
		{OrderId: "O2", PlanAt: mustDay(t, "2024-02-01"), PlanSumTotal: decimal.Zero, PaidSum: decimal.Zero},
	}
	scored := models.ComputeMetrics(rows, mustDay(t, "2024-03-01"))
	if scored[0].LoanAgeDays != 31 {
		t.Fatalf("expected loan age 31, got %d", scored[0].LoanAgeDays)
	}
	if scored[1].LoanAgeDays != 0 {
		t.Fatalf("missing put_at must yield loan age 0, got %d", scored[1].LoanAgeDays)
	}
}

func TestComputeMetrics_IdempotentForSameAsOf(t *testing.T) {
	putAt := mustDay(t, "2024-01-01")
	paidAt := mustDay(t, "2024-02-05")
	rows := []models.ReconciledRow{
		{OrderId: "O1", PlanAt: mustDay(t, "2024-02-01"), PutAt: &putAt, PlanSumTotal: decimal.RequireFromString("100"), PaidSum: decimal.RequireFromString("100"), PaidAt: &paidAt},
		{OrderId: "O2", PlanAt: mustDay(t, "2024-02-01"), PlanSumTotal: decimal.RequireFromString("50"), PaidSum: decimal.Zero},
	}
	asOf := mustDay(t, "2024-06-01")

	first := models.ComputeMetrics(rows, asOf)
	second := models.ComputeMetrics(first, asOf)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("metrics must be idempotent for a fixed asOf:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestComputeMetrics_FullScenario(t *testing.T) {
	putAt := mustDay(t, "2024-01-01")
	orders := orderTable(models.Order{OrderId: "O1", PutAt: &putAt, IssuedSum: amount("1000")})
	plan := planTable(models.PlanEntry{OrderId: "O1", PlanAt: mustDay(t, "2024-02-01"), PlanSumTotal: amount("100")})
	payments := paymentTable(models.PaymentRecord{OrderId: "O1", PaidAt: mustDay(t, "2024-02-05"), PaidSum: amount("100")})

	rows := models.ComputeMetrics(models.Reconcile(orders, plan, payments), mustDay(t, "2025-01-01"))
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if row.DaysLate != 4 {
		t.Fatalf("expected days_late 4, got %d", row.DaysLate)
	}
	if !row.PaymentGap.IsZero() {
		t.Fatalf("expected zero payment gap, got %s", row.PaymentGap)
	}
	if !row.IsDelinquent {
		t.Fatalf("expected delinquent row")
	}
	if row.PaymentStatus != models.StatusSlightlyLate {
		t.Fatalf("expected %q, got %q", models.StatusSlightlyLate, row.PaymentStatus)
	}
	if row.LoanAgeDays != 31 {
		t.Fatalf("expected loan age 31, got %d", row.LoanAgeDays)
	}
}

func TestComputeMetrics_UnpaidScenarioUsesEvaluationDate(t *testing.T) {
	putAt := mustDay(t, "2024-01-01")
	orders := orderTable(models.Order{OrderId: "O1", PutAt: &putAt, IssuedSum: amount("1000")})
	plan := planTable(models.PlanEntry{OrderId: "O1", PlanAt: mustDay(t, "2024-02-01"), PlanSumTotal: amount("100")})

	asOf := time.Now()
	rows := models.ComputeMetrics(models.Reconcile(orders, plan, paymentTable()), asOf)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if row.PaidAt != nil {
		t.Fatalf("expected missing paid_at")
	}
	if !row.PaidSum.IsZero() {
		t.Fatalf("expected paid_sum 0, got %s", row.PaidSum)
	}
	if row.PaymentGap.String() != "100" {
		t.Fatalf("expected payment gap 100, got %s", row.PaymentGap)
	}
	today := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	expected := int(today.Sub(mustDay(t, "2024-02-01")).Hours() / 24)
	if row.DaysLate != expected {
		t.Fatalf("expected days_late %d (today minus plan date), got %d", expected, row.DaysLate)
	}
}
