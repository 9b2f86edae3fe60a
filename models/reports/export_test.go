package reports_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/loanpulse_backend/models"
	"bitbucket.org/mmdatafocus/loanpulse_backend/models/reports"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func exportRows(t *testing.T) []models.ReconciledRow {
	t.Helper()
	createdAt := day(t, "2024-01-01")
	paidAt := time.Date(2024, 2, 5, 14, 30, 45, 0, time.UTC)
	return []models.ReconciledRow{
		{
			OrderId:       "1001",
			CreatedAt:     &createdAt,
			PutAt:         &createdAt,
			IssuedSum:     decimal.RequireFromString("2500.50"),
			PlanAt:        day(t, "2024-02-01"),
			PlanSumTotal:  decimal.RequireFromString("300"),
			PaidAt:        &paidAt,
			PaidSum:       decimal.RequireFromString("300"),
			DaysLate:      4,
			PaymentGap:    decimal.Zero,
			IsDelinquent:  true,
			LoanAgeDays:   31,
			PaymentStatus: models.StatusSlightlyLate,
		},
		{
			OrderId:       "1002",
			IssuedSum:     decimal.RequireFromString("800"),
			PlanAt:        day(t, "2024-02-10"),
			PlanSumTotal:  decimal.RequireFromString("120"),
			PaidSum:       decimal.Zero,
			DaysLate:      20,
			PaymentGap:    decimal.RequireFromString("120"),
			IsDelinquent:  true,
			LoanAgeDays:   0,
			PaymentStatus: models.StatusLate,
		},
	}
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	rows := exportRows(t)

	var buf bytes.Buffer
	if err := reports.WriteCSV(&buf, rows); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("re-parsing exported CSV failed: %v", err)
	}
	if len(records) != len(rows)+1 {
		t.Fatalf("expected header plus %d rows, got %d records", len(rows), len(records))
	}

	header := records[0]
	if len(header) != len(reports.ExportColumns) {
		t.Fatalf("expected %d columns, got %d", len(reports.ExportColumns), len(header))
	}
	for i, name := range reports.ExportColumns {
		if header[i] != name {
			t.Fatalf("column %d: expected %q, got %q", i, name, header[i])
		}
	}

	first := records[1]
	if first[0] != "1001" {
		t.Fatalf("expected order_id 1001, got %q", first[0])
	}
	if first[1] != "2024-01-01 00:00:00" {
		t.Fatalf("expected second-truncated created_at, got %q", first[1])
	}
	if first[7] != "2024-02-05 14:30:45" {
		t.Fatalf("expected paid_at with wall time, got %q", first[7])
	}
	if first[4] != "2500.5" {
		t.Fatalf("expected issued_sum 2500.5, got %q", first[4])
	}
	if first[9] != "4" || first[11] != "true" || first[13] != string(models.StatusSlightlyLate) {
		t.Fatalf("unexpected metric cells: %v", first)
	}

	second := records[2]
	if second[3] != "" || second[7] != "" {
		t.Fatalf("missing timestamps must render empty, got closed_at=%q paid_at=%q", second[3], second[7])
	}
	if second[8] != "0" {
		t.Fatalf("expected zero paid_sum, got %q", second[8])
	}
}

func TestWriteExcel_SheetAndHeader(t *testing.T) {
	rows := exportRows(t)

	var buf bytes.Buffer
	if err := reports.WriteExcel(&buf, rows); err != nil {
		t.Fatalf("WriteExcel failed: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("re-opening exported workbook failed: %v", err)
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex("Loan Analysis"); err != nil || idx < 0 {
		t.Fatalf("expected sheet \"Loan Analysis\", index %d err %v", idx, err)
	}

	cells, err := f.GetRows("Loan Analysis")
	if err != nil {
		t.Fatalf("reading sheet rows failed: %v", err)
	}
	if len(cells) != len(rows)+1 {
		t.Fatalf("expected header plus %d rows, got %d", len(rows), len(cells))
	}
	for i, name := range reports.ExportColumns {
		if cells[0][i] != name {
			t.Fatalf("header column %d: expected %q, got %q", i, name, cells[0][i])
		}
	}
	if cells[1][0] != "1001" || cells[1][13] != string(models.StatusSlightlyLate) {
		t.Fatalf("unexpected first data row: %v", cells[1])
	}
}
