package reports

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"bitbucket.org/mmdatafocus/loanpulse_backend/models"
	"bitbucket.org/mmdatafocus/loanpulse_backend/utils"
)

// ExportColumns is the fixed column order shared by both export encodings.
var ExportColumns = []string{
	"order_id",
	"created_at",
	"put_at",
	"closed_at",
	"issued_sum",
	"plan_at",
	"plan_sum_total",
	"paid_at",
	"paid_sum",
	"days_late",
	"payment_gap",
	"is_delinquent",
	"loan_age_days",
	"payment_status",
}

// WriteCSV streams the row collection as delimited text. Timestamps render
// as "YYYY-MM-DD HH:MM:SS", missing values as empty cells.
func WriteCSV(w io.Writer, rows []models.ReconciledRow) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(ExportColumns); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write(exportRecord(row)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func exportRecord(row models.ReconciledRow) []string {
	return []string{
		row.OrderId,
		formatTimePtr(row.CreatedAt),
		formatTimePtr(row.PutAt),
		formatTimePtr(row.ClosedAt),
		row.IssuedSum.String(),
		utils.FormatTimestamp(row.PlanAt),
		row.PlanSumTotal.String(),
		formatTimePtr(row.PaidAt),
		row.PaidSum.String(),
		strconv.Itoa(row.DaysLate),
		row.PaymentGap.String(),
		strconv.FormatBool(row.IsDelinquent),
		strconv.Itoa(row.LoanAgeDays),
		string(row.PaymentStatus),
	}
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return utils.FormatTimestamp(*t)
}
