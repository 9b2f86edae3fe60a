// delinquency-report runs the reconciliation engine over three local CSV
// files and prints the portfolio summary, without the HTTP server.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/loanpulse_backend/models"
	"bitbucket.org/mmdatafocus/loanpulse_backend/models/reports"
	"bitbucket.org/mmdatafocus/loanpulse_backend/utils"
)

func main() {
	ordersPath := flag.String("orders", "", "Path to orders CSV (order_id, created_at, put_at, closed_at, issued_sum)")
	planPath := flag.String("plan", "", "Path to payment plan CSV (order_id, plan_at, plan_sum_total)")
	paymentsPath := flag.String("payments", "", "Path to actual payments CSV (order_id, paid_at, paid_sum)")
	asOfFlag := flag.String("as-of", "", "Evaluation date for unpaid obligations (YYYY-MM-DD); defaults to now")
	csvOut := flag.String("csv", "", "Optional path for the delimited-text export")
	xlsxOut := flag.String("xlsx", "", "Optional path for the spreadsheet export")
	flag.Parse()

	if *ordersPath == "" || *planPath == "" || *paymentsPath == "" {
		fmt.Fprintln(os.Stderr, "--orders, --plan and --payments are required")
		os.Exit(1)
	}

	asOf := time.Now()
	if strings.TrimSpace(*asOfFlag) != "" {
		parsed, err := utils.ParseTimestamp(*asOfFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid --as-of date: %v\n", err)
			os.Exit(1)
		}
		asOf = parsed
	}

	orders, orderStats, err := loadOrders(*ordersPath)
	exitOnError("orders", err)
	plan, planStats, err := loadPlan(*planPath)
	exitOnError("plan", err)
	payments, paymentStats, err := loadPayments(*paymentsPath)
	exitOnError("payments", err)

	rows := models.ComputeMetrics(models.Reconcile(orders, plan, payments), asOf)
	summary := models.Summarize(rows)
	diagnostics := models.Diagnose(orders, plan, payments)

	fmt.Println("Credit Loan Delinquency Report")
	fmt.Println(strings.Repeat("=", 40))
	fmt.Printf("As of: %s\n", asOf.Format("2006-01-02"))
	fmt.Printf("Reconciled rows: %d (loans: %d)\n", summary.TotalPayments, summary.TotalLoans)
	fmt.Printf("Average days late: %.1f\n", summary.AvgDaysLate)
	fmt.Printf("Delinquency rate: %.1f%%\n", summary.DelinquencyRate)
	fmt.Printf("Planned total: %s | Paid total: %s | Deficit: %s (%.1f%%)\n",
		summary.TotalPlanned.StringFixed(2),
		summary.TotalPaid.StringFixed(2),
		summary.PaymentDeficit.StringFixed(2),
		summary.PaymentDeficitPct,
	)
	fmt.Printf("On time or early: %d | Late: %d\n", summary.OnTimeOrEarly, summary.LatePayments)

	fmt.Println("\nStatus breakdown")
	fmt.Println(strings.Repeat("-", 40))
	statusCounts := make(map[models.PaymentStatus]int)
	for _, row := range rows {
		statusCounts[row.PaymentStatus]++
	}
	for _, status := range models.AllPaymentStatuses() {
		fmt.Printf("%-28s %d\n", status, statusCounts[status])
	}

	fmt.Println("\nSource quality")
	fmt.Println(strings.Repeat("-", 40))
	printStats("orders", orderStats)
	printStats("plan", planStats)
	printStats("payments", paymentStats)
	fmt.Printf("Orders without payments: %d\n", diagnostics.OrdersWithoutPayments)
	fmt.Printf("Payments without plan:   %d\n", diagnostics.PaymentsWithoutPlan)
	fmt.Printf("Plan without orders:     %d\n", diagnostics.PlanWithoutOrders)

	if *csvOut != "" {
		exitOnError("csv export", writeExport(*csvOut, rows, reports.WriteCSV))
		fmt.Printf("\nCSV export saved to %s\n", *csvOut)
	}
	if *xlsxOut != "" {
		exitOnError("xlsx export", writeExport(*xlsxOut, rows, reports.WriteExcel))
		fmt.Printf("Spreadsheet export saved to %s\n", *xlsxOut)
	}
}

func loadOrders(path string) (*models.OrderTable, models.NormalizeStats, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, models.NormalizeStats{}, err
	}
	defer file.Close()
	return models.ParseOrders(file)
}

func loadPlan(path string) (*models.PlanTable, models.NormalizeStats, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, models.NormalizeStats{}, err
	}
	defer file.Close()
	return models.ParsePlan(file)
}

func loadPayments(path string) (*models.PaymentTable, models.NormalizeStats, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, models.NormalizeStats{}, err
	}
	defer file.Close()
	return models.ParsePayments(file)
}

func writeExport(path string, rows []models.ReconciledRow, write func(w io.Writer, rows []models.ReconciledRow) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return write(file, rows)
}

func printStats(kind string, stats models.NormalizeStats) {
	fmt.Printf("%-9s rows read %d, dropped %d, cells coerced %d\n", kind, stats.RowsRead, stats.RowsDropped, stats.CellsCoerced)
}

func exitOnError(context string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error (%s): %v\n", context, err)
		os.Exit(1)
	}
}
