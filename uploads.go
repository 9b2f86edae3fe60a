package main

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/loanpulse_backend/config"
	"bitbucket.org/mmdatafocus/loanpulse_backend/models"
	"bitbucket.org/mmdatafocus/loanpulse_backend/models/reports"
	"bitbucket.org/mmdatafocus/loanpulse_backend/utils"
	"github.com/gin-gonic/gin"
)

type fileUploadResponse struct {
	Kind    string                `json:"kind"`
	Records int                   `json:"records"`
	Stats   models.NormalizeStats `json:"stats"`
}

type analyzeRequest struct {
	AsOf string `form:"as_of" json:"as_of"`
}

type analyzeResponse struct {
	Rows        int                     `json:"rows"`
	AsOf        string                  `json:"as_of"`
	Summary     models.PortfolioSummary `json:"summary"`
	Diagnostics models.Diagnostics      `json:"diagnostics"`
	Sources     models.SourceStats      `json:"sources"`
}

type rowFilterQuery struct {
	PlanFrom  string `form:"plan_from"`
	PlanTo    string `form:"plan_to"`
	MinIssued string `form:"min_issued"`
	MaxIssued string `form:"max_issued"`
}

func createSessionHandler(store *models.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := store.Create()
		cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
		c.JSON(http.StatusCreated, gin.H{
			"session_id":     session.Id,
			"correlation_id": cid,
		})
	}
}

func uploadFileHandler(store *models.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		session, ok := sessionFromRequest(c, store)
		if !ok {
			return
		}

		kind := strings.ToLower(strings.TrimSpace(c.Param("kind")))
		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'file' is required"})
			return
		}
		if fileHeader.Size > config.MaxUploadSizeBytes() {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("file exceeds the %d byte upload limit", config.MaxUploadSizeBytes()),
			})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			config.LogError(logger, "uploads.go", "uploadFileHandler", "fileHeader.Open", kind, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read uploaded file"})
			return
		}
		defer file.Close()

		records, stats, err := normalizeUpload(kind, session, file)
		if err != nil {
			var schemaErr *utils.SchemaError
			if errors.As(err, &schemaErr) {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":           schemaErr.Error(),
					"missing_columns": schemaErr.MissingColumns,
				})
				return
			}
			config.LogError(logger, "uploads.go", "uploadFileHandler", "normalizeUpload", kind, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, fileUploadResponse{Kind: kind, Records: records, Stats: stats})
	}
}

func normalizeUpload(kind string, session *models.Session, file multipart.File) (int, models.NormalizeStats, error) {
	switch kind {
	case "orders":
		table, stats, err := models.ParseOrders(file)
		if err != nil {
			return 0, stats, err
		}
		session.SetOrders(table, stats)
		return len(table.Records), stats, nil
	case "plan":
		table, stats, err := models.ParsePlan(file)
		if err != nil {
			return 0, stats, err
		}
		session.SetPlan(table, stats)
		return len(table.Records), stats, nil
	case "payments":
		table, stats, err := models.ParsePayments(file)
		if err != nil {
			return 0, stats, err
		}
		session.SetPayments(table, stats)
		return len(table.Records), stats, nil
	default:
		return 0, models.NormalizeStats{}, fmt.Errorf("unknown file kind %q (want orders, plan or payments)", kind)
	}
}

func analyzeHandler(store *models.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := sessionFromRequest(c, store)
		if !ok {
			return
		}

		var req analyzeRequest
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}

		// One asOf snapshot per batch keeps unpaid-row lateness internally
		// consistent across all rows of this analysis.
		asOf := time.Now()
		if strings.TrimSpace(req.AsOf) != "" {
			parsed, err := utils.ParseTimestamp(req.AsOf)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid as_of value"})
				return
			}
			asOf = parsed
		}

		if err := session.Analyze(asOf); err != nil {
			if errors.Is(err, utils.ErrorSessionIncomplete) {
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		rows, analyzedAt, _ := session.Snapshot()
		c.JSON(http.StatusOK, analyzeResponse{
			Rows:        len(rows),
			AsOf:        utils.FormatTimestamp(analyzedAt),
			Summary:     models.Summarize(rows),
			Diagnostics: session.Diagnose(),
			Sources:     session.SourceStats(),
		})
	}
}

func rowsHandler(store *models.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, ok := filteredRowsFromRequest(c, store)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"count":   len(rows),
			"rows":    rows,
			"summary": models.Summarize(rows),
		})
	}
}

func viewHandler(store *models.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, ok := filteredRowsFromRequest(c, store)
		if !ok {
			return
		}

		switch strings.ToLower(strings.TrimSpace(c.Param("view"))) {
		case "trend":
			c.JSON(http.StatusOK, gin.H{"points": reports.MonthlyTrend(rows)})
		case "payments":
			c.JSON(http.StatusOK, gin.H{"points": reports.PlannedVsActual(rows)})
		case "behavior":
			c.JSON(http.StatusOK, gin.H{"months": reports.PaymentBehavior(rows)})
		case "heatmap":
			c.JSON(http.StatusOK, reports.Heatmap(rows))
		default:
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown view (want trend, payments, behavior or heatmap)"})
		}
	}
}

func exportCSVHandler(store *models.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, ok := filteredRowsFromRequest(c, store)
		if !ok {
			return
		}
		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", "attachment; filename=credit_loan_analysis.csv")
		if err := reports.WriteCSV(c.Writer, rows); err != nil {
			sessionId, _ := utils.GetSessionIdFromContext(c.Request.Context())
			config.LogError(config.GetLogger(), "uploads.go", "exportCSVHandler", "reports.WriteCSV", sessionId, err)
		}
	}
}

func exportExcelHandler(store *models.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, ok := filteredRowsFromRequest(c, store)
		if !ok {
			return
		}
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", "attachment; filename=credit_loan_analysis.xlsx")
		if err := reports.WriteExcel(c.Writer, rows); err != nil {
			sessionId, _ := utils.GetSessionIdFromContext(c.Request.Context())
			config.LogError(config.GetLogger(), "uploads.go", "exportExcelHandler", "reports.WriteExcel", sessionId, err)
		}
	}
}

func sessionFromRequest(c *gin.Context, store *models.SessionStore) (*models.Session, bool) {
	id := strings.TrimSpace(c.Param("id"))
	session, err := store.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil, false
	}
	ctx := utils.SetSessionIdInContext(c.Request.Context(), session.Id)
	c.Request = c.Request.WithContext(ctx)
	return session, true
}

func filteredRowsFromRequest(c *gin.Context, store *models.SessionStore) ([]models.ReconciledRow, bool) {
	session, ok := sessionFromRequest(c, store)
	if !ok {
		return nil, false
	}
	rows, _, analyzed := session.Snapshot()
	if !analyzed {
		c.JSON(http.StatusConflict, gin.H{"error": "session has not been analyzed yet"})
		return nil, false
	}

	filter, err := filterFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return filter.Apply(rows), true
}

func filterFromQuery(c *gin.Context) (models.RowFilter, error) {
	var query rowFilterQuery
	var filter models.RowFilter
	if err := c.ShouldBindQuery(&query); err != nil {
		return filter, err
	}

	if query.PlanFrom != "" {
		t, err := utils.ParseTimestamp(query.PlanFrom)
		if err != nil {
			return filter, fmt.Errorf("invalid plan_from value")
		}
		filter.PlanFrom = &t
	}
	if query.PlanTo != "" {
		t, err := utils.ParseTimestamp(query.PlanTo)
		if err != nil {
			return filter, fmt.Errorf("invalid plan_to value")
		}
		filter.PlanTo = &t
	}
	if query.MinIssued != "" {
		d, err := utils.ParseDecimal(query.MinIssued)
		if err != nil {
			return filter, fmt.Errorf("invalid min_issued value")
		}
		filter.MinIssued = &d
	}
	if query.MaxIssued != "" {
		d, err := utils.ParseDecimal(query.MaxIssued)
		if err != nil {
			return filter, fmt.Errorf("invalid max_issued value")
		}
		filter.MaxIssued = &d
	}
	return filter, nil
}
