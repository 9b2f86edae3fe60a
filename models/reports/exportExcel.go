package reports

import (
	"fmt"
	"io"

	"bitbucket.org/mmdatafocus/loanpulse_backend/models"
	"github.com/xuri/excelize/v2"
)

const exportSheetName = "Loan Analysis"

// WriteExcel writes the row collection as a single-sheet workbook with a
// styled header row and columns sized to their content.
func WriteExcel(w io.Writer, rows []models.ReconciledRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheetName); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"2C3E50"}},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return err
	}

	widths := make([]int, len(ExportColumns))
	for col, name := range ExportColumns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(exportSheetName, cell, name); err != nil {
			return err
		}
		widths[col] = len(name)
	}

	lastHeaderCell, err := excelize.CoordinatesToCellName(len(ExportColumns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(exportSheetName, "A1", lastHeaderCell, headerStyle); err != nil {
		return err
	}

	for i, row := range rows {
		record := exportRecord(row)
		for col, value := range record {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(exportSheetName, cell, value); err != nil {
				return err
			}
			if len(value) > widths[col] {
				widths[col] = len(value)
			}
		}
	}

	// Auto-size: content width plus padding, clamped to keep very long
	// identifiers from producing absurd columns.
	for col, width := range widths {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		sized := float64(width) + 2
		if sized > 48 {
			sized = 48
		}
		if err := f.SetColWidth(exportSheetName, name, name, sized); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
