// Package export packages rendered import reports into downloadable
// documents. Each exporter produces one format and reports its MIME
// type and suggested filename.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	apperrors "sitepulse/internal/errors"
	"sitepulse/ports"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// XLSXExporter writes the report as a two-sheet workbook: the chart series
// on one sheet, the prediction and summary on another.
type XLSXExporter struct{}

var _ ports.ReportExporter = (*XLSXExporter)(nil)

// NewXLSXExporter creates an XLSX exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// Export writes the workbook to w.
func (e *XLSXExporter) Export(report ports.Report, w io.Writer) (string, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	series := "Progress Series"
	idx, err := f.NewSheet(series)
	if err != nil {
		return "", "", apperrors.Wrap(err, "create series sheet")
	}
	f.SetActiveSheet(idx)

	headers := []string{"Days Elapsed", "Planned Progress (%)", "Actual Progress (%)"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(series, cell, h); err != nil {
			return "", "", apperrors.Wrap(err, "write series header")
		}
	}
	for r, point := range report.Series {
		values := []float64{point.DaysElapsed, point.PlannedProgress, point.ActualProgress}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(series, cell, v); err != nil {
				return "", "", apperrors.Wrap(err, "write series row")
			}
		}
	}

	overview := "Overview"
	if _, err := f.NewSheet(overview); err != nil {
		return "", "", apperrors.Wrap(err, "create overview sheet")
	}
	rows := [][]interface{}{
		{"Title", report.Title},
		{"Projects", report.Summary.Projects},
		{"Mean Actual (%)", report.Summary.MeanActual},
		{"Min Actual (%)", report.Summary.MinActual},
		{"Max Actual (%)", report.Summary.MaxActual},
		{"Trend (% per day)", report.Summary.TrendPerDay},
		{"Prediction", report.Prediction},
	}
	for r, pair := range rows {
		for c, v := range pair {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			if err := f.SetCellValue(overview, cell, v); err != nil {
				return "", "", apperrors.Wrap(err, "write overview row")
			}
		}
	}

	// Drop the default sheet so the workbook opens on the series.
	if idx, err := f.GetSheetIndex("Sheet1"); err == nil && idx != -1 {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return "", "", apperrors.Wrap(err, "drop default sheet")
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return "", "", apperrors.Wrap(err, "write workbook")
	}
	return xlsxContentType, fmt.Sprintf("%s.xlsx", filenameStem(report.Title)), nil
}
