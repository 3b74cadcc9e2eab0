package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	apperrors "sitepulse/internal/errors"
	"sitepulse/ports"
)

// PDFExporter writes the report as a single-flow A4 document: title,
// prediction text, summary block, then the series as a table.
type PDFExporter struct{}

var _ ports.ReportExporter = (*PDFExporter)(nil)

// NewPDFExporter creates a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Export writes the document to w.
func (e *PDFExporter) Export(report ports.Report, w io.Writer) (string, string, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	title := report.Title
	if title == "" {
		title = "Construction Progress Report"
	}
	pdf.MultiCell(0, 8, title, "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 7, "Prediction", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5, report.Prediction, "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 7, "Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	summaryLines := []string{
		fmt.Sprintf("Projects: %d", report.Summary.Projects),
		fmt.Sprintf("Mean actual progress: %.1f%%", report.Summary.MeanActual),
		fmt.Sprintf("Actual progress range: %.1f%% to %.1f%%", report.Summary.MinActual, report.Summary.MaxActual),
		fmt.Sprintf("Trend: %.2f%% per day", report.Summary.TrendPerDay),
	}
	for _, line := range summaryLines {
		pdf.CellFormat(0, 5, line, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 7, "Progress Series", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 9)
	widths := []float64{40, 50, 50}
	headers := []string{"Days Elapsed", "Planned (%)", "Actual (%)"}
	for i, h := range headers {
		pdf.CellFormat(widths[i], 6, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 9)
	for _, point := range report.Series {
		cells := []string{
			fmt.Sprintf("%.0f", point.DaysElapsed),
			fmt.Sprintf("%.1f", point.PlannedProgress),
			fmt.Sprintf("%.1f", point.ActualProgress),
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 6, c, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return "", "", apperrors.Wrap(err, "write pdf")
	}
	return "application/pdf", fmt.Sprintf("%s.pdf", filenameStem(report.Title)), nil
}

// filenameStem turns a report title into a safe download filename stem.
func filenameStem(title string) string {
	stem := strings.TrimSpace(strings.ToLower(title))
	if stem == "" {
		return "progress-report"
	}
	var b strings.Builder
	for _, r := range stem {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune('-')
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "progress-report"
	}
	return out
}
