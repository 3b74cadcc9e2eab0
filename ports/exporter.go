package ports

import (
	"io"

	"sitepulse/domain/progress"
)

// Report is the rendered import report handed to exporters: the prediction
// text plus the derived chart series and summary.
type Report struct {
	Title      string
	Prediction string
	Series     []progress.Point
	Summary    progress.Summary
}

// ReportExporter packages a report into a downloadable document.
type ReportExporter interface {
	// Export writes the document to w and returns its MIME content type
	// and suggested filename.
	Export(report Report, w io.Writer) (contentType, filename string, err error)
}
