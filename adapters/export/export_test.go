package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"sitepulse/domain/progress"
	"sitepulse/ports"
)

func sampleReport() ports.Report {
	return ports.Report{
		Title:      "Site Alpha Progress",
		Prediction: "The project is on track to finish within the planned window.",
		Series: []progress.Point{
			{DaysElapsed: 10, PlannedProgress: 25, ActualProgress: 22.5},
			{DaysElapsed: 20, PlannedProgress: 50, ActualProgress: 48},
			{DaysElapsed: 30, PlannedProgress: 75, ActualProgress: 71},
		},
		Summary: progress.Summary{
			Projects:    3,
			MeanActual:  47.2,
			MinActual:   22.5,
			MaxActual:   71,
			TrendPerDay: 2.42,
		},
	}
}

func TestXLSXExporter_Export(t *testing.T) {
	var buf bytes.Buffer
	contentType, filename, err := NewXLSXExporter().Export(sampleReport(), &buf)
	require.NoError(t, err)
	assert.Equal(t, xlsxContentType, contentType)
	assert.Equal(t, "site-alpha-progress.xlsx", filename)

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Progress Series")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Days Elapsed", "Planned Progress (%)", "Actual Progress (%)"}, rows[0])
	assert.Equal(t, "10", rows[1][0])

	title, err := f.GetCellValue("Overview", "B1")
	require.NoError(t, err)
	assert.Equal(t, "Site Alpha Progress", title)

	idx, err := f.GetSheetIndex("Sheet1")
	require.NoError(t, err)
	assert.Equal(t, -1, idx)
}

func TestPDFExporter_Export(t *testing.T) {
	var buf bytes.Buffer
	contentType, filename, err := NewPDFExporter().Export(sampleReport(), &buf)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.Equal(t, "site-alpha-progress.pdf", filename)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestFilenameStem(t *testing.T) {
	assert.Equal(t, "progress-report", filenameStem(""))
	assert.Equal(t, "progress-report", filenameStem("!!!"))
	assert.Equal(t, "site-42", filenameStem("  Site 42 "))
}
