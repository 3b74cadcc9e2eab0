package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `project_id,progress_percent,materials_used,workforce,days_elapsed,days_remaining
P-100,42.5,310,12,30,40
P-101,80,120,8,60,15
P-102,15,50,4,10,90
`

func TestParse_HeaderDriven(t *testing.T) {
	rows, err := Parse(sampleCSV)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "P-100", rows[0].ProjectID)
	assert.Equal(t, 42.5, rows[0].Percent)
	assert.Equal(t, 310.0, rows[0].MaterialsUsed)
	assert.Equal(t, 12.0, rows[0].Workforce)
	assert.Equal(t, 30.0, rows[0].DaysElapsed)
	assert.Equal(t, 40.0, rows[0].DaysRemaining)
}

func TestParse_NormalizesHeaders(t *testing.T) {
	csvText := "Project ID,Progress Percent,Days Elapsed,Days Remaining\nP-1,50,10,10\n"
	rows, err := Parse(csvText)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 50.0, rows[0].Percent)
	assert.Equal(t, 10.0, rows[0].DaysElapsed)
}

func TestParse_DropsRowsWithoutProjectID(t *testing.T) {
	csvText := `project_id,progress_percent,days_elapsed,days_remaining
P-1,10,5,5
,20,6,4
null,30,7,3
P-2,40,8,2
`
	rows, err := Parse(csvText)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "P-1", rows[0].ProjectID)
	assert.Equal(t, "P-2", rows[1].ProjectID)
}

func TestParse_CoercesBadNumbersToZero(t *testing.T) {
	csvText := "project_id,progress_percent,days_elapsed,days_remaining\nP-1,not-a-number,5,5\n"
	rows, err := Parse(csvText)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Zero(t, rows[0].Percent)
}

func TestParse_MissingProjectColumn(t *testing.T) {
	_, err := Parse("progress_percent,days_elapsed\n50,10\n")
	require.Error(t, err)
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse("")
	require.Error(t, err)
}

func TestParse_MalformedQuoting(t *testing.T) {
	_, err := Parse("project_id,progress_percent\n\"P-1,50\n")
	require.Error(t, err)
}
