package progress

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanned_ZeroDenominator(t *testing.T) {
	v := Planned(0, 0)
	assert.Equal(t, 0.0, v)
	assert.False(t, math.IsNaN(v))
}

func TestPlanned_Halfway(t *testing.T) {
	assert.InDelta(t, 50.0, Planned(30, 30), 1e-9)
	assert.InDelta(t, 75.0, Planned(30, 10), 1e-9)
}

func TestSeries_SortedByDay(t *testing.T) {
	rows := []Row{
		{ProjectID: "P-2", Percent: 60, DaysElapsed: 40, DaysRemaining: 10},
		{ProjectID: "P-1", Percent: 20, DaysElapsed: 10, DaysRemaining: 40},
	}
	points := Series(rows)
	require.Len(t, points, 2)
	assert.Equal(t, 10.0, points[0].DaysElapsed)
	assert.Equal(t, 40.0, points[1].DaysElapsed)
	assert.InDelta(t, 20.0, points[0].ActualProgress, 1e-9)
	assert.InDelta(t, 80.0, points[1].PlannedProgress, 1e-9)
}

func TestSeries_Empty(t *testing.T) {
	assert.Empty(t, Series(nil))
}

func TestSummarize(t *testing.T) {
	rows := []Row{
		{ProjectID: "P-1", Percent: 10, DaysElapsed: 10},
		{ProjectID: "P-2", Percent: 30, DaysElapsed: 20},
		{ProjectID: "P-3", Percent: 50, DaysElapsed: 30},
	}
	s := Summarize(rows)
	assert.Equal(t, 3, s.Projects)
	assert.InDelta(t, 30.0, s.MeanActual, 1e-9)
	assert.InDelta(t, 10.0, s.MinActual, 1e-9)
	assert.InDelta(t, 50.0, s.MaxActual, 1e-9)
	assert.InDelta(t, 2.0, s.TrendPerDay, 1e-9)
}

func TestSummarize_Empty(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestSummarize_SingleDayNoTrend(t *testing.T) {
	rows := []Row{
		{ProjectID: "P-1", Percent: 10, DaysElapsed: 10},
		{ProjectID: "P-2", Percent: 30, DaysElapsed: 10},
	}
	assert.Zero(t, Summarize(rows).TrendPerDay)
}
