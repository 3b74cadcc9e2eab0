package progress

import (
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// Planned derives the planned-progress percentage from elapsed vs remaining
// days. A zero denominator yields exactly 0, never NaN.
func Planned(daysElapsed, daysRemaining float64) float64 {
	total := daysElapsed + daysRemaining
	if total == 0 {
		return 0
	}
	return daysElapsed / total * 100
}

// Series converts parsed rows into the chart-ready planned-vs-actual series,
// indexed by elapsed day in ascending order.
func Series(rows []Row) []Point {
	points := make([]Point, 0, len(rows))
	for _, row := range rows {
		points = append(points, Point{
			DaysElapsed:     row.DaysElapsed,
			PlannedProgress: Planned(row.DaysElapsed, row.DaysRemaining),
			ActualProgress:  row.Percent,
		})
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].DaysElapsed < points[j].DaysElapsed
	})
	return points
}

// Summarize computes display statistics for a parsed report. An empty row
// set produces a zero Summary.
func Summarize(rows []Row) Summary {
	if len(rows) == 0 {
		return Summary{}
	}

	actual := make([]float64, len(rows))
	days := make([]float64, len(rows))
	for i, row := range rows {
		actual[i] = row.Percent
		days[i] = row.DaysElapsed
	}

	mean, _ := stats.Mean(actual)
	min, _ := stats.Min(actual)
	max, _ := stats.Max(actual)

	summary := Summary{
		Projects:   len(rows),
		MeanActual: mean,
		MinActual:  min,
		MaxActual:  max,
	}

	// Slope only makes sense with at least two distinct day values.
	if distinct(days) > 1 {
		_, slope := stat.LinearRegression(days, actual, nil, false)
		summary.TrendPerDay = slope
	}
	return summary
}

func distinct(values []float64) int {
	seen := make(map[float64]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	return len(seen)
}
