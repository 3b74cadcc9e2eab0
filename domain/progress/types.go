package progress

// Row is one CSV-derived record describing a single project's reported
// completion status.
type Row struct {
	ProjectID     string
	Percent       float64
	MaterialsUsed float64
	Workforce     float64
	DaysElapsed   float64
	DaysRemaining float64
}

// Point is one chart-ready sample pairing the derived planned percentage
// with the reported actual percentage for an elapsed day.
type Point struct {
	DaysElapsed     float64 `json:"days_elapsed"`
	PlannedProgress float64 `json:"planned_progress"`
	ActualProgress  float64 `json:"actual_progress"`
}

// Summary aggregates a parsed report for display next to the chart.
type Summary struct {
	Projects    int
	MeanActual  float64
	MinActual   float64
	MaxActual   float64
	TrendPerDay float64 // least-squares slope of actual progress over elapsed days
}
