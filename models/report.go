package models

import "time"

// ChartPoint is one chart-ready sample: planned vs actual progress for a
// given elapsed day. Matches the series shape the remote API stores with
// each prediction run.
type ChartPoint struct {
	DaysElapsed     float64 `json:"days_elapsed"`
	PlannedProgress float64 `json:"planned_progress"`
	ActualProgress  float64 `json:"actual_progress"`
}

// PredictResult is the response of POST /predict.
type PredictResult struct {
	Prediction string       `json:"prediction"`
	ChartData  []ChartPoint `json:"chart_data"`
}

// RecentImport is one prior prediction run from GET /recent-imports.
// CreatedAt is kept verbatim: the backend emits ISO-8601 with or without a
// zone offset depending on deployment.
type RecentImport struct {
	Prediction string       `json:"prediction"`
	ChartData  []ChartPoint `json:"chart_data"`
	CreatedAt  string       `json:"created_at"`
}

// When parses CreatedAt, tolerating the zone-less ISO form. The zero time is
// returned for unparseable stamps so sorting still terminates.
func (r RecentImport) When() time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, r.CreatedAt); err == nil {
			return t
		}
	}
	return time.Time{}
}
