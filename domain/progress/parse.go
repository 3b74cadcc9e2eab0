package progress

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"sitepulse/internal/errors"
)

// Column names recognized in uploaded reports. Headers are matched after
// trimming, lowercasing and replacing spaces with underscores, the same
// normalization the remote API applies.
const (
	colProjectID     = "project_id"
	colPercent       = "progress_percent"
	colMaterialsUsed = "materials_used"
	colWorkforce     = "workforce"
	colDaysElapsed   = "days_elapsed"
	colDaysRemaining = "days_remaining"
)

// Parse decodes CSV text into progress rows. Decoding is header-driven with
// numeric coercion; rows without a project id are dropped rather than
// reported as errors.
func Parse(csvText string) ([]Row, error) {
	reader := csv.NewReader(strings.NewReader(csvText))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.WithCode(errors.CodeParseError, fmt.Errorf("malformed CSV: %w", err))
	}
	if len(records) == 0 {
		return nil, errors.ParseError("CSV file is empty")
	}

	header := records[0]
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[normalizeHeader(name)] = i
	}
	if _, ok := index[colProjectID]; !ok {
		return nil, errors.ParseError("missing required column: project_id")
	}

	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		id := strings.TrimSpace(field(record, index, colProjectID))
		if id == "" || strings.EqualFold(id, "null") {
			continue
		}
		rows = append(rows, Row{
			ProjectID:     id,
			Percent:       numField(record, index, colPercent),
			MaterialsUsed: numField(record, index, colMaterialsUsed),
			Workforce:     numField(record, index, colWorkforce),
			DaysElapsed:   numField(record, index, colDaysElapsed),
			DaysRemaining: numField(record, index, colDaysRemaining),
		})
	}
	return rows, nil
}

func normalizeHeader(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

func field(record []string, index map[string]int, name string) string {
	i, ok := index[name]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}

// numField coerces a cell to float64; blank or non-numeric cells become 0,
// mirroring the dynamic typing of the original report parser.
func numField(record []string, index map[string]int, name string) float64 {
	raw := strings.TrimSpace(field(record, index, name))
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}
