package reporting_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enricoisidori/threadscape/api/schemas"
	"github.com/enricoisidori/threadscape/internal/config"
	"github.com/enricoisidori/threadscape/internal/reporting"
)

// -- Test Helpers --

func flagThresholds() config.FlagsConfig {
	return config.FlagsConfig{
		MaxSpanYears:        6,
		FutureToleranceDays: 30,
		MinPlausibleYear:    2000,
	}
}

func flagNow(t *testing.T) time.Time {
	t.Helper()
	now, err := time.Parse(time.DateOnly, "2024-06-01")
	require.NoError(t, err)
	return now
}

// -- Test Cases --

func TestFlags(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		pm       schemas.ProjectMetrics
		expected []string
	}{
		{
			name:     "clean project carries no flags",
			pm:       schemas.ProjectMetrics{DateMin: "2024-01-01", DateMax: "2024-03-01", DateSpanDays: 60},
			expected: nil,
		},
		{
			name:     "span beyond the year limit",
			pm:       schemas.ProjectMetrics{DateMin: "2014-01-01", DateMax: "2024-01-01", DateSpanDays: 3652},
			expected: []string{"date span 3652d exceeds 6y"},
		},
		{
			name:     "span exactly at the limit passes",
			pm:       schemas.ProjectMetrics{DateSpanDays: 6 * 365},
			expected: nil,
		},
		{
			name:     "date beyond the future horizon",
			pm:       schemas.ProjectMetrics{DateMin: "2024-01-01", DateMax: "2024-08-01", DateSpanDays: 213},
			expected: []string{"dateMax 2024-08-01 is more than 30d in the future"},
		},
		{
			name:     "date inside the future tolerance passes",
			pm:       schemas.ProjectMetrics{DateMin: "2024-01-01", DateMax: "2024-06-20", DateSpanDays: 171},
			expected: nil,
		},
		{
			name:     "date before the plausible year floor",
			pm:       schemas.ProjectMetrics{DateMin: "1999-12-31", DateMax: "2024-01-01", DateSpanDays: 2},
			expected: []string{"dateMin 1999-12-31 predates year 2000"},
		},
		{
			name:     "quality tallies surface as one flag",
			pm:       schemas.ProjectMetrics{Quality: schemas.QualityTallies{DanglingEdges: 2, InvalidDates: 1}},
			expected: []string{"3 data-quality issues recorded"},
		},
		{
			name: "multiple conditions stack",
			pm: schemas.ProjectMetrics{
				DateMin:      "1995-01-01",
				DateMax:      "2031-01-01",
				DateSpanDays: 13149,
				Quality:      schemas.QualityTallies{DuplicateIDs: 1},
			},
			expected: []string{
				"date span 13149d exceeds 6y",
				"dateMax 2031-01-01 is more than 30d in the future",
				"dateMin 1995-01-01 predates year 2000",
				"1 data-quality issues recorded",
			},
		},
	}

	for _, tc := range testCases {
		tt := tc
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, reporting.Flags(tt.pm, flagThresholds(), flagNow(t)))
		})
	}
}

func TestAnnotate(t *testing.T) {
	t.Parallel()
	// -- Setup --
	run := &schemas.RunResult{
		Projects: []schemas.ProjectMetrics{
			{Project: "ancient", DateMin: "1903-01-01", DateMax: "1903-06-01", DateSpanDays: 151, ConversionRate: 50},
			{Project: "clean", DateMin: "2024-01-01", DateMax: "2024-02-01", DateSpanDays: 31},
		},
	}

	// -- Execution --
	reporting.Annotate(run, flagThresholds(), flagNow(t))

	// -- Assertions --
	assert.Equal(t, []string{"dateMin 1903-01-01 predates year 2000"}, run.Projects[0].Flags)
	assert.Nil(t, run.Projects[1].Flags)
	// Annotation never rewrites metric values.
	assert.Equal(t, 50.0, run.Projects[0].ConversionRate)
}
