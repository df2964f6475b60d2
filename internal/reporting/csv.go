// Package reporting renders finished runs into the projections external
// renderers consume: the tabular metrics CSV, the aligned timeline CSV, the
// raw JSON artifact, and per-project plausibility flags.
package reporting

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/enricoisidori/threadscape/api/schemas"
)

// metricColumns is the column contract consumed by external renderers.
// Order and spelling are frozen.
var metricColumns = []string{
	"project",
	"nodes",
	"edges",
	"exploring",
	"making",
	"interlacingIndex",
	"overlapIntensity",
	"cycleParticipation",
	"crossInterlacingShare",
	"conversionRate",
	"feedbackRatio",
	"leadtimeMedianDays",
	"crossMacroShare",
	"multiAreaShare",
	"temporalBackShare",
	"sources",
	"sinks",
}

// WriteMetricsCSV writes one row per project, in run order, under the frozen
// metric column header.
func WriteMetricsCSV(w io.Writer, projects []schemas.ProjectMetrics) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(metricColumns); err != nil {
		return fmt.Errorf("writing metrics header: %w", err)
	}

	for _, pm := range projects {
		row := []string{
			pm.Project,
			strconv.Itoa(pm.Nodes),
			strconv.Itoa(pm.Edges),
			strconv.Itoa(pm.Exploring),
			strconv.Itoa(pm.Making),
			formatShare(pm.InterlacingIndex),
			formatShare(pm.OverlapIntensity),
			formatShare(pm.CycleParticipation),
			formatShare(pm.CrossInterlacingShare),
			formatShare(pm.ConversionRate),
			formatShare(pm.FeedbackRatio),
			formatShare(pm.LeadtimeMedianDays),
			formatShare(pm.CrossMacroShare),
			formatShare(pm.MultiAreaShare),
			formatShare(pm.TemporalBackShare),
			strconv.Itoa(pm.Sources),
			strconv.Itoa(pm.Sinks),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing metrics row for %s: %w", pm.Project, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteTimelineCSV writes the cohort's aligned average weekly timeline. A
// run without a cohort or timeline still gets the header row.
func WriteTimelineCSV(w io.Writer, cohort *schemas.CohortSummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"week", "exploring", "making"}); err != nil {
		return fmt.Errorf("writing timeline header: %w", err)
	}

	if cohort != nil {
		for _, wk := range cohort.Timeline {
			row := []string{
				strconv.Itoa(wk.Week),
				formatShare(wk.Exploring),
				formatShare(wk.Making),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("writing timeline week %d: %w", wk.Week, err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatShare(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
