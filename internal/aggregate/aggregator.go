// Package aggregate reduces a run's per-project records into the cohort
// summary. A project that lacks the data behind a metric is excluded from
// that metric's aggregate rather than dragged in as a zero.
package aggregate

import (
	"github.com/enricoisidori/threadscape/api/schemas"
	"github.com/enricoisidori/threadscape/internal/analysis/core"
)

type metricDescriptor struct {
	key      string
	extract  func(schemas.ProjectMetrics) float64
	eligible func(schemas.ProjectMetrics) bool
}

// descriptors is the fixed battery of percentage and ratio metrics the
// cohort summarizes. Keys match the JSON field names of the per-project
// record so downstream tables line up without a mapping layer.
var descriptors = []metricDescriptor{
	{
		key:      "density",
		extract:  func(pm schemas.ProjectMetrics) float64 { return pm.Density },
		eligible: func(pm schemas.ProjectMetrics) bool { return pm.Nodes > 1 },
	},
	{
		key:      "cycleParticipation",
		extract:  func(pm schemas.ProjectMetrics) float64 { return pm.CycleParticipation },
		eligible: func(pm schemas.ProjectMetrics) bool { return pm.Nodes > 0 },
	},
	{
		key:      "interlacingIndex",
		extract:  func(pm schemas.ProjectMetrics) float64 { return pm.InterlacingIndex },
		eligible: func(pm schemas.ProjectMetrics) bool { return pm.ActiveWeeks > 0 },
	},
	{
		key:      "overlapIntensity",
		extract:  func(pm schemas.ProjectMetrics) float64 { return pm.OverlapIntensity },
		eligible: func(pm schemas.ProjectMetrics) bool { return pm.ActiveWeeks > 0 },
	},
	{
		key:      "conversionRate",
		extract:  func(pm schemas.ProjectMetrics) float64 { return pm.ConversionRate },
		eligible: func(pm schemas.ProjectMetrics) bool { return pm.ExploringSources > 0 },
	},
	{
		key:      "feedbackRatio",
		extract:  func(pm schemas.ProjectMetrics) float64 { return pm.FeedbackRatio },
		eligible: func(pm schemas.ProjectMetrics) bool { return pm.EdgesEToM > 0 },
	},
	{
		key:      "leadtimeMedianDays",
		extract:  func(pm schemas.ProjectMetrics) float64 { return pm.LeadtimeMedianDays },
		eligible: func(pm schemas.ProjectMetrics) bool { return pm.LeadtimeSamples > 0 },
	},
	{
		key:      "crossMacroShare",
		extract:  func(pm schemas.ProjectMetrics) float64 { return pm.CrossMacroShare },
		eligible: func(pm schemas.ProjectMetrics) bool { return pm.MacroEdges > 0 },
	},
	{
		key:      "crossInterlacingShare",
		extract:  func(pm schemas.ProjectMetrics) float64 { return pm.CrossInterlacingShare },
		eligible: func(pm schemas.ProjectMetrics) bool { return pm.MacroModeEdges > 0 },
	},
	{
		key:      "multiAreaShare",
		extract:  func(pm schemas.ProjectMetrics) float64 { return pm.MultiAreaShare },
		eligible: func(pm schemas.ProjectMetrics) bool { return pm.AreaNodes > 0 },
	},
	{
		key:      "temporalBackShare",
		extract:  func(pm schemas.ProjectMetrics) float64 { return pm.TemporalBackShare },
		eligible: func(pm schemas.ProjectMetrics) bool { return pm.DatedEdges > 0 },
	},
}

// Aggregate reduces the per-project records. Metrics with no eligible
// project are absent from the summary map entirely.
func Aggregate(projects []schemas.ProjectMetrics, opts schemas.MetricOptions) *schemas.CohortSummary {
	opts = opts.Normalize()
	summary := &schemas.CohortSummary{
		Projects: len(projects),
		Metrics:  make(map[string]schemas.MetricSummary, len(descriptors)),
	}

	for _, d := range descriptors {
		values := make([]float64, 0, len(projects))
		for _, pm := range projects {
			if d.eligible(pm) {
				values = append(values, d.extract(pm))
			}
		}
		if len(values) == 0 {
			continue
		}
		summary.Metrics[d.key] = summarize(values)
	}

	summary.Timeline = averageTimeline(projects, opts.WeekCap)
	return summary
}

func summarize(values []float64) schemas.MetricSummary {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return schemas.MetricSummary{
		Mean:     core.Mean(values),
		Median:   core.Median(values),
		Min:      lo,
		Max:      hi,
		Projects: len(values),
	}
}

// averageTimeline aligns every project's weekly counts at week 0 and
// averages position by position over the projects that have a timeline at
// all. A project shorter than the cohort span contributes zeros past its
// end; trailing all-zero weeks are trimmed after averaging.
func averageTimeline(projects []schemas.ProjectMetrics, weekCap int) []schemas.TimelineWeek {
	eligible := 0
	span := 0
	for _, pm := range projects {
		if len(pm.Weekly) == 0 {
			continue
		}
		eligible++
		if len(pm.Weekly) > span {
			span = len(pm.Weekly)
		}
	}
	if eligible == 0 {
		return nil
	}
	if span > weekCap {
		span = weekCap
	}

	exploring := make([]float64, span)
	making := make([]float64, span)
	for _, pm := range projects {
		for w := 0; w < span && w < len(pm.Weekly); w++ {
			exploring[w] += float64(pm.Weekly[w].Exploring)
			making[w] += float64(pm.Weekly[w].Making)
		}
	}

	timeline := make([]schemas.TimelineWeek, span)
	for w := range timeline {
		timeline[w] = schemas.TimelineWeek{
			Week:      w,
			Exploring: exploring[w] / float64(eligible),
			Making:    making[w] / float64(eligible),
		}
	}

	end := len(timeline)
	for end > 0 && timeline[end-1].Exploring == 0 && timeline[end-1].Making == 0 {
		end--
	}
	return timeline[:end]
}
