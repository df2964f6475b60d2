// Package compose assembles the flat per-project metrics record: the
// descriptive counts read straight off the graph plus the merged output of
// the three analyzers. The record it returns is never mutated afterwards.
package compose

import (
	"time"

	"go.uber.org/zap"

	"github.com/enricoisidori/threadscape/api/schemas"
	"github.com/enricoisidori/threadscape/internal/analysis/core"
	"github.com/enricoisidori/threadscape/internal/analysis/crossarea"
	"github.com/enricoisidori/threadscape/internal/analysis/structural"
	"github.com/enricoisidori/threadscape/internal/analysis/temporal"
)

// Compose runs the analyzer battery over the context's graph and merges
// everything into one record.
func Compose(pctx *core.ProjectContext) schemas.ProjectMetrics {
	graph := pctx.Graph
	pm := schemas.ProjectMetrics{
		Project: graph.Name,
		Nodes:   len(graph.Nodes),
		Edges:   len(graph.Edges),
		Quality: graph.Quality,
	}

	describe(graph, &pm)
	mergeStructural(structural.Analyze(pctx), &pm)
	mergeTemporal(temporal.Analyze(pctx), &pm)
	mergeCrossArea(crossarea.Analyze(pctx), &pm)

	pctx.Logger.Debug("metrics composed",
		zap.Int("nodes", pm.Nodes),
		zap.Int("edges", pm.Edges),
		zap.Int("activeWeeks", pm.ActiveWeeks))
	return pm
}

// describe fills the counts that need no analyzer: actions, types, areas
// and raw date coverage. Date min/max run over every dated node regardless
// of action.
func describe(graph *schemas.ProjectGraph, pm *schemas.ProjectMetrics) {
	var minDate, maxDate time.Time
	for _, n := range graph.Nodes {
		switch n.Action {
		case schemas.ActionExploring:
			pm.Exploring++
		case schemas.ActionMaking:
			pm.Making++
		default:
			pm.OtherActions++
		}
		if n.Type != "" {
			if pm.TypeCounts == nil {
				pm.TypeCounts = make(map[string]int)
			}
			pm.TypeCounts[n.Type]++
		}
		if len(n.Areas) > 0 {
			pm.AreaNodes++
			if len(n.Areas) > 1 {
				pm.MultiAreaNodes++
			}
			if pm.AreaCounts == nil {
				pm.AreaCounts = make(map[string]int)
			}
			for _, a := range n.Areas {
				pm.AreaCounts[a]++
			}
		}
		if !n.Dated() {
			continue
		}
		pm.DatedNodes++
		if pm.DatedNodes == 1 || n.Date.Before(minDate) {
			minDate = *n.Date
		}
		if pm.DatedNodes == 1 || n.Date.After(maxDate) {
			maxDate = *n.Date
		}
	}
	pm.MultiAreaShare = core.Percent(pm.MultiAreaNodes, pm.AreaNodes)
	if pm.DatedNodes > 0 {
		pm.DateMin = minDate.Format(time.DateOnly)
		pm.DateMax = maxDate.Format(time.DateOnly)
		pm.DateSpanDays = int(maxDate.Sub(minDate) / (24 * time.Hour))
	}
}

func mergeStructural(res structural.Result, pm *schemas.ProjectMetrics) {
	pm.Density = res.Density
	pm.ReciprocalPairs = res.ReciprocalPairs
	pm.ConvergentHubs = res.ConvergentHubs
	pm.DivergentHubs = res.DivergentHubs
	pm.Sources = res.Sources
	pm.Sinks = res.Sinks
	pm.SCCCount = res.SCCCount
	pm.LargestSCC = res.LargestSCC
	pm.CycleParticipation = res.CycleParticipation
}

func mergeTemporal(res temporal.Result, pm *schemas.ProjectMetrics) {
	pm.Weekly = res.Weekly
	pm.ActiveWeeks = res.ActiveWeeks
	pm.InterlacingIndex = res.InterlacingIndex
	pm.OverlapIntensity = res.OverlapIntensity
	pm.EdgesEToM = res.EdgesEToM
	pm.EdgesMToE = res.EdgesMToE
	pm.ExploringSources = res.ExploringSources
	pm.ConversionRate = res.ConversionRate
	pm.FeedbackRatio = res.FeedbackRatio
	pm.LeadtimeMedianDays = res.LeadtimeMedianDays
	pm.LeadtimeSamples = res.LeadtimeSamples
	pm.DatedEdges = res.DatedEdges
	pm.TemporalBackShare = res.TemporalBackShare
}

func mergeCrossArea(res crossarea.Result, pm *schemas.ProjectMetrics) {
	pm.MacroEdges = res.MacroEdges
	pm.CrossMacroShare = res.CrossMacroShare
	pm.CrossMacroCoverage = res.CrossMacroCoverage
	pm.MacroModeEdges = res.MacroModeEdges
	pm.CrossInterlacingShare = res.CrossInterlacingShare
	pm.CrossInterlacingCoverage = res.CrossInterlacingCoverage
}
