package temporal

import (
	"github.com/enricoisidori/threadscape/api/schemas"
	"github.com/enricoisidori/threadscape/internal/analysis/core"
)

// analyzeTransitions classifies every valid edge instance by the actions of
// its endpoints. Conversion counts distinct source nodes, so parallel edges
// inflate the E>M tally but not the rate; dates play no part in
// classification and only feed the lead-time and back-edge figures.
func analyzeTransitions(pctx *core.ProjectContext, res *Result) {
	graph := pctx.Graph

	converting := make(map[string]struct{})
	exploringOut := make(map[string]struct{})
	leadtimes := make([]float64, 0, len(graph.Edges))
	back := 0

	for _, e := range graph.Edges {
		src, ok := graph.NodeByID(e.Source)
		if !ok {
			continue
		}
		dst, ok := graph.NodeByID(e.Target)
		if !ok {
			continue
		}

		if src.Dated() && dst.Dated() {
			res.DatedEdges++
			if dst.Date.Before(*src.Date) {
				back++
			}
		}

		if src.Action == schemas.ActionExploring {
			exploringOut[src.ID] = struct{}{}
		}

		switch {
		case src.Action == schemas.ActionExploring && dst.Action == schemas.ActionMaking:
			res.EdgesEToM++
			converting[src.ID] = struct{}{}
			if src.Dated() && dst.Dated() {
				if d := dst.Date.Sub(*src.Date); d >= 0 {
					leadtimes = append(leadtimes, float64(d/day))
				}
			}
		case src.Action == schemas.ActionMaking && dst.Action == schemas.ActionExploring:
			res.EdgesMToE++
		}
	}

	res.ExploringSources = len(exploringOut)
	res.ConversionRate = core.Percent(len(converting), res.ExploringSources)
	res.FeedbackRatio = core.Percent(res.EdgesMToE, res.EdgesEToM)
	res.LeadtimeMedianDays = core.Median(leadtimes)
	res.LeadtimeSamples = len(leadtimes)
	res.TemporalBackShare = core.Percent(back, res.DatedEdges)
}
