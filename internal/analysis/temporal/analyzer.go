// Package temporal derives a project's week-by-week activity profile and
// the mode-transition metrics read off edge endpoint actions. Week 0 is
// anchored at the earliest dated exploring or making node; nodes without a
// parsed date or outside the two modes never enter the timeline.
package temporal

import (
	"time"

	"go.uber.org/zap"

	"github.com/enricoisidori/threadscape/api/schemas"
	"github.com/enricoisidori/threadscape/internal/analysis/core"
)

const day = 24 * time.Hour

// Result carries the timeline and transition findings for one project.
// Percentages are 0..100 except FeedbackRatio, which may exceed 100.
type Result struct {
	Weekly           []schemas.WeekBucket
	ActiveWeeks      int
	InterlacingIndex float64
	OverlapIntensity float64

	EdgesEToM          int
	EdgesMToE          int
	ExploringSources   int
	ConversionRate     float64
	FeedbackRatio      float64
	LeadtimeMedianDays float64
	LeadtimeSamples    int
	DatedEdges         int
	TemporalBackShare  float64
}

// Analyze runs the bucketing pass and the transition pass over the graph.
func Analyze(pctx *core.ProjectContext) Result {
	var res Result
	analyzeBuckets(pctx, &res)
	analyzeTransitions(pctx, &res)
	return res
}

type weekCount struct {
	exploring int
	making    int
}

// weekOf maps a date onto its zero-based bucket relative to the anchor.
func weekOf(date, anchor time.Time) int {
	w := int(date.Sub(anchor) / (7 * day))
	if w < 0 {
		return 0
	}
	return w
}

func analyzeBuckets(pctx *core.ProjectContext, res *Result) {
	graph := pctx.Graph
	opts := pctx.Options.Normalize()

	var anchor time.Time
	anchored := false
	for _, n := range graph.Nodes {
		if !n.ModeNode() || !n.Dated() {
			continue
		}
		if !anchored || n.Date.Before(anchor) {
			anchor = *n.Date
			anchored = true
		}
	}
	if !anchored {
		return
	}

	buckets := make(map[int]*weekCount)
	last := 0
	for _, n := range graph.Nodes {
		if !n.ModeNode() || !n.Dated() {
			continue
		}
		w := weekOf(*n.Date, anchor)
		b := buckets[w]
		if b == nil {
			b = &weekCount{}
			buckets[w] = b
		}
		if n.Action == schemas.ActionExploring {
			b.exploring++
		} else {
			b.making++
		}
		if w > last {
			last = w
		}
	}

	res.ActiveWeeks = len(buckets)

	both := 0
	ratios := make([]float64, 0, len(buckets))
	for _, b := range buckets {
		if b.exploring == 0 || b.making == 0 {
			continue
		}
		both++
		lo, hi := b.exploring, b.making
		if lo > hi {
			lo, hi = hi, lo
		}
		ratios = append(ratios, float64(lo)/float64(hi)*100)
	}
	res.InterlacingIndex = core.Percent(both, res.ActiveWeeks)
	res.OverlapIntensity = core.Mean(ratios)

	// The stored timeline is dense and capped. The two indexes above are
	// already final at this point and always see the uncapped buckets.
	span := last + 1
	if span > opts.WeekCap {
		pctx.Logger.Debug("weekly timeline truncated",
			zap.Int("weeks", span),
			zap.Int("cap", opts.WeekCap))
		span = opts.WeekCap
	}
	res.Weekly = make([]schemas.WeekBucket, span)
	for w := 0; w < span; w++ {
		wb := schemas.WeekBucket{Week: w}
		if b := buckets[w]; b != nil {
			wb.Exploring = b.exploring
			wb.Making = b.making
		}
		res.Weekly[w] = wb
	}
}
