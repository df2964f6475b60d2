package temporal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/enricoisidori/threadscape/api/schemas"
	"github.com/enricoisidori/threadscape/internal/analysis/core"
)

// -- Test Helpers --

func datedNode(id string, action schemas.Action, date string) schemas.NodeRecord {
	n := schemas.NodeRecord{ID: id, Action: action}
	if date != "" {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			panic(err)
		}
		n.Date = &parsed
		n.RawDate = date
	}
	return n
}

func modeGraph(nodes []schemas.NodeRecord, edges [][2]string) *schemas.ProjectGraph {
	g := &schemas.ProjectGraph{Name: "test", Nodes: nodes}
	for _, e := range edges {
		g.Edges = append(g.Edges, schemas.EdgeRecord{Source: e[0], Target: e[1]})
	}
	g.Reindex()
	return g
}

func analyze(g *schemas.ProjectGraph, opts schemas.MetricOptions) Result {
	return Analyze(core.NewProjectContext(g, opts, zap.NewNop()))
}

// -- Test Cases --

// A weekly exploring>making>exploring chain: one transition in each
// direction, a clean 7-day lead time and a conversion rate pinned by the
// single exploring node that has outgoing edges at all.
func TestAnalyzeModeChain(t *testing.T) {
	t.Parallel()
	g := modeGraph(
		[]schemas.NodeRecord{
			datedNode("n1", schemas.ActionExploring, "2024-01-01"),
			datedNode("n2", schemas.ActionMaking, "2024-01-08"),
			datedNode("n3", schemas.ActionExploring, "2024-01-15"),
		},
		[][2]string{{"n1", "n2"}, {"n2", "n3"}},
	)

	res := analyze(g, schemas.MetricOptions{})

	assert.Equal(t, 1, res.EdgesEToM)
	assert.Equal(t, 1, res.EdgesMToE)
	assert.Equal(t, 1, res.ExploringSources, "n3 has no outgoing edges")
	assert.InDelta(t, 100.0, res.ConversionRate, 1e-9)
	assert.InDelta(t, 100.0, res.FeedbackRatio, 1e-9)
	assert.InDelta(t, 7.0, res.LeadtimeMedianDays, 1e-9)
	assert.Equal(t, 1, res.LeadtimeSamples)
	assert.Equal(t, 2, res.DatedEdges)
	assert.Zero(t, res.TemporalBackShare)

	assert.Equal(t, 3, res.ActiveWeeks)
	assert.Zero(t, res.InterlacingIndex, "no week holds both modes")
	assert.Zero(t, res.OverlapIntensity)
	assert.Equal(t, []schemas.WeekBucket{
		{Week: 0, Exploring: 1},
		{Week: 1, Making: 1},
		{Week: 2, Exploring: 1},
	}, res.Weekly)
}

func TestAnalyzeInterlacing(t *testing.T) {
	t.Parallel()
	// Week 0 mixes 2E+1M, week 1 is exploring only, week 2 is silent and
	// week 3 mixes 1E+3M.
	g := modeGraph([]schemas.NodeRecord{
		datedNode("a", schemas.ActionExploring, "2024-03-04"),
		datedNode("b", schemas.ActionExploring, "2024-03-05"),
		datedNode("c", schemas.ActionMaking, "2024-03-06"),
		datedNode("d", schemas.ActionExploring, "2024-03-11"),
		datedNode("e", schemas.ActionMaking, "2024-03-25"),
		datedNode("f", schemas.ActionMaking, "2024-03-26"),
		datedNode("g", schemas.ActionMaking, "2024-03-27"),
		datedNode("h", schemas.ActionExploring, "2024-03-28"),
	}, nil)

	res := analyze(g, schemas.MetricOptions{})

	assert.Equal(t, 3, res.ActiveWeeks)
	assert.InDelta(t, 200.0/3.0, res.InterlacingIndex, 1e-9, "2 of 3 active weeks mix modes")
	assert.InDelta(t, (50.0+100.0/3.0)/2.0, res.OverlapIntensity, 1e-9)

	assert.Len(t, res.Weekly, 4, "timeline runs dense through the silent week")
	assert.Equal(t, schemas.WeekBucket{Week: 2}, res.Weekly[2])
	assert.Equal(t, schemas.WeekBucket{Week: 3, Exploring: 1, Making: 3}, res.Weekly[3])
}

// Without a single dated mode node there is no anchor, so the timeline and
// its indexes stay at zero while transition metrics still apply.
func TestAnalyzeNoTimelineWithoutDatedModeNodes(t *testing.T) {
	t.Parallel()
	g := modeGraph([]schemas.NodeRecord{
		datedNode("e1", schemas.ActionExploring, ""),
		datedNode("m1", schemas.ActionMaking, ""),
		datedNode("o1", schemas.ActionOther, "2024-01-01"),
	}, [][2]string{{"e1", "m1"}})

	res := analyze(g, schemas.MetricOptions{})

	assert.Nil(t, res.Weekly)
	assert.Zero(t, res.ActiveWeeks)
	assert.Zero(t, res.InterlacingIndex)
	assert.Zero(t, res.OverlapIntensity)

	assert.Equal(t, 1, res.EdgesEToM, "transition classification never needs dates")
	assert.InDelta(t, 100.0, res.ConversionRate, 1e-9)
	assert.Zero(t, res.DatedEdges)
	assert.Zero(t, res.LeadtimeSamples)
}

// The cap truncates only the stored timeline; interlacing and overlap keep
// seeing activity in weeks beyond it.
func TestAnalyzeWeekCapTruncation(t *testing.T) {
	t.Parallel()
	g := modeGraph([]schemas.NodeRecord{
		datedNode("a", schemas.ActionExploring, "2024-01-01"),
		datedNode("b", schemas.ActionMaking, "2024-03-04"),
		datedNode("c", schemas.ActionExploring, "2024-03-05"),
	}, nil)

	res := analyze(g, schemas.MetricOptions{HubThreshold: schemas.DefaultHubThreshold, WeekCap: 4})

	assert.Equal(t, 2, res.ActiveWeeks, "weeks 0 and 9 are active")
	assert.InDelta(t, 50.0, res.InterlacingIndex, 1e-9, "week 9 mixes modes beyond the cap")
	assert.InDelta(t, 100.0, res.OverlapIntensity, 1e-9)

	assert.Len(t, res.Weekly, 4)
	assert.Equal(t, schemas.WeekBucket{Week: 0, Exploring: 1}, res.Weekly[0])
	for _, wb := range res.Weekly[1:] {
		assert.Zero(t, wb.Exploring)
		assert.Zero(t, wb.Making)
	}
}

// A transition pointing back in time is excluded from lead times but still
// counts as a dated back edge.
func TestAnalyzeBackEdges(t *testing.T) {
	t.Parallel()
	g := modeGraph(
		[]schemas.NodeRecord{
			datedNode("a", schemas.ActionExploring, "2024-05-10"),
			datedNode("b", schemas.ActionMaking, "2024-05-03"),
			datedNode("c", schemas.ActionOther, "2024-05-01"),
			datedNode("d", schemas.ActionOther, "2024-05-02"),
		},
		[][2]string{{"a", "b"}, {"c", "d"}},
	)

	res := analyze(g, schemas.MetricOptions{})

	assert.Equal(t, 2, res.DatedEdges)
	assert.InDelta(t, 50.0, res.TemporalBackShare, 1e-9)
	assert.Equal(t, 1, res.EdgesEToM)
	assert.Zero(t, res.LeadtimeSamples, "negative lead times are dropped")
	assert.Zero(t, res.LeadtimeMedianDays)
	assert.InDelta(t, 100.0, res.ConversionRate, 1e-9)
}

func TestAnalyzeConversionDenominator(t *testing.T) {
	t.Parallel()
	// x1 sends edges but never into making, x2 converts, x3 is terminal.
	g := modeGraph(
		[]schemas.NodeRecord{
			datedNode("x1", schemas.ActionExploring, ""),
			datedNode("x2", schemas.ActionExploring, ""),
			datedNode("x3", schemas.ActionExploring, ""),
			datedNode("m1", schemas.ActionMaking, ""),
			datedNode("o1", schemas.ActionOther, ""),
		},
		[][2]string{{"x2", "m1"}, {"m1", "x1"}, {"m1", "x3"}, {"x1", "o1"}},
	)

	res := analyze(g, schemas.MetricOptions{})

	assert.Equal(t, 2, res.ExploringSources)
	assert.InDelta(t, 50.0, res.ConversionRate, 1e-9)
	assert.Equal(t, 1, res.EdgesEToM)
	assert.Equal(t, 2, res.EdgesMToE)
	assert.InDelta(t, 200.0, res.FeedbackRatio, 1e-9, "feedback is a ratio, not a share")
}

func TestAnalyzeLeadtimeMedian(t *testing.T) {
	t.Parallel()
	g := modeGraph(
		[]schemas.NodeRecord{
			datedNode("e1", schemas.ActionExploring, "2024-01-01"),
			datedNode("m1", schemas.ActionMaking, "2024-01-03"),
			datedNode("e2", schemas.ActionExploring, "2024-02-01"),
			datedNode("m2", schemas.ActionMaking, "2024-02-05"),
			datedNode("e3", schemas.ActionExploring, "2024-03-01"),
			datedNode("m3", schemas.ActionMaking, "2024-03-07"),
			datedNode("e4", schemas.ActionExploring, "2024-04-01"),
			datedNode("m4", schemas.ActionMaking, "2024-07-10"),
			datedNode("e5", schemas.ActionExploring, "2024-05-10"),
			datedNode("m5", schemas.ActionMaking, "2024-05-01"),
		},
		[][2]string{{"e1", "m1"}, {"e2", "m2"}, {"e3", "m3"}, {"e4", "m4"}, {"e5", "m5"}},
	)

	res := analyze(g, schemas.MetricOptions{})

	assert.Equal(t, 5, res.EdgesEToM)
	assert.Equal(t, 4, res.LeadtimeSamples, "the backwards pair contributes no sample")
	assert.InDelta(t, 5.0, res.LeadtimeMedianDays, 1e-9, "even sample count averages 4 and 6")
	assert.InDelta(t, 20.0, res.TemporalBackShare, 1e-9)
}

func TestAnalyzeDuplicateTransitionEdges(t *testing.T) {
	t.Parallel()
	g := modeGraph(
		[]schemas.NodeRecord{
			datedNode("e1", schemas.ActionExploring, ""),
			datedNode("m1", schemas.ActionMaking, ""),
		},
		[][2]string{{"e1", "m1"}, {"e1", "m1"}},
	)

	res := analyze(g, schemas.MetricOptions{})

	assert.Equal(t, 2, res.EdgesEToM, "every edge instance counts")
	assert.Equal(t, 1, res.ExploringSources)
	assert.InDelta(t, 100.0, res.ConversionRate, 1e-9)
	assert.Zero(t, res.FeedbackRatio)
}
