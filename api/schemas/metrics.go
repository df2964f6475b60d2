package schemas

import "time"

// -- Metric Result Models --
// One ProjectMetrics record per project per run. The record is immutable
// once composed; renderers and the aggregator only ever read it.

// Default knobs for the metric battery.
const (
	DefaultHubThreshold = 4
	DefaultWeekCap      = 200
)

// MetricOptions are the shared parameters every analyzer receives. The zero
// value is usable after Normalize.
type MetricOptions struct {
	HubThreshold int `json:"hubThreshold" mapstructure:"hub_threshold"`
	WeekCap      int `json:"weekCap" mapstructure:"week_cap"`
}

// Normalize returns a copy with out-of-range values replaced by defaults.
func (o MetricOptions) Normalize() MetricOptions {
	if o.HubThreshold < 1 {
		o.HubThreshold = DefaultHubThreshold
	}
	if o.WeekCap < 4 {
		o.WeekCap = DefaultWeekCap
	}
	return o
}

// WeekBucket is one week of a project's activity timeline, aligned to the
// project's earliest dated mode node (week 0).
type WeekBucket struct {
	Week      int `json:"week"`
	Exploring int `json:"exploring"`
	Making    int `json:"making"`
}

// ProjectMetrics is the flat per-project result record. Percentage fields
// are 0..100; ratio-style fields may exceed 100.
type ProjectMetrics struct {
	Project string `json:"project"`

	// Descriptive counts.
	Nodes          int            `json:"nodes"`
	Edges          int            `json:"edges"`
	Exploring      int            `json:"exploring"`
	Making         int            `json:"making"`
	OtherActions   int            `json:"otherActions"`
	TypeCounts     map[string]int `json:"typeCounts,omitempty"`
	AreaCounts     map[string]int `json:"areaCounts,omitempty"`
	AreaNodes      int            `json:"areaNodes"`
	MultiAreaNodes int            `json:"multiAreaNodes"`
	MultiAreaShare float64        `json:"multiAreaShare"`

	// Date coverage.
	DatedNodes   int    `json:"datedNodes"`
	DateMin      string `json:"dateMin,omitempty"`
	DateMax      string `json:"dateMax,omitempty"`
	DateSpanDays int    `json:"dateSpanDays"`

	// Structure.
	Density            float64 `json:"density"`
	ReciprocalPairs    int     `json:"reciprocalPairs"`
	ConvergentHubs     int     `json:"convergentHubs"`
	DivergentHubs      int     `json:"divergentHubs"`
	Sources            int     `json:"sources"`
	Sinks              int     `json:"sinks"`
	SCCCount           int     `json:"sccCount"`
	LargestSCC         int     `json:"largestScc"`
	CycleParticipation float64 `json:"cycleParticipation"`

	// Temporal interlacing.
	Weekly           []WeekBucket `json:"weekly,omitempty"`
	ActiveWeeks      int          `json:"activeWeeks"`
	InterlacingIndex float64      `json:"interlacingIndex"`
	OverlapIntensity float64      `json:"overlapIntensity"`

	// Mode transitions. ExploringSources is the conversion-rate denominator:
	// distinct exploring nodes with at least one outgoing valid edge.
	EdgesEToM          int     `json:"edgesEToM"`
	EdgesMToE          int     `json:"edgesMToE"`
	ExploringSources   int     `json:"exploringSources"`
	ConversionRate     float64 `json:"conversionRate"`
	FeedbackRatio      float64 `json:"feedbackRatio"`
	LeadtimeMedianDays float64 `json:"leadtimeMedianDays"`
	LeadtimeSamples    int     `json:"leadtimeSamples"`
	DatedEdges         int     `json:"datedEdges"`
	TemporalBackShare  float64 `json:"temporalBackShare"`

	// Cross-category.
	MacroEdges               int     `json:"macroEdges"`
	CrossMacroShare          float64 `json:"crossMacroShare"`
	CrossMacroCoverage       float64 `json:"crossMacroCoverage"`
	MacroModeEdges           int     `json:"macroModeEdges"`
	CrossInterlacingShare    float64 `json:"crossInterlacingShare"`
	CrossInterlacingCoverage float64 `json:"crossInterlacingCoverage"`

	Quality QualityTallies `json:"quality"`

	// Flags are plausibility annotations stamped by the reporting layer
	// after composition. They never influence any metric or aggregate.
	Flags []string `json:"flags,omitempty"`
}

// ProjectError records a project the batch skipped after a fatal document
// failure.
type ProjectError struct {
	Project string `json:"project"`
	Message string `json:"message"`
}

// RunResult bundles everything one batch run produced. Projects are ordered
// by name regardless of worker scheduling.
type RunResult struct {
	RunID      string           `json:"runId"`
	CorpusDir  string           `json:"corpusDir"`
	StartedAt  time.Time        `json:"startedAt"`
	FinishedAt time.Time        `json:"finishedAt"`
	Options    MetricOptions    `json:"options"`
	Projects   []ProjectMetrics `json:"projects"`
	Errors     []ProjectError   `json:"errors,omitempty"`
	Cohort     *CohortSummary   `json:"cohort,omitempty"`
}
