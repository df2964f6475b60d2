package schemas

// -- Cohort Aggregation Models --

// MetricSummary is the cohort distribution of one per-project metric.
// Projects counts how many records actually carried the underlying data;
// records without it are excluded from the distribution, not zeroed.
type MetricSummary struct {
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Projects int     `json:"projects"`
}

// TimelineWeek is one averaged week of the cohort timeline. Values are mean
// node counts across the projects that have any timeline at all.
type TimelineWeek struct {
	Week      int     `json:"week"`
	Exploring float64 `json:"exploring"`
	Making    float64 `json:"making"`
}

// CohortSummary aggregates a run across its successful projects.
type CohortSummary struct {
	Projects int                      `json:"projects"`
	Metrics  map[string]MetricSummary `json:"metrics"`
	Timeline []TimelineWeek           `json:"timeline,omitempty"`
}
