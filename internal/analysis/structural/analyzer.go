package structural

import (
	"github.com/enricoisidori/threadscape/internal/analysis/core"
)

// Result carries the degree, density, reciprocity and cycle findings for one
// project graph. Percentages are 0..100. SCCCount and LargestSCC consider
// only cyclic components (size >= 2); singleton components are not cycles
// because self loops never survive loading.
type Result struct {
	Density            float64
	ReciprocalPairs    int
	ConvergentHubs     int
	DivergentHubs      int
	Sources            int
	Sinks              int
	SCCCount           int
	LargestSCC         int
	CycleParticipation float64
}

// Analyze computes the structural block. Degrees, hubs and components run
// over the id universe (distinct non-empty ids in first-occurrence order,
// per the duplicate-id rule); density and cycle participation are expressed
// against the full node record count. Every valid edge instance counts
// toward degrees and density; reciprocity and components are set-like and
// ignore instance multiplicity.
func Analyze(pctx *core.ProjectContext) Result {
	graph := pctx.Graph
	opts := pctx.Options.Normalize()
	var res Result

	ids := make([]string, 0, len(graph.Nodes))
	inDegree := make(map[string]int, len(graph.Nodes))
	outDegree := make(map[string]int, len(graph.Nodes))
	for _, n := range graph.Nodes {
		if n.ID == "" {
			continue
		}
		if _, seen := inDegree[n.ID]; seen {
			continue
		}
		inDegree[n.ID] = 0
		outDegree[n.ID] = 0
		ids = append(ids, n.ID)
	}

	adjacency := make(map[string][]string, len(ids))
	directed := make(map[[2]string]struct{}, len(graph.Edges))
	for _, e := range graph.Edges {
		outDegree[e.Source]++
		inDegree[e.Target]++
		adjacency[e.Source] = append(adjacency[e.Source], e.Target)
		directed[[2]string{e.Source, e.Target}] = struct{}{}
	}

	for key := range directed {
		// Canonical orientation so each unordered pair is counted once.
		if key[0] < key[1] {
			if _, back := directed[[2]string{key[1], key[0]}]; back {
				res.ReciprocalPairs++
			}
		}
	}

	for _, id := range ids {
		if inDegree[id] >= opts.HubThreshold {
			res.ConvergentHubs++
		}
		if outDegree[id] >= opts.HubThreshold {
			res.DivergentHubs++
		}
		if inDegree[id] == 0 {
			res.Sources++
		}
		if outDegree[id] == 0 {
			res.Sinks++
		}
	}

	n := len(graph.Nodes)
	if n > 1 {
		res.Density = float64(len(graph.Edges)) / float64(n*(n-1)) * 100
	}

	participants := 0
	for _, comp := range stronglyConnected(ids, adjacency) {
		if len(comp) < 2 {
			continue
		}
		res.SCCCount++
		participants += len(comp)
		if len(comp) > res.LargestSCC {
			res.LargestSCC = len(comp)
		}
	}
	res.CycleParticipation = core.Percent(participants, n)

	return res
}
