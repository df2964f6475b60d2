package schemas

import "time"

// -- Core Graph Models --
// These types represent a fully-loaded project graph: decoded, validated and
// area-normalized, ready for the analyzers.

// Action classifies what a process node documents.
type Action string

const (
	ActionExploring Action = "exploring"
	ActionMaking    Action = "making"
	ActionOther     Action = "other"
)

// MacroCategory is the normalized design-area bucket derived from a node's
// area labels.
type MacroCategory string

const (
	MacroSpeculative   MacroCategory = "speculative"
	MacroCommunication MacroCategory = "communication"
	MacroInteraction   MacroCategory = "interaction"
	MacroMixed         MacroCategory = "mixed"
	MacroUnknown       MacroCategory = "unknown"
)

// Known reports whether the category is one of the three concrete design
// areas rather than mixed/unknown.
func (m MacroCategory) Known() bool {
	switch m {
	case MacroSpeculative, MacroCommunication, MacroInteraction:
		return true
	}
	return false
}

// NodeRecord is one process node after decoding, date parsing and area
// normalization.
type NodeRecord struct {
	ID        string        `json:"id"`
	Action    Action        `json:"action"`
	Date      *time.Time    `json:"date,omitempty"`
	RawDate   string        `json:"rawDate,omitempty"`
	Areas     []string      `json:"areas,omitempty"`
	Macro     MacroCategory `json:"macro"`
	Type      string        `json:"type,omitempty"`
	Tags      []string      `json:"tags,omitempty"`
	FileCount int           `json:"fileCount,omitempty"`
}

// Dated reports whether the node carries a parsed date.
func (n NodeRecord) Dated() bool { return n.Date != nil }

// ModeNode reports whether the node documents one of the two process modes.
func (n NodeRecord) ModeNode() bool {
	return n.Action == ActionExploring || n.Action == ActionMaking
}

// EdgeRecord is one validated directed edge. Both endpoints are known,
// non-empty node ids and Source != Target.
type EdgeRecord struct {
	Source string `json:"s"`
	Target string `json:"t"`
	Dashed bool   `json:"dashed,omitempty"`
}

// QualityTallies counts the document defects absorbed while loading a single
// project. Defective entries are excluded or retained per field, never fatal.
type QualityTallies struct {
	MalformedNodes int `json:"malformedNodes,omitempty"`
	MalformedEdges int `json:"malformedEdges,omitempty"`
	EmptyIDs       int `json:"emptyIds,omitempty"`
	DuplicateIDs   int `json:"duplicateIds,omitempty"`
	MissingActions int `json:"missingActions,omitempty"`
	MissingDates   int `json:"missingDates,omitempty"`
	InvalidDates   int `json:"invalidDates,omitempty"`
	DanglingEdges  int `json:"danglingEdges,omitempty"`
	SelfLoops      int `json:"selfLoops,omitempty"`
	DuplicateEdges int `json:"duplicateEdges,omitempty"`
}

// Total sums every tally. Handy for reporting thresholds.
func (q QualityTallies) Total() int {
	return q.MalformedNodes + q.MalformedEdges + q.EmptyIDs + q.DuplicateIDs +
		q.MissingActions + q.MissingDates + q.InvalidDates +
		q.DanglingEdges + q.SelfLoops + q.DuplicateEdges
}

// ProjectGraph is the loaded graph for a single project. Node order is the
// document's load order and is the canonical iteration order everywhere
// downstream; analyzers treat the whole structure as read-only.
type ProjectGraph struct {
	Name    string         `json:"name"`
	Nodes   []NodeRecord   `json:"nodes"`
	Edges   []EdgeRecord   `json:"edges"`
	Quality QualityTallies `json:"quality"`

	index map[string]int
}

// Reindex rebuilds the id lookup table. The first occurrence of a duplicated
// id wins; empty ids are not indexed.
func (g *ProjectGraph) Reindex() {
	g.index = make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		if n.ID == "" {
			continue
		}
		if _, ok := g.index[n.ID]; !ok {
			g.index[n.ID] = i
		}
	}
}

// NodeByID returns the first node carrying the given id.
func (g *ProjectGraph) NodeByID(id string) (NodeRecord, bool) {
	i, ok := g.index[id]
	if !ok {
		return NodeRecord{}, false
	}
	return g.Nodes[i], true
}

// HasNode reports whether the id resolves to a loaded node.
func (g *ProjectGraph) HasNode(id string) bool {
	_, ok := g.index[id]
	return ok
}
