package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/enricoisidori/threadscape/api/schemas"
	"github.com/enricoisidori/threadscape/internal/areas"
)

// DateLayout is the only date format the editor writes.
const DateLayout = "2006-01-02"

// The three structural failures. Everything else a document can get wrong is
// absorbed into quality tallies and the load still succeeds.
var (
	ErrNotAnObject   = errors.New("document is not a JSON object")
	ErrNodesNotArray = errors.New(`document field "nodes" is not an array`)
	ErrEdgesNotArray = errors.New(`document field "edges" is not an array`)
)

type edgeKey struct {
	source string
	target string
	dashed bool
}

// LoadFile reads and parses one project document. The project name is the
// file base name without its extension.
func LoadFile(path string) (*schemas.ProjectGraph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return Parse(name, data)
}

// Parse decodes a project document into a ProjectGraph. Defective entries
// are tallied and skipped or retained per the field's rules; only a document
// that is structurally not a graph at all produces an error.
func Parse(name string, data []byte) (*schemas.ProjectGraph, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, ErrNotAnObject
		}
		return nil, fmt.Errorf("parse document: %w", err)
	}

	var rawNodes, rawEdges []json.RawMessage
	if raw, ok := top["nodes"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &rawNodes); err != nil {
			return nil, ErrNodesNotArray
		}
	}
	if raw, ok := top["edges"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &rawEdges); err != nil {
			return nil, ErrEdgesNotArray
		}
	}

	graph := &schemas.ProjectGraph{Name: name}

	seenIDs := make(map[string]struct{}, len(rawNodes))
	for _, raw := range rawNodes {
		var rn schemas.RawNode
		if err := json.Unmarshal(raw, &rn); err != nil {
			graph.Quality.MalformedNodes++
			continue
		}
		node := buildNode(rn, &graph.Quality)
		switch {
		case node.ID == "":
			graph.Quality.EmptyIDs++
		default:
			if _, dup := seenIDs[node.ID]; dup {
				graph.Quality.DuplicateIDs++
			} else {
				seenIDs[node.ID] = struct{}{}
			}
		}
		graph.Nodes = append(graph.Nodes, node)
	}

	// Edge validation needs the id index; duplicated ids resolve to their
	// first record.
	graph.Reindex()

	seenEdges := make(map[edgeKey]struct{}, len(rawEdges))
	for _, raw := range rawEdges {
		var re schemas.RawEdge
		if err := json.Unmarshal(raw, &re); err != nil {
			graph.Quality.MalformedEdges++
			continue
		}
		source := strings.TrimSpace(re.S)
		target := strings.TrimSpace(re.T)
		if source == "" || target == "" || !graph.HasNode(source) || !graph.HasNode(target) {
			graph.Quality.DanglingEdges++
			continue
		}
		if source == target {
			graph.Quality.SelfLoops++
			continue
		}
		key := edgeKey{source, target, re.Dashed}
		if _, dup := seenEdges[key]; dup {
			graph.Quality.DuplicateEdges++
		} else {
			seenEdges[key] = struct{}{}
		}
		graph.Edges = append(graph.Edges, schemas.EdgeRecord{Source: source, Target: target, Dashed: re.Dashed})
	}

	return graph, nil
}

func buildNode(rn schemas.RawNode, q *schemas.QualityTallies) schemas.NodeRecord {
	node := schemas.NodeRecord{
		ID:        strings.TrimSpace(rn.ID),
		RawDate:   strings.TrimSpace(rn.Data.Date),
		Type:      strings.TrimSpace(rn.Data.Type),
		FileCount: len(rn.Data.Files),
	}
	if len(rn.Data.Tags) > 0 {
		node.Tags = []string(rn.Data.Tags)
	}

	rawAction := strings.TrimSpace(rn.Data.Action)
	if rawAction == "" {
		q.MissingActions++
	}
	node.Action = parseAction(rawAction)

	switch {
	case node.RawDate == "":
		q.MissingDates++
	default:
		ts, err := time.Parse(DateLayout, node.RawDate)
		if err != nil {
			q.InvalidDates++
		} else {
			node.Date = &ts
		}
	}

	node.Areas = areas.NormalizeSources(tagAreaSources(rn.Data))
	node.Macro = areas.Macro(node.Areas)
	return node
}

// tagAreaSources labels every raw area value with the document field it was
// read from. Fallback precedence between the fields belongs to the
// normalizer, not to this collector.
func tagAreaSources(data schemas.RawNodeData) []areas.Source {
	out := make([]areas.Source, 0, len(data.Areas)+len(data.MainArea)+len(data.Mainarea)+len(data.MainAreas))
	tag := func(field areas.Field, labels []string) {
		for _, label := range labels {
			out = append(out, areas.Source{Field: field, Label: label})
		}
	}
	tag(areas.FieldAreas, data.Areas)
	tag(areas.FieldMainArea, data.MainArea)
	tag(areas.FieldMainarea, data.Mainarea)
	tag(areas.FieldMainAreas, data.MainAreas)
	return out
}

func parseAction(raw string) schemas.Action {
	switch strings.ToLower(raw) {
	case "exploring":
		return schemas.ActionExploring
	case "making":
		return schemas.ActionMaking
	default:
		return schemas.ActionOther
	}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
