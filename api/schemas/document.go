package schemas

import (
	"bytes"
	"encoding/json"
)

// -- Raw Document Models --
// These types mirror the editor's on-disk JSON shape. Decoding is tolerant:
// field shapes the editor family produced over the years are all accepted.

// RawDocument is the top-level shape of a project document. Unknown
// top-level fields are ignored.
type RawDocument struct {
	Version json.RawMessage `json:"version,omitempty"`
	Nodes   []RawNode       `json:"nodes"`
	Edges   []RawEdge       `json:"edges"`
}

// RawNode mirrors one entry of the nodes array. Geometry travels with the
// document for the editor's benefit and plays no part in any metric.
type RawNode struct {
	ID   string      `json:"id"`
	X    float64     `json:"x"`
	Y    float64     `json:"y"`
	W    float64     `json:"w"`
	H    float64     `json:"h"`
	Data RawNodeData `json:"data"`
}

// RawNodeData is the metadata payload of a node. The three main* fields are
// legacy single-area spellings that older editor builds wrote; the loader
// folds them into the area list in declaration order.
type RawNodeData struct {
	Action    string       `json:"action"`
	Date      string       `json:"date"`
	Areas     FlexStrings  `json:"areas"`
	MainArea  FlexStrings  `json:"mainArea"`
	Mainarea  FlexStrings  `json:"mainarea"`
	MainAreas FlexStrings  `json:"mainAreas"`
	Type      string       `json:"type"`
	Tags      FlexStrings  `json:"tags"`
	Files     []RawFileRef `json:"files"`
}

// RawFileRef is one attachment reference on a node.
type RawFileRef struct {
	Path string `json:"path"`
	Type string `json:"type"`
}

// RawEdge mirrors one entry of the edges array. Dashed is cosmetic in the
// editor and only participates in duplicate-edge identity here.
type RawEdge struct {
	S      string `json:"s"`
	T      string `json:"t"`
	Dashed bool   `json:"dashed"`
}

// FlexStrings decodes a JSON value that may be a bare string, a list of
// strings, or null. Non-string list elements are dropped; scalar values of
// any other type decode to nil. It never fails on valid JSON.
type FlexStrings []string

func (f *FlexStrings) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*f = nil
		return nil
	}

	var single string
	if err := json.Unmarshal(trimmed, &single); err == nil {
		*f = FlexStrings{single}
		return nil
	}

	var list []interface{}
	if err := json.Unmarshal(trimmed, &list); err == nil {
		out := make(FlexStrings, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		*f = out
		return nil
	}

	*f = nil
	return nil
}
