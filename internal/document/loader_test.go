package document_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enricoisidori/threadscape/api/schemas"
	"github.com/enricoisidori/threadscape/internal/document"
)

func TestParseValidDocument(t *testing.T) {
	t.Parallel()
	data := `{
		"version": 3,
		"nodes": [
			{"id": "n1", "x": 10, "y": 20, "w": 100, "h": 40,
			 "data": {"action": "Exploring", "date": "2023-01-02", "areas": ["Speculative"], "type": "note", "tags": ["a"], "files": [{"path": "img.png", "type": "image"}]}},
			{"id": "n2", "data": {"action": "making", "date": "2023-01-09", "areas": "Interaction Design"}},
			{"id": "n3", "data": {"action": "interview", "date": ""}}
		],
		"edges": [
			{"s": "n1", "t": "n2"},
			{"s": "n2", "t": "n3", "dashed": true}
		],
		"futureField": {"ignored": true}
	}`

	graph, err := document.Parse("demo", []byte(data))
	require.NoError(t, err)
	require.NotNil(t, graph)

	assert.Equal(t, "demo", graph.Name)
	require.Len(t, graph.Nodes, 3)
	require.Len(t, graph.Edges, 2)

	n1 := graph.Nodes[0]
	assert.Equal(t, "n1", n1.ID)
	assert.Equal(t, schemas.ActionExploring, n1.Action, "action matching is case-insensitive")
	require.NotNil(t, n1.Date)
	assert.Equal(t, "2023-01-02", n1.Date.Format(document.DateLayout))
	assert.Equal(t, []string{"Speculative Design"}, n1.Areas)
	assert.Equal(t, schemas.MacroSpeculative, n1.Macro)
	assert.Equal(t, "note", n1.Type)
	assert.Equal(t, []string{"a"}, n1.Tags)
	assert.Equal(t, 1, n1.FileCount)

	n2 := graph.Nodes[1]
	assert.Equal(t, schemas.ActionMaking, n2.Action)
	assert.Equal(t, []string{"Interaction Design"}, n2.Areas, "bare string area decodes as a single label")

	n3 := graph.Nodes[2]
	assert.Equal(t, schemas.ActionOther, n3.Action, "unknown actions map to other")
	assert.Nil(t, n3.Date)
	assert.Equal(t, schemas.MacroUnknown, n3.Macro)

	assert.Equal(t, schemas.EdgeRecord{Source: "n1", Target: "n2"}, graph.Edges[0])
	assert.Equal(t, schemas.EdgeRecord{Source: "n2", Target: "n3", Dashed: true}, graph.Edges[1])

	assert.Equal(t, 1, graph.Quality.MissingDates, "n3 has an empty date")
	assert.Zero(t, graph.Quality.DanglingEdges)
}

func TestParseStructuralFailures(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name    string
		data    string
		wantErr error
	}{
		{"top level array", `[1, 2, 3]`, document.ErrNotAnObject},
		{"top level string", `"not a graph"`, document.ErrNotAnObject},
		{"nodes is an object", `{"nodes": {"id": "n1"}}`, document.ErrNodesNotArray},
		{"nodes is a number", `{"nodes": 7}`, document.ErrNodesNotArray},
		{"edges is a string", `{"nodes": [], "edges": "nope"}`, document.ErrEdgesNotArray},
	}

	for _, tc := range testCases {
		tt := tc
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			graph, err := document.Parse("broken", []byte(tt.data))
			assert.Nil(t, graph)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseInvalidJSON(t *testing.T) {
	t.Parallel()
	graph, err := document.Parse("broken", []byte(`{"nodes": [`))
	assert.Nil(t, graph)
	assert.Error(t, err)
}

func TestParseAbsentOrNullCollections(t *testing.T) {
	t.Parallel()

	for _, data := range []string{`{}`, `{"nodes": null, "edges": null}`} {
		graph, err := document.Parse("empty", []byte(data))
		require.NoError(t, err, "input %q", data)
		assert.Empty(t, graph.Nodes)
		assert.Empty(t, graph.Edges)
	}
}

// Edges referencing unknown or empty ids disappear silently from the edge
// list; only the quality tally remembers them.
func TestParseDanglingEdges(t *testing.T) {
	t.Parallel()
	data := `{
		"nodes": [{"id": "a", "data": {"action": "exploring"}}, {"id": "b", "data": {"action": "making"}}],
		"edges": [
			{"s": "a", "t": "b"},
			{"s": "a", "t": "ghost"},
			{"s": "", "t": "b"},
			{"s": "ghost", "t": "phantom"}
		]
	}`

	graph, err := document.Parse("demo", []byte(data))
	require.NoError(t, err)

	require.Len(t, graph.Edges, 1)
	assert.Equal(t, "a", graph.Edges[0].Source)
	assert.Equal(t, 3, graph.Quality.DanglingEdges)
}

func TestParseSelfLoopsAndDuplicateEdges(t *testing.T) {
	t.Parallel()
	data := `{
		"nodes": [{"id": "a", "data": {}}, {"id": "b", "data": {}}],
		"edges": [
			{"s": "a", "t": "a"},
			{"s": "a", "t": "b"},
			{"s": "a", "t": "b"},
			{"s": "a", "t": "b", "dashed": true}
		]
	}`

	graph, err := document.Parse("demo", []byte(data))
	require.NoError(t, err)

	assert.Len(t, graph.Edges, 3, "duplicate instances stay in the list")
	assert.Equal(t, 1, graph.Quality.SelfLoops)
	assert.Equal(t, 1, graph.Quality.DuplicateEdges, "dashed variant is a distinct identity")
}

func TestParseDates(t *testing.T) {
	t.Parallel()
	data := `{
		"nodes": [
			{"id": "ok", "data": {"date": "2022-11-30"}},
			{"id": "trimmed", "data": {"date": "  2022-12-01  "}},
			{"id": "missing", "data": {}},
			{"id": "invalid", "data": {"date": "30/11/2022"}},
			{"id": "alsoInvalid", "data": {"date": "2022-13-45"}}
		]
	}`

	graph, err := document.Parse("demo", []byte(data))
	require.NoError(t, err)

	require.NotNil(t, graph.Nodes[0].Date)
	require.NotNil(t, graph.Nodes[1].Date, "dates are trimmed before parsing")
	assert.Nil(t, graph.Nodes[2].Date)
	assert.Nil(t, graph.Nodes[3].Date)
	assert.Nil(t, graph.Nodes[4].Date)

	assert.Equal(t, 1, graph.Quality.MissingDates)
	assert.Equal(t, 2, graph.Quality.InvalidDates)
}

// All legacy spellings of the single-area field fold into the area list, in
// a fixed order, before normalization.
func TestParseLegacyAreaFields(t *testing.T) {
	t.Parallel()
	data := `{
		"nodes": [
			{"id": "modern", "data": {"areas": ["Interaction Design"]}},
			{"id": "legacy1", "data": {"mainArea": "speculative"}},
			{"id": "legacy2", "data": {"mainarea": "communication"}},
			{"id": "legacy3", "data": {"mainAreas": ["Interaction", "Speculative"]}},
			{"id": "both", "data": {"areas": ["Service Design"], "mainArea": "service design"}}
		]
	}`

	graph, err := document.Parse("demo", []byte(data))
	require.NoError(t, err)

	assert.Equal(t, []string{"Interaction Design"}, graph.Nodes[0].Areas)
	assert.Equal(t, []string{"Speculative Design"}, graph.Nodes[1].Areas)
	assert.Equal(t, []string{"Communication Design"}, graph.Nodes[2].Areas)
	assert.Equal(t, []string{"Interaction Design", "Speculative Design"}, graph.Nodes[3].Areas)
	assert.Equal(t, []string{"Service Design"}, graph.Nodes[4].Areas, "modern field wins deduplication")
}

func TestParseMalformedEntries(t *testing.T) {
	t.Parallel()
	data := `{
		"nodes": [
			{"id": "good", "data": {"action": "making"}},
			"just a string",
			42
		],
		"edges": [
			{"s": "good", "t": "good"},
			[1, 2],
			{"s": "good", "t": "good", "dashed": "yes"}
		]
	}`

	graph, err := document.Parse("demo", []byte(data))
	require.NoError(t, err)

	require.Len(t, graph.Nodes, 1)
	assert.Equal(t, 2, graph.Quality.MalformedNodes)
	assert.Equal(t, 2, graph.Quality.MalformedEdges, "edge with non-bool dashed is malformed")
	assert.Equal(t, 1, graph.Quality.SelfLoops)
}

func TestParseDuplicateAndEmptyIDs(t *testing.T) {
	t.Parallel()
	data := `{
		"nodes": [
			{"id": "dup", "data": {"action": "exploring"}},
			{"id": "dup", "data": {"action": "making"}},
			{"id": "", "data": {"action": "making"}},
			{"data": {"action": "making"}}
		],
		"edges": [{"s": "dup", "t": "dup"}]
	}`

	graph, err := document.Parse("demo", []byte(data))
	require.NoError(t, err)

	assert.Len(t, graph.Nodes, 4, "duplicates and empty-id nodes stay in iteration order")
	assert.Equal(t, 1, graph.Quality.DuplicateIDs)
	assert.Equal(t, 2, graph.Quality.EmptyIDs)

	resolved, ok := graph.NodeByID("dup")
	require.True(t, ok)
	assert.Equal(t, schemas.ActionExploring, resolved.Action, "lookups resolve to the first record")
}

func TestParseMissingActions(t *testing.T) {
	t.Parallel()
	data := `{
		"nodes": [
			{"id": "a", "data": {"action": ""}},
			{"id": "b", "data": {}},
			{"id": "c", "data": {"action": "sketching"}}
		]
	}`

	graph, err := document.Parse("demo", []byte(data))
	require.NoError(t, err)

	assert.Equal(t, 2, graph.Quality.MissingActions)
	assert.Equal(t, schemas.ActionOther, graph.Nodes[0].Action)
	assert.Equal(t, schemas.ActionOther, graph.Nodes[2].Action)
	assert.Zero(t, graph.Quality.MalformedNodes)
}

func TestLoadFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "thesis-mapping.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"nodes": [{"id": "a", "data": {}}], "edges": []}`), 0o644))

	graph, err := document.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "thesis-mapping", graph.Name, "project name is the file base name")
	assert.Len(t, graph.Nodes, 1)

	_, err = document.LoadFile(filepath.Join(dir, "absent.json"))
	assert.Error(t, err)
}
