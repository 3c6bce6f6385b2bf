package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindmap-backend/domain/config"
	"mindmap-backend/domain/core/aggregates"
	"mindmap-backend/domain/core/valueobjects"
)

func strPtr(s string) *string { return &s }

func TestDiff(t *testing.T) {
	store := aggregates.NewGraphStore(config.DefaultDomainConfig())
	before := store.SeedState()
	before, n2 := store.AddNode(before, valueobjects.PositionAt(100, 100), strPtr("Idea"), valueobjects.NodeStyle{})
	before, n3 := store.AddNode(before, valueobjects.PositionAt(200, 0), strPtr("Gone"), valueobjects.NodeStyle{})
	before, e1, err := store.AddEdge(before, "n1", n2, valueobjects.EdgeStyle{})
	require.NoError(t, err)

	after, n4 := store.AddNode(before, valueobjects.PositionAt(0, 300), strPtr("Fresh"), valueobjects.NodeStyle{})
	after, _ = store.MoveNode(after, "n1", valueobjects.PositionAt(5, 5))
	after, _ = store.SetNodeLabel(after, n2, "Better idea")
	after, _ = store.DeleteNode(after, n3)
	after, _ = store.SetEdgeShape(after, e1, valueobjects.ShapeStep)

	changes := Diff(before, after)
	assert.Equal(t, []Change{
		{Kind: "moved", Entity: "node", ID: "n1", Detail: "(0, 0) -> (5, 5)"},
		{Kind: "relabeled", Entity: "node", ID: "n2", Detail: `"Idea" -> "Better idea"`},
		{Kind: "removed", Entity: "node", ID: "n3", Detail: "Gone"},
		{Kind: "added", Entity: "node", ID: n4.String(), Detail: "Fresh"},
		{Kind: "restyled", Entity: "edge", ID: "e1"},
	}, changes)

	assert.Empty(t, Diff(after, after))
}

func writeDocument(t *testing.T, dir, name string, state aggregates.GraphState) string {
	t.Helper()
	codec, domain := newCodec()
	data, err := codec.Encode(state, valueobjects.NewViewport(valueobjects.ZoomBoundsFrom(domain)))
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	store := aggregates.NewGraphStore(config.LoadDomainConfig("production"))
	state := store.SeedState()
	state, n2 := store.AddNode(state, valueobjects.PositionAt(100, 100), strPtr("Solar power"), valueobjects.NodeStyle{})
	state, _, err := store.AddEdge(state, "n1", n2, valueobjects.EdgeStyle{})
	require.NoError(t, err)

	good := writeDocument(t, dir, "good.json", state)
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"nodes":"nope"}`), 0o600))

	out, err := run(t, "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "2 nodes, 1 edges")

	out, err = run(t, "validate", good, bad)
	assert.EqualError(t, err, "1 of 2 documents are invalid")
	assert.Contains(t, out, bad)

	out, err = run(t, "inspect", good)
	require.NoError(t, err)
	assert.Contains(t, out, "Solar power")

	out, err = run(t, "diff", good, good)
	require.NoError(t, err)
	assert.Contains(t, out, "No changes")
}
