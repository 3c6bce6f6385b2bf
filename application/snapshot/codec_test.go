package snapshot

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindmap-backend/domain/core/aggregates"
	"mindmap-backend/domain/core/valueobjects"
	pkgerrors "mindmap-backend/pkg/errors"
)

func newTestCodec() (*Codec, *aggregates.GraphStore) {
	store := aggregates.NewGraphStore(nil)
	return NewCodec(store, valueobjects.DefaultZoomBounds()), store
}

func sampleState(t *testing.T, store *aggregates.GraphStore) aggregates.GraphState {
	t.Helper()
	title := "Launch plan"
	state := store.SeedState()
	state, _ = store.AddNode(state, valueobjects.PositionAt(140, -20), &title, valueobjects.NodeStyle{})
	state, _ = store.ResizeNode(state, "n2", valueobjects.NewSize(220, 90))
	accent := valueobjects.Color("accent")
	state, _ = store.UpdateNodeStyle(state, "n2", valueobjects.NodeStyle{BorderColor: &accent})
	state, _, err := store.AddEdge(state, "n1", "n2", valueobjects.EdgeStyle{})
	require.NoError(t, err)
	state, _ = store.SetEdgeShape(state, "e1", valueobjects.ShapeStep)
	return state
}

func TestCodec_RoundTrip(t *testing.T) {
	codec, store := newTestCodec()
	state := sampleState(t, store)
	viewport := valueobjects.NewViewport(valueobjects.DefaultZoomBounds()).PanBy(-15, 40).ZoomOut()

	data, err := codec.Encode(state, viewport)
	require.NoError(t, err)

	decoded, decodedViewport, err := codec.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, state.NodeIDs(), decoded.NodeIDs())
	assert.Equal(t, state.EdgeIDs(), decoded.EdgeIDs())

	node, _ := decoded.Node("n2")
	assert.Equal(t, "Launch plan", node.Label())
	assert.Equal(t, 220.0, node.Size().Width())
	assert.Equal(t, valueobjects.Color("accent"), node.Style().Resolve().BorderColor)
	edge, _ := decoded.Edge("e1")
	assert.Equal(t, valueobjects.ShapeStep, edge.Style().Resolve().Shape)

	assert.InDelta(t, 0.9, decodedViewport.Zoom(), 1e-9)
	assert.True(t, decodedViewport.Pan().Equals(valueobjects.PositionAt(-15, 40)))
}

func TestCodec_DocumentShape(t *testing.T) {
	codec, store := newTestCodec()
	doc, err := codec.ToDocument(sampleState(t, store), valueobjects.NewViewport(valueobjects.DefaultZoomBounds()))
	require.NoError(t, err)

	assert.Equal(t, FormatVersion, doc.Version)
	require.Len(t, doc.Nodes, 2)
	assert.Equal(t, "editable", doc.Nodes[0].Type)
	assert.Nil(t, doc.Nodes[0].Size, "unsized nodes omit their size")
	assert.NotNil(t, doc.Nodes[1].Size)
	assert.NotEmpty(t, doc.Checksum)
}

func TestCodec_DecodeRejections(t *testing.T) {
	codec, store := newTestCodec()
	valid, err := codec.ToDocument(sampleState(t, store), valueobjects.NewViewport(valueobjects.DefaultZoomBounds()))
	require.NoError(t, err)

	mutate := func(change func(doc *Document)) []byte {
		copyDoc := *valid
		copyDoc.Nodes = append([]NodeDocument(nil), valid.Nodes...)
		copyDoc.Edges = append([]EdgeDocument(nil), valid.Edges...)
		change(&copyDoc)
		data, err := json.Marshal(copyDoc)
		require.NoError(t, err)
		return data
	}

	tests := []struct {
		name string
		data []byte
		code string
	}{
		{name: "not json", data: []byte(`{nodes:`), code: "VALIDATION"},
		{name: "future version", data: mutate(func(d *Document) { d.Version = 99 }), code: "VALIDATION"},
		{name: "checksum mismatch", data: mutate(func(d *Document) { d.Nodes[0].Label = "tampered" }), code: "CHECKSUM_MISMATCH"},
		{
			name: "dangling edge",
			data: mutate(func(d *Document) {
				d.Checksum = ""
				d.Edges[0].Target = "n9"
			}),
			code: "INVALID_GRAPH",
		},
		{
			name: "node id beyond the supported range",
			data: mutate(func(d *Document) {
				d.Checksum = ""
				d.Edges = nil
				d.Nodes[1].ID = "n9223372036854775807"
			}),
			code: "INVALID_GRAPH",
		},
		{
			name: "unknown node type",
			data: mutate(func(d *Document) {
				d.Checksum = ""
				d.Nodes[0].Type = "sticky"
			}),
			code: "INVALID_GRAPH",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := codec.Decode(tt.data)
			require.Error(t, err)
			if tt.code == "INVALID_GRAPH" {
				var verrs *pkgerrors.ValidationErrors
				assert.ErrorAs(t, err, &verrs)
				return
			}
			assert.Equal(t, tt.code, pkgerrors.CodeOf(err))
		})
	}
}

func TestCodec_MissingViewportOpensAtIdentity(t *testing.T) {
	codec, _ := newTestCodec()

	state, viewport, err := codec.Decode([]byte(`{"version":1,"nodes":[{"id":"n1","position":{"x":0,"y":0},"label":"Root"}],"edges":[]}`))
	require.NoError(t, err)
	assert.Equal(t, 1, state.NodeCount())
	assert.Equal(t, 1.0, viewport.Zoom())
	assert.True(t, viewport.Pan().Equals(valueobjects.Origin()))
}
