package serialization

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ucmflow/ucmflow/internal/core/graph"
)

func samplePayload() *graph.Snapshot {
	return &graph.Snapshot{
		Name: "checkout",
		Nodes: []*graph.Node{
			{ID: "node-1", Type: graph.NodeTypeStart, Name: "Begin", OutEdges: []string{"edge-1"}, InEdges: []string{}},
			{ID: "node-2", Type: graph.NodeTypeEnd, Name: "Done", InEdges: []string{"edge-1"}, OutEdges: []string{}},
		},
		Edges: []*graph.Edge{
			{ID: "edge-1", Source: "node-1", Target: "node-2", ControlPoints: []graph.Point{{X: 1, Y: 2}}},
		},
		Components: []*graph.Component{},
		IDCounter:  3,
	}
}

func TestPipeline_DefaultRoundTrip(t *testing.T) {
	p := New()
	data, err := p.Marshal(samplePayload())
	require.NoError(t, err)

	var got graph.Snapshot
	require.NoError(t, p.Unmarshal(data, &got))
	assert.Equal(t, "checkout", got.Name)
	assert.Equal(t, 3, got.IDCounter)
	require.Len(t, got.Nodes, 2)
	assert.Equal(t, "node-1", got.Nodes[0].ID)
	assert.Equal(t, graph.NodeTypeStart, got.Nodes[0].Type)
	assert.Equal(t, []string{"edge-1"}, got.Nodes[0].OutEdges)
	require.Len(t, got.Edges, 1)
	assert.Equal(t, []graph.Point{{X: 1, Y: 2}}, got.Edges[0].ControlPoints)
}

func TestPipeline_JSONWithGzip(t *testing.T) {
	p := New(WithCodec(JSONCodec{}), WithCompression(CompressionGzip))
	data, err := p.Marshal(samplePayload())
	require.NoError(t, err)

	var got graph.Snapshot
	require.NoError(t, p.Unmarshal(data, &got))
	assert.Equal(t, "checkout", got.Name)
	assert.Len(t, got.Nodes, 2)
}

func TestPipeline_NoCompression(t *testing.T) {
	p := New(WithCodec(JSONCodec{}), WithCompression(CompressionNone))
	data, err := p.Marshal(samplePayload())
	require.NoError(t, err)
	// no compression, so the payload is plain JSON
	assert.Contains(t, string(data), `"checkout"`)
}

func TestPipeline_Encryption(t *testing.T) {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	p := New(WithEncryptionKey(key))
	data, err := p.Marshal(samplePayload())
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		var got graph.Snapshot
		require.NoError(t, p.Unmarshal(data, &got))
		assert.Equal(t, "checkout", got.Name)
	})

	t.Run("wrong key fails", func(t *testing.T) {
		other := make([]byte, 32)
		wrong := New(WithEncryptionKey(other))
		var got graph.Snapshot
		assert.Error(t, wrong.Unmarshal(data, &got))
	})

	t.Run("truncated ciphertext fails", func(t *testing.T) {
		var got graph.Snapshot
		assert.Error(t, p.Unmarshal(data[:4], &got))
	})

	t.Run("invalid key length fails on marshal", func(t *testing.T) {
		bad := New(WithEncryptionKey([]byte("short")))
		_, err := bad.Marshal(samplePayload())
		assert.Error(t, err)
	})
}

func TestPipeline_UnmarshalGarbage(t *testing.T) {
	p := New()
	var got graph.Snapshot
	assert.Error(t, p.Unmarshal([]byte("not a snapshot"), &got))
}

func TestCodecNames(t *testing.T) {
	assert.Equal(t, "json", JSONCodec{}.Name())
	assert.Equal(t, "msgpack", MsgpackCodec{}.Name())
}
