package ucm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ucmflow/ucmflow/internal/core/graph"
	"github.com/ucmflow/ucmflow/pkg/serialization"
)

const checkoutText = `ucm checkout
component Store type team at (0,0) size (400,300) {
  start Browse at (10,20)
  responsibility Pay at (100,20)
}
end Receipt at (500,20)
link Browse -> Pay
link Pay -> Receipt
`

func TestRuntime_ParseValidateExecute(t *testing.T) {
	rt := NewRuntime()

	res := rt.ParseText(checkoutText)
	require.True(t, res.Success, "errors: %v", res.Errors)

	report := rt.Validate()
	assert.True(t, report.Valid)

	starts := rt.Store().NodesByType(graph.NodeTypeStart)
	require.Len(t, starts, 1)

	sc, err := rt.Engine().CreateFromStartNode(starts[0].ID)
	require.NoError(t, err)

	result, err := rt.Engine().ExecuteScenario(sc.ID)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Len(t, result.TraversedNodes, 3)
	assert.Equal(t, sc.ExpectedEndNodeIDs, result.ReachedEndNodes)
}

func TestRuntime_SerializeRoundTrip(t *testing.T) {
	rt := NewRuntime()
	require.True(t, rt.ParseText(checkoutText).Success)

	text := rt.SerializeText()

	rt2 := NewRuntime()
	require.True(t, rt2.ParseText(text).Success)
	assert.Equal(t, text, rt2.SerializeText())
}

func TestRuntime_SnapshotSaveRestore(t *testing.T) {
	ctx := context.Background()
	rt := NewRuntime()
	require.True(t, rt.ParseText(checkoutText).Success)

	id, err := rt.SaveSnapshot(ctx, "before edits")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	// destructive edits after the save
	rt.Store().Clear()
	assert.Empty(t, rt.Store().Nodes())

	require.NoError(t, rt.RestoreSnapshot(ctx, id))
	assert.Equal(t, "checkout", rt.Store().Name)
	assert.Len(t, rt.Store().Nodes(), 3)
	assert.Len(t, rt.Store().Edges(), 2)
	assert.Len(t, rt.Store().Components(), 1)

	list, err := rt.Snapshots().List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "before edits", list[0].Name)
}

func TestRuntime_RestoreMissingSnapshot(t *testing.T) {
	rt := NewRuntime()
	assert.Error(t, rt.RestoreSnapshot(context.Background(), "missing"))
}

func TestRuntime_Options(t *testing.T) {
	pipeline := serialization.New(
		serialization.WithCodec(serialization.JSONCodec{}),
		serialization.WithCompression(serialization.CompressionNone),
	)
	rt := NewRuntime(WithPipeline(pipeline))
	require.True(t, rt.ParseText(checkoutText).Success)

	ctx := context.Background()
	id, err := rt.SaveSnapshot(ctx, "plain json")
	require.NoError(t, err)

	rec, err := rt.Snapshots().Load(ctx, id)
	require.NoError(t, err)
	assert.Contains(t, string(rec.Payload), `"checkout"`)
}

func TestRuntime_BusForwardsStoreEvents(t *testing.T) {
	rt := NewRuntime()
	var seen []string
	rt.Bus().Subscribe(graph.EventNodeAdded, func(ev graph.Event) {
		seen = append(seen, ev.Name)
	})

	rt.Store().AddNode(graph.NodeTypeStart, graph.NodeInit{})
	assert.Equal(t, []string{graph.EventNodeAdded}, seen)
}
