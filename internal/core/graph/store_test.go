package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_AddNode(t *testing.T) {
	t.Run("default names count per type", func(t *testing.T) {
		s := NewStore()
		n1 := s.AddNode(NodeTypeStart, NodeInit{})
		n2 := s.AddNode(NodeTypeStart, NodeInit{})
		n3 := s.AddNode(NodeTypeResponsibility, NodeInit{})
		require.NotNil(t, n1)
		assert.Equal(t, "Start1", n1.Name)
		assert.Equal(t, "Start2", n2.Name)
		assert.Equal(t, "Responsibility1", n3.Name)
	})

	t.Run("explicit name is kept", func(t *testing.T) {
		s := NewStore()
		n := s.AddNode(NodeTypeEmpty, NodeInit{Name: "waypoint"})
		assert.Equal(t, "waypoint", n.Name)
	})

	t.Run("fork and join default to or", func(t *testing.T) {
		s := NewStore()
		f := s.AddNode(NodeTypeFork, NodeInit{})
		j := s.AddNode(NodeTypeJoin, NodeInit{})
		assert.Equal(t, BranchOr, f.Branch)
		assert.Equal(t, BranchOr, j.Branch)
	})

	t.Run("monotonic ids", func(t *testing.T) {
		s := NewStore()
		n1 := s.AddNode(NodeTypeStart, NodeInit{})
		n2 := s.AddNode(NodeTypeEnd, NodeInit{})
		assert.Equal(t, "node-1", n1.ID)
		assert.Equal(t, "node-2", n2.ID)
	})

	t.Run("unknown type warns and returns nil", func(t *testing.T) {
		s := NewStore()
		n := s.AddNode(NodeType("bogus"), NodeInit{})
		assert.Nil(t, n)
		require.Len(t, s.Warnings(), 1)
		assert.Equal(t, "addNode", s.Warnings()[0].Op)
	})
}

func TestStore_AddEdge(t *testing.T) {
	t.Run("connects adjacency in order", func(t *testing.T) {
		s := NewStore()
		a := s.AddNode(NodeTypeEmpty, NodeInit{})
		b := s.AddNode(NodeTypeEmpty, NodeInit{})
		e := s.AddEdge(a.ID, b.ID, EdgeInit{Condition: "x > 1"})
		require.NotNil(t, e)
		assert.Equal(t, []string{e.ID}, a.OutEdges)
		assert.Equal(t, []string{e.ID}, b.InEdges)
		assert.Equal(t, "x > 1", e.Condition)
	})

	t.Run("missing endpoints warn", func(t *testing.T) {
		s := NewStore()
		a := s.AddNode(NodeTypeEmpty, NodeInit{})
		assert.Nil(t, s.AddEdge("nope", a.ID, EdgeInit{}))
		assert.Nil(t, s.AddEdge(a.ID, "nope", EdgeInit{}))
		assert.Len(t, s.Warnings(), 2)
	})

	t.Run("second edge from a start leaves the graph unchanged", func(t *testing.T) {
		s := NewStore()
		start := s.AddNode(NodeTypeStart, NodeInit{})
		a := s.AddNode(NodeTypeEmpty, NodeInit{})
		b := s.AddNode(NodeTypeEmpty, NodeInit{})
		first := s.AddEdge(start.ID, a.ID, EdgeInit{})
		require.NotNil(t, first)

		second := s.AddEdge(start.ID, b.ID, EdgeInit{})
		assert.Nil(t, second)
		assert.Len(t, s.Edges(), 1)
		assert.Equal(t, []string{first.ID}, start.OutEdges)
		assert.Empty(t, b.InEdges)
		require.Len(t, s.Warnings(), 1)
		assert.Contains(t, s.Warnings()[0].Message, "already has an outgoing edge")
	})

	t.Run("end nodes cannot source edges", func(t *testing.T) {
		s := NewStore()
		end := s.AddNode(NodeTypeEnd, NodeInit{})
		a := s.AddNode(NodeTypeEmpty, NodeInit{})
		assert.Nil(t, s.AddEdge(end.ID, a.ID, EdgeInit{}))
	})

	t.Run("start nodes cannot receive edges", func(t *testing.T) {
		s := NewStore()
		a := s.AddNode(NodeTypeEmpty, NodeInit{})
		start := s.AddNode(NodeTypeStart, NodeInit{})
		assert.Nil(t, s.AddEdge(a.ID, start.ID, EdgeInit{}))
	})
}

func TestStore_RemoveEdge(t *testing.T) {
	s := NewStore()
	a := s.AddNode(NodeTypeEmpty, NodeInit{})
	b := s.AddNode(NodeTypeEmpty, NodeInit{})
	e := s.AddEdge(a.ID, b.ID, EdgeInit{})

	require.True(t, s.RemoveEdge(e.ID))
	assert.Empty(t, a.OutEdges)
	assert.Empty(t, b.InEdges)
	assert.Empty(t, s.Edges())
	assert.False(t, s.RemoveEdge(e.ID))
}

func TestStore_RemoveNode(t *testing.T) {
	t.Run("heals a 1-in 1-out node with ordered waypoints", func(t *testing.T) {
		s := NewStore()
		start := s.AddNode(NodeTypeStart, NodeInit{Position: Point{X: 0, Y: 0}})
		mid := s.AddNode(NodeTypeEmpty, NodeInit{Position: Point{X: 50, Y: 50}})
		end := s.AddNode(NodeTypeEnd, NodeInit{Position: Point{X: 100, Y: 0}})
		s.AddEdge(start.ID, mid.ID, EdgeInit{ControlPoints: []Point{{X: 10, Y: 10}}})
		s.AddEdge(mid.ID, end.ID, EdgeInit{ControlPoints: []Point{{X: 90, Y: 10}}})

		require.True(t, s.RemoveNode(mid.ID))

		edges := s.Edges()
		require.Len(t, edges, 1)
		healed := edges[0]
		assert.Equal(t, start.ID, healed.Source)
		assert.Equal(t, end.ID, healed.Target)
		assert.Equal(t, []Point{{X: 10, Y: 10}, {X: 50, Y: 50}, {X: 90, Y: 10}}, healed.ControlPoints)
		assert.Empty(t, s.Warnings())
	})

	t.Run("multi-degree node is severed with a warning", func(t *testing.T) {
		s := NewStore()
		a := s.AddNode(NodeTypeEmpty, NodeInit{})
		b := s.AddNode(NodeTypeEmpty, NodeInit{})
		mid := s.AddNode(NodeTypeEmpty, NodeInit{})
		c := s.AddNode(NodeTypeEmpty, NodeInit{})
		s.AddEdge(a.ID, mid.ID, EdgeInit{})
		s.AddEdge(b.ID, mid.ID, EdgeInit{})
		s.AddEdge(mid.ID, c.ID, EdgeInit{})

		require.True(t, s.RemoveNode(mid.ID))
		assert.Empty(t, s.Edges())
		require.NotEmpty(t, s.Warnings())
		assert.Contains(t, s.Warnings()[0].Message, "without path healing")
	})

	t.Run("self-loop node is not healed", func(t *testing.T) {
		s := NewStore()
		a := s.AddNode(NodeTypeEmpty, NodeInit{})
		s.AddEdge(a.ID, a.ID, EdgeInit{})

		require.True(t, s.RemoveNode(a.ID))
		assert.Empty(t, s.Edges())
		assert.Empty(t, s.Nodes())
	})

	t.Run("detaches from owning component", func(t *testing.T) {
		s := NewStore()
		c := s.AddComponent(ComponentTypeTeam, ComponentInit{})
		n := s.AddNode(NodeTypeEmpty, NodeInit{})
		require.True(t, s.BindNodeToComponent(n.ID, c.ID))

		require.True(t, s.RemoveNode(n.ID))
		assert.Empty(t, c.ChildNodes)
	})
}

func TestStore_UpdateNode(t *testing.T) {
	s := NewStore()
	n := s.AddNode(NodeTypeResponsibility, NodeInit{Name: "validate"})

	name := "verify"
	pos := Point{X: 3, Y: 4}
	require.True(t, s.UpdateNode(n.ID, NodeUpdate{Name: &name, Position: &pos}))
	assert.Equal(t, "verify", n.Name)
	assert.Equal(t, pos, n.Position)

	assert.False(t, s.UpdateNode("node-99", NodeUpdate{Name: &name}))
}

func TestStore_Components(t *testing.T) {
	t.Run("default names and ids", func(t *testing.T) {
		s := NewStore()
		c1 := s.AddComponent(ComponentTypeTeam, ComponentInit{})
		c2 := s.AddComponent(ComponentTypeTeam, ComponentInit{})
		assert.Equal(t, "Team1", c1.Name)
		assert.Equal(t, "Team2", c2.Name)
		assert.Equal(t, "component-1", c1.ID)
	})

	t.Run("bind and unbind nodes", func(t *testing.T) {
		s := NewStore()
		c := s.AddComponent(ComponentTypeObject, ComponentInit{})
		n := s.AddNode(NodeTypeEmpty, NodeInit{})

		require.True(t, s.BindNodeToComponent(n.ID, c.ID))
		assert.Equal(t, c.ID, n.Parent)
		assert.Equal(t, []string{n.ID}, c.ChildNodes)

		require.True(t, s.UnbindNode(n.ID))
		assert.Empty(t, n.Parent)
		assert.Empty(t, c.ChildNodes)
		assert.False(t, s.UnbindNode(n.ID))
	})

	t.Run("rebinding moves the node between components", func(t *testing.T) {
		s := NewStore()
		c1 := s.AddComponent(ComponentTypeTeam, ComponentInit{})
		c2 := s.AddComponent(ComponentTypeTeam, ComponentInit{})
		n := s.AddNode(NodeTypeEmpty, NodeInit{})
		s.BindNodeToComponent(n.ID, c1.ID)

		require.True(t, s.BindNodeToComponent(n.ID, c2.ID))
		assert.Empty(t, c1.ChildNodes)
		assert.Equal(t, []string{n.ID}, c2.ChildNodes)
	})

	t.Run("nesting rejects self and cycles", func(t *testing.T) {
		s := NewStore()
		a := s.AddComponent(ComponentTypeTeam, ComponentInit{})
		b := s.AddComponent(ComponentTypeTeam, ComponentInit{})
		c := s.AddComponent(ComponentTypeTeam, ComponentInit{})

		assert.False(t, s.BindComponentToComponent(a.ID, a.ID))
		require.True(t, s.BindComponentToComponent(b.ID, a.ID))
		require.True(t, s.BindComponentToComponent(c.ID, b.ID))

		// a <- b <- c; binding a under c closes a cycle
		assert.False(t, s.BindComponentToComponent(a.ID, c.ID))
		assert.Empty(t, a.Parent)
		require.NotEmpty(t, s.Warnings())
		assert.Contains(t, s.Warnings()[len(s.Warnings())-1].Message, "containment cycle")
	})

	t.Run("removal unbinds children", func(t *testing.T) {
		s := NewStore()
		parent := s.AddComponent(ComponentTypeProcess, ComponentInit{})
		child := s.AddComponent(ComponentTypeObject, ComponentInit{})
		n := s.AddNode(NodeTypeEmpty, NodeInit{})
		s.BindComponentToComponent(child.ID, parent.ID)
		s.BindNodeToComponent(n.ID, parent.ID)

		require.True(t, s.RemoveComponent(parent.ID))
		assert.Empty(t, n.Parent)
		assert.Empty(t, child.Parent)
		_, ok := s.Component(parent.ID)
		assert.False(t, ok)
		_, ok = s.Component(child.ID)
		assert.True(t, ok)
	})
}

func TestStore_MoveComponent(t *testing.T) {
	s := NewStore()
	outer := s.AddComponent(ComponentTypeTeam, ComponentInit{Bounds: Bounds{X: 0, Y: 0, W: 200, H: 200}})
	inner := s.AddComponent(ComponentTypeObject, ComponentInit{Bounds: Bounds{X: 20, Y: 20, W: 50, H: 50}})
	n1 := s.AddNode(NodeTypeEmpty, NodeInit{Position: Point{X: 10, Y: 10}})
	n2 := s.AddNode(NodeTypeEmpty, NodeInit{Position: Point{X: 30, Y: 30}})
	s.BindComponentToComponent(inner.ID, outer.ID)
	s.BindNodeToComponent(n1.ID, outer.ID)
	s.BindNodeToComponent(n2.ID, inner.ID)

	require.True(t, s.MoveComponent(outer.ID, 5, -5))

	assert.Equal(t, Bounds{X: 5, Y: -5, W: 200, H: 200}, outer.Bounds)
	assert.Equal(t, Bounds{X: 25, Y: 15, W: 50, H: 50}, inner.Bounds)
	assert.Equal(t, Point{X: 15, Y: 5}, n1.Position)
	assert.Equal(t, Point{X: 35, Y: 25}, n2.Position)
}

func TestStore_Clear(t *testing.T) {
	s := NewStore()
	s.Name = "demo"
	s.AddNode(NodeTypeStart, NodeInit{})
	s.AddComponent(ComponentTypeTeam, ComponentInit{})

	s.Clear()

	assert.Empty(t, s.Name)
	assert.Empty(t, s.Nodes())
	assert.Empty(t, s.Components())
	// the id counter restarts
	n := s.AddNode(NodeTypeStart, NodeInit{})
	assert.Equal(t, "node-1", n.ID)
}

func TestStore_TakeWarnings(t *testing.T) {
	s := NewStore()
	s.AddEdge("nope", "nope", EdgeInit{})
	require.Len(t, s.TakeWarnings(), 1)
	assert.Empty(t, s.Warnings())
}
