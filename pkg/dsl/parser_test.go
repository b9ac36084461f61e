package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ucmflow/ucmflow/internal/core/graph"
)

const sampleText = `ucm "Order Flow"
component Shipping type team at (0,0) size (300,200) {
  start Begin at (10,20)
  component Packing type object at (20,40) size (100,80) {
    responsibility Pack at (30,50)
  }
}
end Done at (400,20)
link Begin -> Pack
link Pack -> Done
`

func findNode(t *testing.T, s *graph.Store, name string) *graph.Node {
	t.Helper()
	for _, n := range s.Nodes() {
		if n.Name == name {
			return n
		}
	}
	t.Fatalf("node %q not found", name)
	return nil
}

func findComponent(t *testing.T, s *graph.Store, name string) *graph.Component {
	t.Helper()
	for _, c := range s.Components() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("component %q not found", name)
	return nil
}

func TestParse_Sample(t *testing.T) {
	s, res := Parse(sampleText)

	require.True(t, res.Success, "errors: %v", res.Errors)
	assert.Empty(t, res.Errors)
	assert.Empty(t, res.Warnings)

	assert.Equal(t, "Order Flow", s.Name)
	assert.Len(t, s.Nodes(), 3)
	assert.Len(t, s.Edges(), 2)
	assert.Len(t, s.Components(), 2)

	shipping := findComponent(t, s, "Shipping")
	packing := findComponent(t, s, "Packing")
	assert.Equal(t, graph.ComponentTypeTeam, shipping.Type)
	assert.Equal(t, shipping.ID, packing.Parent)
	assert.Equal(t, graph.Bounds{X: 20, Y: 40, W: 100, H: 80}, packing.Bounds)

	begin := findNode(t, s, "Begin")
	pack := findNode(t, s, "Pack")
	done := findNode(t, s, "Done")
	assert.Equal(t, shipping.ID, begin.Parent)
	assert.Equal(t, packing.ID, pack.Parent)
	assert.Empty(t, done.Parent)
	assert.Equal(t, graph.Point{X: 10, Y: 20}, begin.Position)

	require.Len(t, s.OutEdges(begin.ID), 1)
	assert.Equal(t, pack.ID, s.OutEdges(begin.ID)[0].Target)
}

func TestParse_ForwardLinkReferences(t *testing.T) {
	s, res := Parse("ucm demo\nlink A -> B\nstart A at (0,0)\nend B at (10,0)\n")

	require.True(t, res.Success)
	assert.Len(t, s.Edges(), 1)
}

func TestParse_HeaderRules(t *testing.T) {
	t.Run("first header wins", func(t *testing.T) {
		s, res := Parse("ucm first\nucm second\n")
		assert.Equal(t, "first", s.Name)
		require.Len(t, res.Warnings, 1)
		assert.Equal(t, 2, res.Warnings[0].Line)
	})

	t.Run("missing header leaves name empty", func(t *testing.T) {
		s, res := Parse("start A at (0,0)\n")
		assert.True(t, res.Success)
		assert.Empty(t, s.Name)
	})
}

func TestParse_ForkBranchHeuristic(t *testing.T) {
	s, res := Parse("fork ParallelAND at (0,0)\nfork Choice at (10,0)\njoin MergeAND at (20,0)\n")
	require.True(t, res.Success)

	assert.Equal(t, graph.BranchAnd, findNode(t, s, "ParallelAND").Branch)
	assert.Equal(t, graph.BranchOr, findNode(t, s, "Choice").Branch)
	assert.Equal(t, graph.BranchAnd, findNode(t, s, "MergeAND").Branch)
}

func TestParse_QuotedNames(t *testing.T) {
	text := "ucm demo\nstart \"First Step\" at (0,0)\nend \"Last, Step\" at (10,0)\nlink \"First Step\" -> \"Last, Step\"\n"
	s, res := Parse(text)

	require.True(t, res.Success, "errors: %v", res.Errors)
	assert.Len(t, s.Edges(), 1)
	assert.NotNil(t, findNode(t, s, "First Step"))
	assert.NotNil(t, findNode(t, s, "Last, Step"))
}

func TestParse_DuplicateNames(t *testing.T) {
	text := "start A at (0,0)\nempty A at (5,0)\nend B at (10,0)\nlink A -> B\n"
	s, res := Parse(text)

	require.True(t, res.Success)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0].Message, "first definition wins")

	// the link resolves to the first definition
	edges := s.Edges()
	require.Len(t, edges, 1)
	src, _ := s.Node(edges[0].Source)
	assert.Equal(t, graph.NodeTypeStart, src.Type)
}

func TestParse_UnresolvedLink(t *testing.T) {
	_, res := Parse("start A at (0,0)\nlink A -> Ghost\n")

	assert.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 2, res.Errors[0].Line)
	assert.Contains(t, res.Errors[0].Message, "unresolved link target")
}

func TestParse_LinkRejectedByStoreRules(t *testing.T) {
	text := "start A at (0,0)\nend B at (10,0)\nend C at (20,0)\nlink A -> B\nlink A -> C\n"
	s, res := Parse(text)

	// the second edge from a start violates out-degree; it degrades to a
	// warning rather than failing the whole file
	assert.True(t, res.Success)
	assert.Len(t, s.Edges(), 1)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, 5, res.Warnings[0].Line)
	assert.Contains(t, res.Warnings[0].Message, "link skipped")
}

func TestParse_DeclarationErrors(t *testing.T) {
	t.Run("coordinate beyond limit", func(t *testing.T) {
		_, res := Parse("start Far at (200000,0)\n")
		assert.False(t, res.Success)
		require.NotEmpty(t, res.Errors)
		assert.Equal(t, 1, res.Errors[0].Line)
	})

	t.Run("component with zero width", func(t *testing.T) {
		s, res := Parse("component Box type team at (0,0) size (0,50) {\n}\n")
		assert.False(t, res.Success)
		assert.Empty(t, s.Components())
	})
}

func TestParse_MalformedLines(t *testing.T) {
	t.Run("unmatched line warns", func(t *testing.T) {
		_, res := Parse("this is not a statement\n")
		assert.True(t, res.Success)
		require.Len(t, res.Warnings, 1)
		assert.Contains(t, res.Warnings[0].Message, "unmatched line")
	})

	t.Run("malformed node statement", func(t *testing.T) {
		s, res := Parse("start A near (0,0)\n")
		assert.True(t, res.Success)
		assert.Empty(t, s.Nodes())
		require.Len(t, res.Warnings, 1)
	})

	t.Run("malformed component header keeps braces balanced", func(t *testing.T) {
		text := "component Bad type at (0,0) {\n  start S at (0,0)\n}\nend E at (5,5)\n"
		s, res := Parse(text)
		assert.True(t, res.Success)
		assert.Empty(t, s.Components())
		// the node inside the malformed block stays unbound
		assert.Empty(t, findNode(t, s, "S").Parent)
		for _, w := range res.Warnings {
			assert.NotContains(t, w.Message, "unmatched closing brace")
		}
	})

	t.Run("unclosed block warns at end of input", func(t *testing.T) {
		_, res := Parse("component Open type team at (0,0) size (10,10) {\nstart S at (1,1)\n")
		assert.True(t, res.Success)
		require.NotEmpty(t, res.Warnings)
		assert.Equal(t, 0, res.Warnings[0].Line)
		assert.Contains(t, res.Warnings[0].Message, "not closed")
	})

	t.Run("stray closing brace", func(t *testing.T) {
		_, res := Parse("}\n")
		assert.True(t, res.Success)
		require.Len(t, res.Warnings, 1)
		assert.Contains(t, res.Warnings[0].Message, "unmatched closing brace")
	})

	t.Run("unterminated quote", func(t *testing.T) {
		_, res := Parse("start \"Broken at (0,0)\n")
		assert.True(t, res.Success)
		require.Len(t, res.Warnings, 1)
	})
}

func TestParseInto_ReplacesContents(t *testing.T) {
	s := graph.NewStore()
	s.AddNode(graph.NodeTypeStart, graph.NodeInit{Name: "old"})

	res := ParseInto(s, "ucm fresh\nstart New at (0,0)\n")

	require.True(t, res.Success)
	assert.Equal(t, "fresh", s.Name)
	require.Len(t, s.Nodes(), 1)
	assert.Equal(t, "New", s.Nodes()[0].Name)
}

func TestParse_CRLFInput(t *testing.T) {
	s, res := Parse("ucm demo\r\nstart A at (0,0)\r\n")
	require.True(t, res.Success)
	assert.Equal(t, "demo", s.Name)
	assert.Len(t, s.Nodes(), 1)
}
