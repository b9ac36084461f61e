package dsl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ucmflow/ucmflow/internal/core/graph"
)

// Serialize renders a store as DSL text: header, component trees emitted
// depth-first with one indentation level per nesting depth, standalone
// nodes, then every edge as a link statement. Node names resolve link
// operands, falling back to the raw id for unnamed nodes; re-parsing the
// output yields a structurally equal graph.
func Serialize(s *graph.Store) string {
	var b strings.Builder

	name := s.Name
	if name == "" {
		name = "untitled"
	}
	fmt.Fprintf(&b, "ucm %s\n", quoteName(name))

	for _, c := range s.Components() {
		if c.Parent == "" {
			writeComponent(&b, s, c, 0)
		}
	}
	for _, n := range s.Nodes() {
		if n.Parent == "" {
			writeNode(&b, n, 0)
		}
	}
	for _, e := range s.Edges() {
		fmt.Fprintf(&b, "link %s -> %s\n", linkOperand(s, e.Source), linkOperand(s, e.Target))
	}
	return b.String()
}

func writeComponent(b *strings.Builder, s *graph.Store, c *graph.Component, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(b, "%scomponent %s type %s at (%s,%s) size (%s,%s) {\n",
		indent, quoteName(c.DisplayName()), c.Type,
		num(c.Bounds.X), num(c.Bounds.Y), num(c.Bounds.W), num(c.Bounds.H))
	for _, nodeID := range c.ChildNodes {
		if n, ok := s.Node(nodeID); ok {
			writeNode(b, n, depth+1)
		}
	}
	for _, childID := range c.ChildComponents {
		if child, ok := s.Component(childID); ok {
			writeComponent(b, s, child, depth+1)
		}
	}
	fmt.Fprintf(b, "%s}\n", indent)
}

func writeNode(b *strings.Builder, n *graph.Node, depth int) {
	fmt.Fprintf(b, "%s%s %s at (%s,%s)\n",
		strings.Repeat("  ", depth), n.Type, quoteName(n.DisplayName()),
		num(n.Position.X), num(n.Position.Y))
}

// linkOperand resolves a node id to the name used in link statements.
func linkOperand(s *graph.Store, nodeID string) string {
	if n, ok := s.Node(nodeID); ok {
		return quoteName(n.DisplayName())
	}
	return quoteName(nodeID)
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
