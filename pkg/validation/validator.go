package validation

import (
	"github.com/ucmflow/ucmflow/internal/core/graph"
)

// maxForkBranches is the advisory upper bound on fork out-degree.
const maxForkBranches = 10

// maxComfortableNesting is the component depth past which an info issue is
// reported; deeper diagrams render poorly but remain valid.
const maxComfortableNesting = 3

// ValidateGraph runs every structural check against a store snapshot and
// returns a categorized report. No check mutates state.
func ValidateGraph(s *graph.Store) Report {
	r := Report{Errors: []Issue{}, Warnings: []Issue{}, Info: []Issue{}}
	checkStartEnd(s, &r)
	checkForksJoins(s, &r)
	checkReachability(s, &r)
	checkEdges(s, &r)
	checkComponents(s, &r)
	checkResponsibilities(s, &r)
	r.Valid = len(r.Errors) == 0
	return r
}

// checkStartEnd enforces start/end cardinality and degree rules. Degree
// violations are errors; a diagram with no start or end at all only warns,
// since it may simply be under construction.
func checkStartEnd(s *graph.Store, r *Report) {
	starts := s.NodesByType(graph.NodeTypeStart)
	ends := s.NodesByType(graph.NodeTypeEnd)
	if len(starts) == 0 {
		r.warnf(TypeMissingStart, "", "diagram has no start node")
	}
	if len(ends) == 0 {
		r.warnf(TypeMissingEnd, "", "diagram has no end node")
	}
	for _, n := range starts {
		if len(n.OutEdges) == 0 {
			r.errorf(TypeStartNoOutput, n.ID, "start node %q has no outgoing edge", n.DisplayName())
		}
		if len(n.OutEdges) > 1 {
			r.errorf(TypeStartMultipleOutputs, n.ID, "start node %q has %d outgoing edges", n.DisplayName(), len(n.OutEdges))
		}
		if len(n.InEdges) > 0 {
			r.errorf(TypeStartHasInput, n.ID, "start node %q has incoming edges", n.DisplayName())
		}
	}
	for _, n := range ends {
		if len(n.OutEdges) > 0 {
			r.errorf(TypeEndHasOutput, n.ID, "end node %q has outgoing edges", n.DisplayName())
		}
	}
}

// checkForksJoins warns on degenerate branch counts and fork/join imbalance.
func checkForksJoins(s *graph.Store, r *Report) {
	forks := s.NodesByType(graph.NodeTypeFork)
	joins := s.NodesByType(graph.NodeTypeJoin)
	for _, n := range forks {
		if len(n.OutEdges) < 2 {
			r.warnf(TypeForkFewBranches, n.ID, "fork %q has fewer than 2 outgoing branches", n.DisplayName())
		}
		if len(n.OutEdges) > maxForkBranches {
			r.warnf(TypeForkManyBranches, n.ID, "fork %q has %d outgoing branches", n.DisplayName(), len(n.OutEdges))
		}
	}
	for _, n := range joins {
		if len(n.InEdges) < 2 {
			r.warnf(TypeJoinFewInputs, n.ID, "join %q has fewer than 2 incoming branches", n.DisplayName())
		}
	}
	if len(forks) != len(joins) {
		r.warnf(TypeForkJoinMismatch, "", "diagram has %d forks but %d joins", len(forks), len(joins))
	}
}

// checkReachability walks from every start node over all outgoing edges and
// warns about unreached non-start nodes. Skipped entirely when the diagram
// has no start node; everything would be an orphan.
func checkReachability(s *graph.Store, r *Report) {
	starts := s.NodesByType(graph.NodeTypeStart)
	if len(starts) == 0 {
		return
	}
	reached := make(map[string]struct{})
	var queue []string
	for _, n := range starts {
		reached[n.ID] = struct{}{}
		queue = append(queue, n.ID)
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, e := range s.OutEdges(id) {
			if _, ok := reached[e.Target]; !ok {
				reached[e.Target] = struct{}{}
				queue = append(queue, e.Target)
			}
		}
	}
	for _, n := range s.Nodes() {
		if n.IsStart() {
			continue
		}
		if _, ok := reached[n.ID]; !ok {
			r.warnf(TypeOrphanedNode, n.ID, "node %q is not reachable from any start node", n.DisplayName())
		}
	}
}

// checkEdges verifies referential integrity. Dangling endpoints are errors
// (they cannot be drawn, let alone simulated); self-loops merely warn.
func checkEdges(s *graph.Store, r *Report) {
	for _, e := range s.Edges() {
		_, srcOK := s.Node(e.Source)
		_, tgtOK := s.Node(e.Target)
		if !srcOK {
			r.errorf(TypeDanglingEdge, e.ID, "edge %q references missing source node %q", e.ID, e.Source)
		}
		if !tgtOK {
			r.errorf(TypeDanglingEdge, e.ID, "edge %q references missing target node %q", e.ID, e.Target)
		}
		if srcOK && tgtOK && e.Source == e.Target {
			r.warnf(TypeSelfLoop, e.ID, "edge %q loops a node onto itself", e.ID)
		}
	}
}

// checkComponents verifies container integrity: empty components, children
// positioned outside their parent's bounds, nesting depth, and circular
// containment. The cycle check is independent of the bind-time guard so that
// corrupted imported data is still caught.
func checkComponents(s *graph.Store, r *Report) {
	for _, c := range s.Components() {
		if len(c.ChildNodes) == 0 && len(c.ChildComponents) == 0 {
			r.warnf(TypeEmptyComponent, c.ID, "component %q contains nothing", c.DisplayName())
		}
		for _, nodeID := range c.ChildNodes {
			n, ok := s.Node(nodeID)
			if ok && !c.Bounds.Contains(n.Position) {
				r.warnf(TypeNodeOutsideComponent, nodeID, "node %q lies outside component %q", n.DisplayName(), c.DisplayName())
			}
		}
	}

	// DFS coloring over parent references: white/gray/black.
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int)
	var walk func(id string) bool
	walk = func(id string) bool {
		c, ok := s.Component(id)
		if !ok || c.Parent == "" {
			color[id] = black
			return false
		}
		color[id] = gray
		cyclic := false
		switch color[c.Parent] {
		case gray:
			cyclic = true
		case white:
			cyclic = walk(c.Parent)
		}
		color[id] = black
		return cyclic
	}
	for _, c := range s.Components() {
		if color[c.ID] == white && walk(c.ID) {
			r.errorf(TypeCircularContainment, c.ID, "component %q participates in a containment cycle", c.DisplayName())
		}
	}

	for _, c := range s.Components() {
		if depth := nestingDepth(s, c, len(s.Components())); depth > maxComfortableNesting {
			r.infof(TypeDeepNesting, c.ID, "component %q is nested %d levels deep", c.DisplayName(), depth)
		}
	}
}

// nestingDepth counts ancestors, bounded so containment cycles cannot spin.
func nestingDepth(s *graph.Store, c *graph.Component, limit int) int {
	depth := 0
	for cur := c; cur.Parent != "" && depth <= limit; depth++ {
		parent, ok := s.Component(cur.Parent)
		if !ok {
			break
		}
		cur = parent
	}
	return depth
}

// checkResponsibilities warns about responsibilities that are fully
// disconnected or connected on only one side.
func checkResponsibilities(s *graph.Store, r *Report) {
	for _, n := range s.NodesByType(graph.NodeTypeResponsibility) {
		in, out := len(n.InEdges), len(n.OutEdges)
		switch {
		case in == 0 && out == 0:
			r.warnf(TypeRespDisconnected, n.ID, "responsibility %q is not connected to any path", n.DisplayName())
		case in == 0 || out == 0:
			r.warnf(TypeRespOneSided, n.ID, "responsibility %q is connected on only one side", n.DisplayName())
		}
	}
}
