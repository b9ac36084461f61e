package graph

import (
	"fmt"

	"github.com/ucmflow/ucmflow/internal/infrastructure/metrics"
)

// Warning is a non-fatal constraint rejection recorded on the store's side
// channel. Mutations that violate invariants return nil and warn instead of
// failing the editing session.
type Warning struct {
	Op      string `json:"op"`
	Message string `json:"message"`
}

// Store owns all Node/Edge/Component instances by id and enforces UCM
// structural invariants on mutation. Entities are created through factory
// methods with monotonic ids, mutated through update methods, and destroyed
// through remove methods that repair dependent structure.
//
// Each public mutation fully updates all affected indices before returning
// and before emitting its event; method-level atomicity is the only
// guarantee. The store runs on a single logical thread.
type Store struct {
	// Name is the diagram name carried by the DSL header line.
	Name string

	nodes     map[string]*Node
	nodeOrder []string

	edges     map[string]*Edge
	edgeOrder []string

	components     map[string]*Component
	componentOrder []string

	idCounter int
	bus       *Bus
	warnings  []Warning
}

// NewStore creates an empty graph store with its own event bus.
func NewStore() *Store {
	s := &Store{
		nodes:      make(map[string]*Node),
		edges:      make(map[string]*Edge),
		components: make(map[string]*Component),
		bus:        NewBus(),
	}
	s.bus.overflow = func(name string) {
		s.warnf("emit", "re-entrant emission of %q dropped at depth limit", name)
	}
	return s
}

// Bus returns the store's event bus.
func (s *Store) Bus() *Bus { return s.bus }

// Warnings returns the accumulated constraint warnings.
func (s *Store) Warnings() []Warning { return s.warnings }

// TakeWarnings returns and clears the accumulated warnings.
func (s *Store) TakeWarnings() []Warning {
	w := s.warnings
	s.warnings = nil
	return w
}

func (s *Store) warnf(op, format string, args ...any) {
	s.warnings = append(s.warnings, Warning{Op: op, Message: fmt.Sprintf(format, args...)})
}

// nextID allocates the next monotonic entity id.
func (s *Store) nextID(kind string) string {
	s.idCounter++
	return fmt.Sprintf("%s-%d", kind, s.idCounter)
}

// NodeInit carries optional initial node properties for AddNode.
type NodeInit struct {
	Name        string
	Description string
	Position    Point
	Branch      BranchType
	Meta        map[string]string
}

// AddNode creates a node of the given type. An empty name defaults to
// "<TypeName><count+1>" counting existing nodes of the same type. Fork and
// join nodes default to the "or" branch type.
func (s *Store) AddNode(t NodeType, init NodeInit) *Node {
	prefix, ok := displayNames[t]
	if !ok {
		s.warnf("addNode", "unknown node type %q", t)
		return nil
	}
	name := init.Name
	if name == "" {
		name = fmt.Sprintf("%s%d", prefix, len(s.NodesByType(t))+1)
	}
	branch := init.Branch
	if branch == "" && (t == NodeTypeFork || t == NodeTypeJoin) {
		branch = BranchOr
	}
	n := &Node{
		ID:          s.nextID("node"),
		Type:        t,
		Position:    init.Position,
		Name:        name,
		Description: init.Description,
		Branch:      branch,
		InEdges:     []string{},
		OutEdges:    []string{},
		Meta:        init.Meta,
	}
	s.nodes[n.ID] = n
	s.nodeOrder = append(s.nodeOrder, n.ID)
	metrics.IncNodesAdded()
	s.bus.Emit(EventNodeAdded, n)
	return n
}

// EdgeInit carries optional initial edge properties for AddEdge.
type EdgeInit struct {
	ControlPoints []Point
	Condition     string
}

// AddEdge creates an edge between two existing nodes. It fails with a nil
// return and a side-channel warning if the source is a start node that
// already has an outgoing edge, the source is an end node, or the target is
// a start node.
func (s *Store) AddEdge(sourceID, targetID string, init EdgeInit) *Edge {
	src, ok := s.nodes[sourceID]
	if !ok {
		s.warnf("addEdge", "source node %q does not exist", sourceID)
		return nil
	}
	tgt, ok := s.nodes[targetID]
	if !ok {
		s.warnf("addEdge", "target node %q does not exist", targetID)
		return nil
	}
	if src.IsStart() && len(src.OutEdges) > 0 {
		s.warnf("addEdge", "start node %q already has an outgoing edge", src.DisplayName())
		return nil
	}
	if src.IsEnd() {
		s.warnf("addEdge", "end node %q cannot have outgoing edges", src.DisplayName())
		return nil
	}
	if tgt.IsStart() {
		s.warnf("addEdge", "start node %q cannot have incoming edges", tgt.DisplayName())
		return nil
	}
	e := &Edge{
		ID:            s.nextID("edge"),
		Source:        sourceID,
		Target:        targetID,
		ControlPoints: init.ControlPoints,
		Condition:     init.Condition,
	}
	s.edges[e.ID] = e
	s.edgeOrder = append(s.edgeOrder, e.ID)
	src.OutEdges = append(src.OutEdges, e.ID)
	tgt.InEdges = append(tgt.InEdges, e.ID)
	metrics.IncEdgesAdded()
	s.bus.Emit(EventEdgeAdded, e)
	return e
}

// Node returns the node with the given id, if present.
func (s *Store) Node(id string) (*Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// Edge returns the edge with the given id, if present.
func (s *Store) Edge(id string) (*Edge, bool) {
	e, ok := s.edges[id]
	return e, ok
}

// Component returns the component with the given id, if present.
func (s *Store) Component(id string) (*Component, bool) {
	c, ok := s.components[id]
	return c, ok
}

// Nodes returns all nodes in creation order.
func (s *Store) Nodes() []*Node {
	out := make([]*Node, 0, len(s.nodeOrder))
	for _, id := range s.nodeOrder {
		out = append(out, s.nodes[id])
	}
	return out
}

// NodesByType returns all nodes of the given type in creation order.
func (s *Store) NodesByType(t NodeType) []*Node {
	var out []*Node
	for _, id := range s.nodeOrder {
		if n := s.nodes[id]; n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

// Edges returns all edges in creation order.
func (s *Store) Edges() []*Edge {
	out := make([]*Edge, 0, len(s.edgeOrder))
	for _, id := range s.edgeOrder {
		out = append(out, s.edges[id])
	}
	return out
}

// Components returns all components in creation order.
func (s *Store) Components() []*Component {
	out := make([]*Component, 0, len(s.componentOrder))
	for _, id := range s.componentOrder {
		out = append(out, s.components[id])
	}
	return out
}

// OutEdges returns a node's outgoing edges in creation order. Creation order
// is load-bearing: scenario edge selection depends on it.
func (s *Store) OutEdges(nodeID string) []*Edge {
	n, ok := s.nodes[nodeID]
	if !ok {
		return nil
	}
	out := make([]*Edge, 0, len(n.OutEdges))
	for _, id := range n.OutEdges {
		if e, ok := s.edges[id]; ok {
			out = append(out, e)
		}
	}
	return out
}

// InEdges returns a node's incoming edges in creation order.
func (s *Store) InEdges(nodeID string) []*Edge {
	n, ok := s.nodes[nodeID]
	if !ok {
		return nil
	}
	in := make([]*Edge, 0, len(n.InEdges))
	for _, id := range n.InEdges {
		if e, ok := s.edges[id]; ok {
			in = append(in, e)
		}
	}
	return in
}

// NodeUpdate carries optional field updates for UpdateNode. Nil fields are
// left unchanged.
type NodeUpdate struct {
	Name        *string
	Description *string
	Position    *Point
	Branch      *BranchType
}

// UpdateNode applies the given updates and emits node:updated.
func (s *Store) UpdateNode(id string, upd NodeUpdate) bool {
	n, ok := s.nodes[id]
	if !ok {
		return false
	}
	if upd.Name != nil {
		n.Name = *upd.Name
	}
	if upd.Description != nil {
		n.Description = *upd.Description
	}
	if upd.Position != nil {
		n.Position = *upd.Position
	}
	if upd.Branch != nil {
		n.Branch = *upd.Branch
	}
	s.bus.Emit(EventNodeUpdated, n)
	return true
}

// EdgeUpdate carries optional field updates for UpdateEdge.
type EdgeUpdate struct {
	ControlPoints *[]Point
	Condition     *string
}

// UpdateEdge applies the given updates and emits edge:updated.
func (s *Store) UpdateEdge(id string, upd EdgeUpdate) bool {
	e, ok := s.edges[id]
	if !ok {
		return false
	}
	if upd.ControlPoints != nil {
		e.ControlPoints = *upd.ControlPoints
	}
	if upd.Condition != nil {
		e.Condition = *upd.Condition
	}
	s.bus.Emit(EventEdgeUpdated, e)
	return true
}

// RemoveEdge detaches the edge from both adjacency sets and deletes it.
func (s *Store) RemoveEdge(id string) bool {
	e, ok := s.edges[id]
	if !ok {
		return false
	}
	if src, ok := s.nodes[e.Source]; ok {
		src.OutEdges = removeID(src.OutEdges, id)
	}
	if tgt, ok := s.nodes[e.Target]; ok {
		tgt.InEdges = removeID(tgt.InEdges, id)
	}
	delete(s.edges, id)
	s.edgeOrder = removeID(s.edgeOrder, id)
	metrics.IncEdgesRemoved()
	s.bus.Emit(EventEdgeRemoved, e)
	return true
}

// RemoveNode deletes a node and every edge touching it. A node with exactly
// one incoming and one outgoing edge is healed: a new edge links its former
// predecessor directly to its former successor, with waypoints
// inWaypoints + nodePosition + outWaypoints. Other degree combinations are
// disconnected without healing; a warning records the skipped repair.
func (s *Store) RemoveNode(id string) bool {
	n, ok := s.nodes[id]
	if !ok {
		return false
	}

	var heal *EdgeInit
	var healSource, healTarget string
	if len(n.InEdges) == 1 && len(n.OutEdges) == 1 && n.InEdges[0] != n.OutEdges[0] {
		in := s.edges[n.InEdges[0]]
		out := s.edges[n.OutEdges[0]]
		if in != nil && out != nil && in.Source != id && out.Target != id {
			points := make([]Point, 0, len(in.ControlPoints)+1+len(out.ControlPoints))
			points = append(points, in.ControlPoints...)
			points = append(points, n.Position)
			points = append(points, out.ControlPoints...)
			heal = &EdgeInit{ControlPoints: points}
			healSource, healTarget = in.Source, out.Target
		}
	} else if len(n.InEdges) > 0 && len(n.OutEdges) > 0 {
		// A through-path is severed without repair; healing only applies
		// to exactly 1-in/1-out nodes.
		s.warnf("removeNode", "node %q removed without path healing (%d in, %d out)",
			n.DisplayName(), len(n.InEdges), len(n.OutEdges))
	}

	for _, edgeID := range append(append([]string{}, n.InEdges...), n.OutEdges...) {
		s.RemoveEdge(edgeID)
	}
	if heal != nil {
		s.AddEdge(healSource, healTarget, *heal)
	}
	if parent, ok := s.components[n.Parent]; ok {
		parent.ChildNodes = removeID(parent.ChildNodes, id)
	}
	delete(s.nodes, id)
	s.nodeOrder = removeID(s.nodeOrder, id)
	metrics.IncNodesRemoved()
	s.bus.Emit(EventNodeRemoved, n)
	return true
}

// ComponentInit carries optional initial component properties.
type ComponentInit struct {
	Name        string
	Description string
	Bounds      Bounds
}

// AddComponent creates a component of the given type, defaulting the name
// like AddNode does for nodes.
func (s *Store) AddComponent(t ComponentType, init ComponentInit) *Component {
	prefix, ok := componentNames[t]
	if !ok {
		s.warnf("addComponent", "unknown component type %q", t)
		return nil
	}
	name := init.Name
	if name == "" {
		count := 0
		for _, id := range s.componentOrder {
			if s.components[id].Type == t {
				count++
			}
		}
		name = fmt.Sprintf("%s%d", prefix, count+1)
	}
	c := &Component{
		ID:              s.nextID("component"),
		Type:            t,
		Bounds:          init.Bounds,
		Name:            name,
		Description:     init.Description,
		ChildComponents: []string{},
		ChildNodes:      []string{},
	}
	s.components[c.ID] = c
	s.componentOrder = append(s.componentOrder, c.ID)
	metrics.IncComponentsAdded()
	s.bus.Emit(EventComponentAdded, c)
	return c
}

// ComponentUpdate carries optional field updates for UpdateComponent.
type ComponentUpdate struct {
	Name        *string
	Description *string
	Bounds      *Bounds
}

// UpdateComponent applies the given updates and emits component:updated.
func (s *Store) UpdateComponent(id string, upd ComponentUpdate) bool {
	c, ok := s.components[id]
	if !ok {
		return false
	}
	if upd.Name != nil {
		c.Name = *upd.Name
	}
	if upd.Description != nil {
		c.Description = *upd.Description
	}
	if upd.Bounds != nil {
		c.Bounds = *upd.Bounds
	}
	s.bus.Emit(EventComponentUpdated, c)
	return true
}

// RemoveComponent unbinds all child nodes and components, detaches the
// component from its own parent, and deletes it.
func (s *Store) RemoveComponent(id string) bool {
	c, ok := s.components[id]
	if !ok {
		return false
	}
	for _, nodeID := range append([]string{}, c.ChildNodes...) {
		s.UnbindNode(nodeID)
	}
	for _, childID := range append([]string{}, c.ChildComponents...) {
		s.UnbindComponent(childID)
	}
	if parent, ok := s.components[c.Parent]; ok {
		parent.ChildComponents = removeID(parent.ChildComponents, id)
	}
	delete(s.components, id)
	s.componentOrder = removeID(s.componentOrder, id)
	metrics.IncComponentsRemoved()
	s.bus.Emit(EventComponentRemoved, c)
	return true
}

// BindNodeToComponent makes the component the node's parent, detaching the
// node from any previous parent first.
func (s *Store) BindNodeToComponent(nodeID, componentID string) bool {
	n, ok := s.nodes[nodeID]
	if !ok {
		return false
	}
	c, ok := s.components[componentID]
	if !ok {
		return false
	}
	if n.Parent == componentID {
		return true
	}
	if prev, ok := s.components[n.Parent]; ok {
		prev.ChildNodes = removeID(prev.ChildNodes, nodeID)
	}
	n.Parent = componentID
	c.ChildNodes = append(c.ChildNodes, nodeID)
	s.bus.Emit(EventNodeBound, n)
	return true
}

// UnbindNode clears the node's parent reference.
func (s *Store) UnbindNode(nodeID string) bool {
	n, ok := s.nodes[nodeID]
	if !ok || n.Parent == "" {
		return false
	}
	if parent, ok := s.components[n.Parent]; ok {
		parent.ChildNodes = removeID(parent.ChildNodes, nodeID)
	}
	n.Parent = ""
	s.bus.Emit(EventNodeUnbound, n)
	return true
}

// BindComponentToComponent nests child under parent. Self-binding and any
// binding that would close a containment cycle are rejected with a warning;
// the ancestor chain of the proposed parent is walked before mutating.
func (s *Store) BindComponentToComponent(childID, parentID string) bool {
	if childID == parentID {
		s.warnf("bindComponent", "component %q cannot contain itself", childID)
		return false
	}
	child, ok := s.components[childID]
	if !ok {
		return false
	}
	parent, ok := s.components[parentID]
	if !ok {
		return false
	}
	for ancestor := parent; ancestor != nil; {
		if ancestor.ID == childID {
			s.warnf("bindComponent", "binding %q under %q would create a containment cycle",
				child.DisplayName(), parent.DisplayName())
			return false
		}
		ancestor = s.components[ancestor.Parent]
	}
	if prev, ok := s.components[child.Parent]; ok {
		prev.ChildComponents = removeID(prev.ChildComponents, childID)
	}
	child.Parent = parentID
	parent.ChildComponents = append(parent.ChildComponents, childID)
	s.bus.Emit(EventComponentNested, child)
	return true
}

// UnbindComponent detaches the component from its parent.
func (s *Store) UnbindComponent(childID string) bool {
	c, ok := s.components[childID]
	if !ok || c.Parent == "" {
		return false
	}
	if parent, ok := s.components[c.Parent]; ok {
		parent.ChildComponents = removeID(parent.ChildComponents, childID)
	}
	c.Parent = ""
	s.bus.Emit(EventComponentUnnested, c)
	return true
}

// MoveComponent translates the component's bounds by (dx, dy) and recursively
// translates all owned nodes and nested components by the same delta.
func (s *Store) MoveComponent(id string, dx, dy float64) bool {
	c, ok := s.components[id]
	if !ok {
		return false
	}
	s.translateComponent(c, dx, dy)
	s.bus.Emit(EventComponentUpdated, c)
	return true
}

func (s *Store) translateComponent(c *Component, dx, dy float64) {
	c.Bounds.X += dx
	c.Bounds.Y += dy
	for _, nodeID := range c.ChildNodes {
		if n, ok := s.nodes[nodeID]; ok {
			n.Position.X += dx
			n.Position.Y += dy
		}
	}
	for _, childID := range c.ChildComponents {
		if child, ok := s.components[childID]; ok {
			s.translateComponent(child, dx, dy)
		}
	}
}

// Clear removes every entity and resets the id counter.
func (s *Store) Clear() {
	s.Name = ""
	s.nodes = make(map[string]*Node)
	s.nodeOrder = nil
	s.edges = make(map[string]*Edge)
	s.edgeOrder = nil
	s.components = make(map[string]*Component)
	s.componentOrder = nil
	s.idCounter = 0
	s.bus.Emit(EventGraphCleared, nil)
}
