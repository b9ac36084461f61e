package scenario

import (
	"fmt"

	"github.com/ucmflow/ucmflow/internal/core/graph"
	"github.com/ucmflow/ucmflow/internal/infrastructure/metrics"
)

// defaultColors cycles highlight colors across created scenarios.
var defaultColors = []string{"#e74c3c", "#2980b9", "#27ae60", "#8e44ad", "#f39c12", "#16a085"}

// Engine owns scenarios independently of the graph store and simulates
// traversals against a store snapshot. Scenario lifecycle events are emitted
// on the store's bus.
type Engine struct {
	store     *graph.Store
	scenarios map[string]*Scenario
	order     []string
	counter   int
	active    string
	highlight *Highlight
}

// NewEngine creates a scenario engine bound to the given store.
func NewEngine(store *graph.Store) *Engine {
	return &Engine{
		store:     store,
		scenarios: make(map[string]*Scenario),
	}
}

// CreateFromStartNode creates a scenario anchored at a start node and
// pre-populates its expected end nodes via exhaustive reachability over all
// outgoing edges, independent of simulation rules.
func (e *Engine) CreateFromStartNode(startNodeID string) (*Scenario, error) {
	n, ok := e.store.Node(startNodeID)
	if !ok {
		return nil, ErrStartNodeMissing
	}
	if !n.IsStart() {
		return nil, fmt.Errorf("%w: node %q is %s", ErrNotAStartNode, n.DisplayName(), n.Type)
	}
	e.counter++
	sc := &Scenario{
		ID:                 fmt.Sprintf("scenario-%d", e.counter),
		Name:               fmt.Sprintf("Scenario%d", e.counter),
		StartNodeID:        startNodeID,
		ExpectedEndNodeIDs: e.discoverEndNodes(startNodeID),
		Variables:          make(map[string]any),
		Conditions:         make(map[string]string),
		Color:              defaultColors[(e.counter-1)%len(defaultColors)],
	}
	sc.resetResult()
	e.scenarios[sc.ID] = sc
	e.order = append(e.order, sc.ID)
	e.store.Bus().Emit(graph.EventScenarioCreated, sc)
	return sc, nil
}

// Scenario returns the scenario with the given id, if present.
func (e *Engine) Scenario(id string) (*Scenario, bool) {
	sc, ok := e.scenarios[id]
	return sc, ok
}

// Scenarios returns all scenarios in creation order.
func (e *Engine) Scenarios() []*Scenario {
	out := make([]*Scenario, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.scenarios[id])
	}
	return out
}

// Update carries optional scenario field updates.
type Update struct {
	Name  *string
	Color *string
}

// UpdateScenario applies the given updates and emits scenario:updated.
func (e *Engine) UpdateScenario(id string, upd Update) bool {
	sc, ok := e.scenarios[id]
	if !ok {
		return false
	}
	if upd.Name != nil {
		sc.Name = *upd.Name
	}
	if upd.Color != nil {
		sc.Color = *upd.Color
	}
	e.store.Bus().Emit(graph.EventScenarioUpdated, sc)
	return true
}

// DeleteScenario removes the scenario and emits scenario:deleted.
func (e *Engine) DeleteScenario(id string) bool {
	sc, ok := e.scenarios[id]
	if !ok {
		return false
	}
	delete(e.scenarios, id)
	for i, sid := range e.order {
		if sid == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	if e.active == id {
		e.active = ""
	}
	e.store.Bus().Emit(graph.EventScenarioDeleted, sc)
	return true
}

// ActivateScenario marks the scenario as the one the UI is displaying.
func (e *Engine) ActivateScenario(id string) bool {
	sc, ok := e.scenarios[id]
	if !ok {
		return false
	}
	e.active = id
	e.store.Bus().Emit(graph.EventScenarioActivated, sc)
	return true
}

// ClearActive clears the active scenario and emits scenario:cleared.
func (e *Engine) ClearActive() {
	e.active = ""
	e.highlight = nil
	e.store.Bus().Emit(graph.EventScenarioCleared, nil)
}

// Active returns the currently activated scenario, if any.
func (e *Engine) Active() (*Scenario, bool) {
	sc, ok := e.scenarios[e.active]
	return sc, ok
}

// ExecuteScenario resets the scenario's result fields and simulates a
// traversal from its start node. Structured errors are recorded on the
// scenario; the method itself only fails when the scenario id is unknown.
func (e *Engine) ExecuteScenario(id string) (*Result, error) {
	sc, ok := e.scenarios[id]
	if !ok {
		return nil, ErrScenarioNotFound
	}
	sc.resetResult()
	ok = e.traverse(sc, sc.StartNodeID, map[string]struct{}{})
	sc.Result.Success = ok && len(sc.Result.Errors) == 0

	metrics.IncTraversals()
	metrics.AddTraversalErrors(len(sc.Result.Errors))
	e.highlight = &Highlight{
		ScenarioID: sc.ID,
		Color:      sc.Color,
		NodeIDs:    append([]string{}, sc.Result.TraversedNodes...),
		EdgeIDs:    append([]string{}, sc.Result.TraversedEdges...),
		EndNodeIDs: append([]string{}, sc.Result.ReachedEndNodes...),
	}
	e.store.Bus().Emit(graph.EventScenarioTraversed, sc)
	return &sc.Result, nil
}

// traverse walks from nodeID with an explicit per-branch visited set. AND
// forks activate every outgoing edge sequentially, each branch on a cloned
// visited set: sibling branches never block each other, but each still
// detects its own cycles. Termination on any finite graph follows from the
// visited set growing on every recursive call.
func (e *Engine) traverse(sc *Scenario, nodeID string, visited map[string]struct{}) bool {
	n, ok := e.store.Node(nodeID)
	if !ok {
		sc.recordError(ErrorMissingTarget, nodeID, fmt.Sprintf("node %q does not exist", nodeID))
		return false
	}
	if _, seen := visited[nodeID]; seen {
		sc.recordError(ErrorCycle, nodeID, fmt.Sprintf("cycle detected: node %q revisited", n.DisplayName()))
		return false
	}
	visited[nodeID] = struct{}{}
	sc.Result.TraversedNodes = append(sc.Result.TraversedNodes, nodeID)

	if n.IsEnd() {
		sc.Result.ReachedEndNodes = append(sc.Result.ReachedEndNodes, nodeID)
		return true
	}

	out := e.store.OutEdges(nodeID)
	if len(out) == 0 {
		sc.recordError(ErrorDeadEnd, nodeID, fmt.Sprintf("dead end: node %q has no outgoing edges", n.DisplayName()))
		return false
	}

	if n.IsFork() && n.Branch == graph.BranchAnd {
		allOK := true
		for _, edge := range out {
			sc.Result.TraversedEdges = append(sc.Result.TraversedEdges, edge.ID)
			if !e.traverse(sc, edge.Target, cloneVisited(visited)) {
				allOK = false
			}
		}
		return allOK
	}

	// Regular nodes and OR forks: first traversable edge in creation order.
	edge := e.selectEdge(sc, out)
	if edge == nil {
		sc.recordError(ErrorNoValidEdge, nodeID, fmt.Sprintf("no traversable edge out of node %q", n.DisplayName()))
		return false
	}
	sc.Result.TraversedEdges = append(sc.Result.TraversedEdges, edge.ID)
	return e.traverse(sc, edge.Target, visited)
}

// selectEdge picks the first edge (creation order) that is traversable: an
// unconditioned edge always is, a conditioned edge only when its expression
// evaluates truthy against the scenario variables. Scenario-level conditions
// take precedence over an edge's own condition. Nil when every edge is
// conditioned and every condition fails.
func (e *Engine) selectEdge(sc *Scenario, out []*graph.Edge) *graph.Edge {
	for _, edge := range out {
		expr, ok := sc.Conditions[edge.ID]
		if !ok {
			expr = edge.Condition
		}
		if expr == "" || Evaluate(expr, sc.Variables) {
			return edge
		}
	}
	return nil
}

// discoverEndNodes collects every end node reachable from startID following
// all outgoing edges, breadth-first, ignoring conditions and fork types.
func (e *Engine) discoverEndNodes(startID string) []string {
	var ends []string
	seen := map[string]struct{}{startID: {}}
	queue := []string{startID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		n, ok := e.store.Node(id)
		if !ok {
			continue
		}
		if n.IsEnd() {
			ends = append(ends, id)
			continue
		}
		for _, edge := range e.store.OutEdges(id) {
			if _, dup := seen[edge.Target]; !dup {
				seen[edge.Target] = struct{}{}
				queue = append(queue, edge.Target)
			}
		}
	}
	if ends == nil {
		ends = []string{}
	}
	return ends
}

func cloneVisited(visited map[string]struct{}) map[string]struct{} {
	clone := make(map[string]struct{}, len(visited))
	for k := range visited {
		clone[k] = struct{}{}
	}
	return clone
}
