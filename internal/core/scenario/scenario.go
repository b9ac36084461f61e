// Package scenario provides scenario entities and the recursive traversal
// engine that simulates walks through a UCM graph, including OR/AND fork
// semantics and cycle-safe termination.
package scenario

// ErrorType classifies structured traversal errors recorded on a scenario.
type ErrorType string

const (
	// ErrorCycle marks a node revisited within the same branch.
	ErrorCycle ErrorType = "cycle"
	// ErrorDeadEnd marks a non-end node with no outgoing edges.
	ErrorDeadEnd ErrorType = "dead_end"
	// ErrorMissingTarget marks a reference to a node no longer in the store.
	ErrorMissingTarget ErrorType = "missing_target"
	// ErrorNoValidEdge marks a node whose outgoing edges could not be
	// resolved to a traversable edge.
	ErrorNoValidEdge ErrorType = "no_valid_edge"
)

// TraversalError is a structured, displayable simulation failure. Scenarios
// record errors rather than aborting; simulating an invalid diagram is an
// expected outcome.
type TraversalError struct {
	Type    ErrorType `json:"type"`
	NodeID  string    `json:"nodeId,omitempty"`
	Message string    `json:"message"`
}

// Result holds the mutable per-execution outcome fields, recomputed on each
// run rather than accumulated historically.
type Result struct {
	TraversedNodes  []string         `json:"traversedNodes"`
	TraversedEdges  []string         `json:"traversedEdges"`
	ReachedEndNodes []string         `json:"reachedEndNodes"`
	Errors          []TraversalError `json:"errors"`
	Success         bool             `json:"success"`
}

// Scenario is a named traversal configuration. It references store ids
// without lifecycle coupling: a scenario may dangle if its nodes are later
// deleted, and execution reports missing references as traversal errors.
type Scenario struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	StartNodeID string `json:"startNodeId"`
	// ExpectedEndNodeIDs is pre-populated at creation by exhaustive
	// reachability over all outgoing edges, independent of simulation rules.
	ExpectedEndNodeIDs []string `json:"expectedEndNodeIds"`
	// Variables feed condition evaluation.
	Variables map[string]any `json:"variables"`
	// Conditions maps edge ids to boolean-expression strings.
	Conditions map[string]string `json:"conditions"`
	// Color is the highlight color handed to the rendering collaborator.
	Color string `json:"color,omitempty"`

	Result Result `json:"result"`
}

// SetVariable sets a variable used by condition evaluation.
func (sc *Scenario) SetVariable(name string, value any) {
	if sc.Variables == nil {
		sc.Variables = make(map[string]any)
	}
	sc.Variables[name] = value
}

// SetCondition attaches a condition expression to an edge id.
func (sc *Scenario) SetCondition(edgeID, expr string) {
	if sc.Conditions == nil {
		sc.Conditions = make(map[string]string)
	}
	sc.Conditions[edgeID] = expr
}

func (sc *Scenario) resetResult() {
	sc.Result = Result{
		TraversedNodes:  []string{},
		TraversedEdges:  []string{},
		ReachedEndNodes: []string{},
		Errors:          []TraversalError{},
	}
}

func (sc *Scenario) recordError(t ErrorType, nodeID, msg string) {
	sc.Result.Errors = append(sc.Result.Errors, TraversalError{Type: t, NodeID: nodeID, Message: msg})
}
