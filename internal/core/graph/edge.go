package graph

// Edge is a directed connection between two path nodes.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"sourceNodeId"`
	Target string `json:"targetNodeId"`
	// ControlPoints is an opaque ordered waypoint list; the renderer owns
	// its meaning, the core only concatenates it during path healing.
	ControlPoints []Point `json:"controlPoints,omitempty"`
	// Condition is an optional boolean-expression string consumed only by
	// the scenario engine.
	Condition string `json:"condition,omitempty"`
}

// Validate ensures edge integrity independent of graph context.
// Self-loops are permitted here; the validator reports them as warnings.
func (e *Edge) Validate() error {
	if e.ID == "" {
		return ErrInvalidEdgeID
	}
	if e.Source == "" {
		return ErrInvalidSource
	}
	if e.Target == "" {
		return ErrInvalidTarget
	}
	return nil
}
