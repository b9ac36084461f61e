package scenario

// Highlight exposes the last traversal's node and edge ids for a rendering
// collaborator. The engine itself has no visual dependency; the renderer
// decides what a highlight looks like.
type Highlight struct {
	ScenarioID string   `json:"scenarioId"`
	Color      string   `json:"color"`
	NodeIDs    []string `json:"nodeIds"`
	EdgeIDs    []string `json:"edgeIds"`
	EndNodeIDs []string `json:"endNodeIds"`
}

// LastHighlight returns the highlight of the most recent execution, if one
// has run since the engine was created or cleared.
func (e *Engine) LastHighlight() (*Highlight, bool) {
	if e.highlight == nil {
		return nil, false
	}
	return e.highlight, true
}
