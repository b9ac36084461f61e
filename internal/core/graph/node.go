// Package graph provides the core UCM graph domain entities and the store
// that owns them: path nodes, edges, containing components, the event bus,
// and the JSON snapshot format.
package graph

// Point is a 2D position. The core never interprets geometry beyond
// containment checks and path-healing waypoint concatenation.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeType represents the kind of a path node.
type NodeType string

const (
	// NodeTypeStart begins a path. Out-degree at most 1, in-degree 0.
	NodeTypeStart NodeType = "start"
	// NodeTypeEnd terminates a path. Out-degree 0.
	NodeTypeEnd NodeType = "end"
	// NodeTypeResponsibility is an atomic unit of work on a path.
	NodeTypeResponsibility NodeType = "responsibility"
	// NodeTypeEmpty is a plain waypoint node.
	NodeTypeEmpty NodeType = "empty"
	// NodeTypeFork branches a path (or: exclusive, and: parallel).
	NodeTypeFork NodeType = "fork"
	// NodeTypeJoin merges branched paths.
	NodeTypeJoin NodeType = "join"
)

// BranchType qualifies fork and join nodes.
type BranchType string

const (
	// BranchOr selects exactly one outgoing branch.
	BranchOr BranchType = "or"
	// BranchAnd activates every outgoing branch.
	BranchAnd BranchType = "and"
)

// displayNames maps node types to the prefix used for default naming.
var displayNames = map[NodeType]string{
	NodeTypeStart:          "Start",
	NodeTypeEnd:            "End",
	NodeTypeResponsibility: "Responsibility",
	NodeTypeEmpty:          "Empty",
	NodeTypeFork:           "Fork",
	NodeTypeJoin:           "Join",
}

// Node is a vertex on a use case path. Adjacency is kept as insertion-ordered
// edge id slices; creation order is load-bearing for scenario edge selection.
type Node struct {
	ID          string   `json:"id"`
	Type        NodeType `json:"type"`
	Position    Point    `json:"position"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	// Branch applies to fork and join nodes only.
	Branch BranchType `json:"branchType,omitempty"`
	// Parent is a weak reference to the containing component id.
	Parent   string   `json:"parentComponent,omitempty"`
	InEdges  []string `json:"inEdges"`
	OutEdges []string `json:"outEdges"`
	// Meta holds free-form user-entered metadata beyond name/description.
	Meta map[string]string `json:"meta,omitempty"`
}

// Validate ensures node integrity independent of graph context.
func (n *Node) Validate() error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, ok := displayNames[n.Type]; !ok {
		return ErrInvalidNodeType
	}
	if n.Branch != "" && n.Branch != BranchOr && n.Branch != BranchAnd {
		return ErrInvalidBranchType
	}
	return nil
}

// IsFork reports whether the node branches a path.
func (n *Node) IsFork() bool { return n.Type == NodeTypeFork }

// IsEnd reports whether the node terminates a path.
func (n *Node) IsEnd() bool { return n.Type == NodeTypeEnd }

// IsStart reports whether the node begins a path.
func (n *Node) IsStart() bool { return n.Type == NodeTypeStart }

// DisplayName returns the node name, falling back to its id.
func (n *Node) DisplayName() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

// removeID deletes id from an id slice, preserving order.
func removeID(ids []string, id string) []string {
	for i, e := range ids {
		if e == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
