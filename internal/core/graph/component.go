package graph

// ComponentType represents the kind of a structural container.
type ComponentType string

const (
	ComponentTypeTeam    ComponentType = "team"
	ComponentTypeObject  ComponentType = "object"
	ComponentTypeProcess ComponentType = "process"
	ComponentTypeAgent   ComponentType = "agent"
	ComponentTypeActor   ComponentType = "actor"
)

// componentNames maps component types to the prefix used for default naming.
var componentNames = map[ComponentType]string{
	ComponentTypeTeam:    "Team",
	ComponentTypeObject:  "Object",
	ComponentTypeProcess: "Process",
	ComponentTypeAgent:   "Agent",
	ComponentTypeActor:   "Actor",
}

// Bounds is a component's rectangle. Opaque to the core except for
// containment checks and move translation.
type Bounds struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Contains reports whether p lies inside the rectangle (edges inclusive).
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.X && p.X <= b.X+b.W && p.Y >= b.Y && p.Y <= b.Y+b.H
}

// Component is a structural container binding nodes and nested components.
// The parent/child chain must stay acyclic; the store rejects bindings that
// would close a cycle, and the validator double-checks imported data.
type Component struct {
	ID          string        `json:"id"`
	Type        ComponentType `json:"type"`
	Bounds      Bounds        `json:"bounds"`
	Name        string        `json:"name,omitempty"`
	Description string        `json:"description,omitempty"`
	// Parent is a weak reference to the containing component id.
	Parent          string   `json:"parentComponent,omitempty"`
	ChildComponents []string `json:"childComponents"`
	ChildNodes      []string `json:"childNodes"`
}

// Validate ensures component integrity independent of graph context.
func (c *Component) Validate() error {
	if c.ID == "" {
		return ErrInvalidComponentID
	}
	if _, ok := componentNames[c.Type]; !ok {
		return ErrInvalidComponentType
	}
	return nil
}

// DisplayName returns the component name, falling back to its id.
func (c *Component) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}
