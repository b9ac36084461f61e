package graph

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ucmflow/ucmflow/internal/infrastructure/metrics"
)

// Snapshot is the full serialized state of a store. Id sets (adjacency,
// component children) serialize as ordered arrays; the id counter is carried
// so a restored store never reissues an id.
type Snapshot struct {
	Name       string       `json:"name,omitempty"`
	Nodes      []*Node      `json:"nodes"`
	Edges      []*Edge      `json:"edges"`
	Components []*Component `json:"components"`
	IDCounter  int          `json:"idCounter"`
}

// Snapshot returns a deep copy of the store's state in creation order.
func (s *Store) Snapshot() *Snapshot {
	snap := &Snapshot{
		Name:       s.Name,
		Nodes:      make([]*Node, 0, len(s.nodeOrder)),
		Edges:      make([]*Edge, 0, len(s.edgeOrder)),
		Components: make([]*Component, 0, len(s.componentOrder)),
		IDCounter:  s.idCounter,
	}
	for _, id := range s.nodeOrder {
		snap.Nodes = append(snap.Nodes, cloneNode(s.nodes[id]))
	}
	for _, id := range s.edgeOrder {
		snap.Edges = append(snap.Edges, cloneEdge(s.edges[id]))
	}
	for _, id := range s.componentOrder {
		snap.Components = append(snap.Components, cloneComponent(s.components[id]))
	}
	return snap
}

// ToJSON serializes the full store state.
func (s *Store) ToJSON() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}

// FromJSON clears the store and rebuilds it from serialized state. Malformed
// input returns an error wrapping ErrMalformedSnapshot and leaves the store
// cleared; external corruption is unrecoverable and surfaced to the caller.
func (s *Store) FromJSON(data []byte) error {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	return s.Restore(&snap)
}

// Restore replaces the store's state with the snapshot's. The id counter is
// restored from the snapshot and raised past any numeric id suffix found, so
// future factory calls cannot collide.
func (s *Store) Restore(snap *Snapshot) error {
	if snap == nil {
		return fmt.Errorf("%w: nil snapshot", ErrMalformedSnapshot)
	}
	s.Clear()
	s.Name = snap.Name
	for _, n := range snap.Nodes {
		n := cloneNode(n)
		if err := n.Validate(); err != nil {
			return fmt.Errorf("%w: node %q: %v", ErrMalformedSnapshot, n.ID, err)
		}
		if _, dup := s.nodes[n.ID]; dup {
			return fmt.Errorf("%w: duplicate node id %q", ErrMalformedSnapshot, n.ID)
		}
		if n.InEdges == nil {
			n.InEdges = []string{}
		}
		if n.OutEdges == nil {
			n.OutEdges = []string{}
		}
		s.nodes[n.ID] = n
		s.nodeOrder = append(s.nodeOrder, n.ID)
	}
	for _, e := range snap.Edges {
		e := cloneEdge(e)
		if err := e.Validate(); err != nil {
			return fmt.Errorf("%w: edge %q: %v", ErrMalformedSnapshot, e.ID, err)
		}
		if _, dup := s.edges[e.ID]; dup {
			return fmt.Errorf("%w: duplicate edge id %q", ErrMalformedSnapshot, e.ID)
		}
		s.edges[e.ID] = e
		s.edgeOrder = append(s.edgeOrder, e.ID)
	}
	for _, c := range snap.Components {
		c := cloneComponent(c)
		if err := c.Validate(); err != nil {
			return fmt.Errorf("%w: component %q: %v", ErrMalformedSnapshot, c.ID, err)
		}
		if _, dup := s.components[c.ID]; dup {
			return fmt.Errorf("%w: duplicate component id %q", ErrMalformedSnapshot, c.ID)
		}
		if c.ChildComponents == nil {
			c.ChildComponents = []string{}
		}
		if c.ChildNodes == nil {
			c.ChildNodes = []string{}
		}
		s.components[c.ID] = c
		s.componentOrder = append(s.componentOrder, c.ID)
	}

	s.idCounter = snap.IDCounter
	for id := range s.nodes {
		s.bumpCounter(id)
	}
	for id := range s.edges {
		s.bumpCounter(id)
	}
	for id := range s.components {
		s.bumpCounter(id)
	}

	metrics.IncGraphsLoaded()
	s.bus.Emit(EventGraphLoaded, s)
	return nil
}

// bumpCounter raises the id counter past an id's numeric suffix, guarding
// against snapshots whose recorded counter lags their ids.
func (s *Store) bumpCounter(id string) {
	i := strings.LastIndexByte(id, '-')
	if i < 0 {
		return
	}
	if n, err := strconv.Atoi(id[i+1:]); err == nil && n > s.idCounter {
		s.idCounter = n
	}
}

func cloneNode(n *Node) *Node {
	out := *n
	out.InEdges = append([]string{}, n.InEdges...)
	out.OutEdges = append([]string{}, n.OutEdges...)
	if n.Meta != nil {
		out.Meta = make(map[string]string, len(n.Meta))
		for k, v := range n.Meta {
			out.Meta[k] = v
		}
	}
	return &out
}

func cloneEdge(e *Edge) *Edge {
	out := *e
	out.ControlPoints = append([]Point{}, e.ControlPoints...)
	return &out
}

func cloneComponent(c *Component) *Component {
	out := *c
	out.ChildComponents = append([]string{}, c.ChildComponents...)
	out.ChildNodes = append([]string{}, c.ChildNodes...)
	return &out
}
