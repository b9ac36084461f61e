package ucm

import (
	"context"
	"fmt"

	memoryrepo "github.com/ucmflow/ucmflow/internal/adapters/repository/memory"
	"github.com/ucmflow/ucmflow/internal/core/graph"
	"github.com/ucmflow/ucmflow/internal/core/scenario"
	"github.com/ucmflow/ucmflow/internal/core/snapshot"
	"github.com/ucmflow/ucmflow/pkg/dsl"
	"github.com/ucmflow/ucmflow/pkg/serialization"
	"github.com/ucmflow/ucmflow/pkg/validation"
)

// Re-export core graph types for convenience.
type (
	Store     = graph.Store
	Node      = graph.Node
	Edge      = graph.Edge
	Component = graph.Component
	Point     = graph.Point
	Bounds    = graph.Bounds
	Scenario  = scenario.Scenario
	Engine    = scenario.Engine
)

// Runtime bundles a store, its scenario engine, and the collaborator
// plumbing (snapshot persistence, serialization) behind one object. The
// default runtime is in-memory and suitable for local usage and tests.
type Runtime struct {
	store     *graph.Store
	engine    *scenario.Engine
	snapshots snapshot.Store
	pipeline  *serialization.Pipeline
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithSnapshotStore replaces the default in-memory snapshot store.
func WithSnapshotStore(s snapshot.Store) Option {
	return func(rt *Runtime) { rt.snapshots = s }
}

// WithPipeline replaces the default snapshot serialization pipeline.
func WithPipeline(p *serialization.Pipeline) Option {
	return func(rt *Runtime) { rt.pipeline = p }
}

// NewRuntime constructs a runtime with an empty store.
func NewRuntime(opts ...Option) *Runtime {
	store := graph.NewStore()
	rt := &Runtime{
		store:     store,
		engine:    scenario.NewEngine(store),
		snapshots: memoryrepo.NewSnapshotStore(),
		pipeline:  serialization.New(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Store returns the runtime's graph store.
func (rt *Runtime) Store() *graph.Store { return rt.store }

// Engine returns the runtime's scenario engine.
func (rt *Runtime) Engine() *scenario.Engine { return rt.engine }

// Bus returns the store's event bus for UI and renderer subscriptions.
func (rt *Runtime) Bus() *graph.Bus { return rt.store.Bus() }

// Validate runs the structural analysis pass over the current store state.
func (rt *Runtime) Validate() validation.Report {
	return validation.ValidateGraph(rt.store)
}

// ParseText replaces the store contents with the parsed DSL text.
func (rt *Runtime) ParseText(text string) dsl.Result {
	return dsl.ParseInto(rt.store, text)
}

// SerializeText renders the store as DSL text.
func (rt *Runtime) SerializeText() string {
	return dsl.Serialize(rt.store)
}

// SaveSnapshot persists the current store state under the given name and
// returns the record id.
func (rt *Runtime) SaveSnapshot(ctx context.Context, name string) (string, error) {
	payload, err := rt.pipeline.Marshal(rt.store.Snapshot())
	if err != nil {
		return "", fmt.Errorf("failed to serialize snapshot: %w", err)
	}
	rec := &snapshot.Record{Name: name, Payload: payload}
	if err := rt.snapshots.Save(ctx, rec); err != nil {
		return "", fmt.Errorf("failed to persist snapshot: %w", err)
	}
	return rec.ID, nil
}

// RestoreSnapshot replaces the store contents with a persisted snapshot.
func (rt *Runtime) RestoreSnapshot(ctx context.Context, id string) error {
	rec, err := rt.snapshots.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}
	var snap graph.Snapshot
	if err := rt.pipeline.Unmarshal(rec.Payload, &snap); err != nil {
		return fmt.Errorf("failed to deserialize snapshot: %w", err)
	}
	return rt.store.Restore(&snap)
}

// Snapshots returns the runtime's snapshot store for direct listing and
// deletion by a History collaborator.
func (rt *Runtime) Snapshots() snapshot.Store { return rt.snapshots }
