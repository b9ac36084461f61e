package metrics

import "expvar"

// Store mutation counters.
var (
	nodesAdded        = new(expvar.Int)
	nodesRemoved      = new(expvar.Int)
	edgesAdded        = new(expvar.Int)
	edgesRemoved      = new(expvar.Int)
	componentsAdded   = new(expvar.Int)
	componentsRemoved = new(expvar.Int)
	graphsLoaded      = new(expvar.Int)
)

// Scenario and DSL counters.
var (
	traversalsTotal      = new(expvar.Int)
	traversalErrorsTotal = new(expvar.Int)
	parsesTotal          = new(expvar.Int)
	parseErrorsTotal     = new(expvar.Int)
	snapshotsSaved       = new(expvar.Int)
)

func init() {
	expvar.Publish("ucm_nodes_added_total", nodesAdded)
	expvar.Publish("ucm_nodes_removed_total", nodesRemoved)
	expvar.Publish("ucm_edges_added_total", edgesAdded)
	expvar.Publish("ucm_edges_removed_total", edgesRemoved)
	expvar.Publish("ucm_components_added_total", componentsAdded)
	expvar.Publish("ucm_components_removed_total", componentsRemoved)
	expvar.Publish("ucm_graphs_loaded_total", graphsLoaded)
	expvar.Publish("ucm_traversals_total", traversalsTotal)
	expvar.Publish("ucm_traversal_errors_total", traversalErrorsTotal)
	expvar.Publish("ucm_parses_total", parsesTotal)
	expvar.Publish("ucm_parse_errors_total", parseErrorsTotal)
	expvar.Publish("ucm_snapshots_saved_total", snapshotsSaved)
}

// Store helpers
func IncNodesAdded()        { nodesAdded.Add(1) }
func IncNodesRemoved()      { nodesRemoved.Add(1) }
func IncEdgesAdded()        { edgesAdded.Add(1) }
func IncEdgesRemoved()      { edgesRemoved.Add(1) }
func IncComponentsAdded()   { componentsAdded.Add(1) }
func IncComponentsRemoved() { componentsRemoved.Add(1) }
func IncGraphsLoaded()      { graphsLoaded.Add(1) }

// Scenario/DSL helpers
func IncTraversals()           { traversalsTotal.Add(1) }
func AddTraversalErrors(n int) { traversalErrorsTotal.Add(int64(n)) }
func IncParses()               { parsesTotal.Add(1) }
func AddParseErrors(n int)     { parseErrorsTotal.Add(int64(n)) }
func IncSnapshotsSaved()       { snapshotsSaved.Add(1) }

// Names returns the published metric names, used by the debug server's
// Prometheus text renderer.
func Names() []string {
	return []string{
		"ucm_nodes_added_total",
		"ucm_nodes_removed_total",
		"ucm_edges_added_total",
		"ucm_edges_removed_total",
		"ucm_components_added_total",
		"ucm_components_removed_total",
		"ucm_graphs_loaded_total",
		"ucm_traversals_total",
		"ucm_traversal_errors_total",
		"ucm_parses_total",
		"ucm_parse_errors_total",
		"ucm_snapshots_saved_total",
	}
}
