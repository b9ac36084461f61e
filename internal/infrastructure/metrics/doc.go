// Package metrics publishes expvar counters for store mutations, scenario
// traversals, DSL parses, and snapshot saves. Counters are process-global
// and deliberately stdlib-only; the debug server renders them in Prometheus
// text exposition format.
package metrics
