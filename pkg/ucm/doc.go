// Package ucm provides a minimal public façade over the UCM graph core:
// one store plus its scenario engine, with validation, DSL text round-trip,
// and snapshot persistence wired together. It re-exports the core types so
// callers do not import internal packages directly.
package ucm
