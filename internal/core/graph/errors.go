// Package graph defines domain-specific errors
package graph

import "errors"

var (
	// Node errors
	ErrInvalidNodeID     = errors.New("invalid node ID")
	ErrInvalidNodeType   = errors.New("invalid node type")
	ErrInvalidBranchType = errors.New("invalid branch type")
	ErrNodeNotFound      = errors.New("node not found")

	// Edge errors
	ErrInvalidEdgeID = errors.New("invalid edge ID")
	ErrInvalidSource = errors.New("invalid source node")
	ErrInvalidTarget = errors.New("invalid target node")
	ErrEdgeNotFound  = errors.New("edge not found")

	// Component errors
	ErrInvalidComponentID   = errors.New("invalid component ID")
	ErrInvalidComponentType = errors.New("invalid component type")
	ErrComponentNotFound    = errors.New("component not found")

	// Snapshot errors
	ErrMalformedSnapshot = errors.New("malformed graph snapshot")
)
