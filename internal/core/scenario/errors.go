package scenario

import "errors"

var (
	ErrScenarioNotFound = errors.New("scenario not found")
	ErrNotAStartNode    = errors.New("scenario must begin at a start node")
	ErrStartNodeMissing = errors.New("scenario start node not found in graph")
)
