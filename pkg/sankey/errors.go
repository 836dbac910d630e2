package sankey

import (
	"errors"
	"fmt"
)

var (
	// ErrCyclicGraph matches every *CyclicGraphError via errors.Is.
	ErrCyclicGraph = errors.New("graph contains a cycle")

	// ErrMissingNode matches every *MissingNodeError via errors.Is.
	ErrMissingNode = errors.New("link references a missing node")

	// ErrDuplicateNode matches every *DuplicateNodeError via errors.Is.
	ErrDuplicateNode = errors.New("duplicate node id")
)

// CyclicGraphError is returned when a layering sweep does not settle within
// len(nodes) iterations. No geometry is produced.
type CyclicGraphError struct {
	Pass       string // "depth" or "height"
	Iterations int
}

func (e *CyclicGraphError) Error() string {
	return fmt.Sprintf("%s pass exceeded %d iterations: %v", e.Pass, e.Iterations, ErrCyclicGraph)
}

// Is reports whether target is ErrCyclicGraph.
func (e *CyclicGraphError) Is(target error) bool { return target == ErrCyclicGraph }

// MissingNodeError names the node id a link refers to that is absent from
// the node list.
type MissingNodeError struct {
	ID   string
	Link int // index of the offending link
}

func (e *MissingNodeError) Error() string {
	return fmt.Sprintf("missing: %q (link %d)", e.ID, e.Link)
}

// Is reports whether target is ErrMissingNode.
func (e *MissingNodeError) Is(target error) bool { return target == ErrMissingNode }

// DuplicateNodeError is returned when two input nodes share an id.
type DuplicateNodeError struct {
	ID string
}

func (e *DuplicateNodeError) Error() string {
	return fmt.Sprintf("%v: %q", ErrDuplicateNode, e.ID)
}

// Is reports whether target is ErrDuplicateNode.
func (e *DuplicateNodeError) Is(target error) bool { return target == ErrDuplicateNode }
