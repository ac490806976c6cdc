package ecs

import (
	"fmt"
	"strings"
)

// DeadEntityError reports an Emplace targeting an ID outside the live set.
type DeadEntityError struct {
	Type   string
	Entity Entity
}

func (e *DeadEntityError) Error() string {
	return fmt.Sprintf("emplace %s on dead entity %d", e.Type, e.Entity)
}

// DuplicateComponentTypeError reports a repeated component type in a
// Create/Insert argument list or an index spec.
type DuplicateComponentTypeError struct {
	Type    string
	Context string
}

func (e *DuplicateComponentTypeError) Error() string {
	return fmt.Sprintf("duplicate component type %s in %s", e.Type, e.Context)
}

// TypeNotInIndexError reports an index emplace with a type the index was
// not built over. Always a caller bug: the World routes emplaces through
// the per-type reverse map, so only direct indexBase misuse can trigger it.
type TypeNotInIndexError struct {
	Type       string
	IndexTypes []string
}

func (e *TypeNotInIndexError) Error() string {
	return fmt.Sprintf("type %s not in index (%s)", e.Type, strings.Join(e.IndexTypes, ", "))
}

// SparseOverflowError reports a sparse-set add beyond the hard value cap.
type SparseOverflowError struct {
	Value int32
	Max   int32
}

func (e *SparseOverflowError) Error() string {
	return fmt.Sprintf("sparse set value %d exceeds cap %d", e.Value, e.Max)
}
