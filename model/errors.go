package model

import "fmt"

// StructuralError means the document cannot yield a Score at all: no
// part-list, or no part bodies. Nothing downstream runs after one.
type StructuralError struct {
	Reason string
}

func (e *StructuralError) Error() string {
	return "structural error: " + e.Reason
}

// ResourceLimitError means repeat expansion hit the expanded-measure bound.
// The partial expanded Score is still returned next to it so callers can
// inspect how far expansion got.
type ResourceLimitError struct {
	PartID string
	Limit  int
	Count  int
}

func (e *ResourceLimitError) Error() string {
	return fmt.Sprintf("expansion of part %v exceeded the limit of %v measures (reached %v)", e.PartID, e.Limit, e.Count)
}
