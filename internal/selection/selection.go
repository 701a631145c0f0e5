// Package selection prunes or annotates an MEI tree according to a
// measure/staff/beat selection.
package selection

// Completeness selects what the engine does with the selected material.
type Completeness int

const (
	// Extract removes everything outside the selection.
	Extract Completeness = iota
	// Highlight leaves the tree intact and adds an annotation pointing at the selection.
	Highlight
)

func (c Completeness) String() string {
	switch c {
	case Highlight:
		return "highlight"
	default:
		return "extract"
	}
}

// SubRange is a beat range whose endpoints may be symbolic until resolved
// against the beat count of the governing meter.
type SubRange interface {
	Resolve(beatCount int) (start, end float64)
}

// Selection is the parsed selection the engine consults while walking.
// Measures are numbered from 1 in document order.
type Selection interface {
	HasMeasure(measure int) bool
	// Staff returns the beat ranges selected for a staff in a measure, and
	// false when the staff is not selected there.
	Staff(measure, staff int) ([]SubRange, bool)
	Completeness() Completeness
}
