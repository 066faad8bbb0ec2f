package filter

import "github.com/rebeliceyang/lazyfilter/internal/models"

// PillState classifies a filter for display
type PillState int

const (
	// StateEmpty is the entry point: no column chosen yet
	StateEmpty PillState = iota
	// StateIncomplete has a column but is missing an operator or value
	StateIncomplete
	// StateComplete is eligible for emission
	StateComplete
)

// IsValid reports whether column, operator and value are all present.
// A zero number or an empty string still counts as present.
func IsValid(f models.Filter) bool {
	return f.Column != nil && f.Operator != "" && f.Value != nil
}

// IsEmpty reports whether f is the empty filter
func IsEmpty(f models.Filter) bool {
	return f.Column == nil
}

// IsPartial reports whether f has a column but is not yet complete
func IsPartial(f models.Filter) bool {
	return f.Column != nil && !IsValid(f)
}

// StateOf classifies f
func StateOf(f models.Filter) PillState {
	switch {
	case IsEmpty(f):
		return StateEmpty
	case IsValid(f):
		return StateComplete
	default:
		return StateIncomplete
	}
}
