package filter

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rebeliceyang/lazyfilter/internal/models"
)

// ActionType names a state transition
type ActionType string

const (
	ActionUpdate ActionType = "filter:update"
	ActionDelete ActionType = "filter:delete"
)

// Action is a request to change the filter list
type Action struct {
	Type   ActionType
	Filter models.Filter
}

// Update builds an upsert action
func Update(f models.Filter) Action {
	return Action{Type: ActionUpdate, Filter: f}
}

// Delete builds a removal action
func Delete(f models.Filter) Action {
	return Action{Type: ActionDelete, Filter: f}
}

// State is the ordered filter list being edited. It keeps the trailing
// empty filter that the emitted result leaves out.
type State struct {
	Filters []models.Filter
}

// IDGenerator returns a new unique filter id
type IDGenerator func() string

// Option configures a Machine
type Option func(*Machine)

// WithIDGenerator replaces the default UUID generator
func WithIDGenerator(gen IDGenerator) Option {
	return func(m *Machine) {
		m.newID = gen
	}
}

// Machine applies actions to a State. Every transition leaves exactly
// one empty filter in the list.
type Machine struct {
	newID IDGenerator
}

// NewMachine creates a new state machine
func NewMachine(opts ...Option) *Machine {
	m := &Machine{newID: uuid.NewString}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewEmptyFilter builds a fresh empty filter with a new id
func (m *Machine) NewEmptyFilter() models.Filter {
	return models.Filter{ID: m.newID()}
}

// Init seeds the list from externally supplied filters. A seed that already
// has exactly one empty filter is used as-is.
func (m *Machine) Init(seed models.ViewResult) State {
	return State{Filters: m.ensureEntryPoint(cloneFilters(seed.Filters))}
}

// Apply returns the state that results from action. The input is not modified.
// Unknown action types return an unchanged copy.
func (m *Machine) Apply(state State, action Action) State {
	switch action.Type {
	case ActionUpdate:
		return State{Filters: m.ensureEntryPoint(upsert(state.Filters, action.Filter))}
	case ActionDelete:
		return State{Filters: m.ensureEntryPoint(remove(state.Filters, action.Filter.ID))}
	default:
		return State{Filters: cloneFilters(state.Filters)}
	}
}

// ensureEntryPoint leaves exactly one empty filter in the list: it appends a
// fresh one when none is left and drops every empty filter after the first.
func (m *Machine) ensureEntryPoint(filters []models.Filter) []models.Filter {
	out := filters[:0]
	seenEmpty := false
	for _, f := range filters {
		if IsEmpty(f) {
			if seenEmpty {
				continue
			}
			seenEmpty = true
		}
		out = append(out, f)
	}
	if !seenEmpty {
		out = append(out, m.NewEmptyFilter())
	}
	return out
}

func upsert(filters []models.Filter, f models.Filter) []models.Filter {
	out := cloneFilters(filters)
	if i := indexOf(out, f.ID); i >= 0 {
		out[i] = f.Clone()
		return out
	}
	return append(out, f.Clone())
}

func remove(filters []models.Filter, id string) []models.Filter {
	out := cloneFilters(filters)
	i := indexOf(out, id)
	if i < 0 {
		return out
	}
	return append(out[:i], out[i+1:]...)
}

func indexOf(filters []models.Filter, id string) int {
	for i, f := range filters {
		if f.ID == id {
			return i
		}
	}
	return -1
}

func cloneFilters(filters []models.Filter) []models.Filter {
	out := make([]models.Filter, len(filters), len(filters)+1)
	for i, f := range filters {
		out[i] = f.Clone()
	}
	return out
}

// Find returns the filter with the given id
func (s State) Find(id string) (models.Filter, bool) {
	if i := indexOf(s.Filters, id); i >= 0 {
		return s.Filters[i], true
	}
	return models.Filter{}, false
}

// CheckInvariants verifies that s holds exactly one empty filter and
// that no id appears twice.
func CheckInvariants(s State) error {
	empty := 0
	seen := make(map[string]struct{}, len(s.Filters))
	for _, f := range s.Filters {
		if IsEmpty(f) {
			empty++
		}
		if _, dup := seen[f.ID]; dup {
			return fmt.Errorf("duplicate filter id %q", f.ID)
		}
		seen[f.ID] = struct{}{}
	}
	if empty != 1 {
		return fmt.Errorf("expected exactly one empty filter, found %d", empty)
	}
	return nil
}
