package filter

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeliceyang/lazyfilter/internal/models"
)

var (
	nameCol  = models.Column{Key: "name", Type: models.ColumnString}
	countCol = models.Column{Key: "accountsOwned", Type: models.ColumnNumber}
)

func counterIDs() IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func completeFilter(id string, col models.Column, v models.Value) models.Filter {
	c := col
	return models.Filter{ID: id, Column: &c, Operator: models.OpEquals, Value: &v}
}

func ids(s State) []string {
	out := make([]string, len(s.Filters))
	for i, f := range s.Filters {
		out[i] = f.ID
	}
	return out
}

func TestInit_AppendsEmptyFilter(t *testing.T) {
	m := NewMachine(WithIDGenerator(counterIDs()))

	s := m.Init(models.ViewResult{})

	require.Len(t, s.Filters, 1)
	assert.True(t, IsEmpty(s.Filters[0]))
	assert.Equal(t, "id-1", s.Filters[0].ID)
}

func TestInit_SeedWithFiltersGetsEntryPoint(t *testing.T) {
	m := NewMachine(WithIDGenerator(counterIDs()))
	seed := models.ViewResult{Filters: []models.Filter{
		completeFilter("a", nameCol, models.StringValue("Alice")),
	}}

	s := m.Init(seed)

	assert.Equal(t, []string{"a", "id-1"}, ids(s))
	require.NoError(t, CheckInvariants(s))
}

func TestInit_SeedWithEmptyFilterUsedAsIs(t *testing.T) {
	m := NewMachine(WithIDGenerator(counterIDs()))
	seed := models.ViewResult{Filters: []models.Filter{
		{ID: "empty"},
		completeFilter("a", nameCol, models.StringValue("Alice")),
	}}

	s := m.Init(seed)

	assert.Equal(t, []string{"empty", "a"}, ids(s))
}

func TestInit_SeedWithTwoEmptyFiltersKeepsFirst(t *testing.T) {
	m := NewMachine(WithIDGenerator(counterIDs()))
	seed := models.ViewResult{Filters: []models.Filter{
		{ID: "e1"},
		completeFilter("a", nameCol, models.StringValue("Alice")),
		{ID: "e2"},
	}}

	s := m.Init(seed)

	assert.Equal(t, []string{"e1", "a"}, ids(s))
	assert.NoError(t, CheckInvariants(s))
}

func TestApply_UpdateCompletingEmptyAppendsNewEmpty(t *testing.T) {
	m := NewMachine(WithIDGenerator(counterIDs()))
	s := m.Init(models.ViewResult{})

	next := m.Apply(s, Update(completeFilter("id-1", nameCol, models.StringValue("Alice"))))

	assert.Equal(t, []string{"id-1", "id-2"}, ids(next))
	assert.True(t, IsValid(next.Filters[0]))
	assert.True(t, IsEmpty(next.Filters[1]))
}

func TestApply_UpdateReplacesInPlace(t *testing.T) {
	m := NewMachine(WithIDGenerator(counterIDs()))
	s := m.Init(models.ViewResult{Filters: []models.Filter{
		completeFilter("a", nameCol, models.StringValue("Alice")),
		completeFilter("b", countCol, models.NumberValue(3)),
	}})

	next := m.Apply(s, Update(completeFilter("a", nameCol, models.StringValue("Bob"))))

	assert.Equal(t, []string{"a", "b", "id-1"}, ids(next))
	assert.Equal(t, "Bob", next.Filters[0].Value.Str())
}

func TestApply_UpdateUnknownIDAppends(t *testing.T) {
	m := NewMachine(WithIDGenerator(counterIDs()))
	s := m.Init(models.ViewResult{})

	next := m.Apply(s, Update(completeFilter("new", countCol, models.NumberValue(0))))

	assert.Equal(t, []string{"id-1", "new"}, ids(next))
	require.NoError(t, CheckInvariants(next))
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	m := NewMachine(WithIDGenerator(counterIDs()))
	s := m.Init(models.ViewResult{Filters: []models.Filter{
		completeFilter("a", nameCol, models.StringValue("Alice")),
	}})

	_ = m.Apply(s, Update(completeFilter("a", nameCol, models.StringValue("Bob"))))
	_ = m.Apply(s, Delete(s.Filters[0]))

	assert.Equal(t, []string{"a", "id-1"}, ids(s))
	assert.Equal(t, "Alice", s.Filters[0].Value.Str())
}

func TestApply_DeleteRemovesByID(t *testing.T) {
	m := NewMachine(WithIDGenerator(counterIDs()))
	s := m.Init(models.ViewResult{Filters: []models.Filter{
		completeFilter("a", nameCol, models.StringValue("Alice")),
		completeFilter("b", countCol, models.NumberValue(3)),
	}})

	next := m.Apply(s, Delete(models.Filter{ID: "a"}))

	assert.Equal(t, []string{"b", "id-1"}, ids(next))
}

func TestApply_DeleteMissIsNoop(t *testing.T) {
	m := NewMachine(WithIDGenerator(counterIDs()))
	s := m.Init(models.ViewResult{Filters: []models.Filter{
		completeFilter("a", nameCol, models.StringValue("Alice")),
	}})

	next := m.Apply(s, Delete(models.Filter{ID: "missing"}))

	assert.Equal(t, s, next)
}

func TestApply_DeleteEmptyFilterRegeneratesEntryPoint(t *testing.T) {
	m := NewMachine(WithIDGenerator(counterIDs()))
	s := m.Init(models.ViewResult{})

	next := m.Apply(s, Delete(s.Filters[0]))

	assert.Equal(t, []string{"id-2"}, ids(next))
	require.NoError(t, CheckInvariants(next))
}

func TestApply_UpdateWithSecondEmptyFilterKeepsOne(t *testing.T) {
	m := NewMachine(WithIDGenerator(counterIDs()))
	s := m.Init(models.ViewResult{Filters: []models.Filter{
		completeFilter("a", nameCol, models.StringValue("Alice")),
	}})

	next := m.Apply(s, Update(models.Filter{ID: "stray"}))
	assert.Equal(t, []string{"a", "id-1"}, ids(next))

	// clearing a started filter turns it into the entry point
	next = m.Apply(next, Update(models.Filter{ID: "a"}))
	assert.Equal(t, []string{"a"}, ids(next))
	require.NoError(t, CheckInvariants(next))
}

func validOnly(s State) []models.Filter {
	out := []models.Filter{}
	for _, f := range s.Filters {
		if f.Column != nil && f.Operator != "" && f.Value != nil {
			out = append(out, f)
		}
	}
	return out
}

func TestApply_UnknownActionReturnsCopy(t *testing.T) {
	m := NewMachine(WithIDGenerator(counterIDs()))
	s := m.Init(models.ViewResult{})

	next := m.Apply(s, Action{Type: "filter:bogus"})

	assert.Equal(t, s, next)
}

func TestCheckInvariants(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		wantErr bool
	}{
		{"single empty", State{Filters: []models.Filter{{ID: "a"}}}, false},
		{"no empty", State{Filters: []models.Filter{completeFilter("a", nameCol, models.StringValue("x"))}}, true},
		{"two empty", State{Filters: []models.Filter{{ID: "a"}, {ID: "b"}}}, true},
		{"duplicate id", State{Filters: []models.Filter{completeFilter("a", nameCol, models.StringValue("x")), {ID: "a"}}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckInvariants(tt.state)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// randomAction picks an update or delete against a known or unknown id
func randomAction(r *rand.Rand, s State) Action {
	var target models.Filter
	if len(s.Filters) > 0 && r.Intn(4) > 0 {
		target = s.Filters[r.Intn(len(s.Filters))]
	} else {
		target = models.Filter{ID: fmt.Sprintf("ext-%d", r.Intn(5))}
	}

	if r.Intn(3) == 0 {
		return Delete(target)
	}
	switch r.Intn(4) {
	case 0:
		target = models.Filter{ID: target.ID}
	case 1:
		target = SelectColumn(models.Filter{ID: target.ID}, countCol)
	default:
		target = completeFilter(target.ID, nameCol, models.StringValue(fmt.Sprint(r.Intn(100))))
	}
	return Update(target)
}

func TestApply_InvariantsHoldForRandomSequences(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for run := 0; run < 200; run++ {
		m := NewMachine(WithIDGenerator(counterIDs()))
		s := m.Init(models.ViewResult{})
		for step := 0; step < 50; step++ {
			action := randomAction(r, s)
			next := m.Apply(s, action)

			require.NoError(t, CheckInvariants(next), "run %d step %d", run, step)
			require.Equal(t, validOnly(next), Project(next).Filters)

			if action.Type == ActionUpdate && !IsEmpty(action.Filter) {
				got, ok := next.Find(action.Filter.ID)
				require.True(t, ok)
				assert.Equal(t, action.Filter, got)
			}
			if action.Type == ActionDelete {
				_, ok := next.Find(action.Filter.ID)
				if _, existed := s.Find(action.Filter.ID); existed {
					require.False(t, ok)
				}
			}
			s = next
		}
	}
}
