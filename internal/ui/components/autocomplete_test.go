package components

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeliceyang/lazyfilter/internal/models"
	"github.com/rebeliceyang/lazyfilter/internal/ui/theme"
)

func operatorAutocomplete() *Autocomplete[models.FilterOperator] {
	opts := make([]Option[models.FilterOperator], len(models.Operators))
	for i, op := range models.Operators {
		opts[i] = Option[models.FilterOperator]{Key: string(op), Label: op.Label(), Value: op}
	}
	return NewAutocomplete("test-op-", opts, theme.DefaultTheme())
}

func TestAutocomplete_EmptyTextShowsAll(t *testing.T) {
	a := operatorAutocomplete()

	assert.Len(t, a.Available(), 4)
	assert.False(t, a.Active())
}

func TestAutocomplete_FiltersCaseInsensitive(t *testing.T) {
	a := operatorAutocomplete()
	a.Focus()

	a.Update(keys("THAN"))

	require.Len(t, a.Available(), 2)
	assert.Equal(t, models.OpGreaterThan, a.Available()[0].Value)
	assert.Equal(t, models.OpLessThan, a.Available()[1].Value)
	assert.True(t, a.Active())
}

func TestAutocomplete_EnterPicksFirstMatch(t *testing.T) {
	a := operatorAutocomplete()
	a.Focus()
	a.Update(keys("equals"))

	opt, ok, _ := a.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.True(t, ok)
	assert.Equal(t, models.OpEquals, opt.Value)
	assert.Equal(t, "= (equals)", a.Input.Value())
	assert.False(t, a.Active())
}

func TestAutocomplete_DownMovesHighlight(t *testing.T) {
	a := operatorAutocomplete()
	a.Focus()
	a.Update(keys("than"))

	a.Update(tea.KeyMsg{Type: tea.KeyDown})
	opt, ok, _ := a.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.True(t, ok)
	assert.Equal(t, models.OpLessThan, opt.Value)
}

func TestAutocomplete_EnterWithoutMatchesDoesNothing(t *testing.T) {
	a := operatorAutocomplete()
	a.Focus()
	a.Update(keys("zzz"))

	_, ok, _ := a.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.False(t, ok)
	assert.Empty(t, a.Available())
}

func TestAutocomplete_BlurRestoresSelectedLabel(t *testing.T) {
	a := operatorAutocomplete()
	a.SetDefault(models.OpNotEquals)
	a.Focus()

	a.Update(keys("gre"))
	a.Blur()

	assert.Equal(t, "!= (not equals)", a.Input.Value())
	sel, ok := a.Selected()
	require.True(t, ok)
	assert.Equal(t, models.OpNotEquals, sel.Value)
}

func TestAutocomplete_BlurWithoutSelectionClears(t *testing.T) {
	a := operatorAutocomplete()
	a.Focus()

	a.Update(keys("gre"))
	a.Blur()

	assert.Equal(t, "", a.Input.Value())
}

func TestAutocomplete_FocusReplacesTextOnType(t *testing.T) {
	a := operatorAutocomplete()
	a.SetDefault(models.OpEquals)

	a.Focus()
	assert.Len(t, a.Available(), 4, "focus lists every option")
	a.Update(keys("less"))

	assert.Equal(t, "less", a.Input.Value())
	require.Len(t, a.Available(), 1)
	assert.Equal(t, models.OpLessThan, a.Available()[0].Value)
}

func TestAutocomplete_MaxOptions(t *testing.T) {
	opts := make([]Option[int], 20)
	for i := range opts {
		opts[i] = Option[int]{Key: string(rune('a' + i)), Label: "col" + string(rune('a'+i)), Value: i}
	}
	a := NewAutocomplete("test-max-", opts, theme.DefaultTheme())
	a.Focus()
	a.Update(keys("col"))

	assert.Len(t, a.Available(), 20)
	assert.Equal(t, DefaultMaxOptions, a.visibleCount())
}
