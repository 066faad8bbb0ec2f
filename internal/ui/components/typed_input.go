package components

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rebeliceyang/lazyfilter/internal/coerce"
	"github.com/rebeliceyang/lazyfilter/internal/models"
)

var typedPlaceholders = map[models.ColumnType]string{
	models.ColumnString: "value",
	models.ColumnNumber: "0",
	models.ColumnDate:   "YYYY-MM-DD",
}

// TypedInput is the value field of a filter row. Its coercion rules follow
// the column type it was created for.
type TypedInput struct {
	Input textinput.Model
	draft *coerce.Draft
}

// NewTypedInput creates a value field starting from the committed value
func NewTypedInput(t models.ColumnType, committed *models.Value, delay time.Duration) (*TypedInput, error) {
	draft, err := coerce.NewDraft(t, committed, delay)
	if err != nil {
		return nil, err
	}

	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = typedPlaceholders[t]
	ti.CharLimit = 256
	ti.Width = 16
	if t == models.ColumnDate {
		ti.CharLimit = len(models.DateLayout)
	}
	ti.SetValue(draft.Text())
	ti.CursorEnd()

	return &TypedInput{Input: ti, draft: draft}, nil
}

// Init opens the first debounce window
func (t *TypedInput) Init() tea.Cmd {
	return t.draft.Start()
}

// Type returns the column type the field coerces for
func (t *TypedInput) Type() models.ColumnType {
	return t.draft.ColumnType()
}

// Owns reports whether msg belongs to this field's timer
func (t *TypedInput) Owns(msg coerce.DebounceMsg) bool {
	return msg.ID == t.draft.DebouncerID()
}

// Update handles keyboard input
func (t *TypedInput) Update(msg tea.Msg) tea.Cmd {
	before := t.Input.Value()
	var cmd tea.Cmd
	t.Input, cmd = t.Input.Update(msg)
	text := t.Input.Value()
	if text == before {
		return cmd
	}

	display, tick := t.draft.SetText(text)
	if display != text {
		t.Input.SetValue(display)
		t.Input.CursorEnd()
	}
	return tea.Batch(cmd, tick)
}

// HandleDebounce returns the value to commit when msg closes the live window
func (t *TypedInput) HandleDebounce(msg coerce.DebounceMsg) (models.Value, bool) {
	return t.draft.HandleDebounce(msg)
}

// Focus focuses the field with the cursor after the text
func (t *TypedInput) Focus() tea.Cmd {
	t.Input.CursorEnd()
	return t.Input.Focus()
}

// Blur removes focus and restores the canonical text where the type asks for it
func (t *TypedInput) Blur() {
	t.Input.Blur()
	if text := t.draft.Blur(); text != t.Input.Value() {
		t.Input.SetValue(text)
		t.Input.CursorEnd()
	}
}

// Close cancels the pending commit
func (t *TypedInput) Close() {
	t.draft.Close()
}

// View renders the field
func (t *TypedInput) View() string {
	return t.Input.View()
}
