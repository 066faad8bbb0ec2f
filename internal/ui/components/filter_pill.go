package components

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/mattn/go-runewidth"
	"github.com/rebeliceyang/lazyfilter/internal/coerce"
	"github.com/rebeliceyang/lazyfilter/internal/filter"
	"github.com/rebeliceyang/lazyfilter/internal/models"
	"github.com/rebeliceyang/lazyfilter/internal/ui/theme"
)

// Zone ID prefixes for mouse click handling
const (
	ZonePillPrefix   = "pill-"
	ZoneDeletePrefix = "pill-delete-"
)

// FilterUpdateMsg is sent when a pill holds a complete filter
type FilterUpdateMsg struct {
	Filter models.Filter
}

// FilterDeleteMsg is sent when a pill asks to be removed
type FilterDeleteMsg struct {
	Filter models.Filter
}

// PillField identifies an input inside a pill
type PillField int

const (
	FieldColumn PillField = iota
	FieldOperator
	FieldValue
)

// FilterPill edits one filter. It keeps its own copy of the filter and only
// reports it upward once it is complete.
type FilterPill struct {
	Theme theme.Theme

	filter    models.Filter
	columns   *Autocomplete[models.Column]
	operators *Autocomplete[models.FilterOperator]
	value     *TypedInput
	debounce  time.Duration

	focused bool
	field   PillField
	err     error
}

// NewFilterPill creates a pill for f
func NewFilterPill(f models.Filter, columns []models.Column, th theme.Theme, debounce time.Duration) *FilterPill {
	columnOptions := make([]Option[models.Column], len(columns))
	for i, c := range columns {
		columnOptions[i] = Option[models.Column]{Key: c.Key, Label: c.Key, Value: c}
	}
	operatorOptions := make([]Option[models.FilterOperator], len(models.Operators))
	for i, op := range models.Operators {
		operatorOptions[i] = Option[models.FilterOperator]{Key: string(op), Label: op.Label(), Value: op}
	}

	p := &FilterPill{
		Theme:     th,
		filter:    f.Clone(),
		columns:   NewAutocomplete(ZonePillPrefix+f.ID+"-column-", columnOptions, th),
		operators: NewAutocomplete(ZonePillPrefix+f.ID+"-operator-", operatorOptions, th),
		debounce:  debounce,
	}
	p.columns.Input.Placeholder = "column"
	p.operators.Input.Placeholder = "operator"
	if f.Column != nil {
		p.columns.SetDefault(*f.Column)
		p.buildValueInput()
	}
	if f.Operator != "" {
		p.operators.SetDefault(f.Operator)
	}
	return p
}

// ID returns the filter id the pill edits
func (p *FilterPill) ID() string {
	return p.filter.ID
}

// Filter returns the pill's current filter, complete or not
func (p *FilterPill) Filter() models.Filter {
	return p.filter.Clone()
}

// Field returns the focused field
func (p *FilterPill) Field() PillField {
	return p.field
}

// Init starts the value field's first debounce window
func (p *FilterPill) Init() tea.Cmd {
	if p.value == nil {
		return nil
	}
	return p.value.Init()
}

// buildValueInput replaces the value field when the column type changes.
// The stale value is not migrated.
func (p *FilterPill) buildValueInput() tea.Cmd {
	if p.filter.Column == nil {
		return nil
	}
	if p.value != nil && p.value.Type() == p.filter.Column.Type {
		return nil
	}
	if p.value != nil {
		p.value.Close()
	}
	input, err := NewTypedInput(p.filter.Column.Type, p.filter.Value, p.debounce)
	if err != nil {
		p.err = err
		p.value = nil
		return nil
	}
	p.err = nil
	p.value = input
	return input.Init()
}

// Focus focuses the given field. Fields that are not shown yet fall back to the column.
func (p *FilterPill) Focus(field PillField) tea.Cmd {
	p.blurField()
	p.focused = true
	if p.filter.Column == nil {
		field = FieldColumn
	}
	if field == FieldValue && p.value == nil {
		field = FieldOperator
	}
	p.field = field
	switch field {
	case FieldOperator:
		return p.operators.Focus()
	case FieldValue:
		return p.value.Focus()
	default:
		return p.columns.Focus()
	}
}

// Blur removes focus from the pill
func (p *FilterPill) Blur() {
	p.blurField()
	p.focused = false
}

func (p *FilterPill) blurField() {
	switch p.field {
	case FieldColumn:
		p.columns.Blur()
	case FieldOperator:
		p.operators.Blur()
	case FieldValue:
		if p.value != nil {
			p.value.Blur()
		}
	}
}

// lastField is the last field currently shown
func (p *FilterPill) lastField() PillField {
	switch {
	case p.filter.Column == nil:
		return FieldColumn
	case p.value == nil:
		return FieldOperator
	default:
		return FieldValue
	}
}

// NextField moves focus forward. It returns false when focus is already on the last field.
func (p *FilterPill) NextField() (bool, tea.Cmd) {
	if p.field >= p.lastField() {
		return false, nil
	}
	return true, p.Focus(p.field + 1)
}

// PrevField moves focus back. It returns false when focus is already on the column.
func (p *FilterPill) PrevField() (bool, tea.Cmd) {
	if p.field == FieldColumn {
		return false, nil
	}
	return true, p.Focus(p.field - 1)
}

// CanDelete reports whether the pill offers deletion. The empty pill cannot be removed.
func (p *FilterPill) CanDelete() bool {
	return p.filter.Column != nil
}

// RequestDelete asks the builder to remove this pill's filter
func (p *FilterPill) RequestDelete() tea.Cmd {
	if !p.CanDelete() {
		return nil
	}
	f := p.filter.Clone()
	return func() tea.Msg {
		return FilterDeleteMsg{Filter: f}
	}
}

// Owns reports whether msg belongs to this pill's value timer
func (p *FilterPill) Owns(msg coerce.DebounceMsg) bool {
	return p.value != nil && p.value.Owns(msg)
}

// Close cancels the pill's timers. Called when its filter leaves the list.
func (p *FilterPill) Close() {
	if p.value != nil {
		p.value.Close()
	}
}

// Update handles messages for the focused field and debounce ticks
func (p *FilterPill) Update(msg tea.Msg) (*FilterPill, tea.Cmd) {
	switch msg := msg.(type) {
	case coerce.DebounceMsg:
		if p.value == nil {
			return p, nil
		}
		if v, ok := p.value.HandleDebounce(msg); ok {
			return p, p.setValue(v)
		}
		return p, nil

	case tea.MouseMsg:
		return p.handleMouse(msg)

	case tea.KeyMsg:
		switch p.field {
		case FieldColumn:
			opt, ok, cmd := p.columns.Update(msg)
			if ok {
				return p, tea.Batch(cmd, p.setColumn(opt.Value))
			}
			return p, cmd
		case FieldOperator:
			opt, ok, cmd := p.operators.Update(msg)
			if ok {
				return p, tea.Batch(cmd, p.setOperator(opt.Value))
			}
			return p, cmd
		case FieldValue:
			if p.value != nil {
				return p, p.value.Update(msg)
			}
		}
	}
	return p, nil
}

func (p *FilterPill) handleMouse(msg tea.MouseMsg) (*FilterPill, tea.Cmd) {
	if msg.Button != tea.MouseButtonLeft || msg.Action != tea.MouseActionPress {
		return p, nil
	}
	if zone.Get(ZoneDeletePrefix + p.filter.ID).InBounds(msg) {
		return p, p.RequestDelete()
	}
	if opt, ok := p.columns.HandleMouseClick(msg); ok {
		return p, p.setColumn(opt.Value)
	}
	if opt, ok := p.operators.HandleMouseClick(msg); ok {
		return p, p.setOperator(opt.Value)
	}
	switch {
	case p.columns.InBounds(msg):
		return p, p.Focus(FieldColumn)
	case p.filter.Column != nil && p.operators.InBounds(msg):
		return p, p.Focus(FieldOperator)
	case p.value != nil && zone.Get(p.valueZone()).InBounds(msg):
		return p, p.Focus(FieldValue)
	}
	return p, nil
}

// setColumn applies a column pick and moves focus to the operator
func (p *FilterPill) setColumn(c models.Column) tea.Cmd {
	wasEmpty := filter.IsEmpty(p.filter)
	p.filter = filter.SelectColumn(p.filter, c)
	if wasEmpty {
		p.operators.SetDefault(p.filter.Operator)
	}
	cmds := []tea.Cmd{p.buildValueInput(), p.Focus(FieldOperator), p.emit()}
	return tea.Batch(cmds...)
}

// setOperator applies an operator pick and moves focus to the value
func (p *FilterPill) setOperator(op models.FilterOperator) tea.Cmd {
	p.filter = filter.SelectOperator(p.filter, op)
	return tea.Batch(p.Focus(FieldValue), p.emit())
}

// setValue applies a committed value. Re-committing the current value is a no-op.
func (p *FilterPill) setValue(v models.Value) tea.Cmd {
	if p.filter.Value != nil && p.filter.Value.Equal(v) {
		return nil
	}
	p.filter = filter.SetValue(p.filter, v)
	return p.emit()
}

// emit reports the filter upward once it is complete
func (p *FilterPill) emit() tea.Cmd {
	if !filter.IsValid(p.filter) {
		return nil
	}
	f := p.filter.Clone()
	return func() tea.Msg {
		return FilterUpdateMsg{Filter: f}
	}
}

func (p *FilterPill) valueZone() string {
	return ZonePillPrefix + p.filter.ID + "-value"
}

// View renders the pill
func (p *FilterPill) View() string {
	var borderColor lipgloss.Color
	switch filter.StateOf(p.filter) {
	case filter.StateEmpty:
		borderColor = p.Theme.PillEmpty
	case filter.StateIncomplete:
		borderColor = p.Theme.PillIncomplete
	case filter.StateComplete:
		borderColor = p.Theme.PillComplete
	}
	if p.focused {
		borderColor = p.Theme.BorderFocused
	}

	parts := []string{}
	if p.CanDelete() {
		closeStyle := lipgloss.NewStyle().Foreground(p.Theme.Error).Bold(true).Padding(0, 1)
		parts = append(parts, zone.Mark(ZoneDeletePrefix+p.filter.ID, closeStyle.Render("x")))
	}
	parts = append(parts, p.columns.View())
	if p.filter.Column != nil {
		parts = append(parts, " ", p.operators.View())
		if p.value != nil {
			parts = append(parts, " ", zone.Mark(p.valueZone(), p.value.View()))
		}
	}

	content := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	if p.err != nil {
		errStyle := lipgloss.NewStyle().Foreground(p.Theme.Error)
		msg := runewidth.Truncate(fmt.Sprintf("Error: %v", p.err), 60, "...")
		content = lipgloss.JoinVertical(lipgloss.Left, content, errStyle.Render(msg))
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1)

	return zone.Mark(ZonePillPrefix+p.filter.ID, style.Render(content))
}
