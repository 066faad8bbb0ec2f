package components

import (
	"fmt"
	"log"
	"strings"
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

// ResultChangedMsg is sent after every state transition, including the first
type ResultChangedMsg struct {
	Result models.ViewResult
}

// BuilderOption configures a FilterBuilder
type BuilderOption func(*FilterBuilder)

// WithSeed starts the builder from externally supplied filters
func WithSeed(seed models.ViewResult) BuilderOption {
	return func(fb *FilterBuilder) {
		fb.seed = seed
	}
}

// WithOnChange registers a callback invoked with every emitted result
func WithOnChange(fn func(models.ViewResult)) BuilderOption {
	return func(fb *FilterBuilder) {
		fb.onChange = fn
	}
}

// WithDebounce sets the value commit delay
func WithDebounce(d time.Duration) BuilderOption {
	return func(fb *FilterBuilder) {
		fb.debounce = d
	}
}

// WithTable sets the table named in the SQL preview. Empty hides the preview.
func WithTable(table string) BuilderOption {
	return func(fb *FilterBuilder) {
		fb.table = table
	}
}

// WithMaxOptions limits the dropdown length of the column and operator pickers
func WithMaxOptions(n int) BuilderOption {
	return func(fb *FilterBuilder) {
		fb.maxOptions = n
	}
}

// WithMachine replaces the default state machine
func WithMachine(m *filter.Machine) BuilderOption {
	return func(fb *FilterBuilder) {
		fb.machine = m
	}
}

// FilterBuilder is the list of filter pills. It owns the filter list state
// and is the only place that changes it.
type FilterBuilder struct {
	Width  int
	Height int
	Theme  theme.Theme

	machine  *filter.Machine
	builder  *filter.Builder
	state    filter.State
	seed     models.ViewResult
	columns  []models.Column
	pills    map[string]*FilterPill
	current  int
	debounce time.Duration
	table    string
	onChange func(models.ViewResult)

	maxOptions int

	previewSQL string
}

// NewFilterBuilder creates a filter builder over a column schema
func NewFilterBuilder(th theme.Theme, columns []models.Column, opts ...BuilderOption) *FilterBuilder {
	fb := &FilterBuilder{
		Width:    80,
		Height:   20,
		Theme:    th,
		builder:  filter.NewBuilder(),
		columns:  columns,
		pills:    make(map[string]*FilterPill),
		debounce: coerce.DefaultDebounce,
	}
	for _, opt := range opts {
		opt(fb)
	}
	if fb.machine == nil {
		fb.machine = filter.NewMachine()
	}
	fb.state = fb.machine.Init(fb.seed)
	fb.reconcile("")
	fb.updatePreview()
	return fb
}

// Init mounts the pills and emits the initial result
func (fb *FilterBuilder) Init() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(fb.state.Filters)+2)
	for _, f := range fb.state.Filters {
		cmds = append(cmds, fb.pills[f.ID].Init())
	}
	cmds = append(cmds, fb.focusCurrent(FieldColumn), fb.emit())
	return tea.Batch(cmds...)
}

// State returns the current filter list, including the empty filter
func (fb *FilterBuilder) State() filter.State {
	return fb.state
}

// Result returns the current emitted result
func (fb *FilterBuilder) Result() models.ViewResult {
	return filter.Project(fb.state)
}

// PreviewSQL returns the SQL rendering of the current result
func (fb *FilterBuilder) PreviewSQL() string {
	return fb.previewSQL
}

// Pill returns the pill editing the filter with id
func (fb *FilterBuilder) Pill(id string) (*FilterPill, bool) {
	p, ok := fb.pills[id]
	return p, ok
}

// CurrentPill returns the focused pill
func (fb *FilterBuilder) CurrentPill() *FilterPill {
	if fb.current < 0 || fb.current >= len(fb.state.Filters) {
		return nil
	}
	return fb.pills[fb.state.Filters[fb.current].ID]
}

// Dispatch applies an action and emits the new result
func (fb *FilterBuilder) Dispatch(action filter.Action) tea.Cmd {
	var focusedID string
	if p := fb.CurrentPill(); p != nil {
		focusedID = p.ID()
	}

	fb.state = fb.machine.Apply(fb.state, action)
	if err := filter.CheckInvariants(fb.state); err != nil {
		log.Printf("filter list after %s: %v", action.Type, err)
	}
	mounted := fb.reconcile(focusedID)
	fb.updatePreview()
	return tea.Batch(mounted, fb.emit())
}

// reconcile mounts pills for new filters and closes pills whose filter is
// gone. Focus stays on focusedID when it survived.
func (fb *FilterBuilder) reconcile(focusedID string) tea.Cmd {
	live := make(map[string]struct{}, len(fb.state.Filters))
	var cmds []tea.Cmd
	for _, f := range fb.state.Filters {
		live[f.ID] = struct{}{}
		if _, ok := fb.pills[f.ID]; !ok {
			p := NewFilterPill(f, fb.columns, fb.Theme, fb.debounce)
			if fb.maxOptions > 0 {
				p.columns.MaxOptions = fb.maxOptions
				p.operators.MaxOptions = fb.maxOptions
			}
			fb.pills[f.ID] = p
			cmds = append(cmds, p.Init())
		}
	}
	for id, p := range fb.pills {
		if _, ok := live[id]; !ok {
			p.Close()
			delete(fb.pills, id)
		}
	}

	if focusedID != "" {
		for i, f := range fb.state.Filters {
			if f.ID == focusedID {
				fb.current = i
				return tea.Batch(cmds...)
			}
		}
		// the focused filter was removed
		if fb.current >= len(fb.state.Filters) {
			fb.current = len(fb.state.Filters) - 1
		}
		cmds = append(cmds, fb.focusCurrent(FieldColumn))
	}
	return tea.Batch(cmds...)
}

// emit publishes the projected result to the callback and as a message
func (fb *FilterBuilder) emit() tea.Cmd {
	result := filter.Project(fb.state)
	if fb.onChange != nil {
		fb.onChange(result)
	}
	return func() tea.Msg {
		return ResultChangedMsg{Result: result}
	}
}

func (fb *FilterBuilder) updatePreview() {
	if fb.table == "" {
		fb.previewSQL = ""
		return
	}
	stmt, err := fb.builder.BuildSelect(fb.table, filter.Project(fb.state))
	if err != nil {
		fb.previewSQL = fmt.Sprintf("Error: %s", err.Error())
		return
	}
	fb.previewSQL = stmt
}

func (fb *FilterBuilder) focusCurrent(field PillField) tea.Cmd {
	for i, f := range fb.state.Filters {
		if p := fb.pills[f.ID]; p != nil && i != fb.current {
			p.Blur()
		}
	}
	if p := fb.CurrentPill(); p != nil {
		return p.Focus(field)
	}
	return nil
}

// movePill moves focus to the pill delta positions away
func (fb *FilterBuilder) movePill(delta int, field PillField) tea.Cmd {
	next := fb.current + delta
	if next < 0 || next >= len(fb.state.Filters) {
		return nil
	}
	if p := fb.CurrentPill(); p != nil {
		p.Blur()
	}
	fb.current = next
	return fb.focusCurrent(field)
}

// Update handles messages
func (fb *FilterBuilder) Update(msg tea.Msg) (*FilterBuilder, tea.Cmd) {
	switch msg := msg.(type) {
	case FilterUpdateMsg:
		return fb, fb.Dispatch(filter.Update(msg.Filter))

	case FilterDeleteMsg:
		return fb, fb.Dispatch(filter.Delete(msg.Filter))

	case coerce.DebounceMsg:
		// ticks of removed pills have no owner and are dropped
		for _, p := range fb.pills {
			if p.Owns(msg) {
				_, cmd := p.Update(msg)
				return fb, cmd
			}
		}
		return fb, nil

	case tea.MouseMsg:
		return fb.handleMouse(msg)

	case tea.KeyMsg:
		return fb.handleKey(msg)
	}
	return fb, nil
}

func (fb *FilterBuilder) handleKey(msg tea.KeyMsg) (*FilterBuilder, tea.Cmd) {
	p := fb.CurrentPill()
	if p == nil {
		return fb, nil
	}

	switch msg.String() {
	case "tab":
		if moved, cmd := p.NextField(); moved {
			return fb, cmd
		}
		return fb, fb.movePill(1, FieldColumn)
	case "shift+tab":
		if moved, cmd := p.PrevField(); moved {
			return fb, cmd
		}
		if fb.current == 0 {
			return fb, nil
		}
		prev := fb.pills[fb.state.Filters[fb.current-1].ID]
		return fb, fb.movePill(-1, prev.lastField())
	case "ctrl+n":
		return fb, fb.movePill(1, FieldColumn)
	case "ctrl+p":
		return fb, fb.movePill(-1, FieldColumn)
	case "ctrl+d", "ctrl+x":
		return fb, p.RequestDelete()
	}

	_, cmd := p.Update(msg)
	return fb, cmd
}

func (fb *FilterBuilder) handleMouse(msg tea.MouseMsg) (*FilterBuilder, tea.Cmd) {
	if msg.Button != tea.MouseButtonLeft || msg.Action != tea.MouseActionPress {
		return fb, nil
	}
	for i, f := range fb.state.Filters {
		if !zone.Get(ZonePillPrefix + f.ID).InBounds(msg) {
			continue
		}
		p := fb.pills[f.ID]
		if i != fb.current {
			if cur := fb.CurrentPill(); cur != nil {
				cur.Blur()
			}
			fb.current = i
		}
		_, cmd := p.Update(msg)
		return fb, cmd
	}
	return fb, nil
}

// View renders the filter builder
func (fb *FilterBuilder) View() string {
	var sections []string

	titleStyle := lipgloss.NewStyle().
		Foreground(fb.Theme.Foreground).
		Background(fb.Theme.Info).
		Padding(0, 1).
		Bold(true)
	sections = append(sections, titleStyle.Render("Filter:"))

	pills := make([]string, 0, len(fb.state.Filters))
	for _, f := range fb.state.Filters {
		pills = append(pills, fb.pills[f.ID].View())
	}
	sections = append(sections, fb.wrapPills(pills))

	instructionStyle := lipgloss.NewStyle().
		Foreground(fb.Theme.Metadata).
		Padding(0, 1)
	sections = append(sections, instructionStyle.Render(
		"Tab/Shift+Tab: next/prev field │ Enter: pick │ Ctrl+N/P: next/prev filter │ Ctrl+D: delete"))

	if fb.previewSQL != "" {
		previewStyle := lipgloss.NewStyle().
			Foreground(fb.Theme.Metadata).
			Padding(0, 1).
			Italic(true)
		if strings.HasPrefix(fb.previewSQL, "Error:") {
			previewStyle = previewStyle.Foreground(fb.Theme.Error)
		}
		preview := fb.previewSQL
		if fb.Width > 8 && runewidth.StringWidth(preview) > fb.Width-4 {
			preview = runewidth.Truncate(preview, fb.Width-4, "…")
		}
		sections = append(sections, previewStyle.Render(preview))
	}

	return lipgloss.NewStyle().
		Width(fb.Width).
		MaxHeight(fb.Height).
		Render(strings.Join(sections, "\n"))
}

// wrapPills lays pills out left to right, starting a new line when the width runs out
func (fb *FilterBuilder) wrapPills(pills []string) string {
	var lines []string
	var row []string
	rowWidth := 0
	for _, pill := range pills {
		w := lipgloss.Width(pill)
		if len(row) > 0 && fb.Width > 0 && rowWidth+w > fb.Width {
			lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row, rowWidth = nil, 0
		}
		row = append(row, pill)
		rowWidth += w
	}
	if len(row) > 0 {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
