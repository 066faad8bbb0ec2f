package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/rebeliceyang/lazyfilter/internal/ui/theme"
)

// DefaultMaxOptions limits how many options the dropdown shows
const DefaultMaxOptions = 15

// Option is one selectable entry of an Autocomplete
type Option[T comparable] struct {
	Key   string
	Label string
	Value T
}

// Autocomplete is a text input that narrows a list of options as the user
// types. Enter picks the highlighted option, which is the first match until
// the user moves the highlight.
type Autocomplete[T comparable] struct {
	Input      textinput.Model
	Theme      theme.Theme
	MaxOptions int

	zonePrefix string
	options    []Option[T]
	available  []Option[T]
	selected   *Option[T]
	active     bool
	cursor     int

	// set on focus: the next typed rune replaces the whole text
	replaceOnType bool
}

// NewAutocomplete creates an autocomplete over options
func NewAutocomplete[T comparable](zonePrefix string, options []Option[T], th theme.Theme) *Autocomplete[T] {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 128
	ti.Width = 18

	a := &Autocomplete[T]{
		Input:      ti,
		Theme:      th,
		MaxOptions: DefaultMaxOptions,
		zonePrefix: zonePrefix,
		options:    options,
	}
	a.refilter()
	return a
}

// SetDefault selects the option holding value without emitting a selection
func (a *Autocomplete[T]) SetDefault(value T) {
	for i := range a.options {
		if a.options[i].Value == value {
			opt := a.options[i]
			a.selected = &opt
			a.setText(opt.Label)
			return
		}
	}
}

// Selected returns the selected option
func (a *Autocomplete[T]) Selected() (Option[T], bool) {
	if a.selected == nil {
		return Option[T]{}, false
	}
	return *a.selected, true
}

// Available returns the options matching the current text
func (a *Autocomplete[T]) Available() []Option[T] {
	return a.available
}

// Active reports whether the dropdown is shown
func (a *Autocomplete[T]) Active() bool {
	return a.active
}

// Focus focuses the input. When it already holds text the dropdown opens
// with every option and the next typed character replaces the text.
func (a *Autocomplete[T]) Focus() tea.Cmd {
	if a.Input.Value() != "" {
		a.active = true
		a.replaceOnType = true
		a.Input.CursorEnd()
		a.showAll()
	}
	return a.Input.Focus()
}

// Blur hides the dropdown and resets the text to the selected label
func (a *Autocomplete[T]) Blur() {
	a.Input.Blur()
	a.active = false
	if a.selected != nil {
		a.setText(a.selected.Label)
	} else {
		a.setText("")
	}
}

// Focused reports whether the input has focus
func (a *Autocomplete[T]) Focused() bool {
	return a.Input.Focused()
}

// Update handles keyboard input. When an option gets picked it is returned
// with ok set.
func (a *Autocomplete[T]) Update(msg tea.Msg) (opt Option[T], ok bool, cmd tea.Cmd) {
	if key, isKey := msg.(tea.KeyMsg); isKey {
		replace := a.replaceOnType
		a.replaceOnType = false
		if replace && key.Type == tea.KeyRunes {
			a.Input.SetValue("")
		}
		switch key.String() {
		case "enter":
			if len(a.available) == 0 {
				return opt, false, nil
			}
			return a.choose(a.available[a.cursor]), true, nil
		case "up":
			if a.active && a.cursor > 0 {
				a.cursor--
			}
			return opt, false, nil
		case "down":
			if !a.active {
				a.active = true
				return opt, false, nil
			}
			if a.cursor < a.visibleCount()-1 {
				a.cursor++
			}
			return opt, false, nil
		case "esc":
			a.active = false
			return opt, false, nil
		}
	}

	before := a.Input.Value()
	a.Input, cmd = a.Input.Update(msg)
	if a.Input.Value() != before {
		a.refilter()
		text := a.Input.Value()
		if text != "" && (a.selected == nil || a.selected.Label != text) {
			a.active = true
		}
	}
	return opt, false, cmd
}

// HandleMouseClick picks the option under a left click
func (a *Autocomplete[T]) HandleMouseClick(msg tea.MouseMsg) (Option[T], bool) {
	if !a.active || msg.Button != tea.MouseButtonLeft || msg.Action != tea.MouseActionPress {
		return Option[T]{}, false
	}
	for i := 0; i < a.visibleCount(); i++ {
		if zone.Get(a.optionZone(i)).InBounds(msg) {
			return a.choose(a.available[i]), true
		}
	}
	return Option[T]{}, false
}

// InBounds reports whether msg falls on the input
func (a *Autocomplete[T]) InBounds(msg tea.MouseMsg) bool {
	return zone.Get(a.zonePrefix + "input").InBounds(msg)
}

func (a *Autocomplete[T]) choose(opt Option[T]) Option[T] {
	a.selected = &opt
	a.active = false
	a.setText(opt.Label)
	return opt
}

func (a *Autocomplete[T]) setText(s string) {
	a.Input.SetValue(s)
	a.Input.CursorEnd()
	a.refilter()
}

// refilter narrows the options with a case-insensitive substring match.
// Empty text shows every option.
func (a *Autocomplete[T]) refilter() {
	text := strings.ToLower(a.Input.Value())
	a.available = a.available[:0]
	for _, opt := range a.options {
		if text == "" || strings.Contains(strings.ToLower(opt.Label), text) {
			a.available = append(a.available, opt)
		}
	}
	a.cursor = 0
}

// showAll lists every option and highlights the selected one
func (a *Autocomplete[T]) showAll() {
	a.available = append(a.available[:0], a.options...)
	a.cursor = 0
	if a.selected == nil {
		return
	}
	for i := 0; i < a.visibleCount(); i++ {
		if a.available[i].Value == a.selected.Value {
			a.cursor = i
			return
		}
	}
}

func (a *Autocomplete[T]) visibleCount() int {
	n := len(a.available)
	if a.MaxOptions > 0 && n > a.MaxOptions {
		n = a.MaxOptions
	}
	return n
}

func (a *Autocomplete[T]) optionZone(i int) string {
	return fmt.Sprintf("%sopt-%d", a.zonePrefix, i)
}

// View renders the input and, when active, the dropdown
func (a *Autocomplete[T]) View() string {
	input := zone.Mark(a.zonePrefix+"input", a.Input.View())
	if !a.active {
		return input
	}

	lines := []string{input}
	if len(a.available) == 0 {
		lines = append(lines, lipgloss.NewStyle().
			Foreground(a.Theme.Metadata).
			Italic(true).
			Render("no matches"))
		return strings.Join(lines, "\n")
	}

	for i := 0; i < a.visibleCount(); i++ {
		style := lipgloss.NewStyle().Padding(0, 1)
		if i == a.cursor {
			style = style.Background(a.Theme.Selection).Foreground(a.Theme.Foreground)
		}
		lines = append(lines, zone.Mark(a.optionZone(i), style.Render(a.available[i].Label)))
	}
	return strings.Join(lines, "\n")
}
