package help

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rebeliceyang/lazyfilter/internal/ui/theme"
)

// KeyBinding represents a keyboard shortcut
type KeyBinding struct {
	Key         string
	Description string
}

// Section is a titled group of key bindings
type Section struct {
	Title string
	Keys  []KeyBinding
}

// GetGlobalKeys returns global key bindings
func GetGlobalKeys() []KeyBinding {
	return []KeyBinding{
		{"F1", "Toggle help"},
		{"Ctrl+C", "Quit application"},
		{"Esc/Enter", "Dismiss error"},
		{"Ctrl+Y", "Copy result JSON"},
		{"PgUp/PgDn", "Scroll result"},
	}
}

// GetFilterKeys returns key bindings that move between filters
func GetFilterKeys() []KeyBinding {
	return []KeyBinding{
		{"Tab", "Next field or filter"},
		{"Shift+Tab", "Previous field or filter"},
		{"Ctrl+N", "Next filter"},
		{"Ctrl+P", "Previous filter"},
		{"Ctrl+D/Ctrl+X", "Delete filter"},
		{"Click x", "Delete filter"},
	}
}

// GetFieldKeys returns key bindings inside a column or operator picker
func GetFieldKeys() []KeyBinding {
	return []KeyBinding{
		{"Type", "Narrow the options"},
		{"↑/↓", "Move highlight"},
		{"Enter", "Pick highlighted option"},
		{"Esc", "Close options"},
	}
}

// Sections returns all help sections in display order
func Sections() []Section {
	return []Section{
		{"Global", GetGlobalKeys()},
		{"Filters", GetFilterKeys()},
		{"Column & Operator", GetFieldKeys()},
	}
}

// Render creates the help view
func Render(width, height int, th theme.Theme) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.Info).
		Padding(1, 0)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.BorderFocused).
		Padding(0, 0, 0, 2)

	keyStyle := lipgloss.NewStyle().
		Foreground(th.Warning).
		Width(20)

	descStyle := lipgloss.NewStyle().
		Foreground(th.Foreground)

	var b strings.Builder

	b.WriteString(titleStyle.Render("lazyfilter - Keyboard Shortcuts"))
	b.WriteString("\n\n")

	for _, section := range Sections() {
		b.WriteString(sectionStyle.Render(section.Title))
		b.WriteString("\n")
		for _, kb := range section.Keys {
			b.WriteString("  ")
			b.WriteString(keyStyle.Render(kb.Key))
			b.WriteString(descStyle.Render(kb.Description))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(lipgloss.NewStyle().Faint(true).Render("Press F1 or Esc to close help"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.BorderFocused).
		Padding(1, 2).
		Width(width - 4).
		Height(height - 4)

	return boxStyle.Render(b.String())
}
