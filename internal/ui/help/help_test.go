package help

import (
	"testing"

	"github.com/rebeliceyang/lazyfilter/internal/ui/theme"
	"github.com/stretchr/testify/assert"
)

func TestSections(t *testing.T) {
	sections := Sections()

	assert.Len(t, sections, 3)
	for _, s := range sections {
		assert.NotEmpty(t, s.Title)
		assert.NotEmpty(t, s.Keys)
	}
}

func TestRender(t *testing.T) {
	out := Render(80, 40, theme.DefaultTheme())

	assert.Contains(t, out, "Keyboard Shortcuts")
	assert.Contains(t, out, "Delete filter")
	assert.Contains(t, out, "Ctrl+Y")
}
