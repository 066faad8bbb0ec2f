package components

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/rebeliceyang/lazyfilter/internal/models"
	"github.com/rebeliceyang/lazyfilter/internal/ui/theme"
)

// ResultPane shows the last emitted result as pretty-printed JSON
type ResultPane struct {
	Width  int
	Height int
	Theme  theme.Theme

	Content string // pretty JSON of the last result
	scrollY int
	lines   []string // highlighted lines, rebuilt on demand

	chromaStyle     *chroma.Style
	chromaFormatter chroma.Formatter
}

// NewResultPane creates a new result pane
func NewResultPane(th theme.Theme) *ResultPane {
	p := &ResultPane{
		Width:  80,
		Height: 12,
		Theme:  th,
	}

	p.chromaStyle = styles.Get(th.ChromaStyle)
	if p.chromaStyle == nil {
		p.chromaStyle = styles.Fallback
	}
	p.chromaFormatter = formatters.Get("terminal256")
	if p.chromaFormatter == nil {
		p.chromaFormatter = formatters.Fallback
	}
	return p
}

// FormatResult renders a result as indented JSON
func FormatResult(result models.ViewResult) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// SetResult replaces the displayed result
func (p *ResultPane) SetResult(result models.ViewResult) error {
	content, err := FormatResult(result)
	if err != nil {
		return err
	}
	if content == p.Content {
		return nil
	}
	p.Content = content
	p.lines = nil
	p.clampScroll()
	return nil
}

// CopyContent copies the JSON to the clipboard
func (p *ResultPane) CopyContent() error {
	return clipboard.WriteAll(p.Content)
}

// ScrollUp scrolls content up
func (p *ResultPane) ScrollUp() {
	if p.scrollY > 0 {
		p.scrollY--
	}
}

// ScrollDown scrolls content down
func (p *ResultPane) ScrollDown() {
	p.scrollY++
	p.clampScroll()
}

func (p *ResultPane) visibleLines() int {
	n := p.Height - 3 // border and title
	if n < 1 {
		n = 1
	}
	return n
}

func (p *ResultPane) clampScroll() {
	total := strings.Count(p.Content, "\n") + 1
	maxScroll := total - p.visibleLines()
	if maxScroll < 0 {
		maxScroll = 0
	}
	if p.scrollY > maxScroll {
		p.scrollY = maxScroll
	}
}

// highlight tokenises the JSON once and splits it into terminal lines
func (p *ResultPane) highlight() []string {
	lexer := lexers.Get("json")
	if lexer == nil {
		return strings.Split(p.Content, "\n")
	}
	lexer = chroma.Coalesce(lexer)

	var lines []string
	for _, line := range strings.Split(p.Content, "\n") {
		iterator, err := lexer.Tokenise(nil, line)
		if err != nil {
			lines = append(lines, line)
			continue
		}
		var buf bytes.Buffer
		if err := p.chromaFormatter.Format(&buf, p.chromaStyle, iterator); err != nil {
			lines = append(lines, line)
			continue
		}
		lines = append(lines, strings.TrimSuffix(buf.String(), "\n"))
	}
	return lines
}

// View renders the result pane
func (p *ResultPane) View() string {
	if p.lines == nil {
		p.lines = p.highlight()
	}
	raw := strings.Split(p.Content, "\n")

	contentWidth := p.Width - 4
	if contentWidth < 10 {
		contentWidth = 10
	}

	titleStyle := lipgloss.NewStyle().Foreground(p.Theme.Info).Bold(true)
	parts := []string{titleStyle.Render("Result")}

	end := p.scrollY + p.visibleLines()
	if end > len(p.lines) {
		end = len(p.lines)
	}
	for i := p.scrollY; i < end; i++ {
		line := p.lines[i]
		// highlighted lines carry escape codes, so measure the raw text
		if i < len(raw) && runewidth.StringWidth(raw[i]) > contentWidth {
			line = runewidth.Truncate(raw[i], contentWidth, "…")
		}
		parts = append(parts, line)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Theme.Border).
		Padding(0, 1).
		Width(p.Width - 2).
		Height(p.Height - 2).
		Render(strings.Join(parts, "\n"))
}
