package components

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/rebeliceyang/lazyfilter/internal/models"
)

func init() {
	// Initialize bubblezone for tests that call View() methods
	zone.NewGlobal()
}

var testColumns = []models.Column{
	{Key: "name", Type: models.ColumnString},
	{Key: "accountsOwned", Type: models.ColumnNumber},
	{Key: "dataAdded", Type: models.ColumnDate},
}

func counterIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

// drain runs cmd and returns the messages it produces. Commands that do not
// finish quickly, such as cursor blinks, are dropped.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()

	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, drain(c)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

// pump feeds the messages of cmd back into the builder until it settles
func pump(fb *FilterBuilder, cmd tea.Cmd) {
	queue := drain(cmd)
	for i := 0; len(queue) > 0 && i < 100; i++ {
		msg := queue[0]
		queue = queue[1:]
		var next tea.Cmd
		fb, next = fb.Update(msg)
		queue = append(queue, drain(next)...)
	}
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enterKey    = tea.KeyMsg{Type: tea.KeyEnter}
	tabKey      = tea.KeyMsg{Type: tea.KeyTab}
	shiftTabKey = tea.KeyMsg{Type: tea.KeyShiftTab}
	backspace   = tea.KeyMsg{Type: tea.KeyBackspace}
	ctrlD       = tea.KeyMsg{Type: tea.KeyCtrlD}
)

// send delivers a key and everything it causes
func send(fb *FilterBuilder, msg tea.Msg) {
	_, cmd := fb.Update(msg)
	pump(fb, cmd)
}
