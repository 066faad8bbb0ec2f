package coerce

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultDebounce is the delay between the last keystroke and a commit
const DefaultDebounce = 300 * time.Millisecond

var lastDebouncerID int64

func nextDebouncerID() int {
	return int(atomic.AddInt64(&lastDebouncerID, 1))
}

// DebounceMsg is delivered when a debounce window ends
type DebounceMsg struct {
	ID  int
	Tag int
}

// Debouncer is a per-field resettable timer. Every Touch starts a new window
// and makes earlier ticks stale; Cancel makes every pending tick stale.
type Debouncer struct {
	id       int
	tag      int
	delay    time.Duration
	pending  bool
	canceled bool
}

// NewDebouncer creates a debouncer with the given delay
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{id: nextDebouncerID(), delay: delay}
}

// ID identifies the debouncer in DebounceMsg
func (d *Debouncer) ID() int {
	return d.id
}

// Delay returns the debounce window
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Touch restarts the window and returns the command that ends it
func (d *Debouncer) Touch() tea.Cmd {
	if d.canceled {
		return nil
	}
	d.tag++
	d.pending = true
	id, tag := d.id, d.tag
	return tea.Tick(d.delay, func(time.Time) tea.Msg {
		return DebounceMsg{ID: id, Tag: tag}
	})
}

// Elapsed reports whether msg ends the current window. A matching message
// clears the pending state, so it is reported only once.
func (d *Debouncer) Elapsed(msg DebounceMsg) bool {
	if d.canceled || !d.pending || msg.ID != d.id || msg.Tag != d.tag {
		return false
	}
	d.pending = false
	return true
}

// Pending reports whether a window is open
func (d *Debouncer) Pending() bool {
	return d.pending && !d.canceled
}

// Cancel stops the debouncer for good
func (d *Debouncer) Cancel() {
	d.canceled = true
	d.pending = false
}
