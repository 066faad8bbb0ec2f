package coerce

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rebeliceyang/lazyfilter/internal/models"
)

// Draft is the in-progress value of one filter row. Keystrokes update the
// draft at once; only the value present when the debounce window ends is
// offered for commit.
type Draft struct {
	columnType models.ColumnType
	strategy   Strategy
	debounce   *Debouncer

	text      string
	value     models.Value
	ok        bool
	committed *models.Value

	// the row holds a value of another column type
	stale bool
}

// NewDraft creates a draft for a column type, starting from the committed value
func NewDraft(t models.ColumnType, committed *models.Value, delay time.Duration) (*Draft, error) {
	s, err := For(t)
	if err != nil {
		return nil, err
	}
	d := &Draft{
		columnType: t,
		strategy:   s,
		debounce:   NewDebouncer(delay),
	}
	if committed != nil {
		if committed.Kind() == t {
			c := *committed
			d.committed = &c
		} else {
			d.stale = true
		}
	}
	d.text = s.Format(d.committed)
	d.value, _, d.ok = s.Parse(d.text)
	return d, nil
}

// Start opens the first debounce window when the field is mounted, so the
// value shown initially is committed like any typed one. For NUMBER input
// this commits 0 into a fresh row. A row whose value belongs to another
// column type keeps it until the user types.
func (d *Draft) Start() tea.Cmd {
	if d.stale {
		return nil
	}
	return d.debounce.Touch()
}

// ColumnType returns the type the draft coerces for
func (d *Draft) ColumnType() models.ColumnType {
	return d.columnType
}

// Text returns the text to display
func (d *Draft) Text() string {
	return d.text
}

// Committed returns the last committed value
func (d *Draft) Committed() *models.Value {
	return d.committed
}

// DebouncerID identifies the draft's timer in DebounceMsg
func (d *Draft) DebouncerID() int {
	return d.debounce.ID()
}

// SetText records a keystroke. It returns the text to show, which may differ
// from raw for NUMBER input, and the command that ends the debounce window.
func (d *Draft) SetText(raw string) (string, tea.Cmd) {
	v, display, ok := d.strategy.Parse(raw)
	d.text = display
	d.value, d.ok = v, ok
	return d.text, d.debounce.Touch()
}

// HandleDebounce consumes a debounce tick. It returns the value to commit
// and true only when msg closes the live window and the value is committable.
func (d *Draft) HandleDebounce(msg DebounceMsg) (models.Value, bool) {
	if !d.debounce.Elapsed(msg) {
		return models.Value{}, false
	}
	if !d.strategy.Commit(d.value, d.ok) {
		return models.Value{}, false
	}
	v := d.value
	d.committed = &v
	return v, true
}

// Blur is called when the field loses focus. DATE input falls back to the
// canonical rendering of the committed value, dropping an invalid edit.
// A valid date still waiting for its window is kept.
func (d *Draft) Blur() string {
	if d.columnType == models.ColumnDate && !(d.ok && d.debounce.Pending()) {
		d.text = d.strategy.Format(d.committed)
	}
	return d.text
}

// Pending reports whether a keystroke is still waiting for its window to end
func (d *Draft) Pending() bool {
	return d.debounce.Pending()
}

// Close cancels the timer so a late tick cannot commit into a removed row
func (d *Draft) Close() {
	d.debounce.Cancel()
}
