package app

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeliceyang/lazyfilter/internal/config"
	"github.com/rebeliceyang/lazyfilter/internal/filter"
	"github.com/rebeliceyang/lazyfilter/internal/models"
	"github.com/rebeliceyang/lazyfilter/internal/ui/components"
)

func init() {
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

func newTestApp(t *testing.T, seed models.ViewResult) *App {
	t.Helper()
	cfg := config.GetDefaults()
	cfg.Filter.TableName = "users"
	return New(cfg, testColumns, seed,
		components.WithDebounce(time.Millisecond),
		components.WithMachine(filter.NewMachine(filter.WithIDGenerator(counterIDs()))),
	)
}

func TestApp_ResultChangedUpdatesPane(t *testing.T) {
	a := newTestApp(t, models.ViewResult{})
	col := testColumns[0]
	v := models.StringValue("Alice")
	result := models.ViewResult{Filters: []models.Filter{
		{ID: "x", Column: &col, Operator: models.OpEquals, Value: &v},
	}}

	a.Update(components.ResultChangedMsg{Result: result})

	assert.Equal(t, result, a.Result())
	assert.Contains(t, a.resultPane.Content, `"Alice"`)
}

func TestApp_HelpToggle(t *testing.T) {
	a := newTestApp(t, models.ViewResult{})

	a.Update(tea.KeyMsg{Type: tea.KeyF1})
	assert.Equal(t, models.HelpMode, a.state.ViewMode)
	assert.Contains(t, a.View(), "Keyboard Shortcuts")

	// keys do not reach the builder while help is shown
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("name")})
	assert.Nil(t, cmd)

	a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, models.NormalMode, a.state.ViewMode)
}

func TestApp_ErrorOverlay(t *testing.T) {
	a := newTestApp(t, models.ViewResult{})

	a.Update(ErrorMsg{Title: "Boom", Message: "something broke"})
	assert.True(t, a.showError)
	assert.Contains(t, a.View(), "something broke")

	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.Nil(t, cmd)
	assert.True(t, a.showError)

	a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, a.showError)
}

func TestApp_Quit(t *testing.T) {
	a := newTestApp(t, models.ViewResult{})

	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestApp_SeedShownAtStart(t *testing.T) {
	col := testColumns[1]
	v := models.NumberValue(3)
	seed := models.ViewResult{Filters: []models.Filter{
		{ID: "s1", Column: &col, Operator: models.OpGreaterThan, Value: &v},
	}}

	a := newTestApp(t, seed)

	require.Len(t, a.Result().Filters, 1)
	assert.Equal(t, "s1", a.Result().Filters[0].ID)
	assert.Contains(t, a.resultPane.Content, `"GREATER_THAN"`)
	assert.Contains(t, a.builder.PreviewSQL(), `"accountsOwned" > $1`)
}

func TestApp_ViewLayout(t *testing.T) {
	a := newTestApp(t, models.ViewResult{})
	a.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	view := a.View()

	assert.Contains(t, view, "lazyfilter")
	assert.Contains(t, view, "users")
	assert.Contains(t, view, "Filter:")
	assert.Contains(t, view, "Result")
}

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	return writeSeedFile(t, "seed.json", content)
}

func writeSeedFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadSeed(t *testing.T) {
	path := writeSeed(t, `{"filters":[
		{"id":"a","column":{"key":"name","type":"STRING"},"operator":"EQUALS","value":"Alice"},
		{"id":"b","column":{"key":"dataAdded","type":"DATE"},"operator":"LESS_THAN","value":"2024-01-15"}
	]}`)

	seed, err := LoadSeed(path, testColumns)

	require.NoError(t, err)
	require.Len(t, seed.Filters, 2)
	assert.Equal(t, "Alice", seed.Filters[0].Value.Str())
	assert.Equal(t, models.DateValue(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)), *seed.Filters[1].Value)
}

func TestLoadSeed_YAML(t *testing.T) {
	path := writeSeedFile(t, "seed.yaml", `
filters:
  - id: a
    column: {key: accountsOwned, type: NUMBER}
    operator: GREATER_THAN
    value: 2
  - id: b
    column: {key: dataAdded, type: DATE}
    operator: EQUALS
    value: 2024-01-15
`)

	seed, err := LoadSeed(path, testColumns)

	require.NoError(t, err)
	require.Len(t, seed.Filters, 2)
	assert.Equal(t, float64(2), seed.Filters[0].Value.Num())
	assert.Equal(t, models.OpGreaterThan, seed.Filters[0].Operator)
	assert.Equal(t, "2024-01-15", seed.Filters[1].Value.String())
}

func TestLoadSeed_MalformedYAML(t *testing.T) {
	_, err := LoadSeed(writeSeedFile(t, "seed.yml", "filters: [\n"), testColumns)
	assert.Error(t, err)
}

func TestLoadSeed_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed", `{"filters":[`},
		{"unknown column", `{"filters":[{"id":"a","column":{"key":"age","type":"NUMBER"},"operator":"EQUALS","value":1}]}`},
		{"type mismatch", `{"filters":[{"id":"a","column":{"key":"name","type":"NUMBER"},"operator":"EQUALS","value":1}]}`},
		{"wrong value type", `{"filters":[{"id":"a","column":{"key":"name","type":"STRING"},"operator":"EQUALS","value":1}]}`},
		{"missing id", `{"filters":[{"column":{"key":"name","type":"STRING"},"operator":"EQUALS","value":"x"}]}`},
		{"duplicate id", `{"filters":[{"id":"a"},{"id":"a"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSeed(writeSeed(t, tt.content), testColumns)
			assert.Error(t, err)
		})
	}
}

func TestLoadSeed_MissingFile(t *testing.T) {
	_, err := LoadSeed(filepath.Join(t.TempDir(), "missing.json"), testColumns)
	assert.Error(t, err)
}
