package components

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeliceyang/lazyfilter/internal/models"
	"github.com/rebeliceyang/lazyfilter/internal/ui/theme"
)

func TestFormatResult(t *testing.T) {
	col := models.Column{Key: "accountsOwned", Type: models.ColumnNumber}
	v := models.NumberValue(2)
	result := models.ViewResult{Filters: []models.Filter{
		{ID: "f1", Column: &col, Operator: models.OpGreaterThan, Value: &v},
	}}

	out, err := FormatResult(result)

	require.NoError(t, err)
	assert.Contains(t, out, `"operator": "GREATER_THAN"`)
	assert.Contains(t, out, `"value": 2`)
	assert.True(t, strings.HasPrefix(out, "{\n  \"filters\""))
}

func TestFormatResult_Empty(t *testing.T) {
	out, err := FormatResult(models.ViewResult{Filters: []models.Filter{}})

	require.NoError(t, err)
	assert.Equal(t, "{\n  \"filters\": []\n}", out)
}

func TestResultPane_Scroll(t *testing.T) {
	p := NewResultPane(theme.DefaultTheme())
	p.Height = 5

	filters := make([]models.Filter, 5)
	for i := range filters {
		col := models.Column{Key: "name", Type: models.ColumnString}
		v := models.StringValue("x")
		filters[i] = models.Filter{ID: string(rune('a' + i)), Column: &col, Operator: models.OpEquals, Value: &v}
	}
	require.NoError(t, p.SetResult(models.ViewResult{Filters: filters}))

	p.ScrollUp()
	assert.Equal(t, 0, p.scrollY)

	for i := 0; i < 1000; i++ {
		p.ScrollDown()
	}
	total := strings.Count(p.Content, "\n") + 1
	assert.Equal(t, total-p.visibleLines(), p.scrollY)

	assert.NotEmpty(t, p.View())
}
