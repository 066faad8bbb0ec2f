package filter

import (
	"fmt"
	"strings"

	"github.com/rebeliceyang/lazyfilter/internal/models"
)

// Builder generates SQL WHERE clauses from an emitted result.
// The output is a preview only and is never executed.
type Builder struct{}

// NewBuilder creates a new filter builder
func NewBuilder() *Builder {
	return &Builder{}
}

// BuildWhere generates a WHERE clause from a ViewResult.
// Filters are joined with AND.
func (b *Builder) BuildWhere(result models.ViewResult) (string, []interface{}, error) {
	if len(result.Filters) == 0 {
		return "", nil, nil
	}

	var clauses []string
	var args []interface{}
	for _, f := range result.Filters {
		clause, arg, err := b.buildCondition(f, len(args)+1)
		if err != nil {
			return "", nil, err
		}
		clauses = append(clauses, clause)
		args = append(args, arg)
	}

	return "WHERE " + strings.Join(clauses, " AND "), args, nil
}

// BuildSelect renders a full SELECT statement for the preview line
func (b *Builder) BuildSelect(table string, result models.ViewResult) (string, error) {
	where, _, err := b.BuildWhere(result)
	if err != nil {
		return "", err
	}
	stmt := "SELECT * FROM " + quoteQualified(table)
	if where != "" {
		stmt += " " + where
	}
	return stmt, nil
}

// buildCondition builds a single filter condition
func (b *Builder) buildCondition(f models.Filter, paramIndex int) (string, interface{}, error) {
	if !IsValid(f) {
		return "", nil, fmt.Errorf("incomplete filter: %s", f.ID)
	}
	if !f.Operator.Valid() {
		return "", nil, fmt.Errorf("unsupported operator: %s", f.Operator)
	}
	if f.Value.Kind() != f.Column.Type {
		return "", nil, fmt.Errorf("filter %s: %w", f.ID, models.ErrValueType)
	}

	arg := f.Value.Interface()
	if f.Column.Type == models.ColumnDate {
		arg = f.Value.String()
	}
	return fmt.Sprintf("%s %s $%d", quoteIdent(f.Column.Key), f.Operator.Symbol(), paramIndex), arg, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteQualified(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = quoteIdent(p)
	}
	return strings.Join(parts, ".")
}
