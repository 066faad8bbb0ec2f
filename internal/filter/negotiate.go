package filter

import "github.com/rebeliceyang/lazyfilter/internal/models"

// SelectColumn sets the column of f. Picking a column on an empty filter
// also resets the operator to EQUALS and clears the value; on a started
// filter only the column changes.
func SelectColumn(f models.Filter, c models.Column) models.Filter {
	out := f.Clone()
	col := c
	if IsEmpty(f) {
		out.Column = &col
		out.Operator = models.OpEquals
		out.Value = nil
		return out
	}
	out.Column = &col
	return out
}

// SelectOperator sets the operator of f
func SelectOperator(f models.Filter, op models.FilterOperator) models.Filter {
	out := f.Clone()
	out.Operator = op
	return out
}

// SetValue sets the value of f
func SetValue(f models.Filter, v models.Value) models.Filter {
	out := f.Clone()
	out.Value = &v
	return out
}
