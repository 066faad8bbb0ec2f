package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ColumnType is the declared type of a column
type ColumnType string

const (
	ColumnString ColumnType = "STRING"
	ColumnNumber ColumnType = "NUMBER"
	ColumnDate   ColumnType = "DATE"
)

// ColumnTypes lists every supported column type
var ColumnTypes = []ColumnType{ColumnString, ColumnNumber, ColumnDate}

// ParseColumnType converts a type name into a ColumnType
func ParseColumnType(s string) (ColumnType, error) {
	for _, t := range ColumnTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown column type: %q", s)
}

// Column describes a filterable column. Columns are unique by Key.
type Column struct {
	Key  string     `json:"key" mapstructure:"key"`
	Type ColumnType `json:"type" mapstructure:"type"`
}

// FilterOperator represents a filter comparison operator.
// The empty string means no operator has been chosen.
type FilterOperator string

const (
	OpEquals      FilterOperator = "EQUALS"
	OpNotEquals   FilterOperator = "NOT_EQUALS"
	OpGreaterThan FilterOperator = "GREATER_THAN"
	OpLessThan    FilterOperator = "LESS_THAN"
)

// Operators lists operators in display order
var Operators = []FilterOperator{OpEquals, OpNotEquals, OpGreaterThan, OpLessThan}

var operatorLabels = map[FilterOperator]string{
	OpEquals:      "= (equals)",
	OpNotEquals:   "!= (not equals)",
	OpGreaterThan: "> (greater than)",
	OpLessThan:    "< (less than)",
}

var operatorSymbols = map[FilterOperator]string{
	OpEquals:      "=",
	OpNotEquals:   "!=",
	OpGreaterThan: ">",
	OpLessThan:    "<",
}

// Label returns the human readable label for the operator
func (op FilterOperator) Label() string {
	if l, ok := operatorLabels[op]; ok {
		return l
	}
	return string(op)
}

// Symbol returns the SQL comparison symbol for the operator
func (op FilterOperator) Symbol() string {
	return operatorSymbols[op]
}

// Valid reports whether op is one of the known operators
func (op FilterOperator) Valid() bool {
	_, ok := operatorSymbols[op]
	return ok
}

// DateLayout is the canonical rendering of a DATE value
const DateLayout = "2006-01-02"

// Value is a typed filter value. Its kind always matches the
// column type it was coerced for.
type Value struct {
	kind ColumnType
	str  string
	num  float64
	date time.Time
}

// StringValue builds a STRING value
func StringValue(s string) Value {
	return Value{kind: ColumnString, str: s}
}

// NumberValue builds a NUMBER value
func NumberValue(n float64) Value {
	return Value{kind: ColumnNumber, num: n}
}

// DateValue builds a DATE value. Time of day is dropped.
func DateValue(t time.Time) Value {
	y, m, d := t.Date()
	return Value{kind: ColumnDate, date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Kind returns the column type the value belongs to
func (v Value) Kind() ColumnType { return v.kind }

// Str returns the string payload of a STRING value
func (v Value) Str() string { return v.str }

// Num returns the numeric payload of a NUMBER value
func (v Value) Num() float64 { return v.num }

// Date returns the calendar date of a DATE value
func (v Value) Date() time.Time { return v.date }

// Interface returns the payload as a plain Go value
func (v Value) Interface() any {
	switch v.kind {
	case ColumnString:
		return v.str
	case ColumnNumber:
		return v.num
	case ColumnDate:
		return v.date
	}
	return nil
}

// String renders the value for display
func (v Value) String() string {
	switch v.kind {
	case ColumnString:
		return v.str
	case ColumnNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case ColumnDate:
		return v.date.Format(DateLayout)
	}
	return ""
}

// Equal reports whether two values have the same kind and payload
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case ColumnString:
		return v.str == o.str
	case ColumnNumber:
		return v.num == o.num
	case ColumnDate:
		return v.date.Equal(o.date)
	}
	return true
}

// MarshalJSON encodes strings and numbers natively and dates as YYYY-MM-DD
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case ColumnString:
		return json.Marshal(v.str)
	case ColumnNumber:
		return json.Marshal(v.num)
	case ColumnDate:
		return json.Marshal(v.date.Format(DateLayout))
	}
	return []byte("null"), nil
}

// ErrValueType is returned when a raw JSON value does not match the column type
var ErrValueType = errors.New("value does not match column type")

// DecodeValue converts a raw JSON value into a Value of the given column type
func DecodeValue(t ColumnType, raw json.RawMessage) (*Value, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	switch t {
	case ColumnString:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrValueType, t)
		}
		v := StringValue(s)
		return &v, nil
	case ColumnNumber:
		var n float64
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrValueType, t)
		}
		v := NumberValue(n)
		return &v, nil
	case ColumnDate:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrValueType, t)
		}
		d, err := time.Parse(DateLayout, s)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrValueType, t, err)
		}
		v := DateValue(d)
		return &v, nil
	}
	return nil, fmt.Errorf("unknown column type: %q", t)
}

// Filter is one predicate entry. A nil Column marks the empty filter.
type Filter struct {
	ID       string         `json:"id"`
	Column   *Column        `json:"column,omitempty"`
	Operator FilterOperator `json:"operator,omitempty"`
	Value    *Value         `json:"value,omitempty"`
}

// UnmarshalJSON decodes a filter, coercing value by the column type
func (f *Filter) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       string          `json:"id"`
		Column   *Column         `json:"column"`
		Operator FilterOperator  `json:"operator"`
		Value    json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	f.ID = raw.ID
	f.Column = raw.Column
	f.Operator = raw.Operator
	f.Value = nil
	if raw.Column != nil {
		v, err := DecodeValue(raw.Column.Type, raw.Value)
		if err != nil {
			return fmt.Errorf("filter %s: %w", raw.ID, err)
		}
		f.Value = v
	}
	return nil
}

// Clone returns a copy that shares no pointers with f
func (f Filter) Clone() Filter {
	out := Filter{ID: f.ID, Operator: f.Operator}
	if f.Column != nil {
		c := *f.Column
		out.Column = &c
	}
	if f.Value != nil {
		v := *f.Value
		out.Value = &v
	}
	return out
}

// ViewResult is the snapshot emitted to the host
type ViewResult struct {
	Filters []Filter `json:"filters"`
}
