// Package coerce turns raw text typed into a filter row into typed values,
// one strategy per column type.
package coerce

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rebeliceyang/lazyfilter/internal/models"
)

// ErrUnknownColumnType is returned for a column type with no strategy
var ErrUnknownColumnType = errors.New("unknown column type")

// Strategy converts input text for one column type
type Strategy interface {
	// Parse converts raw text into a value and the text to display.
	// ok is false when the text holds no usable value.
	Parse(raw string) (v models.Value, display string, ok bool)
	// Commit reports whether a debounced value should be committed
	Commit(v models.Value, ok bool) bool
	// Format renders a committed value back into input text
	Format(v *models.Value) string
}

// For returns the strategy for a column type
func For(t models.ColumnType) (Strategy, error) {
	switch t {
	case models.ColumnString:
		return stringStrategy{}, nil
	case models.ColumnNumber:
		return numberStrategy{}, nil
	case models.ColumnDate:
		return dateStrategy{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownColumnType, t)
}

type stringStrategy struct{}

func (stringStrategy) Parse(raw string) (models.Value, string, bool) {
	return models.StringValue(raw), raw, true
}

// Commit skips empty strings, so a STRING value cannot be cleared back to "".
func (stringStrategy) Commit(v models.Value, ok bool) bool {
	return ok && v.Str() != ""
}

func (stringStrategy) Format(v *models.Value) string {
	if v == nil {
		return ""
	}
	return v.Str()
}

type numberStrategy struct{}

// Parse never fails. The display is the canonical rendering of the parsed
// number; empty or unparseable text reads as 0 and shows "0". Text that is
// still on its way to a number ("-", "1.", "2e", "1.0") is kept as typed.
func (numberStrategy) Parse(raw string) (models.Value, string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return models.NumberValue(0), "0", true
	}
	n, err := strconv.ParseFloat(trimmed, 64)
	if err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) && isNumericText(trimmed) {
		if isGrowingFraction(trimmed) {
			return models.NumberValue(n), trimmed, true
		}
		return models.NumberValue(n), strconv.FormatFloat(n, 'f', -1, 64), true
	}
	if isNumericPrefix(trimmed) {
		n, _ = strconv.ParseFloat(strings.TrimRight(trimmed, "eE+-."), 64)
		return models.NumberValue(n), trimmed, true
	}
	return models.NumberValue(0), "0", true
}

func (numberStrategy) Commit(_ models.Value, ok bool) bool {
	return ok
}

func (numberStrategy) Format(v *models.Value) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// isNumericText rejects forms ParseFloat accepts but a number field should
// not, such as "inf", "0x1p3" or "1_000".
func isNumericText(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '.', r == '-', r == '+', r == 'e', r == 'E':
		default:
			return false
		}
	}
	return true
}

// isGrowingFraction reports whether s ends in a decimal point or in
// fractional zeros, such as "1." or "1.0" on the way to "1.05". Rendering it
// canonically would eat what was typed.
func isGrowingFraction(s string) bool {
	if !strings.Contains(s, ".") || strings.ContainsAny(s, "eE") {
		return false
	}
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, "0")
}

// isNumericPrefix reports whether s could still grow into a number
func isNumericPrefix(s string) bool {
	if !isNumericText(s) {
		return false
	}
	for _, suffix := range []string{"0", "1", "0e1"} {
		if _, err := strconv.ParseFloat(s+suffix, 64); err == nil {
			return true
		}
	}
	return false
}

type dateStrategy struct{}

func (dateStrategy) Parse(raw string) (models.Value, string, bool) {
	t, err := time.Parse(models.DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return models.Value{}, raw, false
	}
	return models.DateValue(t), raw, true
}

func (dateStrategy) Commit(_ models.Value, ok bool) bool {
	return ok
}

func (dateStrategy) Format(v *models.Value) string {
	if v == nil {
		return ""
	}
	return v.Date().Format(models.DateLayout)
}
