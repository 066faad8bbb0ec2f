// Package schema reads the filterable columns from where the data lives.
package schema

import (
	"context"
	"errors"
	"fmt"

	"github.com/rebeliceyang/lazyfilter/internal/config"
	"github.com/rebeliceyang/lazyfilter/internal/models"
)

// ErrNoColumns is returned when a source yields no usable column
var ErrNoColumns = errors.New("no columns")

// SchemaError reports a failure of a named schema source
type SchemaError struct {
	Source string
	Err    error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema source %s: %v", e.Source, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// Source provides the columns a filter can target
type Source interface {
	Name() string
	Columns(ctx context.Context) ([]models.Column, error)
}

// DefaultColumns is the demo schema used when nothing is configured
var DefaultColumns = []models.Column{
	{Key: "name", Type: models.ColumnString},
	{Key: "accountsOwned", Type: models.ColumnNumber},
	{Key: "dataAdded", Type: models.ColumnDate},
}

// StaticSource serves a fixed column list
type StaticSource struct {
	columns []models.Column
}

// NewStaticSource creates a static source. An empty list means DefaultColumns.
func NewStaticSource(columns []models.Column) *StaticSource {
	if len(columns) == 0 {
		columns = DefaultColumns
	}
	return &StaticSource{columns: append([]models.Column(nil), columns...)}
}

func (s *StaticSource) Name() string { return "static" }

func (s *StaticSource) Columns(_ context.Context) ([]models.Column, error) {
	return append([]models.Column(nil), s.columns...), nil
}

// Open selects the source named by cfg.Source
func Open(cfg config.SchemaConfig) (Source, error) {
	switch cfg.Source {
	case "", "static":
		return NewStaticSource(cfg.Columns), nil
	case "postgres":
		return NewPostgresSource(cfg.Postgres), nil
	case "sqlite":
		return NewSQLiteSource(cfg.SQLite), nil
	default:
		return nil, &SchemaError{Source: cfg.Source, Err: errors.New("unknown source")}
	}
}

// Load reads the columns of src. Duplicate keys are dropped, first wins.
func Load(ctx context.Context, src Source) ([]models.Column, error) {
	columns, err := src.Columns(ctx)
	if err != nil {
		return nil, &SchemaError{Source: src.Name(), Err: err}
	}
	columns = Dedup(columns)
	if len(columns) == 0 {
		return nil, &SchemaError{Source: src.Name(), Err: ErrNoColumns}
	}
	return columns, nil
}

// Dedup removes columns whose key was already seen
func Dedup(columns []models.Column) []models.Column {
	seen := make(map[string]struct{}, len(columns))
	out := make([]models.Column, 0, len(columns))
	for _, c := range columns {
		if c.Key == "" {
			continue
		}
		if _, ok := seen[c.Key]; ok {
			continue
		}
		seen[c.Key] = struct{}{}
		out = append(out, c)
	}
	return out
}
