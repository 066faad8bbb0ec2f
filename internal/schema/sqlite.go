package schema

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rebeliceyang/lazyfilter/internal/config"
	"github.com/rebeliceyang/lazyfilter/internal/models"
)

// SQLiteSource reads columns of a table in a SQLite file
type SQLiteSource struct {
	cfg config.SQLiteConfig
}

// NewSQLiteSource creates a source for one table
func NewSQLiteSource(cfg config.SQLiteConfig) *SQLiteSource {
	return &SQLiteSource{cfg: cfg}
}

func (s *SQLiteSource) Name() string { return "sqlite" }

// Columns opens the database read-only and lists the table's columns
func (s *SQLiteSource) Columns(ctx context.Context) ([]models.Column, error) {
	if s.cfg.Path == "" || s.cfg.Table == "" {
		return nil, errors.New("path and table are required")
	}

	db, err := sql.Open("sqlite3", "file:"+s.cfg.Path+"?mode=ro")
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	rows, err := db.QueryContext(ctx, `SELECT name, type FROM pragma_table_info(?) ORDER BY cid`, s.cfg.Table)
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []models.Column
	for rows.Next() {
		var name, declType string
		if err := rows.Scan(&name, &declType); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		columns = append(columns, models.Column{Key: name, Type: SQLiteColumnType(declType)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %q not found", s.cfg.Table)
	}
	return columns, nil
}

// SQLiteColumnType maps a declared column type to a column type following
// SQLite's affinity rules, with DATE and TIME names read as dates.
func SQLiteColumnType(declType string) models.ColumnType {
	t := strings.ToUpper(declType)
	switch {
	case strings.Contains(t, "DATE"), strings.Contains(t, "TIME"):
		return models.ColumnDate
	case strings.Contains(t, "INT"),
		strings.Contains(t, "REAL"), strings.Contains(t, "FLOA"), strings.Contains(t, "DOUB"),
		strings.Contains(t, "NUMERIC"), strings.Contains(t, "DECIMAL"):
		return models.ColumnNumber
	default:
		return models.ColumnString
	}
}
