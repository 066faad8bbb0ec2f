package schema

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rebeliceyang/lazyfilter/internal/config"
	"github.com/rebeliceyang/lazyfilter/internal/models"
)

// PostgresSource reads columns from information_schema
type PostgresSource struct {
	cfg       config.PostgresConfig
	passwords func() (*PasswordStore, error)
}

// NewPostgresSource creates a source for one table
func NewPostgresSource(cfg config.PostgresConfig) *PostgresSource {
	return &PostgresSource{
		cfg: cfg,
		passwords: func() (*PasswordStore, error) {
			dir, err := config.GetConfigPath()
			if err != nil {
				return nil, err
			}
			return NewPasswordStore(dir)
		},
	}
}

func (s *PostgresSource) Name() string { return "postgres" }

// Columns connects, reads the table's columns and disconnects
func (s *PostgresSource) Columns(ctx context.Context) ([]models.Column, error) {
	if s.cfg.Table == "" {
		return nil, errors.New("no table configured")
	}

	password, err := s.password()
	if err != nil {
		return nil, err
	}

	pool, err := connect(ctx, buildConnectionString(s.cfg, password))
	if err != nil {
		return nil, err
	}
	defer pool.Close()

	tableSchema := s.cfg.Schema
	if tableSchema == "" {
		tableSchema = "public"
	}

	query := `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`
	rows, err := pool.Query(ctx, query, tableSchema, s.cfg.Table)
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}
	defer rows.Close()

	var columns []models.Column
	for rows.Next() {
		var name, dataType string
		if err := rows.Scan(&name, &dataType); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		columns = append(columns, models.Column{Key: name, Type: PostgresColumnType(dataType)})
	}
	return columns, rows.Err()
}

// password looks the password up in the keyring when asked to. A missing
// entry means connecting without one.
func (s *PostgresSource) password() (string, error) {
	if !s.cfg.PasswordFromKeyring {
		return "", nil
	}
	store, err := s.passwords()
	if err != nil {
		return "", err
	}
	pw, err := store.Get(s.cfg.Host, s.cfg.Port, s.cfg.Database, s.cfg.User)
	if errors.Is(err, ErrPasswordNotFound) {
		return "", nil
	}
	return pw, err
}

func connect(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}

	// one short-lived query
	poolConfig.MaxConns = 1
	poolConfig.MaxConnLifetime = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// buildConnectionString creates a PostgreSQL connection string
func buildConnectionString(cfg config.PostgresConfig, password string) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s database=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Database,
		sslMode,
	)

	if password != "" {
		connStr += fmt.Sprintf(" password=%s", password)
	}

	return connStr
}

// PostgresColumnType maps an information_schema data_type to a column type
func PostgresColumnType(dataType string) models.ColumnType {
	switch t := strings.ToLower(dataType); {
	case t == "smallint", t == "integer", t == "bigint",
		t == "real", t == "double precision", t == "money",
		strings.HasPrefix(t, "numeric"), strings.HasPrefix(t, "decimal"):
		return models.ColumnNumber
	case t == "date", strings.HasPrefix(t, "timestamp"):
		return models.ColumnDate
	default:
		return models.ColumnString
	}
}
