package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rebeliceyang/lazyfilter/internal/models"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	UI     UIConfig     `mapstructure:"ui"`
	Filter FilterConfig `mapstructure:"filter"`
	Schema SchemaConfig `mapstructure:"schema"`
	Output OutputConfig `mapstructure:"output"`
}

type UIConfig struct {
	Theme        string `mapstructure:"theme"`
	MouseEnabled bool   `mapstructure:"mouse_enabled"`
}

type FilterConfig struct {
	DebounceMS int    `mapstructure:"debounce_ms"`
	MaxOptions int    `mapstructure:"max_options"`
	TableName  string `mapstructure:"table_name"`
	SeedFile   string `mapstructure:"seed_file"`
}

// Debounce returns the value commit delay
func (f FilterConfig) Debounce() time.Duration {
	if f.DebounceMS <= 0 {
		return 0
	}
	return time.Duration(f.DebounceMS) * time.Millisecond
}

type SchemaConfig struct {
	Source   string          `mapstructure:"source"` // static, postgres or sqlite
	Columns  []models.Column `mapstructure:"columns"`
	SQLite   SQLiteConfig    `mapstructure:"sqlite"`
	Postgres PostgresConfig  `mapstructure:"postgres"`
}

type SQLiteConfig struct {
	Path  string `mapstructure:"path"`
	Table string `mapstructure:"table"`
}

type PostgresConfig struct {
	Host                string `mapstructure:"host"`
	Port                int    `mapstructure:"port"`
	User                string `mapstructure:"user"`
	Database            string `mapstructure:"database"`
	SSLMode             string `mapstructure:"sslmode"`
	Schema              string `mapstructure:"schema"`
	Table               string `mapstructure:"table"`
	PasswordFromKeyring bool   `mapstructure:"password_from_keyring"`
}

type OutputConfig struct {
	PrintOnExit bool `mapstructure:"print_on_exit"`
	CopyOnExit  bool `mapstructure:"copy_on_exit"`
}

// GetDefaults returns a Config with all default values
func GetDefaults() *Config {
	return &Config{
		UI: UIConfig{
			Theme:        "default",
			MouseEnabled: true,
		},
		Filter: FilterConfig{
			DebounceMS: 300,
			MaxOptions: 15,
		},
		Schema: SchemaConfig{
			Source: "static",
			Postgres: PostgresConfig{
				Host:    "localhost",
				Port:    5432,
				SSLMode: "prefer",
				Schema:  "public",
			},
		},
		Output: OutputConfig{
			PrintOnExit: true,
		},
	}
}

// Load loads configuration. An explicit path must exist; otherwise the
// usual locations are searched and a missing file means defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// 1. User config directory
		if configDir, err := GetConfigPath(); err == nil {
			v.AddConfigPath(configDir)
		}
		// 2. Current directory
		v.AddConfigPath(".")
		// 3. Default config directory
		v.AddConfigPath("./config")
	}

	d := GetDefaults()
	v.SetDefault("ui.theme", d.UI.Theme)
	v.SetDefault("ui.mouse_enabled", d.UI.MouseEnabled)
	v.SetDefault("filter.debounce_ms", d.Filter.DebounceMS)
	v.SetDefault("filter.max_options", d.Filter.MaxOptions)
	v.SetDefault("filter.table_name", d.Filter.TableName)
	v.SetDefault("filter.seed_file", d.Filter.SeedFile)
	v.SetDefault("schema.source", d.Schema.Source)
	v.SetDefault("schema.postgres.host", d.Schema.Postgres.Host)
	v.SetDefault("schema.postgres.port", d.Schema.Postgres.Port)
	v.SetDefault("schema.postgres.sslmode", d.Schema.Postgres.SSLMode)
	v.SetDefault("schema.postgres.schema", d.Schema.Postgres.Schema)
	v.SetDefault("output.print_on_exit", d.Output.PrintOnExit)
	v.SetDefault("output.copy_on_exit", d.Output.CopyOnExit)

	// LAZYFILTER_FILTER_TABLE_NAME overrides filter.table_name, and so on
	v.SetEnvPrefix("lazyfilter")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// It's okay if no file exists, we have defaults
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	for _, c := range cfg.Schema.Columns {
		if _, err := models.ParseColumnType(string(c.Type)); err != nil {
			return nil, fmt.Errorf("schema column %q: %w", c.Key, err)
		}
	}

	return &cfg, nil
}

// GetConfigPath returns the user config directory path
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "lazyfilter"), nil
}
