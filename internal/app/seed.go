package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rebeliceyang/lazyfilter/internal/models"
	"gopkg.in/yaml.v3"
)

// LoadSeed reads initial filters from a file in the emitted result format,
// JSON or, for .yaml/.yml files, the same document in YAML. Ids must be present and unique, and each filter must target a known column with its declared type.
func LoadSeed(path string, columns []models.Column) (models.ViewResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.ViewResult{}, fmt.Errorf("failed to read seed: %w", err)
	}

	if ext := strings.ToLower(filepath.Ext(path)); ext == ".yaml" || ext == ".yml" {
		if data, err = yamlToJSON(data); err != nil {
			return models.ViewResult{}, fmt.Errorf("failed to parse seed %s: %w", path, err)
		}
	}

	var seed models.ViewResult
	if err := json.Unmarshal(data, &seed); err != nil {
		return models.ViewResult{}, fmt.Errorf("failed to parse seed %s: %w", path, err)
	}

	known := make(map[string]models.ColumnType, len(columns))
	for _, c := range columns {
		known[c.Key] = c.Type
	}
	ids := make(map[string]struct{}, len(seed.Filters))
	for _, f := range seed.Filters {
		if f.ID == "" {
			return models.ViewResult{}, errors.New("seed filter without id")
		}
		if _, dup := ids[f.ID]; dup {
			return models.ViewResult{}, fmt.Errorf("seed filter %s: duplicate id", f.ID)
		}
		ids[f.ID] = struct{}{}
		if f.Column == nil {
			continue
		}
		t, ok := known[f.Column.Key]
		if !ok {
			return models.ViewResult{}, fmt.Errorf("seed filter %s: unknown column %q", f.ID, f.Column.Key)
		}
		if t != f.Column.Type {
			return models.ViewResult{}, fmt.Errorf("seed filter %s: column %q is %s, not %s", f.ID, f.Column.Key, t, f.Column.Type)
		}
	}
	return seed, nil
}

// yamlToJSON re-encodes a YAML document as JSON so filters decode through
// the same path, including value coercion by column type. Unquoted dates
// stay strings when decoded into interface values.
func yamlToJSON(data []byte) ([]byte, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}
