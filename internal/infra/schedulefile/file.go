// Package schedulefile reads a schedule definition from a local JSON or YAML file.
package schedulefile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bell_cron_generator/internal/domain/schedule"

	"gopkg.in/yaml.v3"
)

type Loader struct {
	path string
}

var _ schedule.Source = (*Loader)(nil)

func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// LoadDefinition decodes the file; .yaml and .yml are read as YAML, everything else as JSON.
func (l *Loader) LoadDefinition(_ context.Context) (schedule.Definition, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return schedule.Definition{}, fmt.Errorf("failed to read schedule file %s: %w", l.path, err)
	}
	ext := strings.ToLower(filepath.Ext(l.path))
	if ext == ".yaml" || ext == ".yml" {
		return DecodeYAML(data)
	}
	return DecodeJSON(data)
}

// DecodeYAML parses a YAML schedule document, rejecting unknown fields.
func DecodeYAML(data []byte) (schedule.Definition, error) {
	var def schedule.Definition
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return schedule.Definition{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	return def, nil
}

// DecodeJSON parses a JSON schedule document, rejecting unknown fields.
func DecodeJSON(data []byte) (schedule.Definition, error) {
	var def schedule.Definition
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&def); err != nil {
		return schedule.Definition{}, fmt.Errorf("json unmarshal: %w", err)
	}
	return def, nil
}
