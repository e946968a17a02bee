package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"newsbrief/internal/adapter/source"
)

// sourcesFile is the on-disk shape of the source definition file.
type sourcesFile struct {
	Sources []source.Spec `yaml:"sources"`
}

// LoadSources reads and validates the YAML source definition file.
// Unlike the env loaders this fails closed: a broken source file means
// the operator's intent is unknown and the process should not start.
func LoadSources(path string) ([]source.Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	var file sourcesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse sources file %s: %w", path, err)
	}

	if len(file.Sources) == 0 {
		return nil, fmt.Errorf("sources file %s defines no sources", path)
	}

	seen := make(map[string]bool, len(file.Sources))
	for i, spec := range file.Sources {
		if spec.Name == "" {
			return nil, fmt.Errorf("source %d: name is required", i)
		}
		if seen[spec.Name] {
			return nil, fmt.Errorf("duplicate source name %q", spec.Name)
		}
		seen[spec.Name] = true

		if spec.Kind == "" {
			return nil, fmt.Errorf("source %q: kind is required", spec.Name)
		}
		if err := ValidateIntRange(spec.Priority, 0, 10); err != nil {
			return nil, fmt.Errorf("source %q: priority: %w", spec.Name, err)
		}
	}

	// Disabled stanzas are validated above but not returned, so a source
	// can be switched off without deleting its definition.
	enabled := make([]source.Spec, 0, len(file.Sources))
	for _, spec := range file.Sources {
		if spec.IsEnabled() {
			enabled = append(enabled, spec)
		}
	}
	if len(enabled) == 0 {
		return nil, fmt.Errorf("sources file %s enables no sources", path)
	}

	return enabled, nil
}
