package rename

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadJob reads and validates a YAML job specification.
func LoadJob(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job file: %w", err)
	}

	// Preview by default; an absent key must not silently enable
	// filesystem mutation.
	cfg := &Config{Preview: true}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse job file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid job file %s: %w", path, err)
	}
	return cfg, nil
}
