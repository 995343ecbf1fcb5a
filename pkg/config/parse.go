package config

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseConfigYAML parses a Config from YAML bytes and validates it. Options
// absent from the document keep their defaults.
func ParseConfigYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config yaml: %w", err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// ParseParamsYAML parses run parameters from YAML bytes and validates them.
// This is used for APIs where parameters arrive as payload.
func ParseParamsYAML(data []byte) (*Params, error) {
	p := DefaultParams()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse params yaml: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	return &p, nil
}

// ParseParamsJSON is ParseParamsYAML for JSON payloads. Unknown fields are
// rejected.
func ParseParamsJSON(data []byte) (*Params, error) {
	p := DefaultParams()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to parse params json: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	return &p, nil
}

// ToYAML renders params as a YAML document, used when archiving a run.
func (p Params) ToYAML() ([]byte, error) {
	return yaml.Marshal(p)
}
