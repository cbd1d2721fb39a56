// YAML config loader with CUE validation integration
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"twinops-sim/internal/twin"
)

// PropertySpec declares one property in a definition's schema.
type PropertySpec struct {
	Type        string `yaml:"type"`
	Unit        string `yaml:"unit,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// Definition seeds one twin definition.
type Definition struct {
	ID          string                  `yaml:"id"`
	Name        string                  `yaml:"name"`
	Description string                  `yaml:"description,omitempty"`
	Category    string                  `yaml:"category"`
	Version     string                  `yaml:"version"`
	Properties  map[string]PropertySpec `yaml:"properties"`
}

// Instance seeds one twin instance bound to a definition.
type Instance struct {
	ID          string         `yaml:"id"`
	Definition  string         `yaml:"definition"`
	Status      string         `yaml:"status"`
	HealthScore float64        `yaml:"health_score"`
	Properties  map[string]any `yaml:"properties"`
}

// Duration wraps time.Duration so YAML values like "3s" parse.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// AI configures the gateway provider.
type AI struct {
	Provider  string   `yaml:"provider"`
	BaseURL   string   `yaml:"base_url,omitempty"`
	Model     string   `yaml:"model,omitempty"`
	APIKeyEnv string   `yaml:"api_key_env,omitempty"`
	Timeout   Duration `yaml:"timeout,omitempty"`
}

// SimulationConfig is the root configuration for definitions, instances and
// the AI gateway.
type SimulationConfig struct {
	Definitions  []Definition `yaml:"definitions"`
	Instances    []Instance   `yaml:"instances"`
	TickInterval Duration     `yaml:"tick_interval,omitempty"`
	AI           AI           `yaml:"ai,omitempty"`
}

// Load loads YAML config and validates it against a CUE schema.
func Load(configPath, cueSchemaPath string) (*SimulationConfig, error) {
	if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	var cfg SimulationConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ToTwin converts a seed definition into the domain type.
func (d Definition) ToTwin() twin.Definition {
	props := make(map[string]twin.PropertySpec, len(d.Properties))
	for name, p := range d.Properties {
		props[name] = twin.PropertySpec{
			Type:        twin.PropertyType(p.Type),
			Unit:        p.Unit,
			Description: p.Description,
		}
	}
	return twin.Definition{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Category:    twin.Category(d.Category),
		Version:     d.Version,
		Properties:  props,
	}
}

// ToTwin converts a seed instance into the domain type.
func (i Instance) ToTwin() (twin.Instance, error) {
	props := make(map[string]twin.Value, len(i.Properties))
	for name, raw := range i.Properties {
		v, err := valueFromAny(raw)
		if err != nil {
			return twin.Instance{}, fmt.Errorf("instance %s: property %q: %w", i.ID, name, err)
		}
		props[name] = v
	}
	status := i.Status
	if status == "" {
		status = twin.StatusActive
	}
	return twin.Instance{
		ID:           i.ID,
		DefinitionID: i.Definition,
		Status:       status,
		HealthScore:  i.HealthScore,
		Properties:   props,
	}, nil
}

// valueFromAny converts a YAML scalar into a tagged value.
func valueFromAny(raw any) (twin.Value, error) {
	switch t := raw.(type) {
	case int:
		return twin.Number(float64(t)), nil
	case int64:
		return twin.Number(float64(t)), nil
	case float64:
		return twin.Number(t), nil
	case string:
		return twin.String(t), nil
	case bool:
		return twin.Boolean(t), nil
	}
	return twin.Value{}, fmt.Errorf("unsupported scalar %T", raw)
}
