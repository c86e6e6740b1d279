package sluggable

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"
)

// Registry maps entity types to their slug configuration.
type Registry map[string]Config

// Get returns the configuration for entityType.
func (r Registry) Get(entityType string) (Config, error) {
	cfg, ok := r[entityType]
	if !ok {
		return Config{}, fmt.Errorf("%w: %s", ErrUnknownEntityType, entityType)
	}
	return cfg, nil
}

// ParseConfigs reads a YAML document keyed by entity type:
//
//	articles:
//	  source_fields: [title, subtitle]
//	  reserved: [create, edit]
//	tags:
//	  source_fields: [name]
//	  reserved: []
//
// Entries are returned with defaults applied. The first invalid entry, in
// name order, aborts parsing with an error matching ErrConfiguration.
func ParseConfigs(data []byte) (Registry, error) {
	raw := make(map[string]Config)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Join(ErrInvalidConfigFile, err)
	}

	reg := make(Registry, len(raw))
	for _, name := range slices.Sorted(maps.Keys(raw)) {
		cfg := raw[name].WithDefaults()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("sluggable: entity type %q: %w", name, err)
		}
		reg[name] = cfg
	}
	return reg, nil
}

// LoadConfigs reads and parses the named YAML file from fsys.
func LoadConfigs(fsys fs.FS, name string) (Registry, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, errors.Join(ErrInvalidConfigFile, err)
	}
	return ParseConfigs(data)
}
