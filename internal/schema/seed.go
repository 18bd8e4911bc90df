package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Columns []FieldDefinition `yaml:"columns"`
}

// LoadSeed читает стартовый набор колонок из YAML:
//
//	columns:
//	  - key: name
//	    header: Name
//	    visible: true
func LoadSeed(path string) (ColumnConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sf seedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg := ColumnConfig(sf.Columns)
	for i := range cfg {
		if cfg[i].Key == "" {
			cfg[i].Key = DeriveKey(cfg[i].Header)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("seed %s: %w", path, err)
	}
	return cfg, nil
}
