package normalizer

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed data/abbreviations.yaml
var abbreviationsYAML []byte

// Abbreviation maps a short form to its expanded word.
type Abbreviation struct {
	Abbr string `yaml:"abbr"`
	Full string `yaml:"full"`
}

// RulesConfig holds the rules loaded from the embedded YAML.
type RulesConfig struct {
	Abbreviations []Abbreviation `yaml:"abbreviations"`
}

// LoadRulesConfig decodes the embedded abbreviation table, keeping file order.
func LoadRulesConfig() (*RulesConfig, error) {
	config := &RulesConfig{}
	if err := yaml.Unmarshal(abbreviationsYAML, config); err != nil {
		return nil, fmt.Errorf("decode abbreviations.yaml: %w", err)
	}
	for i, a := range config.Abbreviations {
		if a.Abbr == "" || a.Full == "" {
			return nil, fmt.Errorf("abbreviations.yaml: entry %d is incomplete", i)
		}
	}
	return config, nil
}
