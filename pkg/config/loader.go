package config

import (
	"fmt"
	"os"
)

// LoadScenario loads and parses a scenario file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file %s: %w", path, err)
	}
	scenario, err := ParseScenarioYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse scenario file %s: %w", path, err)
	}
	return scenario, nil
}
