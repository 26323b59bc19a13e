package config

import (
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/AleCandido/quad/pkg/models"
)

// ParseScenarioYAML parses a Scenario from YAML bytes, applies defaults
// and validates it. This is the entry point for scenarios provided as
// payload rather than via the filesystem.
func ParseScenarioYAML(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("failed to parse scenario yaml: %w", err)
	}

	applyDefaults(&scenario)
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// ParseScenarioYAMLString parses a Scenario from a YAML string
func ParseScenarioYAMLString(yamlText string) (*Scenario, error) {
	return ParseScenarioYAML([]byte(yamlText))
}

// applyDefaults fills in the optional scenario fields
func applyDefaults(s *Scenario) {
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}
	for i := range s.Cases {
		c := &s.Cases[i]
		if c.Repeats == 0 {
			c.Repeats = 1
		}
		if c.Options == nil {
			c.Options = &Options{}
		}
	}
}

// validateScenario performs validation on the scenario configuration
func validateScenario(s *Scenario) error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[s.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", s.LogLevel)
	}

	if len(s.Cases) == 0 {
		return fmt.Errorf("at least one case must be defined")
	}

	caseNames := make(map[string]bool)
	for _, c := range s.Cases {
		if c.Name == "" {
			return fmt.Errorf("case name cannot be empty")
		}
		if caseNames[c.Name] {
			return fmt.Errorf("duplicate case name: %s", c.Name)
		}
		caseNames[c.Name] = true

		if err := validateCase(&c); err != nil {
			return fmt.Errorf("case %s: %w", c.Name, err)
		}
	}

	return nil
}

// validateCase validates one benchmark case
func validateCase(c *Case) error {
	if len(c.Functions) == 0 {
		return fmt.Errorf("at least one function must be defined")
	}
	for i, fn := range c.Functions {
		if fn == "" {
			return fmt.Errorf("function %d: name cannot be empty", i)
		}
	}

	if math.IsNaN(c.A) || math.IsInf(c.A, 0) || math.IsNaN(c.B) || math.IsInf(c.B, 0) {
		return fmt.Errorf("bounds must be finite, got a=%g b=%g", c.A, c.B)
	}
	if c.A >= c.B {
		return fmt.Errorf("a must be below b, got a=%g b=%g", c.A, c.B)
	}

	if c.Repeats < 1 {
		return fmt.Errorf("repeats must be positive, got %d", c.Repeats)
	}
	if c.DelayMs < 0 {
		return fmt.Errorf("delay_ms cannot be negative, got %g", c.DelayMs)
	}
	if c.JitterMs < 0 {
		return fmt.Errorf("jitter_ms cannot be negative, got %g", c.JitterMs)
	}
	if c.JitterMs > 0 && c.DelayMs == 0 {
		return fmt.Errorf("jitter_ms requires a delay_ms to jitter")
	}

	return validateOptions(c.Options)
}

// validateOptions validates the integration options of a case. Zero
// limit and key mean "use the default"; explicit values are range
// checked. The resolved options must be runnable, so an unattainable
// tolerance pair fails here rather than mid-run.
func validateOptions(o *Options) error {
	if o.Limit < 0 {
		return fmt.Errorf("options limit cannot be negative, got %d", o.Limit)
	}
	if o.Key != 0 && (o.Key < 1 || o.Key > 6) {
		return fmt.Errorf("options key must be between 1 and 6, got %d", o.Key)
	}
	if o.AbsTol != nil && *o.AbsTol < 0 {
		return fmt.Errorf("options abs_tol cannot be negative, got %g", *o.AbsTol)
	}
	if o.RelTol != nil && *o.RelTol < 0 {
		return fmt.Errorf("options rel_tol cannot be negative, got %g", *o.RelTol)
	}
	if o.Workers < 0 {
		return fmt.Errorf("options workers cannot be negative, got %d", o.Workers)
	}
	for i, p := range o.Points {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return fmt.Errorf("options points[%d] must be finite, got %g", i, p)
		}
	}

	resolved := o.Model()
	if resolved.AbsTol <= 0 && resolved.RelTol < models.MinRelTol {
		return fmt.Errorf("options abs_tol=%g rel_tol=%g cannot be satisfied", resolved.AbsTol, resolved.RelTol)
	}
	return nil
}
