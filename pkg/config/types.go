// Package config defines the YAML benchmark-scenario schema, parsing
// and validation.
package config

import "github.com/AleCandido/quad/pkg/models"

// Scenario is a full benchmark run description
type Scenario struct {
	LogLevel string `yaml:"log_level,omitempty"`
	Seed     int64  `yaml:"seed,omitempty"`
	Cases    []Case `yaml:"cases"`
}

// Case is one benchmark case: a set of registered integrands over one
// domain, integrated together and compared against per-integrand runs
type Case struct {
	Name      string   `yaml:"name"`
	Functions []string `yaml:"functions"`
	A         float64  `yaml:"a"`
	B         float64  `yaml:"b"`

	// Repeats is how many timed runs to take; the fastest one is
	// reported. Defaults to 1.
	Repeats int `yaml:"repeats,omitempty"`

	// DelayMs is an artificial per-evaluation latency, modelling slow
	// integrands. JitterMs adds a uniform spread on top of it.
	DelayMs  float64 `yaml:"delay_ms,omitempty"`
	JitterMs float64 `yaml:"jitter_ms,omitempty"`

	// Options override the integration defaults for this case
	Options *Options `yaml:"options,omitempty"`
}

// Options mirrors the integration options with optional tolerance
// fields, so an omitted knob in a partial options block can be told
// apart from an explicit zero. An explicit abs_tol 0 with a rel_tol is
// a valid pure-relative request; omitting both keeps the defaults.
type Options struct {
	Limit    int       `yaml:"limit,omitempty"`
	Key      int       `yaml:"key,omitempty"`
	AbsTol   *float64  `yaml:"abs_tol,omitempty"`
	RelTol   *float64  `yaml:"rel_tol,omitempty"`
	Workers  int       `yaml:"workers,omitempty"`
	Points   []float64 `yaml:"points,omitempty"`
	MoreInfo bool      `yaml:"more_info,omitempty"`
}

// Model resolves the scenario options against the integration
// defaults: zero limit/key and omitted tolerances fall back to them,
// explicit values win.
func (o *Options) Model() models.Options {
	opts := models.DefaultOptions()
	if o == nil {
		return opts
	}
	if o.Limit != 0 {
		opts.Limit = o.Limit
	}
	if o.Key != 0 {
		opts.Key = o.Key
	}
	if o.AbsTol != nil {
		opts.AbsTol = *o.AbsTol
	}
	if o.RelTol != nil {
		opts.RelTol = *o.RelTol
	}
	opts.Workers = o.Workers
	opts.Points = o.Points
	opts.MoreInfo = o.MoreInfo
	return opts
}
