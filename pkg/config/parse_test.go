package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validScenario = `
log_level: debug
seed: 42
cases:
  - name: trig
    functions: [cos, sin]
    a: 0
    b: 100
    repeats: 3
    options:
      limit: 1000
      key: 3
      abs_tol: 1.0e-9
      rel_tol: 0
      workers: 4
  - name: slow
    functions: [gauss]
    a: -5
    b: 5
    delay_ms: 0.5
    jitter_ms: 0.1
`

func TestParseScenarioValid(t *testing.T) {
	s, err := ParseScenarioYAMLString(validScenario)
	require.NoError(t, err)

	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, int64(42), s.Seed)
	require.Len(t, s.Cases, 2)

	trig := s.Cases[0]
	assert.Equal(t, "trig", trig.Name)
	assert.Equal(t, []string{"cos", "sin"}, trig.Functions)
	assert.Equal(t, 3, trig.Repeats)
	require.NotNil(t, trig.Options)
	require.NotNil(t, trig.Options.AbsTol)
	require.NotNil(t, trig.Options.RelTol)
	assert.Equal(t, 1e-9, *trig.Options.AbsTol)
	assert.Equal(t, 0.0, *trig.Options.RelTol)

	opts := trig.Options.Model()
	assert.Equal(t, 1000, opts.Limit)
	assert.Equal(t, 3, opts.Key)
	assert.Equal(t, 1e-9, opts.AbsTol)
	assert.Equal(t, 0.0, opts.RelTol)
	assert.Equal(t, 4, opts.Workers)
}

func TestParseScenarioDefaults(t *testing.T) {
	s, err := ParseScenarioYAMLString(`
cases:
  - name: minimal
    functions: [cos]
    a: 0
    b: 1
`)
	require.NoError(t, err)

	assert.Equal(t, "info", s.LogLevel)
	c := s.Cases[0]
	assert.Equal(t, 1, c.Repeats)
	require.NotNil(t, c.Options)

	opts := c.Options.Model()
	assert.Equal(t, 50, opts.Limit)
	assert.Equal(t, 2, opts.Key)
	assert.Equal(t, 1.49e-8, opts.AbsTol)
	assert.Equal(t, 1.49e-8, opts.RelTol)
}

func TestParseScenarioPartialOptions(t *testing.T) {
	// A block that only raises the limit keeps the default tolerances:
	// an omitted tolerance must never resolve to the unattainable 0/0.
	s, err := ParseScenarioYAMLString(`
cases:
  - name: limit_only
    functions: [gauss, runge]
    a: -5
    b: 5
    options:
      limit: 1000
`)
	require.NoError(t, err)

	c := s.Cases[0]
	assert.Nil(t, c.Options.AbsTol)
	assert.Nil(t, c.Options.RelTol)

	opts := c.Options.Model()
	assert.Equal(t, 1000, opts.Limit)
	assert.Equal(t, 2, opts.Key)
	assert.Equal(t, 1.49e-8, opts.AbsTol)
	assert.Equal(t, 1.49e-8, opts.RelTol)
}

func TestParseScenarioPureRelative(t *testing.T) {
	// An explicit abs_tol 0 with a rel_tol is a valid request.
	s, err := ParseScenarioYAMLString(`
cases:
  - name: relative
    functions: [cos]
    a: 0
    b: 1
    options:
      abs_tol: 0
      rel_tol: 1.0e-10
`)
	require.NoError(t, err)

	opts := s.Cases[0].Options.Model()
	assert.Equal(t, 0.0, opts.AbsTol)
	assert.Equal(t, 1e-10, opts.RelTol)
}

func TestParseScenarioInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "bad log level",
			yaml: "log_level: loud\ncases:\n  - name: c\n    functions: [cos]\n    a: 0\n    b: 1\n",
			want: "invalid log_level",
		},
		{
			name: "no cases",
			yaml: "log_level: info\n",
			want: "at least one case",
		},
		{
			name: "empty case name",
			yaml: "cases:\n  - functions: [cos]\n    a: 0\n    b: 1\n",
			want: "case name cannot be empty",
		},
		{
			name: "duplicate case name",
			yaml: "cases:\n  - name: c\n    functions: [cos]\n    a: 0\n    b: 1\n  - name: c\n    functions: [sin]\n    a: 0\n    b: 1\n",
			want: "duplicate case name",
		},
		{
			name: "no functions",
			yaml: "cases:\n  - name: c\n    a: 0\n    b: 1\n",
			want: "at least one function",
		},
		{
			name: "reversed bounds",
			yaml: "cases:\n  - name: c\n    functions: [cos]\n    a: 2\n    b: 1\n",
			want: "a must be below b",
		},
		{
			name: "negative delay",
			yaml: "cases:\n  - name: c\n    functions: [cos]\n    a: 0\n    b: 1\n    delay_ms: -1\n",
			want: "delay_ms cannot be negative",
		},
		{
			name: "jitter without delay",
			yaml: "cases:\n  - name: c\n    functions: [cos]\n    a: 0\n    b: 1\n    jitter_ms: 0.1\n",
			want: "jitter_ms requires a delay_ms",
		},
		{
			name: "negative limit",
			yaml: "cases:\n  - name: c\n    functions: [cos]\n    a: 0\n    b: 1\n    options:\n      limit: -1\n",
			want: "limit cannot be negative",
		},
		{
			name: "bad key",
			yaml: "cases:\n  - name: c\n    functions: [cos]\n    a: 0\n    b: 1\n    options:\n      key: 9\n",
			want: "key must be between 1 and 6",
		},
		{
			name: "negative tolerance",
			yaml: "cases:\n  - name: c\n    functions: [cos]\n    a: 0\n    b: 1\n    options:\n      abs_tol: -1\n",
			want: "abs_tol cannot be negative",
		},
		{
			name: "unattainable tolerances",
			yaml: "cases:\n  - name: c\n    functions: [cos]\n    a: 0\n    b: 1\n    options:\n      abs_tol: 0\n      rel_tol: 0\n",
			want: "cannot be satisfied",
		},
		{
			name: "not yaml",
			yaml: "cases: [unterminated",
			want: "failed to parse scenario yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenarioYAMLString(tt.yaml)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenario(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validScenario), 0o644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Len(t, s.Cases, 2)

	_, err = LoadScenario(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}
