package models

// Status represents the termination condition of an integration call
type Status string

const (
	// StatusConverged means the requested accuracy was reached
	StatusConverged Status = "converged"

	// StatusLimitReached means the subdivision cap was hit first;
	// results are best-effort estimates with their honest error bounds
	StatusLimitReached Status = "limit_reached"

	// StatusRoundoff means accumulated round-off error prevents the
	// requested tolerance from being reached
	StatusRoundoff Status = "roundoff"

	// StatusBadBehaviour means subdivision produced an interval too
	// small to resolve, indicating extremely bad integrand behaviour
	StatusBadBehaviour Status = "bad_behaviour"
)

// MinRelTol is the smallest relative accuracy satisfiable in float64
// arithmetic; a request with abs_tol <= 0 needs at least this much
// rel_tol (50 ulps)
const MinRelTol = 50 * 2.220446049250313e-16

// Options holds the tunable parameters of one integration call
type Options struct {
	// Limit is the upper bound on the number of subdivisions, >= 1
	Limit int `json:"limit" yaml:"limit"`

	// Key selects the Gauss-Kronrod pair: 1..6 for 7-15, 10-21,
	// 15-31, 20-41, 25-51 and 30-61 points respectively
	Key int `json:"key" yaml:"key"`

	// AbsTol is the absolute accuracy requested, >= 0
	AbsTol float64 `json:"abs_tol" yaml:"abs_tol"`

	// RelTol is the relative accuracy requested, >= 0
	RelTol float64 `json:"rel_tol" yaml:"rel_tol"`

	// Workers bounds the evaluation worker pool; 0 means GOMAXPROCS
	Workers int `json:"workers,omitempty" yaml:"workers,omitempty"`

	// Points are optional interior break points; the seed partition
	// of [a,b] is split at every point falling strictly inside it
	Points []float64 `json:"points,omitempty" yaml:"points,omitempty"`

	// MoreInfo requests the final interval partition in the result
	MoreInfo bool `json:"more_info,omitempty" yaml:"more_info,omitempty"`
}

// DefaultOptions returns the default integration options
func DefaultOptions() Options {
	return Options{
		Limit:  50,
		Key:    2,
		AbsTol: 1.49e-8,
		RelTol: 1.49e-8,
	}
}

// Result holds the outcome of one integration call
type Result struct {
	// Estimates are the per-integrand integral approximations
	Estimates []float64 `json:"estimates"`

	// ErrorBounds are the per-integrand absolute error estimates
	ErrorBounds []float64 `json:"error_bounds"`

	// ErrorBound is the scalar bound driving the convergence test:
	// the worst per-integrand bound
	ErrorBound float64 `json:"error_bound"`

	// Subdivisions is the number of bisections performed
	Subdivisions int `json:"subdivisions"`

	// Evaluations is the number of abscissas each integrand was
	// evaluated at
	Evaluations int `json:"evaluations"`

	// Status reports how the call terminated
	Status Status `json:"status"`

	// Intervals is the final partition with per-interval estimates,
	// populated only when Options.MoreInfo is set
	Intervals []IntervalInfo `json:"intervals,omitempty"`
}

// IntervalInfo describes one interval of the final partition
type IntervalInfo struct {
	Low       float64   `json:"low"`
	High      float64   `json:"high"`
	Error     float64   `json:"error"`
	Estimates []float64 `json:"estimates"`
}

// Converged reports whether the result met the requested accuracy
func (r *Result) Converged() bool {
	return r.Status == StatusConverged
}
