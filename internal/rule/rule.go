// Package rule supplies the Gauss-Kronrod node and weight tables used
// by the quadrature engine. A rule is selected once by integer key and
// shared read-only across all intervals and goroutines.
//
// Tables store only the positive Kronrod abscissae (descending order,
// center excluded) because the rules are symmetric. The Kronrod weight
// slice carries one extra trailing entry: the center weight. For rules
// whose Gauss order is odd the center is also a Gauss node and the
// trailing Gauss weight belongs to it.
package rule

import (
	"errors"
	"fmt"
)

// ErrInvalidRuleKey is returned when a key outside the supported set is requested
var ErrInvalidRuleKey = errors.New("invalid rule key")

// Rule holds one embedded Gauss-Kronrod pair
type Rule struct {
	// Key is the selector this rule was registered under
	Key int

	// XGK are the positive Kronrod abscissae on (-1,1), descending,
	// center excluded
	XGK []float64

	// WGK are the Kronrod weights; len(XGK)+1 entries, the last one
	// is the center weight
	WGK []float64

	// WG are the Gauss weights for the positive abscissae; when the
	// Gauss order is odd the last entry is the center Gauss weight
	WG []float64
}

var rules = map[int]*Rule{
	1: {Key: 1, XGK: xgk15, WGK: wgk15, WG: wg15},
	2: {Key: 2, XGK: xgk21, WGK: wgk21, WG: wg21},
	3: {Key: 3, XGK: xgk31, WGK: wgk31, WG: wg31},
	4: {Key: 4, XGK: xgk41, WGK: wgk41, WG: wg41},
	5: {Key: 5, XGK: xgk51, WGK: wgk51, WG: wg51},
	6: {Key: 6, XGK: xgk61, WGK: wgk61, WG: wg61},
}

// ForKey returns the rule registered under key. Supported keys are 1..6,
// selecting the 7-15, 10-21, 15-31, 20-41, 25-51 and 30-61 point pairs.
func ForKey(key int) (*Rule, error) {
	r, ok := rules[key]
	if !ok {
		return nil, fmt.Errorf("%w: %d (supported keys are 1..6)", ErrInvalidRuleKey, key)
	}
	return r, nil
}

// GaussOrder returns the number of points in the embedded Gauss rule
func (r *Rule) GaussOrder() int {
	return len(r.XGK)
}

// NodeCount returns the number of points in the Kronrod rule
func (r *Rule) NodeCount() int {
	return 2*len(r.XGK) + 1
}

// GaussIncludesCenter reports whether the interval midpoint is also a
// Gauss node (true for odd Gauss orders)
func (r *Rule) GaussIncludesCenter() bool {
	return len(r.XGK)%2 == 1
}

// Abscissas maps the rule's normalized nodes onto [low, high] and
// returns them in the engine's canonical node order: the center first,
// then for each table entry j the pair (center - h*xgk[j],
// center + h*xgk[j]). Every integrand of a batch is evaluated at these
// exact float64 values, so the embedded-rule error estimate is computed
// from identical abscissas for all integrands.
func (r *Rule) Abscissas(low, high float64) []float64 {
	hlgth := 0.5 * (high - low)
	centr := 0.5 * (high + low)

	nodes := make([]float64, r.NodeCount())
	nodes[0] = centr
	for j, x := range r.XGK {
		absc := hlgth * x
		nodes[1+2*j] = centr - absc
		nodes[2+2*j] = centr + absc
	}
	return nodes
}
