// Package bench runs scenario-driven benchmark cases comparing one
// batched integration against per-integrand runs of the same problem.
package bench

import (
	"fmt"
	"math"
	"sort"

	"github.com/AleCandido/quad/internal/batch"
)

// ErrUnknownFunction is returned when a scenario references a function
// name that is not registered
var ErrUnknownFunction = fmt.Errorf("unknown function")

// Integrand is a registered benchmark function. Primitive is the
// analytic antiderivative when one exists in closed form; cases with a
// primitive get their true error reported alongside the estimated one.
type Integrand struct {
	Name      string
	Fn        batch.Func
	Primitive func(x float64) float64
}

// Truth returns the exact integral over [a, b] and whether it is known
func (in Integrand) Truth(a, b float64) (float64, bool) {
	if in.Primitive == nil {
		return 0, false
	}
	return in.Primitive(b) - in.Primitive(a), true
}

var registry = map[string]Integrand{
	"cos": {
		Name:      "cos",
		Fn:        math.Cos,
		Primitive: math.Sin,
	},
	"sin": {
		Name:      "sin",
		Fn:        math.Sin,
		Primitive: func(x float64) float64 { return -math.Cos(x) },
	},
	"sinc": {
		Name: "sinc",
		Fn: func(x float64) float64 {
			if x == 0 {
				return 1
			}
			return math.Sin(x) / x
		},
		// The sine integral has no elementary form.
	},
	"gauss": {
		Name: "gauss",
		Fn:   func(x float64) float64 { return math.Exp(-x * x) },
		Primitive: func(x float64) float64 {
			return 0.5 * math.Sqrt(math.Pi) * math.Erf(x)
		},
	},
	"runge": {
		Name:      "runge",
		Fn:        func(x float64) float64 { return 1 / (1 + 25*x*x) },
		Primitive: func(x float64) float64 { return math.Atan(5*x) / 5 },
	},
	"poly3": {
		Name:      "poly3",
		Fn:        func(x float64) float64 { return x * x * x },
		Primitive: func(x float64) float64 { return 0.25 * x * x * x * x },
	},
}

// Lookup resolves a registered function by name
func Lookup(name string) (Integrand, error) {
	in, ok := registry[name]
	if !ok {
		return Integrand{}, fmt.Errorf("%w: %s (registered: %v)", ErrUnknownFunction, name, Names())
	}
	return in, nil
}

// Names returns the registered function names, sorted
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
