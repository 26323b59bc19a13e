// Package batch normalizes user-supplied integrands and evaluates them
// at shared abscissas through a bounded worker pool. Batching across
// integrands at identical abscissas is what lets slow integrands (I/O,
// artificial latency) amortize their fixed per-call cost across the
// whole batch instead of paying it once per function.
package batch

import (
	"errors"
	"fmt"
)

// ErrEmptyBatch is returned when a batch is constructed with no integrands
var ErrEmptyBatch = errors.New("batch must contain at least one integrand")

// ErrNonFinite marks an integrand evaluation that produced NaN or ±Inf
var ErrNonFinite = errors.New("non-finite value")

// ErrVectorSize marks a vector integrand that returned the wrong number of outputs
var ErrVectorSize = errors.New("vector integrand returned wrong number of outputs")

// Func is a single-output integrand: one value per abscissa.
// It may be slow or side-effecting, but its return value must be
// deterministic in x for results to be reproducible.
type Func func(x float64) float64

// VectorFunc is a multi-output integrand: one value per batch member
// per abscissa, produced by a single call.
type VectorFunc func(x float64) []float64

// Batch is a fixed-size set of integrands evaluated together.
// Internally everything is "N outputs per abscissa"; the two
// constructors normalize the caller's shape into that form.
type Batch struct {
	size   int
	funcs  []Func
	vector VectorFunc
}

// FromFuncs builds a batch from independent single-output integrands
func FromFuncs(funcs ...Func) (*Batch, error) {
	if len(funcs) == 0 {
		return nil, ErrEmptyBatch
	}
	return &Batch{size: len(funcs), funcs: funcs}, nil
}

// FromVector builds a batch from one integrand producing size outputs
// per call
func FromVector(size int, f VectorFunc) (*Batch, error) {
	if size < 1 || f == nil {
		return nil, ErrEmptyBatch
	}
	return &Batch{size: size, vector: f}, nil
}

// Size returns the number of integrands in the batch
func (b *Batch) Size() int {
	return b.size
}

// IntegrandError reports a failed evaluation. The whole in-flight batch
// for the interval is aborted; values already computed for other
// integrands are discarded together since the rule's linear combination
// needs the complete set.
type IntegrandError struct {
	// Index is the position of the failing integrand in the batch
	Index int

	// X is the abscissa at which the evaluation failed
	X float64

	// Err is the underlying cause
	Err error
}

func (e *IntegrandError) Error() string {
	return fmt.Sprintf("integrand %d failed at x=%g: %v", e.Index, e.X, e.Err)
}

func (e *IntegrandError) Unwrap() error {
	return e.Err
}
