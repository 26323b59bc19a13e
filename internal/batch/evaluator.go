package batch

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Evaluator dispatches the (integrand, abscissa) cells of one interval's
// batch across a bounded worker pool. It is stateless and safe for
// concurrent use, but the driver only ever runs one interval's batch at
// a time: the full set of node values is a hard synchronization barrier
// before any estimate is computed.
type Evaluator struct {
	workers int
}

// NewEvaluator creates an evaluator with the given worker-pool bound.
// workers <= 0 selects GOMAXPROCS. Callers with non-reentrant
// integrands must pass 1.
func NewEvaluator(workers int) *Evaluator {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Evaluator{workers: workers}
}

// Workers returns the worker-pool bound
func (e *Evaluator) Workers() int {
	return e.workers
}

// Evaluate computes every integrand of b at every abscissa in xs and
// returns the values indexed [abscissa][integrand]. The result is
// complete or nil: any failing evaluation aborts the call with an
// *IntegrandError and all partial values are discarded.
//
// Single-output batches parallelize over all cells; a vector integrand
// produces a full row per call and parallelizes over abscissas only.
func (e *Evaluator) Evaluate(ctx context.Context, xs []float64, b *Batch) ([][]float64, error) {
	values := make([][]float64, len(xs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	if b.vector != nil {
		for i, x := range xs {
			i, x := i, x
			values[i] = make([]float64, b.size)
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				out := b.vector(x)
				if len(out) != b.size {
					return fmt.Errorf("%w: got %d, want %d (x=%g)", ErrVectorSize, len(out), b.size, x)
				}
				for k, y := range out {
					if math.IsNaN(y) || math.IsInf(y, 0) {
						return &IntegrandError{Index: k, X: x, Err: ErrNonFinite}
					}
					values[i][k] = y
				}
				return nil
			})
		}
	} else {
		for i := range xs {
			values[i] = make([]float64, b.size)
		}
		for i, x := range xs {
			i, x := i, x
			for k, f := range b.funcs {
				k, f := k, f
				g.Go(func() error {
					if err := ctx.Err(); err != nil {
						return err
					}
					y := f(x)
					if math.IsNaN(y) || math.IsInf(y, 0) {
						return &IntegrandError{Index: k, X: x, Err: ErrNonFinite}
					}
					values[i][k] = y
					return nil
				})
			}
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return values, nil
}
