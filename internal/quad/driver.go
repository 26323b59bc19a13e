package quad

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/AleCandido/quad/internal/batch"
	"github.com/AleCandido/quad/internal/rule"
	"github.com/AleCandido/quad/pkg/logger"
	"github.com/AleCandido/quad/pkg/models"
	"github.com/AleCandido/quad/pkg/utils"
)

var (
	// ErrInvalidBounds is returned when the lower bound exceeds the upper bound
	ErrInvalidBounds = errors.New("invalid integration bounds")

	// ErrInvalidLimit is returned when the subdivision cap is below 1
	ErrInvalidLimit = errors.New("subdivision limit must be at least 1")

	// ErrInvalidTolerance is returned when the requested accuracy is
	// negative or unattainable in float64 arithmetic
	ErrInvalidTolerance = errors.New("invalid tolerance")
)

// Driver runs the adaptive subdivide-evaluate-accumulate loop for one
// batch of integrands over a shared mesh. A Driver is cheap to build
// and carries no per-call state; every Integrate call owns its queue
// and accumulators, so independent calls may run concurrently.
type Driver struct {
	rule   *rule.Rule
	eval   *batch.Evaluator
	opts   models.Options
	logger *slog.Logger
}

// NewDriver validates opts and resolves the quadrature rule
func NewDriver(opts models.Options) (*Driver, error) {
	if opts.Limit < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLimit, opts.Limit)
	}
	if opts.AbsTol < 0 || opts.RelTol < 0 {
		return nil, fmt.Errorf("%w: abs_tol=%g rel_tol=%g must be >= 0", ErrInvalidTolerance, opts.AbsTol, opts.RelTol)
	}
	if opts.AbsTol <= 0 && opts.RelTol < models.MinRelTol {
		return nil, fmt.Errorf("%w: abs_tol=%g rel_tol=%g cannot be satisfied", ErrInvalidTolerance, opts.AbsTol, opts.RelTol)
	}
	r, err := rule.ForKey(opts.Key)
	if err != nil {
		return nil, err
	}
	return &Driver{
		rule:   r,
		eval:   batch.NewEvaluator(opts.Workers),
		opts:   opts,
		logger: logger.Default,
	}, nil
}

// SetLogger sets the driver's logger
func (d *Driver) SetLogger(l *slog.Logger) {
	d.logger = l
}

// Rule returns the resolved quadrature rule
func (d *Driver) Rule() *rule.Rule {
	return d.rule
}

// Integrate computes the integrals of every integrand in b over
// [low, high]. Validation failures and integrand errors are returned
// as errors; hitting the subdivision cap is not an error, it is
// reported through Result.Status with best-effort estimates and their
// honest error bounds.
func (d *Driver) Integrate(ctx context.Context, b *batch.Batch, low, high float64) (*models.Result, error) {
	if math.IsNaN(low) || math.IsInf(low, 0) || math.IsNaN(high) || math.IsInf(high, 0) {
		return nil, fmt.Errorf("%w: bounds must be finite, got low=%g high=%g", ErrInvalidBounds, low, high)
	}
	if low > high {
		return nil, fmt.Errorf("%w: low=%g high=%g", ErrInvalidBounds, low, high)
	}
	n := b.Size()

	// Zero-length domain converges immediately without any evaluation.
	if low == high {
		return &models.Result{
			Estimates:   make([]float64, n),
			ErrorBounds: make([]float64, n),
			Status:      models.StatusConverged,
		}, nil
	}

	st := &callState{
		results:   make([]float64, n),
		errSums:   make([]float64, n),
		roundSums: make([]float64, n),
		queue:     NewWorkQueue(),
	}

	for _, seg := range seedBounds(low, high, d.opts.Points) {
		iv, err := d.evalInterval(ctx, b, st, seg[0], seg[1])
		if err != nil {
			return nil, err
		}
		st.admit(iv)
	}

	d.logger.Debug("integration seeded",
		"integrands", n,
		"key", d.opts.Key,
		"low", low,
		"high", high,
		"seed_intervals", st.queue.Len(),
		"err_sum", utils.MaxVec(st.errSums),
		"worst_err", st.queue.Peek().ErrEstimate)

	status := d.refine(ctx, b, st)
	if st.err != nil {
		return nil, st.err
	}

	res := &models.Result{
		Estimates:    st.results,
		ErrorBounds:  make([]float64, n),
		Subdivisions: st.subdivisions,
		Evaluations:  st.evaluations,
		Status:       status,
	}
	for k := 0; k < n; k++ {
		res.ErrorBounds[k] = st.errSums[k] + st.roundSums[k]
	}
	res.ErrorBound = utils.MaxVec(res.ErrorBounds)

	if d.opts.MoreInfo {
		res.Intervals = drainQueue(st.queue)
	}

	d.logger.Debug("integration finished",
		"status", status,
		"subdivisions", st.subdivisions,
		"evaluations", st.evaluations,
		"error_bound", res.ErrorBound)

	return res, nil
}

// callState is the accumulator owned by a single Integrate call
type callState struct {
	results      []float64
	errSums      []float64
	roundSums    []float64
	queue        *WorkQueue
	subdivisions int
	evaluations  int
	err          error
}

// admit adds a freshly evaluated interval to the running totals and the
// queue. Round-off contributions only ever grow; they are never given
// back when an interval is replaced by its children.
func (st *callState) admit(iv *Interval) {
	utils.AddVec(st.results, iv.Estimates)
	utils.AddVec(st.errSums, iv.Errors)
	utils.AddVec(st.roundSums, iv.Rounds)
	st.queue.Add(iv)
}

// retire removes a popped interval's contribution ahead of its replacement
func (st *callState) retire(iv *Interval) {
	utils.SubVec(st.results, iv.Estimates)
	utils.SubVec(st.errSums, iv.Errors)
}

// converged reports whether every integrand meets its own tolerance:
// the shared mesh refines until the worst batch member is satisfied.
func (st *callState) converged(absTol, relTol float64) bool {
	for k := range st.errSums {
		errbnd := math.Max(absTol, relTol*math.Abs(st.results[k]))
		if st.errSums[k] > errbnd {
			return false
		}
	}
	return true
}

// roundoffDominated reports whether every integrand still missing its
// tolerance has a live error below its own accumulated round-off
// floor, in which case further bisection cannot help it.
func (st *callState) roundoffDominated(absTol, relTol float64) bool {
	dominated := false
	for k := range st.errSums {
		errbnd := math.Max(absTol, relTol*math.Abs(st.results[k]))
		if st.errSums[k] <= errbnd {
			continue
		}
		if st.errSums[k] >= st.roundSums[k] {
			return false
		}
		dominated = true
	}
	return dominated
}

// refine runs the error-ordered subdivision loop and returns the
// termination status. Evaluation failures land in st.err.
func (d *Driver) refine(ctx context.Context, b *batch.Batch, st *callState) models.Status {
	for {
		if st.converged(d.opts.AbsTol, d.opts.RelTol) {
			return models.StatusConverged
		}
		if st.roundoffDominated(d.opts.AbsTol, d.opts.RelTol) {
			return models.StatusRoundoff
		}
		if st.subdivisions >= d.opts.Limit {
			return models.StatusLimitReached
		}

		worst, err := st.queue.PopMax()
		if err != nil {
			st.err = err
			return models.StatusBadBehaviour
		}

		if tooSmall(worst) {
			d.logger.Debug("interval below float64 spacing",
				"low", worst.Low,
				"high", worst.High,
				"width", worst.Width(),
				"err", worst.ErrEstimate)
			// Put it back so MoreInfo still sees the full partition.
			st.queue.Add(worst)
			return models.StatusBadBehaviour
		}

		mid := worst.Mid()
		st.retire(worst)

		left, right, err := d.evalChildren(ctx, b, st, worst.Low, mid, worst.High)
		if err != nil {
			st.err = err
			return models.StatusBadBehaviour
		}

		st.admit(left)
		st.admit(right)
		st.subdivisions++
	}
}

// evalInterval runs one interval's batch through the evaluator and the
// embedded rule
func (d *Driver) evalInterval(ctx context.Context, b *batch.Batch, st *callState, low, high float64) (*Interval, error) {
	xs := d.rule.Abscissas(low, high)
	values, err := d.eval.Evaluate(ctx, xs, b)
	if err != nil {
		return nil, err
	}
	st.evaluations += len(xs)
	return applyRule(d.rule, low, high, values), nil
}

// evalChildren evaluates both halves of a bisected interval in a single
// dispatch, so the worker pool spans all cells of both children
func (d *Driver) evalChildren(ctx context.Context, b *batch.Batch, st *callState, low, mid, high float64) (*Interval, *Interval, error) {
	nc := d.rule.NodeCount()
	xs := make([]float64, 0, 2*nc)
	xs = append(xs, d.rule.Abscissas(low, mid)...)
	xs = append(xs, d.rule.Abscissas(mid, high)...)

	values, err := d.eval.Evaluate(ctx, xs, b)
	if err != nil {
		return nil, nil, err
	}
	st.evaluations += len(xs)

	left := applyRule(d.rule, low, mid, values[:nc])
	right := applyRule(d.rule, mid, high, values[nc:])
	return left, right, nil
}

// tooSmall reports whether bisection has shrunk an interval down to the
// spacing of float64, the classic sign of extremely bad integrand
// behaviour at an interior point
func tooSmall(iv *Interval) bool {
	bound := math.Max(math.Abs(iv.Low), math.Abs(iv.High))
	return bound <= (1+100*epmach)*(math.Abs(iv.Mid())+1000*uflow)
}

// seedBounds partitions [low, high] at the user break points that fall
// strictly inside it
func seedBounds(low, high float64, points []float64) [][2]float64 {
	if len(points) == 0 {
		return [][2]float64{{low, high}}
	}

	sorted := make([]float64, len(points))
	copy(sorted, points)
	sort.Float64s(sorted)

	segments := make([][2]float64, 0, len(sorted)+1)
	prev := low
	for _, p := range sorted {
		if p > low && p < high && p > prev {
			segments = append(segments, [2]float64{prev, p})
			prev = p
		}
	}
	segments = append(segments, [2]float64{prev, high})
	return segments
}

// drainQueue empties the queue in pop order into the result's interval
// breakdown
func drainQueue(wq *WorkQueue) []models.IntervalInfo {
	infos := make([]models.IntervalInfo, 0, wq.Len())
	for wq.Len() > 0 {
		iv, err := wq.PopMax()
		if err != nil {
			break
		}
		infos = append(infos, models.IntervalInfo{
			Low:       iv.Low,
			High:      iv.High,
			Error:     iv.ErrEstimate,
			Estimates: iv.Estimates,
		})
	}
	return infos
}

// QagVec integrates several single-output integrands simultaneously
// over [a, b] on one shared adaptive mesh
func QagVec(ctx context.Context, funcs []batch.Func, a, b float64, opts models.Options) (*models.Result, error) {
	bt, err := batch.FromFuncs(funcs...)
	if err != nil {
		return nil, err
	}
	d, err := NewDriver(opts)
	if err != nil {
		return nil, err
	}
	return d.Integrate(ctx, bt, a, b)
}

// QagVecN integrates one n-output integrand over [a, b]; each output
// component is treated as its own integrand on the shared mesh
func QagVecN(ctx context.Context, n int, f batch.VectorFunc, a, b float64, opts models.Options) (*models.Result, error) {
	bt, err := batch.FromVector(n, f)
	if err != nil {
		return nil, err
	}
	d, err := NewDriver(opts)
	if err != nil {
		return nil, err
	}
	return d.Integrate(ctx, bt, a, b)
}
