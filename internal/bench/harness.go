package bench

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/AleCandido/quad/internal/batch"
	"github.com/AleCandido/quad/internal/metrics"
	"github.com/AleCandido/quad/internal/quad"
	"github.com/AleCandido/quad/pkg/config"
	"github.com/AleCandido/quad/pkg/logger"
	"github.com/AleCandido/quad/pkg/models"
	"github.com/AleCandido/quad/pkg/utils"
)

// CaseReport is the outcome of one benchmark case
type CaseReport struct {
	Name   string         `json:"name"`
	Result *models.Result `json:"result"`

	// BatchDuration is the fastest batched run; ScalarDuration sums
	// the fastest per-integrand runs of the same problem
	BatchDuration  time.Duration `json:"batch_duration"`
	ScalarDuration time.Duration `json:"scalar_duration"`

	// Speedup is ScalarDuration over BatchDuration
	Speedup float64 `json:"speedup"`

	// Deltas are the per-integrand |batched - scalar| estimate gaps in
	// units of the combined reported error bound. Values near or below
	// one mean the shared mesh costs no meaningful accuracy.
	Deltas []float64 `json:"deltas"`

	// TrueErrors holds |estimate - exact| per integrand, NaN where no
	// closed form is registered
	TrueErrors []float64 `json:"true_errors"`
}

// Report is the outcome of a full scenario run
type Report struct {
	RunID   string                 `json:"run_id"`
	Cases   []CaseReport           `json:"cases"`
	Summary *models.MetricsSummary `json:"summary"`
}

// Harness executes a benchmark scenario. Cases run one after another:
// overlapping them would let their worker pools contend and corrupt
// the timings being measured.
type Harness struct {
	scenario  *config.Scenario
	collector *metrics.Collector
	logger    *slog.Logger

	rngMu sync.Mutex
	rng   *utils.RandSource
}

// New builds a harness for the given scenario
func New(scenario *config.Scenario) *Harness {
	return &Harness{
		scenario:  scenario,
		collector: metrics.NewCollector(),
		logger:    logger.Default,
		rng:       utils.NewRandSource(scenario.Seed),
	}
}

// SetLogger sets the harness logger
func (h *Harness) SetLogger(l *slog.Logger) {
	h.logger = l
}

// Run executes every case of the scenario and returns the report
func (h *Harness) Run(ctx context.Context) (*Report, error) {
	runID := utils.GenerateRunID()
	h.collector.Start()

	h.logger.Info("benchmark run started",
		"run_id", runID,
		"cases", len(h.scenario.Cases),
		"seed", h.scenario.Seed)

	report := &Report{RunID: runID}
	for i := range h.scenario.Cases {
		c := &h.scenario.Cases[i]
		cr, err := h.runCase(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("case %s: %w", c.Name, err)
		}
		report.Cases = append(report.Cases, *cr)
	}

	h.collector.Stop()
	report.Summary = h.collector.Summary()

	h.logger.Info("benchmark run finished",
		"run_id", runID,
		"duration", utils.FormatDuration(report.Summary.Duration))
	return report, nil
}

// runCase times the batched integration against per-integrand runs
func (h *Harness) runCase(ctx context.Context, c *config.Case) (*CaseReport, error) {
	funcs := make([]batch.Func, len(c.Functions))
	integrands := make([]Integrand, len(c.Functions))
	for i, name := range c.Functions {
		in, err := Lookup(name)
		if err != nil {
			return nil, err
		}
		integrands[i] = in
		funcs[i] = h.wrapDelay(in.Fn, c.DelayMs, c.JitterMs)
	}

	batched, batchDur, err := h.timeRuns(ctx, c, funcs)
	if err != nil {
		return nil, err
	}

	scalarDur := time.Duration(0)
	scalarEstimates := make([]float64, len(funcs))
	scalarBounds := make([]float64, len(funcs))
	for k, f := range funcs {
		res, dur, err := h.timeRuns(ctx, c, []batch.Func{f})
		if err != nil {
			return nil, err
		}
		scalarDur += dur
		scalarEstimates[k] = res.Estimates[0]
		scalarBounds[k] = res.ErrorBounds[0]
	}

	cr := &CaseReport{
		Name:           c.Name,
		Result:         batched,
		BatchDuration:  batchDur,
		ScalarDuration: scalarDur,
		Deltas:         make([]float64, len(funcs)),
		TrueErrors:     make([]float64, len(funcs)),
	}
	if batchDur > 0 {
		cr.Speedup = float64(scalarDur) / float64(batchDur)
	}
	for k := range funcs {
		gap := math.Abs(batched.Estimates[k] - scalarEstimates[k])
		combined := batched.ErrorBounds[k] + scalarBounds[k]
		if combined > 0 {
			cr.Deltas[k] = gap / combined
		}

		cr.TrueErrors[k] = math.NaN()
		if truth, ok := integrands[k].Truth(c.A, c.B); ok {
			cr.TrueErrors[k] = math.Abs(batched.Estimates[k] - truth)
		}
	}

	labels := metrics.CaseLabels(c.Name)
	metrics.RecordRun(h.collector, labels, batched.Evaluations, batched.Subdivisions, batched.ErrorBound)
	h.collector.Record(metrics.MetricBatchDurationMs, utils.TimeToMs(batchDur), labels)
	h.collector.Record(metrics.MetricScalarDurationMs, utils.TimeToMs(scalarDur), labels)
	h.collector.Record(metrics.MetricSpeedup, cr.Speedup, labels)

	h.logger.Info("case finished",
		"case", c.Name,
		"status", batched.Status,
		"subdivisions", batched.Subdivisions,
		"evaluations", batched.Evaluations,
		"error_bound", batched.ErrorBound,
		"batch_ms", utils.TimeToMs(batchDur),
		"scalar_ms", utils.TimeToMs(scalarDur),
		"speedup", cr.Speedup)
	return cr, nil
}

// timeRuns runs one problem c.Repeats times and keeps the fastest
// timing. The result itself is identical across repeats, so only the
// last one is kept. The context is honored between repeats.
func (h *Harness) timeRuns(ctx context.Context, c *config.Case, funcs []batch.Func) (*models.Result, time.Duration, error) {
	var (
		res  *models.Result
		best time.Duration
	)
	for rep := 0; rep < c.Repeats; rep++ {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		start := time.Now()
		r, err := quad.QagVec(ctx, funcs, c.A, c.B, c.Options.Model())
		if err != nil {
			return nil, 0, err
		}
		elapsed := time.Since(start)
		if rep == 0 {
			best = elapsed
		} else {
			best = utils.MinDuration(best, elapsed)
		}
		res = r
	}
	return res, best, nil
}

// wrapDelay adds the case's artificial per-evaluation latency. The
// jitter draw is serialized: the shared source is not safe under the
// evaluator's worker pool.
func (h *Harness) wrapDelay(f batch.Func, delayMs, jitterMs float64) batch.Func {
	if delayMs <= 0 {
		return f
	}
	return func(x float64) float64 {
		d := delayMs
		if jitterMs > 0 {
			h.rngMu.Lock()
			d += h.rng.UniformFloat64(-jitterMs, jitterMs)
			h.rngMu.Unlock()
		}
		if d > 0 {
			time.Sleep(utils.MsToTime(d))
		}
		return f(x)
	}
}
