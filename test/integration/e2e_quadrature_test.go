//go:build integration
// +build integration

package integration_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/AleCandido/quad/internal/batch"
	"github.com/AleCandido/quad/internal/bench"
	"github.com/AleCandido/quad/internal/quad"
	"github.com/AleCandido/quad/pkg/config"
	"github.com/AleCandido/quad/pkg/models"
)

// TestE2E_ScenarioRun drives the full pipeline: YAML scenario, parsing
// with defaults, harness execution, metrics summary.
func TestE2E_ScenarioRun(t *testing.T) {
	scenario, err := config.ParseScenarioYAMLString(`
log_level: warn
seed: 7
cases:
  - name: trig_long_range
    functions: [cos, sin]
    a: 0
    b: 1000
    repeats: 2
    options:
      limit: 100000
      key: 2
      abs_tol: 1.49e-8
      rel_tol: 1.49e-8
  - name: bell_and_runge
    functions: [gauss, runge]
    a: -5
    b: 5
    options:
      limit: 1000
`)
	if err != nil {
		t.Fatalf("parse scenario: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	report, err := bench.New(scenario).Run(ctx)
	if err != nil {
		t.Fatalf("run scenario: %v", err)
	}
	if len(report.Cases) != 2 {
		t.Fatalf("got %d case reports, want 2", len(report.Cases))
	}

	for _, cr := range report.Cases {
		if !cr.Result.Converged() {
			t.Errorf("case %s: expected convergence, got %s", cr.Name, cr.Result.Status)
		}
		for k, te := range cr.TrueErrors {
			if math.IsNaN(te) {
				continue
			}
			if te > cr.Result.ErrorBounds[k] {
				t.Errorf("case %s integrand %d: true error %g exceeds reported bound %g",
					cr.Name, k, te, cr.Result.ErrorBounds[k])
			}
		}
	}

	trig := report.Cases[0]
	truth := math.Sin(1000)
	if got := math.Abs(trig.Result.Estimates[0] - truth); got > 1e-6 {
		t.Errorf("cos over [0,1000]: got %.15g, want %.15g (off by %g)",
			trig.Result.Estimates[0], truth, got)
	}

	if report.Summary == nil || len(report.Summary.Aggregations) == 0 {
		t.Errorf("expected a populated metrics summary")
	}
}

// TestE2E_AllRuleKeys checks every Gauss-Kronrod pair against the same
// analytically known problem.
func TestE2E_AllRuleKeys(t *testing.T) {
	truth := 1 - math.Cos(10)
	for key := 1; key <= 6; key++ {
		opts := models.DefaultOptions()
		opts.Key = key
		opts.Limit = 500

		res, err := quad.QagVec(context.Background(), []batch.Func{math.Sin}, 0, 10, opts)
		if err != nil {
			t.Fatalf("key %d: %v", key, err)
		}
		if !res.Converged() {
			t.Errorf("key %d: expected convergence, got %s", key, res.Status)
		}
		if got := math.Abs(res.Estimates[0] - truth); got > 1e-8 {
			t.Errorf("key %d: got %.15g, want %.15g", key, res.Estimates[0], truth)
		}
	}
}

// TestE2E_BreakPointsAndPartition exercises interior break points and
// the MoreInfo partition on a piecewise integrand.
func TestE2E_BreakPointsAndPartition(t *testing.T) {
	opts := models.DefaultOptions()
	opts.Limit = 1000
	opts.Points = []float64{-1, 1}
	opts.MoreInfo = true

	// Triangle wave clipped to [-2, 2]: kinks at the break points.
	f := func(x float64) float64 {
		return math.Max(0, 1-math.Abs(x))
	}

	res, err := quad.QagVec(context.Background(), []batch.Func{f}, -2, 2, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Converged() {
		t.Errorf("expected convergence, got %s", res.Status)
	}
	if got := math.Abs(res.Estimates[0] - 1); got > 1e-10 {
		t.Errorf("got %.15g, want 1", res.Estimates[0])
	}

	width := 0.0
	for _, iv := range res.Intervals {
		width += iv.High - iv.Low
	}
	if math.Abs(width-4) > 1e-9 {
		t.Errorf("partition covers %g, want 4", width)
	}
}

// TestE2E_SlowIntegrandAmortization checks that batching slow
// integrands beats running them one by one.
func TestE2E_SlowIntegrandAmortization(t *testing.T) {
	scenario := &config.Scenario{
		LogLevel: "warn",
		Seed:     3,
		Cases: []config.Case{
			{
				Name:      "slow_pair",
				Functions: []string{"cos", "sin"},
				A:         0,
				B:         2,
				Repeats:   1,
				DelayMs:   1,
				// The pool must cover the whole batch: with both
				// integrands' cells in flight at once, the batched run
				// pays the delay once where the per-integrand runs pay
				// it once each.
				Options: &config.Options{Limit: 50, Workers: 64},
			},
		},
	}

	report, err := bench.New(scenario).Run(context.Background())
	if err != nil {
		t.Fatalf("run scenario: %v", err)
	}

	slow := report.Cases[0]
	if slow.Speedup <= 1 {
		t.Errorf("expected batching to amortize the delay, speedup %g", slow.Speedup)
	}
}
